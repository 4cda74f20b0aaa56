package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"gasreport/pkg/domain"
)

func TestSQLiteStorePersistAndReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "reports.db")
	store, err := NewStore(ctx, path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	root, err := store.Insert(ctx, domain.KindIntervention, "", domain.Fields{"variant": "fixed"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := store.Insert(ctx, domain.KindUnit, root, domain.Fields{"make": "MSA"}); err != nil {
		t.Fatalf("insert unit: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reloaded, err := NewStore(ctx, path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	t.Cleanup(func() { _ = reloaded.Close() })
	if reloaded.Path() != path {
		t.Fatalf("unexpected path %q", reloaded.Path())
	}
	units, err := reloaded.FindChildren(ctx, domain.KindUnit, root)
	if err != nil || len(units) != 1 || units[0].Fields["make"] != "MSA" {
		t.Fatalf("expected persisted unit, got %+v %v", units, err)
	}
}

func TestSQLiteStoreCreatesRecordsTable(t *testing.T) {
	store, err := NewStore(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	var name string
	if err := store.DB().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", "records").Scan(&name); err != nil {
		t.Fatalf("lookup records table: %v", err)
	}
}
