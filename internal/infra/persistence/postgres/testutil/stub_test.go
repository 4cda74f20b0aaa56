package testutil

import (
	"context"
	"database/sql/driver"
	"testing"
)

func TestStubRecordsStatementsAndReplaysRows(t *testing.T) {
	ctx := context.Background()
	db, conn := NewStubDB()
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, "DELETE FROM records WHERE id = $1", "r1"); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if len(conn.Execs) != 1 || conn.Execs[0].Args[0] != "r1" {
		t.Fatalf("exec not recorded: %+v", conn.Execs)
	}

	conn.Rows = [][]driver.Value{{"r2", "unit", "root", []byte(`{}`)}}
	var id, kind, parent string
	var payload []byte
	if err := db.QueryRowContext(ctx, "SELECT id, kind, parent_id, payload FROM records").Scan(&id, &kind, &parent, &payload); err != nil {
		t.Fatalf("query: %v", err)
	}
	if id != "r2" || kind != "unit" || parent != "root" || string(payload) != "{}" {
		t.Fatalf("unexpected row %s %s %s %s", id, kind, parent, payload)
	}

	conn.FailPing = true
	if err := db.PingContext(ctx); err == nil {
		t.Fatalf("expected ping failure")
	}
}
