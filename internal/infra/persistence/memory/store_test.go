package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"gasreport/pkg/domain"
)

func TestInsertAssignsUUIDAndPreservesOrder(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	root, err := s.Insert(ctx, domain.KindIntervention, "", domain.Fields{"date": "2024-01-01"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := uuid.Parse(root); err != nil {
		t.Fatalf("expected uuid id, got %q", root)
	}
	for _, name := range []string{"a", "b", "c"} {
		if _, err := s.Insert(ctx, domain.KindUnit, root, domain.Fields{"make": name}); err != nil {
			t.Fatalf("insert unit: %v", err)
		}
	}
	units, err := s.FindChildren(ctx, domain.KindUnit, root)
	if err != nil || len(units) != 3 {
		t.Fatalf("expected 3 units: %v %v", units, err)
	}
	for i, want := range []string{"a", "b", "c"} {
		if units[i].Fields["make"] != want {
			t.Fatalf("unit %d = %v, want %s", i, units[i].Fields["make"], want)
		}
	}
}

func TestDeleteWhereCascades(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	root, _ := s.Insert(ctx, domain.KindIntervention, "", nil)
	unit, _ := s.Insert(ctx, domain.KindUnit, root, nil)
	gas, _ := s.Insert(ctx, domain.KindGasDetector, unit, nil)
	_, _ = s.Insert(ctx, domain.KindAlarmThreshold, gas, nil)
	photo, _ := s.Insert(ctx, domain.KindPhoto, root, nil)

	if err := s.DeleteWhere(ctx, domain.KindUnit, root); err != nil {
		t.Fatalf("delete: %v", err)
	}
	snap := s.ExportState()
	if len(snap.Records) != 2 || snap.Records[0].ID != root || snap.Records[1].ID != photo {
		t.Fatalf("unexpected survivors: %+v", snap.Records)
	}
	if err := s.DeleteWhere(ctx, domain.KindUnit, "missing"); err != nil {
		t.Fatalf("deleting nothing should succeed: %v", err)
	}
}

func TestUpdateAndFindOne(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	id, _ := s.Insert(ctx, domain.KindIntervention, "", domain.Fields{"conclusion": "draft"})
	if err := s.Update(ctx, domain.KindIntervention, id, domain.Fields{"conclusion": "final"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	rec, ok, err := s.FindOne(ctx, domain.KindIntervention, id)
	if err != nil || !ok || rec.Fields["conclusion"] != "final" {
		t.Fatalf("unexpected record %+v %v %v", rec, ok, err)
	}
	rec.Fields["conclusion"] = "mutated"
	again, _, _ := s.FindOne(ctx, domain.KindIntervention, id)
	if again.Fields["conclusion"] != "final" {
		t.Fatalf("FindOne returned an alias")
	}
	if _, ok, _ := s.FindOne(ctx, domain.KindUnit, id); ok {
		t.Fatalf("kind must match")
	}
	var nf domain.ErrNotFound
	if err := s.Update(ctx, domain.KindUnit, "nope", nil); !errors.As(err, &nf) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestImportStateAndCancelledContext(t *testing.T) {
	s := NewStore()
	s.ImportState(Snapshot{Records: []domain.Record{
		{ID: "r1", Kind: domain.KindClient, Fields: domain.Fields{"name": "Acme"}},
		{ID: "", Kind: domain.KindClient},
		{ID: "r2", Kind: domain.KindClient},
	}})
	clients, _ := s.FindChildren(context.Background(), domain.KindClient, "")
	if len(clients) != 2 || clients[0].ID != "r1" {
		t.Fatalf("unexpected import result %+v", clients)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Insert(ctx, domain.KindClient, "", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
