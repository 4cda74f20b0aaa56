package report

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"gasreport/internal/blob"
	"gasreport/pkg/domain"
)

func TestLoadRoundTripsSavedReport(t *testing.T) {
	ctx := context.Background()
	repo := newRecordingRepo()
	tree := richFixedTree(t)
	// decimals come back in canonical form, so start from canonical input
	mustDo(t, tree.UpdateThreshold(0, 0, 0, func(a *domain.AlarmThreshold) error {
		a.Value = "10.5"
		return nil
	}))
	mustDo(t, tree.UpdateThreshold(0, 0, 1, func(a *domain.AlarmThreshold) error {
		a.Value = "12"
		return nil
	}))
	mustDo(t, tree.SetBackupPower(0, &domain.BackupPower{Type: "battery", Voltage: "24", Capacity: "7.2"}))
	mustDo(t, tree.UpdateIntervention(func(in *domain.Intervention) error {
		in.Contact = domain.Contact{Name: "Ops", Phone: "0102"}
		in.Observations = "corroded cabling"
		return nil
	}))
	if _, err := NewReconciler(repo, blob.NewMemory(), nil, nil).Save(ctx, tree, domain.SaveCreateNew); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(ctx, repo, domain.VariantFixed, tree.ID(), sequentialAllocator())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := tree.Snapshot()
	// unfilled detectors are never written
	want.Units[0].GasDetectors = want.Units[0].GasDetectors[:1]
	want.Units[0].FlameDetectors = want.Units[0].FlameDetectors[:1]
	if got := loaded.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestLoadPortableAddsDefaultDetector(t *testing.T) {
	ctx := context.Background()
	repo := newRecordingRepo()
	id, _ := repo.Insert(ctx, domain.KindIntervention, "", domain.Fields{"variant": "portable", "types": []any{"calibration"}})
	tree, err := Load(ctx, repo, domain.VariantPortable, id, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tree.EquipmentCount() != 1 {
		t.Fatalf("expected a default portable detector")
	}
	if snap := tree.Snapshot(); !reflect.DeepEqual(snap.Types, []string{"calibration"}) {
		t.Fatalf("types not decoded: %v", snap.Types)
	}
}

func TestLoadFailures(t *testing.T) {
	ctx := context.Background()
	repo := newRecordingRepo()
	id, _ := repo.Insert(ctx, domain.KindIntervention, "", domain.Fields{"variant": "fixed"})

	var rf domain.RepositoryReadFailure
	_, err := Load(ctx, repo, domain.VariantFixed, "nope", nil)
	var nf domain.ErrNotFound
	if !errors.As(err, &rf) || !errors.As(err, &nf) {
		t.Fatalf("expected read failure wrapping not found, got %v", err)
	}
	if _, err := Load(ctx, repo, domain.VariantPortable, id, nil); !errors.Is(err, domain.ErrVariantMismatch) {
		t.Fatalf("expected variant mismatch, got %v", err)
	}
	repo.readErr = errors.New("connection reset")
	if _, err := Load(ctx, repo, domain.VariantFixed, id, nil); !errors.As(err, &rf) || !errors.Is(err, repo.readErr) {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
}

func TestLoadKeepsCoefficientPrecision(t *testing.T) {
	ctx := context.Background()
	repo := newRecordingRepo()
	tree := completeFixedTree(t)
	g := mustIndex(t)(tree.AddGasDetector(0))
	mustDo(t, tree.UpdateGasDetector(0, g, func(d *domain.GasDetector) error {
		d.GasType = "CH4"
		d.Sensitivity.GasValue = "100"
		d.Sensitivity.Before = "98"
		d.Zero.Before = "12,5"
		return nil
	}))
	mustDo(t, tree.RecomputeCoefficient(0, g))
	if _, err := NewReconciler(repo, nil, nil, nil).Save(ctx, tree, domain.SaveCreateNew); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(ctx, repo, domain.VariantFixed, tree.ID(), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	u, _ := loaded.Unit(0)
	d := u.GasDetectors[0]
	if d.Sensitivity.Coefficient != "1.020" {
		t.Fatalf("coefficient reopened as %q, want 1.020", d.Sensitivity.Coefficient)
	}
	// other readings come back in canonical decimal form
	if d.Zero.Before != "12.5" {
		t.Fatalf("zero reading reopened as %q", d.Zero.Before)
	}
}
