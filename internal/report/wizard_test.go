package report

import (
	"errors"
	"testing"

	"gasreport/pkg/domain"
)

func TestWizardHappyPath(t *testing.T) {
	tree := completeFixedTree(t)
	w := NewWizard(tree, nil)
	if w.Step() != domain.StepInfo || w.CanSave() {
		t.Fatalf("expected to start on info")
	}
	for _, want := range []domain.Step{domain.StepClient, domain.StepUnit, domain.StepConclusion} {
		mustDo(t, w.Next())
		if w.Step() != want {
			t.Fatalf("expected %s, got %s", want, w.Step())
		}
	}
	if !w.CanSave() {
		t.Fatalf("expected save allowed on conclusion")
	}
	mustDo(t, w.Next())
	if w.Step() != domain.StepConclusion {
		t.Fatalf("next on conclusion must be a no-op")
	}
}

func TestWizardRefusedNextLeavesState(t *testing.T) {
	tree := completeFixedTree(t)
	mustIndex(t)(tree.AddUnit(domain.UnitCentrale))
	w := NewWizard(tree, nil)
	mustDo(t, w.Next())
	mustDo(t, w.Next())
	mustDo(t, w.Next()) // unit 0 -> unit 1
	if w.Step() != domain.StepUnit || w.Cursor() != 1 {
		t.Fatalf("expected unit step cursor 1, got %s %d", w.Step(), w.Cursor())
	}
	err := w.Next()
	var vf domain.ValidationFailure
	if !errors.As(err, &vf) || vf.Step != domain.StepUnit {
		t.Fatalf("expected unit validation failure, got %v", err)
	}
	if w.Step() != domain.StepUnit || w.Cursor() != 1 {
		t.Fatalf("refused next moved the wizard: %s %d", w.Step(), w.Cursor())
	}
}

func TestWizardBack(t *testing.T) {
	tree := completeFixedTree(t)
	mustIndex(t)(tree.AddUnit(domain.UnitCentrale))
	mustDo(t, tree.UpdateUnit(1, func(u *domain.Unit) error {
		u.Make, u.Model, u.SerialNumber = "a", "b", "c"
		return nil
	}))
	w := NewWizard(tree, nil)
	if err := w.Back(); !errors.Is(err, domain.ErrAtFirstStep) {
		t.Fatalf("expected ErrAtFirstStep, got %v", err)
	}
	for w.Step() != domain.StepConclusion {
		mustDo(t, w.Next())
	}
	mustDo(t, w.Back())
	if w.Step() != domain.StepUnit || w.Cursor() != 1 {
		t.Fatalf("back from conclusion should land on last unit, got %s %d", w.Step(), w.Cursor())
	}
	mustDo(t, w.Back())
	mustDo(t, w.Back())
	if w.Step() != domain.StepClient {
		t.Fatalf("expected client step, got %s", w.Step())
	}
}

func TestWizardCursorClamp(t *testing.T) {
	for n := 2; n <= 5; n++ {
		for c := 0; c < n; c++ {
			tree := NewTree(domain.VariantFixed, sequentialAllocator())
			for i := 1; i < n; i++ {
				mustIndex(t)(tree.AddUnit(domain.UnitCentrale))
			}
			w := NewWizard(tree, nil)
			w.step = domain.StepUnit
			w.cursor = c
			mustDo(t, w.RemoveEquipment(c))
			want := min(c, n-2)
			if w.Cursor() != want {
				t.Fatalf("n=%d c=%d: cursor %d, want %d", n, c, w.Cursor(), want)
			}
		}
	}
}

func TestWizardRemoveBeforeCursorFollowsItem(t *testing.T) {
	tree := NewTree(domain.VariantPortable, sequentialAllocator())
	mustIndex(t)(tree.AddPortableDetector())
	mustIndex(t)(tree.AddPortableDetector())
	w := NewWizard(tree, nil)
	w.step = domain.StepPortable
	w.cursor = 2
	target, _ := tree.PortableDetector(2)
	mustDo(t, w.RemoveEquipment(0))
	got, _ := tree.PortableDetector(w.Cursor())
	if got.ID != target.ID {
		t.Fatalf("cursor should stay on the same detector")
	}
}

func TestWizardRemoveLastRejected(t *testing.T) {
	w := NewWizard(NewTree(domain.VariantFixed, sequentialAllocator()), nil)
	var card domain.MinimumCardinalityViolation
	if err := w.RemoveEquipment(0); !errors.As(err, &card) {
		t.Fatalf("expected cardinality violation, got %v", err)
	}
	if w.Tree().EquipmentCount() != 1 || w.Cursor() != 0 {
		t.Fatalf("rejected removal changed state")
	}
}

func TestWizardAddEquipmentMovesCursor(t *testing.T) {
	w := NewWizard(NewTree(domain.VariantFixed, sequentialAllocator()), nil)
	i, err := w.AddEquipment()
	if err != nil || i != 1 || w.Cursor() != 0 {
		t.Fatalf("off the equipment step the cursor stays: %d %d %v", i, w.Cursor(), err)
	}
	w.step = domain.StepUnit
	i, _ = w.AddEquipment()
	if w.Cursor() != i {
		t.Fatalf("expected cursor on new unit %d, got %d", i, w.Cursor())
	}
}

func TestWizardSelectClientClearsSite(t *testing.T) {
	w := NewWizard(NewTree(domain.VariantFixed, sequentialAllocator()), nil)
	mustDo(t, w.SelectClient("c1"))
	mustDo(t, w.SelectSite("s1"))
	mustDo(t, w.SelectClient("c1"))
	if w.Tree().Snapshot().SiteID != "s1" {
		t.Fatalf("same client must keep the site")
	}
	mustDo(t, w.SelectClient("c2"))
	if snap := w.Tree().Snapshot(); snap.ClientID != "c2" || snap.SiteID != "" {
		t.Fatalf("expected site cleared: %+v", snap)
	}
}
