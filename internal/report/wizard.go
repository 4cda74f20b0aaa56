package report

import (
	"strings"

	"gasreport/pkg/domain"
)

// Wizard is the step machine driving one editing session:
//
//	info -> client -> unit|portable (cursor 0..n-1) -> conclusion
//
// Forward moves are gated by the Validator; a refused move leaves both the
// step and the cursor untouched.
type Wizard struct {
	tree      *Tree
	validator *Validator
	step      domain.Step
	cursor    int
}

// NewWizard starts a wizard on the info step.
func NewWizard(tree *Tree, validator *Validator) *Wizard {
	if validator == nil {
		validator = NewValidator()
	}
	return &Wizard{tree: tree, validator: validator, step: domain.StepInfo}
}

// Tree returns the edited tree.
func (w *Wizard) Tree() *Tree { return w.tree }

// Step returns the current step.
func (w *Wizard) Step() domain.Step { return w.step }

// Cursor returns the equipment index on display. It is only meaningful on
// the equipment step.
func (w *Wizard) Cursor() int { return w.cursor }

// CanSave reports whether persistence may be triggered.
func (w *Wizard) CanSave() bool { return w.step == domain.StepConclusion }

// Check returns the verdict for the current step without moving.
func (w *Wizard) Check() domain.Result {
	return w.validator.Check(w.step, w.tree, w.cursor)
}

// Next validates the current step and advances. Within the equipment step it
// walks the cursor forward before leaving for the conclusion.
func (w *Wizard) Next() error {
	if err := w.validator.Require(w.step, w.tree, w.cursor); err != nil {
		return err
	}
	equipment := w.tree.Variant().EquipmentStep()
	switch w.step {
	case domain.StepInfo:
		w.step = domain.StepClient
	case domain.StepClient:
		w.step = equipment
		w.cursor = 0
	case equipment:
		if w.cursor < w.tree.EquipmentCount()-1 {
			w.cursor++
			return nil
		}
		w.step = domain.StepConclusion
	case domain.StepConclusion:
		// terminal: saving is the only way out
	}
	return nil
}

// Back mirrors Next without validation.
func (w *Wizard) Back() error {
	equipment := w.tree.Variant().EquipmentStep()
	switch w.step {
	case domain.StepInfo:
		return domain.ErrAtFirstStep
	case domain.StepClient:
		w.step = domain.StepInfo
	case equipment:
		if w.cursor > 0 {
			w.cursor--
			return nil
		}
		w.step = domain.StepClient
	case domain.StepConclusion:
		w.step = equipment
		w.cursor = max(0, w.tree.EquipmentCount()-1)
	}
	return nil
}

// AddEquipment appends a unit (fixed) or portable detector (portable). While
// on the equipment step the cursor jumps to the new item.
func (w *Wizard) AddEquipment() (int, error) {
	var (
		index int
		err   error
	)
	if w.tree.Variant() == domain.VariantPortable {
		index, err = w.tree.AddPortableDetector()
	} else {
		index, err = w.tree.AddUnit(domain.UnitCentrale)
	}
	if err != nil {
		return 0, err
	}
	if w.step == w.tree.Variant().EquipmentStep() {
		w.cursor = index
	}
	return index, nil
}

// RemoveEquipment deletes the unit or portable detector at index and keeps
// the cursor on a valid item: it follows the item it was on when an earlier
// one is removed, and otherwise is clamped to the new last index.
func (w *Wizard) RemoveEquipment(index int) error {
	var err error
	if w.tree.Variant() == domain.VariantPortable {
		err = w.tree.RemovePortableDetector(index)
	} else {
		err = w.tree.RemoveUnit(index)
	}
	if err != nil {
		return err
	}
	if index < w.cursor {
		w.cursor--
	}
	w.cursor = min(w.cursor, max(0, w.tree.EquipmentCount()-1))
	return nil
}

// SelectClient sets the client. Sites are scoped to their client, so a
// different client clears the selected site.
func (w *Wizard) SelectClient(clientID string) error {
	clientID = strings.TrimSpace(clientID)
	return w.tree.UpdateIntervention(func(in *domain.Intervention) error {
		if in.ClientID != clientID {
			in.SiteID = ""
		}
		in.ClientID = clientID
		return nil
	})
}

// SelectSite sets the site of the selected client.
func (w *Wizard) SelectSite(siteID string) error {
	siteID = strings.TrimSpace(siteID)
	return w.tree.UpdateIntervention(func(in *domain.Intervention) error {
		in.SiteID = siteID
		return nil
	})
}
