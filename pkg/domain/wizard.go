package domain

import "fmt"

// Step names a wizard stage.
type Step string

// Wizard steps. The equipment step is StepUnit for fixed reports and
// StepPortable for portable ones.
const (
	StepInfo       Step = "info"
	StepClient     Step = "client"
	StepUnit       Step = "unit"
	StepPortable   Step = "portable"
	StepConclusion Step = "conclusion"
)

// EquipmentStep returns the repeated-collection step of the variant.
func (v Variant) EquipmentStep() Step {
	if v == VariantPortable {
		return StepPortable
	}
	return StepUnit
}

// SaveMode selects the reconciliation strategy of a save.
type SaveMode string

// Save modes.
const (
	SaveCreateNew      SaveMode = "create_new"
	SaveUpdateInPlace  SaveMode = "update_in_place"
	SaveDuplicateAsNew SaveMode = "duplicate_as_new"
)

// ParseSaveMode converts a flat string into a SaveMode.
func ParseSaveMode(s string) (SaveMode, error) {
	switch m := SaveMode(s); m {
	case SaveCreateNew, SaveUpdateInPlace, SaveDuplicateAsNew:
		return m, nil
	}
	return "", fmt.Errorf("unknown save mode %q", s)
}

// Severity captures validation outcomes.
type Severity string

// Validation severities.
const (
	// SeverityBlock refuses forward navigation.
	SeverityBlock Severity = "block"
	SeverityWarn  Severity = "warn"
)

// Violation reports one failed check on a step.
type Violation struct {
	Rule     string
	Severity Severity
	Field    string
	Message  string
}

// Result aggregates violations for a step.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// MissingFields lists the fields of blocking violations in order.
func (r Result) MissingFields() []string {
	var out []string
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock && v.Field != "" {
			out = append(out, v.Field)
		}
	}
	return out
}
