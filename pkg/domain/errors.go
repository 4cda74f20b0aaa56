package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrVariantMismatch is returned when an operation addresses the other report variant.
	ErrVariantMismatch = errors.New("operation does not apply to this report variant")
	// ErrNotAtConclusion is returned when a save is attempted before the conclusion step.
	ErrNotAtConclusion = errors.New("report can only be saved from the conclusion step")
	// ErrAtFirstStep is returned when navigating back from the first step.
	ErrAtFirstStep = errors.New("already at the first step")
	// ErrNotPersisted is returned when an in-place update targets a report that was never saved.
	ErrNotPersisted = errors.New("report has not been saved yet")
)

// ErrNotFound is returned when a record lookup fails.
type ErrNotFound struct {
	Kind EntityKind
	ID   string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// ValidationFailure reports the required fields missing on a wizard step.
type ValidationFailure struct {
	Step    Step
	Missing []string
}

func (e ValidationFailure) Error() string {
	return fmt.Sprintf("step %s is incomplete: missing %s", e.Step, strings.Join(e.Missing, ", "))
}

// MinimumCardinalityViolation is returned when removing a mandatory child
// would leave its collection below the minimum size.
type MinimumCardinalityViolation struct {
	Collection string
	Min        int
}

func (e MinimumCardinalityViolation) Error() string {
	return fmt.Sprintf("cannot remove the last %s: at least %d required", e.Collection, e.Min)
}

// IndexError is returned when an index does not address an element.
type IndexError struct {
	Collection string
	Index      int
	Len        int
}

func (e IndexError) Error() string {
	return fmt.Sprintf("%s index %d out of range (len %d)", e.Collection, e.Index, e.Len)
}

// RepositoryWriteFailure wraps a failed insert, update or delete. Writes
// completed earlier in the same save are left in place.
type RepositoryWriteFailure struct {
	Op    string
	Kind  EntityKind
	Cause error
}

func (e RepositoryWriteFailure) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Op, e.Kind, e.Cause)
}

func (e RepositoryWriteFailure) Unwrap() error { return e.Cause }

// RepositoryReadFailure wraps a failed hydration read.
type RepositoryReadFailure struct {
	Kind  EntityKind
	ID    string
	Cause error
}

func (e RepositoryReadFailure) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("load %s failed: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("load %s %s failed: %v", e.Kind, e.ID, e.Cause)
}

func (e RepositoryReadFailure) Unwrap() error { return e.Cause }

// BlobUploadFailure records a photo that could not be uploaded. It never
// aborts a save.
type BlobUploadFailure struct {
	Path  string
	Cause error
}

func (e BlobUploadFailure) Error() string {
	return fmt.Sprintf("upload %s failed: %v", e.Path, e.Cause)
}

func (e BlobUploadFailure) Unwrap() error { return e.Cause }
