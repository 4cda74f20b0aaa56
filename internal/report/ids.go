package report

import (
	"strings"

	"github.com/google/uuid"
)

// localPrefix marks identifiers allocated in-session. Store identifiers are
// bare UUIDs, so the two spaces never collide.
const localPrefix = "local-"

// Allocator hands out session-local identifiers for entities that have not
// been persisted yet. Identifiers are UUIDv7: time ordered with a random tail,
// so two calls within the same clock tick still differ.
type Allocator struct {
	newFn func() (uuid.UUID, error)
}

// NewAllocator returns an allocator backed by uuid.NewV7.
func NewAllocator() *Allocator {
	return &Allocator{newFn: uuid.NewV7}
}

// Next returns a fresh opaque local identifier.
func (a *Allocator) Next() string {
	gen := uuid.NewV7
	if a != nil && a.newFn != nil {
		gen = a.newFn
	}
	id, err := gen()
	if err != nil {
		// v7 only fails when the random source does; fall back to v4 which
		// panics in the same situation.
		id = uuid.New()
	}
	return localPrefix + id.String()
}

// IsLocalID reports whether id was allocated in-session and has not been
// replaced by a store identifier.
func IsLocalID(id string) bool {
	return id == "" || strings.HasPrefix(id, localPrefix)
}
