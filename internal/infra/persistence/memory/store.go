// Package memory provides an in-memory Repository used for tests and
// ephemeral environments.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"gasreport/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain repository.
var _ domain.Repository = (*Store)(nil)

// Snapshot captures a point-in-time clone of the store in insertion order.
type Snapshot struct {
	Records []domain.Record `json:"records"`
}

// Store keeps records in a map and remembers insertion order so children
// are listed the way they were written.
type Store struct {
	mu      sync.RWMutex
	records map[string]domain.Record
	order   []string
	newID   func() string
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{records: make(map[string]domain.Record), newID: uuid.NewString}
}

// Insert implements domain.Repository.
func (s *Store) Insert(ctx context.Context, kind domain.EntityKind, parentID string, fields domain.Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	s.records[id] = domain.Record{ID: id, Kind: kind, ParentID: parentID, Fields: fields.Clone()}
	s.order = append(s.order, id)
	return id, nil
}

// Update implements domain.Repository.
func (s *Store) Update(ctx context.Context, kind domain.EntityKind, id string, fields domain.Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok || rec.Kind != kind {
		return domain.ErrNotFound{Kind: kind, ID: id}
	}
	rec.Fields = fields.Clone()
	s.records[id] = rec
	return nil
}

// DeleteWhere implements domain.Repository. Descendants of every matched
// record are removed as well.
func (s *Store) DeleteWhere(ctx context.Context, kind domain.EntityKind, parentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doomed := make(map[string]struct{})
	for _, id := range s.order {
		rec := s.records[id]
		if rec.Kind == kind && rec.ParentID == parentID {
			doomed[id] = struct{}{}
		}
	}
	if len(doomed) == 0 {
		return nil
	}
	// order is parent-first, so one forward pass reaches every descendant
	for _, id := range s.order {
		if _, ok := doomed[s.records[id].ParentID]; ok {
			doomed[id] = struct{}{}
		}
	}
	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := doomed[id]; ok {
			delete(s.records, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return nil
}

// FindOne implements domain.Repository.
func (s *Store) FindOne(ctx context.Context, kind domain.EntityKind, id string) (domain.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Record{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok || rec.Kind != kind {
		return domain.Record{}, false, nil
	}
	return cloneRecord(rec), true, nil
}

// FindChildren implements domain.Repository.
func (s *Store) FindChildren(ctx context.Context, kind domain.EntityKind, parentID string) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Record
	for _, id := range s.order {
		rec := s.records[id]
		if rec.Kind == kind && rec.ParentID == parentID {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

// ExportState returns a deep copy of every record in insertion order.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{Records: make([]domain.Record, 0, len(s.order))}
	for _, id := range s.order {
		snap.Records = append(snap.Records, cloneRecord(s.records[id]))
	}
	return snap
}

// ImportState replaces the store contents with snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]domain.Record, len(snapshot.Records))
	s.order = s.order[:0]
	for _, rec := range snapshot.Records {
		if rec.ID == "" {
			continue
		}
		if _, dup := s.records[rec.ID]; !dup {
			s.order = append(s.order, rec.ID)
		}
		s.records[rec.ID] = cloneRecord(rec)
	}
}

// Close implements io.Closer; the memory store holds no resources.
func (s *Store) Close() error { return nil }

func cloneRecord(rec domain.Record) domain.Record {
	rec.Fields = rec.Fields.Clone()
	return rec
}
