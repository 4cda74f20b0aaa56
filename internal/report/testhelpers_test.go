package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"gasreport/pkg/domain"
)

// call is one repository interaction observed by recordingRepo.
type call struct {
	Op     string
	Kind   domain.EntityKind
	ID     string
	Parent string
	Fields domain.Fields
}

// recordingRepo is an in-memory Repository that records every call and can
// be told to fail on the n-th write.
type recordingRepo struct {
	records map[string]domain.Record
	order   []string
	calls   []call
	seq     int
	writes  int
	failAt  int // 1-based write index; 0 never fails
	readErr error
}

func newRecordingRepo() *recordingRepo {
	return &recordingRepo{records: map[string]domain.Record{}}
}

var errInjected = errors.New("injected failure")

func (r *recordingRepo) write() error {
	r.writes++
	if r.failAt > 0 && r.writes == r.failAt {
		return errInjected
	}
	return nil
}

func (r *recordingRepo) Insert(_ context.Context, kind domain.EntityKind, parentID string, fields domain.Fields) (string, error) {
	r.calls = append(r.calls, call{Op: "insert", Kind: kind, Parent: parentID, Fields: fields.Clone()})
	if err := r.write(); err != nil {
		return "", err
	}
	r.seq++
	id := fmt.Sprintf("%s-%d", kind, r.seq)
	r.records[id] = domain.Record{ID: id, Kind: kind, ParentID: parentID, Fields: fields.Clone()}
	r.order = append(r.order, id)
	r.calls[len(r.calls)-1].ID = id
	return id, nil
}

func (r *recordingRepo) Update(_ context.Context, kind domain.EntityKind, id string, fields domain.Fields) error {
	r.calls = append(r.calls, call{Op: "update", Kind: kind, ID: id, Fields: fields.Clone()})
	if err := r.write(); err != nil {
		return err
	}
	rec, ok := r.records[id]
	if !ok || rec.Kind != kind {
		return domain.ErrNotFound{Kind: kind, ID: id}
	}
	rec.Fields = fields.Clone()
	r.records[id] = rec
	return nil
}

func (r *recordingRepo) DeleteWhere(_ context.Context, kind domain.EntityKind, parentID string) error {
	r.calls = append(r.calls, call{Op: "delete", Kind: kind, Parent: parentID})
	if err := r.write(); err != nil {
		return err
	}
	for _, id := range r.order {
		rec, ok := r.records[id]
		if ok && rec.Kind == kind && rec.ParentID == parentID {
			r.cascade(id)
		}
	}
	return nil
}

func (r *recordingRepo) cascade(id string) {
	delete(r.records, id)
	for _, child := range r.order {
		if rec, ok := r.records[child]; ok && rec.ParentID == id {
			r.cascade(child)
		}
	}
}

func (r *recordingRepo) FindOne(_ context.Context, kind domain.EntityKind, id string) (domain.Record, bool, error) {
	if r.readErr != nil {
		return domain.Record{}, false, r.readErr
	}
	rec, ok := r.records[id]
	if !ok || rec.Kind != kind {
		return domain.Record{}, false, nil
	}
	return rec, true, nil
}

func (r *recordingRepo) FindChildren(_ context.Context, kind domain.EntityKind, parentID string) ([]domain.Record, error) {
	if r.readErr != nil {
		return nil, r.readErr
	}
	var out []domain.Record
	for _, id := range r.order {
		if rec, ok := r.records[id]; ok && rec.Kind == kind && rec.ParentID == parentID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// count returns the number of live records of kind.
func (r *recordingRepo) count(kind domain.EntityKind) int {
	n := 0
	for _, rec := range r.records {
		if rec.Kind == kind {
			n++
		}
	}
	return n
}

// trace renders the calls as "op kind" lines.
func (r *recordingRepo) trace() []string {
	out := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, c.Op+" "+string(c.Kind))
	}
	return out
}

// sequentialAllocator hands out predictable local identifiers.
func sequentialAllocator() *Allocator {
	n := 0
	return &Allocator{newFn: func() (uuid.UUID, error) {
		n++
		var id uuid.UUID
		id[14] = byte(n >> 8)
		id[15] = byte(n)
		return id, nil
	}}
}

// completeFixedTree returns a fixed report that passes every step.
func completeFixedTree(t *testing.T) *Tree {
	t.Helper()
	tree := NewTree(domain.VariantFixed, sequentialAllocator())
	mustDo(t, tree.UpdateIntervention(func(in *domain.Intervention) error {
		in.Date = "2024-03-12"
		in.StartTime = "08:00"
		in.EndTime = "11:30"
		in.Technician = "tech-1"
		in.Types = []string{"maintenance"}
		in.ClientID = "client-1"
		in.SiteID = "site-1"
		return nil
	}))
	mustDo(t, tree.UpdateUnit(0, func(u *domain.Unit) error {
		u.Make = "Dräger"
		u.Model = "Regard 7000"
		u.SerialNumber = "SN-1"
		return nil
	}))
	return tree
}

func mustDo(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// mustIndex checks the (index, error) pair of an Add call:
// mustIndex(t)(tree.AddUnit(kind)).
func mustIndex(t *testing.T) func(int, error) int {
	t.Helper()
	return func(i int, err error) int {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return i
	}
}

func joinTrace(lines []string) string { return strings.Join(lines, "\n") }
