package report

import (
	"context"
	"errors"
	"time"

	"gasreport/internal/blob"
	"gasreport/pkg/domain"
)

// Service opens editing sessions over one repository and blob store.
type Service struct {
	repo      domain.Repository
	blobs     blob.Store
	directory domain.Directory
	validator *Validator
	alloc     *Allocator
	logger    Logger
	metrics   MetricsRecorder
	now       func() time.Time
}

// NewService constructs a Service. blobs may be nil when photos are not used.
func NewService(repo domain.Repository, blobs blob.Store, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		blobs:     blobs,
		validator: NewValidator(),
		alloc:     NewAllocator(),
		logger:    noopLogger{},
		metrics:   noopMetrics{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartNewReport opens a session on an empty report of variant.
func (s *Service) StartNewReport(variant domain.Variant) *Session {
	tree := NewTree(variant, s.alloc)
	s.logger.Debug("report session started", "variant", string(tree.Variant()), "id", tree.ID())
	return s.session(tree)
}

// StartEditReport hydrates the persisted report id and opens a session on
// it. The wizard starts on the info step.
func (s *Service) StartEditReport(ctx context.Context, variant domain.Variant, id string) (*Session, error) {
	start := s.now()
	tree, err := Load(ctx, s.repo, variant, id, s.alloc)
	s.metrics.Observe(ctx, "hydrate", err == nil, s.now().Sub(start))
	if err != nil {
		s.logger.Error("report hydration failed", "id", id, "variant", string(variant), "error", err)
		return nil, err
	}
	s.logger.Debug("report session started", "variant", string(variant), "id", id)
	return s.session(tree), nil
}

func (s *Service) session(tree *Tree) *Session {
	rec := NewReconciler(s.repo, s.blobs, s.logger, s.metrics)
	rec.now = s.now
	return &Session{
		wizard:     NewWizard(tree, s.validator),
		reconciler: rec,
		directory:  s.directory,
	}
}

// Session is one single-editor pass over a report: a wizard plus the
// persistence state of its tree.
type Session struct {
	wizard     *Wizard
	reconciler *Reconciler
	directory  domain.Directory
	// partial is the root written by a failed create or duplicate save.
	partial string
}

// Wizard returns the step machine of the session.
func (s *Session) Wizard() *Wizard { return s.wizard }

// Tree returns the edited tree.
func (s *Session) Tree() *Tree { return s.wizard.Tree() }

// Save persists the tree. It is only allowed from the conclusion step. When
// an earlier create or duplicate save of this session failed after writing
// the root, the save runs as an in-place update of that root instead, which
// replaces whatever children the failed attempt left behind.
func (s *Session) Save(ctx context.Context, mode domain.SaveMode) (Outcome, error) {
	if !s.wizard.CanSave() {
		return Outcome{Mode: mode}, domain.ErrNotAtConclusion
	}
	tree := s.wizard.Tree()
	effective := mode
	if mode != domain.SaveUpdateInPlace && s.partial != "" && s.partial == tree.ID() {
		effective = domain.SaveUpdateInPlace
	}
	out, err := s.reconciler.Save(ctx, tree, effective)
	if err != nil {
		var wf domain.RepositoryWriteFailure
		if effective != domain.SaveUpdateInPlace && out.InterventionID != "" && errors.As(err, &wf) {
			s.partial = out.InterventionID
		}
		return out, err
	}
	s.partial = ""
	return out, nil
}

// ClientOptions lists selectable clients.
func (s *Session) ClientOptions(ctx context.Context) ([]domain.Client, error) {
	if s.directory == nil {
		return nil, nil
	}
	return s.directory.ListClients(ctx)
}

// SiteOptions lists the sites of the selected client; none until a client
// is selected.
func (s *Session) SiteOptions(ctx context.Context) ([]domain.Site, error) {
	client := s.wizard.Tree().root.ClientID
	if s.directory == nil || client == "" {
		return nil, nil
	}
	return s.directory.ListSites(ctx, client)
}

// TechnicianOptions lists assignable technicians.
func (s *Session) TechnicianOptions(ctx context.Context) ([]domain.Technician, error) {
	if s.directory == nil {
		return nil, nil
	}
	return s.directory.ListTechnicians(ctx)
}
