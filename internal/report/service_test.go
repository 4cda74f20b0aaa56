package report

import (
	"context"
	"errors"
	"testing"

	"gasreport/internal/blob"
	"gasreport/pkg/domain"
)

type stubDirectory struct{}

func (stubDirectory) ListClients(context.Context) ([]domain.Client, error) {
	return []domain.Client{{ID: "c1", Name: "Acme"}}, nil
}

func (stubDirectory) ListSites(_ context.Context, clientID string) ([]domain.Site, error) {
	return []domain.Site{{ID: clientID + "-s1", ClientID: clientID, Name: "Plant"}}, nil
}

func (stubDirectory) ListTechnicians(context.Context) ([]domain.Technician, error) {
	return []domain.Technician{{ID: "t1", Name: "Sam"}}, nil
}

// fillAndAdvance completes a fixed session through the wizard.
func fillAndAdvance(t *testing.T, s *Session) {
	t.Helper()
	w := s.Wizard()
	mustDo(t, w.Tree().UpdateIntervention(func(in *domain.Intervention) error {
		in.Date, in.StartTime, in.EndTime = "2024-05-01", "09:00", "10:00"
		in.Technician = "t1"
		in.Types = []string{"maintenance"}
		return nil
	}))
	mustDo(t, w.Next())
	mustDo(t, w.SelectClient("c1"))
	mustDo(t, w.SelectSite("c1-s1"))
	mustDo(t, w.Next())
	mustDo(t, w.Tree().UpdateUnit(0, func(u *domain.Unit) error {
		u.Make, u.Model, u.SerialNumber = "Dräger", "Regard", "SN"
		return nil
	}))
	g := mustIndex(t)(w.Tree().AddGasDetector(0))
	mustDo(t, w.Tree().UpdateGasDetector(0, g, func(d *domain.GasDetector) error {
		d.Make = "Oldham"
		return nil
	}))
	mustDo(t, w.Next())
	if !w.CanSave() {
		t.Fatalf("expected conclusion step, got %s", w.Step())
	}
}

func TestSessionSaveRequiresConclusion(t *testing.T) {
	svc := NewService(newRecordingRepo(), nil)
	s := svc.StartNewReport(domain.VariantFixed)
	if _, err := s.Save(context.Background(), domain.SaveCreateNew); !errors.Is(err, domain.ErrNotAtConclusion) {
		t.Fatalf("expected ErrNotAtConclusion, got %v", err)
	}
}

func TestSessionCreateThenEdit(t *testing.T) {
	ctx := context.Background()
	repo := newRecordingRepo()
	svc := NewService(repo, blob.NewMemory(), WithDirectory(stubDirectory{}))
	s := svc.StartNewReport(domain.VariantFixed)
	fillAndAdvance(t, s)
	out, err := s.Save(ctx, domain.SaveCreateNew)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	edit, err := svc.StartEditReport(ctx, domain.VariantFixed, out.InterventionID)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edit.Wizard().Step() != domain.StepInfo {
		t.Fatalf("edit sessions start on info")
	}
	for edit.Wizard().Step() != domain.StepConclusion {
		mustDo(t, edit.Wizard().Next())
	}
	again, err := edit.Save(ctx, domain.SaveUpdateInPlace)
	if err != nil || again.InterventionID != out.InterventionID {
		t.Fatalf("update: %+v %v", again, err)
	}
	if repo.count(domain.KindIntervention) != 1 || repo.count(domain.KindGasDetector) != 1 {
		t.Fatalf("update duplicated records")
	}
}

func TestSessionRetryAfterPartialCreate(t *testing.T) {
	ctx := context.Background()
	repo := newRecordingRepo()
	svc := NewService(repo, nil)
	s := svc.StartNewReport(domain.VariantFixed)
	fillAndAdvance(t, s)

	repo.failAt = 3
	out, err := s.Save(ctx, domain.SaveCreateNew)
	var wf domain.RepositoryWriteFailure
	if !errors.As(err, &wf) || out.InterventionID == "" {
		t.Fatalf("expected partial failure, got %+v %v", out, err)
	}

	repo.failAt = 0
	repo.calls = nil
	retry, err := s.Save(ctx, domain.SaveCreateNew)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if retry.Mode != domain.SaveUpdateInPlace || retry.InterventionID != out.InterventionID {
		t.Fatalf("retry should update the partial root: %+v", retry)
	}
	if repo.calls[0].Op != "update" {
		t.Fatalf("retry started with %s", repo.calls[0].Op)
	}
	if repo.count(domain.KindIntervention) != 1 || repo.count(domain.KindUnit) != 1 || repo.count(domain.KindGasDetector) != 1 {
		t.Fatalf("retry did not heal the partial report")
	}
}

func TestSessionDirectoryOptions(t *testing.T) {
	ctx := context.Background()
	s := NewService(newRecordingRepo(), nil, WithDirectory(stubDirectory{})).StartNewReport(domain.VariantFixed)
	sites, err := s.SiteOptions(ctx)
	if err != nil || sites != nil {
		t.Fatalf("no sites before a client is selected: %v %v", sites, err)
	}
	clients, _ := s.ClientOptions(ctx)
	mustDo(t, s.Wizard().SelectClient(clients[0].ID))
	sites, _ = s.SiteOptions(ctx)
	if len(sites) != 1 || sites[0].ClientID != "c1" {
		t.Fatalf("sites not scoped to client: %+v", sites)
	}
	techs, _ := s.TechnicianOptions(ctx)
	if len(techs) != 1 {
		t.Fatalf("expected technicians")
	}

	bare := NewService(newRecordingRepo(), nil).StartNewReport(domain.VariantFixed)
	if c, err := bare.ClientOptions(ctx); c != nil || err != nil {
		t.Fatalf("no directory means no options")
	}
}

func TestStartEditReportPropagatesReadFailure(t *testing.T) {
	repo := newRecordingRepo()
	repo.readErr = errors.New("offline")
	_, err := NewService(repo, nil).StartEditReport(context.Background(), domain.VariantFixed, "x")
	var rf domain.RepositoryReadFailure
	if !errors.As(err, &rf) {
		t.Fatalf("expected read failure, got %v", err)
	}
}

func TestSessionInspectionScenario(t *testing.T) {
	ctx := context.Background()
	repo := newRecordingRepo()
	svc := NewService(repo, nil, WithDirectory(stubDirectory{}))
	s := svc.StartNewReport(domain.VariantFixed)
	w := s.Wizard()
	mustDo(t, w.Tree().UpdateIntervention(func(in *domain.Intervention) error {
		in.Date, in.StartTime, in.EndTime = "2024-03-01", "08:00", "10:00"
		in.Technician = "J. Martin"
		in.Types = []string{"Maintenance préventive"}
		return nil
	}))
	mustDo(t, w.Next())
	mustDo(t, w.SelectClient("c1"))
	mustDo(t, w.SelectSite("c1-s1"))
	mustDo(t, w.Next())
	mustDo(t, w.Tree().UpdateUnit(0, func(u *domain.Unit) error {
		u.Make, u.Model, u.SerialNumber = "Oldham", "OLCT 10", "SN123"
		return nil
	}))
	g := mustIndex(t)(w.Tree().AddGasDetector(0))
	mustDo(t, w.Tree().UpdateGasDetector(0, g, func(d *domain.GasDetector) error {
		d.GasType = "CO"
		return nil
	}))
	th := mustIndex(t)(w.Tree().AddThreshold(0, g))
	mustDo(t, w.Tree().UpdateThreshold(0, g, th, func(a *domain.AlarmThreshold) error {
		a.Value, a.Unit = "50", "ppm"
		return nil
	}))
	mustDo(t, w.Next())

	out, err := s.Save(ctx, domain.SaveCreateNew)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	want := []string{
		"insert intervention",
		"insert unit",
		"insert gas_detector",
		"insert alarm_threshold",
	}
	if joinTrace(repo.trace()) != joinTrace(want) {
		t.Fatalf("unexpected calls:\n%s", joinTrace(repo.trace()))
	}
	for i := 1; i < len(repo.calls); i++ {
		if repo.calls[i].Parent != repo.calls[i-1].ID {
			t.Fatalf("%s does not reference the preceding %s", repo.calls[i].Kind, repo.calls[i-1].Kind)
		}
	}
	if out.InterventionID != repo.calls[0].ID {
		t.Fatalf("returned id %q, intervention insert assigned %q", out.InterventionID, repo.calls[0].ID)
	}

	edit, err := svc.StartEditReport(ctx, domain.VariantFixed, out.InterventionID)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	mustDo(t, edit.Tree().UpdateThreshold(0, 0, 0, func(a *domain.AlarmThreshold) error {
		a.Value = "75"
		return nil
	}))
	for edit.Wizard().Step() != domain.StepConclusion {
		mustDo(t, edit.Wizard().Next())
	}
	repo.calls = nil
	if _, err := edit.Save(ctx, domain.SaveUpdateInPlace); err != nil {
		t.Fatalf("update: %v", err)
	}
	deleted, thresholds := false, 0
	for _, c := range repo.calls {
		switch c.Op {
		case "delete":
			if c.Parent == out.InterventionID {
				deleted = true
			}
		case "insert":
			if !deleted {
				t.Fatalf("%s inserted before the children of the root were cleared", c.Kind)
			}
			if c.Kind == domain.KindAlarmThreshold {
				thresholds++
				if c.Fields["value"] != 75.0 {
					t.Fatalf("threshold value %v, want 75", c.Fields["value"])
				}
			}
		}
	}
	if thresholds != 1 || repo.count(domain.KindAlarmThreshold) != 1 {
		t.Fatalf("expected exactly one threshold, inserted %d, stored %d", thresholds, repo.count(domain.KindAlarmThreshold))
	}
}
