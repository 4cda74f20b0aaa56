package report

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"gasreport/pkg/domain"
)

func TestPrometheusRecorderCountsSaves(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusRecorder(reg)
	if err != nil {
		t.Fatalf("recorder: %v", err)
	}
	repo := newRecordingRepo()
	svc := NewService(repo, nil, WithMetrics(rec))
	s := svc.StartNewReport(domain.VariantFixed)
	fillAndAdvance(t, s)
	if _, err := s.Save(context.Background(), domain.SaveCreateNew); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := testutil.ToFloat64(rec.total.WithLabelValues("save.create_new", "success")); got != 1 {
		t.Fatalf("expected one successful save, got %v", got)
	}
	if got := testutil.ToFloat64(rec.total.WithLabelValues("write.insert.gas_detector", "success")); got != 1 {
		t.Fatalf("expected one gas detector insert, got %v", got)
	}
	if _, err := NewPrometheusRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	rec.Observe(context.Background(), "", true, time.Second)
}

func TestNoopCollaborators(_ *testing.T) {
	logger := noopLogger{}
	logger.Debug("debug", "k", "v")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")
	noopMetrics{}.Observe(context.Background(), "x", false, 0)
}
