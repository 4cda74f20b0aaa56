// Package cli is the gasreport command tree. Each invocation loads the
// configuration, opens the configured repository and blob store, and drives
// the report engine headlessly from YAML drafts.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"gasreport/internal/blob"
	"gasreport/internal/config"
	"gasreport/internal/persistence"
	"gasreport/internal/report"
)

// app holds what one command invocation opened.
type app struct {
	configPath  string
	metricsFile string

	cfg       config.Config
	logger    *slog.Logger
	store     persistence.Store
	blobs     blob.Store
	directory *persistence.Directory
	registry  *prometheus.Registry
	service   *report.Service
}

func (a *app) open(ctx context.Context, stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(cfg.Log, stderr)

	store, err := persistence.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	a.store = store
	blobs, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	a.blobs = blobs

	a.registry = prometheus.NewRegistry()
	metrics, err := report.NewPrometheusRecorder(a.registry)
	if err != nil {
		return err
	}
	a.directory = persistence.NewDirectory(store)
	a.service = report.NewService(store, blobs,
		report.WithLogger(a.logger),
		report.WithMetrics(metrics),
		report.WithDirectory(a.directory),
	)
	a.logger.Debug("gasreport ready",
		"storage", cfg.Storage.Driver,
		"blob", string(blobs.Driver()))
	return nil
}

// close flushes metrics and releases the repository.
func (a *app) close() error {
	var errs []error
	if a.metricsFile != "" && a.registry != nil {
		if err := prometheus.WriteToTextfile(a.metricsFile, a.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
		a.store = nil
	}
	return errors.Join(errs...)
}

func newLogger(cfg config.Log, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if cerr := a.close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}
