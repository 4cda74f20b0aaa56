package report

import (
	"time"

	"gasreport/pkg/domain"
)

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithClock overrides the time source used for durations.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithAllocator overrides the local identifier allocator.
func WithAllocator(a *Allocator) Option {
	return func(s *Service) {
		if a != nil {
			s.alloc = a
		}
	}
}

// WithDirectory supplies the client/site/technician lookups.
func WithDirectory(d domain.Directory) Option {
	return func(s *Service) { s.directory = d }
}
