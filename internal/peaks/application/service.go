package application

import (
	"context"
	"errors"
	"log"
	"time"

	"energywatch/internal/observability/metrics"
	peaks "energywatch/internal/peaks/domain"
)

// DayRecomputer rebuilds a full day's peak from source profiles. The demand
// profile service implements it; the tracker calls it when an incremental
// observation arrives for a day it has never seen, since a single current
// sample cannot prove the day's intraday maximum has not already passed.
type DayRecomputer interface {
	RecomputeDay(ctx context.Context, peakType string, day time.Time) error
}

// Service maintains peak-so-far records and summary windows.
type Service struct {
	repo       peaks.Repository
	recomputer DayRecomputer
	clock      func() time.Time
	logger     *log.Logger
}

// NewService constructs a peak service.
func NewService(repo peaks.Repository, logger *log.Logger, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, errors.New("peak service: nil repository")
	}
	service := &Service{repo: repo, clock: time.Now, logger: logger}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Option configures the service.
type Option func(*Service)

// WithClock overrides the wall clock, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// BindRecomputer attaches the full-day recompute collaborator. Wired after
// construction because the recomputer writes back through this service.
func (s *Service) BindRecomputer(recomputer DayRecomputer) {
	s.recomputer = recomputer
}

// Observe applies one incremental sample for the sample's own day.
//
// When a record for the day already exists, the sample is applied through a
// conditional upsert: it raises the record only if greater or equal, with
// ties refreshing the timestamp. When no record exists yet the sample is NOT
// trusted as the day's peak; a full-day recompute runs instead.
func (s *Service) Observe(ctx context.Context, peakType string, at time.Time, value float64) error {
	day := peaks.Day(at)
	_, err := s.repo.MaxSince(ctx, peakType, day)
	if errors.Is(err, peaks.ErrNotFound) {
		if s.recomputer == nil {
			return peaks.ErrNotFound
		}
		if s.logger != nil {
			s.logger.Printf("peaks: no %s record for %s, recomputing day", peakType, day.Format("2006-01-02"))
		}
		return s.recomputer.RecomputeDay(ctx, peakType, day)
	}
	if err != nil {
		return err
	}
	if err := s.repo.UpsertIfGreater(ctx, peaks.Record{
		Type:  peakType,
		Date:  day,
		At:    at,
		Value: value,
	}); err != nil {
		return err
	}
	metrics.IncPeakUpsert("observe")
	return nil
}

// Commit stores a recomputed whole-day maximum, replacing whatever the day
// held before. Only called once the full day's series has been folded.
func (s *Service) Commit(ctx context.Context, peakType string, at time.Time, value float64) error {
	if err := s.repo.Overwrite(ctx, peaks.Record{
		Type:  peakType,
		Date:  peaks.Day(at),
		At:    at,
		Value: value,
	}); err != nil {
		return err
	}
	metrics.IncPeakUpsert("commit")
	return nil
}

// Summary returns the maxima over today, month-to-date, year-to-date and
// all-time. Windows with no records are omitted.
func (s *Service) Summary(ctx context.Context, peakType string) ([]peaks.WindowPeak, error) {
	now := s.clock()
	today := peaks.Day(now)
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	firstOfYear := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())

	windows := []struct {
		name  string
		since time.Time
	}{
		{peaks.WindowToday, today},
		{peaks.WindowMonth, firstOfMonth},
		{peaks.WindowYear, firstOfYear},
		{peaks.WindowTotal, peaks.AllTimeFloor},
	}

	summary := make([]peaks.WindowPeak, 0, len(windows))
	for _, window := range windows {
		record, err := s.repo.MaxSince(ctx, peakType, window.since)
		if errors.Is(err, peaks.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		summary = append(summary, peaks.WindowPeak{
			Window: window.name,
			Value:  record.Value,
			At:     record.At,
		})
	}
	return summary, nil
}
