package memory

import (
	"context"
	"sync"
	"time"

	peaks "energywatch/internal/peaks/domain"
)

// PeakRepository is an in-memory repository for demo/testing.
type PeakRepository struct {
	mu   sync.RWMutex
	data map[string]peaks.Record
}

// NewPeakRepository constructs a repository.
func NewPeakRepository() *PeakRepository {
	return &PeakRepository{data: make(map[string]peaks.Record)}
}

// UpsertIfGreater inserts or conditionally raises the day's record.
func (r *PeakRepository) UpsertIfGreater(ctx context.Context, record peaks.Record) error {
	_ = ctx
	if err := record.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := recordKey(record.Type, record.Date)
	existing, ok := r.data[key]
	if ok && record.Value < existing.Value {
		return nil
	}
	record.Date = peaks.Day(record.Date)
	r.data[key] = record
	return nil
}

// Overwrite unconditionally replaces the day's record.
func (r *PeakRepository) Overwrite(ctx context.Context, record peaks.Record) error {
	_ = ctx
	if err := record.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	record.Date = peaks.Day(record.Date)
	r.data[recordKey(record.Type, record.Date)] = record
	return nil
}

// MaxSince returns the largest-valued record with date >= since.
func (r *PeakRepository) MaxSince(ctx context.Context, peakType string, since time.Time) (*peaks.Record, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	since = peaks.Day(since)
	var best *peaks.Record
	for _, record := range r.data {
		if record.Type != peakType || record.Date.Before(since) {
			continue
		}
		if best == nil || record.Value > best.Value {
			copied := record
			best = &copied
		}
	}
	if best == nil {
		return nil, peaks.ErrNotFound
	}
	return best, nil
}

func recordKey(peakType string, date time.Time) string {
	return peakType + "|" + peaks.Day(date).Format("2006-01-02")
}
