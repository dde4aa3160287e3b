package peaks

import (
	"context"
	"errors"
	"time"
)

// Record is the running peak for one (type, calendar day). Exactly one
// record exists per key; it is mutated in place and never deleted here.
type Record struct {
	Type  string    `json:"peak_type"`
	Date  time.Time `json:"peak_date"`
	At    time.Time `json:"peak_datetime"`
	Value float64   `json:"value"`
}

// WindowPeak is the maximum over one summary window.
type WindowPeak struct {
	Window string    `json:"tag"`
	Value  float64   `json:"value"`
	At     time.Time `json:"timestamp"`
}

// Summary windows, nested: today ⊂ month ⊂ year ⊂ total.
const (
	WindowToday = "today"
	WindowMonth = "month"
	WindowYear  = "year"
	WindowTotal = "total"
)

// AllTimeFloor bounds the all-time window; no peaks predate it.
var AllTimeFloor = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

var (
	// ErrNotFound indicates no record exists for the requested window.
	ErrNotFound = errors.New("peaks: record not found")
	// ErrInvalidRecord indicates a record failed basic validation.
	ErrInvalidRecord = errors.New("peaks: invalid record")
)

// Validate checks basic record invariants.
func (r Record) Validate() error {
	if r.Type == "" || r.Date.IsZero() || r.At.IsZero() {
		return ErrInvalidRecord
	}
	return nil
}

// Day normalizes a timestamp to its calendar date.
func Day(at time.Time) time.Time {
	return time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
}

// Repository persists peak records keyed uniquely on (type, date).
type Repository interface {
	// UpsertIfGreater creates the day's record or raises it. The update
	// applies only when the new value is greater than or equal to the
	// stored one, as a single atomic conditional statement; ties refresh
	// the timestamp to the most recent instant achieving the maximum.
	UpsertIfGreater(ctx context.Context, record Record) error
	// Overwrite unconditionally replaces the day's record. Used by the
	// full-day recompute path, which already knows the true day maximum.
	Overwrite(ctx context.Context, record Record) error
	// MaxSince returns the largest-valued record with date >= since.
	MaxSince(ctx context.Context, peakType string, since time.Time) (*Record, error)
}
