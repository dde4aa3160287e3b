package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	readings "energywatch/internal/readings/domain"
)

// ReadingStore is an in-memory store for demo/testing.
type ReadingStore struct {
	mu   sync.RWMutex
	rows []readings.Reading
}

// NewReadingStore constructs a store.
func NewReadingStore() *ReadingStore {
	return &ReadingStore{}
}

// Insert appends reading rows.
func (s *ReadingStore) Insert(ctx context.Context, rows []readings.Reading) error {
	_ = ctx
	for _, row := range rows {
		if row.Category == "" || row.DataAt.IsZero() || row.SubmitAt.IsZero() {
			return readings.ErrInvalidReading
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
	return nil
}

// LatestValue resolves the newest submission batch for the month-key.
func (s *ReadingStore) LatestValue(ctx context.Context, category string, dataAt time.Time) (float64, error) {
	_ = ctx
	_, sum, ok := readings.LatestSubmission(s.match(category, readings.MonthKey(dataAt)))
	if !ok {
		return 0, readings.ErrNoData
	}
	return sum, nil
}

// LatestValueByZone resolves the newest submission batch grouped by zone.
func (s *ReadingStore) LatestValueByZone(ctx context.Context, category string, dataAt time.Time) (map[string]float64, error) {
	_ = ctx
	grouped, ok := readings.LatestSubmissionByZone(s.match(category, readings.MonthKey(dataAt)))
	if !ok {
		return nil, readings.ErrNoData
	}
	return grouped, nil
}

// Profile resolves the latest submission independently per timestamp.
func (s *ReadingStore) Profile(ctx context.Context, category string, from, to time.Time, interval time.Duration) ([]readings.ProfilePoint, error) {
	_ = ctx
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	points := make([]readings.ProfilePoint, 0)
	for at := from; !at.After(to); at = at.Add(interval) {
		_, sum, ok := readings.LatestSubmission(s.match(category, at))
		if ok {
			points = append(points, readings.ProfilePoint{At: at, Value: sum})
		}
	}
	return points, nil
}

// ProfileByValueTag resolves per-timestamp latest submissions grouped by tag.
func (s *ReadingStore) ProfileByValueTag(ctx context.Context, category string, from, to time.Time, interval time.Duration) ([]readings.TaggedPoint, error) {
	_ = ctx
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	points := make([]readings.TaggedPoint, 0)
	for at := from; !at.After(to); at = at.Add(interval) {
		tagged, ok := readings.LatestSubmissionByValueTag(s.match(category, at))
		if !ok {
			continue
		}
		sort.Slice(tagged, func(i, j int) bool { return tagged[i].Tag < tagged[j].Tag })
		for _, tv := range tagged {
			points = append(points, readings.TaggedPoint{Tag: tv.Tag, At: at, Value: tv.Value})
		}
	}
	return points, nil
}

func (s *ReadingStore) match(category string, dataAt time.Time) []readings.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]readings.Reading, 0)
	for _, row := range s.rows {
		if row.Category == category && row.DataAt.Equal(dataAt) {
			matched = append(matched, row)
		}
	}
	return matched
}
