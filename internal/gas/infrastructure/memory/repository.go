package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	gas "energywatch/internal/gas/domain"
)

// TankStore is an in-memory strapping table store for tests and local runs.
type TankStore struct {
	mu   sync.RWMutex
	rows map[int]gas.Breakpoint
}

// NewTankStore constructs an empty store.
func NewTankStore() *TankStore {
	return &TankStore{rows: make(map[int]gas.Breakpoint)}
}

// UpsertBreakpoints replaces rows keyed by level.
func (s *TankStore) UpsertBreakpoints(ctx context.Context, rows []gas.Breakpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		s.rows[row.LevelCM] = row
	}
	return nil
}

// Bracket returns the rows at floor and ceiling of a fractional level.
func (s *TankStore) Bracket(ctx context.Context, levelCM float64) (gas.Breakpoint, gas.Breakpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	floorCM, ceilCM := gas.BracketLevels(levelCM)
	floor, ok := s.rows[floorCM]
	if !ok {
		return gas.Breakpoint{}, gas.Breakpoint{}, gas.ErrNoBreakpoint
	}
	if ceilCM == floorCM {
		return floor, floor, nil
	}
	ceil, ok := s.rows[ceilCM]
	if !ok {
		return gas.Breakpoint{}, gas.Breakpoint{}, gas.ErrNoBreakpoint
	}
	return floor, ceil, nil
}

type eodKey struct {
	tag  string
	date time.Time
}

// EODStore is an in-memory end-of-day value store for tests and local runs.
type EODStore struct {
	mu     sync.RWMutex
	values map[eodKey]gas.EODValue
}

// NewEODStore constructs an empty store.
func NewEODStore() *EODStore {
	return &EODStore{values: make(map[eodKey]gas.EODValue)}
}

// Upsert writes one figure, replacing any earlier value for the (tag, date).
func (s *EODStore) Upsert(ctx context.Context, value gas.EODValue) error {
	if err := value.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	value.Date = day(value.Date)
	s.values[eodKey{tag: value.Tag, date: value.Date}] = value
	return nil
}

// Range returns one tag's rows between two dates inclusive, oldest first.
func (s *EODStore) Range(ctx context.Context, tag string, from, to time.Time) ([]gas.EODValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from, to = day(from), day(to)
	values := make([]gas.EODValue, 0)
	for key, value := range s.values {
		if key.tag != tag || key.date.Before(from) || key.date.After(to) {
			continue
		}
		values = append(values, value)
	}
	sort.Slice(values, func(i, j int) bool { return values[i].Date.Before(values[j].Date) })
	return values, nil
}

func day(at time.Time) time.Time {
	return time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
}
