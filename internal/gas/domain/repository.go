package gas

import (
	"context"
	"time"
)

// TankStore persists the second terminal's strapping table.
type TankStore interface {
	UpsertBreakpoints(ctx context.Context, rows []Breakpoint) error
	// Bracket returns the strapping rows at floor(levelCM) and ceil(levelCM).
	// A missing row yields ErrNoBreakpoint.
	Bracket(ctx context.Context, levelCM float64) (Breakpoint, Breakpoint, error)
}

// EODStore persists end-of-day values, one row per (tag, date).
type EODStore interface {
	Upsert(ctx context.Context, value EODValue) error
	// Range returns the rows for one tag with from <= date <= to, ordered by
	// date ascending. Days with no row are simply absent.
	Range(ctx context.Context, tag string, from, to time.Time) ([]EODValue, error)
}
