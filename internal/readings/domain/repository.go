package readings

import (
	"context"
	"time"
)

// TaggedPoint is one profile sample carrying its secondary tag.
type TaggedPoint struct {
	Tag   string
	At    time.Time
	Value float64
}

// ProfilePoint is one profile sample.
type ProfilePoint struct {
	At    time.Time
	Value float64
}

// Store persists readings and answers override-merged lookups.
//
// LatestValue and LatestValueByZone use the month-key query shape (one
// override batch per calendar month); Profile and ProfileByValueTag use
// exact data timestamps and resolve the latest submission independently per
// timestamp, since partial corrections can differ interval to interval.
type Store interface {
	Insert(ctx context.Context, rows []Reading) error
	LatestValue(ctx context.Context, category string, dataAt time.Time) (float64, error)
	LatestValueByZone(ctx context.Context, category string, dataAt time.Time) (map[string]float64, error)
	Profile(ctx context.Context, category string, from, to time.Time, interval time.Duration) ([]ProfilePoint, error)
	ProfileByValueTag(ctx context.Context, category string, from, to time.Time, interval time.Duration) ([]TaggedPoint, error)
}
