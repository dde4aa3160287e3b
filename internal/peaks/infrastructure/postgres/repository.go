package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	peaks "energywatch/internal/peaks/domain"
)

const defaultPeaksTable = "peak_days"

// PeakRepository is a Postgres implementation of the peaks repository.
type PeakRepository struct {
	db    *sql.DB
	table string
}

// NewPeakRepository constructs a repository with default table name.
func NewPeakRepository(db *sql.DB, opts ...Option) *PeakRepository {
	repo := &PeakRepository{db: db, table: defaultPeaksTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Option configures the repository.
type Option func(*PeakRepository)

// WithTable overrides the default table name.
func WithTable(table string) Option {
	return func(repo *PeakRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// UpsertIfGreater inserts or conditionally raises the day's record. Two
// racing observers cannot lose an update: the comparison runs inside one
// conditional statement against the (peak_type, peak_date) unique index.
func (r *PeakRepository) UpsertIfGreater(ctx context.Context, record peaks.Record) error {
	return r.upsert(ctx, record, true)
}

// Overwrite unconditionally replaces the day's record.
func (r *PeakRepository) Overwrite(ctx context.Context, record peaks.Record) error {
	return r.upsert(ctx, record, false)
}

func (r *PeakRepository) upsert(ctx context.Context, record peaks.Record, conditional bool) error {
	if r == nil || r.db == nil {
		return errors.New("peak repo: nil db")
	}
	if err := record.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (peak_type, peak_date, peak_datetime, value)
VALUES ($1, $2, $3, $4)
ON CONFLICT (peak_type, peak_date)
DO UPDATE SET
	peak_datetime = EXCLUDED.peak_datetime,
	value = EXCLUDED.value`, r.table)
	if conditional {
		query += fmt.Sprintf(`
WHERE EXCLUDED.value >= %s.value`, r.table)
	}

	_, err := r.db.ExecContext(ctx, query, record.Type, peaks.Day(record.Date), record.At, record.Value)
	return err
}

// MaxSince returns the largest-valued record with date >= since.
func (r *PeakRepository) MaxSince(ctx context.Context, peakType string, since time.Time) (*peaks.Record, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("peak repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT peak_type, peak_date, peak_datetime, value
FROM %s
WHERE peak_type = $1 AND peak_date >= $2
ORDER BY value DESC
LIMIT 1`, r.table)

	record := peaks.Record{}
	err := r.db.QueryRowContext(ctx, query, peakType, peaks.Day(since)).Scan(
		&record.Type, &record.Date, &record.At, &record.Value,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, peaks.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
