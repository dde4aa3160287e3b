package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	readings "energywatch/internal/readings/domain"
)

const defaultReadingsTable = "override_readings"

// ReadingStore is a Postgres implementation of the readings store.
type ReadingStore struct {
	db    *sql.DB
	table string
}

// NewReadingStore constructs a store with default table name.
func NewReadingStore(db *sql.DB, opts ...Option) *ReadingStore {
	store := &ReadingStore{db: db, table: defaultReadingsTable}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Option configures the store.
type Option func(*ReadingStore)

// WithTable overrides the default table name.
func WithTable(table string) Option {
	return func(store *ReadingStore) {
		if table != "" {
			store.table = table
		}
	}
}

// Insert appends reading rows. Rows are never updated in place; a newer
// submission batch supersedes older ones at query time.
func (s *ReadingStore) Insert(ctx context.Context, rows []readings.Reading) error {
	if s == nil || s.db == nil {
		return errors.New("reading store: nil db")
	}
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	category,
	data_timestamp,
	submit_timestamp,
	zone,
	province,
	value_tag,
	value
) VALUES (
	$1, $2, $3, $4, $5, $6, $7
)`, s.table)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		if row.Category == "" || row.DataAt.IsZero() || row.SubmitAt.IsZero() {
			_ = tx.Rollback()
			return readings.ErrInvalidReading
		}
		if _, err := stmt.ExecContext(
			ctx,
			row.Category,
			row.DataAt,
			row.SubmitAt,
			row.Zone,
			row.Province,
			row.ValueTag,
			row.Value,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// LatestValue returns the summed value of the newest submission batch for
// the month-key of dataAt.
func (s *ReadingStore) LatestValue(ctx context.Context, category string, dataAt time.Time) (float64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("reading store: nil db")
	}

	query := fmt.Sprintf(`
SELECT SUM(value)
FROM %s
WHERE category = $1
	AND data_timestamp = $2
	AND submit_timestamp = (
		SELECT MAX(submit_timestamp)
		FROM %s
		WHERE category = $1 AND data_timestamp = $2
	)`, s.table, s.table)

	var sum sql.NullFloat64
	err := s.db.QueryRowContext(ctx, query, category, readings.MonthKey(dataAt)).Scan(&sum)
	if err != nil {
		return 0, err
	}
	if !sum.Valid {
		return 0, readings.ErrNoData
	}
	return sum.Float64, nil
}

// LatestValueByZone is LatestValue grouped by zone.
func (s *ReadingStore) LatestValueByZone(ctx context.Context, category string, dataAt time.Time) (map[string]float64, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("reading store: nil db")
	}

	query := fmt.Sprintf(`
SELECT zone, SUM(value)
FROM %s
WHERE category = $1
	AND data_timestamp = $2
	AND submit_timestamp = (
		SELECT MAX(submit_timestamp)
		FROM %s
		WHERE category = $1 AND data_timestamp = $2
	)
GROUP BY zone`, s.table, s.table)

	rows, err := s.db.QueryContext(ctx, query, category, readings.MonthKey(dataAt))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grouped := make(map[string]float64)
	for rows.Next() {
		var zone string
		var value float64
		if err := rows.Scan(&zone, &value); err != nil {
			return nil, err
		}
		grouped[zone] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(grouped) == 0 {
		return nil, readings.ErrNoData
	}
	return grouped, nil
}

// Profile returns one merged sample per data timestamp in [from, to] at the
// requested interval. The latest submission is resolved per timestamp;
// timestamps with no readings are omitted, not zero-filled.
func (s *ReadingStore) Profile(ctx context.Context, category string, from, to time.Time, interval time.Duration) ([]readings.ProfilePoint, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("reading store: nil db")
	}

	query := fmt.Sprintf(`
SELECT r.data_timestamp, SUM(r.value)
FROM %s r
JOIN (
	SELECT data_timestamp, MAX(submit_timestamp) AS latest
	FROM %s
	WHERE category = $1 AND data_timestamp >= $2 AND data_timestamp <= $3
	GROUP BY data_timestamp
) latest ON r.data_timestamp = latest.data_timestamp
	AND r.submit_timestamp = latest.latest
WHERE r.category = $1
GROUP BY r.data_timestamp
ORDER BY r.data_timestamp ASC`, s.table, s.table)

	rows, err := s.db.QueryContext(ctx, query, category, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := make([]readings.ProfilePoint, 0)
	for rows.Next() {
		var point readings.ProfilePoint
		if err := rows.Scan(&point.At, &point.Value); err != nil {
			return nil, err
		}
		if onInterval(point.At, from, interval) {
			points = append(points, point)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return points, nil
}

// ProfileByValueTag is Profile grouped by value tag per timestamp.
func (s *ReadingStore) ProfileByValueTag(ctx context.Context, category string, from, to time.Time, interval time.Duration) ([]readings.TaggedPoint, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("reading store: nil db")
	}

	query := fmt.Sprintf(`
SELECT r.value_tag, r.data_timestamp, SUM(r.value)
FROM %s r
JOIN (
	SELECT data_timestamp, MAX(submit_timestamp) AS latest
	FROM %s
	WHERE category = $1 AND data_timestamp >= $2 AND data_timestamp <= $3
	GROUP BY data_timestamp
) latest ON r.data_timestamp = latest.data_timestamp
	AND r.submit_timestamp = latest.latest
WHERE r.category = $1
GROUP BY r.value_tag, r.data_timestamp
ORDER BY r.data_timestamp ASC, r.value_tag ASC`, s.table, s.table)

	rows, err := s.db.QueryContext(ctx, query, category, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := make([]readings.TaggedPoint, 0)
	for rows.Next() {
		var point readings.TaggedPoint
		if err := rows.Scan(&point.Tag, &point.At, &point.Value); err != nil {
			return nil, err
		}
		if onInterval(point.At, from, interval) {
			points = append(points, point)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return points, nil
}

func onInterval(at, from time.Time, interval time.Duration) bool {
	if interval <= 0 {
		return true
	}
	diff := at.Sub(from)
	return diff >= 0 && diff%interval == 0
}
