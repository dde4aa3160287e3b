package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	gas "energywatch/internal/gas/domain"
)

const defaultEODTable = "gas_eod_values"

// EODStore is a Postgres implementation of the end-of-day value store.
type EODStore struct {
	db    *sql.DB
	table string
}

// NewEODStore constructs a store with default table name.
func NewEODStore(db *sql.DB, opts ...EODOption) *EODStore {
	store := &EODStore{db: db, table: defaultEODTable}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// EODOption configures the store.
type EODOption func(*EODStore)

// WithEODTable overrides the default table name.
func WithEODTable(table string) EODOption {
	return func(store *EODStore) {
		if table != "" {
			store.table = table
		}
	}
}

// Upsert writes one end-of-day figure, replacing any earlier value for the
// same (tag, date).
func (s *EODStore) Upsert(ctx context.Context, value gas.EODValue) error {
	if s == nil || s.db == nil {
		return errors.New("eod store: nil db")
	}
	if err := value.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (tag, eod_date, value, update_timestamp)
VALUES ($1, $2, $3, $4)
ON CONFLICT (tag, eod_date)
DO UPDATE SET
	value = EXCLUDED.value,
	update_timestamp = EXCLUDED.update_timestamp`, s.table)

	_, err := s.db.ExecContext(ctx, query, value.Tag, day(value.Date), value.Value, value.UpdatedAt)
	return err
}

// Range returns one tag's rows between two dates inclusive, oldest first.
func (s *EODStore) Range(ctx context.Context, tag string, from, to time.Time) ([]gas.EODValue, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("eod store: nil db")
	}

	query := fmt.Sprintf(`
SELECT tag, eod_date, value, update_timestamp
FROM %s
WHERE tag = $1 AND eod_date >= $2 AND eod_date <= $3
ORDER BY eod_date ASC`, s.table)

	rows, err := s.db.QueryContext(ctx, query, tag, day(from), day(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make([]gas.EODValue, 0)
	for rows.Next() {
		var value gas.EODValue
		if err := rows.Scan(&value.Tag, &value.Date, &value.Value, &value.UpdatedAt); err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

func day(at time.Time) time.Time {
	return time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
}
