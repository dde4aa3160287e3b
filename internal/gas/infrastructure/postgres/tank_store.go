package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	gas "energywatch/internal/gas/domain"
)

const defaultTankTable = "lng_tank_table"

// TankStore is a Postgres implementation of the strapping table store.
type TankStore struct {
	db    *sql.DB
	table string
}

// NewTankStore constructs a store with default table name.
func NewTankStore(db *sql.DB, opts ...TankOption) *TankStore {
	store := &TankStore{db: db, table: defaultTankTable}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// TankOption configures the store.
type TankOption func(*TankStore)

// WithTankTable overrides the default table name.
func WithTankTable(table string) TankOption {
	return func(store *TankStore) {
		if table != "" {
			store.table = table
		}
	}
}

// UpsertBreakpoints replaces strapping rows in place, keyed by level.
func (s *TankStore) UpsertBreakpoints(ctx context.Context, rows []gas.Breakpoint) error {
	if s == nil || s.db == nil {
		return errors.New("tank store: nil db")
	}
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
INSERT INTO %s (level_cm, tank1_m3, tank2_m3)
VALUES ($1, $2, $3)
ON CONFLICT (level_cm)
DO UPDATE SET
	tank1_m3 = EXCLUDED.tank1_m3,
	tank2_m3 = EXCLUDED.tank2_m3`, s.table)

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
		if _, err := stmt.ExecContext(ctx, row.LevelCM, nullable(row.Tank1M3), nullable(row.Tank2M3)); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// Bracket fetches the rows at floor and ceiling of a fractional level.
func (s *TankStore) Bracket(ctx context.Context, levelCM float64) (gas.Breakpoint, gas.Breakpoint, error) {
	if s == nil || s.db == nil {
		return gas.Breakpoint{}, gas.Breakpoint{}, errors.New("tank store: nil db")
	}

	floorCM, ceilCM := gas.BracketLevels(levelCM)
	floor, err := s.row(ctx, floorCM)
	if err != nil {
		return gas.Breakpoint{}, gas.Breakpoint{}, err
	}
	if ceilCM == floorCM {
		return floor, floor, nil
	}
	ceil, err := s.row(ctx, ceilCM)
	if err != nil {
		return gas.Breakpoint{}, gas.Breakpoint{}, err
	}
	return floor, ceil, nil
}

func (s *TankStore) row(ctx context.Context, levelCM int) (gas.Breakpoint, error) {
	query := fmt.Sprintf(`
SELECT level_cm, tank1_m3, tank2_m3
FROM %s
WHERE level_cm = $1`, s.table)

	row := gas.Breakpoint{}
	var tank1, tank2 sql.NullFloat64
	err := s.db.QueryRowContext(ctx, query, levelCM).Scan(&row.LevelCM, &tank1, &tank2)
	if errors.Is(err, sql.ErrNoRows) {
		return gas.Breakpoint{}, gas.ErrNoBreakpoint
	}
	if err != nil {
		return gas.Breakpoint{}, err
	}
	if tank1.Valid {
		row.Tank1M3 = &tank1.Float64
	}
	if tank2.Valid {
		row.Tank2M3 = &tank2.Float64
	}
	return row, nil
}

func nullable(v *float64) interface{} {
	if v == nil || math.IsNaN(*v) {
		return nil
	}
	return *v
}
