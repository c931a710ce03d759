package store

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/clinicpay/internal/closure"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func closureLockKey(clinicID uuid.UUID, day string) int64 {
	h := fnv.New64a()
	h.Write([]byte("closure:"))
	h.Write(clinicID[:])
	h.Write([]byte(day))

	return int64(h.Sum64())
}

func (s *Store) CreateClosure(ctx context.Context, c *closure.Closure, unique bool) error {
	day := c.Date.Format(time.DateOnly)

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning closure tx: %w", err)
	}
	defer dbTx.Rollback()

	if unique {
		if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", closureLockKey(c.ClinicID, day)); err != nil {
			return fmt.Errorf("acquiring closure lock: %w", err)
		}

		var exists bool

		err := dbTx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM closures WHERE clinic_id = $1 AND date = $2::date)`,
			c.ClinicID, day,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking existing closure: %w", err)
		}

		if exists {
			return closure.ErrDuplicateClosure
		}
	}

	query := `
		INSERT INTO closures (clinic_id, date, expected_revenue, confirmed_revenue, notes, closed_at)
		VALUES ($1, $2::date, $3, $4, $5, $6)
		RETURNING id
	`

	err = dbTx.QueryRowContext(ctx, query,
		c.ClinicID,
		day,
		c.ExpectedRevenue,
		c.ConfirmedRevenue,
		c.Notes,
		c.ClosedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("inserting closure: %w", err)
	}

	return dbTx.Commit()
}

func (s *Store) ListClosures(ctx context.Context, clinicID uuid.UUID, start, end time.Time) ([]*closure.Closure, error) {
	query := `
		SELECT id, clinic_id, date, expected_revenue, confirmed_revenue, notes, closed_at
		FROM closures
		WHERE clinic_id = $1 AND date BETWEEN $2::date AND $3::date
		ORDER BY date ASC, closed_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, clinicID, start.Format(time.DateOnly), end.Format(time.DateOnly))
	if err != nil {
		return nil, fmt.Errorf("listing closures: %w", err)
	}
	defer rows.Close()

	var closures []*closure.Closure

	for rows.Next() {
		var c closure.Closure
		if err := rows.Scan(&c.ID, &c.ClinicID, &c.Date, &c.ExpectedRevenue, &c.ConfirmedRevenue, &c.Notes, &c.ClosedAt); err != nil {
			return nil, fmt.Errorf("scanning closure: %w", err)
		}

		closures = append(closures, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating closure rows: %w", err)
	}

	return closures, nil
}
