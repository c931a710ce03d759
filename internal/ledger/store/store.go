package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/clinicpay/internal/appointment"
	"github.com/MrJamesThe3rd/clinicpay/internal/ledger"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const paymentColumns = `
	p.id, p.clinic_id, p.appointment_id, p.client_id, p.client_name, p.amount, p.method,
	p.payment_status, p.session_date, p.is_package, p.is_prepayment, p.package_sessions,
	p.sessions_paid, p.created_at
`

func scanPayment(s scanner) (*ledger.Payment, error) {
	var p ledger.Payment

	var method, status string

	if err := s.Scan(
		&p.ID, &p.ClinicID, &p.AppointmentID, &p.ClientID, &p.ClientName, &p.Amount, &method,
		&status, &p.SessionDate, &p.IsPackage, &p.IsPrepayment, &p.PackageSessions,
		&p.SessionsPaid, &p.CreatedAt,
	); err != nil {
		return nil, err
	}

	p.Method = ledger.Method(method)
	p.PaymentStatus = appointment.PaymentStatus(status)

	return &p, nil
}

const refundColumns = `
	r.id, r.clinic_id, r.payment_id, r.appointment_id, r.amount, r.reason, r.reversed, r.created_at
`

func scanRefund(s scanner) (*ledger.Refund, error) {
	var r ledger.Refund

	if err := s.Scan(
		&r.ID, &r.ClinicID, &r.PaymentID, &r.AppointmentID, &r.Amount, &r.Reason, &r.Reversed, &r.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &r, nil
}

func (s *Store) GetPayment(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	return GetPayment(ctx, s.db, id, false)
}

// GetPayment loads one payment. With forUpdate the row stays locked until the
// surrounding transaction ends.
func GetPayment(ctx context.Context, q Querier, id uuid.UUID, forUpdate bool) (*ledger.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments p WHERE p.id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	p, err := scanPayment(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting payment: %w", err)
	}

	return p, nil
}

func (s *Store) ListPayments(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments p WHERE p.clinic_id = $1`

	args := []any{filter.ClinicID}
	argIdx := 2

	if filter.ClientID != nil {
		query += fmt.Sprintf(" AND p.client_id = $%d", argIdx)

		args = append(args, *filter.ClientID)
		argIdx++
	}

	if filter.AppointmentID != nil {
		query += fmt.Sprintf(" AND p.appointment_id = $%d", argIdx)

		args = append(args, *filter.AppointmentID)
		argIdx++
	}

	if filter.Method != nil {
		query += fmt.Sprintf(" AND p.method = $%d", argIdx)

		args = append(args, *filter.Method)
		argIdx++
	}

	if filter.PaymentStatus != nil {
		query += fmt.Sprintf(" AND p.payment_status = $%d", argIdx)

		args = append(args, *filter.PaymentStatus)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND p.created_at >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND p.created_at <= $%d", argIdx)

		args = append(args, *filter.EndDate)
	}

	query += " ORDER BY p.created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var payments []*ledger.Payment

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment rows: %w", err)
	}

	return payments, nil
}

func (s *Store) ListRefunds(ctx context.Context, filter ledger.RefundFilter) ([]*ledger.Refund, error) {
	query := `SELECT ` + refundColumns + ` FROM refunds r WHERE r.clinic_id = $1`

	args := []any{filter.ClinicID}
	argIdx := 2

	if filter.PaymentID != nil {
		query += fmt.Sprintf(" AND r.payment_id = $%d", argIdx)

		args = append(args, *filter.PaymentID)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND r.created_at >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND r.created_at <= $%d", argIdx)

		args = append(args, *filter.EndDate)
	}

	query += " ORDER BY r.created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing refunds: %w", err)
	}
	defer rows.Close()

	var refunds []*ledger.Refund

	for rows.Next() {
		r, err := scanRefund(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning refund: %w", err)
		}

		refunds = append(refunds, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating refund rows: %w", err)
	}

	return refunds, nil
}

func (s *Store) ListCorrections(ctx context.Context, clinicID, targetID uuid.UUID) ([]*ledger.Correction, error) {
	query := `
		SELECT id, clinic_id, target, target_id, reason, before, after, created_at
		FROM corrections
		WHERE clinic_id = $1 AND target_id = $2
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, clinicID, targetID)
	if err != nil {
		return nil, fmt.Errorf("listing corrections: %w", err)
	}
	defer rows.Close()

	var corrections []*ledger.Correction

	for rows.Next() {
		var (
			c      ledger.Correction
			target string
		)

		if err := rows.Scan(&c.ID, &c.ClinicID, &target, &c.TargetID, &c.Reason, &c.Before, &c.After, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning correction: %w", err)
		}

		c.Target = ledger.CorrectionTarget(target)
		corrections = append(corrections, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating correction rows: %w", err)
	}

	return corrections, nil
}

// InsertPayment appends p and fills in its generated fields.
func InsertPayment(ctx context.Context, q Querier, p *ledger.Payment) error {
	query := `
		INSERT INTO payments (
			clinic_id, appointment_id, client_id, client_name, amount, method, payment_status,
			session_date, is_package, is_prepayment, package_sessions, sessions_paid, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	err := q.QueryRowContext(ctx, query,
		p.ClinicID,
		p.AppointmentID,
		p.ClientID,
		p.ClientName,
		p.Amount,
		p.Method,
		p.PaymentStatus,
		p.SessionDate,
		p.IsPackage,
		p.IsPrepayment,
		p.PackageSessions,
		p.SessionsPaid,
		p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("inserting payment: %w", err)
	}

	return nil
}

// UpdatePayment rewrites the correctable fields of a payment.
func UpdatePayment(ctx context.Context, q Querier, p *ledger.Payment) error {
	query := `
		UPDATE payments
		SET amount = $1, payment_status = $2
		WHERE id = $3
	`

	res, err := q.ExecContext(ctx, query, p.Amount, p.PaymentStatus, p.ID)
	if err != nil {
		return fmt.Errorf("updating payment: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return ledger.ErrNotFound
	}

	return nil
}

func InsertRefund(ctx context.Context, q Querier, r *ledger.Refund) error {
	query := `
		INSERT INTO refunds (clinic_id, payment_id, appointment_id, amount, reason, reversed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := q.QueryRowContext(ctx, query,
		r.ClinicID, r.PaymentID, r.AppointmentID, r.Amount, r.Reason, r.Reversed, r.CreatedAt,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("inserting refund: %w", err)
	}

	return nil
}

// RefundedTotal sums every refund recorded against a payment.
func RefundedTotal(ctx context.Context, q Querier, paymentID uuid.UUID) (int64, error) {
	var total int64

	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM refunds WHERE payment_id = $1`, paymentID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing refunds: %w", err)
	}

	return total, nil
}

func InsertCorrection(ctx context.Context, q Querier, c *ledger.Correction) error {
	query := `
		INSERT INTO corrections (clinic_id, target, target_id, reason, before, after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	err := q.QueryRowContext(ctx, query,
		c.ClinicID, c.Target, c.TargetID, c.Reason, []byte(c.Before), []byte(c.After), c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("inserting correction: %w", err)
	}

	return nil
}
