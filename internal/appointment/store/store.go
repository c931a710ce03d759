package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/clinicpay/internal/appointment"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Columns lists the appointment columns in the order ScanAppointment expects.
const Columns = `
	a.id, a.clinic_id, a.client_id, a.client_name, a.title, a.start_at, a.end_at, a.status,
	a.amount, a.amount_paid, a.payment_status, a.is_package, a.package_sessions, a.sessions_paid,
	a.last_payment_update, a.version, a.created_at, a.updated_at
`

// ScanAppointment reads a row selected with Columns.
func ScanAppointment(s Scanner) (*appointment.Appointment, error) {
	var a appointment.Appointment

	var title, status, paymentStatus string

	if err := s.Scan(
		&a.ID, &a.ClinicID, &a.ClientID, &a.ClientName, &title, &a.Start, &a.End, &status,
		&a.Amount, &a.AmountPaid, &paymentStatus, &a.IsPackage, &a.PackageSessions, &a.SessionsPaid,
		&a.LastPaymentUpdate, &a.Version, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	a.Title = appointment.Title(title)
	a.Status = appointment.Status(status)
	a.PaymentStatus = appointment.PaymentStatus(paymentStatus)

	return &a, nil
}

func (s *Store) CreateAppointment(ctx context.Context, a *appointment.Appointment) error {
	query := `
		INSERT INTO appointments (
			clinic_id, client_id, client_name, title, start_at, end_at, status,
			amount, amount_paid, payment_status, is_package, package_sessions, sessions_paid,
			version, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $10, $11, 0, 0, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		a.ClinicID,
		a.ClientID,
		a.ClientName,
		a.Title,
		a.Start,
		a.End,
		a.Status,
		a.Amount,
		a.PaymentStatus,
		a.IsPackage,
		a.PackageSessions,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating appointment: %w", err)
	}

	return nil
}

func (s *Store) GetAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	query := `SELECT ` + Columns + ` FROM appointments a WHERE a.id = $1`

	a, err := ScanAppointment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appointment.ErrNotFound
		}

		return nil, fmt.Errorf("getting appointment: %w", err)
	}

	return a, nil
}

func (s *Store) ListAppointments(ctx context.Context, filter appointment.ListFilter) ([]*appointment.Appointment, error) {
	query := `SELECT ` + Columns + ` FROM appointments a WHERE a.clinic_id = $1`

	args := []any{filter.ClinicID}
	argIdx := 2

	if filter.ClientID != nil {
		query += fmt.Sprintf(" AND a.client_id = $%d", argIdx)

		args = append(args, *filter.ClientID)
		argIdx++
	}

	if filter.PaymentStatus != nil {
		query += fmt.Sprintf(" AND a.payment_status = $%d", argIdx)

		args = append(args, *filter.PaymentStatus)
		argIdx++
	}

	if filter.StartFrom != nil {
		query += fmt.Sprintf(" AND a.start_at >= $%d", argIdx)

		args = append(args, *filter.StartFrom)
		argIdx++
	}

	if filter.StartBefore != nil {
		query += fmt.Sprintf(" AND a.start_at < $%d", argIdx)

		args = append(args, *filter.StartBefore)
	}

	query += " ORDER BY a.start_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	defer rows.Close()

	var list []*appointment.Appointment

	for rows.Next() {
		a, err := ScanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning appointment: %w", err)
		}

		list = append(list, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating appointment rows: %w", err)
	}

	return list, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status appointment.Status) error {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	res, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	return expectOne(res, appointment.ErrNotFound)
}

func (s *Store) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting appointment: %w", err)
	}

	return expectOne(res, appointment.ErrNotFound)
}

func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return notFound
	}

	return nil
}
