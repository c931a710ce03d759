package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/clinicpay/internal/appointment"
	appointmentstore "github.com/MrJamesThe3rd/clinicpay/internal/appointment/store"
	"github.com/MrJamesThe3rd/clinicpay/internal/billing"
	"github.com/MrJamesThe3rd/clinicpay/internal/ledger"
	ledgerstore "github.com/MrJamesThe3rd/clinicpay/internal/ledger/store"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetPayment(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	return ledgerstore.GetPayment(ctx, s.db, id, false)
}

func appointmentLockKey(id uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write([]byte("appointment:"))
	h.Write(id[:])

	return int64(h.Sum64())
}

type paymentTx struct {
	tx *sql.Tx
}

// BeginPayment opens a transaction holding the appointment's advisory lock
// until commit or rollback.
func (s *Store) BeginPayment(ctx context.Context, appointmentID uuid.UUID) (billing.PaymentTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning payment tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", appointmentLockKey(appointmentID)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring appointment lock: %w", err)
	}

	return &paymentTx{tx: dbTx}, nil
}

func (ptx *paymentTx) Commit() error   { return ptx.tx.Commit() }
func (ptx *paymentTx) Rollback() error { return ptx.tx.Rollback() }

func (ptx *paymentTx) GetAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	query := `SELECT ` + appointmentstore.Columns + ` FROM appointments a WHERE a.id = $1 FOR UPDATE`

	a, err := appointmentstore.ScanAppointment(ptx.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appointment.ErrNotFound
		}

		return nil, fmt.Errorf("getting appointment: %w", err)
	}

	return a, nil
}

func (ptx *paymentTx) GetPayment(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	return ledgerstore.GetPayment(ctx, ptx.tx, id, true)
}

func (ptx *paymentTx) RefundedTotal(ctx context.Context, paymentID uuid.UUID) (int64, error) {
	return ledgerstore.RefundedTotal(ctx, ptx.tx, paymentID)
}

func (ptx *paymentTx) UpdatePaymentState(ctx context.Context, state appointment.PaymentState, expectedVersion int64) error {
	query := `
		UPDATE appointments
		SET amount_paid = $1, sessions_paid = $2, payment_status = $3,
			last_payment_update = $4, version = $5, updated_at = NOW()
		WHERE id = $6 AND version = $7
	`

	res, err := ptx.tx.ExecContext(ctx, query,
		state.AmountPaid,
		state.SessionsPaid,
		state.PaymentStatus,
		state.LastPaymentUpdate,
		state.Version,
		state.AppointmentID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("updating payment state: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return billing.ErrVersionConflict
	}

	return nil
}

func (ptx *paymentTx) InsertPayment(ctx context.Context, p *ledger.Payment) error {
	return ledgerstore.InsertPayment(ctx, ptx.tx, p)
}

func (ptx *paymentTx) UpdatePayment(ctx context.Context, p *ledger.Payment) error {
	return ledgerstore.UpdatePayment(ctx, ptx.tx, p)
}

func (ptx *paymentTx) InsertRefund(ctx context.Context, r *ledger.Refund) error {
	return ledgerstore.InsertRefund(ctx, ptx.tx, r)
}

func (ptx *paymentTx) InsertCorrection(ctx context.Context, c *ledger.Correction) error {
	return ledgerstore.InsertCorrection(ctx, ptx.tx, c)
}
