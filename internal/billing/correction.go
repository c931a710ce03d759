package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/clinicpay/internal/appointment"
	"github.com/MrJamesThe3rd/clinicpay/internal/clinic"
	"github.com/MrJamesThe3rd/clinicpay/internal/ledger"
	"github.com/MrJamesThe3rd/clinicpay/internal/money"
)

// CorrectParams edits a recorded payment. Nil fields are left as they are.
type CorrectParams struct {
	PaymentID uuid.UUID
	Amount    *int64
	Status    *appointment.PaymentStatus
	Reason    string
}

// CorrectPayment rewrites a ledger entry and leaves an audit record behind.
// The amount can not drop below what was already refunded.
func (s *Service) CorrectPayment(ctx context.Context, scope clinic.Scope, params CorrectParams) (*ledger.Payment, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	params.Reason = strings.TrimSpace(params.Reason)
	if params.Reason == "" {
		return nil, ErrMissingReason
	}

	if params.Amount == nil && params.Status == nil {
		return nil, ErrNothingToCorrect
	}

	if params.Amount != nil && *params.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must stay positive", ErrInvalidAmount)
	}

	if params.Status != nil && !params.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", appointment.ErrInvalidStatus, *params.Status)
	}

	appointmentID, err := s.paymentAppointment(ctx, scope, params.PaymentID)
	if err != nil {
		return nil, err
	}

	var corrected *ledger.Payment

	err = s.withRetry(ctx, "correct payment", appointmentID, func(ctx context.Context) error {
		p, err := s.correctPayment(ctx, scope, appointmentID, params)
		if err != nil {
			return err
		}

		corrected = p

		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Warn("payment corrected",
		"clinic_id", scope.ClinicID,
		"payment_id", corrected.ID,
		"amount", money.Format(corrected.Amount),
		"status", corrected.PaymentStatus,
		"reason", params.Reason,
	)

	return corrected, nil
}

func (s *Service) correctPayment(ctx context.Context, scope clinic.Scope, appointmentID uuid.UUID, params CorrectParams) (*ledger.Payment, error) {
	tx, err := s.repo.BeginPayment(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("begin correction: %w", err)
	}
	defer tx.Rollback()

	p, err := s.loadPayment(ctx, tx, scope, params.PaymentID)
	if err != nil {
		return nil, err
	}

	before := *p
	after := *p

	if params.Amount != nil {
		after.Amount = *params.Amount
	}

	if params.Status != nil {
		after.PaymentStatus = *params.Status
	}

	if after.Amount == before.Amount && after.PaymentStatus == before.PaymentStatus {
		return nil, ErrNothingToCorrect
	}

	if after.Amount < before.Amount {
		refunded, err := tx.RefundedTotal(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("refunded total: %w", err)
		}

		if after.Amount < refunded {
			return nil, fmt.Errorf("%w: %s already refunded", ErrInvalidAmount, money.Format(refunded))
		}
	}

	if err := tx.UpdatePayment(ctx, &after); err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}

	c, err := newCorrection(p.ClinicID, ledger.TargetPayment, p.ID, params.Reason, before, after)
	if err != nil {
		return nil, err
	}

	c.CreatedAt = s.now()

	if err := tx.InsertCorrection(ctx, c); err != nil {
		return nil, fmt.Errorf("insert correction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit correction: %w", err)
	}

	return &after, nil
}

type AdjustParams struct {
	AppointmentID uuid.UUID
	AmountPaid    int64
	SessionsPaid  int
	// Confirm must be set to move an appointment out of paid.
	Confirm bool
	Reason  string
}

// AdjustAppointment overwrites the payment counters of an appointment. It is
// the only way to take an appointment out of paid.
func (s *Service) AdjustAppointment(ctx context.Context, scope clinic.Scope, params AdjustParams) (*appointment.Appointment, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	params.Reason = strings.TrimSpace(params.Reason)
	if params.Reason == "" {
		return nil, ErrMissingReason
	}

	var adjusted *appointment.Appointment

	err := s.withRetry(ctx, "adjust appointment", params.AppointmentID, func(ctx context.Context) error {
		a, err := s.adjustAppointment(ctx, scope, params)
		if err != nil {
			return err
		}

		adjusted = a

		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Warn("appointment payment adjusted",
		"clinic_id", scope.ClinicID,
		"appointment_id", adjusted.ID,
		"amount_paid", money.Format(adjusted.AmountPaid),
		"sessions_paid", adjusted.SessionsPaid,
		"status", adjusted.PaymentStatus,
		"reason", params.Reason,
	)

	return adjusted, nil
}

func (s *Service) adjustAppointment(ctx context.Context, scope clinic.Scope, params AdjustParams) (*appointment.Appointment, error) {
	tx, err := s.repo.BeginPayment(ctx, params.AppointmentID)
	if err != nil {
		return nil, fmt.Errorf("begin adjustment: %w", err)
	}
	defer tx.Rollback()

	a, err := s.loadAppointment(ctx, tx, scope, params.AppointmentID)
	if err != nil {
		return nil, err
	}

	next, err := a.PlanAdjustment(params.AmountPaid, params.SessionsPaid)
	if err != nil {
		return nil, err
	}

	before := a.State()
	if next.AmountPaid == before.AmountPaid && next.SessionsPaid == before.SessionsPaid {
		return nil, ErrNothingToCorrect
	}

	if before.PaymentStatus == appointment.PaymentPaid && next.PaymentStatus != appointment.PaymentPaid && !params.Confirm {
		return nil, fmt.Errorf("%w: appointment would no longer be paid", ErrConfirmationRequired)
	}

	now := s.now()
	next.LastPaymentUpdate = now

	if err := tx.UpdatePaymentState(ctx, next, a.Version); err != nil {
		return nil, err
	}

	c, err := newCorrection(a.ClinicID, ledger.TargetAppointment, a.ID, params.Reason, before, next)
	if err != nil {
		return nil, err
	}

	c.CreatedAt = now

	if err := tx.InsertCorrection(ctx, c); err != nil {
		return nil, fmt.Errorf("insert correction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit adjustment: %w", err)
	}

	a.Apply(next)

	return a, nil
}

func newCorrection(clinicID uuid.UUID, target ledger.CorrectionTarget, targetID uuid.UUID, reason string, before, after any) (*ledger.Correction, error) {
	b, err := json.Marshal(before)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}

	a, err := json.Marshal(after)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}

	return &ledger.Correction{
		ClinicID: clinicID,
		Target:   target,
		TargetID: targetID,
		Reason:   reason,
		Before:   b,
		After:    a,
	}, nil
}
