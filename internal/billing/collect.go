package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/clinicpay/internal/appointment"
	"github.com/MrJamesThe3rd/clinicpay/internal/clinic"
	"github.com/MrJamesThe3rd/clinicpay/internal/ledger"
	"github.com/MrJamesThe3rd/clinicpay/internal/money"
)

type CollectParams struct {
	AppointmentID uuid.UUID
	Amount        int64
	Method        ledger.Method
	// FullPackage asks to prepay every session of a package at once.
	FullPackage bool
}

type CollectResult struct {
	State       appointment.PaymentState
	Payment     *ledger.Payment
	Appointment *appointment.Appointment
}

// Collect records a payment against an appointment. The appointment counters
// and the ledger entry are written together or not at all.
func (s *Service) Collect(ctx context.Context, scope clinic.Scope, params CollectParams) (*CollectResult, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	if params.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}

	if !params.Method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, params.Method)
	}

	var result *CollectResult

	err := s.withRetry(ctx, "collect", params.AppointmentID, func(ctx context.Context) error {
		r, err := s.collect(ctx, scope, params)
		if err != nil {
			return err
		}

		result = r

		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("payment collected",
		"clinic_id", scope.ClinicID,
		"appointment_id", params.AppointmentID,
		"payment_id", result.Payment.ID,
		"amount", money.Format(params.Amount),
		"method", params.Method,
		"status", result.State.PaymentStatus,
		"prepayment", result.Payment.IsPrepayment,
	)

	return result, nil
}

func (s *Service) collect(ctx context.Context, scope clinic.Scope, params CollectParams) (*CollectResult, error) {
	tx, err := s.repo.BeginPayment(ctx, params.AppointmentID)
	if err != nil {
		return nil, fmt.Errorf("begin payment: %w", err)
	}
	defer tx.Rollback()

	a, err := s.loadAppointment(ctx, tx, scope, params.AppointmentID)
	if err != nil {
		return nil, err
	}

	if err := a.CheckInvariants(); err != nil {
		return nil, err
	}

	plan, err := a.PlanPayment(params.Amount, params.FullPackage)
	if err != nil {
		return nil, err
	}

	now := s.now()
	plan.State.LastPaymentUpdate = now

	if err := tx.UpdatePaymentState(ctx, plan.State, a.Version); err != nil {
		return nil, err
	}

	p := &ledger.Payment{
		ClinicID:        a.ClinicID,
		AppointmentID:   a.ID,
		ClientID:        a.ClientID,
		ClientName:      a.ClientName,
		Amount:          params.Amount,
		Method:          params.Method,
		PaymentStatus:   plan.State.PaymentStatus,
		SessionDate:     a.Start,
		IsPackage:       a.IsPackage,
		IsPrepayment:    plan.Prepayment,
		PackageSessions: a.PackageSessions,
		SessionsPaid:    plan.State.SessionsPaid,
		CreatedAt:       now,
	}

	if err := tx.InsertPayment(ctx, p); err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payment: %w", err)
	}

	a.Apply(plan.State)

	return &CollectResult{State: plan.State, Payment: p, Appointment: a}, nil
}
