package billing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/clinicpay/internal/appointment"
	"github.com/MrJamesThe3rd/clinicpay/internal/clinic"
	"github.com/MrJamesThe3rd/clinicpay/internal/ledger"
	"github.com/MrJamesThe3rd/clinicpay/internal/money"
)

type RefundParams struct {
	PaymentID uuid.UUID
	Amount    int64
	Reason    string
}

type RefundResult struct {
	Refund *ledger.Refund
	// State is set only when the refund rolled the appointment back.
	State *appointment.PaymentState
}

// Refund gives part or all of a payment back. The sum of refunds against a
// payment never exceeds the payment amount.
func (s *Service) Refund(ctx context.Context, scope clinic.Scope, params RefundParams) (*RefundResult, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	params.Reason = strings.TrimSpace(params.Reason)
	if params.Reason == "" {
		return nil, ErrMissingReason
	}

	if params.Amount <= 0 {
		return nil, fmt.Errorf("%w: refund amount must be positive", ErrInvalidAmount)
	}

	appointmentID, err := s.paymentAppointment(ctx, scope, params.PaymentID)
	if err != nil {
		return nil, err
	}

	var result *RefundResult

	err = s.withRetry(ctx, "refund", appointmentID, func(ctx context.Context) error {
		r, err := s.refund(ctx, scope, appointmentID, params)
		if err != nil {
			return err
		}

		result = r

		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("payment refunded",
		"clinic_id", scope.ClinicID,
		"payment_id", params.PaymentID,
		"refund_id", result.Refund.ID,
		"amount", money.Format(params.Amount),
		"reversed", result.Refund.Reversed,
	)

	return result, nil
}

func (s *Service) refund(ctx context.Context, scope clinic.Scope, appointmentID uuid.UUID, params RefundParams) (*RefundResult, error) {
	tx, err := s.repo.BeginPayment(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("begin refund: %w", err)
	}
	defer tx.Rollback()

	p, err := s.loadPayment(ctx, tx, scope, params.PaymentID)
	if err != nil {
		return nil, err
	}

	refunded, err := tx.RefundedTotal(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("refunded total: %w", err)
	}

	if refundable := p.Amount - refunded; params.Amount > refundable {
		return nil, fmt.Errorf("%w: %s exceeds the refundable %s",
			ErrInvalidAmount, money.Format(params.Amount), money.Format(refundable))
	}

	now := s.now()
	result := &RefundResult{
		Refund: &ledger.Refund{
			ClinicID:      p.ClinicID,
			PaymentID:     p.ID,
			AppointmentID: p.AppointmentID,
			Amount:        params.Amount,
			Reason:        params.Reason,
			Reversed:      s.opts.RefundPolicy == RefundReverse,
			CreatedAt:     now,
		},
	}

	if result.Refund.Reversed {
		a, err := s.loadAppointment(ctx, tx, scope, p.AppointmentID)
		if err != nil {
			return nil, err
		}

		next := a.PlanReversal(params.Amount)
		next.LastPaymentUpdate = now

		if err := tx.UpdatePaymentState(ctx, next, a.Version); err != nil {
			return nil, err
		}

		result.State = &next
	}

	if err := tx.InsertRefund(ctx, result.Refund); err != nil {
		return nil, fmt.Errorf("insert refund: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit refund: %w", err)
	}

	return result, nil
}
