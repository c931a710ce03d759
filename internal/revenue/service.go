package revenue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/clinicpay/internal/clinic"
	"github.com/MrJamesThe3rd/clinicpay/internal/ledger"
)

var ErrInvalidRange = errors.New("invalid date range")

//go:generate mockgen -source=service.go -destination=ledger_mock.go -package=revenue
type Ledger interface {
	List(ctx context.Context, scope clinic.Scope, filter ledger.ListFilter) ([]*ledger.Payment, error)
	Refunds(ctx context.Context, scope clinic.Scope, filter ledger.RefundFilter) ([]*ledger.Refund, error)
}

type Service struct {
	ledger  Ledger
	sharing Sharing
}

func NewService(l Ledger, sharing Sharing) *Service {
	return &Service{ledger: l, sharing: sharing}
}

// Summary aggregates the payments and refunds recorded in [start, end].
func (s *Service) Summary(ctx context.Context, scope clinic.Scope, start, end time.Time) (*Summary, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end before start", ErrInvalidRange)
	}

	payments, err := s.ledger.List(ctx, scope, ledger.ListFilter{StartDate: &start, EndDate: &end})
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	refunds, err := s.ledger.Refunds(ctx, scope, ledger.RefundFilter{StartDate: &start, EndDate: &end})
	if err != nil {
		return nil, fmt.Errorf("list refunds: %w", err)
	}

	summary := Summarize(payments, refunds, s.sharing)

	return &summary, nil
}
