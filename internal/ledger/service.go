package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/clinicpay/internal/appointment"
	"github.com/MrJamesThe3rd/clinicpay/internal/clinic"
)

var ErrNotFound = errors.New("payment not found")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListPayments(ctx context.Context, filter ListFilter) ([]*Payment, error)
	ListRefunds(ctx context.Context, filter RefundFilter) ([]*Refund, error)
	ListCorrections(ctx context.Context, clinicID, targetID uuid.UUID) ([]*Correction, error)
}

// Service is the read side of the ledger. Entries are written by the billing
// engines only.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListFilter bounds a ledger slice. Dates apply to CreatedAt and are inclusive.
type ListFilter struct {
	ClinicID      uuid.UUID
	ClientID      *uuid.UUID
	AppointmentID *uuid.UUID
	Method        *Method
	PaymentStatus *appointment.PaymentStatus
	StartDate     *time.Time
	EndDate       *time.Time
}

type RefundFilter struct {
	ClinicID  uuid.UUID
	PaymentID *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

func (s *Service) Get(ctx context.Context, scope clinic.Scope, id uuid.UUID) (*Payment, error) {
	p, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	if !scope.Owns(p.ClinicID) {
		return nil, ErrNotFound
	}

	return p, nil
}

func (s *Service) List(ctx context.Context, scope clinic.Scope, filter ListFilter) ([]*Payment, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	filter.ClinicID = scope.ClinicID

	return s.repo.ListPayments(ctx, filter)
}

func (s *Service) Refunds(ctx context.Context, scope clinic.Scope, filter RefundFilter) ([]*Refund, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	filter.ClinicID = scope.ClinicID

	return s.repo.ListRefunds(ctx, filter)
}

func (s *Service) Corrections(ctx context.Context, scope clinic.Scope, targetID uuid.UUID) ([]*Correction, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	return s.repo.ListCorrections(ctx, scope.ClinicID, targetID)
}
