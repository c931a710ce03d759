package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/clinicpay/internal/clinic"
)

var (
	ErrNotFound           = errors.New("appointment not found")
	ErrInvalidAppointment = errors.New("invalid appointment")
	ErrInvalidStatus      = errors.New("invalid appointment status")
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=appointment
type Repository interface {
	CreateAppointment(ctx context.Context, a *Appointment) error
	GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListAppointments(ctx context.Context, filter ListFilter) ([]*Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	DeleteAppointment(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	ClientID        uuid.UUID
	ClientName      string
	Title           Title
	Start           time.Time
	End             time.Time
	Amount          int64
	IsPackage       bool
	PackageSessions int
}

// ListFilter narrows a listing. StartFrom is inclusive, StartBefore exclusive.
type ListFilter struct {
	ClinicID      uuid.UUID
	ClientID      *uuid.UUID
	PaymentStatus *PaymentStatus
	StartFrom     *time.Time
	StartBefore   *time.Time
}

func (p CreateParams) validate() error {
	if p.ClientID == uuid.Nil {
		return fmt.Errorf("%w: client is required", ErrInvalidAppointment)
	}

	if strings.TrimSpace(p.ClientName) == "" {
		return fmt.Errorf("%w: client name is required", ErrInvalidAppointment)
	}

	if !p.End.After(p.Start) {
		return fmt.Errorf("%w: end must be after start", ErrInvalidAppointment)
	}

	if p.End.Sub(p.Start) < MinDuration {
		return fmt.Errorf("%w: appointments last at least %s", ErrInvalidAppointment, MinDuration)
	}

	if p.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidAppointment)
	}

	if p.IsPackage && p.PackageSessions < 1 {
		return fmt.Errorf("%w: a package needs at least one session", ErrInvalidAppointment)
	}

	return nil
}

func (s *Service) Create(ctx context.Context, scope clinic.Scope, params CreateParams) (*Appointment, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	if err := params.validate(); err != nil {
		return nil, err
	}

	a := &Appointment{
		ClinicID:      scope.ClinicID,
		ClientID:      params.ClientID,
		ClientName:    strings.TrimSpace(params.ClientName),
		Title:         params.Title,
		Start:         params.Start,
		End:           params.End,
		Status:        StatusScheduled,
		Amount:        params.Amount,
		PaymentStatus: PaymentUnpaid,
		IsPackage:     params.IsPackage,
	}

	if params.IsPackage {
		a.PackageSessions = params.PackageSessions
	}

	if err := s.repo.CreateAppointment(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *Service) Get(ctx context.Context, scope clinic.Scope, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	if !scope.Owns(a.ClinicID) {
		return nil, ErrNotFound
	}

	return a, nil
}

func (s *Service) List(ctx context.Context, scope clinic.Scope, filter ListFilter) ([]*Appointment, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	filter.ClinicID = scope.ClinicID

	return s.repo.ListAppointments(ctx, filter)
}

// OnDay lists the appointments starting on the calendar day of date in loc.
func (s *Service) OnDay(ctx context.Context, scope clinic.Scope, date time.Time, loc *time.Location) ([]*Appointment, error) {
	start := StartOfDay(date, loc)
	end := start.AddDate(0, 0, 1)

	return s.List(ctx, scope, ListFilter{StartFrom: &start, StartBefore: &end})
}

func (s *Service) UpdateStatus(ctx context.Context, scope clinic.Scope, id uuid.UUID, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	if _, err := s.Get(ctx, scope, id); err != nil {
		return err
	}

	return s.repo.UpdateStatus(ctx, id, status)
}

// Delete removes an appointment. Payments never call this.
func (s *Service) Delete(ctx context.Context, scope clinic.Scope, id uuid.UUID) error {
	if _, err := s.Get(ctx, scope, id); err != nil {
		return err
	}

	return s.repo.DeleteAppointment(ctx, id)
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}

	t = t.In(loc)

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
