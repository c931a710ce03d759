package closure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/clinicpay/internal/appointment"
	"github.com/MrJamesThe3rd/clinicpay/internal/clinic"
	"github.com/MrJamesThe3rd/clinicpay/internal/money"
)

var (
	ErrInvalidAmount          = appointment.ErrInvalidAmount
	ErrMissingExpectedRevenue = errors.New("expected revenue has not been computed for this day")
	ErrDuplicateClosure       = errors.New("day is already closed")
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=closure
type Repository interface {
	// CreateClosure fails with ErrDuplicateClosure when unique is set and the
	// day already has a closure.
	CreateClosure(ctx context.Context, c *Closure, unique bool) error
	ListClosures(ctx context.Context, clinicID uuid.UUID, start, end time.Time) ([]*Closure, error)
}

// ExpectationStore keeps the expected revenue computed for a day until the
// day is closed.
type ExpectationStore interface {
	Put(ctx context.Context, clinicID uuid.UUID, day string, expected int64) error
	Get(ctx context.Context, clinicID uuid.UUID, day string) (int64, bool, error)
}

type Appointments interface {
	OnDay(ctx context.Context, scope clinic.Scope, date time.Time, loc *time.Location) ([]*appointment.Appointment, error)
}

type Options struct {
	Location     *time.Location
	UniquePerDay bool
}

type Service struct {
	repo         Repository
	expectations ExpectationStore
	appointments Appointments
	opts         Options
	now          func() time.Time
}

func NewService(repo Repository, expectations ExpectationStore, appointments Appointments, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	return &Service{
		repo:         repo,
		expectations: expectations,
		appointments: appointments,
		opts:         opts,
		now:          time.Now,
	}
}

// Day normalizes t to midnight of its calendar day in the clinic time zone.
func (s *Service) Day(t time.Time) time.Time {
	return appointment.StartOfDay(t, s.opts.Location)
}

func dayKey(day time.Time) string {
	return day.Format(time.DateOnly)
}

// ComputeExpected sums the amount of every paid appointment starting on the
// given day and remembers it for CloseDay.
func (s *Service) ComputeExpected(ctx context.Context, scope clinic.Scope, date time.Time) (int64, error) {
	if err := scope.Validate(); err != nil {
		return 0, err
	}

	day := s.Day(date)

	appts, err := s.appointments.OnDay(ctx, scope, day, s.opts.Location)
	if err != nil {
		return 0, fmt.Errorf("list appointments: %w", err)
	}

	var expected int64

	for _, a := range appts {
		if a.PaymentStatus == appointment.PaymentPaid {
			expected += a.Amount
		}
	}

	if err := s.expectations.Put(ctx, scope.ClinicID, dayKey(day), expected); err != nil {
		return 0, fmt.Errorf("store expectation: %w", err)
	}

	return expected, nil
}

// CloseDay records the revenue counted for a day against the expectation
// computed earlier. Appointments and payments are left untouched.
func (s *Service) CloseDay(ctx context.Context, scope clinic.Scope, date time.Time, confirmed int64, notes string) (*Closure, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	if confirmed < 0 {
		return nil, fmt.Errorf("%w: confirmed revenue can not be negative", ErrInvalidAmount)
	}

	day := s.Day(date)

	expected, ok, err := s.expectations.Get(ctx, scope.ClinicID, dayKey(day))
	if err != nil {
		return nil, fmt.Errorf("load expectation: %w", err)
	}

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingExpectedRevenue, dayKey(day))
	}

	c := &Closure{
		ClinicID:         scope.ClinicID,
		Date:             day,
		ExpectedRevenue:  expected,
		ConfirmedRevenue: confirmed,
		Notes:            notes,
		ClosedAt:         s.now(),
	}

	if err := s.repo.CreateClosure(ctx, c, s.opts.UniquePerDay); err != nil {
		if errors.Is(err, ErrDuplicateClosure) {
			return nil, err
		}

		return nil, fmt.Errorf("create closure: %w", err)
	}

	slog.Info("day closed",
		"clinic_id", scope.ClinicID,
		"date", dayKey(day),
		"expected", money.Format(expected),
		"confirmed", money.Format(confirmed),
		"difference", money.Format(c.Difference()),
	)

	return c, nil
}

// History lists closures whose day falls within [start, end].
func (s *Service) History(ctx context.Context, scope clinic.Scope, start, end time.Time) ([]*Closure, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	return s.repo.ListClosures(ctx, scope.ClinicID, s.Day(start), s.Day(end))
}
