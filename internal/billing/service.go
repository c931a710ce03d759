package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/clinicpay/internal/appointment"
	"github.com/MrJamesThe3rd/clinicpay/internal/clinic"
	"github.com/MrJamesThe3rd/clinicpay/internal/ledger"
)

var (
	ErrInvalidAmount        = appointment.ErrInvalidAmount
	ErrDuplicatePayment     = appointment.ErrDuplicatePayment
	ErrPaymentFailed        = errors.New("payment could not be recorded")
	ErrMissingReason        = errors.New("a reason is required")
	ErrInvalidMethod        = errors.New("invalid payment method")
	ErrConfirmationRequired = errors.New("explicit confirmation required")
	ErrNothingToCorrect     = errors.New("correction changes nothing")

	// ErrVersionConflict means the appointment changed between read and write.
	ErrVersionConflict = errors.New("appointment was modified concurrently")
	// ErrBusy means another writer holds the appointment lock.
	ErrBusy = errors.New("appointment is busy")
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=billing
type Repository interface {
	GetPayment(ctx context.Context, id uuid.UUID) (*ledger.Payment, error)
	BeginPayment(ctx context.Context, appointmentID uuid.UUID) (PaymentTx, error)
}

// PaymentTx is one atomic unit of work on an appointment and its ledger.
type PaymentTx interface {
	GetAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*ledger.Payment, error)
	RefundedTotal(ctx context.Context, paymentID uuid.UUID) (int64, error)
	// UpdatePaymentState returns ErrVersionConflict when the stored version
	// no longer equals expectedVersion.
	UpdatePaymentState(ctx context.Context, state appointment.PaymentState, expectedVersion int64) error
	InsertPayment(ctx context.Context, p *ledger.Payment) error
	UpdatePayment(ctx context.Context, p *ledger.Payment) error
	InsertRefund(ctx context.Context, r *ledger.Refund) error
	InsertCorrection(ctx context.Context, c *ledger.Correction) error
	Commit() error
	Rollback() error
}

// Locker serializes writers of the same appointment across processes.
type Locker interface {
	WithLock(ctx context.Context, appointmentID uuid.UUID, fn func(ctx context.Context) error) error
}

type RefundPolicy string

const (
	// RefundRecord only appends the refund to the ledger.
	RefundRecord RefundPolicy = "record"
	// RefundReverse also rolls the appointment payment state back.
	RefundReverse RefundPolicy = "reverse"
)

type Options struct {
	MaxRetries   int
	RetryBackoff time.Duration
	RefundPolicy RefundPolicy
}

type Service struct {
	repo   Repository
	locker Locker
	opts   Options
	now    func() time.Time
}

func NewService(repo Repository, locker Locker, opts Options) *Service {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}

	if opts.RefundPolicy == "" {
		opts.RefundPolicy = RefundRecord
	}

	return &Service{
		repo:   repo,
		locker: locker,
		opts:   opts,
		now:    time.Now,
	}
}

// withRetry runs fn under the appointment lock, retrying on lock contention
// and version conflicts.
func (s *Service) withRetry(ctx context.Context, op string, appointmentID uuid.UUID, fn func(ctx context.Context) error) error {
	var err error

	for attempt := 1; attempt <= s.opts.MaxRetries; attempt++ {
		err = s.locker.WithLock(ctx, appointmentID, fn)
		if !errors.Is(err, ErrVersionConflict) && !errors.Is(err, ErrBusy) {
			return translate(err)
		}

		slog.Warn("payment write conflict",
			"op", op,
			"appointment_id", appointmentID,
			"attempt", attempt,
			"error", err,
		)

		if attempt == s.opts.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrPaymentFailed, ctx.Err())
		case <-time.After(time.Duration(attempt) * s.opts.RetryBackoff):
		}
	}

	return fmt.Errorf("%w: %s gave up after %d attempts: %v", ErrPaymentFailed, op, s.opts.MaxRetries, err)
}

// translate keeps caller-facing errors and hides everything else behind
// ErrPaymentFailed.
func translate(err error) error {
	if err == nil {
		return nil
	}

	for _, target := range []error{
		ErrInvalidAmount,
		ErrDuplicatePayment,
		ErrMissingReason,
		ErrInvalidMethod,
		ErrConfirmationRequired,
		ErrNothingToCorrect,
		appointment.ErrNotFound,
		ledger.ErrNotFound,
		clinic.ErrMissingScope,
	} {
		if errors.Is(err, target) {
			return err
		}
	}

	slog.Error("payment write failed", "error", err)

	return fmt.Errorf("%w: %v", ErrPaymentFailed, err)
}

func (s *Service) loadAppointment(ctx context.Context, tx PaymentTx, scope clinic.Scope, id uuid.UUID) (*appointment.Appointment, error) {
	a, err := tx.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	if !scope.Owns(a.ClinicID) {
		return nil, appointment.ErrNotFound
	}

	return a, nil
}

func (s *Service) loadPayment(ctx context.Context, tx PaymentTx, scope clinic.Scope, id uuid.UUID) (*ledger.Payment, error) {
	p, err := tx.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	if !scope.Owns(p.ClinicID) {
		return nil, ledger.ErrNotFound
	}

	return p, nil
}

// paymentAppointment resolves which appointment lock a payment-level
// operation has to take.
func (s *Service) paymentAppointment(ctx context.Context, scope clinic.Scope, paymentID uuid.UUID) (uuid.UUID, error) {
	p, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return uuid.Nil, translate(err)
	}

	if !scope.Owns(p.ClinicID) {
		return uuid.Nil, ledger.ErrNotFound
	}

	return p.AppointmentID, nil
}
