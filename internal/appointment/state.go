package appointment

import (
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/clinicpay/internal/money"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrDuplicatePayment = errors.New("appointment is already fully paid")
	ErrInvariant        = errors.New("payment invariant violated")
)

// Remaining is what is still owed on the appointment.
func (a *Appointment) Remaining() int64 {
	return a.Amount - a.AmountPaid
}

// SessionPrice is the per-session price of a package, in whole cents.
// It is zero for non-package appointments.
func (a *Appointment) SessionPrice() int64 {
	if !a.IsPackage || a.PackageSessions < 1 {
		return 0
	}

	return a.Amount / int64(a.PackageSessions)
}

// Settled reports whether nothing more can be collected.
func (a *Appointment) Settled() bool {
	if a.IsPackage {
		return a.SessionsPaid >= a.PackageSessions
	}

	return a.AmountPaid >= a.Amount
}

// DerivePaymentStatus computes the status implied by the counters.
func (a *Appointment) DerivePaymentStatus() PaymentStatus {
	return derive(a.IsPackage, a.Amount, a.AmountPaid, a.PackageSessions, a.SessionsPaid)
}

func derive(isPackage bool, amount, amountPaid int64, packageSessions, sessionsPaid int) PaymentStatus {
	if isPackage {
		switch {
		case sessionsPaid >= packageSessions:
			return PaymentPaid
		case sessionsPaid == 0 && amountPaid == 0:
			return PaymentUnpaid
		default:
			return PaymentPartial
		}
	}

	switch {
	case amountPaid == 0:
		return PaymentUnpaid
	case amountPaid >= amount:
		return PaymentPaid
	default:
		return PaymentPartial
	}
}

// CheckInvariants reports the first payment invariant the appointment breaks.
func (a *Appointment) CheckInvariants() error {
	if a.AmountPaid < 0 || a.AmountPaid > a.Amount {
		return fmt.Errorf("%w: amount paid %s outside 0..%s",
			ErrInvariant, money.Format(a.AmountPaid), money.Format(a.Amount))
	}

	if a.IsPackage {
		if a.PackageSessions < 1 {
			return fmt.Errorf("%w: package must have at least one session", ErrInvariant)
		}

		if a.SessionsPaid < 0 || a.SessionsPaid > a.PackageSessions {
			return fmt.Errorf("%w: sessions paid %d outside 0..%d", ErrInvariant, a.SessionsPaid, a.PackageSessions)
		}
		if a.AmountPaid == a.Amount && a.SessionsPaid < a.PackageSessions {
			return fmt.Errorf("%w: package total paid with %d of %d sessions", ErrInvariant, a.SessionsPaid, a.PackageSessions)
		}
	} else if a.SessionsPaid != 0 {
		return fmt.Errorf("%w: sessions paid set on a single session", ErrInvariant)
	}

	if want := a.DerivePaymentStatus(); a.PaymentStatus != want {
		return fmt.Errorf("%w: status %q, counters imply %q", ErrInvariant, a.PaymentStatus, want)
	}

	return nil
}

// State returns the current payment snapshot.
func (a *Appointment) State() PaymentState {
	s := PaymentState{
		AppointmentID: a.ID,
		AmountPaid:    a.AmountPaid,
		SessionsPaid:  a.SessionsPaid,
		PaymentStatus: a.PaymentStatus,
		Version:       a.Version,
	}

	if a.LastPaymentUpdate != nil {
		s.LastPaymentUpdate = *a.LastPaymentUpdate
	}

	return s
}

// Apply copies a planned snapshot onto the appointment.
func (a *Appointment) Apply(s PaymentState) {
	a.AmountPaid = s.AmountPaid
	a.SessionsPaid = s.SessionsPaid
	a.PaymentStatus = s.PaymentStatus
	a.Version = s.Version

	if !s.LastPaymentUpdate.IsZero() {
		a.LastPaymentUpdate = new(s.LastPaymentUpdate)
	}
}

// Plan is the outcome of validating a payment against an appointment.
type Plan struct {
	State      PaymentState
	Prepayment bool
}

// PlanPayment validates a collection of amount cents and returns the state the
// appointment moves to. The appointment itself is left untouched.
//
// A package is prepaid in full when fullPackage is set or when the amount equals
// the package total and no session has been paid yet.
func (a *Appointment) PlanPayment(amount int64, fullPackage bool) (Plan, error) {
	if amount <= 0 {
		return Plan{}, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}

	if a.Settled() {
		return Plan{}, ErrDuplicatePayment
	}

	next := a.State()
	next.Version = a.Version + 1

	if a.IsPackage && (fullPackage || (amount == a.Amount && a.SessionsPaid == 0)) {
		if a.SessionsPaid > 0 {
			return Plan{}, fmt.Errorf("%w: %d of %d sessions already paid, the package can no longer be prepaid",
				ErrInvalidAmount, a.SessionsPaid, a.PackageSessions)
		}

		if amount != a.Amount {
			return Plan{}, fmt.Errorf("%w: package prepayment must equal the package total %s",
				ErrInvalidAmount, money.Format(a.Amount))
		}

		next.AmountPaid = a.Amount
		next.SessionsPaid = a.PackageSessions
		next.PaymentStatus = PaymentPaid

		return Plan{State: next, Prepayment: true}, nil
	}

	if a.IsPackage && a.SessionsPaid > 0 && amount > a.SessionPrice() {
		return Plan{}, fmt.Errorf("%w: %s exceeds the per-session price %s",
			ErrInvalidAmount, money.Format(amount), money.Format(a.SessionPrice()))
	}

	if amount > a.Remaining() {
		return Plan{}, fmt.Errorf("%w: %s exceeds the remaining %s",
			ErrInvalidAmount, money.Format(amount), money.Format(a.Remaining()))
	}

	next.AmountPaid += amount
	if a.IsPackage {
		next.SessionsPaid++

		// Covering the total settles every session left.
		if next.AmountPaid == a.Amount {
			next.SessionsPaid = a.PackageSessions
		}
	}

	next.PaymentStatus = derive(a.IsPackage, a.Amount, next.AmountPaid, a.PackageSessions, next.SessionsPaid)

	return Plan{State: next}, nil
}

// PlanReversal returns the state after amount cents are given back to the client.
// Package sessions are clamped to the ones the remaining amount still covers.
func (a *Appointment) PlanReversal(amount int64) PaymentState {
	next := a.State()
	next.Version = a.Version + 1
	next.AmountPaid = max(a.AmountPaid-amount, 0)

	if a.IsPackage {
		if price := a.SessionPrice(); price > 0 {
			next.SessionsPaid = min(next.SessionsPaid, int(next.AmountPaid/price))
		} else {
			next.SessionsPaid = 0
		}
	}

	next.PaymentStatus = derive(a.IsPackage, a.Amount, next.AmountPaid, a.PackageSessions, next.SessionsPaid)

	return next
}

// PlanAdjustment validates a manual edit of the payment counters.
func (a *Appointment) PlanAdjustment(amountPaid int64, sessionsPaid int) (PaymentState, error) {
	if amountPaid < 0 || amountPaid > a.Amount {
		return PaymentState{}, fmt.Errorf("%w: amount paid must be within 0..%s",
			ErrInvalidAmount, money.Format(a.Amount))
	}

	if !a.IsPackage && sessionsPaid != 0 {
		return PaymentState{}, fmt.Errorf("%w: sessions paid only applies to packages", ErrInvalidAmount)
	}

	if a.IsPackage && (sessionsPaid < 0 || sessionsPaid > a.PackageSessions) {
		return PaymentState{}, fmt.Errorf("%w: sessions paid must be within 0..%d",
			ErrInvalidAmount, a.PackageSessions)
	}

	if a.IsPackage && amountPaid == a.Amount && sessionsPaid < a.PackageSessions {
		return PaymentState{}, fmt.Errorf("%w: a fully paid package must have all %d sessions paid",
			ErrInvalidAmount, a.PackageSessions)
	}

	next := a.State()
	next.Version = a.Version + 1
	next.AmountPaid = amountPaid
	next.SessionsPaid = sessionsPaid
	next.PaymentStatus = derive(a.IsPackage, a.Amount, amountPaid, a.PackageSessions, sessionsPaid)

	return next, nil
}
