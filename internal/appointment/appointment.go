package appointment

import (
	"time"

	"github.com/google/uuid"
)

// MinDuration is the shortest appointment that can be scheduled.
const MinDuration = 15 * time.Minute

// Title is the kind of consultation booked.
type Title string

const (
	TitleNutrition Title = "nutrition"
	TitleMental    Title = "mental"
	TitleBoth      Title = "both"
)

// Status tracks service delivery, independent of payment.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusDone      Status = "done"
	StatusMissed    Status = "missed"
	StatusPostponed Status = "postponed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusDone, StatusMissed, StatusPostponed:
		return true
	}

	return false
}

// PaymentStatus is the payment dimension of an appointment.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentUnpaid, PaymentPartial, PaymentPaid:
		return true
	}

	return false
}

// Appointment is a scheduled session, or a package of sessions billed as one unit.
type Appointment struct {
	ID         uuid.UUID
	ClinicID   uuid.UUID
	ClientID   uuid.UUID
	ClientName string
	Title      Title
	Start      time.Time
	End        time.Time
	Status     Status

	Amount            int64 // Total owed in cents
	AmountPaid        int64 // Collected so far in cents
	PaymentStatus     PaymentStatus
	IsPackage         bool
	PackageSessions   int
	SessionsPaid      int
	LastPaymentUpdate *time.Time

	// Version is bumped by every payment-affecting update and guards
	// conditional writes.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PaymentState is the snapshot of the payment fields handed back to callers
// after a collection, refund or adjustment.
type PaymentState struct {
	AppointmentID     uuid.UUID
	AmountPaid        int64
	SessionsPaid      int
	PaymentStatus     PaymentStatus
	LastPaymentUpdate time.Time
	Version           int64
}
