package ledger

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/clinicpay/internal/appointment"
)

// Method is how the client paid.
type Method string

const (
	MethodCash         Method = "cash"
	MethodCard         Method = "card"
	MethodBankTransfer Method = "bank_transfer"
	MethodOther        Method = "other"
)

// Methods lists every accepted payment method.
var Methods = []Method{MethodCash, MethodCard, MethodBankTransfer, MethodOther}

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodBankTransfer, MethodOther:
		return true
	}

	return false
}

// Payment is one collection event. Amounts are positive cents.
type Payment struct {
	ID              uuid.UUID
	ClinicID        uuid.UUID
	AppointmentID   uuid.UUID
	ClientID        uuid.UUID
	ClientName      string
	Amount          int64
	Method          Method
	PaymentStatus   appointment.PaymentStatus // Appointment status right after this payment
	SessionDate     time.Time
	IsPackage       bool
	IsPrepayment    bool
	PackageSessions int
	SessionsPaid    int
	CreatedAt       time.Time
}

// Refund records money given back against a payment.
type Refund struct {
	ID            uuid.UUID
	ClinicID      uuid.UUID
	PaymentID     uuid.UUID
	AppointmentID uuid.UUID
	Amount        int64
	Reason        string
	Reversed      bool // Whether the appointment payment state was rolled back
	CreatedAt     time.Time
}

// CorrectionTarget names the kind of record a correction rewrote.
type CorrectionTarget string

const (
	TargetPayment     CorrectionTarget = "payment"
	TargetAppointment CorrectionTarget = "appointment"
)

// Correction is the audit entry left by a privileged edit.
type Correction struct {
	ID        uuid.UUID
	ClinicID  uuid.UUID
	Target    CorrectionTarget
	TargetID  uuid.UUID
	Reason    string
	Before    json.RawMessage
	After     json.RawMessage
	CreatedAt time.Time
}
