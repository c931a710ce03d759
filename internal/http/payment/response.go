package payment

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/clinicpay/internal/appointment"
	"github.com/MrJamesThe3rd/clinicpay/internal/ledger"
)

type paymentResponse struct {
	ID              uuid.UUID                 `json:"id"`
	AppointmentID   uuid.UUID                 `json:"appointment_id"`
	ClientID        uuid.UUID                 `json:"client_id"`
	ClientName      string                    `json:"client_name"`
	Amount          int64                     `json:"amount"`
	Method          ledger.Method             `json:"method"`
	PaymentStatus   appointment.PaymentStatus `json:"payment_status"`
	SessionDate     time.Time                 `json:"session_date"`
	IsPackage       bool                      `json:"is_package"`
	IsPrepayment    bool                      `json:"is_prepayment"`
	PackageSessions int                       `json:"package_sessions,omitempty"`
	SessionsPaid    int                       `json:"sessions_paid,omitempty"`
	CreatedAt       time.Time                 `json:"created_at"`
}

type refundResponse struct {
	ID            uuid.UUID `json:"id"`
	PaymentID     uuid.UUID `json:"payment_id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	Amount        int64     `json:"amount"`
	Reason        string    `json:"reason"`
	Reversed      bool      `json:"reversed"`
	CreatedAt     time.Time `json:"created_at"`
}

type correctionResponse struct {
	ID        uuid.UUID               `json:"id"`
	Target    ledger.CorrectionTarget `json:"target"`
	TargetID  uuid.UUID               `json:"target_id"`
	Reason    string                  `json:"reason"`
	Before    json.RawMessage         `json:"before"`
	After     json.RawMessage         `json:"after"`
	CreatedAt time.Time               `json:"created_at"`
}

func toResponse(p *ledger.Payment) paymentResponse {
	return paymentResponse{
		ID:              p.ID,
		AppointmentID:   p.AppointmentID,
		ClientID:        p.ClientID,
		ClientName:      p.ClientName,
		Amount:          p.Amount,
		Method:          p.Method,
		PaymentStatus:   p.PaymentStatus,
		SessionDate:     p.SessionDate,
		IsPackage:       p.IsPackage,
		IsPrepayment:    p.IsPrepayment,
		PackageSessions: p.PackageSessions,
		SessionsPaid:    p.SessionsPaid,
		CreatedAt:       p.CreatedAt,
	}
}

func toResponseList(payments []*ledger.Payment) []paymentResponse {
	resp := make([]paymentResponse, len(payments))
	for i, p := range payments {
		resp[i] = toResponse(p)
	}

	return resp
}

func toRefundResponse(r *ledger.Refund) refundResponse {
	return refundResponse{
		ID:            r.ID,
		PaymentID:     r.PaymentID,
		AppointmentID: r.AppointmentID,
		Amount:        r.Amount,
		Reason:        r.Reason,
		Reversed:      r.Reversed,
		CreatedAt:     r.CreatedAt,
	}
}

func toCorrectionResponse(c *ledger.Correction) correctionResponse {
	return correctionResponse{
		ID:        c.ID,
		Target:    c.Target,
		TargetID:  c.TargetID,
		Reason:    c.Reason,
		Before:    c.Before,
		After:     c.After,
		CreatedAt: c.CreatedAt,
	}
}
