package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/clinicpay/internal/appointment"
	"github.com/MrJamesThe3rd/clinicpay/internal/ledger"
)

type appointmentResponse struct {
	ID                uuid.UUID                 `json:"id"`
	ClientID          uuid.UUID                 `json:"client_id"`
	ClientName        string                    `json:"client_name"`
	Title             appointment.Title         `json:"title,omitempty"`
	Start             time.Time                 `json:"start"`
	End               time.Time                 `json:"end"`
	Status            appointment.Status        `json:"status"`
	Amount            int64                     `json:"amount"`
	AmountPaid        int64                     `json:"amount_paid"`
	Remaining         int64                     `json:"remaining"`
	PaymentStatus     appointment.PaymentStatus `json:"payment_status"`
	IsPackage         bool                      `json:"is_package"`
	PackageSessions   int                       `json:"package_sessions,omitempty"`
	SessionsPaid      int                       `json:"sessions_paid,omitempty"`
	SessionPrice      int64                     `json:"session_price,omitempty"`
	LastPaymentUpdate *time.Time                `json:"last_payment_update,omitempty"`
	Version           int64                     `json:"version"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
}

type paymentResponse struct {
	ID           uuid.UUID                 `json:"id"`
	Amount       int64                     `json:"amount"`
	Method       ledger.Method             `json:"method"`
	Status       appointment.PaymentStatus `json:"payment_status"`
	IsPrepayment bool                      `json:"is_prepayment"`
	SessionsPaid int                       `json:"sessions_paid,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
}

type collectResponse struct {
	Appointment appointmentResponse `json:"appointment"`
	Payment     paymentResponse     `json:"payment"`
}

func toResponse(a *appointment.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:                a.ID,
		ClientID:          a.ClientID,
		ClientName:        a.ClientName,
		Title:             a.Title,
		Start:             a.Start,
		End:               a.End,
		Status:            a.Status,
		Amount:            a.Amount,
		AmountPaid:        a.AmountPaid,
		Remaining:         a.Remaining(),
		PaymentStatus:     a.PaymentStatus,
		IsPackage:         a.IsPackage,
		PackageSessions:   a.PackageSessions,
		SessionsPaid:      a.SessionsPaid,
		SessionPrice:      a.SessionPrice(),
		LastPaymentUpdate: a.LastPaymentUpdate,
		Version:           a.Version,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func toResponseList(list []*appointment.Appointment) []appointmentResponse {
	resp := make([]appointmentResponse, len(list))
	for i, a := range list {
		resp[i] = toResponse(a)
	}

	return resp
}

func toPaymentResponse(p *ledger.Payment) paymentResponse {
	return paymentResponse{
		ID:           p.ID,
		Amount:       p.Amount,
		Method:       p.Method,
		Status:       p.PaymentStatus,
		IsPrepayment: p.IsPrepayment,
		SessionsPaid: p.SessionsPaid,
		CreatedAt:    p.CreatedAt,
	}
}
