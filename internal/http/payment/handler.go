package payment

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/clinicpay/internal/appointment"
	"github.com/MrJamesThe3rd/clinicpay/internal/auth"
	"github.com/MrJamesThe3rd/clinicpay/internal/billing"
	"github.com/MrJamesThe3rd/clinicpay/internal/http/apierr"
	"github.com/MrJamesThe3rd/clinicpay/internal/http/rest"
	"github.com/MrJamesThe3rd/clinicpay/internal/ledger"
)

type Handler struct {
	ledger  *ledger.Service
	billing *billing.Service
	loc     *time.Location
}

func NewHandler(ledgerSvc *ledger.Service, billingSvc *billing.Service, loc *time.Location) *Handler {
	return &Handler{ledger: ledgerSvc, billing: billingSvc, loc: loc}
}

// Routes mounts the ledger under /payments and /refunds.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Post("/{id}/refunds", h.refund)
		r.With(auth.RequireRole(auth.RoleAdmin)).Patch("/{id}", h.correct)
		r.With(auth.RequireRole(auth.RoleAdmin)).Get("/{id}/corrections", h.corrections)
	})

	r.Get("/refunds", h.listRefunds)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	scope, err := rest.Scope(r)
	if err != nil {
		apierr.From(w, err)
		return
	}

	start, end, err := rest.DateRange(r, h.loc)
	if err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	filter := ledger.ListFilter{StartDate: start, EndDate: end}
	q := r.URL.Query()

	if s := q.Get("client_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			apierr.BadRequest(w, "invalid client_id")
			return
		}

		filter.ClientID = &id
	}

	if s := q.Get("appointment_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			apierr.BadRequest(w, "invalid appointment_id")
			return
		}

		filter.AppointmentID = &id
	}

	if s := q.Get("method"); s != "" {
		m := ledger.Method(s)
		if !m.Valid() {
			apierr.From(w, billing.ErrInvalidMethod)
			return
		}

		filter.Method = &m
	}

	if s := q.Get("payment_status"); s != "" {
		status := appointment.PaymentStatus(s)
		if !status.Valid() {
			apierr.From(w, appointment.ErrInvalidStatus)
			return
		}

		filter.PaymentStatus = &status
	}

	payments, err := h.ledger.List(r.Context(), scope, filter)
	if err != nil {
		apierr.From(w, err)
		return
	}

	rest.JSON(w, http.StatusOK, toResponseList(payments))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	scope, err := rest.Scope(r)
	if err != nil {
		apierr.From(w, err)
		return
	}

	id, err := rest.ID(r, "id")
	if err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	p, err := h.ledger.Get(r.Context(), scope, id)
	if err != nil {
		apierr.From(w, err)
		return
	}

	rest.JSON(w, http.StatusOK, toResponse(p))
}

type refundRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

func (h *Handler) refund(w http.ResponseWriter, r *http.Request) {
	scope, err := rest.Scope(r)
	if err != nil {
		apierr.From(w, err)
		return
	}

	id, err := rest.ID(r, "id")
	if err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	var req refundRequest
	if err := rest.Decode(r, &req); err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	res, err := h.billing.Refund(r.Context(), scope, billing.RefundParams{
		PaymentID: id,
		Amount:    req.Amount,
		Reason:    req.Reason,
	})
	if err != nil {
		apierr.From(w, err)
		return
	}

	rest.JSON(w, http.StatusCreated, toRefundResponse(res.Refund))
}

type correctRequest struct {
	Amount        *int64                     `json:"amount"`
	PaymentStatus *appointment.PaymentStatus `json:"payment_status"`
	Reason        string                     `json:"reason"`
}

func (h *Handler) correct(w http.ResponseWriter, r *http.Request) {
	scope, err := rest.Scope(r)
	if err != nil {
		apierr.From(w, err)
		return
	}

	id, err := rest.ID(r, "id")
	if err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	var req correctRequest
	if err := rest.Decode(r, &req); err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	p, err := h.billing.CorrectPayment(r.Context(), scope, billing.CorrectParams{
		PaymentID: id,
		Amount:    req.Amount,
		Status:    req.PaymentStatus,
		Reason:    req.Reason,
	})
	if err != nil {
		apierr.From(w, err)
		return
	}

	rest.JSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) corrections(w http.ResponseWriter, r *http.Request) {
	scope, err := rest.Scope(r)
	if err != nil {
		apierr.From(w, err)
		return
	}

	id, err := rest.ID(r, "id")
	if err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	list, err := h.ledger.Corrections(r.Context(), scope, id)
	if err != nil {
		apierr.From(w, err)
		return
	}

	resp := make([]correctionResponse, len(list))
	for i, c := range list {
		resp[i] = toCorrectionResponse(c)
	}

	rest.JSON(w, http.StatusOK, resp)
}

func (h *Handler) listRefunds(w http.ResponseWriter, r *http.Request) {
	scope, err := rest.Scope(r)
	if err != nil {
		apierr.From(w, err)
		return
	}

	start, end, err := rest.DateRange(r, h.loc)
	if err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	filter := ledger.RefundFilter{StartDate: start, EndDate: end}

	if s := r.URL.Query().Get("payment_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			apierr.BadRequest(w, "invalid payment_id")
			return
		}

		filter.PaymentID = &id
	}

	refunds, err := h.ledger.Refunds(r.Context(), scope, filter)
	if err != nil {
		apierr.From(w, err)
		return
	}

	resp := make([]refundResponse, len(refunds))
	for i, rf := range refunds {
		resp[i] = toRefundResponse(rf)
	}

	rest.JSON(w, http.StatusOK, resp)
}
