package appointment

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
	svc     *appointment.Service
	billing *billing.Service
	loc     *time.Location
}

func NewHandler(svc *appointment.Service, billingSvc *billing.Service, loc *time.Location) *Handler {
	return &Handler{svc: svc, billing: billingSvc, loc: loc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/status", h.updateStatus)
	r.Post("/{id}/payments", h.collect)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(auth.RoleAdmin))
		r.Delete("/{id}", h.delete)
		r.Patch("/{id}/payment", h.adjustPayment)
	})
}

type createAppointmentRequest struct {
	ClientID        uuid.UUID         `json:"client_id"`
	ClientName      string            `json:"client_name"`
	Title           appointment.Title `json:"title"`
	Start           time.Time         `json:"start"`
	End             time.Time         `json:"end"`
	Amount          int64             `json:"amount"`
	IsPackage       bool              `json:"is_package"`
	PackageSessions int               `json:"package_sessions"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	scope, err := rest.Scope(r)
	if err != nil {
		apierr.From(w, err)
		return
	}

	var req createAppointmentRequest
	if err := rest.Decode(r, &req); err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	a, err := h.svc.Create(r.Context(), scope, appointment.CreateParams{
		ClientID:        req.ClientID,
		ClientName:      req.ClientName,
		Title:           req.Title,
		Start:           req.Start,
		End:             req.End,
		Amount:          req.Amount,
		IsPackage:       req.IsPackage,
		PackageSessions: req.PackageSessions,
	})
	if err != nil {
		apierr.From(w, err)
		return
	}

	rest.JSON(w, http.StatusCreated, toResponse(a))
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

	filter := appointment.ListFilter{StartFrom: start}
	if end != nil {
		filter.StartBefore = new(end.Add(time.Nanosecond))
	}

	if s := r.URL.Query().Get("client_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			apierr.BadRequest(w, "invalid client_id")
			return
		}

		filter.ClientID = &id
	}

	if s := r.URL.Query().Get("payment_status"); s != "" {
		filter.PaymentStatus = new(appointment.PaymentStatus(s))
	}

	list, err := h.svc.List(r.Context(), scope, filter)
	if err != nil {
		apierr.From(w, err)
		return
	}

	rest.JSON(w, http.StatusOK, toResponseList(list))
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

	a, err := h.svc.Get(r.Context(), scope, id)
	if err != nil {
		apierr.From(w, err)
		return
	}

	rest.JSON(w, http.StatusOK, toResponse(a))
}

type updateStatusRequest struct {
	Status appointment.Status `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
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

	var req updateStatusRequest
	if err := rest.Decode(r, &req); err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	if err := h.svc.UpdateStatus(r.Context(), scope, id, req.Status); err != nil {
		apierr.From(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.Delete(r.Context(), scope, id); err != nil {
		apierr.From(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type collectRequest struct {
	Amount      int64         `json:"amount"`
	Method      ledger.Method `json:"method"`
	FullPackage bool          `json:"full_package"`
}

func (h *Handler) collect(w http.ResponseWriter, r *http.Request) {
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

	var req collectRequest
	if err := rest.Decode(r, &req); err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	res, err := h.billing.Collect(r.Context(), scope, billing.CollectParams{
		AppointmentID: id,
		Amount:        req.Amount,
		Method:        req.Method,
		FullPackage:   req.FullPackage,
	})
	if err != nil {
		apierr.From(w, err)
		return
	}

	rest.JSON(w, http.StatusCreated, collectResponse{
		Appointment: toResponse(res.Appointment),
		Payment:     toPaymentResponse(res.Payment),
	})
}

type adjustPaymentRequest struct {
	AmountPaid   int64  `json:"amount_paid"`
	SessionsPaid int    `json:"sessions_paid"`
	Confirm      bool   `json:"confirm"`
	Reason       string `json:"reason"`
}

func (h *Handler) adjustPayment(w http.ResponseWriter, r *http.Request) {
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

	var req adjustPaymentRequest
	if err := rest.Decode(r, &req); err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	a, err := h.billing.AdjustAppointment(r.Context(), scope, billing.AdjustParams{
		AppointmentID: id,
		AmountPaid:    req.AmountPaid,
		SessionsPaid:  req.SessionsPaid,
		Confirm:       req.Confirm,
		Reason:        req.Reason,
	})
	if err != nil {
		apierr.From(w, err)
		return
	}

	rest.JSON(w, http.StatusOK, toResponse(a))
}
