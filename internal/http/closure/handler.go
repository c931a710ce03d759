package closure

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/clinicpay/internal/auth"
	"github.com/MrJamesThe3rd/clinicpay/internal/closure"
	"github.com/MrJamesThe3rd/clinicpay/internal/http/apierr"
	"github.com/MrJamesThe3rd/clinicpay/internal/http/rest"
)

type Handler struct {
	svc *closure.Service
	loc *time.Location
	now func() time.Time
}

func NewHandler(svc *closure.Service, loc *time.Location) *Handler {
	return &Handler{svc: svc, loc: loc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.history)
	r.Post("/expected", h.computeExpected)
	r.With(auth.RequireRole(auth.RoleAdmin)).Post("/", h.closeDay)
}

// day resolves an optional YYYY-MM-DD, defaulting to today.
func (h *Handler) day(s string) (time.Time, error) {
	if s == "" {
		return h.now().In(h.loc), nil
	}

	return rest.Day(s, h.loc)
}

type computeRequest struct {
	Date string `json:"date"`
}

type expectedResponse struct {
	Date            string `json:"date"`
	ExpectedRevenue int64  `json:"expected_revenue"`
}

func (h *Handler) computeExpected(w http.ResponseWriter, r *http.Request) {
	scope, err := rest.Scope(r)
	if err != nil {
		apierr.From(w, err)
		return
	}

	var req computeRequest
	if err := rest.Decode(r, &req); err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	date, err := h.day(req.Date)
	if err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	expected, err := h.svc.ComputeExpected(r.Context(), scope, date)
	if err != nil {
		apierr.From(w, err)
		return
	}

	rest.JSON(w, http.StatusOK, expectedResponse{
		Date:            h.svc.Day(date).Format(time.DateOnly),
		ExpectedRevenue: expected,
	})
}

type closeRequest struct {
	Date             string `json:"date"`
	ConfirmedRevenue int64  `json:"confirmed_revenue"`
	Notes            string `json:"notes"`
}

func (h *Handler) closeDay(w http.ResponseWriter, r *http.Request) {
	scope, err := rest.Scope(r)
	if err != nil {
		apierr.From(w, err)
		return
	}

	var req closeRequest
	if err := rest.Decode(r, &req); err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	date, err := h.day(req.Date)
	if err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	c, err := h.svc.CloseDay(r.Context(), scope, date, req.ConfirmedRevenue, req.Notes)
	if err != nil {
		apierr.From(w, err)
		return
	}

	rest.JSON(w, http.StatusCreated, toResponse(c))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
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

	now := h.now().In(h.loc)
	if start == nil {
		start = new(now.AddDate(0, 0, -30))
	}

	if end == nil {
		end = &now
	}

	list, err := h.svc.History(r.Context(), scope, *start, *end)
	if err != nil {
		apierr.From(w, err)
		return
	}

	resp := make([]closureResponse, len(list))
	for i, c := range list {
		resp[i] = toResponse(c)
	}

	rest.JSON(w, http.StatusOK, resp)
}
