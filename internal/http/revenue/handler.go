package revenue

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/clinicpay/internal/http/apierr"
	"github.com/MrJamesThe3rd/clinicpay/internal/http/rest"
	"github.com/MrJamesThe3rd/clinicpay/internal/ledger"
	"github.com/MrJamesThe3rd/clinicpay/internal/revenue"
)

type Handler struct {
	svc *revenue.Service
	loc *time.Location
	now func() time.Time
}

func NewHandler(svc *revenue.Service, loc *time.Location) *Handler {
	return &Handler{svc: svc, loc: loc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.summary)
}

type summaryResponse struct {
	Start          string                  `json:"start"`
	End            string                  `json:"end"`
	Total          int64                   `json:"total"`
	ByMethod       map[ledger.Method]int64 `json:"by_method"`
	ByClient       map[string]int64        `json:"by_client"`
	ClinicShare    int64                   `json:"clinic_share"`
	PhysicianShare int64                   `json:"physician_share"`
	Refunded       int64                   `json:"refunded"`
	Net            int64                   `json:"net"`
	Count          int                     `json:"count"`
}

// summary defaults to the current month when no range is given.
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
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
		start = new(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, h.loc))
	}

	if end == nil {
		end = new(time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, h.loc).Add(-time.Nanosecond))
	}

	s, err := h.svc.Summary(r.Context(), scope, *start, *end)
	if err != nil {
		apierr.From(w, err)
		return
	}

	rest.JSON(w, http.StatusOK, summaryResponse{
		Start:          start.Format(time.DateOnly),
		End:            end.Format(time.DateOnly),
		Total:          s.Total,
		ByMethod:       s.ByMethod,
		ByClient:       s.ByClient,
		ClinicShare:    s.ClinicShare,
		PhysicianShare: s.PhysicianShare,
		Refunded:       s.Refunded,
		Net:            s.Net,
		Count:          s.Count,
	})
}
