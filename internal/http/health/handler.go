package health

import (
	"context"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/clinicpay/internal/http/rest"
)

// Check pings one dependency.
type Check func(ctx context.Context) error

type Handler struct {
	version string
	checks  map[string]Check
	timeout time.Duration
}

func NewHandler(version string, checks map[string]Check) *Handler {
	return &Handler{version: version, checks: checks, timeout: time.Second}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.liveness)
	r.Get("/readyz", h.readiness)
}

type livenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type readinessResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version,omitempty"`
	Dependencies map[string]string `json:"dependencies"`
}

func (h *Handler) liveness(w http.ResponseWriter, _ *http.Request) {
	rest.JSON(w, http.StatusOK, livenessResponse{Status: "ok", Version: h.version})
}

func (h *Handler) readiness(w http.ResponseWriter, r *http.Request) {
	resp := readinessResponse{
		Status:       "ok",
		Version:      h.version,
		Dependencies: make(map[string]string, len(h.checks)),
	}

	for _, name := range slices.Sorted(maps.Keys(h.checks)) {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		err := h.checks[name](ctx)
		cancel()

		if err != nil {
			resp.Dependencies[name] = "down"
			resp.Status = "error"

			continue
		}

		resp.Dependencies[name] = "ok"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}

	rest.JSON(w, status, resp)
}
