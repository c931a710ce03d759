package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/clinicpay/internal/http/health"
)

func serve(h *health.Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Routes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

func TestHandler_Readiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name     string
		checks   map[string]health.Check
		wantCode int
		wantDeps map[string]string
	}{
		{
			name:     "AllUp",
			checks:   map[string]health.Check{"postgres": ok, "redis": ok},
			wantCode: http.StatusOK,
			wantDeps: map[string]string{"postgres": "ok", "redis": "ok"},
		},
		{
			name:     "RedisDown",
			checks:   map[string]health.Check{"postgres": ok, "redis": down},
			wantCode: http.StatusServiceUnavailable,
			wantDeps: map[string]string{"postgres": "ok", "redis": "down"},
		},
		{
			name:     "NoDependencies",
			checks:   nil,
			wantCode: http.StatusOK,
			wantDeps: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(health.NewHandler("test", tt.checks), "/readyz")

			assert.Equal(t, tt.wantCode, rec.Code)

			var body struct {
				Dependencies map[string]string `json:"dependencies"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantDeps, body.Dependencies)
		})
	}
}

func TestHandler_Liveness(t *testing.T) {
	down := func(context.Context) error { return errors.New("down") }

	rec := serve(health.NewHandler("1.2.3", map[string]health.Check{"postgres": down}), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","version":"1.2.3"}`, rec.Body.String())
}
