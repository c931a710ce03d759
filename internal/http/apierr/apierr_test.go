package apierr_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/clinicpay/internal/appointment"
	"github.com/MrJamesThe3rd/clinicpay/internal/billing"
	"github.com/MrJamesThe3rd/clinicpay/internal/closure"
	"github.com/MrJamesThe3rd/clinicpay/internal/http/apierr"
	"github.com/MrJamesThe3rd/clinicpay/internal/ledger"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{billing.ErrInvalidAmount, http.StatusUnprocessableEntity},
		{closure.ErrInvalidAmount, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: exceeds remaining", appointment.ErrInvalidAmount), http.StatusUnprocessableEntity},
		{billing.ErrMissingReason, http.StatusUnprocessableEntity},
		{billing.ErrInvalidMethod, http.StatusUnprocessableEntity},
		{billing.ErrDuplicatePayment, http.StatusConflict},
		{closure.ErrDuplicateClosure, http.StatusConflict},
		{billing.ErrConfirmationRequired, http.StatusConflict},
		{closure.ErrMissingExpectedRevenue, http.StatusPreconditionFailed},
		{appointment.ErrNotFound, http.StatusNotFound},
		{ledger.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: db down", billing.ErrPaymentFailed), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			got, _ := apierr.Status(tt.err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFrom_HidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	apierr.From(rec, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body apierr.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "internal_error", body.Code)
	assert.Equal(t, "internal error", body.Message)
}

func TestFrom_Conflict(t *testing.T) {
	rec := httptest.NewRecorder()
	apierr.From(rec, billing.ErrDuplicatePayment)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body apierr.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "duplicate_payment", body.Code)
}
