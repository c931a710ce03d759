package apierr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/clinicpay/internal/appointment"
	"github.com/MrJamesThe3rd/clinicpay/internal/billing"
	"github.com/MrJamesThe3rd/clinicpay/internal/clinic"
	"github.com/MrJamesThe3rd/clinicpay/internal/closure"
	"github.com/MrJamesThe3rd/clinicpay/internal/ledger"
	"github.com/MrJamesThe3rd/clinicpay/internal/revenue"
)

type Response struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type mapping struct {
	err    error
	status int
	code   string
}

// Order matters: the first match wins.
var mappings = []mapping{
	{billing.ErrPaymentFailed, http.StatusServiceUnavailable, "payment_failed"},
	{appointment.ErrInvalidAmount, http.StatusUnprocessableEntity, "invalid_amount"},
	{billing.ErrMissingReason, http.StatusUnprocessableEntity, "missing_reason"},
	{billing.ErrInvalidMethod, http.StatusUnprocessableEntity, "invalid_method"},
	{billing.ErrNothingToCorrect, http.StatusUnprocessableEntity, "nothing_to_correct"},
	{appointment.ErrInvalidAppointment, http.StatusUnprocessableEntity, "invalid_appointment"},
	{appointment.ErrInvalidStatus, http.StatusUnprocessableEntity, "invalid_status"},
	{revenue.ErrInvalidRange, http.StatusUnprocessableEntity, "invalid_range"},
	{appointment.ErrDuplicatePayment, http.StatusConflict, "duplicate_payment"},
	{closure.ErrDuplicateClosure, http.StatusConflict, "duplicate_closure"},
	{billing.ErrConfirmationRequired, http.StatusConflict, "confirmation_required"},
	{closure.ErrMissingExpectedRevenue, http.StatusPreconditionFailed, "missing_expected_revenue"},
	{appointment.ErrNotFound, http.StatusNotFound, "appointment_not_found"},
	{ledger.ErrNotFound, http.StatusNotFound, "payment_not_found"},
	{clinic.ErrMissingScope, http.StatusBadRequest, "missing_scope"},
}

func Write(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(Response{Code: code, Message: message}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Status returns the HTTP status and error code for err.
func Status(err error) (int, string) {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}

	return http.StatusInternalServerError, "internal_error"
}

// From writes err using the shared status mapping. Unknown errors are logged
// and their text is not exposed.
func From(w http.ResponseWriter, err error) {
	status, code := Status(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		Write(w, status, code, "internal error")

		return
	}

	Write(w, status, code, err.Error())
}

func BadRequest(w http.ResponseWriter, message string) {
	Write(w, http.StatusBadRequest, "bad_request", message)
}
