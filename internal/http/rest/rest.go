package rest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/clinicpay/internal/clinic"
)

// Scope reads the clinic from the {clinicID} route parameter.
func Scope(r *http.Request) (clinic.Scope, error) {
	return clinic.ParseScope(chi.URLParam(r, "clinicID"))
}

func ID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", name)
	}

	return id, nil
}

// DateRange parses the optional start and end query parameters as calendar
// days in loc. The end day is included in full.
func DateRange(r *http.Request, loc *time.Location) (start, end *time.Time, err error) {
	q := r.URL.Query()

	if s := q.Get("start"); s != "" {
		t, err := time.ParseInLocation(time.DateOnly, s, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid start date %q", s)
		}

		start = new(t)
	}

	if s := q.Get("end"); s != "" {
		t, err := time.ParseInLocation(time.DateOnly, s, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid end date %q", s)
		}

		end = new(t.AddDate(0, 0, 1).Add(-time.Nanosecond))
	}

	return start, end, nil
}

// Day parses a calendar day in loc.
func Day(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}

	return t, nil
}

func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}

	return nil
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
