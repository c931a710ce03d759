package revenue_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/clinicpay/internal/clinic"
	revenueHandler "github.com/MrJamesThe3rd/clinicpay/internal/http/revenue"
	"github.com/MrJamesThe3rd/clinicpay/internal/ledger"
	"github.com/MrJamesThe3rd/clinicpay/internal/revenue"
)

func newRouter(l *revenue.MockLedger) http.Handler {
	svc := revenue.NewService(l, revenue.Sharing{ClinicPercentage: 40})
	h := revenueHandler.NewHandler(svc, time.UTC)

	r := chi.NewRouter()
	r.Route("/clinics/{clinicID}/revenue", h.Routes)

	return r
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

func TestHandler_Summary(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l := revenue.NewMockLedger(ctrl)
	router := newRouter(l)
	clinicID := uuid.New()

	wantStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)

	l.EXPECT().
		List(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, scope clinic.Scope, f ledger.ListFilter) ([]*ledger.Payment, error) {
			assert.Equal(t, clinicID, scope.ClinicID)
			require.NotNil(t, f.StartDate)
			require.NotNil(t, f.EndDate)
			assert.Equal(t, wantStart, *f.StartDate)
			assert.Equal(t, wantEnd, *f.EndDate)

			return []*ledger.Payment{
				{ClientName: "Ana Silva", Amount: 10000, Method: ledger.MethodCash},
				{ClientName: "Ana Silva", Amount: 5000, Method: ledger.MethodCard},
				{ClientName: "Bruno Costa", Amount: 20000, Method: ledger.MethodCash},
			}, nil
		})
	l.EXPECT().
		Refunds(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]*ledger.Refund{{Amount: 3000, Reason: "missed session"}}, nil)

	rec := get(router, "/clinics/"+clinicID.String()+"/revenue?start=2024-01-01&end=2024-01-31")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"start": "2024-01-01",
		"end": "2024-01-31",
		"total": 35000,
		"by_method": {"cash": 30000, "card": 5000},
		"by_client": {"Ana Silva": 15000, "Bruno Costa": 20000},
		"clinic_share": 14000,
		"physician_share": 21000,
		"refunded": 3000,
		"net": 32000,
		"count": 3
	}`, rec.Body.String())
}

func TestHandler_Summary_DefaultsToCurrentMonth(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l := revenue.NewMockLedger(ctrl)
	router := newRouter(l)

	l.EXPECT().
		List(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ clinic.Scope, f ledger.ListFilter) ([]*ledger.Payment, error) {
			require.NotNil(t, f.StartDate)
			require.NotNil(t, f.EndDate)
			assert.Equal(t, 1, f.StartDate.Day())
			assert.Zero(t, f.StartDate.Hour())
			assert.True(t, f.EndDate.After(*f.StartDate))

			return nil, nil
		})
	l.EXPECT().Refunds(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	rec := get(router, "/clinics/"+uuid.NewString()+"/revenue")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":0`)
}

func TestHandler_Summary_Errors(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "BadStart", query: "?start=01-01-2024", want: http.StatusBadRequest},
		{name: "BadEnd", query: "?start=2024-01-01&end=tomorrow", want: http.StatusBadRequest},
		{name: "EndBeforeStart", query: "?start=2024-02-01&end=2024-01-01", want: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			router := newRouter(revenue.NewMockLedger(ctrl))
			rec := get(router, "/clinics/"+uuid.NewString()+"/revenue"+tt.query)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
