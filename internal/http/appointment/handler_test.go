package appointment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/clinicpay/internal/appointment"
	"github.com/MrJamesThe3rd/clinicpay/internal/billing"
	appointmentHandler "github.com/MrJamesThe3rd/clinicpay/internal/http/appointment"
	"github.com/MrJamesThe3rd/clinicpay/internal/ledger"
)

type fixture struct {
	appts    *appointment.MockRepository
	repo     *billing.MockRepository
	tx       *billing.MockPaymentTx
	clinicID uuid.UUID
	router   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		appts:    appointment.NewMockRepository(ctrl),
		repo:     billing.NewMockRepository(ctrl),
		tx:       billing.NewMockPaymentTx(ctrl),
		clinicID: uuid.New(),
	}

	locker := billing.NewMockLocker(ctrl)
	locker.EXPECT().
		WithLock(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ uuid.UUID, fn func(context.Context) error) error {
			return fn(ctx)
		}).
		AnyTimes()

	h := appointmentHandler.NewHandler(
		appointment.NewService(f.appts),
		billing.NewService(f.repo, locker, billing.Options{MaxRetries: 1}),
		time.UTC,
	)

	r := chi.NewRouter()
	r.Route("/clinics/{clinicID}/appointments", h.Routes)
	f.router = r

	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/clinics/"+f.clinicID.String()+"/appointments"+path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func (f *fixture) appointment(amount, paid int64) *appointment.Appointment {
	a := &appointment.Appointment{
		ID:         uuid.New(),
		ClinicID:   f.clinicID,
		ClientID:   uuid.New(),
		ClientName: "Ana Silva",
		Start:      time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
		End:        time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC),
		Amount:     amount,
		AmountPaid: paid,
		Version:    1,
	}
	a.PaymentStatus = a.DerivePaymentStatus()

	return a
}

func TestHandler_Collect(t *testing.T) {
	f := newFixture(t)
	a := f.appointment(10000, 0)

	f.repo.EXPECT().BeginPayment(gomock.Any(), a.ID).Return(f.tx, nil)
	f.tx.EXPECT().Rollback().Return(nil)
	f.tx.EXPECT().GetAppointment(gomock.Any(), a.ID).Return(a, nil)
	f.tx.EXPECT().UpdatePaymentState(gomock.Any(), gomock.Any(), int64(1)).Return(nil)
	f.tx.EXPECT().
		InsertPayment(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *ledger.Payment) error {
			p.ID = uuid.New()
			return nil
		})
	f.tx.EXPECT().Commit().Return(nil)

	rec := f.do(http.MethodPost, "/"+a.ID.String()+"/payments", `{"amount":4000,"method":"card"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Appointment struct {
			AmountPaid    int64  `json:"amount_paid"`
			Remaining     int64  `json:"remaining"`
			PaymentStatus string `json:"payment_status"`
		} `json:"appointment"`
		Payment struct {
			Amount int64  `json:"amount"`
			Method string `json:"method"`
		} `json:"payment"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, int64(4000), body.Appointment.AmountPaid)
	assert.Equal(t, int64(6000), body.Appointment.Remaining)
	assert.Equal(t, "partial", body.Appointment.PaymentStatus)
	assert.Equal(t, int64(4000), body.Payment.Amount)
	assert.Equal(t, "card", body.Payment.Method)
}

func TestHandler_Collect_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		setup    func(f *fixture, a *appointment.Appointment)
		wantCode int
		wantErr  string
	}{
		{
			name:     "MalformedBody",
			body:     `{"amount":`,
			wantCode: http.StatusBadRequest,
			wantErr:  "bad_request",
		},
		{
			name:     "UnknownField",
			body:     `{"amount":100,"method":"cash","tip":5}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "bad_request",
		},
		{
			name:     "ZeroAmount",
			body:     `{"amount":0,"method":"cash"}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "invalid_amount",
		},
		{
			name:     "UnknownMethod",
			body:     `{"amount":100,"method":"crypto"}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "invalid_method",
		},
		{
			name: "AlreadyPaid",
			body: `{"amount":100,"method":"cash"}`,
			setup: func(f *fixture, a *appointment.Appointment) {
				a.AmountPaid = a.Amount
				a.PaymentStatus = appointment.PaymentPaid

				f.repo.EXPECT().BeginPayment(gomock.Any(), a.ID).Return(f.tx, nil)
				f.tx.EXPECT().Rollback().Return(nil)
				f.tx.EXPECT().GetAppointment(gomock.Any(), a.ID).Return(a, nil)
			},
			wantCode: http.StatusConflict,
			wantErr:  "duplicate_payment",
		},
		{
			name: "VersionConflictExhausted",
			body: `{"amount":100,"method":"cash"}`,
			setup: func(f *fixture, a *appointment.Appointment) {
				f.repo.EXPECT().BeginPayment(gomock.Any(), a.ID).Return(f.tx, nil)
				f.tx.EXPECT().Rollback().Return(nil)
				f.tx.EXPECT().GetAppointment(gomock.Any(), a.ID).Return(a, nil)
				f.tx.EXPECT().UpdatePaymentState(gomock.Any(), gomock.Any(), a.Version).Return(billing.ErrVersionConflict)
			},
			wantCode: http.StatusServiceUnavailable,
			wantErr:  "payment_failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			a := f.appointment(10000, 0)

			if tt.setup != nil {
				tt.setup(f, a)
			}

			rec := f.do(http.MethodPost, "/"+a.ID.String()+"/payments", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)

			var body struct {
				Code string `json:"code"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantErr, body.Code)
		})
	}
}

func TestHandler_Get(t *testing.T) {
	f := newFixture(t)
	mine := f.appointment(5000, 0)
	theirs := f.appointment(5000, 0)
	theirs.ClinicID = uuid.New()

	f.appts.EXPECT().GetAppointment(gomock.Any(), mine.ID).Return(mine, nil)
	f.appts.EXPECT().GetAppointment(gomock.Any(), theirs.ID).Return(theirs, nil)

	rec := f.do(http.MethodGet, "/"+mine.ID.String(), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/"+theirs.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodGet, "/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_AdminRoutesNeedRole(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodDelete, "/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPatch, "/"+uuid.NewString()+"/payment", `{"amount_paid":0,"reason":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
