package payment_test

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

	"github.com/MrJamesThe3rd/clinicpay/internal/billing"
	paymentHandler "github.com/MrJamesThe3rd/clinicpay/internal/http/payment"
	"github.com/MrJamesThe3rd/clinicpay/internal/ledger"
)

type fixture struct {
	ledger   *ledger.MockRepository
	repo     *billing.MockRepository
	tx       *billing.MockPaymentTx
	clinicID uuid.UUID
	router   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		ledger:   ledger.NewMockRepository(ctrl),
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

	h := paymentHandler.NewHandler(
		ledger.NewService(f.ledger),
		billing.NewService(f.repo, locker, billing.Options{MaxRetries: 1}),
		time.UTC,
	)

	r := chi.NewRouter()
	r.Route("/clinics/{clinicID}", h.Routes)
	f.router = r

	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/clinics/"+f.clinicID.String()+path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func (f *fixture) payment(amount int64) *ledger.Payment {
	return &ledger.Payment{
		ID:            uuid.New(),
		ClinicID:      f.clinicID,
		AppointmentID: uuid.New(),
		ClientName:    "Ana Silva",
		Amount:        amount,
		Method:        ledger.MethodCash,
	}
}

func TestHandler_Refund(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		refunded int64
		wantCode int
	}{
		{
			name:     "Partial",
			body:     `{"amount":3000,"reason":"client discount"}`,
			wantCode: http.StatusCreated,
		},
		{
			name:     "BeyondRefundable",
			body:     `{"amount":5000,"reason":"second refund"}`,
			refunded: 6000,
			wantCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			p := f.payment(10000)

			f.repo.EXPECT().GetPayment(gomock.Any(), p.ID).Return(p, nil)
			f.repo.EXPECT().BeginPayment(gomock.Any(), p.AppointmentID).Return(f.tx, nil)
			f.tx.EXPECT().Rollback().Return(nil)
			f.tx.EXPECT().GetPayment(gomock.Any(), p.ID).Return(p, nil)
			f.tx.EXPECT().RefundedTotal(gomock.Any(), p.ID).Return(tt.refunded, nil)

			if tt.wantCode == http.StatusCreated {
				f.tx.EXPECT().
					InsertRefund(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, r *ledger.Refund) error {
						r.ID = uuid.New()
						return nil
					})
				f.tx.EXPECT().Commit().Return(nil)
			}

			rec := f.do(http.MethodPost, "/payments/"+p.ID.String()+"/refunds", tt.body)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			if tt.wantCode != http.StatusCreated {
				return
			}

			var body struct {
				Amount    int64     `json:"amount"`
				PaymentID uuid.UUID `json:"payment_id"`
				Reversed  bool      `json:"reversed"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, int64(3000), body.Amount)
			assert.Equal(t, p.ID, body.PaymentID)
			assert.False(t, body.Reversed)
		})
	}
}

func TestHandler_Refund_MissingReason(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/payments/"+uuid.NewString()+"/refunds", `{"amount":100,"reason":"  "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing_reason")
}

func TestHandler_List(t *testing.T) {
	f := newFixture(t)

	f.ledger.EXPECT().
		ListPayments(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter ledger.ListFilter) ([]*ledger.Payment, error) {
			assert.Equal(t, f.clinicID, filter.ClinicID)
			require.NotNil(t, filter.Method)
			assert.Equal(t, ledger.MethodCard, *filter.Method)
			require.NotNil(t, filter.EndDate)
			assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 999999999, time.UTC), *filter.EndDate)

			return []*ledger.Payment{f.payment(100), f.payment(200)}, nil
		})

	rec := f.do(http.MethodGet, "/payments?method=card&start=2024-01-01&end=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body, 2)

	rec = f.do(http.MethodGet, "/payments?method=crypto", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(http.MethodGet, "/payments?start=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
