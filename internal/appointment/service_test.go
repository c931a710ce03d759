package appointment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/clinicpay/internal/appointment"
	"github.com/MrJamesThe3rd/clinicpay/internal/clinic"
)

func TestService_Create(t *testing.T) {
	scope := clinic.NewScope(uuid.New())
	start := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	valid := appointment.CreateParams{
		ClientID:   uuid.New(),
		ClientName: "Ana Silva",
		Title:      appointment.TitleNutrition,
		Start:      start,
		End:        start.Add(time.Hour),
		Amount:     10000,
	}

	type testCase struct {
		name      string
		scope     clinic.Scope
		params    func() appointment.CreateParams
		setupMock func(m *appointment.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "Success",
			scope:  scope,
			params: func() appointment.CreateParams { return valid },
			setupMock: func(m *appointment.MockRepository) {
				m.EXPECT().
					CreateAppointment(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, a *appointment.Appointment) error {
						assert.Equal(t, scope.ClinicID, a.ClinicID)
						assert.Equal(t, appointment.PaymentUnpaid, a.PaymentStatus)
						assert.Equal(t, appointment.StatusScheduled, a.Status)
						assert.Zero(t, a.AmountPaid)
						a.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name:  "TooShort",
			scope: scope,
			params: func() appointment.CreateParams {
				p := valid
				p.End = p.Start.Add(10 * time.Minute)
				return p
			},
			wantErr: appointment.ErrInvalidAppointment,
		},
		{
			name:  "EndBeforeStart",
			scope: scope,
			params: func() appointment.CreateParams {
				p := valid
				p.End = p.Start.Add(-time.Hour)
				return p
			},
			wantErr: appointment.ErrInvalidAppointment,
		},
		{
			name:  "PackageWithoutSessions",
			scope: scope,
			params: func() appointment.CreateParams {
				p := valid
				p.IsPackage = true
				return p
			},
			wantErr: appointment.ErrInvalidAppointment,
		},
		{
			name:  "ZeroAmount",
			scope: scope,
			params: func() appointment.CreateParams {
				p := valid
				p.Amount = 0
				return p
			},
			wantErr: appointment.ErrInvalidAppointment,
		},
		{
			name:    "MissingScope",
			scope:   clinic.Scope{},
			params:  func() appointment.CreateParams { return valid },
			wantErr: clinic.ErrMissingScope,
		},
		{
			name:   "RepoError",
			scope:  scope,
			params: func() appointment.CreateParams { return valid },
			setupMock: func(m *appointment.MockRepository) {
				m.EXPECT().CreateAppointment(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := appointment.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := appointment.NewService(repo)
			got, err := svc.Create(context.Background(), tt.scope, tt.params())

			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
		})
	}
}

func TestService_Get_OtherClinic(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := appointment.NewMockRepository(ctrl)
	svc := appointment.NewService(repo)

	id := uuid.New()
	repo.EXPECT().
		GetAppointment(gomock.Any(), id).
		Return(&appointment.Appointment{ID: id, ClinicID: uuid.New()}, nil)

	_, err := svc.Get(context.Background(), clinic.NewScope(uuid.New()), id)
	assert.ErrorIs(t, err, appointment.ErrNotFound)
}

func TestService_UpdateStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := appointment.NewMockRepository(ctrl)
	svc := appointment.NewService(repo)

	scope := clinic.NewScope(uuid.New())
	id := uuid.New()

	err := svc.UpdateStatus(context.Background(), scope, id, appointment.Status("cancelled"))
	require.ErrorIs(t, err, appointment.ErrInvalidStatus)

	repo.EXPECT().
		GetAppointment(gomock.Any(), id).
		Return(&appointment.Appointment{ID: id, ClinicID: scope.ClinicID}, nil)
	repo.EXPECT().UpdateStatus(gomock.Any(), id, appointment.StatusDone).Return(nil)

	require.NoError(t, svc.UpdateStatus(context.Background(), scope, id, appointment.StatusDone))
}

func TestService_OnDay(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := appointment.NewMockRepository(ctrl)
	svc := appointment.NewService(repo)

	scope := clinic.NewScope(uuid.New())
	loc := time.FixedZone("UTC+1", 3600)
	date := time.Date(2024, 1, 10, 15, 30, 0, 0, loc)

	wantStart := time.Date(2024, 1, 10, 0, 0, 0, 0, loc)
	wantEnd := wantStart.AddDate(0, 0, 1)

	repo.EXPECT().
		ListAppointments(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f appointment.ListFilter) ([]*appointment.Appointment, error) {
			assert.Equal(t, scope.ClinicID, f.ClinicID)
			require.NotNil(t, f.StartFrom)
			require.NotNil(t, f.StartBefore)
			assert.True(t, wantStart.Equal(*f.StartFrom))
			assert.True(t, wantEnd.Equal(*f.StartBefore))
			return nil, nil
		})

	_, err := svc.OnDay(context.Background(), scope, date, loc)
	require.NoError(t, err)
}
