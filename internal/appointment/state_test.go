package appointment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/clinicpay/internal/appointment"
)

func single(amount, paid int64) *appointment.Appointment {
	a := &appointment.Appointment{Amount: amount, AmountPaid: paid, Version: 1}
	a.PaymentStatus = a.DerivePaymentStatus()

	return a
}

func pkg(amount int64, sessions, sessionsPaid int, paid int64) *appointment.Appointment {
	a := &appointment.Appointment{
		Amount:          amount,
		AmountPaid:      paid,
		IsPackage:       true,
		PackageSessions: sessions,
		SessionsPaid:    sessionsPaid,
		Version:         1,
	}
	a.PaymentStatus = a.DerivePaymentStatus()

	return a
}

func TestAppointment_PlanPayment(t *testing.T) {
	type testCase struct {
		name           string
		appt           *appointment.Appointment
		amount         int64
		fullPackage    bool
		wantErr        error
		wantPaid       int64
		wantSessions   int
		wantStatus     appointment.PaymentStatus
		wantPrepayment bool
	}

	tests := []testCase{
		{
			name:       "SingleFullPayment",
			appt:       single(10000, 0),
			amount:     10000,
			wantPaid:   10000,
			wantStatus: appointment.PaymentPaid,
		},
		{
			name:       "SinglePartialPayment",
			appt:       single(10000, 0),
			amount:     4000,
			wantPaid:   4000,
			wantStatus: appointment.PaymentPartial,
		},
		{
			name:       "SingleSettlesPartial",
			appt:       single(10000, 4000),
			amount:     6000,
			wantPaid:   10000,
			wantStatus: appointment.PaymentPaid,
		},
		{
			name:    "SingleAlreadyPaid",
			appt:    single(10000, 10000),
			amount:  5000,
			wantErr: appointment.ErrDuplicatePayment,
		},
		{
			name:    "ZeroAmount",
			appt:    single(10000, 0),
			amount:  0,
			wantErr: appointment.ErrInvalidAmount,
		},
		{
			name:    "NegativeAmount",
			appt:    single(10000, 0),
			amount:  -100,
			wantErr: appointment.ErrInvalidAmount,
		},
		{
			name:    "ExceedsRemaining",
			appt:    single(10000, 4000),
			amount:  6001,
			wantErr: appointment.ErrInvalidAmount,
		},
		{
			name:           "PackagePrepaymentByAmount",
			appt:           pkg(40000, 4, 0, 0),
			amount:         40000,
			wantPaid:       40000,
			wantSessions:   4,
			wantStatus:     appointment.PaymentPaid,
			wantPrepayment: true,
		},
		{
			name:        "PackagePrepaymentFlagWrongAmount",
			appt:        pkg(40000, 4, 0, 0),
			amount:      30000,
			fullPackage: true,
			wantErr:     appointment.ErrInvalidAmount,
		},
		{
			name:        "PackagePrepaymentAfterSessions",
			appt:        pkg(40000, 4, 1, 10000),
			amount:      30000,
			fullPackage: true,
			wantErr:     appointment.ErrInvalidAmount,
		},
		{
			name:         "PackageFirstSession",
			appt:         pkg(40000, 4, 0, 0),
			amount:       10000,
			wantPaid:     10000,
			wantSessions: 1,
			wantStatus:   appointment.PaymentPartial,
		},
		{
			name:    "PackageSessionCap",
			appt:    pkg(40000, 4, 1, 10000),
			amount:  15000,
			wantErr: appointment.ErrInvalidAmount,
		},
		{
			name:         "PackageLastSession",
			appt:         pkg(40000, 4, 3, 30000),
			amount:       10000,
			wantPaid:     40000,
			wantSessions: 4,
			wantStatus:   appointment.PaymentPaid,
		},
		{
			name:         "PackageCapPaymentCoversTotal",
			appt:         pkg(40000, 4, 1, 39900),
			amount:       100,
			wantPaid:     40000,
			wantSessions: 4,
			wantStatus:   appointment.PaymentPaid,
		},
		{
			name:    "PackageFullyPaid",
			appt:    pkg(40000, 4, 4, 40000),
			amount:  10000,
			wantErr: appointment.ErrDuplicatePayment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := *tt.appt

			plan, err := tt.appt.PlanPayment(tt.amount, tt.fullPackage)
			assert.Equal(t, before, *tt.appt, "planning must not mutate the appointment")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantPaid, plan.State.AmountPaid)
			assert.Equal(t, tt.wantSessions, plan.State.SessionsPaid)
			assert.Equal(t, tt.wantStatus, plan.State.PaymentStatus)
			assert.Equal(t, tt.wantPrepayment, plan.Prepayment)
			assert.Equal(t, before.Version+1, plan.State.Version)

			after := before
			after.Apply(plan.State)
			assert.NoError(t, after.CheckInvariants())
		})
	}
}

func TestAppointment_PlanPayment_PackageSettlesOnTotal(t *testing.T) {
	a := pkg(40000, 4, 0, 0)

	for _, amount := range []int64{39900, 100} {
		plan, err := a.PlanPayment(amount, false)
		require.NoError(t, err)

		a.Apply(plan.State)
		require.NoError(t, a.CheckInvariants())
	}

	assert.Equal(t, int64(40000), a.AmountPaid)
	assert.Equal(t, 4, a.SessionsPaid)
	assert.Equal(t, appointment.PaymentPaid, a.PaymentStatus)
	assert.True(t, a.Settled())

	_, err := a.PlanPayment(1, false)
	assert.ErrorIs(t, err, appointment.ErrDuplicatePayment)
}

func TestAppointment_PlanReversal(t *testing.T) {
	t.Run("SingleBackToPartial", func(t *testing.T) {
		a := single(10000, 10000)
		s := a.PlanReversal(3000)

		assert.Equal(t, int64(7000), s.AmountPaid)
		assert.Equal(t, appointment.PaymentPartial, s.PaymentStatus)
	})

	t.Run("SingleFullRefund", func(t *testing.T) {
		a := single(10000, 10000)
		s := a.PlanReversal(10000)

		assert.Equal(t, int64(0), s.AmountPaid)
		assert.Equal(t, appointment.PaymentUnpaid, s.PaymentStatus)
	})

	t.Run("PackageClampsSessions", func(t *testing.T) {
		a := pkg(40000, 4, 4, 40000)
		s := a.PlanReversal(15000)

		assert.Equal(t, int64(25000), s.AmountPaid)
		assert.Equal(t, 2, s.SessionsPaid)
		assert.Equal(t, appointment.PaymentPartial, s.PaymentStatus)

		a.Apply(s)
		assert.NoError(t, a.CheckInvariants())
	})

	t.Run("NeverBelowZero", func(t *testing.T) {
		a := single(10000, 2000)
		s := a.PlanReversal(5000)

		assert.Equal(t, int64(0), s.AmountPaid)
		assert.Equal(t, appointment.PaymentUnpaid, s.PaymentStatus)
	})
}

func TestAppointment_PlanAdjustment(t *testing.T) {
	a := pkg(40000, 4, 4, 40000)

	s, err := a.PlanAdjustment(20000, 2)
	require.NoError(t, err)
	assert.Equal(t, appointment.PaymentPartial, s.PaymentStatus)

	_, err = a.PlanAdjustment(50000, 2)
	assert.ErrorIs(t, err, appointment.ErrInvalidAmount)

	_, err = a.PlanAdjustment(20000, 5)
	assert.ErrorIs(t, err, appointment.ErrInvalidAmount)

	_, err = single(10000, 0).PlanAdjustment(5000, 1)
	assert.ErrorIs(t, err, appointment.ErrInvalidAmount)

	_, err = a.PlanAdjustment(40000, 2)
	assert.ErrorIs(t, err, appointment.ErrInvalidAmount)
}

func TestAppointment_CheckInvariants(t *testing.T) {
	ok := single(10000, 4000)
	assert.NoError(t, ok.CheckInvariants())

	overpaid := single(10000, 4000)
	overpaid.AmountPaid = 12000
	assert.ErrorIs(t, overpaid.CheckInvariants(), appointment.ErrInvariant)

	wrongStatus := single(10000, 4000)
	wrongStatus.PaymentStatus = appointment.PaymentPaid
	assert.ErrorIs(t, wrongStatus.CheckInvariants(), appointment.ErrInvariant)

	tooManySessions := pkg(40000, 4, 4, 40000)
	tooManySessions.SessionsPaid = 5
	assert.ErrorIs(t, tooManySessions.CheckInvariants(), appointment.ErrInvariant)

	paidShortSessions := pkg(40000, 4, 2, 40000)
	assert.ErrorIs(t, paidShortSessions.CheckInvariants(), appointment.ErrInvariant)
}

func TestAppointment_SessionPrice(t *testing.T) {
	assert.Equal(t, int64(10000), pkg(40000, 4, 0, 0).SessionPrice())
	assert.Equal(t, int64(3333), pkg(10000, 3, 0, 0).SessionPrice())
	assert.Equal(t, int64(0), single(10000, 0).SessionPrice())
}
