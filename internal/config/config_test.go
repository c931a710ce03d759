package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/clinicpay/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.RefundPolicyRecord, cfg.Billing.RefundPolicy)
	assert.Equal(t, 3, cfg.Billing.MaxRetries)
	assert.Equal(t, 25*time.Millisecond, cfg.Billing.RetryBackoff)
	assert.InDelta(t, 100.0, cfg.Revenue.ClinicPercentage, 0.0001)
	assert.False(t, cfg.Closure.UniquePerDay)
	assert.Equal(t, "postgres://postgres:@localhost:5432/clinicpay?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "UnknownRefundPolicy", key: "BILLING_REFUND_POLICY", value: "void"},
		{name: "ZeroRetries", key: "BILLING_MAX_RETRIES", value: "0"},
		{name: "PercentageOutOfRange", key: "REVENUE_CLINIC_PERCENTAGE", value: "120"},
		{name: "UnknownTimeZone", key: "TIME_ZONE", value: "Mars/Olympus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
