package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	RefundPolicyRecord  = "record"
	RefundPolicyReverse = "reverse"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"ClinicPay"`
		Port     int    `envconfig:"PORT" default:"8080"`
		ClinicID string `envconfig:"CLINIC_ID"`
		TimeZone string `envconfig:"TIME_ZONE" default:"UTC"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"clinicpay"`
		Migrate  bool   `envconfig:"DB_MIGRATE" default:"false"`
	}

	Server struct {
		Timeout         time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
		AllowedOrigins  []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Redis struct {
		Enabled        bool          `envconfig:"REDIS_ENABLED" default:"false"`
		Addr           string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
		Username       string        `envconfig:"REDIS_USERNAME"`
		Password       string        `envconfig:"REDIS_PASSWORD"`
		LockTTL        time.Duration `envconfig:"REDIS_LOCK_TTL" default:"5s"`
		ExpectationTTL time.Duration `envconfig:"REDIS_EXPECTATION_TTL" default:"12h"`
	}

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET"`
	}

	Billing struct {
		MaxRetries   int           `envconfig:"BILLING_MAX_RETRIES" default:"3"`
		RetryBackoff time.Duration `envconfig:"BILLING_RETRY_BACKOFF" default:"25ms"`
		RefundPolicy string        `envconfig:"BILLING_REFUND_POLICY" default:"record"`
	}

	Revenue struct {
		ClinicPercentage float64 `envconfig:"REVENUE_CLINIC_PERCENTAGE" default:"100"`
	}

	Closure struct {
		UniquePerDay bool `envconfig:"CLOSURE_UNIQUE_PER_DAY" default:"false"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Location returns the time zone used to cut calendar days.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", c.App.TimeZone, err)
	}

	return loc, nil
}

func (c *Config) validate() error {
	switch c.Billing.RefundPolicy {
	case RefundPolicyRecord, RefundPolicyReverse:
	default:
		return fmt.Errorf("unknown refund policy %q", c.Billing.RefundPolicy)
	}

	if c.Billing.MaxRetries < 1 {
		return fmt.Errorf("billing max retries must be at least 1, got %d", c.Billing.MaxRetries)
	}

	if c.Revenue.ClinicPercentage < 0 || c.Revenue.ClinicPercentage > 100 {
		return fmt.Errorf("clinic percentage must be within 0..100, got %v", c.Revenue.ClinicPercentage)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
