package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/clinicpay/internal/appointment"
	appointmentStore "github.com/MrJamesThe3rd/clinicpay/internal/appointment/store"
	"github.com/MrJamesThe3rd/clinicpay/internal/auth"
	"github.com/MrJamesThe3rd/clinicpay/internal/billing"
	billingStore "github.com/MrJamesThe3rd/clinicpay/internal/billing/store"
	"github.com/MrJamesThe3rd/clinicpay/internal/closure"
	closureStore "github.com/MrJamesThe3rd/clinicpay/internal/closure/store"
	"github.com/MrJamesThe3rd/clinicpay/internal/config"
	"github.com/MrJamesThe3rd/clinicpay/internal/database"
	clinicHttp "github.com/MrJamesThe3rd/clinicpay/internal/http"
	appointmentHandler "github.com/MrJamesThe3rd/clinicpay/internal/http/appointment"
	closureHandler "github.com/MrJamesThe3rd/clinicpay/internal/http/closure"
	"github.com/MrJamesThe3rd/clinicpay/internal/http/health"
	paymentHandler "github.com/MrJamesThe3rd/clinicpay/internal/http/payment"
	revenueHandler "github.com/MrJamesThe3rd/clinicpay/internal/http/revenue"
	"github.com/MrJamesThe3rd/clinicpay/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/clinicpay/internal/ledger/store"
	redisclient "github.com/MrJamesThe3rd/clinicpay/internal/redis"
	"github.com/MrJamesThe3rd/clinicpay/internal/revenue"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Auth.JWTSecret == "" {
		slog.Error("JWT_SECRET is required to serve the API")
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("failed to load time zone", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.DB.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}

		slog.Info("database schema applied")
	}

	var (
		locker       = redisclient.NewNoopLocker()
		expectations closure.ExpectationStore
		checks       = map[string]health.Check{"postgres": db.PingContext}
	)

	if cfg.Redis.Enabled {
		rdb, err := redisclient.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()

		locker = redisclient.NewAppointmentLocker(rdb, cfg.Redis.LockTTL)
		expectations = redisclient.NewExpectations(rdb, cfg.Redis.ExpectationTTL)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		slog.Warn("redis disabled, payment locks and day expectations are local to this process")
		expectations = closure.NewMemoryExpectations(cfg.Redis.ExpectationTTL)
	}

	var (
		appointmentService = appointment.NewService(appointmentStore.New(db))
		ledgerService      = ledger.NewService(ledgerStore.New(db))
		billingService     = billing.NewService(billingStore.New(db), locker, billing.Options{
			MaxRetries:   cfg.Billing.MaxRetries,
			RetryBackoff: cfg.Billing.RetryBackoff,
			RefundPolicy: billing.RefundPolicy(cfg.Billing.RefundPolicy),
		})
		revenueService = revenue.NewService(ledgerService, revenue.Sharing{
			ClinicPercentage: cfg.Revenue.ClinicPercentage,
		})
		closureService = closure.NewService(closureStore.New(db), expectations, appointmentService, closure.Options{
			Location:     loc,
			UniquePerDay: cfg.Closure.UniquePerDay,
		})
	)

	router := clinicHttp.New(
		clinicHttp.Options{AllowedOrigins: cfg.Server.AllowedOrigins, Timeout: cfg.Server.Timeout},
		auth.New(cfg.Auth.JWTSecret),
		health.NewHandler(version, checks),
		appointmentHandler.NewHandler(appointmentService, billingService, loc),
		paymentHandler.NewHandler(ledgerService, billingService, loc),
		revenueHandler.NewHandler(revenueService, loc),
		closureHandler.NewHandler(closureService, loc),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
	}

	go func() {
		slog.Info("starting server", "addr", srv.Addr, "version", version, "redis", cfg.Redis.Enabled)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
