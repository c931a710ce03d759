package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/clinicpay/internal/appointment"
	appointmentStore "github.com/MrJamesThe3rd/clinicpay/internal/appointment/store"
	"github.com/MrJamesThe3rd/clinicpay/internal/auth"
	"github.com/MrJamesThe3rd/clinicpay/internal/billing"
	billingStore "github.com/MrJamesThe3rd/clinicpay/internal/billing/store"
	"github.com/MrJamesThe3rd/clinicpay/internal/clinic"
	"github.com/MrJamesThe3rd/clinicpay/internal/config"
	"github.com/MrJamesThe3rd/clinicpay/internal/database"
	"github.com/MrJamesThe3rd/clinicpay/internal/ledger"
	redisclient "github.com/MrJamesThe3rd/clinicpay/internal/redis"
)

var titles = []appointment.Title{appointment.TitleNutrition, appointment.TitleMental, appointment.TitleBoth}

type client struct {
	id   uuid.UUID
	name string
}

func main() {
	var (
		count    = flag.Int("appointments", 40, "number of appointments to create")
		clients  = flag.Int("clients", 12, "number of distinct clients")
		days     = flag.Int("days", 14, "spread appointments over this many days before and after today")
		collect  = flag.Bool("collect", true, "collect payments for past appointments")
		tokenTTL = flag.Duration("token-ttl", 0, "print an admin token valid for this long")
		seed     = flag.Int64("seed", time.Now().UnixNano(), "random seed")
	)

	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	scope, err := clinic.ParseScope(cfg.App.ClinicID)
	if err != nil {
		slog.Error("CLINIC_ID must be set", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

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
	}

	gofakeit.Seed(*seed)

	appointments := appointment.NewService(appointmentStore.New(db))
	payments := billing.NewService(billingStore.New(db), redisclient.NewNoopLocker(), billing.Options{
		MaxRetries:   cfg.Billing.MaxRetries,
		RetryBackoff: cfg.Billing.RetryBackoff,
	})

	roster := make([]client, *clients)
	for i := range roster {
		roster[i] = client{id: uuid.New(), name: gofakeit.Name()}
	}

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("failed to load time zone", "error", err)
		os.Exit(1)
	}

	var created, collected int

	for range *count {
		a, err := appointments.Create(ctx, scope, fakeAppointment(roster, *days, loc))
		if err != nil {
			slog.Error("failed to create appointment", "error", err)
			os.Exit(1)
		}

		created++

		if !*collect || a.Start.After(time.Now()) {
			continue
		}

		params, ok := fakePayment(a)
		if !ok {
			continue
		}

		if _, err := payments.Collect(ctx, scope, params); err != nil {
			slog.Warn("failed to collect payment", "appointment_id", a.ID, "error", err)
			continue
		}

		collected++
	}

	slog.Info("seed complete", "clinic_id", scope.ClinicID, "appointments", created, "payments", collected)

	if *tokenTTL > 0 {
		if cfg.Auth.JWTSecret == "" {
			slog.Error("JWT_SECRET is required to sign a token")
			os.Exit(1)
		}

		token, err := auth.New(cfg.Auth.JWTSecret).Sign(auth.Claims{
			ClinicID: scope.ClinicID.String(),
			Roles:    []string{auth.RoleAdmin},
		}, *tokenTTL)
		if err != nil {
			slog.Error("failed to sign token", "error", err)
			os.Exit(1)
		}

		fmt.Println(token)
	}
}

func fakeAppointment(roster []client, days int, loc *time.Location) appointment.CreateParams {
	c := roster[gofakeit.Number(0, len(roster)-1)]

	day := time.Now().In(loc).AddDate(0, 0, gofakeit.Number(-days, days))
	start := time.Date(day.Year(), day.Month(), day.Day(), gofakeit.Number(9, 18), 30*gofakeit.Number(0, 1), 0, 0, loc)

	params := appointment.CreateParams{
		ClientID:   c.id,
		ClientName: c.name,
		Title:      titles[gofakeit.Number(0, len(titles)-1)],
		Start:      start,
		End:        start.Add(time.Duration(gofakeit.Number(1, 3)) * 30 * time.Minute),
		Amount:     int64(gofakeit.Number(6, 20)) * 500,
	}

	if gofakeit.Number(1, 4) == 1 {
		params.IsPackage = true
		params.PackageSessions = gofakeit.Number(4, 10)
		params.Amount = int64(params.PackageSessions) * params.Amount
	}

	return params
}

// fakePayment picks a full, partial or missing payment for a past appointment.
func fakePayment(a *appointment.Appointment) (billing.CollectParams, bool) {
	params := billing.CollectParams{
		AppointmentID: a.ID,
		Method:        ledger.Methods[gofakeit.Number(0, len(ledger.Methods)-1)],
	}

	switch roll := gofakeit.Number(1, 10); {
	case roll <= 2:
		return params, false
	case a.IsPackage && roll <= 5:
		params.Amount = a.Amount
		params.FullPackage = true
	case a.IsPackage:
		params.Amount = a.SessionPrice()
	case roll <= 4:
		params.Amount = a.Amount / 2
	default:
		params.Amount = a.Amount
	}

	return params, true
}
