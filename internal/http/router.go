package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/clinicpay/internal/auth"
	"github.com/MrJamesThe3rd/clinicpay/internal/http/appointment"
	"github.com/MrJamesThe3rd/clinicpay/internal/http/closure"
	"github.com/MrJamesThe3rd/clinicpay/internal/http/health"
	"github.com/MrJamesThe3rd/clinicpay/internal/http/payment"
	"github.com/MrJamesThe3rd/clinicpay/internal/http/revenue"
)

type Options struct {
	AllowedOrigins []string
	Timeout        time.Duration
}

func New(
	opts Options,
	authenticator *auth.Authenticator,
	healthH *health.Handler,
	appointmentsV1 *appointment.Handler,
	paymentsV1 *payment.Handler,
	revenueV1 *revenue.Handler,
	closuresV1 *closure.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Group(healthH.Routes)

	router.Route("/api/v1/clinics/{clinicID}", func(r chi.Router) {
		r.Use(authenticator.Authenticate)
		r.Use(middleware.AllowContentType("application/json"))

		r.Route("/appointments", appointmentsV1.Routes)
		r.Group(paymentsV1.Routes)
		r.Route("/revenue", revenueV1.Routes)
		r.Route("/closures", closuresV1.Routes)
	})

	return router
}
