package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/MrJamesThe3rd/clinicpay/internal/http/apierr"
)

const RoleAdmin = "admin"

var (
	ErrUnauthorized = errors.New("missing or invalid token")
	ErrForbidden    = errors.New("insufficient role")
)

// Claims are issued by the external auth service. ClinicID pins the token to
// one clinic.
type Claims struct {
	jwt.RegisteredClaims
	ClinicID string   `json:"clinic_id"`
	Roles    []string `json:"roles"`
}

func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

type Authenticator struct {
	secret []byte
}

func New(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Sign issues an HS256 token. Production tokens come from the auth service,
// this is used by tooling and tests.
func (a *Authenticator) Sign(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return token, nil
}

func (a *Authenticator) Parse(raw string) (*Claims, error) {
	var claims Claims

	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	if !token.Valid {
		return nil, ErrUnauthorized
	}

	return &claims, nil
}

type claimsKey struct{}

func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok
}

// Authenticate requires a bearer token bound to the clinic named in the route.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			apierr.Write(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized.Error())
			return
		}

		claims, err := a.Parse(raw)
		if err != nil {
			apierr.Write(w, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}

		if clinicID := chi.URLParam(r, "clinicID"); clinicID != "" && !strings.EqualFold(clinicID, claims.ClinicID) {
			apierr.Write(w, http.StatusForbidden, "forbidden", "token is not valid for this clinic")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := FromContext(r.Context())
			if !ok {
				apierr.Write(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized.Error())
				return
			}

			if !claims.HasRole(role) {
				apierr.Write(w, http.StatusForbidden, "forbidden", ErrForbidden.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
