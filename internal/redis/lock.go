package redisclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/clinicpay/internal/billing"
)

type appointmentLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAppointmentLocker guards payment writes with a per-appointment Redis key.
// Contention is reported as billing.ErrBusy so the engine retries.
func NewAppointmentLocker(client *redis.Client, ttl time.Duration) billing.Locker {
	return &appointmentLocker{
		client: client,
		ttl:    ttl,
	}
}

func lockKey(appointmentID uuid.UUID) string {
	return fmt.Sprintf("lock:appointment:%s", appointmentID.String())
}

func (l *appointmentLocker) WithLock(ctx context.Context, appointmentID uuid.UUID, fn func(ctx context.Context) error) error {
	key := lockKey(appointmentID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire appointment lock: %w", err)
	}

	if !ok {
		return fmt.Errorf("%w: %s", billing.ErrBusy, appointmentID)
	}

	defer l.unlock(context.WithoutCancel(ctx), key, token)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *appointmentLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release appointment lock: %w", err)
	}

	return nil
}

// unlock releases the key and only logs on failure. The key then lives until
// its TTL and writers on the appointment see billing.ErrBusy meanwhile.
func (l *appointmentLocker) unlock(ctx context.Context, key, token string) {
	if err := l.release(ctx, key, token); err != nil {
		slog.Warn("appointment lock not released", "key", key, "ttl", l.ttl, "error", err)
	}
}

type noopLocker struct{}

// NewNoopLocker is used when Redis is disabled. The database advisory lock
// still serializes writers.
func NewNoopLocker() billing.Locker {
	return noopLocker{}
}

func (noopLocker) WithLock(ctx context.Context, _ uuid.UUID, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
