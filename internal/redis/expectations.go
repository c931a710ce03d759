package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/clinicpay/internal/closure"
)

var _ closure.ExpectationStore = (*Expectations)(nil)

// Expectations keeps closure expectations in Redis so every API instance sees
// the figure computed by any of them.
type Expectations struct {
	client *redis.Client
	ttl    time.Duration
}

func NewExpectations(client *redis.Client, ttl time.Duration) *Expectations {
	return &Expectations{client: client, ttl: ttl}
}

func expectationKey(clinicID uuid.UUID, day string) string {
	return fmt.Sprintf("closure:expected:%s:%s", clinicID.String(), day)
}

func (e *Expectations) Put(ctx context.Context, clinicID uuid.UUID, day string, expected int64) error {
	if err := e.client.Set(ctx, expectationKey(clinicID, day), expected, e.ttl).Err(); err != nil {
		return fmt.Errorf("set expectation: %w", err)
	}

	return nil
}

func (e *Expectations) Get(ctx context.Context, clinicID uuid.UUID, day string) (int64, bool, error) {
	v, err := e.client.Get(ctx, expectationKey(clinicID, day)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}

		return 0, false, fmt.Errorf("get expectation: %w", err)
	}

	return v, true, nil
}
