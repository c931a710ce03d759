package closure

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	expected  int64
	expiresAt time.Time
}

// MemoryExpectations is the single-process ExpectationStore used when Redis
// is disabled. Entries expire after ttl like their Redis counterparts; a ttl
// of zero keeps them for the life of the process.
type MemoryExpectations struct {
	mu   sync.Mutex
	ttl  time.Duration
	data map[string]memoryEntry
}

func NewMemoryExpectations(ttl time.Duration) *MemoryExpectations {
	return &MemoryExpectations{ttl: ttl, data: make(map[string]memoryEntry)}
}

func (m *MemoryExpectations) Put(_ context.Context, clinicID uuid.UUID, day string, expected int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.sweep(now)

	e := memoryEntry{expected: expected}
	if m.ttl > 0 {
		e.expiresAt = now.Add(m.ttl)
	}

	m.data[clinicID.String()+"/"+day] = e

	return nil
}

func (m *MemoryExpectations) Get(_ context.Context, clinicID uuid.UUID, day string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.data[clinicID.String()+"/"+day]
	if !ok || e.expired(time.Now()) {
		return 0, false, nil
	}

	return e.expected, true, nil
}

func (m *MemoryExpectations) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.data)
}

func (m *MemoryExpectations) sweep(now time.Time) {
	for k, e := range m.data {
		if e.expired(now) {
			delete(m.data, k)
		}
	}
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}
