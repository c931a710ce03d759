package closure

import (
	"time"

	"github.com/google/uuid"
)

// Closure is the end-of-day reconciliation record. It is never edited.
type Closure struct {
	ID               uuid.UUID
	ClinicID         uuid.UUID
	Date             time.Time
	ExpectedRevenue  int64
	ConfirmedRevenue int64
	Notes            string
	ClosedAt         time.Time
}

// Difference is positive when more was counted than expected.
func (c *Closure) Difference() int64 {
	return c.ConfirmedRevenue - c.ExpectedRevenue
}
