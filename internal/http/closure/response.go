package closure

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/clinicpay/internal/closure"
)

type closureResponse struct {
	ID               uuid.UUID `json:"id"`
	Date             string    `json:"date"`
	ExpectedRevenue  int64     `json:"expected_revenue"`
	ConfirmedRevenue int64     `json:"confirmed_revenue"`
	Difference       int64     `json:"difference"`
	Notes            string    `json:"notes,omitempty"`
	ClosedAt         time.Time `json:"closed_at"`
}

func toResponse(c *closure.Closure) closureResponse {
	return closureResponse{
		ID:               c.ID,
		Date:             c.Date.Format(time.DateOnly),
		ExpectedRevenue:  c.ExpectedRevenue,
		ConfirmedRevenue: c.ConfirmedRevenue,
		Difference:       c.Difference(),
		Notes:            c.Notes,
		ClosedAt:         c.ClosedAt,
	}
}
