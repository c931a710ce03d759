package revenue

import (
	"github.com/MrJamesThe3rd/clinicpay/internal/ledger"
	"github.com/MrJamesThe3rd/clinicpay/internal/money"
)

// Sharing is the clinic's cut of collected revenue, in percent. The physician
// receives the rest.
type Sharing struct {
	ClinicPercentage float64
}

type Summary struct {
	Total          int64
	ByMethod       map[ledger.Method]int64
	ByClient       map[string]int64
	ClinicShare    int64
	PhysicianShare int64
	Refunded       int64
	Net            int64
	Count          int
}

func Total(payments []*ledger.Payment) int64 {
	var total int64
	for _, p := range payments {
		total += p.Amount
	}

	return total
}

func ByMethod(payments []*ledger.Payment) map[ledger.Method]int64 {
	out := make(map[ledger.Method]int64)
	for _, p := range payments {
		out[p.Method] += p.Amount
	}

	return out
}

// ByClient groups by client name, the label shown on reports.
func ByClient(payments []*ledger.Payment) map[string]int64 {
	out := make(map[string]int64)
	for _, p := range payments {
		out[p.ClientName] += p.Amount
	}

	return out
}

// Split divides total between clinic and physician. The clinic share is
// rounded to the cent and the physician gets the remainder, so the two always
// add up to total.
func Split(total int64, clinicPercentage float64) (clinicShare, physicianShare int64) {
	clinicShare = money.Percent(total, clinicPercentage)

	return clinicShare, total - clinicShare
}

func Summarize(payments []*ledger.Payment, refunds []*ledger.Refund, sharing Sharing) Summary {
	total := Total(payments)
	clinicShare, physicianShare := Split(total, sharing.ClinicPercentage)

	var refunded int64
	for _, r := range refunds {
		refunded += r.Amount
	}

	return Summary{
		Total:          total,
		ByMethod:       ByMethod(payments),
		ByClient:       ByClient(payments),
		ClinicShare:    clinicShare,
		PhysicianShare: physicianShare,
		Refunded:       refunded,
		Net:            total - refunded,
		Count:          len(payments),
	}
}
