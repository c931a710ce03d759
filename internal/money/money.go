package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalid = errors.New("invalid amount")

var hundred = decimal.NewFromInt(100)

// Parse converts a human-entered amount into cents.
// Both "1234.56" and the European "1.234,56" are accepted.
func Parse(s string) (int64, error) {
	clean := strings.TrimSpace(s)
	if clean == "" {
		return 0, ErrInvalid
	}

	if strings.Contains(clean, ",") {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, ErrInvalid
	}

	return d.Mul(hundred).Round(0).IntPart(), nil
}

// Format renders cents as a plain decimal string with two places.
func Format(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// Percent returns pct percent of cents, rounded half away from zero to a whole cent.
func Percent(cents int64, pct float64) int64 {
	return decimal.NewFromInt(cents).
		Mul(decimal.NewFromFloat(pct)).
		Div(hundred).
		Round(0).
		IntPart()
}
