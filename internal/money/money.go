// Package money owns the decimal arithmetic conventions of the engine:
// line-level values carry up to 8 decimal places, summary values 2, and
// all comparisons go through explicit tolerances. Using decimals end to
// end means numeric granularity can be validated exactly instead of being
// suppressed to dodge binary floating-point false positives.
package money

import (
	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// Statutory value-added tax rate: 13%.
var IVARate = decimal.New(13, -2)

// Precision of monetary values.
const (
	LineScale    = 8 // line-item quantities, prices and amounts
	SummaryScale = 2 // summary totals and tax amounts
)

// Tolerances for cross-field reconciliation.
var (
	ItemTolerance = decimal.New(1, -2) // 0.01
	TaxTolerance  = decimal.New(2, -2) // 0.02
)

// FromFloat creates a decimal from a float rounded to summary precision.
func FromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(SummaryScale)
}

// FromString parses a decimal from a string.
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustFromString parses a decimal from a string, panics on error.
func MustFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// RoundLine rounds to line-item precision (8 places).
func RoundLine(d decimal.Decimal) decimal.Decimal {
	return d.Round(LineScale)
}

// RoundSummary rounds to summary precision (2 places).
func RoundSummary(d decimal.Decimal) decimal.Decimal {
	return d.Round(SummaryScale)
}

// CalculateIVA computes the statutory tax on a taxed amount, rounded to
// summary precision.
func CalculateIVA(taxed decimal.Decimal) decimal.Decimal {
	return taxed.Mul(IVARate).Round(SummaryScale)
}

// WithinTolerance reports whether |a-b| <= tolerance.
func WithinTolerance(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

// IsQuantized reports whether d carries no more than the given number of
// decimal places.
func IsQuantized(d decimal.Decimal, places int32) bool {
	return d.Round(places).Equal(d)
}

// Sum sums a slice of decimals.
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// IsNonNegative returns true if decimal is >= zero.
func IsNonNegative(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(Zero)
}
