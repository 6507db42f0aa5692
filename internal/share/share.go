// Package share turns CO2e subtotals into display percentages that always
// add up to exactly 100.
package share

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/rshade/carbon-dashboard/internal/carbon"
)

const (
	// DefaultPrecision is the number of decimal places shares are rounded to.
	DefaultPrecision = 1
	// MaxPrecision caps the requested number of decimal places.
	MaxPrecision = 6
)

var hundred = decimal.NewFromInt(100)

// Normalize converts non-negative subtotals into percentages rounded to
// precision decimal places, clamped to [0, MaxPrecision].
//
// Each share is rounded independently, then the residual (100 minus the sum
// of rounded shares) is added to the largest share so the result sums to
// exactly 100. When several shares tie for largest, a positive residual goes
// to the earliest of them and a negative one to the latest, so the earliest
// tied share always stays the largest. Callers order subtotals by priority.
// If every subtotal is zero the result is all zeros. Negative, NaN and
// infinite subtotals count as zero.
func Normalize(subtotals []float64, precision int) []float64 {
	out := make([]float64, len(subtotals))
	if len(subtotals) == 0 {
		return out
	}
	places := int32(Places(precision))

	values := make([]decimal.Decimal, len(subtotals))
	sum := decimal.Zero
	for i, v := range subtotals {
		values[i] = decimal.NewFromFloat(carbon.SanitizeQuantity(v))
		sum = sum.Add(values[i])
	}
	if sum.IsZero() {
		return out
	}

	rounded := make([]decimal.Decimal, len(values))
	roundedSum := decimal.Zero
	first, last := 0, 0
	for i, v := range values {
		rounded[i] = v.Div(sum).Mul(hundred).Round(places)
		roundedSum = roundedSum.Add(rounded[i])
		switch {
		case rounded[i].GreaterThan(rounded[first]):
			first, last = i, i
		case rounded[i].Equal(rounded[first]):
			last = i
		}
	}
	residual := hundred.Sub(roundedSum)
	largest := first
	if residual.IsNegative() {
		largest = last
	}
	rounded[largest] = rounded[largest].Add(residual)

	for i, r := range rounded {
		out[i] = r.InexactFloat64()
	}
	return out
}

// Places returns the number of decimal places Normalize rounds to for a
// requested precision.
func Places(precision int) int {
	return int(carbon.Clamp(float64(precision), 0, MaxPrecision))
}

// Sum adds shares, rounding away float noise beyond 9 decimal places.
func Sum(shares []float64) float64 {
	total := 0.0
	for _, s := range shares {
		total += s
	}
	return math.Round(total*1e9) / 1e9
}
