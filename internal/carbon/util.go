package carbon

import (
	"math"
	"strconv"
)

// SanitizeQuantity maps an activity quantity onto the calculator's domain.
// Negative values are clamped to zero; NaN and infinities become zero.
func SanitizeQuantity(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Clamp restricts a value to the range [min, max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// formatFloat formats a float for display.
// Integers are formatted without a fractional part, everything else with 2 decimal places.
func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
