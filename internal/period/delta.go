package period

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
)

// notApplicable is the wire form of a Delta without a usable baseline.
const notApplicable = "n/a"

// Delta is a month-over-month percentage change. When the previous month is
// missing or zero there is no meaningful change and Valid is false.
type Delta struct {
	Percent float64
	Valid   bool
}

// MonthOverMonth returns (latest-previous)/previous×100, or an invalid Delta
// when previous is zero, negative or not finite.
func MonthOverMonth(previous, latest float64) Delta {
	if previous <= 0 || math.IsNaN(previous) || math.IsInf(previous, 0) ||
		math.IsNaN(latest) || math.IsInf(latest, 0) {
		return Delta{}
	}
	return Delta{Percent: (latest - previous) / previous * 100, Valid: true}
}

// String renders the delta with one decimal place and an explicit sign.
func (d Delta) String() string {
	if !d.Valid {
		return notApplicable
	}
	return fmt.Sprintf("%+.1f%%", d.Percent)
}

// MarshalJSON encodes a valid delta as a number and an invalid one as "n/a".
func (d Delta) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte(strconv.Quote(notApplicable)), nil
	}
	return strconv.AppendFloat(nil, d.Percent, 'f', -1, 64), nil
}

// UnmarshalJSON accepts a number or the "n/a" sentinel.
func (d *Delta) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(strconv.Quote(notApplicable))) {
		*d = Delta{}
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("decode delta: %w", err)
	}
	*d = Delta{Percent: v, Valid: true}
	return nil
}
