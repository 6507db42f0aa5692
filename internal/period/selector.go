package period

import (
	"fmt"
	"strconv"
	"strings"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// ErrUnknownPeriod is returned by ParseSelector for unrecognised period keys.
const ErrUnknownPeriod = constError("unknown period")

// DefaultMonths is the window used when no period is requested.
const DefaultMonths = 12

// Kind is the shape of a reporting window.
type Kind int

const (
	// LastN selects the N most recent months present in the data.
	LastN Kind = iota
	// Range selects an inclusive [Start, End] range of month labels.
	Range
	// All selects every record.
	All
)

// String returns the metrics label for the kind.
func (k Kind) String() string {
	switch k {
	case LastN:
		return "last_n"
	case Range:
		return "range"
	case All:
		return "all"
	default:
		return "unknown"
	}
}

// Selector describes which months a report covers.
type Selector struct {
	Kind   Kind
	Months int
	Start  string
	End    string
}

// Last selects the n most recent months.
func Last(n int) Selector { return Selector{Kind: LastN, Months: n} }

// Between selects the inclusive range of months from start to end.
func Between(start, end string) Selector {
	return Selector{Kind: Range, Start: strings.TrimSpace(start), End: strings.TrimSpace(end)}
}

// Everything selects all months.
func Everything() Selector { return Selector{Kind: All} }

// ParseSelector maps a request's period key onto a Selector. Accepted keys are
// "<n>m" (for example "12m", "6m", "3m"), "all" and "custom"; an empty key
// means the last DefaultMonths months. start and end are only read for
// "custom".
func ParseSelector(period, start, end string) (Selector, error) {
	key := strings.ToLower(strings.TrimSpace(period))
	switch key {
	case "":
		return Last(DefaultMonths), nil
	case "all":
		return Everything(), nil
	case "custom":
		return Between(start, end), nil
	}
	if n, ok := strings.CutSuffix(key, "m"); ok {
		months, err := strconv.Atoi(n)
		if err == nil && months > 0 {
			return Last(months), nil
		}
	}
	return Selector{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, period)
}

// Label is the human-readable name of the selection before it is applied.
func (s Selector) Label() string {
	switch s.Kind {
	case LastN:
		if s.Months == 1 {
			return "Latest month"
		}
		if s.Months <= 0 {
			return "All time"
		}
		return fmt.Sprintf("Last %d months", s.Months)
	case Range:
		if SameMonth(s.Start, s.End) {
			return s.Start
		}
		return s.Start + " – " + s.End
	default:
		return "All time"
	}
}
