// Package period selects reporting windows over monthly activity records and
// rolls them up into the series, totals and shares used by reports.
package period

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// logger receives warnings about month labels that cannot be placed on the
// calendar. It is silent until SetLogger is called.
var logger = zerolog.Nop()

// SetLogger installs the logger used by this package.
func SetLogger(l zerolog.Logger) {
	logger = l.With().Str("component", "period").Logger()
}

// monthLayouts are tried in order by ParseMonth.
var monthLayouts = []string{
	"January 2006",
	"Jan 2006",
	"2006-01",
	"2006-01-02",
	"01/2006",
	"1/2006",
}

// ParseMonth parses a month label into the first instant of that month (UTC).
// Month names are matched case-insensitively.
func ParseMonth(label string) (time.Time, bool) {
	s := strings.Join(strings.Fields(label), " ")
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range monthLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// FormatMonth renders a month in the canonical "January 2006" form.
func FormatMonth(t time.Time) string {
	return t.Format("January 2006")
}

// MonthKey identifies a calendar month. Labels that do not parse are keyed by
// their normalised text so they still group with identical labels.
func MonthKey(label string) string {
	if t, ok := ParseMonth(label); ok {
		return t.Format("2006-01")
	}
	return "?" + strings.ToLower(strings.Join(strings.Fields(label), " "))
}

// SameMonth reports whether two labels name the same calendar month.
func SameMonth(a, b string) bool {
	return MonthKey(a) == MonthKey(b)
}

// datedLabel pairs a label with its parsed month for ordering.
type datedLabel struct {
	label string
	date  time.Time
	ok    bool
}

func newDatedLabel(label string) datedLabel {
	t, ok := ParseMonth(label)
	return datedLabel{label: label, date: t, ok: ok}
}

// compare orders dated labels chronologically; undated labels sort after all
// dated ones, by label text.
func (d datedLabel) compare(o datedLabel) int {
	switch {
	case d.ok && !o.ok:
		return -1
	case !d.ok && o.ok:
		return 1
	case !d.ok && !o.ok:
		return strings.Compare(d.label, o.label)
	}
	return d.date.Compare(o.date)
}
