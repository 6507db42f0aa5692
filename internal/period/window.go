package period

import (
	"slices"
	"strings"

	"github.com/rshade/carbon-dashboard/internal/carbon"
)

// WindowResult is the outcome of applying a Selector.
type WindowResult struct {
	// Records are the selected records, oldest first.
	Records []carbon.ActivityRecord
	// FellBack is set when a Range selection could not be resolved and
	// every record was returned instead.
	FellBack bool
}

// Sort returns the records ordered oldest first with one record per month.
// When several records share a month the one appearing later in the input
// wins. Records with unparseable labels follow all dated records.
func Sort(records []carbon.ActivityRecord) []carbon.ActivityRecord {
	index := make(map[string]int, len(records))
	out := make([]carbon.ActivityRecord, 0, len(records))
	for _, r := range records {
		key := MonthKey(r.MonthLabel)
		if i, ok := index[key]; ok {
			out[i] = r
			continue
		}
		index[key] = len(out)
		out = append(out, r)
	}

	dated := make(map[string]datedLabel, len(out))
	for _, r := range out {
		d := newDatedLabel(r.MonthLabel)
		if !d.ok {
			logger.Warn().Str("month", r.MonthLabel).Msg("unparseable month label, ordering after dated months")
		}
		dated[r.MonthLabel] = d
	}
	slices.SortStableFunc(out, func(a, b carbon.ActivityRecord) int {
		return dated[a.MonthLabel].compare(dated[b.MonthLabel])
	})
	return out
}

// Window selects records according to sel.
//
// LastN returns the N most recent months; N larger than the data, or N <= 0,
// returns everything. Range returns the inclusive slice between the months
// named by Start and End. If either month is absent, or Start comes after
// End, every record is returned with FellBack set.
func Window(records []carbon.ActivityRecord, sel Selector) WindowResult {
	sorted := Sort(records)

	switch sel.Kind {
	case LastN:
		if sel.Months <= 0 || sel.Months >= len(sorted) {
			return WindowResult{Records: sorted}
		}
		return WindowResult{Records: sorted[len(sorted)-sel.Months:]}
	case Range:
		start := slices.IndexFunc(sorted, func(r carbon.ActivityRecord) bool {
			return SameMonth(r.MonthLabel, sel.Start)
		})
		end := slices.IndexFunc(sorted, func(r carbon.ActivityRecord) bool {
			return SameMonth(r.MonthLabel, sel.End)
		})
		if start < 0 || end < 0 || start > end || strings.TrimSpace(sel.Start) == "" || strings.TrimSpace(sel.End) == "" {
			logger.Info().
				Str("start", sel.Start).
				Str("end", sel.End).
				Int("records", len(sorted)).
				Msg("custom range not found in data, returning all months")
			return WindowResult{Records: sorted, FellBack: true}
		}
		return WindowResult{Records: sorted[start : end+1]}
	default:
		return WindowResult{Records: sorted}
	}
}

// Latest returns the records newest first.
func Latest(records []carbon.ActivityRecord) []carbon.ActivityRecord {
	out := slices.Clone(records)
	slices.Reverse(out)
	return out
}
