package period

import (
	"slices"

	"github.com/samber/lo"

	"github.com/rshade/carbon-dashboard/internal/carbon"
	"github.com/rshade/carbon-dashboard/internal/share"
)

// Hotspot names the group contributing the largest share of a window.
type Hotspot string

const (
	HotspotElectricity Hotspot = "electricity"
	HotspotFuel        Hotspot = "fuel"
	HotspotRefrigerant Hotspot = "refrigerant"
	HotspotNone        Hotspot = "none"
)

// MonthSummary is one entry of the per-month series.
type MonthSummary struct {
	Month            string           `json:"month"`
	Breakdown        carbon.Breakdown `json:"breakdown"`
	Scope1and2Co2eKg float64          `json:"scope1and2Co2eKg"`
	Scope3Co2eKg     float64          `json:"scope3Co2eKg"`
	TotalCo2eKg      float64          `json:"totalCo2eKg"`

	// Scope3Only marks a month synthesised from Scope 3 records alone.
	Scope3Only bool `json:"scope3Only,omitempty"`
}

// Totals are the window-level sums.
type Totals struct {
	TotalCo2eKg           float64 `json:"totalCo2eKg"`
	TotalScope1and2Co2eKg float64 `json:"totalScope1and2Co2eKg"`
	TotalScope3Co2eKg     float64 `json:"totalScope3Co2eKg"`
	Scope1Co2eKg          float64 `json:"scope1Co2eKg"`
	Scope2Co2eKg          float64 `json:"scope2Co2eKg"`

	Breakdown        carbon.Breakdown                  `json:"breakdown"`
	Scope3ByCategory map[carbon.Scope3Category]float64 `json:"scope3ByCategory,omitempty"`
}

// Summary is the aggregated view of one reporting window.
type Summary struct {
	PeriodLabel string   `json:"periodLabel"`
	Selector    Selector `json:"-"`

	// Months is the series oldest first.
	Months       []MonthSummary     `json:"months"`
	Totals       Totals             `json:"totals"`
	GroupShares  share.GroupShares  `json:"breakdownBySource"`
	SourceShares share.SourceShares `json:"sourceShares"`
	Hotspot      Hotspot            `json:"hotspot"`
	Delta        Delta              `json:"delta"`

	// SharePrecision is the number of decimal places the shares were
	// rounded to.
	SharePrecision int `json:"-"`

	// RangeFallback reports that a custom range was not found and the
	// summary covers every month instead.
	RangeFallback bool `json:"rangeFallback"`
}

// LatestFirst returns the month series newest first.
func (s Summary) LatestFirst() []MonthSummary {
	out := slices.Clone(s.Months)
	slices.Reverse(out)
	return out
}

// Aggregator rolls activity records up into a Summary.
type Aggregator struct {
	Table     carbon.FactorTable
	Precision int
}

// NewAggregator returns an Aggregator using table for per-month breakdowns
// and precision decimal places for shares.
func NewAggregator(table carbon.FactorTable, precision int) Aggregator {
	return Aggregator{Table: table, Precision: precision}
}

// Aggregate summarises records with the built-in factors and default share precision.
func Aggregate(records []carbon.ActivityRecord, scope3 []carbon.Scope3Record, sel Selector) Summary {
	return NewAggregator(carbon.DefaultFactorTable(), share.DefaultPrecision).Aggregate(records, scope3, sel)
}

// Aggregate windows records by sel, merges the Scope 3 records that fall in
// the window, and computes totals, shares, hotspot and month-over-month delta.
//
// Per-month CO2e is always recomputed from quantities; stored totals are
// ignored. Last-N selects the N most recent months across activity and
// Scope 3 records together, so a month with only Scope 3 data counts as a
// month. For a range, a Scope 3 record belongs to the window when its month
// lies between the first and last windowed months. All and fallback windows
// take every Scope 3 record.
func (a Aggregator) Aggregate(records []carbon.ActivityRecord, scope3 []carbon.Scope3Record, sel Selector) Summary {
	w := Window(records, sel)

	months := lo.Map(w.Records, func(r carbon.ActivityRecord, _ int) MonthSummary {
		b := a.Table.Breakdown(r)
		return MonthSummary{
			Month:            r.MonthLabel,
			Breakdown:        b,
			Scope1and2Co2eKg: b.TotalCo2eKg,
			TotalCo2eKg:      b.TotalCo2eKg,
		}
	})

	months = a.mergeScope3(months, scope3, sel, w)

	totals := Totals{
		Breakdown: lo.Reduce(months, func(acc carbon.Breakdown, m MonthSummary, _ int) carbon.Breakdown {
			return acc.Add(m.Breakdown)
		}, carbon.Breakdown{}),
		TotalScope3Co2eKg: lo.SumBy(months, func(m MonthSummary) float64 { return m.Scope3Co2eKg }),
		Scope3ByCategory:  scope3ByCategory(months, scope3),
	}
	totals.TotalScope1and2Co2eKg = totals.Breakdown.TotalCo2eKg
	totals.Scope1Co2eKg = totals.Breakdown.Scope1()
	totals.Scope2Co2eKg = totals.Breakdown.Scope2()
	totals.TotalCo2eKg = totals.TotalScope1and2Co2eKg + totals.TotalScope3Co2eKg

	s := Summary{
		PeriodLabel:    periodLabel(sel, w),
		Selector:       sel,
		Months:         months,
		Totals:         totals,
		GroupShares:    share.Groups(totals.Breakdown, a.Precision),
		SourceShares:   share.Sources(totals.Breakdown, a.Precision),
		SharePrecision: share.Places(a.Precision),
		Delta:          Delta{},
		RangeFallback:  w.FellBack,
	}
	s.Hotspot = HotspotOf(s.GroupShares)
	if n := len(months); n >= 2 {
		s.Delta = MonthOverMonth(months[n-2].TotalCo2eKg, months[n-1].TotalCo2eKg)
	}
	return s
}

func (a Aggregator) mergeScope3(months []MonthSummary, scope3 []carbon.Scope3Record, sel Selector, w WindowResult) []MonthSummary {
	if len(scope3) == 0 {
		return months
	}

	// Last-N windows are taken over activity and Scope 3 months together,
	// so every record is merged and the series trimmed afterwards.
	includeAll := sel.Kind != Range || w.FellBack || len(w.Records) == 0

	dates := lo.FilterMap(w.Records, func(r carbon.ActivityRecord, _ int) (datedLabel, bool) {
		d := newDatedLabel(r.MonthLabel)
		return d, d.ok
	})
	var first, last datedLabel
	if len(dates) > 0 {
		first = slices.MinFunc(dates, datedLabel.compare)
		last = slices.MaxFunc(dates, datedLabel.compare)
	}
	inBounds := func(d datedLabel) bool {
		return d.ok && len(dates) > 0 && d.compare(first) >= 0 && d.compare(last) <= 0
	}

	index := make(map[string]int, len(months))
	for i, m := range months {
		index[MonthKey(m.Month)] = i
	}

	synthesised := false
	for _, r := range scope3 {
		co2e := carbon.SanitizeQuantity(r.Co2eKg)
		key := MonthKey(r.Month)
		i, ok := index[key]
		if !ok {
			if !includeAll && !inBounds(newDatedLabel(r.Month)) {
				continue
			}
			i = len(months)
			index[key] = i
			months = append(months, MonthSummary{Month: r.Month, Scope3Only: true})
			synthesised = true
		}
		months[i].Scope3Co2eKg += co2e
		months[i].TotalCo2eKg = months[i].Scope1and2Co2eKg + months[i].Scope3Co2eKg
	}

	if synthesised {
		dated := lo.SliceToMap(months, func(m MonthSummary) (string, datedLabel) {
			return m.Month, newDatedLabel(m.Month)
		})
		slices.SortStableFunc(months, func(x, y MonthSummary) int {
			return dated[x.Month].compare(dated[y.Month])
		})
	}
	if sel.Kind == LastN && sel.Months > 0 && len(months) > sel.Months {
		months = months[len(months)-sel.Months:]
	}
	return months
}

// scope3ByCategory sums Scope 3 CO2e per category for the months kept in the series.
func scope3ByCategory(months []MonthSummary, scope3 []carbon.Scope3Record) map[carbon.Scope3Category]float64 {
	kept := lo.SliceToMap(months, func(m MonthSummary) (string, struct{}) {
		return MonthKey(m.Month), struct{}{}
	})
	out := make(map[carbon.Scope3Category]float64)
	for _, r := range scope3 {
		if _, ok := kept[MonthKey(r.Month)]; !ok {
			continue
		}
		out[r.Category] += carbon.SanitizeQuantity(r.Co2eKg)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// HotspotOf returns the group with the strictly largest share. Equal shares
// resolve refrigerant first, then fuel, then electricity; all-zero shares
// have no hotspot.
func HotspotOf(g share.GroupShares) Hotspot {
	candidates := []struct {
		hotspot Hotspot
		percent float64
	}{
		{HotspotRefrigerant, carbon.SanitizeQuantity(g.RefrigerantSharePercent)},
		{HotspotFuel, carbon.SanitizeQuantity(g.FuelSharePercent)},
		{HotspotElectricity, carbon.SanitizeQuantity(g.ElectricitySharePercent)},
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.percent > best.percent {
			best = c
		}
	}
	if best.percent == 0 {
		return HotspotNone
	}
	return best.hotspot
}

func periodLabel(sel Selector, w WindowResult) string {
	switch {
	case w.FellBack:
		return Everything().Label()
	case sel.Kind == Range:
		first := w.Records[0].MonthLabel
		last := w.Records[len(w.Records)-1].MonthLabel
		return Between(first, last).Label()
	default:
		return sel.Label()
	}
}
