package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/text/language"

	"github.com/rshade/carbon-dashboard/internal/period"
	"github.com/rshade/carbon-dashboard/internal/share"
)

// Trend holds parallel oldest-first arrays for sparklines.
type Trend struct {
	Labels   []string  `json:"labels"`
	TotalsKg []float64 `json:"totalsKg"`
	Scope3Kg []float64 `json:"scope3Kg"`
}

// Display carries preformatted strings for renderers.
type Display struct {
	TotalCo2e           string `json:"totalCo2e"`
	TotalScope1and2Co2e string `json:"totalScope1and2Co2e"`
	TotalScope3Co2e     string `json:"totalScope3Co2e"`
	ElectricityShare    string `json:"electricityShare"`
	FuelShare           string `json:"fuelShare"`
	RefrigerantShare    string `json:"refrigerantShare"`
	Delta               string `json:"delta"`
}

// Report is the payload handed to dashboards and document renderers.
type Report struct {
	ID          uuid.UUID `json:"id"`
	GeneratedAt time.Time `json:"generatedAt"`
	PeriodLabel string    `json:"periodLabel"`

	// Months is the series newest first, as tables list it.
	Months            []period.MonthSummary `json:"months"`
	BreakdownBySource share.GroupShares     `json:"breakdownBySource"`
	SourceShares      share.SourceShares    `json:"sourceShares"`
	Totals            period.Totals         `json:"totals"`
	Hotspot           period.Hotspot        `json:"hotspot"`
	Delta             period.Delta          `json:"delta"`
	Suggestions       []string              `json:"suggestions"`
	Trend             Trend                 `json:"trend"`
	Display           Display               `json:"display"`
	RangeFallback     bool                  `json:"rangeFallback"`

	// AINarrative is nil unless a narrator produced one. It is never mixed
	// into Suggestions.
	AINarrative *Narrative `json:"aiNarrative"`
}

// Options tune report assembly. The zero value is usable.
type Options struct {
	// ID overrides the generated report ID.
	ID uuid.UUID
	// GeneratedAt defaults to the current time.
	GeneratedAt time.Time
	// Language selects number formatting; defaults to English.
	Language language.Tag
	// Narrative is attached as AINarrative when non-nil.
	Narrative *Narrative
}

// Assemble builds a Report from an aggregated summary.
func Assemble(s period.Summary, opts Options) Report {
	id := opts.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	generatedAt := opts.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now().UTC()
	}
	tag := opts.Language
	if tag == language.Und {
		tag = language.English
	}
	f := newFormatter(tag)

	return Report{
		ID:                id,
		GeneratedAt:       generatedAt,
		PeriodLabel:       s.PeriodLabel,
		Months:            s.LatestFirst(),
		BreakdownBySource: s.GroupShares,
		SourceShares:      s.SourceShares,
		Totals:            s.Totals,
		Hotspot:           s.Hotspot,
		Delta:             s.Delta,
		Suggestions:       Suggestions(s.SourceShares),
		Trend:             trendOf(s.Months),
		Display: Display{
			TotalCo2e:           f.kg(s.Totals.TotalCo2eKg),
			TotalScope1and2Co2e: f.kg(s.Totals.TotalScope1and2Co2eKg),
			TotalScope3Co2e:     f.kg(s.Totals.TotalScope3Co2eKg),
			ElectricityShare:    f.percent(s.GroupShares.ElectricitySharePercent, s.SharePrecision),
			FuelShare:           f.percent(s.GroupShares.FuelSharePercent, s.SharePrecision),
			RefrigerantShare:    f.percent(s.GroupShares.RefrigerantSharePercent, s.SharePrecision),
			Delta:               s.Delta.String(),
		},
		RangeFallback: s.RangeFallback,
		AINarrative:   opts.Narrative,
	}
}

func trendOf(months []period.MonthSummary) Trend {
	return Trend{
		Labels:   lo.Map(months, func(m period.MonthSummary, _ int) string { return m.Month }),
		TotalsKg: lo.Map(months, func(m period.MonthSummary, _ int) float64 { return m.TotalCo2eKg }),
		Scope3Kg: lo.Map(months, func(m period.MonthSummary, _ int) float64 { return m.Scope3Co2eKg }),
	}
}
