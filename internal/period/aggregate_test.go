package period

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/carbon-dashboard/internal/carbon"
	"github.com/rshade/carbon-dashboard/internal/share"
)

const tolerance = 1e-9

// unitTable converts every quantity at 1 kg CO2e per unit.
func unitTable() carbon.FactorTable {
	return carbon.FactorTable{
		ElectricityKgPerKwh: 1,
		DieselKgPerLitre:    1,
		PetrolKgPerLitre:    1,
		GasKgPerKwh:         1,
		RefrigerantGWP:      map[string]float64{},
		FallbackGWP:         1,
	}
}

func monthsOf(ms []MonthSummary) []string {
	return lo.Map(ms, func(m MonthSummary, _ int) string { return m.Month })
}

func TestAggregate_TwelveOfThirteenMonths(t *testing.T) {
	labels := append(append([]string{}, months2024...), "January 2025")
	in := make([]carbon.ActivityRecord, 0, len(labels))
	for i, l := range labels {
		r := carbon.ActivityRecord{MonthLabel: l, ElectricityKwh: 100}
		if i == 0 {
			// The dropped month would make refrigerant the hotspot.
			r.RefrigerantKg = 10
			r.RefrigerantCode = carbon.RefrigerantR404A
		}
		in = append(in, r)
	}
	// Input order is not chronological.
	in[3], in[9] = in[9], in[3]

	s := Aggregate(in, nil, Last(12))

	require.Len(t, s.Months, 12)
	assert.Equal(t, labels[1:], monthsOf(s.Months))
	assert.Equal(t, HotspotElectricity, s.Hotspot)
	assert.InDelta(t, 12*100*carbon.ElectricityKgPerKwh, s.Totals.TotalCo2eKg, tolerance)
	assert.Equal(t, "Last 12 months", s.PeriodLabel)
	assert.False(t, s.RangeFallback)
}

func TestAggregate_MissingRangeFallsBackToAllMonths(t *testing.T) {
	labels := months2024[3:] // April to December
	s := Aggregate(records(labels...), nil, Between("March 2024", "March 2024"))

	assert.True(t, s.RangeFallback)
	assert.Len(t, s.Months, 9)
	assert.Equal(t, labels, monthsOf(s.Months))
	assert.Equal(t, "All time", s.PeriodLabel)
}

func TestAggregate_Shares(t *testing.T) {
	in := []carbon.ActivityRecord{
		{MonthLabel: "January 2024", ElectricityKwh: 100, DieselLitres: 200},
		{MonthLabel: "February 2024", ElectricityKwh: 100, PetrolLitres: 150, GasKwh: 50},
		{MonthLabel: "March 2024", ElectricityKwh: 100, DieselLitres: 200, RefrigerantKg: 100},
	}

	s := NewAggregator(unitTable(), share.DefaultPrecision).Aggregate(in, nil, Everything())

	assert.InDelta(t, 30.0, s.GroupShares.ElectricitySharePercent, tolerance)
	assert.InDelta(t, 60.0, s.GroupShares.FuelSharePercent, tolerance)
	assert.InDelta(t, 10.0, s.GroupShares.RefrigerantSharePercent, tolerance)
	assert.InDelta(t, 100.0, s.GroupShares.Total(), tolerance)
	assert.InDelta(t, 40.0, s.SourceShares.DieselSharePercent, tolerance)
	assert.InDelta(t, 100.0, s.SourceShares.Total(), tolerance)
	assert.Equal(t, HotspotFuel, s.Hotspot)

	assert.InDelta(t, 1000.0, s.Totals.TotalScope1and2Co2eKg, tolerance)
	assert.InDelta(t, 700.0, s.Totals.Scope1Co2eKg, tolerance)
	assert.InDelta(t, 300.0, s.Totals.Scope2Co2eKg, tolerance)
}

func TestAggregate_IgnoresStaleStoredTotals(t *testing.T) {
	in := []carbon.ActivityRecord{{MonthLabel: "May 2024", ElectricityKwh: 1000, TotalCo2eKg: 99999}}

	s := Aggregate(in, nil, Everything())

	assert.InDelta(t, 207.0, s.Months[0].TotalCo2eKg, tolerance)
	assert.InDelta(t, 207.0, s.Totals.TotalCo2eKg, tolerance)
}

func TestAggregate_Scope3Merge(t *testing.T) {
	activity := records("March 2024", "May 2024", "June 2024")
	scope3 := []carbon.Scope3Record{
		carbon.NewScope3Record("May 2024", carbon.Scope3Waste, "", 10, "kg", 2),
		carbon.NewScope3Record("April 2024", carbon.Scope3Commuting, "", 100, "km", 0.5),
		carbon.NewScope3Record("January 2024", carbon.Scope3BusinessTravel, "", 1000, "km", 0.1),
		carbon.NewScope3Record("2024-05", carbon.Scope3Commuting, "", 5, "km", 1),
	}
	aggregator := NewAggregator(unitTable(), share.DefaultPrecision)

	t.Run("range keeps months inside the window bounds", func(t *testing.T) {
		s := aggregator.Aggregate(activity, scope3, Between("March 2024", "June 2024"))

		require.Equal(t, []string{"March 2024", "April 2024", "May 2024", "June 2024"}, monthsOf(s.Months))

		april := s.Months[1]
		assert.True(t, april.Scope3Only)
		assert.Equal(t, 0.0, april.Scope1and2Co2eKg)
		assert.InDelta(t, 50.0, april.TotalCo2eKg, tolerance)

		may := s.Months[2]
		assert.False(t, may.Scope3Only)
		assert.InDelta(t, 25.0, may.Scope3Co2eKg, tolerance)
		assert.InDelta(t, 27.0, may.TotalCo2eKg, tolerance)

		assert.InDelta(t, 75.0, s.Totals.TotalScope3Co2eKg, tolerance)
		assert.InDelta(t, 6.0, s.Totals.TotalScope1and2Co2eKg, tolerance)
		assert.InDelta(t, 81.0, s.Totals.TotalCo2eKg, tolerance)
		assert.Equal(t, map[carbon.Scope3Category]float64{
			carbon.Scope3Waste:     20,
			carbon.Scope3Commuting: 55,
		}, s.Totals.Scope3ByCategory)
	})

	t.Run("all includes every scope 3 month", func(t *testing.T) {
		s := aggregator.Aggregate(activity, scope3, Everything())

		assert.Equal(t, []string{"January 2024", "March 2024", "April 2024", "May 2024", "June 2024"}, monthsOf(s.Months))
		assert.InDelta(t, 175.0, s.Totals.TotalScope3Co2eKg, tolerance)
	})

	t.Run("last n drops scope 3 months before the window", func(t *testing.T) {
		s := aggregator.Aggregate(activity, scope3, Last(2))

		assert.Equal(t, []string{"May 2024", "June 2024"}, monthsOf(s.Months))
		assert.InDelta(t, 25.0, s.Totals.TotalScope3Co2eKg, tolerance)
	})

	t.Run("scope 3 only data", func(t *testing.T) {
		s := aggregator.Aggregate(nil, scope3, Last(2))

		assert.Equal(t, []string{"April 2024", "May 2024"}, monthsOf(s.Months))
		assert.Equal(t, HotspotNone, s.Hotspot)
		assert.Equal(t, share.GroupShares{}, s.GroupShares)
	})
}

func TestAggregate_Delta(t *testing.T) {
	tests := []struct {
		name  string
		in    []carbon.ActivityRecord
		valid bool
		want  float64
	}{
		{
			name:  "increase",
			in:    []carbon.ActivityRecord{{MonthLabel: "May 2024", ElectricityKwh: 100}, {MonthLabel: "June 2024", ElectricityKwh: 150}},
			valid: true,
			want:  50,
		},
		{
			name:  "decrease",
			in:    []carbon.ActivityRecord{{MonthLabel: "June 2024", ElectricityKwh: 50}, {MonthLabel: "May 2024", ElectricityKwh: 200}},
			valid: true,
			want:  -75,
		},
		{
			name: "previous zero",
			in:   []carbon.ActivityRecord{{MonthLabel: "May 2024"}, {MonthLabel: "June 2024", ElectricityKwh: 150}},
		},
		{
			name: "single month",
			in:   []carbon.ActivityRecord{{MonthLabel: "June 2024", ElectricityKwh: 150}},
		},
		{
			name: "no data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewAggregator(unitTable(), share.DefaultPrecision).Aggregate(tt.in, nil, Everything())
			assert.Equal(t, tt.valid, s.Delta.Valid)
			assert.False(t, math.IsNaN(s.Delta.Percent) || math.IsInf(s.Delta.Percent, 0))
			if tt.valid {
				assert.InDelta(t, tt.want, s.Delta.Percent, tolerance)
			} else {
				assert.Equal(t, "n/a", s.Delta.String())
			}
		})
	}
}

func TestAggregate_DeltaIncludesScope3(t *testing.T) {
	activity := []carbon.ActivityRecord{{MonthLabel: "May 2024", ElectricityKwh: 100}, {MonthLabel: "June 2024", ElectricityKwh: 100}}
	scope3 := []carbon.Scope3Record{carbon.NewScope3Record("June 2024", carbon.Scope3Waste, "", 100, "kg", 1)}

	s := NewAggregator(unitTable(), share.DefaultPrecision).Aggregate(activity, scope3, Everything())

	assert.InDelta(t, 100.0, s.Delta.Percent, tolerance)
}

func TestHotspotOf(t *testing.T) {
	tests := []struct {
		name string
		g    share.GroupShares
		want Hotspot
	}{
		{"electricity", share.GroupShares{ElectricitySharePercent: 66.7, FuelSharePercent: 33.3}, HotspotElectricity},
		{"fuel", share.GroupShares{ElectricitySharePercent: 45.5, FuelSharePercent: 54.5}, HotspotFuel},
		{"refrigerant", share.GroupShares{RefrigerantSharePercent: 100}, HotspotRefrigerant},
		{"tie refrigerant wins", share.GroupShares{ElectricitySharePercent: 40, FuelSharePercent: 20, RefrigerantSharePercent: 40}, HotspotRefrigerant},
		{"tie fuel beats electricity", share.GroupShares{ElectricitySharePercent: 50, FuelSharePercent: 50}, HotspotFuel},
		{"all zero", share.GroupShares{}, HotspotNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HotspotOf(tt.g))
		})
	}
}

// TestAggregate_HotspotMatchesLargestShare checks that equal subtotals give
// the displayed residual and the hotspot to the same group.
func TestAggregate_HotspotMatchesLargestShare(t *testing.T) {
	tests := []struct {
		name string
		in   carbon.ActivityRecord
		want Hotspot
	}{
		{"three way tie", carbon.ActivityRecord{MonthLabel: "May 2024", ElectricityKwh: 100, DieselLitres: 100, RefrigerantKg: 100}, HotspotRefrigerant},
		{"fuel and electricity tie", carbon.ActivityRecord{MonthLabel: "May 2024", ElectricityKwh: 5, GasKwh: 5, RefrigerantKg: 1}, HotspotFuel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, precision := range []int{0, 1, 2} {
				s := NewAggregator(unitTable(), precision).Aggregate([]carbon.ActivityRecord{tt.in}, nil, Everything())

				g := s.GroupShares
				largest := math.Max(g.ElectricitySharePercent, math.Max(g.FuelSharePercent, g.RefrigerantSharePercent))
				assert.Equal(t, tt.want, s.Hotspot, "precision %d", precision)
				switch tt.want {
				case HotspotRefrigerant:
					assert.InDelta(t, largest, g.RefrigerantSharePercent, tolerance, "precision %d", precision)
				case HotspotFuel:
					assert.InDelta(t, largest, g.FuelSharePercent, tolerance, "precision %d", precision)
				}
			}
		})
	}
}

func TestAggregate_SharePrecision(t *testing.T) {
	in := records("May 2024")

	assert.Equal(t, share.DefaultPrecision, Aggregate(in, nil, Everything()).SharePrecision)
	assert.Equal(t, 2, NewAggregator(unitTable(), 2).Aggregate(in, nil, Everything()).SharePrecision)
	assert.Equal(t, 0, NewAggregator(unitTable(), -1).Aggregate(in, nil, Everything()).SharePrecision)
}

// TestAggregate_LastNKeepsNewerScope3Months covers a Scope 3 month newer than
// every activity month when N spans all the data.
func TestAggregate_LastNKeepsNewerScope3Months(t *testing.T) {
	activity := records("January 2024", "February 2024", "March 2024")
	scope3 := []carbon.Scope3Record{carbon.NewScope3Record("April 2024", carbon.Scope3Waste, "", 100, "kg", 1)}
	aggregator := NewAggregator(unitTable(), share.DefaultPrecision)

	last := aggregator.Aggregate(activity, scope3, Last(DefaultMonths))
	all := aggregator.Aggregate(activity, scope3, Everything())

	assert.Equal(t, []string{"January 2024", "February 2024", "March 2024", "April 2024"}, monthsOf(last.Months))
	assert.True(t, last.Months[3].Scope3Only)
	assert.InDelta(t, 100.0, last.Totals.TotalScope3Co2eKg, tolerance)
	assert.Equal(t, all.Months, last.Months)
	assert.Equal(t, all.Totals, last.Totals)

	t.Run("newest n months across both sources", func(t *testing.T) {
		s := aggregator.Aggregate(activity, scope3, Last(2))

		assert.Equal(t, []string{"March 2024", "April 2024"}, monthsOf(s.Months))
		assert.InDelta(t, 3.0, s.Totals.TotalScope1and2Co2eKg, tolerance)
		assert.InDelta(t, 100.0, s.Totals.TotalScope3Co2eKg, tolerance)
	})
}

func TestSummary_LatestFirst(t *testing.T) {
	s := Aggregate(records("May 2024", "April 2024", "June 2024"), nil, Everything())

	assert.Equal(t, []string{"June 2024", "May 2024", "April 2024"}, monthsOf(s.LatestFirst()))
	assert.Equal(t, []string{"April 2024", "May 2024", "June 2024"}, monthsOf(s.Months))
}

func TestAggregate_PeriodLabel(t *testing.T) {
	in := records(months2024...)

	assert.Equal(t, "March 2024 – June 2024", Aggregate(in, nil, Between("2024-03", "2024-06")).PeriodLabel)
	assert.Equal(t, "All time", Aggregate(in, nil, Everything()).PeriodLabel)
	assert.Equal(t, "Last 6 months", Aggregate(in, nil, Last(6)).PeriodLabel)
}

func TestAggregate_Deterministic(t *testing.T) {
	in := records(months2024...)
	scope3 := []carbon.Scope3Record{carbon.NewScope3Record("May 2024", carbon.Scope3Waste, "", 10, "kg", 2)}

	assert.Equal(t, Aggregate(in, scope3, Last(6)), Aggregate(in, scope3, Last(6)))
}

func TestDelta_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Delta `json:"a"`
		B Delta `json:"b"`
	}{A: Delta{Percent: 12.5, Valid: true}, B: Delta{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 12.5, "b": "n/a"}`, string(b))

	var d Delta
	require.NoError(t, json.Unmarshal([]byte(`"n/a"`), &d))
	assert.False(t, d.Valid)
	require.NoError(t, json.Unmarshal([]byte(`-3.25`), &d))
	assert.Equal(t, Delta{Percent: -3.25, Valid: true}, d)
}

func TestMonthOverMonth(t *testing.T) {
	assert.False(t, MonthOverMonth(0, 10).Valid)
	assert.False(t, MonthOverMonth(math.NaN(), 10).Valid)
	assert.False(t, MonthOverMonth(10, math.Inf(1)).Valid)
	assert.Equal(t, "+10.0%", MonthOverMonth(100, 110).String())
	assert.Equal(t, "-50.0%", MonthOverMonth(100, 50).String())
}
