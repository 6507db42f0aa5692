// Package report shapes aggregated emissions into the payload consumed by
// dashboards and document renderers.
package report

import "github.com/rshade/carbon-dashboard/internal/share"

// Share thresholds, in percent, above which a source triggers an advisory.
const (
	ElectricityThreshold = 25.0
	DieselThreshold      = 20.0
	PetrolThreshold      = 15.0
	GasThreshold         = 15.0
	RefrigerantThreshold = 10.0
)

// Advisories emitted by Suggestions.
const (
	ElectricityAdvice = "Electricity is a major source: move to a renewable tariff, upgrade to LED lighting and schedule equipment to switch off outside working hours."
	DieselAdvice      = "Diesel use is high: review generator and fleet usage, improve route planning and evaluate electric or HVO alternatives."
	PetrolAdvice      = "Petrol use is significant: encourage car-sharing, track vehicle mileage and consider hybrid or electric vehicles at replacement."
	GasAdvice         = "Gas consumption is significant: check boiler efficiency, improve insulation and review heating setpoints and schedules."
	RefrigerantAdvice = "Refrigerant leakage is material: schedule leak checks, keep service logs and plan a move to lower-GWP refrigerants."
	BalancedAdvice    = "Your footprint is well balanced across sources: keep monitoring monthly and set a reduction target for the largest source."
)

// rule fires when the share picked from SourceShares exceeds threshold.
type rule struct {
	share     func(share.SourceShares) float64
	threshold float64
	advice    string
}

// rules are evaluated in order; the output order follows this list.
var rules = []rule{
	{func(s share.SourceShares) float64 { return s.ElectricitySharePercent }, ElectricityThreshold, ElectricityAdvice},
	{func(s share.SourceShares) float64 { return s.DieselSharePercent }, DieselThreshold, DieselAdvice},
	{func(s share.SourceShares) float64 { return s.PetrolSharePercent }, PetrolThreshold, PetrolAdvice},
	{func(s share.SourceShares) float64 { return s.GasSharePercent }, GasThreshold, GasAdvice},
	{func(s share.SourceShares) float64 { return s.RefrigerantSharePercent }, RefrigerantThreshold, RefrigerantAdvice},
}

// Suggestions returns one advisory per source whose share is strictly above
// its threshold, in a fixed order. When no source qualifies the result is the
// single balanced-footprint advisory.
func Suggestions(s share.SourceShares) []string {
	var out []string
	for _, r := range rules {
		if r.share(s) > r.threshold {
			out = append(out, r.advice)
		}
	}
	if len(out) == 0 {
		return []string{BalancedAdvice}
	}
	return out
}
