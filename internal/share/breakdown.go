package share

import "github.com/rshade/carbon-dashboard/internal/carbon"

// GroupShares is the three-way split used by dashboards and hotspot selection.
type GroupShares struct {
	ElectricitySharePercent float64 `json:"electricitySharePercent"`
	FuelSharePercent        float64 `json:"fuelSharePercent"`
	RefrigerantSharePercent float64 `json:"refrigerantSharePercent"`
}

// SourceShares is the five-way split used by the suggestion rules.
type SourceShares struct {
	ElectricitySharePercent float64 `json:"electricitySharePercent"`
	DieselSharePercent      float64 `json:"dieselSharePercent"`
	PetrolSharePercent      float64 `json:"petrolSharePercent"`
	GasSharePercent         float64 `json:"gasSharePercent"`
	RefrigerantSharePercent float64 `json:"refrigerantSharePercent"`
}

// Groups normalises a breakdown into electricity, fuel and refrigerant shares.
// Subtotals are normalised refrigerant first, so when rounded shares tie the
// residual lands on refrigerant, then fuel, then electricity.
func Groups(b carbon.Breakdown, precision int) GroupShares {
	p := Normalize([]float64{b.RefrigerantCo2eKg, b.Fuel(), b.ElectricityCo2eKg}, precision)
	return GroupShares{
		RefrigerantSharePercent: p[0],
		FuelSharePercent:        p[1],
		ElectricitySharePercent: p[2],
	}
}

// Sources normalises a breakdown into the five per-source shares, using the
// same residual priority as Groups.
func Sources(b carbon.Breakdown, precision int) SourceShares {
	p := Normalize([]float64{
		b.RefrigerantCo2eKg,
		b.DieselCo2eKg,
		b.PetrolCo2eKg,
		b.GasCo2eKg,
		b.ElectricityCo2eKg,
	}, precision)
	return SourceShares{
		RefrigerantSharePercent: p[0],
		DieselSharePercent:      p[1],
		PetrolSharePercent:      p[2],
		GasSharePercent:         p[3],
		ElectricitySharePercent: p[4],
	}
}

// Total returns the sum of the three group shares.
func (g GroupShares) Total() float64 {
	return Sum([]float64{g.ElectricitySharePercent, g.FuelSharePercent, g.RefrigerantSharePercent})
}

// Total returns the sum of the five source shares.
func (s SourceShares) Total() float64 {
	return Sum([]float64{
		s.ElectricitySharePercent,
		s.DieselSharePercent,
		s.PetrolSharePercent,
		s.GasSharePercent,
		s.RefrigerantSharePercent,
	})
}
