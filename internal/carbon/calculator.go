package carbon

import "fmt"

// Quantities are the raw metered amounts for one reporting month.
type Quantities struct {
	ElectricityKwh  float64
	DieselLitres    float64
	PetrolLitres    float64
	GasKwh          float64
	RefrigerantKg   float64
	RefrigerantCode string
}

// Breakdown is the per-source CO2e result in kilograms.
type Breakdown struct {
	ElectricityCo2eKg float64 `json:"electricityCo2eKg"`
	DieselCo2eKg      float64 `json:"dieselCo2eKg"`
	PetrolCo2eKg      float64 `json:"petrolCo2eKg"`
	GasCo2eKg         float64 `json:"gasCo2eKg"`
	RefrigerantCo2eKg float64 `json:"refrigerantCo2eKg"`

	// TotalCo2eKg is the exact sum of the five components above.
	TotalCo2eKg float64 `json:"totalCo2eKg"`
}

// Calculate converts quantities to CO2e using the built-in factor table.
func Calculate(q Quantities) Breakdown {
	return defaultTable.Calculate(q)
}

// Calculate converts quantities to CO2e.
//
// Each source is quantity × factor; refrigerant uses kg × GWP for the code.
// Quantities are sanitised first (negatives, NaN and Inf count as zero), and
// nothing is rounded: rounding is a display concern.
func (t FactorTable) Calculate(q Quantities) Breakdown {
	b := Breakdown{
		ElectricityCo2eKg: SanitizeQuantity(q.ElectricityKwh) * t.ElectricityKgPerKwh,
		DieselCo2eKg:      SanitizeQuantity(q.DieselLitres) * t.DieselKgPerLitre,
		PetrolCo2eKg:      SanitizeQuantity(q.PetrolLitres) * t.PetrolKgPerLitre,
		GasCo2eKg:         SanitizeQuantity(q.GasKwh) * t.GasKgPerKwh,
	}
	if kg := SanitizeQuantity(q.RefrigerantKg); kg > 0 {
		b.RefrigerantCo2eKg = kg * t.GWPFor(q.RefrigerantCode)
	}
	b.TotalCo2eKg = b.sum()
	return b
}

func (b Breakdown) sum() float64 {
	return b.ElectricityCo2eKg + b.DieselCo2eKg + b.PetrolCo2eKg + b.GasCo2eKg + b.RefrigerantCo2eKg
}

// Fuel is the combined diesel, petrol and gas CO2e.
func (b Breakdown) Fuel() float64 {
	return b.DieselCo2eKg + b.PetrolCo2eKg + b.GasCo2eKg
}

// Scope1 is direct combustion plus refrigerant leakage.
func (b Breakdown) Scope1() float64 {
	return b.Fuel() + b.RefrigerantCo2eKg
}

// Scope2 is purchased electricity.
func (b Breakdown) Scope2() float64 {
	return b.ElectricityCo2eKg
}

// Add returns the component-wise sum of two breakdowns.
func (b Breakdown) Add(o Breakdown) Breakdown {
	out := Breakdown{
		ElectricityCo2eKg: b.ElectricityCo2eKg + o.ElectricityCo2eKg,
		DieselCo2eKg:      b.DieselCo2eKg + o.DieselCo2eKg,
		PetrolCo2eKg:      b.PetrolCo2eKg + o.PetrolCo2eKg,
		GasCo2eKg:         b.GasCo2eKg + o.GasCo2eKg,
		RefrigerantCo2eKg: b.RefrigerantCo2eKg + o.RefrigerantCo2eKg,
	}
	out.TotalCo2eKg = out.sum()
	return out
}

// Detail returns a human-readable description of the calculation inputs.
func (t FactorTable) Detail(q Quantities) string {
	code := CanonicalRefrigerantCode(q.RefrigerantCode)
	if code == "" {
		code = RefrigerantGeneric
	}
	return fmt.Sprintf("%s kWh electricity, %s L diesel, %s L petrol, %s kWh gas, %s kg %s (GWP %s)",
		formatFloat(SanitizeQuantity(q.ElectricityKwh)),
		formatFloat(SanitizeQuantity(q.DieselLitres)),
		formatFloat(SanitizeQuantity(q.PetrolLitres)),
		formatFloat(SanitizeQuantity(q.GasKwh)),
		formatFloat(SanitizeQuantity(q.RefrigerantKg)),
		code,
		formatFloat(t.GWPFor(q.RefrigerantCode)))
}
