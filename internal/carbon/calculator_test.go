package carbon

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const tolerance = 1e-9

func TestCalculate_ElectricityAndDiesel(t *testing.T) {
	got := Calculate(Quantities{
		ElectricityKwh: 1000,
		DieselLitres:   100,
	})

	assert.InDelta(t, 207.0, got.ElectricityCo2eKg, tolerance)
	assert.InDelta(t, 260.0, got.DieselCo2eKg, tolerance)
	assert.InDelta(t, 0.0, got.PetrolCo2eKg, tolerance)
	assert.InDelta(t, 0.0, got.GasCo2eKg, tolerance)
	assert.InDelta(t, 0.0, got.RefrigerantCo2eKg, tolerance)
	assert.InDelta(t, 467.0, got.TotalCo2eKg, tolerance)
}

func TestCalculate_RefrigerantR404A(t *testing.T) {
	got := Calculate(Quantities{RefrigerantKg: 2.0, RefrigerantCode: "R404A"})

	assert.InDelta(t, 7844.0, got.RefrigerantCo2eKg, tolerance)
	assert.InDelta(t, 7844.0, got.TotalCo2eKg, tolerance)
}

func TestCalculate_UnknownRefrigerantUsesFallback(t *testing.T) {
	got := Calculate(Quantities{RefrigerantKg: 1.5, RefrigerantCode: "R22"})

	assert.InDelta(t, 1.5*DefaultRefrigerantGWP, got.RefrigerantCo2eKg, tolerance)
}

// TestCalculate_TotalIsSumOfComponents checks additivity across a spread of inputs.
func TestCalculate_TotalIsSumOfComponents(t *testing.T) {
	inputs := []Quantities{
		{},
		{ElectricityKwh: 1234.567},
		{ElectricityKwh: 0.1, DieselLitres: 0.2, PetrolLitres: 0.3, GasKwh: 0.4, RefrigerantKg: 0.5},
		{ElectricityKwh: 98765.4321, GasKwh: 12000, RefrigerantKg: 3, RefrigerantCode: "R410A"},
		{DieselLitres: 1e6, PetrolLitres: 1e-6, RefrigerantKg: 7.25, RefrigerantCode: "r-134a"},
	}

	for _, q := range inputs {
		got := Calculate(q)
		sum := got.ElectricityCo2eKg + got.DieselCo2eKg + got.PetrolCo2eKg + got.GasCo2eKg + got.RefrigerantCo2eKg
		assert.InDelta(t, sum, got.TotalCo2eKg, tolerance, "input %+v", q)
	}
}

func TestCalculate_InvalidQuantitiesAreZero(t *testing.T) {
	got := Calculate(Quantities{
		ElectricityKwh: -500,
		DieselLitres:   math.NaN(),
		PetrolLitres:   math.Inf(1),
		GasKwh:         math.Inf(-1),
		RefrigerantKg:  -2,
	})

	assert.Equal(t, Breakdown{}, got)
	assert.False(t, math.IsNaN(got.TotalCo2eKg))
}

func TestCalculate_Deterministic(t *testing.T) {
	q := Quantities{ElectricityKwh: 4321.123, DieselLitres: 17.5, PetrolLitres: 9.25, GasKwh: 800, RefrigerantKg: 0.75, RefrigerantCode: "R407C"}

	first := Calculate(q)
	second := Calculate(q)

	assert.Equal(t, math.Float64bits(first.TotalCo2eKg), math.Float64bits(second.TotalCo2eKg))
	assert.Equal(t, first, second)
}

func TestBreakdown_ScopeHelpers(t *testing.T) {
	b := Calculate(Quantities{ElectricityKwh: 1000, DieselLitres: 10, PetrolLitres: 10, GasKwh: 100, RefrigerantKg: 1, RefrigerantCode: "R134A"})

	assert.InDelta(t, 26+23+18.4, b.Fuel(), tolerance)
	assert.InDelta(t, b.Fuel()+1430, b.Scope1(), tolerance)
	assert.InDelta(t, 207, b.Scope2(), tolerance)
	assert.InDelta(t, b.TotalCo2eKg, b.Scope1()+b.Scope2(), tolerance)
}

func TestBreakdown_Add(t *testing.T) {
	a := Calculate(Quantities{ElectricityKwh: 100})
	b := Calculate(Quantities{DieselLitres: 10, RefrigerantKg: 1})

	sum := a.Add(b)

	assert.InDelta(t, a.TotalCo2eKg+b.TotalCo2eKg, sum.TotalCo2eKg, tolerance)
	assert.InDelta(t, 20.7, sum.ElectricityCo2eKg, tolerance)
	assert.InDelta(t, 26, sum.DieselCo2eKg, tolerance)
}

func TestFactorTable_Detail(t *testing.T) {
	detail := DefaultFactorTable().Detail(Quantities{ElectricityKwh: 1000, DieselLitres: 12.5})

	assert.Equal(t, "1000 kWh electricity, 12.50 L diesel, 0 L petrol, 0 kWh gas, 0 kg GENERIC_HFC (GWP 1300)", detail)
}

func TestSanitizeQuantity(t *testing.T) {
	assert.Equal(t, 0.0, SanitizeQuantity(-1))
	assert.Equal(t, 0.0, SanitizeQuantity(math.NaN()))
	assert.Equal(t, 0.0, SanitizeQuantity(math.Inf(1)))
	assert.Equal(t, 3.5, SanitizeQuantity(3.5))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-1, 0, 1))
	assert.Equal(t, 1.0, Clamp(2, 0, 1))
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
}
