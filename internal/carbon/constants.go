// Package carbon converts monthly activity quantities (electricity, fuel,
// refrigerant) into CO2e mass using published emission factors.
package carbon

const (
	// ElectricityKgPerKwh is the grid electricity factor in kg CO2e per kWh.
	// Source: UK Government GHG Conversion Factors (DESNZ), location-based grid average.
	ElectricityKgPerKwh = 0.207

	// DieselKgPerLitre is the diesel combustion factor in kg CO2e per litre.
	DieselKgPerLitre = 2.6

	// PetrolKgPerLitre is the petrol combustion factor in kg CO2e per litre.
	PetrolKgPerLitre = 2.3

	// GasKgPerKwh is the natural gas combustion factor in kg CO2e per kWh (gross CV).
	GasKgPerKwh = 0.184
)

// Refrigerant codes with a dedicated global warming potential.
const (
	RefrigerantR410A   = "R410A"
	RefrigerantR134A   = "R134A"
	RefrigerantR407C   = "R407C"
	RefrigerantR404A   = "R404A"
	RefrigerantGeneric = "GENERIC_HFC"
)

const (
	// GWPR410A is the 100-year GWP of R-410A (IPCC AR5).
	GWPR410A = 2088.0

	// GWPR134A is the 100-year GWP of R-134a (IPCC AR5).
	GWPR134A = 1430.0

	// GWPR407C is the 100-year GWP of R-407C (IPCC AR5).
	GWPR407C = 1774.0

	// GWPR404A is the 100-year GWP of R-404A (IPCC AR5).
	GWPR404A = 3922.0

	// DefaultRefrigerantGWP is used when a refrigerant code is absent or not recognised.
	// It approximates a generic HFC blend.
	DefaultRefrigerantGWP = 1300.0
)
