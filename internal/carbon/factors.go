package carbon

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ActivityType identifies a metered activity with a per-unit emission factor.
type ActivityType string

const (
	ActivityElectricity ActivityType = "electricity"
	ActivityDiesel      ActivityType = "diesel"
	ActivityPetrol      ActivityType = "petrol"
	ActivityGas         ActivityType = "gas"
)

// FactorTable holds every conversion factor used by the calculator.
// The zero value is not useful; start from DefaultFactorTable.
type FactorTable struct {
	ElectricityKgPerKwh float64
	DieselKgPerLitre    float64
	PetrolKgPerLitre    float64
	GasKgPerKwh         float64

	// RefrigerantGWP is keyed by canonical refrigerant code (see CanonicalRefrigerantCode).
	RefrigerantGWP map[string]float64

	// FallbackGWP applies to GENERIC_HFC and to absent or unrecognised codes.
	FallbackGWP float64
}

// DefaultFactorTable returns the built-in factor vintage.
func DefaultFactorTable() FactorTable {
	return FactorTable{
		ElectricityKgPerKwh: ElectricityKgPerKwh,
		DieselKgPerLitre:    DieselKgPerLitre,
		PetrolKgPerLitre:    PetrolKgPerLitre,
		GasKgPerKwh:         GasKgPerKwh,
		RefrigerantGWP: map[string]float64{
			RefrigerantR410A: GWPR410A,
			RefrigerantR134A: GWPR134A,
			RefrigerantR407C: GWPR407C,
			RefrigerantR404A: GWPR404A,
		},
		FallbackGWP: DefaultRefrigerantGWP,
	}
}

var defaultTable = DefaultFactorTable()

// FactorFor returns the built-in kg CO2e per unit for an activity type.
func FactorFor(activity ActivityType) float64 {
	return defaultTable.FactorFor(activity)
}

// GWPFor returns the built-in global warming potential for a refrigerant code.
// Unknown or empty codes return DefaultRefrigerantGWP.
func GWPFor(code string) float64 {
	return defaultTable.GWPFor(code)
}

// FactorFor returns kg CO2e per unit (kWh or litre) for the activity type.
func (t FactorTable) FactorFor(activity ActivityType) float64 {
	switch activity {
	case ActivityElectricity:
		return t.ElectricityKgPerKwh
	case ActivityDiesel:
		return t.DieselKgPerLitre
	case ActivityPetrol:
		return t.PetrolKgPerLitre
	case ActivityGas:
		return t.GasKgPerKwh
	default:
		logger.Warn().Str("activity", string(activity)).Msg("no emission factor for activity type")
		return 0
	}
}

// GWPFor returns the global warming potential for a refrigerant code.
// Codes are matched case-insensitively and ignore separators, so "r-410a"
// resolves to R410A. Anything unrecognised resolves to the fallback GWP.
func (t FactorTable) GWPFor(code string) float64 {
	key := CanonicalRefrigerantCode(code)
	if key == RefrigerantGeneric {
		return t.FallbackGWP
	}
	if gwp, ok := t.RefrigerantGWP[key]; ok {
		return gwp
	}
	if key != "" {
		logger.Debug().Str("refrigerant_code", code).Float64("fallback_gwp", t.FallbackGWP).
			Msg("unrecognised refrigerant code, using fallback GWP")
	}
	return t.FallbackGWP
}

// KnownRefrigerant reports whether the code has a dedicated GWP entry.
func (t FactorTable) KnownRefrigerant(code string) bool {
	key := CanonicalRefrigerantCode(code)
	if key == RefrigerantGeneric {
		return true
	}
	_, ok := t.RefrigerantGWP[key]
	return ok
}

// RefrigerantCodes returns the configured refrigerant codes in sorted order,
// GENERIC_HFC included.
func (t FactorTable) RefrigerantCodes() []string {
	codes := make([]string, 0, len(t.RefrigerantGWP)+1)
	for code := range t.RefrigerantGWP {
		codes = append(codes, code)
	}
	codes = append(codes, RefrigerantGeneric)
	sort.Strings(codes)
	return codes
}

// CanonicalRefrigerantCode upper-cases a refrigerant code and strips spaces,
// dashes and dots. GENERIC_HFC keeps its underscore.
func CanonicalRefrigerantCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if strings.ReplaceAll(strings.ReplaceAll(code, "-", "_"), " ", "_") == RefrigerantGeneric {
		return RefrigerantGeneric
	}
	return strings.NewReplacer("-", "", " ", "", ".", "", "_", "").Replace(code)
}

// FactorOverrides is the YAML shape accepted by LoadFactorOverrides. Nil
// fields keep the base value.
type FactorOverrides struct {
	ElectricityKgPerKwh *float64           `yaml:"electricity_kg_per_kwh"`
	DieselKgPerLitre    *float64           `yaml:"diesel_kg_per_litre"`
	PetrolKgPerLitre    *float64           `yaml:"petrol_kg_per_litre"`
	GasKgPerKwh         *float64           `yaml:"gas_kg_per_kwh"`
	Refrigerants        map[string]float64 `yaml:"refrigerants"`
	FallbackGWP         *float64           `yaml:"fallback_gwp"`
}

// Overrides returns t as a complete override document, suitable for writing
// out and editing.
func (t FactorTable) Overrides() FactorOverrides {
	refrigerants := make(map[string]float64, len(t.RefrigerantGWP))
	for code, gwp := range t.RefrigerantGWP {
		refrigerants[code] = gwp
	}
	return FactorOverrides{
		ElectricityKgPerKwh: &t.ElectricityKgPerKwh,
		DieselKgPerLitre:    &t.DieselKgPerLitre,
		PetrolKgPerLitre:    &t.PetrolKgPerLitre,
		GasKgPerKwh:         &t.GasKgPerKwh,
		Refrigerants:        refrigerants,
		FallbackGWP:         &t.FallbackGWP,
	}
}

// LoadFactorOverrides decodes a YAML override document.
func LoadFactorOverrides(r io.Reader) (FactorOverrides, error) {
	var o FactorOverrides
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil {
		if errors.Is(err, io.EOF) {
			return FactorOverrides{}, nil
		}
		return FactorOverrides{}, fmt.Errorf("decode factor overrides: %w", err)
	}
	return o, nil
}

// WithOverrides returns a copy of t with the overrides applied. The receiver
// is never modified. Negative, NaN or infinite values are rejected, as are
// zero refrigerant GWPs and a zero fallback GWP.
func (t FactorTable) WithOverrides(o FactorOverrides) (FactorTable, error) {
	out := t
	out.RefrigerantGWP = make(map[string]float64, len(t.RefrigerantGWP)+len(o.Refrigerants))
	for code, gwp := range t.RefrigerantGWP {
		out.RefrigerantGWP[code] = gwp
	}

	scalars := []struct {
		name string
		src  *float64
		dst  *float64
	}{
		{"electricity_kg_per_kwh", o.ElectricityKgPerKwh, &out.ElectricityKgPerKwh},
		{"diesel_kg_per_litre", o.DieselKgPerLitre, &out.DieselKgPerLitre},
		{"petrol_kg_per_litre", o.PetrolKgPerLitre, &out.PetrolKgPerLitre},
		{"gas_kg_per_kwh", o.GasKgPerKwh, &out.GasKgPerKwh},
		{"fallback_gwp", o.FallbackGWP, &out.FallbackGWP},
	}
	for _, s := range scalars {
		if s.src == nil {
			continue
		}
		if !validFactor(*s.src) {
			return t, fmt.Errorf("%w: %s=%v", ErrInvalidOverride, s.name, *s.src)
		}
		*s.dst = *s.src
	}

	for code, gwp := range o.Refrigerants {
		key := CanonicalRefrigerantCode(code)
		if key == "" || !validFactor(gwp) || gwp == 0 {
			return t, fmt.Errorf("%w: refrigerant %q=%v", ErrInvalidOverride, code, gwp)
		}
		if key == RefrigerantGeneric {
			out.FallbackGWP = gwp
			continue
		}
		out.RefrigerantGWP[key] = gwp
	}
	if out.FallbackGWP <= 0 {
		return t, fmt.Errorf("%w: fallback_gwp must be positive", ErrInvalidOverride)
	}
	return out, nil
}

func validFactor(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
