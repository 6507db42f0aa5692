package carbon

import (
	"bytes"
	"strconv"
	"strings"
)

// Quantity is a lenient numeric field for persisted rows. It decodes JSON
// numbers, numeric strings and null; anything else decodes as 0 rather than
// failing the whole row.
type Quantity float64

// UnmarshalJSON implements json.Unmarshaler.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	*q = Quantity(ParseQuantity(string(bytes.TrimSpace(data))))
	return nil
}

// ParseQuantity parses a raw numeric token and sanitises it. Quoted strings
// are unquoted first. Unparseable input yields 0.
func ParseQuantity(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return SanitizeQuantity(v)
}

// ActivityRow is the persisted monthly activity shape.
type ActivityRow struct {
	Month           string   `json:"month"`
	ElectricityKw   Quantity `json:"electricity_kw"`
	DieselLitres    Quantity `json:"diesel_litres"`
	PetrolLitres    Quantity `json:"petrol_litres"`
	GasKwh          Quantity `json:"gas_kwh"`
	FuelLiters      Quantity `json:"fuel_liters"`
	RefrigerantKg   Quantity `json:"refrigerant_kg"`
	RefrigerantCode string   `json:"refrigerant_code"`
	TotalCo2e       Quantity `json:"total_co2e"`
}

// ActivityRecord is one account's canonical activity for one reporting month.
// Legacy combined fuel has already been folded into the split fields.
type ActivityRecord struct {
	MonthLabel      string  `json:"monthLabel"`
	ElectricityKwh  float64 `json:"electricityKwh"`
	DieselLitres    float64 `json:"dieselLitres"`
	PetrolLitres    float64 `json:"petrolLitres"`
	GasKwh          float64 `json:"gasKwh"`
	RefrigerantKg   float64 `json:"refrigerantKg"`
	RefrigerantCode string  `json:"refrigerantCode"`

	// TotalCo2eKg is derived; call Recompute after changing any field.
	TotalCo2eKg float64 `json:"totalCo2eKg"`
}

// NormalizeRow converts a persisted row into a canonical record.
//
// The legacy fuel_liters column is only used when both diesel_litres and
// petrol_litres are zero, and is attributed to diesel. The stored total is
// ignored and recomputed from the normalised quantities with the table t.
func (t FactorTable) NormalizeRow(row ActivityRow) ActivityRecord {
	rec := ActivityRecord{
		MonthLabel:      strings.TrimSpace(row.Month),
		ElectricityKwh:  SanitizeQuantity(float64(row.ElectricityKw)),
		DieselLitres:    SanitizeQuantity(float64(row.DieselLitres)),
		PetrolLitres:    SanitizeQuantity(float64(row.PetrolLitres)),
		GasKwh:          SanitizeQuantity(float64(row.GasKwh)),
		RefrigerantKg:   SanitizeQuantity(float64(row.RefrigerantKg)),
		RefrigerantCode: CanonicalRefrigerantCode(row.RefrigerantCode),
	}
	if rec.DieselLitres == 0 && rec.PetrolLitres == 0 {
		if legacy := SanitizeQuantity(float64(row.FuelLiters)); legacy > 0 {
			rec.DieselLitres = legacy
			logger.Debug().Str("month", rec.MonthLabel).Float64("fuel_liters", legacy).
				Msg("legacy combined fuel attributed to diesel")
		}
	}
	rec = t.Recompute(rec)
	if stored := float64(row.TotalCo2e); stored > 0 && !nearlyEqual(stored, rec.TotalCo2eKg) {
		logger.Debug().Str("month", rec.MonthLabel).Float64("stored", stored).
			Float64("recomputed", rec.TotalCo2eKg).Msg("stale stored total replaced")
	}
	return rec
}

// NormalizeRow converts a persisted row using the built-in factor table.
func NormalizeRow(row ActivityRow) ActivityRecord {
	return defaultTable.NormalizeRow(row)
}

// Quantities returns the calculator input for the record.
func (r ActivityRecord) Quantities() Quantities {
	return Quantities{
		ElectricityKwh:  r.ElectricityKwh,
		DieselLitres:    r.DieselLitres,
		PetrolLitres:    r.PetrolLitres,
		GasKwh:          r.GasKwh,
		RefrigerantKg:   r.RefrigerantKg,
		RefrigerantCode: r.RefrigerantCode,
	}
}

// Recompute returns r with TotalCo2eKg derived from its current quantities.
// The previous total never contributes, so repeated edits cannot accumulate.
func (t FactorTable) Recompute(r ActivityRecord) ActivityRecord {
	r.TotalCo2eKg = t.Calculate(r.Quantities()).TotalCo2eKg
	return r
}

// Breakdown computes the per-source CO2e for the record.
func (t FactorTable) Breakdown(r ActivityRecord) Breakdown {
	return t.Calculate(r.Quantities())
}

// Row converts a record back to the persisted shape. The legacy fuel column
// is always written as zero.
func (r ActivityRecord) Row() ActivityRow {
	return ActivityRow{
		Month:           r.MonthLabel,
		ElectricityKw:   Quantity(r.ElectricityKwh),
		DieselLitres:    Quantity(r.DieselLitres),
		PetrolLitres:    Quantity(r.PetrolLitres),
		GasKwh:          Quantity(r.GasKwh),
		RefrigerantKg:   Quantity(r.RefrigerantKg),
		RefrigerantCode: r.RefrigerantCode,
		TotalCo2e:       Quantity(r.TotalCo2eKg),
	}
}

func nearlyEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= 1e-6
}
