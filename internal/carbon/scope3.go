package carbon

import "strings"

// Scope3Category classifies indirect value-chain activity.
type Scope3Category string

const (
	Scope3Commuting           Scope3Category = "commuting"
	Scope3BusinessTravel      Scope3Category = "business_travel"
	Scope3PurchasedGoods      Scope3Category = "purchased_goods"
	Scope3Waste               Scope3Category = "waste"
	Scope3UpstreamTransport   Scope3Category = "upstream_transport"
	Scope3DownstreamTransport Scope3Category = "downstream_transport"
	Scope3Other               Scope3Category = "other"
)

var scope3Categories = map[string]Scope3Category{
	"commuting":            Scope3Commuting,
	"employee_commuting":   Scope3Commuting,
	"business_travel":      Scope3BusinessTravel,
	"purchased_goods":      Scope3PurchasedGoods,
	"waste":                Scope3Waste,
	"upstream_transport":   Scope3UpstreamTransport,
	"downstream_transport": Scope3DownstreamTransport,
	"other":                Scope3Other,
}

// ParseScope3Category maps a stored category onto the enumeration. Matching
// ignores case and treats spaces and dashes as underscores. Unknown values
// map to Scope3Other.
func ParseScope3Category(s string) Scope3Category {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_", "/", "_").Replace(key)
	if c, ok := scope3Categories[key]; ok {
		return c
	}
	if key != "" {
		logger.Debug().Str("category", s).Msg("unrecognised scope 3 category, using other")
	}
	return Scope3Other
}

// Scope3Record is one indirect-emissions line for a reporting month.
type Scope3Record struct {
	Month         string         `json:"month"`
	Category      Scope3Category `json:"category"`
	Label         string         `json:"label,omitempty"`
	ActivityValue float64        `json:"activityValue"`
	Unit          string         `json:"unit"`
	FactorPerUnit float64        `json:"factorPerUnit"`
	Co2eKg        float64        `json:"co2eKg"`
}

// NewScope3Record builds a record with Co2eKg = activity × factor.
func NewScope3Record(month string, category Scope3Category, label string, activity float64, unit string, factor float64) Scope3Record {
	r := Scope3Record{
		Month:         strings.TrimSpace(month),
		Category:      ParseScope3Category(string(category)),
		Label:         strings.TrimSpace(label),
		ActivityValue: SanitizeQuantity(activity),
		Unit:          strings.TrimSpace(unit),
		FactorPerUnit: SanitizeQuantity(factor),
	}
	r.Co2eKg = r.ActivityValue * r.FactorPerUnit
	return r
}

// Scope3Data is the nested activity payload of a persisted scope 3 row.
type Scope3Data struct {
	ActivityValue   Quantity `json:"activity_value"`
	Unit            string   `json:"unit"`
	FactorKgPerUnit Quantity `json:"factor_kg_per_unit"`
}

// Scope3Row is the persisted scope 3 shape.
type Scope3Row struct {
	Month    string     `json:"month"`
	Category string     `json:"category"`
	Label    *string    `json:"label"`
	Data     Scope3Data `json:"data"`
	Co2eKg   Quantity   `json:"co2e_kg"`
}

// NormalizeScope3Row converts a persisted row. The stored co2e_kg is kept as
// persisted; it is only derived from activity × factor when it is missing.
func NormalizeScope3Row(row Scope3Row) Scope3Record {
	label := ""
	if row.Label != nil {
		label = *row.Label
	}
	r := NewScope3Record(row.Month, Scope3Category(row.Category), label,
		float64(row.Data.ActivityValue), row.Data.Unit, float64(row.Data.FactorKgPerUnit))
	if stored := SanitizeQuantity(float64(row.Co2eKg)); stored > 0 {
		r.Co2eKg = stored
	}
	return r
}

// Row converts the record back to the persisted shape.
func (r Scope3Record) Row() Scope3Row {
	row := Scope3Row{
		Month:    r.Month,
		Category: string(r.Category),
		Data: Scope3Data{
			ActivityValue:   Quantity(r.ActivityValue),
			Unit:            r.Unit,
			FactorKgPerUnit: Quantity(r.FactorPerUnit),
		},
		Co2eKg: Quantity(r.Co2eKg),
	}
	if r.Label != "" {
		label := r.Label
		row.Label = &label
	}
	return row
}
