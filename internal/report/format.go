package report

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// formatter renders numbers with the separators of its locale.
type formatter struct {
	printer *message.Printer
}

func newFormatter(tag language.Tag) formatter {
	return formatter{printer: message.NewPrinter(tag)}
}

// number formats an integer with thousand separators.
func (f formatter) number(n int64) string {
	return f.printer.Sprint(number.Decimal(n))
}

// float formats v with exactly precision decimals. Non-finite values render
// as zero, and values that round to zero never carry a minus sign.
func (f formatter) float(v float64, precision int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	if precision < 0 {
		precision = 0
	}
	if math.Abs(v) < 0.5*math.Pow10(-precision) {
		v = 0
	}
	return f.printer.Sprint(number.Decimal(v, number.Scale(precision)))
}

// kg formats a mass in kilograms, switching to tonnes at 1,000 kg.
func (f formatter) kg(v float64) string {
	if math.Abs(v) >= 1000 {
		return f.float(v/1000, 2) + " t CO2e"
	}
	return f.float(v, 1) + " kg CO2e"
}

// percent formats a share with precision decimal places.
func (f formatter) percent(v float64, precision int) string {
	return f.float(v, precision) + "%"
}
