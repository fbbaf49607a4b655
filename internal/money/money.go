// Package money holds the numeric helpers shared by the credit and reconciliation engines.
package money

import (
	"math"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const brlFormat = "#.###,##"

// BRL formats an amount the way messages show it to customers: R$ 1.234,56.
func BRL(v float64) string {
	return "R$ " + humanize.FormatFloat(brlFormat, v)
}

// Round rounds half away from zero to the given number of decimal places.
func Round(val float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(val*p) / p
}

// Sum adds amounts in decimal arithmetic so that totals compared against a band
// are not skewed by binary float error.
func Sum(values []float64) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total
}

// Band is a closed interval [Lower, Upper].
type Band struct {
	Lower decimal.Decimal
	Upper decimal.Decimal
}

// ToleranceBand returns [amount×(1-tol), amount×(1+tol)].
func ToleranceBand(amount, tolerance float64) Band {
	a := decimal.NewFromFloat(amount)
	t := decimal.NewFromFloat(tolerance)
	one := decimal.NewFromInt(1)
	return Band{
		Lower: a.Mul(one.Sub(t)),
		Upper: a.Mul(one.Add(t)),
	}
}

// Contains reports whether v lies in the band, both ends inclusive.
func (b Band) Contains(v decimal.Decimal) bool {
	return v.GreaterThanOrEqual(b.Lower) && v.LessThanOrEqual(b.Upper)
}

// Percent returns part/whole×100, or zero when whole is not positive.
func Percent(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).InexactFloat64()
}
