// Package growth formats period-over-period changes. Every growth figure
// reported by the service goes through Percent so rounding and the
// zero-previous edge cases stay identical across reports.
package growth

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Percent returns the signed change from previous to current with one decimal
// place, e.g. "+12.5%" or "-50.0%". A zero previous value yields "+100%" when
// current is positive and "0%" otherwise.
func Percent(current, previous decimal.Decimal) string {
	if previous.IsZero() {
		if current.IsPositive() {
			return "+100%"
		}
		return "0%"
	}
	pct := change(current, previous)
	s := pct.StringFixed(1) + "%"
	if pct.IsPositive() {
		return "+" + s
	}
	return s
}

// PercentInt is Percent for counts.
func PercentInt(current, previous int64) string {
	return Percent(decimal.NewFromInt(current), decimal.NewFromInt(previous))
}

// Value returns the number Percent formats, for charts.
func Value(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsPositive() {
			return 100
		}
		return 0
	}
	f, _ := change(current, previous).Float64()
	return f
}

// Share returns part as a percentage of total rounded to one decimal place.
func Share(part, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	f, _ := part.Div(total).Mul(hundred).Round(1).Float64()
	return f
}

func change(current, previous decimal.Decimal) decimal.Decimal {
	return current.Sub(previous).Div(previous.Abs()).Mul(hundred).Round(1)
}
