package calculation

import "github.com/shopspring/decimal"

// centPlaces is the precision of every monetary figure the engine reports
const centPlaces = 2

// roundCents rounds half away from zero to the cent. decimal.Round already does
// half-up for positive values, which is all the engine ever produces.
func roundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(centPlaces)
}

// percentOf returns round(base * pct)
func percentOf(base, pct decimal.Decimal) decimal.Decimal {
	return roundCents(base.Mul(pct))
}

func maxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
