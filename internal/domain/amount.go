package domain

import (
	"github.com/shopspring/decimal"
)

// Amount is a decimal quantity (money or rate) used throughout the payroll model.
// It embeds decimal.Decimal for arithmetic and marshals to JSON as a bare number
// rather than a quoted string, so API consumers receive numeric fields.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps a decimal value
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// AmountFromFloat builds an Amount from a float literal (fixtures, flags)
func AmountFromFloat(f float64) Amount {
	return Amount{Decimal: decimal.NewFromFloat(f)}
}

// AmountFromInt builds an Amount from an integer
func AmountFromInt(i int64) Amount {
	return Amount{Decimal: decimal.NewFromInt(i)}
}

// AmountPtr returns a pointer to an Amount built from a float, for optional fields
func AmountPtr(f float64) *Amount {
	a := AmountFromFloat(f)
	return &a
}

// MarshalJSON renders the amount as a JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// UnmarshalJSON accepts JSON numbers, quoted numbers and null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	return a.Decimal.UnmarshalJSON(data)
}
