package calculation

import (
	"github.com/rgehrsitz/paygo/internal/domain"
	"github.com/shopspring/decimal"
)

// OvertimeCalculator prices overtime hours from the monthly gross salary
type OvertimeCalculator struct {
	StandardMonthlyHours decimal.Decimal
	DefaultMultiplier    decimal.Decimal
}

// NewOvertimeCalculator creates an overtime calculator with the statutory defaults
func NewOvertimeCalculator() *OvertimeCalculator {
	return &OvertimeCalculator{
		StandardMonthlyHours: decimal.NewFromInt(domain.DefaultStandardMonthlyHours),
		DefaultMultiplier:    domain.DefaultOvertimeRate,
	}
}

// NewOvertimeCalculatorWithConfig creates an overtime calculator from a RateSet
func NewOvertimeCalculatorWithConfig(rs *domain.RateSet) *OvertimeCalculator {
	return &OvertimeCalculator{
		StandardMonthlyHours: rs.Hours(),
		DefaultMultiplier:    rs.OvertimeMultiplier(),
	}
}

// CalculateOvertime returns gross * hours * multiplier / standard hours, rounded to
// the cent. A zero multiplier uses the default.
func (oc *OvertimeCalculator) CalculateOvertime(gross, hours, multiplier decimal.Decimal) decimal.Decimal {
	if !hours.IsPositive() {
		return decimal.Zero
	}
	if multiplier.IsZero() {
		multiplier = oc.DefaultMultiplier
	}
	// Multiply first so the hourly rate is never rounded on its own
	return roundCents(gross.Mul(hours).Mul(multiplier).Div(oc.StandardMonthlyHours))
}
