package calculation

import (
	"github.com/rgehrsitz/paygo/internal/domain"
	"github.com/shopspring/decimal"
)

// INCOME TAX NOTES:
//
// Brackets use the quick-deduction form: tax = base * rate - cumulative_deduction,
// which equals the marginal sum over lower bands when deductions are consistent.
// A base equal to a bracket bound is taxed in that (lower) bracket.
//
// With annual brackets the monthly taxable base is annualised (x12), the annual tax
// rounded to the cent, then divided back to a monthly figure and rounded again.

var monthsPerYear = decimal.NewFromInt(12)

// TaxBracket is the calculator's view of an income tax band. Unbounded marks the last one.
type TaxBracket struct {
	UpperBound          decimal.Decimal
	Unbounded           bool
	Rate                decimal.Decimal
	CumulativeDeduction decimal.Decimal
}

// IncomeTaxCalculator evaluates the progressive income tax (IR)
type IncomeTaxCalculator struct {
	Brackets []TaxBracket
	Annual   bool
}

// NewIncomeTaxCalculator creates an income tax calculator from a validated RateSet
func NewIncomeTaxCalculator(rs *domain.RateSet) *IncomeTaxCalculator {
	brackets := make([]TaxBracket, 0, len(rs.IncomeTaxBrackets))
	for _, b := range rs.IncomeTaxBrackets {
		tb := TaxBracket{Rate: b.Rate.Decimal, CumulativeDeduction: b.CumulativeDeduction.Decimal}
		if b.UpperBound == nil {
			tb.Unbounded = true
		} else {
			tb.UpperBound = b.UpperBound.Decimal
		}
		brackets = append(brackets, tb)
	}
	return &IncomeTaxCalculator{Brackets: brackets, Annual: rs.AnnualIncomeTax}
}

// FindBracket returns the first bracket whose upper bound is >= base
func (itc *IncomeTaxCalculator) FindBracket(base decimal.Decimal) (TaxBracket, bool) {
	for _, b := range itc.Brackets {
		if b.Unbounded || base.LessThanOrEqual(b.UpperBound) {
			return b, true
		}
	}
	return TaxBracket{}, false
}

// TaxOn applies the bracket table to base directly, clamped at zero
func (itc *IncomeTaxCalculator) TaxOn(base decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}
	b, ok := itc.FindBracket(base)
	if !ok {
		return decimal.Zero
	}
	return maxZero(roundCents(base.Mul(b.Rate).Sub(b.CumulativeDeduction)))
}

// CalculateMonthlyTax returns the income tax due on one month of taxable income
func (itc *IncomeTaxCalculator) CalculateMonthlyTax(monthlyTaxable decimal.Decimal) decimal.Decimal {
	if !itc.Annual {
		return itc.TaxOn(monthlyTaxable)
	}
	annual := itc.TaxOn(monthlyTaxable.Mul(monthsPerYear))
	return roundCents(annual.Div(monthsPerYear))
}

// ProfessionalExpenseCalculator computes the flat allowance deducted before income tax
type ProfessionalExpenseCalculator struct {
	Rate       decimal.Decimal
	MonthlyCap decimal.Decimal // zero means uncapped
}

// NewProfessionalExpenseCalculator returns nil when the RateSet has no allowance
func NewProfessionalExpenseCalculator(rs *domain.RateSet) *ProfessionalExpenseCalculator {
	if rs.ProfessionalExpenses == nil {
		return nil
	}
	return &ProfessionalExpenseCalculator{
		Rate:       rs.ProfessionalExpenses.Rate.Decimal,
		MonthlyCap: rs.ProfessionalExpenses.MonthlyCap.Decimal,
	}
}

// CalculateAllowance returns round(min(gross * rate, cap)); a nil calculator yields 0
func (pec *ProfessionalExpenseCalculator) CalculateAllowance(gross decimal.Decimal) decimal.Decimal {
	if pec == nil {
		return decimal.Zero
	}
	allowance := gross.Mul(pec.Rate)
	if pec.MonthlyCap.IsPositive() {
		allowance = decimal.Min(allowance, pec.MonthlyCap)
	}
	return roundCents(allowance)
}

// ProfessionalTaxCalculator computes the flat professional tax withheld from gross
type ProfessionalTaxCalculator struct {
	Rate decimal.Decimal
}

// NewProfessionalTaxCalculator creates a professional tax calculator from a RateSet
func NewProfessionalTaxCalculator(rs *domain.RateSet) *ProfessionalTaxCalculator {
	return &ProfessionalTaxCalculator{Rate: rs.ProfessionalTaxPct.Decimal}
}

// CalculateProfessionalTax returns round(gross * rate)
func (ptc *ProfessionalTaxCalculator) CalculateProfessionalTax(gross decimal.Decimal) decimal.Decimal {
	return percentOf(gross, ptc.Rate)
}
