package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

type namedAmount struct {
	name  string
	value Amount
}

// Validate checks the RateSet invariants and returns a *ConfigurationError
// describing the first violation.
func (rs *RateSet) Validate() error {
	if rs == nil {
		return &ConfigurationError{Reason: "rate set is nil"}
	}
	fail := func(format string, args ...interface{}) error {
		return &ConfigurationError{RateSetID: rs.ID, Reason: fmt.Sprintf(format, args...)}
	}

	pcts := []namedAmount{
		{"cnss_employee_pct", rs.CNSSEmployeePct},
		{"cnss_employer_pct", rs.CNSSEmployerPct},
		{"amo_employee_pct", rs.AMOEmployeePct},
		{"amo_employer_pct", rs.AMOEmployerPct},
		{"professional_tax_pct", rs.ProfessionalTaxPct},
	}
	if rs.CIMREmployeePct != nil {
		pcts = append(pcts, namedAmount{"cimr_employee_pct", *rs.CIMREmployeePct})
	}
	if rs.CIMREmployerPct != nil {
		pcts = append(pcts, namedAmount{"cimr_employer_pct", *rs.CIMREmployerPct})
	}
	for _, p := range pcts {
		if !isFraction(p.value.Decimal) {
			return fail("%s must be between 0 and 1, got %s", p.name, p.value.String())
		}
	}

	if rs.CNSSCeiling.IsNegative() {
		return fail("cnss_ceiling cannot be negative, got %s", rs.CNSSCeiling.String())
	}
	if rs.StandardMonthlyHours.IsNegative() {
		return fail("standard_monthly_hours must be positive, got %s", rs.StandardMonthlyHours.String())
	}
	if rs.DefaultOvertimeRate.IsPositive() && rs.DefaultOvertimeRate.LessThan(one) {
		return fail("default_overtime_rate must be at least 1, got %s", rs.DefaultOvertimeRate.String())
	}
	if rs.DefaultOvertimeRate.IsNegative() {
		return fail("default_overtime_rate cannot be negative, got %s", rs.DefaultOvertimeRate.String())
	}

	if pe := rs.ProfessionalExpenses; pe != nil {
		if !isFraction(pe.Rate.Decimal) {
			return fail("professional_expenses.rate must be between 0 and 1, got %s", pe.Rate.String())
		}
		if pe.MonthlyCap.IsNegative() {
			return fail("professional_expenses.monthly_cap cannot be negative, got %s", pe.MonthlyCap.String())
		}
	}

	return validateBrackets(rs.IncomeTaxBrackets, fail)
}

func validateBrackets(brackets []TaxBracket, fail func(string, ...interface{}) error) error {
	if len(brackets) == 0 {
		return fail("income_tax_brackets cannot be empty")
	}
	var prev *Amount
	for i, b := range brackets {
		if !isFraction(b.Rate.Decimal) {
			return fail("income_tax_brackets[%d].rate must be between 0 and 1, got %s", i, b.Rate.String())
		}
		if b.CumulativeDeduction.IsNegative() {
			return fail("income_tax_brackets[%d].cumulative_deduction cannot be negative", i)
		}
		last := i == len(brackets)-1
		if b.UpperBound == nil {
			if !last {
				return fail("income_tax_brackets[%d] is unbounded but is not the last bracket", i)
			}
			continue
		}
		if last {
			return fail("last income tax bracket must be unbounded")
		}
		if b.UpperBound.IsNegative() {
			return fail("income_tax_brackets[%d].upper_bound cannot be negative", i)
		}
		if prev != nil && !b.UpperBound.GreaterThan(prev.Decimal) {
			return fail("income_tax_brackets must be strictly ascending: %s follows %s", b.UpperBound.String(), prev.String())
		}
		prev = b.UpperBound
	}
	return nil
}

func isFraction(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(one)
}

// Validate checks the caller-supplied fields and returns an *InvalidInputError.
// EmployeeID is opaque and not checked here.
func (in *SimulationInput) Validate() error {
	if !in.GrossSalary.IsPositive() {
		return NewInvalidInput("gross_salary", fmt.Sprintf("must be greater than 0, got %s", in.GrossSalary.String()))
	}
	if in.OvertimeHours.IsNegative() {
		return NewInvalidInput("overtime_hours", fmt.Sprintf("cannot be negative, got %s", in.OvertimeHours.String()))
	}
	if !in.OvertimeRate.IsZero() && in.OvertimeRate.LessThan(one) {
		return NewInvalidInput("overtime_rate", fmt.Sprintf("must be at least 1, got %s", in.OvertimeRate.String()))
	}
	nonNegative := []namedAmount{
		{"bonuses", in.Bonuses},
		{"allowances", in.Allowances},
		{"deductions", in.Deductions},
	}
	for _, f := range nonNegative {
		if f.value.IsNegative() {
			return NewInvalidInput(f.name, fmt.Sprintf("cannot be negative, got %s", f.value.String()))
		}
	}
	if in.PayMonth < 0 || in.PayMonth > 12 {
		return NewInvalidInput("pay_month", fmt.Sprintf("must be between 1 and 12, got %d", in.PayMonth))
	}
	if in.PayYear < 0 {
		return NewInvalidInput("pay_year", fmt.Sprintf("cannot be negative, got %d", in.PayYear))
	}
	return nil
}
