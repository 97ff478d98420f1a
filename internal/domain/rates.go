package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultStandardMonthlyHours is the legal monthly working time used to derive the
// hourly rate for overtime (44h/week in the non-agricultural sector).
const DefaultStandardMonthlyHours = 191

// DefaultOvertimeRate is the overtime multiplier applied when the request omits one
var DefaultOvertimeRate = decimal.NewFromFloat(1.5)

// RateSet is an immutable snapshot of the statutory parameters valid for a period.
// Percentages are fractions in [0,1] (0.0448 means 4.48%).
type RateSet struct {
	ID            string    `yaml:"id" json:"id"`
	Description   string    `yaml:"description,omitempty" json:"description,omitempty"`
	CompanyID     string    `yaml:"company_id,omitempty" json:"company_id,omitempty"` // empty applies to every company
	EffectiveFrom time.Time `yaml:"effective_from" json:"effective_from"`

	// CNSS (social security), capped at CNSSCeiling per month
	CNSSEmployeePct Amount `yaml:"cnss_employee_pct" json:"cnss_employee_pct"`
	CNSSEmployerPct Amount `yaml:"cnss_employer_pct" json:"cnss_employer_pct"`
	CNSSCeiling     Amount `yaml:"cnss_ceiling" json:"cnss_ceiling"`

	// AMO (health insurance), uncapped
	AMOEmployeePct Amount `yaml:"amo_employee_pct" json:"amo_employee_pct"`
	AMOEmployerPct Amount `yaml:"amo_employer_pct" json:"amo_employer_pct"`

	// CIMR (supplementary retirement) is opt-in; nil means no contribution
	CIMREmployeePct *Amount `yaml:"cimr_employee_pct,omitempty" json:"cimr_employee_pct,omitempty"`
	CIMREmployerPct *Amount `yaml:"cimr_employer_pct,omitempty" json:"cimr_employer_pct,omitempty"`

	ProfessionalTaxPct Amount `yaml:"professional_tax_pct" json:"professional_tax_pct"`

	IncomeTaxBrackets []TaxBracket `yaml:"income_tax_brackets" json:"income_tax_brackets"`
	// AnnualIncomeTax marks brackets expressed on yearly income; the monthly taxable
	// base is annualised before lookup and the tax brought back to a monthly figure.
	AnnualIncomeTax bool `yaml:"annual_income_tax,omitempty" json:"annual_income_tax,omitempty"`

	ProfessionalExpenses *ProfessionalExpenseRule `yaml:"professional_expenses,omitempty" json:"professional_expenses,omitempty"`

	// DeductionsPreTax moves ad hoc deductions ahead of income tax. They are always
	// withheld from net salary either way.
	DeductionsPreTax bool `yaml:"deductions_pre_tax,omitempty" json:"deductions_pre_tax,omitempty"`

	// Overtime parameters. Zero values fall back to the package defaults.
	StandardMonthlyHours Amount `yaml:"standard_monthly_hours,omitempty" json:"standard_monthly_hours,omitempty"`
	DefaultOvertimeRate  Amount `yaml:"default_overtime_rate,omitempty" json:"default_overtime_rate,omitempty"`
}

// TaxBracket is one band of the progressive income tax table.
// A nil UpperBound marks the last, unbounded band.
type TaxBracket struct {
	UpperBound          *Amount `yaml:"upper_bound" json:"upper_bound"`
	Rate                Amount  `yaml:"rate" json:"rate"`
	CumulativeDeduction Amount  `yaml:"cumulative_deduction" json:"cumulative_deduction"`
}

// ProfessionalExpenseRule is the flat statutory allowance deducted before income tax
type ProfessionalExpenseRule struct {
	Rate       Amount `yaml:"rate" json:"rate"`
	MonthlyCap Amount `yaml:"monthly_cap,omitempty" json:"monthly_cap,omitempty"` // zero means uncapped
}

// Hours returns the overtime divisor, defaulting to DefaultStandardMonthlyHours
func (rs *RateSet) Hours() decimal.Decimal {
	if rs.StandardMonthlyHours.IsPositive() {
		return rs.StandardMonthlyHours.Decimal
	}
	return decimal.NewFromInt(DefaultStandardMonthlyHours)
}

// OvertimeMultiplier returns the configured default overtime multiplier
func (rs *RateSet) OvertimeMultiplier() decimal.Decimal {
	if rs.DefaultOvertimeRate.IsPositive() {
		return rs.DefaultOvertimeRate.Decimal
	}
	return DefaultOvertimeRate
}

// HasCIMR reports whether the supplementary retirement scheme applies
func (rs *RateSet) HasCIMR() bool {
	return rs.CIMREmployeePct != nil || rs.CIMREmployerPct != nil
}

// RateKey selects the RateSet applicable to a simulation
type RateKey struct {
	CompanyID     string    `json:"company_id,omitempty"`
	EffectiveDate time.Time `json:"effective_date"`
}

// Clone returns a deep copy so callers can never alter a shared snapshot
func (rs *RateSet) Clone() *RateSet {
	if rs == nil {
		return nil
	}
	out := *rs
	if rs.CIMREmployeePct != nil {
		v := *rs.CIMREmployeePct
		out.CIMREmployeePct = &v
	}
	if rs.CIMREmployerPct != nil {
		v := *rs.CIMREmployerPct
		out.CIMREmployerPct = &v
	}
	if rs.ProfessionalExpenses != nil {
		pe := *rs.ProfessionalExpenses
		out.ProfessionalExpenses = &pe
	}
	if rs.IncomeTaxBrackets != nil {
		out.IncomeTaxBrackets = make([]TaxBracket, len(rs.IncomeTaxBrackets))
		for i, b := range rs.IncomeTaxBrackets {
			if b.UpperBound != nil {
				ub := *b.UpperBound
				b.UpperBound = &ub
			}
			out.IncomeTaxBrackets[i] = b
		}
	}
	return &out
}

// RateOverrides adjusts contribution percentages for a single what-if simulation.
// Values are percentages (4.48 means 4.48%); nil fields keep the resolved rate.
type RateOverrides struct {
	CNSSEmployee    *Amount `json:"cnss_employee,omitempty"`
	CNSSEmployer    *Amount `json:"cnss_employer,omitempty"`
	AMOEmployee     *Amount `json:"amo_employee,omitempty"`
	AMOEmployer     *Amount `json:"amo_employer,omitempty"`
	CIMREmployee    *Amount `json:"cimr_employee,omitempty"`
	CIMREmployer    *Amount `json:"cimr_employer,omitempty"`
	ProfessionalTax *Amount `json:"professional_tax,omitempty"`
}

// IsEmpty reports whether no override is set
func (o *RateOverrides) IsEmpty() bool {
	return o == nil || (o.CNSSEmployee == nil && o.CNSSEmployer == nil &&
		o.AMOEmployee == nil && o.AMOEmployer == nil &&
		o.CIMREmployee == nil && o.CIMREmployer == nil &&
		o.ProfessionalTax == nil)
}

// WithOverrides returns a copy of rs with the overrides applied. The receiver is
// left untouched.
func (rs *RateSet) WithOverrides(o *RateOverrides) *RateSet {
	out := rs.Clone()
	if out == nil || o.IsEmpty() {
		return out
	}
	fraction := func(pct *Amount) Amount {
		return NewAmount(pct.Shift(-2))
	}
	if o.CNSSEmployee != nil {
		out.CNSSEmployeePct = fraction(o.CNSSEmployee)
	}
	if o.CNSSEmployer != nil {
		out.CNSSEmployerPct = fraction(o.CNSSEmployer)
	}
	if o.AMOEmployee != nil {
		out.AMOEmployeePct = fraction(o.AMOEmployee)
	}
	if o.AMOEmployer != nil {
		out.AMOEmployerPct = fraction(o.AMOEmployer)
	}
	if o.CIMREmployee != nil {
		v := fraction(o.CIMREmployee)
		out.CIMREmployeePct = &v
	}
	if o.CIMREmployer != nil {
		v := fraction(o.CIMREmployer)
		out.CIMREmployerPct = &v
	}
	if o.ProfessionalTax != nil {
		out.ProfessionalTaxPct = fraction(o.ProfessionalTax)
	}
	return out
}
