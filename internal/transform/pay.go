package transform

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/paygo/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RaiseSalary increases the base gross salary by a percentage or a fixed amount.
// Exactly one of Percent and Amount must be set.
type RaiseSalary struct {
	Percent decimal.Decimal
	Amount  decimal.Decimal
}

func (t *RaiseSalary) Name() string { return "raise" }

func (t *RaiseSalary) Description() string {
	if !t.Percent.IsZero() {
		return fmt.Sprintf("Raise gross salary by %s%%", t.Percent.String())
	}
	return fmt.Sprintf("Raise gross salary by %s MAD", t.Amount.StringFixed(2))
}

func (t *RaiseSalary) Validate(base domain.SimulationInput) error {
	if t.Percent.IsZero() == t.Amount.IsZero() {
		return NewTransformError(t.Name(), "validate", "exactly one of percent or amount is required", nil)
	}
	if t.Percent.LessThanOrEqual(hundred.Neg()) {
		return NewTransformError(t.Name(), "validate", "percent must be greater than -100", nil)
	}
	if base.GrossSalary.Add(t.Amount).IsNegative() {
		return NewTransformError(t.Name(), "validate", "gross salary would become negative", nil)
	}
	return nil
}

func (t *RaiseSalary) Apply(base domain.SimulationInput) (domain.SimulationInput, error) {
	out := base
	if !t.Percent.IsZero() {
		factor := decimal.NewFromInt(1).Add(t.Percent.Div(hundred))
		out.GrossSalary = domain.NewAmount(base.GrossSalary.Mul(factor).Round(2))
		return out, nil
	}
	out.GrossSalary = domain.NewAmount(base.GrossSalary.Add(t.Amount))
	return out, nil
}

// SetGross replaces the base gross salary.
type SetGross struct {
	Gross decimal.Decimal
}

func (t *SetGross) Name() string { return "set_gross" }

func (t *SetGross) Description() string {
	return fmt.Sprintf("Set gross salary to %s MAD", t.Gross.StringFixed(2))
}

func (t *SetGross) Validate(domain.SimulationInput) error {
	if !t.Gross.IsPositive() {
		return NewTransformError(t.Name(), "validate", "gross must be positive", nil)
	}
	return nil
}

func (t *SetGross) Apply(base domain.SimulationInput) (domain.SimulationInput, error) {
	out := base
	out.GrossSalary = domain.NewAmount(t.Gross)
	return out, nil
}

// AddOvertime adds overtime hours. A non-zero Rate also replaces the overtime
// multiplier for the whole month.
type AddOvertime struct {
	Hours decimal.Decimal
	Rate  decimal.Decimal
}

func (t *AddOvertime) Name() string { return "add_overtime" }

func (t *AddOvertime) Description() string {
	if t.Rate.IsZero() {
		return fmt.Sprintf("Work %sh more overtime", t.Hours.String())
	}
	return fmt.Sprintf("Work %sh more overtime at x%s", t.Hours.String(), t.Rate.String())
}

func (t *AddOvertime) Validate(base domain.SimulationInput) error {
	if base.OvertimeHours.Add(t.Hours).IsNegative() {
		return NewTransformError(t.Name(), "validate", "overtime hours would become negative", nil)
	}
	if t.Rate.IsNegative() {
		return NewTransformError(t.Name(), "validate", "rate cannot be negative", nil)
	}
	return nil
}

func (t *AddOvertime) Apply(base domain.SimulationInput) (domain.SimulationInput, error) {
	out := base
	out.OvertimeHours = domain.NewAmount(base.OvertimeHours.Add(t.Hours))
	if !t.Rate.IsZero() {
		out.OvertimeRate = domain.NewAmount(t.Rate)
	}
	return out, nil
}

// AddBonus adds a one-off bonus on top of any existing bonuses.
type AddBonus struct {
	Amount decimal.Decimal
}

func (t *AddBonus) Name() string { return "add_bonus" }

func (t *AddBonus) Description() string {
	return fmt.Sprintf("Pay a %s MAD bonus", t.Amount.StringFixed(2))
}

func (t *AddBonus) Validate(base domain.SimulationInput) error {
	if base.Bonuses.Add(t.Amount).IsNegative() {
		return NewTransformError(t.Name(), "validate", "bonuses would become negative", nil)
	}
	return nil
}

func (t *AddBonus) Apply(base domain.SimulationInput) (domain.SimulationInput, error) {
	out := base
	out.Bonuses = domain.NewAmount(base.Bonuses.Add(t.Amount))
	return out, nil
}

// AddAllowance adds a taxable allowance.
type AddAllowance struct {
	Amount decimal.Decimal
}

func (t *AddAllowance) Name() string { return "add_allowance" }

func (t *AddAllowance) Description() string {
	return fmt.Sprintf("Add a %s MAD allowance", t.Amount.StringFixed(2))
}

func (t *AddAllowance) Validate(base domain.SimulationInput) error {
	if base.Allowances.Add(t.Amount).IsNegative() {
		return NewTransformError(t.Name(), "validate", "allowances would become negative", nil)
	}
	return nil
}

func (t *AddAllowance) Apply(base domain.SimulationInput) (domain.SimulationInput, error) {
	out := base
	out.Allowances = domain.NewAmount(base.Allowances.Add(t.Amount))
	return out, nil
}

// SetDeductions replaces the "other deductions" figure.
type SetDeductions struct {
	Amount decimal.Decimal
}

func (t *SetDeductions) Name() string { return "set_deductions" }

func (t *SetDeductions) Description() string {
	return fmt.Sprintf("Set other deductions to %s MAD", t.Amount.StringFixed(2))
}

func (t *SetDeductions) Validate(domain.SimulationInput) error {
	if t.Amount.IsNegative() {
		return NewTransformError(t.Name(), "validate", "amount cannot be negative", nil)
	}
	return nil
}

func (t *SetDeductions) Apply(base domain.SimulationInput) (domain.SimulationInput, error) {
	out := base
	out.Deductions = domain.NewAmount(t.Amount)
	return out, nil
}

// SetPayPeriod moves the simulation to another pay month, which may select a
// different RateSet. A zero field keeps the base value.
type SetPayPeriod struct {
	Month int
	Year  int
}

func (t *SetPayPeriod) Name() string { return "set_period" }

func (t *SetPayPeriod) Description() string {
	switch {
	case t.Month == 0:
		return fmt.Sprintf("Simulate pay year %d", t.Year)
	case t.Year == 0:
		return fmt.Sprintf("Simulate pay month %d", t.Month)
	}
	return fmt.Sprintf("Simulate pay period %04d-%02d", t.Year, t.Month)
}

func (t *SetPayPeriod) Validate(domain.SimulationInput) error {
	if t.Month == 0 && t.Year == 0 {
		return NewTransformError(t.Name(), "validate", "month or year is required", nil)
	}
	if t.Month < 0 || t.Month > 12 {
		return NewTransformError(t.Name(), "validate", fmt.Sprintf("month must be between 1 and 12, got %d", t.Month), nil)
	}
	if t.Year < 0 {
		return NewTransformError(t.Name(), "validate", fmt.Sprintf("year cannot be negative, got %d", t.Year), nil)
	}
	return nil
}

func (t *SetPayPeriod) Apply(base domain.SimulationInput) (domain.SimulationInput, error) {
	out := base
	if t.Month != 0 {
		out.PayMonth = t.Month
	}
	if t.Year != 0 {
		out.PayYear = t.Year
	}
	return out, nil
}

// SetCompany simulates the same employee under another company's rates.
type SetCompany struct {
	CompanyID string
}

func (t *SetCompany) Name() string { return "set_company" }

func (t *SetCompany) Description() string {
	if t.CompanyID == "" {
		return "Use the national default rates"
	}
	return fmt.Sprintf("Use the rates of company %s", t.CompanyID)
}

func (t *SetCompany) Validate(domain.SimulationInput) error {
	if strings.TrimSpace(t.CompanyID) != t.CompanyID {
		return NewTransformError(t.Name(), "validate", "company id has surrounding whitespace", nil)
	}
	return nil
}

func (t *SetCompany) Apply(base domain.SimulationInput) (domain.SimulationInput, error) {
	out := base
	out.CompanyID = t.CompanyID
	return out, nil
}
