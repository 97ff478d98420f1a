package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// EmployeeID is an opaque employee reference. The engine never validates it, but it
// accepts both JSON numbers and strings since upstream stores use integer keys.
type EmployeeID string

// UnmarshalJSON accepts `42`, `"42"` and `null`.
func (id *EmployeeID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = EmployeeID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = EmployeeID(n.String())
	return nil
}

// SimulationInput is the per-employee simulation request
type SimulationInput struct {
	EmployeeID    EmployeeID `yaml:"employee_id" json:"employee_id"`
	GrossSalary   Amount     `yaml:"gross_salary" json:"gross_salary"`
	OvertimeHours Amount     `yaml:"overtime_hours" json:"overtime_hours"`
	OvertimeRate  Amount     `yaml:"overtime_rate" json:"overtime_rate"` // zero means the RateSet default
	Bonuses       Amount     `yaml:"bonuses" json:"bonuses"`
	Allowances    Amount     `yaml:"allowances" json:"allowances"`
	Deductions    Amount     `yaml:"deductions" json:"deductions"`

	// Rate selection context; ignored by the engine itself
	CompanyID string `yaml:"company_id,omitempty" json:"company_id,omitempty"`
	PayMonth  int    `yaml:"pay_month,omitempty" json:"pay_month,omitempty"`
	PayYear   int    `yaml:"pay_year,omitempty" json:"pay_year,omitempty"`
}

// RateKey derives the rate lookup key for this input. The first day of the pay
// month is used as the effective date; when the pay period is not given, the month
// containing fallback is used.
func (in SimulationInput) RateKey(fallback time.Time) RateKey {
	year, month := fallback.Year(), fallback.Month()
	if in.PayYear > 0 {
		year = in.PayYear
	}
	if in.PayMonth >= 1 && in.PayMonth <= 12 {
		month = time.Month(in.PayMonth)
	}
	return RateKey{
		CompanyID:     in.CompanyID,
		EffectiveDate: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC),
	}
}

// EmployeeContributions are the employee-side withholdings
type EmployeeContributions struct {
	CNSS            Amount `json:"cnss"`
	AMO             Amount `json:"amo"`
	CIMR            Amount `json:"cimr"`
	IncomeTax       Amount `json:"income_tax"`
	ProfessionalTax Amount `json:"professional_tax"`
	Other           Amount `json:"other"`
	Total           Amount `json:"total"`
}

// EmployerContributions are the employer-side charges
type EmployerContributions struct {
	CNSS  Amount `json:"cnss"`
	AMO   Amount `json:"amo"`
	CIMR  Amount `json:"cimr"`
	Total Amount `json:"total"`
}

// SimulationResult is the fully derived breakdown for one employee-month
type SimulationResult struct {
	Inputs                SimulationInput       `json:"inputs"`
	OvertimeAmount        Amount                `json:"overtime_amount"`
	GrossWithOvertime     Amount                `json:"gross_with_overtime"`
	ProfessionalExpenses  Amount                `json:"professional_expenses"`
	TaxableIncome         Amount                `json:"taxable_income"`
	EmployeeContributions EmployeeContributions `json:"employee_contributions"`
	EmployerContributions EmployerContributions `json:"employer_contributions"`
	NetSalary             Amount                `json:"net_salary"`
	TotalCost             Amount                `json:"total_cost"`
	Rates                 RateSet               `json:"rates"`
}
