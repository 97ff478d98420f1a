package calculation

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rgehrsitz/paygo/internal/domain"
)

// RateResolver looks up the RateSet applicable to a company and date
type RateResolver interface {
	Resolve(ctx context.Context, key domain.RateKey) (*domain.RateSet, error)
}

// Engine orchestrates payroll simulations. It holds no per-call state and is safe
// for concurrent use once configured.
type Engine struct {
	Logger      Logger
	Clock       func() time.Time
	Concurrency int // batch worker limit; <= 0 means GOMAXPROCS
}

// NewEngine creates a simulation engine with a no-op logger and the system clock
func NewEngine() *Engine {
	return &Engine{
		Logger: NopLogger{},
		Clock:  time.Now,
	}
}

// SetLogger sets the logger for the engine; nil restores the no-op logger
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// Now reads the engine clock
func (e *Engine) Now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock()
}

func (e *Engine) workers() int {
	if e.Concurrency > 0 {
		return e.Concurrency
	}
	return runtime.GOMAXPROCS(0)
}

// Simulate computes the full payroll breakdown for one employee-month. It is pure:
// identical inputs and RateSet always give an identical result.
func (e *Engine) Simulate(input domain.SimulationInput, rs *domain.RateSet) (*domain.SimulationResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if rs == nil {
		return nil, &domain.RateNotFoundError{CompanyID: input.CompanyID}
	}
	if err := rs.Validate(); err != nil {
		e.Logger.Errorf("rate set %q rejected: %v", rs.ID, err)
		return nil, err
	}

	social := NewSocialContributionCalculator(rs)
	overtime := NewOvertimeCalculatorWithConfig(rs)
	incomeTax := NewIncomeTaxCalculator(rs)
	expenses := NewProfessionalExpenseCalculator(rs)
	profTax := NewProfessionalTaxCalculator(rs)

	// Sub-cent inputs are rounded before anything is derived from them
	base := roundCents(input.GrossSalary.Decimal)
	multiplier := input.OvertimeRate.Decimal
	if multiplier.IsZero() {
		multiplier = overtime.DefaultMultiplier
	}
	overtimeAmount := overtime.CalculateOvertime(base, input.OvertimeHours.Decimal, multiplier)
	gross := base.
		Add(overtimeAmount).
		Add(roundCents(input.Bonuses.Decimal)).
		Add(roundCents(input.Allowances.Decimal))

	cnss := social.CalculateCNSS(gross)
	amo := social.CalculateAMO(gross)
	cimr := social.CalculateCIMR(gross)

	allowance := expenses.CalculateAllowance(gross)
	taxable := gross.Sub(cnss.Employee).Sub(amo.Employee).Sub(cimr.Employee).Sub(allowance)
	if rs.DeductionsPreTax {
		taxable = taxable.Sub(roundCents(input.Deductions.Decimal))
	}
	taxable = maxZero(taxable)

	ir := incomeTax.CalculateMonthlyTax(taxable)
	pt := profTax.CalculateProfessionalTax(gross)

	employee := domain.EmployeeContributions{
		CNSS:            domain.NewAmount(cnss.Employee),
		AMO:             domain.NewAmount(amo.Employee),
		CIMR:            domain.NewAmount(cimr.Employee),
		IncomeTax:       domain.NewAmount(ir),
		ProfessionalTax: domain.NewAmount(pt),
		Other:           domain.NewAmount(roundCents(input.Deductions.Decimal)),
	}
	employee.Total = domain.NewAmount(cnss.Employee.
		Add(amo.Employee).
		Add(cimr.Employee).
		Add(ir).
		Add(pt).
		Add(employee.Other.Decimal))

	employer := domain.EmployerContributions{
		CNSS: domain.NewAmount(cnss.Employer),
		AMO:  domain.NewAmount(amo.Employer),
		CIMR: domain.NewAmount(cimr.Employer),
	}
	employer.Total = domain.NewAmount(cnss.Employer.Add(amo.Employer).Add(cimr.Employer))

	echoed := input
	echoed.OvertimeRate = domain.NewAmount(multiplier)

	result := &domain.SimulationResult{
		Inputs:                echoed,
		OvertimeAmount:        domain.NewAmount(overtimeAmount),
		GrossWithOvertime:     domain.NewAmount(gross),
		ProfessionalExpenses:  domain.NewAmount(allowance),
		TaxableIncome:         domain.NewAmount(roundCents(taxable)),
		EmployeeContributions: employee,
		EmployerContributions: employer,
		NetSalary:             domain.NewAmount(gross.Sub(employee.Total.Decimal)),
		TotalCost:             domain.NewAmount(gross.Add(employer.Total.Decimal)),
		Rates:                 *rs,
	}

	e.Logger.Debugf("employee %s: gross %s, net %s, cost %s",
		input.EmployeeID, gross.StringFixed(2), result.NetSalary.StringFixed(2), result.TotalCost.StringFixed(2))
	return result, nil
}

// Preview resolves the RateSet for the input's pay period and simulates it. The
// current month on the engine clock is used when the input has no pay period.
func (e *Engine) Preview(ctx context.Context, input domain.SimulationInput, resolver RateResolver) (*domain.SimulationResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	key := input.RateKey(e.Now())
	rs, err := resolver.Resolve(ctx, key)
	if err != nil {
		if domain.IsConfiguration(err) {
			e.Logger.Errorf("rate resolution for %s failed: %v", describeKey(key), err)
		}
		return nil, fmt.Errorf("resolving rates for %s: %w", describeKey(key), err)
	}
	return e.Simulate(input, rs)
}

func describeKey(key domain.RateKey) string {
	company := key.CompanyID
	if company == "" {
		company = "default"
	}
	return fmt.Sprintf("company %s on %s", company, key.EffectiveDate.Format("2006-01-02"))
}
