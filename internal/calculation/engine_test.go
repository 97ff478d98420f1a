package calculation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rgehrsitz/paygo/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRates mirrors the 2025 statutory set with annual brackets
func testRates() *domain.RateSet {
	return &domain.RateSet{
		ID:                 "test-2025",
		EffectiveFrom:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		CNSSEmployeePct:    domain.AmountFromFloat(0.0448),
		CNSSEmployerPct:    domain.AmountFromFloat(0.0898),
		CNSSCeiling:        domain.AmountFromInt(6000),
		AMOEmployeePct:     domain.AmountFromFloat(0.0226),
		AMOEmployerPct:     domain.AmountFromFloat(0.0411),
		ProfessionalTaxPct: domain.AmountFromInt(0),
		AnnualIncomeTax:    true,
		IncomeTaxBrackets: []domain.TaxBracket{
			{UpperBound: domain.AmountPtr(40000), Rate: domain.AmountFromInt(0)},
			{UpperBound: domain.AmountPtr(60000), Rate: domain.AmountFromFloat(0.10), CumulativeDeduction: domain.AmountFromInt(4000)},
			{UpperBound: domain.AmountPtr(80000), Rate: domain.AmountFromFloat(0.20), CumulativeDeduction: domain.AmountFromInt(10000)},
			{UpperBound: domain.AmountPtr(100000), Rate: domain.AmountFromFloat(0.30), CumulativeDeduction: domain.AmountFromInt(18000)},
			{UpperBound: domain.AmountPtr(180000), Rate: domain.AmountFromFloat(0.34), CumulativeDeduction: domain.AmountFromInt(22000)},
			{Rate: domain.AmountFromFloat(0.37), CumulativeDeduction: domain.AmountFromInt(27400)},
		},
	}
}

func input(id string, gross float64) domain.SimulationInput {
	return domain.SimulationInput{EmployeeID: domain.EmployeeID(id), GrossSalary: domain.AmountFromFloat(gross)}
}

func assertAmount(t *testing.T, expected string, actual domain.Amount, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, expected, actual.StringFixed(2), msgAndArgs...)
}

func TestNewEngine(t *testing.T) {
	engine := NewEngine()

	assert.NotNil(t, engine, "Should create engine")
	assert.NotNil(t, engine.Logger, "Should initialize logger")
	assert.NotNil(t, engine.Clock, "Should initialize clock")
}

func TestEngine_SetLogger(t *testing.T) {
	engine := NewEngine()

	customLogger := &TestLogger{}
	engine.SetLogger(customLogger)
	assert.Equal(t, customLogger, engine.Logger, "Should set custom logger")

	engine.SetLogger(nil)
	assert.NotNil(t, engine.Logger, "Should not be nil")
	assert.IsType(t, NopLogger{}, engine.Logger, "Should be no-op logger")
}

func TestEngine_Simulate_ReferenceScenario(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Simulate(input("E1", 10000), testRates())
	require.NoError(t, err)

	assertAmount(t, "0.00", result.OvertimeAmount)
	assertAmount(t, "10000.00", result.GrossWithOvertime)
	assertAmount(t, "268.80", result.EmployeeContributions.CNSS, "CNSS is capped at 6000")
	assertAmount(t, "226.00", result.EmployeeContributions.AMO, "AMO is uncapped")
	assertAmount(t, "0.00", result.EmployeeContributions.CIMR)
	assertAmount(t, "538.80", result.EmployerContributions.CNSS)
	assertAmount(t, "411.00", result.EmployerContributions.AMO)

	// 9505.20 monthly, 114062.40 annual, 34% bracket
	assertAmount(t, "9505.20", result.TaxableIncome)
	assertAmount(t, "1398.44", result.EmployeeContributions.IncomeTax)
	assertAmount(t, "1893.24", result.EmployeeContributions.Total)
	assertAmount(t, "8106.76", result.NetSalary)
	assertAmount(t, "949.80", result.EmployerContributions.Total)
	assertAmount(t, "10949.80", result.TotalCost)
	assert.Equal(t, "test-2025", result.Rates.ID)
}

func TestEngine_Simulate_VariableElements(t *testing.T) {
	engine := NewEngine()
	in := input("E2", 10000)
	in.OvertimeHours = domain.AmountFromInt(10)
	in.Bonuses = domain.AmountFromInt(500)
	in.Allowances = domain.AmountFromInt(300)
	in.Deductions = domain.AmountFromInt(200)

	result, err := engine.Simulate(in, testRates())
	require.NoError(t, err)

	// 10000 * 10 * 1.5 / 191
	assertAmount(t, "785.34", result.OvertimeAmount)
	assertAmount(t, "11585.34", result.GrossWithOvertime)
	assertAmount(t, "200.00", result.EmployeeContributions.Other)
	assertAmount(t, "268.80", result.EmployeeContributions.CNSS)
	assertAmount(t, "261.83", result.EmployeeContributions.AMO)
}

func TestEngine_Simulate_SubCentInputs(t *testing.T) {
	engine := NewEngine()
	in := input("E9", 0)
	in.GrossSalary = domain.NewAmount(decimal.RequireFromString("10000.005"))
	in.Bonuses = domain.NewAmount(decimal.RequireFromString("0.333"))
	in.Allowances = domain.NewAmount(decimal.RequireFromString("0.004"))

	result, err := engine.Simulate(in, testRates())
	require.NoError(t, err)

	assert.Equal(t, "10000.34", result.GrossWithOvertime.String())
	for name, amt := range map[string]domain.Amount{
		"gross_with_overtime": result.GrossWithOvertime,
		"taxable_income":      result.TaxableIncome,
		"employee_total":      result.EmployeeContributions.Total,
		"employer_total":      result.EmployerContributions.Total,
		"net_salary":          result.NetSalary,
		"total_cost":          result.TotalCost,
	} {
		assert.True(t, amt.Equal(amt.Round(2)), "%s has sub-cent digits: %s", name, amt.String())
	}
	assert.True(t, result.NetSalary.Add(result.EmployeeContributions.Total.Decimal).Equal(result.GrossWithOvertime.Decimal))
	assert.True(t, result.TotalCost.Sub(result.EmployerContributions.Total.Decimal).Equal(result.GrossWithOvertime.Decimal))
}

func TestEngine_Simulate_EchoesAppliedOvertimeRate(t *testing.T) {
	engine := NewEngine()

	t.Run("omitted rate echoes the default", func(t *testing.T) {
		in := input("E10", 10000)
		in.OvertimeHours = domain.AmountFromInt(10)
		result, err := engine.Simulate(in, testRates())
		require.NoError(t, err)
		assert.Equal(t, "1.5", result.Inputs.OvertimeRate.String())
		assertAmount(t, "785.34", result.OvertimeAmount)
	})

	t.Run("rate set default", func(t *testing.T) {
		rs := testRates()
		rs.DefaultOvertimeRate = domain.AmountFromFloat(1.25)
		result, err := engine.Simulate(input("E11", 10000), rs)
		require.NoError(t, err)
		assert.Equal(t, "1.25", result.Inputs.OvertimeRate.String())
	})

	t.Run("explicit rate is kept", func(t *testing.T) {
		in := input("E12", 10000)
		in.OvertimeRate = domain.AmountFromInt(2)
		result, err := engine.Simulate(in, testRates())
		require.NoError(t, err)
		assert.Equal(t, "2", result.Inputs.OvertimeRate.String())
		assert.Equal(t, "2", in.OvertimeRate.String(), "caller input is untouched")
	})
}

func TestEngine_Simulate_CIMRAndProfessionalTax(t *testing.T) {
	engine := NewEngine()
	rs := testRates()
	rs.CIMREmployeePct = domain.AmountPtr(0.03)
	rs.CIMREmployerPct = domain.AmountPtr(0.039)
	rs.ProfessionalTaxPct = domain.AmountFromFloat(0.01)

	result, err := engine.Simulate(input("E3", 8000), rs)
	require.NoError(t, err)

	assertAmount(t, "240.00", result.EmployeeContributions.CIMR)
	assertAmount(t, "312.00", result.EmployerContributions.CIMR)
	assertAmount(t, "80.00", result.EmployeeContributions.ProfessionalTax)
	// 8000 - 268.80 - 180.80 - 240
	assertAmount(t, "7310.40", result.TaxableIncome)
}

func TestEngine_Simulate_ProfessionalExpenses(t *testing.T) {
	engine := NewEngine()
	rs := testRates()
	rs.ProfessionalExpenses = &domain.ProfessionalExpenseRule{
		Rate:       domain.AmountFromFloat(0.25),
		MonthlyCap: domain.AmountFromFloat(2916.67),
	}

	low, err := engine.Simulate(input("E4", 4000), rs)
	require.NoError(t, err)
	assertAmount(t, "1000.00", low.ProfessionalExpenses)

	high, err := engine.Simulate(input("E5", 20000), rs)
	require.NoError(t, err)
	assertAmount(t, "2916.67", high.ProfessionalExpenses, "allowance is capped")
}

func TestEngine_Simulate_DeductionPlacement(t *testing.T) {
	engine := NewEngine()
	in := input("E6", 10000)
	in.Deductions = domain.AmountFromInt(1000)

	post, err := engine.Simulate(in, testRates())
	require.NoError(t, err)

	rs := testRates()
	rs.DeductionsPreTax = true
	pre, err := engine.Simulate(in, rs)
	require.NoError(t, err)

	assertAmount(t, "9505.20", post.TaxableIncome)
	assertAmount(t, "8505.20", pre.TaxableIncome)
	assert.True(t, pre.EmployeeContributions.IncomeTax.LessThan(post.EmployeeContributions.IncomeTax.Decimal))
	assert.True(t, pre.NetSalary.GreaterThan(post.NetSalary.Decimal))
}

func TestEngine_Simulate_Identities(t *testing.T) {
	engine := NewEngine()
	rs := testRates()
	rs.CIMREmployeePct = domain.AmountPtr(0.06)
	rs.CIMREmployerPct = domain.AmountPtr(0.078)

	for _, gross := range []float64{1500, 3333.33, 6000, 7777.77, 12500, 25000.55, 90000} {
		t.Run(fmt.Sprintf("gross_%.2f", gross), func(t *testing.T) {
			in := input("E", gross)
			in.OvertimeHours = domain.AmountFromFloat(7.5)
			in.OvertimeRate = domain.AmountFromFloat(1.25)
			in.Bonuses = domain.AmountFromFloat(123.45)
			in.Deductions = domain.AmountFromFloat(50)

			result, err := engine.Simulate(in, rs)
			require.NoError(t, err)

			emp := result.EmployeeContributions
			sum := emp.CNSS.Add(emp.AMO.Decimal).Add(emp.CIMR.Decimal).Add(emp.IncomeTax.Decimal).
				Add(emp.ProfessionalTax.Decimal).Add(emp.Other.Decimal)
			assert.True(t, sum.Equal(emp.Total.Decimal), "employee total is the sum of its parts")

			assert.True(t, result.NetSalary.Equal(result.GrossWithOvertime.Sub(emp.Total.Decimal)),
				"net = gross_with_overtime - employee total")
			assert.True(t, result.TotalCost.Equal(result.GrossWithOvertime.Add(result.EmployerContributions.Total.Decimal)),
				"total_cost = gross_with_overtime + employer total")

			ceiling := rs.CNSSCeiling.Decimal
			assert.True(t, emp.CNSS.LessThanOrEqual(ceiling.Mul(rs.CNSSEmployeePct.Decimal).Round(2)))
			assert.True(t, result.EmployerContributions.CNSS.LessThanOrEqual(ceiling.Mul(rs.CNSSEmployerPct.Decimal).Round(2)))
		})
	}
}

func TestEngine_Simulate_Monotonic(t *testing.T) {
	engine := NewEngine()
	rs := testRates()

	prevTax := decimal.NewFromInt(-1)
	prevNet := decimal.NewFromInt(-1)
	for gross := 1000; gross <= 60000; gross += 250 {
		result, err := engine.Simulate(input("M", float64(gross)), rs)
		require.NoError(t, err)

		tax := result.EmployeeContributions.IncomeTax.Decimal
		net := result.NetSalary.Decimal
		assert.True(t, tax.GreaterThanOrEqual(prevTax), "income tax dropped at gross %d", gross)
		assert.True(t, net.GreaterThanOrEqual(prevNet), "net salary dropped at gross %d", gross)
		prevTax, prevNet = tax, net
	}
}

func TestEngine_Simulate_Idempotent(t *testing.T) {
	engine := NewEngine()
	in := input("42", 15432.10)
	in.OvertimeHours = domain.AmountFromInt(3)

	first, err := engine.Simulate(in, testRates())
	require.NoError(t, err)
	second, err := engine.Simulate(in, testRates())
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.Contains(t, string(a), `"net_salary":`)
	assert.NotContains(t, string(a), `"net_salary":"`, "amounts are JSON numbers")
}

func TestEngine_Simulate_Errors(t *testing.T) {
	broken := testRates()
	broken.IncomeTaxBrackets[2].UpperBound = domain.AmountPtr(50000)

	tests := []struct {
		name   string
		input  domain.SimulationInput
		rates  *domain.RateSet
		check  func(error) bool
		errMsg string
	}{
		{"zero gross", input("A", 0), testRates(), domain.IsInvalidInput, "gross_salary"},
		{"negative gross", input("B", -100), testRates(), domain.IsInvalidInput, "gross_salary"},
		{"negative hours", func() domain.SimulationInput {
			in := input("C", 5000)
			in.OvertimeHours = domain.AmountFromInt(-1)
			return in
		}(), testRates(), domain.IsInvalidInput, "overtime_hours"},
		{"overtime rate below one", func() domain.SimulationInput {
			in := input("D", 5000)
			in.OvertimeRate = domain.AmountFromFloat(0.5)
			return in
		}(), testRates(), domain.IsInvalidInput, "overtime_rate"},
		{"negative bonus", func() domain.SimulationInput {
			in := input("E", 5000)
			in.Bonuses = domain.AmountFromInt(-5)
			return in
		}(), testRates(), domain.IsInvalidInput, "bonuses"},
		{"missing rates", input("F", 5000), nil, domain.IsRateNotFound, "no contribution rates"},
		{"unsorted brackets", input("G", 5000), broken, domain.IsConfiguration, "strictly ascending"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewEngine().Simulate(tt.input, tt.rates)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, tt.check(err), "unexpected error type: %v", err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestEngine_Simulate_ConfigurationErrorIsLogged(t *testing.T) {
	engine := NewEngine()
	logger := &TestLogger{}
	engine.SetLogger(logger)

	rs := testRates()
	rs.AMOEmployeePct = domain.AmountFromFloat(1.5)

	_, err := engine.Simulate(input("X", 5000), rs)
	require.Error(t, err)
	assert.True(t, domain.IsConfiguration(err))
	assert.True(t, logger.has("ERROR"), "configuration errors are logged at error level")
}

func TestEngine_Preview(t *testing.T) {
	engine := NewEngine()
	engine.Clock = func() time.Time { return time.Date(2025, 6, 17, 10, 0, 0, 0, time.UTC) }

	var seen []domain.RateKey
	resolver := resolverFunc(func(_ context.Context, key domain.RateKey) (*domain.RateSet, error) {
		seen = append(seen, key)
		return testRates(), nil
	})

	t.Run("uses the engine clock", func(t *testing.T) {
		result, err := engine.Preview(context.Background(), input("P1", 10000), resolver)
		require.NoError(t, err)
		assertAmount(t, "8106.76", result.NetSalary)
		assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), seen[len(seen)-1].EffectiveDate)
	})

	t.Run("uses the pay period", func(t *testing.T) {
		in := input("P2", 10000)
		in.CompanyID = "acme"
		in.PayMonth = 2
		in.PayYear = 2026
		_, err := engine.Preview(context.Background(), in, resolver)
		require.NoError(t, err)
		assert.Equal(t, domain.RateKey{CompanyID: "acme", EffectiveDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}, seen[len(seen)-1])
	})

	t.Run("propagates resolver errors", func(t *testing.T) {
		missing := resolverFunc(func(_ context.Context, key domain.RateKey) (*domain.RateSet, error) {
			return nil, &domain.RateNotFoundError{CompanyID: key.CompanyID, EffectiveDate: key.EffectiveDate}
		})
		_, err := engine.Preview(context.Background(), input("P3", 10000), missing)
		require.Error(t, err)
		assert.True(t, domain.IsRateNotFound(err))
	})

	t.Run("rejects invalid input before resolving", func(t *testing.T) {
		calls := len(seen)
		_, err := engine.Preview(context.Background(), input("P4", -1), resolver)
		require.Error(t, err)
		assert.True(t, domain.IsInvalidInput(err))
		assert.Equal(t, calls, len(seen))
	})
}

type resolverFunc func(ctx context.Context, key domain.RateKey) (*domain.RateSet, error)

func (f resolverFunc) Resolve(ctx context.Context, key domain.RateKey) (*domain.RateSet, error) {
	return f(ctx, key)
}

// TestLogger is a simple logger for testing
type TestLogger struct {
	mu       sync.Mutex
	messages []string
}

func (tl *TestLogger) add(level, format string, args ...interface{}) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.messages = append(tl.messages, level+": "+fmt.Sprintf(format, args...))
}

func (tl *TestLogger) has(prefix string) bool {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	for _, m := range tl.messages {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}

func (tl *TestLogger) Debugf(format string, args ...interface{}) { tl.add("DEBUG", format, args...) }
func (tl *TestLogger) Infof(format string, args ...interface{})  { tl.add("INFO", format, args...) }
func (tl *TestLogger) Warnf(format string, args ...interface{})  { tl.add("WARN", format, args...) }
func (tl *TestLogger) Errorf(format string, args ...interface{}) { tl.add("ERROR", format, args...) }
