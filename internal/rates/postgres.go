package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/paygo/internal/domain"
)

// pgQuerier is the subset of *pgxpool.Pool the store needs
type pgQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore resolves RateSets from the payroll.rate_sets table. It never writes;
// rate maintenance belongs to the admin service.
//
// Numeric columns are read as text so no precision is lost on the way to decimal.
// Brackets live in a JSONB array of {upper_bound, rate, cumulative_deduction}.
type PostgresStore struct {
	pool pgQuerier
}

// NewPostgresStore wraps an existing pool
func NewPostgresStore(pool pgQuerier) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// OpenPostgresStore connects a pgx pool with the given DSN
func OpenPostgresStore(ctx context.Context, dsn string) (*PostgresStore, func(), error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to reach postgres: %w", err)
	}
	return NewPostgresStore(pool), pool.Close, nil
}

const selectRateSetSQL = `
SELECT id, company_id, effective_from,
       cnss_employee_pct::text, cnss_employer_pct::text, cnss_ceiling::text,
       amo_employee_pct::text, amo_employer_pct::text,
       cimr_employee_pct::text, cimr_employer_pct::text,
       professional_tax_pct::text,
       income_tax_brackets::text, annual_income_tax,
       professional_expenses::text, deductions_pre_tax,
       standard_monthly_hours::text, default_overtime_rate::text
FROM payroll.rate_sets
WHERE (company_id = $1 OR company_id = '')
  AND effective_from <= $2::date
ORDER BY (company_id = $1) DESC, effective_from DESC
LIMIT 1
`

// Resolve returns the latest set in force for the key's company, falling back to
// the company-independent rows.
func (s *PostgresStore) Resolve(ctx context.Context, key Key) (*domain.RateSet, error) {
	var (
		rs                            domain.RateSet
		effectiveFrom                 time.Time
		cnssEE, cnssER, cnssCeiling   string
		amoEE, amoER                  string
		cimrEE, cimrER                *string
		profTax, brackets             string
		expenses, hours, overtimeRate *string
	)
	err := s.pool.QueryRow(ctx, selectRateSetSQL, key.CompanyID, key.EffectiveDate.Format("2006-01-02")).Scan(
		&rs.ID, &rs.CompanyID, &effectiveFrom,
		&cnssEE, &cnssER, &cnssCeiling,
		&amoEE, &amoER,
		&cimrEE, &cimrER,
		&profTax,
		&brackets, &rs.AnnualIncomeTax,
		&expenses, &rs.DeductionsPreTax,
		&hours, &overtimeRate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query rate set: %w", err)
	}
	rs.EffectiveFrom = effectiveFrom.UTC()

	fields := []struct {
		name string
		raw  string
		dst  *domain.Amount
	}{
		{"cnss_employee_pct", cnssEE, &rs.CNSSEmployeePct},
		{"cnss_employer_pct", cnssER, &rs.CNSSEmployerPct},
		{"cnss_ceiling", cnssCeiling, &rs.CNSSCeiling},
		{"amo_employee_pct", amoEE, &rs.AMOEmployeePct},
		{"amo_employer_pct", amoER, &rs.AMOEmployerPct},
		{"professional_tax_pct", profTax, &rs.ProfessionalTaxPct},
	}
	for _, f := range fields {
		if err := parseAmount(f.raw, f.dst); err != nil {
			return nil, &domain.ConfigurationError{RateSetID: rs.ID, Reason: fmt.Sprintf("%s: %v", f.name, err)}
		}
	}

	optional := []struct {
		name string
		raw  *string
		dst  **domain.Amount
	}{
		{"cimr_employee_pct", cimrEE, &rs.CIMREmployeePct},
		{"cimr_employer_pct", cimrER, &rs.CIMREmployerPct},
	}
	for _, f := range optional {
		if f.raw == nil {
			continue
		}
		var a domain.Amount
		if err := parseAmount(*f.raw, &a); err != nil {
			return nil, &domain.ConfigurationError{RateSetID: rs.ID, Reason: fmt.Sprintf("%s: %v", f.name, err)}
		}
		*f.dst = &a
	}
	if hours != nil {
		if err := parseAmount(*hours, &rs.StandardMonthlyHours); err != nil {
			return nil, &domain.ConfigurationError{RateSetID: rs.ID, Reason: "standard_monthly_hours: " + err.Error()}
		}
	}
	if overtimeRate != nil {
		if err := parseAmount(*overtimeRate, &rs.DefaultOvertimeRate); err != nil {
			return nil, &domain.ConfigurationError{RateSetID: rs.ID, Reason: "default_overtime_rate: " + err.Error()}
		}
	}

	if err := json.Unmarshal([]byte(brackets), &rs.IncomeTaxBrackets); err != nil {
		return nil, &domain.ConfigurationError{RateSetID: rs.ID, Reason: "income_tax_brackets: " + err.Error()}
	}
	if expenses != nil {
		var rule domain.ProfessionalExpenseRule
		if err := json.Unmarshal([]byte(*expenses), &rule); err != nil {
			return nil, &domain.ConfigurationError{RateSetID: rs.ID, Reason: "professional_expenses: " + err.Error()}
		}
		rs.ProfessionalExpenses = &rule
	}

	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

func parseAmount(raw string, dst *domain.Amount) error {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return err
	}
	*dst = domain.NewAmount(d)
	return nil
}
