package rates

import (
	"time"

	"github.com/rgehrsitz/paygo/internal/domain"
)

// Morocco2025 returns the company-independent statutory rates in force from
// 1 January 2025. Income tax brackets are annual amounts in MAD.
//
//	0 - 40 000       0%
//	40 001 - 60 000  10%   (deduction 4 000)
//	60 001 - 80 000  20%   (deduction 10 000)
//	80 001 - 100 000 30%   (deduction 18 000)
//	100 001 - 180 000 34%  (deduction 22 000)
//	above 180 000    37%   (deduction 27 400)
func Morocco2025() domain.RateSet {
	return domain.RateSet{
		ID:                 "ma-2025",
		Description:        "Morocco statutory rates, finance law 2025",
		EffectiveFrom:      time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		CNSSEmployeePct:    domain.AmountFromFloat(0.0448),
		CNSSEmployerPct:    domain.AmountFromFloat(0.0898),
		CNSSCeiling:        domain.AmountFromInt(6000),
		AMOEmployeePct:     domain.AmountFromFloat(0.0226),
		AMOEmployerPct:     domain.AmountFromFloat(0.0411),
		ProfessionalTaxPct: domain.AmountFromInt(0),
		AnnualIncomeTax:    true,
		IncomeTaxBrackets: []domain.TaxBracket{
			{UpperBound: domain.AmountPtr(40000), Rate: domain.AmountFromInt(0), CumulativeDeduction: domain.AmountFromInt(0)},
			{UpperBound: domain.AmountPtr(60000), Rate: domain.AmountFromFloat(0.10), CumulativeDeduction: domain.AmountFromInt(4000)},
			{UpperBound: domain.AmountPtr(80000), Rate: domain.AmountFromFloat(0.20), CumulativeDeduction: domain.AmountFromInt(10000)},
			{UpperBound: domain.AmountPtr(100000), Rate: domain.AmountFromFloat(0.30), CumulativeDeduction: domain.AmountFromInt(18000)},
			{UpperBound: domain.AmountPtr(180000), Rate: domain.AmountFromFloat(0.34), CumulativeDeduction: domain.AmountFromInt(22000)},
			{UpperBound: nil, Rate: domain.AmountFromFloat(0.37), CumulativeDeduction: domain.AmountFromInt(27400)},
		},
		StandardMonthlyHours: domain.AmountFromInt(domain.DefaultStandardMonthlyHours),
		DefaultOvertimeRate:  domain.NewAmount(domain.DefaultOvertimeRate),
	}
}

// DefaultTable returns a Table holding only Morocco2025
func DefaultTable() *Table {
	t, err := NewTable(Morocco2025())
	if err != nil {
		panic(err) // static data
	}
	return t
}
