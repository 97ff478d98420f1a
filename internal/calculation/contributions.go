package calculation

import (
	"github.com/rgehrsitz/paygo/internal/domain"
	"github.com/shopspring/decimal"
)

// ContributionShares is one social scheme split between employee and employer
type ContributionShares struct {
	Employee decimal.Decimal
	Employer decimal.Decimal
}

// SocialContributionCalculator computes CNSS, AMO and CIMR shares
type SocialContributionCalculator struct {
	CNSSEmployeeRate decimal.Decimal
	CNSSEmployerRate decimal.Decimal
	CNSSCeiling      decimal.Decimal
	AMOEmployeeRate  decimal.Decimal
	AMOEmployerRate  decimal.Decimal
	CIMREmployeeRate decimal.Decimal // zero when the scheme does not apply
	CIMREmployerRate decimal.Decimal
}

// NewSocialContributionCalculator creates a calculator from a RateSet
func NewSocialContributionCalculator(rs *domain.RateSet) *SocialContributionCalculator {
	calc := &SocialContributionCalculator{
		CNSSEmployeeRate: rs.CNSSEmployeePct.Decimal,
		CNSSEmployerRate: rs.CNSSEmployerPct.Decimal,
		CNSSCeiling:      rs.CNSSCeiling.Decimal,
		AMOEmployeeRate:  rs.AMOEmployeePct.Decimal,
		AMOEmployerRate:  rs.AMOEmployerPct.Decimal,
	}
	if rs.CIMREmployeePct != nil {
		calc.CIMREmployeeRate = rs.CIMREmployeePct.Decimal
	}
	if rs.CIMREmployerPct != nil {
		calc.CIMREmployerRate = rs.CIMREmployerPct.Decimal
	}
	return calc
}

// CalculateCNSS applies the CNSS rates to gross capped at the ceiling
func (sc *SocialContributionCalculator) CalculateCNSS(gross decimal.Decimal) ContributionShares {
	base := decimal.Min(gross, sc.CNSSCeiling)
	return ContributionShares{
		Employee: percentOf(base, sc.CNSSEmployeeRate),
		Employer: percentOf(base, sc.CNSSEmployerRate),
	}
}

// CalculateAMO applies the uncapped health insurance rates
func (sc *SocialContributionCalculator) CalculateAMO(gross decimal.Decimal) ContributionShares {
	return ContributionShares{
		Employee: percentOf(gross, sc.AMOEmployeeRate),
		Employer: percentOf(gross, sc.AMOEmployerRate),
	}
}

// CalculateCIMR applies the supplementary retirement rates, zero when not configured
func (sc *SocialContributionCalculator) CalculateCIMR(gross decimal.Decimal) ContributionShares {
	return ContributionShares{
		Employee: percentOf(gross, sc.CIMREmployeeRate),
		Employer: percentOf(gross, sc.CIMREmployerRate),
	}
}
