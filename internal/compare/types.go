package compare

import (
	"fmt"

	"github.com/rgehrsitz/paygo/internal/domain"
	"github.com/shopspring/decimal"
)

// Scenario is a named simulation input taking part in a comparison
type Scenario struct {
	Name        string
	Description string
	Input       domain.SimulationInput
}

// ComparisonResult represents a single simulated scenario with its key metrics
type ComparisonResult struct {
	ScenarioName string                   `json:"scenario_name"`
	Description  string                   `json:"description,omitempty"`
	Simulation   *domain.SimulationResult `json:"simulation"`

	// Key Metrics
	GrossWithOvertime    domain.Amount `json:"gross_with_overtime"`
	EmployeeWithholdings domain.Amount `json:"employee_withholdings"`
	IncomeTax            domain.Amount `json:"income_tax"`
	NetSalary            domain.Amount `json:"net_salary"`
	TotalCost            domain.Amount `json:"total_cost"`
	NetToCostRatio       domain.Amount `json:"net_to_cost_ratio"` // share of the employer cost paid out as net

	// Comparison to Base
	NetDiffFromBase  domain.Amount `json:"net_diff_from_base"`
	NetPctFromBase   domain.Amount `json:"net_pct_from_base"`
	CostDiffFromBase domain.Amount `json:"cost_diff_from_base"`
	TaxDiffFromBase  domain.Amount `json:"tax_diff_from_base"`
	// MarginalKeepRate is NetDiff/CostDiff: how much of each extra dirham spent by
	// the employer reaches the employee. Zero when the cost did not change.
	MarginalKeepRate domain.Amount `json:"marginal_keep_rate"`
}

// ComparisonSet represents a base scenario and its alternatives
type ComparisonSet struct {
	BaseScenarioName   string             `json:"base_scenario_name"`
	EmployeeID         domain.EmployeeID  `json:"employee_id"`
	BaseResult         *ComparisonResult  `json:"base_result"`
	AlternativeResults []ComparisonResult `json:"alternative_results"`
	Recommendations    []string           `json:"recommendations"`
}

// MetricsCalculator extracts key metrics from simulation results
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics computes the comparison metrics of one simulation
func (mc *MetricsCalculator) CalculateMetrics(name string, sim *domain.SimulationResult) ComparisonResult {
	result := ComparisonResult{
		ScenarioName:         name,
		Simulation:           sim,
		GrossWithOvertime:    sim.GrossWithOvertime,
		EmployeeWithholdings: sim.EmployeeContributions.Total,
		IncomeTax:            sim.EmployeeContributions.IncomeTax,
		NetSalary:            sim.NetSalary,
		TotalCost:            sim.TotalCost,
	}
	if sim.TotalCost.IsPositive() {
		result.NetToCostRatio = domain.NewAmount(sim.NetSalary.Div(sim.TotalCost.Decimal).Round(4))
	}
	return result
}

// CalculateComparison fills the deltas of scenario against base
func (mc *MetricsCalculator) CalculateComparison(scenario, base ComparisonResult) ComparisonResult {
	netDiff := scenario.NetSalary.Sub(base.NetSalary.Decimal)
	costDiff := scenario.TotalCost.Sub(base.TotalCost.Decimal)

	scenario.NetDiffFromBase = domain.NewAmount(netDiff)
	scenario.CostDiffFromBase = domain.NewAmount(costDiff)
	scenario.TaxDiffFromBase = domain.NewAmount(scenario.IncomeTax.Sub(base.IncomeTax.Decimal))

	scenario.NetPctFromBase = domain.Amount{}
	if !base.NetSalary.IsZero() {
		scenario.NetPctFromBase = domain.NewAmount(netDiff.Div(base.NetSalary.Decimal).Mul(decimal.NewFromInt(100)).Round(2))
	}
	scenario.MarginalKeepRate = domain.Amount{}
	if !costDiff.IsZero() {
		scenario.MarginalKeepRate = domain.NewAmount(netDiff.Div(costDiff).Round(4))
	}
	return scenario
}

// GenerateRecommendations creates recommendations based on comparison results
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}

	if compSet.BaseResult == nil || len(compSet.AlternativeResults) == 0 {
		return recommendations
	}
	base := compSet.BaseResult

	bestNet := base
	for i := range compSet.AlternativeResults {
		if alt := &compSet.AlternativeResults[i]; alt.NetSalary.GreaterThan(bestNet.NetSalary.Decimal) {
			bestNet = alt
		}
	}
	if bestNet != base {
		recommendations = append(recommendations, fmt.Sprintf(
			"Best Net Pay: %s pays %s MAD more net salary than the base",
			bestNet.ScenarioName, bestNet.NetDiffFromBase.StringFixed(2)))
	}

	lowestCost := base
	for i := range compSet.AlternativeResults {
		if alt := &compSet.AlternativeResults[i]; alt.TotalCost.LessThan(lowestCost.TotalCost.Decimal) {
			lowestCost = alt
		}
	}
	if lowestCost != base {
		recommendations = append(recommendations, fmt.Sprintf(
			"Lowest Cost: %s costs the employer %s MAD less than the base",
			lowestCost.ScenarioName, lowestCost.CostDiffFromBase.Neg().StringFixed(2)))
	}

	bestRatio := base
	for i := range compSet.AlternativeResults {
		if alt := &compSet.AlternativeResults[i]; alt.NetToCostRatio.GreaterThan(bestRatio.NetToCostRatio.Decimal) {
			bestRatio = alt
		}
	}
	if bestRatio != base {
		recommendations = append(recommendations, fmt.Sprintf(
			"Most Efficient: %s turns %s%% of the employer cost into net salary",
			bestRatio.ScenarioName, bestRatio.NetToCostRatio.Shift(2).StringFixed(1)))
	}

	return recommendations
}
