package compare

import (
	"encoding/csv"
	"strings"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Scenario",
		"Type",
		"Description",
		"Gross With Overtime",
		"Employee Withholdings",
		"Income Tax",
		"Net Salary",
		"Total Cost",
		"Net To Cost Ratio",
		"Net Diff from Base",
		"Net % Change",
		"Cost Diff from Base",
		"Tax Diff from Base",
		"Marginal Keep Rate",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	if compSet.BaseResult != nil {
		if err := writer.Write(cf.formatRow(compSet.BaseResult, "base")); err != nil {
			return "", err
		}
	}

	for i := range compSet.AlternativeResults {
		if err := writer.Write(cf.formatRow(&compSet.AlternativeResults[i], "alternative")); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// formatRow formats a comparison result as a CSV row
func (cf *CSVFormatter) formatRow(result *ComparisonResult, scenarioType string) []string {
	return []string{
		result.ScenarioName,
		scenarioType,
		result.Description,
		result.GrossWithOvertime.StringFixed(2),
		result.EmployeeWithholdings.StringFixed(2),
		result.IncomeTax.StringFixed(2),
		result.NetSalary.StringFixed(2),
		result.TotalCost.StringFixed(2),
		result.NetToCostRatio.StringFixed(4),
		result.NetDiffFromBase.StringFixed(2),
		result.NetPctFromBase.StringFixed(2),
		result.CostDiffFromBase.StringFixed(2),
		result.TaxDiffFromBase.StringFixed(2),
		result.MarginalKeepRate.StringFixed(4),
	}
}
