package compare

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/paygo/internal/output"
	"github.com/shopspring/decimal"
)

const tableWidth = 96

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a formatted table comparing scenarios
func (tf *TableFormatter) Format(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString("PAYROLL SCENARIO COMPARISON\n")
	sb.WriteString(strings.Repeat("=", tableWidth) + "\n")
	sb.WriteString(fmt.Sprintf("Employee: %s\n", compSet.EmployeeID))
	sb.WriteString(fmt.Sprintf("Base Scenario: %s\n", compSet.BaseScenarioName))
	if base := compSet.BaseResult; base != nil && base.Simulation != nil {
		sb.WriteString(fmt.Sprintf("Rates: %s\n", base.Simulation.Rates.ID))
	}
	sb.WriteString("\n")

	nameWidth := 28
	numWidth := 16

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, "Scenario",
		numWidth, "Gross",
		numWidth, "Income Tax",
		numWidth, "Net Salary",
		numWidth, "Employer Cost"))
	sb.WriteString(strings.Repeat("-", tableWidth) + "\n")

	if compSet.BaseResult != nil {
		sb.WriteString(tf.formatRow(compSet.BaseResult, nameWidth, numWidth, true))
	}

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString(strings.Repeat("-", tableWidth) + "\n")
		for i := range compSet.AlternativeResults {
			sb.WriteString(tf.formatRow(&compSet.AlternativeResults[i], nameWidth, numWidth, false))
		}
	}

	sb.WriteString(strings.Repeat("=", tableWidth) + "\n")

	// Deltas from base
	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString("\nCOMPARISON TO BASE\n")
		sb.WriteString(strings.Repeat("-", tableWidth) + "\n")

		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(fmt.Sprintf("\n%s:\n", alt.ScenarioName))
			if alt.Description != "" {
				sb.WriteString(fmt.Sprintf("  %s\n", alt.Description))
			}
			sb.WriteString(fmt.Sprintf("  Net Salary:     %s (%s%%)\n",
				tf.signed(alt.NetDiffFromBase.Decimal), alt.NetPctFromBase.StringFixed(2)))
			sb.WriteString(fmt.Sprintf("  Employer Cost:  %s\n", tf.signed(alt.CostDiffFromBase.Decimal)))
			if !alt.TaxDiffFromBase.IsZero() {
				sb.WriteString(fmt.Sprintf("  Income Tax:     %s\n", tf.signed(alt.TaxDiffFromBase.Decimal)))
			}
			if !alt.MarginalKeepRate.IsZero() {
				sb.WriteString(fmt.Sprintf("  Kept as net:    %s of the extra cost\n", output.FormatPercentage(alt.MarginalKeepRate.Decimal)))
			}
		}
		sb.WriteString("\n")
	}

	if len(compSet.Recommendations) > 0 {
		sb.WriteString("\nRECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", tableWidth) + "\n")
		for _, rec := range compSet.Recommendations {
			sb.WriteString(fmt.Sprintf("* %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatRow formats a single scenario row
func (tf *TableFormatter) formatRow(result *ComparisonResult, nameWidth, numWidth int, isBase bool) string {
	name := result.ScenarioName
	if isBase {
		name += " (base)"
	}

	return fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, tf.truncate(name, nameWidth),
		numWidth, output.FormatCurrency(result.GrossWithOvertime.Decimal),
		numWidth, output.FormatCurrency(result.IncomeTax.Decimal),
		numWidth, output.FormatCurrency(result.NetSalary.Decimal),
		numWidth, output.FormatCurrency(result.TotalCost.Decimal))
}

// signed renders a delta with an explicit sign
func (tf *TableFormatter) signed(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+" + output.FormatCurrency(delta)
	}
	return output.FormatCurrency(delta)
}

func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// FormatCompact creates a compact single-line summary of the net pay deltas
func (tf *TableFormatter) FormatCompact(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Base: %s", compSet.BaseScenarioName))
	if compSet.BaseResult != nil {
		sb.WriteString(fmt.Sprintf(" (net %s)", compSet.BaseResult.NetSalary.StringFixed(2)))
	}

	for _, alt := range compSet.AlternativeResults {
		change := "="
		if !alt.NetDiffFromBase.IsZero() {
			change = tf.signed(alt.NetDiffFromBase.Decimal)
		}
		sb.WriteString(fmt.Sprintf(" | %s: %s", alt.ScenarioName, change))
	}

	return sb.String()
}
