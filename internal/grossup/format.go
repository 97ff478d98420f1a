package grossup

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rgehrsitz/paygo/internal/output"
)

// TableFormatter formats gross-up results for the console
type TableFormatter struct{}

// Format renders a single result with the payslip it leads to
func (tf *TableFormatter) Format(result *Result) string {
	var sb strings.Builder

	sb.WriteString("GROSS-UP RESULT\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	sb.WriteString(fmt.Sprintf("Employee:        %s\n", result.EmployeeID))
	sb.WriteString(fmt.Sprintf("Target:          %s %s\n", tf.label(result.Target), output.FormatCurrency(result.TargetAmount.Decimal)))
	sb.WriteString(fmt.Sprintf("Status:          %s\n", tf.formatStatus(result.Converged)))
	sb.WriteString(fmt.Sprintf("Iterations:      %d\n", result.Iterations))
	if result.Info != "" {
		sb.WriteString(fmt.Sprintf("Convergence:     %s\n", result.Info))
	}
	sb.WriteString("\n")

	sb.WriteString("REQUIRED GROSS SALARY\n")
	sb.WriteString(strings.Repeat("-", 60) + "\n")
	sb.WriteString(fmt.Sprintf("Gross Salary:    %s\n", output.FormatCurrency(result.GrossSalary.Decimal)))
	sb.WriteString(fmt.Sprintf("Achieved:        %s\n", output.FormatCurrency(result.Achieved.Decimal)))
	if !result.Difference.IsZero() {
		sb.WriteString(fmt.Sprintf("Difference:      %s\n", output.FormatCurrency(result.Difference.Decimal)))
	}
	sb.WriteString("\n")

	if sim := result.Simulation; sim != nil {
		sb.WriteString("RESULTING PAYSLIP\n")
		sb.WriteString(strings.Repeat("-", 60) + "\n")
		sb.WriteString(fmt.Sprintf("Gross With Overtime:  %s\n", output.FormatCurrency(sim.GrossWithOvertime.Decimal)))
		sb.WriteString(fmt.Sprintf("Employee Withholding: %s\n", output.FormatCurrency(sim.EmployeeContributions.Total.Decimal)))
		sb.WriteString(fmt.Sprintf("Net Salary:           %s\n", output.FormatCurrency(sim.NetSalary.Decimal)))
		sb.WriteString(fmt.Sprintf("Total Employer Cost:  %s\n", output.FormatCurrency(sim.TotalCost.Decimal)))
		sb.WriteString(fmt.Sprintf("Rates:                %s\n", sim.Rates.ID))
	}

	return sb.String()
}

// FormatGrid renders several results as one row each
func (tf *TableFormatter) FormatGrid(results []*Result) string {
	var sb strings.Builder

	sb.WriteString("GROSS-UP GRID\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("%-16s %18s %18s %18s %6s\n", "Target", "Gross Salary", "Net Salary", "Employer Cost", "OK"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	for _, r := range results {
		net, cost := "-", "-"
		if r.Simulation != nil {
			net = output.FormatCurrency(r.Simulation.NetSalary.Decimal)
			cost = output.FormatCurrency(r.Simulation.TotalCost.Decimal)
		}
		ok := "yes"
		if !r.Converged {
			ok = "no"
		}
		sb.WriteString(fmt.Sprintf("%-16s %18s %18s %18s %6s\n",
			r.TargetAmount.StringFixed(2),
			output.FormatCurrency(r.GrossSalary.Decimal), net, cost, ok))
	}
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	return sb.String()
}

func (tf *TableFormatter) formatStatus(converged bool) string {
	if converged {
		return "converged"
	}
	return "not converged"
}

func (tf *TableFormatter) label(t Target) string {
	if t == TargetTotalCost {
		return "total employer cost"
	}
	return "net salary"
}

// JSONFormatter formats gross-up results as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format marshals one result or a grid of results
func (jf *JSONFormatter) Format(v any) (string, error) {
	var (
		data []byte
		err  error
	)
	if jf.Pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
