package output

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rgehrsitz/paygo/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	colorPrimary = lipgloss.Color("#7D56F4")
	colorSuccess = lipgloss.Color("#04B575")
	colorDanger  = lipgloss.Color("#FF5F87")
	colorMuted   = lipgloss.Color("#626262")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle   = lipgloss.NewStyle().Width(30).PaddingLeft(2)
	valueStyle   = lipgloss.NewStyle().Width(20).Align(lipgloss.Right)
	totalStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	netStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	errorStyle   = lipgloss.NewStyle().Foreground(colorDanger)
)

// ConsoleFormatter renders human readable payslip breakdowns for a terminal
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) FormatSimulation(result *domain.SimulationResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("no simulation result to format")
	}
	var buf bytes.Buffer
	writeSimulation(&buf, result)
	return buf.Bytes(), nil
}

func writeSimulation(buf *bytes.Buffer, r *domain.SimulationResult) {
	in := r.Inputs
	title := "PAYROLL SIMULATION"
	if in.EmployeeID != "" {
		title += " - employee " + string(in.EmployeeID)
	}
	fmt.Fprintln(buf, titleStyle.Render(title))
	fmt.Fprintln(buf, mutedStyle.Render(fmt.Sprintf("Rates: %s (effective %s)", r.Rates.ID, r.Rates.EffectiveFrom.Format("2006-01-02"))))
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, sectionStyle.Render("EARNINGS"))
	line(buf, "Base salary", in.GrossSalary.Decimal)
	if in.OvertimeHours.IsPositive() {
		line(buf, fmt.Sprintf("Overtime (%sh)", in.OvertimeHours.String()), r.OvertimeAmount.Decimal)
	}
	optionalLine(buf, "Bonuses", in.Bonuses.Decimal)
	optionalLine(buf, "Allowances", in.Allowances.Decimal)
	totalLine(buf, "Gross with overtime", r.GrossWithOvertime.Decimal)
	fmt.Fprintln(buf)

	ec := r.EmployeeContributions
	fmt.Fprintln(buf, sectionStyle.Render("EMPLOYEE WITHHOLDINGS"))
	line(buf, "CNSS", ec.CNSS.Decimal)
	line(buf, "AMO", ec.AMO.Decimal)
	if r.Rates.HasCIMR() {
		line(buf, "CIMR", ec.CIMR.Decimal)
	}
	optionalLine(buf, "Professional expenses", r.ProfessionalExpenses.Decimal)
	line(buf, "Taxable income", r.TaxableIncome.Decimal)
	line(buf, "Income tax (IR)", ec.IncomeTax.Decimal)
	optionalLine(buf, "Professional tax", ec.ProfessionalTax.Decimal)
	optionalLine(buf, "Other deductions", ec.Other.Decimal)
	totalLine(buf, "Total withheld", ec.Total.Decimal)
	fmt.Fprintln(buf)

	er := r.EmployerContributions
	fmt.Fprintln(buf, sectionStyle.Render("EMPLOYER CHARGES"))
	line(buf, "CNSS", er.CNSS.Decimal)
	line(buf, "AMO", er.AMO.Decimal)
	if r.Rates.HasCIMR() {
		line(buf, "CIMR", er.CIMR.Decimal)
	}
	totalLine(buf, "Total charges", er.Total.Decimal)
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, lipgloss.JoinHorizontal(lipgloss.Top,
		labelStyle.Render(netStyle.Render("NET SALARY")),
		valueStyle.Render(netStyle.Render(FormatCurrency(r.NetSalary.Decimal)))))
	fmt.Fprintln(buf, lipgloss.JoinHorizontal(lipgloss.Top,
		labelStyle.Render(totalStyle.Render("TOTAL EMPLOYER COST")),
		valueStyle.Render(totalStyle.Render(FormatCurrency(r.TotalCost.Decimal)))))
}

func line(buf *bytes.Buffer, label string, amount decimal.Decimal) {
	fmt.Fprintln(buf, lipgloss.JoinHorizontal(lipgloss.Top,
		labelStyle.Render(label),
		valueStyle.Render(FormatCurrency(amount))))
}

// optionalLine skips zero amounts
func optionalLine(buf *bytes.Buffer, label string, amount decimal.Decimal) {
	if amount.IsZero() {
		return
	}
	line(buf, label, amount)
}

func totalLine(buf *bytes.Buffer, label string, amount decimal.Decimal) {
	fmt.Fprintln(buf, lipgloss.JoinHorizontal(lipgloss.Top,
		labelStyle.Render(totalStyle.Render(label)),
		valueStyle.Render(totalStyle.Render(FormatCurrency(amount)))))
}

func (c ConsoleFormatter) FormatBatch(batch *domain.BatchResult) ([]byte, error) {
	if batch == nil {
		return nil, fmt.Errorf("no batch result to format")
	}
	var buf bytes.Buffer

	fmt.Fprintln(&buf, titleStyle.Render("BATCH SIMULATION "+batch.BatchID))
	fmt.Fprintf(&buf, "Employees: %d   Successful: %d   Failed: %d\n\n", batch.Total, batch.Successful, batch.Failed)

	if len(batch.Results) > 0 {
		var totalNet, totalCost decimal.Decimal
		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(mutedStyle).
			Headers("#", "EMPLOYEE", "GROSS", "WITHHELD", "NET", "EMPLOYER COST")
		for _, item := range batch.Results {
			s := item.Simulation
			t.Row(
				fmt.Sprint(item.Index),
				string(item.EmployeeID),
				groupThousands(s.GrossWithOvertime.StringFixed(2)),
				groupThousands(s.EmployeeContributions.Total.StringFixed(2)),
				groupThousands(s.NetSalary.StringFixed(2)),
				groupThousands(s.TotalCost.StringFixed(2)),
			)
			totalNet = totalNet.Add(s.NetSalary.Decimal)
			totalCost = totalCost.Add(s.TotalCost.Decimal)
		}
		fmt.Fprintln(&buf, t.String())
		fmt.Fprintf(&buf, "Total net salaries:  %s\n", FormatCurrency(totalNet))
		fmt.Fprintf(&buf, "Total employer cost: %s\n", FormatCurrency(totalCost))
	}

	if len(batch.Errors) > 0 {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, sectionStyle.Render("ERRORS"))
		for _, e := range batch.Errors {
			fmt.Fprintln(&buf, errorStyle.Render(fmt.Sprintf("  #%d employee %s [%s]: %s", e.Index, e.EmployeeID, e.Kind, e.Error)))
		}
	}
	return buf.Bytes(), nil
}

func (c ConsoleFormatter) FormatRates(rs *domain.RateSet) ([]byte, error) {
	if rs == nil {
		return nil, fmt.Errorf("no rate set to format")
	}
	var buf bytes.Buffer

	title := "RATE SET " + rs.ID
	if rs.CompanyID != "" {
		title += " (company " + rs.CompanyID + ")"
	}
	fmt.Fprintln(&buf, titleStyle.Render(title))
	if rs.Description != "" {
		fmt.Fprintln(&buf, mutedStyle.Render(rs.Description))
	}
	fmt.Fprintf(&buf, "Effective from: %s\n\n", rs.EffectiveFrom.Format("2006-01-02"))

	fmt.Fprintln(&buf, sectionStyle.Render("CONTRIBUTIONS"))
	fmt.Fprintf(&buf, "  CNSS  employee %s  employer %s  ceiling %s\n",
		FormatPercentage(rs.CNSSEmployeePct.Decimal), FormatPercentage(rs.CNSSEmployerPct.Decimal), FormatCurrency(rs.CNSSCeiling.Decimal))
	fmt.Fprintf(&buf, "  AMO   employee %s  employer %s\n",
		FormatPercentage(rs.AMOEmployeePct.Decimal), FormatPercentage(rs.AMOEmployerPct.Decimal))
	if rs.HasCIMR() {
		fmt.Fprintf(&buf, "  CIMR  employee %s  employer %s\n",
			FormatPercentage(optionalPct(rs.CIMREmployeePct)), FormatPercentage(optionalPct(rs.CIMREmployerPct)))
	}
	fmt.Fprintf(&buf, "  Professional tax %s\n", FormatPercentage(rs.ProfessionalTaxPct.Decimal))
	if pe := rs.ProfessionalExpenses; pe != nil {
		limit := "uncapped"
		if pe.MonthlyCap.IsPositive() {
			limit = "capped at " + FormatCurrency(pe.MonthlyCap.Decimal)
		}
		fmt.Fprintf(&buf, "  Professional expenses %s, %s\n", FormatPercentage(pe.Rate.Decimal), limit)
	}
	fmt.Fprintf(&buf, "  Overtime: %s hours/month, default multiplier %s\n", rs.Hours().String(), rs.OvertimeMultiplier().String())
	if rs.DeductionsPreTax {
		fmt.Fprintln(&buf, "  Deductions are taken before income tax")
	}
	fmt.Fprintln(&buf)

	period := "monthly"
	if rs.AnnualIncomeTax {
		period = "annual"
	}
	fmt.Fprintln(&buf, sectionStyle.Render(fmt.Sprintf("INCOME TAX BRACKETS (%s)", period)))
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("UP TO", "RATE", "DEDUCTION")
	for _, b := range rs.IncomeTaxBrackets {
		bound := "and above"
		if b.UpperBound != nil {
			bound = groupThousands(b.UpperBound.StringFixed(2))
		}
		t.Row(bound, FormatPercentage(b.Rate.Decimal), groupThousands(b.CumulativeDeduction.StringFixed(2)))
	}
	fmt.Fprintln(&buf, t.String())
	return buf.Bytes(), nil
}

func optionalPct(a *domain.Amount) decimal.Decimal {
	if a == nil {
		return decimal.Zero
	}
	return a.Decimal
}
