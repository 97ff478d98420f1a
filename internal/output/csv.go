package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"slices"

	"github.com/rgehrsitz/paygo/internal/domain"
	"github.com/samber/lo"
)

var simulationHeader = []string{
	"Index",
	"Employee ID",
	"Status",
	"Gross Salary",
	"Overtime",
	"Gross With Overtime",
	"CNSS Employee",
	"AMO Employee",
	"CIMR Employee",
	"Professional Expenses",
	"Taxable Income",
	"Income Tax",
	"Professional Tax",
	"Other Deductions",
	"Employee Total",
	"CNSS Employer",
	"AMO Employer",
	"CIMR Employer",
	"Employer Total",
	"Net Salary",
	"Total Cost",
	"Rate Set",
	"Error",
}

// CSVFormatter writes one row per employee for spreadsheet import
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) FormatSimulation(result *domain.SimulationResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("no simulation result to format")
	}
	return writeCSV(simulationHeader, [][]string{simulationRow(0, result.Inputs.EmployeeID, result)})
}

func (c CSVFormatter) FormatBatch(batch *domain.BatchResult) ([]byte, error) {
	if batch == nil {
		return nil, fmt.Errorf("no batch result to format")
	}
	type indexedRow struct {
		index int
		cells []string
	}
	rows := make([]indexedRow, 0, len(batch.Results)+len(batch.Errors))
	for _, item := range batch.Results {
		rows = append(rows, indexedRow{item.Index, simulationRow(item.Index, item.EmployeeID, item.Simulation)})
	}
	for _, e := range batch.Errors {
		cells := make([]string, len(simulationHeader))
		cells[0] = fmt.Sprint(e.Index)
		cells[1] = string(e.EmployeeID)
		cells[2] = e.Kind
		cells[len(cells)-1] = e.Error
		rows = append(rows, indexedRow{e.Index, cells})
	}
	// rows follow input order, failures included
	slices.SortStableFunc(rows, func(a, b indexedRow) int { return a.index - b.index })

	return writeCSV(simulationHeader, lo.Map(rows, func(r indexedRow, _ int) []string { return r.cells }))
}

func (c CSVFormatter) FormatRates(rs *domain.RateSet) ([]byte, error) {
	if rs == nil {
		return nil, fmt.Errorf("no rate set to format")
	}
	rows := make([][]string, 0, len(rs.IncomeTaxBrackets))
	for i, b := range rs.IncomeTaxBrackets {
		bound := ""
		if b.UpperBound != nil {
			bound = b.UpperBound.StringFixed(2)
		}
		rows = append(rows, []string{rs.ID, fmt.Sprint(i), bound, b.Rate.String(), b.CumulativeDeduction.StringFixed(2)})
	}
	return writeCSV([]string{"Rate Set", "Bracket", "Upper Bound", "Rate", "Cumulative Deduction"}, rows)
}

func simulationRow(index int, id domain.EmployeeID, s *domain.SimulationResult) []string {
	ec, er := s.EmployeeContributions, s.EmployerContributions
	return []string{
		fmt.Sprint(index),
		string(id),
		"ok",
		s.Inputs.GrossSalary.StringFixed(2),
		s.OvertimeAmount.StringFixed(2),
		s.GrossWithOvertime.StringFixed(2),
		ec.CNSS.StringFixed(2),
		ec.AMO.StringFixed(2),
		ec.CIMR.StringFixed(2),
		s.ProfessionalExpenses.StringFixed(2),
		s.TaxableIncome.StringFixed(2),
		ec.IncomeTax.StringFixed(2),
		ec.ProfessionalTax.StringFixed(2),
		ec.Other.StringFixed(2),
		ec.Total.StringFixed(2),
		er.CNSS.StringFixed(2),
		er.AMO.StringFixed(2),
		er.CIMR.StringFixed(2),
		er.Total.StringFixed(2),
		s.NetSalary.StringFixed(2),
		s.TotalCost.StringFixed(2),
		s.Rates.ID,
		"",
	}
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
