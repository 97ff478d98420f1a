package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rgehrsitz/paygo/internal/config"
	"github.com/rgehrsitz/paygo/internal/domain"
	"github.com/rgehrsitz/paygo/internal/output"
)

func simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate one employee-month",
		Example: "  paygo simulate --gross 10000\n" +
			"  paygo simulate --gross 8000 --overtime-hours 6 --bonuses 500 --company acme --month 3 --year 2025 -f json",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			formatter, err := formatterFlag(cmd)
			if err != nil {
				return err
			}
			input, err := inputFromFlags(cmd)
			if err != nil {
				return err
			}

			resolver, closeFn, err := env.openResolver(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			result, err := env.engine.Preview(cmd.Context(), input, resolver)
			if err != nil {
				return err
			}
			out, err := formatter.FormatSimulation(result)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().String("gross", "", "Monthly base gross salary in MAD (required)")
	addEmployeeFlags(cmd)
	addRatesFlag(cmd)
	addFormatFlag(cmd)
	_ = cmd.MarkFlagRequired("gross")
	return cmd
}

// addEmployeeFlags registers every simulation input flag except --gross
func addEmployeeFlags(cmd *cobra.Command) {
	cmd.Flags().String("overtime-hours", "0", "Overtime hours worked in the month")
	cmd.Flags().String("overtime-rate", "0", "Overtime multiplier (0 uses the rate set default)")
	cmd.Flags().String("bonuses", "0", "Bonuses in MAD")
	cmd.Flags().String("allowances", "0", "Allowances in MAD")
	cmd.Flags().String("deductions", "0", "Other deductions in MAD")
	cmd.Flags().String("employee", "", "Employee identifier")
	cmd.Flags().String("company", "", "Company identifier for company-specific rates")
	cmd.Flags().Int("month", 0, "Pay month 1-12 (default current month)")
	cmd.Flags().Int("year", 0, "Pay year (default current year)")
}

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [input-file]",
		Short: "Simulate every employee listed in a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			if n, _ := cmd.Flags().GetInt("concurrency"); n > 0 {
				env.engine.Concurrency = n
			}
			formatter, err := formatterFlag(cmd)
			if err != nil {
				return err
			}

			inputs, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}

			resolver, closeFn, err := env.openResolver(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			batch, err := env.engine.SimulateBatch(cmd.Context(), inputs, resolver)
			if err != nil {
				return err
			}
			out, err := formatter.FormatBatch(batch)
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(out); err != nil {
				return err
			}

			if strict, _ := cmd.Flags().GetBool("strict"); strict && batch.Failed > 0 {
				return fmt.Errorf("%d of %d employees failed", batch.Failed, batch.Total)
			}
			return nil
		},
	}

	cmd.Flags().Int("concurrency", 0, "Parallel simulations (default from settings, then GOMAXPROCS)")
	cmd.Flags().Bool("strict", false, "Exit non-zero when any employee fails")
	addRatesFlag(cmd)
	addFormatFlag(cmd)
	return cmd
}

func addRatesFlag(cmd *cobra.Command) {
	cmd.Flags().String("rates", "", "Rate table file (overrides the configured rate source)")
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "console", "Output format (console, json, csv)")
}

func formatterFlag(cmd *cobra.Command) (output.Formatter, error) {
	name, _ := cmd.Flags().GetString("format")
	return output.GetFormatter(name)
}

func inputFromFlags(cmd *cobra.Command) (domain.SimulationInput, error) {
	var (
		in  domain.SimulationInput
		err error
	)
	amounts := []struct {
		flag   string
		target *domain.Amount
	}{
		{"gross", &in.GrossSalary},
		{"overtime-hours", &in.OvertimeHours},
		{"overtime-rate", &in.OvertimeRate},
		{"bonuses", &in.Bonuses},
		{"allowances", &in.Allowances},
		{"deductions", &in.Deductions},
	}
	for _, a := range amounts {
		if cmd.Flags().Lookup(a.flag) == nil {
			continue
		}
		if *a.target, err = amountFlag(cmd, a.flag); err != nil {
			return in, err
		}
	}

	employee, _ := cmd.Flags().GetString("employee")
	in.EmployeeID = domain.EmployeeID(employee)
	in.CompanyID, _ = cmd.Flags().GetString("company")
	in.PayMonth, _ = cmd.Flags().GetInt("month")
	in.PayYear, _ = cmd.Flags().GetInt("year")
	return in, nil
}

func amountFlag(cmd *cobra.Command, name string) (domain.Amount, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return domain.Amount{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return domain.Amount{}, fmt.Errorf("invalid --%s value %q: must be a number", name, raw)
	}
	return domain.NewAmount(d), nil
}
