package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/paygo/internal/rates"
)

func ratesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Inspect and validate contribution rate tables",
	}
	cmd.AddCommand(ratesValidateCmd())
	cmd.AddCommand(ratesShowCmd())
	return cmd
}

func ratesValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [rates-file]",
		Short: "Check every rate set in a rate table file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := rates.LoadTableFromFile(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, rs := range table.Sets() {
				company := rs.CompanyID
				if company == "" {
					company = "*"
				}
				status := "ok"
				if err := rs.Validate(); err != nil {
					status = err.Error()
					failed++
				}
				fmt.Fprintf(out, "%-20s company=%-10s from=%s  %s\n", rs.ID, company, rs.EffectiveFrom.Format("2006-01-02"), status)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d rate sets are invalid", failed, table.Len())
			}
			fmt.Fprintf(out, "%d rate sets are valid\n", table.Len())
			return nil
		},
	}
}

func ratesShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the rate set that applies to a company and date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			formatter, err := formatterFlag(cmd)
			if err != nil {
				return err
			}

			company, _ := cmd.Flags().GetString("company")
			day, _ := cmd.Flags().GetString("date")
			key, err := rates.ParseKey(company, day, env.engine.Now())
			if err != nil {
				return err
			}

			resolver, closeFn, err := env.openResolver(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			rs, err := resolver.Resolve(cmd.Context(), key)
			if err != nil {
				return err
			}
			out, err := formatter.FormatRates(rs)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().String("company", "", "Company identifier")
	cmd.Flags().String("date", "", "Effective date YYYY-MM-DD (default today)")
	addRatesFlag(cmd)
	addFormatFlag(cmd)
	return cmd
}
