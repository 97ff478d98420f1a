package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rgehrsitz/paygo/internal/grossup"
)

func grossupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grossup",
		Short: "Find the gross salary giving a net salary or employer cost",
		Example: "  paygo grossup --net 8000\n" +
			"  paygo grossup --cost 15000 --company acme --month 3 --year 2025\n" +
			"  paygo grossup --net 6000,8000,10000 --bonuses 500 -f json",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			target, amounts, err := grossupTargets(cmd)
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			if format != "console" && format != "json" {
				return fmt.Errorf("unsupported format: %s (expected one of console, json)", format)
			}
			base, err := inputFromFlags(cmd)
			if err != nil {
				return err
			}

			resolver, closeFn, err := env.openResolver(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			solver := grossup.NewDefaultSolver(env.engine, resolver)
			results, err := solver.SolveTargets(cmd.Context(), base, target, amounts)
			if err != nil {
				return err
			}

			var out string
			switch {
			case format == "json" && len(results) == 1:
				out, err = (&grossup.JSONFormatter{Pretty: true}).Format(results[0])
			case format == "json":
				out, err = (&grossup.JSONFormatter{Pretty: true}).Format(results)
			case len(results) == 1:
				out = (&grossup.TableFormatter{}).Format(results[0])
			default:
				out = (&grossup.TableFormatter{}).FormatGrid(results)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().String("net", "", "Target net salary in MAD, comma-separated for a grid")
	cmd.Flags().String("cost", "", "Target total employer cost in MAD, comma-separated for a grid")
	cmd.MarkFlagsMutuallyExclusive("net", "cost")
	cmd.MarkFlagsOneRequired("net", "cost")
	addEmployeeFlags(cmd)
	addRatesFlag(cmd)
	cmd.Flags().StringP("format", "f", "console", "Output format (console, json)")
	return cmd
}

func grossupTargets(cmd *cobra.Command) (grossup.Target, []decimal.Decimal, error) {
	flag, target := "net", grossup.TargetNetSalary
	if cmd.Flags().Changed("cost") {
		flag, target = "cost", grossup.TargetTotalCost
	}
	raw, _ := cmd.Flags().GetString(flag)

	var amounts []decimal.Decimal
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := decimal.NewFromString(part)
		if err != nil {
			return "", nil, fmt.Errorf("invalid --%s value %q: must be a number", flag, part)
		}
		amounts = append(amounts, d)
	}
	if len(amounts) == 0 {
		return "", nil, fmt.Errorf("--%s needs at least one amount", flag)
	}
	return target, amounts, nil
}
