package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/paygo/internal/compare"
	"github.com/rgehrsitz/paygo/internal/transform"
)

func compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare one employee's payslip against what-if alternatives",
		Long: "Simulates the employee as given, then once per template (--with) and per\n" +
			"transform (--transform), and reports how net pay and employer cost move.",
		Example: "  paygo compare --gross 10000 --with raise_5pct,bonus_1000\n" +
			"  paygo compare --gross 8000 --transform add_overtime:hours=10,rate=2 --transform set_company:company=acme\n" +
			"  paygo compare --list",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list, _ := cmd.Flags().GetBool("list"); list {
				return listWhatIfs(cmd)
			}

			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			formatter, err := compare.GetFormatter(format)
			if err != nil {
				return err
			}
			input, err := inputFromFlags(cmd)
			if err != nil {
				return err
			}

			with, _ := cmd.Flags().GetString("with")
			specs, _ := cmd.Flags().GetStringArray("transform")
			opts := compare.CompareOptions{
				Templates:  transform.ParseTemplateList(with),
				Transforms: specs,
			}

			resolver, closeFn, err := env.openResolver(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			set, err := compare.NewCompareEngine(env.engine, resolver).Compare(cmd.Context(), input, opts)
			if err != nil {
				return err
			}
			out, err := formatter.Format(set)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().String("gross", "", "Monthly base gross salary in MAD (required unless --list)")
	addEmployeeFlags(cmd)
	cmd.Flags().String("with", "", "Comma-separated template names")
	cmd.Flags().StringArray("transform", nil, "Transform spec name:key=value,... (repeatable)")
	cmd.Flags().Bool("list", false, "List templates and transforms, then exit")
	addRatesFlag(cmd)
	addFormatFlag(cmd)
	return cmd
}

func listWhatIfs(cmd *cobra.Command) error {
	var sb strings.Builder
	templates := transform.CreateBuiltInTemplates()
	sb.WriteString("Templates:\n")
	for _, name := range templates.List() {
		t, _ := templates.Get(name)
		sb.WriteString(fmt.Sprintf("  %-24s %s\n", t.Name, t.Description))
	}
	sb.WriteString("\nTransforms:\n")
	for _, name := range transform.NewTransformRegistry().List() {
		sb.WriteString(fmt.Sprintf("  %s\n", name))
	}
	_, err := fmt.Fprint(cmd.OutOrStdout(), sb.String())
	return err
}
