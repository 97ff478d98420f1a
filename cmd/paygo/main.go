package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rgehrsitz/paygo/internal/calculation"
	"github.com/rgehrsitz/paygo/internal/config"
	"github.com/rgehrsitz/paygo/internal/rates"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var logLevels = map[string]logrus.Level{
	"trace": logrus.TraceLevel,
	"debug": logrus.DebugLevel,
	"info":  logrus.InfoLevel,
	"warn":  logrus.WarnLevel,
	"error": logrus.ErrorLevel,
	"off":   logrus.PanicLevel,
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "paygo %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.Main.Path + " " + bi.GoVersion
	}
	return ""
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "paygo",
		Short: "Moroccan payroll simulation engine",
		Long: "Simulate net salary, withholdings and employer cost for Moroccan payroll " +
			"(CNSS, AMO, CIMR, income tax) from the command line or over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Settings file (default ./paygo.yaml if present)")
	root.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error, off)")

	root.AddCommand(simulateCmd())
	root.AddCommand(batchCmd())
	root.AddCommand(compareCmd())
	root.AddCommand(grossupCmd())
	root.AddCommand(ratesCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())
	return root
}

// runtimeEnv is what every command needs: settings, a logger and an engine
type runtimeEnv struct {
	settings *config.Settings
	log      *logrus.Logger
	engine   *calculation.Engine
}

func loadEnv(cmd *cobra.Command) (*runtimeEnv, error) {
	path, _ := cmd.Flags().GetString("config")
	settings, err := config.LoadSettings(path)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		settings.Logging.Level = lvl
	}

	log, err := newLogger(settings.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	engine := calculation.NewEngine()
	engine.SetLogger(log.WithField("module", "calculation"))
	engine.Concurrency = settings.Batch.Concurrency
	return &runtimeEnv{settings: settings, log: log, engine: engine}, nil
}

func newLogger(s config.LoggingSettings, out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(out)

	level, ok := logLevels[s.Level]
	if !ok {
		return nil, fmt.Errorf("log level must be one of trace, debug, info, warn, error, off; got %q", s.Level)
	}
	log.SetLevel(level)

	if s.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log, nil
}

// openResolver honours a --rates file flag ahead of the configured source
func (env *runtimeEnv) openResolver(ctx context.Context, cmd *cobra.Command) (rates.Resolver, func(), error) {
	rs := env.settings.Rates
	if f := cmd.Flags().Lookup("rates"); f != nil && f.Value.String() != "" {
		rs.Source = config.SourceFile
		rs.File = f.Value.String()
	}
	env.log.WithField("module", "rates").Debugf("using %s rate source", rs.Source)
	return rs.OpenResolver(ctx)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
