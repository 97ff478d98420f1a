package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/paygo/internal/api"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				host, port, err := splitAddr(addr)
				if err != nil {
					return err
				}
				env.settings.Server.Host, env.settings.Server.Port = host, port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			resolver, closeFn, err := env.openResolver(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			s := env.settings.Server
			srv := api.NewServer(env.engine, resolver, env.log.WithField("module", "api"), api.Options{
				CORSOrigins:    s.CORSOrigins,
				RequestTimeout: s.RequestTimeout,
				MaxBatchSize:   s.MaxBatchSize,
			})
			env.log.WithField("module", "api").Infof("rates source %s, batch concurrency %d", env.settings.Rates.Source, env.settings.Batch.Concurrency)
			return srv.ListenAndServe(ctx, s.Addr())
		},
	}
	cmd.Flags().String("addr", "", "Listen address host:port (overrides server.host and server.port)")
	addRatesFlag(cmd)
	return cmd
}

func splitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid --addr %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid --addr %q: port must be between 1 and 65535", addr)
	}
	return host, port, nil
}
