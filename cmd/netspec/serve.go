package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/netspec/internal/cli"
	"github.com/aretw0/netspec/internal/presentation/tui"
	httpAdapter "github.com/aretw0/netspec/pkg/adapters/http"
	"github.com/aretw0/netspec/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the spec store over HTTP: CRUD on named specs, validation, Mermaid
graphs, change events (SSE), Prometheus metrics at /metrics and the OpenAPI
document at /openapi.yaml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics := observability.NewMetrics(reg)

		a, err := openApp(cmd, true, metrics)
		if err != nil {
			return err
		}
		defer a.close()
		if cmd.Flags().Changed("addr") {
			a.cfg.Addr, _ = cmd.Flags().GetString("addr")
		}

		handler, err := httpAdapter.NewHandler(a.catalog,
			httpAdapter.WithMetrics(metrics, reg),
			httpAdapter.WithLogger(a.logger),
		)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              a.cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		tui.PrintBanner(cmd.ErrOrStderr())
		serverErrors := make(chan error, 1)
		go func() {
			a.logger.Info("HTTP server listening", "addr", srv.Addr, "store", a.cfg.Store)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
			a.logger.Info("shutting down", "signal", ctx.Signal())

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				return srv.Close()
			}
			a.logger.Info("server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (env NETSPEC_ADDR, default :8080)")
}
