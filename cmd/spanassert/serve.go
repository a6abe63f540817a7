package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	spanassert "github.com/aretw0/spanassert"
	httpAdapter "github.com/aretw0/spanassert/internal/adapters/http"
	"github.com/aretw0/spanassert/internal/adapters/replay"
	"github.com/aretw0/spanassert/internal/config"
	"github.com/aretw0/spanassert/internal/logging"
	"github.com/aretw0/spanassert/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Stream events from stdin and serve live counter introspection",
	Long: `Reads span lifecycle events (JSON lines) from stdin as they arrive and
exposes the accumulating per-matcher counts over HTTP: /assertions as JSON,
/metrics for Prometheus, /healthz as a probe. An assertion suite seeds the
matchers to count.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		suitePath, _ := cmd.Flags().GetString("suite")
		levelFlag, _ := cmd.Flags().GetString("log-level")

		level, err := logging.ParseLevel(levelFlag)
		if err != nil {
			return err
		}
		logger := logging.New(level)

		registry := spanassert.New()
		assertions, err := config.Load(suitePath, registry)
		if err != nil {
			return fmt.Errorf("load suite %s: %w", suitePath, err)
		}
		defer config.Close(assertions)

		promRegistry := prometheus.NewRegistry()
		if err := promRegistry.Register(observability.NewCollector(registry)); err != nil {
			return fmt.Errorf("register collector: %w", err)
		}

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: httpAdapter.NewHandler(registry, httpAdapter.WithMetrics(promRegistry)),
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		// Feed events from stdin until it closes.
		go func() {
			replayer := replay.New(registry, replay.WithLogger(logger))
			if err := replayer.Run(ctx, cmd.InOrStdin()); err != nil {
				logger.Error("event stream stopped", "error", err)
			} else {
				logger.Info("event stream ended")
			}
		}()

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("serving introspection", "addr", srv.Addr, "matchers", registry.Len())
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("graceful shutdown did not complete", "error", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("close server: %w", err)
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().StringP("suite", "s", "spanassert.yaml", "Assertion suite file")
}
