package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/automator/internal/cli"
	httpAdapter "github.com/aretw0/automator/pkg/adapters/http"
	"github.com/aretw0/automator/pkg/ports"
	"github.com/aretw0/automator/pkg/view"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves builder sessions as a JSON API with server-sent change events
and Prometheus metrics. Sessions live in memory until the server stops.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		port := cfg.HTTP.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		streams := httpAdapter.NewStreamManager(logger)
		app, err := cli.NewApp(ctx, cfg, logger, map[string]ports.EventPublisher{"sse": streams})
		if err != nil {
			return err
		}
		defer app.Close()

		renderer, _, err := newRenderer()
		if err != nil {
			return err
		}

		handler := httpAdapter.NewHandler(app.Sessions,
			httpAdapter.WithStreams(streams),
			httpAdapter.WithRenderer(renderer),
			httpAdapter.WithDefaultFormat(view.FormatJSON),
			httpAdapter.WithMetricsHandler(promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{})),
			httpAdapter.WithLogger(logger),
		)

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: handler,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting automator server", zap.String("address", srv.Addr), zap.Bool("strict", cfg.Strict))
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("shutting down", zap.Any("signal", ctx.Signal()))

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", zap.Error(err))
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}
			logger.Info("server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides http.port)")
}
