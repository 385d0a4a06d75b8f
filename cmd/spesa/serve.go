package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"spesa/internal/cli"
	apphttp "spesa/internal/http"
	"spesa/internal/log"
)

func serveCmd(a *app) *cobra.Command {
	var requestsPerMinute int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tracker, cleanup, err := cli.OpenTracker(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}

			srv := apphttp.NewServer(":"+a.cfg.Port, tracker, apphttp.Options{
				Logger:            a.logger,
				TrendMonths:       a.cfg.TrendMonths,
				RequestsPerMinute: requestsPerMinute,
			})

			ctx, done := cli.GracefulShutdown(a.logger, 30*time.Second, func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					a.logger.Error("Server shutdown error", log.FieldError, err)
				}
				if err := cleanup(); err != nil {
					a.logger.Error("Failed to close store", log.FieldError, err)
				}
			})

			a.logger.Info("Starting spesa server",
				"port", a.cfg.Port,
				log.FieldBackend, a.cfg.DataBackend,
				"amqp_enabled", a.cfg.AMQPURL != "",
				log.FieldOperation, log.OpStartup)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				_ = cleanup()
				return err
			}

			cli.WaitForShutdown(ctx, done)
			a.logger.Info("Server stopped gracefully")
			return nil
		},
	}
	cmd.Flags().String("port", "", "listen port (overrides PORT)")
	cmd.Flags().IntVar(&requestsPerMinute, "rate-limit", 60, "write requests per minute per client")
	return cmd
}
