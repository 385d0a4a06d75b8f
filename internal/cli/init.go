// Package cli provides common initialization utilities shared by
// cmd/spesa and cmd/spesa-worker.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"spesa/internal/backend"
	"spesa/internal/config"
	"spesa/internal/log"
	"spesa/internal/services"
)

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// sets it as the default logger.
func SetupLogger(w io.Writer, cfg *config.Config, component string) *log.Logger {
	level, format := "info", "text"
	if cfg != nil {
		level, format = cfg.LogLevel, cfg.LogFormat
	}
	logger := log.New(log.Config{
		Component: component,
		Handler:   log.NewHandler(w, format, log.ParseLevel(level)),
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig reads configuration from the environment and the
// optional config file, then validates it.
func LoadAndValidateConfig(v *viper.Viper) (*config.Config, error) {
	cfg := config.FromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenTracker creates the configured store and publisher, seeds missing
// records and returns a ready tracker. The returned cleanup closes the
// publisher and the store.
func OpenTracker(ctx context.Context, cfg *config.Config, logger *log.Logger) (*services.Tracker, backend.CleanupFunc, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, nil, err
	}

	opts := services.Options{
		Logger:    logger,
		CacheSize: cfg.ReportCacheSize,
		CacheTTL:  cfg.ReportCacheTTL,
	}
	if res.Publisher != nil {
		opts.Publisher = res.Publisher
	}

	tracker := services.NewTracker(res.Store, opts)
	if err := tracker.EnsureSeeded(ctx); err != nil {
		_ = res.Cleanup()
		return nil, nil, fmt.Errorf("seed records: %w", err)
	}
	return tracker, res.Cleanup, nil
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String(), log.FieldOperation, log.OpShutdown)

		cancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup()
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-time.After(timeout):
			logger.Warn("Shutdown timeout reached")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
