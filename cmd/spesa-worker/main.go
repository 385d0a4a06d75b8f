package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"spesa/internal/amqp"
	"spesa/internal/cli"
	"spesa/internal/config"
	"spesa/internal/log"
	"spesa/internal/sheets"
	gsheet "spesa/internal/sheets/google"
	memsheet "spesa/internal/sheets/memory"
	"spesa/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	v, err := config.New(os.Getenv("SPESA_CONFIG"))
	if err != nil {
		cli.SetupLogger(os.Stderr, nil, log.ComponentWorker).Error("Failed to read configuration", log.FieldError, err)
		os.Exit(1)
	}
	cfg, err := cli.LoadAndValidateConfig(v)
	if err != nil {
		cli.SetupLogger(os.Stderr, nil, log.ComponentWorker).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(os.Stdout, cfg, log.ComponentWorker)
	logger.Info("Starting spesa-worker", log.FieldBackend, cfg.DataBackend, log.FieldOperation, log.OpStartup)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}
	if cfg.DataBackend == config.BackendMemory {
		logger.Warn("Memory backend is private to this process; exports will only contain seed data")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracker, cleanup, err := cli.OpenTracker(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open store", log.FieldError, err)
		os.Exit(1)
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Error("Failed to close store", log.FieldError, err)
		}
	}()

	var exporter sheets.MonthExporter
	if cfg.SheetsEnabled() {
		exporter, err = gsheet.New(ctx, cfg.GoogleSpreadsheetID, gsheet.Credentials{
			JSON:            cfg.GoogleServiceAccountJSON,
			File:            cfg.GoogleServiceAccountFile,
			OAuthClientFile: cfg.GoogleOAuthClientFile,
			OAuthTokenFile:  cfg.GoogleOAuthTokenFile,
		}, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		exporter = memsheet.New()
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided; exporting in memory")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	w := worker.NewExportWorker(tracker, exporter, cfg.TrendMonths, logger)
	if err := w.Run(ctx, amqpClient, cfg.ExportInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Export worker stopped", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully", log.FieldOperation, log.OpShutdown)
}
