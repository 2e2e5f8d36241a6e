package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ledger/internal/amqp"
	"ledger/internal/backend"
	"ledger/internal/config"
	"ledger/internal/export/google"
	applog "ledger/internal/log"
	"ledger/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(os.Getenv("LOG_LEVEL")),
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting ledger export worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if !cfg.SheetsExportEnabled() {
		logger.Error("No export target configured, set GOOGLE_SPREADSHEET_ID")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	// Catch-up needs per-transaction export tracking, which only the
	// SQLite backend offers. Without it the worker still mirrors live
	// change events.
	source, _ := result.Store.(worker.TransactionSource)
	if source == nil {
		logger.Warn("Backend has no export tracking, catch-up disabled", "backend", cfg.DataBackend)
	}

	exporter, err := google.NewFromEnv(ctx)
	if err != nil {
		logger.Error("Failed to initialize Sheets exporter", "error", err)
		os.Exit(1)
	}
	logger.Info("Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	w := worker.NewExportWorker(result.Store, source, exporter, cfg.ExportBatchSize)

	if err := w.StartupCheck(ctx); err != nil {
		logger.Error("Startup export check failed", "error", err)
		// Keep going; the periodic catch-up retries.
	}

	logger.Info("Consuming record changes",
		"queue", cfg.AMQPQueue, "interval", cfg.ExportInterval.String())
	if err := w.Run(ctx, amqpClient, cfg.ExportInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
