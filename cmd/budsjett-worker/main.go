package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"budsjett/internal/amqp"
	"budsjett/internal/cli"
	"budsjett/internal/core"
	"budsjett/internal/log"
	"budsjett/internal/sheets"
	"budsjett/internal/sheets/google"
	"budsjett/internal/sheets/memory"
	"budsjett/internal/worker"
)

func main() {
	logger, cfg := cli.Bootstrap(log.ComponentWorker)
	repo := cli.OpenRepository(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var exporter sheets.ReportExporter
	switch cfg.ExportBackend {
	case "sheets":
		client, err := google.New(ctx, google.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetBase:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
			CredentialsFile: cfg.GoogleCredentialsFile,
		}, logger)
		if err != nil {
			logger.Error("failed to initialize Google Sheets exporter", "error", err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	default:
		exporter = memory.New()
		logger.Info("in-memory exporter initialized")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	reportWorker := worker.NewReportWorker(repo, exporter, logger)

	// Cover messages missed while the worker was down.
	if err := reportWorker.StartupExport(ctx); err != nil {
		logger.Error("startup export failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeMonthChanged(ctx, func(msg *amqp.MonthChangedMessage) error {
			return reportWorker.HandleMonthChanged(ctx, msg)
		})
	})

	// Periodic re-export keeps the spreadsheet current even if a message
	// is lost.
	g.Go(func() error {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				month := core.MonthKeyOf(time.Now())
				if err := reportWorker.ExportMonth(ctx, month); err != nil {
					logger.Error("periodic export failed", "error", err, log.FieldMonth, string(month))
				}
			}
		}
	})

	logger.Info("budsjett-worker started",
		"queue", cfg.AMQPQueue, "export_backend", cfg.ExportBackend)

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("worker stopped gracefully")
}
