// Package worker recomputes and exports month reports in response to
// month_changed messages.
package worker

import (
	"context"
	"fmt"
	"time"

	"budsjett/internal/amqp"
	"budsjett/internal/core"
	"budsjett/internal/engine"
	"budsjett/internal/log"
	"budsjett/internal/sheets"
	"budsjett/internal/storage"
)

// ReportWorker rebuilds the resolved report for a month and pushes it to
// the configured export backend.
type ReportWorker struct {
	storage  *storage.SQLiteRepository
	exporter sheets.ReportExporter
	logger   *log.Logger
}

func NewReportWorker(repo *storage.SQLiteRepository, exporter sheets.ReportExporter, logger *log.Logger) *ReportWorker {
	return &ReportWorker{
		storage:  repo,
		exporter: exporter,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleMonthChanged is the AMQP consume callback. Returning an error
// requeues the message.
func (w *ReportWorker) HandleMonthChanged(ctx context.Context, msg *amqp.MonthChangedMessage) error {
	if !msg.Month.Valid() {
		// Malformed months never become valid; drop instead of requeue.
		w.logger.WarnContext(ctx, "dropping message with malformed month",
			log.FieldMonth, string(msg.Month),
			log.FieldReason, msg.Reason)
		return nil
	}

	w.logger.InfoContext(ctx, "recomputing month report",
		log.FieldMonth, string(msg.Month),
		log.FieldReason, msg.Reason)

	return w.ExportMonth(ctx, msg.Month)
}

// ExportMonth recomputes one month from storage and exports the result.
func (w *ReportWorker) ExportMonth(ctx context.Context, month core.MonthKey) error {
	in, err := w.storage.Snapshot(ctx, month)
	if err != nil {
		return fmt.Errorf("load snapshot for %s: %w", month, err)
	}
	rep := engine.Aggregate(in)

	ref, err := w.exporter.ExportReport(ctx, rep)
	if err != nil {
		return fmt.Errorf("export report for %s: %w", month, err)
	}

	w.logger.InfoContext(ctx, "exported month report",
		log.FieldMonth, string(month),
		log.FieldSheetsRef, ref,
		log.FieldAmountCents, rep.TotalBudget.Cents)

	return nil
}

// StartupExport re-exports the current month once at boot, covering
// messages missed while the worker was down.
func (w *ReportWorker) StartupExport(ctx context.Context) error {
	month := core.MonthKeyOf(time.Now())
	if err := w.ExportMonth(ctx, month); err != nil {
		return fmt.Errorf("startup export: %w", err)
	}
	return nil
}
