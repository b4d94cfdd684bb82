package sheets

import (
	"context"

	"budsjett/internal/core"
	"budsjett/internal/engine"
)

// Ports for outbound report adapters.
type (
	// ReportExporter writes a computed month report to an external
	// destination and returns an opaque reference to where it landed.
	ReportExporter interface {
		ExportReport(ctx context.Context, rep engine.Report) (ref string, err error)
	}

	// ReportReader returns the last exported report for a month, when the
	// destination supports reading back.
	ReportReader interface {
		ReadReport(ctx context.Context, month core.MonthKey) (engine.Report, bool, error)
	}
)
