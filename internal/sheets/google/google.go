// Package google exports month reports to a Google Sheets yearly summary
// sheet, one row per month.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"budsjett/internal/core"
	"budsjett/internal/engine"
	"budsjett/internal/log"
	sheetsports "budsjett/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Config carries what the exporter needs to reach the spreadsheet.
type Config struct {
	SpreadsheetID string
	// SheetBase is the sheet name without the year prefix; the exporter
	// writes each year to "<year> <SheetBase>".
	SheetBase       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
	logger        *log.Logger
}

var _ sheetsports.ReportExporter = (*Client)(nil)

// New creates a Sheets exporter from explicit configuration.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	base := strings.TrimSpace(cfg.SheetBase)
	if base == "" {
		base = "Budsjett"
	}

	credentials, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetBase:     base,
		logger:        logger.WithComponent(log.ComponentSheets),
	}, nil
}

func loadCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing Google credentials")
	}
}

// ExportReport writes the month's summary into the yearly sheet. The row
// is keyed by month number, so re-exports overwrite in place.
func (c *Client) ExportReport(ctx context.Context, rep engine.Report) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if !rep.Month.Valid() {
		return "", fmt.Errorf("export report: %w", core.ErrInvalidMonthKey)
	}
	t := rep.Month.Time()

	sheet := fmt.Sprintf("%d %s", t.Year(), c.sheetBase)
	// Header occupies row 1; January lands on row 2.
	row := int(t.Month()) + 1

	header := fmt.Sprintf("%s!A1:J1", sheet)
	hvr := &gsheet.ValueRange{Values: [][]any{{
		"Month", "Template", "Total budget", "Total spent", "Income",
		"Dream spending", "Dream saving", "General saving", "Fixed", "Variable",
	}}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, header, hvr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("write header in sheet %s: %w", sheet, err)
	}

	rng := fmt.Sprintf("%s!A%d:J%d", sheet, row, row)
	vr := &gsheet.ValueRange{Values: [][]any{{
		string(rep.Month),
		rep.TemplateName,
		kroner(rep.TotalBudget),
		kroner(rep.TotalSpent),
		kroner(rep.TotalIncome),
		kroner(rep.Breakdown.DreamSpending),
		kroner(rep.Breakdown.DreamSaving),
		kroner(rep.Breakdown.GeneralSaving),
		kroner(rep.Breakdown.FixedOps),
		kroner(rep.Breakdown.VariableOps),
	}}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("write report row in sheet %s: %w", sheet, err)
	}

	c.logger.InfoContext(ctx, "exported month report",
		log.FieldMonth, string(rep.Month),
		log.FieldSheetsRef, rng)

	return rng, nil
}

func kroner(m core.Money) float64 {
	return float64(m.Cents) / 100.0
}
