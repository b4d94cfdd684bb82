// Package storage persists the budgeting collections in SQLite and
// assembles the full engine snapshot for a month.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"budsjett/internal/core"
	"budsjett/internal/engine"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrMonthLocked rejects budget-amount writes against a locked month.
var ErrMonthLocked = errors.New("month is locked")

// ErrNotFound reports a lookup for an id that does not exist.
var ErrNotFound = errors.New("not found")

// WriteMode selects where a budget write lands: the governing template
// (every month using it) or this month's override map only.
type WriteMode string

const (
	WriteTemplate WriteMode = "TEMPLATE"
	WriteOverride WriteMode = "OVERRIDE"
)

// DeleteScope selects how far a bucket deletion reaches.
type DeleteScope string

const (
	// DeleteMonth hides the bucket for one month via a deleted override.
	DeleteMonth DeleteScope = "MONTH"
	// DeleteAll removes the bucket and all its data.
	DeleteAll DeleteScope = "ALL"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Payday returns the process-wide payday setting.
func (r *SQLiteRepository) Payday(ctx context.Context) (int, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = 'payday'`).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read payday: %w", err)
	}
	payday, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parse payday %q: %w", value, err)
	}
	return payday, nil
}

func (r *SQLiteRepository) SetPayday(ctx context.Context, payday int) error {
	// 29..31 are rejected rather than accepted-and-clamped: not every
	// month has them, so the stored anchor would drift. Use 28 for a
	// month-end payday; the interval resolver clamps short months.
	if payday < 0 || payday > 28 {
		return fmt.Errorf("payday %d: must be 0..28, use 28 for month-end: %w", payday, core.ErrInvalidPayday)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES ('payday', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		strconv.Itoa(payday))
	if err != nil {
		return fmt.Errorf("set payday: %w", err)
	}
	return nil
}

// Snapshot loads everything the engine needs to aggregate a month. The
// whole dataset is read; prior-month transactions feed the trailing
// averages and goal drawdown.
func (r *SQLiteRepository) Snapshot(ctx context.Context, month core.MonthKey) (engine.Input, error) {
	payday, err := r.Payday(ctx)
	if err != nil {
		return engine.Input{}, err
	}

	groups, err := r.ListGroups(ctx)
	if err != nil {
		return engine.Input{}, err
	}
	subs, err := r.ListSubCategories(ctx)
	if err != nil {
		return engine.Input{}, err
	}
	buckets, err := r.ListBuckets(ctx)
	if err != nil {
		return engine.Input{}, err
	}
	txns, err := r.ListTransactions(ctx, "", "")
	if err != nil {
		return engine.Input{}, err
	}
	templates, err := r.ListTemplates(ctx)
	if err != nil {
		return engine.Input{}, err
	}
	configs, err := r.listMonthConfigs(ctx)
	if err != nil {
		return engine.Input{}, err
	}

	return engine.Input{
		Month:         month,
		Payday:        payday,
		Groups:        groups,
		SubCategories: subs,
		Buckets:       buckets,
		Transactions:  txns,
		Templates:     templates,
		MonthConfigs:  configs,
	}, nil
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// encodeActiveDays renders a weekday list as a comma-joined column value.
func encodeActiveDays(days []int) string {
	if len(days) == 0 {
		return ""
	}
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

func decodeActiveDays(s string) []int {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	return days
}
