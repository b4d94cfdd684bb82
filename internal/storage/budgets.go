package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budsjett/internal/core"
)

// guardUnlocked rejects budget-amount writes against a locked month.
func (r *SQLiteRepository) guardUnlocked(ctx context.Context, month core.MonthKey) error {
	var locked int
	err := r.db.QueryRowContext(ctx,
		`SELECT is_locked FROM month_configs WHERE month = ?`, string(month)).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read month lock: %w", err)
	}
	if locked != 0 {
		return fmt.Errorf("%w: %s", ErrMonthLocked, month)
	}
	return nil
}

// ensureMonthConfig lazily creates the month's config row on first
// override or lock.
func (r *SQLiteRepository) ensureMonthConfig(ctx context.Context, month core.MonthKey) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO month_configs (month) VALUES (?) ON CONFLICT(month) DO NOTHING`,
		string(month))
	if err != nil {
		return fmt.Errorf("ensure month config: %w", err)
	}
	return nil
}

// governingTemplateID resolves which template a budget write in TEMPLATE
// mode should land on: the month's assigned template, else the default.
func (r *SQLiteRepository) governingTemplateID(ctx context.Context, month core.MonthKey) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT template_id FROM month_configs WHERE month = ?`, string(month)).Scan(&id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("read month template: %w", err)
	}
	if id != "" {
		return id, nil
	}
	err = r.db.QueryRowContext(ctx,
		`SELECT id FROM budget_templates WHERE is_default = 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("no governing template for %s: %w", month, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read default template: %w", err)
	}
	return id, nil
}

// SetSubCategoryBudget writes a sub-category budget either into the
// governing template (TEMPLATE mode, affecting every month using it) or
// into this month's override map (OVERRIDE mode).
func (r *SQLiteRepository) SetSubCategoryBudget(ctx context.Context, month core.MonthKey, subID string, amount core.Money, mode WriteMode) error {
	if !month.Valid() {
		return core.ErrInvalidMonthKey
	}
	if amount.Cents < 0 {
		return core.ErrInvalidAmount
	}
	if err := r.guardUnlocked(ctx, month); err != nil {
		return err
	}

	switch mode {
	case WriteTemplate:
		tplID, err := r.governingTemplateID(ctx, month)
		if err != nil {
			return err
		}
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO template_sub_amounts (template_id, sub_category_id, amount_cents) VALUES (?, ?, ?)
			 ON CONFLICT(template_id, sub_category_id) DO UPDATE SET amount_cents = excluded.amount_cents`,
			tplID, subID, amount.Cents)
		if err != nil {
			return fmt.Errorf("write template amount: %w", err)
		}
		return nil
	case WriteOverride:
		if err := r.ensureMonthConfig(ctx, month); err != nil {
			return err
		}
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO month_sub_overrides (month, sub_category_id, amount_cents, deleted) VALUES (?, ?, ?, 0)
			 ON CONFLICT(month, sub_category_id) DO UPDATE SET amount_cents = excluded.amount_cents, deleted = 0`,
			string(month), subID, amount.Cents)
		if err != nil {
			return fmt.Errorf("write sub-category override: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown write mode %q", mode)
	}
}

// SetBucketConfig writes a FIXED/DAILY bucket configuration in either
// write mode, with the same semantics as SetSubCategoryBudget.
func (r *SQLiteRepository) SetBucketConfig(ctx context.Context, month core.MonthKey, bucketID string, cfg core.BucketConfig, mode WriteMode) error {
	if !month.Valid() {
		return core.ErrInvalidMonthKey
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := r.guardUnlocked(ctx, month); err != nil {
		return err
	}

	switch mode {
	case WriteTemplate:
		tplID, err := r.governingTemplateID(ctx, month)
		if err != nil {
			return err
		}
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO template_bucket_configs (template_id, bucket_id, amount_cents, daily_amount_cents, active_days)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(template_id, bucket_id) DO UPDATE SET
			   amount_cents = excluded.amount_cents,
			   daily_amount_cents = excluded.daily_amount_cents,
			   active_days = excluded.active_days`,
			tplID, bucketID, cfg.Amount.Cents, cfg.DailyAmount.Cents, encodeActiveDays(cfg.ActiveDays))
		if err != nil {
			return fmt.Errorf("write template bucket config: %w", err)
		}
		return nil
	case WriteOverride:
		if err := r.ensureMonthConfig(ctx, month); err != nil {
			return err
		}
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO month_bucket_overrides (month, bucket_id, amount_cents, daily_amount_cents, active_days, deleted, removed)
			 VALUES (?, ?, ?, ?, ?, 0, 0)
			 ON CONFLICT(month, bucket_id) DO UPDATE SET
			   amount_cents = excluded.amount_cents,
			   daily_amount_cents = excluded.daily_amount_cents,
			   active_days = excluded.active_days,
			   deleted = 0,
			   removed = 0`,
			string(month), bucketID, cfg.Amount.Cents, cfg.DailyAmount.Cents, encodeActiveDays(cfg.ActiveDays))
		if err != nil {
			return fmt.Errorf("write bucket override: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown write mode %q", mode)
	}
}

// SetGroupLimit writes a group's manual limit for a month. Group limits
// live only in month configs, so there is no template mode.
func (r *SQLiteRepository) SetGroupLimit(ctx context.Context, month core.MonthKey, groupID string, limit core.Money) error {
	if !month.Valid() {
		return core.ErrInvalidMonthKey
	}
	if limit.Cents < 0 {
		return core.ErrInvalidAmount
	}
	if err := r.guardUnlocked(ctx, month); err != nil {
		return err
	}
	if err := r.ensureMonthConfig(ctx, month); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO month_group_overrides (month, group_id, limit_cents) VALUES (?, ?, ?)
		 ON CONFLICT(month, group_id) DO UPDATE SET limit_cents = excluded.limit_cents`,
		string(month), groupID, limit.Cents)
	if err != nil {
		return fmt.Errorf("write group limit: %w", err)
	}
	return nil
}

// ClearSubCategoryOverride marks the override explicitly deleted so the
// month reverts to the template value.
func (r *SQLiteRepository) ClearSubCategoryOverride(ctx context.Context, month core.MonthKey, subID string) error {
	if err := r.guardUnlocked(ctx, month); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE month_sub_overrides SET deleted = 1 WHERE month = ? AND sub_category_id = ?`,
		string(month), subID)
	if err != nil {
		return fmt.Errorf("clear sub-category override: %w", err)
	}
	return nil
}

// ClearBucketOverride marks the bucket override explicitly deleted.
func (r *SQLiteRepository) ClearBucketOverride(ctx context.Context, month core.MonthKey, bucketID string) error {
	if err := r.guardUnlocked(ctx, month); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE month_bucket_overrides SET deleted = 1 WHERE month = ? AND bucket_id = ?`,
		string(month), bucketID)
	if err != nil {
		return fmt.Errorf("clear bucket override: %w", err)
	}
	return nil
}

// ClearGroupLimit removes a group's manual limit for a month.
func (r *SQLiteRepository) ClearGroupLimit(ctx context.Context, month core.MonthKey, groupID string) error {
	if err := r.guardUnlocked(ctx, month); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM month_group_overrides WHERE month = ? AND group_id = ?`,
		string(month), groupID)
	if err != nil {
		return fmt.Errorf("clear group limit: %w", err)
	}
	return nil
}

// SetGoalMonthAmount writes a GOAL bucket's saving amount for one month.
func (r *SQLiteRepository) SetGoalMonthAmount(ctx context.Context, month core.MonthKey, bucketID string, amount core.Money) error {
	if !month.Valid() {
		return core.ErrInvalidMonthKey
	}
	if amount.Cents < 0 {
		return core.ErrInvalidAmount
	}
	if err := r.guardUnlocked(ctx, month); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO goal_monthly_data (bucket_id, month, amount_cents, deleted) VALUES (?, ?, ?, 0)
		 ON CONFLICT(bucket_id, month) DO UPDATE SET amount_cents = excluded.amount_cents, deleted = 0`,
		bucketID, string(month), amount.Cents)
	if err != nil {
		return fmt.Errorf("write goal month amount: %w", err)
	}
	return nil
}

// ClearGoalMonthAmount deletes the saving-amount entry so the month falls
// back to the default amortization rate.
func (r *SQLiteRepository) ClearGoalMonthAmount(ctx context.Context, month core.MonthKey, bucketID string) error {
	if err := r.guardUnlocked(ctx, month); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE goal_monthly_data SET deleted = 1 WHERE bucket_id = ? AND month = ?`,
		bucketID, string(month))
	if err != nil {
		return fmt.Errorf("clear goal month amount: %w", err)
	}
	return nil
}

// SetMonthLock toggles the month's budget freeze. Locking is always
// allowed; it is the budget-amount writes that the lock rejects.
func (r *SQLiteRepository) SetMonthLock(ctx context.Context, month core.MonthKey, locked bool) error {
	if !month.Valid() {
		return core.ErrInvalidMonthKey
	}
	if err := r.ensureMonthConfig(ctx, month); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE month_configs SET is_locked = ? WHERE month = ?`,
		boolInt(locked), string(month))
	if err != nil {
		return fmt.Errorf("set month lock: %w", err)
	}
	return nil
}

// AssignTemplate points a month at a template. An empty id reverts the
// month to the default template.
func (r *SQLiteRepository) AssignTemplate(ctx context.Context, month core.MonthKey, templateID string) error {
	if !month.Valid() {
		return core.ErrInvalidMonthKey
	}
	if err := r.guardUnlocked(ctx, month); err != nil {
		return err
	}
	if templateID != "" {
		var one int
		err := r.db.QueryRowContext(ctx,
			`SELECT 1 FROM budget_templates WHERE id = ?`, templateID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("check template: %w", err)
		}
	}
	if err := r.ensureMonthConfig(ctx, month); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE month_configs SET template_id = ? WHERE month = ?`,
		templateID, string(month))
	if err != nil {
		return fmt.Errorf("assign template: %w", err)
	}
	return nil
}
