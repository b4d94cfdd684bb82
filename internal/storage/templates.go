package storage

import (
	"context"
	"fmt"

	"budsjett/internal/core"
)

func (r *SQLiteRepository) ListTemplates(ctx context.Context) ([]core.BudgetTemplate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, is_default FROM budget_templates ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []core.BudgetTemplate
	for rows.Next() {
		var t core.BudgetTemplate
		var isDefault int
		if err := rows.Scan(&t.ID, &t.Name, &isDefault); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		t.IsDefault = isDefault != 0
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	for i := range templates {
		if err := r.loadTemplateValues(ctx, &templates[i]); err != nil {
			return nil, err
		}
	}
	return templates, nil
}

func (r *SQLiteRepository) loadTemplateValues(ctx context.Context, t *core.BudgetTemplate) error {
	t.SubCategoryAmounts = make(map[string]core.Money)
	t.BucketConfigs = make(map[string]core.BucketConfig)

	rows, err := r.db.QueryContext(ctx,
		`SELECT sub_category_id, amount_cents FROM template_sub_amounts WHERE template_id = ?`, t.ID)
	if err != nil {
		return fmt.Errorf("load template amounts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var cents int64
		if err := rows.Scan(&id, &cents); err != nil {
			return fmt.Errorf("scan template amount: %w", err)
		}
		t.SubCategoryAmounts[id] = core.Money{Cents: cents}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load template amounts: %w", err)
	}

	cfgRows, err := r.db.QueryContext(ctx,
		`SELECT bucket_id, amount_cents, daily_amount_cents, active_days
		 FROM template_bucket_configs WHERE template_id = ?`, t.ID)
	if err != nil {
		return fmt.Errorf("load template bucket configs: %w", err)
	}
	defer cfgRows.Close()
	for cfgRows.Next() {
		var id, days string
		var cfg core.BucketConfig
		if err := cfgRows.Scan(&id, &cfg.Amount.Cents, &cfg.DailyAmount.Cents, &days); err != nil {
			return fmt.Errorf("scan template bucket config: %w", err)
		}
		cfg.ActiveDays = decodeActiveDays(days)
		t.BucketConfigs[id] = cfg
	}
	return cfgRows.Err()
}

func (r *SQLiteRepository) CreateTemplate(ctx context.Context, t core.BudgetTemplate) (core.BudgetTemplate, error) {
	if t.Name == "" {
		return core.BudgetTemplate{}, core.ErrEmptyName
	}
	t.ID = newID(t.ID)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budget_templates (id, name, is_default) VALUES (?, ?, ?)`,
		t.ID, t.Name, boolInt(t.IsDefault))
	if err != nil {
		return core.BudgetTemplate{}, fmt.Errorf("create template: %w", err)
	}
	if t.IsDefault {
		if err := r.SetDefaultTemplate(ctx, t.ID); err != nil {
			return core.BudgetTemplate{}, err
		}
	}
	for subID, amount := range t.SubCategoryAmounts {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO template_sub_amounts (template_id, sub_category_id, amount_cents) VALUES (?, ?, ?)`,
			t.ID, subID, amount.Cents); err != nil {
			return core.BudgetTemplate{}, fmt.Errorf("seed template amount: %w", err)
		}
	}
	for bucketID, cfg := range t.BucketConfigs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO template_bucket_configs (template_id, bucket_id, amount_cents, daily_amount_cents, active_days)
			 VALUES (?, ?, ?, ?, ?)`,
			t.ID, bucketID, cfg.Amount.Cents, cfg.DailyAmount.Cents, encodeActiveDays(cfg.ActiveDays)); err != nil {
			return core.BudgetTemplate{}, fmt.Errorf("seed template bucket config: %w", err)
		}
	}
	return t, nil
}

// SetDefaultTemplate makes one template the process-wide default. At most
// one template carries the flag.
func (r *SQLiteRepository) SetDefaultTemplate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budget_templates SET is_default = (id = ?)`, id)
	if err != nil {
		return fmt.Errorf("set default template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteTemplate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budget_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) listMonthConfigs(ctx context.Context) ([]core.MonthConfig, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT month, template_id, is_locked FROM month_configs ORDER BY month`)
	if err != nil {
		return nil, fmt.Errorf("list month configs: %w", err)
	}
	defer rows.Close()

	var configs []core.MonthConfig
	for rows.Next() {
		var c core.MonthConfig
		var locked int
		if err := rows.Scan(&c.Month, &c.TemplateID, &locked); err != nil {
			return nil, fmt.Errorf("scan month config: %w", err)
		}
		c.IsLocked = locked != 0
		configs = append(configs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list month configs: %w", err)
	}

	for i := range configs {
		if err := r.loadMonthOverrides(ctx, &configs[i]); err != nil {
			return nil, err
		}
	}
	return configs, nil
}

func (r *SQLiteRepository) loadMonthOverrides(ctx context.Context, c *core.MonthConfig) error {
	c.SubCategoryOverrides = make(map[string]core.Override)
	c.BucketOverrides = make(map[string]core.BucketConfigOverride)
	c.GroupOverrides = make(map[string]core.Override)

	subRows, err := r.db.QueryContext(ctx,
		`SELECT sub_category_id, amount_cents, deleted FROM month_sub_overrides WHERE month = ?`,
		string(c.Month))
	if err != nil {
		return fmt.Errorf("load sub-category overrides: %w", err)
	}
	defer subRows.Close()
	for subRows.Next() {
		var id string
		var ov core.Override
		var deleted int
		if err := subRows.Scan(&id, &ov.Amount.Cents, &deleted); err != nil {
			return fmt.Errorf("scan sub-category override: %w", err)
		}
		ov.Deleted = deleted != 0
		c.SubCategoryOverrides[id] = ov
	}
	if err := subRows.Err(); err != nil {
		return fmt.Errorf("load sub-category overrides: %w", err)
	}

	bktRows, err := r.db.QueryContext(ctx,
		`SELECT bucket_id, amount_cents, daily_amount_cents, active_days, deleted, removed
		 FROM month_bucket_overrides WHERE month = ?`, string(c.Month))
	if err != nil {
		return fmt.Errorf("load bucket overrides: %w", err)
	}
	defer bktRows.Close()
	for bktRows.Next() {
		var id, days string
		var ov core.BucketConfigOverride
		var deleted, removed int
		if err := bktRows.Scan(&id, &ov.Config.Amount.Cents, &ov.Config.DailyAmount.Cents, &days, &deleted, &removed); err != nil {
			return fmt.Errorf("scan bucket override: %w", err)
		}
		ov.Config.ActiveDays = decodeActiveDays(days)
		ov.Deleted = deleted != 0
		ov.Removed = removed != 0
		c.BucketOverrides[id] = ov
	}
	if err := bktRows.Err(); err != nil {
		return fmt.Errorf("load bucket overrides: %w", err)
	}

	grpRows, err := r.db.QueryContext(ctx,
		`SELECT group_id, limit_cents FROM month_group_overrides WHERE month = ?`, string(c.Month))
	if err != nil {
		return fmt.Errorf("load group overrides: %w", err)
	}
	defer grpRows.Close()
	for grpRows.Next() {
		var id string
		var ov core.Override
		if err := grpRows.Scan(&id, &ov.Amount.Cents); err != nil {
			return fmt.Errorf("scan group override: %w", err)
		}
		c.GroupOverrides[id] = ov
	}
	return grpRows.Err()
}
