package storage

import (
	"context"
	"fmt"

	"budsjett/internal/core"
)

func (r *SQLiteRepository) ListGroups(ctx context.Context) ([]core.BudgetGroup, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, icon, forecast_type, default_account_id, is_catch_all
		 FROM budget_groups ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list budget groups: %w", err)
	}
	defer rows.Close()

	var groups []core.BudgetGroup
	for rows.Next() {
		var g core.BudgetGroup
		var catchAll int
		if err := rows.Scan(&g.ID, &g.Name, &g.Icon, &g.ForecastType, &g.DefaultAccountID, &catchAll); err != nil {
			return nil, fmt.Errorf("scan budget group: %w", err)
		}
		g.IsCatchAll = catchAll != 0
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list budget groups: %w", err)
	}

	for i := range groups {
		linked, err := r.linkedBuckets(ctx, groups[i].ID)
		if err != nil {
			return nil, err
		}
		groups[i].LinkedBucketIDs = linked
	}
	return groups, nil
}

func (r *SQLiteRepository) linkedBuckets(ctx context.Context, groupID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT bucket_id FROM group_linked_buckets WHERE group_id = ? ORDER BY bucket_id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list linked buckets: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan linked bucket: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SQLiteRepository) CreateGroup(ctx context.Context, g core.BudgetGroup) (core.BudgetGroup, error) {
	if err := g.Validate(); err != nil {
		return core.BudgetGroup{}, err
	}
	g.ID = newID(g.ID)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budget_groups (id, name, icon, forecast_type, default_account_id, is_catch_all)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.Icon, string(g.ForecastType), g.DefaultAccountID, boolInt(g.IsCatchAll))
	if err != nil {
		return core.BudgetGroup{}, fmt.Errorf("create budget group: %w", err)
	}
	if err := r.replaceLinkedBuckets(ctx, g.ID, g.LinkedBucketIDs); err != nil {
		return core.BudgetGroup{}, err
	}
	if g.IsCatchAll {
		if err := r.makeSoleCatchAll(ctx, g.ID); err != nil {
			return core.BudgetGroup{}, err
		}
	}
	return g, nil
}

// makeSoleCatchAll keeps the at-most-one-catch-all invariant: flagging a
// group demotes any previous catch-all.
func (r *SQLiteRepository) makeSoleCatchAll(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE budget_groups SET is_catch_all = 0 WHERE id <> ?`, id); err != nil {
		return fmt.Errorf("demote previous catch-all: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateGroup(ctx context.Context, g core.BudgetGroup) error {
	if err := g.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE budget_groups
		 SET name = ?, icon = ?, forecast_type = ?, default_account_id = ?, is_catch_all = ?
		 WHERE id = ?`,
		g.Name, g.Icon, string(g.ForecastType), g.DefaultAccountID, boolInt(g.IsCatchAll), g.ID)
	if err != nil {
		return fmt.Errorf("update budget group: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if g.IsCatchAll {
		if err := r.makeSoleCatchAll(ctx, g.ID); err != nil {
			return err
		}
	}
	return r.replaceLinkedBuckets(ctx, g.ID, g.LinkedBucketIDs)
}

func (r *SQLiteRepository) replaceLinkedBuckets(ctx context.Context, groupID string, bucketIDs []string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM group_linked_buckets WHERE group_id = ?`, groupID); err != nil {
		return fmt.Errorf("clear linked buckets: %w", err)
	}
	for _, id := range bucketIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO group_linked_buckets (group_id, bucket_id) VALUES (?, ?)`, groupID, id); err != nil {
			return fmt.Errorf("link bucket %s: %w", id, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) DeleteGroup(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budget_groups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget group: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	// Children keep their dangling reference and degrade to orphans.
	return nil
}

func (r *SQLiteRepository) ListSubCategories(ctx context.Context) ([]core.SubCategory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, icon, main_category_id, budget_group_id, is_savings, account_id
		 FROM sub_categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list sub-categories: %w", err)
	}
	defer rows.Close()

	var subs []core.SubCategory
	for rows.Next() {
		var s core.SubCategory
		var savings int
		if err := rows.Scan(&s.ID, &s.Name, &s.Icon, &s.MainCategoryID, &s.BudgetGroupID, &savings, &s.AccountID); err != nil {
			return nil, fmt.Errorf("scan sub-category: %w", err)
		}
		s.IsSavings = savings != 0
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *SQLiteRepository) CreateSubCategory(ctx context.Context, s core.SubCategory) (core.SubCategory, error) {
	if err := s.Validate(); err != nil {
		return core.SubCategory{}, err
	}
	s.ID = newID(s.ID)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sub_categories (id, name, icon, main_category_id, budget_group_id, is_savings, account_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.Icon, s.MainCategoryID, s.BudgetGroupID, boolInt(s.IsSavings), s.AccountID)
	if err != nil {
		return core.SubCategory{}, fmt.Errorf("create sub-category: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) UpdateSubCategory(ctx context.Context, s core.SubCategory) error {
	if err := s.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE sub_categories
		 SET name = ?, icon = ?, main_category_id = ?, budget_group_id = ?, is_savings = ?, account_id = ?
		 WHERE id = ?`,
		s.Name, s.Icon, s.MainCategoryID, s.BudgetGroupID, boolInt(s.IsSavings), s.AccountID, s.ID)
	if err != nil {
		return fmt.Errorf("update sub-category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteSubCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sub_categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete sub-category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListBuckets(ctx context.Context) ([]core.Bucket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, icon, kind, budget_group_id,
		        goal_target_cents, goal_start_saving, goal_target_month,
		        goal_payment_source, goal_event_start, goal_event_end, goal_archived_month
		 FROM buckets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	defer rows.Close()

	var buckets []core.Bucket
	for rows.Next() {
		var b core.Bucket
		var g core.GoalSpec
		if err := rows.Scan(&b.ID, &b.Name, &b.Icon, &b.Kind, &b.BudgetGroupID,
			&g.TargetAmount.Cents, &g.StartSaving, &g.Target,
			&g.PaymentSource, &g.EventStart, &g.EventEnd, &g.Archived); err != nil {
			return nil, fmt.Errorf("scan bucket: %w", err)
		}
		if b.Kind == core.BucketGoal {
			monthly, err := r.goalMonthlyData(ctx, b.ID)
			if err != nil {
				return nil, err
			}
			g.MonthlyData = monthly
			b.Goal = &g
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

func (r *SQLiteRepository) goalMonthlyData(ctx context.Context, bucketID string) (map[core.MonthKey]core.GoalMonthData, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT month, amount_cents, deleted FROM goal_monthly_data WHERE bucket_id = ?`, bucketID)
	if err != nil {
		return nil, fmt.Errorf("list goal monthly data: %w", err)
	}
	defer rows.Close()

	data := make(map[core.MonthKey]core.GoalMonthData)
	for rows.Next() {
		var month core.MonthKey
		var md core.GoalMonthData
		var deleted int
		if err := rows.Scan(&month, &md.Amount.Cents, &deleted); err != nil {
			return nil, fmt.Errorf("scan goal monthly data: %w", err)
		}
		md.Deleted = deleted != 0
		data[month] = md
	}
	return data, rows.Err()
}

func (r *SQLiteRepository) CreateBucket(ctx context.Context, b core.Bucket) (core.Bucket, error) {
	if err := b.Validate(); err != nil {
		return core.Bucket{}, err
	}
	b.ID = newID(b.ID)
	goal := b.Goal
	if goal == nil {
		goal = &core.GoalSpec{}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO buckets (id, name, icon, kind, budget_group_id,
		                      goal_target_cents, goal_start_saving, goal_target_month,
		                      goal_payment_source, goal_event_start, goal_event_end, goal_archived_month)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Icon, string(b.Kind), b.BudgetGroupID,
		goal.TargetAmount.Cents, string(goal.StartSaving), string(goal.Target),
		string(goal.PaymentSource), goal.EventStart, goal.EventEnd, string(goal.Archived))
	if err != nil {
		return core.Bucket{}, fmt.Errorf("create bucket: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) UpdateBucket(ctx context.Context, b core.Bucket) error {
	if err := b.Validate(); err != nil {
		return err
	}
	goal := b.Goal
	if goal == nil {
		goal = &core.GoalSpec{}
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE buckets
		 SET name = ?, icon = ?, kind = ?, budget_group_id = ?,
		     goal_target_cents = ?, goal_start_saving = ?, goal_target_month = ?,
		     goal_payment_source = ?, goal_event_start = ?, goal_event_end = ?, goal_archived_month = ?
		 WHERE id = ?`,
		b.Name, b.Icon, string(b.Kind), b.BudgetGroupID,
		goal.TargetAmount.Cents, string(goal.StartSaving), string(goal.Target),
		string(goal.PaymentSource), goal.EventStart, goal.EventEnd, string(goal.Archived),
		b.ID)
	if err != nil {
		return fmt.Errorf("update bucket: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBucket removes a bucket for one month (a removal marker takes it
// out of that month's report) or entirely.
func (r *SQLiteRepository) DeleteBucket(ctx context.Context, id string, scope DeleteScope, month core.MonthKey) error {
	switch scope {
	case DeleteMonth:
		if !month.Valid() {
			return core.ErrInvalidMonthKey
		}
		if err := r.guardUnlocked(ctx, month); err != nil {
			return err
		}
		if err := r.ensureMonthConfig(ctx, month); err != nil {
			return err
		}
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO month_bucket_overrides (month, bucket_id, removed) VALUES (?, ?, 1)
			 ON CONFLICT(month, bucket_id) DO UPDATE SET removed = 1`,
			string(month), id)
		if err != nil {
			return fmt.Errorf("hide bucket for month: %w", err)
		}
		return nil
	case DeleteAll:
		res, err := r.db.ExecContext(ctx, `DELETE FROM buckets WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete bucket: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		for _, q := range []string{
			`DELETE FROM group_linked_buckets WHERE bucket_id = ?`,
			`DELETE FROM template_bucket_configs WHERE bucket_id = ?`,
			`DELETE FROM month_bucket_overrides WHERE bucket_id = ?`,
		} {
			if _, err := r.db.ExecContext(ctx, q, id); err != nil {
				return fmt.Errorf("delete bucket references: %w", err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown delete scope %q", scope)
	}
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	a.ID = newID(a.ID)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, name) VALUES (?, ?)`, a.ID, a.Name)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) ListMainCategories(ctx context.Context) ([]core.MainCategory, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, icon FROM main_categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list main categories: %w", err)
	}
	defer rows.Close()

	var cats []core.MainCategory
	for rows.Next() {
		var c core.MainCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan main category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *SQLiteRepository) CreateMainCategory(ctx context.Context, c core.MainCategory) (core.MainCategory, error) {
	c.ID = newID(c.ID)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO main_categories (id, name, icon) VALUES (?, ?, ?)`, c.ID, c.Name, c.Icon)
	if err != nil {
		return core.MainCategory{}, fmt.Errorf("create main category: %w", err)
	}
	return c, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
