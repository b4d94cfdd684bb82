package storage

import (
	"context"
	"database/sql"
	"fmt"

	"budsjett/internal/core"
)

// ListTransactions returns transactions ordered by date. Empty bounds
// mean unbounded; from and to are inclusive YYYY-MM-DD dates.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, from, to string) ([]core.Transaction, error) {
	query := `SELECT id, date, amount_cents, type, sub_category_id, bucket_id,
	                 account_id, description, is_hidden, reimburses_id
	          FROM transactions`
	var args []any
	switch {
	case from != "" && to != "":
		query += ` WHERE date >= ? AND date <= ?`
		args = append(args, from, to)
	case from != "":
		query += ` WHERE date >= ?`
		args = append(args, from)
	case to != "":
		query += ` WHERE date <= ?`
		args = append(args, to)
	}
	query += ` ORDER BY date, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var hidden int
		if err := rows.Scan(&t.ID, &t.Date, &t.Amount.Cents, &t.Type, &t.SubCategoryID,
			&t.BucketID, &t.AccountID, &t.Description, &hidden, &t.ReimbursesID); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.IsHidden = hidden != 0
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	var t core.Transaction
	var hidden int
	err := r.db.QueryRowContext(ctx,
		`SELECT id, date, amount_cents, type, sub_category_id, bucket_id,
		        account_id, description, is_hidden, reimburses_id
		 FROM transactions WHERE id = ?`, id).
		Scan(&t.ID, &t.Date, &t.Amount.Cents, &t.Type, &t.SubCategoryID,
			&t.BucketID, &t.AccountID, &t.Description, &hidden, &t.ReimbursesID)
	if err == sql.ErrNoRows {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	t.IsHidden = hidden != 0
	return t, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t.ID = newID(t.ID)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, date, amount_cents, type, sub_category_id, bucket_id,
		                           account_id, description, is_hidden, reimburses_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Date, t.Amount.Cents, string(t.Type), t.SubCategoryID, t.BucketID,
		t.AccountID, t.Description, boolInt(t.IsHidden), t.ReimbursesID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET date = ?, amount_cents = ?, type = ?, sub_category_id = ?, bucket_id = ?,
		     account_id = ?, description = ?, is_hidden = ?, reimburses_id = ?
		 WHERE id = ?`,
		t.Date, t.Amount.Cents, string(t.Type), t.SubCategoryID, t.BucketID,
		t.AccountID, t.Description, boolInt(t.IsHidden), t.ReimbursesID, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
