package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"networth/internal/core"
)

// TransactionFilter narrows ListTransactions. Zero values mean "no filter".
type TransactionFilter struct {
	AccountID int64
	Category  core.TransactionCategory
	Type      core.TransactionType
}

const txDateLayout = "2006-01-02"

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, account_id, amount, transaction_type, category, description, tx_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.AccountID, t.Amount.String(), t.Type, t.Category, t.Description,
		t.Date.Format(txDateLayout))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction id: %w", err)
	}
	return t, nil
}

func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET account_id = ?, amount = ?, transaction_type = ?, category = ?,
		   description = ?, tx_date = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		t.AccountID, t.Amount.String(), t.Type, t.Category, t.Description,
		t.Date.Format(txDateLayout), t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, account_id, amount, transaction_type, category, description, tx_date, created_at, updated_at
		 FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	t, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ListTransactions returns the user's transactions newest first, narrowed
// by the filter.
func (r *Repository) ListTransactions(ctx context.Context, userID int64, f TransactionFilter) ([]core.Transaction, error) {
	query := `SELECT id, user_id, account_id, amount, transaction_type, category, description, tx_date, created_at, updated_at
		 FROM transactions WHERE user_id = ?`
	args := []any{userID}
	if f.AccountID != 0 {
		query += ` AND account_id = ?`
		args = append(args, f.AccountID)
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Type != "" {
		query += ` AND transaction_type = ?`
		args = append(args, f.Type)
	}
	query += ` ORDER BY tx_date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SumTransactions totals amounts of one transaction type over the filtered
// set, for the income/expense summary line.
func (r *Repository) SumTransactions(ctx context.Context, userID int64, f TransactionFilter, txType core.TransactionType) (decimal.Decimal, error) {
	f.Type = txType
	txs, err := r.ListTransactions(ctx, userID, f)
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, t := range txs {
		sum = sum.Add(t.Amount)
	}
	return sum, nil
}

func (r *Repository) DeleteAllTransactions(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete transactions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete transactions: %w", err)
	}
	return n, nil
}

func (r *Repository) CountTransactions(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func scanTransaction(scan func(dest ...any) error) (core.Transaction, error) {
	var (
		t      core.Transaction
		amount string
		date   string
	)
	err := scan(&t.ID, &t.UserID, &t.AccountID, &amount, &t.Type, &t.Category,
		&t.Description, &date, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("stored amount %q: %w", amount, err)
	}
	if t.Date, err = time.Parse(txDateLayout, date); err != nil {
		// tx_date may come back with a time component depending on how it
		// was written; accept the full form too.
		if t.Date, err = time.Parse(time.RFC3339, date); err != nil {
			return core.Transaction{}, fmt.Errorf("stored date %q: %w", date, err)
		}
	}
	return t, nil
}
