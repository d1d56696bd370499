package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"networth/internal/core"
)

// accountColumns is the select list shared by the account queries.
const accountColumns = `id, user_id, name, account_type, classification, asset_type,
	currency, institution, account_number, is_active, created_at, updated_at`

// accountSortFields maps the sort query parameter to an ORDER BY expression.
// "balance" sorts on the latest-entry subquery; everything else is a plain
// column. An unknown field silently falls back to name.
var accountSortFields = map[string]string{
	"name":           "a.name",
	"account_type":   "a.account_type",
	"classification": "a.classification",
	"asset_type":     "a.asset_type",
	"institution":    "a.institution",
	"balance":        "CAST(latest_balance AS REAL)",
}

// AccountWithBalance pairs an account with its most recent entry balance
// (zero when the account has no entries yet).
type AccountWithBalance struct {
	core.Account
	Balance decimal.Decimal
}

func (r *Repository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (user_id, name, account_type, classification, asset_type,
		   currency, institution, account_number, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.Name, a.Type, a.Classification, a.AssetType,
		a.Currency, a.Institution, a.AccountNumber, a.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Account{}, core.ErrDuplicateAccountName
		}
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("create account id: %w", err)
	}
	return a, nil
}

func (r *Repository) UpdateAccount(ctx context.Context, a core.Account) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, account_type = ?, classification = ?, asset_type = ?,
		   currency = ?, institution = ?, account_number = ?, is_active = ?,
		   updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		a.Name, a.Type, a.Classification, a.AssetType,
		a.Currency, a.Institution, a.AccountNumber, a.Active, a.ID, a.UserID)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrDuplicateAccountName
		}
		return fmt.Errorf("update account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// GetAccount returns the account only when it belongs to userID. A foreign
// account is reported as not found, same as a missing one.
func (r *Repository) GetAccount(ctx context.Context, userID, accountID int64) (core.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ? AND user_id = ?`,
		accountID, userID)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// GetAccountByName resolves a user's account by exact, case-sensitive name.
func (r *Repository) GetAccountByName(ctx context.Context, userID int64, name string) (core.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = ? AND name = ?`,
		userID, name)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account by name: %w", err)
	}
	return a, nil
}

// ListAccounts returns the user's active accounts with their latest
// balances, ordered per sortBy/order (invalid values fall back to
// name/asc).
func (r *Repository) ListAccounts(ctx context.Context, userID int64, sortBy, order string) ([]AccountWithBalance, error) {
	expr, ok := accountSortFields[sortBy]
	if !ok {
		expr = accountSortFields["name"]
	}
	dir := "ASC"
	if order == "desc" {
		dir = "DESC"
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.user_id, a.name, a.account_type, a.classification, a.asset_type,
		   a.currency, a.institution, a.account_number, a.is_active, a.created_at, a.updated_at,
		   (SELECT e.balance FROM account_entries e WHERE e.account_id = a.id
		    ORDER BY e.year DESC, e.month DESC LIMIT 1) AS latest_balance
		 FROM accounts a
		 WHERE a.user_id = ? AND a.is_active = 1
		 ORDER BY `+expr+` `+dir, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []AccountWithBalance
	for rows.Next() {
		var (
			a       core.Account
			balance sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Classification, &a.AssetType,
			&a.Currency, &a.Institution, &a.AccountNumber, &a.Active, &a.CreatedAt, &a.UpdatedAt,
			&balance); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		b := decimal.Zero
		if balance.Valid {
			if b, err = decimal.NewFromString(balance.String); err != nil {
				return nil, fmt.Errorf("parse balance for account %d: %w", a.ID, err)
			}
		}
		out = append(out, AccountWithBalance{Account: a, Balance: b})
	}
	return out, rows.Err()
}

// DeactivateAccount soft-deletes: the row stays so the (user, name)
// uniqueness keeps holding across deletions.
func (r *Repository) DeactivateAccount(ctx context.Context, userID, accountID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET is_active = 0, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`, accountID, userID)
	if err != nil {
		return fmt.Errorf("deactivate account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate account: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteAllAccounts hard-deletes every account the user has, active or not.
// Entries and transactions go with them via cascade.
func (r *Repository) DeleteAllAccounts(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete accounts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete accounts: %w", err)
	}
	return n, nil
}

func (r *Repository) CountAccounts(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE user_id = ? AND is_active = 1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

func scanAccount(row *sql.Row) (core.Account, error) {
	var a core.Account
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Classification, &a.AssetType,
		&a.Currency, &a.Institution, &a.AccountNumber, &a.Active, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}
