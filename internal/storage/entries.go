package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"networth/internal/core"
)

// EntryWithAccount is an entry joined with its owning account, as consumed
// by the time-series builder and the entries export.
type EntryWithAccount struct {
	Entry   core.AccountEntry
	Account core.Account
}

// UpsertEntry creates the entry or overwrites balance and notes when the
// (account, month, year) key already exists. Last writer wins; there is no
// version check.
func (r *Repository) UpsertEntry(ctx context.Context, e core.AccountEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO account_entries (account_id, month, year, balance, notes)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (account_id, month, year)
		 DO UPDATE SET balance = excluded.balance, notes = excluded.notes,
		   updated_at = CURRENT_TIMESTAMP`,
		e.AccountID, e.Month, e.Year, e.Balance.String(), e.Notes)
	if err != nil {
		return fmt.Errorf("upsert entry: %w", err)
	}
	return nil
}

// InsertEntry creates a new entry and fails on a duplicate
// (account, month, year) key. The editor path uses UpsertEntry instead.
func (r *Repository) InsertEntry(ctx context.Context, e core.AccountEntry) (core.AccountEntry, error) {
	if err := e.Validate(); err != nil {
		return core.AccountEntry{}, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO account_entries (account_id, month, year, balance, notes)
		 VALUES (?, ?, ?, ?, ?)`,
		e.AccountID, e.Month, e.Year, e.Balance.String(), e.Notes)
	if err != nil {
		if isUniqueViolation(err) {
			return core.AccountEntry{}, core.ErrDuplicateEntry
		}
		return core.AccountEntry{}, fmt.Errorf("insert entry: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return core.AccountEntry{}, fmt.Errorf("insert entry id: %w", err)
	}
	return e, nil
}

// LatestBalance resolves the balance of the entry with the greatest
// (year, month) pair, or zero when the account has no entries.
func (r *Repository) LatestBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	var s string
	err := r.db.QueryRowContext(ctx,
		`SELECT balance FROM account_entries WHERE account_id = ?
		 ORDER BY year DESC, month DESC LIMIT 1`, accountID).Scan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("latest balance: %w", err)
	}
	return parseStoredBalance(s)
}

// BalanceAt resolves the balance recorded for the exact (month, year), or
// zero when absent. There is no fallback to a prior month here; callers
// wanting "most recent as of" semantics use LatestEntry.
func (r *Repository) BalanceAt(ctx context.Context, accountID int64, month, year int) (decimal.Decimal, error) {
	var s string
	err := r.db.QueryRowContext(ctx,
		`SELECT balance FROM account_entries
		 WHERE account_id = ? AND month = ? AND year = ?`, accountID, month, year).Scan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("balance at %d/%d: %w", month, year, err)
	}
	return parseStoredBalance(s)
}

// EntryFor returns the entry at the exact (month, year), or nil when none
// exists.
func (r *Repository) EntryFor(ctx context.Context, accountID int64, month, year int) (*core.AccountEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, account_id, month, year, balance, notes, created_at, updated_at
		 FROM account_entries WHERE account_id = ? AND month = ? AND year = ?`,
		accountID, month, year)
	return scanEntryPtr(row)
}

// LatestEntry returns the newest entry for the account, or nil when none
// exists. The entries editor uses it to prefill a month that has no entry
// yet with the most recent known balance.
func (r *Repository) LatestEntry(ctx context.Context, accountID int64) (*core.AccountEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, account_id, month, year, balance, notes, created_at, updated_at
		 FROM account_entries WHERE account_id = ?
		 ORDER BY year DESC, month DESC LIMIT 1`, accountID)
	return scanEntryPtr(row)
}

// EntriesForMonth returns all of the user's entries recorded for the exact
// (month, year), joined with their accounts. Entries of deactivated
// accounts are included: historical months keep their recorded totals.
func (r *Repository) EntriesForMonth(ctx context.Context, userID int64, month, year int) ([]EntryWithAccount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.account_id, e.month, e.year, e.balance, e.notes, e.created_at, e.updated_at,
		   a.id, a.user_id, a.name, a.account_type, a.classification, a.asset_type,
		   a.currency, a.institution, a.account_number, a.is_active, a.created_at, a.updated_at
		 FROM account_entries e
		 JOIN accounts a ON a.id = e.account_id
		 WHERE a.user_id = ? AND e.month = ? AND e.year = ?`,
		userID, month, year)
	if err != nil {
		return nil, fmt.Errorf("entries for %d/%d: %w", month, year, err)
	}
	defer rows.Close()
	return scanEntriesWithAccounts(rows)
}

// AccountEntries returns one account's entries newest first, for the
// account detail page.
func (r *Repository) AccountEntries(ctx context.Context, accountID int64) ([]core.AccountEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, month, year, balance, notes, created_at, updated_at
		 FROM account_entries WHERE account_id = ?
		 ORDER BY year DESC, month DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("account entries: %w", err)
	}
	defer rows.Close()

	var out []core.AccountEntry
	for rows.Next() {
		var (
			e core.AccountEntry
			s string
		)
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Month, &e.Year, &s, &e.Notes, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if e.Balance, err = parseStoredBalance(s); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListEntries returns every entry the user has, ordered for export
// (account name, then chronology).
func (r *Repository) ListEntries(ctx context.Context, userID int64) ([]EntryWithAccount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.account_id, e.month, e.year, e.balance, e.notes, e.created_at, e.updated_at,
		   a.id, a.user_id, a.name, a.account_type, a.classification, a.asset_type,
		   a.currency, a.institution, a.account_number, a.is_active, a.created_at, a.updated_at
		 FROM account_entries e
		 JOIN accounts a ON a.id = e.account_id
		 WHERE a.user_id = ?
		 ORDER BY a.name, e.year, e.month`, userID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()
	return scanEntriesWithAccounts(rows)
}

// ClearMonth zeroes balance and notes for all of the user's accounts in
// the selected month. Rows are kept so the month still renders as recorded.
func (r *Repository) ClearMonth(ctx context.Context, userID int64, month, year int) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE account_entries SET balance = '0', notes = '', updated_at = CURRENT_TIMESTAMP
		 WHERE month = ? AND year = ?
		   AND account_id IN (SELECT id FROM accounts WHERE user_id = ?)`,
		month, year, userID)
	if err != nil {
		return 0, fmt.Errorf("clear month %d/%d: %w", month, year, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear month: %w", err)
	}
	return n, nil
}

func (r *Repository) DeleteAllEntries(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM account_entries
		 WHERE account_id IN (SELECT id FROM accounts WHERE user_id = ?)`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete entries: %w", err)
	}
	return n, nil
}

func (r *Repository) CountEntries(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM account_entries
		 WHERE account_id IN (SELECT id FROM accounts WHERE user_id = ?)`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

func scanEntryPtr(row *sql.Row) (*core.AccountEntry, error) {
	var (
		e core.AccountEntry
		s string
	)
	err := row.Scan(&e.ID, &e.AccountID, &e.Month, &e.Year, &s, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan entry: %w", err)
	}
	if e.Balance, err = parseStoredBalance(s); err != nil {
		return nil, err
	}
	return &e, nil
}

func scanEntriesWithAccounts(rows *sql.Rows) ([]EntryWithAccount, error) {
	var out []EntryWithAccount
	for rows.Next() {
		var (
			it EntryWithAccount
			s  string
		)
		e, a := &it.Entry, &it.Account
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Month, &e.Year, &s, &e.Notes, &e.CreatedAt, &e.UpdatedAt,
			&a.ID, &a.UserID, &a.Name, &a.Type, &a.Classification, &a.AssetType,
			&a.Currency, &a.Institution, &a.AccountNumber, &a.Active, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan entry row: %w", err)
		}
		var err error
		if e.Balance, err = parseStoredBalance(s); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func parseStoredBalance(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("stored balance %q: %w", s, err)
	}
	return d, nil
}
