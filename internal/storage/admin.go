package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// UserDataSummary is the per-user overview printed by the admin check-data
// command.
type UserDataSummary struct {
	Username     string
	Accounts     int64
	Entries      int64
	Transactions int64
	LatestMonth  int
	LatestYear   int
}

// DataSummaries reports account/entry/transaction counts and the newest
// recorded entry month for every user.
func (r *Repository) DataSummaries(ctx context.Context) ([]UserDataSummary, error) {
	users, err := r.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	var out []UserDataSummary
	for _, u := range users {
		s := UserDataSummary{Username: u.Username}
		if s.Accounts, err = r.CountAccounts(ctx, u.ID); err != nil {
			return nil, err
		}
		if s.Entries, err = r.CountEntries(ctx, u.ID); err != nil {
			return nil, err
		}
		if s.Transactions, err = r.CountTransactions(ctx, u.ID); err != nil {
			return nil, err
		}
		err = r.db.QueryRowContext(ctx,
			`SELECT e.month, e.year FROM account_entries e
			 JOIN accounts a ON a.id = e.account_id
			 WHERE a.user_id = ?
			 ORDER BY e.year DESC, e.month DESC LIMIT 1`, u.ID).Scan(&s.LatestMonth, &s.LatestYear)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("latest entry for %s: %w", u.Username, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// CleanupDuplicateEntries removes all but the newest entry per
// (account, month, year). The schema's unique constraint prevents new
// duplicates; this sweep exists for databases imported from systems that
// allowed them.
func (r *Repository) CleanupDuplicateEntries(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM account_entries WHERE id NOT IN (
		   SELECT MAX(id) FROM account_entries GROUP BY account_id, month, year
		 )`)
	if err != nil {
		return 0, fmt.Errorf("cleanup duplicate entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cleanup duplicate entries: %w", err)
	}
	return n, nil
}
