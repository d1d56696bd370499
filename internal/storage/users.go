package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"networth/internal/core"
)

func (r *Repository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, first_name, last_name, password_hash)
		 VALUES (?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, fmt.Errorf("username %q is taken", u.Username)
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("create user id: %w", err)
	}
	return u, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, first_name, last_name, password_hash, created_at
		 FROM users WHERE username = ?`, username))
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, first_name, last_name, password_hash, created_at
		 FROM users WHERE id = ?`, id))
}

func (r *Repository) scanUser(row *sql.Row) (core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// UpdateProfile updates name and email. The email must not belong to
// another user; that check is the caller's (the settings handler verifies
// via EmailInUse before calling).
func (r *Repository) UpdateProfile(ctx context.Context, id int64, firstName, lastName, email string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET first_name = ?, last_name = ?, email = ? WHERE id = ?`,
		firstName, lastName, email, id)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// EmailInUse reports whether another user already uses the email.
func (r *Repository) EmailInUse(ctx context.Context, email string, excludeUserID int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ? AND id != ?`, email, excludeUserID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return n > 0, nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, email, first_name, last_name, password_hash, created_at
		 FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		var u core.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
