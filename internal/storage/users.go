package storage

import (
	"context"
	"fmt"
	"strings"

	"finanzas/internal/core"
)

const userColumns = `id, name, email, password_hash, monthly_budget_cents, created_at`

func scanUser(s scanner) (core.User, error) {
	var (
		u         core.User
		createdAt string
	)
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.MonthlyBudget.Cents, &createdAt); err != nil {
		return core.User{}, err
	}
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt = nowUTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, monthly_budget_cents, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.Name, u.Email, u.PasswordHash, u.MonthlyBudget.Cents, formatTime(u.CreatedAt))
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", mapErr(err))
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return core.User{}, fmt.Errorf("get user %d: %w", id, mapErr(err))
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", mapErr(err))
	}
	return u, nil
}

// UpdateUserProfile changes the editable profile fields.
func (r *SQLiteRepository) UpdateUserProfile(ctx context.Context, u core.User) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = ?, monthly_budget_cents = ? WHERE id = ?`,
		u.Name, u.MonthlyBudget.Cents, u.ID)
	if err != nil {
		return fmt.Errorf("update user %d: %w", u.ID, mapErr(err))
	}
	if err := affectedOne(res); err != nil {
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	return nil
}

// ListUserIDs returns every user id in ascending order.
func (r *SQLiteRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
