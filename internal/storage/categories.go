package storage

import (
	"context"
	"database/sql"
	"fmt"

	"finanzas/internal/core"
)

const categoryColumns = `id, user_id, name, kind, icon, monthly_limit_cents`

func scanCategory(s scanner) (core.Category, error) {
	var (
		c      core.Category
		userID sql.NullInt64
		kind   string
	)
	if err := s.Scan(&c.ID, &userID, &c.Name, &kind, &c.Icon, &c.MonthlyLimit.Cents); err != nil {
		return core.Category{}, err
	}
	c.UserID = idPtr(userID)
	c.Kind = core.TransactionKind(kind)
	return c, nil
}

// ListCategories returns system categories plus the user's own, optionally
// restricted to one kind.
func (r *SQLiteRepository) ListCategories(ctx context.Context, userID int64, kind core.TransactionKind) ([]core.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE (user_id IS NULL OR user_id = ?)`
	args := []any{userID}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY kind, user_id IS NOT NULL, name COLLATE NOCASE`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, mapErr(err))
	}
	return c, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, kind, icon, monthly_limit_cents) VALUES (?, ?, ?, ?, ?)`,
		nullID(c.UserID), c.Name, string(c.Kind), c.Icon, c.MonthlyLimit.Cents)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", mapErr(err))
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// UpdateCategory edits a user-owned category. System rows never match.
func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	if c.UserID == nil {
		return core.ErrForbidden
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, icon = ?, monthly_limit_cents = ? WHERE id = ? AND user_id = ?`,
		c.Name, c.Icon, c.MonthlyLimit.Cents, c.ID, *c.UserID)
	if err != nil {
		return fmt.Errorf("update category %d: %w", c.ID, mapErr(err))
	}
	if err := affectedOne(res); err != nil {
		return fmt.Errorf("update category %d: %w", c.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	if err := affectedOne(res); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return nil
}

// SeedSystemCategories inserts ownerless categories, skipping existing
// ones. Returns how many were inserted.
func (r *SQLiteRepository) SeedSystemCategories(ctx context.Context, cats []core.Category) (int, error) {
	inserted := 0
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO categories (user_id, name, kind, icon, monthly_limit_cents)
			 VALUES (NULL, ?, ?, ?, 0) ON CONFLICT DO NOTHING`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, c := range cats {
			res, err := stmt.ExecContext(ctx, c.Name, string(c.Kind), c.Icon)
			if err != nil {
				return fmt.Errorf("seed category %q: %w", c.Name, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed system categories: %w", err)
	}
	return inserted, nil
}
