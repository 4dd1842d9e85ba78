package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"finanzas/internal/core"
)

const entryColumns = `id, user_id, category_id, title, amount_cents, occurred_on, note, recurring_payment_id, created_at, updated_at`

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func tableFor(kind core.TransactionKind) (string, error) {
	switch kind {
	case core.KindExpense:
		return "expenses", nil
	case core.KindIncome:
		return "incomes", nil
	}
	return "", core.ErrInvalidKind
}

func scanEntry(s scanner, kind core.TransactionKind) (core.Entry, error) {
	var (
		e                    core.Entry
		categoryID, recurID  sql.NullInt64
		date, created, updtd string
	)
	if err := s.Scan(&e.ID, &e.UserID, &categoryID, &e.Title, &e.Amount.Cents, &date, &e.Note, &recurID, &created, &updtd); err != nil {
		return core.Entry{}, err
	}
	e.Kind = kind
	e.CategoryID = idPtr(categoryID)
	e.RecurringPaymentID = idPtr(recurID)
	e.Date = parseDate(date)
	e.CreatedAt = parseTime(created)
	e.UpdatedAt = parseTime(updtd)
	return e, nil
}

// foldTitle is the case-folded form searched by the transactions filter.
func foldTitle(title string) string {
	return strings.ToLower(title)
}

// insertEntry writes e and reports false when the recurring occurrence
// already exists.
func insertEntry(ctx context.Context, db execer, e *core.Entry) (bool, error) {
	table, err := tableFor(e.Kind)
	if err != nil {
		return false, err
	}
	now := nowUTC()
	e.CreatedAt, e.UpdatedAt = now, now
	res, err := db.ExecContext(ctx,
		`INSERT INTO `+table+` (user_id, category_id, title, title_folded, amount_cents, occurred_on, note, recurring_payment_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`,
		e.UserID, nullID(e.CategoryID), e.Title, foldTitle(e.Title), e.Amount.Cents, e.Date.String(), e.Note,
		nullID(e.RecurringPaymentID), formatTime(now), formatTime(now))
	if err != nil {
		return false, mapErr(err)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return false, err
	}
	e.ID, err = res.LastInsertId()
	return err == nil, err
}

func (r *SQLiteRepository) CreateEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	created, err := insertEntry(ctx, r.db, &e)
	if err != nil {
		return core.Entry{}, fmt.Errorf("create %s: %w", e.Kind, err)
	}
	if !created {
		return core.Entry{}, fmt.Errorf("create %s: %w", e.Kind, core.ErrConflict)
	}
	return e, nil
}

// GetEntry loads one entry owned by userID.
func (r *SQLiteRepository) GetEntry(ctx context.Context, kind core.TransactionKind, userID, id int64) (core.Entry, error) {
	table, err := tableFor(kind)
	if err != nil {
		return core.Entry{}, err
	}
	e, err := scanEntry(r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM `+table+` WHERE id = ? AND user_id = ?`, id, userID), kind)
	if err != nil {
		return core.Entry{}, fmt.Errorf("get %s %d: %w", kind, id, mapErr(err))
	}
	return e, nil
}

func (r *SQLiteRepository) UpdateEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	table, err := tableFor(e.Kind)
	if err != nil {
		return core.Entry{}, err
	}
	e.UpdatedAt = nowUTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE `+table+` SET category_id = ?, title = ?, title_folded = ?, amount_cents = ?, occurred_on = ?, note = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		nullID(e.CategoryID), e.Title, foldTitle(e.Title), e.Amount.Cents, e.Date.String(), e.Note, formatTime(e.UpdatedAt), e.ID, e.UserID)
	if err != nil {
		return core.Entry{}, fmt.Errorf("update %s %d: %w", e.Kind, e.ID, mapErr(err))
	}
	if err := affectedOne(res); err != nil {
		return core.Entry{}, fmt.Errorf("update %s %d: %w", e.Kind, e.ID, err)
	}
	return r.GetEntry(ctx, e.Kind, e.UserID, e.ID)
}

func (r *SQLiteRepository) DeleteEntry(ctx context.Context, kind core.TransactionKind, userID, id int64) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	if err := affectedOne(res); err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	return nil
}
