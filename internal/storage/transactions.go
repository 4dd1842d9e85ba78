package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"finanzas/internal/core"
)

var sortColumns = map[string]string{
	core.SortDate:    "occurred_on",
	core.SortAmount:  "amount_cents",
	core.SortTitle:   "title COLLATE NOCASE",
	core.SortCreated: "created_at",
}

const transactionColumns = `kind, id, user_id, category_id, category_name, title, amount_cents, occurred_on, note, recurring_payment_id, created_at, updated_at`

// likeEscaper escapes LIKE wildcards so user text is matched literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// transactionWhere builds the WHERE clause and its arguments for f.
// Every value is bound; only whitelisted identifiers are concatenated.
func transactionWhere(f core.TransactionFilter) (string, []any) {
	conds := []string{"user_id = ?"}
	args := []any{f.UserID}

	if f.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, string(f.Kind))
	}
	if f.CategoryID != nil {
		conds = append(conds, "category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if !f.From.IsZero() {
		conds = append(conds, "occurred_on >= ?")
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		conds = append(conds, "occurred_on <= ?")
		args = append(args, f.To.String())
	}
	if !f.MinAmount.IsZero() {
		conds = append(conds, "amount_cents >= ?")
		args = append(args, f.MinAmount.Cents)
	}
	if !f.MaxAmount.IsZero() {
		conds = append(conds, "amount_cents <= ?")
		args = append(args, f.MaxAmount.Cents)
	}
	if f.Query != "" {
		conds = append(conds, `title_folded LIKE ? ESCAPE '\'`)
		args = append(args, "%"+likeEscaper.Replace(foldTitle(f.Query))+"%")
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func transactionOrder(f core.TransactionFilter) string {
	col, ok := sortColumns[f.Sort]
	if !ok {
		col = sortColumns[core.SortDate]
	}
	dir := "DESC"
	if f.Order == core.OrderAsc {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id %s, kind %s", col, dir, dir, dir)
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		t                   core.Transaction
		kind, date          string
		created, updated    string
		categoryID, recurID sql.NullInt64
	)
	if err := s.Scan(&kind, &t.ID, &t.UserID, &categoryID, &t.CategoryName, &t.Title, &t.Amount.Cents,
		&date, &t.Note, &recurID, &created, &updated); err != nil {
		return core.Transaction{}, err
	}
	t.Kind = core.TransactionKind(kind)
	t.CategoryID = idPtr(categoryID)
	t.RecurringPaymentID = idPtr(recurID)
	t.Date = parseDate(date)
	t.CreatedAt = parseTime(created)
	t.UpdatedAt = parseTime(updated)
	return t, nil
}

// ListTransactions queries the unified expense+income view. The filter is
// expected to be normalized.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, f core.TransactionFilter) (core.TransactionPage, error) {
	where, args := transactionWhere(f)
	page := core.TransactionPage{Limit: f.Limit, Offset: f.Offset, Items: []core.Transaction{}}

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&page.Total); err != nil {
		return core.TransactionPage{}, fmt.Errorf("count transactions: %w", err)
	}
	if page.Total == 0 {
		return page, nil
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions` + where + transactionOrder(f) + ` LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return core.TransactionPage{}, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return core.TransactionPage{}, fmt.Errorf("scan transaction: %w", err)
		}
		page.Items = append(page.Items, t)
	}
	if err := rows.Err(); err != nil {
		return core.TransactionPage{}, fmt.Errorf("iterate transactions: %w", err)
	}
	return page, nil
}

// GetTransaction loads one row of the unified view.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, kind core.TransactionKind, userID, id int64) (core.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE kind = ? AND user_id = ? AND id = ?`,
		string(kind), userID, id))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s/%d: %w", kind, id, mapErr(err))
	}
	return t, nil
}

// SumByKind totals income and expense for userID between from and to inclusive.
func (r *SQLiteRepository) SumByKind(ctx context.Context, userID int64, from, to core.Date) (income, expense core.Money, err error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT kind, COALESCE(SUM(amount_cents), 0) FROM transactions
		  WHERE user_id = ? AND occurred_on BETWEEN ? AND ? GROUP BY kind`,
		userID, from.String(), to.String())
	if err != nil {
		return core.Money{}, core.Money{}, fmt.Errorf("sum by kind: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind  string
			total int64
		)
		if err := rows.Scan(&kind, &total); err != nil {
			return core.Money{}, core.Money{}, fmt.Errorf("scan sum: %w", err)
		}
		switch core.TransactionKind(kind) {
		case core.KindIncome:
			income.Cents = total
		case core.KindExpense:
			expense.Cents = total
		}
	}
	return income, expense, rows.Err()
}

// SumExpenses totals expenses in the window, restricted to one category
// when categoryID is set.
func (r *SQLiteRepository) SumExpenses(ctx context.Context, userID int64, categoryID *int64, from, to core.Date) (core.Money, error) {
	query := `SELECT COALESCE(SUM(amount_cents), 0) FROM expenses WHERE user_id = ? AND occurred_on BETWEEN ? AND ?`
	args := []any{userID, from.String(), to.String()}
	if categoryID != nil {
		query += ` AND category_id = ?`
		args = append(args, *categoryID)
	}
	var total int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return core.Money{}, fmt.Errorf("sum expenses: %w", err)
	}
	return core.Money{Cents: total}, nil
}

// CategorySpend returns per-category totals for every category visible to
// userID, including categories without activity.
func (r *SQLiteRepository) CategorySpend(ctx context.Context, userID int64, from, to core.Date) ([]core.CategorySpend, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.kind, c.monthly_limit_cents, COALESCE(SUM(t.amount_cents), 0)
		   FROM categories c
		   LEFT JOIN transactions t
		     ON t.category_id = c.id AND t.kind = c.kind AND t.user_id = ?
		    AND t.occurred_on BETWEEN ? AND ?
		  WHERE c.user_id IS NULL OR c.user_id = ?
		  GROUP BY c.id, c.name, c.kind, c.monthly_limit_cents
		  ORDER BY c.kind, c.name COLLATE NOCASE`,
		userID, from.String(), to.String(), userID)
	if err != nil {
		return nil, fmt.Errorf("category spend: %w", err)
	}
	defer rows.Close()

	var out []core.CategorySpend
	for rows.Next() {
		var (
			cs   core.CategorySpend
			kind string
		)
		if err := rows.Scan(&cs.CategoryID, &cs.Name, &kind, &cs.Limit.Cents, &cs.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan category spend: %w", err)
		}
		cs.Kind = core.TransactionKind(kind)
		out = append(out, cs)
	}
	return out, rows.Err()
}
