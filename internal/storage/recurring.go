package storage

import (
	"context"
	"database/sql"
	"fmt"

	"finanzas/internal/core"
)

const recurringColumns = `id, user_id, title, amount_cents, kind, category_id, every, start_date, end_date, active, last_execution, created_at`

func scanRecurring(s scanner) (core.RecurringPayment, error) {
	var (
		rp                 core.RecurringPayment
		kind, every, start string
		createdAt          string
		categoryID         sql.NullInt64
		endDate, lastExec  sql.NullString
	)
	if err := s.Scan(&rp.ID, &rp.UserID, &rp.Title, &rp.Amount.Cents, &kind, &categoryID, &every,
		&start, &endDate, &rp.Active, &lastExec, &createdAt); err != nil {
		return core.RecurringPayment{}, err
	}
	rp.Kind = core.TransactionKind(kind)
	rp.Every = core.Frequency(every)
	rp.CategoryID = idPtr(categoryID)
	rp.StartDate = parseDate(start)
	rp.EndDate = parseNullDate(endDate)
	rp.LastExecution = parseNullDate(lastExec)
	rp.CreatedAt = parseTime(createdAt)
	return rp, nil
}

func (r *SQLiteRepository) queryRecurring(ctx context.Context, query string, args ...any) ([]core.RecurringPayment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.RecurringPayment
	for rows.Next() {
		rp, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring payment: %w", err)
		}
		out = append(out, rp)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateRecurringPayment(ctx context.Context, rp core.RecurringPayment) (core.RecurringPayment, error) {
	rp.CreatedAt = nowUTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO recurring_payments (user_id, title, amount_cents, kind, category_id, every, start_date, end_date, active, last_execution, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rp.UserID, rp.Title, rp.Amount.Cents, string(rp.Kind), nullID(rp.CategoryID), string(rp.Every),
		rp.StartDate.String(), nullDate(rp.EndDate), rp.Active, nullDate(rp.LastExecution), formatTime(rp.CreatedAt))
	if err != nil {
		return core.RecurringPayment{}, fmt.Errorf("create recurring payment: %w", mapErr(err))
	}
	if rp.ID, err = res.LastInsertId(); err != nil {
		return core.RecurringPayment{}, fmt.Errorf("create recurring payment: %w", err)
	}
	return rp, nil
}

func (r *SQLiteRepository) GetRecurringPayment(ctx context.Context, userID, id int64) (core.RecurringPayment, error) {
	rp, err := scanRecurring(r.db.QueryRowContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_payments WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		return core.RecurringPayment{}, fmt.Errorf("get recurring payment %d: %w", id, mapErr(err))
	}
	return rp, nil
}

func (r *SQLiteRepository) ListRecurringPayments(ctx context.Context, userID int64) ([]core.RecurringPayment, error) {
	out, err := r.queryRecurring(ctx,
		`SELECT `+recurringColumns+` FROM recurring_payments WHERE user_id = ? ORDER BY start_date, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list recurring payments: %w", err)
	}
	return out, nil
}

// ListActiveRecurringPayments returns every enabled template that has
// started on or before asOf, across all users.
func (r *SQLiteRepository) ListActiveRecurringPayments(ctx context.Context, asOf core.Date) ([]core.RecurringPayment, error) {
	out, err := r.queryRecurring(ctx,
		`SELECT `+recurringColumns+` FROM recurring_payments WHERE active = 1 AND start_date <= ? ORDER BY id`, asOf.String())
	if err != nil {
		return nil, fmt.Errorf("list active recurring payments: %w", err)
	}
	return out, nil
}

// UpdateRecurringPayment edits the template. LastExecution is left untouched.
func (r *SQLiteRepository) UpdateRecurringPayment(ctx context.Context, rp core.RecurringPayment) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_payments SET title = ?, amount_cents = ?, kind = ?, category_id = ?, every = ?,
		        start_date = ?, end_date = ?, active = ?
		 WHERE id = ? AND user_id = ?`,
		rp.Title, rp.Amount.Cents, string(rp.Kind), nullID(rp.CategoryID), string(rp.Every),
		rp.StartDate.String(), nullDate(rp.EndDate), rp.Active, rp.ID, rp.UserID)
	if err != nil {
		return fmt.Errorf("update recurring payment %d: %w", rp.ID, mapErr(err))
	}
	if err := affectedOne(res); err != nil {
		return fmt.Errorf("update recurring payment %d: %w", rp.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteRecurringPayment(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_payments WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete recurring payment %d: %w", id, err)
	}
	if err := affectedOne(res); err != nil {
		return fmt.Errorf("delete recurring payment %d: %w", id, err)
	}
	return nil
}

// MaterializeOccurrence inserts the entry generated by rp for the given day
// and advances last_execution in one transaction. The bool is false when
// the occurrence already existed; last_execution advances either way.
func (r *SQLiteRepository) MaterializeOccurrence(ctx context.Context, rp core.RecurringPayment, on core.Date) (core.Entry, bool, error) {
	recurringID := rp.ID
	entry := core.Entry{
		Kind:               rp.Kind,
		UserID:             rp.UserID,
		CategoryID:         rp.CategoryID,
		Title:              rp.Title,
		Amount:             rp.Amount,
		Date:               on,
		RecurringPaymentID: &recurringID,
	}

	var created bool
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		created, err = insertEntry(ctx, tx, &entry)
		if err != nil {
			return fmt.Errorf("insert occurrence: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE recurring_payments SET last_execution = ? WHERE id = ? AND (last_execution IS NULL OR last_execution < ?)`,
			on.String(), rp.ID, on.String())
		if err != nil {
			return fmt.Errorf("advance last execution: %w", err)
		}
		_, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return core.Entry{}, false, fmt.Errorf("materialize recurring payment %d on %s: %w", rp.ID, on, err)
	}
	return entry, created, nil
}

// StartRun opens a run log row in the running state.
func (r *SQLiteRepository) StartRun(ctx context.Context, run core.RecurringRun) (core.RecurringRun, error) {
	run.Status = core.RunRunning
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO recurring_runs (started_at, run_date, status) VALUES (?, ?, ?)`,
		formatTime(run.StartedAt), run.RunDate.String(), string(run.Status))
	if err != nil {
		return core.RecurringRun{}, fmt.Errorf("start run: %w", err)
	}
	if run.ID, err = res.LastInsertId(); err != nil {
		return core.RecurringRun{}, fmt.Errorf("start run: %w", err)
	}
	return run, nil
}

func (r *SQLiteRepository) FinishRun(ctx context.Context, run core.RecurringRun) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_runs SET finished_at = ?, checked = ?, created = ?, skipped = ?, failed = ?, status = ?, error = ?
		 WHERE id = ?`,
		formatTime(run.FinishedAt), run.Checked, run.Created, run.Skipped, run.Failed, string(run.Status), run.Error, run.ID)
	if err != nil {
		return fmt.Errorf("finish run %d: %w", run.ID, err)
	}
	return affectedOne(res)
}

func (r *SQLiteRepository) ListRuns(ctx context.Context, limit int) ([]core.RecurringRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, run_date, checked, created, skipped, failed, status, error
		   FROM recurring_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringRun
	for rows.Next() {
		var (
			run              core.RecurringRun
			started, runDate string
			status           string
			finished         sql.NullString
		)
		if err := rows.Scan(&run.ID, &started, &finished, &runDate, &run.Checked, &run.Created,
			&run.Skipped, &run.Failed, &status, &run.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTime(started)
		run.FinishedAt = parseNullTime(finished)
		run.RunDate = parseDate(runDate)
		run.Status = core.RunStatus(status)
		out = append(out, run)
	}
	return out, rows.Err()
}
