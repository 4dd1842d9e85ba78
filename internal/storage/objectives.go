package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"finanzas/internal/core"
)

const objectiveColumns = `id, user_id, title, kind, origin, template_key, category_id, target_cents, period, points, status, progress_cents, evaluated_at, created_at`

func scanObjective(s scanner) (core.Objective, error) {
	var (
		o                            core.Objective
		kind, origin, period, status string
		createdAt                    string
		templateKey, evaluatedAt     sql.NullString
		categoryID                   sql.NullInt64
	)
	if err := s.Scan(&o.ID, &o.UserID, &o.Title, &kind, &origin, &templateKey, &categoryID, &o.Target.Cents,
		&period, &o.Points, &status, &o.Progress.Cents, &evaluatedAt, &createdAt); err != nil {
		return core.Objective{}, err
	}
	o.Kind = core.ObjectiveKind(kind)
	o.Origin = core.ObjectiveOrigin(origin)
	o.Status = core.ObjectiveStatus(status)
	o.TemplateKey = templateKey.String
	o.CategoryID = idPtr(categoryID)
	o.Period, _ = core.ParsePeriod(period)
	o.EvaluatedAt = parseNullTime(evaluatedAt)
	o.CreatedAt = parseTime(createdAt)
	return o, nil
}

func (r *SQLiteRepository) insertObjective(ctx context.Context, o core.Objective) (core.Objective, bool, error) {
	if o.Status == "" {
		o.Status = core.ObjectiveActive
	}
	o.CreatedAt = nowUTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO objectives (user_id, title, kind, origin, template_key, category_id, target_cents, period, points, status, progress_cents, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`,
		o.UserID, o.Title, string(o.Kind), string(o.Origin), nullString(o.TemplateKey), nullID(o.CategoryID),
		o.Target.Cents, o.Period.String(), o.Points, string(o.Status), o.Progress.Cents, formatTime(o.CreatedAt))
	if err != nil {
		return core.Objective{}, false, mapErr(err)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return core.Objective{}, false, err
	}
	if o.ID, err = res.LastInsertId(); err != nil {
		return core.Objective{}, false, err
	}
	return o, true, nil
}

func (r *SQLiteRepository) CreateObjective(ctx context.Context, o core.Objective) (core.Objective, error) {
	created, ok, err := r.insertObjective(ctx, o)
	if err != nil {
		return core.Objective{}, fmt.Errorf("create objective: %w", err)
	}
	if !ok {
		return core.Objective{}, fmt.Errorf("create objective: %w", core.ErrConflict)
	}
	return created, nil
}

// CreateObjectiveIfAbsent inserts a system objective unless the same
// template already exists for the user, period and category.
func (r *SQLiteRepository) CreateObjectiveIfAbsent(ctx context.Context, o core.Objective) (core.Objective, bool, error) {
	created, ok, err := r.insertObjective(ctx, o)
	if err != nil {
		return core.Objective{}, false, fmt.Errorf("create system objective %s: %w", o.TemplateKey, err)
	}
	return created, ok, nil
}

func (r *SQLiteRepository) GetObjective(ctx context.Context, userID, id int64) (core.Objective, error) {
	o, err := scanObjective(r.db.QueryRowContext(ctx,
		`SELECT `+objectiveColumns+` FROM objectives WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		return core.Objective{}, fmt.Errorf("get objective %d: %w", id, mapErr(err))
	}
	return o, nil
}

// ListObjectives returns the user's objectives, newest period first. A zero
// period lists all of them.
func (r *SQLiteRepository) ListObjectives(ctx context.Context, userID int64, period core.Period) ([]core.Objective, error) {
	query := `SELECT ` + objectiveColumns + ` FROM objectives WHERE user_id = ?`
	args := []any{userID}
	if period != (core.Period{}) {
		query += ` AND period = ?`
		args = append(args, period.String())
	}
	query += ` ORDER BY period DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list objectives: %w", err)
	}
	defer rows.Close()

	var out []core.Objective
	for rows.Next() {
		o, err := scanObjective(rows)
		if err != nil {
			return nil, fmt.Errorf("scan objective: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteObjective(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM objectives WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete objective %d: %w", id, err)
	}
	if err := affectedOne(res); err != nil {
		return fmt.Errorf("delete objective %d: %w", id, err)
	}
	return nil
}

// UpdateObjectiveProgress records a new measurement on an active objective.
func (r *SQLiteRepository) UpdateObjectiveProgress(ctx context.Context, id int64, progress core.Money, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE objectives SET progress_cents = ?, evaluated_at = ? WHERE id = ? AND status = 'active'`,
		progress.Cents, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("update objective %d progress: %w", id, err)
	}
	return nil
}

// SettleObjective moves an active objective to its final status and writes
// the achievement log in the same transaction. It returns false when the
// objective was no longer active.
func (r *SQLiteRepository) SettleObjective(ctx context.Context, o core.Objective, status core.ObjectiveStatus, progress core.Money, entry core.AchievementLog) (bool, error) {
	at := nowUTC()
	var settled bool
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE objectives SET status = ?, progress_cents = ?, evaluated_at = ? WHERE id = ? AND status = 'active'`,
			string(status), progress.Cents, formatTime(at), o.ID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil || n == 0 {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO achievement_logs (user_id, objective_id, event, points, message, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			o.UserID, o.ID, string(status), entry.Points, entry.Message, formatTime(at))
		if err != nil {
			return mapErr(err)
		}
		settled = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("settle objective %d: %w", o.ID, err)
	}
	return settled, nil
}

func (r *SQLiteRepository) ListAchievements(ctx context.Context, userID int64, limit int) ([]core.AchievementLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, objective_id, event, points, message, created_at
		   FROM achievement_logs WHERE user_id = ? ORDER BY id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	defer rows.Close()

	var out []core.AchievementLog
	for rows.Next() {
		var (
			a           core.AchievementLog
			objectiveID sql.NullInt64
			event       string
			createdAt   string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &objectiveID, &event, &a.Points, &a.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		a.ObjectiveID = objectiveID.Int64
		a.Event = core.ObjectiveStatus(event)
		a.CreatedAt = parseTime(createdAt)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) TotalPoints(ctx context.Context, userID int64) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(points), 0) FROM achievement_logs WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("total points: %w", err)
	}
	return total, nil
}
