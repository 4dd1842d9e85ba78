package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finanzas/internal/catalog"
	"finanzas/internal/core"
	applog "finanzas/internal/log"
	"finanzas/internal/metrics"
)

// EvaluationReport counts what one evaluation pass changed.
type EvaluationReport struct {
	Evaluated int
	Achieved  int
	Failed    int
}

func (r *EvaluationReport) add(o EvaluationReport) {
	r.Evaluated += o.Evaluated
	r.Achieved += o.Achieved
	r.Failed += o.Failed
}

// ObjectiveService manages objectives, generates system objectives from
// the catalog and settles them against actual spend.
type ObjectiveService struct {
	store     ObjectiveStore
	templates []catalog.ObjectiveTemplate
	metrics   *metrics.Metrics
}

func NewObjectiveService(store ObjectiveStore, cat *catalog.Catalog, m *metrics.Metrics) *ObjectiveService {
	s := &ObjectiveService{store: store, metrics: m}
	if cat != nil {
		s.templates = cat.Objectives
	}
	return s
}

// Create stores a user-defined objective in the active state.
func (s *ObjectiveService) Create(ctx context.Context, o core.Objective) (core.Objective, error) {
	o.Title = strings.TrimSpace(o.Title)
	o.Origin = core.OriginUser
	o.TemplateKey = ""
	o.Status = core.ObjectiveActive
	o.Progress = core.Money{}
	if err := o.Validate(); err != nil {
		return core.Objective{}, err
	}
	if o.CategoryID != nil {
		if err := checkCategory(ctx, s.store, o.UserID, o.CategoryID, core.KindExpense); err != nil {
			return core.Objective{}, err
		}
	}
	created, err := s.store.CreateObjective(ctx, o)
	if err != nil {
		return core.Objective{}, fmt.Errorf("save objective: %w", err)
	}
	slog.InfoContext(ctx, "Objective created",
		applog.FieldObjectiveID, created.ID,
		applog.FieldUserID, created.UserID,
		applog.FieldPeriod, created.Period.String())
	return created, nil
}

func (s *ObjectiveService) Get(ctx context.Context, userID, id int64) (core.Objective, error) {
	return s.store.GetObjective(ctx, userID, id)
}

// List returns the user's objectives. A zero period lists all of them.
func (s *ObjectiveService) List(ctx context.Context, userID int64, p core.Period) ([]core.Objective, error) {
	return s.store.ListObjectives(ctx, userID, p)
}

func (s *ObjectiveService) Delete(ctx context.Context, userID, id int64) error {
	return s.store.DeleteObjective(ctx, userID, id)
}

// Achievements returns the user's points total and recent log rows.
func (s *ObjectiveService) Achievements(ctx context.Context, userID int64, limit int) (int, []core.AchievementLog, error) {
	points, err := s.store.TotalPoints(ctx, userID)
	if err != nil {
		return 0, nil, err
	}
	items, err := s.store.ListAchievements(ctx, userID, limit)
	if err != nil {
		return 0, nil, err
	}
	return points, items, nil
}

// GenerateSystem instantiates the catalog templates for one user and
// month. Templates already instantiated are left alone, so calling it
// repeatedly is harmless. Returns how many objectives were created.
func (s *ObjectiveService) GenerateSystem(ctx context.Context, userID int64, p core.Period) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	candidates, err := s.systemCandidates(ctx, userID, p)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, o := range candidates {
		if err := o.Validate(); err != nil {
			slog.WarnContext(ctx, "Skipping invalid system objective",
				"template", o.TemplateKey, applog.FieldError, err)
			continue
		}
		_, ok, err := s.store.CreateObjectiveIfAbsent(ctx, o)
		if err != nil {
			return created, fmt.Errorf("create %s objective: %w", o.TemplateKey, err)
		}
		if ok {
			created++
		}
	}
	if created > 0 {
		slog.InfoContext(ctx, "Generated system objectives",
			applog.FieldUserID, userID,
			applog.FieldPeriod, p.String(),
			"created", created)
	}
	return created, nil
}

func (s *ObjectiveService) systemCandidates(ctx context.Context, userID int64, p core.Period) ([]core.Objective, error) {
	var out []core.Objective
	base := func(t catalog.ObjectiveTemplate) core.Objective {
		return core.Objective{
			UserID:      userID,
			Title:       t.Title,
			Kind:        t.Kind,
			Origin:      core.OriginSystem,
			TemplateKey: t.Key,
			Period:      p,
			Points:      t.Points,
			Status:      core.ObjectiveActive,
		}
	}

	for _, t := range s.templates {
		switch t.Source {
		case catalog.SourceUserBudget:
			u, err := s.store.GetUser(ctx, userID)
			if err != nil {
				return nil, fmt.Errorf("load user: %w", err)
			}
			if u.MonthlyBudget.Cents <= 0 {
				continue
			}
			o := base(t)
			o.Target = u.MonthlyBudget
			out = append(out, o)

		case catalog.SourceCategoryLimit:
			cats, err := s.store.ListCategories(ctx, userID, core.KindExpense)
			if err != nil {
				return nil, err
			}
			for _, c := range cats {
				if c.MonthlyLimit.Cents <= 0 {
					continue
				}
				id := c.ID
				o := base(t)
				o.Title = fmt.Sprintf(t.Title, c.Name)
				o.CategoryID = &id
				o.Target = c.MonthlyLimit
				out = append(out, o)
			}

		case catalog.SourcePreviousIncome:
			prev := p.Prev()
			income, _, err := s.store.SumByKind(ctx, userID, prev.Start(), prev.End())
			if err != nil {
				return nil, err
			}
			target := income.Percent(t.Percent)
			if target.Cents <= 0 {
				continue
			}
			o := base(t)
			o.Title = fmt.Sprintf(t.Title, t.Percent)
			o.Target = target
			out = append(out, o)
		}
	}
	return out, nil
}

// Evaluate measures every active objective of the user's month and
// settles the ones whose outcome is decided as of now. Settled objectives
// are never revisited, so each transition is logged exactly once.
func (s *ObjectiveService) Evaluate(ctx context.Context, userID int64, p core.Period, now time.Time) ([]core.Objective, EvaluationReport, error) {
	var report EvaluationReport
	if err := p.Validate(); err != nil {
		return nil, report, err
	}
	objectives, err := s.store.ListObjectives(ctx, userID, p)
	if err != nil {
		return nil, report, err
	}

	now = now.UTC()
	today := core.DateOf(now)
	for i := range objectives {
		o := &objectives[i]
		if !o.IsActive() {
			continue
		}
		report.Evaluated++

		progress, err := s.measure(ctx, *o)
		if err != nil {
			return nil, report, fmt.Errorf("measure objective %d: %w", o.ID, err)
		}

		status := o.Outcome(progress, today)
		if status == core.ObjectiveActive {
			if err := s.store.UpdateObjectiveProgress(ctx, o.ID, progress, now); err != nil {
				return nil, report, err
			}
			o.Progress, o.EvaluatedAt = progress, now
			continue
		}

		entry := core.AchievementLog{
			UserID:      o.UserID,
			ObjectiveID: o.ID,
			Event:       status,
			Message:     fmt.Sprintf("%s: %s", o.Title, status),
		}
		if status == core.ObjectiveAchieved {
			entry.Points = o.Points
		}
		settled, err := s.store.SettleObjective(ctx, *o, status, progress, entry)
		if err != nil {
			return nil, report, err
		}
		o.Progress, o.EvaluatedAt = progress, now
		if !settled {
			continue
		}
		o.Status = status
		s.metrics.RecordObjectiveTransition(string(status), string(o.Origin))
		if status == core.ObjectiveAchieved {
			report.Achieved++
		} else {
			report.Failed++
		}
		slog.InfoContext(ctx, "Objective settled",
			applog.FieldObjectiveID, o.ID,
			applog.FieldUserID, o.UserID,
			"status", status,
			"points", entry.Points,
			"progress_cents", progress.Cents,
			"target_cents", o.Target.Cents)
	}
	return objectives, report, nil
}

func (s *ObjectiveService) measure(ctx context.Context, o core.Objective) (core.Money, error) {
	from, to := o.Period.Start(), o.Period.End()
	switch o.Kind {
	case core.SpendingLimit:
		return s.store.SumExpenses(ctx, o.UserID, o.CategoryID, from, to)
	case core.SavingsTarget:
		income, expense, err := s.store.SumByKind(ctx, o.UserID, from, to)
		if err != nil {
			return core.Money{}, err
		}
		saved := income.Cents - expense.Cents
		if saved < 0 {
			saved = 0
		}
		return core.Money{Cents: saved}, nil
	}
	return core.Money{}, fmt.Errorf("%w: kind %q", core.ErrInvalidObjective, o.Kind)
}

// GenerateAll runs GenerateSystem for every user. Per-user failures are
// logged and do not stop the pass.
func (s *ObjectiveService) GenerateAll(ctx context.Context, p core.Period) (int, error) {
	ids, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, id := range ids {
		n, err := s.GenerateSystem(ctx, id, p)
		total += n
		if err != nil {
			slog.ErrorContext(ctx, "Failed to generate system objectives",
				applog.FieldUserID, id, applog.FieldPeriod, p.String(), applog.FieldError, err)
		}
	}
	return total, nil
}

// EvaluateAll runs Evaluate for every user.
func (s *ObjectiveService) EvaluateAll(ctx context.Context, p core.Period, now time.Time) (EvaluationReport, error) {
	var total EvaluationReport
	ids, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return total, err
	}
	for _, id := range ids {
		_, r, err := s.Evaluate(ctx, id, p, now)
		total.add(r)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to evaluate objectives",
				applog.FieldUserID, id, applog.FieldPeriod, p.String(), applog.FieldError, err)
		}
	}
	return total, nil
}
