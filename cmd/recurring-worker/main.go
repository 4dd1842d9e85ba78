package main

import (
	"context"
	"time"

	"finanzas/internal/cli"
	"finanzas/internal/core"
	applog "finanzas/internal/log"
	"finanzas/internal/metrics"
	"finanzas/internal/services"
)

type batch struct {
	processor  *services.RecurringProcessor
	objectives *services.ObjectiveService
	logger     *applog.Logger
}

// run materializes due payments, instantiates this month's system
// objectives and settles the previous month.
func (b *batch) run(ctx context.Context, now time.Time) {
	report, err := b.processor.ProcessDue(ctx, now)
	if err != nil {
		b.logger.ErrorContext(ctx, "Recurring processing failed", applog.FieldError, err)
	} else {
		b.logger.InfoContext(ctx, "Recurring processing complete",
			applog.FieldRunID, report.ID,
			"created", report.Created,
			"skipped", report.Skipped,
			"failed", report.Failed)
	}

	current := core.DateOf(now).Period()
	if n, err := b.objectives.GenerateAll(ctx, current); err != nil {
		b.logger.ErrorContext(ctx, "Objective generation failed", applog.FieldError, err, applog.FieldPeriod, current.String())
	} else if n > 0 {
		b.logger.InfoContext(ctx, "System objectives generated", "count", n, applog.FieldPeriod, current.String())
	}

	for _, p := range []core.Period{current.Prev(), current} {
		rep, err := b.objectives.EvaluateAll(ctx, p, now)
		if err != nil {
			b.logger.ErrorContext(ctx, "Objective evaluation failed", applog.FieldError, err, applog.FieldPeriod, p.String())
			continue
		}
		b.logger.InfoContext(ctx, "Objectives evaluated",
			applog.FieldPeriod, p.String(),
			applog.FieldOperation, applog.OpEvaluate,
			"evaluated", rep.Evaluated,
			"achieved", rep.Achieved,
			"failed", rep.Failed)
	}
}

func main() {
	cfg, logger := cli.LoadAndValidateConfig(applog.ComponentRecurring)
	logger.Info("Starting recurring-worker", applog.FieldOperation, applog.OpStartup)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	m := metrics.New()
	publisher, closePublisher := cli.Publisher(logger, cfg, m)
	defer closePublisher()

	b := &batch{
		processor:  services.NewRecurringProcessor(repo, publisher, m),
		objectives: services.NewObjectiveService(repo, cli.LoadCatalog(logger), m),
		logger:     logger,
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	logger.Info("Recurring processor configured", "interval", cfg.RecurringInterval, "sqlite_db", cfg.SQLiteDBPath)

	b.run(ctx, time.Now())

	ticker := time.NewTicker(cfg.RecurringInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Recurring-worker stopped", applog.FieldOperation, applog.OpShutdown)
			return
		case now := <-ticker.C:
			b.run(ctx, now)
		}
	}
}
