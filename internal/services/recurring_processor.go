package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finanzas/internal/core"
	applog "finanzas/internal/log"
	"finanzas/internal/metrics"
)

// RunReport is the outcome of one batch execution.
type RunReport struct {
	core.RecurringRun
	Entries []core.Entry // entries created by this run
}

// RecurringProcessor materializes due recurring payments into expenses and
// incomes. Each execution is recorded as a run log row.
type RecurringProcessor struct {
	store     RunStore
	publisher EventPublisher
	metrics   *metrics.Metrics
}

func NewRecurringProcessor(store RunStore, publisher EventPublisher, m *metrics.Metrics) *RecurringProcessor {
	return &RecurringProcessor{store: store, publisher: publisher, metrics: m}
}

// ProcessDue runs the batch for the calendar day of now. A failing payment
// is logged and counted, and processing continues with the next one. An
// occurrence that already exists counts as skipped, so re-running the same
// day creates nothing.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (RunReport, error) {
	if p.store == nil {
		return RunReport{}, fmt.Errorf("processor not properly initialized")
	}
	today := core.DateOf(now)

	run, err := p.store.StartRun(ctx, core.RecurringRun{StartedAt: now.UTC(), RunDate: today})
	if err != nil {
		return RunReport{}, fmt.Errorf("open run log: %w", err)
	}
	report := RunReport{RecurringRun: run}

	candidates, err := p.store.ListActiveRecurringPayments(ctx, today)
	if err != nil {
		report.Status = core.RunFailed
		report.Error = err.Error()
		p.finish(ctx, &report)
		return report, fmt.Errorf("list recurring payments: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring payments",
		applog.FieldRunID, run.ID,
		"candidates", len(candidates),
		"processing_date", today.String())

	for _, rp := range candidates {
		if err := ctx.Err(); err != nil {
			report.Error = err.Error()
			break
		}
		report.Checked++

		on, due, err := NextOccurrence(rp, today)
		if err != nil {
			report.Failed++
			slog.ErrorContext(ctx, "Failed to check if payment is due",
				applog.FieldRecurringID, rp.ID,
				applog.FieldError, err)
			continue
		}
		if !due {
			continue
		}

		entry, created, err := p.store.MaterializeOccurrence(ctx, rp, on)
		if err != nil {
			report.Failed++
			slog.ErrorContext(ctx, "Failed to create entry from recurring payment",
				applog.FieldRecurringID, rp.ID,
				applog.FieldTitle, rp.Title,
				applog.FieldError, err)
			continue
		}
		if !created {
			report.Skipped++
			slog.DebugContext(ctx, "Occurrence already exists",
				applog.FieldRecurringID, rp.ID,
				"date", on.String())
			continue
		}

		report.Created++
		report.Entries = append(report.Entries, entry)
		slog.InfoContext(ctx, "Created entry from recurring payment",
			applog.FieldRecurringID, rp.ID,
			applog.FieldKind, entry.Kind,
			applog.FieldEntryID, entry.ID,
			applog.FieldAmountCents, entry.Amount.Cents,
			"frequency", rp.Every,
			"date", on.String())

		publish(ctx, p.publisher, core.EventCreated, entry)
	}

	report.Status = core.StatusFor(report.Created, report.Failed)
	if report.Error != "" && report.Status == core.RunOK {
		report.Status = core.RunPartial
	}
	if err := p.finish(ctx, &report); err != nil {
		return report, err
	}

	slog.InfoContext(ctx, "Recurring payment processing complete",
		applog.FieldRunID, report.ID,
		"status", report.Status,
		"checked", report.Checked,
		"created", report.Created,
		"skipped", report.Skipped,
		"failed", report.Failed)
	return report, nil
}

func (p *RecurringProcessor) finish(ctx context.Context, report *RunReport) error {
	report.FinishedAt = time.Now().UTC()
	p.metrics.RecordRecurringRun(string(report.Status), report.Created, report.Skipped, report.Failed)

	// The run row is closed even when ctx was cancelled mid-batch.
	if err := p.store.FinishRun(context.WithoutCancel(ctx), report.RecurringRun); err != nil {
		slog.ErrorContext(ctx, "Failed to close run log", applog.FieldRunID, report.ID, applog.FieldError, err)
		return fmt.Errorf("close run log: %w", err)
	}
	return nil
}
