package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	applog "finanzas/internal/log"
	"finanzas/internal/services"
	"finanzas/internal/sheets"
)

// TransactionReader loads the current state of an entry.
type TransactionReader interface {
	GetTransaction(ctx context.Context, kind core.TransactionKind, userID, id int64) (core.Transaction, error)
}

// ObjectiveEvaluator re-evaluates a user's month.
type ObjectiveEvaluator interface {
	Evaluate(ctx context.Context, userID int64, p core.Period, now time.Time) ([]core.Objective, services.EvaluationReport, error)
}

// EventWorker reacts to transaction events from the broker.
type EventWorker struct {
	transactions TransactionReader
	objectives   ObjectiveEvaluator
	exporter     sheets.LedgerExporter // nil disables export
	now          func() time.Time
}

func NewEventWorker(transactions TransactionReader, objectives ObjectiveEvaluator, exporter sheets.LedgerExporter) *EventWorker {
	return &EventWorker{
		transactions: transactions,
		objectives:   objectives,
		exporter:     exporter,
		now:          time.Now,
	}
}

// Handle processes one event. A returned error makes the consumer requeue
// the message, so every step must be safe to repeat.
func (w *EventWorker) Handle(ctx context.Context, evt *amqp.TransactionEvent) error {
	period, err := evt.Period()
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Processing transaction event",
		applog.FieldMessageID, evt.MessageID,
		applog.FieldEventType, evt.Type,
		applog.FieldKind, evt.Kind,
		applog.FieldEntryID, evt.ID,
		applog.FieldUserID, evt.UserID,
		applog.FieldPeriod, period.String())

	if w.objectives != nil {
		_, report, err := w.objectives.Evaluate(ctx, evt.UserID, period, w.now())
		if err != nil {
			return fmt.Errorf("evaluate objectives: %w", err)
		}
		if report.Achieved > 0 || report.Failed > 0 {
			slog.InfoContext(ctx, "Objectives settled after event",
				applog.FieldUserID, evt.UserID,
				"achieved", report.Achieved,
				"failed", report.Failed)
		}
	}

	if evt.EventType() == core.EventCreated {
		return w.export(ctx, evt)
	}
	return nil
}

func (w *EventWorker) export(ctx context.Context, evt *amqp.TransactionEvent) error {
	if w.exporter == nil {
		return nil
	}
	t, err := w.transactions.GetTransaction(ctx, evt.EntryKind(), evt.UserID, evt.ID)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted before we got to it.
		slog.WarnContext(ctx, "Transaction gone before export",
			applog.FieldKind, evt.Kind,
			applog.FieldEntryID, evt.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}

	ref, err := w.exporter.Export(ctx, t)
	if err != nil {
		if core.IsValidation(err) {
			slog.ErrorContext(ctx, "Dropping transaction that cannot be exported",
				applog.FieldEntryID, t.ID,
				applog.FieldError, err)
			return nil
		}
		return fmt.Errorf("export transaction: %w", err)
	}

	slog.InfoContext(ctx, "Exported transaction",
		applog.FieldKind, t.Kind,
		applog.FieldEntryID, t.ID,
		applog.FieldAmountCents, t.Amount.Cents,
		"row_ref", ref)
	return nil
}
