package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finanzas/internal/core"
	applog "finanzas/internal/log"
)

type categoryGetter interface {
	GetCategory(ctx context.Context, id int64) (core.Category, error)
}

// checkCategory verifies that categoryID, when set, names a category the
// user can see and that it is of the given kind.
func checkCategory(ctx context.Context, store categoryGetter, userID int64, categoryID *int64, kind core.TransactionKind) error {
	if categoryID == nil {
		return nil
	}
	c, err := store.GetCategory(ctx, *categoryID)
	if errors.Is(err, core.ErrNotFound) {
		return &core.ValidationError{Field: "category_id", Err: core.ErrInvalidCategory}
	}
	if err != nil {
		return fmt.Errorf("load category: %w", err)
	}
	if !c.VisibleTo(userID) || c.Kind != kind {
		return &core.ValidationError{Field: "category_id", Err: core.ErrInvalidCategory}
	}
	return nil
}

// EntryService orchestrates expense and income writes across SQLite, the
// summary cache and AMQP.
type EntryService struct {
	store     EntryStore
	publisher EventPublisher
	summaries SummaryInvalidator
}

// NewEntryService wires the service. publisher and summaries may be nil.
func NewEntryService(store EntryStore, publisher EventPublisher, summaries SummaryInvalidator) *EntryService {
	return &EntryService{store: store, publisher: publisher, summaries: summaries}
}

func (s *EntryService) Create(ctx context.Context, e core.Entry) (core.Entry, error) {
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	if err := checkCategory(ctx, s.store, e.UserID, e.CategoryID, e.Kind); err != nil {
		return core.Entry{}, err
	}

	// Save to SQLite first; events are best effort.
	created, err := s.store.CreateEntry(ctx, e)
	if err != nil {
		return core.Entry{}, fmt.Errorf("save %s: %w", e.Kind, err)
	}

	slog.InfoContext(ctx, "Entry created",
		applog.FieldKind, created.Kind,
		applog.FieldEntryID, created.ID,
		applog.FieldUserID, created.UserID,
		applog.FieldAmountCents, created.Amount.Cents)

	s.changed(ctx, core.EventCreated, created, created.Date.Period())
	return created, nil
}

func (s *EntryService) Get(ctx context.Context, kind core.TransactionKind, userID, id int64) (core.Entry, error) {
	return s.store.GetEntry(ctx, kind, userID, id)
}

// Update replaces the editable fields of an existing entry. Entries
// generated by a recurring payment keep their link.
func (s *EntryService) Update(ctx context.Context, e core.Entry) (core.Entry, error) {
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	old, err := s.store.GetEntry(ctx, e.Kind, e.UserID, e.ID)
	if err != nil {
		return core.Entry{}, err
	}
	if err := checkCategory(ctx, s.store, e.UserID, e.CategoryID, e.Kind); err != nil {
		return core.Entry{}, err
	}

	updated, err := s.store.UpdateEntry(ctx, e)
	if err != nil {
		return core.Entry{}, fmt.Errorf("update %s: %w", e.Kind, err)
	}

	s.changed(ctx, core.EventUpdated, updated, old.Date.Period(), updated.Date.Period())
	return updated, nil
}

func (s *EntryService) Delete(ctx context.Context, kind core.TransactionKind, userID, id int64) error {
	old, err := s.store.GetEntry(ctx, kind, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteEntry(ctx, kind, userID, id); err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}

	slog.InfoContext(ctx, "Entry deleted",
		applog.FieldKind, kind,
		applog.FieldEntryID, id,
		applog.FieldUserID, userID)

	s.changed(ctx, core.EventDeleted, old, old.Date.Period())
	return nil
}

func (s *EntryService) changed(ctx context.Context, event core.EntryEvent, e core.Entry, periods ...core.Period) {
	if s.summaries != nil {
		s.summaries.Invalidate(e.UserID, periods...)
	}
	publish(ctx, s.publisher, event, e)
}

// publish sends the event when a publisher is configured. Failures are
// logged and never fail the caller: the row is already committed.
func publish(ctx context.Context, p EventPublisher, event core.EntryEvent, e core.Entry) {
	if p == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping event", applog.FieldEventType, event)
		return
	}
	if err := p.PublishEntryEvent(ctx, event, e); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			applog.FieldEventType, event,
			applog.FieldKind, e.Kind,
			applog.FieldEntryID, e.ID,
			applog.FieldError, err)
	}
}
