package services

import (
	"context"
	"fmt"

	"finanzas/internal/core"
)

// RecurringService manages recurring payment templates.
type RecurringService struct {
	store RecurringStore
}

func NewRecurringService(store RecurringStore) *RecurringService {
	return &RecurringService{store: store}
}

func (s *RecurringService) Create(ctx context.Context, rp core.RecurringPayment) (core.RecurringPayment, error) {
	rp.LastExecution = core.Date{}
	if err := rp.Validate(); err != nil {
		return core.RecurringPayment{}, err
	}
	if err := checkCategory(ctx, s.store, rp.UserID, rp.CategoryID, rp.Kind); err != nil {
		return core.RecurringPayment{}, err
	}
	created, err := s.store.CreateRecurringPayment(ctx, rp)
	if err != nil {
		return core.RecurringPayment{}, fmt.Errorf("save recurring payment: %w", err)
	}
	return created, nil
}

func (s *RecurringService) Get(ctx context.Context, userID, id int64) (core.RecurringPayment, error) {
	return s.store.GetRecurringPayment(ctx, userID, id)
}

func (s *RecurringService) List(ctx context.Context, userID int64) ([]core.RecurringPayment, error) {
	return s.store.ListRecurringPayments(ctx, userID)
}

// Update replaces the template fields. The execution history is kept.
func (s *RecurringService) Update(ctx context.Context, rp core.RecurringPayment) (core.RecurringPayment, error) {
	existing, err := s.store.GetRecurringPayment(ctx, rp.UserID, rp.ID)
	if err != nil {
		return core.RecurringPayment{}, err
	}
	rp.LastExecution = existing.LastExecution
	rp.CreatedAt = existing.CreatedAt
	if err := rp.Validate(); err != nil {
		return core.RecurringPayment{}, err
	}
	if err := checkCategory(ctx, s.store, rp.UserID, rp.CategoryID, rp.Kind); err != nil {
		return core.RecurringPayment{}, err
	}
	if err := s.store.UpdateRecurringPayment(ctx, rp); err != nil {
		return core.RecurringPayment{}, err
	}
	return rp, nil
}

func (s *RecurringService) Delete(ctx context.Context, userID, id int64) error {
	return s.store.DeleteRecurringPayment(ctx, userID, id)
}

// Runs returns the most recent batch log rows.
func (s *RecurringService) Runs(ctx context.Context, limit int) ([]core.RecurringRun, error) {
	return s.store.ListRuns(ctx, limit)
}
