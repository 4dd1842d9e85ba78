package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"finanzas/internal/catalog"
	"finanzas/internal/core"
)

type CategoryService struct {
	store     CategoryStore
	summaries SummaryInvalidator
}

func NewCategoryService(store CategoryStore, summaries SummaryInvalidator) *CategoryService {
	return &CategoryService{store: store, summaries: summaries}
}

// List returns system categories and the user's own.
func (s *CategoryService) List(ctx context.Context, userID int64, kind core.TransactionKind) ([]core.Category, error) {
	return s.store.ListCategories(ctx, userID, kind)
}

func (s *CategoryService) Create(ctx context.Context, userID int64, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.UserID = &userID
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	created, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, err
	}
	s.invalidate(userID)
	return created, nil
}

// Update edits a user-owned category. Kind is immutable. System categories
// are read-only and another user's category reads as not found.
func (s *CategoryService) Update(ctx context.Context, userID int64, c core.Category) (core.Category, error) {
	existing, err := s.owned(ctx, userID, c.ID)
	if err != nil {
		return core.Category{}, err
	}
	existing.Name = strings.TrimSpace(c.Name)
	existing.Icon = c.Icon
	existing.MonthlyLimit = c.MonthlyLimit
	if err := existing.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.store.UpdateCategory(ctx, existing); err != nil {
		return core.Category{}, err
	}
	s.invalidate(userID)
	return existing, nil
}

func (s *CategoryService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteCategory(ctx, userID, id); err != nil {
		return err
	}
	s.invalidate(userID)
	return nil
}

func (s *CategoryService) owned(ctx context.Context, userID, id int64) (core.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, err
	}
	if c.IsSystem() {
		return core.Category{}, fmt.Errorf("category %d is a system category: %w", id, core.ErrForbidden)
	}
	if *c.UserID != userID {
		return core.Category{}, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	return c, nil
}

func (s *CategoryService) invalidate(userID int64) {
	if s.summaries != nil {
		s.summaries.InvalidateUser(userID)
	}
}

// Seed inserts the catalog's system categories that do not exist yet.
func (s *CategoryService) Seed(ctx context.Context, cat *catalog.Catalog) (int, error) {
	seeds := make([]core.Category, 0, len(cat.Categories))
	for _, c := range cat.Categories {
		seeds = append(seeds, core.Category{Name: c.Name, Kind: c.Kind, Icon: c.Icon})
	}
	n, err := s.store.SeedSystemCategories(ctx, seeds)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.InfoContext(ctx, "Seeded system categories", "inserted", n)
	}
	return n, nil
}
