package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"finanzas/internal/cache"
	"finanzas/internal/core"
	"finanzas/internal/metrics"
)

const summaryCacheSize = 1024

type summaryKey struct {
	userID int64
	period core.Period
}

// SummaryService builds month summaries and caches them per user and
// period. Writes go through Invalidate so cached months stay correct.
type SummaryService struct {
	store   SummaryStore
	cache   *cache.LRU[summaryKey, core.MonthSummary] // nil when caching is off
	metrics *metrics.Metrics

	// gens counts invalidations per user. A summary computed while the
	// user's generation moved is returned but not cached.
	mu   sync.Mutex
	gens map[int64]uint64
}

// NewSummaryService returns a service caching for ttl. A zero ttl disables
// the cache.
func NewSummaryService(store SummaryStore, ttl time.Duration, m *metrics.Metrics) *SummaryService {
	s := &SummaryService{store: store, metrics: m, gens: make(map[int64]uint64)}
	if ttl > 0 {
		s.cache = cache.NewLRU[summaryKey, core.MonthSummary](summaryCacheSize, ttl)
	}
	return s
}

// Cache exposes the underlying cache for background cleanup. It returns
// nil when caching is disabled.
func (s *SummaryService) Cache() cache.Cleaner {
	if s.cache == nil {
		return nil
	}
	return s.cache
}

// Month returns the summary of one user's month.
func (s *SummaryService) Month(ctx context.Context, userID int64, p core.Period) (core.MonthSummary, error) {
	if err := p.Validate(); err != nil {
		return core.MonthSummary{}, &core.ValidationError{Field: "period", Err: err}
	}
	key := summaryKey{userID: userID, period: p}
	var gen uint64
	if s.cache != nil {
		cached, ok := s.cache.Get(key)
		s.metrics.RecordCacheLookup(ok)
		if ok {
			return cached, nil
		}
		gen = s.generation(userID)
	}

	summary := core.MonthSummary{Period: p}
	from, to := p.Start(), p.End()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.store.GetUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		summary.Budget = u.MonthlyBudget
		return nil
	})
	g.Go(func() error {
		income, expense, err := s.store.SumByKind(gctx, userID, from, to)
		if err != nil {
			return err
		}
		summary.Income, summary.Expense = income, expense
		return nil
	})
	g.Go(func() error {
		rows, err := s.store.CategorySpend(gctx, userID, from, to)
		if err != nil {
			return err
		}
		summary.ByCategory = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.MonthSummary{}, fmt.Errorf("summary %s: %w", p, err)
	}

	if s.cache != nil {
		s.mu.Lock()
		if s.gens[userID] == gen {
			s.cache.Set(key, summary)
		}
		s.mu.Unlock()
	}
	return summary, nil
}

func (s *SummaryService) generation(userID int64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[userID]
}

// Budgets returns only the per-category budget rows of a month.
func (s *SummaryService) Budgets(ctx context.Context, userID int64, p core.Period) ([]core.CategorySpend, error) {
	summary, err := s.Month(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	return summary.Budgets(), nil
}

func (s *SummaryService) Invalidate(userID int64, periods ...core.Period) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[userID]++
	for _, p := range periods {
		s.cache.Delete(summaryKey{userID: userID, period: p})
	}
}

// InvalidateUser drops every cached month of the user.
func (s *SummaryService) InvalidateUser(userID int64) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[userID]++
	s.cache.DeleteFunc(func(k summaryKey) bool { return k.userID == userID })
}
