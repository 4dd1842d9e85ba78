// Package memory is an in-process LedgerExporter used in development and
// tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"finanzas/internal/core"
	ports "finanzas/internal/sheets"
)

var _ ports.LedgerExporter = (*Store)(nil)

type Store struct {
	mu   sync.Mutex
	rows [][]any
	seen map[string]int // kind:id -> row number
}

func New() *Store {
	return &Store{seen: make(map[string]int)}
}

// Export stores the row and returns a synthetic reference. Exporting the
// same transaction twice returns the original reference.
func (s *Store) Export(_ context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s:%d", t.Kind, t.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.seen[key]; ok {
		return fmt.Sprintf("mem:%d", n), nil
	}
	s.rows = append(s.rows, ports.Row(t))
	s.seen[key] = len(s.rows)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of the exported rows.
func (s *Store) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.rows))
	for i, r := range s.rows {
		out[i] = append([]any(nil), r...)
	}
	return out
}
