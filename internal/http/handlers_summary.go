package http

import "net/http"

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	p, err := periodParams(r.URL.Query(), s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	sum, err := s.deps.Summaries.Month(r.Context(), userID(r), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummary(sum))
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	p, err := periodParams(r.URL.Query(), s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := s.deps.Summaries.Budgets(r.Context(), userID(r), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"period": p.String(),
		"items":  toCategorySpend(rows),
	})
}
