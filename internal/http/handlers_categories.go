package http

import (
	"net/http"

	"finanzas/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	var kind core.TransactionKind
	if v := r.URL.Query().Get("kind"); v != "" {
		k, err := core.ParseKind(v)
		if err != nil {
			writeError(w, r, &core.ValidationError{Field: "kind", Err: err})
			return
		}
		kind = k
	}
	cats, err := s.deps.Categories.List(r.Context(), userID(r), kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategory(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (req categoryRequest) toCategory() (core.Category, error) {
	limit, err := req.MonthlyLimit.optionalMoney("monthly_limit")
	if err != nil {
		return core.Category{}, err
	}
	return core.Category{
		Name:         req.Name,
		Kind:         core.TransactionKind(req.Kind),
		Icon:         req.Icon,
		MonthlyLimit: limit,
	}, nil
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Kind == "" {
		writeError(w, r, &core.ValidationError{Field: "kind", Err: core.ErrInvalidKind})
		return
	}
	c, err := req.toCategory()
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.deps.Categories.Create(r.Context(), userID(r), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategory(created))
}

// handleUpdateCategory edits name, icon and limit. The kind cannot change.
func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := req.toCategory()
	if err != nil {
		writeError(w, r, err)
		return
	}
	c.ID = id
	updated, err := s.deps.Categories.Update(r.Context(), userID(r), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategory(updated))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Categories.Delete(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
