package http

import (
	"net/http"

	"finanzas/internal/core"
)

func (req entryRequest) toEntry(kind core.TransactionKind, userID int64) (core.Entry, error) {
	amount, err := req.Amount.money("amount")
	if err != nil {
		return core.Entry{}, err
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return core.Entry{}, err
	}
	return core.Entry{
		Kind:       kind,
		UserID:     userID,
		CategoryID: req.CategoryID,
		Title:      req.Title,
		Amount:     amount,
		Date:       date,
		Note:       req.Note,
	}, nil
}

// handleListEntries is the transaction view narrowed to one kind.
func (s *Server) handleListEntries(kind core.TransactionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := transactionFilter(r.URL.Query(), userID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		f.Kind = kind
		page, err := s.deps.Transactions.List(r.Context(), f)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toTransactionPage(page))
	}
}

func (s *Server) handleCreateEntry(kind core.TransactionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req entryRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		e, err := req.toEntry(kind, userID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		created, err := s.deps.Entries.Create(r.Context(), e)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toEntry(created))
	}
}

func (s *Server) handleGetEntry(kind core.TransactionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		e, err := s.deps.Entries.Get(r.Context(), kind, userID(r), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toEntry(e))
	}
}

func (s *Server) handleUpdateEntry(kind core.TransactionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req entryRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		e, err := req.toEntry(kind, userID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		e.ID = id
		updated, err := s.deps.Entries.Update(r.Context(), e)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toEntry(updated))
	}
}

func (s *Server) handleDeleteEntry(kind core.TransactionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.deps.Entries.Delete(r.Context(), kind, userID(r), id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := transactionFilter(r.URL.Query(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := s.deps.Transactions.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionPage(page))
}
