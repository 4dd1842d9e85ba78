package http

import (
	"net/http"

	"finanzas/internal/core"
)

func (req recurringRequest) toRecurring(userID int64) (core.RecurringPayment, error) {
	amount, err := req.Amount.money("amount")
	if err != nil {
		return core.RecurringPayment{}, err
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return core.RecurringPayment{}, err
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		return core.RecurringPayment{}, err
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return core.RecurringPayment{
		UserID:     userID,
		Title:      req.Title,
		Amount:     amount,
		Kind:       core.TransactionKind(req.Kind),
		CategoryID: req.CategoryID,
		Every:      core.Frequency(req.Every),
		StartDate:  start,
		EndDate:    end,
		Active:     active,
	}, nil
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Recurring.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]recurringResponse, 0, len(list))
	for _, rp := range list {
		out = append(out, toRecurring(rp))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req recurringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rp, err := req.toRecurring(userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.deps.Recurring.Create(r.Context(), rp)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecurring(created))
}

func (s *Server) handleGetRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rp, err := s.deps.Recurring.Get(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecurring(rp))
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req recurringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rp, err := req.toRecurring(userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	rp.ID = id
	updated, err := s.deps.Recurring.Update(r.Context(), rp)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecurring(updated))
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Recurring.Delete(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r.URL.Query(), "limit", 20)
	if err != nil {
		writeError(w, r, err)
		return
	}
	runs, err := s.deps.Recurring.Runs(r.Context(), min(max(limit, 1), 100))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]runResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, toRun(run))
	}
	writeJSON(w, http.StatusOK, out)
}
