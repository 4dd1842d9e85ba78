package http

import (
	"net/http"

	"finanzas/internal/core"
)

func (s *Server) handleListObjectives(w http.ResponseWriter, r *http.Request) {
	p, err := optionalPeriod(r.URL.Query(), s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.deps.Objectives.List(r.Context(), userID(r), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toObjectives(list))
}

func (s *Server) handleCreateObjective(w http.ResponseWriter, r *http.Request) {
	var req objectiveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	target, err := req.Target.money("target")
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.deps.Objectives.Create(r.Context(), core.Objective{
		UserID:     userID(r),
		Title:      req.Title,
		Kind:       core.ObjectiveKind(req.Kind),
		CategoryID: req.CategoryID,
		Target:     target,
		Period:     core.Period{Year: req.Year, Month: req.Month},
		Points:     req.Points,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toObjective(created))
}

func (s *Server) handleGetObjective(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	o, err := s.deps.Objectives.Get(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toObjective(o))
}

func (s *Server) handleDeleteObjective(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Objectives.Delete(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleEvaluateObjectives settles the month's objectives on demand.
func (s *Server) handleEvaluateObjectives(w http.ResponseWriter, r *http.Request) {
	p, err := periodParams(r.URL.Query(), s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, report, err := s.deps.Objectives.Evaluate(r.Context(), userID(r), p, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, evaluationResponse{
		Objectives: toObjectives(list),
		Evaluated:  report.Evaluated,
		Achieved:   report.Achieved,
		Failed:     report.Failed,
	})
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r.URL.Query(), "limit", 50)
	if err != nil {
		writeError(w, r, err)
		return
	}
	points, logs, err := s.deps.Objectives.Achievements(r.Context(), userID(r), min(max(limit, 1), 200))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAchievements(points, logs))
}
