package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"finanzas/internal/core"
	applog "finanzas/internal/log"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", applog.FieldError, err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// badRequest is returned for bodies and query strings that cannot be decoded.
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

// writeError maps domain errors to HTTP statuses. Unknown errors are logged
// and reported as 500 without leaking their text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		br *badRequest
		ve validator.ValidationErrors
		fe *core.ValidationError
	)
	switch {
	case errors.As(err, &br):
		writeMessage(w, http.StatusBadRequest, br.msg)
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Details: validationDetails(ve)})
	case errors.As(err, &fe):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "validation failed",
			Details: map[string]string{fe.Field: fe.Err.Error()},
		})
	case core.IsValidation(err):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, core.ErrConflict):
		writeMessage(w, http.StatusConflict, "already exists")
	case errors.Is(err, core.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, core.ErrUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}
