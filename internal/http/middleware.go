package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"finanzas/internal/auth"
	applog "finanzas/internal/log"
)

// authMiddleware requires a valid bearer token and stores its user id in
// the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="finanzas"`)
			writeMessage(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		userID, err := s.deps.Tokens.ParseToken(strings.TrimSpace(token))
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="finanzas", error="invalid_token"`)
			writeMessage(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := auth.WithUserID(r.Context(), userID)
		ctx = applog.NewContext(ctx, applog.FromContext(ctx).With(applog.FieldUserID, userID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userID returns the authenticated user. Only valid behind authMiddleware.
func userID(r *http.Request) int64 {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}

// metricsMiddleware records request count and latency by route template.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		s.deps.Metrics.ObserveHTTP(r.Method, routeTemplate(r), rw.status, time.Since(start))
	})
}

func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "unmatched"
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return "unmatched"
	}
	return tpl
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
