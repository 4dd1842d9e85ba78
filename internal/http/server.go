// Package http serves the JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"finanzas/internal/auth"
	"finanzas/internal/core"
	applog "finanzas/internal/log"
	"finanzas/internal/metrics"
	"finanzas/internal/middleware/ratelimit"
	"finanzas/internal/middleware/security"
	"finanzas/internal/middleware/trace"
	"finanzas/internal/services"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the API. Metrics and Pinger may be nil.
type Deps struct {
	Users        *services.UserService
	Tokens       *auth.TokenService
	Entries      *services.EntryService
	Transactions *services.TransactionService
	Categories   *services.CategoryService
	Recurring    *services.RecurringService
	Objectives   *services.ObjectiveService
	Summaries    *services.SummaryService
	Metrics      *metrics.Metrics
	Pinger       Pinger
	Logger       *applog.Logger

	RateLimitPerMinute int
}

type Server struct {
	http.Server
	deps     Deps
	limiter  *ratelimit.Limiter
	detector *security.Detector
	now      func() time.Time

	shutdownOnce sync.Once
}

func NewServer(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = applog.New(applog.DefaultConfig())
	}
	s := &Server{
		deps:     deps,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}),
		detector: security.NewDetector(),
		now:      time.Now,
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.Use(s.metricsMiddleware)

	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.Handle("/metrics", deps.Metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	priv := api.NewRoute().Subrouter()
	priv.Use(s.authMiddleware)

	priv.HandleFunc("/me", s.handleGetProfile).Methods(http.MethodGet)
	priv.HandleFunc("/me", s.handleUpdateProfile).Methods(http.MethodPatch)

	for _, res := range []struct {
		path string
		kind core.TransactionKind
	}{{"/expenses", core.KindExpense}, {"/incomes", core.KindIncome}} {
		priv.HandleFunc(res.path, s.handleListEntries(res.kind)).Methods(http.MethodGet)
		priv.HandleFunc(res.path, s.handleCreateEntry(res.kind)).Methods(http.MethodPost)
		priv.HandleFunc(res.path+"/{id:[0-9]+}", s.handleGetEntry(res.kind)).Methods(http.MethodGet)
		priv.HandleFunc(res.path+"/{id:[0-9]+}", s.handleUpdateEntry(res.kind)).Methods(http.MethodPut)
		priv.HandleFunc(res.path+"/{id:[0-9]+}", s.handleDeleteEntry(res.kind)).Methods(http.MethodDelete)
	}

	priv.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)

	priv.HandleFunc("/categories", s.handleListCategories).Methods(http.MethodGet)
	priv.HandleFunc("/categories", s.handleCreateCategory).Methods(http.MethodPost)
	priv.HandleFunc("/categories/{id:[0-9]+}", s.handleUpdateCategory).Methods(http.MethodPut)
	priv.HandleFunc("/categories/{id:[0-9]+}", s.handleDeleteCategory).Methods(http.MethodDelete)

	priv.HandleFunc("/recurring-payments", s.handleListRecurring).Methods(http.MethodGet)
	priv.HandleFunc("/recurring-payments", s.handleCreateRecurring).Methods(http.MethodPost)
	priv.HandleFunc("/recurring-payments/{id:[0-9]+}", s.handleGetRecurring).Methods(http.MethodGet)
	priv.HandleFunc("/recurring-payments/{id:[0-9]+}", s.handleUpdateRecurring).Methods(http.MethodPut)
	priv.HandleFunc("/recurring-payments/{id:[0-9]+}", s.handleDeleteRecurring).Methods(http.MethodDelete)
	priv.HandleFunc("/recurring-runs", s.handleListRuns).Methods(http.MethodGet)

	priv.HandleFunc("/objectives", s.handleListObjectives).Methods(http.MethodGet)
	priv.HandleFunc("/objectives", s.handleCreateObjective).Methods(http.MethodPost)
	priv.HandleFunc("/objectives/evaluate", s.handleEvaluateObjectives).Methods(http.MethodPost)
	priv.HandleFunc("/objectives/{id:[0-9]+}", s.handleGetObjective).Methods(http.MethodGet)
	priv.HandleFunc("/objectives/{id:[0-9]+}", s.handleDeleteObjective).Methods(http.MethodDelete)
	priv.HandleFunc("/achievements", s.handleAchievements).Methods(http.MethodGet)

	priv.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	priv.HandleFunc("/budgets", s.handleBudgets).Methods(http.MethodGet)

	// Outermost first: logger, request id, headers, probe detection, rate limit.
	var h http.Handler = r
	h = s.limiter.Middleware(s.detector.ExtractClientIP, ratelimit.Mutating, func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
	})(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = trace.NewMiddleware(s.detector.ExtractClientIP).Middleware(h)
	h = applog.Middleware(deps.Logger.WithComponent(applog.ComponentHTTP))(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Pinger.Ping(ctx); err != nil {
			applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
			writeMessage(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
