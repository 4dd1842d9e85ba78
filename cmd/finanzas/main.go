package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finanzas/internal/auth"
	"finanzas/internal/cache"
	"finanzas/internal/cli"
	apphttp "finanzas/internal/http"
	applog "finanzas/internal/log"
	"finanzas/internal/metrics"
	"finanzas/internal/services"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(applog.ComponentApp)
	logger.Info("Starting finanzas server", applog.FieldOperation, applog.OpStartup)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	m := metrics.New()
	cat := cli.LoadCatalog(logger)

	publisher, closePublisher := cli.Publisher(logger, cfg, m)
	defer closePublisher()

	summaries := services.NewSummaryService(repo, cfg.SummaryCacheTTL, m)
	caches := cache.NewManager()
	if c := summaries.Cache(); c != nil {
		caches.Register(c)
	}
	caches.StartCleanup(time.Minute)
	defer caches.Stop()

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiresIn)
	categories := services.NewCategoryService(repo, summaries)

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if n, err := categories.Seed(seedCtx, cat); err != nil {
		logger.Error("Failed to seed system categories", applog.FieldError, err)
		seedCancel()
		os.Exit(1)
	} else if n > 0 {
		logger.Info("Seeded system categories", "count", n)
	}
	seedCancel()

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Users:              services.NewUserService(repo, tokens, summaries),
		Tokens:             tokens,
		Entries:            services.NewEntryService(repo, publisher, summaries),
		Transactions:       services.NewTransactionService(repo),
		Categories:         categories,
		Recurring:          services.NewRecurringService(repo),
		Objectives:         services.NewObjectiveService(repo, cat, m),
		Summaries:          summaries,
		Metrics:            m,
		Pinger:             repo,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "port", cfg.Port, "events", cfg.EventsEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	cli.Shutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	})
}
