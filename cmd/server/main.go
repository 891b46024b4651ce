// Debate Trainer - scripted debate practice server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/debate-trainer/internal/api"
	"github.com/ashureev/debate-trainer/internal/config"
	"github.com/ashureev/debate-trainer/internal/identity"
	"github.com/ashureev/debate-trainer/internal/janitor"
	"github.com/ashureev/debate-trainer/internal/metrics"
	"github.com/ashureev/debate-trainer/internal/middleware"
	"github.com/ashureev/debate-trainer/internal/shared"
	"github.com/ashureev/debate-trainer/internal/store"
	"github.com/ashureev/debate-trainer/internal/trainer"
	"github.com/ashureev/debate-trainer/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLiteWithRetry(cfg.DBPath, shared.RetryPolicy{
		MaxRetries: cfg.Retry.DatabaseMaxRetries,
		BaseDelay:  cfg.Retry.DatabaseRetryBaseDelay,
	})
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected", "path", cfg.DBPath)

	m, err := metrics.New()
	if err != nil {
		slog.Error("Failed to register metrics", "error", err)
		os.Exit(1)
	}

	views, err := web.NewViews()
	if err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	// Initialize services and handlers.
	svc := trainer.NewService(repo, trainer.WithRecorder(m))
	debateHandler := api.NewDebateHandler(svc, views)
	pagesHandler := api.NewPagesHandler(repo, views)
	healthHandler := api.NewHealthHandler(repo)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.Instrument(m))
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Operational routes skip rate limiting and identity.
	healthHandler.RegisterHealth(r)
	if cfg.MetricsEnabled {
		r.Handle("/metrics", m.Handler())
	}
	r.Handle("/static/*", http.StripPrefix("/static/", web.StaticHandler()))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Requests: cfg.RateLimit.Requests,
			Window:   cfg.RateLimit.Window,
		}))
		r.Use(identity.Middleware(repo, cfg.IsDevelopment()))

		debateHandler.RegisterRoutes(r)
		pagesHandler.RegisterRoutes(r)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start janitor.
	var janitorDone <-chan struct{}
	if cfg.Janitor.Enabled() {
		janitorDone = janitor.Start(ctx, svc, cfg.Janitor.DebateTTL, cfg.Janitor.Interval)
	} else {
		closed := make(chan struct{})
		close(closed)
		janitorDone = closed
		slog.Info("Janitor disabled", "debate_ttl", cfg.Janitor.DebateTTL)
	}

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	<-janitorDone

	slog.Info("Server stopped successfully")
}
