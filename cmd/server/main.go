// Tiny Arcade - kids' mini-game server
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

	"github.com/ashureev/tiny-arcade/internal/api"
	"github.com/ashureev/tiny-arcade/internal/config"
	"github.com/ashureev/tiny-arcade/internal/content"
	"github.com/ashureev/tiny-arcade/internal/gameplay"
	"github.com/ashureev/tiny-arcade/internal/identity"
	"github.com/ashureev/tiny-arcade/internal/live"
	"github.com/ashureev/tiny-arcade/internal/middleware"
	"github.com/ashureev/tiny-arcade/internal/store"
	"github.com/ashureev/tiny-arcade/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

const version = "1.0.0"

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
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "version", version)

	// Initialize dependencies.
	sessions := store.NewMemoryStore()

	generator, err := content.NewSeededGenerator()
	if err != nil {
		slog.Error("Failed to initialize content generator", "error", err)
		os.Exit(1)
	}

	hub := live.NewHub()
	opts := []gameplay.Option{gameplay.WithNotifier(hub)}

	var results store.Results
	if cfg.LeaderboardEnabled {
		db, err := store.NewSQLite(cfg.DBPath)
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				slog.Error("Failed to close database", "error", closeErr)
			}
		}()

		if err := db.Ping(context.Background()); err != nil {
			slog.Error("Database health check failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Database connected", "path", cfg.DBPath)

		results = db
		opts = append(opts, gameplay.WithResults(db))
	} else {
		slog.Info("Leaderboard disabled (LEADERBOARD_ENABLED=false)")
	}

	mgr := gameplay.NewManager(sessions, generator, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	if cfg.RateLimit.Requests > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		go limiter.Run(ctx, cfg.RateLimit.Window)
		r.Use(limiter.Handler)
		slog.Info("Rate limiting enabled", "requests", cfg.RateLimit.Requests, "window", cfg.RateLimit.Window)
	}
	r.Use(identity.Middleware)

	// API routes.
	api.Mount(r, api.NewHandler(mgr, results), version)

	// WebSocket endpoint.
	live.NewHandler(hub, mgr, cfg.FrontendURL, cfg.IsDevelopment()).RegisterRoutes(r)

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	// WebSockets are long lived, so there is no WriteTimeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	// Start TTL worker.
	gameplay.StartTTLWorker(ctx, mgr, cfg.SessionTTL, cfg.SessionSweepInterval, hub.CloseSession)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
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
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
