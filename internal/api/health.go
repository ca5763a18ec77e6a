package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/tiny-arcade/internal/store"
	"github.com/go-chi/chi/v5"
)

const healthCheckTimeout = 5 * time.Second

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	results store.Results
	version string
}

// NewHealthHandler creates a new health handler. results may be nil when
// the leaderboard is disabled.
func NewHealthHandler(results store.Results, version string) *HealthHandler {
	return &HealthHandler{results: results, version: version}
}

// Health returns the health status of the API and its dependencies.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]string{"api": "ok"}
	status := map[string]interface{}{
		"status":    "healthy",
		"version":   h.version,
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	}
	statusCode := http.StatusOK

	if h.results == nil {
		checks["database"] = "disabled"
	} else if err := h.results.Ping(ctx); err != nil {
		slog.Error("Health check failed", "error", err)
		status["status"] = "degraded"
		checks["database"] = "unreachable"
		statusCode = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	JSON(w, statusCode, status)
}

// RegisterHealth registers the health check routes.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/api/health", h.Health)
}
