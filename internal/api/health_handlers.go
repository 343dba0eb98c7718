package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/onnwee/nightpulse/internal/health"
)

// HealthHandlers holds the dependency probes for liveness and
// readiness endpoints.
type HealthHandlers struct {
	checkers map[string]health.Checker
}

// NewHealthHandlers creates a new HealthHandlers instance. Checkers
// are keyed by dependency name ("database", "redis").
func NewHealthHandlers(checkers map[string]health.Checker) *HealthHandlers {
	return &HealthHandlers{checkers: checkers}
}

// Health handles GET /health: process liveness only, no dependency
// probes, so orchestrators never restart a pod over a flaky database.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r.Context(), http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /ready: probes every registered dependency and
// returns 503 if any is down.
func (h *HealthHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.checkers))
	for name, checker := range h.checkers {
		if err := checker.HealthCheck(ctx); err != nil {
			slog.ErrorContext(r.Context(), "readiness probe failed", "dependency", name, "error", err)
			checks[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	overall := "ready"
	if status != http.StatusOK {
		overall = "degraded"
	}
	writeJSON(w, r.Context(), status, map[string]any{
		"status": overall,
		"checks": checks,
	})
}
