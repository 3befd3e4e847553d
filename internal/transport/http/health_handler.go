package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	service DashboardServiceInterface
	logger  *slog.Logger
	started time.Time
	version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service DashboardServiceInterface, version string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "health")),
		started: time.Now(),
		version: version,
	}
}

// HealthCheck handles GET /api/healthz. Always 200 when the process is
// serving; dataset freshness is reported, not enforced.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := h.service.Status(r.Context())
	render.JSON(w, r, map[string]interface{}{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.started).String(),
		"dataset": status,
	})
}

// ReadinessCheck handles GET /api/healthz/ready. 503 until the first
// refresh has succeeded.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if !h.service.HasData() {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]interface{}{
			"status": "not_ready",
			"reason": "no dataset loaded",
		})
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "ready",
	})
}
