package handlers

import (
	"context"
	"net/http"
	"time"
)

// SystemHandler handles system-related endpoints
type SystemHandler struct {
	app *App
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(app *App) *SystemHandler {
	return &SystemHandler{app: app}
}

// Health pings the database and, when enabled, redis.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"database": "ok", "cache": "disabled"}
	healthy := true

	if err := h.app.DB.Ping(ctx); err != nil {
		h.app.logger(r).WithError(err).Error("Database ping failed")
		status["database"] = "unavailable"
		healthy = false
	}
	if h.app.Cache.Enabled() {
		status["cache"] = "ok"
		if err := h.app.Cache.Ping(ctx); err != nil {
			h.app.logger(r).WithError(err).Warn("Redis ping failed")
			status["cache"] = "unavailable"
		}
	}

	if !healthy {
		status["status"] = "unavailable"
		writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	status["status"] = "ok"
	writeJSON(w, http.StatusOK, status)
}
