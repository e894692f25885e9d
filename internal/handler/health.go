package handler

import (
	"context"
	"net/http"
	"time"

	"docassist/internal/httputil"
)

// Pinger is a dependency that can report whether it is reachable
type Pinger func(ctx context.Context) error

// HealthHandler reports liveness and the state of optional dependencies
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler creates a health handler. checks may be empty.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// HealthCheck is a simple health check endpoint. A failing dependency is
// reported but still answers 200; the process itself is alive.
// GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string, len(h.checks))
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			deps[name] = "down"
			continue
		}
		deps[name] = "ok"
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"time":         time.Now(),
		"dependencies": deps,
	})
}
