// File: internal/handlers/health_handler.go
package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// HealthCheck reports the state of one optional dependency.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	drugCount int
	checks    map[string]HealthCheck
}

// NewHealthHandler reports catalog size and the state of every named check.
// A failing check marks the service degraded.
func NewHealthHandler(drugCount int, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{drugCount: drugCount, checks: checks}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "healthy"
	deps := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			deps[name] = err.Error()
			status = "degraded"
			continue
		}
		deps[name] = "ok"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       status,
		"drugs_loaded": h.drugCount,
		"dependencies": deps,
		"timestamp":    time.Now().UTC(),
	})
}
