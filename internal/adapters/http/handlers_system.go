package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/csrf"
)

// healthTimeout bounds the store ping.
const healthTimeout = 2 * time.Second

// handleRoot lists the API surface.
func (s *server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeOK(w, http.StatusOK, "Gym Management API", map[string]any{
		"version": s.version,
		"endpoints": map[string]string{
			"health":     "GET /api/v1/health",
			"statistics": "GET /api/v1/statistics",
			"members":    "GET|POST /api/v1/members",
			"member":     "GET|PUT|DELETE /api/v1/members/{id}",
			"payments":   "GET|POST /api/v1/members/{id}/payments",
			"export":     "GET /api/v1/export/members?format=csv|html",
			"email":      "POST /api/v1/export/members/email",
			"perf":       "GET /api/v1/admin/perf",
			"metrics":    "GET /metrics",
		},
	})
}

// handleHealth reports liveness and, when a store is attached, reachability.
// POST: 200 when healthy, 503 when the store ping fails
func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	now := s.deps.Now()
	body := map[string]any{
		"timestamp": now,
		"uptime":    now.Sub(s.started).Round(time.Second).String(),
	}
	if s.deps.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := s.deps.DB.PingContext(ctx); err != nil {
			body["database"] = "unreachable"
			writeJSON(w, http.StatusServiceUnavailable, envelope{Success: false, Error: "database unreachable", Data: body})
			return
		}
		body["database"] = "ok"
	}
	writeOK(w, http.StatusOK, "API is healthy", body)
}

// handleCSRFToken hands browser clients the token to echo in X-CSRF-Token
// or the gorilla.csrf.Token form field.
func (s *server) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	writeOK(w, http.StatusOK, "", map[string]string{"token": csrf.Token(r)})
}

// handlePerfSnapshot serves GET /api/v1/admin/perf?window=15m&top=10.
func (s *server) handlePerfSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.deps.Collector == nil {
		writeError(w, http.StatusNotFound, "performance collection is disabled", nil)
		return
	}
	window := 15 * time.Minute
	if raw := r.URL.Query().Get("window"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			respondError(w, r, newBadRequest("invalid window", "window must be a positive duration such as 15m"))
			return
		}
		window = d
	}
	top := 10
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			respondError(w, r, newBadRequest("invalid top", "top must be between 1 and 100"))
			return
		}
		top = n
	}
	writeOK(w, http.StatusOK, "", s.deps.Collector.Snapshot(time.Now().Add(-window), top))
}
