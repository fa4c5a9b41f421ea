package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger is a dependency readiness can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler handles health check requests.
type HealthHandler struct {
	deps  map[string]Pinger
	order []string
}

// NewHealthHandler creates a new HealthHandler. Nil dependencies are skipped,
// so the in-memory store without Redis is always ready.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{deps: make(map[string]Pinger)}
}

// With registers a dependency probed by Readiness.
func (h *HealthHandler) With(name string, p Pinger) *HealthHandler {
	if p == nil {
		return h
	}
	if _, ok := h.deps[name]; !ok {
		h.order = append(h.order, name)
	}
	h.deps[name] = p
	return h
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness returns 200 if every registered dependency answers.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := map[string]string{"status": "ready"}
	for _, name := range h.order {
		if err := h.deps[name].Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, name+" unhealthy", err.Error())
			return
		}
		status[name] = "ok"
	}

	writeJSON(w, http.StatusOK, status)
}
