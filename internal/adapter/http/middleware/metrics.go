package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// RequestObserver receives per-request measurements. It is implemented by
// metrics.Metrics.
type RequestObserver interface {
	ObserveRequest(method, path string, status int, took time.Duration)
	RequestStarted() func()
}

// MetricsMiddleware records HTTP metrics.
type MetricsMiddleware struct {
	observer RequestObserver
}

// NewMetricsMiddleware creates a new MetricsMiddleware.
func NewMetricsMiddleware(observer RequestObserver) *MetricsMiddleware {
	return &MetricsMiddleware{observer: observer}
}

// Wrap wraps an http.Handler with request metrics.
func (m *MetricsMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		done := m.observer.RequestStarted()
		defer done()

		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		m.observer.ObserveRequest(r.Method, routePath(r), wrapped.statusCode, time.Since(start))
	})
}

// routePath prefers the matched chi pattern and falls back to normalizePath.
func routePath(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return normalizePath(r.URL.Path)
}

// normalizePath replaces the id segment of /api/v1/{collection}/{id}/... so
// label cardinality stays bounded.
func normalizePath(path string) string {
	const prefix = "/api/v1/"
	if !strings.HasPrefix(path, prefix) {
		return path
	}

	segments := strings.Split(strings.TrimPrefix(path, prefix), "/")
	if len(segments) < 2 || segments[1] == "" || segments[0] == "reports" {
		return path
	}
	segments[1] = ":id"
	return prefix + strings.Join(segments, "/")
}
