// Package latency reports request durations to the platform metrics.
package latency

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Recorder receives one observation per completed request.
type Recorder interface {
	ObserveRequest(method, route string, status int, duration time.Duration)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Middleware times each request and reports it to rec. Observations are
// labeled by chi route pattern rather than raw path to keep metric
// cardinality bounded.
func Middleware(rec Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			rec.ObserveRequest(r.Method, route, sw.status, time.Since(start))
		})
	}
}
