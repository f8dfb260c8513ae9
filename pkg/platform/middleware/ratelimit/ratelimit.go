// Package ratelimit provides a fixed-window request limiter for the API.
package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"nameledger/pkg/platform/httputil"
	"nameledger/pkg/platform/middleware/metadata"
	"nameledger/pkg/requestcontext"
)

// Counter increments the hit count for a key within the current window and
// reports the new count plus when the window resets.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

// Middleware enforces a per-caller request limit. Authenticated requests are
// keyed by principal, anonymous ones by client IP.
type Middleware struct {
	counter  Counter
	limit    int64
	window   time.Duration
	logger   *slog.Logger
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for testing/demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func New(counter Counter, limit int64, window time.Duration, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		counter: counter,
		limit:   limit,
		window:  window,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// Limit is the http middleware enforcing the configured window.
func (m *Middleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		key := requestcontext.Principal(ctx)
		if key == "" {
			key = metadata.GetClientIP(ctx)
		}
		if key == "" {
			key = metadata.ClientIPFromRequest(r)
		}

		count, resetAt, err := m.counter.Incr(ctx, "ratelimit:"+key, m.window)
		if err != nil {
			// Fail open: a broken limiter must not take the API down.
			m.logger.ErrorContext(ctx, "failed to check rate limit",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			next.ServeHTTP(w, r)
			return
		}

		remaining := m.limit - count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(m.limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if count > m.limit {
			retryAfter := int(time.Until(resetAt).Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			httputil.WriteJSON(w, http.StatusTooManyRequests, &exceededResponse{
				Error:      "rate_limit_exceeded",
				Message:    "Too many requests. Please try again later.",
				RetryAfter: retryAfter,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

type exceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}
