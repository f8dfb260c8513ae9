// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// This package defines context keys and getter/setter functions for values that are
// typically set by middleware but consumed by services. By keeping this package free
// of net/http dependencies, services can import only what they need without pulling
// in HTTP-related code.
//
// Usage in services (read values):
//
//	principal := requestcontext.Principal(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithPrincipal(ctx, principal)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	"nameledger/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	principalKey       struct{}
	requestIDKey       struct{}
	requestTimeKey     struct{}
	apiVersionKey      struct{}
	tokenAPIVersionKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyPrincipal       = principalKey{}
	ContextKeyRequestID       = requestIDKey{}
	ContextKeyRequestTime     = requestTimeKey{}
	ContextKeyAPIVersion      = apiVersionKey{}
	ContextKeyTokenAPIVersion = tokenAPIVersionKey{}
)

// -----------------------------------------------------------------------------
// Auth context
// -----------------------------------------------------------------------------

// Principal retrieves the authenticated account identity from the context.
// Returns the empty string if not set.
func Principal(ctx context.Context) string {
	if principal, ok := ctx.Value(ContextKeyPrincipal).(string); ok {
		return principal
	}
	return ""
}

// WithPrincipal injects an authenticated account identity into the context.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipal, principal)
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// -----------------------------------------------------------------------------
// Request time
// -----------------------------------------------------------------------------

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (for non-HTTP contexts like workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
// Useful for:
//   - Service unit tests that don't run the full HTTP middleware chain
//   - Workers that need consistent time within a batch operation
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}

// -----------------------------------------------------------------------------
// API version
// -----------------------------------------------------------------------------

// APIVersion retrieves the route's API version from the context.
// Returns the zero value if not set.
func APIVersion(ctx context.Context) domain.APIVersion {
	if v, ok := ctx.Value(ContextKeyAPIVersion).(domain.APIVersion); ok {
		return v
	}
	return ""
}

// WithAPIVersion injects the route's API version into the context.
func WithAPIVersion(ctx context.Context, version domain.APIVersion) context.Context {
	return context.WithValue(ctx, ContextKeyAPIVersion, version)
}

// TokenAPIVersion retrieves the API version the bearer token was minted for.
// Returns the zero value if not set.
func TokenAPIVersion(ctx context.Context) domain.APIVersion {
	if v, ok := ctx.Value(ContextKeyTokenAPIVersion).(domain.APIVersion); ok {
		return v
	}
	return ""
}

// WithTokenAPIVersion injects the bearer token's API version into the context.
func WithTokenAPIVersion(ctx context.Context, version domain.APIVersion) context.Context {
	return context.WithValue(ctx, ContextKeyTokenAPIVersion, version)
}
