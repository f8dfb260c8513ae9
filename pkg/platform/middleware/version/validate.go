package version

import (
	"fmt"
	"log/slog"
	"net/http"

	id "nameledger/pkg/domain"
	"nameledger/pkg/requestcontext"
)

func writeVersionError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// ValidateTokenVersion rejects tokens minted for a newer API version than the
// route serves. Older tokens keep working on newer routes, so clients can
// upgrade without re-authenticating, but a token scoped to a newer surface
// cannot be replayed against an older one.
//
// It needs the route version from ExtractVersion and the token version from
// the auth middleware, so it must run after both:
//
//	v1.Group(func(r chi.Router) {
//	    r.Use(auth.RequireAuth(...))
//	    r.Use(version.ValidateTokenVersion(logger))
//	    // protected routes
//	})
func ValidateTokenVersion(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			routeVersion := requestcontext.APIVersion(ctx)
			if routeVersion.IsNil() {
				// ExtractVersion did not run, which is a wiring bug.
				logger.ErrorContext(ctx, "version validation failed: route version not set",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeVersionError(w, http.StatusInternalServerError, "server_error", "route version not configured")
				return
			}

			tokenVersion := requestcontext.TokenAPIVersion(ctx)
			if tokenVersion.IsNil() {
				// Tokens from before versioning carry no claim.
				tokenVersion = id.APIVersionV1
			}

			if !routeVersion.IsAtLeast(tokenVersion) {
				logger.WarnContext(ctx, "cross-version token replay rejected",
					"token_version", tokenVersion.String(),
					"route_version", routeVersion.String(),
					"request_id", requestcontext.RequestID(ctx),
					"principal", requestcontext.Principal(ctx),
				)
				writeVersionError(w, http.StatusForbidden, "invalid_token",
					"token API version not compatible with this endpoint version")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
