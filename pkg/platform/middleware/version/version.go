// Package version provides middleware for API version extraction.
package version

import (
	"net/http"

	id "nameledger/pkg/domain"
	"nameledger/pkg/requestcontext"
)

// ExtractVersion stamps the API version a subrouter serves into the request
// context. With chi's r.Route("/v1", ...) the route match already fixes the
// version, so downstream middleware and handlers only need it made explicit:
//
//	r.Route("/v1", func(v1 chi.Router) {
//	    v1.Use(version.ExtractVersion(id.APIVersionV1))
//	    // routes
//	})
func ExtractVersion(version id.APIVersion) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithAPIVersion(r.Context(), version)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
