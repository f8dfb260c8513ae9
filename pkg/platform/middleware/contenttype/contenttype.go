// Package contenttype enforces JSON request bodies on mutating endpoints.
package contenttype

import (
	"fmt"
	"net/http"
	"strings"
)

// JSON rejects mutating requests whose Content-Type is not application/json.
// Bodyless methods pass through untouched, so the middleware can sit on a
// whole route group.
func JSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodDelete:
			next.ServeHTTP(w, r)
			return
		}

		contentType := r.Header.Get("Content-Type")
		// Media type parameters such as charset are allowed.
		mediaType, _, _ := strings.Cut(contentType, ";")
		if !strings.EqualFold(strings.TrimSpace(mediaType), "application/json") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnsupportedMediaType)
			_, _ = w.Write(fmt.Appendf(nil,
				`{"error":"%s","error_description":"%s"}`,
				"unsupported_media_type", "Content-Type must be application/json"))
			return
		}

		next.ServeHTTP(w, r)
	})
}
