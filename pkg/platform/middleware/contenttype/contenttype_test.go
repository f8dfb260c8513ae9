package contenttype

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newEchoHandler() http.Handler {
	return JSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestJSONRejectsWrongContentType(t *testing.T) {
	handler := newEchoHandler()

	req := httptest.NewRequest(http.MethodPost, "/v1/domains", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415 for text/plain, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unsupported_media_type") {
		t.Fatalf("expected unsupported_media_type error, got %s", rec.Body.String())
	}
}

func TestJSONRejectsMissingContentType(t *testing.T) {
	handler := newEchoHandler()

	req := httptest.NewRequest(http.MethodPost, "/v1/domains", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415 when header missing, got %d", rec.Code)
	}
}

func TestJSONAllowsMediaTypeParameters(t *testing.T) {
	handler := newEchoHandler()

	req := httptest.NewRequest(http.MethodPost, "/v1/domains", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with charset parameter, got %d", rec.Code)
	}
}

func TestJSONSkipsBodylessMethods(t *testing.T) {
	handler := newEchoHandler()

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		req := httptest.NewRequest(method, "/v1/domains/example.com", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s without content type, got %d", method, rec.Code)
		}
	}
}
