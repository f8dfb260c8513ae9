// Package e2e drives the registry API end to end over HTTP. The suite is
// black-box: it needs a running server (NAMELEDGER_E2E_URL) that shares the
// suite's JWT signing key and starts from an empty registry.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestContext carries shared state between steps: the HTTP client, the
// current bearer token, and the last response.
type TestContext struct {
	baseURL    string
	signingKey []byte
	issuer     string
	client     *http.Client

	token      string
	lastStatus int
	lastBody   map[string]interface{}
	lastHeader http.Header
}

// NewTestContext builds a context for one scenario.
func NewTestContext(baseURL, signingKey, issuer string) *TestContext {
	return &TestContext{
		baseURL:    baseURL,
		signingKey: []byte(signingKey),
		issuer:     issuer,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.token = ""
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.lastHeader = nil
}

// AuthenticateAs mints a token for principal with the shared signing key,
// the same shape the server's auth service issues.
func (tc *TestContext) AuthenticateAs(principal string) error {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   principal,
		Issuer:    tc.issuer,
		Audience:  []string{"v1"},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	signed, err := token.SignedString(tc.signingKey)
	if err != nil {
		return fmt.Errorf("sign test token: %w", err)
	}
	tc.token = signed
	return nil
}

// ClearAuth drops the bearer token for unauthenticated steps.
func (tc *TestContext) ClearAuth() {
	tc.token = ""
}

func (tc *TestContext) do(method, path string, body map[string]interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, tc.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.token != "" {
		req.Header.Set("Authorization", "Bearer "+tc.token)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	tc.lastStatus = resp.StatusCode
	tc.lastHeader = resp.Header
	tc.lastBody = nil
	if len(raw) > 0 {
		var parsed map[string]interface{}
		if err := json.Unmarshal(raw, &parsed); err == nil {
			tc.lastBody = parsed
		}
	}
	return nil
}

func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *TestContext) POST(path string, body map[string]interface{}) error {
	return tc.do(http.MethodPost, path, body)
}

func (tc *TestContext) PATCH(path string, body map[string]interface{}) error {
	return tc.do(http.MethodPatch, path, body)
}

func (tc *TestContext) DELETE(path string) error {
	return tc.do(http.MethodDelete, path, nil)
}

// StatusCode returns the last response status.
func (tc *TestContext) StatusCode() int {
	return tc.lastStatus
}

// Header returns a header from the last response.
func (tc *TestContext) Header(name string) string {
	if tc.lastHeader == nil {
		return ""
	}
	return tc.lastHeader.Get(name)
}

// ResponseField returns a top-level field from the last JSON response body.
func (tc *TestContext) ResponseField(field string) (interface{}, error) {
	if tc.lastBody == nil {
		return nil, fmt.Errorf("last response had no JSON body")
	}
	value, ok := tc.lastBody[field]
	if !ok {
		return nil, fmt.Errorf("response has no field %q", field)
	}
	return value, nil
}

// ResponseContains reports whether the last JSON response body has the field.
func (tc *TestContext) ResponseContains(field string) bool {
	_, ok := tc.lastBody[field]
	return ok
}
