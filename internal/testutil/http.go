package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/devhub/internal/app/system/auth"
)

// Principal returns a signed-in principal for handler tests.
func Principal(id, name string) auth.Principal {
	return auth.Principal{
		ID:          id,
		DisplayName: name,
		Email:       strings.ToLower(name) + "@test.dev",
	}
}

// NewRequest creates a request with an optional JSON body.
func NewRequest(method, target string, body any) *http.Request {
	var rdr io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rdr = strings.NewReader(string(b))
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// NewAuthenticatedRequest creates a request with p in its context.
func NewAuthenticatedRequest(method, target string, body any, p auth.Principal) *http.Request {
	return auth.WithPrincipal(NewRequest(method, target, body), p)
}

// DecodeJSON decodes a recorder body into v, failing the test on error.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body=%q)", err, rec.Body.String())
	}
}

// AssertStatus checks the response status code.
func AssertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Errorf("status code: got %d, want %d (body=%q)", rec.Code, want, rec.Body.String())
	}
}
