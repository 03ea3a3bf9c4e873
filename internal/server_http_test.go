package internal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestAuthEndpointFlow verifies the code exchange: wrong codes get 403, right
// codes get a token the server then accepts.
func TestAuthEndpointFlow(t *testing.T) {
	server, _ := newTestServer(t, "sesame", 0)

	rec := httptest.NewRecorder()
	server.HandleAuth(rec, httptest.NewRequest("POST", "/auth", strings.NewReader(`{"code":"wrong"}`)))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a wrong code, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	server.HandleAuth(rec, httptest.NewRequest("POST", "/auth", strings.NewReader(`{"code":"sesame"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for the right code, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := server.auth.Verify(resp.Token); err != nil {
		t.Errorf("issued token should verify, got %v", err)
	}
}

// TestAuthEndpointRejectsGet verifies the method guard.
func TestAuthEndpointRejectsGet(t *testing.T) {
	server, _ := newTestServer(t, "sesame", 0)

	rec := httptest.NewRecorder()
	server.HandleAuth(rec, httptest.NewRequest("GET", "/auth", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

// TestAuthCheck verifies the probe reports whether a code is required and
// whether the presented token holds up.
func TestAuthCheck(t *testing.T) {
	open, _ := newTestServer(t, "", 0)
	rec := httptest.NewRecorder()
	open.HandleAuthCheck(rec, httptest.NewRequest("GET", "/auth/check", nil))
	var resp struct {
		Required      bool `json:"required"`
		Authenticated bool `json:"authenticated"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Required || !resp.Authenticated {
		t.Errorf("open server: expected required=false authenticated=true, got %+v", resp)
	}

	locked, _ := newTestServer(t, "sesame", 0)
	rec = httptest.NewRecorder()
	locked.HandleAuthCheck(rec, httptest.NewRequest("GET", "/auth/check", nil))
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Required || resp.Authenticated {
		t.Errorf("locked server: expected required=true authenticated=false, got %+v", resp)
	}
}

// TestHealth verifies the liveness probe shape.
func TestHealth(t *testing.T) {
	server, _ := newTestServer(t, "", 0)
	rec := httptest.NewRecorder()
	server.HandleHealth(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %+v", resp)
	}
}

// TestMetricsEndpoint verifies the counters render as JSON.
func TestMetricsEndpoint(t *testing.T) {
	server, _ := newTestServer(t, "", 0)
	server.metrics.IncPing()
	server.metrics.IncPing()
	server.metrics.IncDismissal()

	rec := httptest.NewRecorder()
	server.MetricsHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	var resp map[string]int64
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["pings_total"] != 2 || resp["dismissals_total"] != 1 {
		t.Errorf("unexpected counters: %+v", resp)
	}
}
