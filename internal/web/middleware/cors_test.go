package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsLocalhostOrigin(t *testing.T) {
	tests := []struct {
		origin string
		want   bool
	}{
		{"http://localhost:3000", true},
		{"https://localhost:8443", true},
		{"http://localhost", true},
		{"https://example.com", false},
		{"http://localhost.evil.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			if got := isLocalhostOrigin(tt.origin); got != tt.want {
				t.Errorf("isLocalhostOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestCORSPreflightAndOrigin(t *testing.T) {
	handler := CORS()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	// Preflight short-circuits before the wrapped handler.
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/people", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("preflight status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q, want localhost origin echoed", got)
	}

	// Unknown origins get no Allow-Origin header.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/people", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q for disallowed origin, want empty", got)
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want wrapped handler to run", rec.Code)
	}
}

func TestLocalhostOriginIsLocalhostOnly(t *testing.T) {
	t.Setenv("WEB_ALLOWED_ORIGINS", "https://gate.example.com, https://admin.example.com")
	allowed := parseAllowedOrigins()

	if !isOriginAllowed("https://gate.example.com", allowed) {
		t.Error("configured origin should be allowed")
	}
	if !isOriginAllowed("https://admin.example.com", allowed) {
		t.Error("configured origin should be allowed after trimming")
	}
	if isOriginAllowed("https://other.example.com", allowed) {
		t.Error("unlisted origin should be rejected")
	}
}
