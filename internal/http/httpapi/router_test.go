package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"scenerender/internal/http/handlers"
)

func TestRouterFallbacks(t *testing.T) {
	router := NewRouter(&handlers.App{Logger: zerolog.Nop()}, Options{CORSOrigins: []string{"*"}})

	tests := []struct {
		method     string
		path       string
		wantStatus int
		wantError  string
	}{
		{http.MethodGet, "/api/generate", http.StatusMethodNotAllowed, "Method not allowed"},
		{http.MethodDelete, "/api/styles", http.StatusMethodNotAllowed, "Method not allowed"},
		{http.MethodGet, "/api/unknown", http.StatusNotFound, "Endpoint not found"},
		{http.MethodGet, "/nope", http.StatusNotFound, "Endpoint not found"},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != tc.wantStatus {
			t.Fatalf("%s %s: status = %d, want %d", tc.method, tc.path, rec.Code, tc.wantStatus)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s %s: decode: %v", tc.method, tc.path, err)
		}
		if body["error"] != tc.wantError {
			t.Fatalf("%s %s: error = %q, want %q", tc.method, tc.path, body["error"], tc.wantError)
		}
	}
}

func TestRouterServesStylesWithCORS(t *testing.T) {
	router := NewRouter(&handlers.App{Logger: zerolog.Nop()}, Options{CORSOrigins: []string{"*"}})
	req := httptest.NewRequest(http.MethodGet, "/api/styles", nil)
	req.Header.Set("Origin", "https://shop.example")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing X-Request-ID header")
	}
}

func TestRouterPreflight(t *testing.T) {
	router := NewRouter(&handlers.App{Logger: zerolog.Nop()}, Options{CORSOrigins: []string{"*"}})
	req := httptest.NewRequest(http.MethodOptions, "/api/generate", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
}
