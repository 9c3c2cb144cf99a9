package rpc

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORSMiddleware_AllowAll(t *testing.T) {
	mw := CORSMiddleware([]string{"*"})
	handler := mw(okHandler())

	req := httptest.NewRequest("POST", "/rpc", http.NoBody)
	req.Header.Set("Origin", "https://example.com")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow origin: got %q, want *", got)
	}
}

func TestCORSMiddleware_AllowListed(t *testing.T) {
	mw := CORSMiddleware([]string{"https://beans.example"})
	handler := mw(okHandler())

	req := httptest.NewRequest("POST", "/rpc", http.NoBody)
	req.Header.Set("Origin", "https://beans.example")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://beans.example" {
		t.Errorf("allow origin: got %q", got)
	}

	req = httptest.NewRequest("POST", "/rpc", http.NoBody)
	req.Header.Set("Origin", "https://evil.example")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin got header %q", got)
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	mw := CORSMiddleware([]string{"*"})
	handler := mw(okHandler())

	req := httptest.NewRequest("OPTIONS", "/rpc", http.NoBody)
	req.Header.Set("Origin", "https://example.com")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("preflight status: got %d, want %d", rr.Code, http.StatusNoContent)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Error("expected Access-Control-Allow-Methods on preflight")
	}
}
