package utils

import (
	"net/http/httptest"
	"testing"
)

func TestRealClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.5:41234"
	if got := RealClientIP(req); got != "10.0.0.5" {
		t.Fatalf("RealClientIP = %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := RealClientIP(req); got != "203.0.113.7" {
		t.Fatalf("RealClientIP = %q", got)
	}
}
