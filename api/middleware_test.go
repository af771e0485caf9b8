package api

import (
	"net/http/httptest"
	"testing"

	"cyberguard-portal/config"
)

func TestClientIPWithoutTrustedProxy(t *testing.T) {
	s := &Server{cfg: &config.AppConfig{}}
	req := httptest.NewRequest("GET", "/api/reports", nil)
	req.RemoteAddr = "203.0.113.7:4444"
	req.Header.Set("X-Forwarded-For", "198.51.100.9")

	if got := s.clientIP(req); got != "203.0.113.7" {
		t.Fatalf("clientIP = %q, spoofed header must be ignored", got)
	}
}

func TestClientIPBehindTrustedProxy(t *testing.T) {
	s := &Server{cfg: &config.AppConfig{
		Security: config.SecurityConfig{TrustedProxies: []string{"10.0.0.0/8"}},
	}}
	req := httptest.NewRequest("GET", "/api/reports", nil)
	req.RemoteAddr = "10.1.2.3:4444"
	req.Header.Set("X-Forwarded-For", "198.51.100.9, 10.1.2.3")

	if got := s.clientIP(req); got != "198.51.100.9" {
		t.Fatalf("clientIP = %q, want forwarded address", got)
	}
}

func TestClientIPFallsBackToRealIP(t *testing.T) {
	s := &Server{cfg: &config.AppConfig{
		Security: config.SecurityConfig{TrustedProxies: []string{"10.0.0.1"}},
	}}
	req := httptest.NewRequest("GET", "/api/reports", nil)
	req.RemoteAddr = "10.0.0.1:4444"
	req.Header.Set("X-Real-IP", "198.51.100.9")

	if got := s.clientIP(req); got != "198.51.100.9" {
		t.Fatalf("clientIP = %q, want real-ip header", got)
	}
}

func TestExtractClientIPFromXFFSkipsTrusted(t *testing.T) {
	trusted := []string{"10.0.0.0/8"}
	if got := extractClientIPFromXFF("198.51.100.9, 10.2.3.4", trusted); got != "198.51.100.9" {
		t.Fatalf("got %q", got)
	}
	if got := extractClientIPFromXFF("10.2.3.4", trusted); got != "" {
		t.Fatalf("got %q, want empty for all-trusted chain", got)
	}
	if got := extractClientIPFromXFF("not-an-ip", trusted); got != "" {
		t.Fatalf("got %q, want empty for garbage", got)
	}
}
