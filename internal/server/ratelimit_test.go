package server

import (
	"net/http/httptest"
	"testing"
)

func TestRateLimiterAllowsWithinBudget(t *testing.T) {
	limiter := NewRateLimiter(60, 5, nil)
	defer limiter.Close()

	for i := 0; i < 5; i++ {
		if !limiter.Allow("ip:1.2.3.4") {
			t.Fatalf("request %d within burst should be allowed", i+1)
		}
	}
	if limiter.Allow("ip:1.2.3.4") {
		t.Errorf("request beyond burst capacity should be denied")
	}

	// a different key has its own bucket
	if !limiter.Allow("ip:5.6.7.8") {
		t.Errorf("fresh key should be allowed")
	}
}

func TestRateLimiterStats(t *testing.T) {
	limiter := NewRateLimiter(120, 10, nil)
	defer limiter.Close()

	limiter.Allow("a")
	limiter.Allow("b")

	stats := limiter.GetStats()
	if stats["active_limiters"] != 2 {
		t.Errorf("expected 2 active limiters, got %v", stats["active_limiters"])
	}
	if stats["burst_capacity"] != 10 {
		t.Errorf("expected burst 10, got %v", stats["burst_capacity"])
	}
}

func TestRateLimitKeyExtraction(t *testing.T) {
	tests := []struct {
		name     string
		byAPIKey bool
		byIP     bool
		headers  map[string]string
		remote   string
		expected string
	}{
		{
			name:     "api key header wins",
			byAPIKey: true,
			byIP:     true,
			headers:  map[string]string{"X-API-Key": "secret"},
			remote:   "9.9.9.9:1234",
			expected: "api:secret",
		},
		{
			name:     "bearer token fallback",
			byAPIKey: true,
			headers:  map[string]string{"Authorization": "Bearer tok123"},
			remote:   "9.9.9.9:1234",
			expected: "api:tok123",
		},
		{
			name:     "ip fallback",
			byAPIKey: true,
			byIP:     true,
			remote:   "9.9.9.9:1234",
			expected: "ip:9.9.9.9",
		},
		{
			name:     "nothing enabled",
			remote:   "9.9.9.9:1234",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/v1/analyze", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := rateLimitKey(r, tt.byAPIKey, tt.byIP); got != tt.expected {
				t.Errorf("rateLimitKey = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	r.Header.Set("X-Forwarded-For", "not-an-ip, 203.0.113.7")

	if got := clientIP(r); got != "203.0.113.7" {
		t.Errorf("clientIP = %q, want forwarded address", got)
	}

	r.Header.Del("X-Forwarded-For")
	if got := clientIP(r); got != "10.0.0.1" {
		t.Errorf("clientIP = %q, want remote host", got)
	}
}
