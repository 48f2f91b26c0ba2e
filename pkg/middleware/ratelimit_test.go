package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loziogigio/omnicommerce/pkg/logger"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func newTestLimiter(t *testing.T, cfg RateLimitConfig) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(cfg, logger.Discard())
	t.Cleanup(rl.Close)
	return rl
}

func TestRateLimit_BlocksAfterBurst(t *testing.T) {
	h := newTestLimiter(t, RateLimitConfig{RPS: 1, Burst: 2}).Middleware(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/catalogue", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
		if rr.Code == http.StatusTooManyRequests {
			assert.Contains(t, rr.Body.String(), "RATE_LIMITED")
			assert.Equal(t, "1", rr.Header().Get("Retry-After"))
		}
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimit_SeparateBucketsPerCaller(t *testing.T) {
	h := newTestLimiter(t, RateLimitConfig{RPS: 1, Burst: 1}).Middleware(okHandler())

	send := func(remote string, claims *Claims) int {
		req := httptest.NewRequest(http.MethodGet, "/catalogue", nil)
		req.RemoteAddr = remote
		if claims != nil {
			req = req.WithContext(WithClaims(req.Context(), claims))
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1", nil))
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1", nil))
	// Same IP but authenticated: keyed by user, not by address.
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1", &Claims{UserID: "u1"}))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:1", nil))
}

func TestClientIP(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8", "192.168.1.5"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "1.2.3.4:5678", "1.2.3.4"},
		{"untrusted forwarded ignored", map[string]string{"X-Forwarded-For": "9.9.9.9"}, "1.2.3.4:1", "1.2.3.4"},
		{"untrusted real ip ignored", map[string]string{"X-Real-IP": "8.8.8.8"}, "1.2.3.4:1", "1.2.3.4"},
		{"trusted proxy", map[string]string{"X-Forwarded-For": "9.9.9.9"}, "10.1.2.3:1", "9.9.9.9"},
		{"spoofed hop left of real client", map[string]string{"X-Forwarded-For": "6.6.6.6, 9.9.9.9, 10.0.0.2"}, "10.1.2.3:1", "9.9.9.9"},
		{"single trusted host", map[string]string{"X-Real-IP": "8.8.8.8"}, "192.168.1.5:1", "8.8.8.8"},
		{"chain of proxies only", map[string]string{"X-Forwarded-For": "10.0.0.9, 10.0.0.2"}, "10.1.2.3:1", "10.0.0.9"},
		{"garbage forwarded", map[string]string{"X-Forwarded-For": "nonsense"}, "10.1.2.3:1", "10.1.2.3"},
		{"mapped ipv4 proxy", map[string]string{"X-Forwarded-For": "9.9.9.9"}, "[::ffff:10.1.2.3]:1", "9.9.9.9"},
		{"no port", nil, "unix-socket", "unix-socket"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req, trusted))
		})
	}
}

func TestClientIP_NoTrustedProxies(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:1"
	req.Header.Set("X-Forwarded-For", "9.9.9.9")

	assert.Equal(t, "10.1.2.3", clientIP(req, nil))
}

func TestRateLimit_SpoofedForwardedForSharesBucket(t *testing.T) {
	h := newTestLimiter(t, RateLimitConfig{RPS: 1, Burst: 1}).Middleware(okHandler())

	send := func(xff string) int {
		req := httptest.NewRequest(http.MethodGet, "/catalogue", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		req.Header.Set("X-Forwarded-For", xff)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send("1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("2.2.2.2"))
}

func TestParseTrustedProxies(t *testing.T) {
	got, err := ParseTrustedProxies([]string{" 10.1.2.3/8 ", "", "::1", "::ffff:192.168.0.1"})
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("::1/128"),
		netip.MustParsePrefix("192.168.0.1/32"),
	}, got)

	_, err = ParseTrustedProxies([]string{"10.0.0.0/33"})
	assert.Error(t, err)
	_, err = ParseTrustedProxies([]string{"proxy.local"})
	assert.ErrorContains(t, err, `trusted proxy "proxy.local"`)
}

func TestRateLimiter_CloseStopsSweep(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{RPS: 1, Burst: 1}, logger.Discard())
	rl.Close()
	rl.Close()

	select {
	case <-rl.done:
	case <-time.After(time.Second):
		t.Fatal("sweep goroutine still running after Close")
	}
}

func TestVisitorStore_Cleanup(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	s := newVisitorStore(1, 1, time.Minute)
	s.nowFunc = func() time.Time { return now }

	s.limiter("ip:a")
	now = now.Add(30 * time.Second)
	s.limiter("ip:b")
	now = now.Add(45 * time.Second)

	s.cleanup()
	assert.Equal(t, 1, s.len())
}
