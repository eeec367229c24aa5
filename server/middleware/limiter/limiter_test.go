// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{
		Rate:            0.001,
		Burst:           2,
		IPv4Prefix:      24,
		IPv6Prefix:      48,
		Expiry:          time.Hour,
		CleanupInterval: time.Minute,
		ExcludedPaths:   []string{"/healthz", "/debug/pprof/"},
	}
}

func serve(l *Limiter, remoteAddr, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	rr := httptest.NewRecorder()

	l.Evaluate(rr, req, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	return rr
}

func TestEvaluate_LimitsPerNetwork(t *testing.T) {
	t.Parallel()

	l := New(testOptions())

	assert.Equal(t, http.StatusOK, serve(l, "203.0.113.10:1000", "/").Code)

	second := serve(l, "203.0.113.11:1000", "/")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "2", second.Header().Get(HeaderRateLimitLimit))
	assert.Equal(t, "0", second.Header().Get(HeaderRateLimitRemaining))

	// same /24, bucket is empty
	third := serve(l, "203.0.113.12:1000", "/")
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.NotEmpty(t, third.Header().Get(HeaderRetryAfter))

	// other network has its own bucket
	assert.Equal(t, http.StatusOK, serve(l, "198.51.100.1:1000", "/").Code)
	assert.Equal(t, 2, l.Len())
}

func TestEvaluate_ExcludedPaths(t *testing.T) {
	t.Parallel()

	l := New(testOptions())

	for range 5 {
		assert.Equal(t, http.StatusOK, serve(l, "203.0.113.10:1000", "/healthz").Code)
		assert.Equal(t, http.StatusOK, serve(l, "203.0.113.10:1000", "/debug/pprof/heap").Code)
	}

	assert.Equal(t, 0, l.Len())
}

func TestEvaluate_LocalClients(t *testing.T) {
	t.Parallel()

	l := New(testOptions())

	for range 5 {
		assert.Equal(t, http.StatusOK, serve(l, "127.0.0.1:1000", "/").Code)
	}

	opts := testOptions()
	opts.FilterLocal = true
	strict := New(opts)

	serve(strict, "127.0.0.1:1000", "/")
	serve(strict, "127.0.0.1:1000", "/")
	assert.Equal(t, http.StatusTooManyRequests, serve(strict, "127.0.0.1:1000", "/").Code)
}

func TestCleanupExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	l := New(testOptions())
	l.timeNow = func() time.Time { return now }

	serve(l, "203.0.113.10:1000", "/")
	serve(l, "198.51.100.1:1000", "/")
	require.Equal(t, 2, l.Len())

	now = now.Add(30 * time.Minute)
	serve(l, "198.51.100.1:1000", "/")

	assert.Equal(t, 1, l.cleanupExpired(now.Add(45*time.Minute)))
	assert.Equal(t, 1, l.Len())
}

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"direct public", "203.0.113.5:1234", nil, "203.0.113.5"},
		{"public ignores proxy headers", "203.0.113.5:1234", map[string]string{"X-Real-IP": "1.2.3.4"}, "203.0.113.5"},
		{"trusted proxy X-Real-IP", "10.0.0.1:1234", map[string]string{"X-Real-IP": "1.2.3.4"}, "1.2.3.4"},
		{"trusted proxy X-Forwarded-For", "127.0.0.1:1234", map[string]string{"X-Forwarded-For": "9.9.9.9, 1.2.3.4"}, "1.2.3.4"},
		{"trusted proxy garbage header", "127.0.0.1:1234", map[string]string{"X-Forwarded-For": "nope"}, "127.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr

			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, tt.want, getClientIP(req).String())
		})
	}
}

func TestGetNetwork(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "203.0.113.0/24", getNetwork(net.ParseIP("203.0.113.77"), 24, 48).String())
	assert.Equal(t, "2001:db8:1::/48", getNetwork(net.ParseIP("2001:db8:1:2::1"), 24, 48).String())
}
