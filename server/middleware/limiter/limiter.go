// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"codeberg.org/debugflag/debugflag/config"
)

// Rate limiting header names.
//
// ref: https://www.ietf.org/archive/id/draft-polli-ratelimit-headers-02.html
const (
	HeaderRateLimitLimit     string = "RateLimit-Limit" // This is intended.
	HeaderRateLimitRemaining string = "RateLimit-Remaining"
	HeaderRetryAfter         string = "Retry-After"
)

// Options configures a Limiter.
type Options struct {
	Rate            float64 // tokens per second
	Burst           int
	FilterLocal     bool // also limit loopback and private clients
	IPv4Prefix      int
	IPv6Prefix      int
	Expiry          time.Duration
	CleanupInterval time.Duration

	// ExcludedPaths are never limited. Entries ending in "/" match as prefixes.
	ExcludedPaths []string
}

// OptionsFromConfig reads Options from cfg.Limiter.
func OptionsFromConfig(cfg *config.ServerConfig) Options {
	return Options{
		Rate:            cfg.Limiter.Rate,
		Burst:           cfg.Limiter.Burst,
		FilterLocal:     cfg.Limiter.FilterLocal,
		IPv4Prefix:      cfg.Limiter.IPv4Prefix,
		IPv6Prefix:      cfg.Limiter.IPv6Prefix,
		Expiry:          cfg.Limiter.Expiry,
		CleanupInterval: cfg.Limiter.CleanupInterval,
		ExcludedPaths:   []string{"/healthz", cfg.Metrics.Path},
	}
}

// Limiter holds one token bucket per client network.
type Limiter struct {
	opts    Options
	buckets sync.Map // network string -> *bucket

	cleanupMu     sync.Mutex
	lastCleanupAt time.Time

	timeNow func() time.Time // replaced in tests
}

// bucket is the rate limiter of a single network.
type bucket struct {
	mu         sync.Mutex
	limiter    *rate.Limiter
	lastAccess time.Time
}

// New creates a Limiter.
func New(opts Options) *Limiter {
	return &Limiter{
		opts:    opts,
		timeNow: time.Now,
	}
}

// Evaluate is the limiter middleware.
func (l *Limiter) Evaluate(w http.ResponseWriter, r *http.Request, next http.Handler) {
	defer l.DoCleanup()

	if l.isExcludedPath(r.URL.Path) {
		next.ServeHTTP(w, r)

		return
	}

	ip := getClientIP(r)
	if ip == nil {
		zerolog.Ctx(r.Context()).Warn().
			Str("remote_addr", r.RemoteAddr).
			Msg("Could not determine client IP, not limiting")

		next.ServeHTTP(w, r)

		return
	}

	if isLocal(ip) && !l.opts.FilterLocal {
		next.ServeHTTP(w, r)

		return
	}

	network := getNetwork(ip, l.opts.IPv4Prefix, l.opts.IPv6Prefix).String()

	allowed, remaining := l.take(network)

	w.Header().Set(HeaderRateLimitLimit, strconv.Itoa(l.opts.Burst))
	w.Header().Set(HeaderRateLimitRemaining, strconv.Itoa(remaining))

	if !allowed {
		log.Warn().
			Str("network", network).
			Msg("Rate limit exceeded")

		w.Header().Set(HeaderRetryAfter, strconv.Itoa(l.retryAfterSeconds()))
		http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)

		return
	}

	next.ServeHTTP(w, r)
}

// take consumes one token from the bucket of network.
func (l *Limiter) take(network string) (bool, int) {
	now := l.timeNow()

	value, _ := l.buckets.LoadOrStore(network, &bucket{
		limiter:    rate.NewLimiter(rate.Limit(l.opts.Rate), l.opts.Burst),
		lastAccess: now,
	})

	b, ok := value.(*bucket)
	if !ok {
		return true, l.opts.Burst
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastAccess = now

	allowed := b.limiter.AllowN(now, 1)
	remaining := int(math.Max(0, math.Floor(b.limiter.TokensAt(now))))

	return allowed, remaining
}

func (l *Limiter) retryAfterSeconds() int {
	if l.opts.Rate <= 0 {
		return 1
	}

	return int(math.Ceil(1 / l.opts.Rate))
}

func (l *Limiter) isExcludedPath(path string) bool {
	for _, excluded := range l.opts.ExcludedPaths {
		if excluded == "" {
			continue
		}

		if path == excluded || (strings.HasSuffix(excluded, "/") && strings.HasPrefix(path, excluded)) {
			return true
		}
	}

	return false
}
