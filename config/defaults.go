// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import "time"

const (
	// Default limiter refill rate in tokens per second.
	defaultLimiterRate = 2.0
	// Default limiter bucket size.
	defaultLimiterBurst = 120
	// Default idle time before a limiter bucket is dropped, in minutes.
	defaultLimiterExpiryMinutes = 60
	// Default interval between limiter cleanup runs, in minutes.
	defaultLimiterCleanupMinutes = 5
)

// SetDefaults populates the configuration with default values.
func (cfg *ServerConfig) SetDefaults() {
	// Host and Port are filled in by validateAndSet unless a unix socket is used.
	cfg.Basic.Host = ""
	cfg.Basic.Port = ""

	cfg.Debug.ScopeCookieToHost = true
	cfg.Debug.ExpireClientCookie = true
	cfg.Debug.ServerTiming = true
	cfg.Debug.LogLevel = "debug"

	cfg.Metrics.Enabled = true
	cfg.Metrics.Path = "/metrics"

	cfg.Development.InDevelopment = false

	cfg.Log.Level = "info"
	cfg.Log.Outputs = []string{"/dev/stderr"}
	cfg.Log.Format = "console"

	cfg.Limiter.Enabled = false
	cfg.Limiter.Rate = defaultLimiterRate
	cfg.Limiter.Burst = defaultLimiterBurst
	cfg.Limiter.FilterLocal = false
	cfg.Limiter.IPv4Prefix = 24
	cfg.Limiter.IPv6Prefix = 48
	cfg.Limiter.Expiry = defaultLimiterExpiryMinutes * time.Minute
	cfg.Limiter.CleanupInterval = defaultLimiterCleanupMinutes * time.Minute
}
