// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestLoadConfig cannot run in parallel: it mutates the process environment
and the global logger.
*/

// TestLoadConfig verifies defaults, environment overrides and rejection of invalid input.
func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string            // Description of the test case
		env     map[string]string // Environment variables and their values
		wantErr bool              // Whether an error is expected
		check   func(t *testing.T, cfg *ServerConfig)
	}{
		{
			name: "Defaults",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *ServerConfig) {
				t.Helper()
				assert.Equal(t, "localhost", cfg.Basic.Host)
				assert.Equal(t, "8383", cfg.Basic.Port)
				assert.True(t, cfg.Debug.ScopeCookieToHost)
				assert.True(t, cfg.Debug.ExpireClientCookie)
				assert.Equal(t, "/metrics", cfg.Metrics.Path)
				assert.False(t, cfg.Limiter.Enabled)
			},
		},
		{
			name: "Environment overrides",
			env: map[string]string{
				"DEBUGFLAG_HOST":                       "0.0.0.0",
				"DEBUGFLAG_PORT":                       "9000",
				"DEBUGFLAG_DEBUG_EXPIRE_CLIENT_COOKIE": "false",
				"DEBUGFLAG_LOG_OUTPUTS":                "/dev/stdout,/dev/stderr",
				"DEBUGFLAG_LIMITER_EXPIRY":             "10m",
			},
			check: func(t *testing.T, cfg *ServerConfig) {
				t.Helper()
				assert.Equal(t, "0.0.0.0", cfg.Basic.Host)
				assert.Equal(t, "9000", cfg.Basic.Port)
				assert.False(t, cfg.Debug.ExpireClientCookie)
				assert.Equal(t, []string{"/dev/stdout", "/dev/stderr"}, cfg.Log.Outputs)
				assert.Equal(t, 10*time.Minute, cfg.Limiter.Expiry)
			},
		},
		{
			name: "Unix socket",
			env: map[string]string{
				"DEBUGFLAG_UNIXSOCKET":             "/tmp/debugflag.sock",
				"DEBUGFLAG_UNIXSOCKET_PERMISSIONS": "rw-rw----",
			},
			check: func(t *testing.T, cfg *ServerConfig) {
				t.Helper()
				assert.Empty(t, cfg.Basic.Host)
				assert.Equal(t, os.FileMode(0o660), cfg.Basic.UnixSocketPermissions)
			},
		},
		{
			name:    "Unix socket with port",
			env:     map[string]string{"DEBUGFLAG_UNIXSOCKET": "/tmp/debugflag.sock", "DEBUGFLAG_PORT": "9000"},
			wantErr: true,
		},
		{
			name:    "Invalid log level",
			env:     map[string]string{"DEBUGFLAG_LOG_LEVEL": "loud"},
			wantErr: true,
		},
		{
			name:    "Invalid log format",
			env:     map[string]string{"DEBUGFLAG_LOG_FORMAT": "xml"},
			wantErr: true,
		},
		{
			name:    "Invalid debug log level",
			env:     map[string]string{"DEBUGFLAG_DEBUG_LOG_LEVEL": "disabled"},
			wantErr: true,
		},
		{
			name:    "Invalid metrics path",
			env:     map[string]string{"DEBUGFLAG_METRICS_PATH": "metrics"},
			wantErr: true,
		},
		{
			name:    "Metrics path taken by another route",
			env:     map[string]string{"DEBUGFLAG_METRICS_PATH": "/healthz"},
			wantErr: true,
		},
		{
			name:    "Metrics path with a wildcard",
			env:     map[string]string{"DEBUGFLAG_METRICS_PATH": "/{$}"},
			wantErr: true,
		},
		{
			name:    "Invalid limiter prefix",
			env:     map[string]string{"DEBUGFLAG_LIMITER": "true", "DEBUGFLAG_LIMITER_IPV4_PREFIX": "33"},
			wantErr: true,
		},
		{
			name:    "Unparseable bool",
			env:     map[string]string{"DEBUGFLAG_DEV": "maybe"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := &ServerConfig{}

			err := cfg.LoadConfig()
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)

			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

// TestLoadConfig_YAML verifies that the YAML file is read and that the
// environment still wins over it.
func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	err := os.WriteFile(path, []byte(`
basic:
  host: 127.0.0.1
  port: "7000"
debug:
  scopeCookieToHost: false
  logLevel: trace
limiter:
  cleanupInterval: 30s
`), 0o600)
	require.NoError(t, err)

	t.Setenv("DEBUGFLAG_CONFIGFILE", path)
	t.Setenv("DEBUGFLAG_PORT", "7001")

	cfg := &ServerConfig{}
	require.NoError(t, cfg.LoadConfig())

	assert.Equal(t, "127.0.0.1", cfg.Basic.Host)
	assert.Equal(t, "7001", cfg.Basic.Port)
	assert.False(t, cfg.Debug.ScopeCookieToHost)
	assert.Equal(t, zerolog.TraceLevel, cfg.DebugLogLevel())
	assert.Equal(t, 30*time.Second, cfg.Limiter.CleanupInterval)
}

func TestParseFileMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    os.FileMode
		wantErr bool
	}{
		{"", 0o666, false},
		{"660", 0o660, false},
		{"0600", 0o600, false},
		{"rwxr-x---", 0o750, false},
		{"rw-r--r--", 0o644, false},
		{"999", 0, true},
		{"rwx", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()

			got, err := parseFileMode(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, errUnixSocketInvalidPermissions)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildInfoRevision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info buildInfo
		want string
	}{
		{"unstamped", buildInfo{}, "unknown"},
		{"clean", buildInfo{VcsRevision: "0123456789abcdef", VcsTime: "2025-03-01T10:00:00Z"}, "2025-03-01-01234567"},
		{"dirty", buildInfo{VcsRevision: "0123456789abcdef", VcsTime: "2025-03-01T10:00:00Z", VcsModified: true}, "2025-03-01-01234567+dirty"},
		{"short hash", buildInfo{VcsRevision: "abc", VcsTime: "2025-03-01T10:00:00Z"}, "2025-03-01-abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.info.Revision())
		})
	}
}

func TestShouldSkipServerLogging(t *testing.T) {
	t.Parallel()

	cfg := &ServerConfig{}
	cfg.SetDefaults()

	assert.True(t, cfg.ShouldSkipServerLogging("/healthz"))
	assert.True(t, cfg.ShouldSkipServerLogging("/metrics"))
	assert.False(t, cfg.ShouldSkipServerLogging("/"))
	assert.False(t, cfg.ShouldSkipServerLogging("/debug/pprof/heap"))

	cfg.Development.InDevelopment = true
	assert.True(t, cfg.ShouldSkipServerLogging("/debug/pprof/heap"))
}

func TestValidateMetricsPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		wantErr bool
	}{
		{"/metrics", false},
		{"/internal/metrics", false},
		{"/prom-v1.2_x", false},
		{"metrics", true},
		{"/", true},
		{"/metrics/", true},
		{"//metrics", true},
		{"/healthz", true},
		{"/{$}", true},
		{"/{path...}", true},
		{"/my metrics", true},
		{"/debug/pprof/", true},
		{"/debug/metrics", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			err := validateMetricsPath(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, errInvalidMetricsPath)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
