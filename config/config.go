// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
)

// Global exposes the server configuration.
var Global ServerConfig

// envPrefix is prepended to every `env` tag when reading the environment.
const envPrefix = "DEBUGFLAG_"

// ServerConfig holds the application configuration.
type ServerConfig struct {
	Build buildInfo `yaml:"-"`

	Basic struct {
		Host                     string      `env:"HOST" yaml:"host"`
		Port                     string      `env:"PORT" yaml:"port"`
		UnixSocket               string      `env:"UNIXSOCKET" yaml:"unixSocket"`
		RawUnixSocketPermissions string      `env:"UNIXSOCKET_PERMISSIONS" yaml:"unixSocketPermissions"`
		UnixSocketPermissions    os.FileMode `yaml:"-"`
		UnixSocketUser           string      `env:"UNIXSOCKET_USER" yaml:"unixSocketUser"`
		UnixSocketGroup          string      `env:"UNIXSOCKET_GROUP" yaml:"unixSocketGroup"`
	} `yaml:"basic"`

	Debug struct {
		// Scope the debug cookie to the host the request was addressed to.
		ScopeCookieToHost bool `env:"DEBUG_SCOPE_COOKIE_TO_HOST" yaml:"scopeCookieToHost"`
		// On ?debug=0, also tell the user agent to forget a debug cookie it sent.
		ExpireClientCookie bool `env:"DEBUG_EXPIRE_CLIENT_COOKIE" yaml:"expireClientCookie"`
		// Emit Server-Timing headers for requests in debug mode.
		ServerTiming bool `env:"DEBUG_SERVER_TIMING" yaml:"serverTiming"`
		// Log level used for requests in debug mode.
		LogLevel string `env:"DEBUG_LOG_LEVEL" yaml:"logLevel"`
	} `yaml:"debug"`

	Metrics struct {
		Enabled bool   `env:"METRICS" yaml:"enabled"`
		Path    string `env:"METRICS_PATH" yaml:"path"`
	} `yaml:"metrics"`

	Instance struct {
		StartingTime string `yaml:"-"`
	} `yaml:"-"`

	Development struct {
		InDevelopment bool `env:"DEV" yaml:"inDevelopment"`
	} `yaml:"development"`

	Log struct {
		Level   string   `env:"LOG_LEVEL" yaml:"logLevel"`
		Outputs []string `env:"LOG_OUTPUTS" yaml:"logOutputs"`
		Format  string   `env:"LOG_FORMAT" yaml:"logFormat"`
	} `yaml:"log"`

	Limiter struct {
		Enabled         bool          `env:"LIMITER" yaml:"enabled"`
		Rate            float64       `env:"LIMITER_RATE" yaml:"rate"`
		Burst           int           `env:"LIMITER_BURST" yaml:"burst"`
		FilterLocal     bool          `env:"LIMITER_FILTER_LOCAL" yaml:"filterLocal"`
		IPv4Prefix      int           `env:"LIMITER_IPV4_PREFIX" yaml:"ipv4Prefix"`
		IPv6Prefix      int           `env:"LIMITER_IPV6_PREFIX" yaml:"ipv6Prefix"`
		Expiry          time.Duration `env:"LIMITER_EXPIRY" yaml:"expiry"`
		CleanupInterval time.Duration `env:"LIMITER_CLEANUP_INTERVAL" yaml:"cleanupInterval"`
	} `yaml:"limiter"`
}

// LoadConfig loads the configuration from various sources.
//
// Later sources override earlier ones: defaults, the YAML file, a .env file,
// then the process environment.
func (cfg *ServerConfig) LoadConfig() error {
	configFilePath := resolveConfigPath(parseCommandLineArgs())

	cfg.SetDefaults()

	cfg.Build.load()

	cfg.Instance.StartingTime = time.Now().UTC().Format("2006-01-02 15:04")

	if err := cfg.readYAML(configFilePath); err != nil {
		return fmt.Errorf("error loading YAML config: %w", err)
	}

	useDotEnv()

	if err := readEnv(cfg); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}

	if err := cfg.validateAndSet(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	cfg.setupAudit()

	cfg.print()

	return nil
}

// resolveConfigPath picks the config file path with the correct precedence:
//  1. Command-line flag (-config)
//  2. Environment variable (DEBUGFLAG_CONFIGFILE)
//  3. ./config.yaml, falling back to ./config.yml
func resolveConfigPath(flagValue string) string {
	configFlagUserSet := false

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			configFlagUserSet = true
		}
	})

	if configFlagUserSet {
		return flagValue
	}

	if envVar := os.Getenv(envPrefix + "CONFIGFILE"); envVar != "" {
		return envVar
	}

	if _, err := os.Stat(flagValue); os.IsNotExist(err) {
		if _, statErr := os.Stat("./config.yml"); statErr == nil {
			return "./config.yml"
		}
	}

	return flagValue
}

// readEnv overrides cfg with every DEBUGFLAG_* variable that is set.
func readEnv(cfg *ServerConfig) error {
	return env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix})
}

var devSkippedPathPrefixes = []string{"/debug/pprof/"}

// ShouldSkipServerLogging determines if a request should bypass the logging middleware.
func (cfg *ServerConfig) ShouldSkipServerLogging(path string) bool {
	if path == "/healthz" || path == cfg.Metrics.Path {
		return true
	}

	if cfg.Development.InDevelopment {
		for _, prefix := range devSkippedPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
	}

	return false
}

// GetDurationEncoderOption returns a YAML encoder option that marshals
// time.Duration into a human-readable string format (e.g., "30m", "1h").
func GetDurationEncoderOption() yaml.EncodeOption {
	return yaml.CustomMarshaler[time.Duration](
		func(d time.Duration) ([]byte, error) {
			return yaml.Marshal(d.String())
		},
	)
}

// logConfigSource logs where a configuration layer came from.
func logConfigSource(source, path string) {
	log.Info().
		Str("source", source).
		Str("path", path).
		Msg("Loaded configuration")
}
