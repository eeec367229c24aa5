package config

import (
	"errors"
	"os"
	"os/user"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TCP listener used when neither a unix socket nor Host and Port are configured.
const (
	DefaultHost = "localhost"
	DefaultPort = "8383"
)

// validation errors.
var (
	errUnixSocketWithHostPort       = errors.New("unix socket configured - cannot specify Host and Port simultaneously")
	errUnixSocketInvalidPermissions = errors.New("invalid Basic.UnixSocketPermissions value")
	errUnixSocketUserDoesNotExist   = errors.New("user does not exist")
	errUnixSocketGroupDoesNotExist  = errors.New("group does not exist")
	errInvalidLogLevel              = errors.New("invalid Log.Level")
	errInvalidLogFormat             = errors.New("invalid Log.Format, expected console or json")
	errInvalidDebugLogLevel         = errors.New("invalid Debug.LogLevel")
	errInvalidMetricsPath           = errors.New("Metrics.Path must be a plain absolute path that no other route uses")
	errInvalidLimiterRate           = errors.New("Limiter.Rate must be positive")
	errInvalidLimiterBurst          = errors.New("Limiter.Burst must be positive")
	errInvalidIPv4Prefix            = errors.New("IPv4 prefix must be between 0 and 32")
	errInvalidIPv6Prefix            = errors.New("IPv6 prefix must be between 0 and 128")
)

var (
	fileModeOctalRegexp  = regexp.MustCompile(`^0?[0-7]{3}$`)
	fileModeStringRegexp = regexp.MustCompile(`^(?:[r-][w-][x-]){3}$`)
	digitsRegexp         = regexp.MustCompile(`^[0-9]+$`)
	metricsPathRegexp    = regexp.MustCompile(`^(?:/[A-Za-z0-9._~-]+)+$`)
)

// reservedPaths are served by routes other than metrics.
var reservedPaths = []string{"/healthz"}

// validateAndSet validates the server configuration and populates some fields.
func (cfg *ServerConfig) validateAndSet() error {
	if err := cfg.validateListener(); err != nil {
		return err
	}

	if _, err := parseLogLevel(cfg.Log.Level); err != nil {
		return errInvalidLogLevel
	}

	switch cfg.Log.Format {
	case "console", "json":
	default:
		return errInvalidLogFormat
	}

	if _, err := parseLogLevel(cfg.Debug.LogLevel); err != nil {
		return errInvalidDebugLogLevel
	}

	if cfg.Metrics.Enabled {
		if err := validateMetricsPath(cfg.Metrics.Path); err != nil {
			return err
		}
	}

	// Skip validating Limiter configuration if it's not enabled
	if !cfg.Limiter.Enabled {
		return nil
	}

	if cfg.Limiter.Rate <= 0 {
		return errInvalidLimiterRate
	}

	if cfg.Limiter.Burst <= 0 {
		return errInvalidLimiterBurst
	}

	if cfg.Limiter.IPv4Prefix < 0 || cfg.Limiter.IPv4Prefix > 32 {
		return errInvalidIPv4Prefix
	}

	if cfg.Limiter.IPv6Prefix < 0 || cfg.Limiter.IPv6Prefix > 128 {
		return errInvalidIPv6Prefix
	}

	return nil
}

func (cfg *ServerConfig) validateListener() error {
	if cfg.Basic.UnixSocket == "" {
		// Set TCP defaults
		if cfg.Basic.Host == "" {
			cfg.Basic.Host = DefaultHost
			log.Info().
				Str("host", cfg.Basic.Host).
				Msg("Binding to default host")
		}

		if cfg.Basic.Port == "" {
			cfg.Basic.Port = DefaultPort
			log.Info().
				Str("port", cfg.Basic.Port).
				Msg("Using default port")
		}

		return nil
	}

	if cfg.Basic.Host != "" || cfg.Basic.Port != "" {
		return errUnixSocketWithHostPort
	}

	mode, err := parseFileMode(cfg.Basic.RawUnixSocketPermissions)
	if err != nil {
		return err
	}

	cfg.Basic.UnixSocketPermissions = mode

	if cfg.Basic.UnixSocketUser != "" && !userExists(cfg.Basic.UnixSocketUser) {
		return errUnixSocketUserDoesNotExist
	}

	if cfg.Basic.UnixSocketGroup != "" && !groupExists(cfg.Basic.UnixSocketGroup) {
		return errUnixSocketGroupDoesNotExist
	}

	return nil
}

// parseFileMode accepts "", octal ("660", "0660") or symbolic ("rw-rw----") modes.
func parseFileMode(raw string) (os.FileMode, error) {
	switch {
	case raw == "":
		return 0o666, nil
	case fileModeOctalRegexp.MatchString(raw):
		rawModeUint64, _ := strconv.ParseUint(raw, 8, 32)

		return os.FileMode(rawModeUint64), nil
	case fileModeStringRegexp.MatchString(raw):
		mode := os.FileMode(0)

		for i, c := range raw {
			// If permission bit is set
			if c != '-' {
				// Set i-th bit from the end
				const bitsInByte = 8

				mode |= 1 << (bitsInByte - i)
			}
		}

		return mode, nil
	default:
		return 0, errUnixSocketInvalidPermissions
	}
}

func userExists(name string) bool {
	if digitsRegexp.MatchString(name) {
		_, err := user.LookupId(name)

		return err == nil
	}

	_, err := user.Lookup(name)

	return err == nil
}

func groupExists(name string) bool {
	if digitsRegexp.MatchString(name) {
		_, err := user.LookupGroupId(name)

		return err == nil
	}

	_, err := user.LookupGroup(name)

	return err == nil
}

// parseLogLevel accepts the zerolog level names, excluding "disabled".
func parseLogLevel(level string) (zerolog.Level, error) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" || parsed == zerolog.Disabled {
		return zerolog.NoLevel, errInvalidLogLevel
	}

	return parsed, nil
}

// validateMetricsPath rejects paths that are not literal ServeMux patterns or
// that collide with another route.
func validateMetricsPath(path string) error {
	if !metricsPathRegexp.MatchString(path) ||
		slices.Contains(reservedPaths, path) ||
		strings.HasPrefix(path, "/debug/") {
		return errInvalidMetricsPath
	}

	return nil
}
