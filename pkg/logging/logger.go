// Package logging configures zerolog for the API-Sports client and its example programs.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	LevelDebug    LogLevel = "debug"
	LevelInfo     LogLevel = "info"
	LevelWarn     LogLevel = "warn"
	LevelError    LogLevel = "error"
	LevelDisabled LogLevel = "disabled"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvLevel  = "APISPORTS_LOG_LEVEL"
	EnvPretty = "APISPORTS_LOG_PRETTY"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output instead of JSON lines.
	Pretty bool

	// Output defaults to os.Stderr when nil.
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// ConfigFromEnv starts from DefaultConfig and applies APISPORTS_LOG_LEVEL and
// APISPORTS_LOG_PRETTY when they are set.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv(EnvLevel); v != "" {
		cfg.Level = LogLevel(v)
	}
	if v := os.Getenv(EnvPretty); v != "" {
		if pretty, err := strconv.ParseBool(v); err == nil {
			cfg.Pretty = pretty
		}
	}
	return cfg
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger derives a logger from the global one tagged with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: cache hit/miss with key, interval waits, outgoing request URLs, quota updates.
// Info: nfl-proxy startup and shutdown.
// Warn: non-200 classifications, cache backend failures that were swallowed, low quota.
// Error: transport failures, exhausted daily quota.
//
// Context Fields:
//   - component: apisports-client, cache, ratelimit, quota, nfl-proxy
//   - endpoint: API path such as /games
//   - status_code: HTTP status code
//   - kind: error envelope kind
//   - cache_hit: whether the envelope came from the store
//   - key: cache key
//   - wait: time slept by the interval limiter
