package client

import (
	"os"
	"time"

	"github.com/soliditysam/apisports-nfl/pkg/cache"
	"github.com/soliditysam/apisports-nfl/pkg/ratelimit"
)

// DefaultBaseURL is the API-Sports American Football endpoint.
const DefaultBaseURL = "https://v1.american-football.api-sports.io"

// APIKeyHeader carries the API key on every request.
const APIKeyHeader = "x-apisports-key"

// Environment variables read by ConfigFromEnv.
const (
	EnvAPIKey         = "APISPORTS_KEY"
	EnvBaseURL        = "APISPORTS_BASE_URL"
	EnvCacheFile      = "APISPORTS_CACHE_FILE"
	EnvCacheTTL       = "APISPORTS_CACHE_TTL"
	EnvMinInterval    = "APISPORTS_MIN_INTERVAL"
	EnvRequestTimeout = "APISPORTS_TIMEOUT"
)

// DefaultMaxBodyBytes caps response bodies at 16 MiB.
const DefaultMaxBodyBytes = 16 << 20

// Config holds the client configuration.
type Config struct {
	// APIKey is sent in the x-apisports-key header (REQUIRED)
	APIKey string

	// BaseURL is prefixed to every endpoint path
	BaseURL string

	// MinRequestInterval is the minimum time between the end of one upstream
	// request and the start of the next. Zero means ratelimit.DefaultInterval,
	// like the other zero-valued fields; use NoInterval to disable the delay.
	MinRequestInterval time.Duration

	// Timeout bounds a single HTTP request
	Timeout time.Duration

	// MaxBodyBytes caps how much of a response body is read
	MaxBodyBytes int64

	// Cache overrides the response store. When nil, New opens a FileStore at
	// CacheFile with CacheExpiration and closes it in Client.Close.
	Cache           cache.Store
	CacheFile       string
	CacheExpiration time.Duration
}

// NoInterval disables the minimum request interval.
const NoInterval time.Duration = -1

// DefaultConfig returns the configuration matching API-Sports' free tier etiquette.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:             apiKey,
		BaseURL:            DefaultBaseURL,
		MinRequestInterval: ratelimit.DefaultInterval,
		Timeout:            30 * time.Second,
		MaxBodyBytes:       DefaultMaxBodyBytes,
		CacheFile:          cache.DefaultFile,
		CacheExpiration:    cache.DefaultExpiration,
	}
}

// ConfigFromEnv builds a Config from APISPORTS_* environment variables on top of
// DefaultConfig. Durations use time.ParseDuration syntax; unparseable values are
// ignored.
func ConfigFromEnv() Config {
	cfg := DefaultConfig(os.Getenv(EnvAPIKey))
	cfg.BaseURL = getEnv(EnvBaseURL, cfg.BaseURL)
	cfg.CacheFile = getEnv(EnvCacheFile, cfg.CacheFile)
	cfg.CacheExpiration = getEnvDuration(EnvCacheTTL, cfg.CacheExpiration)
	cfg.MinRequestInterval = getEnvDuration(EnvMinInterval, cfg.MinRequestInterval)
	if cfg.MinRequestInterval == 0 {
		cfg.MinRequestInterval = NoInterval
	}
	cfg.Timeout = getEnvDuration(EnvRequestTimeout, cfg.Timeout)
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
