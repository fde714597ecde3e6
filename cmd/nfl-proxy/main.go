// Command nfl-proxy serves the API-Sports NFL endpoints over HTTP through a
// cached, rate-spaced client.
//
//	GET /nfl/<endpoint>?<params>   envelope JSON, e.g. /nfl/games?league=1&season=2023
//	GET /health                    liveness
//	GET /ready                     cache backend reachable
//	GET /metrics                   Prometheus metrics
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/soliditysam/apisports-nfl/pkg/cache"
	"github.com/soliditysam/apisports-nfl/pkg/client"
	"github.com/soliditysam/apisports-nfl/pkg/logging"
)

const routePrefix = "/nfl"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
	}
	logger := logging.Setup(logging.ConfigFromEnv())

	if err := run(logger); err != nil {
		logger.Fatal().Err(err).Msg("nfl-proxy stopped")
	}
}

func run(logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := client.ConfigFromEnv()
	store, err := openStore(ctx, getEnv("CACHE_BACKEND", "file"), cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	cfg.Cache = store

	apiClient, err := client.New(cfg)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	defer apiClient.Close()

	server := &http.Server{
		Addr:              ":" + getEnv("PORT", "8080"),
		Handler:           newMux(apiClient),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Str("base_url", cfg.BaseURL).Msg("Starting nfl-proxy")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openStore picks the cache backend: file (default), sqlite or redis.
func openStore(ctx context.Context, backend string, cfg client.Config) (cache.Store, error) {
	opts := cache.Options{Expiration: cfg.CacheExpiration}

	switch backend {
	case "file":
		return cache.NewFileStore(cfg.CacheFile, opts)
	case "sqlite":
		return cache.NewSQLiteStore(getEnv("CACHE_SQLITE_PATH", "cache.db"), opts)
	case "redis":
		redisURL := getEnv("REDIS_URL", "localhost:6379")
		redisClient := redis.NewClient(&redis.Options{Addr: redisURL})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", redisURL, err)
		}
		return cache.NewRedisStore(redisClient, getEnv("CACHE_REDIS_PREFIX", cache.DefaultRedisPrefix), opts), nil
	default:
		return nil, fmt.Errorf("unknown CACHE_BACKEND %q (want file, sqlite or redis)", backend)
	}
}

func newMux(apiClient *client.Client) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler(apiClient.Cache()))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle(routePrefix+"/", &proxyHandler{
		client: apiClient,
		logger: logging.NewLogger("nfl-proxy"),
	})
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func readyHandler(store cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if _, err := store.Stats(ctx); err != nil {
			http.Error(w, "cache unavailable: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

// proxyHandler forwards /nfl/<endpoint> to the client. Upstream calls are
// serialized so the minimum interval holds across concurrent HTTP requests.
type proxyHandler struct {
	mu     sync.Mutex
	client *client.Client
	logger zerolog.Logger
}

func (h *proxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	endpoint := strings.TrimPrefix(r.URL.Path, routePrefix)
	if endpoint == "" || endpoint == "/" {
		http.Error(w, "missing endpoint", http.StatusNotFound)
		return
	}

	h.mu.Lock()
	env := h.client.Get(r.Context(), endpoint, r.URL.Query())
	h.mu.Unlock()

	status := http.StatusOK
	if env.OK() {
		if env.Meta.FromCache {
			w.Header().Set("X-Cache", "HIT")
		} else {
			w.Header().Set("X-Cache", "MISS")
		}
	} else {
		status = statusFor(env.Error)
		h.logger.Warn().
			Str("endpoint", endpoint).
			Str("kind", string(env.Error.Kind)).
			Int("status_code", status).
			Msg("Upstream request failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		h.logger.Error().Err(err).Msg("Failed to write response")
	}
}

// statusFor maps an error envelope to the proxy's response status.
func statusFor(apiErr *client.APIError) int {
	switch apiErr.Kind {
	case client.KindAuthentication, client.KindForbidden, client.KindRateLimit:
		return apiErr.StatusCode
	case client.KindHTTP:
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode
		}
		return http.StatusBadGateway
	case client.KindRequest:
		if errors.Is(apiErr, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
