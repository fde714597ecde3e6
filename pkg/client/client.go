// Package client provides the API-Sports HTTP client: response caching, a
// minimum interval between requests and classification of every outcome into
// an Envelope.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/soliditysam/apisports-nfl/pkg/cache"
	"github.com/soliditysam/apisports-nfl/pkg/logging"
	"github.com/soliditysam/apisports-nfl/pkg/metrics"
	"github.com/soliditysam/apisports-nfl/pkg/ratelimit"
)

// Prometheus metrics for API-Sports client operations.
var (
	requestsTotal = metrics.Factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "requests_total",
		Help:      "Total upstream requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = metrics.Factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metrics.Namespace,
		Name:      "request_duration_seconds",
		Help:      "Upstream request duration in seconds by endpoint",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = metrics.Factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "errors_total",
		Help:      "Total error envelopes by kind",
	}, []string{"kind"})
)

// Client is the API-Sports client. Get is synchronous; a Client may be shared
// between goroutines but requests from different goroutines are not ordered.
type Client struct {
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	quota      *ratelimit.Tracker
	cache      cache.Store
	ownsCache  bool
	config     Config
	logger     zerolog.Logger
}

// New creates a new API-Sports client. Zero-valued Config fields take their
// DefaultConfig values; a negative MinRequestInterval disables the delay.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute (got %q)", cfg.BaseURL)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	switch {
	case cfg.MinRequestInterval == 0:
		cfg.MinRequestInterval = ratelimit.DefaultInterval
	case cfg.MinRequestInterval < 0:
		cfg.MinRequestInterval = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	logger := logging.NewLogger("apisports-client")

	store, ownsCache := cfg.Cache, false
	if store == nil {
		fileStore, err := cache.NewFileStore(cfg.CacheFile, cache.Options{Expiration: cfg.CacheExpiration})
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		store, ownsCache = fileStore, true
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:   ratelimit.NewLimiter(cfg.MinRequestInterval, logging.NewLogger("ratelimit")),
		quota:     ratelimit.NewTracker(logging.NewLogger("quota")),
		cache:     store,
		ownsCache: ownsCache,
		config:    cfg,
		logger:    logger,
	}, nil
}

// Get requests endpoint with params and classifies the outcome. Failures of any
// kind are reported in the returned Envelope; Get never returns nil.
//
// A fresh cached response is returned without touching the network. Otherwise
// Get waits for the minimum request interval, performs the request and caches
// a successful JSON response.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) *Envelope {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	params = cloneParams(params)
	key := cache.Key{Endpoint: endpoint, Params: params}.String()

	// Step 1: Check Cache
	if env, ok := c.lookup(ctx, key); ok {
		c.logger.Debug().
			Str("endpoint", endpoint).
			Str("key", key).
			Bool("cache_hit", true).
			Msg("Serving cached response")
		return env
	}

	// Step 2: Minimum interval
	if err := c.limiter.Wait(ctx); err != nil {
		return c.fail(&APIError{
			Kind:     KindRequest,
			Message:  "Request failed: " + err.Error(),
			Endpoint: endpoint,
			Params:   params,
			Err:      err,
		})
	}

	// Step 3: Execute HTTP Request
	status, body, err := c.fetch(ctx, endpoint, params)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return c.fail(&APIError{
			Kind:     KindRequest,
			Message:  "Request failed: " + err.Error(),
			Endpoint: endpoint,
			Params:   params,
			Err:      err,
		})
	}

	// Step 4: Classify
	if apiErr := classify(status, body, endpoint, params); apiErr != nil {
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status_code", apiErr.StatusCode).
			Str("kind", string(apiErr.Kind)).
			Msg("API-Sports request error")
		return c.fail(apiErr)
	}

	env := &Envelope{
		Payload: json.RawMessage(body),
		Meta: Metadata{
			FromCache:  false,
			StatusCode: status,
			Endpoint:   endpoint,
			Params:     params,
		},
	}

	// Step 5: Update Cache on success
	c.store(ctx, key, env)

	return env
}

// lookup returns the cached envelope for key. Store failures count as a miss.
func (c *Client) lookup(ctx context.Context, key string) (*Envelope, bool) {
	data, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache get error")
	}
	if !ok {
		return nil, false
	}

	var cached cachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Ignoring undecodable cache entry")
		return nil, false
	}
	return cached.envelope(), true
}

func (c *Client) store(ctx context.Context, key string, env *Envelope) {
	data, err := json.Marshal(cachedResponse{
		Payload:    env.Payload,
		StatusCode: env.Meta.StatusCode,
		Endpoint:   env.Meta.Endpoint,
		Params:     env.Meta.Params,
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to encode cache entry")
		return
	}

	if err := c.cache.Set(ctx, key, data); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache response")
		return
	}
	c.logger.Debug().Str("key", key).Msg("Cached response")
}

// fetch performs the GET and reads the body. The limiter's completion time is
// recorded whatever happens once the request has been attempted.
func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values) (int, []byte, error) {
	defer c.limiter.Done()

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	target := c.config.BaseURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		requestsTotal.WithLabelValues(endpoint, "invalid_request").Inc()
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(APIKeyHeader, c.config.APIKey)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("endpoint", endpoint).Str("url", target).Msg("Executing API-Sports request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return 0, nil, err
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if err := c.quota.UpdateFromHeaders(resp.Header); err != nil {
		c.logger.Debug().Err(err).Msg("Ignoring malformed quota header")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxBodyBytes+1))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(body)) > c.config.MaxBodyBytes {
		return resp.StatusCode, nil, fmt.Errorf("response body exceeds %d bytes", c.config.MaxBodyBytes)
	}

	return resp.StatusCode, body, nil
}

// classify maps a completed response to an APIError, or nil for a usable payload.
func classify(status int, body []byte, endpoint string, params url.Values) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Endpoint:   endpoint,
		Params:     params,
	}

	switch {
	case status == http.StatusUnauthorized:
		apiErr.Kind, apiErr.Message = KindAuthentication, MsgAuthentication
	case status == http.StatusForbidden:
		apiErr.Kind, apiErr.Message = KindForbidden, MsgForbidden
	case status == http.StatusTooManyRequests:
		apiErr.Kind, apiErr.Message = KindRateLimit, MsgRateLimit
	case status != http.StatusOK:
		apiErr.Kind = KindHTTP
		apiErr.Message = fmt.Sprintf("HTTP %d - %s", status, http.StatusText(status))
		apiErr.RawResponse = string(body)
	case !json.Valid(body):
		apiErr.Kind, apiErr.Message = KindParse, MsgParse
		apiErr.RawResponse = string(body)
		apiErr.Err = errors.New("response body is not valid JSON")
	default:
		return nil
	}
	return apiErr
}

func (c *Client) fail(apiErr *APIError) *Envelope {
	errorsTotal.WithLabelValues(string(apiErr.Kind)).Inc()
	return &Envelope{
		Meta: Metadata{
			StatusCode: apiErr.StatusCode,
			Endpoint:   apiErr.Endpoint,
			Params:     apiErr.Params,
		},
		Error: apiErr,
	}
}

func cloneParams(params url.Values) url.Values {
	if params == nil {
		return nil
	}
	out := make(url.Values, len(params))
	for name, values := range params {
		out[name] = append([]string(nil), values...)
	}
	return out
}

// Cache returns the response store.
func (c *Client) Cache() cache.Store {
	return c.cache
}

// Limiter returns the request interval limiter.
func (c *Client) Limiter() *ratelimit.Limiter {
	return c.limiter
}

// Quota returns the account quota reported by the latest response.
func (c *Client) Quota() ratelimit.Quota {
	return c.quota.Quota()
}

// SetHTTPClient sets a custom HTTP client (for testing or custom transports).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Close releases the cache when the client opened it itself.
func (c *Client) Close() error {
	if c.ownsCache {
		return c.cache.Close()
	}
	return nil
}
