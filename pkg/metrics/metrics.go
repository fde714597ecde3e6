// Package metrics holds the Prometheus registry shared by the API-Sports client packages.
// Collectors are declared next to the code that updates them (client, cache, ratelimit)
// and registered through Factory so that every package ends up in the same registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric exported by this module.
const Namespace = "apisports"

// Registry is the registerer all collectors are added to.
var Registry = prometheus.DefaultRegisterer

// Factory creates collectors registered with Registry.
var Factory = promauto.With(Registry)

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - apisports_requests_total{endpoint, status} (Counter): upstream calls by endpoint and HTTP status
//   - apisports_request_duration_seconds{endpoint} (Histogram): upstream call latency
//   - apisports_errors_total{kind} (Counter): error envelopes by kind
//
// Cache Metrics (pkg/cache):
//   - apisports_cache_hits_total{backend} (Counter): fresh reads
//   - apisports_cache_misses_total{backend} (Counter): absent or stale reads
//   - apisports_cache_purged_total{backend} (Counter): stale entries removed
//   - apisports_cache_errors_total{backend, operation} (Counter): backend failures
//
// Rate Limit Metrics (pkg/ratelimit):
//   - apisports_ratelimit_waits_total (Counter): calls that had to sleep
//   - apisports_ratelimit_wait_seconds (Histogram): time spent sleeping
//   - apisports_quota_limit{window} (Gauge): daily or per-minute quota size from response headers
//   - apisports_quota_remaining{window} (Gauge): requests left in that window
//
// Example Prometheus Queries:
//
//   # Cache hit rate
//   sum(rate(apisports_cache_hits_total[5m])) /
//   (sum(rate(apisports_cache_hits_total[5m])) + sum(rate(apisports_cache_misses_total[5m])))
//
//   # Quota exhaustion
//   rate(apisports_errors_total{kind="rate_limit"}[15m])
//   apisports_quota_remaining{window="daily"} < 10
