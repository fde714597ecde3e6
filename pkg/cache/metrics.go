package cache

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/soliditysam/apisports-nfl/pkg/metrics"
)

// Backend names used as the "backend" metric label and log field.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

var (
	// CacheHits tracks fresh reads by backend
	CacheHits = metrics.Factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of fresh cache reads",
		},
		[]string{"backend"},
	)

	// CacheMisses tracks absent or stale reads by backend
	CacheMisses = metrics.Factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of cache reads that found nothing fresh",
		},
		[]string{"backend"},
	)

	// CachePurged tracks stale entries removed on read or by PurgeExpired
	CachePurged = metrics.Factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Name:      "cache_purged_total",
			Help:      "Total number of stale cache entries removed",
		},
		[]string{"backend"},
	)

	// CacheErrors tracks backend failures
	CacheErrors = metrics.Factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Name:      "cache_errors_total",
			Help:      "Total number of cache backend errors",
		},
		[]string{"backend", "operation"}, // "load", "get", "set", "delete", "stats", "clear", "purge"
	)
)
