// Package ratelimit enforces a minimum delay between outbound API-Sports requests
// and records the account quota reported in response headers.
//
// The delay is measured from the completion of the previous request, not from its
// start, so a slow response does not let the next call through early.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/soliditysam/apisports-nfl/pkg/metrics"
)

// DefaultInterval is the API-Sports friendly spacing between two requests.
const DefaultInterval = 1 * time.Second

var (
	waitsTotal = metrics.Factory.NewCounter(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "ratelimit_waits_total",
		Help:      "Total number of requests delayed by the interval limiter",
	})

	waitSeconds = metrics.Factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: metrics.Namespace,
		Name:      "ratelimit_wait_seconds",
		Help:      "Time spent waiting for the minimum request interval",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})
)

// Limiter spaces requests by a fixed interval. The zero interval disables it.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time

	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	logger zerolog.Logger
}

// NewLimiter creates a limiter that keeps at least interval between the end of one
// request and the start of the next.
func NewLimiter(interval time.Duration, logger zerolog.Logger) *Limiter {
	return &Limiter{
		interval: interval,
		now:      time.Now,
		sleep:    sleepContext,
		logger:   logger,
	}
}

// Interval returns the configured minimum spacing.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// LastRequest returns the completion time recorded by the latest Done call.
// It is the zero time before the first request.
func (l *Limiter) LastRequest() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

// Remaining reports how long Wait would block if called now.
func (l *Limiter) Remaining() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remainingLocked()
}

func (l *Limiter) remainingLocked() time.Duration {
	if l.interval <= 0 || l.last.IsZero() {
		return 0
	}
	elapsed := l.now().Sub(l.last)
	if elapsed >= l.interval {
		return 0
	}
	return l.interval - elapsed
}

// Wait blocks until the minimum interval since the last completed request has passed.
// It returns the context error if ctx ends first.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	wait := l.remainingLocked()
	l.mu.Unlock()

	if wait <= 0 {
		return nil
	}

	l.logger.Debug().Dur("wait", wait).Msg("Delaying request for minimum interval")
	waitsTotal.Inc()
	waitSeconds.Observe(wait.Seconds())

	return l.sleep(ctx, wait)
}

// Done records the completion of a request. Call it whatever the outcome was.
func (l *Limiter) Done() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last = l.now()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
