package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/soliditysam/apisports-nfl/pkg/metrics"
)

// Prometheus metrics for quota tracking.
var (
	quotaRemaining = metrics.Factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metrics.Namespace,
		Name:      "quota_remaining",
		Help:      "Requests remaining in the API-Sports quota by window",
	}, []string{"window"})

	quotaLimit = metrics.Factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metrics.Namespace,
		Name:      "quota_limit",
		Help:      "API-Sports quota size by window",
	}, []string{"window"})
)

// Tracker records the quota reported in response headers. It only observes:
// requests are never held back because of it.
type Tracker struct {
	mu     sync.RWMutex
	quota  Quota
	now    func() time.Time
	logger zerolog.Logger
}

// NewTracker creates a new quota tracker.
func NewTracker(logger zerolog.Logger) *Tracker {
	return &Tracker{
		now:    time.Now,
		logger: logger,
	}
}

// Quota returns the latest recorded quota.
func (t *Tracker) Quota() Quota {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.quota
}

// UpdateFromHeaders parses the API-Sports quota headers. Responses without them
// leave the state unchanged. A malformed header is reported and the rest are
// still applied.
func (t *Tracker) UpdateFromHeaders(headers http.Header) error {
	var firstErr error
	parse := func(name string) (int, bool) {
		raw := headers.Get(name)
		if raw == "" {
			return 0, false
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("parse %s header: %w", name, err)
			}
			return 0, false
		}
		return v, true
	}

	dailyLimit, okDL := parse(HeaderDailyLimit)
	dailyRemaining, okDR := parse(HeaderDailyRemaining)
	minuteLimit, okML := parse(HeaderMinuteLimit)
	minuteRemaining, okMR := parse(HeaderMinuteRemaining)
	if !okDL && !okDR && !okML && !okMR {
		return firstErr
	}

	t.mu.Lock()
	q := t.quota
	if okDL {
		q.DailyLimit = dailyLimit
		quotaLimit.WithLabelValues("daily").Set(float64(dailyLimit))
	}
	if okDR {
		q.DailyRemaining = dailyRemaining
		quotaRemaining.WithLabelValues("daily").Set(float64(dailyRemaining))
	}
	if okML {
		q.MinuteLimit = minuteLimit
		quotaLimit.WithLabelValues("minute").Set(float64(minuteLimit))
	}
	if okMR {
		q.MinuteRemaining = minuteRemaining
		quotaRemaining.WithLabelValues("minute").Set(float64(minuteRemaining))
	}
	q.UpdatedAt = t.now()
	t.quota = q
	t.mu.Unlock()

	switch {
	case q.DailyExhausted():
		t.logger.Error().
			Int("daily_limit", q.DailyLimit).
			Msg("API-Sports daily quota exhausted - requests will be rejected")
	case q.IsLow():
		t.logger.Warn().
			Int("daily_remaining", q.DailyRemaining).
			Int("minute_remaining", q.MinuteRemaining).
			Msg("API-Sports quota running low")
	default:
		t.logger.Debug().
			Int("daily_remaining", q.DailyRemaining).
			Int("minute_remaining", q.MinuteRemaining).
			Msg("API-Sports quota updated")
	}

	return firstErr
}
