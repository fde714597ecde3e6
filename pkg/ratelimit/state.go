package ratelimit

import (
	"time"
)

// API-Sports quota headers. The requests pair is the daily account quota, the
// RateLimit pair the per-minute one.
const (
	HeaderDailyLimit      = "x-ratelimit-requests-limit"
	HeaderDailyRemaining  = "x-ratelimit-requests-remaining"
	HeaderMinuteLimit     = "X-RateLimit-Limit"
	HeaderMinuteRemaining = "X-RateLimit-Remaining"
)

// QuotaLowRatio marks a quota as low when less than this share of it remains.
const QuotaLowRatio = 0.1

// Quota is the account usage last reported by API-Sports.
// A limit of zero means the header was not seen.
type Quota struct {
	DailyLimit      int       `json:"daily_limit"`
	DailyRemaining  int       `json:"daily_remaining"`
	MinuteLimit     int       `json:"minute_limit"`
	MinuteRemaining int       `json:"minute_remaining"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Known reports whether any quota header has been recorded.
func (q Quota) Known() bool {
	return !q.UpdatedAt.IsZero()
}

// IsStale returns true if the quota was recorded more than maxAge before now.
func (q Quota) IsStale(now time.Time, maxAge time.Duration) bool {
	return !q.Known() || now.Sub(q.UpdatedAt) > maxAge
}

// DailyExhausted reports whether the daily quota is used up. Further requests
// will be answered with 429 until it resets.
func (q Quota) DailyExhausted() bool {
	return q.DailyLimit > 0 && q.DailyRemaining <= 0
}

// IsLow reports whether either window is below QuotaLowRatio.
func (q Quota) IsLow() bool {
	return isLow(q.DailyLimit, q.DailyRemaining) || isLow(q.MinuteLimit, q.MinuteRemaining)
}

func isLow(limit, remaining int) bool {
	if limit <= 0 {
		return false
	}
	return float64(remaining) < float64(limit)*QuotaLowRatio
}
