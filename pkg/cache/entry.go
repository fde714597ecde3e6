package cache

import (
	"encoding/json"
	"time"
)

// Entry is a stored value plus the time it was written.
// It is also the on-disk and on-wire representation used by every backend.
type Entry struct {
	// Data is the cached JSON document
	Data json.RawMessage `json:"data"`

	// Timestamp is the write time in seconds since the Unix epoch
	Timestamp float64 `json:"timestamp"`
}

// newEntry stamps data with the given write time.
func newEntry(data json.RawMessage, at time.Time) Entry {
	return Entry{Data: data, Timestamp: unixSeconds(at)}
}

// WrittenAt returns Timestamp as a time.Time.
func (e Entry) WrittenAt() time.Time {
	return fromUnixSeconds(e.Timestamp)
}

// Age returns how long ago the entry was written relative to now.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.WrittenAt())
}

// IsExpired reports whether the entry is at least expiration old.
func (e Entry) IsExpired(now time.Time, expiration time.Duration) bool {
	return e.Age(now) >= expiration
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func fromUnixSeconds(s float64) time.Time {
	return time.Unix(0, int64(s*float64(time.Second)))
}
