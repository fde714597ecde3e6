// Package cache provides time-expiring storage for API-Sports responses.
//
// Entries are keyed by endpoint path and query parameters (see Key) and hold the
// JSON document returned to the caller together with its write time. An entry
// older than the store's expiration window is treated as absent: reading it through
// Get or IsCached deletes it. Nothing is evicted proactively.
//
// Three backends implement Store:
//
//   - FileStore keeps the whole table in memory and rewrites a single JSON file on
//     every mutation. It is the default used by the client.
//   - RedisStore keeps one Redis string per entry.
//   - SQLiteStore keeps one row per entry in an embedded SQLite database.
//
// # Basic Usage
//
//	store, err := cache.NewFileStore("cache.json", cache.Options{Expiration: time.Hour})
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	key := cache.Key{Endpoint: "/games", Params: url.Values{"season": {"2023"}}}.String()
//	if data, ok, err := store.Get(ctx, key); err == nil && ok {
//		// fresh hit
//	}
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// DefaultExpiration is how long entries stay fresh unless Options says otherwise.
const DefaultExpiration = 1 * time.Hour

var (
	// ErrInvalidEntry indicates a stored entry could not be decoded.
	ErrInvalidEntry = errors.New("invalid cache entry")

	// ErrInvalidValue indicates Set was given something that is not a JSON document.
	ErrInvalidValue = errors.New("cache value is not valid JSON")
)

// Store is a persistent key/value table with expiration on read.
type Store interface {
	// Get returns the value for key if present and fresh. A stale entry is deleted
	// and reported as absent.
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)

	// Set stores value under key stamped with the current time, replacing any
	// previous entry.
	Set(ctx context.Context, key string, value json.RawMessage) error

	// IsCached applies the same freshness check and purge as Get without
	// returning the value.
	IsCached(ctx context.Context, key string) (bool, error)

	// Stats counts fresh and stale entries over the whole table. It does not purge.
	Stats(ctx context.Context) (Stats, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// PurgeExpired removes every stale entry and returns how many were removed.
	PurgeExpired(ctx context.Context) (int, error)

	// Close releases the backend.
	Close() error
}

// Options configures a Store backend.
type Options struct {
	// Expiration is the freshness window applied to every entry (default: DefaultExpiration).
	Expiration time.Duration

	// Now overrides the clock, mostly for tests (default: time.Now).
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Expiration <= 0 {
		o.Expiration = DefaultExpiration
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Stats summarizes the freshness of a store's table at one point in time.
//
// Stale entries that no Get or IsCached has touched yet are still counted in
// Total, so FreshRatio can be below 1 even though every read would only ever
// return fresh data. Call PurgeExpired first for a ratio over live entries only.
type Stats struct {
	Total      int     `json:"total"`
	Fresh      int     `json:"fresh"`
	Stale      int     `json:"stale"`
	FreshRatio float64 `json:"fresh_ratio"`
}

func newStats(total, fresh int) Stats {
	s := Stats{Total: total, Fresh: fresh, Stale: total - fresh}
	if total > 0 {
		s.FreshRatio = float64(fresh) / float64(total)
	}
	return s
}

func checkValue(value json.RawMessage) error {
	if !json.Valid(value) {
		return ErrInvalidValue
	}
	return nil
}
