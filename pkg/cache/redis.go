package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/soliditysam/apisports-nfl/pkg/logging"
)

// DefaultRedisPrefix namespaces cache keys inside a shared Redis database.
const DefaultRedisPrefix = "apisports:"

// RedisStore is a Store keeping one Redis string per entry.
//
// Entries are written with a native Redis TTL equal to the expiration window, so
// Redis drops them on its own; the timestamp check on read still applies.
type RedisStore struct {
	redis      *redis.Client
	prefix     string
	expiration time.Duration
	now        func() time.Time
	logger     zerolog.Logger
}

// NewRedisStore creates a Redis-backed store. An empty prefix selects DefaultRedisPrefix.
func NewRedisStore(redisClient *redis.Client, prefix string, opts Options) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	opts = opts.withDefaults()

	return &RedisStore{
		redis:      redisClient,
		prefix:     prefix,
		expiration: opts.Expiration,
		now:        opts.Now,
		logger:     logging.NewLogger("cache").With().Str("backend", BackendRedis).Logger(),
	}
}

func (s *RedisStore) redisKey(key string) string {
	return s.prefix + key
}

// load fetches and decodes the raw entry stored under a full Redis key.
func (s *RedisStore) load(ctx context.Context, redisKey string) (Entry, bool, error) {
	data, err := s.redis.Get(ctx, redisKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return entry, true, nil
}

func (s *RedisStore) lookup(ctx context.Context, key string) (Entry, bool, error) {
	entry, ok, err := s.load(ctx, s.redisKey(key))
	if err != nil {
		CacheErrors.WithLabelValues(BackendRedis, "get").Inc()
		return Entry{}, false, err
	}
	if !ok {
		CacheMisses.WithLabelValues(BackendRedis).Inc()
		return Entry{}, false, nil
	}

	if entry.IsExpired(s.now(), s.expiration) {
		CacheMisses.WithLabelValues(BackendRedis).Inc()
		CachePurged.WithLabelValues(BackendRedis).Inc()
		s.logger.Debug().Str("key", key).Msg("Purged stale entry")
		if err := s.Delete(ctx, key); err != nil {
			return Entry{}, false, err
		}
		return Entry{}, false, nil
	}

	CacheHits.WithLabelValues(BackendRedis).Inc()
	return entry, true, nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	entry, ok, err := s.lookup(ctx, key)
	if !ok {
		return nil, false, err
	}
	return entry.Data, true, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	if err := checkValue(value); err != nil {
		return err
	}

	data, err := json.Marshal(newEntry(value, s.now()))
	if err != nil {
		CacheErrors.WithLabelValues(BackendRedis, "set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := s.redis.Set(ctx, s.redisKey(key), data, s.expiration).Err(); err != nil {
		CacheErrors.WithLabelValues(BackendRedis, "set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// IsCached implements Store.
func (s *RedisStore) IsCached(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.lookup(ctx, key)
	return ok, err
}

// scan calls fn for every Redis key under the store prefix.
func (s *RedisStore) scan(ctx context.Context, fn func(redisKey string) error) error {
	iter := s.redis.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := fn(iter.Val()); err != nil {
			return err
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	return nil
}

// Stats implements Store. Keys that vanish between SCAN and GET are skipped.
// Undecodable values count as stale, since Get can never serve them.
func (s *RedisStore) Stats(ctx context.Context) (Stats, error) {
	now := s.now()
	total, fresh := 0, 0

	err := s.scan(ctx, func(redisKey string) error {
		entry, ok, err := s.load(ctx, redisKey)
		if errors.Is(err, ErrInvalidEntry) {
			s.logger.Warn().Err(err).Str("key", redisKey).Msg("Undecodable cache entry")
			total++
			return nil
		}
		if err != nil || !ok {
			return err
		}
		total++
		if !entry.IsExpired(now, s.expiration) {
			fresh++
		}
		return nil
	})
	if err != nil {
		CacheErrors.WithLabelValues(BackendRedis, "stats").Inc()
		return Stats{}, err
	}
	return newStats(total, fresh), nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, s.redisKey(key)).Err(); err != nil {
		CacheErrors.WithLabelValues(BackendRedis, "delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Clear implements Store. Only keys under the store prefix are removed.
func (s *RedisStore) Clear(ctx context.Context) error {
	err := s.scan(ctx, func(redisKey string) error {
		return s.redis.Del(ctx, redisKey).Err()
	})
	if err != nil {
		CacheErrors.WithLabelValues(BackendRedis, "clear").Inc()
		return err
	}
	return nil
}

// PurgeExpired implements Store. Undecodable values are removed with the stale ones.
func (s *RedisStore) PurgeExpired(ctx context.Context) (int, error) {
	now := s.now()
	removed := 0

	err := s.scan(ctx, func(redisKey string) error {
		entry, ok, err := s.load(ctx, redisKey)
		invalid := errors.Is(err, ErrInvalidEntry)
		if !invalid && (err != nil || !ok || !entry.IsExpired(now, s.expiration)) {
			return err
		}
		if err := s.redis.Del(ctx, redisKey).Err(); err != nil {
			return err
		}
		removed++
		return nil
	})
	CachePurged.WithLabelValues(BackendRedis).Add(float64(removed))
	if err != nil {
		CacheErrors.WithLabelValues(BackendRedis, "purge").Inc()
		return removed, err
	}
	return removed, nil
}

// Close implements Store. The Redis client belongs to the caller and stays open.
func (s *RedisStore) Close() error {
	return nil
}

var _ Store = (*RedisStore)(nil)
