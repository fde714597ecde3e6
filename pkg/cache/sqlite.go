package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/soliditysam/apisports-nfl/pkg/logging"
)

// SQLiteStore is a Store backed by an embedded SQLite database.
// Each mutation is a single statement, so a successful Set is durable on return.
type SQLiteStore struct {
	db         *sql.DB
	expiration time.Duration
	now        func() time.Time
	logger     zerolog.Logger
}

const createCacheTable = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key TEXT NOT NULL PRIMARY KEY,
	data BLOB NOT NULL,
	timestamp REAL NOT NULL
);
`

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string, opts Options) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	// One connection keeps ":memory:" databases and write ordering consistent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createCacheTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}

	opts = opts.withDefaults()
	return &SQLiteStore{
		db:         db,
		expiration: opts.Expiration,
		now:        opts.Now,
		logger:     logging.NewLogger("cache").With().Str("backend", BackendSQLite).Logger(),
	}, nil
}

func (s *SQLiteStore) lookup(ctx context.Context, key string) (Entry, bool, error) {
	var entry Entry
	var data []byte

	err := s.db.QueryRowContext(ctx,
		`SELECT data, timestamp FROM cache_entries WHERE key = ?`, key,
	).Scan(&data, &entry.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			CacheMisses.WithLabelValues(BackendSQLite).Inc()
			return Entry{}, false, nil
		}
		CacheErrors.WithLabelValues(BackendSQLite, "get").Inc()
		return Entry{}, false, fmt.Errorf("cache get: %w", err)
	}
	entry.Data = data

	if entry.IsExpired(s.now(), s.expiration) {
		CacheMisses.WithLabelValues(BackendSQLite).Inc()
		CachePurged.WithLabelValues(BackendSQLite).Inc()
		s.logger.Debug().Str("key", key).Msg("Purged stale entry")
		if err := s.Delete(ctx, key); err != nil {
			return Entry{}, false, err
		}
		return Entry{}, false, nil
	}

	CacheHits.WithLabelValues(BackendSQLite).Inc()
	return entry, true, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	entry, ok, err := s.lookup(ctx, key)
	if !ok {
		return nil, false, err
	}
	return entry.Data, true, nil
}

// Set implements Store.
func (s *SQLiteStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	if err := checkValue(value); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache_entries (key, data, timestamp) VALUES (?, ?, ?)`,
		key, []byte(value), unixSeconds(s.now()),
	)
	if err != nil {
		CacheErrors.WithLabelValues(BackendSQLite, "set").Inc()
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// IsCached implements Store.
func (s *SQLiteStore) IsCached(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.lookup(ctx, key)
	return ok, err
}

// Stats implements Store. Freshness is evaluated in Go so the injected clock applies.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT timestamp FROM cache_entries`)
	if err != nil {
		CacheErrors.WithLabelValues(BackendSQLite, "stats").Inc()
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	defer rows.Close()

	now := s.now()
	total, fresh := 0, 0
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.Timestamp); err != nil {
			CacheErrors.WithLabelValues(BackendSQLite, "stats").Inc()
			return Stats{}, fmt.Errorf("cache stats: %w", err)
		}
		total++
		if !entry.IsExpired(now, s.expiration) {
			fresh++
		}
	}
	if err := rows.Err(); err != nil {
		CacheErrors.WithLabelValues(BackendSQLite, "stats").Inc()
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	return newStats(total, fresh), nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		CacheErrors.WithLabelValues(BackendSQLite, "delete").Inc()
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries`); err != nil {
		CacheErrors.WithLabelValues(BackendSQLite, "clear").Inc()
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}

// PurgeExpired implements Store.
func (s *SQLiteStore) PurgeExpired(ctx context.Context) (int, error) {
	cutoff := unixSeconds(s.now().Add(-s.expiration))

	res, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE timestamp <= ?`, cutoff)
	if err != nil {
		CacheErrors.WithLabelValues(BackendSQLite, "purge").Inc()
		return 0, fmt.Errorf("cache purge: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cache purge: %w", err)
	}
	CachePurged.WithLabelValues(BackendSQLite).Add(float64(n))
	return int(n), nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
