package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/soliditysam/apisports-nfl/pkg/logging"
)

// DefaultFile is the cache file used when none is configured.
const DefaultFile = "cache.json"

// FileStore is a Store backed by a single JSON file.
//
// The file is read once by NewFileStore and rewritten in full after every
// mutation, so a successful Set is durable on return. The rewrite goes through a
// temporary file and a rename, leaving either the previous or the new snapshot on
// disk. Processes sharing one file are not coordinated.
type FileStore struct {
	mu         sync.Mutex
	path       string
	expiration time.Duration
	entries    map[string]Entry
	now        func() time.Time
	logger     zerolog.Logger
}

// NewFileStore loads path into memory. A missing or empty file starts an empty table.
func NewFileStore(path string, opts Options) (*FileStore, error) {
	if path == "" {
		path = DefaultFile
	}
	opts = opts.withDefaults()

	s := &FileStore{
		path:       path,
		expiration: opts.Expiration,
		entries:    make(map[string]Entry),
		now:        opts.Now,
		logger:     logging.NewLogger("cache").With().Str("backend", BackendFile).Logger(),
	}

	if err := s.load(); err != nil {
		CacheErrors.WithLabelValues(BackendFile, "load").Inc()
		return nil, err
	}

	s.logger.Debug().
		Str("path", path).
		Int("entries", len(s.entries)).
		Dur("expiration", s.expiration).
		Msg("Cache file loaded")

	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.entries); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrInvalidEntry, s.path, err)
	}
	if s.entries == nil {
		s.entries = make(map[string]Entry)
	}
	return nil
}

// saveLocked writes the whole table. Callers must hold s.mu.
func (s *FileStore) saveLocked() error {
	data, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("marshal cache file: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}

// lookupLocked returns a fresh entry, purging it first if it went stale.
func (s *FileStore) lookupLocked(key string) (Entry, bool, error) {
	entry, ok := s.entries[key]
	if !ok {
		CacheMisses.WithLabelValues(BackendFile).Inc()
		return Entry{}, false, nil
	}

	if entry.IsExpired(s.now(), s.expiration) {
		delete(s.entries, key)
		CacheMisses.WithLabelValues(BackendFile).Inc()
		CachePurged.WithLabelValues(BackendFile).Inc()
		s.logger.Debug().Str("key", key).Msg("Purged stale entry")

		if err := s.saveLocked(); err != nil {
			CacheErrors.WithLabelValues(BackendFile, "delete").Inc()
			return Entry{}, false, err
		}
		return Entry{}, false, nil
	}

	CacheHits.WithLabelValues(BackendFile).Inc()
	return entry, true, nil
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, key string) (json.RawMessage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok, err := s.lookupLocked(key)
	if !ok {
		return nil, false, err
	}
	return entry.Data, true, nil
}

// Set implements Store.
func (s *FileStore) Set(_ context.Context, key string, value json.RawMessage) error {
	if err := checkValue(value); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data := make(json.RawMessage, len(value))
	copy(data, value)
	s.entries[key] = newEntry(data, s.now())

	if err := s.saveLocked(); err != nil {
		CacheErrors.WithLabelValues(BackendFile, "set").Inc()
		return err
	}
	return nil
}

// IsCached implements Store.
func (s *FileStore) IsCached(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok, err := s.lookupLocked(key)
	return ok, err
}

// Stats implements Store.
func (s *FileStore) Stats(_ context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	fresh := 0
	for _, entry := range s.entries {
		if !entry.IsExpired(now, s.expiration) {
			fresh++
		}
	}
	return newStats(len(s.entries), fresh), nil
}

// Delete implements Store.
func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return nil
	}
	delete(s.entries, key)

	if err := s.saveLocked(); err != nil {
		CacheErrors.WithLabelValues(BackendFile, "delete").Inc()
		return err
	}
	return nil
}

// Clear implements Store.
func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]Entry)
	if err := s.saveLocked(); err != nil {
		CacheErrors.WithLabelValues(BackendFile, "clear").Inc()
		return err
	}
	return nil
}

// PurgeExpired implements Store.
func (s *FileStore) PurgeExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, entry := range s.entries {
		if entry.IsExpired(now, s.expiration) {
			delete(s.entries, key)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}

	CachePurged.WithLabelValues(BackendFile).Add(float64(removed))
	if err := s.saveLocked(); err != nil {
		CacheErrors.WithLabelValues(BackendFile, "purge").Inc()
		return removed, err
	}
	return removed, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Len returns the number of entries held, fresh or not.
func (s *FileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close implements Store. The file is already up to date after every mutation.
func (s *FileStore) Close() error {
	return nil
}

var _ Store = (*FileStore)(nil)
