// Package fetch retrieves network reference data (World Bank GDP) through
// an explicit cache collaborator with an injected store, replacing any
// implicit process-wide memoization with a visible refresh-vs-reuse policy.
package fetch

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // sqlite driver
)

// Policy controls whether a cached payload is served or refetched.
type Policy string

const (
	// PolicyReuse serves the cached payload when one exists.
	PolicyReuse Policy = "reuse"
	// PolicyRefresh always refetches and overwrites the cached payload.
	PolicyRefresh Policy = "refresh"
)

// Store is a key-value payload store for cached reference data.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, payload []byte) error
	Close() error
}

// SQLiteStore implements Store on a SQLite file. Use ":memory:" in tests.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (and initializes) the cache database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS ref_cache (
		key        TEXT PRIMARY KEY,
		payload    BLOB NOT NULL,
		fetched_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Get returns the cached payload for key, if any.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM ref_cache WHERE key = ?", key).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache key %q: %w", key, err)
	}
	return payload, true, nil
}

// Put stores (or overwrites) the payload for key.
func (s *SQLiteStore) Put(ctx context.Context, key string, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ref_cache (key, payload, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		key, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write cache key %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Cache wraps a Store with a fetch policy.
type Cache struct {
	store  Store
	policy Policy
	logger *slog.Logger
}

// NewCache creates a cache over store with the given policy.
func NewCache(store Store, policy Policy, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{store: store, policy: policy, logger: logger}
}

// Fetch returns the payload for key, filling the store via fill when the
// policy demands a fetch or nothing is cached yet.
func (c *Cache) Fetch(ctx context.Context, key string, fill func(context.Context) ([]byte, error)) ([]byte, error) {
	if c.policy == PolicyReuse {
		payload, ok, err := c.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			c.logger.Debug("cache hit", "key", key)
			return payload, nil
		}
	}

	c.logger.Debug("cache fill", "key", key, "policy", c.policy)
	payload, err := fill(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(ctx, key, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
