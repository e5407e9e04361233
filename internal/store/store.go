// Package store persists review history and the result cache in a
// single SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS reviews (
	id          TEXT PRIMARY KEY,
	created_at  TIMESTAMP NOT NULL,
	provider    TEXT NOT NULL,
	model       TEXT NOT NULL,
	source      TEXT NOT NULL,
	target      TEXT NOT NULL,
	focus       TEXT NOT NULL,
	status      TEXT NOT NULL,
	issue_count INTEGER NOT NULL,
	blocking    INTEGER NOT NULL,
	score       REAL NOT NULL,
	result      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reviews_created ON reviews(created_at DESC);

CREATE TABLE IF NOT EXISTS cache (
	key        TEXT PRIMARY KEY,
	created_at TIMESTAMP NOT NULL,
	expires_at TIMESTAMP NOT NULL,
	result     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cache_expires ON cache(expires_at);
`

// Store wraps the SQLite handle shared by history and cache.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite handles one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Cache returns a TTL-bound cache view over the store.
func (s *Store) Cache(ttl time.Duration) *Cache {
	return &Cache{db: s.db, ttl: ttl}
}

// History returns the review-history view over the store.
func (s *Store) History() *History {
	return &History{db: s.db}
}
