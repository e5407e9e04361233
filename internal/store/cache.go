package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/nikolliervin/code-unc/internal/model"
)

// Cache stores serialized review results with a fixed TTL. It satisfies
// the review engine's cache interface.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
}

// Get returns the cached result for key if present and unexpired.
// Corrupt or expired entries read as misses.
func (c *Cache) Get(key string) (*model.ReviewResult, bool) {
	var payload string
	err := c.db.QueryRow(
		`SELECT result FROM cache WHERE key = ? AND expires_at > ?`,
		key, time.Now().UTC(),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) || err != nil {
		return nil, false
	}

	var res model.ReviewResult
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return nil, false
	}
	return &res, true
}

// Put stores a result under key, replacing any previous entry.
func (c *Cache) Put(key string, res *model.ReviewResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO cache (key, created_at, expires_at, result) VALUES (?, ?, ?, ?)`,
		key, now, now.Add(c.ttl), string(payload),
	)
	return err
}

// Cleanup deletes expired entries and returns the number removed.
func (c *Cache) Cleanup() (int64, error) {
	res, err := c.db.Exec(`DELETE FROM cache WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Clear drops all cache entries.
func (c *Cache) Clear() error {
	_, err := c.db.Exec(`DELETE FROM cache`)
	return err
}

// CacheStats summarizes the cache table.
type CacheStats struct {
	Entries int
	Expired int
}

// Stats counts live and expired entries.
func (c *Cache) Stats() (CacheStats, error) {
	var st CacheStats
	now := time.Now().UTC()
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM cache WHERE expires_at > ?`, now).Scan(&st.Entries); err != nil {
		return st, err
	}
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM cache WHERE expires_at <= ?`, now).Scan(&st.Expired); err != nil {
		return st, err
	}
	return st, nil
}
