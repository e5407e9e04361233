package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nikolliervin/code-unc/internal/model"
)

// ErrNotFound is returned when no review matches the given ID.
var ErrNotFound = errors.New("review not found")

// History provides access to saved review results.
type History struct {
	db *sql.DB
}

// Entry is the summary row shown in history listings; the full result
// is loaded separately by ID.
type Entry struct {
	ID         string
	CreatedAt  time.Time
	Provider   string
	Model      string
	Source     string
	Target     string
	Focus      string
	Status     string
	IssueCount int
	Blocking   int
	Score      float64
}

// Save persists a finished review.
func (h *History) Save(res *model.ReviewResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	_, err = h.db.Exec(
		`INSERT OR REPLACE INTO reviews
		 (id, created_at, provider, model, source, target, focus, status, issue_count, blocking, score, result)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.CreatedAt, res.Provider, res.Model,
		res.Request.Source, res.Request.Target, string(res.Request.Focus),
		string(res.Status), res.Metrics.TotalIssues(), res.Metrics.BlockingIssues(),
		res.Metrics.Score(), string(payload),
	)
	if err != nil {
		return fmt.Errorf("saving review: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first.
func (h *History) List(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.Query(
		`SELECT id, created_at, provider, model, source, target, focus, status, issue_count, blocking, score
		 FROM reviews ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.Provider, &e.Model,
			&e.Source, &e.Target, &e.Focus, &e.Status,
			&e.IssueCount, &e.Blocking, &e.Score); err != nil {
			return nil, fmt.Errorf("scanning review row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get loads a full review result by ID. A unique ID prefix is accepted;
// a prefix matching more than one review is an error.
func (h *History) Get(id string) (*model.ReviewResult, error) {
	var payload string
	err := h.db.QueryRow(`SELECT result FROM reviews WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		pattern := strings.ReplaceAll(id, "%", "") + "%"
		var n int
		if cerr := h.db.QueryRow(`SELECT COUNT(*) FROM reviews WHERE id LIKE ?`, pattern).Scan(&n); cerr != nil {
			return nil, fmt.Errorf("resolving id prefix: %w", cerr)
		}
		if n > 1 {
			return nil, fmt.Errorf("ambiguous review id %q matches %d reviews", id, n)
		}
		err = h.db.QueryRow(`SELECT result FROM reviews WHERE id LIKE ?`, pattern).Scan(&payload)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading review: %w", err)
	}

	var res model.ReviewResult
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return nil, fmt.Errorf("decoding review %s: %w", id, err)
	}
	return &res, nil
}

// Delete removes a review by exact ID.
func (h *History) Delete(id string) error {
	res, err := h.db.Exec(`DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting review: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear drops all saved reviews and returns the number removed.
func (h *History) Clear() (int64, error) {
	res, err := h.db.Exec(`DELETE FROM reviews`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Prune removes reviews older than the cutoff.
func (h *History) Prune(olderThan time.Duration) (int64, error) {
	res, err := h.db.Exec(`DELETE FROM reviews WHERE created_at < ?`,
		time.Now().UTC().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
