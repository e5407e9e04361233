package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolliervin/code-unc/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "unc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleResult(id string) *model.ReviewResult {
	res := &model.ReviewResult{
		ID:     id,
		Status: model.StatusCompleted,
		Request: model.Request{
			Source: "feature/x",
			Target: "main",
			Focus:  model.FocusSecurity,
		},
		Issues: []model.Issue{
			{
				ID:       "abc123",
				Title:    "SQL injection",
				Severity: model.SeverityCritical,
				Category: model.CategorySecurity,
				Location: model.Location{FilePath: "db.py", LineStart: 42},
			},
		},
		Summary:   "one problem",
		Provider:  "anthropic",
		Model:     "claude-test",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	res.ComputeMetrics()
	return res
}

func TestHistorySaveAndGet(t *testing.T) {
	st := openTestStore(t)
	h := st.History()

	res := sampleResult("11111111-2222-3333-4444-555555555555")
	require.NoError(t, h.Save(res))

	got, err := h.Get(res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)
	assert.Equal(t, res.Status, got.Status)
	assert.Len(t, got.Issues, 1)
	assert.Equal(t, "SQL injection", got.Issues[0].Title)
	assert.Equal(t, model.FocusSecurity, got.Request.Focus)
}

func TestHistoryGetByPrefix(t *testing.T) {
	st := openTestStore(t)
	h := st.History()

	res := sampleResult("aabbccdd-0000-1111-2222-333344445555")
	require.NoError(t, h.Save(res))

	got, err := h.Get("aabbccdd")
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)
}

func TestHistoryGetAmbiguousPrefix(t *testing.T) {
	st := openTestStore(t)
	h := st.History()

	require.NoError(t, h.Save(sampleResult("aabbccdd-0000-1111-2222-333344445501")))
	require.NoError(t, h.Save(sampleResult("aabbccdd-0000-1111-2222-333344445502")))

	_, err := h.Get("aabbccdd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestHistoryGetMissing(t *testing.T) {
	st := openTestStore(t)
	_, err := st.History().Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistoryListNewestFirst(t *testing.T) {
	st := openTestStore(t)
	h := st.History()

	old := sampleResult("00000000-0000-0000-0000-000000000001")
	old.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := sampleResult("00000000-0000-0000-0000-000000000002")

	require.NoError(t, h.Save(old))
	require.NoError(t, h.Save(newer))

	entries, err := h.List(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, newer.ID, entries[0].ID)
	assert.Equal(t, old.ID, entries[1].ID)
	assert.Equal(t, 1, entries[0].IssueCount)
	assert.Equal(t, 1, entries[0].Blocking)
}

func TestHistoryDelete(t *testing.T) {
	st := openTestStore(t)
	h := st.History()

	res := sampleResult("00000000-0000-0000-0000-00000000000a")
	require.NoError(t, h.Save(res))
	require.NoError(t, h.Delete(res.ID))

	_, err := h.Get(res.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, h.Delete(res.ID), ErrNotFound)
}

func TestHistoryClearAndPrune(t *testing.T) {
	st := openTestStore(t)
	h := st.History()

	old := sampleResult("00000000-0000-0000-0000-0000000000b1")
	old.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
	fresh := sampleResult("00000000-0000-0000-0000-0000000000b2")
	require.NoError(t, h.Save(old))
	require.NoError(t, h.Save(fresh))

	n, err := h.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = h.Clear()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestCachePutGet(t *testing.T) {
	st := openTestStore(t)
	c := st.Cache(time.Hour)

	res := sampleResult("00000000-0000-0000-0000-0000000000c1")
	require.NoError(t, c.Put("key1", res))

	got, ok := c.Get("key1")
	require.True(t, ok)
	assert.Equal(t, res.ID, got.ID)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	st := openTestStore(t)
	c := st.Cache(-time.Second) // already expired on write

	res := sampleResult("00000000-0000-0000-0000-0000000000c2")
	require.NoError(t, c.Put("key1", res))

	_, ok := c.Get("key1")
	assert.False(t, ok, "expired entries must read as misses")

	n, err := c.Cleanup()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestCacheStats(t *testing.T) {
	st := openTestStore(t)

	live := st.Cache(time.Hour)
	expired := st.Cache(-time.Second)

	require.NoError(t, live.Put("live", sampleResult("00000000-0000-0000-0000-0000000000d1")))
	require.NoError(t, expired.Put("dead", sampleResult("00000000-0000-0000-0000-0000000000d2")))

	stats, err := live.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, 1, stats.Expired)
}

func TestCacheClear(t *testing.T) {
	st := openTestStore(t)
	c := st.Cache(time.Hour)

	require.NoError(t, c.Put("k", sampleResult("00000000-0000-0000-0000-0000000000e1")))
	require.NoError(t, c.Clear())

	_, ok := c.Get("k")
	assert.False(t, ok)
}
