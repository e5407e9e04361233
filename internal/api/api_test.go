package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nikolliervin/code-unc/internal/model"
	"github.com/nikolliervin/code-unc/internal/store"
)

const testDiff = `diff --git a/main.go b/main.go
index 1111111..2222222 100644
--- a/main.go
+++ b/main.go
@@ -1,3 +1,4 @@
 package main
+import "fmt"
 
 func main() {
`

func newTestServer(t *testing.T, history *store.History) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New("127.0.0.1:0", history).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url, body string, v any) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	var got map[string]string
	if code := getJSON(t, srv.URL+"/health", &got); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if got["status"] != "ok" {
		t.Errorf("body = %v", got)
	}
}

func TestParse(t *testing.T) {
	srv := newTestServer(t, nil)

	body, err := json.Marshal(parseRequest{Diff: testDiff})
	if err != nil {
		t.Fatal(err)
	}

	var got parseResponse
	if code := postJSON(t, srv.URL+"/api/parse", string(body), &got); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(got.Files) != 1 || got.Files[0].Name != "main.go" {
		t.Fatalf("files = %+v", got.Files)
	}
	if got.Files[0].AddedLines != 1 {
		t.Errorf("added lines = %d", got.Files[0].AddedLines)
	}
	if got.Stats.Files != 1 || got.Stats.Added != 1 {
		t.Errorf("stats = %+v", got.Stats)
	}
}

func TestParseRejectsEmptyDiff(t *testing.T) {
	srv := newTestServer(t, nil)
	if code := postJSON(t, srv.URL+"/api/parse", `{"diff": ""}`, nil); code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}
}

func TestNormalize(t *testing.T) {
	srv := newTestServer(t, nil)

	content := `{"issues": [{"title": "Something off", "severity": "high", "category": "bug"}], "summary": "one issue"}`
	body, err := json.Marshal(normalizeRequest{Content: content})
	if err != nil {
		t.Fatal(err)
	}

	var got normalizeResponse
	if code := postJSON(t, srv.URL+"/api/normalize", string(body), &got); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if got.Status != string(model.StatusCompleted) {
		t.Errorf("status = %q", got.Status)
	}
	if len(got.Issues) != 1 || got.Issues[0].Title != "Something off" {
		t.Errorf("issues = %+v", got.Issues)
	}
	if got.Summary != "one issue" {
		t.Errorf("summary = %q", got.Summary)
	}
}

func TestNormalizeReconcilesAgainstDiff(t *testing.T) {
	srv := newTestServer(t, nil)

	content := `{"issues": [{"title": "Import concern", "severity": "low", "description": "the fmt import in main.go"}]}`
	body, err := json.Marshal(normalizeRequest{Content: content, Diff: testDiff})
	if err != nil {
		t.Fatal(err)
	}

	var got normalizeResponse
	if code := postJSON(t, srv.URL+"/api/normalize", string(body), &got); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(got.Issues) != 1 {
		t.Fatalf("issues = %+v", got.Issues)
	}
	loc := got.Issues[0].Location
	if loc.FilePath != "main.go" || !loc.Inferred {
		t.Errorf("location = %+v, want inferred main.go", loc)
	}
}

func TestHistoryUnavailableWithoutStore(t *testing.T) {
	srv := newTestServer(t, nil)

	if code := getJSON(t, srv.URL+"/api/history", nil); code != http.StatusServiceUnavailable {
		t.Errorf("list status = %d, want 503", code)
	}
	if code := getJSON(t, srv.URL+"/api/history/abc", nil); code != http.StatusServiceUnavailable {
		t.Errorf("get status = %d, want 503", code)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "unc.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	res := &model.ReviewResult{
		ID:     "11111111-2222-3333-4444-555555555555",
		Status: model.StatusCompleted,
		Request: model.Request{
			Source: "feature/x",
			Target: "main",
			Focus:  model.FocusGeneral,
		},
		Provider:  "anthropic",
		Model:     "claude-test",
		CreatedAt: time.Now().UTC(),
	}
	res.ComputeMetrics()
	if err := st.History().Save(res); err != nil {
		t.Fatal(err)
	}

	srv := newTestServer(t, st.History())

	var list struct {
		Reviews []historyEntryJSON `json:"reviews"`
	}
	if code := getJSON(t, srv.URL+"/api/history?limit=5", &list); code != http.StatusOK {
		t.Fatalf("list status = %d", code)
	}
	if len(list.Reviews) != 1 || list.Reviews[0].ID != res.ID {
		t.Fatalf("reviews = %+v", list.Reviews)
	}

	var got model.ReviewResult
	if code := getJSON(t, srv.URL+"/api/history/"+res.ID, &got); code != http.StatusOK {
		t.Fatalf("get status = %d", code)
	}
	if got.ID != res.ID || got.Provider != "anthropic" {
		t.Errorf("review = %+v", got)
	}

	if code := getJSON(t, srv.URL+"/api/history/ffffffff", nil); code != http.StatusNotFound {
		t.Errorf("missing review status = %d, want 404", code)
	}
}
