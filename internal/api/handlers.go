package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/nikolliervin/code-unc/internal/diff"
	"github.com/nikolliervin/code-unc/internal/model"
	"github.com/nikolliervin/code-unc/internal/review"
	"github.com/nikolliervin/code-unc/internal/store"
)

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Parse ---

type parseRequest struct {
	Diff string `json:"diff"`
}

type parseResponse struct {
	Files []fileJSON    `json:"files"`
	Stats diffStatsJSON `json:"stats"`
}

type fileJSON struct {
	Name         string `json:"name"`
	OldPath      string `json:"old_path,omitempty"`
	NewPath      string `json:"new_path,omitempty"`
	IsNew        bool   `json:"is_new,omitempty"`
	IsDeleted    bool   `json:"is_deleted,omitempty"`
	IsRenamed    bool   `json:"is_renamed,omitempty"`
	AddedLines   int    `json:"added_lines"`
	DeletedLines int    `json:"deleted_lines"`
	Fragments    int    `json:"fragments"`
}

type diffStatsJSON struct {
	Files   int `json:"files"`
	Added   int `json:"added"`
	Deleted int `json:"deleted"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.Diff == "" {
		writeError(w, http.StatusBadRequest, "diff is required")
		return
	}

	ds, err := diff.Parse(req.Diff)
	if err != nil {
		writeError(w, http.StatusBadRequest, "parsing diff: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, parseResponse{
		Files: fileJSONs(ds),
		Stats: statsJSON(ds),
	})
}

func fileJSONs(ds *diff.DiffSet) []fileJSON {
	out := make([]fileJSON, 0, len(ds.Files))
	for _, f := range ds.Files {
		out = append(out, fileJSON{
			Name:         f.Name(),
			OldPath:      f.OldPath,
			NewPath:      f.NewPath,
			IsNew:        f.IsNew,
			IsDeleted:    f.IsDeleted,
			IsRenamed:    f.IsRenamed,
			AddedLines:   f.AddedLines,
			DeletedLines: f.DeletedLines,
			Fragments:    len(f.Fragments),
		})
	}
	return out
}

func statsJSON(ds *diff.DiffSet) diffStatsJSON {
	files, added, deleted := ds.Stats()
	return diffStatsJSON{Files: files, Added: added, Deleted: deleted}
}

// --- Normalize ---

type normalizeRequest struct {
	Content string `json:"content"`
	// Diff is optional; when present, issue locations are reconciled
	// against it.
	Diff string `json:"diff,omitempty"`
}

type normalizeResponse struct {
	Status          string        `json:"status"`
	Issues          []model.Issue `json:"issues"`
	Summary         string        `json:"summary,omitempty"`
	Recommendations []string      `json:"recommendations,omitempty"`
	Diagnostic      string        `json:"diagnostic,omitempty"`
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	n := review.Normalize(req.Content)

	if req.Diff != "" {
		ds, err := diff.Parse(req.Diff)
		if err != nil {
			writeError(w, http.StatusBadRequest, "parsing diff: "+err.Error())
			return
		}
		review.NewReconciler(ds, review.DefaultInferencePolicy()).Reconcile(n.Issues)
	}

	writeJSON(w, http.StatusOK, normalizeResponse{
		Status:          string(n.Status),
		Issues:          n.Issues,
		Summary:         n.Summary,
		Recommendations: n.Recommendations,
		Diagnostic:      n.Diagnostic,
	})
}

// --- History ---

type historyEntryJSON struct {
	ID         string  `json:"id"`
	CreatedAt  string  `json:"created_at"`
	Provider   string  `json:"provider"`
	Model      string  `json:"model"`
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Focus      string  `json:"focus"`
	Status     string  `json:"status"`
	IssueCount int     `json:"issue_count"`
	Blocking   int     `json:"blocking"`
	Score      float64 `json:"score"`
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history store not available")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := s.history.List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing history: "+err.Error())
		return
	}

	out := make([]historyEntryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntryJSON{
			ID:         e.ID,
			CreatedAt:  e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			Provider:   e.Provider,
			Model:      e.Model,
			Source:     e.Source,
			Target:     e.Target,
			Focus:      e.Focus,
			Status:     e.Status,
			IssueCount: e.IssueCount,
			Blocking:   e.Blocking,
			Score:      e.Score,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": out})
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history store not available")
		return
	}

	res, err := s.history.Get(r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "review not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "loading review: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}
