package review

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nikolliervin/code-unc/internal/diff"
	"github.com/nikolliervin/code-unc/internal/model"
	"github.com/nikolliervin/code-unc/internal/providers"
)

// Cache stores finished review results keyed by the request fingerprint.
// A nil Cache on the engine disables caching entirely.
type Cache interface {
	Get(key string) (*model.ReviewResult, bool)
	Put(key string, res *model.ReviewResult) error
}

// Engine runs the review pipeline: prompt, provider call, normalization,
// location reconciliation, metrics.
type Engine struct {
	Client providers.Client
	Cache  Cache
	Policy InferencePolicy

	MaxTokens   int
	Temperature float64
}

// NewEngine builds an engine with the stock inference policy.
func NewEngine(client providers.Client, cache Cache) *Engine {
	return &Engine{
		Client: client,
		Cache:  cache,
		Policy: DefaultInferencePolicy(),
	}
}

// Run executes one review. The provider call is the only failure point;
// malformed model output degrades the result's status instead of
// returning an error.
func (e *Engine) Run(ctx context.Context, req model.Request, ds *diff.DiffSet) (*model.ReviewResult, error) {
	key := CacheKey(req, ds)
	if e.Cache != nil {
		if res, ok := e.Cache.Get(key); ok {
			return res, nil
		}
	}

	prompt, err := BuildPrompt(req, ds)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := e.Client.Review(ctx, providers.Request{
		SystemPrompt: SystemPrompt(req.Focus),
		UserPrompt:   prompt,
		MaxTokens:    e.MaxTokens,
		Temperature:  e.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", e.Client.Name(), err)
	}

	res := e.assemble(req, ds, raw)
	res.Metrics.DurationMs = time.Since(start).Milliseconds()

	if e.Cache != nil {
		// The review already succeeded; a failed cache write must not
		// discard it.
		if err := e.Cache.Put(key, res); err != nil {
			log.Printf("warning: caching result: %v", err)
		}
	}
	return res, nil
}

// assemble turns a raw provider reply into a finished result. It never
// fails; unparseable output is reflected in the status.
func (e *Engine) assemble(req model.Request, ds *diff.DiffSet, raw model.RawResponse) *model.ReviewResult {
	n := Normalize(raw.Content)

	NewReconciler(ds, e.Policy).Reconcile(n.Issues)
	for i := range n.Issues {
		if n.Issues[i].ID == "" {
			n.Issues[i].ID = issueID(n.Issues[i])
		}
	}

	res := &model.ReviewResult{
		ID:              uuid.NewString(),
		Status:          n.Status,
		Request:         req,
		Issues:          n.Issues,
		Summary:         n.Summary,
		Recommendations: n.Recommendations,
		ParseDiagnostic: n.Diagnostic,
		Provider:        raw.Provider,
		Model:           raw.Model,
		CreatedAt:       time.Now().UTC(),
	}

	files, added, deleted := ds.Stats()
	res.Metrics.FilesReviewed = files
	res.Metrics.LinesAdded = added
	res.Metrics.LinesDeleted = deleted
	res.Metrics.TokensUsed = raw.TokensUsed
	res.ComputeMetrics()
	return res
}

// CacheKey fingerprints a review request. Two runs over the same diff
// with the same provider, model, and focus share a key.
func CacheKey(req model.Request, ds *diff.DiffSet) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s:%s:%s:", req.Provider, req.Model, req.Focus)
	h.Write([]byte(ds.Raw))
	return hex.EncodeToString(h.Sum(nil))
}

// issueID derives a stable identifier from the issue's location and
// title, so the same finding keeps its ID across runs.
func issueID(is model.Issue) string {
	h := sha256.Sum256([]byte(is.Location.FilePath + ":" + is.Title + ":" + strconv.Itoa(is.Location.LineStart)))
	return hex.EncodeToString(h[:])[:12]
}
