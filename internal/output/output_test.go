package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nikolliervin/code-unc/internal/model"
)

func sampleResult() *model.ReviewResult {
	res := &model.ReviewResult{
		ID:     "review-1",
		Status: model.StatusCompleted,
		Request: model.Request{
			Source: "feature/x",
			Target: "main",
			Focus:  model.FocusSecurity,
		},
		Issues: []model.Issue{
			{
				ID:          "i1",
				Title:       "SQL injection",
				Description: "Query built by string concatenation.",
				Severity:    model.SeverityCritical,
				Category:    model.CategorySecurity,
				Location:    model.Location{FilePath: "db.py", LineStart: 42, LineEnd: 45},
				CodeSnippet: `query = "SELECT * FROM t WHERE id = " + uid`,
				Confidence:  0.9,
			},
			{
				ID:          "i2",
				Title:       "Unused import",
				Description: "The os import is never referenced.",
				Severity:    model.SeverityLow,
				Category:    model.CategoryStyle,
				Location:    model.Location{FilePath: "util.py", LineStart: 8, Inferred: true},
				Confidence:  0.4,
			},
		},
		Summary:         "One serious problem.",
		Recommendations: []string{"Parameterize queries"},
		Provider:        "anthropic",
		Model:           "claude-test",
		CreatedAt:       time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	res.Metrics.FilesReviewed = 2
	res.Metrics.LinesAdded = 10
	res.Metrics.LinesDeleted = 2
	res.ComputeMetrics()
	return res
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"rich", "json", "markdown", "html", "md"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q): %v", s, err)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("ParseFormat(pdf) should fail")
	}
}

func TestRenderJSONRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderJSON(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}

	var got model.ReviewResult
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.ID != "review-1" || len(got.Issues) != 2 {
		t.Errorf("round trip lost data: %+v", got)
	}
	if !got.Issues[1].Location.Inferred {
		t.Error("inferred flag should survive serialization")
	}
}

func TestRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderMarkdown(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Code Review Report",
		"## Summary",
		"One serious problem.",
		"Critical (1)",
		"SQL injection",
		"`db.py:42-45`",
		"_(inferred)_",
		"## Recommendations",
		"Parameterize queries",
		"| Blocking issues | 1 |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderMarkdownNoIssues(t *testing.T) {
	res := sampleResult()
	res.Issues = nil
	res.ComputeMetrics()

	var buf bytes.Buffer
	if err := RenderMarkdown(&buf, res); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No issues found") {
		t.Error("empty review should say so")
	}
}

func TestRenderHTMLEscapes(t *testing.T) {
	res := sampleResult()
	res.Issues[0].Title = `<script>alert("xss")</script>`

	var buf bytes.Buffer
	if err := RenderHTML(&buf, res); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if strings.Contains(out, `<script>alert`) {
		t.Error("model-supplied text must be escaped")
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Error("escaped title missing from output")
	}
	if !strings.Contains(out, "<!DOCTYPE html>") {
		t.Error("output should be a standalone page")
	}
}

func TestRenderTerminal(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderTerminal(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{"SQL injection", "db.py:42-45", "(inferred)", "blocking"} {
		if !strings.Contains(out, want) {
			t.Errorf("terminal output missing %q", want)
		}
	}
}

func TestSortIssues(t *testing.T) {
	issues := []model.Issue{
		{Title: "low", Severity: model.SeverityLow},
		{Title: "crit-b", Severity: model.SeverityCritical, Location: model.Location{FilePath: "b.go"}},
		{Title: "crit-a", Severity: model.SeverityCritical, Location: model.Location{FilePath: "a.go"}},
	}
	got := sortIssues(issues)

	if got[0].Title != "crit-a" || got[1].Title != "crit-b" || got[2].Title != "low" {
		t.Errorf("order = %s, %s, %s", got[0].Title, got[1].Title, got[2].Title)
	}
	// Input untouched.
	if issues[0].Title != "low" {
		t.Error("sortIssues must not mutate its input")
	}
}

func TestHighlightSnippetPlainFallback(t *testing.T) {
	lines := HighlightSnippet("file.unknownext", "one\ntwo")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if lines[0].Plain() != "one" || lines[1].Plain() != "two" {
		t.Errorf("plain text lost: %q, %q", lines[0].Plain(), lines[1].Plain())
	}
}

func TestHighlightSnippetPreservesText(t *testing.T) {
	src := "def f(x):\n    return x + 1"
	lines := HighlightSnippet("a.py", src)
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	got := lines[0].Plain() + "\n" + lines[1].Plain()
	if got != src {
		t.Errorf("highlighting changed the text:\n%q\n%q", src, got)
	}
}
