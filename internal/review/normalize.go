// Package review implements the review pipeline: prompt rendering,
// response normalization, location reconciliation, and orchestration.
package review

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nikolliervin/code-unc/internal/model"
)

// Normalization defaults. Regex-extracted issues carry a lower confidence
// than structurally parsed ones.
const (
	DefaultConfidence = 0.5
	RegexConfidence   = 0.3
	MaxFieldLen       = 500
	TruncationMarker  = "... [truncated]"
)

// rawLocation mirrors the snake_case location object the prompt asks for,
// plus the flat "file"/"line" shape some models produce instead.
type rawLocation struct {
	FilePath    string `json:"file_path"`
	LineStart   int    `json:"line_start"`
	LineEnd     int    `json:"line_end"`
	ColumnStart int    `json:"column_start"`
	ColumnEnd   int    `json:"column_end"`
}

type rawIssue struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Severity    string       `json:"severity"`
	Category    string       `json:"category"`
	Location    *rawLocation `json:"location"`

	// Flat variants tolerated from partially conforming providers.
	File string `json:"file"`
	Line int    `json:"line"`

	CodeSnippet  string   `json:"code_snippet"`
	SuggestedFix string   `json:"suggested_fix"`
	Suggestion   string   `json:"suggestion"`
	Confidence   *float64 `json:"confidence"`
	Tags         []string `json:"tags"`
	References   []string `json:"references"`
}

type rawReview struct {
	Summary         string         `json:"summary"`
	Issues          []rawIssue     `json:"issues"`
	Recommendations []string       `json:"recommendations"`
	Metrics         map[string]int `json:"metrics"`
}

// Normalized is the outcome of running the fallback chain over a raw
// model response. It always carries a status; it never represents an
// unhandled failure.
type Normalized struct {
	Status          model.Status
	Issues          []model.Issue
	Summary         string
	Recommendations []string
	// Diagnostic retains the strict-parse error when a fallback stage
	// produced the issues.
	Diagnostic string
}

// Normalize converts arbitrary model output into a Normalized result via
// an ordered chain of pure stages: strict parse, sanitize-and-retry,
// field-level regex extraction. It performs no I/O and never retries the
// provider.
func Normalize(content string) Normalized {
	candidate, ok := extractJSON(content)
	if !ok {
		if !strings.ContainsAny(content, "{}") {
			return Normalized{Status: model.StatusNoJSON, Issues: []model.Issue{}}
		}
		// A lone delimiter means the output was cut off mid-object;
		// field extraction can still recover issues from the fragment.
		if n, ok := extractFields(content); ok {
			n.Status = model.StatusRegexFallback
			n.Diagnostic = "unbalanced JSON delimiters"
			return n
		}
		return Normalized{
			Status:     model.StatusNoExtraction,
			Issues:     []model.Issue{},
			Diagnostic: "unbalanced JSON delimiters",
		}
	}

	if n, err := parseStrict(candidate); err == nil {
		n.Status = model.StatusCompleted
		return n
	} else if n, serr := parseStrict(sanitize(candidate)); serr == nil {
		n.Status = model.StatusCompleted
		return n
	} else if n, ok := extractFields(content); ok {
		n.Status = model.StatusRegexFallback
		n.Diagnostic = err.Error()
		return n
	} else {
		return Normalized{
			Status:     model.StatusNoExtraction,
			Issues:     []model.Issue{},
			Diagnostic: err.Error(),
		}
	}
}

// extractJSON returns the substring from the first '{' to the last '}',
// or false when no such pair exists.
func extractJSON(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func parseStrict(candidate string) (Normalized, error) {
	var raw rawReview
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return Normalized{}, err
	}

	n := Normalized{
		Summary:         truncate(raw.Summary),
		Recommendations: raw.Recommendations,
		Issues:          make([]model.Issue, 0, len(raw.Issues)),
	}
	for i, r := range raw.Issues {
		n.Issues = append(n.Issues, buildIssue(r, i, DefaultConfidence))
	}
	return n, nil
}

func buildIssue(r rawIssue, ordinal int, defaultConfidence float64) model.Issue {
	is := model.Issue{
		ID:           r.ID,
		Title:        truncate(r.Title),
		Description:  truncate(r.Description),
		Severity:     model.ParseSeverity(r.Severity),
		Category:     model.ParseCategory(r.Category),
		CodeSnippet:  truncate(r.CodeSnippet),
		SuggestedFix: truncate(r.SuggestedFix),
		Tags:         r.Tags,
		References:   r.References,
	}
	if is.Title == "" {
		is.Title = fmt.Sprintf("Issue %d", ordinal+1)
	}
	if is.SuggestedFix == "" {
		is.SuggestedFix = truncate(r.Suggestion)
	}
	if r.Confidence != nil && *r.Confidence >= 0 && *r.Confidence <= 1 {
		is.Confidence = *r.Confidence
	} else {
		is.Confidence = defaultConfidence
	}

	switch {
	case r.Location != nil:
		is.Location = model.Location{
			FilePath:    r.Location.FilePath,
			LineStart:   r.Location.LineStart,
			LineEnd:     r.Location.LineEnd,
			ColumnStart: r.Location.ColumnStart,
			ColumnEnd:   r.Location.ColumnEnd,
		}
	case r.File != "":
		is.Location = model.Location{FilePath: r.File, LineStart: r.Line}
	}
	return is
}

// sanitize repairs the two failure shapes seen in practice: control
// characters embedded in the payload, and literal newlines inside JSON
// string values. Quote parity is tracked across lines so a newline is
// escaped only when it falls inside an open string.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' || (r >= 0x20 && r != 0x7f) {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	lines := strings.Split(cleaned, "\n")
	var out strings.Builder
	inString := false
	for i, line := range lines {
		out.WriteString(collapseSpaces(line, inString))
		inString = quoteParity(line, inString)
		if i < len(lines)-1 {
			if inString {
				out.WriteString(`\n`)
			} else {
				out.WriteByte('\n')
			}
		}
	}
	return out.String()
}

// quoteParity returns whether a JSON string is still open after scanning
// line, given the state at its start.
func quoteParity(line string, inString bool) bool {
	escaped := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		}
	}
	return inString
}

// collapseSpaces squeezes runs of whitespace outside string values down
// to a single space. Content inside strings is preserved.
func collapseSpaces(line string, inString bool) string {
	var b strings.Builder
	b.Grow(len(line))
	escaped := false
	lastSpace := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if inString {
			b.WriteByte(c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		if c == ' ' || c == '\t' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		lastSpace = false
		if c == '"' {
			inString = true
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Field-level extraction patterns. Each captures the value of a repeated
// quoted field without requiring the surrounding JSON to be well formed.
var (
	titleRe       = regexp.MustCompile(`"title"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	descriptionRe = regexp.MustCompile(`"description"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	severityRe    = regexp.MustCompile(`"severity"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	categoryRe    = regexp.MustCompile(`"category"\s*:\s*"((?:[^"\\]|\\.)*)"`)
)

// extractFields recovers issues from structurally broken output by
// scanning for repeated field patterns and zipping them positionally.
// Arrays shorter than the longest are padded with defaults.
func extractFields(content string) (Normalized, bool) {
	titles := captureAll(titleRe, content)
	descriptions := captureAll(descriptionRe, content)
	severities := captureAll(severityRe, content)
	categories := captureAll(categoryRe, content)

	n := max(len(titles), len(descriptions), len(severities), len(categories))
	if n == 0 {
		return Normalized{Issues: []model.Issue{}}, false
	}

	out := Normalized{Issues: make([]model.Issue, 0, n)}
	for i := 0; i < n; i++ {
		is := model.Issue{
			Title:      fmt.Sprintf("Issue %d", i+1),
			Severity:   model.SeverityMedium,
			Category:   model.CategoryCodeQuality,
			Confidence: RegexConfidence,
		}
		if i < len(titles) {
			is.Title = truncate(unescapeJSON(titles[i]))
		}
		if i < len(descriptions) {
			is.Description = truncate(unescapeJSON(descriptions[i]))
		}
		if i < len(severities) {
			is.Severity = model.ParseSeverity(severities[i])
		}
		if i < len(categories) {
			is.Category = model.ParseCategory(categories[i])
		}
		out.Issues = append(out.Issues, is)
	}
	return out, true
}

func captureAll(re *regexp.Regexp, s string) []string {
	matches := re.FindAllStringSubmatch(s, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

func unescapeJSON(s string) string {
	var decoded string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &decoded); err != nil {
		return s
	}
	return decoded
}

// truncate bounds a string field to MaxFieldLen bytes to cap memory and
// rendering cost, backing off to the nearest rune boundary.
func truncate(s string) string {
	if len(s) <= MaxFieldLen {
		return s
	}
	cut := MaxFieldLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + TruncationMarker
}
