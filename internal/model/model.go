// Package model defines the core data types shared across unc.
package model

import (
	"strconv"
	"strings"
	"time"
)

// Severity levels for review issues, ordered from least to most severe.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 5
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// ParseSeverity maps free-form model output onto a known severity.
// Unknown or empty values default to medium.
func ParseSeverity(s string) Severity {
	switch normalizeTag(s) {
	case "critical", "blocker":
		return SeverityCritical
	case "high", "major":
		return SeverityHigh
	case "medium", "moderate":
		return SeverityMedium
	case "low", "minor":
		return SeverityLow
	case "info", "informational", "note":
		return SeverityInfo
	default:
		return SeverityMedium
	}
}

// Category tags an issue with the kind of problem it describes.
type Category string

const (
	CategorySecurity        Category = "security"
	CategoryPerformance     Category = "performance"
	CategoryMaintainability Category = "maintainability"
	CategoryReadability     Category = "readability"
	CategoryStyle           Category = "style"
	CategoryBugs            Category = "bugs"
	CategoryDesign          Category = "design"
	CategoryTesting         Category = "testing"
	CategoryDocumentation   Category = "documentation"
	CategoryComplexity      Category = "complexity"
	CategoryCodeQuality     Category = "code-quality"
)

// ParseCategory maps free-form model output onto a known category,
// defaulting to code-quality.
func ParseCategory(s string) Category {
	switch normalizeTag(s) {
	case "security":
		return CategorySecurity
	case "performance":
		return CategoryPerformance
	case "maintainability":
		return CategoryMaintainability
	case "readability":
		return CategoryReadability
	case "style", "code-style":
		return CategoryStyle
	case "bug", "bugs", "correctness":
		return CategoryBugs
	case "design", "architecture":
		return CategoryDesign
	case "testing", "tests":
		return CategoryTesting
	case "documentation", "docs":
		return CategoryDocumentation
	case "complexity":
		return CategoryComplexity
	default:
		return CategoryCodeQuality
	}
}

func normalizeTag(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.ReplaceAll(s, "_", "-")
	return strings.ReplaceAll(s, " ", "-")
}

// Location identifies where in the changed code an issue lives.
type Location struct {
	FilePath    string `json:"file_path"`
	LineStart   int    `json:"line_start"`
	LineEnd     int    `json:"line_end,omitempty"`
	ColumnStart int    `json:"column_start,omitempty"`
	ColumnEnd   int    `json:"column_end,omitempty"`

	// Inferred is true when the reconciler had to guess the file or line
	// instead of using a provider-supplied location.
	Inferred bool `json:"inferred,omitempty"`
}

// Valid reports whether the location points at a real file and line.
func (l Location) Valid() bool {
	return l.FilePath != "" && l.LineStart >= 1
}

// LineRange renders "12" or "12-18" for display.
func (l Location) LineRange() string {
	if l.LineEnd > l.LineStart {
		return strconv.Itoa(l.LineStart) + "-" + strconv.Itoa(l.LineEnd)
	}
	return strconv.Itoa(l.LineStart)
}

// Issue is a single review finding.
type Issue struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Category    Category `json:"category"`
	Location    Location `json:"location"`

	CodeSnippet  string `json:"code_snippet,omitempty"`
	SuggestedFix string `json:"suggested_fix,omitempty"`

	Confidence float64  `json:"confidence"`
	Tags       []string `json:"tags,omitempty"`
	References []string `json:"references,omitempty"`
}

// Blocking reports whether the issue should block the review.
func (i Issue) Blocking() bool {
	return i.Severity == SeverityCritical || i.Severity == SeverityHigh
}

// FormatLocation renders "path:12-18" for display.
func (i Issue) FormatLocation() string {
	return i.Location.FilePath + ":" + i.Location.LineRange()
}

// Status describes how the model response was turned into a result.
type Status string

const (
	// StatusCompleted means the response parsed as JSON, possibly after
	// sanitization.
	StatusCompleted Status = "completed"
	// StatusRegexFallback means structural parsing failed and issues were
	// recovered by field-level text extraction.
	StatusRegexFallback Status = "json_parse_failed_regex_fallback"
	// StatusNoExtraction means parsing failed and extraction found nothing.
	StatusNoExtraction Status = "json_parse_failed_no_extraction"
	// StatusNoJSON means the response contained no JSON delimiters at all.
	StatusNoJSON Status = "no_json_found"
)

// Metrics summarizes a review numerically.
type Metrics struct {
	CriticalIssues int `json:"critical_issues"`
	HighIssues     int `json:"high_issues"`
	MediumIssues   int `json:"medium_issues"`
	LowIssues      int `json:"low_issues"`
	InfoIssues     int `json:"info_issues"`

	FilesReviewed int `json:"files_reviewed"`
	LinesAdded    int `json:"lines_added"`
	LinesDeleted  int `json:"lines_deleted"`

	DurationMs int64 `json:"duration_ms,omitempty"`
	TokensUsed int   `json:"tokens_used,omitempty"`
}

// TotalIssues returns the issue count across all severities.
func (m Metrics) TotalIssues() int {
	return m.CriticalIssues + m.HighIssues + m.MediumIssues + m.LowIssues + m.InfoIssues
}

// BlockingIssues returns the count of critical and high issues.
func (m Metrics) BlockingIssues() int {
	return m.CriticalIssues + m.HighIssues
}

// Score computes a 0-100 quality score weighted by severity and
// normalized by the size of the change.
func (m Metrics) Score() float64 {
	if m.TotalIssues() == 0 {
		return 100
	}
	weighted := float64(m.CriticalIssues)*10 +
		float64(m.HighIssues)*5 +
		float64(m.MediumIssues)*2 +
		float64(m.LowIssues)*1 +
		float64(m.InfoIssues)*0.5
	changes := m.LinesAdded + m.LinesDeleted
	if changes == 0 {
		return max(0, 100-weighted)
	}
	density := weighted / float64(changes) * 100
	return max(0, 100-density)
}

// Focus is a review focus area selecting a prompt template.
type Focus string

const (
	FocusGeneral         Focus = "general"
	FocusSecurity        Focus = "security"
	FocusPerformance     Focus = "performance"
	FocusStyle           Focus = "style"
	FocusBugs            Focus = "bugs"
	FocusMaintainability Focus = "maintainability"
	FocusTesting         Focus = "testing"
)

// ParseFocus validates a focus string, returning FocusGeneral and false
// for unknown values.
func ParseFocus(s string) (Focus, bool) {
	f := Focus(normalizeTag(s))
	switch f {
	case FocusGeneral, FocusSecurity, FocusPerformance, FocusStyle,
		FocusBugs, FocusMaintainability, FocusTesting:
		return f, true
	default:
		return FocusGeneral, false
	}
}

// Request captures the parameters of one review invocation.
type Request struct {
	Source string `json:"source"`
	Target string `json:"target"`

	Focus           Focus    `json:"focus"`
	IncludePatterns []string `json:"include_patterns,omitempty"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty"`
	MaxFiles        int      `json:"max_files"`

	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

// RawResponse is the opaque provider reply plus metadata. Immutable once
// received; the normalizer reads only Content.
type RawResponse struct {
	Content    string    `json:"content"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	TokensUsed int       `json:"tokens_used,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// ReviewResult is the aggregate outcome of one review run. It is
// constructed once by the engine and never mutated afterwards.
type ReviewResult struct {
	ID     string `json:"id"`
	Status Status `json:"status"`

	Request Request `json:"request"`

	Issues          []Issue  `json:"issues"`
	Summary         string   `json:"summary,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	Metrics         Metrics  `json:"metrics"`

	// ParseDiagnostic retains the error from the failed strict parse when
	// the regex fallback produced the issues.
	ParseDiagnostic string `json:"parse_diagnostic,omitempty"`

	Provider  string    `json:"provider,omitempty"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IssuesBySeverity returns issues matching the given severity, in order.
func (r *ReviewResult) IssuesBySeverity(s Severity) []Issue {
	var out []Issue
	for _, is := range r.Issues {
		if is.Severity == s {
			out = append(out, is)
		}
	}
	return out
}

// BlockingIssues returns all critical and high issues.
func (r *ReviewResult) BlockingIssues() []Issue {
	var out []Issue
	for _, is := range r.Issues {
		if is.Blocking() {
			out = append(out, is)
		}
	}
	return out
}

// Approved reports whether the review found no blocking issues.
func (r *ReviewResult) Approved() bool {
	return len(r.BlockingIssues()) == 0
}

// ComputeMetrics fills the per-severity counters from Issues, keeping any
// file/line counters already set.
func (r *ReviewResult) ComputeMetrics() {
	r.Metrics.CriticalIssues = 0
	r.Metrics.HighIssues = 0
	r.Metrics.MediumIssues = 0
	r.Metrics.LowIssues = 0
	r.Metrics.InfoIssues = 0
	for _, is := range r.Issues {
		switch is.Severity {
		case SeverityCritical:
			r.Metrics.CriticalIssues++
		case SeverityHigh:
			r.Metrics.HighIssues++
		case SeverityMedium:
			r.Metrics.MediumIssues++
		case SeverityLow:
			r.Metrics.LowIssues++
		case SeverityInfo:
			r.Metrics.InfoIssues++
		}
	}
}
