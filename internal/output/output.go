// Package output renders review results in the supported formats:
// rich terminal, plain JSON, Markdown, and HTML.
package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/nikolliervin/code-unc/internal/model"
)

// Format identifies an output renderer.
type Format string

const (
	FormatRich     Format = "rich"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat validates a format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatRich, FormatJSON, FormatMarkdown, FormatHTML:
		return Format(s), nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format: %s (want rich, json, markdown, or html)", s)
	}
}

// Render writes the result to w in the requested format.
func Render(w io.Writer, res *model.ReviewResult, f Format) error {
	switch f {
	case FormatJSON:
		return RenderJSON(w, res)
	case FormatMarkdown:
		return RenderMarkdown(w, res)
	case FormatHTML:
		return RenderHTML(w, res)
	default:
		return RenderTerminal(w, res)
	}
}

// Extension returns the conventional file extension for a format.
func Extension(f Format) string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatMarkdown:
		return ".md"
	case FormatHTML:
		return ".html"
	default:
		return ".txt"
	}
}

// severityOrder lists severities from most to least severe for grouped
// rendering.
var severityOrder = []model.Severity{
	model.SeverityCritical,
	model.SeverityHigh,
	model.SeverityMedium,
	model.SeverityLow,
	model.SeverityInfo,
}

// sortIssues orders issues by severity rank, then file, then line.
func sortIssues(issues []model.Issue) []model.Issue {
	out := make([]model.Issue, len(issues))
	copy(out, issues)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := model.SeverityRank(out[i].Severity), model.SeverityRank(out[j].Severity)
		if ri != rj {
			return ri > rj
		}
		if out[i].Location.FilePath != out[j].Location.FilePath {
			return out[i].Location.FilePath < out[j].Location.FilePath
		}
		return out[i].Location.LineStart < out[j].Location.LineStart
	})
	return out
}
