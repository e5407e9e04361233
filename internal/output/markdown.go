package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/nikolliervin/code-unc/internal/model"
)

var severityEmoji = map[model.Severity]string{
	model.SeverityCritical: "🔴",
	model.SeverityHigh:     "🟠",
	model.SeverityMedium:   "🟡",
	model.SeverityLow:      "🔵",
	model.SeverityInfo:     "⚪",
}

// RenderMarkdown writes a severity-grouped Markdown report.
func RenderMarkdown(w io.Writer, res *model.ReviewResult) error {
	var b strings.Builder

	b.WriteString("# Code Review Report\n\n")
	fmt.Fprintf(&b, "**Review ID:** `%s`  \n", res.ID)
	fmt.Fprintf(&b, "**Date:** %s  \n", res.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "**Provider:** %s (%s)  \n", res.Provider, res.Model)
	fmt.Fprintf(&b, "**Branches:** `%s` → `%s`  \n", res.Request.Source, res.Request.Target)
	fmt.Fprintf(&b, "**Focus:** %s  \n", res.Request.Focus)
	if res.Status != model.StatusCompleted {
		fmt.Fprintf(&b, "**Status:** %s  \n", res.Status)
	}
	b.WriteString("\n")

	if res.Summary != "" {
		b.WriteString("## Summary\n\n")
		b.WriteString(res.Summary)
		b.WriteString("\n\n")
	}

	m := res.Metrics
	b.WriteString("## Metrics\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Quality score | %.1f/100 |\n", m.Score())
	fmt.Fprintf(&b, "| Files reviewed | %d |\n", m.FilesReviewed)
	fmt.Fprintf(&b, "| Lines added | %d |\n", m.LinesAdded)
	fmt.Fprintf(&b, "| Lines deleted | %d |\n", m.LinesDeleted)
	fmt.Fprintf(&b, "| Total issues | %d |\n", m.TotalIssues())
	fmt.Fprintf(&b, "| Blocking issues | %d |\n", m.BlockingIssues())
	b.WriteString("\n")

	if len(res.Issues) == 0 {
		b.WriteString("## Issues\n\nNo issues found. ✅\n")
	} else {
		fmt.Fprintf(&b, "## Issues (%d)\n\n", len(res.Issues))
		for _, sev := range severityOrder {
			issues := res.IssuesBySeverity(sev)
			if len(issues) == 0 {
				continue
			}
			caser := strings.ToUpper(string(sev[0])) + string(sev[1:])
			fmt.Fprintf(&b, "### %s %s (%d)\n\n", severityEmoji[sev], caser, len(issues))
			for _, is := range sortIssues(issues) {
				writeIssueMarkdown(&b, is)
			}
		}
	}

	if len(res.Recommendations) > 0 {
		b.WriteString("## Recommendations\n\n")
		for _, r := range res.Recommendations {
			fmt.Fprintf(&b, "- %s\n", r)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeIssueMarkdown(b *strings.Builder, is model.Issue) {
	fmt.Fprintf(b, "#### %s\n\n", is.Title)
	fmt.Fprintf(b, "- **Location:** `%s`", is.FormatLocation())
	if is.Location.Inferred {
		b.WriteString(" _(inferred)_")
	}
	b.WriteString("\n")
	fmt.Fprintf(b, "- **Category:** %s\n", is.Category)
	fmt.Fprintf(b, "- **Confidence:** %.0f%%\n\n", is.Confidence*100)
	if is.Description != "" {
		b.WriteString(is.Description)
		b.WriteString("\n\n")
	}
	if is.CodeSnippet != "" {
		fmt.Fprintf(b, "```\n%s\n```\n\n", strings.TrimRight(is.CodeSnippet, "\n"))
	}
	if is.SuggestedFix != "" {
		fmt.Fprintf(b, "**Suggested fix:**\n\n```\n%s\n```\n\n", strings.TrimRight(is.SuggestedFix, "\n"))
	}
}
