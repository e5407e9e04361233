package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikolliervin/code-unc/internal/model"
	"github.com/nikolliervin/code-unc/internal/output"
)

// severityMarker is the single-character badge shown in the list.
var severityMarker = map[model.Severity]string{
	model.SeverityCritical: "C",
	model.SeverityHigh:     "H",
	model.SeverityMedium:   "M",
	model.SeverityLow:      "L",
	model.SeverityInfo:     "i",
}

func (m Model) renderIssueList(width, height int) string {
	var b strings.Builder

	if len(m.visible) == 0 {
		b.WriteString(dimStyle.Render("no issues"))
	}

	for i, is := range m.visible {
		marker := severityStyles[is.Severity].Render(severityMarker[is.Severity])

		title := is.Title
		maxTitle := width - 8
		if maxTitle > 0 && len(title) > maxTitle {
			title = title[:maxTitle-1] + "…"
		}

		line := fmt.Sprintf("%s %s", marker, title)
		style := issueItemStyle
		if i == m.issueIndex {
			style = issueItemSelectedStyle
		}

		b.WriteString(style.Width(width - 4).Render(line))
		if i < len(m.visible)-1 {
			b.WriteByte('\n')
		}
	}

	return issueListStyle.Width(width).Height(height - 2).Render(b.String())
}

func (m Model) renderDetail(width, height int) string {
	innerHeight := height - 2
	if len(m.visible) == 0 {
		return detailStyle.Width(width).Height(innerHeight).Render("No issues to show")
	}

	is := m.visible[m.issueIndex]
	innerWidth := width - 4

	lines := m.detailLines(is, innerWidth)

	// Clamp scroll to content.
	maxOffset := len(lines) - (innerHeight - 1)
	if maxOffset < 0 {
		maxOffset = 0
	}
	offset := m.scrollOffset
	if offset > maxOffset {
		offset = maxOffset
	}

	end := offset + innerHeight - 1
	if end > len(lines) {
		end = len(lines)
	}

	var b strings.Builder
	b.WriteString(detailHeaderStyle.Render(is.Title))
	b.WriteByte('\n')
	for i := offset; i < end; i++ {
		b.WriteString(lines[i])
		if i < end-1 {
			b.WriteByte('\n')
		}
	}

	return detailStyle.Width(width).Height(innerHeight).Render(b.String())
}

func (m Model) detailLines(is model.Issue, width int) []string {
	var lines []string

	loc := locationStyle.Render(is.FormatLocation())
	if is.Location.Inferred {
		loc += dimStyle.Render(" (inferred)")
	}
	lines = append(lines, loc)
	lines = append(lines, dimStyle.Render(fmt.Sprintf("%s · %s · confidence %.0f%%",
		strings.ToUpper(string(is.Severity)), is.Category, is.Confidence*100)))
	lines = append(lines, "")

	if is.Description != "" {
		lines = append(lines, wrapLines(is.Description, width)...)
		lines = append(lines, "")
	}

	if is.CodeSnippet != "" {
		for _, hl := range output.HighlightSnippet(is.Location.FilePath, is.CodeSnippet) {
			var lb strings.Builder
			for _, tok := range hl.Tokens {
				if tok.Color != "" {
					lb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(tok.Color)).Render(tok.Text))
				} else {
					lb.WriteString(snippetStyle.Render(tok.Text))
				}
			}
			lines = append(lines, "  "+lb.String())
		}
		lines = append(lines, "")
	}

	if is.SuggestedFix != "" {
		lines = append(lines, fixHeaderStyle.Render("Suggested fix"))
		for _, l := range strings.Split(strings.TrimRight(is.SuggestedFix, "\n"), "\n") {
			lines = append(lines, "  "+l)
		}
	}

	return lines
}

func (m Model) renderStatusBar() string {
	left := fmt.Sprintf(" Issue %d/%d", min(m.issueIndex+1, len(m.visible)), len(m.visible))

	filter := "all"
	if sev := filterOrder[m.filterIndex]; sev != "" {
		filter = string(sev)
	}

	verdict := approvedStyle.Render("approved")
	if !m.result.Approved() {
		verdict = blockedStyle.Render(fmt.Sprintf("%d blocking", len(m.result.BlockingIssues())))
	}

	right := fmt.Sprintf("filter: %s  score %.1f  ", filter, m.result.Metrics.Score())

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - lipgloss.Width(verdict) - 2
	if gap < 0 {
		gap = 0
	}

	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + verdict + "  " + right)
}

func (m Model) renderHelp() string {
	var b strings.Builder

	b.WriteString(detailHeaderStyle.Render("unc — Keyboard Shortcuts"))
	b.WriteString("\n\n")

	helpItems := []struct{ key, desc string }{
		{"↑/k", "Previous issue"},
		{"↓/j", "Next issue"},
		{"u/d", "Scroll detail"},
		{"f/Tab", "Next severity filter"},
		{"F/S-Tab", "Previous severity filter"},
		{"?", "Toggle this help"},
		{"q", "Quit"},
	}

	for _, item := range helpItems {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			helpKeyStyle.Width(12).Render(item.key),
			item.desc,
		))
	}

	b.WriteString("\n")
	b.WriteString(helpBarStyle.Render("Press ? to close help"))

	return b.String()
}

// wrapLines breaks text at word boundaries into lines of at most width.
func wrapLines(s string, width int) []string {
	if width < 10 {
		width = 10
	}
	var lines []string
	var cur strings.Builder
	for _, word := range strings.Fields(s) {
		if cur.Len() > 0 && cur.Len()+1+len(word) > width {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
