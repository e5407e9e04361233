package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikolliervin/code-unc/internal/model"
)

var (
	colorRed    = lipgloss.Color("#ff5555")
	colorOrange = lipgloss.Color("#ffb86c")
	colorYellow = lipgloss.Color("#f1fa8c")
	colorBlue   = lipgloss.Color("#8be9fd")
	colorGreen  = lipgloss.Color("#50fa7b")
	colorDim    = lipgloss.Color("#6272a4")
	colorFg     = lipgloss.Color("#f8f8f2")
	colorBorder = lipgloss.Color("#44475a")
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().Foreground(colorDim)

	approvedStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	blockedStyle  = lipgloss.NewStyle().Foreground(colorRed).Bold(true)

	locationStyle = lipgloss.NewStyle().Foreground(colorFg)

	severityStyles = map[model.Severity]lipgloss.Style{
		model.SeverityCritical: lipgloss.NewStyle().Foreground(colorRed).Bold(true),
		model.SeverityHigh:     lipgloss.NewStyle().Foreground(colorOrange).Bold(true),
		model.SeverityMedium:   lipgloss.NewStyle().Foreground(colorYellow),
		model.SeverityLow:      lipgloss.NewStyle().Foreground(colorBlue),
		model.SeverityInfo:     lipgloss.NewStyle().Foreground(colorDim),
	}
)

// RenderTerminal writes the styled terminal report.
func RenderTerminal(w io.Writer, res *model.ReviewResult) error {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Code Review"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s → %s · %s (%s) · focus: %s",
		res.Request.Source, res.Request.Target, res.Provider, res.Model, res.Request.Focus)))
	b.WriteString("\n\n")

	if res.Status != model.StatusCompleted {
		b.WriteString(dimStyle.Render("note: " + string(res.Status)))
		b.WriteString("\n\n")
	}

	if res.Summary != "" {
		b.WriteString(boxStyle.Render(wrap(res.Summary, 76)))
		b.WriteString("\n\n")
	}

	m := res.Metrics
	b.WriteString(fmt.Sprintf("  score %s   files %d   +%d/-%d   issues %d (%d blocking)\n\n",
		scoreStyle(m.Score()).Render(fmt.Sprintf("%.1f", m.Score())),
		m.FilesReviewed, m.LinesAdded, m.LinesDeleted,
		m.TotalIssues(), m.BlockingIssues()))

	for _, is := range sortIssues(res.Issues) {
		renderIssue(&b, is)
	}

	if len(res.Recommendations) > 0 {
		b.WriteString(headerStyle.Render("Recommendations"))
		b.WriteString("\n")
		for _, r := range res.Recommendations {
			b.WriteString("  • " + r + "\n")
		}
		b.WriteString("\n")
	}

	if res.Approved() {
		b.WriteString(approvedStyle.Render("✓ Approved") + dimStyle.Render(" (no blocking issues)"))
	} else {
		b.WriteString(blockedStyle.Render(fmt.Sprintf("✗ %d blocking issue(s)", len(res.BlockingIssues()))))
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func renderIssue(b *strings.Builder, is model.Issue) {
	sev := severityStyles[is.Severity]
	b.WriteString(sev.Render(strings.ToUpper(string(is.Severity))))
	b.WriteString(" ")
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(is.Title))
	b.WriteString("\n  ")
	b.WriteString(locationStyle.Render(is.FormatLocation()))
	if is.Location.Inferred {
		b.WriteString(dimStyle.Render(" (inferred)"))
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("  [%s, %.0f%%]", is.Category, is.Confidence*100)))
	b.WriteString("\n")

	if is.Description != "" {
		b.WriteString(indent(wrap(is.Description, 74), "  "))
		b.WriteString("\n")
	}
	if is.CodeSnippet != "" {
		for _, hl := range HighlightSnippet(is.Location.FilePath, is.CodeSnippet) {
			b.WriteString("    ")
			for _, tok := range hl.Tokens {
				if tok.Color != "" {
					b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(tok.Color)).Render(tok.Text))
				} else {
					b.WriteString(tok.Text)
				}
			}
			b.WriteString("\n")
		}
	}
	if is.SuggestedFix != "" {
		b.WriteString(dimStyle.Render("  fix: "))
		b.WriteString(strings.Split(is.SuggestedFix, "\n")[0])
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func scoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= 80:
		return approvedStyle
	case score >= 50:
		return severityStyles[model.SeverityMedium]
	default:
		return blockedStyle
	}
}

// wrap breaks text at word boundaries to the given width.
func wrap(s string, width int) string {
	var b strings.Builder
	lineLen := 0
	for _, word := range strings.Fields(s) {
		if lineLen > 0 && lineLen+1+len(word) > width {
			b.WriteByte('\n')
			lineLen = 0
		} else if lineLen > 0 {
			b.WriteByte(' ')
			lineLen++
		}
		b.WriteString(word)
		lineLen += len(word)
	}
	return b.String()
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}
