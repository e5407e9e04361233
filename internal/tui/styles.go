package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nikolliervin/code-unc/internal/model"
)

// Color palette.
var (
	colorRed       = lipgloss.Color("#ff5555")
	colorGreen     = lipgloss.Color("#50fa7b")
	colorYellow    = lipgloss.Color("#f1fa8c")
	colorBlue      = lipgloss.Color("#8be9fd")
	colorOrange    = lipgloss.Color("#ffb86c")
	colorDim       = lipgloss.Color("#6272a4")
	colorBgLight   = lipgloss.Color("#343746")
	colorFg        = lipgloss.Color("#f8f8f2")
	colorBorder    = lipgloss.Color("#44475a")
	colorHighlight = lipgloss.Color("#44475a")
)

// Style definitions.
var (
	// Issue list styles
	issueListStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	issueItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	issueItemSelectedStyle = lipgloss.NewStyle().
				Foreground(colorFg).
				Background(colorHighlight).
				Bold(true)

	// Detail panel styles
	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	detailHeaderStyle = lipgloss.NewStyle().
				Foreground(colorBlue).
				Bold(true).
				Padding(0, 0, 1, 0)

	locationStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	snippetStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	fixHeaderStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	// Status bar
	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			Background(colorBgLight).
			Padding(0, 1)

	// Help bar
	helpBarStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	approvedStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	blockedStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	severityStyles = map[model.Severity]lipgloss.Style{
		model.SeverityCritical: lipgloss.NewStyle().Foreground(colorRed).Bold(true),
		model.SeverityHigh:     lipgloss.NewStyle().Foreground(colorOrange).Bold(true),
		model.SeverityMedium:   lipgloss.NewStyle().Foreground(colorYellow),
		model.SeverityLow:      lipgloss.NewStyle().Foreground(colorBlue),
		model.SeverityInfo:     lipgloss.NewStyle().Foreground(colorDim),
	}
)
