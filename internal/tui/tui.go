// Package tui implements the Bubble Tea issue browser for review
// results.
package tui

import (
	"sort"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikolliervin/code-unc/internal/model"
)

// filterOrder cycles through the severity filters; the empty value
// means "all".
var filterOrder = []model.Severity{
	"",
	model.SeverityCritical,
	model.SeverityHigh,
	model.SeverityMedium,
	model.SeverityLow,
	model.SeverityInfo,
}

// Model is the top-level Bubble Tea model: an issue list on the left
// and the selected issue's detail on the right.
type Model struct {
	result *model.ReviewResult
	all    []model.Issue // sorted by severity, file, line

	// UI state
	width  int
	height int

	issueIndex   int
	scrollOffset int // scroll position within the detail panel
	filterIndex  int // index into filterOrder

	visible []model.Issue // issues matching the active filter

	showHelp bool
}

// New creates a TUI model from a finished review.
func New(res *model.ReviewResult) Model {
	all := make([]model.Issue, len(res.Issues))
	copy(all, res.Issues)
	sort.SliceStable(all, func(i, j int) bool {
		ri, rj := model.SeverityRank(all[i].Severity), model.SeverityRank(all[j].Severity)
		if ri != rj {
			return ri > rj
		}
		if all[i].Location.FilePath != all[j].Location.FilePath {
			return all[i].Location.FilePath < all[j].Location.FilePath
		}
		return all[i].Location.LineStart < all[j].Location.LineStart
	})

	m := Model{result: res, all: all}
	m.applyFilter()
	return m
}

func (m *Model) applyFilter() {
	sev := filterOrder[m.filterIndex]
	if sev == "" {
		m.visible = m.all
	} else {
		m.visible = nil
		for _, is := range m.all {
			if is.Severity == sev {
				m.visible = append(m.visible, is)
			}
		}
	}
	m.issueIndex = 0
	m.scrollOffset = 0
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Down):
			if m.issueIndex < len(m.visible)-1 {
				m.issueIndex++
				m.scrollOffset = 0
			}

		case key.Matches(msg, keys.Up):
			if m.issueIndex > 0 {
				m.issueIndex--
				m.scrollOffset = 0
			}

		case key.Matches(msg, keys.ScrollDown):
			m.scrollOffset++

		case key.Matches(msg, keys.ScrollUp):
			if m.scrollOffset > 0 {
				m.scrollOffset--
			}

		case key.Matches(msg, keys.NextFilter):
			m.filterIndex = (m.filterIndex + 1) % len(filterOrder)
			m.applyFilter()

		case key.Matches(msg, keys.PrevFilter):
			m.filterIndex = (m.filterIndex + len(filterOrder) - 1) % len(filterOrder)
			m.applyFilter()

		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	listWidth := m.listWidth()
	detailWidth := m.width - listWidth - 1

	list := m.renderIssueList(listWidth, m.height-2)
	detail := m.renderDetail(detailWidth, m.height-2)

	main := lipgloss.JoinHorizontal(lipgloss.Top, list, " ", detail)
	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) listWidth() int {
	maxLen := 24
	for _, is := range m.all {
		if len(is.Title) > maxLen {
			maxLen = len(is.Title)
		}
	}
	w := maxLen + 8 // severity marker + padding
	if w > m.width/2 {
		w = m.width / 2
	}
	if w < 24 {
		w = 24
	}
	return w
}

// Run starts the TUI application.
func Run(res *model.ReviewResult) error {
	p := tea.NewProgram(New(res), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
