package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikolliervin/code-unc/internal/model"
)

func browserResult() *model.ReviewResult {
	res := &model.ReviewResult{
		ID:     "r1",
		Status: model.StatusCompleted,
		Issues: []model.Issue{
			{Title: "style nit", Severity: model.SeverityLow, Location: model.Location{FilePath: "b.go", LineStart: 3}},
			{Title: "injection", Severity: model.SeverityCritical, Location: model.Location{FilePath: "a.go", LineStart: 10}},
			{Title: "leaked key", Severity: model.SeverityCritical, Location: model.Location{FilePath: "a.go", LineStart: 2}},
			{Title: "slow loop", Severity: model.SeverityMedium, Location: model.Location{FilePath: "c.go", LineStart: 7}},
		},
		Summary: "mixed bag",
	}
	res.ComputeMetrics()
	return res
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewSortsBySeverityThenLocation(t *testing.T) {
	m := New(browserResult())

	got := make([]string, len(m.all))
	for i, is := range m.all {
		got[i] = is.Title
	}
	want := []string{"leaked key", "injection", "slow loop", "style nit"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if len(m.visible) != 4 {
		t.Errorf("visible = %d, want all issues with no filter", len(m.visible))
	}
}

func TestFilterCycling(t *testing.T) {
	m := New(browserResult())

	next, _ := m.Update(keyMsg("f"))
	m = next.(Model)
	if len(m.visible) != 2 {
		t.Fatalf("critical filter: visible = %d, want 2", len(m.visible))
	}
	for _, is := range m.visible {
		if is.Severity != model.SeverityCritical {
			t.Errorf("filter leaked %s issue %q", is.Severity, is.Title)
		}
	}

	// Cycle back to "all".
	next, _ = m.Update(keyMsg("F"))
	m = next.(Model)
	if len(m.visible) != 4 {
		t.Errorf("after cycling back: visible = %d, want 4", len(m.visible))
	}
}

func TestFilterResetsSelection(t *testing.T) {
	m := New(browserResult())

	next, _ := m.Update(keyMsg("j"))
	m = next.(Model)
	if m.issueIndex != 1 {
		t.Fatalf("issueIndex = %d after down", m.issueIndex)
	}

	next, _ = m.Update(keyMsg("f"))
	m = next.(Model)
	if m.issueIndex != 0 {
		t.Errorf("issueIndex = %d after filter change, want 0", m.issueIndex)
	}
}

func TestNavigationBounds(t *testing.T) {
	m := New(browserResult())

	next, _ := m.Update(keyMsg("k"))
	m = next.(Model)
	if m.issueIndex != 0 {
		t.Errorf("up at top moved to %d", m.issueIndex)
	}

	for i := 0; i < 10; i++ {
		next, _ = m.Update(keyMsg("j"))
		m = next.(Model)
	}
	if m.issueIndex != len(m.visible)-1 {
		t.Errorf("down past end = %d, want %d", m.issueIndex, len(m.visible)-1)
	}
}

func TestScrollBounds(t *testing.T) {
	m := New(browserResult())

	next, _ := m.Update(keyMsg("u"))
	m = next.(Model)
	if m.scrollOffset != 0 {
		t.Errorf("scroll up at top = %d", m.scrollOffset)
	}

	next, _ = m.Update(keyMsg("d"))
	m = next.(Model)
	if m.scrollOffset != 1 {
		t.Errorf("scroll down = %d, want 1", m.scrollOffset)
	}
}

func TestQuit(t *testing.T) {
	m := New(browserResult())
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Errorf("cmd() = %v, want tea.QuitMsg", msg)
	}
}

func TestViewBeforeSizeIsPlaceholder(t *testing.T) {
	m := New(browserResult())
	if got := m.View(); got != "Loading..." {
		t.Errorf("View() before WindowSizeMsg = %q", got)
	}
}

func TestViewShowsIssues(t *testing.T) {
	m := New(browserResult())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)

	out := m.View()
	for _, want := range []string{"injection", "leaked key", "a.go"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHelpToggle(t *testing.T) {
	m := New(browserResult())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)

	next, _ = m.Update(keyMsg("?"))
	m = next.(Model)
	if !m.showHelp {
		t.Fatal("help should be visible")
	}
	if !strings.Contains(m.View(), "q") {
		t.Error("help view should list key bindings")
	}

	next, _ = m.Update(keyMsg("?"))
	m = next.(Model)
	if m.showHelp {
		t.Error("second ? should hide help")
	}
}
