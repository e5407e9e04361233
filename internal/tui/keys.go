package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	NextFilter key.Binding
	PrevFilter key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "previous issue"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "next issue"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("pgup", "u"),
		key.WithHelp("u", "scroll detail up"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("pgdown", "d"),
		key.WithHelp("d", "scroll detail down"),
	),
	NextFilter: key.NewBinding(
		key.WithKeys("tab", "f"),
		key.WithHelp("f/tab", "next severity filter"),
	),
	PrevFilter: key.NewBinding(
		key.WithKeys("shift+tab", "F"),
		key.WithHelp("F/S-tab", "prev severity filter"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
