package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle  key.Binding
	Left    key.Binding
	Right   key.Binding
	Commit  key.Binding
	Cancel  key.Binding
	Spawn   key.Binding
	Close   key.Binding
	Append  key.Binding
	Remove  key.Binding
	Desktop key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Toggle: key.NewBinding(
			key.WithKeys("tab", " "),
			key.WithHelp("tab/space", "overview"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev desktop"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next desktop"),
		),
		Commit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "switch"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Spawn: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new window"),
		),
		Close: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "close window"),
		),
		Append: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add desktop"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove desktop"),
		),
		Desktop: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "go to desktop"),
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
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Left, k.Right, k.Commit, k.Spawn, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Commit, k.Cancel},
		{k.Left, k.Right, k.Desktop},
		{k.Spawn, k.Close},
		{k.Append, k.Remove},
		{k.Help, k.Quit},
	}
}
