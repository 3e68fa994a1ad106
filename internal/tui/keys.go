package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	StartEarlier key.Binding
	StartLater   key.Binding
	EndEarlier   key.Binding
	EndLater     key.Binding
	ZoomIn       key.Binding
	ZoomOut      key.Binding
	Reset        key.Binding
	Quit         key.Binding
}

var keys = keyMap{
	StartEarlier: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "start earlier"),
	),
	StartLater: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "start later"),
	),
	EndEarlier: key.NewBinding(
		key.WithKeys("shift+left", "H"),
		key.WithHelp("S-←/H", "end earlier"),
	),
	EndLater: key.NewBinding(
		key.WithKeys("shift+right", "L"),
		key.WithHelp("S-→/L", "end later"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "zoom out"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.StartEarlier, k.StartLater, k.EndEarlier, k.EndLater, k.ZoomIn, k.ZoomOut, k.Reset, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.StartEarlier, k.StartLater, k.EndEarlier, k.EndLater},
		{k.ZoomIn, k.ZoomOut, k.Reset, k.Quit},
	}
}
