package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the dashboard key bindings.
type KeyMap struct {
	Toggle   key.Binding
	Dimmer   key.Binding
	Brighter key.Binding
	Commit   key.Binding
	Normal   key.Binding
	Relaxing key.Binding
	Party    key.Binding
	NewFace  key.Binding
	Up       key.Binding
	Down     key.Binding
	Delete   key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle light")),
		Dimmer:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "dimmer")),
		Brighter: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "brighter")),
		Commit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply brightness")),
		Normal:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "normal")),
		Relaxing: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "relaxing")),
		Party:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "party")),
		NewFace:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "register face")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete face")),
		Confirm:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
		Cancel:   key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", "cancel")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp returns keybindings to be shown in the mini help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Dimmer, k.Brighter, k.Commit, k.NewFace, k.Delete, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Dimmer, k.Brighter, k.Commit},
		{k.Normal, k.Relaxing, k.Party},
		{k.NewFace, k.Up, k.Down, k.Delete},
		{k.Refresh, k.Help, k.Quit},
	}
}
