package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap 定义全局快捷键绑定
// KeyMap defines global keybindings
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Open     key.Binding
	Pin      key.Binding
	Rename   key.Binding
	Delete   key.Binding
	NewDraft key.Binding
	Cancel   key.Binding
	Quit     key.Binding
}

// DefaultKeyMap 默认快捷键
// DefaultKeyMap returns default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Pin: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pin"),
		),
		Rename: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rename"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		NewDraft: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new draft"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
