package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up    key.Binding
	down  key.Binding
	enter key.Binding
	back  key.Binding
	copy  key.Binding
	cut   key.Binding
	paste key.Binding
	del   key.Binding
	undo  key.Binding
	redo  key.Binding
	quit  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open set")),
		back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		copy:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy")),
		cut:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "cut")),
		paste: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "paste")),
		del:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		undo:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		redo:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "redo")),
		quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.copy, k.cut, k.paste, k.del},
		{k.undo, k.redo, k.quit},
	}
}
