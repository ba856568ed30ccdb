package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap is the console's key bindings. It satisfies the bubbles help
// KeyMap so the footer stays in sync with what is bound.
type KeyMap struct {
	Quit   key.Binding
	Debug  key.Binding
	Help   key.Binding
	Close  key.Binding
	Older  key.Binding
	Newer  key.Binding
	Errors key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Debug:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "debug")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Close:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Older:  key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "older")),
		Newer:  key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "newer")),
		Errors: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "errors only")),
	}
}

// ShortHelp is shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Debug, k.Help, k.Quit}
}

// FullHelp lists every binding, grouped by where it applies.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Debug, k.Help, k.Quit},
		{k.Older, k.Newer, k.Errors, k.Close},
	}
}
