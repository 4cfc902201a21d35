package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
)

// KeyMap holds every binding the order screen reacts to.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Top        key.Binding
	Bottom     key.Binding
	Toggle     key.Binding
	NextFilter key.Binding
	PrevFilter key.Binding
	Status     key.Binding
	Delete     key.Binding
	Refresh    key.Binding
	Help       key.Binding
	Quit       key.Binding

	// Modal keys.
	Confirm key.Binding
	Cancel  key.Binding
	Switch  key.Binding
	Select  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:     key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown:   key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Top:        key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:     key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		Toggle:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		NextFilter: key.NewBinding(key.WithKeys("f", "tab"), key.WithHelp("f", "next filter")),
		PrevFilter: key.NewBinding(key.WithKeys("F", "shift+tab"), key.WithHelp("F", "prev filter")),
		Status:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "set status")),
		Delete:     key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Confirm: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
		Cancel:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", "cancel")),
		Switch:  key.NewBinding(key.WithKeys("left", "right", "h", "l", "tab")),
		Select:  key.NewBinding(key.WithKeys("enter")),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.NextFilter, k.Status, k.Delete, k.Refresh, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Toggle, k.NextFilter, k.PrevFilter, k.Status},
		{k.Delete, k.Refresh, k.Help, k.Quit},
	}
}

// tableKeys hands navigation to the table without letting its default
// bindings shadow the screen's single-letter actions.
func (k KeyMap) tableKeys() table.KeyMap {
	return table.KeyMap{
		LineUp:       k.Up,
		LineDown:     k.Down,
		PageUp:       k.PageUp,
		PageDown:     k.PageDown,
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		GotoTop:      k.Top,
		GotoBottom:   k.Bottom,
	}
}
