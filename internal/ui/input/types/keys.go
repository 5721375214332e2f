package types

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the normal-mode bindings. The normal mode matches keys
// against it and the help views render it, so the two cannot drift.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Top       key.Binding
	Bottom    key.Binding
	Switch    key.Binding
	Select    key.Binding
	Clear     key.Binding
	Send      key.Binding
	URI       key.Binding
	Cancel    key.Binding
	Add       key.Binding
	Remove    key.Binding
	Proximity key.Binding
	Filter    key.Binding
	History   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the stock bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:    key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown:  key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Top:       key.NewBinding(key.WithKeys("home"), key.WithHelp("gg/home", "top")),
		Bottom:    key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G/end", "bottom")),
		Switch:    key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch pane")),
		Select:    key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "select")),
		Clear:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear filter/selection")),
		Send:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "send files")),
		URI:       key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "send URI")),
		Cancel:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cancel transfer")),
		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add file")),
		Remove:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove file")),
		Proximity: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "toggle proximity")),
		Filter:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter devices")),
		History:   key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "history")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Switch, k.Select, k.Send, k.URI, k.Proximity, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap; each group is one of HelpSections
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom, k.Switch},
		{k.Select, k.Clear, k.Filter},
		{k.Send, k.URI, k.Cancel, k.Add, k.Remove},
		{k.Proximity, k.History, k.Help, k.Quit},
	}
}

// HelpSections names the FullHelp groups
var HelpSections = []string{"Navigation", "Selection", "Sharing", "Other"}
