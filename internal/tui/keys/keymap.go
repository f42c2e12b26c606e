// Package keys names the key bindings of each screen so the views and
// the help overlay agree on them.
package keys

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Context is the screen a binding applies to.
type Context int

const (
	Global Context = iota
	List
	Detail
	Favourites
)

// String returns the heading used in help.
func (c Context) String() string {
	switch c {
	case Global:
		return "General"
	case List:
		return "Events & Venues"
	case Detail:
		return "Detail"
	case Favourites:
		return "Favourites"
	default:
		return "Unknown"
	}
}

// Contexts lists every context in help order.
var Contexts = []Context{Global, List, Detail, Favourites}

// Action identifies what a binding does.
type Action string

const (
	Quit       Action = "quit"
	ShowHelp   Action = "help"
	Back       Action = "back"
	NextPage   Action = "next-page"
	PrevPage   Action = "prev-page"
	SelectPage Action = "select-page"
	Up         Action = "up"
	Down       Action = "down"
	PageUp     Action = "page-up"
	PageDown   Action = "page-down"
	Top        Action = "top"
	Bottom     Action = "bottom"
	Open       Action = "open"
	Favourite  Action = "favourite"
	Retry      Action = "retry"
	Copy       Action = "copy"
)

// Binding ties one or more keys to an action.
type Binding struct {
	action Action
	keys   []string
	help   string
}

// NewBinding creates a binding. Keys use tea.KeyMsg.String() names.
func NewBinding(action Action, help string, keys ...string) Binding {
	return Binding{action: action, keys: keys, help: help}
}

// Action returns the bound action.
func (b Binding) Action() Action { return b.action }

// Keys returns the bound keys.
func (b Binding) Keys() []string { return b.keys }

// Help returns the description shown in help.
func (b Binding) Help() string { return b.help }

// Label joins the keys for display.
func (b Binding) Label() string {
	return strings.Join(b.keys, " / ")
}

// Matches reports whether msg presses one of the bound keys.
func (b Binding) Matches(msg tea.KeyMsg) bool {
	pressed := msg.String()
	for _, k := range b.keys {
		if k == pressed {
			return true
		}
	}
	return false
}

// KeyMap holds bindings per context.
type KeyMap struct {
	bindings map[Context][]Binding
}

// NewKeyMap creates an empty key map.
func NewKeyMap() *KeyMap {
	return &KeyMap{
		bindings: make(map[Context][]Binding),
	}
}

// Register adds a binding to ctx.
func (km *KeyMap) Register(ctx Context, action Action, help string, keys ...string) {
	km.bindings[ctx] = append(km.bindings[ctx], NewBinding(action, help, keys...))
}

// Bindings returns the bindings of ctx in registration order.
func (km *KeyMap) Bindings(ctx Context) []Binding {
	return km.bindings[ctx]
}

// Find returns the binding in ctx that msg presses.
func (km *KeyMap) Find(ctx Context, msg tea.KeyMsg) (Binding, bool) {
	for _, b := range km.bindings[ctx] {
		if b.Matches(msg) {
			return b, true
		}
	}
	return Binding{}, false
}

// Lookup returns the first binding for action in ctx.
func (km *KeyMap) Lookup(ctx Context, action Action) (Binding, bool) {
	for _, b := range km.bindings[ctx] {
		if b.action == action {
			return b, true
		}
	}
	return Binding{}, false
}

// Default returns the marquee key map.
func Default() *KeyMap {
	km := NewKeyMap()

	km.Register(Global, NextPage, "Next page", "tab")
	km.Register(Global, PrevPage, "Previous page", "shift+tab")
	km.Register(Global, SelectPage, "Home / Events / Venues / Favourites", "1", "2", "3", "4")
	km.Register(Global, Back, "Back to the list", "esc")
	km.Register(Global, ShowHelp, "Toggle help", "?")
	km.Register(Global, Quit, "Quit", "q", "ctrl+c")

	km.Register(List, Down, "Move down", "j", "down")
	km.Register(List, Up, "Move up", "k", "up")
	km.Register(List, PageDown, "Page down", "pgdown", "ctrl+d")
	km.Register(List, PageUp, "Page up", "pgup", "ctrl+u")
	km.Register(List, Top, "Top", "g", "home")
	km.Register(List, Bottom, "Bottom (loads more)", "G", "end")
	km.Register(List, Open, "Open detail", "enter")
	km.Register(List, Favourite, "Toggle favourite", "f")
	km.Register(List, Retry, "Retry after an error", "r")
	km.Register(List, Copy, "Copy ticket link", "y")

	km.Register(Detail, Favourite, "Toggle favourite", "f")
	km.Register(Detail, Copy, "Copy ticket link", "y")

	km.Register(Favourites, Down, "Move down", "j", "down")
	km.Register(Favourites, Up, "Move up", "k", "up")
	km.Register(Favourites, Open, "Open detail", "enter")
	km.Register(Favourites, Favourite, "Remove favourite", "f")

	return km
}
