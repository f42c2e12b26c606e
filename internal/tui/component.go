// Package tui holds the shared pieces of the marquee terminal UI: the
// Component contract, cross-component messages and styling helpers.
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/artpar/marquee/internal/favourites"
)

// Component is the interface for all TUI components.
type Component interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Component, tea.Cmd)
	View() string

	// Title is shown in the tab bar and breadcrumbs.
	Title() string

	Focused() bool
	Focus()
	Blur()

	SetSize(width, height int)
	Width() int
	Height() int
}

// Messages

// FocusMsg is sent when a component should gain focus.
type FocusMsg struct{}

// BlurMsg is sent when a component should lose focus.
type BlurMsg struct{}

// LoadMoreMsg asks the named list to fetch its next page.
type LoadMoreMsg struct {
	List string
}

// PageLoadedMsg reports that a fetch for the named list finished. The
// list re-reads its loader state.
type PageLoadedMsg struct {
	List string
	Err  error
}

// FavouritesChangedMsg mirrors a favouritesUpdated signal.
type FavouritesChangedMsg struct{}

// FavouritesLoadedMsg carries a fresh read of the favourites set.
type FavouritesLoadedMsg struct {
	Set favourites.Set
}

// ToggleFavouriteMsg asks for one favourite to be flipped.
type ToggleFavouriteMsg struct {
	Partition favourites.Partition
	ID        int
}

// ToggleResultMsg reports the outcome of a toggle.
type ToggleResultMsg struct {
	Partition favourites.Partition
	ID        int
	Favourite bool
	Err       error
}

// OpenDetailMsg asks for the detail view of one item.
type OpenDetailMsg struct {
	Partition favourites.Partition
	ID        int
}

// CopyMsg is sent when content should be copied.
type CopyMsg struct {
	Content string
}

// FeedbackMsg is a short notification for the status line.
type FeedbackMsg struct {
	Message string
	IsError bool
}

// BaseComponent provides common functionality for components.
type BaseComponent struct {
	title   string
	focused bool
	width   int
	height  int
}

// NewBaseComponent creates a new base component.
func NewBaseComponent(title string) *BaseComponent {
	return &BaseComponent{
		title: title,
	}
}

// Init initializes the component.
func (c *BaseComponent) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (c *BaseComponent) Update(msg tea.Msg) (Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
	case FocusMsg:
		c.focused = true
	case BlurMsg:
		c.focused = false
	}
	return c, nil
}

// View renders the title inside a border.
func (c *BaseComponent) View() string {
	return RenderBorder(RenderTitle(c.title, c.InnerWidth(), c.focused), c.InnerWidth(), c.InnerHeight(), c.focused)
}

// Title returns the component title.
func (c *BaseComponent) Title() string {
	return c.title
}

// Focused returns true if focused.
func (c *BaseComponent) Focused() bool {
	return c.focused
}

// Focus sets the component as focused.
func (c *BaseComponent) Focus() {
	c.focused = true
}

// Blur removes focus.
func (c *BaseComponent) Blur() {
	c.focused = false
}

// SetSize sets dimensions.
func (c *BaseComponent) SetSize(width, height int) {
	c.width = width
	c.height = height
}

// Width returns the width.
func (c *BaseComponent) Width() int {
	return c.width
}

// Height returns the height.
func (c *BaseComponent) Height() int {
	return c.height
}

// InnerWidth is the width left inside a border.
func (c *BaseComponent) InnerWidth() int {
	return max(c.width-2, 1)
}

// InnerHeight is the height left inside a border.
func (c *BaseComponent) InnerHeight() int {
	return max(c.height-2, 1)
}

// ComponentList manages a list of components with focus cycling.
type ComponentList struct {
	components []Component
	focusIndex int
}

// NewComponentList creates a new component list.
func NewComponentList() *ComponentList {
	return &ComponentList{
		components: make([]Component, 0),
		focusIndex: -1,
	}
}

// Add adds a component to the list.
func (cl *ComponentList) Add(c Component) {
	cl.components = append(cl.components, c)
}

// Len returns the number of components.
func (cl *ComponentList) Len() int {
	return len(cl.components)
}

// Get returns a component by index.
func (cl *ComponentList) Get(index int) Component {
	if index < 0 || index >= len(cl.components) {
		return nil
	}
	return cl.components[index]
}

// All returns every component in order.
func (cl *ComponentList) All() []Component {
	return cl.components
}

// FocusNext cycles focus to the next component.
func (cl *ComponentList) FocusNext() {
	if len(cl.components) == 0 {
		return
	}
	cl.setFocus((cl.focusIndex + 1) % len(cl.components))
}

// FocusPrev cycles focus to the previous component.
func (cl *ComponentList) FocusPrev() {
	if len(cl.components) == 0 {
		return
	}
	prev := cl.focusIndex - 1
	if prev < 0 {
		prev = len(cl.components) - 1
	}
	cl.setFocus(prev)
}

// FocusIndex returns the current focus index.
func (cl *ComponentList) FocusIndex() int {
	return cl.focusIndex
}

// SetFocusIndex sets focus to a specific index.
func (cl *ComponentList) SetFocusIndex(index int) {
	if index < 0 || index >= len(cl.components) {
		return
	}
	cl.setFocus(index)
}

// Focused returns the currently focused component.
func (cl *ComponentList) Focused() Component {
	return cl.Get(cl.focusIndex)
}

func (cl *ComponentList) setFocus(index int) {
	if current := cl.Get(cl.focusIndex); current != nil {
		current.Blur()
	}
	cl.focusIndex = index
	cl.components[index].Focus()
}

// Colours shared by every panel.
var (
	ColorAccent = lipgloss.Color("62")
	ColorMuted  = lipgloss.Color("240")
	ColorError  = lipgloss.Color("196")
	ColorHeart  = lipgloss.Color("205")
	ColorGood   = lipgloss.Color("42")
	ColorTitle  = lipgloss.Color("229")
)

// Styles groups the text styles used by panels.
type Styles struct {
	Selected lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Heart    lipgloss.Style
	Heading  lipgloss.Style
	BadgeOn  lipgloss.Style
	BadgeOff lipgloss.Style
}

// DefaultStyles returns default styling.
func DefaultStyles() Styles {
	return Styles{
		Selected: lipgloss.NewStyle().Foreground(ColorTitle).Background(ColorAccent),
		Muted:    lipgloss.NewStyle().Foreground(ColorMuted),
		Error:    lipgloss.NewStyle().Foreground(ColorError),
		Heart:    lipgloss.NewStyle().Foreground(ColorHeart),
		Heading:  lipgloss.NewStyle().Bold(true).Foreground(ColorTitle),
		BadgeOn:  lipgloss.NewStyle().Foreground(ColorGood),
		BadgeOff: lipgloss.NewStyle().Foreground(ColorError),
	}
}

// RenderTitle renders a title bar.
func RenderTitle(title string, width int, focused bool) string {
	style := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Bold(true)

	if focused {
		style = style.Foreground(ColorTitle).Background(ColorAccent)
	} else {
		style = style.Foreground(lipgloss.Color("252")).Background(lipgloss.Color("238"))
	}

	return style.Render(title)
}

// RenderBorder renders content with a border.
func RenderBorder(content string, width, height int, focused bool) string {
	style := lipgloss.NewStyle().
		Width(width).
		Height(height).
		BorderStyle(lipgloss.RoundedBorder())

	if focused {
		style = style.BorderForeground(ColorAccent)
	} else {
		style = style.BorderForeground(lipgloss.Color("244"))
	}

	return style.Render(content)
}

// Truncate shortens s to width runes, ending in "..." when cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

// PadRight pads s with spaces to width runes.
func PadRight(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return Truncate(s, width)
	}
	return s + strings.Repeat(" ", width-n)
}
