package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/artpar/marquee/internal/app"
	"github.com/artpar/marquee/internal/favourites"
	"github.com/artpar/marquee/internal/paging"
	"github.com/artpar/marquee/internal/seatgeek"
	"github.com/artpar/marquee/internal/tui"
	"github.com/artpar/marquee/internal/tui/components"
	"github.com/artpar/marquee/internal/tui/keys"
)

// Tab is a top-level page.
type Tab int

const (
	TabHome Tab = iota
	TabEvents
	TabVenues
	TabFavourites
)

// List names used in load messages.
const (
	EventsList = "events"
	VenuesList = "venues"
)

type (
	eventsPanel = components.ListPanel[seatgeek.Event, seatgeek.Options]
	venuesPanel = components.ListPanel[seatgeek.Venue, seatgeek.Options]
)

// clearNotificationMsg is sent to clear the notification.
type clearNotificationMsg struct{}

// Option configures the MainView.
type Option func(*options)

type options struct {
	detector []paging.DetectorOption
	copyFunc func(string) error
}

// WithDetectorOptions overrides the proximity detector settings of both
// listings.
func WithDetectorOptions(opts ...paging.DetectorOption) Option {
	return func(o *options) {
		o.detector = opts
	}
}

// WithCopyFunc replaces the system clipboard.
func WithCopyFunc(fn func(string) error) Option {
	return func(o *options) {
		o.copyFunc = fn
	}
}

// MainView is the top-level view: a tab bar, a breadcrumb line, the
// active page and a status bar.
type MainView struct {
	width        int
	height       int
	app          *app.App
	tabs         *tui.ComponentList
	keymap       *keys.KeyMap
	home         *components.HomePanel
	events       *eventsPanel
	venues       *venuesPanel
	favs         *components.FavouritesPanel
	detail       *components.DetailPanel
	showDetail   bool
	showHelp     bool
	copyFunc     func(string) error
	notification string
	signals      chan struct{}
	done         chan struct{}
	unsubscribe  func()
	closed       bool
}

// NewMainView creates the main view over application.
func NewMainView(application *app.App, opts ...Option) *MainView {
	o := options{
		detector: application.DetectorOptions(),
		copyFunc: clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(&o)
	}

	client := application.Client()
	v := &MainView{
		app:      application,
		tabs:     tui.NewComponentList(),
		keymap:   keys.Default(),
		home:     components.NewHomePanel(),
		favs:     components.NewFavouritesPanel(client),
		detail:   components.NewDetailPanel(client, application.Favourites()),
		copyFunc: o.copyFunc,
		signals:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	v.events = components.NewListPanel(components.ListSource[seatgeek.Event]{
		Name:      EventsList,
		Title:     "Events",
		Partition: favourites.Events,
		ID:        func(e seatgeek.Event) int { return e.ID },
		Line:      eventLine,
		URL:       func(e seatgeek.Event) string { return e.URL },
	}, paging.NewWatcher(application.EventsLoader(nil), o.detector...))

	v.venues = components.NewListPanel(components.ListSource[seatgeek.Venue]{
		Name:      VenuesList,
		Title:     "Venues",
		Partition: favourites.Venues,
		ID:        func(v seatgeek.Venue) int { return v.ID },
		Line:      venueLine,
	}, paging.NewWatcher(application.VenuesLoader(nil), o.detector...))

	v.tabs.Add(v.home)
	v.tabs.Add(v.events)
	v.tabs.Add(v.venues)
	v.tabs.Add(v.favs)
	v.tabs.SetFocusIndex(int(TabHome))

	v.unsubscribe = application.Favourites().Subscribe(func() {
		select {
		case v.signals <- struct{}{}:
		default:
		}
	})

	return v
}

func eventLine(e seatgeek.Event) string {
	when, err := e.LocalTime()
	if err != nil {
		when = e.DatetimeUTC
	}
	return fmt.Sprintf("%s  ·  %s, %s  ·  %s", e.ShortTitle, e.Venue.NameV2, e.Venue.DisplayLocation, when)
}

func venueLine(v seatgeek.Venue) string {
	return fmt.Sprintf("%s  ·  %s  ·  %s", v.NameV2, v.DisplayLocation, v.Badge())
}

// Init starts the background listeners.
func (v *MainView) Init() tea.Cmd {
	return tea.Batch(
		v.events.Init(),
		v.venues.Init(),
		v.waitForSignal(),
		v.loadFavourites(),
	)
}

// Update handles messages.
func (v *MainView) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	if v.showHelp {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			if b, found := v.keymap.Find(keys.Global, keyMsg); found {
				switch b.Action() {
				case keys.Back, keys.ShowHelp:
					v.showHelp = false
				case keys.Quit:
					return v, tea.Quit
				}
			}
			return v, nil
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.updatePaneSizes()
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case tui.FavouritesChangedMsg:
		return v, tea.Batch(v.loadFavourites(), v.waitForSignal())

	case tui.ToggleFavouriteMsg:
		return v, v.toggleFavourite(msg.Partition, msg.ID)

	case tui.ToggleResultMsg:
		return v, v.notifyToggle(msg)

	case tui.OpenDetailMsg:
		return v, v.openDetail(msg.Partition, msg.ID)

	case tui.CopyMsg:
		return v, v.handleCopy(msg.Content)

	case tui.FeedbackMsg:
		return v, v.notify(msg.Message, msg.IsError)

	case clearNotificationMsg:
		v.notification = ""
		return v, nil
	}

	return v, v.broadcast(msg)
}

// broadcast hands msg to every panel; each ignores what is not its own.
func (v *MainView) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for _, c := range v.tabs.All() {
		_, cmd := c.Update(msg)
		cmds = append(cmds, cmd)
	}
	_, cmd := v.detail.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

func (v *MainView) handleKeyMsg(msg tea.KeyMsg) (tui.Component, tea.Cmd) {
	if b, ok := v.keymap.Find(keys.Global, msg); ok {
		switch b.Action() {
		case keys.Quit:
			return v, tea.Quit
		case keys.ShowHelp:
			v.showHelp = true
			return v, nil
		case keys.Back:
			if v.showDetail {
				v.closeDetail()
			}
			return v, nil
		case keys.NextPage:
			v.closeDetail()
			v.tabs.FocusNext()
			return v, v.enterTab()
		case keys.PrevPage:
			v.closeDetail()
			v.tabs.FocusPrev()
			return v, v.enterTab()
		case keys.SelectPage:
			v.closeDetail()
			v.tabs.SetFocusIndex(int(msg.Runes[0] - '1'))
			return v, v.enterTab()
		}
	}

	if v.showDetail {
		_, cmd := v.detail.Update(msg)
		return v, cmd
	}
	_, cmd := v.tabs.Focused().Update(msg)
	return v, cmd
}

func (v *MainView) enterTab() tea.Cmd {
	if v.ActiveTab() == TabFavourites {
		return v.favs.Refresh()
	}
	return nil
}

func (v *MainView) openDetail(part favourites.Partition, id int) tea.Cmd {
	v.showDetail = true
	v.tabs.Focused().Blur()
	v.detail.Focus()
	return v.detail.Open(part, id)
}

func (v *MainView) closeDetail() {
	if !v.showDetail {
		return
	}
	v.showDetail = false
	v.detail.Blur()
	v.detail.Close()
	v.tabs.Focused().Focus()
}

func (v *MainView) waitForSignal() tea.Cmd {
	signals, done := v.signals, v.done
	return func() tea.Msg {
		select {
		case <-signals:
			return tui.FavouritesChangedMsg{}
		case <-done:
			return nil
		}
	}
}

func (v *MainView) loadFavourites() tea.Cmd {
	store := v.app.Favourites()
	return func() tea.Msg {
		set, err := store.Load(context.Background())
		if err != nil {
			return tui.FeedbackMsg{Message: "✗ Could not read favourites", IsError: true}
		}
		return tui.FavouritesLoadedMsg{Set: set}
	}
}

func (v *MainView) toggleFavourite(part favourites.Partition, id int) tea.Cmd {
	store := v.app.Favourites()
	return func() tea.Msg {
		value, err := store.Toggle(context.Background(), id, part)
		return tui.ToggleResultMsg{Partition: part, ID: id, Favourite: value, Err: err}
	}
}

func (v *MainView) notifyToggle(msg tui.ToggleResultMsg) tea.Cmd {
	if msg.Err != nil {
		v.app.Logger().Warn("favourite toggle failed", "partition", msg.Partition, "id", msg.ID, "error", msg.Err)
		return v.notify("✗ Could not save favourite", true)
	}
	if msg.Favourite {
		return v.notify(fmt.Sprintf("%s Added %s %d to favourites", favourites.MarkerOn, msg.Partition.ItemType(), msg.ID), false)
	}
	return v.notify(fmt.Sprintf("%s Removed %s %d from favourites", favourites.MarkerOff, msg.Partition.ItemType(), msg.ID), false)
}

func (v *MainView) handleCopy(content string) tea.Cmd {
	if err := v.copyFunc(content); err != nil {
		return v.notify("✗ Copy failed", true)
	}
	return v.notify("✓ Copied ticket link", false)
}

func (v *MainView) notify(message string, isError bool) tea.Cmd {
	if isError && !strings.HasPrefix(message, "✗") {
		message = "✗ " + message
	}
	v.notification = message
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return clearNotificationMsg{}
	})
}

func (v *MainView) updatePaneSizes() {
	if v.width == 0 || v.height == 0 {
		return
	}
	// Tab bar, breadcrumbs and status bar take one line each.
	contentHeight := max(v.height-3, 3)
	for _, c := range v.tabs.All() {
		c.SetSize(v.width, contentHeight)
	}
	v.detail.SetSize(v.width, contentHeight)
}

// View renders the view.
func (v *MainView) View() string {
	if v.width == 0 || v.height == 0 {
		return ""
	}
	if v.showHelp {
		return v.renderHelp()
	}

	content := v.tabs.Focused().View()
	if v.showDetail {
		content = v.detail.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.renderTabBar(),
		v.renderBreadcrumbs(),
		content,
		v.renderStatusBar(),
	)
}

func (v *MainView) renderTabBar() string {
	active := lipgloss.NewStyle().Bold(true).Foreground(tui.ColorTitle).Background(tui.ColorAccent).Padding(0, 1)
	inactive := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Padding(0, 1)

	var tabs []string
	for i, c := range v.tabs.All() {
		label := fmt.Sprintf("%d %s", i+1, c.Title())
		if i == v.tabs.FocusIndex() && !v.showDetail {
			tabs = append(tabs, active.Render(label))
		} else {
			tabs = append(tabs, inactive.Render(label))
		}
	}

	return lipgloss.NewStyle().Width(v.width).Background(lipgloss.Color("235")).
		Render(strings.Join(tabs, " "))
}

// Breadcrumbs returns the navigation trail.
func (v *MainView) Breadcrumbs() []string {
	crumbs := []string{"Home"}
	if tab := v.tabs.Focused(); tab != nil && v.ActiveTab() != TabHome {
		crumbs = append(crumbs, tab.Title())
	}
	if v.showDetail {
		crumbs = append(crumbs, v.detail.Title())
	}
	return crumbs
}

func (v *MainView) renderBreadcrumbs() string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1).
		Render(strings.Join(v.Breadcrumbs(), " / "))
}

func (v *MainView) renderStatusBar() string {
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	hints := []string{
		keyStyle.Render("j/k") + descStyle.Render(" Move"),
		keyStyle.Render("Enter") + descStyle.Render(" Open"),
		keyStyle.Render("f") + descStyle.Render(" Favourite"),
		keyStyle.Render("?") + descStyle.Render(" Help"),
		keyStyle.Render("q") + descStyle.Render(" Quit"),
	}
	left := strings.Join(hints, "  ")

	var right string
	if v.notification != "" {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true)
		if strings.HasPrefix(v.notification, "✗") {
			style = style.Foreground(lipgloss.Color("160"))
		}
		right = style.Render(v.notification)
	}

	spacer := strings.Repeat(" ", max(v.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 0))
	return lipgloss.NewStyle().Width(v.width).Background(lipgloss.Color("236")).Padding(0, 1).
		Render(left + spacer + right)
}

func (v *MainView) renderHelp() string {
	heading := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Width(20)

	lines := []string{heading.Render("marquee help"), ""}
	for _, ctx := range keys.Contexts {
		lines = append(lines, heading.Render(ctx.String()))
		for _, b := range v.keymap.Bindings(ctx) {
			lines = append(lines, keyStyle.Render(b.Label())+b.Help())
		}
		lines = append(lines, "")
	}
	lines = append(lines, "Press ? or Esc to close")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, box)
}

// Close stops the listings and the favourites subscription.
func (v *MainView) Close() {
	if v.closed {
		return
	}
	v.closed = true
	v.unsubscribe()
	v.events.Close()
	v.venues.Close()
	v.detail.Close()
	close(v.done)
}

// Title returns the view title.
func (v *MainView) Title() string { return "marquee" }

// Focused is always true for the root view.
func (v *MainView) Focused() bool { return true }

// Focus is a no-op for the root view.
func (v *MainView) Focus() {}

// Blur is a no-op for the root view.
func (v *MainView) Blur() {}

// SetSize sets dimensions.
func (v *MainView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.updatePaneSizes()
}

// Width returns the width.
func (v *MainView) Width() int { return v.width }

// Height returns the height.
func (v *MainView) Height() int { return v.height }

// ActiveTab returns the selected page.
func (v *MainView) ActiveTab() Tab { return Tab(v.tabs.FocusIndex()) }

// ShowingDetail reports whether the detail page is open.
func (v *MainView) ShowingDetail() bool { return v.showDetail }

// ShowingHelp reports whether the help overlay is open.
func (v *MainView) ShowingHelp() bool { return v.showHelp }

// Notification returns the current status message.
func (v *MainView) Notification() string { return v.notification }

// Events returns the events listing.
func (v *MainView) Events() *eventsPanel { return v.events }

// Venues returns the venues listing.
func (v *MainView) Venues() *venuesPanel { return v.venues }

// Favourites returns the favourites drawer.
func (v *MainView) Favourites() *components.FavouritesPanel { return v.favs }

// Detail returns the detail page.
func (v *MainView) Detail() *components.DetailPanel { return v.detail }
