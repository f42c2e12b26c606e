package components

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/artpar/marquee/internal/favourites"
	"github.com/artpar/marquee/internal/seatgeek"
	"github.com/artpar/marquee/internal/tui"
	"github.com/artpar/marquee/internal/tui/keys"
)

// DetailSource fetches single items.
type DetailSource interface {
	Event(ctx context.Context, id int) (seatgeek.Event, error)
	Venue(ctx context.Context, id int) (seatgeek.Venue, error)
}

// DetailLoadedMsg carries the result of a detail fetch. Seq ties it to
// the Open call that issued it.
type DetailLoadedMsg struct {
	Seq   int
	Event *seatgeek.Event
	Venue *seatgeek.Venue
	Err   error
}

// DetailPanel shows one event or venue.
type DetailPanel struct {
	*tui.BaseComponent
	source    DetailSource
	store     *favourites.Store
	indicator *favourites.Indicator
	seq       int
	loading   bool
	err       error
	event     *seatgeek.Event
	venue     *seatgeek.Venue
	spinner   spinner.Model
	styles    tui.Styles
}

// NewDetailPanel creates an empty detail panel.
func NewDetailPanel(source DetailSource, store *favourites.Store) *DetailPanel {
	return &DetailPanel{
		BaseComponent: tui.NewBaseComponent("Detail"),
		source:        source,
		store:         store,
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot)),
		styles:        tui.DefaultStyles(),
	}
}

// Open starts loading the item and tracks its favourite state.
func (p *DetailPanel) Open(part favourites.Partition, id int) tea.Cmd {
	p.closeIndicator()
	p.seq++
	p.loading = true
	p.err = nil
	p.event, p.venue = nil, nil
	p.indicator = favourites.NewIndicator(context.Background(), p.store, part, id)

	seq, source := p.seq, p.source
	fetch := func() tea.Msg {
		ctx := context.Background()
		if part == favourites.Venues {
			venue, err := source.Venue(ctx, id)
			if err != nil {
				return DetailLoadedMsg{Seq: seq, Err: err}
			}
			return DetailLoadedMsg{Seq: seq, Venue: &venue}
		}
		event, err := source.Event(ctx, id)
		if err != nil {
			return DetailLoadedMsg{Seq: seq, Err: err}
		}
		return DetailLoadedMsg{Seq: seq, Event: &event}
	}
	return tea.Batch(fetch, p.spinner.Tick)
}

// Update handles messages.
func (p *DetailPanel) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.SetSize(msg.Width, msg.Height)

	case DetailLoadedMsg:
		if msg.Seq != p.seq {
			return p, nil
		}
		p.loading = false
		p.err = msg.Err
		p.event = msg.Event
		p.venue = msg.Venue

	case spinner.TickMsg:
		if !p.loading {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case tea.KeyMsg:
		if !p.Focused() || p.indicator == nil {
			return p, nil
		}
		binding, ok := keymap.Find(keys.Detail, msg)
		if !ok {
			return p, nil
		}
		switch binding.Action() {
		case keys.Favourite:
			ind := p.indicator
			return p, func() tea.Msg {
				return tui.ToggleFavouriteMsg{Partition: ind.Partition(), ID: ind.ID()}
			}
		case keys.Copy:
			if p.event != nil && p.event.URL != "" {
				url := p.event.URL
				return p, func() tea.Msg { return tui.CopyMsg{Content: url} }
			}
		}
	}
	return p, nil
}

// Title names the open item.
func (p *DetailPanel) Title() string {
	switch {
	case p.event != nil:
		return p.event.ShortTitle
	case p.venue != nil:
		return p.venue.NameV2
	}
	return "Detail"
}

// Favourite reports the tracked favourite state.
func (p *DetailPanel) Favourite() bool {
	return p.indicator != nil && p.indicator.Value()
}

// Loading reports whether the item is still being fetched.
func (p *DetailPanel) Loading() bool { return p.loading }

// Partition returns the partition of the open item.
func (p *DetailPanel) Partition() favourites.Partition {
	if p.indicator == nil {
		return ""
	}
	return p.indicator.Partition()
}

// Close releases the favourite subscription.
func (p *DetailPanel) Close() {
	p.closeIndicator()
}

func (p *DetailPanel) closeIndicator() {
	if p.indicator != nil {
		p.indicator.Close()
		p.indicator = nil
	}
}

// View renders the detail.
func (p *DetailPanel) View() string {
	if p.Width() == 0 || p.Height() == 0 {
		return ""
	}
	width := p.InnerWidth()

	var lines []string
	switch {
	case p.loading:
		lines = append(lines, p.spinner.View()+" Loading...")
	case p.err != nil:
		lines = append(lines, p.styles.Error.Render("Something went wrong"), p.styles.Muted.Render(p.err.Error()))
	case p.event != nil:
		lines = p.eventLines()
	case p.venue != nil:
		lines = p.venueLines()
	}

	body := tui.RenderTitle(p.Title(), width, p.Focused()) + "\n" + strings.Join(lines, "\n")
	return tui.RenderBorder(body, width, p.InnerHeight(), p.Focused())
}

func (p *DetailPanel) heartLine() string {
	favourite := p.Favourite()
	label := "Add to favourites (f)"
	if favourite {
		label = "Remove from favourites (f)"
	}
	return p.styles.Heart.Render(favourites.Marker(favourite)) + " " + label
}

func (p *DetailPanel) eventLines() []string {
	e := p.event
	lines := []string{
		p.styles.Heading.Render(e.ShortTitle),
		"",
		p.styles.Muted.Render("Venue"),
		e.Venue.NameV2,
		e.Venue.DisplayLocation,
		"",
		p.styles.Muted.Render("Date"),
	}
	if local, err := e.LocalTime(); err == nil {
		lines = append(lines, local)
	} else {
		lines = append(lines, p.styles.Error.Render(err.Error()))
	}
	if viewer, err := e.ViewerTime(); err == nil {
		lines = append(lines, p.styles.Muted.Render("Your time: "+viewer))
	}
	if image := e.Image(); image != "" {
		lines = append(lines, p.styles.Muted.Render("Image: "+image))
	}
	lines = append(lines, "", p.heartLine())
	if e.URL != "" {
		lines = append(lines, fmt.Sprintf("Buy Tickets: %s  (y to copy)", e.URL))
	}
	return lines
}

func (p *DetailPanel) venueLines() []string {
	v := p.venue
	badge := p.styles.BadgeOff.Render(v.Badge())
	if v.HasUpcomingEvents {
		badge = p.styles.BadgeOn.Render(v.Badge())
	}
	lines := []string{
		p.styles.Heading.Render(v.NameV2),
		v.DisplayLocation,
		badge,
	}
	if v.Timezone != "" {
		lines = append(lines, p.styles.Muted.Render("Time zone: "+v.Timezone))
	}
	return append(lines, "", p.heartLine())
}
