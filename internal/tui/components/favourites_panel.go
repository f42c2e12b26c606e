package components

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/artpar/marquee/internal/favourites"
	"github.com/artpar/marquee/internal/seatgeek"
	"github.com/artpar/marquee/internal/tui"
	"github.com/artpar/marquee/internal/tui/keys"
)

// Resolver turns favourite ids into titles.
type Resolver interface {
	Resolve(ctx context.Context, set favourites.Set) ([]seatgeek.Resolved, error)
}

// FavouritesResolvedMsg carries resolved titles for the set read at Seq.
type FavouritesResolvedMsg struct {
	Seq     int
	Entries []seatgeek.Resolved
}

// FavouritesPanel lists every favourite, grouped by partition.
type FavouritesPanel struct {
	*tui.BaseComponent
	resolver  Resolver
	set       favourites.Set
	entries   []seatgeek.Resolved
	seq       int
	resolving bool
	stale     bool
	cursor    int
	spinner   spinner.Model
	styles    tui.Styles
}

// NewFavouritesPanel creates the favourites drawer.
func NewFavouritesPanel(resolver Resolver) *FavouritesPanel {
	return &FavouritesPanel{
		BaseComponent: tui.NewBaseComponent("Favourites"),
		resolver:      resolver,
		set:           favourites.NewSet(),
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot)),
		styles:        tui.DefaultStyles(),
	}
}

// Update handles messages.
func (p *FavouritesPanel) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.SetSize(msg.Width, msg.Height)

	case tui.FavouritesLoadedMsg:
		p.setFavourites(msg.Set)
		if p.Focused() {
			return p, p.Refresh()
		}

	case FavouritesResolvedMsg:
		if msg.Seq != p.seq {
			return p, nil
		}
		p.resolving = false
		p.entries = msg.Entries

	case spinner.TickMsg:
		if !p.resolving {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case tea.KeyMsg:
		if p.Focused() {
			return p.handleKeyMsg(msg)
		}
	}
	return p, nil
}

func (p *FavouritesPanel) handleKeyMsg(msg tea.KeyMsg) (tui.Component, tea.Cmd) {
	binding, ok := keymap.Find(keys.Favourites, msg)
	if !ok {
		return p, nil
	}

	switch binding.Action() {
	case keys.Up:
		p.cursor = max(p.cursor-1, 0)
	case keys.Down:
		p.cursor = min(p.cursor+1, max(len(p.entries)-1, 0))
	case keys.Open:
		if entry, ok := p.Selected(); ok {
			return p, func() tea.Msg {
				return tui.OpenDetailMsg{Partition: entry.Partition, ID: entry.ID}
			}
		}
	case keys.Favourite:
		if entry, ok := p.Selected(); ok {
			return p, func() tea.Msg {
				return tui.ToggleFavouriteMsg{Partition: entry.Partition, ID: entry.ID}
			}
		}
	}
	return p, nil
}

func (p *FavouritesPanel) setFavourites(set favourites.Set) {
	p.set = set
	p.stale = true

	// Keep known titles; new ids show as pending until resolved.
	known := make(map[favourites.Partition]map[int]seatgeek.Resolved)
	for _, entry := range p.entries {
		if known[entry.Partition] == nil {
			known[entry.Partition] = make(map[int]seatgeek.Resolved)
		}
		known[entry.Partition][entry.ID] = entry
	}

	p.entries = p.entries[:0]
	for _, part := range favourites.Partitions {
		for _, id := range set.IDs(part) {
			entry, ok := known[part][id]
			if !ok {
				entry = seatgeek.Resolved{Partition: part, ID: id}
			}
			p.entries = append(p.entries, entry)
		}
	}
	p.cursor = min(p.cursor, max(len(p.entries)-1, 0))
}

// Refresh resolves titles if the set changed since the last resolution.
func (p *FavouritesPanel) Refresh() tea.Cmd {
	if !p.stale {
		return nil
	}
	p.stale = false
	if p.set.Empty() {
		p.resolving = false
		return nil
	}

	p.seq++
	p.resolving = true
	seq, set, resolver := p.seq, p.set, p.resolver
	resolve := func() tea.Msg {
		entries, _ := resolver.Resolve(context.Background(), set)
		return FavouritesResolvedMsg{Seq: seq, Entries: entries}
	}
	return tea.Batch(resolve, p.spinner.Tick)
}

// Selected returns the entry under the cursor.
func (p *FavouritesPanel) Selected() (seatgeek.Resolved, bool) {
	if p.cursor < 0 || p.cursor >= len(p.entries) {
		return seatgeek.Resolved{}, false
	}
	return p.entries[p.cursor], true
}

// Entries returns the listed favourites.
func (p *FavouritesPanel) Entries() []seatgeek.Resolved { return p.entries }

// View renders the drawer.
func (p *FavouritesPanel) View() string {
	if p.Width() == 0 || p.Height() == 0 {
		return ""
	}
	width := p.InnerWidth()

	var lines []string
	if len(p.entries) == 0 {
		lines = append(lines, p.styles.Muted.Render("No favourites found"))
	} else {
		var current favourites.Partition
		for i, entry := range p.entries {
			if entry.Partition != current {
				if current != "" {
					lines = append(lines, "")
				}
				current = entry.Partition
				lines = append(lines, p.styles.Heading.Render(partitionHeading(current)))
			}
			lines = append(lines, p.entryLine(i, entry, width))
		}
	}

	body := tui.RenderTitle(p.Title(), width, p.Focused()) + "\n" + strings.Join(lines, "\n")
	return tui.RenderBorder(body, width, p.InnerHeight(), p.Focused())
}

func (p *FavouritesPanel) entryLine(i int, entry seatgeek.Resolved, width int) string {
	var text string
	switch {
	case entry.Err != nil:
		text = p.styles.Error.Render("Error loading " + entry.Partition.ItemType())
	case entry.Title == "" && p.resolving:
		text = p.spinner.View()
	case entry.Title == "":
		text = p.styles.Muted.Render("#" + strconv.Itoa(entry.ID))
	default:
		text = tui.Truncate(entry.Title, width-4)
	}

	line := " " + favourites.Marker(true) + " " + text
	if i == p.cursor && p.Focused() {
		return p.styles.Selected.Render(tui.PadRight(line, width))
	}
	return line
}

func partitionHeading(part favourites.Partition) string {
	if part == favourites.Venues {
		return "Venues"
	}
	return "Events"
}
