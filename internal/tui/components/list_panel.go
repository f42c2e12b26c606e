package components

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/artpar/marquee/internal/favourites"
	"github.com/artpar/marquee/internal/paging"
	"github.com/artpar/marquee/internal/tui"
	"github.com/artpar/marquee/internal/tui/keys"
)

var keymap = keys.Default()

// ListSource adapts one item type to a ListPanel.
type ListSource[T any] struct {
	// Name identifies the list in LoadMoreMsg and PageLoadedMsg.
	Name      string
	Title     string
	Partition favourites.Partition
	ID        func(T) int
	Line      func(T) string
	// URL is optional; when set, "y" copies it.
	URL func(T) string
}

// ListPanel is an infinitely scrolling list fed by a paging.Watcher.
// Cursor movement reports the viewport to the watcher, which debounces
// it into LoadMoreMsg.
type ListPanel[T, Q any] struct {
	*tui.BaseComponent
	source   ListSource[T]
	watcher  *paging.Watcher[T, Q]
	state    paging.State[T]
	favs     favourites.Set
	cursor   int
	offset   int
	fetching bool
	spinner  spinner.Model
	styles   tui.Styles
}

// NewListPanel creates a list panel over watcher.
func NewListPanel[T, Q any](source ListSource[T], watcher *paging.Watcher[T, Q]) *ListPanel[T, Q] {
	return &ListPanel[T, Q]{
		BaseComponent: tui.NewBaseComponent(source.Title),
		source:        source,
		watcher:       watcher,
		state:         watcher.Loader().State(),
		favs:          favourites.NewSet(),
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot)),
		styles:        tui.DefaultStyles(),
	}
}

// Init starts waiting for load triggers.
func (p *ListPanel[T, Q]) Init() tea.Cmd {
	return p.waitForTrigger()
}

// Update handles messages.
func (p *ListPanel[T, Q]) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.SetSize(msg.Width, msg.Height)

	case tui.FocusMsg:
		p.Focus()

	case tui.BlurMsg:
		p.Blur()

	case tui.LoadMoreMsg:
		if msg.List != p.source.Name {
			return p, nil
		}
		return p, tea.Batch(p.startLoad(), p.waitForTrigger())

	case tui.PageLoadedMsg:
		if msg.List != p.source.Name {
			return p, nil
		}
		p.fetching = false
		p.state = p.watcher.Loader().State()
		p.clampCursor()
		// After a failure the next scroll or "r" retries.
		if p.state.Err == nil {
			p.observe()
		}

	case tui.FavouritesLoadedMsg:
		p.favs = msg.Set

	case spinner.TickMsg:
		if !p.fetching {
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

func (p *ListPanel[T, Q]) handleKeyMsg(msg tea.KeyMsg) (tui.Component, tea.Cmd) {
	page := max(p.rows()-1, 1)

	binding, ok := keymap.Find(keys.List, msg)
	if !ok {
		return p, nil
	}

	switch binding.Action() {
	case keys.Up:
		p.moveCursor(-1)
	case keys.Down:
		p.moveCursor(1)
	case keys.PageUp:
		p.moveCursor(-page)
	case keys.PageDown:
		p.moveCursor(page)
	case keys.Top:
		p.moveCursor(-len(p.state.Items))
	case keys.Bottom:
		p.moveCursor(len(p.state.Items))

	case keys.Open:
		if item, ok := p.Selected(); ok {
			id := p.source.ID(item)
			return p, func() tea.Msg {
				return tui.OpenDetailMsg{Partition: p.source.Partition, ID: id}
			}
		}

	case keys.Favourite:
		if item, ok := p.Selected(); ok {
			id := p.source.ID(item)
			return p, func() tea.Msg {
				return tui.ToggleFavouriteMsg{Partition: p.source.Partition, ID: id}
			}
		}

	case keys.Retry:
		if p.state.Err != nil && !p.fetching {
			return p, p.startLoad()
		}

	case keys.Copy:
		if item, ok := p.Selected(); ok && p.source.URL != nil {
			if url := p.source.URL(item); url != "" {
				return p, func() tea.Msg { return tui.CopyMsg{Content: url} }
			}
		}
	}

	return p, nil
}

func (p *ListPanel[T, Q]) startLoad() tea.Cmd {
	p.fetching = true
	w, name := p.watcher, p.source.Name
	load := func() tea.Msg {
		_, err := w.LoadMore(context.Background())
		return tui.PageLoadedMsg{List: name, Err: err}
	}
	return tea.Batch(load, p.spinner.Tick)
}

func (p *ListPanel[T, Q]) waitForTrigger() tea.Cmd {
	w, name := p.watcher, p.source.Name
	return func() tea.Msg {
		select {
		case <-w.Triggers():
			return tui.LoadMoreMsg{List: name}
		case <-w.Done():
			return nil
		}
	}
}

// observe reports the viewport to the watcher. Only a visible list
// observes.
func (p *ListPanel[T, Q]) observe() {
	if !p.Focused() {
		return
	}
	p.watcher.Observe(p.Visibility())
}

// Visibility returns the viewport position relative to the end of the
// loaded items.
func (p *ListPanel[T, Q]) Visibility() paging.Visibility {
	return paging.Visibility{
		ViewportEnd: p.offset + p.rows(),
		SentinelAt:  len(p.state.Items),
	}
}

func (p *ListPanel[T, Q]) moveCursor(delta int) {
	if len(p.state.Items) == 0 {
		p.observe()
		return
	}
	p.cursor = min(max(p.cursor+delta, 0), len(p.state.Items)-1)

	rows := p.rows()
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+rows {
		p.offset = p.cursor - rows + 1
	}
	p.observe()
}

func (p *ListPanel[T, Q]) clampCursor() {
	if len(p.state.Items) == 0 {
		p.cursor, p.offset = 0, 0
		return
	}
	p.cursor = min(p.cursor, len(p.state.Items)-1)
}

// rows is the number of item lines that fit: the title and the status
// line take two.
func (p *ListPanel[T, Q]) rows() int {
	return max(p.InnerHeight()-2, 1)
}

// Focus sets focus and reports the viewport, so a list loads its first
// page when first shown.
func (p *ListPanel[T, Q]) Focus() {
	p.BaseComponent.Focus()
	p.observe()
}

// SetSize sets dimensions and re-reports the viewport.
func (p *ListPanel[T, Q]) SetSize(width, height int) {
	p.BaseComponent.SetSize(width, height)
	p.observe()
}

// Selected returns the item under the cursor.
func (p *ListPanel[T, Q]) Selected() (T, bool) {
	if p.cursor < 0 || p.cursor >= len(p.state.Items) {
		var zero T
		return zero, false
	}
	return p.state.Items[p.cursor], true
}

// Items returns the loaded items.
func (p *ListPanel[T, Q]) Items() []T { return p.state.Items }

// Cursor returns the selected index.
func (p *ListPanel[T, Q]) Cursor() int { return p.cursor }

// Fetching reports whether a page request is outstanding.
func (p *ListPanel[T, Q]) Fetching() bool { return p.fetching }

// Close stops the watcher and its loader.
func (p *ListPanel[T, Q]) Close() {
	p.watcher.Close()
}

// View renders the list.
func (p *ListPanel[T, Q]) View() string {
	if p.Width() == 0 || p.Height() == 0 {
		return ""
	}
	width := p.InnerWidth()

	var b strings.Builder
	b.WriteString(tui.RenderTitle(p.Title(), width, p.Focused()))
	b.WriteString("\n")

	items := p.state.Items
	end := min(p.offset+p.rows(), len(items))
	for i := p.offset; i < end; i++ {
		item := items[i]
		favourite := p.favs.Has(p.source.Partition, p.source.ID(item))
		line := tui.PadRight(fmt.Sprintf(" %s %s", favourites.Marker(favourite), p.source.Line(item)), width)
		if i == p.cursor && p.Focused() {
			line = p.styles.Selected.Render(line)
		} else if favourite {
			line = p.styles.Heart.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	for i := end - p.offset; i < p.rows(); i++ {
		b.WriteString("\n")
	}

	b.WriteString(p.statusLine())

	return tui.RenderBorder(b.String(), width, p.InnerHeight(), p.Focused())
}

func (p *ListPanel[T, Q]) statusLine() string {
	switch {
	case p.fetching || p.state.Loading:
		return p.spinner.View() + " Loading..."
	case p.state.Err != nil:
		return p.styles.Error.Render("Something went wrong") + p.styles.Muted.Render("  (r to retry)")
	case !p.state.HasMore:
		return p.styles.Muted.Render("No more items.")
	}
	return p.styles.Muted.Render(fmt.Sprintf("%d loaded", len(p.state.Items)))
}

// Ensure the panel satisfies the component contract.
var _ tui.Component = (*ListPanel[int, struct{}])(nil)
