package components

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/marquee/internal/clock"
	"github.com/artpar/marquee/internal/favourites"
	"github.com/artpar/marquee/internal/paging"
	"github.com/artpar/marquee/internal/tui"
)

type show struct {
	ID   int
	Name string
	URL  string
}

// pagedShows serves pages of perPage shows until total is reached. Page
// numbers listed in fail return an error once.
type pagedShows struct {
	mu      sync.Mutex
	perPage int
	total   int
	fail    map[int]bool
	pages   []int
}

func (s *pagedShows) fetch(ctx context.Context, page int, _ struct{}) (paging.Page[show], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pages = append(s.pages, page)
	if s.fail[page] {
		delete(s.fail, page)
		return paging.Page[show]{}, errors.New("Service Unavailable")
	}
	start := (page - 1) * s.perPage
	end := min(start+s.perPage, s.total)
	var items []show
	for id := start; id < end; id++ {
		items = append(items, show{ID: id, Name: fmt.Sprintf("Show %d", id), URL: fmt.Sprintf("https://t/%d", id)})
	}
	return paging.Page[show]{Items: items, HasMore: len(items) == s.perPage}, nil
}

func (s *pagedShows) requested() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.pages...)
}

var testEpoch = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func newShowPanel(t *testing.T, source *pagedShows) (*ListPanel[show, struct{}], *clock.FakeClock) {
	t.Helper()
	fake := clock.Fake(testEpoch)
	watcher := paging.NewWatcher(paging.New(source.fetch, struct{}{}),
		paging.WithClock(fake), paging.WithDelay(10*time.Millisecond), paging.WithMargin(0))
	panel := NewListPanel(ListSource[show]{
		Name:      "shows",
		Title:     "Shows",
		Partition: favourites.Events,
		ID:        func(s show) int { return s.ID },
		Line:      func(s show) string { return s.Name },
		URL:       func(s show) string { return s.URL },
	}, watcher)
	t.Cleanup(panel.Close)
	return panel, fake
}

// loadPage fires the debounced trigger, runs the fetch the trigger asks
// for and feeds the result back.
func loadPage(t *testing.T, panel *ListPanel[show, struct{}], fake *clock.FakeClock) tui.PageLoadedMsg {
	t.Helper()
	fake.Advance(10 * time.Millisecond)

	trigger := panel.waitForTrigger()()
	require.Equal(t, tui.LoadMoreMsg{List: "shows"}, trigger)

	panel.Update(trigger)
	require.True(t, panel.Fetching())

	_, err := panel.watcher.LoadMore(context.Background())
	msg := tui.PageLoadedMsg{List: "shows", Err: err}
	panel.Update(msg)
	return msg
}

func TestNewListPanel(t *testing.T) {
	panel, _ := newShowPanel(t, &pagedShows{perPage: 5, total: 12})

	assert.Equal(t, "Shows", panel.Title())
	assert.Empty(t, panel.Items())
	assert.False(t, panel.Focused())
	assert.False(t, panel.Fetching())
}

func TestListPanel_Scroll(t *testing.T) {
	t.Run("unfocused list does not load", func(t *testing.T) {
		source := &pagedShows{perPage: 5, total: 12}
		panel, fake := newShowPanel(t, source)
		panel.SetSize(60, 10)

		fake.Advance(time.Second)
		assert.Empty(t, source.requested())
	})

	t.Run("focusing an empty list loads the first page", func(t *testing.T) {
		source := &pagedShows{perPage: 5, total: 12}
		panel, fake := newShowPanel(t, source)
		panel.SetSize(60, 10)
		panel.Focus()

		loadPage(t, panel, fake)

		assert.Len(t, panel.Items(), 5)
		assert.False(t, panel.Fetching())
		assert.Equal(t, []int{1}, source.requested())
	})

	t.Run("moving toward the end loads the next page", func(t *testing.T) {
		source := &pagedShows{perPage: 5, total: 12}
		panel, fake := newShowPanel(t, source)
		// 10 lines: border 2, title 1, status 1 leaves 6 rows
		panel.SetSize(60, 10)
		panel.Focus()
		loadPage(t, panel, fake)
		require.Len(t, panel.Items(), 5)

		// Six rows already reach past five items, so the next page is due.
		loadPage(t, panel, fake)
		assert.Len(t, panel.Items(), 10)

		for i := 0; i < 9; i++ {
			panel.Update(tea.KeyMsg{Type: tea.KeyDown})
		}
		assert.Equal(t, 9, panel.Cursor())
		loadPage(t, panel, fake)

		assert.Len(t, panel.Items(), 12)
		assert.Equal(t, []int{1, 2, 3}, source.requested())
		assert.Contains(t, panel.View(), "No more items.")
	})

	t.Run("cursor far from the end does not load", func(t *testing.T) {
		source := &pagedShows{perPage: 20, total: 100}
		panel, fake := newShowPanel(t, source)
		panel.SetSize(60, 10)
		panel.Focus()
		loadPage(t, panel, fake)

		panel.Update(tea.KeyMsg{Type: tea.KeyDown})
		fake.Advance(time.Second)

		select {
		case <-panel.watcher.Triggers():
			t.Fatal("sentinel is still far below the viewport")
		default:
		}
		assert.Equal(t, []int{1}, source.requested())
	})
}

func TestListPanel_Errors(t *testing.T) {
	source := &pagedShows{perPage: 5, total: 12, fail: map[int]bool{1: true}}
	panel, fake := newShowPanel(t, source)
	panel.SetSize(60, 10)
	panel.Focus()

	msg := loadPage(t, panel, fake)
	assert.ErrorIs(t, msg.Err, paging.ErrFetchFailed)
	assert.Contains(t, panel.View(), "Something went wrong")

	_, cmd := panel.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, cmd)
	assert.True(t, panel.Fetching())

	_, err := panel.watcher.LoadMore(context.Background())
	require.NoError(t, err)
	panel.Update(tui.PageLoadedMsg{List: "shows"})

	assert.Len(t, panel.Items(), 5)
	assert.Equal(t, []int{1, 1}, source.requested())
	assert.NotContains(t, panel.View(), "Something went wrong")
}

func TestListPanel_FailedLoadWaitsForUser(t *testing.T) {
	noTrigger := func(t *testing.T, panel *ListPanel[show, struct{}]) {
		t.Helper()
		select {
		case <-panel.watcher.Triggers():
			t.Fatal("a failed page must not be fetched again without input")
		default:
		}
	}

	t.Run("no fetch while idle", func(t *testing.T) {
		source := &pagedShows{perPage: 5, total: 12, fail: map[int]bool{1: true, 2: true}}
		panel, fake := newShowPanel(t, source)
		panel.SetSize(60, 10)
		panel.Focus()

		msg := loadPage(t, panel, fake)
		require.Error(t, msg.Err)

		fake.Advance(10 * time.Millisecond)
		fake.Advance(time.Second)

		noTrigger(t, panel)
		assert.Equal(t, []int{1}, source.requested())
		assert.Contains(t, panel.View(), "Something went wrong")
	})

	t.Run("scrolling retries", func(t *testing.T) {
		source := &pagedShows{perPage: 5, total: 12, fail: map[int]bool{1: true}}
		panel, fake := newShowPanel(t, source)
		panel.SetSize(60, 10)
		panel.Focus()

		loadPage(t, panel, fake)
		fake.Advance(time.Second)
		noTrigger(t, panel)

		panel.Update(tea.KeyMsg{Type: tea.KeyDown})
		msg := loadPage(t, panel, fake)

		require.NoError(t, msg.Err)
		assert.Len(t, panel.Items(), 5)
		assert.Equal(t, []int{1, 1}, source.requested())
	})
}

func TestListPanel_Keys(t *testing.T) {
	source := &pagedShows{perPage: 5, total: 5}
	panel, fake := newShowPanel(t, source)
	panel.SetSize(60, 10)
	panel.Focus()
	loadPage(t, panel, fake)

	t.Run("enter opens the selected item", func(t *testing.T) {
		panel.Update(tea.KeyMsg{Type: tea.KeyDown})
		_, cmd := panel.Update(tea.KeyMsg{Type: tea.KeyEnter})
		require.NotNil(t, cmd)
		assert.Equal(t, tui.OpenDetailMsg{Partition: favourites.Events, ID: 1}, cmd())
	})

	t.Run("f toggles the selected item", func(t *testing.T) {
		_, cmd := panel.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
		require.NotNil(t, cmd)
		assert.Equal(t, tui.ToggleFavouriteMsg{Partition: favourites.Events, ID: 1}, cmd())
	})

	t.Run("y copies the link", func(t *testing.T) {
		_, cmd := panel.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
		require.NotNil(t, cmd)
		assert.Equal(t, tui.CopyMsg{Content: "https://t/1"}, cmd())
	})

	t.Run("end and home jump", func(t *testing.T) {
		panel.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
		assert.Equal(t, 4, panel.Cursor())
		panel.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
		assert.Equal(t, 0, panel.Cursor())
	})

	t.Run("keys are ignored when unfocused", func(t *testing.T) {
		panel.Blur()
		_, cmd := panel.Update(tea.KeyMsg{Type: tea.KeyEnter})
		assert.Nil(t, cmd)
	})
}

func TestListPanel_Favourites(t *testing.T) {
	source := &pagedShows{perPage: 5, total: 3}
	panel, fake := newShowPanel(t, source)
	panel.SetSize(60, 10)
	panel.Focus()
	loadPage(t, panel, fake)

	assert.NotContains(t, panel.View(), favourites.Marker(true))

	set, err := favourites.Decode([]byte(`{"events":{"2":true},"venues":{}}`))
	require.NoError(t, err)
	panel.Update(tui.FavouritesLoadedMsg{Set: set})

	assert.Contains(t, panel.View(), favourites.Marker(true))
}

func TestListPanel_IgnoresOtherLists(t *testing.T) {
	source := &pagedShows{perPage: 5, total: 3}
	panel, _ := newShowPanel(t, source)

	_, cmd := panel.Update(tui.LoadMoreMsg{List: "venues"})
	assert.Nil(t, cmd)
	assert.False(t, panel.Fetching())
}
