package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestBaseComponent(t *testing.T) {
	t.Run("creates with title", func(t *testing.T) {
		c := NewBaseComponent("Events")
		assert.Equal(t, "Events", c.Title())
	})

	t.Run("starts unfocused", func(t *testing.T) {
		c := NewBaseComponent("Events")
		assert.False(t, c.Focused())
	})

	t.Run("can be focused and blurred", func(t *testing.T) {
		c := NewBaseComponent("Events")
		c.Focus()
		assert.True(t, c.Focused())
		c.Blur()
		assert.False(t, c.Focused())
	})

	t.Run("tracks dimensions", func(t *testing.T) {
		c := NewBaseComponent("Events")
		c.SetSize(80, 24)
		assert.Equal(t, 80, c.Width())
		assert.Equal(t, 24, c.Height())
		assert.Equal(t, 78, c.InnerWidth())
		assert.Equal(t, 22, c.InnerHeight())
	})

	t.Run("inner size never drops below one", func(t *testing.T) {
		c := NewBaseComponent("Events")
		assert.Equal(t, 1, c.InnerWidth())
		assert.Equal(t, 1, c.InnerHeight())
	})
}

func TestBaseComponent_Update(t *testing.T) {
	c := NewBaseComponent("Events")

	updated, _ := c.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	base := updated.(*BaseComponent)
	assert.Equal(t, 120, base.Width())
	assert.Equal(t, 40, base.Height())

	c.Update(FocusMsg{})
	assert.True(t, c.Focused())

	c.Update(BlurMsg{})
	assert.False(t, c.Focused())
}

func TestBaseComponent_View(t *testing.T) {
	c := NewBaseComponent("Home")
	c.SetSize(30, 5)
	assert.Contains(t, c.View(), "Home")
}

func TestComponentList(t *testing.T) {
	t.Run("starts with nothing focused", func(t *testing.T) {
		cl := NewComponentList()
		assert.Equal(t, 0, cl.Len())
		assert.Equal(t, -1, cl.FocusIndex())
		assert.Nil(t, cl.Focused())
		cl.FocusNext()
		assert.Equal(t, -1, cl.FocusIndex())
	})

	t.Run("cycles focus", func(t *testing.T) {
		a, b, c := NewBaseComponent("a"), NewBaseComponent("b"), NewBaseComponent("c")
		cl := NewComponentList()
		cl.Add(a)
		cl.Add(b)
		cl.Add(c)

		cl.FocusNext()
		assert.Equal(t, 0, cl.FocusIndex())
		assert.True(t, a.Focused())

		cl.FocusNext()
		assert.False(t, a.Focused())
		assert.True(t, b.Focused())

		cl.FocusPrev()
		cl.FocusPrev()
		assert.Equal(t, 2, cl.FocusIndex())
		assert.Same(t, c, cl.Focused())

		cl.FocusNext()
		assert.Equal(t, 0, cl.FocusIndex())
	})

	t.Run("ignores out of range indexes", func(t *testing.T) {
		cl := NewComponentList()
		cl.Add(NewBaseComponent("a"))
		cl.SetFocusIndex(5)
		assert.Equal(t, -1, cl.FocusIndex())
		assert.Nil(t, cl.Get(-1))
		cl.SetFocusIndex(0)
		assert.Equal(t, 0, cl.FocusIndex())
		assert.Len(t, cl.All(), 1)
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "Madis...", Truncate("Madison Square Garden", 8))
	assert.Equal(t, "Café...", Truncate("Café de Paris", 7))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab   ", PadRight("ab", 5))
	assert.Equal(t, "ab", PadRight("abcd", 2))
	assert.Equal(t, "é ", PadRight("é", 2))
}
