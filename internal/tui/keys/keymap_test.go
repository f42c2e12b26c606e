package keys

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinding(t *testing.T) {
	t.Run("matches rune keys", func(t *testing.T) {
		b := NewBinding(Down, "Move down", "j", "down")
		assert.True(t, b.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}))
		assert.True(t, b.Matches(tea.KeyMsg{Type: tea.KeyDown}))
		assert.False(t, b.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}))
	})

	t.Run("is case sensitive", func(t *testing.T) {
		b := NewBinding(Bottom, "Bottom", "G")
		assert.True(t, b.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}}))
		assert.False(t, b.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}}))
	})

	t.Run("matches special keys", func(t *testing.T) {
		for key, msg := range map[string]tea.KeyMsg{
			"enter":     {Type: tea.KeyEnter},
			"esc":       {Type: tea.KeyEsc},
			"tab":       {Type: tea.KeyTab},
			"shift+tab": {Type: tea.KeyShiftTab},
			"ctrl+c":    {Type: tea.KeyCtrlC},
		} {
			assert.True(t, NewBinding(Quit, "", key).Matches(msg), key)
		}
	})

	t.Run("label joins keys", func(t *testing.T) {
		assert.Equal(t, "q / ctrl+c", NewBinding(Quit, "Quit", "q", "ctrl+c").Label())
	})
}

func TestKeyMap(t *testing.T) {
	km := Default()

	t.Run("finds bindings per context", func(t *testing.T) {
		b, ok := km.Find(Global, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
		require.True(t, ok)
		assert.Equal(t, SelectPage, b.Action())

		_, ok = km.Find(Global, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
		assert.False(t, ok, "list keys are not global")

		b, ok = km.Find(List, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
		require.True(t, ok)
		assert.Equal(t, Down, b.Action())
	})

	t.Run("looks up by action", func(t *testing.T) {
		b, ok := km.Lookup(Detail, Copy)
		require.True(t, ok)
		assert.Equal(t, []string{"y"}, b.Keys())

		_, ok = km.Lookup(Detail, Retry)
		assert.False(t, ok)
	})

	t.Run("every context has bindings", func(t *testing.T) {
		for _, ctx := range Contexts {
			assert.NotEmpty(t, km.Bindings(ctx), ctx.String())
		}
	})
}
