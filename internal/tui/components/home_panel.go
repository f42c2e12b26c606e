package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/artpar/marquee/internal/tui"
)

// HomePanel is the landing page with links to the listings.
type HomePanel struct {
	*tui.BaseComponent
	styles tui.Styles
}

// NewHomePanel creates the landing page.
func NewHomePanel() *HomePanel {
	return &HomePanel{
		BaseComponent: tui.NewBaseComponent("Home"),
		styles:        tui.DefaultStyles(),
	}
}

// Update handles messages.
func (p *HomePanel) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		p.SetSize(msg.Width, msg.Height)
	}
	return p, nil
}

// View renders the landing page.
func (p *HomePanel) View() string {
	if p.Width() == 0 || p.Height() == 0 {
		return ""
	}
	lines := []string{
		p.styles.Heading.Render("marquee"),
		p.styles.Muted.Render("Browse live events and venues, and keep your favourites."),
		"",
		"  2  Events",
		"  3  Venues",
		"  4  Favourites",
		"",
		p.styles.Muted.Render("tab/shift+tab switch  enter open  f favourite  esc back  q quit"),
	}
	body := tui.RenderTitle(p.Title(), p.InnerWidth(), p.Focused()) + "\n" + strings.Join(lines, "\n")
	return tui.RenderBorder(body, p.InnerWidth(), p.InnerHeight(), p.Focused())
}
