package harness

import (
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/artpar/marquee/internal/app"
	"github.com/artpar/marquee/internal/config"
	"github.com/artpar/marquee/internal/signal"
	"github.com/artpar/marquee/internal/tui/views"
)

// TUIRunner provides TUI testing capabilities.
type TUIRunner struct {
	harness *E2EHarness
}

// TUISession drives a MainView the way tea.Program does: commands run
// on goroutines and their messages are fed back into Update by the
// session's wait methods.
type TUISession struct {
	runner *TUIRunner
	t      *testing.T
	app    *app.App
	model  *views.MainView
	msgs   chan tea.Msg
	done   chan struct{}

	mu     sync.Mutex
	copied []string
}

// Start starts a new TUI session with a 120x40 terminal and an in-memory
// store.
func (r *TUIRunner) Start(t *testing.T) *TUISession {
	return r.StartWithSize(t, 120, 40)
}

// StartWithSize starts a TUI session with custom dimensions.
func (r *TUIRunner) StartWithSize(t *testing.T, width, height int) *TUISession {
	t.Helper()

	cfg := r.harness.Config()
	cfg.Storage.Driver = config.DriverMemory

	application, err := app.New(app.WithConfig(cfg), app.WithBus(signal.NewBus()))
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}

	s := &TUISession{
		runner: r,
		t:      t,
		app:    application,
		msgs:   make(chan tea.Msg, 256),
		done:   make(chan struct{}),
	}
	s.model = views.NewMainView(application, views.WithCopyFunc(s.recordCopy))
	t.Cleanup(s.close)

	s.dispatch(tea.WindowSizeMsg{Width: width, Height: height})
	s.run(s.model.Init())
	return s
}

func (s *TUISession) close() {
	close(s.done)
	s.model.Close()
	s.app.Close()
}

func (s *TUISession) recordCopy(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.copied = append(s.copied, content)
	return nil
}

// Copied returns everything sent to the clipboard.
func (s *TUISession) Copied() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.copied...)
}

// run executes cmd in the background, expanding batches.
func (s *TUISession) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	go func() {
		msg := cmd()
		switch msg := msg.(type) {
		case nil:
		case tea.BatchMsg:
			for _, c := range msg {
				s.run(c)
			}
		default:
			select {
			case s.msgs <- msg:
			case <-s.done:
			}
		}
	}()
}

func (s *TUISession) dispatch(msg tea.Msg) {
	if _, ok := msg.(tea.QuitMsg); ok {
		return
	}
	updated, cmd := s.model.Update(msg)
	s.model = updated.(*views.MainView)
	s.run(cmd)
}

// SendKey sends a key press.
func (s *TUISession) SendKey(key string) *TUISession {
	s.dispatch(parseKeyMsg(key))
	return s
}

// SendKeys sends multiple key presses.
func (s *TUISession) SendKeys(keys ...string) *TUISession {
	for _, key := range keys {
		s.SendKey(key)
	}
	return s
}

// Send feeds an arbitrary message.
func (s *TUISession) Send(msg tea.Msg) *TUISession {
	s.dispatch(msg)
	return s
}

// WaitFor processes messages until cond holds or the harness timeout
// passes.
func (s *TUISession) WaitFor(desc string, cond func(*views.MainView) bool) error {
	timeout := s.runner.harness.timeout
	deadline := time.After(timeout)
	poll := time.NewTicker(20 * time.Millisecond)
	defer poll.Stop()

	for {
		if cond(s.model) {
			return nil
		}
		select {
		case msg := <-s.msgs:
			s.dispatch(msg)
		case <-poll.C:
		case <-deadline:
			return &TimeoutError{text: desc, timeout: timeout}
		}
	}
}

// WaitForOutput waits for specific text in output.
func (s *TUISession) WaitForOutput(text string) error {
	return s.WaitFor(text, func(v *views.MainView) bool {
		return strings.Contains(v.View(), text)
	})
}

// Settle processes messages for d.
func (s *TUISession) Settle(d time.Duration) *TUISession {
	deadline := time.After(d)
	for {
		select {
		case msg := <-s.msgs:
			s.dispatch(msg)
		case <-deadline:
			return s
		}
	}
}

// Output returns the current TUI output.
func (s *TUISession) Output() string {
	return s.model.View()
}

// Model returns the underlying MainView for direct assertions.
func (s *TUISession) Model() *views.MainView {
	return s.model
}

// App returns the application behind the session.
func (s *TUISession) App() *app.App {
	return s.app
}

// TimeoutError represents a timeout waiting for output.
type TimeoutError struct {
	text    string
	timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return "timeout after " + e.timeout.String() + " waiting for: " + e.text
}

// parseKeyMsg converts key string to tea.KeyMsg.
func parseKeyMsg(key string) tea.KeyMsg {
	switch strings.ToLower(key) {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "esc", "escape":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "pgdown":
		return tea.KeyMsg{Type: tea.KeyPgDown}
	case "pgup":
		return tea.KeyMsg{Type: tea.KeyPgUp}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}
