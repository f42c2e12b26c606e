// Package harness provides E2E testing utilities for marquee.
package harness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/artpar/marquee/e2e/testserver"
	"github.com/artpar/marquee/internal/config"
)

// E2EHarness is the main test orchestrator. It runs a fake SeatGeek API
// and points the process environment at it and at a private data
// directory.
type E2EHarness struct {
	t       *testing.T
	server  *testserver.Server
	dataDir string
	timeout time.Duration
}

// Config configures the harness.
type Config struct {
	Catalogue *testserver.Catalogue // Default: 30 events, 10 venues
	Driver    string                // Default: bolt
	Timeout   time.Duration         // Default: 5 seconds
}

// New creates a new E2E harness. It sets environment variables, so tests
// using it cannot run in parallel.
func New(t *testing.T, cfg Config) *E2EHarness {
	t.Helper()

	if cfg.Catalogue == nil {
		cfg.Catalogue = testserver.NewCatalogue(30, 10)
	}
	if cfg.Driver == "" {
		cfg.Driver = config.DriverBolt
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}

	h := &E2EHarness{
		t:       t,
		server:  testserver.New(cfg.Catalogue),
		dataDir: filepath.Join(t.TempDir(), "data"),
		timeout: cfg.Timeout,
	}
	t.Cleanup(h.server.Close)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("SEATGEEK_API_URL", h.server.URL)
	t.Setenv("SEATGEEK_CLIENT_ID", "e2e-client")
	t.Setenv("MARQUEE_DATA_DIR", h.dataDir)
	t.Setenv("MARQUEE_STORAGE", cfg.Driver)
	t.Setenv("MARQUEE_RATE_LIMIT", "0")
	for _, key := range []string{"SEATGEEK_CLIENT_SECRET", "MARQUEE_LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	return h
}

// Server returns the fake upstream.
func (h *E2EHarness) Server() *testserver.Server {
	return h.server
}

// DataDir returns the data directory the store lives in.
func (h *E2EHarness) DataDir() string {
	return h.dataDir
}

// Timeout returns the configured timeout.
func (h *E2EHarness) Timeout() time.Duration {
	return h.timeout
}

// T returns the testing.T instance.
func (h *E2EHarness) T() *testing.T {
	return h.t
}

// Config loads the configuration the way the binary does.
func (h *E2EHarness) Config() config.Config {
	h.t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		h.t.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// CLI returns a CLI runner for this harness.
func (h *E2EHarness) CLI() *CLIRunner {
	return &CLIRunner{harness: h}
}

// TUI returns a TUI runner for this harness.
func (h *E2EHarness) TUI() *TUIRunner {
	return &TUIRunner{harness: h}
}
