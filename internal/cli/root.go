package cli

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/artpar/marquee/internal/app"
	"github.com/artpar/marquee/internal/config"
	"github.com/artpar/marquee/internal/logging"
	"github.com/artpar/marquee/internal/tui/views"
)

// RootOptions holds flags shared by every command.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Ephemeral  bool
}

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "marquee",
		Short: "marquee - browse live events and venues",
		Long: "marquee is a terminal client for the SeatGeek catalogue: infinite event and " +
			"venue listings, details and locally stored favourites.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Config file (default $XDG_CONFIG_HOME/marquee/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Log debug output to stderr")
	cmd.PersistentFlags().BoolVar(&opts.Ephemeral, "ephemeral", false, "Keep favourites in memory only")

	cmd.AddCommand(NewEventsCommand(opts))
	cmd.AddCommand(NewVenuesCommand(opts))
	cmd.AddCommand(NewEventCommand(opts))
	cmd.AddCommand(NewVenueCommand(opts))
	cmd.AddCommand(NewFavCommand(opts))

	return cmd
}

// loadConfig reads the configuration and applies the shared flags.
// Commands that call the API pass requireAPI; the store driver is checked
// when it is opened.
func loadConfig(opts *RootOptions, requireAPI bool) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.Ephemeral {
		cfg.Storage.Driver = config.DriverMemory
	}
	if requireAPI {
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

// openApp builds the App for a one-shot command. Logs go to stderr with
// --verbose and nowhere otherwise.
func openApp(cmd *cobra.Command, opts *RootOptions, requireAPI bool) (*app.App, error) {
	cfg, err := loadConfig(opts, requireAPI)
	if err != nil {
		return nil, err
	}

	logger := logging.Discard()
	if opts.Verbose {
		logger = logging.New(cmd.ErrOrStderr(), slog.LevelDebug)
	}

	return app.New(app.WithConfig(cfg), app.WithLogger(logger))
}

// tuiModel wraps the MainView for bubbletea
type tuiModel struct {
	view *views.MainView
}

func (m tuiModel) Init() tea.Cmd {
	return m.view.Init()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	updated, cmd := m.view.Update(msg)
	m.view = updated.(*views.MainView)
	return m, cmd
}

func (m tuiModel) View() string {
	return m.view.View()
}

// runTUI starts the TUI application
func runTUI(opts *RootOptions) error {
	cfg, err := loadConfig(opts, true)
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger, closeLog, err := logging.Open(cfg.Log.File, level)
	if err != nil {
		return err
	}
	defer closeLog()

	application, err := app.New(app.WithConfig(cfg), app.WithLogger(logger))
	if err != nil {
		return err
	}
	defer application.Close()

	view := views.NewMainView(application)
	defer view.Close()

	p := tea.NewProgram(tuiModel{view: view}, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("tui exited", "error", err)
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
