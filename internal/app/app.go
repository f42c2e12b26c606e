// Package app wires configuration, storage, the favourites store and the
// SeatGeek client into one container shared by the CLI and the TUI.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/artpar/marquee/internal/config"
	"github.com/artpar/marquee/internal/favourites"
	"github.com/artpar/marquee/internal/logging"
	"github.com/artpar/marquee/internal/paging"
	"github.com/artpar/marquee/internal/seatgeek"
	"github.com/artpar/marquee/internal/signal"
	"github.com/artpar/marquee/internal/storage"
	"github.com/artpar/marquee/internal/storage/bolt"
	"github.com/artpar/marquee/internal/storage/memory"
	"github.com/artpar/marquee/internal/storage/sqlite"
)

// EventsLoader pages through /events.
type EventsLoader = paging.Loader[seatgeek.Event, seatgeek.Options]

// VenuesLoader pages through /venues.
type VenuesLoader = paging.Loader[seatgeek.Venue, seatgeek.Options]

// App is the main application container with dependency injection.
type App struct {
	config     config.Config
	kv         storage.KV
	ownsKV     bool
	bus        *signal.Bus
	client     *seatgeek.Client
	favourites *favourites.Store
	logger     *slog.Logger
}

// Option is a function that configures the App.
type Option func(*App)

// New creates a new App. Dependencies not supplied through options are
// built from the configuration; a KV store opened here is closed by
// Close.
func New(opts ...Option) (*App, error) {
	app := &App{
		config: config.Default(),
		logger: logging.Discard(),
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.bus == nil {
		app.bus = signal.Default()
	}
	if app.kv == nil {
		kv, err := OpenStore(app.config.Storage)
		if err != nil {
			return nil, err
		}
		app.kv = kv
		app.ownsKV = true
	}
	if app.client == nil {
		app.client = seatgeek.NewClient(
			seatgeek.WithBaseURL(app.config.API.BaseURL),
			seatgeek.WithCredentials(app.config.API.ClientID, app.config.API.ClientSecret),
			seatgeek.WithTimeout(app.config.API.Timeout),
			seatgeek.WithRateLimit(app.config.API.RateLimit, app.config.API.RateBurst),
			seatgeek.WithLogger(app.logger.With("component", "seatgeek")),
		)
	}
	app.favourites = favourites.New(app.kv, app.bus,
		favourites.WithLogger(app.logger.With("component", "favourites")))

	app.logger.Debug("app initialized", "driver", app.config.Storage.Driver)
	return app, nil
}

// WithConfig sets the application configuration.
func WithConfig(cfg config.Config) Option {
	return func(a *App) {
		a.config = cfg
	}
}

// WithKV uses kv instead of opening the configured store. The caller
// keeps ownership of kv.
func WithKV(kv storage.KV) Option {
	return func(a *App) {
		a.kv = kv
	}
}

// WithBus sets the signal bus. Defaults to the process-wide bus.
func WithBus(bus *signal.Bus) Option {
	return func(a *App) {
		a.bus = bus
	}
}

// WithClient sets the SeatGeek client.
func WithClient(client *seatgeek.Client) Option {
	return func(a *App) {
		a.client = client
	}
}

// WithLogger sets the application logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// OpenStore opens the KV backend named by cfg.Driver.
func OpenStore(cfg config.StorageConfig) (storage.KV, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.New(), nil
	case config.DriverBolt, config.DriverSQLite:
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.Driver)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if cfg.Driver == config.DriverSQLite {
		return sqlite.New(cfg.Path())
	}
	return bolt.New(cfg.Path())
}

// Config returns the application configuration.
func (a *App) Config() config.Config { return a.config }

// Bus returns the signal bus.
func (a *App) Bus() *signal.Bus { return a.bus }

// Client returns the SeatGeek client.
func (a *App) Client() *seatgeek.Client { return a.client }

// Favourites returns the favourites store.
func (a *App) Favourites() *favourites.Store { return a.favourites }

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// EventsLoader returns a fresh loader for the events listing. extra is
// merged over the default query.
func (a *App) EventsLoader(extra seatgeek.Options, opts ...paging.Option) *EventsLoader {
	opts = append([]paging.Option{
		paging.WithLogger(a.logger.With("component", "paging", "list", "events")),
	}, opts...)
	return paging.New(
		seatgeek.EventsFetcher(a.client, a.config.Paging.EventsPerPage),
		mergeQuery(seatgeek.DefaultQuery(), extra),
		opts...,
	)
}

// VenuesLoader returns a fresh loader for the venues listing.
func (a *App) VenuesLoader(extra seatgeek.Options, opts ...paging.Option) *VenuesLoader {
	opts = append([]paging.Option{
		paging.WithLogger(a.logger.With("component", "paging", "list", "venues")),
	}, opts...)
	return paging.New(
		seatgeek.VenuesFetcher(a.client, a.config.Paging.VenuesPerPage),
		mergeQuery(seatgeek.DefaultQuery(), extra),
		opts...,
	)
}

func mergeQuery(base, extra seatgeek.Options) seatgeek.Options {
	for key, values := range extra {
		base[key] = append([]string(nil), values...)
	}
	return base
}

// DetectorOptions returns the proximity detector settings from config.
func (a *App) DetectorOptions() []paging.DetectorOption {
	var opts []paging.DetectorOption
	if a.config.Paging.Debounce > 0 {
		opts = append(opts, paging.WithDelay(a.config.Paging.Debounce))
	}
	if a.config.Paging.Margin > 0 {
		opts = append(opts, paging.WithMargin(a.config.Paging.Margin))
	}
	return opts
}

// Close releases the KV store if the App opened it.
func (a *App) Close() error {
	var errs []error
	if a.ownsKV && a.kv != nil {
		if err := a.kv.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	return errors.Join(errs...)
}
