package favourites

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/artpar/marquee/internal/signal"
	"github.com/artpar/marquee/internal/storage"
)

// Key is the single KV key holding the whole favourites blob.
const Key = "favourites"

// Store reads and writes the favourites set. Every write is wholesale
// and is followed by one signal.FavouritesUpdated broadcast.
type Store struct {
	mu     sync.Mutex
	kv     storage.KV
	bus    *signal.Bus
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report corrupt state.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a Store over kv, broadcasting on bus.
func New(kv storage.KV, bus *signal.Bus, opts ...Option) *Store {
	store := &Store{
		kv:     kv,
		bus:    bus,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Load returns the persisted set. A missing key yields empty partitions.
// A corrupt value is logged and treated as empty; only KV failures are
// returned as errors.
func (s *Store) Load(ctx context.Context) (Set, error) {
	data, err := s.kv.Get(ctx, Key)
	if errors.Is(err, storage.ErrNotFound) {
		return NewSet(), nil
	}
	if err != nil {
		return NewSet(), fmt.Errorf("failed to read favourites: %w", err)
	}

	set, err := Decode(data)
	if err != nil {
		s.logger.Warn("resetting favourites to empty", "error", err)
		return NewSet(), nil
	}
	return set, nil
}

// IsFavourite reports whether id is favourited in p. Read failures are
// logged and reported as not favourited.
func (s *Store) IsFavourite(ctx context.Context, p Partition, id int) bool {
	set, err := s.Load(ctx)
	if err != nil {
		s.logger.Warn("favourites read failed", "error", err)
		return false
	}
	return set.Has(p, id)
}

// Toggle flips membership of id in p, persists the whole set and
// broadcasts. It returns the new membership.
//
// The read, write and broadcast run under one lock. Subscribers must not
// call Toggle synchronously from their handler.
func (s *Store) Toggle(ctx context.Context, id int, p Partition) (bool, error) {
	if !p.valid() {
		return false, fmt.Errorf("%w: %q", ErrUnknownPartition, p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.Load(ctx)
	if err != nil {
		return false, err
	}

	member := !set.Has(p, id)
	set.set(p, id, member)

	if err := s.write(ctx, set); err != nil {
		return false, err
	}

	s.logger.Debug("favourite toggled", "partition", string(p), "id", id, "favourite", member)
	s.bus.Publish(signal.FavouritesUpdated)
	return member, nil
}

// Replace overwrites the persisted set and broadcasts.
func (s *Store) Replace(ctx context.Context, set Set) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(ctx, set); err != nil {
		return err
	}

	s.bus.Publish(signal.FavouritesUpdated)
	return nil
}

// Clear removes every favourite.
func (s *Store) Clear(ctx context.Context) error {
	return s.Replace(ctx, NewSet())
}

// Subscribe registers fn for every favourites change anywhere in the
// process. The signal carries no payload; fn must re-read what it needs.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	return s.bus.Subscribe(signal.FavouritesUpdated, fn)
}

func (s *Store) write(ctx context.Context, set Set) error {
	data, err := Encode(set)
	if err != nil {
		return fmt.Errorf("failed to encode favourites: %w", err)
	}
	if err := s.kv.Put(ctx, Key, data); err != nil {
		return fmt.Errorf("failed to write favourites: %w", err)
	}
	return nil
}
