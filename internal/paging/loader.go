// Package paging accumulates successive pages from a paged source and
// decides when the next page should be requested.
package paging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// ErrFetchFailed marks every error recorded by a Loader.
var ErrFetchFailed = errors.New("fetch failed")

// Page is one result set returned by a FetchFunc.
type Page[T any] struct {
	Items   []T
	HasMore bool
}

// FetchFunc fetches page number page for query. query is passed through
// unchanged.
type FetchFunc[T, Q any] func(ctx context.Context, page int, query Q) (Page[T], error)

// FetchError records a failed page fetch.
type FetchError struct {
	Page int
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed: page %d: %v", e.Page, e.Err)
}

// Unwrap exposes both ErrFetchFailed and the underlying cause.
func (e *FetchError) Unwrap() []error {
	return []error{ErrFetchFailed, e.Err}
}

// Status is the loader state machine position.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusErrored:
		return "errored"
	default:
		return "idle"
	}
}

// State is a snapshot of a Loader.
type State[T any] struct {
	Items   []T
	Page    int
	Loading bool
	Err     error
	HasMore bool
}

// Status derives the state machine position from the snapshot.
func (s State[T]) Status() Status {
	switch {
	case s.Loading:
		return StatusLoading
	case s.Err != nil:
		return StatusErrored
	default:
		return StatusIdle
	}
}

type options struct {
	initialPage  int
	fetchTimeout time.Duration
	logger       *slog.Logger
}

// Option configures a Loader.
type Option func(*options)

// WithInitialPage sets the first page requested. Defaults to 1.
func WithInitialPage(page int) Option {
	return func(o *options) {
		o.initialPage = page
	}
}

// WithFetchTimeout bounds each fetch. Zero means no timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) {
		o.fetchTimeout = d
	}
}

// WithLogger sets the loader's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Loader fetches pages one at a time and accumulates their items.
type Loader[T, Q any] struct {
	fetch FetchFunc[T, Q]
	query Q
	opts  options

	mu       sync.Mutex
	items    []T
	page     int
	loading  bool
	err      error
	hasMore  bool
	closed   bool
	onChange func(State[T])
}

// New creates a Loader with no items, positioned at the initial page.
func New[T, Q any](fetch FetchFunc[T, Q], query Q, opts ...Option) *Loader[T, Q] {
	o := options{
		initialPage: 1,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Loader[T, Q]{
		fetch:   fetch,
		query:   query,
		opts:    o,
		page:    o.initialPage,
		hasMore: true,
	}
}

// OnChange sets a callback invoked after every state transition. It runs
// on the goroutine that caused the transition, without the loader lock.
func (l *Loader[T, Q]) OnChange(fn func(State[T])) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = fn
}

// Query returns the query passed to every fetch.
func (l *Loader[T, Q]) Query() Q { return l.query }

// LoadMore fetches the next page. It is a no-op returning false while a
// fetch is in flight, once the source is exhausted, or after Close.
// Otherwise it blocks for the fetch and returns true along with the
// fetch error, which is also recorded in the loader state.
func (l *Loader[T, Q]) LoadMore(ctx context.Context) (bool, error) {
	l.mu.Lock()
	if l.closed || l.loading || !l.hasMore {
		l.mu.Unlock()
		return false, nil
	}
	l.loading = true
	l.err = nil
	page := l.page
	state, onChange := l.snapshotLocked(), l.onChange
	l.mu.Unlock()

	notify(onChange, state)

	fetchCtx := ctx
	if l.opts.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, l.opts.fetchTimeout)
		defer cancel()
	}

	l.opts.logger.Debug("fetching page", "page", page)
	result, err := l.fetch(fetchCtx, page, l.query)

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		l.opts.logger.Debug("dropping page for closed loader", "page", page)
		return true, err
	}

	l.loading = false
	if err != nil {
		l.err = &FetchError{Page: page, Err: err}
		l.opts.logger.Warn("page fetch failed", "page", page, "error", err)
	} else {
		l.items = append(l.items, result.Items...)
		l.hasMore = result.HasMore
		l.page++
		l.opts.logger.Debug("page loaded", "page", page, "items", len(result.Items), "has_more", result.HasMore)
	}
	recorded := l.err
	state, onChange = l.snapshotLocked(), l.onChange
	l.mu.Unlock()

	notify(onChange, state)
	return true, recorded
}

// State returns a snapshot. The Items slice is a copy.
func (l *Loader[T, Q]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Close marks the loader dead. A fetch that completes afterwards is
// dropped and no further callbacks fire.
func (l *Loader[T, Q]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.onChange = nil
}

// Closed reports whether Close has been called.
func (l *Loader[T, Q]) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

func (l *Loader[T, Q]) snapshotLocked() State[T] {
	items := make([]T, len(l.items))
	copy(items, l.items)
	return State[T]{
		Items:   items,
		Page:    l.page,
		Loading: l.loading,
		Err:     l.err,
		HasMore: l.hasMore,
	}
}

func notify[T any](fn func(State[T]), state State[T]) {
	if fn != nil {
		fn(state)
	}
}
