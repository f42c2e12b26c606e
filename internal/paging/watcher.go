package paging

import (
	"context"
	"sync"
)

// Watcher binds a Loader to a Detector. A detector exists only while the
// loader has more pages and is not loading; Sync tears it down and
// builds a fresh one as those flags change. The loader's own guard still
// prevents duplicate fetches if a trigger slips through.
type Watcher[T, Q any] struct {
	loader   *Loader[T, Q]
	opts     []DetectorOption
	triggers chan struct{}
	done     chan struct{}

	mu       sync.Mutex
	detector *Detector
	closed   bool
}

// NewWatcher creates a Watcher for loader and arms it according to the
// loader's current state. Detector options apply to every detector the
// watcher creates.
func NewWatcher[T, Q any](loader *Loader[T, Q], opts ...DetectorOption) *Watcher[T, Q] {
	w := &Watcher[T, Q]{
		loader:   loader,
		opts:     opts,
		triggers: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	loader.OnChange(func(State[T]) { w.Sync() })
	w.Sync()
	return w
}

// Loader returns the watched loader.
func (w *Watcher[T, Q]) Loader() *Loader[T, Q] { return w.loader }

// Triggers delivers one value per debounced "load the next page" signal.
// At most one trigger is buffered.
func (w *Watcher[T, Q]) Triggers() <-chan struct{} { return w.triggers }

// Done is closed by Close.
func (w *Watcher[T, Q]) Done() <-chan struct{} { return w.done }

// Sync rebuilds the detector to match the loader state. It is called
// automatically on every loader transition.
//
// The snapshot is taken under the watcher lock so the last Sync to run
// always sees the latest loader state.
func (w *Watcher[T, Q]) Sync() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	state := w.loader.State()

	if w.detector != nil {
		w.detector.Close()
		w.detector = nil
	}
	if state.HasMore && !state.Loading {
		w.detector = NewDetector(w.fire, w.opts...)
	}
}

// Armed reports whether a detector is currently observing.
func (w *Watcher[T, Q]) Armed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.detector != nil
}

// Observe forwards a viewport position to the current detector. It
// reports whether a trigger was scheduled.
func (w *Watcher[T, Q]) Observe(v Visibility) bool {
	w.mu.Lock()
	detector := w.detector
	w.mu.Unlock()

	if detector == nil {
		return false
	}
	return detector.Observe(v)
}

// LoadMore forwards to the loader.
func (w *Watcher[T, Q]) LoadMore(ctx context.Context) (bool, error) {
	return w.loader.LoadMore(ctx)
}

func (w *Watcher[T, Q]) fire() {
	select {
	case w.triggers <- struct{}{}:
	default:
	}
}

// Close disconnects the detector, cancels any pending trigger and closes
// the loader.
func (w *Watcher[T, Q]) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	if w.detector != nil {
		w.detector.Close()
		w.detector = nil
	}
	close(w.done)
	w.mu.Unlock()

	w.loader.Close()
}
