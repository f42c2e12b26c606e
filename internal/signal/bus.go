// Package signal is a process-wide, payload-less broadcast bus. A signal
// only says that something changed; subscribers re-read whatever state
// they care about.
package signal

import "sync"

// FavouritesUpdated fires after every favourites toggle or wholesale write.
const FavouritesUpdated = "favouritesUpdated"

// Handler is called when a subscribed signal is published.
type Handler func()

type subscription struct {
	id      uint64
	handler Handler
}

// Bus dispatches named signals to subscribers.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]subscription)}
}

var defaultBus = NewBus()

// Default returns the process-wide bus.
func Default() *Bus {
	return defaultBus
}

// Subscribe registers handler for name. The returned function removes
// the subscription and is safe to call more than once.
func (b *Bus) Subscribe(name string, handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[name] = append(b.subs[name], subscription{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(name, id) })
	}
}

func (b *Bus) remove(name string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[name]
	for i, sub := range subs {
		if sub.id == id {
			b.subs[name] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[name]) == 0 {
		delete(b.subs, name)
	}
}

// Publish calls every handler subscribed to name, in subscription order.
// Handlers run on the caller's goroutine without the bus lock held, so a
// handler may subscribe, unsubscribe or publish.
func (b *Bus) Publish(name string) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs[name]))
	copy(subs, b.subs[name])
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.handler()
	}
}

// Count returns the number of subscribers for name.
func (b *Bus) Count(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}
