package favourites

import (
	"context"
	"sync"
)

// Indicator tracks membership of one id in one partition. It re-reads
// the store on every broadcast, whichever id changed.
type Indicator struct {
	store     *Store
	partition Partition
	id        int

	mu          sync.RWMutex
	value       bool
	onChange    func(bool)
	unsubscribe func()
}

// NewIndicator reads the initial membership and subscribes to changes.
// Call Close to unsubscribe.
func NewIndicator(ctx context.Context, store *Store, p Partition, id int) *Indicator {
	ind := &Indicator{
		store:     store,
		partition: p,
		id:        id,
		value:     store.IsFavourite(ctx, p, id),
	}
	ind.unsubscribe = store.Subscribe(ind.sync)
	return ind
}

func (i *Indicator) sync() {
	value := i.store.IsFavourite(context.Background(), i.partition, i.id)
	i.set(value)
}

func (i *Indicator) set(value bool) {
	i.mu.Lock()
	changed := i.value != value
	i.value = value
	onChange := i.onChange
	i.mu.Unlock()

	if changed && onChange != nil {
		onChange(value)
	}
}

// Value returns the current membership.
func (i *Indicator) Value() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.value
}

// ID returns the tracked id.
func (i *Indicator) ID() int { return i.id }

// Partition returns the tracked partition.
func (i *Indicator) Partition() Partition { return i.partition }

// OnChange sets a callback invoked when the membership flips.
func (i *Indicator) OnChange(fn func(bool)) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.onChange = fn
}

// Toggle flips this item's membership through the store.
func (i *Indicator) Toggle(ctx context.Context) (bool, error) {
	value, err := i.store.Toggle(ctx, i.id, i.partition)
	if err != nil {
		return i.Value(), err
	}
	i.set(value)
	return value, nil
}

// Close unsubscribes from the store. It is safe to call more than once.
func (i *Indicator) Close() {
	i.unsubscribe()
}
