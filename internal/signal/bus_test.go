package signal

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_Publish(t *testing.T) {
	t.Run("calls subscribers in order", func(t *testing.T) {
		bus := NewBus()
		var calls []string
		bus.Subscribe("x", func() { calls = append(calls, "first") })
		bus.Subscribe("x", func() { calls = append(calls, "second") })

		bus.Publish("x")

		assert.Equal(t, []string{"first", "second"}, calls)
	})

	t.Run("only reaches subscribers of the same name", func(t *testing.T) {
		bus := NewBus()
		called := false
		bus.Subscribe("other", func() { called = true })

		bus.Publish(FavouritesUpdated)

		assert.False(t, called)
	})

	t.Run("publish without subscribers is a no-op", func(t *testing.T) {
		bus := NewBus()
		assert.NotPanics(t, func() { bus.Publish("nobody") })
	})
}

func TestBus_Unsubscribe(t *testing.T) {
	t.Run("removes only that subscription", func(t *testing.T) {
		bus := NewBus()
		a, b := 0, 0
		unsubA := bus.Subscribe("x", func() { a++ })
		bus.Subscribe("x", func() { b++ })

		unsubA()
		bus.Publish("x")

		assert.Equal(t, 0, a)
		assert.Equal(t, 1, b)
		assert.Equal(t, 1, bus.Count("x"))
	})

	t.Run("is idempotent", func(t *testing.T) {
		bus := NewBus()
		unsub := bus.Subscribe("x", func() {})
		unsub()
		unsub()
		assert.Equal(t, 0, bus.Count("x"))
	})

	t.Run("handler may unsubscribe itself while publishing", func(t *testing.T) {
		bus := NewBus()
		calls := 0
		var unsub func()
		unsub = bus.Subscribe("x", func() {
			calls++
			unsub()
		})

		bus.Publish("x")
		bus.Publish("x")

		assert.Equal(t, 1, calls)
	})
}

func TestBus_Concurrent(t *testing.T) {
	bus := NewBus()
	var mu sync.Mutex
	count := 0
	bus.Subscribe("x", func() {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish("x")
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, count)
}

func TestDefault(t *testing.T) {
	assert.Same(t, Default(), Default())
}
