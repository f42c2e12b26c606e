package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestFakeClock_AfterFunc(t *testing.T) {
	t.Run("fires once deadline is reached", func(t *testing.T) {
		c := Fake(epoch)
		fired := 0
		c.AfterFunc(100*time.Millisecond, func() { fired++ })

		c.Advance(99 * time.Millisecond)
		assert.Equal(t, 0, fired)

		c.Advance(time.Millisecond)
		assert.Equal(t, 1, fired)

		c.Advance(time.Second)
		assert.Equal(t, 1, fired)
	})

	t.Run("stop cancels pending call", func(t *testing.T) {
		c := Fake(epoch)
		fired := false
		timer := c.AfterFunc(time.Second, func() { fired = true })

		assert.True(t, timer.Stop())
		assert.False(t, timer.Stop())
		assert.Equal(t, 0, c.PendingCount())

		c.Advance(2 * time.Second)
		assert.False(t, fired)
	})

	t.Run("stop after firing returns false", func(t *testing.T) {
		c := Fake(epoch)
		timer := c.AfterFunc(time.Second, func() {})
		c.Advance(time.Second)
		assert.False(t, timer.Stop())
	})

	t.Run("fires in deadline order", func(t *testing.T) {
		c := Fake(epoch)
		var order []int
		c.AfterFunc(3*time.Second, func() { order = append(order, 3) })
		c.AfterFunc(1*time.Second, func() { order = append(order, 1) })
		c.AfterFunc(2*time.Second, func() { order = append(order, 2) })

		c.Advance(5 * time.Second)
		assert.Equal(t, []int{1, 2, 3}, order)
	})

	t.Run("non-positive delay runs immediately", func(t *testing.T) {
		c := Fake(epoch)
		fired := false
		c.AfterFunc(0, func() { fired = true })
		assert.True(t, fired)
	})

	t.Run("callbacks may schedule new timers", func(t *testing.T) {
		c := Fake(epoch)
		fired := 0
		c.AfterFunc(time.Second, func() {
			fired++
			c.AfterFunc(time.Second, func() { fired++ })
		})

		c.Advance(time.Second)
		assert.Equal(t, 1, fired)
		assert.Equal(t, 1, c.PendingCount())

		c.Advance(time.Second)
		assert.Equal(t, 2, fired)
	})
}

func TestFakeClock_Now(t *testing.T) {
	c := Fake(epoch)
	c.Advance(90 * time.Second)
	assert.Equal(t, epoch.Add(90*time.Second), c.Now())
}
