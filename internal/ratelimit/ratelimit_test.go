package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_Allow(t *testing.T) {
	t.Run("allows up to limit then denies", func(t *testing.T) {
		now := time.Now()
		l := New(5, time.Minute)
		l.now = func() time.Time { return now }

		for i := 0; i < 5; i++ {
			assert.True(t, l.Allow("10.0.0.1"), "attempt %d should be allowed", i+1)
		}
		assert.False(t, l.Allow("10.0.0.1"), "6th attempt within the window should be denied")
	})

	t.Run("window rolls past oldest attempt", func(t *testing.T) {
		now := time.Now()
		l := New(5, time.Minute)
		l.now = func() time.Time { return now }

		for i := 0; i < 5; i++ {
			l.Allow("10.0.0.1")
			now = now.Add(time.Second)
		}
		assert.False(t, l.Allow("10.0.0.1"))

		// Move to exactly one window past the first attempt; one slot frees up.
		now = now.Add(55 * time.Second)
		assert.True(t, l.Allow("10.0.0.1"))
		assert.False(t, l.Allow("10.0.0.1"))
	})

	t.Run("identifiers are independent", func(t *testing.T) {
		l := New(1, time.Minute)
		assert.True(t, l.Allow("a"))
		assert.False(t, l.Allow("a"))
		assert.True(t, l.Allow("b"))
	})

	t.Run("denied attempts are not recorded", func(t *testing.T) {
		now := time.Now()
		l := New(2, time.Minute)
		l.now = func() time.Time { return now }

		l.Allow("c")
		l.Allow("c")
		for i := 0; i < 10; i++ {
			assert.False(t, l.Allow("c"))
		}

		// Both recorded attempts age out together; denials added nothing.
		now = now.Add(61 * time.Second)
		assert.True(t, l.Allow("c"))
	})

	t.Run("no undercounting under concurrent bursts", func(t *testing.T) {
		l := New(5, time.Minute)

		var wg sync.WaitGroup
		allowed := make(chan bool, 50)
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				allowed <- l.Allow("burst")
			}()
		}
		wg.Wait()
		close(allowed)

		count := 0
		for ok := range allowed {
			if ok {
				count++
			}
		}
		assert.Equal(t, 5, count)
	})
}

func TestLimiter_Reap(t *testing.T) {
	now := time.Now()
	l := New(5, time.Minute)
	l.now = func() time.Time { return now }

	l.Allow("old")
	now = now.Add(30 * time.Second)
	l.Allow("fresh")
	assert.Equal(t, 2, l.Len())

	now = now.Add(45 * time.Second) // "old" aged out, "fresh" still live
	l.Reap()
	assert.Equal(t, 1, l.Len())

	now = now.Add(time.Hour)
	l.Reap()
	assert.Equal(t, 0, l.Len())
}
