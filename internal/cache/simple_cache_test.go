package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestSimpleCache_SetGet_NoTTL(t *testing.T) {
	c := NewSimpleCache[string, int](Options{})
	c.Set("a", 1, 0)

	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 1, c.Len())
}

func TestSimpleCache_TTL_Expiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := NewSimpleCache[string, string](Options{Clock: clock.Now})

	c.Set("k", "v", 15*time.Minute)
	clock.Advance(14*time.Minute + 59*time.Second)
	v, ok := c.Get("k")
	require.True(t, ok, "expected hit before expiry")
	require.Equal(t, "v", v)

	clock.Advance(time.Second)
	_, ok = c.Get("k")
	require.False(t, ok, "expected miss once the TTL has elapsed")

	require.Equal(t, 1, c.Stored(), "expired entries stay until purged")
	require.Equal(t, 1, c.PurgeExpired())
	require.Equal(t, 0, c.Len())
	require.Equal(t, 0, c.Stored())
}

func TestSimpleCache_NilValueIsAHit(t *testing.T) {
	c := NewSimpleCache[string, *int](Options{})
	c.Set("missing", nil, time.Minute)

	v, ok := c.Get("missing")
	require.True(t, ok)
	require.Nil(t, v)
}

func TestSimpleCache_Delete(t *testing.T) {
	c := NewSimpleCache[int, int](Options{})
	c.Set(1, 10, 0)
	c.Set(2, 20, 0)
	c.Delete(1)

	_, ok := c.Get(1)
	require.False(t, ok)
	require.Equal(t, 1, c.Len())
}

func TestSimpleCache_ConcurrentAccess(t *testing.T) {
	keys := 100
	rounds := 200

	c := NewSimpleCache[int, int](Options{})
	var wg sync.WaitGroup
	for i := 0; i < keys; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				c.Set(i, r, time.Minute)
				_, _ = c.Get(i)
			}
		}()
	}
	wg.Wait()

	for i := 0; i < keys; i++ {
		v, ok := c.Get(i)
		require.True(t, ok)
		require.Equal(t, rounds-1, v)
	}
}
