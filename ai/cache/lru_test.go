package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUCache_Creation(t *testing.T) {
	testCases := []struct {
		name      string
		capacity  int
		expectCap int
	}{
		{"default capacity", 0, 1000},
		{"negative capacity", -3, 1000},
		{"custom capacity", 64, 64},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewLRUCache[string, int](tc.capacity, 0)
			assert.Equal(t, tc.expectCap, c.Capacity())
			assert.Zero(t, c.Size())
		})
	}
}

func TestLRUCache_SetGet(t *testing.T) {
	c := NewLRUCache[string, string](10, time.Minute)

	c.Set("a", "1", 0)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	c.Set("a", "2", 0)
	v, _ = c.Get("a")
	assert.Equal(t, "2", v, "set overwrites existing key")
	assert.Equal(t, 1, c.Size())

	_, ok = c.Get("missing")
	assert.False(t, ok)

	assert.True(t, c.Remove("a"))
	assert.False(t, c.Remove("a"))
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int, int](3, time.Minute)
	c.Set(1, 1, 0)
	c.Set(2, 2, 0)
	c.Set(3, 3, 0)

	// Touch 1 so 2 becomes the oldest.
	_, _ = c.Get(1)
	c.Set(4, 4, 0)

	_, ok := c.Get(2)
	assert.False(t, ok)
	for _, k := range []int{1, 3, 4} {
		_, ok := c.Get(k)
		assert.True(t, ok, "key %d should survive", k)
	}
	assert.Equal(t, 3, c.Size())
}

func TestLRUCache_Expiration(t *testing.T) {
	c := NewLRUCache[string, int](10, time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("short", 1, time.Second)
	c.Set("long", 2, time.Hour)

	now = now.Add(2 * time.Second)
	_, ok := c.Get("short")
	assert.False(t, ok)
	_, ok = c.Get("long")
	assert.True(t, ok)

	c.Set("other", 3, time.Second)
	now = now.Add(2 * time.Second)
	assert.Equal(t, 1, c.CleanupExpired())
	assert.Equal(t, 1, c.Size())

	c.Clear()
	assert.Zero(t, c.Size())
}

func TestLRUCache_Concurrent(t *testing.T) {
	c := NewLRUCache[string, int](50, time.Minute)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*200+i)%120)
				c.Set(key, i, 0)
				_, _ = c.Get(key)
			}
		}(g)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Size(), 50)
}
