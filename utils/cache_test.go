package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryValidationCacheGetSet(t *testing.T) {
	c := NewMemoryValidationCache(&MemoryCacheOptions{MaxEntries: 2})

	_, ok := c.Get("missing")
	require.False(t, ok)

	require.NoError(t, c.Set("a", []byte("body-a"), time.Minute))
	got, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, []byte("body-a"), got)

	stats := c.Stats()
	require.Equal(t, int64(1), stats.Hits)
	require.Equal(t, int64(1), stats.Misses)
}

func TestMemoryValidationCacheExpiry(t *testing.T) {
	c := NewMemoryValidationCache(nil)
	require.NoError(t, c.Set("a", []byte("x"), -time.Second))
	_, ok := c.Get("a")
	require.False(t, ok, "entry with a TTL already in the past should be treated as expired")
}

func TestMemoryValidationCacheEvictsLRU(t *testing.T) {
	c := NewMemoryValidationCache(&MemoryCacheOptions{MaxEntries: 2})
	require.NoError(t, c.Set("a", []byte("a"), time.Minute))
	require.NoError(t, c.Set("b", []byte("b"), time.Minute))
	c.Get("a") // touch a so b becomes the LRU entry
	require.NoError(t, c.Set("c", []byte("c"), time.Minute))

	_, ok := c.Get("b")
	require.False(t, ok, "least recently used entry should have been evicted")
	_, ok = c.Get("a")
	require.True(t, ok)
	_, ok = c.Get("c")
	require.True(t, ok)
}

func TestCalculateFileHashStable(t *testing.T) {
	h1 := CalculateFileHash([]byte("same query"))
	h2 := CalculateFileHash([]byte("same query"))
	h3 := CalculateFileHash([]byte("different query"))
	require.Equal(t, h1, h2)
	require.NotEqual(t, h1, h3)
}
