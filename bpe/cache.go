package bpe

import (
	"github.com/dgraph-io/ristretto"
)

// cacheEntry is what Cache stores per surface-text key: the merged symbols
// and the character count each symbol covers.
type cacheEntry struct {
	symbols []string
	counts  []int
}

// Cache memoizes completed BPE merges by surface text, backed by
// dgraph-io/ristretto. Concurrent readers never block; a concurrent writer
// racing another writer for the same key may lose its update, which is
// harmless since both would have computed the same merge result.
type Cache struct {
	ristretto *ristretto.Cache
}

// NewCache builds a Cache sized for roughly maxEntries distinct merge
// results.
func NewCache(maxEntries int64) (*Cache, error) {
	rc, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{ristretto: rc}, nil
}

func (c *Cache) get(text string) (cacheEntry, bool) {
	v, ok := c.ristretto.Get(text)
	if !ok {
		return cacheEntry{}, false
	}
	return v.(cacheEntry), true
}

func (c *Cache) set(text string, entry cacheEntry) {
	c.ristretto.Set(text, entry, 1)
}

// Len reports the approximate number of entries currently cached.
func (c *Cache) Len() int {
	return int(c.ristretto.Metrics.KeysAdded() - c.ristretto.Metrics.KeysEvicted())
}

// Clear discards all cached merge results.
func (c *Cache) Clear() {
	c.ristretto.Clear()
}
