package imaging

import (
	"fmt"
	"os"
	"sync"
)

// ChartCache keeps raw chart bytes keyed by where they came from (a URL or a
// file path) so repeated inspections of one chart do not download it again.
//
// Only encoded bytes are cached. Every consumer decodes its own copy, so no
// decoded image or crop is shared between calls.
//
// ChartCache is safe for concurrent use by multiple goroutines.
type ChartCache struct {
	mu     sync.RWMutex
	charts map[string][]byte
}

// NewChartCache creates and initializes a new empty chart cache.
func NewChartCache() *ChartCache {
	return &ChartCache{
		charts: make(map[string][]byte),
	}
}

// Load returns the cached bytes for key, calling fetch to fill the entry on a
// miss. Failed fetches are not cached.
func (c *ChartCache) Load(key string, fetch func() ([]byte, error)) ([]byte, error) {
	c.mu.RLock()
	if data, ok := c.charts[key]; ok {
		c.mu.RUnlock()
		return data, nil
	}
	c.mu.RUnlock()

	data, err := fetch()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.charts[key] = data
	c.mu.Unlock()

	return data, nil
}

// LoadFile returns the bytes of the chart file at path.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
func (c *ChartCache) LoadFile(path string) ([]byte, error) {
	return c.Load(path, func() ([]byte, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read chart: %w", err)
		}
		return data, nil
	})
}

// Evict removes a specific chart from the cache.
func (c *ChartCache) Evict(key string) {
	c.mu.Lock()
	delete(c.charts, key)
	c.mu.Unlock()
}

// Clear removes all charts from the cache.
func (c *ChartCache) Clear() {
	c.mu.Lock()
	c.charts = make(map[string][]byte)
	c.mu.Unlock()
}

// Len reports how many charts are cached.
func (c *ChartCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.charts)
}
