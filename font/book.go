package font

import "sync"

// Cache is a read-mostly, concurrency-safe collection of fonts keyed
// by Font.ID — the server's font provider's blob cache (spec §5:
// "read-mostly and may be shared across workers without mutation").
// Reads vastly outnumber writes (one Add per font at startup, then
// many concurrent Get calls per request), so it follows the same
// sync.RWMutex shape as the teacher's FontBook.
type Cache struct {
	mu    sync.RWMutex
	fonts map[string]*Font
}

// NewCache creates a new empty Cache.
func NewCache() *Cache {
	return &Cache{fonts: make(map[string]*Font)}
}

// Add registers fonts in the cache, keyed by their ID. A later Add
// with the same ID overwrites the earlier entry.
func (c *Cache) Add(fonts ...*Font) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, f := range fonts {
		c.fonts[f.ID] = f
	}
}

// Get returns the font registered under id, or nil if none exists.
func (c *Cache) Get(id string) *Font {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fonts[id]
}

// Len returns the number of fonts in the cache.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.fonts)
}

// IDs returns every font ID currently registered, in no particular
// order.
func (c *Cache) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.fonts))
	for id := range c.fonts {
		ids = append(ids, id)
	}
	return ids
}

// SystemCache creates a Cache loaded with system fonts.
func SystemCache() (*Cache, error) {
	fonts, err := DiscoverSystemFonts()
	if err != nil {
		return nil, err
	}

	cache := NewCache()
	cache.Add(fonts...)
	return cache, nil
}
