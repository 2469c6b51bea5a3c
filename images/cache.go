package images

import (
	"context"
	"sync"
)

// Cache memoizes decoded images by content hash for the lifetime of one
// document. Failed decodes are cached too so a broken image shared by many
// fields is only attempted once.
type Cache struct {
	opts DecodeOptions

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	once sync.Once
	img  *Image
	err  error
}

// NewCache returns an empty cache decoding with opts.
func NewCache(opts DecodeOptions) *Cache {
	return &Cache{opts: opts, entries: make(map[string]*entry)}
}

// Get decodes dataURL or returns the earlier result for identical input.
// Concurrent callers for the same key wait on a single decode.
func (c *Cache) Get(ctx context.Context, name, dataURL string) (*Image, error) {
	key := HashData([]byte(dataURL))

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.img, e.err = DecodeWithTimeout(ctx, name, dataURL, c.opts)
	})
	return e.img, e.err
}

// Len returns the number of distinct inputs seen.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
