package books

import (
	"context"
	"sync"
)

// InMemoryCatalog is a simple in-process catalog for local/dev use.
type InMemoryCatalog struct {
	mu    sync.RWMutex
	items map[string]Book
}

func NewInMemoryCatalog(seed ...Book) *InMemoryCatalog {
	c := &InMemoryCatalog{items: make(map[string]Book)}
	for _, b := range seed {
		c.items[b.ID] = b
	}
	return c
}

func (c *InMemoryCatalog) Add(b Book) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[b.ID] = b
}

func (c *InMemoryCatalog) BookByID(_ context.Context, id string) (Book, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.items[id]
	return b, ok, nil
}

func (c *InMemoryCatalog) Close() error { return nil }
