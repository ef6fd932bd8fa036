package vectorstore

import (
	"container/list"
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// BuildFunc constructs an index for a document that is not cached.
type BuildFunc func(ctx context.Context) (*Index, error)

// Cache is a bounded LRU cache of document indexes keyed by URL hash.
// Concurrent callers asking for the same un-cached document share a single
// build via singleflight instead of each building their own.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
	group    singleflight.Group
}

type cacheEntry struct {
	key   string
	index *Index
}

// NewCache creates a Cache holding at most capacity indexes.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns the cached index for a URL hash, marking it recently used.
func (c *Cache) Get(urlHash string) (*Index, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[urlHash]
	if !ok {
		return nil, false
	}

	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).index, true
}

// Put stores an index, evicting the least recently used entry if full.
func (c *Cache) Put(urlHash string, index *Index) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[urlHash]; ok {
		el.Value.(*cacheEntry).index = index
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&cacheEntry{key: urlHash, index: index})
	c.entries[urlHash] = el

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Delete removes an index from the cache.
func (c *Cache) Delete(urlHash string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[urlHash]; ok {
		c.order.Remove(el)
		delete(c.entries, urlHash)
	}
}

// Len returns the number of cached indexes.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// GetOrBuild returns the cached index for a URL hash, building it at most
// once across concurrent callers on a miss. The second return value reports
// whether the index came from cache.
func (c *Cache) GetOrBuild(ctx context.Context, urlHash string, build BuildFunc) (*Index, bool, error) {
	if index, ok := c.Get(urlHash); ok {
		return index, true, nil
	}

	v, err, _ := c.group.Do(urlHash, func() (any, error) {
		// Re-check under singleflight: another caller may have just
		// finished building.
		if index, ok := c.Get(urlHash); ok {
			return index, nil
		}

		index, err := build(ctx)
		if err != nil {
			return nil, err
		}

		c.Put(urlHash, index)
		return index, nil
	})
	if err != nil {
		return nil, false, err
	}

	return v.(*Index), false, nil
}
