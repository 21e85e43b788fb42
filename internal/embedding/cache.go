package embedding

import (
	"container/list"
	"context"
	"sync"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// Cache stores vectors keyed by normalized text.
// Implementations must be safe for concurrent use; racing Sets may keep either value.
type Cache interface {
	Get(ctx context.Context, key string) (types.EmbeddingVector, bool)
	Set(ctx context.Context, key string, vector types.EmbeddingVector)
	Clear(ctx context.Context) error
}

// MemoryCache is an in-process LRU cache. A capacity of 0 disables eviction.
type MemoryCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List
}

type memoryEntry struct {
	key    string
	vector types.EmbeddingVector
}

// NewMemoryCache creates a cache holding at most capacity vectors (0 = unbounded)
func NewMemoryCache(capacity int) *MemoryCache {
	if capacity < 0 {
		capacity = 0
	}
	return &MemoryCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns a copy of the cached vector and marks it recently used
func (c *MemoryCache) Get(_ context.Context, key string) (types.EmbeddingVector, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return copyVector(elem.Value.(*memoryEntry).vector), true
}

// Set stores a copy of vector, evicting the least recently used entry when full
func (c *MemoryCache) Set(_ context.Context, key string, vector types.EmbeddingVector) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		elem.Value.(*memoryEntry).vector = copyVector(vector)
		c.order.MoveToFront(elem)
		return
	}

	c.entries[key] = c.order.PushFront(&memoryEntry{key: key, vector: copyVector(vector)})

	if c.capacity > 0 && c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*memoryEntry).key)
	}
}

// Clear drops every entry
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
	return nil
}

// Len returns the number of cached vectors
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func copyVector(v types.EmbeddingVector) types.EmbeddingVector {
	if v == nil {
		return nil
	}
	out := make(types.EmbeddingVector, len(v))
	copy(out, v)
	return out
}
