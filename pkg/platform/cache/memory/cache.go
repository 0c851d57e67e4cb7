// Package memory is the in-process cache backend. Its lifetime is the process:
// nothing is persisted.
package memory

import (
	"context"
	"sync"

	"scriptorium/pkg/platform/cache"
)

// Cache guards a map with a single RWMutex held only for one operation.
// Read-modify-write sequences across calls are not atomic; concurrent writers
// to the same key race and the last Set wins.
type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

// New creates an empty cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{items: make(map[K]V)}
}

// Get returns a copy of the stored value.
func (c *Cache[K, V]) Get(_ context.Context, key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	return cache.Copy(v), true
}

// Set stores a copy of value. It never fails.
func (c *Cache[K, V]) Set(_ context.Context, key K, value V) error {
	value = cache.Copy(value)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

// Delete removes key; absent keys are ignored.
func (c *Cache[K, V]) Delete(_ context.Context, key K) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

// Values returns copies of every stored value in no particular order.
func (c *Cache[K, V]) Values(_ context.Context) ([]V, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]V, 0, len(c.items))
	for _, v := range c.items {
		out = append(out, cache.Copy(v))
	}
	return out, nil
}

// Len returns the number of stored keys.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Clear removes every key.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]V)
}

var _ cache.Store[string, int] = (*Cache[string, int])(nil)
