// Package cache defines the key/value contract repositories are built on.
//
// The in-process implementation lives in cache/memory; cache/redis provides a
// shared backend for read models that must survive a restart of one instance.
package cache

import "context"

// Cache is a concurrent-safe key/value mapping with unique keys and no ordering.
//
// Get never fails: backends that cannot answer report a miss. Set upserts.
// Delete of an absent key is not an error. Backends other than memory may fail
// Set/Delete with CodeInfrastructure.
type Cache[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V) error
	Delete(ctx context.Context, key K) error
}

// Store is a Cache that can also enumerate its values, which is what
// repositories need to answer searches without a secondary index.
type Store[K comparable, V any] interface {
	Cache[K, V]
	Values(ctx context.Context) ([]V, error)
}

// Cloner is implemented by values that hold references (slices, maps,
// pointers). Caches clone such values on the way in and out so callers never
// share memory with the stored copy.
type Cloner[V any] interface {
	Clone() V
}

// Copy clones v when it implements Cloner and returns it unchanged otherwise.
func Copy[V any](v V) V {
	if c, ok := any(v).(Cloner[V]); ok {
		return c.Clone()
	}
	return v
}
