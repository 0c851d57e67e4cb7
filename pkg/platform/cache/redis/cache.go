// Package redis is a go-redis backed cache.Store for read models shared
// between instances.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	dErrors "scriptorium/pkg/domain-errors"
	"scriptorium/pkg/platform/cache"
)

const scanBatch = 256

// Codec converts values to and from their stored representation.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// JSONCodec stores values as JSON documents.
type JSONCodec[V any] struct{}

func (JSONCodec[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }

func (JSONCodec[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}

// Cache stores values under prefix+key.
type Cache[K ~string, V any] struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	codec  Codec[V]
	logger *slog.Logger
}

// Option configures a Cache.
type Option[K ~string, V any] func(*Cache[K, V])

// WithTTL expires entries after ttl. Zero keeps entries forever.
func WithTTL[K ~string, V any](ttl time.Duration) Option[K, V] {
	return func(c *Cache[K, V]) { c.ttl = ttl }
}

// WithCodec replaces the JSON codec.
func WithCodec[K ~string, V any](codec Codec[V]) Option[K, V] {
	return func(c *Cache[K, V]) {
		if codec != nil {
			c.codec = codec
		}
	}
}

// WithLogger sets the logger used to report failed reads.
func WithLogger[K ~string, V any](logger *slog.Logger) Option[K, V] {
	return func(c *Cache[K, V]) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a Cache. prefix namespaces the keys, e.g. "authors:".
func New[K ~string, V any](client redis.UniversalClient, prefix string, opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		client: client,
		prefix: prefix,
		codec:  JSONCodec[V]{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Cache[K, V]) key(k K) string {
	return c.prefix + string(k)
}

// Get reports a miss both for absent keys and for backend or decode failures.
// Failures are logged.
func (c *Cache[K, V]) Get(ctx context.Context, key K) (V, bool) {
	var zero V
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false
	}
	if err != nil {
		c.logger.WarnContext(ctx, "cache read failed", "key", c.key(key), "error", err)
		return zero, false
	}
	v, err := c.codec.Decode(raw)
	if err != nil {
		c.logger.WarnContext(ctx, "cache value undecodable", "key", c.key(key), "error", err)
		return zero, false
	}
	return v, true
}

func (c *Cache[K, V]) Set(ctx context.Context, key K, value V) error {
	raw, err := c.codec.Encode(value)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeSerialization, "encode cache value")
	}
	if err := c.client.Set(ctx, c.key(key), raw, c.ttl).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInfrastructure, "redis set")
	}
	return nil
}

func (c *Cache[K, V]) Delete(ctx context.Context, key K) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInfrastructure, "redis del")
	}
	return nil
}

// Values scans the prefix and fetches matches with MGET in batches. SCAN may
// repeat keys across pages; each key is fetched once. Keys that expire between
// SCAN and MGET are skipped.
func (c *Cache[K, V]) Values(ctx context.Context) ([]V, error) {
	var (
		out    []V
		cursor uint64
	)
	seen := make(map[string]struct{})
	pattern := escapeGlob(c.prefix) + "*"
	for {
		page, next, err := c.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInfrastructure, "redis scan")
		}
		keys := make([]string, 0, len(page))
		for _, k := range page {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
		if len(keys) > 0 {
			raws, err := c.client.MGet(ctx, keys...).Result()
			if err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeInfrastructure, "redis mget")
			}
			for i, raw := range raws {
				s, ok := raw.(string)
				if !ok {
					continue
				}
				v, err := c.codec.Decode([]byte(s))
				if err != nil {
					c.logger.WarnContext(ctx, "cache value undecodable", "key", keys[i], "error", err)
					continue
				}
				out = append(out, v)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return out, nil
}

func escapeGlob(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}

var _ cache.Store[string, int] = (*Cache[string, int])(nil)
