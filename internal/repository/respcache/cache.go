// Package respcache memoizes read responses in the key-value store,
// keyed by a canonical serialization of the request signature.
package respcache

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/dannythehat/eerie-escapes/internal/db"
)

// TTL tiers for cached responses.
const (
	TTLShort  = 60 * time.Second
	TTLMedium = 5 * time.Minute
	TTLLong   = time.Hour
)

// keyPrefix namespaces cached responses so pattern invalidation can
// sweep them without touching catalog data.
const keyPrefix = "cache:"

// ErrMiss signals an absent cache entry.
var ErrMiss = errors.New("cache miss")

// store is the consumer interface for cache operations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DelMulti(ctx context.Context, keys []string) (int64, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Cache is the response cache.
type Cache struct {
	store store
}

// New creates a response cache.
func New(s store) *Cache {
	return &Cache{store: s}
}

// Key derives the deterministic cache key for a request: path plus
// all query parameters in canonical (sorted) order, so two requests
// that differ only in parameter order share an entry.
func Key(path string, query url.Values) string {
	if len(query) == 0 {
		return keyPrefix + path
	}

	names := make([]string, 0, len(query))
	for name := range query {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(keyPrefix)
	b.WriteString(path)
	sep := byte('?')
	for _, name := range names {
		vals := append([]string(nil), query[name]...)
		sort.Strings(vals)
		for _, v := range vals {
			b.WriteByte(sep)
			sep = '&'
			b.WriteString(url.QueryEscape(name))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// Get returns the cached payload for a key, or ErrMiss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}
	return data, nil
}

// Set stores a payload under a key with the given TTL. Concurrent
// duplicate writes for the same key are harmless: last write wins.
func (c *Cache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := c.store.SetWithTTL(ctx, key, payload, ttl); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate removes all keys matching a wildcard pattern (relative
// to the cache namespace) and returns the count removed. Called on
// every catalog mutation so stale search results are never served
// past a commit.
func (c *Cache) Invalidate(ctx context.Context, pattern string) (int64, error) {
	keys, err := c.store.Scan(ctx, keyPrefix+pattern)
	if err != nil {
		return 0, fmt.Errorf("cache scan %q: %w", pattern, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := c.store.DelMulti(ctx, keys)
	if err != nil {
		return 0, fmt.Errorf("cache invalidate %q: %w", pattern, err)
	}
	return n, nil
}
