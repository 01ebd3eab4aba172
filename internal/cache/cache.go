// Package cache fetches remote resources (schemas, templates) through a
// configurable caching strategy backed by a pluggable store.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/visaflow/mcp-i765-filler/internal/logging"
)

// Strategy names how a Get balances the store against the network.
type Strategy string

const (
	// CacheFirst serves from the store and only fetches on a miss.
	CacheFirst Strategy = "cache-first"
	// NetworkFirst always fetches and falls back to stale data when the
	// fetch fails.
	NetworkFirst Strategy = "network-first"
	// StaleWhileRevalidate serves stale data immediately and refreshes in
	// the background.
	StaleWhileRevalidate Strategy = "stale-while-revalidate"
	// NetworkOnly bypasses the store entirely.
	NetworkOnly Strategy = "network-only"
	// CacheOnly never fetches; a miss is an error.
	CacheOnly Strategy = "cache-only"
)

// ParseStrategy maps a configuration string to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case CacheFirst, NetworkFirst, StaleWhileRevalidate, NetworkOnly, CacheOnly:
		return Strategy(s), nil
	case "":
		return CacheFirst, nil
	default:
		return "", fmt.Errorf("unknown cache strategy %q", s)
	}
}

// ErrNotCached is returned by the cache-only strategy on a miss.
var ErrNotCached = errors.New("resource not cached")

// Fetcher produces the authoritative bytes for one resource.
type Fetcher func(ctx context.Context) ([]byte, error)

// Store is the persistence behind a Cache. Implementations must be safe
// for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Cache dispatches Gets through one strategy. Store failures degrade to
// misses rather than failing the call; only fetch failures surface.
type Cache struct {
	store    Store
	strategy Strategy
	ttl      time.Duration
	logger   logging.Logger
	refresh  sync.WaitGroup
}

// New builds a Cache. A zero ttl stores entries without expiry.
func New(store Store, strategy Strategy, ttl time.Duration, logger logging.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Cache{store: store, strategy: strategy, ttl: ttl, logger: logger}
}

// Strategy returns the configured strategy.
func (c *Cache) Strategy() Strategy { return c.strategy }

// Get resolves key through the configured strategy.
func (c *Cache) Get(ctx context.Context, key string, fetch Fetcher) ([]byte, error) {
	switch c.strategy {
	case NetworkOnly:
		return fetch(ctx)
	case CacheOnly:
		value, ok := c.lookup(ctx, key)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotCached, key)
		}
		return value, nil
	case NetworkFirst:
		return c.networkFirst(ctx, key, fetch)
	case StaleWhileRevalidate:
		return c.staleWhileRevalidate(ctx, key, fetch)
	default:
		return c.cacheFirst(ctx, key, fetch)
	}
}

// Invalidate drops one key from the store.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	if err := c.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("invalidating %s: %w", key, err)
	}
	return nil
}

// Wait blocks until background revalidations finish. Called on shutdown
// and by tests that need the refresh to have landed.
func (c *Cache) Wait() {
	c.refresh.Wait()
}

func (c *Cache) cacheFirst(ctx context.Context, key string, fetch Fetcher) ([]byte, error) {
	if value, ok := c.lookup(ctx, key); ok {
		return value, nil
	}
	value, err := fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", key, err)
	}
	c.put(ctx, key, value)
	return value, nil
}

func (c *Cache) networkFirst(ctx context.Context, key string, fetch Fetcher) ([]byte, error) {
	value, err := fetch(ctx)
	if err == nil {
		c.put(ctx, key, value)
		return value, nil
	}
	if stale, ok := c.lookup(ctx, key); ok {
		c.logger.Warn("fetch failed, serving stale copy", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return stale, nil
	}
	return nil, fmt.Errorf("fetching %s: %w", key, err)
}

func (c *Cache) staleWhileRevalidate(ctx context.Context, key string, fetch Fetcher) ([]byte, error) {
	stale, ok := c.lookup(ctx, key)
	if !ok {
		return c.cacheFirst(ctx, key, fetch)
	}
	c.refresh.Add(1)
	// Detached from the caller's cancellation: the response already went
	// out, the refresh is housekeeping.
	bg := context.WithoutCancel(ctx)
	go func() {
		defer c.refresh.Done()
		value, err := fetch(bg)
		if err != nil {
			c.logger.Warn("background revalidation failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
			return
		}
		c.put(bg, key, value)
	}()
	return stale, nil
}

func (c *Cache) lookup(ctx context.Context, key string) ([]byte, bool) {
	value, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache store read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return nil, false
	}
	return value, ok
}

func (c *Cache) put(ctx context.Context, key string, value []byte) {
	if err := c.store.Set(ctx, key, value, c.ttl); err != nil {
		c.logger.Warn("cache store write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}
