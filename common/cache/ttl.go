// Package cache provides a single-value TTL cache whose refresh never blocks readers.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Loader fetches a fresh value. Errors keep the previous value in place.
type Loader[T any] func(ctx context.Context) (T, error)

// TTL holds one value refreshed at most once per TTL. Only one goroutine
// refreshes at a time; others get the current value immediately, even if
// it is stale. A failed refresh keeps the last good value and is not
// retried until RetryAfter has passed.
type TTL[T any] struct {
	name       string
	load       Loader[T]
	ttl        time.Duration
	retryAfter time.Duration
	now        func() time.Time

	refresh sync.Mutex

	mu        sync.RWMutex
	value     T
	loaded    bool
	loadedAt  time.Time
	failedAt  time.Time
	lastError error
}

type Option[T any] func(*TTL[T])

// WithRetryAfter sets the backoff after a failed refresh. Default 30s.
func WithRetryAfter[T any](d time.Duration) Option[T] {
	return func(c *TTL[T]) { c.retryAfter = d }
}

// WithClock replaces time.Now, for tests.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *TTL[T]) { c.now = now }
}

func NewTTL[T any](name string, ttl time.Duration, load Loader[T], opts ...Option[T]) *TTL[T] {
	c := &TTL[T]{
		name:       name,
		load:       load,
		ttl:        ttl,
		retryAfter: 30 * time.Second,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value, refreshing it first when it has expired and
// no other refresh is in flight.
func (c *TTL[T]) Get(ctx context.Context) T {
	if !c.needsRefresh() {
		return c.current()
	}

	if !c.refresh.TryLock() {
		return c.current()
	}
	defer c.refresh.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	if !c.needsRefresh() {
		return c.current()
	}

	value, err := c.load(ctx)
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.failedAt = now
		c.lastError = err
		slog.WarnContext(ctx, "cache refresh failed, serving last good value",
			"cache", c.name, "has_value", c.loaded, "error", err)
		return c.value
	}
	c.value = value
	c.loaded = true
	c.loadedAt = now
	c.lastError = nil
	return c.value
}

// Invalidate forces the next Get to refresh.
func (c *TTL[T]) Invalidate() {
	c.mu.Lock()
	c.loadedAt = time.Time{}
	c.failedAt = time.Time{}
	c.mu.Unlock()
}

// LastError is the error of the most recent refresh, nil after a success.
func (c *TTL[T]) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

func (c *TTL[T]) needsRefresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	now := c.now()
	if !c.failedAt.IsZero() && now.Sub(c.failedAt) < c.retryAfter {
		return false
	}
	return !c.loaded || now.Sub(c.loadedAt) >= c.ttl
}

func (c *TTL[T]) current() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}
