package cache

import (
	"context"
	"slices"
	"strings"
	"time"

	"bizhub/internal/domain/service"
)

// sessionMirrorStore is the surface MirroredCache needs from the Redis
// session mirror.
type sessionMirrorStore interface {
	Store(ctx context.Context, key service.CacheKey, value any)
	Drop(ctx context.Context, key service.CacheKey)
	DropWhere(ctx context.Context, match func(rendered string) bool) int
	Clear(ctx context.Context) error
	Rehydrate(ctx context.Context, cache service.QueryCache) (int, error)
}

// MirroredCache decorates a MemoryCache with the Redis session mirror:
// SESSION-tier writes are copied out, and clears reach the mirror too, so a
// restarted process can rehydrate instead of starting cold.
type MirroredCache struct {
	inner  *MemoryCache
	mirror sessionMirrorStore
}

// NewMirroredCache is the constructor for MirroredCache.
func NewMirroredCache(inner *MemoryCache, mirror *SessionMirror) *MirroredCache {
	return &MirroredCache{inner: inner, mirror: mirror}
}

// GetOrLoad delegates to the in-memory cache and mirrors fresh SESSION-tier
// results.
func (c *MirroredCache) GetOrLoad(ctx context.Context, key service.CacheKey, tier service.CacheTier, load service.LoadFunc) (any, error) {
	value, err := c.inner.GetOrLoad(ctx, key, tier, load)
	if err == nil && tier == service.TierSession {
		c.mirror.Store(context.WithoutCancel(ctx), key, value)
	}

	return value, err
}

// Peek returns the cached value without loading.
func (c *MirroredCache) Peek(key service.CacheKey) (any, bool) {
	return c.inner.Peek(key)
}

// Set stores a value directly and mirrors SESSION-tier entries.
func (c *MirroredCache) Set(key service.CacheKey, tier service.CacheTier, value any) {
	c.inner.Set(key, tier, value)
	if tier == service.TierSession {
		c.mirror.Store(context.Background(), key, value)
	}
}

// Invalidate removes one exact key from memory and the mirror.
func (c *MirroredCache) Invalidate(key service.CacheKey) {
	c.inner.Invalidate(key)
	c.mirror.Drop(context.Background(), key)
}

// ClearByPattern removes matching entries from memory and the mirror, so a
// restart cannot rehydrate values a change event already invalidated.
func (c *MirroredCache) ClearByPattern(pattern string) int {
	removed := c.inner.ClearByPattern(pattern)
	c.mirror.DropWhere(context.Background(), func(rendered string) bool {
		return strings.Contains(rendered, pattern)
	})

	return removed
}

// InvalidateUserCache removes every entry scoped by the identifier,
// mirrored SESSION entries included.
func (c *MirroredCache) InvalidateUserCache(id string) int {
	removed := c.inner.InvalidateUserCache(id)
	c.mirror.DropWhere(context.Background(), func(rendered string) bool {
		return slices.Contains(strings.Split(rendered, ":"), id)
	})

	return removed
}

// ClearAll drops every entry, SESSION tier and mirror included.
func (c *MirroredCache) ClearAll() {
	c.inner.ClearAll()
	_ = c.mirror.Clear(context.Background())
}

// Status reports a snapshot for the debug endpoint.
func (c *MirroredCache) Status() service.CacheStatus {
	return c.inner.Status()
}

// LastUpdatedAt reports when the entry was last written.
func (c *MirroredCache) LastUpdatedAt(key service.CacheKey) (time.Time, bool) {
	return c.inner.LastUpdatedAt(key)
}

// Rehydrate restores mirrored SESSION entries into memory at startup.
func (c *MirroredCache) Rehydrate(ctx context.Context) (int, error) {
	return c.mirror.Rehydrate(ctx, c.inner)
}

// Run sweeps expired in-memory entries on the given interval until ctx ends.
func (c *MirroredCache) Run(ctx context.Context, interval time.Duration) {
	c.inner.Run(ctx, interval)
}

var _ service.QueryCache = (*MirroredCache)(nil)
