// Package cache implements the process-local, TTL-tiered query cache and its
// invalidation plumbing.
package cache

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"bizhub/internal/domain/service"
	"bizhub/internal/errors"
)

// keySeparator joins CacheKey segments into the map key. Segments are UUIDs
// and entity names, so the separator never collides with segment content.
const keySeparator = "/"

// tierPolicy holds the two windows of a tier: staleAfter decides when a read
// triggers a reload, gcAfter decides when the sweeper may drop the entry.
type tierPolicy struct {
	staleAfter time.Duration
	gcAfter    time.Duration // zero means only an explicit clear removes the entry
}

var tierPolicies = map[service.CacheTier]tierPolicy{
	service.TierShort:   {staleAfter: time.Minute, gcAfter: 5 * time.Minute},
	service.TierMedium:  {staleAfter: 5 * time.Minute, gcAfter: 15 * time.Minute},
	service.TierLong:    {staleAfter: 15 * time.Minute, gcAfter: time.Hour},
	service.TierSession: {staleAfter: 30 * time.Minute, gcAfter: 0},
}

// entry is one cached query result. done is closed when the in-flight load
// finishes, letting concurrent callers of the same key share one load.
type entry struct {
	segments  []string
	tier      service.CacheTier
	state     service.EntryState
	value     any
	err       error
	updatedAt time.Time
	done      chan struct{}
}

// MemoryCache implements service.QueryCache. All state is guarded by mu;
// loads run outside the lock.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a MemoryCache.
type Option func(*MemoryCache)

// WithClock replaces the wall clock, for staleness tests.
func WithClock(now func() time.Time) Option {
	return func(c *MemoryCache) {
		c.now = now
	}
}

// NewMemoryCache is the constructor for MemoryCache.
func NewMemoryCache(logger *slog.Logger, opts ...Option) *MemoryCache {
	cache := &MemoryCache{
		entries: make(map[string]*entry),
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

func renderKey(key service.CacheKey) string {
	return strings.Join(key, keySeparator)
}

// GetOrLoad returns the cached value for key, loading it when the entry is
// missing, stale or errored. Concurrent callers of the same key share one
// in-flight load; ctx cancels only the caller's wait.
func (c *MemoryCache) GetOrLoad(ctx context.Context, key service.CacheKey, tier service.CacheTier, load service.LoadFunc) (any, error) {
	rendered := renderKey(key)
	policy := tierPolicies[tier]

	c.mu.Lock()
	if ent, ok := c.entries[rendered]; ok {
		switch ent.state {
		case service.EntrySuccess:
			if c.now().Sub(ent.updatedAt) < policy.staleAfter {
				value := ent.value
				c.mu.Unlock()

				return value, nil
			}
			// Stale; fall through and reload.
		case service.EntryPending:
			c.mu.Unlock()

			return c.await(ctx, ent)
		case service.EntryError:
			// Errors are never served from cache; reload below.
		}
	}

	ent := &entry{
		segments: slices.Clone(key),
		tier:     tier,
		state:    service.EntryPending,
		done:     make(chan struct{}),
	}
	c.entries[rendered] = ent
	c.mu.Unlock()

	// The load runs detached from the caller's ctx: another caller waiting on
	// the same entry still needs the result after this caller gives up.
	go c.runLoad(context.WithoutCancel(ctx), rendered, ent, load)

	return c.await(ctx, ent)
}

func (c *MemoryCache) runLoad(ctx context.Context, rendered string, ent *entry, load service.LoadFunc) {
	value, err := load(ctx)

	c.mu.Lock()
	// The entry may have been invalidated while the load ran; only publish
	// the result if this load's entry is still current.
	current := c.entries[rendered] == ent
	ent.updatedAt = c.now()
	if err != nil {
		ent.state = service.EntryError
		ent.err = err
		// Failed loads are dropped immediately so the next read retries.
		if current {
			delete(c.entries, rendered)
		}
	} else {
		ent.state = service.EntrySuccess
		ent.value = value
	}
	c.mu.Unlock()

	close(ent.done)
}

// await blocks until the in-flight load finishes or ctx is cancelled.
func (c *MemoryCache) await(ctx context.Context, ent *entry) (any, error) {
	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "cache load wait cancelled")
	case <-ent.done:
	}

	c.mu.Lock()
	state, value, err := ent.state, ent.value, ent.err
	c.mu.Unlock()

	switch state {
	case service.EntrySuccess:
		return value, nil
	case service.EntryError:
		return nil, err
	default:
		return nil, errors.New("cache entry was invalidated during load")
	}
}

// Peek returns the cached value without loading.
func (c *MemoryCache) Peek(key service.CacheKey) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[renderKey(key)]
	if !ok || ent.state != service.EntrySuccess {
		return nil, false
	}

	return ent.value, true
}

// Set stores a value directly, e.g. after a local mutation.
func (c *MemoryCache) Set(key service.CacheKey, tier service.CacheTier, value any) {
	done := make(chan struct{})
	close(done)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[renderKey(key)] = &entry{
		segments:  slices.Clone(key),
		tier:      tier,
		state:     service.EntrySuccess,
		value:     value,
		updatedAt: c.now(),
		done:      done,
	}
}

// Invalidate removes one exact key.
func (c *MemoryCache) Invalidate(key service.CacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, renderKey(key))
}

// ClearByPattern removes every entry whose rendered key contains the
// substring. Returns the number of removed entries.
func (c *MemoryCache) ClearByPattern(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for rendered := range c.entries {
		if strings.Contains(rendered, pattern) {
			delete(c.entries, rendered)
			removed++
		}
	}

	return removed
}

// InvalidateUserCache removes every entry with a key segment equal to id.
// Removing an absent entry is a no-op, so repeated calls converge on the
// same cache state.
func (c *MemoryCache) InvalidateUserCache(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for rendered, ent := range c.entries {
		if slices.Contains(ent.segments, id) {
			delete(c.entries, rendered)
			removed++
		}
	}

	return removed
}

// ClearAll drops every entry, including the SESSION tier.
func (c *MemoryCache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
}

// Status reports a snapshot for the debug endpoint.
func (c *MemoryCache) Status() service.CacheStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := service.CacheStatus{
		CacheSize: len(c.entries),
		Keys:      make([]string, 0, len(c.entries)),
		ByState:   make(map[string]int),
	}
	for rendered, ent := range c.entries {
		status.Keys = append(status.Keys, rendered)
		status.ByState[string(ent.state)]++
	}
	slices.Sort(status.Keys)

	return status
}

// LastUpdatedAt reports when the entry was last written.
func (c *MemoryCache) LastUpdatedAt(key service.CacheKey) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[renderKey(key)]
	if !ok {
		return time.Time{}, false
	}

	return ent.updatedAt, true
}

// Sweep removes entries past their tier's collection window. SESSION-tier
// entries are never swept; they go stale but survive until an explicit clear.
func (c *MemoryCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for rendered, ent := range c.entries {
		if ent.state == service.EntryPending {
			continue
		}
		policy := tierPolicies[ent.tier]
		if policy.gcAfter > 0 && now.Sub(ent.updatedAt) >= policy.gcAfter {
			delete(c.entries, rendered)
			removed++
		}
	}

	return removed
}

// Run sweeps on the given interval until ctx ends.
func (c *MemoryCache) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := c.Sweep(); removed > 0 && c.logger != nil {
				c.logger.Debug("cache sweep completed", slog.Int("removed", removed))
			}
		}
	}
}

var _ service.QueryCache = (*MemoryCache)(nil)
