package service

import (
	"context"
	"time"
)

// CacheTier selects the staleness and garbage-collection windows of an entry.
type CacheTier int

const (
	// TierShort is for volatile lists: stale after 1 minute, collected after 5.
	TierShort CacheTier = iota
	// TierMedium is the default tier: stale after 5 minutes, collected after 15.
	TierMedium
	// TierLong is for near-static data: stale after 15 minutes, collected after 60.
	TierLong
	// TierSession is for identity-scoped data: stale after 30 minutes,
	// retained until an explicit clear.
	TierSession
)

// CacheKey is the ordered tuple identifying a cached query result: an entity
// name followed by scoping identifiers, e.g. ("businesses", userID).
type CacheKey []string

// EntryState describes the lifecycle of a cache entry.
type EntryState string

const (
	// EntryPending marks an entry whose load is still in flight.
	EntryPending EntryState = "pending"
	// EntrySuccess marks an entry holding loaded data.
	EntrySuccess EntryState = "success"
	// EntryError marks an entry whose last load failed.
	EntryError EntryState = "error"
)

// CacheStatus is a snapshot used by the debug endpoint and tests.
type CacheStatus struct {
	CacheSize int            `json:"cache_size"`
	Keys      []string       `json:"keys"`
	ByState   map[string]int `json:"by_state"`
}

// LoadFunc produces the value for a cache key on miss or staleness.
type LoadFunc func(ctx context.Context) (any, error)

// QueryCache is the process-local, TTL-tiered query cache. Concurrent loads
// of the same key share a single in-flight request.
type QueryCache interface {
	// GetOrLoad returns the cached value for key, loading it via load when
	// the entry is missing or stale. The ctx cancels a caller's wait, not a
	// shared in-flight load that other callers still need.
	GetOrLoad(ctx context.Context, key CacheKey, tier CacheTier, load LoadFunc) (any, error)

	// Peek returns the cached value without loading. ok is false when the
	// entry is missing, stale or not successful.
	Peek(key CacheKey) (any, bool)

	// Set stores a value directly, e.g. after a local mutation.
	Set(key CacheKey, tier CacheTier, value any)

	// Invalidate removes one exact key.
	Invalidate(key CacheKey)

	// ClearByPattern removes every entry whose rendered key contains the
	// substring. Returns the number of removed entries.
	ClearByPattern(pattern string) int

	// InvalidateUserCache removes every entry scoped by the identifier.
	// Calling it twice in a row leaves the same cache state as calling it once.
	InvalidateUserCache(id string) int

	// ClearAll drops every entry, including the SESSION tier.
	ClearAll()

	// Status reports a snapshot for the debug endpoint.
	Status() CacheStatus

	// LastUpdatedAt reports when the entry was last written, for staleness
	// inspection in tests and the debug endpoint.
	LastUpdatedAt(key CacheKey) (time.Time, bool)
}
