package cache

import (
	"context"
	"log/slog"
	"testing"

	"bizhub/internal/domain/service"

	"github.com/stretchr/testify/assert"
)

// fakeMirror stands in for the Redis session mirror, tracking mirrored keys
// by their rendered form.
type fakeMirror struct {
	entries map[string]any
	cleared int
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{entries: make(map[string]any)}
}

func (m *fakeMirror) Store(_ context.Context, key service.CacheKey, value any) {
	m.entries[renderKey(key)] = value
}

func (m *fakeMirror) Drop(_ context.Context, key service.CacheKey) {
	delete(m.entries, renderKey(key))
}

func (m *fakeMirror) DropWhere(_ context.Context, match func(rendered string) bool) int {
	removed := 0
	for rendered := range m.entries {
		if match(rendered) {
			delete(m.entries, rendered)
			removed++
		}
	}

	return removed
}

func (m *fakeMirror) Clear(context.Context) error {
	m.entries = make(map[string]any)
	m.cleared++

	return nil
}

func (m *fakeMirror) Rehydrate(context.Context, service.QueryCache) (int, error) {
	return len(m.entries), nil
}

func newMirroredFixture() (*MirroredCache, *fakeMirror) {
	mirror := newFakeMirror()

	return &MirroredCache{inner: NewMemoryCache(slog.Default()), mirror: mirror}, mirror
}

func TestMirroredCache_SetMirrorsSessionTierOnly(t *testing.T) {
	mc, mirror := newMirroredFixture()

	mc.Set(service.CacheKey{"session", "user-1"}, service.TierSession, "s")
	mc.Set(service.CacheKey{"products", "biz-1"}, service.TierShort, "p")

	assert.Contains(t, mirror.entries, "session:user-1")
	assert.NotContains(t, mirror.entries, "products:biz-1")
}

func TestMirroredCache_InvalidateUserCache_ReachesMirror(t *testing.T) {
	mc, mirror := newMirroredFixture()

	mc.Set(service.CacheKey{"session", "user-1"}, service.TierSession, "s1")
	mc.Set(service.CacheKey{"profile", "user-1"}, service.TierSession, "p1")
	mc.Set(service.CacheKey{"session", "user-2"}, service.TierSession, "s2")

	removed := mc.InvalidateUserCache("user-1")

	assert.Equal(t, 2, removed)
	// A restart must not rehydrate entries the invalidation removed.
	assert.NotContains(t, mirror.entries, "session:user-1")
	assert.NotContains(t, mirror.entries, "profile:user-1")
	assert.Contains(t, mirror.entries, "session:user-2")
}

func TestMirroredCache_ClearByPattern_ReachesMirror(t *testing.T) {
	mc, mirror := newMirroredFixture()

	mc.Set(service.CacheKey{"session", "user-1"}, service.TierSession, "s1")
	mc.Set(service.CacheKey{"profile", "user-1"}, service.TierSession, "p1")

	removed := mc.ClearByPattern("profile")

	assert.Equal(t, 1, removed)
	assert.NotContains(t, mirror.entries, "profile:user-1")
	assert.Contains(t, mirror.entries, "session:user-1")
}

func TestMirroredCache_ClearAll_ClearsMirror(t *testing.T) {
	mc, mirror := newMirroredFixture()

	mc.Set(service.CacheKey{"session", "user-1"}, service.TierSession, "s1")
	mc.ClearAll()

	assert.Empty(t, mirror.entries)
	assert.Equal(t, 1, mirror.cleared)
	assert.Equal(t, 0, mc.Status().CacheSize)
}
