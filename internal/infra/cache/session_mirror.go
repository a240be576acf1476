package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"bizhub/internal/domain/service"
	"bizhub/internal/errors"

	"github.com/redis/go-redis/v9"
)

// mirrorPrefix namespaces mirrored keys inside Redis.
const mirrorPrefix = "bizhub:session:"

// mirrorTTL bounds how long a mirrored entry may outlive the process that
// wrote it.
const mirrorTTL = 24 * time.Hour

// SessionMirror copies SESSION-tier entries into Redis and restores them at
// startup, so identity-scoped data survives a process restart. Unlike its
// ancestor, the mirror is read back: Rehydrate runs before the first request.
type SessionMirror struct {
	client *redis.Client
	logger *slog.Logger
}

// NewSessionMirror is the constructor for SessionMirror.
func NewSessionMirror(client *redis.Client, logger *slog.Logger) *SessionMirror {
	return &SessionMirror{client: client, logger: logger}
}

// Store mirrors one SESSION-tier value. Failures are logged and swallowed;
// the in-memory entry is authoritative.
func (m *SessionMirror) Store(ctx context.Context, key service.CacheKey, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		m.logger.WarnContext(ctx, "session mirror marshal failed",
			slog.String("key", renderKey(key)), slog.Any("error", err))

		return
	}

	if err := m.client.Set(ctx, mirrorPrefix+renderKey(key), payload, mirrorTTL).Err(); err != nil {
		m.logger.WarnContext(ctx, "session mirror write failed",
			slog.String("key", renderKey(key)), slog.Any("error", err))
	}
}

// Drop removes one mirrored entry.
func (m *SessionMirror) Drop(ctx context.Context, key service.CacheKey) {
	if err := m.client.Del(ctx, mirrorPrefix+renderKey(key)).Err(); err != nil {
		m.logger.WarnContext(ctx, "session mirror delete failed",
			slog.String("key", renderKey(key)), slog.Any("error", err))
	}
}

// DropWhere removes every mirrored entry whose rendered key satisfies match.
// Failures are logged and swallowed; the memory cache is authoritative.
func (m *SessionMirror) DropWhere(ctx context.Context, match func(rendered string) bool) int {
	removed := 0
	iter := m.client.Scan(ctx, 0, mirrorPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if !match(strings.TrimPrefix(iter.Val(), mirrorPrefix)) {
			continue
		}
		if err := m.client.Del(ctx, iter.Val()).Err(); err != nil {
			m.logger.WarnContext(ctx, "session mirror delete failed",
				slog.String("key", iter.Val()), slog.Any("error", err))

			continue
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		m.logger.WarnContext(ctx, "session mirror scan failed", slog.Any("error", err))
	}

	return removed
}

// Clear removes every mirrored entry, e.g. on sign-out.
func (m *SessionMirror) Clear(ctx context.Context) error {
	iter := m.client.Scan(ctx, 0, mirrorPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := m.client.Del(ctx, iter.Val()).Err(); err != nil {
			return errors.Wrap(err, "failed to delete mirrored session entry")
		}
	}

	return errors.Wrap(iter.Err(), "failed to scan mirrored session entries")
}

// Rehydrate loads every mirrored entry back into the cache as SESSION-tier
// values. Restored values are raw JSON; handlers serve them as-is until the
// next reload replaces them with typed data.
func (m *SessionMirror) Rehydrate(ctx context.Context, cache service.QueryCache) (int, error) {
	restored := 0
	iter := m.client.Scan(ctx, 0, mirrorPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		redisKey := iter.Val()

		payload, err := m.client.Get(ctx, redisKey).Bytes()
		if err != nil {
			m.logger.WarnContext(ctx, "session mirror read failed",
				slog.String("key", redisKey), slog.Any("error", err))

			continue
		}

		rendered := strings.TrimPrefix(redisKey, mirrorPrefix)
		key := service.CacheKey(strings.Split(rendered, keySeparator))
		cache.Set(key, service.TierSession, json.RawMessage(payload))
		restored++
	}
	if err := iter.Err(); err != nil {
		return restored, errors.Wrap(err, "failed to scan session mirror")
	}

	m.logger.InfoContext(ctx, "session cache rehydrated", slog.Int("entries", restored))

	return restored, nil
}
