package cache

import (
	"context"
	"log/slog"

	"bizhub/internal/domain/constants"
	"bizhub/internal/domain/service"
)

// prefixesByTable maps a mutated table to the cache key prefixes it may have
// populated. Invalidation is deliberately coarse: dropping a prefix is cheap,
// serving stale rows is not.
var prefixesByTable = map[string][]string{
	constants.TableProfiles:            {"profile", "user"},
	constants.TableBusinesses:          {"businesses", "business"},
	constants.TableBusinessAccess:      {"access", "businesses"},
	constants.TableInvitations:         {"invitations"},
	constants.TableProducts:            {"products", "product"},
	constants.TableSales:               {"sales", "sale", "products"},
	constants.TableNotifications:       {"notifications"},
	constants.TablePaymentTransactions: {"payments", "profile"},
}

// Invalidator wires session events and the change feed into cache clears.
type Invalidator struct {
	cache  service.QueryCache
	logger *slog.Logger
}

// NewInvalidator is the constructor for Invalidator.
func NewInvalidator(cache service.QueryCache, logger *slog.Logger) *Invalidator {
	return &Invalidator{cache: cache, logger: logger}
}

// BindSessionBus subscribes the invalidator to auth state changes.
func (inv *Invalidator) BindSessionBus(bus service.SessionEventBus) {
	bus.Subscribe(inv.OnSessionEvent)
}

// OnSessionEvent reacts to one auth state change. A token refresh for the
// same identity keeps every cache entry; any identity change wipes the
// whole cache, SESSION tier included.
func (inv *Invalidator) OnSessionEvent(event service.SessionEvent) {
	switch event.Type {
	case service.SessionTokenRefreshed:
		if event.SameIdentity {
			return
		}
		inv.cache.ClearAll()
	case service.SessionSignedIn, service.SessionSignedOut:
		inv.cache.ClearAll()
	}

	inv.logger.Debug("cache cleared on session event",
		slog.String("event", string(event.Type)),
		slog.String("userID", event.UserID.String()))
}

// OnChangeEvent reacts to one table-level change notification. The event is
// a signal to drop derived entries, never a source of data.
func (inv *Invalidator) OnChangeEvent(ctx context.Context, event *service.ChangeEvent) {
	prefixes, ok := prefixesByTable[event.Table]
	if !ok {
		inv.logger.Debug("change event for unmapped table ignored",
			slog.String("table", event.Table))

		return
	}

	removed := 0
	for _, prefix := range prefixes {
		removed += inv.cache.ClearByPattern(prefix)
	}
	if event.UserID != "" {
		removed += inv.cache.InvalidateUserCache(event.UserID)
	}

	inv.logger.DebugContext(ctx, "cache invalidated on change event",
		slog.String("table", event.Table),
		slog.String("op", string(event.Op)),
		slog.Int("removed", removed))
}

// Consume runs the change feed consumer until ctx ends.
func (inv *Invalidator) Consume(ctx context.Context, consumer service.ChangeFeedConsumer) error {
	return consumer.Consume(ctx, func(event *service.ChangeEvent) {
		inv.OnChangeEvent(ctx, event)
	})
}
