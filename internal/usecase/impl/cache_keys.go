// Package impl contains the application-specific business rules implementations.
package impl

import "bizhub/internal/domain/service"

// Cache key entity names. The first segment of a key is the entity name the
// change feed invalidation map targets, so these strings and the
// table-to-prefix map must stay in step.
const (
	cacheKeyProfile       = "profile"
	cacheKeyBusinesses    = "businesses"
	cacheKeyAccess        = "access"
	cacheKeyInvitations   = "invitations"
	cacheKeyProducts      = "products"
	cacheKeySales         = "sales"
	cacheKeyNotifications = "notifications"
	cacheKeyPayments      = "payments"
)

func profileKey(userID string) service.CacheKey {
	return service.CacheKey{cacheKeyProfile, userID}
}

func businessesKey(userID string) service.CacheKey {
	return service.CacheKey{cacheKeyBusinesses, userID}
}

func notificationsKey(userID string) service.CacheKey {
	return service.CacheKey{cacheKeyNotifications, userID}
}

func productsKey(businessID string) service.CacheKey {
	return service.CacheKey{cacheKeyProducts, businessID}
}

func salesKey(businessID string) service.CacheKey {
	return service.CacheKey{cacheKeySales, businessID}
}

func paymentsKey(userID string) service.CacheKey {
	return service.CacheKey{cacheKeyPayments, userID}
}
