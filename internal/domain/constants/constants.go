// Package constants defines shared constant values used across layers.
package constants

const (
	// PubSubProviderLocal selects the local HTTP publisher for development.
	PubSubProviderLocal = "local"
	// PubSubProviderGoogle selects the Google Cloud Pub/Sub publisher.
	PubSubProviderGoogle = "google"
)

// Deployment environment names.
const (
	// EnvDevelop is the local development environment.
	EnvDevelop = "develop"
	// EnvProduction is the production environment.
	EnvProduction = "production"
)

// Change-feed table names. The invalidator maps these to cache-key prefixes,
// so every repository that publishes change events must use the same names.
const (
	TableProfiles            = "profiles"
	TableBusinesses          = "businesses"
	TableBusinessAccess      = "business_access"
	TableInvitations         = "business_invitations"
	TableProducts            = "products"
	TableSales               = "sales"
	TableNotifications       = "notifications"
	TablePaymentTransactions = "payment_transactions"
)
