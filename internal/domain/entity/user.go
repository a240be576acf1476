// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Tier represents the subscription plan attached to a profile.
type Tier string

const (
	// TierFreeTrial is the default plan assigned at sign-up.
	TierFreeTrial Tier = "free_trial"
	// TierBasic is the entry paid plan.
	TierBasic Tier = "basic"
	// TierPro is the full-featured paid plan.
	TierPro Tier = "pro"
)

// String returns the string representation of the Tier.
func (t Tier) String() string {
	return string(t)
}

// IsValid checks if the Tier is a valid value.
func (t Tier) IsValid() bool {
	switch t {
	case TierFreeTrial, TierBasic, TierPro:
		return true
	default:
		return false
	}
}

// User is the core identity in the system, representing one account.
type User struct {
	ID        uuid.UUID // The Global Unique Identifier (GUID) for the user.
	Email     string    // The user's primary contact email, used as the login identifier.
	Profile   *Profile  // The user's single authoritative profile. Exactly one per user.
	CreatedAt time.Time // Timestamp of when this user account was created.
	UpdatedAt time.Time // Timestamp of the last modification to this user's data.
}

// Profile is the single authoritative profile row for a user. The remote row
// is the source of truth at all times; updates are last-writer-wins.
type Profile struct {
	UserID        uuid.UUID   // Foreign key linking this profile to its User.
	AccountType   AccountType // Tenant kind: business or individual.
	Tier          Tier        // Subscription plan, free_trial at sign-up.
	FullName      string      // The user's display name.
	BusinessName  string      // Registered business name; empty for individual accounts.
	EmailVerified bool        // Whether the user confirmed their email address.
	UpdatedAt     time.Time   // Timestamp of the last modification to this profile.
}
