// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Credential represents a single method of logging in. Email/password is the
// only provider today, but the shape leaves room for linked OAuth identities.
type Credential struct {
	ID           uuid.UUID // The unique ID for this specific credential record.
	UserID       uuid.UUID // Links this credential to the User it belongs to.
	Provider     string    // The authentication provider, e.g., "email".
	Identifier   string    // The login identifier scoped to the provider (email address).
	PasswordHash string    // Stores the bcrypt-hashed password when Provider is "email".
	CreatedAt    time.Time // Timestamp of when this credential was created.
}

// ProviderTypeEmail is the email/password credential provider.
const ProviderTypeEmail = "email"

// RefreshToken represents a long-lived, authorized user session.
// It is used to obtain a new access token after the old one expires.
type RefreshToken struct {
	ID        uuid.UUID // The unique ID for this specific refresh token record.
	UserID    uuid.UUID // Links this session to the User it belongs to.
	TokenHash string    // SHA-256 hash of the raw refresh token for secure comparison.
	ExpiresAt time.Time // The exact time when this refresh token becomes invalid.
	CreatedAt time.Time // Timestamp of when this session was created.
}

// Expired reports whether the refresh token is past its expiry.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// EmailVerification is a short-lived token mailed to the user to confirm an
// email address or reset a password.
type EmailVerification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string    // SHA-256 hash of the raw token.
	Purpose   string    // "verify_email" or "reset_password".
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Verification purposes.
const (
	VerificationPurposeEmail         = "verify_email"
	VerificationPurposeResetPassword = "reset_password"
)
