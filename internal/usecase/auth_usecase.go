// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"bizhub/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// SignUpInput defines the data required to register a new account. For
// business accounts BusinessName is required and a business is created in the
// same transaction as the user.
type SignUpInput struct {
	Email        string             `json:"email" validate:"required,email"`
	Password     string             `json:"password" validate:"required"`
	FullName     string             `json:"full_name" validate:"required"`
	AccountType  entity.AccountType `json:"account_type" validate:"required,oneof=business individual"`
	BusinessName string             `json:"business_name" validate:"required_if=AccountType business"`
	Currency     string             `json:"currency"`
}

// SignInInput defines the data required to sign in. Scope is set by the
// entry point the request arrived through, not by the client payload.
type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Scope    entity.AccountScope
}

// SignOutInput carries the refresh token of the session to end.
type SignOutInput struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenInput carries the refresh token to rotate.
type RefreshTokenInput struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UpdateProfileInput defines the data to change on the profile. Nil fields
// are left untouched. The stored row is authoritative; the write is
// last-writer-wins.
type UpdateProfileInput struct {
	FullName     *string `json:"full_name,omitempty"`
	BusinessName *string `json:"business_name,omitempty"`
}

// ChangePasswordInput defines the data required to change a password while
// signed in.
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// ResetPasswordInput completes a password reset started by email.
type ResetPasswordInput struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// --- Output DTOs ---

// AuthOutput returns the generated tokens after sign-up or sign-in.
type AuthOutput struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *entity.User `json:"user"`
}

// SessionInfo describes one active session for the sessions listing.
type SessionInfo struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt string    `json:"created_at"`
	ExpiresAt string    `json:"expires_at"`
}

// AuthUsecase defines the interface for authentication business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	// SignUp registers a new account. User, profile, credential and, for
	// business accounts, the business row are created in one transaction.
	SignUp(ctx context.Context, input *SignUpInput) (*AuthOutput, error)

	// SignIn authenticates a credential. The scope of the entry point must
	// allow the profile's account type; a mismatch fails without issuing
	// tokens and revokes nothing.
	SignIn(ctx context.Context, input *SignInInput) (*AuthOutput, error)

	// SignOut revokes the session synchronously: when it returns, the
	// refresh token row is gone and caches have been cleared.
	SignOut(ctx context.Context, input *SignOutInput) error

	// RefreshToken rotates the token pair. A refresh for the unchanged
	// subject does not clear caches.
	RefreshToken(ctx context.Context, input *RefreshTokenInput) (*AuthOutput, error)

	// GetProfile retrieves the user with profile, served through the
	// SESSION cache tier.
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error)

	// UpdateProfile applies a partial profile update and invalidates the
	// profile cache.
	UpdateProfile(ctx context.Context, userID uuid.UUID, input *UpdateProfileInput) (*entity.User, error)

	// ChangePassword verifies the current password before storing a new hash.
	ChangePassword(ctx context.Context, userID uuid.UUID, input *ChangePasswordInput) error

	// RequestEmailVerification issues a verification token for the user's
	// email address and returns the raw token for delivery.
	RequestEmailVerification(ctx context.Context, userID uuid.UUID) (string, error)

	// VerifyEmail consumes a verification token and marks the profile verified.
	VerifyEmail(ctx context.Context, token string) error

	// RequestPasswordReset issues a reset token when the email is known. The
	// result is identical for unknown emails so the endpoint cannot be used
	// to probe accounts.
	RequestPasswordReset(ctx context.Context, email string) (string, error)

	// ResetPassword consumes a reset token, stores the new hash and revokes
	// every session.
	ResetPassword(ctx context.Context, input *ResetPasswordInput) error

	// ListSessions reports the user's active sessions.
	ListSessions(ctx context.Context, userID uuid.UUID) ([]*SessionInfo, error)

	// RevokeSession ends one of the user's sessions by its listed ID.
	RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error
}
