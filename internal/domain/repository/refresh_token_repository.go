// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"bizhub/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrRefreshTokenNotFound is returned when a refresh token is not found or expired.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRepository defines operations for session persistence.
type RefreshTokenRepository interface {
	// Create persists a new refresh token (one active session).
	Create(ctx context.Context, token *entity.RefreshToken) error

	// FindByHash retrieves a non-expired refresh token by its SHA-256 hash.
	FindByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)

	// FindByUserID retrieves all non-expired refresh tokens for a user.
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error)

	// DeleteByHash removes one refresh token, signing that session out.
	DeleteByHash(ctx context.Context, tokenHash string) error

	// DeleteByID removes one refresh token scoped to its owner, for
	// revoking a session from the sessions listing.
	DeleteByID(ctx context.Context, userID, id uuid.UUID) error

	// DeleteByUserID removes every refresh token for a user.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error

	// DeleteExpired removes expired rows and reports how many were deleted.
	DeleteExpired(ctx context.Context) (int64, error)
}

// ErrVerificationNotFound is returned when an email verification token is unknown.
var ErrVerificationNotFound = errors.New("verification not found")

// VerificationRepository stores short-lived email verification and password
// reset tokens.
type VerificationRepository interface {
	// Create persists a new verification token.
	Create(ctx context.Context, verification *entity.EmailVerification) error

	// FindByHash retrieves a verification by token hash and purpose.
	FindByHash(ctx context.Context, tokenHash, purpose string) (*entity.EmailVerification, error)

	// MarkUsed stamps the verification as consumed.
	MarkUsed(ctx context.Context, id uuid.UUID) error
}
