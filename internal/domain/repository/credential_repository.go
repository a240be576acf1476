// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"bizhub/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrCredentialNotFound is returned when no credential matches the lookup.
var ErrCredentialNotFound = errors.New("credential not found")

// CredentialRepository defines operations for login credential persistence.
type CredentialRepository interface {
	// Find retrieves a credential by provider and identifier (email address
	// for the email provider).
	Find(ctx context.Context, provider, identifier string) (*entity.Credential, error)

	// Create persists a new credential.
	Create(ctx context.Context, credential *entity.Credential) error

	// UpdatePasswordHash replaces the stored hash for a user's email credential.
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, passwordHash string) error
}
