// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"bizhub/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for business persistence.
var (
	// ErrBusinessNotFound is returned when a business is not found.
	ErrBusinessNotFound = errors.New("business not found")
)

// BusinessRepository defines operations for business (tenant) persistence.
type BusinessRepository interface {
	// Create persists a new business.
	Create(ctx context.Context, business *entity.Business) error

	// FindByID retrieves a business by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Business, error)

	// FindByOwner retrieves every business owned by a user.
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Business, error)

	// ListForUser retrieves every business a user can access, owned or granted.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*entity.Business, error)

	// Update modifies an existing business. Last writer wins.
	Update(ctx context.Context, business *entity.Business) error
}
