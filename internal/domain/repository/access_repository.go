// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"bizhub/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for access-grant persistence.
var (
	// ErrAccessNotFound is returned when no grant matches the lookup.
	ErrAccessNotFound = errors.New("access grant not found")
	// ErrDuplicateAccess is returned when a grant already exists for the pair.
	ErrDuplicateAccess = errors.New("access grant already exists")
)

// AccessRepository defines operations for business access grants.
type AccessRepository interface {
	// CreateGrant persists a new access grant.
	CreateGrant(ctx context.Context, grant *entity.BusinessAccess) error

	// FindGrant retrieves the grant a user holds for a business.
	FindGrant(ctx context.Context, businessID, userID uuid.UUID) (*entity.BusinessAccess, error)

	// ListByBusiness retrieves all grants for a business.
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]*entity.BusinessAccess, error)

	// ListByUser retrieves all grants held by a user.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.BusinessAccess, error)

	// DeleteGrant revokes a grant.
	DeleteGrant(ctx context.Context, id uuid.UUID) error
}
