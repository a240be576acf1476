// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"bizhub/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// CreateBusinessInput defines the data required to create a business.
type CreateBusinessInput struct {
	Name     string `json:"name" validate:"required"`
	Currency string `json:"currency" validate:"required,len=3"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

// UpdateBusinessInput defines the data to change on a business. Nil fields
// are left untouched.
type UpdateBusinessInput struct {
	Name     *string `json:"name,omitempty"`
	Currency *string `json:"currency,omitempty"`
	Address  *string `json:"address,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// --- Output DTOs ---

// MemberInfo describes one user with access to a business.
type MemberInfo struct {
	Grant *entity.BusinessAccess `json:"grant"`
	User  *entity.User           `json:"user"`
}

// BusinessUsecase defines the interface for business management operations.
type BusinessUsecase interface {
	// CreateBusiness creates a business and the owner's access grant in one
	// transaction.
	CreateBusiness(ctx context.Context, ownerID uuid.UUID, input *CreateBusinessInput) (*entity.Business, error)

	// GetBusiness retrieves a business the user has access to.
	GetBusiness(ctx context.Context, userID, businessID uuid.UUID) (*entity.Business, error)

	// ListMyBusinesses retrieves every business the user owns or was granted
	// access to, served through the MEDIUM cache tier.
	ListMyBusinesses(ctx context.Context, userID uuid.UUID) ([]*entity.Business, error)

	// UpdateBusiness applies a partial update. Owner or manager only.
	UpdateBusiness(ctx context.Context, userID, businessID uuid.UUID, input *UpdateBusinessInput) (*entity.Business, error)

	// ListMembers retrieves the access grants of a business with the granted
	// users.
	ListMembers(ctx context.Context, userID, businessID uuid.UUID) ([]*MemberInfo, error)

	// RevokeAccess removes a member's grant. Owner only; the owner's own
	// grant cannot be revoked.
	RevokeAccess(ctx context.Context, userID, businessID, memberID uuid.UUID) error

	// CanAccessPage reports whether the user's role in the business allows
	// the page.
	CanAccessPage(ctx context.Context, userID, businessID uuid.UUID, page string) (bool, error)
}
