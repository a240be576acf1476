// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"bizhub/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrInvitationNotFound is returned when an invitation is not found.
var ErrInvitationNotFound = errors.New("invitation not found")

// InvitationRepository defines operations for invitation persistence.
type InvitationRepository interface {
	// Create persists a new invitation in pending status.
	Create(ctx context.Context, invitation *entity.Invitation) error

	// FindByID retrieves an invitation by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Invitation, error)

	// ListByBusiness retrieves all invitations sent for a business.
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]*entity.Invitation, error)

	// ListPendingByEmail retrieves pending invitations addressed to an email.
	ListPendingByEmail(ctx context.Context, email string) ([]*entity.Invitation, error)

	// UpdateStatus sets the stored status of an invitation.
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.InvitationStatus) error
}
