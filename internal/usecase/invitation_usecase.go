// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"bizhub/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// SendInvitationInput defines the data required to invite a user into a
// business.
type SendInvitationInput struct {
	InviteeEmail string            `json:"invitee_email" validate:"required,email"`
	Role         entity.AccessRole `json:"role" validate:"required,oneof=manager staff"`
}

// --- Output DTOs ---

// InvitationView is an invitation with its display status derived at read
// time: a pending invitation past its expiry reads as expired without any
// background job.
type InvitationView struct {
	Invitation      *entity.Invitation      `json:"invitation"`
	EffectiveStatus entity.InvitationStatus `json:"effective_status"`
}

// InvitationUsecase defines the interface for the invitation lifecycle.
type InvitationUsecase interface {
	// SendInvitation creates a pending invitation and notifies the invitee.
	// Owner or manager only; the offered role cannot be owner.
	SendInvitation(ctx context.Context, inviterID, businessID uuid.UUID, input *SendInvitationInput) (*entity.Invitation, error)

	// ListBusinessInvitations retrieves invitations a business has sent.
	ListBusinessInvitations(ctx context.Context, userID, businessID uuid.UUID) ([]*InvitationView, error)

	// ListMyInvitations retrieves pending invitations addressed to the
	// user's email.
	ListMyInvitations(ctx context.Context, userID uuid.UUID) ([]*InvitationView, error)

	// AcceptInvitation grants access and marks the invitation accepted in
	// one transaction. Expiry is re-checked at accept time regardless of
	// what the invitee's screen showed.
	AcceptInvitation(ctx context.Context, userID, invitationID uuid.UUID) (*entity.BusinessAccess, error)

	// DeclineInvitation marks a pending invitation declined.
	DeclineInvitation(ctx context.Context, userID, invitationID uuid.UUID) error

	// InvitationQR renders the PNG QR code for sharing an invitation.
	InvitationQR(ctx context.Context, userID, invitationID uuid.UUID) ([]byte, error)
}
