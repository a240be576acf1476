// Package entity contains the core business objects of the project.
package entity

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// AccessRole is the role a user holds inside a business they were granted
// access to.
type AccessRole string

const (
	// AccessRoleOwner is the business creator with unrestricted access.
	AccessRoleOwner AccessRole = "owner"
	// AccessRoleManager may manage inventory, sales and staff pages.
	AccessRoleManager AccessRole = "manager"
	// AccessRoleStaff may operate the register and view inventory.
	AccessRoleStaff AccessRole = "staff"
)

// String returns the string representation of the AccessRole.
func (r AccessRole) String() string {
	return string(r)
}

// IsValid checks if the AccessRole is a valid value.
func (r AccessRole) IsValid() bool {
	switch r {
	case AccessRoleOwner, AccessRoleManager, AccessRoleStaff:
		return true
	default:
		return false
	}
}

// pagesByRole maps each role to the page keys it may open. Permission checks
// in the SPA are per page, so the backend mirrors that granularity.
var pagesByRole = map[AccessRole][]string{
	AccessRoleOwner:   {"dashboard", "pos", "inventory", "invoices", "accounting", "staff", "settings"},
	AccessRoleManager: {"dashboard", "pos", "inventory", "invoices", "staff"},
	AccessRoleStaff:   {"dashboard", "pos", "inventory"},
}

// CanAccessPage reports whether the role may open the given page.
func (r AccessRole) CanAccessPage(page string) bool {
	return slices.Contains(pagesByRole[r], page)
}

// BusinessAccess is a grant giving a user a role inside a business.
type BusinessAccess struct {
	ID             uuid.UUID  // The Global Unique Identifier (GUID) for this grant.
	BusinessID     uuid.UUID  // The business this grant applies to.
	UserID         uuid.UUID  // The user this grant belongs to.
	Role           AccessRole // The role the user holds inside the business.
	InvitationType string     // How the grant was created, e.g. "email_invite" or "owner".
	GrantedBy      uuid.UUID  // The user who issued the grant.
	CreatedAt      time.Time  // Timestamp of when this grant was created.
}

// InvitationStatus is the lifecycle state of a business invitation.
type InvitationStatus string

const (
	// InvitationPending means the invitation awaits a response.
	InvitationPending InvitationStatus = "pending"
	// InvitationAccepted means the invitee accepted and a grant exists.
	InvitationAccepted InvitationStatus = "accepted"
	// InvitationDeclined means the invitee declined.
	InvitationDeclined InvitationStatus = "declined"
	// InvitationExpired is derived from ExpiresAt at read time; no job
	// transitions invitations proactively.
	InvitationExpired InvitationStatus = "expired"
)

// Invitation asks a user to join a business with a given role.
type Invitation struct {
	ID           uuid.UUID        // The Global Unique Identifier (GUID) for the invitation.
	BusinessID   uuid.UUID        // The business the invitee would join.
	InviterID    uuid.UUID        // The user who sent the invitation.
	InviteeEmail string           // The email address the invitation was sent to.
	Role         AccessRole       // The role offered to the invitee.
	Status       InvitationStatus // Stored status; see EffectiveStatus.
	ExpiresAt    time.Time        // Wall-clock expiry of the invitation.
	CreatedAt    time.Time        // Timestamp of when this invitation was created.
	UpdatedAt    time.Time        // Timestamp of the last status change.
}

// Expired reports whether the invitation is past its expiry, regardless of
// the stored status.
func (i *Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// EffectiveStatus recomputes the display status at read time: a stored
// "pending" past its expiry reads as "expired". Accept and decline must call
// Expired themselves before acting; display lag never authorizes a
// transition.
func (i *Invitation) EffectiveStatus(now time.Time) InvitationStatus {
	if i.Status == InvitationPending && i.Expired(now) {
		return InvitationExpired
	}

	return i.Status
}
