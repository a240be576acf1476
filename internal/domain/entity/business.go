// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Business represents one tenant: a small business managed through the app.
// A user may own one business and hold access grants to several others.
type Business struct {
	ID        uuid.UUID // The Global Unique Identifier (GUID) for the business.
	OwnerID   uuid.UUID // The user who created and owns this business.
	Name      string    // The display name of the business.
	Currency  string    // ISO 4217 currency code used for sales and invoices.
	Address   string    // Optional street address shown on receipts.
	Phone     string    // Optional contact phone shown on receipts.
	CreatedAt time.Time // Timestamp of when this business was created.
	UpdatedAt time.Time // Timestamp of the last modification.
}
