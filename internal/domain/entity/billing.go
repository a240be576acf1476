// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Coupon is a single-use 5-digit upgrade code sold out of band. Redeeming it
// moves the profile to the coupon's tier.
type Coupon struct {
	ID        uuid.UUID  `json:"id"`
	Code      string     `json:"code"` // Exactly five digits.
	Tier      Tier       `json:"tier"` // The plan granted on redemption.
	IsActive  bool       `json:"is_active"`
	IsUsed    bool       `json:"is_used"`
	UsedBy    *uuid.UUID `json:"used_by"`
	UsedAt    *time.Time `json:"used_at"`
	ExpiresAt *time.Time `json:"expires_at"` // Optional expiry; nil means no expiry.
	CreatedAt time.Time  `json:"created_at"`
}

// Redeemable reports whether the coupon can still be redeemed at the given
// time. Verification must pass before any mutation happens.
func (c *Coupon) Redeemable(now time.Time) bool {
	if !c.IsActive || c.IsUsed {
		return false
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return false
	}

	return true
}

// PaymentStatus is the review state of a manual payment.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
	PaymentRejected PaymentStatus = "rejected"
)

// PaymentTransaction records a tier purchase, either by coupon or by a manual
// transfer reviewed against an uploaded proof.
type PaymentTransaction struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"user_id"`
	Tier        Tier          `json:"tier"`
	AmountCents int64         `json:"amount_cents"`
	Method      string        `json:"method"`     // "coupon" or "transfer".
	CouponID    *uuid.UUID    `json:"coupon_id"`  // Set when Method is "coupon".
	ProofPath   string        `json:"proof_path"` // Blob-storage key of the payment proof.
	Status      PaymentStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
