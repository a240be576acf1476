// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"
	"io"

	"bizhub/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RedeemCouponInput carries the 5-digit upgrade code.
type RedeemCouponInput struct {
	Code string `json:"code" validate:"required,len=5,numeric"`
}

// SubmitTransferInput records a manual bank transfer with its uploaded proof.
type SubmitTransferInput struct {
	Tier        entity.Tier `json:"tier" validate:"required,oneof=basic pro"`
	AmountCents int64       `json:"amount_cents" validate:"required,gt=0"`
	ProofName   string      `json:"-"`
	Proof       io.Reader   `json:"-"`
	ProofType   string      `json:"-"`
}

// ReviewPaymentInput approves or rejects a pending transfer.
type ReviewPaymentInput struct {
	Approve bool `json:"approve"`
}

// BillingUsecase defines the interface for tier purchases.
type BillingUsecase interface {
	// RedeemCoupon verifies the coupon is active, unused and unexpired
	// before any mutation, then consumes it and upgrades the profile tier in
	// one transaction.
	RedeemCoupon(ctx context.Context, userID uuid.UUID, input *RedeemCouponInput) (*entity.PaymentTransaction, error)

	// SubmitTransfer stores the payment proof blob and creates a pending
	// payment for manual review.
	SubmitTransfer(ctx context.Context, userID uuid.UUID, input *SubmitTransferInput) (*entity.PaymentTransaction, error)

	// ListMyPayments retrieves the user's payment history, newest first.
	ListMyPayments(ctx context.Context, userID uuid.UUID) ([]*entity.PaymentTransaction, error)

	// ReviewPayment resolves a pending transfer. Approval upgrades the
	// payer's tier in the same transaction as the status change.
	ReviewPayment(ctx context.Context, reviewerID, paymentID uuid.UUID, input *ReviewPaymentInput) error

	// PaymentProofURL returns a time-limited download URL for the proof.
	PaymentProofURL(ctx context.Context, userID, paymentID uuid.UUID) (string, error)
}
