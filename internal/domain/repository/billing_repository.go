// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"bizhub/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for billing persistence.
var (
	// ErrCouponNotFound is returned when no coupon matches the code.
	ErrCouponNotFound = errors.New("coupon not found")
	// ErrCouponAlreadyUsed is returned when the guarded update finds the
	// coupon consumed by a concurrent redemption.
	ErrCouponAlreadyUsed = errors.New("coupon already used")
	// ErrPaymentNotFound is returned when a payment transaction is not found.
	ErrPaymentNotFound = errors.New("payment transaction not found")
)

// BillingRepository defines operations for coupon and payment persistence.
type BillingRepository interface {
	// FindCouponByCode retrieves a coupon by its 5-digit code.
	FindCouponByCode(ctx context.Context, code string) (*entity.Coupon, error)

	// MarkCouponUsed stamps the coupon as consumed by the given user.
	MarkCouponUsed(ctx context.Context, id, usedBy uuid.UUID) error

	// CreatePayment persists a new payment transaction.
	CreatePayment(ctx context.Context, payment *entity.PaymentTransaction) error

	// FindPaymentByID retrieves a payment transaction by its unique ID.
	FindPaymentByID(ctx context.Context, id uuid.UUID) (*entity.PaymentTransaction, error)

	// ListPaymentsByUser retrieves payment transactions for a user, newest first.
	ListPaymentsByUser(ctx context.Context, userID uuid.UUID) ([]*entity.PaymentTransaction, error)

	// UpdatePaymentStatus moves a payment through its review states.
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status entity.PaymentStatus) error
}
