// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"bizhub/internal/domain/entity"
	domainerrors "bizhub/internal/domain/errors"
	"bizhub/internal/domain/repository"
	"bizhub/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// billingRepository implements the repository.BillingRepository interface.
type billingRepository struct {
	db *gorm.DB
}

// NewBillingRepository is the constructor for billingRepository.
func NewBillingRepository(db *gorm.DB) repository.BillingRepository {
	return &billingRepository{
		db: db,
	}
}

// FindCouponByCode retrieves a coupon by its 5-digit code.
func (repo *billingRepository) FindCouponByCode(ctx context.Context, code string) (*entity.Coupon, error) {
	var couponM model.CouponModel

	if err := repo.db.WithContext(ctx).
		Where("code = ?", code).
		First(&couponM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCouponNotFound
		}

		return nil, errors.Wrap(err, "failed to find coupon by code")
	}

	return toCouponDomain(&couponM), nil
}

// MarkCouponUsed stamps the coupon as consumed by the given user. The guard
// on is_used makes concurrent redemptions of the same code a conflict
// instead of a double spend.
func (repo *billingRepository) MarkCouponUsed(ctx context.Context, id, usedBy uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.CouponModel{}).
		Where("id = ? AND is_used = ? AND is_active = ?", id, false, true).
		Updates(map[string]interface{}{
			"is_used": true,
			"used_by": usedBy,
			"used_at": time.Now(),
		})

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to mark coupon used")
	}

	if result.RowsAffected == 0 {
		return repository.ErrCouponAlreadyUsed
	}

	return nil
}

// CreatePayment persists a new payment transaction.
func (repo *billingRepository) CreatePayment(ctx context.Context, payment *entity.PaymentTransaction) error {
	paymentM := fromPaymentDomain(payment)

	if err := repo.db.WithContext(ctx).Create(paymentM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required payment information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create payment")
	}

	// Update the entity with generated values
	payment.ID = paymentM.ID
	payment.CreatedAt = paymentM.CreatedAt
	payment.UpdatedAt = paymentM.UpdatedAt

	return nil
}

// FindPaymentByID retrieves a payment transaction by its unique ID.
func (repo *billingRepository) FindPaymentByID(ctx context.Context, id uuid.UUID) (*entity.PaymentTransaction, error) {
	var paymentM model.PaymentTransactionModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&paymentM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPaymentNotFound
		}

		return nil, errors.Wrap(err, "failed to find payment by ID")
	}

	return toPaymentDomain(&paymentM), nil
}

// ListPaymentsByUser retrieves payment transactions for a user, newest first.
func (repo *billingRepository) ListPaymentsByUser(ctx context.Context, userID uuid.UUID) ([]*entity.PaymentTransaction, error) {
	var paymentModels []*model.PaymentTransactionModel

	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&paymentModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list payments by user")
	}

	payments := make([]*entity.PaymentTransaction, 0, len(paymentModels))
	for _, paymentM := range paymentModels {
		payments = append(payments, toPaymentDomain(paymentM))
	}

	return payments, nil
}

// UpdatePaymentStatus moves a payment through its review states.
func (repo *billingRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status entity.PaymentStatus) error {
	result := repo.db.WithContext(ctx).
		Model(&model.PaymentTransactionModel{}).
		Where("id = ?", id).
		Update("status", string(status))

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update payment status")
	}

	if result.RowsAffected == 0 {
		return repository.ErrPaymentNotFound
	}

	return nil
}

// toCouponDomain converts a persistence model to a domain entity.
func toCouponDomain(data *model.CouponModel) *entity.Coupon {
	return &entity.Coupon{
		ID:        data.ID,
		Code:      data.Code,
		Tier:      entity.Tier(data.Tier),
		IsActive:  data.IsActive,
		IsUsed:    data.IsUsed,
		UsedBy:    data.UsedBy,
		UsedAt:    data.UsedAt,
		ExpiresAt: data.ExpiresAt,
		CreatedAt: data.CreatedAt,
	}
}

// toPaymentDomain converts a persistence model to a domain entity.
func toPaymentDomain(data *model.PaymentTransactionModel) *entity.PaymentTransaction {
	return &entity.PaymentTransaction{
		ID:          data.ID,
		UserID:      data.UserID,
		Tier:        entity.Tier(data.Tier),
		AmountCents: data.AmountCents,
		Method:      data.Method,
		CouponID:    data.CouponID,
		ProofPath:   data.ProofPath,
		Status:      entity.PaymentStatus(data.Status),
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

// fromPaymentDomain converts a domain entity to a persistence model.
func fromPaymentDomain(data *entity.PaymentTransaction) *model.PaymentTransactionModel {
	return &model.PaymentTransactionModel{
		ID:          data.ID,
		UserID:      data.UserID,
		Tier:        data.Tier.String(),
		AmountCents: data.AmountCents,
		Method:      data.Method,
		CouponID:    data.CouponID,
		ProofPath:   data.ProofPath,
		Status:      string(data.Status),
	}
}
