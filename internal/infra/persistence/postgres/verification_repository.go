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

// verificationRepository implements the repository.VerificationRepository interface.
type verificationRepository struct {
	db *gorm.DB
}

// NewVerificationRepository is the constructor for verificationRepository.
func NewVerificationRepository(db *gorm.DB) repository.VerificationRepository {
	return &verificationRepository{
		db: db,
	}
}

// Create persists a new verification token.
func (repo *verificationRepository) Create(ctx context.Context, verification *entity.EmailVerification) error {
	verificationM := &model.EmailVerificationModel{
		ID:        verification.ID,
		UserID:    verification.UserID,
		TokenHash: verification.TokenHash,
		Purpose:   verification.Purpose,
		ExpiresAt: verification.ExpiresAt,
	}

	if err := repo.db.WithContext(ctx).Create(verificationM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create verification")
	}

	verification.ID = verificationM.ID
	verification.CreatedAt = verificationM.CreatedAt

	return nil
}

// FindByHash retrieves an unconsumed, unexpired verification by token hash and purpose.
func (repo *verificationRepository) FindByHash(ctx context.Context, tokenHash, purpose string) (*entity.EmailVerification, error) {
	var verificationM model.EmailVerificationModel

	if err := repo.db.WithContext(ctx).
		Where("token_hash = ? AND purpose = ? AND used_at IS NULL AND expires_at > ?", tokenHash, purpose, time.Now()).
		First(&verificationM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrVerificationNotFound
		}

		return nil, errors.Wrap(err, "failed to find verification by hash")
	}

	return &entity.EmailVerification{
		ID:        verificationM.ID,
		UserID:    verificationM.UserID,
		TokenHash: verificationM.TokenHash,
		Purpose:   verificationM.Purpose,
		ExpiresAt: verificationM.ExpiresAt,
		UsedAt:    verificationM.UsedAt,
		CreatedAt: verificationM.CreatedAt,
	}, nil
}

// MarkUsed stamps the verification as consumed.
func (repo *verificationRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.EmailVerificationModel{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", time.Now())

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to mark verification used")
	}

	if result.RowsAffected == 0 {
		return repository.ErrVerificationNotFound
	}

	return nil
}
