// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"bizhub/internal/domain/entity"
	domainerrors "bizhub/internal/domain/errors"
	"bizhub/internal/domain/repository"
	"bizhub/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// accessRepository implements the repository.AccessRepository interface.
type accessRepository struct {
	db *gorm.DB
}

// NewAccessRepository is the constructor for accessRepository.
func NewAccessRepository(db *gorm.DB) repository.AccessRepository {
	return &accessRepository{
		db: db,
	}
}

// CreateGrant persists a new access grant.
func (repo *accessRepository) CreateGrant(ctx context.Context, grant *entity.BusinessAccess) error {
	grantM := fromAccessDomain(grant)

	if err := repo.db.WithContext(ctx).Create(grantM).Error; err != nil {
		// The unique index on (business_id, user_id) enforces one grant per pair.
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateAccess
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrBusinessNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create access grant")
	}

	// Update the entity with generated values
	grant.ID = grantM.ID
	grant.CreatedAt = grantM.CreatedAt

	return nil
}

// FindGrant retrieves the grant a user holds for a business.
func (repo *accessRepository) FindGrant(ctx context.Context, businessID, userID uuid.UUID) (*entity.BusinessAccess, error) {
	var grantM model.BusinessAccessModel

	if err := repo.db.WithContext(ctx).
		Where("business_id = ? AND user_id = ?", businessID, userID).
		First(&grantM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccessNotFound
		}

		return nil, errors.Wrap(err, "failed to find access grant")
	}

	return toAccessDomain(&grantM), nil
}

// ListByBusiness retrieves all grants for a business.
func (repo *accessRepository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]*entity.BusinessAccess, error) {
	var grantModels []*model.BusinessAccessModel

	if err := repo.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at ASC").
		Find(&grantModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list access grants by business")
	}

	return toAccessDomainSlice(grantModels), nil
}

// ListByUser retrieves all grants held by a user.
func (repo *accessRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.BusinessAccess, error) {
	var grantModels []*model.BusinessAccessModel

	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&grantModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list access grants by user")
	}

	return toAccessDomainSlice(grantModels), nil
}

// DeleteGrant revokes a grant.
func (repo *accessRepository) DeleteGrant(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.BusinessAccessModel{})

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete access grant")
	}

	if result.RowsAffected == 0 {
		return repository.ErrAccessNotFound
	}

	return nil
}

// toAccessDomain converts a persistence model to a domain entity.
func toAccessDomain(data *model.BusinessAccessModel) *entity.BusinessAccess {
	return &entity.BusinessAccess{
		ID:             data.ID,
		BusinessID:     data.BusinessID,
		UserID:         data.UserID,
		Role:           entity.AccessRole(data.Role),
		InvitationType: data.InvitationType,
		GrantedBy:      data.GrantedBy,
		CreatedAt:      data.CreatedAt,
	}
}

func toAccessDomainSlice(models []*model.BusinessAccessModel) []*entity.BusinessAccess {
	grants := make([]*entity.BusinessAccess, 0, len(models))
	for _, grantM := range models {
		grants = append(grants, toAccessDomain(grantM))
	}

	return grants
}

// fromAccessDomain converts a domain entity to a persistence model.
func fromAccessDomain(data *entity.BusinessAccess) *model.BusinessAccessModel {
	return &model.BusinessAccessModel{
		ID:             data.ID,
		BusinessID:     data.BusinessID,
		UserID:         data.UserID,
		Role:           data.Role.String(),
		InvitationType: data.InvitationType,
		GrantedBy:      data.GrantedBy,
	}
}
