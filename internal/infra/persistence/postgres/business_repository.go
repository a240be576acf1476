// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"bizhub/internal/domain/constants"
	"bizhub/internal/domain/entity"
	domainerrors "bizhub/internal/domain/errors"
	"bizhub/internal/domain/repository"
	"bizhub/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// businessRepository implements the repository.BusinessRepository interface.
type businessRepository struct {
	db *gorm.DB
}

// NewBusinessRepository is the constructor for businessRepository.
func NewBusinessRepository(db *gorm.DB) repository.BusinessRepository {
	return &businessRepository{
		db: db,
	}
}

// Create persists a new business.
func (repo *businessRepository) Create(ctx context.Context, business *entity.Business) error {
	businessM := fromBusinessDomain(business)

	if err := repo.db.WithContext(ctx).Create(businessM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required business information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create business")
	}

	// Update the entity with generated values
	business.ID = businessM.ID
	business.CreatedAt = businessM.CreatedAt
	business.UpdatedAt = businessM.UpdatedAt

	return nil
}

// FindByID retrieves a business by its unique ID.
func (repo *businessRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Business, error) {
	var businessM model.BusinessModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&businessM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrBusinessNotFound
		}

		return nil, errors.Wrap(err, "failed to find business by ID")
	}

	return toBusinessDomain(&businessM), nil
}

// FindByOwner retrieves every business owned by a user.
func (repo *businessRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Business, error) {
	var businessModels []*model.BusinessModel

	if err := repo.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&businessModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find businesses by owner")
	}

	return toBusinessDomainSlice(businessModels), nil
}

// ListForUser retrieves every business a user can access, owned or granted.
func (repo *businessRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*entity.Business, error) {
	var businessModels []*model.BusinessModel

	// Owned businesses plus businesses reachable through an access grant.
	if err := repo.db.WithContext(ctx).
		Distinct("businesses.*").
		Joins("LEFT JOIN "+constants.TableBusinessAccess+" ba ON ba.business_id = businesses.id").
		Where("businesses.owner_id = ? OR ba.user_id = ?", userID, userID).
		Order("businesses.created_at ASC").
		Find(&businessModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list businesses for user")
	}

	return toBusinessDomainSlice(businessModels), nil
}

// Update modifies an existing business. Last writer wins.
func (repo *businessRepository) Update(ctx context.Context, business *entity.Business) error {
	result := repo.db.WithContext(ctx).
		Model(&model.BusinessModel{}).
		Where("id = ?", business.ID).
		Updates(map[string]interface{}{
			"name":     business.Name,
			"currency": business.Currency,
			"address":  business.Address,
			"phone":    business.Phone,
		})

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update business")
	}

	if result.RowsAffected == 0 {
		return repository.ErrBusinessNotFound
	}

	return nil
}

// toBusinessDomain converts a persistence model to a domain entity.
func toBusinessDomain(data *model.BusinessModel) *entity.Business {
	return &entity.Business{
		ID:        data.ID,
		OwnerID:   data.OwnerID,
		Name:      data.Name,
		Currency:  data.Currency,
		Address:   data.Address,
		Phone:     data.Phone,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

func toBusinessDomainSlice(models []*model.BusinessModel) []*entity.Business {
	businesses := make([]*entity.Business, 0, len(models))
	for _, businessM := range models {
		businesses = append(businesses, toBusinessDomain(businessM))
	}

	return businesses
}

// fromBusinessDomain converts a domain entity to a persistence model.
func fromBusinessDomain(data *entity.Business) *model.BusinessModel {
	return &model.BusinessModel{
		ID:       data.ID,
		OwnerID:  data.OwnerID,
		Name:     data.Name,
		Currency: data.Currency,
		Address:  data.Address,
		Phone:    data.Phone,
	}
}
