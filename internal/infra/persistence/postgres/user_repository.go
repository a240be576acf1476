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

// userRepository implements the repository.UserRepository interface.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{
		db: db,
	}
}

// FindByID retrieves a single user, with profile, by their unique ID.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel

	if err := repo.db.WithContext(ctx).
		Preload("Profile").
		Where("id = ?", id).
		First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by ID")
	}

	return toUserDomain(&userM), nil
}

// FindByEmail retrieves a single user, with profile, by email address.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userM model.UserModel

	if err := repo.db.WithContext(ctx).
		Preload("Profile").
		Where("email = ?", email).
		First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	return toUserDomain(&userM), nil
}

// Create persists a new user entity, including its profile.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		// Convert PostgreSQL errors to domain errors
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrUserAlreadyExists
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("missing required user information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	// Update the entity with generated values
	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt
	if user.Profile != nil {
		user.Profile.UserID = userM.ID
	}

	return nil
}

// UpdateProfile overwrites the user's profile row. Last writer wins.
func (repo *userRepository) UpdateProfile(ctx context.Context, profile *entity.Profile) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ProfileModel{}).
		Where("user_id = ?", profile.UserID).
		Updates(map[string]interface{}{
			"account_type":   profile.AccountType.String(),
			"tier":           profile.Tier.String(),
			"full_name":      profile.FullName,
			"business_name":  profile.BusinessName,
			"email_verified": profile.EmailVerified,
		})

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update profile")
	}

	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// toUserDomain converts a persistence model to a domain entity.
func toUserDomain(data *model.UserModel) *entity.User {
	user := &entity.User{
		ID:        data.ID,
		Email:     data.Email,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}

	if data.Profile != nil {
		user.Profile = &entity.Profile{
			UserID:        data.Profile.UserID,
			AccountType:   entity.AccountType(data.Profile.AccountType),
			Tier:          entity.Tier(data.Profile.Tier),
			FullName:      data.Profile.FullName,
			BusinessName:  data.Profile.BusinessName,
			EmailVerified: data.Profile.EmailVerified,
			UpdatedAt:     data.Profile.UpdatedAt,
		}
	}

	return user
}

// fromUserDomain converts a domain entity to a persistence model.
func fromUserDomain(data *entity.User) *model.UserModel {
	userM := &model.UserModel{
		ID:    data.ID,
		Email: data.Email,
	}

	if data.Profile != nil {
		userM.Profile = &model.ProfileModel{
			UserID:        data.Profile.UserID,
			AccountType:   data.Profile.AccountType.String(),
			Tier:          data.Profile.Tier.String(),
			FullName:      data.Profile.FullName,
			BusinessName:  data.Profile.BusinessName,
			EmailVerified: data.Profile.EmailVerified,
		}
	}

	return userM
}
