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

// invitationRepository implements the repository.InvitationRepository interface.
type invitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository is the constructor for invitationRepository.
func NewInvitationRepository(db *gorm.DB) repository.InvitationRepository {
	return &invitationRepository{
		db: db,
	}
}

// Create persists a new invitation in pending status.
func (repo *invitationRepository) Create(ctx context.Context, invitation *entity.Invitation) error {
	invitationM := fromInvitationDomain(invitation)

	if err := repo.db.WithContext(ctx).Create(invitationM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrBusinessNotFound
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required invitation information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create invitation")
	}

	// Update the entity with generated values
	invitation.ID = invitationM.ID
	invitation.CreatedAt = invitationM.CreatedAt
	invitation.UpdatedAt = invitationM.UpdatedAt

	return nil
}

// FindByID retrieves an invitation by its unique ID.
func (repo *invitationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Invitation, error) {
	var invitationM model.InvitationModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&invitationM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrInvitationNotFound
		}

		return nil, errors.Wrap(err, "failed to find invitation by ID")
	}

	return toInvitationDomain(&invitationM), nil
}

// ListByBusiness retrieves all invitations sent for a business.
func (repo *invitationRepository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]*entity.Invitation, error) {
	var invitationModels []*model.InvitationModel

	if err := repo.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		Find(&invitationModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list invitations by business")
	}

	return toInvitationDomainSlice(invitationModels), nil
}

// ListPendingByEmail retrieves pending invitations addressed to an email.
// Expiry is not filtered here; callers derive it per row so display and
// authorization use the same wall clock.
func (repo *invitationRepository) ListPendingByEmail(ctx context.Context, email string) ([]*entity.Invitation, error) {
	var invitationModels []*model.InvitationModel

	if err := repo.db.WithContext(ctx).
		Where("invitee_email = ? AND status = ?", email, string(entity.InvitationPending)).
		Order("created_at DESC").
		Find(&invitationModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list pending invitations by email")
	}

	return toInvitationDomainSlice(invitationModels), nil
}

// UpdateStatus sets the stored status of an invitation.
func (repo *invitationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.InvitationStatus) error {
	result := repo.db.WithContext(ctx).
		Model(&model.InvitationModel{}).
		Where("id = ?", id).
		Update("status", string(status))

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update invitation status")
	}

	if result.RowsAffected == 0 {
		return repository.ErrInvitationNotFound
	}

	return nil
}

// toInvitationDomain converts a persistence model to a domain entity.
func toInvitationDomain(data *model.InvitationModel) *entity.Invitation {
	return &entity.Invitation{
		ID:           data.ID,
		BusinessID:   data.BusinessID,
		InviterID:    data.InviterID,
		InviteeEmail: data.InviteeEmail,
		Role:         entity.AccessRole(data.Role),
		Status:       entity.InvitationStatus(data.Status),
		ExpiresAt:    data.ExpiresAt,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

func toInvitationDomainSlice(models []*model.InvitationModel) []*entity.Invitation {
	invitations := make([]*entity.Invitation, 0, len(models))
	for _, invitationM := range models {
		invitations = append(invitations, toInvitationDomain(invitationM))
	}

	return invitations
}

// fromInvitationDomain converts a domain entity to a persistence model.
func fromInvitationDomain(data *entity.Invitation) *model.InvitationModel {
	return &model.InvitationModel{
		ID:           data.ID,
		BusinessID:   data.BusinessID,
		InviterID:    data.InviterID,
		InviteeEmail: data.InviteeEmail,
		Role:         data.Role.String(),
		Status:       string(data.Status),
		ExpiresAt:    data.ExpiresAt,
	}
}
