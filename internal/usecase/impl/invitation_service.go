package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	deliverycontext "bizhub/internal/delivery/context"
	"bizhub/internal/domain/constants"
	"bizhub/internal/domain/entity"
	domainerrors "bizhub/internal/domain/errors"
	"bizhub/internal/domain/repository"
	"bizhub/internal/domain/service"
	"bizhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// invitationTTL is the wall-clock lifetime of a pending invitation.
const invitationTTL = 7 * 24 * time.Hour

// invitationService implements the InvitationUsecase interface.
type invitationService struct {
	txManager  repository.TransactionManager
	cache      service.QueryCache
	changeFeed service.ChangeFeedPublisher
	qrService  service.QRCodeService
	notifier   usecase.NotificationUsecase
	logger     *slog.Logger
}

// NewInvitationService is the constructor for invitationService.
func NewInvitationService(
	txManager repository.TransactionManager,
	cache service.QueryCache,
	changeFeed service.ChangeFeedPublisher,
	qrService service.QRCodeService,
	notifier usecase.NotificationUsecase,
	logger *slog.Logger,
) usecase.InvitationUsecase {
	return &invitationService{
		txManager:  txManager,
		cache:      cache,
		changeFeed: changeFeed,
		qrService:  qrService,
		notifier:   notifier,
		logger:     logger,
	}
}

// log returns the request-scoped logger when the delivery layer put one on
// the context, falling back to the service's own.
func (srv *invitationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// SendInvitation creates a pending invitation. The inviter must hold an
// owner or manager grant, and the offered role can never be owner.
func (srv *invitationService) SendInvitation(ctx context.Context, inviterID, businessID uuid.UUID, input *usecase.SendInvitationInput) (*entity.Invitation, error) {
	srv.log(ctx).Info("Sending invitation", slog.Any("businessID", businessID), slog.String("invitee", input.InviteeEmail))

	if input.Role == entity.AccessRoleOwner || !input.Role.IsValid() {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "invalid invitation role")
	}

	var invitation *entity.Invitation
	var invitee *entity.User
	var businessName string

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		grant, err := repoFactory.AccessRepo().FindGrant(ctx, businessID, inviterID)
		if err != nil {
			if errors.Is(err, repository.ErrAccessNotFound) {
				return errors.Wrap(domainerrors.ErrAccessDenied, "no access to business")
			}

			return errors.Wrap(err, "failed to find grant")
		}
		if grant.Role != entity.AccessRoleOwner && grant.Role != entity.AccessRoleManager {
			return errors.Wrap(domainerrors.ErrAccessDenied, "role may not invite members")
		}

		business, err := repoFactory.BusinessRepo().FindByID(ctx, businessID)
		if err != nil {
			return errors.Wrap(err, "failed to find business")
		}
		businessName = business.Name

		// An invitee who already holds a grant needs no invitation.
		if existing, err := repoFactory.UserRepo().FindByEmail(ctx, input.InviteeEmail); err == nil {
			if _, err := repoFactory.AccessRepo().FindGrant(ctx, businessID, existing.ID); err == nil {
				return errors.Wrap(domainerrors.ErrAccessAlreadyGranted, "invitee already has access")
			}
			invitee = existing
		}

		newInvitation := &entity.Invitation{
			BusinessID:   businessID,
			InviterID:    inviterID,
			InviteeEmail: input.InviteeEmail,
			Role:         input.Role,
			Status:       entity.InvitationPending,
			ExpiresAt:    time.Now().Add(invitationTTL),
		}
		if err := repoFactory.InvitationRepo().Create(ctx, newInvitation); err != nil {
			return errors.Wrap(err, "failed to create invitation")
		}
		invitation = newInvitation

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute send invitation transaction")
	}

	srv.cache.ClearByPattern(cacheKeyInvitations)
	srv.publishChange(ctx, constants.TableInvitations, service.ChangeInsert, invitation.ID.String(), businessID.String(), inviterID.String())

	// Notify an existing invitee in-app. The invitation stands regardless.
	if invitee != nil {
		_, err := srv.notifier.Notify(ctx, &usecase.NotifyInput{
			UserID:     invitee.ID,
			BusinessID: &businessID,
			Type:       entity.NotificationTypeInvitation,
			Priority:   entity.NotificationPriorityHigh,
			Title:      "You have been invited",
			Body:       fmt.Sprintf("%s invited you to join as %s", businessName, invitation.Role),
		})
		if err != nil {
			srv.log(ctx).Warn("Failed to notify invitee", slog.Any("invitationID", invitation.ID), slog.Any("error", err))
		}
	}

	return invitation, nil
}

// ListBusinessInvitations retrieves invitations a business has sent, with
// their display status derived at read time.
func (srv *invitationService) ListBusinessInvitations(ctx context.Context, userID, businessID uuid.UUID) ([]*usecase.InvitationView, error) {
	var views []*usecase.InvitationView

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if _, err := repoFactory.AccessRepo().FindGrant(ctx, businessID, userID); err != nil {
			if errors.Is(err, repository.ErrAccessNotFound) {
				return errors.Wrap(domainerrors.ErrAccessDenied, "no access to business")
			}

			return errors.Wrap(err, "failed to find grant")
		}

		invitations, err := repoFactory.InvitationRepo().ListByBusiness(ctx, businessID)
		if err != nil {
			return errors.Wrap(err, "failed to list invitations")
		}
		views = toInvitationViews(invitations)

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute list invitations transaction")
	}

	return views, nil
}

// ListMyInvitations retrieves pending invitations addressed to the user's
// email. Entries past their expiry read as expired but are still listed.
func (srv *invitationService) ListMyInvitations(ctx context.Context, userID uuid.UUID) ([]*usecase.InvitationView, error) {
	var views []*usecase.InvitationView

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		user, err := repoFactory.UserRepo().FindByID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to find user")
		}

		invitations, err := repoFactory.InvitationRepo().ListPendingByEmail(ctx, user.Email)
		if err != nil {
			return errors.Wrap(err, "failed to list invitations")
		}
		views = toInvitationViews(invitations)

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute list my invitations transaction")
	}

	return views, nil
}

// AcceptInvitation grants access and marks the invitation accepted in one
// transaction. Expiry is re-checked here; the screen that showed the
// invitation as pending has no authority.
func (srv *invitationService) AcceptInvitation(ctx context.Context, userID, invitationID uuid.UUID) (*entity.BusinessAccess, error) {
	srv.log(ctx).Info("Accepting invitation", slog.Any("invitationID", invitationID), slog.Any("userID", userID))

	var grant *entity.BusinessAccess
	var businessID uuid.UUID

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		invitationRepo := repoFactory.InvitationRepo()

		invitation, err := srv.pendingInvitationFor(ctx, repoFactory, userID, invitationID)
		if err != nil {
			return err
		}
		if invitation.Expired(time.Now()) {
			return errors.Wrap(domainerrors.ErrInvitationExpired, "invitation expired")
		}

		newGrant := &entity.BusinessAccess{
			BusinessID:     invitation.BusinessID,
			UserID:         userID,
			Role:           invitation.Role,
			InvitationType: "email_invite",
			GrantedBy:      invitation.InviterID,
		}
		if err := repoFactory.AccessRepo().CreateGrant(ctx, newGrant); err != nil {
			if errors.Is(err, repository.ErrDuplicateAccess) {
				return errors.Wrap(domainerrors.ErrAccessAlreadyGranted, "access already granted")
			}

			return errors.Wrap(err, "failed to create grant")
		}

		if err := invitationRepo.UpdateStatus(ctx, invitation.ID, entity.InvitationAccepted); err != nil {
			return errors.Wrap(err, "failed to update invitation status")
		}
		grant = newGrant
		businessID = invitation.BusinessID

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute accept invitation transaction")
	}

	// The accepter can now see the business; their cached lists are stale.
	srv.cache.InvalidateUserCache(userID.String())
	srv.cache.ClearByPattern(cacheKeyInvitations)
	srv.publishChange(ctx, constants.TableBusinessAccess, service.ChangeInsert, grant.ID.String(), businessID.String(), userID.String())

	return grant, nil
}

// DeclineInvitation marks a pending invitation declined. Declining past the
// expiry still works; it only closes the invitation.
func (srv *invitationService) DeclineInvitation(ctx context.Context, userID, invitationID uuid.UUID) error {
	srv.log(ctx).Info("Declining invitation", slog.Any("invitationID", invitationID), slog.Any("userID", userID))

	var businessID uuid.UUID

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		invitation, err := srv.pendingInvitationFor(ctx, repoFactory, userID, invitationID)
		if err != nil {
			return err
		}
		businessID = invitation.BusinessID

		return errors.WithStack(repoFactory.InvitationRepo().UpdateStatus(ctx, invitation.ID, entity.InvitationDeclined))
	})
	if err != nil {
		return errors.Wrap(err, "failed to execute decline invitation transaction")
	}

	srv.cache.ClearByPattern(cacheKeyInvitations)
	srv.publishChange(ctx, constants.TableInvitations, service.ChangeUpdate, invitationID.String(), businessID.String(), userID.String())

	return nil
}

// InvitationQR renders the PNG QR code for sharing an invitation. Only the
// inviter side (anyone with a grant on the business) may render it.
func (srv *invitationService) InvitationQR(ctx context.Context, userID, invitationID uuid.UUID) ([]byte, error) {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		invitation, err := repoFactory.InvitationRepo().FindByID(ctx, invitationID)
		if err != nil {
			if errors.Is(err, repository.ErrInvitationNotFound) {
				return errors.Wrap(domainerrors.ErrInvitationNotFound, "invitation not found")
			}

			return errors.Wrap(err, "failed to find invitation")
		}

		if _, err := repoFactory.AccessRepo().FindGrant(ctx, invitation.BusinessID, userID); err != nil {
			if errors.Is(err, repository.ErrAccessNotFound) {
				return errors.Wrap(domainerrors.ErrAccessDenied, "no access to business")
			}

			return errors.Wrap(err, "failed to find grant")
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to authorize invitation QR")
	}

	qr, err := srv.qrService.GenerateInvitationQR(invitationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate invitation QR")
	}

	return qr, nil
}

// pendingInvitationFor loads an invitation and verifies it is pending and
// addressed to the acting user's email.
func (srv *invitationService) pendingInvitationFor(ctx context.Context, repoFactory repository.RepositoryFactory, userID, invitationID uuid.UUID) (*entity.Invitation, error) {
	invitation, err := repoFactory.InvitationRepo().FindByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, repository.ErrInvitationNotFound) {
			return nil, errors.Wrap(domainerrors.ErrInvitationNotFound, "invitation not found")
		}

		return nil, errors.Wrap(err, "failed to find invitation")
	}

	user, err := repoFactory.UserRepo().FindByID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}
	if invitation.InviteeEmail != user.Email {
		return nil, errors.Wrap(domainerrors.ErrAccessDenied, "invitation addressed to another email")
	}
	if invitation.Status != entity.InvitationPending {
		return nil, errors.Wrap(domainerrors.ErrInvitationNotPending, "invitation already answered")
	}

	return invitation, nil
}

func toInvitationViews(invitations []*entity.Invitation) []*usecase.InvitationView {
	now := time.Now()
	views := make([]*usecase.InvitationView, 0, len(invitations))
	for _, invitation := range invitations {
		views = append(views, &usecase.InvitationView{
			Invitation:      invitation,
			EffectiveStatus: invitation.EffectiveStatus(now),
		})
	}

	return views
}

func (srv *invitationService) publishChange(ctx context.Context, table string, op service.ChangeOp, rowID, businessID, userID string) {
	event := &service.ChangeEvent{
		Table:      table,
		Op:         op,
		RowID:      rowID,
		BusinessID: businessID,
		UserID:     userID,
	}
	if err := srv.changeFeed.PublishChange(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish change event", slog.String("table", table), slog.Any("error", err))
	}
}
