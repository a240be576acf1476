package impl

import (
	"context"
	"log/slog"

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

// businessService implements the BusinessUsecase interface.
type businessService struct {
	txManager  repository.TransactionManager
	cache      service.QueryCache
	changeFeed service.ChangeFeedPublisher
	logger     *slog.Logger
}

// NewBusinessService is the constructor for businessService.
func NewBusinessService(
	txManager repository.TransactionManager,
	cache service.QueryCache,
	changeFeed service.ChangeFeedPublisher,
	logger *slog.Logger,
) usecase.BusinessUsecase {
	return &businessService{
		txManager:  txManager,
		cache:      cache,
		changeFeed: changeFeed,
		logger:     logger,
	}
}

// log returns the request-scoped logger when the delivery layer put one on
// the context, falling back to the service's own.
func (srv *businessService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateBusiness creates a business and the owner's access grant in one
// transaction.
func (srv *businessService) CreateBusiness(ctx context.Context, ownerID uuid.UUID, input *usecase.CreateBusinessInput) (*entity.Business, error) {
	srv.log(ctx).Info("Creating business", slog.Any("ownerID", ownerID), slog.Any("name", input.Name))

	var business *entity.Business

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		newBusiness := &entity.Business{
			OwnerID:  ownerID,
			Name:     input.Name,
			Currency: input.Currency,
			Address:  input.Address,
			Phone:    input.Phone,
		}
		if err := repoFactory.BusinessRepo().Create(ctx, newBusiness); err != nil {
			return errors.Wrap(err, "failed to create business")
		}

		ownerGrant := &entity.BusinessAccess{
			BusinessID:     newBusiness.ID,
			UserID:         ownerID,
			Role:           entity.AccessRoleOwner,
			InvitationType: "owner",
			GrantedBy:      ownerID,
		}
		if err := repoFactory.AccessRepo().CreateGrant(ctx, ownerGrant); err != nil {
			return errors.Wrap(err, "failed to create owner grant")
		}
		business = newBusiness

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute create business transaction")
	}

	srv.cache.Invalidate(businessesKey(ownerID.String()))
	srv.publishChange(ctx, constants.TableBusinesses, service.ChangeInsert, business.ID.String(), business.ID.String(), ownerID.String())

	return business, nil
}

// GetBusiness retrieves a business after verifying the caller holds a grant.
func (srv *businessService) GetBusiness(ctx context.Context, userID, businessID uuid.UUID) (*entity.Business, error) {
	var business *entity.Business

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if _, err := srv.requireGrant(ctx, repoFactory, businessID, userID); err != nil {
			return err
		}

		found, err := repoFactory.BusinessRepo().FindByID(ctx, businessID)
		if err != nil {
			if errors.Is(err, repository.ErrBusinessNotFound) {
				return errors.Wrap(domainerrors.ErrBusinessNotFound, "business not found")
			}

			return errors.Wrap(err, "failed to find business")
		}
		business = found

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute get business transaction")
	}

	return business, nil
}

// ListMyBusinesses retrieves every business the user owns or was granted
// access to, served through the MEDIUM cache tier.
func (srv *businessService) ListMyBusinesses(ctx context.Context, userID uuid.UUID) ([]*entity.Business, error) {
	value, err := srv.cache.GetOrLoad(ctx, businessesKey(userID.String()), service.TierMedium, func(loadCtx context.Context) (any, error) {
		var businesses []*entity.Business
		err := srv.txManager.Execute(loadCtx, func(repoFactory repository.RepositoryFactory) error {
			found, err := repoFactory.BusinessRepo().ListForUser(loadCtx, userID)
			if err != nil {
				return errors.Wrap(err, "failed to list businesses")
			}
			businesses = found

			return nil
		})

		return businesses, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list businesses")
	}

	businesses, ok := value.([]*entity.Business)
	if !ok {
		srv.cache.Invalidate(businessesKey(userID.String()))

		return srv.loadBusinessesDirect(ctx, userID)
	}

	return businesses, nil
}

func (srv *businessService) loadBusinessesDirect(ctx context.Context, userID uuid.UUID) ([]*entity.Business, error) {
	var businesses []*entity.Business
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.BusinessRepo().ListForUser(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to list businesses")
		}
		businesses = found

		return nil
	})
	if err != nil {
		return nil, err
	}
	srv.cache.Set(businessesKey(userID.String()), service.TierMedium, businesses)

	return businesses, nil
}

// UpdateBusiness applies a partial update. Only the owner or a manager may
// change business settings; staff cannot.
func (srv *businessService) UpdateBusiness(ctx context.Context, userID, businessID uuid.UUID, input *usecase.UpdateBusinessInput) (*entity.Business, error) {
	srv.log(ctx).Info("Updating business", slog.Any("businessID", businessID), slog.Any("userID", userID))

	var business *entity.Business

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		grant, err := srv.requireGrant(ctx, repoFactory, businessID, userID)
		if err != nil {
			return err
		}
		if grant.Role != entity.AccessRoleOwner && grant.Role != entity.AccessRoleManager {
			return errors.Wrap(domainerrors.ErrAccessDenied, "role may not update business settings")
		}

		found, err := repoFactory.BusinessRepo().FindByID(ctx, businessID)
		if err != nil {
			return errors.Wrap(err, "failed to find business")
		}

		if input.Name != nil {
			found.Name = *input.Name
		}
		if input.Currency != nil {
			found.Currency = *input.Currency
		}
		if input.Address != nil {
			found.Address = *input.Address
		}
		if input.Phone != nil {
			found.Phone = *input.Phone
		}

		if err := repoFactory.BusinessRepo().Update(ctx, found); err != nil {
			return errors.Wrap(err, "failed to update business")
		}
		business = found

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute update business transaction")
	}

	srv.cache.ClearByPattern(cacheKeyBusinesses)
	srv.publishChange(ctx, constants.TableBusinesses, service.ChangeUpdate, businessID.String(), businessID.String(), userID.String())

	return business, nil
}

// ListMembers retrieves the access grants of a business with the granted
// users.
func (srv *businessService) ListMembers(ctx context.Context, userID, businessID uuid.UUID) ([]*usecase.MemberInfo, error) {
	var members []*usecase.MemberInfo

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if _, err := srv.requireGrant(ctx, repoFactory, businessID, userID); err != nil {
			return err
		}

		grants, err := repoFactory.AccessRepo().ListByBusiness(ctx, businessID)
		if err != nil {
			return errors.Wrap(err, "failed to list grants")
		}

		userRepo := repoFactory.UserRepo()
		members = make([]*usecase.MemberInfo, 0, len(grants))
		for _, grant := range grants {
			member, err := userRepo.FindByID(ctx, grant.UserID)
			if err != nil {
				// A dangling grant must not break the whole listing.
				srv.log(ctx).Warn("Grant references missing user", slog.Any("grantID", grant.ID), slog.Any("userID", grant.UserID))

				continue
			}
			members = append(members, &usecase.MemberInfo{Grant: grant, User: member})
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute list members transaction")
	}

	return members, nil
}

// RevokeAccess removes a member's grant. Only the owner may revoke, and the
// owner's own grant is not revocable.
func (srv *businessService) RevokeAccess(ctx context.Context, userID, businessID, memberID uuid.UUID) error {
	srv.log(ctx).Info("Revoking access", slog.Any("businessID", businessID), slog.Any("memberID", memberID), slog.Any("by", userID))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accessRepo := repoFactory.AccessRepo()

		callerGrant, err := srv.requireGrant(ctx, repoFactory, businessID, userID)
		if err != nil {
			return err
		}
		if callerGrant.Role != entity.AccessRoleOwner {
			return errors.Wrap(domainerrors.ErrAccessDenied, "only the owner may revoke access")
		}

		memberGrant, err := accessRepo.FindGrant(ctx, businessID, memberID)
		if err != nil {
			if errors.Is(err, repository.ErrAccessNotFound) {
				return errors.Wrap(domainerrors.ErrNotFound, "member has no grant")
			}

			return errors.Wrap(err, "failed to find member grant")
		}
		if memberGrant.Role == entity.AccessRoleOwner {
			return errors.Wrap(domainerrors.ErrAccessDenied, "the owner grant cannot be revoked")
		}

		return errors.WithStack(accessRepo.DeleteGrant(ctx, memberGrant.ID))
	})
	if err != nil {
		return errors.Wrap(err, "failed to execute revoke access transaction")
	}

	// The revoked member's cached business list is stale now.
	srv.cache.InvalidateUserCache(memberID.String())
	srv.publishChange(ctx, constants.TableBusinessAccess, service.ChangeDelete, memberID.String(), businessID.String(), memberID.String())

	return nil
}

// CanAccessPage reports whether the user's role in the business allows the
// page. No grant means no pages.
func (srv *businessService) CanAccessPage(ctx context.Context, userID, businessID uuid.UUID, page string) (bool, error) {
	allowed := false

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		grant, err := repoFactory.AccessRepo().FindGrant(ctx, businessID, userID)
		if err != nil {
			if errors.Is(err, repository.ErrAccessNotFound) {
				return nil
			}

			return errors.Wrap(err, "failed to find grant")
		}
		allowed = grant.Role.CanAccessPage(page)

		return nil
	})
	if err != nil {
		return false, errors.Wrap(err, "failed to execute page access check")
	}

	return allowed, nil
}

// requireGrant loads the caller's grant for the business, mapping a missing
// grant to a permission error so handlers return 403, not 404.
func (srv *businessService) requireGrant(ctx context.Context, repoFactory repository.RepositoryFactory, businessID, userID uuid.UUID) (*entity.BusinessAccess, error) {
	grant, err := repoFactory.AccessRepo().FindGrant(ctx, businessID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrAccessNotFound) {
			return nil, errors.Wrap(domainerrors.ErrAccessDenied, "no access to business")
		}

		return nil, errors.Wrap(err, "failed to find grant")
	}

	return grant, nil
}

func (srv *businessService) publishChange(ctx context.Context, table string, op service.ChangeOp, rowID, businessID, userID string) {
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
