package impl

import (
	"context"
	"testing"

	"bizhub/internal/domain/entity"
	domainerrors "bizhub/internal/domain/errors"
	"bizhub/internal/domain/repository"
	"bizhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type businessFixture struct {
	factory    *mockFactory
	cache      *passthroughCache
	changeFeed *recordingChangeFeed
	svc        usecase.BusinessUsecase
}

func newBusinessFixture(t *testing.T) *businessFixture {
	t.Helper()

	f := &businessFixture{
		factory:    newMockFactory(),
		cache:      &passthroughCache{},
		changeFeed: &recordingChangeFeed{},
	}
	f.svc = NewBusinessService(
		&fakeTxManager{factory: f.factory},
		f.cache,
		f.changeFeed,
		newDiscardLogger(),
	)

	return f
}

func grantFor(businessID, userID uuid.UUID, role entity.AccessRole) *entity.BusinessAccess {
	return &entity.BusinessAccess{
		ID:         uuid.New(),
		BusinessID: businessID,
		UserID:     userID,
		Role:       role,
	}
}

func TestBusinessService_CreateBusiness_GrantsOwner(t *testing.T) {
	f := newBusinessFixture(t)
	ownerID := uuid.New()

	f.factory.businessRepo.On("Create", mock.Anything, mock.MatchedBy(func(b *entity.Business) bool {
		return b.OwnerID == ownerID && b.Currency == "TWD"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Business).ID = uuid.New()
	}).Return(nil)
	f.factory.accessRepo.On("CreateGrant", mock.Anything, mock.MatchedBy(func(g *entity.BusinessAccess) bool {
		return g.UserID == ownerID && g.Role == entity.AccessRoleOwner && g.GrantedBy == ownerID
	})).Return(nil)

	business, err := f.svc.CreateBusiness(context.Background(), ownerID, &usecase.CreateBusinessInput{
		Name:     "Corner Cafe",
		Currency: "TWD",
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, business.ID)
	f.factory.accessRepo.AssertExpectations(t)
	assert.Contains(t, f.cache.invalidated, keyString(businessesKey(ownerID.String())))
}

func TestBusinessService_GetBusiness_NoGrant(t *testing.T) {
	f := newBusinessFixture(t)
	userID := uuid.New()
	businessID := uuid.New()

	f.factory.accessRepo.On("FindGrant", mock.Anything, businessID, userID).
		Return(nil, repository.ErrAccessNotFound)

	_, err := f.svc.GetBusiness(context.Background(), userID, businessID)

	assert.ErrorIs(t, err, domainerrors.ErrAccessDenied)
}

func TestBusinessService_UpdateBusiness_StaffForbidden(t *testing.T) {
	f := newBusinessFixture(t)
	userID := uuid.New()
	businessID := uuid.New()

	f.factory.accessRepo.On("FindGrant", mock.Anything, businessID, userID).
		Return(grantFor(businessID, userID, entity.AccessRoleStaff), nil)

	name := "Renamed"
	_, err := f.svc.UpdateBusiness(context.Background(), userID, businessID, &usecase.UpdateBusinessInput{Name: &name})

	assert.ErrorIs(t, err, domainerrors.ErrAccessDenied)
	f.factory.businessRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestBusinessService_RevokeAccess_OwnerGrantProtected(t *testing.T) {
	f := newBusinessFixture(t)
	ownerID := uuid.New()
	businessID := uuid.New()

	f.factory.accessRepo.On("FindGrant", mock.Anything, businessID, ownerID).
		Return(grantFor(businessID, ownerID, entity.AccessRoleOwner), nil)

	err := f.svc.RevokeAccess(context.Background(), ownerID, businessID, ownerID)

	assert.ErrorIs(t, err, domainerrors.ErrAccessDenied)
	f.factory.accessRepo.AssertNotCalled(t, "DeleteGrant", mock.Anything, mock.Anything)
}

func TestBusinessService_RevokeAccess_ClearsMemberCache(t *testing.T) {
	f := newBusinessFixture(t)
	ownerID := uuid.New()
	memberID := uuid.New()
	businessID := uuid.New()
	memberGrant := grantFor(businessID, memberID, entity.AccessRoleStaff)

	f.factory.accessRepo.On("FindGrant", mock.Anything, businessID, ownerID).
		Return(grantFor(businessID, ownerID, entity.AccessRoleOwner), nil)
	f.factory.accessRepo.On("FindGrant", mock.Anything, businessID, memberID).
		Return(memberGrant, nil)
	f.factory.accessRepo.On("DeleteGrant", mock.Anything, memberGrant.ID).Return(nil)

	err := f.svc.RevokeAccess(context.Background(), ownerID, businessID, memberID)

	require.NoError(t, err)
	assert.Contains(t, f.cache.userClears, memberID.String())
}

func TestBusinessService_RevokeAccess_NonOwnerForbidden(t *testing.T) {
	f := newBusinessFixture(t)
	managerID := uuid.New()
	memberID := uuid.New()
	businessID := uuid.New()

	f.factory.accessRepo.On("FindGrant", mock.Anything, businessID, managerID).
		Return(grantFor(businessID, managerID, entity.AccessRoleManager), nil)

	err := f.svc.RevokeAccess(context.Background(), managerID, businessID, memberID)

	assert.ErrorIs(t, err, domainerrors.ErrAccessDenied)
}

func TestBusinessService_ListMyBusinesses(t *testing.T) {
	f := newBusinessFixture(t)
	userID := uuid.New()
	owned := &entity.Business{ID: uuid.New(), OwnerID: userID, Name: "Mine"}
	granted := &entity.Business{ID: uuid.New(), OwnerID: uuid.New(), Name: "Theirs"}

	f.factory.businessRepo.On("ListForUser", mock.Anything, userID).
		Return([]*entity.Business{owned, granted}, nil)

	businesses, err := f.svc.ListMyBusinesses(context.Background(), userID)

	require.NoError(t, err)
	assert.Len(t, businesses, 2)
}

func TestBusinessService_CanAccessPage(t *testing.T) {
	f := newBusinessFixture(t)
	businessID := uuid.New()

	staffID := uuid.New()
	f.factory.accessRepo.On("FindGrant", mock.Anything, businessID, staffID).
		Return(grantFor(businessID, staffID, entity.AccessRoleStaff), nil)

	strangerID := uuid.New()
	f.factory.accessRepo.On("FindGrant", mock.Anything, businessID, strangerID).
		Return(nil, repository.ErrAccessNotFound)

	allowed, err := f.svc.CanAccessPage(context.Background(), staffID, businessID, "pos")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = f.svc.CanAccessPage(context.Background(), staffID, businessID, "settings")
	require.NoError(t, err)
	assert.False(t, allowed, "staff may not open settings")

	allowed, err = f.svc.CanAccessPage(context.Background(), strangerID, businessID, "dashboard")
	require.NoError(t, err)
	assert.False(t, allowed, "no grant means no pages")
}
