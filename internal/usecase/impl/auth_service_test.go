package impl

import (
	"context"
	"testing"
	"time"

	"bizhub/internal/domain/entity"
	domainerrors "bizhub/internal/domain/errors"
	"bizhub/internal/domain/repository"
	"bizhub/internal/domain/service"
	"bizhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	factory    *mockFactory
	hasher     *mockHasher
	tokens     *mockTokenService
	cache      *passthroughCache
	sessionBus *recordingSessionBus
	changeFeed *recordingChangeFeed
	svc        usecase.AuthUsecase
}

func newAuthFixture(t *testing.T, maxSessions int) *authFixture {
	t.Helper()

	f := &authFixture{
		factory:    newMockFactory(),
		hasher:     &mockHasher{},
		tokens:     &mockTokenService{},
		cache:      &passthroughCache{},
		sessionBus: &recordingSessionBus{},
		changeFeed: &recordingChangeFeed{},
	}
	f.svc = NewAuthService(
		&fakeTxManager{factory: f.factory},
		f.hasher,
		f.tokens,
		f.cache,
		f.sessionBus,
		f.changeFeed,
		newTestConfig(maxSessions),
		newDiscardLogger(),
	)

	return f
}

func individualUser(id uuid.UUID) *entity.User {
	return &entity.User{
		ID:    id,
		Email: "user@example.com",
		Profile: &entity.Profile{
			UserID:      id,
			AccountType: entity.AccountTypeIndividual,
			Tier:        entity.TierFreeTrial,
			FullName:    "Test User",
		},
	}
}

func TestAuthService_SignUp_Individual(t *testing.T) {
	f := newAuthFixture(t, 0)

	f.hasher.On("ValidatePasswordStrength", "Str0ngPass!").Return(nil)
	f.hasher.On("Hash", "Str0ngPass!").Return("hashed", nil)
	f.factory.credentialRepo.On("Find", mock.Anything, entity.ProviderTypeEmail, "new@example.com").
		Return(nil, repository.ErrCredentialNotFound)
	f.factory.userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *entity.User) bool {
		return u.Email == "new@example.com" && u.Profile.Tier == entity.TierFreeTrial
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.User).ID = uuid.New()
	}).Return(nil)
	f.factory.credentialRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *entity.Credential) bool {
		return c.PasswordHash == "hashed" && c.Identifier == "new@example.com"
	})).Return(nil)
	f.tokens.On("GenerateTokens", mock.Anything, entity.AccountTypeIndividual).Return("access", "refresh", nil)
	f.tokens.On("HashToken", "refresh").Return("refresh-hash")
	f.tokens.On("GetRefreshTokenDuration").Return(7 * 24 * time.Hour)
	f.factory.refreshTokenRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := f.svc.SignUp(context.Background(), &usecase.SignUpInput{
		Email:       "new@example.com",
		Password:    "Str0ngPass!",
		FullName:    "New User",
		AccountType: entity.AccountTypeIndividual,
	})

	require.NoError(t, err)
	assert.Equal(t, "access", out.AccessToken)
	assert.Equal(t, "refresh", out.RefreshToken)

	require.Len(t, f.sessionBus.events, 1)
	assert.Equal(t, service.SessionSignedIn, f.sessionBus.events[0].Type)

	// No business rows for an individual account.
	f.factory.businessRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_SignUp_BusinessCreatesTenant(t *testing.T) {
	f := newAuthFixture(t, 0)

	f.hasher.On("ValidatePasswordStrength", mock.Anything).Return(nil)
	f.hasher.On("Hash", mock.Anything).Return("hashed", nil)
	f.factory.credentialRepo.On("Find", mock.Anything, entity.ProviderTypeEmail, mock.Anything).
		Return(nil, repository.ErrCredentialNotFound)
	f.factory.userRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.User).ID = uuid.New()
	}).Return(nil)
	f.factory.credentialRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.factory.businessRepo.On("Create", mock.Anything, mock.MatchedBy(func(b *entity.Business) bool {
		return b.Name == "Corner Cafe" && b.Currency == "TWD"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Business).ID = uuid.New()
	}).Return(nil)
	f.factory.accessRepo.On("CreateGrant", mock.Anything, mock.MatchedBy(func(g *entity.BusinessAccess) bool {
		return g.Role == entity.AccessRoleOwner
	})).Return(nil)
	f.tokens.On("GenerateTokens", mock.Anything, entity.AccountTypeBusiness).Return("access", "refresh", nil)
	f.tokens.On("HashToken", "refresh").Return("refresh-hash")
	f.tokens.On("GetRefreshTokenDuration").Return(7 * 24 * time.Hour)
	f.factory.refreshTokenRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.SignUp(context.Background(), &usecase.SignUpInput{
		Email:        "owner@example.com",
		Password:     "Str0ngPass!",
		FullName:     "Owner",
		AccountType:  entity.AccountTypeBusiness,
		BusinessName: "Corner Cafe",
	})

	require.NoError(t, err)
	f.factory.businessRepo.AssertExpectations(t)
	f.factory.accessRepo.AssertExpectations(t)
}

func TestAuthService_SignUp_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t, 0)

	f.hasher.On("ValidatePasswordStrength", mock.Anything).Return(nil)
	f.hasher.On("Hash", mock.Anything).Return("hashed", nil)
	f.factory.credentialRepo.On("Find", mock.Anything, entity.ProviderTypeEmail, "taken@example.com").
		Return(&entity.Credential{UserID: uuid.New()}, nil)

	_, err := f.svc.SignUp(context.Background(), &usecase.SignUpInput{
		Email:       "taken@example.com",
		Password:    "Str0ngPass!",
		FullName:    "Dup",
		AccountType: entity.AccountTypeIndividual,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)
	f.factory.userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_SignUp_BusinessNameRequired(t *testing.T) {
	f := newAuthFixture(t, 0)

	_, err := f.svc.SignUp(context.Background(), &usecase.SignUpInput{
		Email:       "owner@example.com",
		Password:    "Str0ngPass!",
		FullName:    "Owner",
		AccountType: entity.AccountTypeBusiness,
	})

	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestAuthService_SignIn_ScopeMismatch(t *testing.T) {
	f := newAuthFixture(t, 0)
	userID := uuid.New()

	f.factory.credentialRepo.On("Find", mock.Anything, entity.ProviderTypeEmail, "user@example.com").
		Return(&entity.Credential{UserID: userID, PasswordHash: "hashed"}, nil)
	f.hasher.On("Check", "Str0ngPass!", "hashed").Return(true)
	f.factory.userRepo.On("FindByID", mock.Anything, userID).Return(individualUser(userID), nil)

	// Individual account arriving through the business portal.
	_, err := f.svc.SignIn(context.Background(), &usecase.SignInInput{
		Email:    "user@example.com",
		Password: "Str0ngPass!",
		Scope:    entity.ScopeBusiness,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrAccountTypeMismatch)

	// No tokens and no session events on a scope mismatch.
	f.tokens.AssertNotCalled(t, "GenerateTokens", mock.Anything, mock.Anything)
	assert.Empty(t, f.sessionBus.events)
}

func TestAuthService_SignIn_WrongPassword(t *testing.T) {
	f := newAuthFixture(t, 0)
	userID := uuid.New()

	f.factory.credentialRepo.On("Find", mock.Anything, entity.ProviderTypeEmail, "user@example.com").
		Return(&entity.Credential{UserID: userID, PasswordHash: "hashed"}, nil)
	f.hasher.On("Check", "wrong", "hashed").Return(false)

	_, err := f.svc.SignIn(context.Background(), &usecase.SignInInput{
		Email:    "user@example.com",
		Password: "wrong",
		Scope:    entity.ScopeIndividual,
	})

	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_SignIn_EvictsOldestSession(t *testing.T) {
	f := newAuthFixture(t, 2)
	userID := uuid.New()
	now := time.Now()

	f.factory.credentialRepo.On("Find", mock.Anything, entity.ProviderTypeEmail, "user@example.com").
		Return(&entity.Credential{UserID: userID, PasswordHash: "hashed"}, nil)
	f.hasher.On("Check", "Str0ngPass!", "hashed").Return(true)
	f.factory.userRepo.On("FindByID", mock.Anything, userID).Return(individualUser(userID), nil)
	f.tokens.On("GenerateTokens", userID, entity.AccountTypeIndividual).Return("access", "refresh", nil)
	f.tokens.On("HashToken", "refresh").Return("refresh-hash")
	f.tokens.On("GetRefreshTokenDuration").Return(7 * 24 * time.Hour)

	f.factory.refreshTokenRepo.On("FindByUserID", mock.Anything, userID).Return([]*entity.RefreshToken{
		{TokenHash: "oldest", CreatedAt: now.Add(-2 * time.Hour)},
		{TokenHash: "newer", CreatedAt: now.Add(-time.Hour)},
	}, nil)
	f.factory.refreshTokenRepo.On("DeleteByHash", mock.Anything, "oldest").Return(nil)
	f.factory.refreshTokenRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.SignIn(context.Background(), &usecase.SignInInput{
		Email:    "user@example.com",
		Password: "Str0ngPass!",
		Scope:    entity.ScopeIndividual,
	})

	require.NoError(t, err)
	f.factory.refreshTokenRepo.AssertCalled(t, "DeleteByHash", mock.Anything, "oldest")
	f.factory.refreshTokenRepo.AssertNotCalled(t, "DeleteByHash", mock.Anything, "newer")
}

func TestAuthService_SignOut_PublishesSynchronously(t *testing.T) {
	f := newAuthFixture(t, 0)
	userID := uuid.New()

	f.tokens.On("ValidateRefreshToken", "refresh").Return(&service.Claims{UserID: userID}, nil)
	f.tokens.On("HashToken", "refresh").Return("refresh-hash")
	f.factory.refreshTokenRepo.On("DeleteByHash", mock.Anything, "refresh-hash").Return(nil)

	err := f.svc.SignOut(context.Background(), &usecase.SignOutInput{RefreshToken: "refresh"})

	require.NoError(t, err)
	require.Len(t, f.sessionBus.events, 1)
	assert.Equal(t, service.SessionSignedOut, f.sessionBus.events[0].Type)
	assert.Equal(t, userID, f.sessionBus.events[0].UserID)
}

func TestAuthService_SignOut_UnknownTokenStillSucceeds(t *testing.T) {
	f := newAuthFixture(t, 0)

	f.tokens.On("ValidateRefreshToken", "stale").Return(nil, assert.AnError)
	f.tokens.On("HashToken", "stale").Return("stale-hash")
	f.factory.refreshTokenRepo.On("DeleteByHash", mock.Anything, "stale-hash").
		Return(repository.ErrRefreshTokenNotFound)

	err := f.svc.SignOut(context.Background(), &usecase.SignOutInput{RefreshToken: "stale"})

	assert.NoError(t, err)
}

func TestAuthService_RefreshToken_SameIdentity(t *testing.T) {
	f := newAuthFixture(t, 0)
	userID := uuid.New()

	f.tokens.On("ValidateRefreshToken", "old-refresh").Return(&service.Claims{UserID: userID}, nil)
	f.tokens.On("HashToken", "old-refresh").Return("old-hash")
	f.factory.refreshTokenRepo.On("FindByHash", mock.Anything, "old-hash").
		Return(&entity.RefreshToken{UserID: userID, TokenHash: "old-hash"}, nil)
	f.factory.userRepo.On("FindByID", mock.Anything, userID).Return(individualUser(userID), nil)
	f.tokens.On("GenerateTokens", userID, entity.AccountTypeIndividual).Return("new-access", "new-refresh", nil)
	f.tokens.On("HashToken", "new-refresh").Return("new-hash")
	f.tokens.On("GetRefreshTokenDuration").Return(7 * 24 * time.Hour)
	f.factory.refreshTokenRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.factory.refreshTokenRepo.On("DeleteByHash", mock.Anything, "old-hash").Return(nil)

	out, err := f.svc.RefreshToken(context.Background(), &usecase.RefreshTokenInput{RefreshToken: "old-refresh"})

	require.NoError(t, err)
	assert.Equal(t, "new-access", out.AccessToken)

	require.Len(t, f.sessionBus.events, 1)
	assert.Equal(t, service.SessionTokenRefreshed, f.sessionBus.events[0].Type)
	assert.True(t, f.sessionBus.events[0].SameIdentity, "refresh keeps the same subject")
}

func TestAuthService_RefreshToken_RevokedServerSide(t *testing.T) {
	f := newAuthFixture(t, 0)
	userID := uuid.New()

	f.tokens.On("ValidateRefreshToken", "revoked").Return(&service.Claims{UserID: userID}, nil)
	f.tokens.On("HashToken", "revoked").Return("revoked-hash")
	f.factory.refreshTokenRepo.On("FindByHash", mock.Anything, "revoked-hash").
		Return(nil, repository.ErrRefreshTokenNotFound)

	_, err := f.svc.RefreshToken(context.Background(), &usecase.RefreshTokenInput{RefreshToken: "revoked"})

	assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenInvalid)
	assert.Empty(t, f.sessionBus.events)
}

func TestAuthService_UpdateProfile_InvalidatesCache(t *testing.T) {
	f := newAuthFixture(t, 0)
	userID := uuid.New()
	user := individualUser(userID)

	f.factory.userRepo.On("FindByID", mock.Anything, userID).Return(user, nil)
	f.factory.userRepo.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(p *entity.Profile) bool {
		return p.FullName == "Renamed"
	})).Return(nil)

	newName := "Renamed"
	updated, err := f.svc.UpdateProfile(context.Background(), userID, &usecase.UpdateProfileInput{FullName: &newName})

	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Profile.FullName)
	assert.Contains(t, f.cache.invalidated, keyString(profileKey(userID.String())))

	require.Len(t, f.changeFeed.events, 1)
	assert.Equal(t, service.ChangeUpdate, f.changeFeed.events[0].Op)
}

func TestAuthService_ResetPassword_RevokesAllSessions(t *testing.T) {
	f := newAuthFixture(t, 0)
	userID := uuid.New()
	verificationID := uuid.New()

	f.hasher.On("ValidatePasswordStrength", "N3wPassword!").Return(nil)
	f.hasher.On("Hash", "N3wPassword!").Return("new-hash", nil)
	f.tokens.On("HashToken", "reset-token").Return("token-hash")
	f.factory.verificationRepo.On("FindByHash", mock.Anything, "token-hash", entity.VerificationPurposeResetPassword).
		Return(&entity.EmailVerification{ID: verificationID, UserID: userID}, nil)
	f.factory.credentialRepo.On("UpdatePasswordHash", mock.Anything, userID, "new-hash").Return(nil)
	f.factory.refreshTokenRepo.On("DeleteByUserID", mock.Anything, userID).Return(nil)
	f.factory.verificationRepo.On("MarkUsed", mock.Anything, verificationID).Return(nil)

	err := f.svc.ResetPassword(context.Background(), &usecase.ResetPasswordInput{
		Token:       "reset-token",
		NewPassword: "N3wPassword!",
	})

	require.NoError(t, err)
	f.factory.refreshTokenRepo.AssertCalled(t, "DeleteByUserID", mock.Anything, userID)
	require.Len(t, f.sessionBus.events, 1)
	assert.Equal(t, service.SessionSignedOut, f.sessionBus.events[0].Type)
}

func TestAuthService_RequestPasswordReset_UnknownEmailSilent(t *testing.T) {
	f := newAuthFixture(t, 0)

	f.factory.userRepo.On("FindByEmail", mock.Anything, "ghost@example.com").
		Return(nil, repository.ErrUserNotFound)

	token, err := f.svc.RequestPasswordReset(context.Background(), "ghost@example.com")

	require.NoError(t, err)
	assert.Empty(t, token)
	f.factory.verificationRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_RevokeSession(t *testing.T) {
	f := newAuthFixture(t, 0)
	userID := uuid.New()
	sessionID := uuid.New()

	f.factory.refreshTokenRepo.On("DeleteByID", mock.Anything, userID, sessionID).Return(nil)

	err := f.svc.RevokeSession(context.Background(), userID, sessionID)

	require.NoError(t, err)
	require.Len(t, f.sessionBus.events, 1)
	assert.Equal(t, service.SessionSignedOut, f.sessionBus.events[0].Type)
	assert.Equal(t, userID, f.sessionBus.events[0].UserID)
}

func TestAuthService_RevokeSession_OtherUsersSession(t *testing.T) {
	f := newAuthFixture(t, 0)
	userID := uuid.New()
	sessionID := uuid.New()

	// The delete is scoped by owner, so a foreign session reads as missing.
	f.factory.refreshTokenRepo.On("DeleteByID", mock.Anything, userID, sessionID).
		Return(repository.ErrRefreshTokenNotFound)

	err := f.svc.RevokeSession(context.Background(), userID, sessionID)

	require.ErrorIs(t, err, domainerrors.ErrRefreshTokenInvalid)
	assert.Empty(t, f.sessionBus.events)
}
