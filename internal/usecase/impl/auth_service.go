// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sort"
	"time"

	"bizhub/config"
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

const (
	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = time.Hour
	defaultCurrency      = "TWD"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager    repository.TransactionManager
	hasher       service.PasswordHasher
	tokenService service.TokenService
	cache        service.QueryCache
	sessionBus   service.SessionEventBus
	changeFeed   service.ChangeFeedPublisher
	cfg          *config.Config
	logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(
	txManager repository.TransactionManager,
	hasher service.PasswordHasher,
	tokenService service.TokenService,
	cache service.QueryCache,
	sessionBus service.SessionEventBus,
	changeFeed service.ChangeFeedPublisher,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.AuthUsecase {
	return &authService{
		txManager:    txManager,
		hasher:       hasher,
		tokenService: tokenService,
		cache:        cache,
		sessionBus:   sessionBus,
		changeFeed:   changeFeed,
		cfg:          cfg,
		logger:       logger,
	}
}

// log returns the request-scoped logger when the delivery layer put one on
// the context, falling back to the service's own.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// SignUp orchestrates the complete registration process. The user, profile,
// credential and, for business accounts, the business row are created in one
// transaction, so a failed step leaves no orphaned account.
func (srv *authService) SignUp(ctx context.Context, input *usecase.SignUpInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Info("Starting sign-up", slog.String("email", input.Email), slog.Any("accountType", input.AccountType))

	if !input.AccountType.IsValid() {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "unknown account type")
	}
	if input.AccountType == entity.AccountTypeBusiness && input.BusinessName == "" {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "business name is required")
	}

	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		return nil, errors.Wrap(err, "password strength validation failed")
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during sign-up", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during sign-up")
	}

	var registeredUser *entity.User

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		credentialRepo := repoFactory.CredentialRepo()

		// 1. Check if a credential with this email already exists.
		_, err := credentialRepo.Find(ctx, entity.ProviderTypeEmail, input.Email)
		if err == nil {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("sign-up failed")
		}
		if !errors.Is(err, repository.ErrCredentialNotFound) {
			return errors.Wrap(err, "failed to find credential")
		}

		// 2. Create the User entity and its profile.
		newUser := &entity.User{
			Email: input.Email,
			Profile: &entity.Profile{
				AccountType:  input.AccountType,
				Tier:         entity.TierFreeTrial,
				FullName:     input.FullName,
				BusinessName: input.BusinessName,
			},
		}
		if err := userRepo.Create(ctx, newUser); err != nil {
			return errors.WithStack(err)
		}

		// 3. Create the email/password credential.
		newCredential := &entity.Credential{
			UserID:       newUser.ID,
			Provider:     entity.ProviderTypeEmail,
			Identifier:   input.Email,
			PasswordHash: hashedPassword,
		}
		if err := credentialRepo.Create(ctx, newCredential); err != nil {
			return errors.WithStack(err)
		}

		// 4. Business accounts start with their business and the owner grant.
		if input.AccountType == entity.AccountTypeBusiness {
			currency := input.Currency
			if currency == "" {
				currency = defaultCurrency
			}
			newBusiness := &entity.Business{
				OwnerID:  newUser.ID,
				Name:     input.BusinessName,
				Currency: currency,
			}
			if err := repoFactory.BusinessRepo().Create(ctx, newBusiness); err != nil {
				return errors.WithStack(err)
			}

			ownerGrant := &entity.BusinessAccess{
				BusinessID:     newBusiness.ID,
				UserID:         newUser.ID,
				Role:           entity.AccessRoleOwner,
				InvitationType: "owner",
				GrantedBy:      newUser.ID,
			}
			if err := repoFactory.AccessRepo().CreateGrant(ctx, ownerGrant); err != nil {
				return errors.WithStack(err)
			}
		}

		registeredUser = newUser

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute sign-up transaction", slog.Any("error", err), slog.String("email", input.Email))

		return nil, errors.Wrap(err, "failed to execute sign-up transaction")
	}

	output, err := srv.openSession(ctx, registeredUser)
	if err != nil {
		return nil, err
	}

	srv.publishChange(ctx, constants.TableProfiles, service.ChangeInsert, registeredUser.ID.String(), "", registeredUser.ID.String())
	srv.log(ctx).Debug("User signed up successfully", slog.Any("userID", registeredUser.ID))

	return output, nil
}

// SignIn orchestrates the sign-in process. The entry point's scope must
// allow the profile's account type; a business owner cannot enter through
// the individual portal and vice versa.
func (srv *authService) SignIn(ctx context.Context, input *usecase.SignInInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Debug("Starting sign-in", slog.String("email", input.Email), slog.Any("scope", input.Scope))

	var signedInUser *entity.User

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		credentialRepo := repoFactory.CredentialRepo()
		userRepo := repoFactory.UserRepo()

		// 1. Find the credential. A missing credential reads the same as a
		// wrong password.
		credential, err := credentialRepo.Find(ctx, entity.ProviderTypeEmail, input.Email)
		if err != nil {
			return errors.Wrap(domainerrors.ErrInvalidCredentials, "sign-in failed")
		}

		// 2. Check the password.
		if !srv.hasher.Check(input.Password, credential.PasswordHash) {
			return errors.Wrap(domainerrors.ErrInvalidCredentials, "sign-in failed")
		}

		// 3. Fetch the full user and enforce the entry point's scope.
		user, err := userRepo.FindByID(ctx, credential.UserID)
		if err != nil {
			return errors.Wrap(err, "failed to find user by id")
		}
		if user.Profile == nil {
			return errors.Wrap(domainerrors.ErrInternalError, "user has no profile")
		}
		if !input.Scope.Allows(user.Profile.AccountType) {
			return domainerrors.ErrAccountTypeMismatch.WrapMessage("scope check failed")
		}

		signedInUser = user

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Sign-in failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute sign-in transaction")
	}

	output, err := srv.openSession(ctx, signedInUser)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("User signed in successfully", slog.Any("userID", signedInUser.ID))

	return output, nil
}

// openSession generates a token pair, persists the hashed refresh token and
// announces the new identity. Session events are synchronous, so caches are
// already cleared for the new identity when the response leaves.
func (srv *authService) openSession(ctx context.Context, user *entity.User) (*usecase.AuthOutput, error) {
	accessToken, refreshTokenString, err := srv.tokenService.GenerateTokens(user.ID, user.Profile.AccountType)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate tokens")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tokenRepo := repoFactory.RefreshTokenRepo()

		if err := srv.enforceSessionLimit(ctx, tokenRepo, user.ID); err != nil {
			return err
		}

		newRefreshToken := &entity.RefreshToken{
			UserID:    user.ID,
			TokenHash: srv.tokenService.HashToken(refreshTokenString),
			ExpiresAt: time.Now().Add(srv.tokenService.GetRefreshTokenDuration()),
		}

		return errors.WithStack(tokenRepo.Create(ctx, newRefreshToken))
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to persist session")
	}

	srv.sessionBus.Publish(service.SessionEvent{
		Type:   service.SessionSignedIn,
		UserID: user.ID,
	})

	return &usecase.AuthOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		User:         user,
	}, nil
}

// enforceSessionLimit drops the oldest sessions when the configured ceiling
// is reached, so a stolen password cannot mint unbounded live sessions.
func (srv *authService) enforceSessionLimit(ctx context.Context, tokenRepo repository.RefreshTokenRepository, userID uuid.UUID) error {
	maxSessions := 0
	if srv.cfg != nil && srv.cfg.Auth != nil {
		maxSessions = srv.cfg.Auth.MaxActiveSessions
	}
	if maxSessions <= 0 {
		return nil
	}

	tokens, err := tokenRepo.FindByUserID(ctx, userID)
	if err != nil {
		return errors.Wrap(err, "failed to list active sessions")
	}
	if len(tokens) < maxSessions {
		return nil
	}

	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].CreatedAt.Before(tokens[j].CreatedAt)
	})

	// Evict enough oldest sessions to leave room for the new one.
	evict := len(tokens) - maxSessions + 1
	for _, stale := range tokens[:evict] {
		if err := tokenRepo.DeleteByHash(ctx, stale.TokenHash); err != nil && !errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return errors.Wrap(err, "failed to evict oldest session")
		}
	}

	return nil
}

// SignOut revokes the session. The revocation and the cache clear both
// complete before this returns; there is no fire-and-forget path out of a
// signed-in state.
func (srv *authService) SignOut(ctx context.Context, input *usecase.SignOutInput) error {
	srv.log(ctx).Info("Attempting to sign out")

	claims, err := srv.tokenService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		// Even with an undecodable token, deleting its hash is harmless.
		srv.log(ctx).Warn("Sign-out with invalid token", slog.Any("error", err))
	}

	tokenHash := srv.tokenService.HashToken(input.RefreshToken)

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		err := repoFactory.RefreshTokenRepo().DeleteByHash(ctx, tokenHash)
		if err != nil && !errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return errors.Wrap(err, "failed to delete refresh token")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute sign-out transaction", slog.Any("error", err))

		return errors.Wrap(err, "failed to execute sign-out transaction")
	}

	var userID uuid.UUID
	if claims != nil {
		userID = claims.UserID
	}
	srv.sessionBus.Publish(service.SessionEvent{
		Type:   service.SessionSignedOut,
		UserID: userID,
	})
	srv.log(ctx).Info("Successfully signed out")

	return nil
}

// RefreshToken rotates the token pair. The subject of the new pair is the
// subject of the old one, so the published event carries SameIdentity and
// subscribers keep their caches.
func (srv *authService) RefreshToken(ctx context.Context, input *usecase.RefreshTokenInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Debug("Attempting to refresh token")

	claims, err := srv.tokenService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrRefreshTokenInvalid, "invalid refresh token")
	}

	oldHash := srv.tokenService.HashToken(input.RefreshToken)

	var user *entity.User
	var newAccessToken, newRefreshTokenString string

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tokenRepo := repoFactory.RefreshTokenRepo()

		// 1. The token must still exist server-side; sign-out wins races.
		if _, err := tokenRepo.FindByHash(ctx, oldHash); err != nil {
			return errors.Wrap(domainerrors.ErrRefreshTokenInvalid, "refresh token not found or expired")
		}

		// 2. Fetch the user for the new claims.
		user, err = repoFactory.UserRepo().FindByID(ctx, claims.UserID)
		if err != nil {
			return errors.Wrap(err, "failed to find user")
		}

		// 3. Generate and store the replacement pair.
		newAccessToken, newRefreshTokenString, err = srv.tokenService.GenerateTokens(user.ID, user.Profile.AccountType)
		if err != nil {
			return errors.Wrap(err, "failed to generate new tokens")
		}

		newRefreshToken := &entity.RefreshToken{
			UserID:    user.ID,
			TokenHash: srv.tokenService.HashToken(newRefreshTokenString),
			ExpiresAt: time.Now().Add(srv.tokenService.GetRefreshTokenDuration()),
		}
		if err := tokenRepo.Create(ctx, newRefreshToken); err != nil {
			return errors.WithStack(err)
		}

		// 4. Retire the old token.
		if err := tokenRepo.DeleteByHash(ctx, oldHash); err != nil {
			// The user already holds a valid replacement; log and move on.
			srv.log(ctx).Warn("Failed to delete old refresh token", slog.Any("error", err))
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute refresh token transaction", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute refresh token transaction")
	}

	srv.sessionBus.Publish(service.SessionEvent{
		Type:         service.SessionTokenRefreshed,
		UserID:       user.ID,
		SameIdentity: true,
	})

	return &usecase.AuthOutput{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshTokenString,
		User:         user,
	}, nil
}

// GetProfile retrieves the user with profile through the SESSION cache tier.
// The stored row stays authoritative: the cache serves it, never replaces it.
func (srv *authService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	value, err := srv.cache.GetOrLoad(ctx, profileKey(userID.String()), service.TierSession, func(loadCtx context.Context) (any, error) {
		var user *entity.User
		err := srv.txManager.Execute(loadCtx, func(repoFactory repository.RepositoryFactory) error {
			found, err := repoFactory.UserRepo().FindByID(loadCtx, userID)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					return errors.Wrap(domainerrors.ErrUserNotFound, "user not found")
				}

				return errors.Wrap(err, "failed to find user")
			}
			user = found

			return nil
		})

		return user, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get profile")
	}

	user, ok := value.(*entity.User)
	if !ok {
		// A rehydrated mirror entry is raw JSON; bypass it for typed reads.
		srv.cache.Invalidate(profileKey(userID.String()))

		return srv.loadProfileDirect(ctx, userID)
	}

	return user, nil
}

func (srv *authService) loadProfileDirect(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	var user *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.UserRepo().FindByID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to find user")
		}
		user = found

		return nil
	})
	if err != nil {
		return nil, err
	}
	srv.cache.Set(profileKey(userID.String()), service.TierSession, user)

	return user, nil
}

// UpdateProfile applies a partial profile update. The write is
// last-writer-wins against the stored row, and the profile cache entry is
// dropped before the response returns.
func (srv *authService) UpdateProfile(ctx context.Context, userID uuid.UUID, input *usecase.UpdateProfileInput) (*entity.User, error) {
	srv.log(ctx).Info("Updating profile", slog.Any("userID", userID))

	var user *entity.User

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		found, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrUserNotFound, "user not found")
			}

			return errors.Wrap(err, "failed to find user")
		}
		if found.Profile == nil {
			return errors.Wrap(domainerrors.ErrInternalError, "user has no profile")
		}

		if input.FullName != nil {
			found.Profile.FullName = *input.FullName
		}
		if input.BusinessName != nil {
			found.Profile.BusinessName = *input.BusinessName
		}

		if err := userRepo.UpdateProfile(ctx, found.Profile); err != nil {
			return errors.Wrap(err, "failed to update profile")
		}
		user = found

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute profile update transaction")
	}

	srv.cache.Invalidate(profileKey(userID.String()))
	srv.publishChange(ctx, constants.TableProfiles, service.ChangeUpdate, userID.String(), "", userID.String())

	return user, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (srv *authService) ChangePassword(ctx context.Context, userID uuid.UUID, input *usecase.ChangePasswordInput) error {
	srv.log(ctx).Info("Changing password", slog.Any("userID", userID))

	if err := srv.hasher.ValidatePasswordStrength(input.NewPassword); err != nil {
		return errors.Wrap(err, "password strength validation failed")
	}

	newHash, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return errors.Wrap(err, "failed to hash new password")
	}

	return srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		credentialRepo := repoFactory.CredentialRepo()
		userRepo := repoFactory.UserRepo()

		user, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to find user")
		}

		credential, err := credentialRepo.Find(ctx, entity.ProviderTypeEmail, user.Email)
		if err != nil {
			return errors.Wrap(domainerrors.ErrInvalidCredentials, "credential not found")
		}
		if !srv.hasher.Check(input.CurrentPassword, credential.PasswordHash) {
			return errors.Wrap(domainerrors.ErrInvalidCredentials, "current password mismatch")
		}

		return errors.WithStack(credentialRepo.UpdatePasswordHash(ctx, userID, newHash))
	})
}

// RequestEmailVerification issues a verification token. Only the SHA-256
// hash is stored; the raw token goes out by email.
func (srv *authService) RequestEmailVerification(ctx context.Context, userID uuid.UUID) (string, error) {
	rawToken, err := generateToken()
	if err != nil {
		return "", errors.Wrap(err, "failed to generate verification token")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		verification := &entity.EmailVerification{
			UserID:    userID,
			TokenHash: srv.tokenService.HashToken(rawToken),
			Purpose:   entity.VerificationPurposeEmail,
			ExpiresAt: time.Now().Add(verificationTokenTTL),
		}

		return errors.WithStack(repoFactory.VerificationRepo().Create(ctx, verification))
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to store verification token")
	}

	return rawToken, nil
}

// VerifyEmail consumes a verification token and marks the profile verified.
func (srv *authService) VerifyEmail(ctx context.Context, token string) error {
	tokenHash := srv.tokenService.HashToken(token)

	var userID uuid.UUID

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		verificationRepo := repoFactory.VerificationRepo()
		userRepo := repoFactory.UserRepo()

		verification, err := verificationRepo.FindByHash(ctx, tokenHash, entity.VerificationPurposeEmail)
		if err != nil {
			return errors.Wrap(domainerrors.ErrVerificationInvalid, "verification not found")
		}

		user, err := userRepo.FindByID(ctx, verification.UserID)
		if err != nil {
			return errors.Wrap(err, "failed to find user")
		}

		user.Profile.EmailVerified = true
		if err := userRepo.UpdateProfile(ctx, user.Profile); err != nil {
			return errors.Wrap(err, "failed to mark email verified")
		}

		if err := verificationRepo.MarkUsed(ctx, verification.ID); err != nil {
			return errors.Wrap(err, "failed to consume verification")
		}
		userID = verification.UserID

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to execute email verification transaction")
	}

	srv.cache.Invalidate(profileKey(userID.String()))
	srv.publishChange(ctx, constants.TableProfiles, service.ChangeUpdate, userID.String(), "", userID.String())

	return nil
}

// RequestPasswordReset issues a reset token when the email is known. The
// empty return for unknown emails is deliberate: the endpoint must not leak
// which addresses have accounts.
func (srv *authService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	rawToken, err := generateToken()
	if err != nil {
		return "", errors.Wrap(err, "failed to generate reset token")
	}

	issued := false
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		user, err := repoFactory.UserRepo().FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil // Unknown email reads like success.
			}

			return errors.Wrap(err, "failed to find user by email")
		}

		verification := &entity.EmailVerification{
			UserID:    user.ID,
			TokenHash: srv.tokenService.HashToken(rawToken),
			Purpose:   entity.VerificationPurposeResetPassword,
			ExpiresAt: time.Now().Add(resetTokenTTL),
		}
		if err := repoFactory.VerificationRepo().Create(ctx, verification); err != nil {
			return errors.WithStack(err)
		}
		issued = true

		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to store reset token")
	}
	if !issued {
		return "", nil
	}

	return rawToken, nil
}

// ResetPassword consumes a reset token, stores the new hash and revokes
// every session of the account.
func (srv *authService) ResetPassword(ctx context.Context, input *usecase.ResetPasswordInput) error {
	if err := srv.hasher.ValidatePasswordStrength(input.NewPassword); err != nil {
		return errors.Wrap(err, "password strength validation failed")
	}

	newHash, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return errors.Wrap(err, "failed to hash new password")
	}

	tokenHash := srv.tokenService.HashToken(input.Token)

	var userID uuid.UUID

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		verificationRepo := repoFactory.VerificationRepo()

		verification, err := verificationRepo.FindByHash(ctx, tokenHash, entity.VerificationPurposeResetPassword)
		if err != nil {
			return errors.Wrap(domainerrors.ErrVerificationInvalid, "reset token not found")
		}

		if err := repoFactory.CredentialRepo().UpdatePasswordHash(ctx, verification.UserID, newHash); err != nil {
			return errors.Wrap(err, "failed to update password hash")
		}

		// Every live session dies with the old password.
		if err := repoFactory.RefreshTokenRepo().DeleteByUserID(ctx, verification.UserID); err != nil {
			return errors.Wrap(err, "failed to revoke sessions")
		}

		if err := verificationRepo.MarkUsed(ctx, verification.ID); err != nil {
			return errors.Wrap(err, "failed to consume reset token")
		}
		userID = verification.UserID

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to execute password reset transaction")
	}

	srv.sessionBus.Publish(service.SessionEvent{
		Type:   service.SessionSignedOut,
		UserID: userID,
	})

	return nil
}

// ListSessions reports the user's active sessions.
func (srv *authService) ListSessions(ctx context.Context, userID uuid.UUID) ([]*usecase.SessionInfo, error) {
	var sessions []*usecase.SessionInfo

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tokens, err := repoFactory.RefreshTokenRepo().FindByUserID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to list sessions")
		}

		sessions = make([]*usecase.SessionInfo, 0, len(tokens))
		for _, token := range tokens {
			sessions = append(sessions, &usecase.SessionInfo{
				ID:        token.ID,
				CreatedAt: token.CreatedAt.Format(time.RFC3339),
				ExpiresAt: token.ExpiresAt.Format(time.RFC3339),
			})
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute list sessions transaction")
	}

	return sessions, nil
}

// RevokeSession ends one of the user's sessions by its listed ID. Revoking
// a session that already ended reads as an invalid token.
func (srv *authService) RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.RefreshTokenRepo().DeleteByID(ctx, userID, sessionID); err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return errors.Wrap(domainerrors.ErrRefreshTokenInvalid, "session not found")
			}

			return errors.Wrap(err, "failed to revoke session")
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to execute revoke session transaction")
	}

	srv.sessionBus.Publish(service.SessionEvent{
		Type:   service.SessionSignedOut,
		UserID: userID,
	})
	srv.log(ctx).Info("session revoked", slog.String("sessionID", sessionID.String()))

	return nil
}

// publishChange announces a committed write on the change feed. The write
// already committed, so a publish failure is logged and never surfaced.
func (srv *authService) publishChange(ctx context.Context, table string, op service.ChangeOp, rowID, businessID, userID string) {
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

// generateToken returns 32 bytes of hex-encoded randomness for email tokens.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}
