package impl

import (
	"context"
	"fmt"
	"log/slog"
	"path"
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
	paymentMethodCoupon   = "coupon"
	paymentMethodTransfer = "transfer"

	// proofURLExpiry bounds how long a signed proof download link lives.
	proofURLExpiry = 15 * time.Minute
)

// billingService implements the BillingUsecase interface.
type billingService struct {
	txManager  repository.TransactionManager
	cache      service.QueryCache
	changeFeed service.ChangeFeedPublisher
	storage    service.FileStorage
	notifier   usecase.NotificationUsecase
	reviewers  map[uuid.UUID]struct{}
	logger     *slog.Logger
}

// NewBillingService is the constructor for billingService.
func NewBillingService(
	txManager repository.TransactionManager,
	cache service.QueryCache,
	changeFeed service.ChangeFeedPublisher,
	storage service.FileStorage,
	notifier usecase.NotificationUsecase,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.BillingUsecase {
	reviewers := make(map[uuid.UUID]struct{})
	if cfg.Billing != nil {
		for _, raw := range cfg.Billing.ReviewerIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				logger.Warn("Skipping malformed reviewer ID", slog.String("reviewerID", raw))

				continue
			}
			reviewers[id] = struct{}{}
		}
	}

	return &billingService{
		txManager:  txManager,
		cache:      cache,
		changeFeed: changeFeed,
		storage:    storage,
		notifier:   notifier,
		reviewers:  reviewers,
		logger:     logger,
	}
}

// log returns the request-scoped logger when the delivery layer put one on
// the context, falling back to the service's own.
func (srv *billingService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// RedeemCoupon consumes a coupon and upgrades the profile tier in one
// transaction. The coupon is verified before any mutation; the consuming
// update is guarded so two concurrent redemptions cannot both win.
func (srv *billingService) RedeemCoupon(ctx context.Context, userID uuid.UUID, input *usecase.RedeemCouponInput) (*entity.PaymentTransaction, error) {
	srv.log(ctx).Info("Redeeming coupon", slog.Any("userID", userID))

	var payment *entity.PaymentTransaction

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		billingRepo := repoFactory.BillingRepo()
		userRepo := repoFactory.UserRepo()

		coupon, err := billingRepo.FindCouponByCode(ctx, input.Code)
		if err != nil {
			if errors.Is(err, repository.ErrCouponNotFound) {
				return errors.Wrap(domainerrors.ErrCouponNotFound, "coupon not found")
			}

			return errors.Wrap(err, "failed to find coupon")
		}

		// Verify everything before mutating anything.
		now := time.Now()
		if !coupon.Redeemable(now) {
			if coupon.IsUsed {
				return errors.Wrap(domainerrors.ErrCouponAlreadyUsed, "coupon already used")
			}

			return errors.Wrap(domainerrors.ErrCouponInactive, "coupon inactive or expired")
		}

		user, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to find user")
		}

		// The guarded update loses to a concurrent redemption.
		if err := billingRepo.MarkCouponUsed(ctx, coupon.ID, userID); err != nil {
			if errors.Is(err, repository.ErrCouponAlreadyUsed) {
				return errors.Wrap(domainerrors.ErrCouponAlreadyUsed, "coupon already used")
			}

			return errors.Wrap(err, "failed to consume coupon")
		}

		user.Profile.Tier = coupon.Tier
		if err := userRepo.UpdateProfile(ctx, user.Profile); err != nil {
			return errors.Wrap(err, "failed to upgrade tier")
		}

		newPayment := &entity.PaymentTransaction{
			UserID:   userID,
			Tier:     coupon.Tier,
			Method:   paymentMethodCoupon,
			CouponID: &coupon.ID,
			Status:   entity.PaymentApproved,
		}
		if err := billingRepo.CreatePayment(ctx, newPayment); err != nil {
			return errors.Wrap(err, "failed to record payment")
		}
		payment = newPayment

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute coupon redemption transaction")
	}

	srv.cache.Invalidate(profileKey(userID.String()))
	srv.cache.Invalidate(paymentsKey(userID.String()))
	srv.publishChange(ctx, constants.TablePaymentTransactions, service.ChangeInsert, payment.ID.String(), "", userID.String())

	return payment, nil
}

// SubmitTransfer stores the payment proof blob and creates a pending payment
// for manual review. The blob upload happens before the row so a failed
// upload leaves no payment pointing at nothing.
func (srv *billingService) SubmitTransfer(ctx context.Context, userID uuid.UUID, input *usecase.SubmitTransferInput) (*entity.PaymentTransaction, error) {
	srv.log(ctx).Info("Submitting transfer", slog.Any("userID", userID), slog.Any("tier", input.Tier))

	if !input.Tier.IsValid() || input.Tier == entity.TierFreeTrial {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "invalid target tier")
	}

	proofKey := path.Join("payment-proofs", userID.String(), fmt.Sprintf("%s-%s", uuid.NewString(), input.ProofName))
	if err := srv.storage.Upload(ctx, proofKey, input.ProofType, input.Proof); err != nil {
		return nil, errors.Wrap(err, "failed to upload payment proof")
	}

	payment := &entity.PaymentTransaction{
		UserID:      userID,
		Tier:        input.Tier,
		AmountCents: input.AmountCents,
		Method:      paymentMethodTransfer,
		ProofPath:   proofKey,
		Status:      entity.PaymentPending,
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return errors.WithStack(repoFactory.BillingRepo().CreatePayment(ctx, payment))
	})
	if err != nil {
		// Best effort: do not leave an orphaned proof blob behind.
		if delErr := srv.storage.Delete(ctx, proofKey); delErr != nil {
			srv.log(ctx).Warn("Failed to delete orphaned proof", slog.String("key", proofKey), slog.Any("error", delErr))
		}

		return nil, errors.Wrap(err, "failed to create payment")
	}

	srv.cache.Invalidate(paymentsKey(userID.String()))
	srv.publishChange(ctx, constants.TablePaymentTransactions, service.ChangeInsert, payment.ID.String(), "", userID.String())

	return payment, nil
}

// ListMyPayments retrieves the user's payment history, newest first, served
// through the MEDIUM cache tier.
func (srv *billingService) ListMyPayments(ctx context.Context, userID uuid.UUID) ([]*entity.PaymentTransaction, error) {
	value, err := srv.cache.GetOrLoad(ctx, paymentsKey(userID.String()), service.TierMedium, func(loadCtx context.Context) (any, error) {
		var payments []*entity.PaymentTransaction
		err := srv.txManager.Execute(loadCtx, func(repoFactory repository.RepositoryFactory) error {
			found, err := repoFactory.BillingRepo().ListPaymentsByUser(loadCtx, userID)
			if err != nil {
				return errors.Wrap(err, "failed to list payments")
			}
			payments = found

			return nil
		})

		return payments, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list payments")
	}

	payments, ok := value.([]*entity.PaymentTransaction)
	if !ok {
		srv.cache.Invalidate(paymentsKey(userID.String()))

		return srv.loadPaymentsDirect(ctx, userID)
	}

	return payments, nil
}

func (srv *billingService) loadPaymentsDirect(ctx context.Context, userID uuid.UUID) ([]*entity.PaymentTransaction, error) {
	var payments []*entity.PaymentTransaction
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.BillingRepo().ListPaymentsByUser(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to list payments")
		}
		payments = found

		return nil
	})
	if err != nil {
		return nil, err
	}
	srv.cache.Set(paymentsKey(userID.String()), service.TierMedium, payments)

	return payments, nil
}

// ReviewPayment resolves a pending transfer. Only configured operator
// accounts may review, and never their own payment. Approval upgrades the
// payer's tier in the same transaction as the status change.
func (srv *billingService) ReviewPayment(ctx context.Context, reviewerID, paymentID uuid.UUID, input *usecase.ReviewPaymentInput) error {
	srv.log(ctx).Info("Reviewing payment", slog.Any("paymentID", paymentID), slog.Any("reviewerID", reviewerID), slog.Any("approve", input.Approve))

	if _, ok := srv.reviewers[reviewerID]; !ok {
		return errors.Wrap(domainerrors.ErrAccessDenied, "payment review requires an operator account")
	}

	var payerID uuid.UUID
	var approvedTier entity.Tier

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		billingRepo := repoFactory.BillingRepo()

		payment, err := billingRepo.FindPaymentByID(ctx, paymentID)
		if err != nil {
			if errors.Is(err, repository.ErrPaymentNotFound) {
				return errors.Wrap(domainerrors.ErrNotFound, "payment not found")
			}

			return errors.Wrap(err, "failed to find payment")
		}
		if payment.UserID == reviewerID {
			return errors.Wrap(domainerrors.ErrAccessDenied, "reviewers cannot resolve their own payment")
		}
		if payment.Status != entity.PaymentPending {
			return errors.Wrap(domainerrors.ErrConflict, "payment already reviewed")
		}

		status := entity.PaymentRejected
		if input.Approve {
			status = entity.PaymentApproved
		}
		if err := billingRepo.UpdatePaymentStatus(ctx, paymentID, status); err != nil {
			return errors.Wrap(err, "failed to update payment status")
		}

		if input.Approve {
			userRepo := repoFactory.UserRepo()
			user, err := userRepo.FindByID(ctx, payment.UserID)
			if err != nil {
				return errors.Wrap(err, "failed to find payer")
			}
			user.Profile.Tier = payment.Tier
			if err := userRepo.UpdateProfile(ctx, user.Profile); err != nil {
				return errors.Wrap(err, "failed to upgrade tier")
			}
			approvedTier = payment.Tier
		}
		payerID = payment.UserID

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to execute payment review transaction")
	}

	srv.cache.Invalidate(profileKey(payerID.String()))
	srv.cache.Invalidate(paymentsKey(payerID.String()))
	srv.publishChange(ctx, constants.TablePaymentTransactions, service.ChangeUpdate, paymentID.String(), "", payerID.String())

	title := "Payment rejected"
	body := "Your transfer could not be verified. Please contact support."
	if input.Approve {
		title = "Payment approved"
		body = fmt.Sprintf("Your account has been upgraded to %s.", approvedTier)
	}
	if _, err := srv.notifier.Notify(ctx, &usecase.NotifyInput{
		UserID:   payerID,
		Type:     entity.NotificationTypePayment,
		Priority: entity.NotificationPriorityHigh,
		Title:    title,
		Body:     body,
	}); err != nil {
		srv.log(ctx).Warn("Failed to notify payer", slog.Any("paymentID", paymentID), slog.Any("error", err))
	}

	return nil
}

// PaymentProofURL returns a time-limited download URL for the proof. Only
// the payer may fetch their own proof.
func (srv *billingService) PaymentProofURL(ctx context.Context, userID, paymentID uuid.UUID) (string, error) {
	var proofPath string

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		payment, err := repoFactory.BillingRepo().FindPaymentByID(ctx, paymentID)
		if err != nil {
			if errors.Is(err, repository.ErrPaymentNotFound) {
				return errors.Wrap(domainerrors.ErrNotFound, "payment not found")
			}

			return errors.Wrap(err, "failed to find payment")
		}
		if payment.UserID != userID {
			return errors.Wrap(domainerrors.ErrAccessDenied, "payment belongs to another user")
		}
		if payment.ProofPath == "" {
			return errors.Wrap(domainerrors.ErrNotFound, "payment has no proof")
		}
		proofPath = payment.ProofPath

		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to authorize proof download")
	}

	url, err := srv.storage.SignedURL(ctx, proofPath, proofURLExpiry)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign proof URL")
	}

	return url, nil
}

func (srv *billingService) publishChange(ctx context.Context, table string, op service.ChangeOp, rowID, businessID, userID string) {
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
