package impl

import (
	"context"
	"strings"
	"testing"
	"time"

	"bizhub/config"
	"bizhub/internal/domain/entity"
	domainerrors "bizhub/internal/domain/errors"
	"bizhub/internal/domain/repository"
	"bizhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type billingFixture struct {
	factory    *mockFactory
	cache      *passthroughCache
	changeFeed *recordingChangeFeed
	storage    *recordingStorage
	notifier   *recordingNotifier
	reviewerID uuid.UUID
	svc        usecase.BillingUsecase
}

func newBillingFixture(t *testing.T) *billingFixture {
	t.Helper()

	f := &billingFixture{
		factory:    newMockFactory(),
		cache:      &passthroughCache{},
		changeFeed: &recordingChangeFeed{},
		storage:    &recordingStorage{},
		notifier:   &recordingNotifier{},
		reviewerID: uuid.New(),
	}
	cfg := &config.Config{
		Billing: &config.BillingConfig{
			ReviewerIDs: []string{f.reviewerID.String()},
		},
	}
	f.svc = NewBillingService(
		&fakeTxManager{factory: f.factory},
		f.cache,
		f.changeFeed,
		f.storage,
		f.notifier,
		cfg,
		newDiscardLogger(),
	)

	return f
}

func activeCoupon(tier entity.Tier) *entity.Coupon {
	return &entity.Coupon{
		ID:       uuid.New(),
		Code:     "12345",
		Tier:     tier,
		IsActive: true,
	}
}

func TestBillingService_RedeemCoupon(t *testing.T) {
	f := newBillingFixture(t)
	userID := uuid.New()
	coupon := activeCoupon(entity.TierPro)
	user := individualUser(userID)

	f.factory.billingRepo.On("FindCouponByCode", mock.Anything, "12345").Return(coupon, nil)
	f.factory.userRepo.On("FindByID", mock.Anything, userID).Return(user, nil)
	f.factory.billingRepo.On("MarkCouponUsed", mock.Anything, coupon.ID, userID).Return(nil)
	f.factory.userRepo.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(p *entity.Profile) bool {
		return p.Tier == entity.TierPro
	})).Return(nil)
	f.factory.billingRepo.On("CreatePayment", mock.Anything, mock.MatchedBy(func(p *entity.PaymentTransaction) bool {
		return p.Method == "coupon" && p.Status == entity.PaymentApproved && p.CouponID != nil
	})).Return(nil)

	payment, err := f.svc.RedeemCoupon(context.Background(), userID, &usecase.RedeemCouponInput{Code: "12345"})

	require.NoError(t, err)
	assert.Equal(t, entity.TierPro, payment.Tier)
	assert.Contains(t, f.cache.invalidated, keyString(profileKey(userID.String())))
}

func TestBillingService_RedeemCoupon_VerifyBeforeMutate(t *testing.T) {
	f := newBillingFixture(t)
	userID := uuid.New()

	usedBy := uuid.New()
	usedAt := time.Now()
	used := activeCoupon(entity.TierBasic)
	used.IsUsed = true
	used.UsedBy = &usedBy
	used.UsedAt = &usedAt

	f.factory.billingRepo.On("FindCouponByCode", mock.Anything, "12345").Return(used, nil)

	_, err := f.svc.RedeemCoupon(context.Background(), userID, &usecase.RedeemCouponInput{Code: "12345"})

	assert.ErrorIs(t, err, domainerrors.ErrCouponAlreadyUsed)
	// Nothing was mutated before verification failed.
	f.factory.billingRepo.AssertNotCalled(t, "MarkCouponUsed", mock.Anything, mock.Anything, mock.Anything)
	f.factory.userRepo.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}

func TestBillingService_RedeemCoupon_Expired(t *testing.T) {
	f := newBillingFixture(t)

	expired := activeCoupon(entity.TierBasic)
	past := time.Now().Add(-time.Hour)
	expired.ExpiresAt = &past

	f.factory.billingRepo.On("FindCouponByCode", mock.Anything, "12345").Return(expired, nil)

	_, err := f.svc.RedeemCoupon(context.Background(), uuid.New(), &usecase.RedeemCouponInput{Code: "12345"})

	assert.ErrorIs(t, err, domainerrors.ErrCouponInactive)
}

func TestBillingService_RedeemCoupon_LosesGuardedUpdate(t *testing.T) {
	f := newBillingFixture(t)
	userID := uuid.New()
	coupon := activeCoupon(entity.TierPro)

	f.factory.billingRepo.On("FindCouponByCode", mock.Anything, "12345").Return(coupon, nil)
	f.factory.userRepo.On("FindByID", mock.Anything, userID).Return(individualUser(userID), nil)
	// A concurrent redemption won the guarded update.
	f.factory.billingRepo.On("MarkCouponUsed", mock.Anything, coupon.ID, userID).
		Return(repository.ErrCouponAlreadyUsed)

	_, err := f.svc.RedeemCoupon(context.Background(), userID, &usecase.RedeemCouponInput{Code: "12345"})

	assert.ErrorIs(t, err, domainerrors.ErrCouponAlreadyUsed)
	f.factory.userRepo.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}

func TestBillingService_SubmitTransfer(t *testing.T) {
	f := newBillingFixture(t)
	userID := uuid.New()

	f.factory.billingRepo.On("CreatePayment", mock.Anything, mock.MatchedBy(func(p *entity.PaymentTransaction) bool {
		return p.Method == "transfer" && p.Status == entity.PaymentPending && p.ProofPath != ""
	})).Return(nil)

	payment, err := f.svc.SubmitTransfer(context.Background(), userID, &usecase.SubmitTransferInput{
		Tier:        entity.TierBasic,
		AmountCents: 49900,
		ProofName:   "receipt.jpg",
		ProofType:   "image/jpeg",
		Proof:       strings.NewReader("binary"),
	})

	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPending, payment.Status)
	require.Len(t, f.storage.uploads, 1)
	assert.Equal(t, payment.ProofPath, f.storage.uploads[0])
}

func TestBillingService_SubmitTransfer_RowFailureDeletesBlob(t *testing.T) {
	f := newBillingFixture(t)
	userID := uuid.New()

	f.factory.billingRepo.On("CreatePayment", mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := f.svc.SubmitTransfer(context.Background(), userID, &usecase.SubmitTransferInput{
		Tier:        entity.TierBasic,
		AmountCents: 49900,
		ProofName:   "receipt.jpg",
		ProofType:   "image/jpeg",
		Proof:       strings.NewReader("binary"),
	})

	require.Error(t, err)
	require.Len(t, f.storage.deletes, 1, "orphaned proof blob is cleaned up")
	assert.Equal(t, f.storage.uploads[0], f.storage.deletes[0])
}

func TestBillingService_SubmitTransfer_FreeTrialRejected(t *testing.T) {
	f := newBillingFixture(t)

	_, err := f.svc.SubmitTransfer(context.Background(), uuid.New(), &usecase.SubmitTransferInput{
		Tier:        entity.TierFreeTrial,
		AmountCents: 1,
		Proof:       strings.NewReader("binary"),
	})

	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	assert.Empty(t, f.storage.uploads)
}

func TestBillingService_ReviewPayment_ApprovalUpgradesTier(t *testing.T) {
	f := newBillingFixture(t)
	payerID := uuid.New()
	paymentID := uuid.New()
	payer := individualUser(payerID)

	f.factory.billingRepo.On("FindPaymentByID", mock.Anything, paymentID).
		Return(&entity.PaymentTransaction{ID: paymentID, UserID: payerID, Tier: entity.TierPro, Status: entity.PaymentPending}, nil)
	f.factory.billingRepo.On("UpdatePaymentStatus", mock.Anything, paymentID, entity.PaymentApproved).Return(nil)
	f.factory.userRepo.On("FindByID", mock.Anything, payerID).Return(payer, nil)
	f.factory.userRepo.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(p *entity.Profile) bool {
		return p.Tier == entity.TierPro
	})).Return(nil)

	err := f.svc.ReviewPayment(context.Background(), f.reviewerID, paymentID, &usecase.ReviewPaymentInput{Approve: true})

	require.NoError(t, err)
	require.Len(t, f.notifier.inputs, 1)
	assert.Equal(t, entity.NotificationTypePayment, f.notifier.inputs[0].Type)
}

func TestBillingService_ReviewPayment_RejectionKeepsTier(t *testing.T) {
	f := newBillingFixture(t)
	payerID := uuid.New()
	paymentID := uuid.New()

	f.factory.billingRepo.On("FindPaymentByID", mock.Anything, paymentID).
		Return(&entity.PaymentTransaction{ID: paymentID, UserID: payerID, Tier: entity.TierPro, Status: entity.PaymentPending}, nil)
	f.factory.billingRepo.On("UpdatePaymentStatus", mock.Anything, paymentID, entity.PaymentRejected).Return(nil)

	err := f.svc.ReviewPayment(context.Background(), f.reviewerID, paymentID, &usecase.ReviewPaymentInput{Approve: false})

	require.NoError(t, err)
	f.factory.userRepo.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}

func TestBillingService_ReviewPayment_AlreadyReviewed(t *testing.T) {
	f := newBillingFixture(t)
	paymentID := uuid.New()

	f.factory.billingRepo.On("FindPaymentByID", mock.Anything, paymentID).
		Return(&entity.PaymentTransaction{ID: paymentID, Status: entity.PaymentApproved}, nil)

	err := f.svc.ReviewPayment(context.Background(), f.reviewerID, paymentID, &usecase.ReviewPaymentInput{Approve: true})

	assert.ErrorIs(t, err, domainerrors.ErrConflict)
}

func TestBillingService_ReviewPayment_NonOperatorRejected(t *testing.T) {
	f := newBillingFixture(t)
	payerID := uuid.New()
	paymentID := uuid.New()

	f.factory.billingRepo.On("FindPaymentByID", mock.Anything, paymentID).
		Return(&entity.PaymentTransaction{ID: paymentID, UserID: payerID, Tier: entity.TierPro, Status: entity.PaymentPending}, nil)

	// The payer tries to approve their own pending transfer.
	err := f.svc.ReviewPayment(context.Background(), payerID, paymentID, &usecase.ReviewPaymentInput{Approve: true})

	assert.ErrorIs(t, err, domainerrors.ErrAccessDenied)
	f.factory.billingRepo.AssertNotCalled(t, "UpdatePaymentStatus", mock.Anything, mock.Anything, mock.Anything)
	f.factory.userRepo.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}

func TestBillingService_ReviewPayment_OperatorCannotResolveOwnPayment(t *testing.T) {
	f := newBillingFixture(t)
	paymentID := uuid.New()

	// The pending transfer was submitted by the operator themselves.
	f.factory.billingRepo.On("FindPaymentByID", mock.Anything, paymentID).
		Return(&entity.PaymentTransaction{ID: paymentID, UserID: f.reviewerID, Tier: entity.TierPro, Status: entity.PaymentPending}, nil)

	err := f.svc.ReviewPayment(context.Background(), f.reviewerID, paymentID, &usecase.ReviewPaymentInput{Approve: true})

	assert.ErrorIs(t, err, domainerrors.ErrAccessDenied)
	f.factory.billingRepo.AssertNotCalled(t, "UpdatePaymentStatus", mock.Anything, mock.Anything, mock.Anything)
	f.factory.userRepo.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}

func TestBillingService_PaymentProofURL_OtherUsersPayment(t *testing.T) {
	f := newBillingFixture(t)
	paymentID := uuid.New()

	f.factory.billingRepo.On("FindPaymentByID", mock.Anything, paymentID).
		Return(&entity.PaymentTransaction{ID: paymentID, UserID: uuid.New(), ProofPath: "payment-proofs/x"}, nil)

	_, err := f.svc.PaymentProofURL(context.Background(), uuid.New(), paymentID)

	assert.ErrorIs(t, err, domainerrors.ErrAccessDenied)
}

func TestBillingService_PaymentProofURL(t *testing.T) {
	f := newBillingFixture(t)
	userID := uuid.New()
	paymentID := uuid.New()

	f.factory.billingRepo.On("FindPaymentByID", mock.Anything, paymentID).
		Return(&entity.PaymentTransaction{ID: paymentID, UserID: userID, ProofPath: "payment-proofs/p.jpg"}, nil)

	url, err := f.svc.PaymentProofURL(context.Background(), userID, paymentID)

	require.NoError(t, err)
	assert.Contains(t, url, "payment-proofs/p.jpg")
}
