package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"bizhub/config"
	"bizhub/internal/domain/entity"
	"bizhub/internal/domain/repository"
	"bizhub/internal/domain/service"
	"bizhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Hand-rolled testify mocks for the domain interfaces, plus light fakes for
// the side channels (cache, buses). A fakeTxManager executes the closure
// against a factory of mocks, so tests see exactly the repository calls a
// real transaction would.

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig(maxActiveSessions int) *config.Config {
	cfg := &config.Config{}
	cfg.Auth = &config.AuthConfig{MaxActiveSessions: maxActiveSessions}

	return cfg
}

// --- transaction plumbing ---

type mockFactory struct {
	userRepo         *mockUserRepo
	credentialRepo   *mockCredentialRepo
	refreshTokenRepo *mockRefreshTokenRepo
	businessRepo     *mockBusinessRepo
	accessRepo       *mockAccessRepo
	invitationRepo   *mockInvitationRepo
	verificationRepo *mockVerificationRepo
	notificationRepo *mockNotificationRepo
	deviceRepo       *mockDeviceRepo
	billingRepo      *mockBillingRepo
	catalogRepo      *mockCatalogRepo
}

func newMockFactory() *mockFactory {
	return &mockFactory{
		userRepo:         &mockUserRepo{},
		credentialRepo:   &mockCredentialRepo{},
		refreshTokenRepo: &mockRefreshTokenRepo{},
		businessRepo:     &mockBusinessRepo{},
		accessRepo:       &mockAccessRepo{},
		invitationRepo:   &mockInvitationRepo{},
		verificationRepo: &mockVerificationRepo{},
		notificationRepo: &mockNotificationRepo{},
		deviceRepo:       &mockDeviceRepo{},
		billingRepo:      &mockBillingRepo{},
		catalogRepo:      &mockCatalogRepo{},
	}
}

func (f *mockFactory) UserRepo() repository.UserRepository                 { return f.userRepo }
func (f *mockFactory) CredentialRepo() repository.CredentialRepository     { return f.credentialRepo }
func (f *mockFactory) RefreshTokenRepo() repository.RefreshTokenRepository { return f.refreshTokenRepo }
func (f *mockFactory) BusinessRepo() repository.BusinessRepository         { return f.businessRepo }
func (f *mockFactory) AccessRepo() repository.AccessRepository             { return f.accessRepo }
func (f *mockFactory) InvitationRepo() repository.InvitationRepository     { return f.invitationRepo }
func (f *mockFactory) VerificationRepo() repository.VerificationRepository { return f.verificationRepo }
func (f *mockFactory) NotificationRepo() repository.NotificationRepository { return f.notificationRepo }
func (f *mockFactory) DeviceRepo() repository.DeviceRepository             { return f.deviceRepo }
func (f *mockFactory) BillingRepo() repository.BillingRepository           { return f.billingRepo }
func (f *mockFactory) CatalogRepo() repository.CatalogRepository           { return f.catalogRepo }

// fakeTxManager runs the closure directly against the mock factory. A
// returned error stands for a rollback; there is nothing to roll back here.
type fakeTxManager struct {
	factory *mockFactory
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(m.factory)
}

// --- repositories ---

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, profile *entity.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

type mockCredentialRepo struct{ mock.Mock }

func (m *mockCredentialRepo) Create(ctx context.Context, credential *entity.Credential) error {
	return m.Called(ctx, credential).Error(0)
}

func (m *mockCredentialRepo) Find(ctx context.Context, provider, identifier string) (*entity.Credential, error) {
	args := m.Called(ctx, provider, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Credential), args.Error(1)
}

func (m *mockCredentialRepo) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	return m.Called(ctx, userID, passwordHash).Error(0)
}

type mockRefreshTokenRepo struct{ mock.Mock }

func (m *mockRefreshTokenRepo) Create(ctx context.Context, token *entity.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockRefreshTokenRepo) FindByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.RefreshToken), args.Error(1)
}

func (m *mockRefreshTokenRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.RefreshToken), args.Error(1)
}

func (m *mockRefreshTokenRepo) DeleteByHash(ctx context.Context, tokenHash string) error {
	return m.Called(ctx, tokenHash).Error(0)
}

func (m *mockRefreshTokenRepo) DeleteByID(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *mockRefreshTokenRepo) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockRefreshTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)

	return args.Get(0).(int64), args.Error(1)
}

type mockBusinessRepo struct{ mock.Mock }

func (m *mockBusinessRepo) Create(ctx context.Context, business *entity.Business) error {
	return m.Called(ctx, business).Error(0)
}

func (m *mockBusinessRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Business), args.Error(1)
}

func (m *mockBusinessRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Business, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.Business), args.Error(1)
}

func (m *mockBusinessRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*entity.Business, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.Business), args.Error(1)
}

func (m *mockBusinessRepo) Update(ctx context.Context, business *entity.Business) error {
	return m.Called(ctx, business).Error(0)
}

type mockAccessRepo struct{ mock.Mock }

func (m *mockAccessRepo) CreateGrant(ctx context.Context, grant *entity.BusinessAccess) error {
	return m.Called(ctx, grant).Error(0)
}

func (m *mockAccessRepo) FindGrant(ctx context.Context, businessID, userID uuid.UUID) (*entity.BusinessAccess, error) {
	args := m.Called(ctx, businessID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.BusinessAccess), args.Error(1)
}

func (m *mockAccessRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]*entity.BusinessAccess, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.BusinessAccess), args.Error(1)
}

func (m *mockAccessRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.BusinessAccess, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.BusinessAccess), args.Error(1)
}

func (m *mockAccessRepo) DeleteGrant(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockInvitationRepo struct{ mock.Mock }

func (m *mockInvitationRepo) Create(ctx context.Context, invitation *entity.Invitation) error {
	return m.Called(ctx, invitation).Error(0)
}

func (m *mockInvitationRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Invitation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Invitation), args.Error(1)
}

func (m *mockInvitationRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]*entity.Invitation, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.Invitation), args.Error(1)
}

func (m *mockInvitationRepo) ListPendingByEmail(ctx context.Context, email string) ([]*entity.Invitation, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.Invitation), args.Error(1)
}

func (m *mockInvitationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.InvitationStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

type mockVerificationRepo struct{ mock.Mock }

func (m *mockVerificationRepo) Create(ctx context.Context, verification *entity.EmailVerification) error {
	return m.Called(ctx, verification).Error(0)
}

func (m *mockVerificationRepo) FindByHash(ctx context.Context, tokenHash, purpose string) (*entity.EmailVerification, error) {
	args := m.Called(ctx, tokenHash, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.EmailVerification), args.Error(1)
}

func (m *mockVerificationRepo) MarkUsed(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockNotificationRepo struct{ mock.Mock }

func (m *mockNotificationRepo) Create(ctx context.Context, notification *entity.Notification) error {
	return m.Called(ctx, notification).Error(0)
}

func (m *mockNotificationRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Notification), args.Error(1)
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entity.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.Notification), args.Error(1)
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)

	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *mockNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)

	return args.Get(0).(int64), args.Error(1)
}

type mockDeviceRepo struct{ mock.Mock }

func (m *mockDeviceRepo) UpsertDevice(ctx context.Context, device *entity.UserDevice) error {
	return m.Called(ctx, device).Error(0)
}

func (m *mockDeviceRepo) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*entity.UserDevice, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.UserDevice), args.Error(1)
}

func (m *mockDeviceRepo) DeactivateByToken(ctx context.Context, fcmToken string) error {
	return m.Called(ctx, fcmToken).Error(0)
}

func (m *mockDeviceRepo) BatchCreatePushLogs(ctx context.Context, logs []*entity.PushLog) error {
	return m.Called(ctx, logs).Error(0)
}

type mockBillingRepo struct{ mock.Mock }

func (m *mockBillingRepo) FindCouponByCode(ctx context.Context, code string) (*entity.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Coupon), args.Error(1)
}

func (m *mockBillingRepo) MarkCouponUsed(ctx context.Context, id, usedBy uuid.UUID) error {
	return m.Called(ctx, id, usedBy).Error(0)
}

func (m *mockBillingRepo) CreatePayment(ctx context.Context, payment *entity.PaymentTransaction) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *mockBillingRepo) FindPaymentByID(ctx context.Context, id uuid.UUID) (*entity.PaymentTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.PaymentTransaction), args.Error(1)
}

func (m *mockBillingRepo) ListPaymentsByUser(ctx context.Context, userID uuid.UUID) ([]*entity.PaymentTransaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.PaymentTransaction), args.Error(1)
}

func (m *mockBillingRepo) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status entity.PaymentStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

type mockCatalogRepo struct{ mock.Mock }

func (m *mockCatalogRepo) CreateProduct(ctx context.Context, product *entity.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockCatalogRepo) FindProductByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *mockCatalogRepo) ListProductsByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*entity.Product, error) {
	args := m.Called(ctx, businessID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.Product), args.Error(1)
}

func (m *mockCatalogRepo) UpdateProduct(ctx context.Context, product *entity.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockCatalogRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCatalogRepo) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	return m.Called(ctx, productID, quantity).Error(0)
}

func (m *mockCatalogRepo) CreateSale(ctx context.Context, sale *entity.Sale) error {
	return m.Called(ctx, sale).Error(0)
}

func (m *mockCatalogRepo) FindSaleByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Sale), args.Error(1)
}

func (m *mockCatalogRepo) ListSalesByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*entity.Sale, error) {
	args := m.Called(ctx, businessID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.Sale), args.Error(1)
}

// --- domain services ---

type mockHasher struct{ mock.Mock }

func (m *mockHasher) Hash(password string) (string, error) {
	args := m.Called(password)

	return args.String(0), args.Error(1)
}

func (m *mockHasher) Check(password, hash string) bool {
	return m.Called(password, hash).Bool(0)
}

func (m *mockHasher) ValidatePasswordStrength(password string) error {
	return m.Called(password).Error(0)
}

type mockTokenService struct{ mock.Mock }

func (m *mockTokenService) GenerateTokens(userID uuid.UUID, accountType entity.AccountType) (string, string, error) {
	args := m.Called(userID, accountType)

	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockTokenService) ValidateAccessToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*service.Claims), args.Error(1)
}

func (m *mockTokenService) ValidateRefreshToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*service.Claims), args.Error(1)
}

func (m *mockTokenService) HashToken(token string) string {
	return m.Called(token).String(0)
}

func (m *mockTokenService) GetRefreshTokenDuration() time.Duration {
	return m.Called().Get(0).(time.Duration)
}

type mockPushSender struct{ mock.Mock }

func (m *mockPushSender) SendSingle(ctx context.Context, token, title, body string, data map[string]string) error {
	return m.Called(ctx, token, title, body, data).Error(0)
}

func (m *mockPushSender) SendBatch(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, int, []string, error) {
	args := m.Called(ctx, tokens, title, body, data)
	var invalid []string
	if args.Get(2) != nil {
		invalid = args.Get(2).([]string)
	}

	return args.Int(0), args.Int(1), invalid, args.Error(3)
}

type mockQRService struct{ mock.Mock }

func (m *mockQRService) GenerateInvitationQR(invitationID uuid.UUID) ([]byte, error) {
	args := m.Called(invitationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockQRService) ParseInvitationQR(qrData string) (uuid.UUID, error) {
	args := m.Called(qrData)

	return args.Get(0).(uuid.UUID), args.Error(1)
}

// --- side-channel fakes ---

// passthroughCache always misses and runs the loader inline.
type passthroughCache struct {
	mu          sync.Mutex
	invalidated []string
	cleared     []string
	userClears  []string
	sets        []string
}

func (c *passthroughCache) GetOrLoad(ctx context.Context, _ service.CacheKey, _ service.CacheTier, load service.LoadFunc) (any, error) {
	return load(ctx)
}

func (c *passthroughCache) Peek(service.CacheKey) (any, bool) { return nil, false }

func (c *passthroughCache) Set(key service.CacheKey, _ service.CacheTier, _ any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets = append(c.sets, keyString(key))
}

func (c *passthroughCache) Invalidate(key service.CacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, keyString(key))
}

func (c *passthroughCache) ClearByPattern(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared = append(c.cleared, pattern)

	return 0
}

func (c *passthroughCache) InvalidateUserCache(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userClears = append(c.userClears, id)

	return 0
}

func (c *passthroughCache) ClearAll() {}

func (c *passthroughCache) Status() service.CacheStatus { return service.CacheStatus{} }

func (c *passthroughCache) LastUpdatedAt(service.CacheKey) (time.Time, bool) {
	return time.Time{}, false
}

func keyString(key service.CacheKey) string {
	out := ""
	for i, part := range key {
		if i > 0 {
			out += "/"
		}
		out += part
	}

	return out
}

// recordingSessionBus collects published events.
type recordingSessionBus struct {
	mu     sync.Mutex
	events []service.SessionEvent
}

func (b *recordingSessionBus) Publish(event service.SessionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingSessionBus) Subscribe(func(service.SessionEvent)) {}

// recordingChangeFeed collects published change events.
type recordingChangeFeed struct {
	mu     sync.Mutex
	events []*service.ChangeEvent
}

func (f *recordingChangeFeed) PublishChange(_ context.Context, event *service.ChangeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)

	return nil
}

func (f *recordingChangeFeed) Close() error { return nil }

// recordingEventPublisher collects push dispatch events.
type recordingEventPublisher struct {
	mu     sync.Mutex
	events []*service.PushDispatchEvent
	err    error
}

func (p *recordingEventPublisher) PublishDispatchEvent(_ context.Context, event *service.PushDispatchEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)

	return nil
}

func (p *recordingEventPublisher) Close() error { return nil }

// recordingStorage collects uploaded keys and serves canned URLs.
type recordingStorage struct {
	mu        sync.Mutex
	uploads   []string
	deletes   []string
	uploadErr error
}

func (s *recordingStorage) Upload(_ context.Context, key, _ string, _ io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.uploads = append(s.uploads, key)

	return nil
}

func (s *recordingStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, key)

	return nil
}

func (s *recordingStorage) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.example.com/" + key + "?signed", nil
}

// recordingNotifier implements usecase.NotificationUsecase for services that
// only call Notify.
type recordingNotifier struct {
	mu     sync.Mutex
	inputs []*usecase.NotifyInput
}

func (n *recordingNotifier) Notify(_ context.Context, input *usecase.NotifyInput) (*entity.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.inputs = append(n.inputs, input)

	return &entity.Notification{ID: uuid.New(), UserID: input.UserID, Title: input.Title}, nil
}

func (n *recordingNotifier) ListNotifications(context.Context, uuid.UUID, bool, int, int) ([]*entity.Notification, error) {
	return nil, nil
}

func (n *recordingNotifier) UnreadCount(context.Context, uuid.UUID) (int64, error) { return 0, nil }

func (n *recordingNotifier) MarkRead(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (n *recordingNotifier) MarkAllRead(context.Context, uuid.UUID) (int64, error) { return 0, nil }

func (n *recordingNotifier) RegisterDevice(context.Context, uuid.UUID, *usecase.RegisterDeviceInput) error {
	return nil
}

func (n *recordingNotifier) DispatchPush(context.Context, *usecase.DispatchPushInput) error {
	return nil
}

// Interface compliance for the fakes.
var (
	_ repository.RepositoryFactory  = (*mockFactory)(nil)
	_ repository.TransactionManager = (*fakeTxManager)(nil)
	_ service.QueryCache            = (*passthroughCache)(nil)
	_ service.SessionEventBus       = (*recordingSessionBus)(nil)
	_ service.ChangeFeedPublisher   = (*recordingChangeFeed)(nil)
	_ service.EventPublisher        = (*recordingEventPublisher)(nil)
	_ service.FileStorage           = (*recordingStorage)(nil)
	_ service.PushSender            = (*mockPushSender)(nil)
	_ service.QRCodeService         = (*mockQRService)(nil)
	_ usecase.NotificationUsecase   = (*recordingNotifier)(nil)
)
