package impl

import (
	"context"
	"log/slog"
	"slices"
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

const defaultInboxPageSize = 20

// notificationService implements the NotificationUsecase interface.
type notificationService struct {
	txManager  repository.TransactionManager
	cache      service.QueryCache
	changeFeed service.ChangeFeedPublisher
	publisher  service.EventPublisher
	pushSender service.PushSender // nil disables push delivery
	logger     *slog.Logger
}

// NewNotificationService is the constructor for notificationService. The
// pushSender is only wired in the worker process; the API passes nil.
func NewNotificationService(
	txManager repository.TransactionManager,
	cache service.QueryCache,
	changeFeed service.ChangeFeedPublisher,
	publisher service.EventPublisher,
	pushSender service.PushSender,
	logger *slog.Logger,
) usecase.NotificationUsecase {
	return &notificationService{
		txManager:  txManager,
		cache:      cache,
		changeFeed: changeFeed,
		publisher:  publisher,
		pushSender: pushSender,
		logger:     logger,
	}
}

// log returns the request-scoped logger when the delivery layer put one on
// the context, falling back to the service's own.
func (srv *notificationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Notify persists a notification and queues an async push dispatch. The
// inbox row is the source of truth; a failed queue publish only means no
// push, never a lost notification.
func (srv *notificationService) Notify(ctx context.Context, input *usecase.NotifyInput) (*entity.Notification, error) {
	priority := input.Priority
	if priority == "" {
		priority = entity.NotificationPriorityNormal
	}

	notification := &entity.Notification{
		UserID:     input.UserID,
		BusinessID: input.BusinessID,
		Type:       input.Type,
		Priority:   priority,
		Title:      input.Title,
		Body:       input.Body,
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return errors.WithStack(repoFactory.NotificationRepo().Create(ctx, notification))
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create notification")
	}

	srv.cache.Invalidate(notificationsKey(input.UserID.String()))
	srv.publishChange(ctx, constants.TableNotifications, service.ChangeInsert, notification.ID.String(), "", input.UserID.String())

	event := &service.PushDispatchEvent{
		NotificationID: notification.ID.String(),
		UserID:         input.UserID.String(),
		Title:          input.Title,
		Body:           input.Body,
		Type:           string(input.Type),
		Priority:       string(priority),
	}
	if err := srv.publisher.PublishDispatchEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to queue push dispatch", slog.Any("notificationID", notification.ID), slog.Any("error", err))
	}

	return notification, nil
}

// ListNotifications retrieves the user's inbox, newest first, served through
// the SHORT cache tier. Only the first unfiltered page is cached; filtered
// and paged reads go straight to the store.
func (srv *notificationService) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entity.Notification, error) {
	if limit <= 0 {
		limit = defaultInboxPageSize
	}

	if unreadOnly || offset > 0 {
		return srv.listDirect(ctx, userID, unreadOnly, limit, offset)
	}

	value, err := srv.cache.GetOrLoad(ctx, notificationsKey(userID.String()), service.TierShort, func(loadCtx context.Context) (any, error) {
		return srv.listDirect(loadCtx, userID, false, limit, 0)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list notifications")
	}

	notifications, ok := value.([]*entity.Notification)
	if !ok {
		srv.cache.Invalidate(notificationsKey(userID.String()))

		return srv.listDirect(ctx, userID, false, limit, 0)
	}

	return notifications, nil
}

func (srv *notificationService) listDirect(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entity.Notification, error) {
	var notifications []*entity.Notification
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.NotificationRepo().ListByUser(ctx, userID, unreadOnly, limit, offset)
		if err != nil {
			return errors.Wrap(err, "failed to list notifications")
		}
		notifications = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return notifications, nil
}

// UnreadCount reports the unread badge count.
func (srv *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.NotificationRepo().CountUnread(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to count unread notifications")
		}
		count = found

		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to execute unread count transaction")
	}

	return count, nil
}

// MarkRead marks one notification read. Repeating the call is a no-op.
func (srv *notificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		err := repoFactory.NotificationRepo().MarkRead(ctx, notificationID, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotificationNotFound) {
				return errors.Wrap(domainerrors.ErrNotificationNotFound, "notification not found")
			}

			return errors.Wrap(err, "failed to mark notification read")
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to execute mark read transaction")
	}

	srv.cache.Invalidate(notificationsKey(userID.String()))
	srv.publishChange(ctx, constants.TableNotifications, service.ChangeUpdate, notificationID.String(), "", userID.String())

	return nil
}

// MarkAllRead marks the whole inbox read and reports how many changed.
func (srv *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	var updated int64

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		count, err := repoFactory.NotificationRepo().MarkAllRead(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to mark all read")
		}
		updated = count

		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to execute mark all read transaction")
	}

	if updated > 0 {
		srv.cache.Invalidate(notificationsKey(userID.String()))
		srv.publishChange(ctx, constants.TableNotifications, service.ChangeUpdate, userID.String(), "", userID.String())
	}

	return updated, nil
}

// RegisterDevice stores an FCM push target for the user. A token moving
// between accounts is reassigned, not duplicated.
func (srv *notificationService) RegisterDevice(ctx context.Context, userID uuid.UUID, input *usecase.RegisterDeviceInput) error {
	srv.log(ctx).Info("Registering device", slog.Any("userID", userID), slog.Any("platform", input.Platform))

	return srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		device := &entity.UserDevice{
			UserID:   userID,
			FCMToken: input.FCMToken,
			Platform: input.Platform,
			IsActive: true,
		}

		return errors.WithStack(repoFactory.DeviceRepo().UpsertDevice(ctx, device))
	})
}

// DispatchPush fans a notification out to the user's active devices and
// records per-device outcomes. Tokens the provider rejects as invalid are
// deactivated so they are not retried forever.
func (srv *notificationService) DispatchPush(ctx context.Context, input *usecase.DispatchPushInput) error {
	if srv.pushSender == nil {
		srv.log(ctx).Debug("Push sender not configured, skipping dispatch", slog.Any("notificationID", input.NotificationID))

		return nil
	}

	var devices []*entity.UserDevice
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.DeviceRepo().ListActiveByUser(ctx, input.UserID)
		if err != nil {
			return errors.Wrap(err, "failed to list devices")
		}
		devices = found

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to load push targets")
	}
	if len(devices) == 0 {
		srv.log(ctx).Debug("No active devices for user", slog.Any("userID", input.UserID))

		return nil
	}

	tokens := make([]string, 0, len(devices))
	for _, device := range devices {
		tokens = append(tokens, device.FCMToken)
	}

	data := map[string]string{
		"notification_id": input.NotificationID.String(),
		"type":            input.Type,
		"priority":        input.Priority,
	}

	successCount, failureCount, invalidTokens, err := srv.pushSender.SendBatch(ctx, tokens, input.Title, input.Body, data)
	if err != nil {
		return errors.Wrap(err, "failed to send push batch")
	}
	srv.log(ctx).Info("Push dispatch completed",
		slog.Any("notificationID", input.NotificationID),
		slog.Int("success", successCount),
		slog.Int("failure", failureCount),
		slog.Int("invalid", len(invalidTokens)))

	now := time.Now()
	logs := make([]*entity.PushLog, 0, len(devices))
	for _, device := range devices {
		status := "sent"
		errorMessage := ""
		if slices.Contains(invalidTokens, device.FCMToken) {
			status = "failed"
			errorMessage = "invalid or unregistered token"
		}
		logs = append(logs, &entity.PushLog{
			NotificationID: input.NotificationID,
			DeviceID:       device.ID,
			Status:         status,
			ErrorMessage:   errorMessage,
			SentAt:         now,
		})
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		deviceRepo := repoFactory.DeviceRepo()

		if err := deviceRepo.BatchCreatePushLogs(ctx, logs); err != nil {
			return errors.Wrap(err, "failed to record push logs")
		}
		for _, token := range invalidTokens {
			if err := deviceRepo.DeactivateByToken(ctx, token); err != nil {
				return errors.Wrap(err, "failed to deactivate invalid token")
			}
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to record dispatch outcome")
	}

	return nil
}

func (srv *notificationService) publishChange(ctx context.Context, table string, op service.ChangeOp, rowID, businessID, userID string) {
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
