// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"bizhub/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for notification persistence.
var (
	// ErrNotificationNotFound is returned when a notification is not found.
	ErrNotificationNotFound = errors.New("notification not found")
	// ErrDeviceNotFound is returned when a device registration is not found.
	ErrDeviceNotFound = errors.New("device not found")
)

// NotificationRepository defines operations for notification persistence.
type NotificationRepository interface {
	// Create persists a new notification.
	Create(ctx context.Context, notification *entity.Notification) error

	// FindByID retrieves a notification by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error)

	// ListByUser retrieves notifications for a user, newest first. When
	// unreadOnly is set, read notifications are filtered out.
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entity.Notification, error)

	// CountUnread returns the number of unread notifications for a user.
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)

	// MarkRead stamps one notification as read. Marking an already-read
	// notification is a no-op.
	MarkRead(ctx context.Context, id, userID uuid.UUID) error

	// MarkAllRead stamps every unread notification for a user as read and
	// reports how many were updated.
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// DeviceRepository stores push targets and delivery logs.
type DeviceRepository interface {
	// UpsertDevice registers a device or refreshes its FCM token.
	UpsertDevice(ctx context.Context, device *entity.UserDevice) error

	// ListActiveByUser retrieves active devices for a user.
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*entity.UserDevice, error)

	// DeactivateByToken disables devices whose FCM token was rejected upstream.
	DeactivateByToken(ctx context.Context, fcmToken string) error

	// BatchCreatePushLogs persists delivery outcomes in one batch.
	BatchCreatePushLogs(ctx context.Context, logs []*entity.PushLog) error
}
