// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"bizhub/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// NotifyInput defines the data required to create a notification for a user.
type NotifyInput struct {
	UserID     uuid.UUID                   `json:"user_id" validate:"required"`
	BusinessID *uuid.UUID                  `json:"business_id,omitempty"`
	Type       entity.NotificationType     `json:"type" validate:"required"`
	Priority   entity.NotificationPriority `json:"priority"`
	Title      string                      `json:"title" validate:"required"`
	Body       string                      `json:"body"`
}

// RegisterDeviceInput registers a push target for the signed-in user.
type RegisterDeviceInput struct {
	FCMToken string `json:"fcm_token" validate:"required"`
	Platform string `json:"platform" validate:"required,oneof=ios android web"`
}

// DispatchPushInput is consumed by the worker when a dispatch event arrives.
type DispatchPushInput struct {
	NotificationID uuid.UUID
	UserID         uuid.UUID
	Title          string
	Body           string
	Type           string
	Priority       string
}

// NotificationUsecase defines the interface for the notification inbox and
// push dispatch.
type NotificationUsecase interface {
	// Notify persists a notification and queues an async push dispatch. The
	// write succeeds even when the queue publish fails.
	Notify(ctx context.Context, input *NotifyInput) (*entity.Notification, error)

	// ListNotifications retrieves the user's inbox, newest first, served
	// through the SHORT cache tier.
	ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entity.Notification, error)

	// UnreadCount reports the unread badge count.
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)

	// MarkRead marks one notification read. Repeating the call is a no-op.
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error

	// MarkAllRead marks the whole inbox read and reports how many changed.
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)

	// RegisterDevice stores an FCM push target for the user.
	RegisterDevice(ctx context.Context, userID uuid.UUID, input *RegisterDeviceInput) error

	// DispatchPush fans a notification out to the user's active devices and
	// records per-device outcomes. Invalid tokens are deactivated.
	DispatchPush(ctx context.Context, input *DispatchPushInput) error
}
