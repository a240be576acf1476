// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType categorizes a notification for client-side presentation.
type NotificationType string

const (
	NotificationTypeInvitation NotificationType = "invitation"
	NotificationTypeSale       NotificationType = "sale"
	NotificationTypeStock      NotificationType = "low_stock"
	NotificationTypePayment    NotificationType = "payment"
	NotificationTypeSystem     NotificationType = "system"
)

// NotificationPriority orders notifications in the client inbox.
type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityNormal NotificationPriority = "normal"
	NotificationPriorityHigh   NotificationPriority = "high"
)

// Notification is one inbox entry for a user, optionally scoped to a business.
type Notification struct {
	ID         uuid.UUID            `json:"id"`          // The Global Unique Identifier (GUID) for the notification.
	UserID     uuid.UUID            `json:"user_id"`     // The recipient.
	BusinessID *uuid.UUID           `json:"business_id"` // Optional business scope.
	Type       NotificationType     `json:"type"`        // Category used for icon/color lookup client-side.
	Priority   NotificationPriority `json:"priority"`    // Inbox ordering hint.
	Title      string               `json:"title"`       // Short headline.
	Body       string               `json:"body"`        // Full message text.
	ReadAt     *time.Time           `json:"read_at"`     // When the user marked it read; nil while unread.
	CreatedAt  time.Time            `json:"created_at"`  // Timestamp of creation.
}

// Read reports whether the notification has been marked read.
func (n *Notification) Read() bool {
	return n.ReadAt != nil
}

// UserDevice is a registered push target for a user.
type UserDevice struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	FCMToken  string    `json:"fcm_token"` // Firebase Cloud Messaging registration token.
	Platform  string    `json:"platform"`  // "ios", "android" or "web".
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PushLog records the outcome of one push delivery attempt.
type PushLog struct {
	ID             uuid.UUID `json:"id"`
	NotificationID uuid.UUID `json:"notification_id"`
	DeviceID       uuid.UUID `json:"device_id"`
	Status         string    `json:"status"` // "sent" or "failed".
	FCMMessageID   string    `json:"fcm_message_id"`
	ErrorMessage   string    `json:"error_message"`
	SentAt         time.Time `json:"sent_at"`
}
