package model

import (
	"time"

	"bizhub/internal/domain/constants"

	"github.com/google/uuid"
)

// NotificationModel mirrors the 'notifications' table. ReadAt is nil while
// the notification is unread.
type NotificationModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	BusinessID *uuid.UUID `gorm:"type:uuid;index"`
	Type       string     `gorm:"type:varchar(30);not null"`
	Priority   string     `gorm:"type:varchar(10);not null;default:normal"`
	Title      string     `gorm:"type:varchar(255);not null"`
	Body       string     `gorm:"type:text"`
	ReadAt     *time.Time `gorm:"index"`
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (NotificationModel) TableName() string {
	return constants.TableNotifications
}

// UserDeviceModel mirrors the 'user_devices' table. FCM tokens are unique so
// a token handed to a new login is moved, not duplicated.
type UserDeviceModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	FCMToken  string    `gorm:"column:fcm_token;type:varchar(512);unique;not null"`
	Platform  string    `gorm:"type:varchar(10);not null"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserDeviceModel) TableName() string {
	return "user_devices"
}

// PushLogModel mirrors the 'push_logs' table, one row per delivery attempt.
type PushLogModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	NotificationID uuid.UUID `gorm:"type:uuid;not null;index"`
	DeviceID       uuid.UUID `gorm:"type:uuid;not null"`
	Status         string    `gorm:"type:varchar(10);not null"`
	FCMMessageID   string    `gorm:"column:fcm_message_id;type:varchar(255)"`
	ErrorMessage   string    `gorm:"type:text"`
	SentAt         time.Time
}

// TableName explicitly sets the table name for GORM.
func (PushLogModel) TableName() string {
	return "push_logs"
}
