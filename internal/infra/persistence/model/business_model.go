package model

import (
	"time"

	"bizhub/internal/domain/constants"

	"github.com/google/uuid"
)

// BusinessModel mirrors the 'businesses' table.
type BusinessModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Currency  string    `gorm:"type:varchar(3);not null"`
	Address   string    `gorm:"type:text"`
	Phone     string    `gorm:"type:varchar(30)"`
	CreatedAt time.Time
	UpdatedAt time.Time

	AccessGrants []BusinessAccessModel `gorm:"foreignKey:BusinessID"`
}

// TableName explicitly sets the table name for GORM.
func (BusinessModel) TableName() string {
	return constants.TableBusinesses
}

// BusinessAccessModel mirrors the 'business_access' table. One row per
// user-business pair, enforced by a unique index.
type BusinessAccessModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	BusinessID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_access_business_user"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_access_business_user"`
	Role           string    `gorm:"type:varchar(20);not null"`
	InvitationType string    `gorm:"type:varchar(30)"`
	GrantedBy      uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (BusinessAccessModel) TableName() string {
	return constants.TableBusinessAccess
}

// InvitationModel mirrors the 'business_invitations' table. Expiry is derived
// at read time; the stored status stays "pending" until a response or a write
// path observes the expiry.
type InvitationModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	BusinessID   uuid.UUID `gorm:"type:uuid;not null;index"`
	InviterID    uuid.UUID `gorm:"type:uuid;not null"`
	InviteeEmail string    `gorm:"type:varchar(255);not null;index"`
	Role         string    `gorm:"type:varchar(20);not null"`
	Status       string    `gorm:"type:varchar(20);not null;default:pending"`
	ExpiresAt    time.Time `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (InvitationModel) TableName() string {
	return constants.TableInvitations
}
