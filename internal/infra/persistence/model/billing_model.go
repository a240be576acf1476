package model

import (
	"time"

	"bizhub/internal/domain/constants"

	"github.com/google/uuid"
)

// CouponModel mirrors the 'coupons' table. Codes are exactly five digits and
// single-use.
type CouponModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Code      string     `gorm:"type:char(5);unique;not null"`
	Tier      string     `gorm:"type:varchar(20);not null"`
	IsActive  bool       `gorm:"not null;default:true"`
	IsUsed    bool       `gorm:"not null;default:false"`
	UsedBy    *uuid.UUID `gorm:"type:uuid"`
	UsedAt    *time.Time
	ExpiresAt *time.Time
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (CouponModel) TableName() string {
	return "coupons"
}

// PaymentTransactionModel mirrors the 'payment_transactions' table.
type PaymentTransactionModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Tier        string     `gorm:"type:varchar(20);not null"`
	AmountCents int64      `gorm:"not null"`
	Method      string     `gorm:"type:varchar(20);not null"`
	CouponID    *uuid.UUID `gorm:"type:uuid"`
	ProofPath   string     `gorm:"type:varchar(512)"`
	Status      string     `gorm:"type:varchar(10);not null;default:pending"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (PaymentTransactionModel) TableName() string {
	return constants.TablePaymentTransactions
}
