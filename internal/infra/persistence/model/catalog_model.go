package model

import (
	"time"

	"bizhub/internal/domain/constants"

	"github.com/google/uuid"
)

// CategoryModel mirrors the 'categories' table.
type CategoryModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(100);not null"`
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (CategoryModel) TableName() string {
	return "categories"
}

// ProductModel mirrors the 'products' table. SKU is unique per business.
type ProductModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	BusinessID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_products_business_sku"`
	CategoryID *uuid.UUID `gorm:"type:uuid;index"`
	Name       string     `gorm:"type:varchar(255);not null"`
	SKU        string     `gorm:"column:sku;type:varchar(64);not null;uniqueIndex:idx_products_business_sku"`
	Barcode    string     `gorm:"type:varchar(64);index"`
	PriceCents int64      `gorm:"not null"`
	Stock      int        `gorm:"not null;default:0"`
	ImagePath  string     `gorm:"type:varchar(512)"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (ProductModel) TableName() string {
	return constants.TableProducts
}

// SaleModel mirrors the 'sales' table.
type SaleModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	BusinessID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CashierID     uuid.UUID `gorm:"type:uuid;not null"`
	ReceiptNumber string    `gorm:"type:varchar(40);not null;index"`
	TotalCents    int64     `gorm:"not null"`
	PaymentMethod string    `gorm:"type:varchar(20);not null"`
	CreatedAt     time.Time

	Items []SaleItemModel `gorm:"foreignKey:SaleID"`
}

// TableName explicitly sets the table name for GORM.
func (SaleModel) TableName() string {
	return constants.TableSales
}

// SaleItemModel mirrors the 'sale_items' table, one row per receipt line.
type SaleItemModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	SaleID         uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null"`
	Quantity       int       `gorm:"not null"`
	UnitPriceCents int64     `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (SaleItemModel) TableName() string {
	return "sale_items"
}
