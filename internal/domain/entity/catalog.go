// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products inside a business.
type Category struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

// Product is one sellable item in a business's inventory.
type Product struct {
	ID         uuid.UUID  `json:"id"`
	BusinessID uuid.UUID  `json:"business_id"`
	CategoryID *uuid.UUID `json:"category_id"`
	Name       string     `json:"name"`
	SKU        string     `json:"sku"`       // Stock-keeping unit, unique per business.
	Barcode    string     `json:"barcode"`   // Optional scanned barcode.
	PriceCents int64      `json:"price_cents"`
	Stock      int        `json:"stock"`     // Current quantity on hand.
	ImagePath  string     `json:"image_path"` // Blob-storage key for the product image.
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Sale is one completed point-of-sale transaction with its line items.
type Sale struct {
	ID            uuid.UUID  `json:"id"`
	BusinessID    uuid.UUID  `json:"business_id"`
	CashierID     uuid.UUID  `json:"cashier_id"`     // The user who rang up the sale.
	ReceiptNumber string     `json:"receipt_number"` // Human-readable receipt reference.
	TotalCents    int64      `json:"total_cents"`
	PaymentMethod string     `json:"payment_method"` // "cash", "card", "mobile".
	Items         []SaleItem `json:"items"`
	CreatedAt     time.Time  `json:"created_at"`
}

// SaleItem is one line on a sale.
type SaleItem struct {
	ID             uuid.UUID `json:"id"`
	SaleID         uuid.UUID `json:"sale_id"`
	ProductID      uuid.UUID `json:"product_id"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
}
