// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"
	"io"

	"bizhub/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// CreateProductInput defines the data required to add a product.
type CreateProductInput struct {
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	Name       string     `json:"name" validate:"required"`
	SKU        string     `json:"sku" validate:"required"`
	Barcode    string     `json:"barcode"`
	PriceCents int64      `json:"price_cents" validate:"gte=0"`
	Stock      int        `json:"stock" validate:"gte=0"`
}

// UpdateProductInput defines the data to change on a product. Nil fields are
// left untouched.
type UpdateProductInput struct {
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	Name       *string    `json:"name,omitempty"`
	SKU        *string    `json:"sku,omitempty"`
	Barcode    *string    `json:"barcode,omitempty"`
	PriceCents *int64     `json:"price_cents,omitempty"`
	Stock      *int       `json:"stock,omitempty"`
}

// SaleItemInput is one line of a sale being rung up.
type SaleItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// CreateSaleInput defines a point-of-sale checkout.
type CreateSaleInput struct {
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=cash card mobile"`
	Items         []SaleItemInput `json:"items" validate:"required,min=1,dive"`
}

// CatalogUsecase defines the interface for inventory and point-of-sale
// operations. Every operation checks the caller's access to the business.
type CatalogUsecase interface {
	// CreateProduct adds a product to the business inventory.
	CreateProduct(ctx context.Context, userID, businessID uuid.UUID, input *CreateProductInput) (*entity.Product, error)

	// GetProduct retrieves one product.
	GetProduct(ctx context.Context, userID, businessID, productID uuid.UUID) (*entity.Product, error)

	// ListProducts retrieves the inventory, served through the MEDIUM cache
	// tier.
	ListProducts(ctx context.Context, userID, businessID uuid.UUID, limit, offset int) ([]*entity.Product, error)

	// UpdateProduct applies a partial update. Last writer wins.
	UpdateProduct(ctx context.Context, userID, businessID, productID uuid.UUID, input *UpdateProductInput) (*entity.Product, error)

	// DeleteProduct removes a product from the inventory.
	DeleteProduct(ctx context.Context, userID, businessID, productID uuid.UUID) error

	// UploadProductImage stores a product image blob and records its key.
	UploadProductImage(ctx context.Context, userID, businessID, productID uuid.UUID, contentType string, content io.Reader) (*entity.Product, error)

	// CreateSale rings up a sale: every line's stock is decremented and the
	// sale recorded in one transaction, so overselling the last unit fails
	// the whole checkout.
	CreateSale(ctx context.Context, userID, businessID uuid.UUID, input *CreateSaleInput) (*entity.Sale, error)

	// GetSale retrieves a sale with its line items.
	GetSale(ctx context.Context, userID, businessID, saleID uuid.UUID) (*entity.Sale, error)

	// ListSales retrieves the sales history, newest first, served through
	// the SHORT cache tier.
	ListSales(ctx context.Context, userID, businessID uuid.UUID, limit, offset int) ([]*entity.Sale, error)
}
