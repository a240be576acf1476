// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"bizhub/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for catalog persistence.
var (
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")
	// ErrSaleNotFound is returned when a sale is not found.
	ErrSaleNotFound = errors.New("sale not found")
	// ErrStockConflict is returned when a stock decrement would go negative.
	ErrStockConflict = errors.New("insufficient stock")
)

// CatalogRepository defines operations for product and sale persistence.
type CatalogRepository interface {
	// CreateProduct persists a new product.
	CreateProduct(ctx context.Context, product *entity.Product) error

	// FindProductByID retrieves a product by its unique ID.
	FindProductByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)

	// ListProductsByBusiness retrieves products for a business.
	ListProductsByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*entity.Product, error)

	// UpdateProduct modifies an existing product. Last writer wins.
	UpdateProduct(ctx context.Context, product *entity.Product) error

	// DeleteProduct removes a product.
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	// DecrementStock atomically reduces stock, failing with ErrStockConflict
	// when quantity exceeds the remaining stock.
	DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error

	// CreateSale persists a sale with its line items.
	CreateSale(ctx context.Context, sale *entity.Sale) error

	// FindSaleByID retrieves a sale with its line items.
	FindSaleByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error)

	// ListSalesByBusiness retrieves sales for a business, newest first.
	ListSalesByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*entity.Sale, error)
}
