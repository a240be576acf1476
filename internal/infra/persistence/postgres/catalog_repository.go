// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"bizhub/internal/domain/entity"
	domainerrors "bizhub/internal/domain/errors"
	"bizhub/internal/domain/repository"
	"bizhub/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// catalogRepository implements the repository.CatalogRepository interface.
type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository is the constructor for catalogRepository.
func NewCatalogRepository(db *gorm.DB) repository.CatalogRepository {
	return &catalogRepository{
		db: db,
	}
}

// CreateProduct persists a new product.
func (repo *catalogRepository) CreateProduct(ctx context.Context, product *entity.Product) error {
	productM := fromProductDomain(product)

	if err := repo.db.WithContext(ctx).Create(productM).Error; err != nil {
		// The unique index on (business_id, sku) keeps SKUs unique per business.
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("duplicate SKU for business")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrBusinessNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create product")
	}

	// Update the entity with generated values
	product.ID = productM.ID
	product.CreatedAt = productM.CreatedAt
	product.UpdatedAt = productM.UpdatedAt

	return nil
}

// FindProductByID retrieves a product by its unique ID.
func (repo *catalogRepository) FindProductByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var productM model.ProductModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&productM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProductNotFound
		}

		return nil, errors.Wrap(err, "failed to find product by ID")
	}

	return toProductDomain(&productM), nil
}

// ListProductsByBusiness retrieves products for a business.
func (repo *catalogRepository) ListProductsByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*entity.Product, error) {
	var productModels []*model.ProductModel

	query := repo.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("name ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&productModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list products by business")
	}

	products := make([]*entity.Product, 0, len(productModels))
	for _, productM := range productModels {
		products = append(products, toProductDomain(productM))
	}

	return products, nil
}

// UpdateProduct modifies an existing product. Last writer wins.
func (repo *catalogRepository) UpdateProduct(ctx context.Context, product *entity.Product) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ProductModel{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"category_id": product.CategoryID,
			"name":        product.Name,
			"sku":         product.SKU,
			"barcode":     product.Barcode,
			"price_cents": product.PriceCents,
			"stock":       product.Stock,
			"image_path":  product.ImagePath,
		})

	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return domainerrors.ErrConflict.WrapMessage("duplicate SKU for business")
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update product")
	}

	if result.RowsAffected == 0 {
		return repository.ErrProductNotFound
	}

	return nil
}

// DeleteProduct removes a product.
func (repo *catalogRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.ProductModel{})

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete product")
	}

	if result.RowsAffected == 0 {
		return repository.ErrProductNotFound
	}

	return nil
}

// DecrementStock atomically reduces stock. The stock guard in the WHERE
// clause means a concurrent sale of the last unit fails instead of driving
// stock negative.
func (repo *catalogRepository) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ProductModel{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to decrement stock")
	}

	if result.RowsAffected == 0 {
		// Distinguish missing product from insufficient stock.
		var count int64
		if err := repo.db.WithContext(ctx).
			Model(&model.ProductModel{}).
			Where("id = ?", productID).
			Count(&count).Error; err != nil {
			return errors.Wrap(err, "failed to check product existence")
		}
		if count == 0 {
			return repository.ErrProductNotFound
		}

		return repository.ErrStockConflict
	}

	return nil
}

// CreateSale persists a sale with its line items.
func (repo *catalogRepository) CreateSale(ctx context.Context, sale *entity.Sale) error {
	saleM := fromSaleDomain(sale)

	if err := repo.db.WithContext(ctx).Create(saleM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrBusinessNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create sale")
	}

	// Update the entity with generated values
	sale.ID = saleM.ID
	sale.CreatedAt = saleM.CreatedAt
	for i := range saleM.Items {
		sale.Items[i].ID = saleM.Items[i].ID
		sale.Items[i].SaleID = saleM.ID
	}

	return nil
}

// FindSaleByID retrieves a sale with its line items.
func (repo *catalogRepository) FindSaleByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	var saleM model.SaleModel

	if err := repo.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&saleM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSaleNotFound
		}

		return nil, errors.Wrap(err, "failed to find sale by ID")
	}

	return toSaleDomain(&saleM), nil
}

// ListSalesByBusiness retrieves sales for a business, newest first.
func (repo *catalogRepository) ListSalesByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*entity.Sale, error) {
	var saleModels []*model.SaleModel

	query := repo.db.WithContext(ctx).
		Preload("Items").
		Where("business_id = ?", businessID).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&saleModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list sales by business")
	}

	sales := make([]*entity.Sale, 0, len(saleModels))
	for _, saleM := range saleModels {
		sales = append(sales, toSaleDomain(saleM))
	}

	return sales, nil
}

// toProductDomain converts a persistence model to a domain entity.
func toProductDomain(data *model.ProductModel) *entity.Product {
	return &entity.Product{
		ID:         data.ID,
		BusinessID: data.BusinessID,
		CategoryID: data.CategoryID,
		Name:       data.Name,
		SKU:        data.SKU,
		Barcode:    data.Barcode,
		PriceCents: data.PriceCents,
		Stock:      data.Stock,
		ImagePath:  data.ImagePath,
		CreatedAt:  data.CreatedAt,
		UpdatedAt:  data.UpdatedAt,
	}
}

// fromProductDomain converts a domain entity to a persistence model.
func fromProductDomain(data *entity.Product) *model.ProductModel {
	return &model.ProductModel{
		ID:         data.ID,
		BusinessID: data.BusinessID,
		CategoryID: data.CategoryID,
		Name:       data.Name,
		SKU:        data.SKU,
		Barcode:    data.Barcode,
		PriceCents: data.PriceCents,
		Stock:      data.Stock,
		ImagePath:  data.ImagePath,
	}
}

// toSaleDomain converts a persistence model to a domain entity.
func toSaleDomain(data *model.SaleModel) *entity.Sale {
	items := make([]entity.SaleItem, 0, len(data.Items))
	for _, itemM := range data.Items {
		items = append(items, entity.SaleItem{
			ID:             itemM.ID,
			SaleID:         itemM.SaleID,
			ProductID:      itemM.ProductID,
			Quantity:       itemM.Quantity,
			UnitPriceCents: itemM.UnitPriceCents,
		})
	}

	return &entity.Sale{
		ID:            data.ID,
		BusinessID:    data.BusinessID,
		CashierID:     data.CashierID,
		ReceiptNumber: data.ReceiptNumber,
		TotalCents:    data.TotalCents,
		PaymentMethod: data.PaymentMethod,
		Items:         items,
		CreatedAt:     data.CreatedAt,
	}
}

// fromSaleDomain converts a domain entity to a persistence model.
func fromSaleDomain(data *entity.Sale) *model.SaleModel {
	items := make([]model.SaleItemModel, 0, len(data.Items))
	for _, item := range data.Items {
		items = append(items, model.SaleItemModel{
			ID:             item.ID,
			SaleID:         item.SaleID,
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}

	return &model.SaleModel{
		ID:            data.ID,
		BusinessID:    data.BusinessID,
		CashierID:     data.CashierID,
		ReceiptNumber: data.ReceiptNumber,
		TotalCents:    data.TotalCents,
		PaymentMethod: data.PaymentMethod,
		Items:         items,
	}
}
