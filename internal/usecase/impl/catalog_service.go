package impl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	deliverycontext "bizhub/internal/delivery/context"
	"bizhub/internal/domain/constants"
	"bizhub/internal/domain/entity"
	domainerrors "bizhub/internal/domain/errors"
	"bizhub/internal/domain/repository"
	"bizhub/internal/domain/service"
	"bizhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	defaultCatalogPageSize = 50

	// lowStockThreshold triggers a stock notification for the business owner.
	lowStockThreshold = 5
)

// catalogService implements the CatalogUsecase interface.
type catalogService struct {
	txManager  repository.TransactionManager
	cache      service.QueryCache
	changeFeed service.ChangeFeedPublisher
	storage    service.FileStorage
	notifier   usecase.NotificationUsecase
	logger     *slog.Logger
}

// NewCatalogService is the constructor for catalogService.
func NewCatalogService(
	txManager repository.TransactionManager,
	cache service.QueryCache,
	changeFeed service.ChangeFeedPublisher,
	storage service.FileStorage,
	notifier usecase.NotificationUsecase,
	logger *slog.Logger,
) usecase.CatalogUsecase {
	return &catalogService{
		txManager:  txManager,
		cache:      cache,
		changeFeed: changeFeed,
		storage:    storage,
		notifier:   notifier,
		logger:     logger,
	}
}

// log returns the request-scoped logger when the delivery layer put one on
// the context, falling back to the service's own.
func (srv *catalogService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateProduct adds a product to the business inventory. Owner or manager
// only.
func (srv *catalogService) CreateProduct(ctx context.Context, userID, businessID uuid.UUID, input *usecase.CreateProductInput) (*entity.Product, error) {
	srv.log(ctx).Info("Creating product", slog.Any("businessID", businessID), slog.String("sku", input.SKU))

	var product *entity.Product

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := srv.requireRole(ctx, repoFactory, businessID, userID, entity.AccessRoleOwner, entity.AccessRoleManager); err != nil {
			return err
		}

		newProduct := &entity.Product{
			BusinessID: businessID,
			CategoryID: input.CategoryID,
			Name:       input.Name,
			SKU:        input.SKU,
			Barcode:    input.Barcode,
			PriceCents: input.PriceCents,
			Stock:      input.Stock,
		}
		if err := repoFactory.CatalogRepo().CreateProduct(ctx, newProduct); err != nil {
			return errors.Wrap(err, "failed to create product")
		}
		product = newProduct

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute create product transaction")
	}

	srv.cache.Invalidate(productsKey(businessID.String()))
	srv.publishChange(ctx, constants.TableProducts, service.ChangeInsert, product.ID.String(), businessID.String(), userID.String())

	return product, nil
}

// GetProduct retrieves one product after checking access and scope.
func (srv *catalogService) GetProduct(ctx context.Context, userID, businessID, productID uuid.UUID) (*entity.Product, error) {
	var product *entity.Product

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := srv.requireAccess(ctx, repoFactory, businessID, userID); err != nil {
			return err
		}

		found, err := srv.productInBusiness(ctx, repoFactory, businessID, productID)
		if err != nil {
			return err
		}
		product = found

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute get product transaction")
	}

	return product, nil
}

// ListProducts retrieves the inventory, served through the MEDIUM cache
// tier. Only the first page is cached.
func (srv *catalogService) ListProducts(ctx context.Context, userID, businessID uuid.UUID, limit, offset int) ([]*entity.Product, error) {
	if limit <= 0 {
		limit = defaultCatalogPageSize
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return srv.requireAccess(ctx, repoFactory, businessID, userID)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to authorize product listing")
	}

	if offset > 0 {
		return srv.listProductsDirect(ctx, businessID, limit, offset)
	}

	value, err := srv.cache.GetOrLoad(ctx, productsKey(businessID.String()), service.TierMedium, func(loadCtx context.Context) (any, error) {
		return srv.listProductsDirect(loadCtx, businessID, limit, 0)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	products, ok := value.([]*entity.Product)
	if !ok {
		srv.cache.Invalidate(productsKey(businessID.String()))

		return srv.listProductsDirect(ctx, businessID, limit, 0)
	}

	return products, nil
}

func (srv *catalogService) listProductsDirect(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*entity.Product, error) {
	var products []*entity.Product
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.CatalogRepo().ListProductsByBusiness(ctx, businessID, limit, offset)
		if err != nil {
			return errors.Wrap(err, "failed to list products")
		}
		products = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return products, nil
}

// UpdateProduct applies a partial update. Owner or manager only; last writer
// wins.
func (srv *catalogService) UpdateProduct(ctx context.Context, userID, businessID, productID uuid.UUID, input *usecase.UpdateProductInput) (*entity.Product, error) {
	var product *entity.Product

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := srv.requireRole(ctx, repoFactory, businessID, userID, entity.AccessRoleOwner, entity.AccessRoleManager); err != nil {
			return err
		}

		found, err := srv.productInBusiness(ctx, repoFactory, businessID, productID)
		if err != nil {
			return err
		}

		if input.CategoryID != nil {
			found.CategoryID = input.CategoryID
		}
		if input.Name != nil {
			found.Name = *input.Name
		}
		if input.SKU != nil {
			found.SKU = *input.SKU
		}
		if input.Barcode != nil {
			found.Barcode = *input.Barcode
		}
		if input.PriceCents != nil {
			found.PriceCents = *input.PriceCents
		}
		if input.Stock != nil {
			found.Stock = *input.Stock
		}

		if err := repoFactory.CatalogRepo().UpdateProduct(ctx, found); err != nil {
			return errors.Wrap(err, "failed to update product")
		}
		product = found

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute update product transaction")
	}

	srv.cache.Invalidate(productsKey(businessID.String()))
	srv.publishChange(ctx, constants.TableProducts, service.ChangeUpdate, productID.String(), businessID.String(), userID.String())

	return product, nil
}

// DeleteProduct removes a product from the inventory. Owner or manager only.
func (srv *catalogService) DeleteProduct(ctx context.Context, userID, businessID, productID uuid.UUID) error {
	srv.log(ctx).Info("Deleting product", slog.Any("businessID", businessID), slog.Any("productID", productID))

	var imagePath string

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := srv.requireRole(ctx, repoFactory, businessID, userID, entity.AccessRoleOwner, entity.AccessRoleManager); err != nil {
			return err
		}

		found, err := srv.productInBusiness(ctx, repoFactory, businessID, productID)
		if err != nil {
			return err
		}
		imagePath = found.ImagePath

		return errors.WithStack(repoFactory.CatalogRepo().DeleteProduct(ctx, productID))
	})
	if err != nil {
		return errors.Wrap(err, "failed to execute delete product transaction")
	}

	if imagePath != "" {
		if err := srv.storage.Delete(ctx, imagePath); err != nil {
			srv.log(ctx).Warn("Failed to delete product image", slog.String("key", imagePath), slog.Any("error", err))
		}
	}

	srv.cache.Invalidate(productsKey(businessID.String()))
	srv.publishChange(ctx, constants.TableProducts, service.ChangeDelete, productID.String(), businessID.String(), userID.String())

	return nil
}

// UploadProductImage stores a product image blob and records its key.
func (srv *catalogService) UploadProductImage(ctx context.Context, userID, businessID, productID uuid.UUID, contentType string, content io.Reader) (*entity.Product, error) {
	imageKey := path.Join("product-images", businessID.String(), productID.String())

	var product *entity.Product

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := srv.requireRole(ctx, repoFactory, businessID, userID, entity.AccessRoleOwner, entity.AccessRoleManager); err != nil {
			return err
		}

		found, err := srv.productInBusiness(ctx, repoFactory, businessID, productID)
		if err != nil {
			return err
		}

		if err := srv.storage.Upload(ctx, imageKey, contentType, content); err != nil {
			return errors.Wrap(err, "failed to upload product image")
		}

		found.ImagePath = imageKey
		if err := repoFactory.CatalogRepo().UpdateProduct(ctx, found); err != nil {
			return errors.Wrap(err, "failed to record image path")
		}
		product = found

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute image upload transaction")
	}

	srv.cache.Invalidate(productsKey(businessID.String()))
	srv.publishChange(ctx, constants.TableProducts, service.ChangeUpdate, productID.String(), businessID.String(), userID.String())

	return product, nil
}

// CreateSale rings up a sale. Every line's stock decrement and the sale row
// share one transaction, so overselling the last unit rolls the whole
// checkout back.
func (srv *catalogService) CreateSale(ctx context.Context, userID, businessID uuid.UUID, input *usecase.CreateSaleInput) (*entity.Sale, error) {
	srv.log(ctx).Info("Creating sale", slog.Any("businessID", businessID), slog.Any("items", len(input.Items)))

	var sale *entity.Sale
	var lowStock []*entity.Product
	var ownerID uuid.UUID

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := srv.requireAccess(ctx, repoFactory, businessID, userID); err != nil {
			return err
		}
		catalogRepo := repoFactory.CatalogRepo()

		business, err := repoFactory.BusinessRepo().FindByID(ctx, businessID)
		if err != nil {
			return errors.Wrap(err, "failed to find business")
		}
		ownerID = business.OwnerID

		var totalCents int64
		items := make([]entity.SaleItem, 0, len(input.Items))

		for _, line := range input.Items {
			product, err := srv.productInBusiness(ctx, repoFactory, businessID, line.ProductID)
			if err != nil {
				return err
			}

			if err := catalogRepo.DecrementStock(ctx, product.ID, line.Quantity); err != nil {
				if errors.Is(err, repository.ErrStockConflict) {
					return domainerrors.ErrInsufficientStock.WrapMessage(fmt.Sprintf("insufficient stock for %s", product.Name))
				}

				return errors.Wrap(err, "failed to decrement stock")
			}

			remaining := product.Stock - line.Quantity
			if remaining <= lowStockThreshold {
				lowStock = append(lowStock, product)
			}

			totalCents += product.PriceCents * int64(line.Quantity)
			items = append(items, entity.SaleItem{
				ProductID:      product.ID,
				Quantity:       line.Quantity,
				UnitPriceCents: product.PriceCents,
			})
		}

		newSale := &entity.Sale{
			BusinessID:    businessID,
			CashierID:     userID,
			ReceiptNumber: newReceiptNumber(),
			TotalCents:    totalCents,
			PaymentMethod: input.PaymentMethod,
			Items:         items,
		}
		if err := catalogRepo.CreateSale(ctx, newSale); err != nil {
			return errors.Wrap(err, "failed to create sale")
		}
		sale = newSale

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute create sale transaction")
	}

	srv.cache.Invalidate(salesKey(businessID.String()))
	srv.cache.Invalidate(productsKey(businessID.String()))
	srv.publishChange(ctx, constants.TableSales, service.ChangeInsert, sale.ID.String(), businessID.String(), userID.String())

	for _, product := range lowStock {
		if _, err := srv.notifier.Notify(ctx, &usecase.NotifyInput{
			UserID:     ownerID,
			BusinessID: &businessID,
			Type:       entity.NotificationTypeStock,
			Priority:   entity.NotificationPriorityNormal,
			Title:      "Low stock",
			Body:       fmt.Sprintf("%s is running low.", product.Name),
		}); err != nil {
			srv.log(ctx).Warn("Failed to send low stock notification", slog.Any("productID", product.ID), slog.Any("error", err))
		}
	}

	return sale, nil
}

// GetSale retrieves a sale with its line items.
func (srv *catalogService) GetSale(ctx context.Context, userID, businessID, saleID uuid.UUID) (*entity.Sale, error) {
	var sale *entity.Sale

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := srv.requireAccess(ctx, repoFactory, businessID, userID); err != nil {
			return err
		}

		found, err := repoFactory.CatalogRepo().FindSaleByID(ctx, saleID)
		if err != nil {
			if errors.Is(err, repository.ErrSaleNotFound) {
				return errors.Wrap(domainerrors.ErrNotFound, "sale not found")
			}

			return errors.Wrap(err, "failed to find sale")
		}
		if found.BusinessID != businessID {
			return errors.Wrap(domainerrors.ErrNotFound, "sale not found in business")
		}
		sale = found

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute get sale transaction")
	}

	return sale, nil
}

// ListSales retrieves the sales history, newest first, served through the
// SHORT cache tier. Only the first page is cached.
func (srv *catalogService) ListSales(ctx context.Context, userID, businessID uuid.UUID, limit, offset int) ([]*entity.Sale, error) {
	if limit <= 0 {
		limit = defaultCatalogPageSize
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return srv.requireAccess(ctx, repoFactory, businessID, userID)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to authorize sales listing")
	}

	if offset > 0 {
		return srv.listSalesDirect(ctx, businessID, limit, offset)
	}

	value, err := srv.cache.GetOrLoad(ctx, salesKey(businessID.String()), service.TierShort, func(loadCtx context.Context) (any, error) {
		return srv.listSalesDirect(loadCtx, businessID, limit, 0)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sales")
	}

	sales, ok := value.([]*entity.Sale)
	if !ok {
		srv.cache.Invalidate(salesKey(businessID.String()))

		return srv.listSalesDirect(ctx, businessID, limit, 0)
	}

	return sales, nil
}

func (srv *catalogService) listSalesDirect(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*entity.Sale, error) {
	var sales []*entity.Sale
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.CatalogRepo().ListSalesByBusiness(ctx, businessID, limit, offset)
		if err != nil {
			return errors.Wrap(err, "failed to list sales")
		}
		sales = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return sales, nil
}

// productInBusiness loads a product and verifies it belongs to the business.
// Cross-tenant IDs read as not found, never as forbidden.
func (srv *catalogService) productInBusiness(ctx context.Context, repoFactory repository.RepositoryFactory, businessID, productID uuid.UUID) (*entity.Product, error) {
	product, err := repoFactory.CatalogRepo().FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, errors.Wrap(domainerrors.ErrProductNotFound, "product not found")
		}

		return nil, errors.Wrap(err, "failed to find product")
	}
	if product.BusinessID != businessID {
		return nil, errors.Wrap(domainerrors.ErrProductNotFound, "product not found in business")
	}

	return product, nil
}

func (srv *catalogService) requireAccess(ctx context.Context, repoFactory repository.RepositoryFactory, businessID, userID uuid.UUID) error {
	_, err := repoFactory.AccessRepo().FindGrant(ctx, businessID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrAccessNotFound) {
			return errors.Wrap(domainerrors.ErrAccessDenied, "no access to business")
		}

		return errors.Wrap(err, "failed to find grant")
	}

	return nil
}

func (srv *catalogService) requireRole(ctx context.Context, repoFactory repository.RepositoryFactory, businessID, userID uuid.UUID, roles ...entity.AccessRole) error {
	grant, err := repoFactory.AccessRepo().FindGrant(ctx, businessID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrAccessNotFound) {
			return errors.Wrap(domainerrors.ErrAccessDenied, "no access to business")
		}

		return errors.Wrap(err, "failed to find grant")
	}
	for _, role := range roles {
		if grant.Role == role {
			return nil
		}
	}

	return errors.Wrap(domainerrors.ErrAccessDenied, "role may not perform this operation")
}

// newReceiptNumber builds a human-readable receipt reference.
func newReceiptNumber() string {
	return fmt.Sprintf("R-%s-%s", time.Now().Format("20060102"), uuid.NewString()[:8])
}

func (srv *catalogService) publishChange(ctx context.Context, table string, op service.ChangeOp, rowID, businessID, userID string) {
	event := &service.ChangeEvent{
		Table:      table,
		Op:         op,
		RowID:      rowID,
		BusinessID: businessID,
		UserID:     userID,
	}
	if err := srv.changeFeed.PublishChange(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish change event", slog.String("table", table), slog.Any("error", err))
	}
}
