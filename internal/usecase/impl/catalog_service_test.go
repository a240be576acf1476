package impl

import (
	"context"
	"strings"
	"testing"

	"bizhub/internal/domain/entity"
	domainerrors "bizhub/internal/domain/errors"
	"bizhub/internal/domain/repository"
	"bizhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type catalogFixture struct {
	factory    *mockFactory
	cache      *passthroughCache
	changeFeed *recordingChangeFeed
	storage    *recordingStorage
	notifier   *recordingNotifier
	svc        usecase.CatalogUsecase
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()

	f := &catalogFixture{
		factory:    newMockFactory(),
		cache:      &passthroughCache{},
		changeFeed: &recordingChangeFeed{},
		storage:    &recordingStorage{},
		notifier:   &recordingNotifier{},
	}
	f.svc = NewCatalogService(
		&fakeTxManager{factory: f.factory},
		f.cache,
		f.changeFeed,
		f.storage,
		f.notifier,
		newDiscardLogger(),
	)

	return f
}

func productIn(businessID uuid.UUID, name string, priceCents int64, stock int) *entity.Product {
	return &entity.Product{
		ID:         uuid.New(),
		BusinessID: businessID,
		Name:       name,
		SKU:        "SKU-" + name,
		PriceCents: priceCents,
		Stock:      stock,
	}
}

func TestCatalogService_CreateProduct_StaffForbidden(t *testing.T) {
	f := newCatalogFixture(t)
	userID := uuid.New()
	businessID := uuid.New()

	f.factory.accessRepo.On("FindGrant", mock.Anything, businessID, userID).
		Return(grantFor(businessID, userID, entity.AccessRoleStaff), nil)

	_, err := f.svc.CreateProduct(context.Background(), userID, businessID, &usecase.CreateProductInput{
		Name: "Latte", SKU: "LAT-1", PriceCents: 450,
	})

	assert.ErrorIs(t, err, domainerrors.ErrAccessDenied)
	f.factory.catalogRepo.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
}

func TestCatalogService_CreateProduct(t *testing.T) {
	f := newCatalogFixture(t)
	userID := uuid.New()
	businessID := uuid.New()

	f.factory.accessRepo.On("FindGrant", mock.Anything, businessID, userID).
		Return(grantFor(businessID, userID, entity.AccessRoleManager), nil)
	f.factory.catalogRepo.On("CreateProduct", mock.Anything, mock.MatchedBy(func(p *entity.Product) bool {
		return p.BusinessID == businessID && p.SKU == "LAT-1"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Product).ID = uuid.New()
	}).Return(nil)

	product, err := f.svc.CreateProduct(context.Background(), userID, businessID, &usecase.CreateProductInput{
		Name: "Latte", SKU: "LAT-1", PriceCents: 450, Stock: 10,
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, product.ID)
	assert.Contains(t, f.cache.invalidated, keyString(productsKey(businessID.String())))
}

func TestCatalogService_GetProduct_CrossTenantReadsAsNotFound(t *testing.T) {
	f := newCatalogFixture(t)
	userID := uuid.New()
	businessID := uuid.New()
	foreign := productIn(uuid.New(), "Foreign", 100, 1)

	f.factory.accessRepo.On("FindGrant", mock.Anything, businessID, userID).
		Return(grantFor(businessID, userID, entity.AccessRoleStaff), nil)
	f.factory.catalogRepo.On("FindProductByID", mock.Anything, foreign.ID).Return(foreign, nil)

	_, err := f.svc.GetProduct(context.Background(), userID, businessID, foreign.ID)

	assert.ErrorIs(t, err, domainerrors.ErrProductNotFound)
}

func TestCatalogService_CreateSale(t *testing.T) {
	f := newCatalogFixture(t)
	cashierID := uuid.New()
	ownerID := uuid.New()
	businessID := uuid.New()
	latte := productIn(businessID, "Latte", 450, 10)
	scone := productIn(businessID, "Scone", 300, 8)

	f.factory.accessRepo.On("FindGrant", mock.Anything, businessID, cashierID).
		Return(grantFor(businessID, cashierID, entity.AccessRoleStaff), nil)
	f.factory.businessRepo.On("FindByID", mock.Anything, businessID).
		Return(&entity.Business{ID: businessID, OwnerID: ownerID}, nil)
	f.factory.catalogRepo.On("FindProductByID", mock.Anything, latte.ID).Return(latte, nil)
	f.factory.catalogRepo.On("FindProductByID", mock.Anything, scone.ID).Return(scone, nil)
	f.factory.catalogRepo.On("DecrementStock", mock.Anything, latte.ID, 2).Return(nil)
	f.factory.catalogRepo.On("DecrementStock", mock.Anything, scone.ID, 1).Return(nil)
	f.factory.catalogRepo.On("CreateSale", mock.Anything, mock.MatchedBy(func(s *entity.Sale) bool {
		return s.TotalCents == 2*450+300 && len(s.Items) == 2 && s.CashierID == cashierID
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Sale).ID = uuid.New()
	}).Return(nil)

	sale, err := f.svc.CreateSale(context.Background(), cashierID, businessID, &usecase.CreateSaleInput{
		PaymentMethod: "cash",
		Items: []usecase.SaleItemInput{
			{ProductID: latte.ID, Quantity: 2},
			{ProductID: scone.ID, Quantity: 1},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1200), sale.TotalCents)
	assert.NotEmpty(t, sale.ReceiptNumber)
	// The unit price on the line is the price at sale time.
	assert.Equal(t, int64(450), sale.Items[0].UnitPriceCents)
}

func TestCatalogService_CreateSale_InsufficientStockFailsWholeCheckout(t *testing.T) {
	f := newCatalogFixture(t)
	cashierID := uuid.New()
	businessID := uuid.New()
	latte := productIn(businessID, "Latte", 450, 10)
	lastScone := productIn(businessID, "Scone", 300, 1)

	f.factory.accessRepo.On("FindGrant", mock.Anything, businessID, cashierID).
		Return(grantFor(businessID, cashierID, entity.AccessRoleStaff), nil)
	f.factory.businessRepo.On("FindByID", mock.Anything, businessID).
		Return(&entity.Business{ID: businessID, OwnerID: uuid.New()}, nil)
	f.factory.catalogRepo.On("FindProductByID", mock.Anything, latte.ID).Return(latte, nil)
	f.factory.catalogRepo.On("FindProductByID", mock.Anything, lastScone.ID).Return(lastScone, nil)
	f.factory.catalogRepo.On("DecrementStock", mock.Anything, latte.ID, 1).Return(nil)
	f.factory.catalogRepo.On("DecrementStock", mock.Anything, lastScone.ID, 2).
		Return(repository.ErrStockConflict)

	_, err := f.svc.CreateSale(context.Background(), cashierID, businessID, &usecase.CreateSaleInput{
		PaymentMethod: "card",
		Items: []usecase.SaleItemInput{
			{ProductID: latte.ID, Quantity: 1},
			{ProductID: lastScone.ID, Quantity: 2},
		},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientStock)
	f.factory.catalogRepo.AssertNotCalled(t, "CreateSale", mock.Anything, mock.Anything)
}

func TestCatalogService_CreateSale_LowStockNotifiesOwner(t *testing.T) {
	f := newCatalogFixture(t)
	cashierID := uuid.New()
	ownerID := uuid.New()
	businessID := uuid.New()
	// 6 in stock, selling 2 leaves 4, below the threshold of 5.
	scone := productIn(businessID, "Scone", 300, 6)

	f.factory.accessRepo.On("FindGrant", mock.Anything, businessID, cashierID).
		Return(grantFor(businessID, cashierID, entity.AccessRoleStaff), nil)
	f.factory.businessRepo.On("FindByID", mock.Anything, businessID).
		Return(&entity.Business{ID: businessID, OwnerID: ownerID}, nil)
	f.factory.catalogRepo.On("FindProductByID", mock.Anything, scone.ID).Return(scone, nil)
	f.factory.catalogRepo.On("DecrementStock", mock.Anything, scone.ID, 2).Return(nil)
	f.factory.catalogRepo.On("CreateSale", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.CreateSale(context.Background(), cashierID, businessID, &usecase.CreateSaleInput{
		PaymentMethod: "cash",
		Items:         []usecase.SaleItemInput{{ProductID: scone.ID, Quantity: 2}},
	})

	require.NoError(t, err)
	require.Len(t, f.notifier.inputs, 1)
	assert.Equal(t, ownerID, f.notifier.inputs[0].UserID)
	assert.Equal(t, entity.NotificationTypeStock, f.notifier.inputs[0].Type)
}

func TestCatalogService_DeleteProduct_RemovesImage(t *testing.T) {
	f := newCatalogFixture(t)
	userID := uuid.New()
	businessID := uuid.New()
	product := productIn(businessID, "Latte", 450, 10)
	product.ImagePath = "product-images/x/y"

	f.factory.accessRepo.On("FindGrant", mock.Anything, businessID, userID).
		Return(grantFor(businessID, userID, entity.AccessRoleOwner), nil)
	f.factory.catalogRepo.On("FindProductByID", mock.Anything, product.ID).Return(product, nil)
	f.factory.catalogRepo.On("DeleteProduct", mock.Anything, product.ID).Return(nil)

	err := f.svc.DeleteProduct(context.Background(), userID, businessID, product.ID)

	require.NoError(t, err)
	assert.Contains(t, f.storage.deletes, "product-images/x/y")
}

func TestCatalogService_UploadProductImage(t *testing.T) {
	f := newCatalogFixture(t)
	userID := uuid.New()
	businessID := uuid.New()
	product := productIn(businessID, "Latte", 450, 10)

	f.factory.accessRepo.On("FindGrant", mock.Anything, businessID, userID).
		Return(grantFor(businessID, userID, entity.AccessRoleManager), nil)
	f.factory.catalogRepo.On("FindProductByID", mock.Anything, product.ID).Return(product, nil)
	f.factory.catalogRepo.On("UpdateProduct", mock.Anything, mock.MatchedBy(func(p *entity.Product) bool {
		return p.ImagePath != ""
	})).Return(nil)

	updated, err := f.svc.UploadProductImage(context.Background(), userID, businessID, product.ID, "image/png", strings.NewReader("png"))

	require.NoError(t, err)
	assert.NotEmpty(t, updated.ImagePath)
	assert.Contains(t, f.storage.uploads, updated.ImagePath)
}

func TestCatalogService_GetSale_ScopedToBusiness(t *testing.T) {
	f := newCatalogFixture(t)
	userID := uuid.New()
	businessID := uuid.New()
	foreignSale := &entity.Sale{ID: uuid.New(), BusinessID: uuid.New()}

	f.factory.accessRepo.On("FindGrant", mock.Anything, businessID, userID).
		Return(grantFor(businessID, userID, entity.AccessRoleStaff), nil)
	f.factory.catalogRepo.On("FindSaleByID", mock.Anything, foreignSale.ID).Return(foreignSale, nil)

	_, err := f.svc.GetSale(context.Background(), userID, businessID, foreignSale.ID)

	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCatalogService_ListProducts(t *testing.T) {
	f := newCatalogFixture(t)
	userID := uuid.New()
	businessID := uuid.New()

	f.factory.accessRepo.On("FindGrant", mock.Anything, businessID, userID).
		Return(grantFor(businessID, userID, entity.AccessRoleStaff), nil)
	f.factory.catalogRepo.On("ListProductsByBusiness", mock.Anything, businessID, 50, 0).
		Return([]*entity.Product{productIn(businessID, "Latte", 450, 10)}, nil)

	products, err := f.svc.ListProducts(context.Background(), userID, businessID, 0, 0)

	require.NoError(t, err)
	assert.Len(t, products, 1)
}
