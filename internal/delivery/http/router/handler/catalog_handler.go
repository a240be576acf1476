package handler

import (
	"log/slog"
	"net/http"

	"bizhub/internal/delivery/http/response"
	"bizhub/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// maxProductImageSize caps uploaded product images at 5 MiB.
const maxProductImageSize = 5 << 20

// CatalogHandler holds dependencies for inventory and point-of-sale handlers.
type CatalogHandler struct {
	uc     usecase.CatalogUsecase
	logger *slog.Logger
}

// NewCatalogHandler is the constructor for CatalogHandler.
func NewCatalogHandler(uc usecase.CatalogUsecase, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		uc:     uc,
		logger: logger,
	}
}

// CreateProduct adds a product to the business inventory.
func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}
	businessID, err := pathUUID(c, "businessID")
	if err != nil {
		return err
	}

	var input *usecase.CreateProductInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid product input")
	}
	if err := c.Validate(input); err != nil {
		return err
	}

	product, err := h.uc.CreateProduct(c.Request().Context(), userID, businessID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Created(c, product, "Product created successfully")
}

// GetProduct retrieves one product.
func (h *CatalogHandler) GetProduct(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}
	businessID, err := pathUUID(c, "businessID")
	if err != nil {
		return err
	}
	productID, err := pathUUID(c, "productID")
	if err != nil {
		return err
	}

	product, err := h.uc.GetProduct(c.Request().Context(), userID, businessID, productID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, product, "Product retrieved successfully")
}

// ListProducts lists the business inventory.
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}
	businessID, err := pathUUID(c, "businessID")
	if err != nil {
		return err
	}

	limit := queryInt(c, "limit", 0)
	offset := queryInt(c, "offset", 0)

	products, err := h.uc.ListProducts(c.Request().Context(), userID, businessID, limit, offset)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, products, "Products retrieved successfully")
}

// UpdateProduct applies a partial update to a product.
func (h *CatalogHandler) UpdateProduct(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}
	businessID, err := pathUUID(c, "businessID")
	if err != nil {
		return err
	}
	productID, err := pathUUID(c, "productID")
	if err != nil {
		return err
	}

	var input *usecase.UpdateProductInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid product input")
	}

	product, err := h.uc.UpdateProduct(c.Request().Context(), userID, businessID, productID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, product, "Product updated successfully")
}

// DeleteProduct removes a product from the inventory.
func (h *CatalogHandler) DeleteProduct(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}
	businessID, err := pathUUID(c, "businessID")
	if err != nil {
		return err
	}
	productID, err := pathUUID(c, "productID")
	if err != nil {
		return err
	}

	if err := h.uc.DeleteProduct(c.Request().Context(), userID, businessID, productID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Product deleted"}, "Product deleted successfully")
}

// UploadProductImage stores a product image from a multipart form with the
// file attached as the "image" part.
func (h *CatalogHandler) UploadProductImage(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}
	businessID, err := pathUUID(c, "businessID")
	if err != nil {
		return err
	}
	productID, err := pathUUID(c, "productID")
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Product image file is required")
	}
	if fileHeader.Size > maxProductImageSize {
		return response.BadRequest(c, "FILE_TOO_LARGE", "Product image exceeds the size limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return errors.WithStack(err)
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	product, err := h.uc.UploadProductImage(c.Request().Context(), userID, businessID, productID, contentType, file)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, product, "Product image uploaded successfully")
}

// CreateSale rings up a point-of-sale checkout.
func (h *CatalogHandler) CreateSale(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}
	businessID, err := pathUUID(c, "businessID")
	if err != nil {
		return err
	}

	var input *usecase.CreateSaleInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid sale input")
	}
	if err := c.Validate(input); err != nil {
		return err
	}

	sale, err := h.uc.CreateSale(c.Request().Context(), userID, businessID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Created(c, sale, "Sale recorded successfully")
}

// GetSale retrieves a sale with its line items.
func (h *CatalogHandler) GetSale(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}
	businessID, err := pathUUID(c, "businessID")
	if err != nil {
		return err
	}
	saleID, err := pathUUID(c, "saleID")
	if err != nil {
		return err
	}

	sale, err := h.uc.GetSale(c.Request().Context(), userID, businessID, saleID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, sale, "Sale retrieved successfully")
}

// ListSales lists the sales history, newest first.
func (h *CatalogHandler) ListSales(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}
	businessID, err := pathUUID(c, "businessID")
	if err != nil {
		return err
	}

	limit := queryInt(c, "limit", 0)
	offset := queryInt(c, "offset", 0)

	sales, err := h.uc.ListSales(c.Request().Context(), userID, businessID, limit, offset)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, sales, "Sales retrieved successfully")
}
