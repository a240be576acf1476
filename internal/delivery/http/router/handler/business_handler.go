package handler

import (
	"log/slog"
	"net/http"

	"bizhub/internal/delivery/http/response"
	"bizhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// BusinessHandler holds dependencies for business management handlers.
type BusinessHandler struct {
	uc     usecase.BusinessUsecase
	logger *slog.Logger
}

// NewBusinessHandler is the constructor for BusinessHandler.
func NewBusinessHandler(uc usecase.BusinessUsecase, logger *slog.Logger) *BusinessHandler {
	return &BusinessHandler{
		uc:     uc,
		logger: logger,
	}
}

// pathUUID parses a path parameter as a UUID.
func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, response.BadRequest(c, "INVALID_ID", "Invalid "+name+" in path")
	}

	return id, nil
}

// CreateBusiness creates a business owned by the signed-in user.
func (h *BusinessHandler) CreateBusiness(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var input *usecase.CreateBusinessInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid business input")
	}
	if err := c.Validate(input); err != nil {
		return err
	}

	business, err := h.uc.CreateBusiness(c.Request().Context(), userID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Created(c, business, "Business created successfully")
}

// ListMyBusinesses lists every business the user can access.
func (h *BusinessHandler) ListMyBusinesses(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	businesses, err := h.uc.ListMyBusinesses(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, businesses, "Businesses retrieved successfully")
}

// GetBusiness retrieves one business the user has access to.
func (h *BusinessHandler) GetBusiness(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}
	businessID, err := pathUUID(c, "businessID")
	if err != nil {
		return err
	}

	business, err := h.uc.GetBusiness(c.Request().Context(), userID, businessID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, business, "Business retrieved successfully")
}

// UpdateBusiness applies a partial update to a business.
func (h *BusinessHandler) UpdateBusiness(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}
	businessID, err := pathUUID(c, "businessID")
	if err != nil {
		return err
	}

	var input *usecase.UpdateBusinessInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid business input")
	}

	business, err := h.uc.UpdateBusiness(c.Request().Context(), userID, businessID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, business, "Business updated successfully")
}

// ListMembers lists the access grants of a business.
func (h *BusinessHandler) ListMembers(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}
	businessID, err := pathUUID(c, "businessID")
	if err != nil {
		return err
	}

	members, err := h.uc.ListMembers(c.Request().Context(), userID, businessID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, members, "Members retrieved successfully")
}

// RevokeAccess removes a member's access grant. Owner only.
func (h *BusinessHandler) RevokeAccess(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}
	businessID, err := pathUUID(c, "businessID")
	if err != nil {
		return err
	}
	memberID, err := pathUUID(c, "memberID")
	if err != nil {
		return err
	}

	if err := h.uc.RevokeAccess(c.Request().Context(), userID, businessID, memberID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Access revoked"}, "Access revoked successfully")
}

// CanAccessPage reports whether the caller's role allows a dashboard page.
func (h *BusinessHandler) CanAccessPage(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}
	businessID, err := pathUUID(c, "businessID")
	if err != nil {
		return err
	}

	page := c.Param("page")
	allowed, err := h.uc.CanAccessPage(c.Request().Context(), userID, businessID, page)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{"page": page, "allowed": allowed}, "Page access evaluated")
}
