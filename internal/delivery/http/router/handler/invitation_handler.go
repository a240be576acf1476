package handler

import (
	"log/slog"
	"net/http"

	"bizhub/internal/delivery/http/response"
	"bizhub/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// InvitationHandler holds dependencies for invitation handlers.
type InvitationHandler struct {
	uc     usecase.InvitationUsecase
	logger *slog.Logger
}

// NewInvitationHandler is the constructor for InvitationHandler.
func NewInvitationHandler(uc usecase.InvitationUsecase, logger *slog.Logger) *InvitationHandler {
	return &InvitationHandler{
		uc:     uc,
		logger: logger,
	}
}

// SendInvitation invites a user into a business by email.
func (h *InvitationHandler) SendInvitation(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}
	businessID, err := pathUUID(c, "businessID")
	if err != nil {
		return err
	}

	var input *usecase.SendInvitationInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid invitation input")
	}
	if err := c.Validate(input); err != nil {
		return err
	}

	invitation, err := h.uc.SendInvitation(c.Request().Context(), userID, businessID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Created(c, invitation, "Invitation sent successfully")
}

// ListBusinessInvitations lists invitations a business has sent.
func (h *InvitationHandler) ListBusinessInvitations(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}
	businessID, err := pathUUID(c, "businessID")
	if err != nil {
		return err
	}

	invitations, err := h.uc.ListBusinessInvitations(c.Request().Context(), userID, businessID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, invitations, "Invitations retrieved successfully")
}

// ListMyInvitations lists pending invitations addressed to the caller.
func (h *InvitationHandler) ListMyInvitations(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	invitations, err := h.uc.ListMyInvitations(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, invitations, "Invitations retrieved successfully")
}

// AcceptInvitation accepts a pending invitation addressed to the caller.
func (h *InvitationHandler) AcceptInvitation(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}
	invitationID, err := pathUUID(c, "invitationID")
	if err != nil {
		return err
	}

	grant, err := h.uc.AcceptInvitation(c.Request().Context(), userID, invitationID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, grant, "Invitation accepted successfully")
}

// DeclineInvitation declines a pending invitation addressed to the caller.
func (h *InvitationHandler) DeclineInvitation(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}
	invitationID, err := pathUUID(c, "invitationID")
	if err != nil {
		return err
	}

	if err := h.uc.DeclineInvitation(c.Request().Context(), userID, invitationID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Invitation declined"}, "Invitation declined successfully")
}

// InvitationQR renders the invitation's QR code as a PNG image.
func (h *InvitationHandler) InvitationQR(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}
	invitationID, err := pathUUID(c, "invitationID")
	if err != nil {
		return err
	}

	png, err := h.uc.InvitationQR(c.Request().Context(), userID, invitationID)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}
