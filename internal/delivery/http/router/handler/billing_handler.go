package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"bizhub/internal/delivery/http/response"
	"bizhub/internal/domain/entity"
	"bizhub/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// parseAmountCents parses the amount form field as a positive cent count.
func parseAmountCents(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

// maxProofSize caps uploaded transfer proofs at 10 MiB.
const maxProofSize = 10 << 20

// BillingHandler holds dependencies for tier purchase handlers.
type BillingHandler struct {
	uc     usecase.BillingUsecase
	logger *slog.Logger
}

// NewBillingHandler is the constructor for BillingHandler.
func NewBillingHandler(uc usecase.BillingUsecase, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{
		uc:     uc,
		logger: logger,
	}
}

// RedeemCoupon consumes a 5-digit upgrade code.
func (h *BillingHandler) RedeemCoupon(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var input *usecase.RedeemCouponInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid coupon input")
	}
	if err := c.Validate(input); err != nil {
		return err
	}

	payment, err := h.uc.RedeemCoupon(c.Request().Context(), userID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, payment, "Coupon redeemed successfully")
}

// SubmitTransfer records a manual bank transfer from a multipart form with
// the proof image attached as the "proof" part.
func (h *BillingHandler) SubmitTransfer(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	input := &usecase.SubmitTransferInput{
		Tier: entity.Tier(c.FormValue("tier")),
	}
	amount := c.FormValue("amount_cents")
	if amount != "" {
		parsed, err := parseAmountCents(amount)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid amount_cents value")
		}
		input.AmountCents = parsed
	}

	fileHeader, err := c.FormFile("proof")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Transfer proof file is required")
	}
	if fileHeader.Size > maxProofSize {
		return response.BadRequest(c, "FILE_TOO_LARGE", "Transfer proof exceeds the size limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return errors.WithStack(err)
	}
	defer file.Close()

	input.Proof = file
	input.ProofName = fileHeader.Filename
	input.ProofType = fileHeader.Header.Get("Content-Type")

	if err := c.Validate(input); err != nil {
		return err
	}

	payment, err := h.uc.SubmitTransfer(c.Request().Context(), userID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Created(c, payment, "Transfer submitted for review")
}

// ListMyPayments returns the caller's payment history, newest first.
func (h *BillingHandler) ListMyPayments(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	payments, err := h.uc.ListMyPayments(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, payments, "Payments retrieved successfully")
}

// ReviewPayment approves or rejects a pending transfer.
func (h *BillingHandler) ReviewPayment(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}
	paymentID, err := pathUUID(c, "paymentID")
	if err != nil {
		return err
	}

	var input *usecase.ReviewPaymentInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid review input")
	}

	if err := h.uc.ReviewPayment(c.Request().Context(), userID, paymentID, input); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Payment reviewed"}, "Payment reviewed successfully")
}

// PaymentProofURL returns a time-limited download URL for a payment proof.
func (h *BillingHandler) PaymentProofURL(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}
	paymentID, err := pathUUID(c, "paymentID")
	if err != nil {
		return err
	}

	url, err := h.uc.PaymentProofURL(c.Request().Context(), userID, paymentID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"url": url}, "Proof URL generated")
}
