package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"bookstore-purchase-api/internal/dto"
	"bookstore-purchase-api/internal/service"
)

type PurchaseHandler struct {
	purchaseService service.PurchaseService
}

func NewPurchaseHandler(purchaseService service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
	}
}

func (h *PurchaseHandler) RequestPurchase(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RequestPurchaseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
	}

	code, err := h.purchaseService.Submit(ctx, req.ItemID, req.TransactionID, req.Price)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidRequest):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Missing required fields"})
	case errors.Is(err, service.ErrDuplicateTransaction):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Transaction ID already used"})
	default:
		return fmt.Errorf("submit purchase: %w", err)
	}

	return c.JSON(http.StatusOK, dto.RequestPurchaseResponse{
		Success:          true,
		ConfirmationCode: code,
		Message:          fmt.Sprintf("Please confirm this code: %s", code),
	})
}

func (h *PurchaseHandler) CheckPurchase(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckPurchaseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
	}
	if req.ItemID == "" || req.TransactionID == "" {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Missing required fields"})
	}

	result := h.purchaseService.CheckStatus(ctx, req.ItemID, req.TransactionID)
	return c.JSON(http.StatusOK, dto.CheckPurchaseResponse{
		Purchased:        result.Purchased,
		ConfirmedAt:      result.ConfirmedAt,
		Status:           result.Status,
		ConfirmationCode: result.ConfirmationCode,
	})
}

// PollApproval always answers 200; a missing parameter just reads as not
// approved, so a misconfigured client loops harmlessly instead of erroring.
func (h *PurchaseHandler) PollApproval(c echo.Context) error {
	ctx := c.Request().Context()

	code := c.QueryParam("confirmation_code")
	itemID := c.QueryParam("item_id")
	if code == "" {
		return c.JSON(http.StatusOK, dto.PollApprovalResponse{
			Approved: false,
			Status:   service.StatusNotFound,
		})
	}

	result := h.purchaseService.Poll(ctx, code, itemID)
	return c.JSON(http.StatusOK, dto.PollApprovalResponse{
		Approved: result.Approved,
		Status:   result.Status,
	})
}

func (h *PurchaseHandler) TrackDownload(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.TrackDownloadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
	}

	err := h.purchaseService.RecordDownload(ctx, req.ItemID, req.IsFree)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidRequest):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Missing item_id"})
	default:
		return fmt.Errorf("track download: %w", err)
	}

	return c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}
