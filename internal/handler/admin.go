package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"bookstore-purchase-api/internal/dto"
	"bookstore-purchase-api/internal/model"
	"bookstore-purchase-api/internal/service"
)

// AdminHandler carries the operator entry points. Confirm and reject take
// the shared secret in the request body; the listing routes are gated by the
// X-Admin-Key middleware instead.
type AdminHandler struct {
	purchaseService service.PurchaseService
	adminKey        string
}

func NewAdminHandler(purchaseService service.PurchaseService, adminKey string) *AdminHandler {
	return &AdminHandler{
		purchaseService: purchaseService,
		adminKey:        adminKey,
	}
}

func (h *AdminHandler) VerifyPurchase(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.VerifyPurchaseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
	}
	if h.adminKey == "" || req.AdminKey != h.adminKey {
		return c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
	}
	if req.ConfirmationCode == "" {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Missing confirmation code"})
	}

	purchase, err := h.purchaseService.Confirm(ctx, req.ConfirmationCode)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Confirmation code not found"})
	default:
		return fmt.Errorf("confirm purchase: %w", err)
	}

	return c.JSON(http.StatusOK, dto.VerifyPurchaseResponse{
		Success:       true,
		ItemID:        purchase.ItemID,
		TransactionID: purchase.TransactionID,
	})
}

func (h *AdminHandler) RejectPurchase(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RejectPurchaseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
	}
	if h.adminKey == "" || req.AdminKey != h.adminKey {
		return c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
	}
	if req.ConfirmationCode == "" {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Missing confirmation code"})
	}

	err := h.purchaseService.Reject(ctx, req.ConfirmationCode)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Confirmation code not found"})
	default:
		return fmt.Errorf("reject purchase: %w", err)
	}

	return c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *AdminHandler) GetStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.purchaseService.Stats(c.Request().Context()))
}

func (h *AdminHandler) GetPending(c echo.Context) error {
	return c.JSON(http.StatusOK, h.purchaseService.PendingList(c.Request().Context()))
}

func (h *AdminHandler) GetRecentPurchases(c echo.Context) error {
	recent := h.purchaseService.RecentPurchases(c.Request().Context())
	return c.JSON(http.StatusOK, model.Ledger{Purchases: recent})
}
