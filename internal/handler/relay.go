package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"bookstore-purchase-api/internal/dto"
	"bookstore-purchase-api/internal/service"
)

type RelayHandler struct {
	relayService service.RelayService
}

func NewRelayHandler(relayService service.RelayService) *RelayHandler {
	return &RelayHandler{
		relayService: relayService,
	}
}

// Proxy streams the upstream body straight through to the client in chunks;
// the payload is never buffered in memory.
func (h *RelayHandler) Proxy(c echo.Context) error {
	ctx := c.Request().Context()

	target := c.QueryParam("url")
	if target == "" {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Missing url"})
	}

	body, err := h.relayService.Fetch(ctx, target)
	if err != nil {
		var upstreamErr *service.UpstreamError
		if errors.As(err, &upstreamErr) {
			return c.JSON(http.StatusBadGateway, dto.ErrorResponse{
				Error: fmt.Sprintf("Upstream returned %d", upstreamErr.StatusCode),
				URL:   upstreamErr.FinalURL,
			})
		}
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
	defer body.Close()

	return c.Stream(http.StatusOK, "application/octet-stream", body)
}
