package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookstore-purchase-api/internal/handler"
	custommiddleware "bookstore-purchase-api/internal/middleware"
	"bookstore-purchase-api/internal/service"
)

type Server struct {
	echo            *echo.Echo
	purchaseHandler *handler.PurchaseHandler
	adminHandler    *handler.AdminHandler
	relayHandler    *handler.RelayHandler
	adminKey        string
}

func NewServer(purchaseService service.PurchaseService, relayService service.RelayService, adminKey string) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	s := &Server{
		echo:            e,
		purchaseHandler: handler.NewPurchaseHandler(purchaseService),
		adminHandler:    handler.NewAdminHandler(purchaseService, adminKey),
		relayHandler:    handler.NewRelayHandler(relayService),
		adminKey:        adminKey,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "online",
			"service": "Book Purchase API",
		})
	})

	s.echo.GET("/proxy", s.relayHandler.Proxy)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api")

	api.POST("/request-purchase", s.purchaseHandler.RequestPurchase)
	api.POST("/check-purchase", s.purchaseHandler.CheckPurchase)
	api.GET("/poll-approval", s.purchaseHandler.PollApproval)
	api.POST("/track-download", s.purchaseHandler.TrackDownload)

	// -------- operator, secret in body --------
	api.POST("/verify-purchase", s.adminHandler.VerifyPurchase)
	api.POST("/reject-purchase", s.adminHandler.RejectPurchase)

	// -------- operator listings, secret in header --------
	admin := api.Group("/admin", custommiddleware.AdminKeyMiddleware(s.adminKey))
	admin.GET("/stats", s.adminHandler.GetStats)
	admin.GET("/pending", s.adminHandler.GetPending)
	admin.GET("/recent-purchases", s.adminHandler.GetRecentPurchases)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
