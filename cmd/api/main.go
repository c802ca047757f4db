package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"bookstore-purchase-api/internal/config"
	"bookstore-purchase-api/internal/repository"
	"bookstore-purchase-api/internal/server"
	"bookstore-purchase-api/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}
	if cfg.AdminKey == "" {
		log.Fatal("ADMIN_KEY must be set")
	}

	ledgerRepo, err := repository.NewFileLedgerRepository(cfg.DataDir)
	if err != nil {
		log.Fatal("init ledger repository:", err)
	}

	purchaseService := service.NewPurchaseService(ledgerRepo)
	relayService := service.NewRelayService(cfg.Relay.UpstreamTimeout)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(purchaseService, relayService, cfg.AdminKey)

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
