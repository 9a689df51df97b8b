package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"expense-ledger-go/config"
	"expense-ledger-go/database"
	"expense-ledger-go/handlers"
	"expense-ledger-go/ledger"
	"expense-ledger-go/middleware"
	"expense-ledger-go/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	if err := config.Validate(cfg); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	vault, err := utils.NewCardVault(cfg.EncryptionKey)
	if err != nil {
		log.Fatal("Failed to initialize card vault: ", err)
	}
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}

	svc := ledger.NewService(db, vault, cfg.Ledger)
	auth := middleware.NewAuthenticator(cfg, tokens)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Stop()

	h := handlers.NewHandlers(db, cfg, svc, auth, tokens)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(h, limiter),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("INFO: Server starting on port %s", cfg.Port)
		log.Printf("INFO: Environment: %s", cfg.Environment)
		if database.IsPostgres(cfg.DatabaseURL) {
			log.Printf("INFO: Database: postgres")
		} else {
			log.Printf("INFO: Database: sqlite (%s)", cfg.DatabaseURL)
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed: ", err)
		}
	}()

	<-ctx.Done()
	log.Printf("INFO: Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Graceful shutdown failed: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
