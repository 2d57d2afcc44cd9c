package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"confidential-ledger/config"
	"confidential-ledger/internal/adapter/custody"
	"confidential-ledger/internal/adapter/encvalue"
	httpHandler "confidential-ledger/internal/adapter/http/handler"
	pgStorage "confidential-ledger/internal/adapter/storage/postgres"
	redisStorage "confidential-ledger/internal/adapter/storage/redis"
	"confidential-ledger/internal/core/ports"
	"confidential-ledger/internal/service"
	"confidential-ledger/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Confidential Ledger")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	registryRepo := pgStorage.NewRegistryRepo(pool)
	accountRepo := pgStorage.NewAccountRepo(pool)
	opRepo := pgStorage.NewOperationRepo(pool)
	holderRepo := pgStorage.NewHolderRepo(pool)
	idempotencyRepo := pgStorage.NewIdempotencyRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)

	// External collaborators
	encSvc := encvalue.NewClient(cfg.EncValue.BaseURL, &http.Client{Timeout: cfg.EncValue.Timeout}, log)
	custodySvc := custody.NewClient(cfg.Custody.BaseURL, &http.Client{Timeout: cfg.Custody.Timeout}, log)

	// Initialize core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Initialize business services
	authSvc := service.NewAuthService(holderRepo, hashSvc, tokenSvc)
	registrySvc := service.NewRegistryService(registryRepo, accountRepo, log)
	ledgerSvc := service.NewLedgerService(
		registryRepo,
		accountRepo,
		opRepo,
		idempotencyRepo,
		idempotencyCache,
		encSvc,
		custodySvc,
		transactor,
		log,
	)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		LedgerSvc:      ledgerSvc,
		RegistrySvc:    registrySvc,
		TokenSvc:       tokenSvc,
		OperationRepo:  opRepo,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
