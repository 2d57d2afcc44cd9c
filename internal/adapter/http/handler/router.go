package handler

import (
	"confidential-ledger/internal/adapter/http/middleware"
	"confidential-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	LedgerSvc      ports.LedgerService
	RegistrySvc    ports.RegistryService
	TokenSvc       ports.TokenService
	OperationRepo  ports.OperationRepository
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	registryHandler := NewRegistryHandler(deps.RegistrySvc)
	ledgerHandler := NewLedgerHandler(deps.LedgerSvc, deps.RegistrySvc, deps.OperationRepo)

	registry := v1.Group("/registry", jwtAuth)
	{
		registry.POST("", registryHandler.InitializeRegistry)
		registry.GET("", registryHandler.GetRegistry)
	}

	accounts := v1.Group("/accounts", jwtAuth)
	{
		accounts.POST("", registryHandler.InitializeAccount)
		accounts.GET("/:id", registryHandler.GetAccount)
		accounts.GET("/:id/operations", ledgerHandler.ListOperations)
	}

	ledger := v1.Group("/ledger", jwtAuth)
	{
		ledger.POST("/deposit", ledgerHandler.Deposit)
		ledger.POST("/transfer", ledgerHandler.Transfer)
		ledger.POST("/withdraw", ledgerHandler.Withdraw)
	}

	operations := v1.Group("/operations", jwtAuth)
	{
		operations.GET("/:id", ledgerHandler.GetOperation)
	}

	return r
}
