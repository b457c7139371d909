package handler

import (
	"topup-pro/internal/adapter/http/middleware"
	redisStore "topup-pro/internal/adapter/storage/redis"
	"topup-pro/internal/core/ports"
	"topup-pro/internal/metrics"
	"topup-pro/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	PurchaseSvc    ports.PurchaseService
	FundingSvc     ports.FundingService
	ReportingSvc   ports.ReportingService
	Reconciler     ports.Reconciler
	Providers      *provider.Registry
	ContactRepo    ports.ContactRepository
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// --- Provider webhooks (signature-authenticated, never JWT) ---
	webhookHandler := NewWebhookHandler(deps.Providers, deps.Reconciler, deps.Logger)
	webhooks := r.Group("/api/webhooks")
	{
		webhooks.POST("/paystack", rl("webhooks"), webhookHandler.Paystack)
		webhooks.POST("/flutterwave", rl("webhooks"), webhookHandler.Flutterwave)
		webhooks.POST("/vtu-providers", rl("webhooks"), webhookHandler.VTUProvider)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	walletHandler := NewWalletHandler(deps.ReportingSvc, deps.FundingSvc)
	wallet := v1.Group("/wallet", jwtAuth)
	{
		wallet.GET("/balance", rl("reads"), walletHandler.GetBalance)
		wallet.POST("/fund", rl("wallet_fund"), walletHandler.Fund)
	}

	purchaseHandler := NewPurchaseHandler(deps.PurchaseSvc)
	purchases := v1.Group("/purchases", jwtAuth)
	{
		purchases.POST("/airtime", rl("purchases"), purchaseHandler.Airtime)
		purchases.POST("/data", rl("purchases"), purchaseHandler.Data)
		purchases.POST("/cable", rl("purchases"), purchaseHandler.Cable)
		purchases.POST("/electricity", rl("purchases"), purchaseHandler.Electricity)
	}

	transactionHandler := NewTransactionHandler(deps.ReportingSvc)
	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.GET("", rl("reads"), transactionHandler.List)
	}

	contactHandler := NewContactHandler(deps.ContactRepo)
	contacts := v1.Group("/contacts", jwtAuth)
	{
		contacts.POST("", rl("reads"), contactHandler.Create)
		contacts.GET("", rl("reads"), contactHandler.List)
		contacts.DELETE("/:id", rl("reads"), contactHandler.Delete)
	}

	return r
}
