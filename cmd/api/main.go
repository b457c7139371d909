package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"topup-pro/config"
	"topup-pro/internal/adapter/gateway"
	httpHandler "topup-pro/internal/adapter/http/handler"
	"topup-pro/internal/adapter/notify"
	pgStorage "topup-pro/internal/adapter/storage/postgres"
	redisStorage "topup-pro/internal/adapter/storage/redis"
	"topup-pro/internal/adapter/vtu"
	"topup-pro/internal/core/ports"
	"topup-pro/internal/metrics"
	"topup-pro/internal/provider"
	"topup-pro/internal/service"
	"topup-pro/internal/worker"
	"topup-pro/pkg/logger"
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
		Msg("Starting TopUp Pro")

	ctx := context.Background()

	// Register Prometheus collectors
	metrics.Init()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// Initialize repositories
	userRepo := pgStorage.NewUserRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	ledgerRepo := pgStorage.NewLedgerRepo(pool)
	webhookLogRepo := pgStorage.NewWebhookLogRepo(pool)
	contactRepo := pgStorage.NewContactRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	dedupeStore := redisStorage.NewEventDedupeStore(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Outbound HTTP clients
	httpClient := &http.Client{Timeout: 15 * time.Second}
	gatewayClient := gateway.NewPaystackClient(
		httpClient,
		cfg.Providers.Paystack.BaseURL,
		cfg.Providers.Paystack.SecretKey,
		cfg.Providers.Paystack.CallbackURL,
		log,
	)
	vtuClient := vtu.NewClient(httpClient, cfg.Providers.VTU.BaseURLs, cfg.Providers.VTU.APIKeys, log)

	// Notification fan-out over a bounded worker pool
	pool2 := worker.NewPool(cfg.Notify.Workers)
	defer pool2.Stop()

	var channels []ports.Notifier
	if cfg.Notify.EmailURL != "" {
		channels = append(channels, notify.NewEmailNotifier(httpClient, cfg.Notify.EmailURL, cfg.Notify.EmailAPIKey))
	}
	if cfg.Notify.SMSURL != "" {
		channels = append(channels, notify.NewSMSNotifier(httpClient, cfg.Notify.SMSURL, cfg.Notify.SMSAPIKey))
	}
	if cfg.Notify.PushURL != "" {
		channels = append(channels, notify.NewPushNotifier(httpClient, cfg.Notify.PushURL, cfg.Notify.PushAPIKey))
	}
	channels = append(channels, redisStorage.NewRealtimeNotifier(rdb))
	dispatcher := service.NewNotificationDispatcher(pool2, log, channels...)

	// Webhook provider adapters
	registry := provider.NewRegistry(
		provider.NewPaystackAdapter(cfg.Providers.Paystack.WebhookKey),
		provider.NewFlutterwaveAdapter(cfg.Providers.Flutterwave.VerifHash),
		provider.NewVTPassAdapter(cfg.Providers.VTU.Secrets["vtpass"]),
		provider.NewBaxiAdapter(cfg.Providers.VTU.Secrets["baxi"]),
		provider.NewClubkonnectAdapter(cfg.Providers.VTU.Secrets["clubkonnect"]),
	)

	// Core services
	hashSvc := service.NewHashService()
	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	authSvc := service.NewAuthService(userRepo, ledgerRepo, hashSvc, tokenSvc, log)
	reconciler := service.NewReconciler(txRepo, ledgerRepo, webhookLogRepo, dedupeStore, transactor, dispatcher, log)
	purchaseSvc := service.NewPurchaseService(txRepo, ledgerRepo, transactor, vtuClient, dispatcher, log)
	fundingSvc := service.NewFundingService(txRepo, userRepo, transactor, gatewayClient, log)
	reportingSvc := service.NewReportingService(ledgerRepo, txRepo)

	// Health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		PurchaseSvc:    purchaseSvc,
		FundingSvc:     fundingSvc,
		ReportingSvc:   reportingSvc,
		Reconciler:     reconciler,
		Providers:      registry,
		ContactRepo:    contactRepo,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
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
