package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tutorwise/signal-analytics/docs"
	"github.com/tutorwise/signal-analytics/internal/cache"
	"github.com/tutorwise/signal-analytics/internal/config"
	"github.com/tutorwise/signal-analytics/internal/handler"
	"github.com/tutorwise/signal-analytics/internal/logger"
	"github.com/tutorwise/signal-analytics/internal/queue/sqs"
	"github.com/tutorwise/signal-analytics/internal/repository/clickhouse"
	"github.com/tutorwise/signal-analytics/internal/repository/postgres"
	"github.com/tutorwise/signal-analytics/internal/service"
)

// @title Signal Analytics API
// @version 1.0
// @description Signal event ingestion, revenue attribution and journey reconstruction
// @host localhost:8080
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// A missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.Service.Environment, cfg.Service.LogLevel, "api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		err := log.Sync()
		if err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting API service",
		zap.String("environment", cfg.Service.Environment),
		zap.String("port", cfg.Service.APIPort))

	profile, err := config.LoadProfile(cfg.Analytics.ProfilePath)
	if err != nil {
		log.Fatal("Failed to load analytics profile", zap.Error(err))
	}

	// Configure Swagger host dynamically
	docs.SwaggerInfo.Host = cfg.Service.Host

	ctx := context.Background()

	// Initialize SQS client
	sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
	if err != nil {
		log.Fatal("Failed to create SQS client", zap.Error(err))
	}

	// Initialize ClickHouse client
	clickhouseClient, err := clickhouse.NewClient(ctx, &cfg.ClickHouse, log)
	if err != nil {
		log.Fatal("Failed to create ClickHouse client", zap.Error(err))
	}
	defer func(clickhouseClient *clickhouse.Client) {
		if err := clickhouseClient.Close(); err != nil {
			log.Error("Failed to close ClickHouse client", zap.Error(err))
		}
	}(clickhouseClient)

	eventRepo := clickhouse.NewRepository(clickhouseClient, log)

	// Initialize Postgres client
	postgresClient, err := postgres.NewClient(ctx, &cfg.Postgres, log)
	if err != nil {
		log.Fatal("Failed to create Postgres client", zap.Error(err))
	}
	defer func(postgresClient *postgres.Client) {
		if err := postgresClient.Close(); err != nil {
			log.Error("Failed to close Postgres client", zap.Error(err))
		}
	}(postgresClient)

	marketplaceRepo := postgres.NewRepository(postgresClient, log)

	checks := map[string]handler.Pinger{
		"clickhouse": eventRepo,
		"postgres":   marketplaceRepo,
	}

	var resultCache cache.ResultCache = cache.Noop{}
	if cfg.Valkey.CacheEnabled {
		valkeyClient, err := cache.NewClient(ctx, cfg.Valkey, log)
		if err != nil {
			log.Fatal("Failed to create Valkey client", zap.Error(err))
		}
		defer valkeyClient.Close()

		resultCache = valkeyClient
		checks["valkey"] = valkeyClient
	}

	// Initialize services
	eventService := service.NewEventService(sqsClient, log)

	analyticsService, err := service.NewAnalyticsService(eventRepo, marketplaceRepo, resultCache, profile, service.AnalyticsOptions{
		DefaultWindow:    cfg.Analytics.DefaultAttributionWindow,
		TopArticlesLimit: cfg.Analytics.TopArticlesLimit,
		CacheTTL:         time.Duration(cfg.Valkey.CacheTTLSec) * time.Second,
	}, log)
	if err != nil {
		log.Fatal("Failed to create analytics service", zap.Error(err))
	}

	if cfg.Auth.JWTSecret == "" {
		log.Warn("AUTH_JWT_SECRET is empty, dashboard endpoints are unauthenticated")
	}

	// Initialize handler
	h := handler.NewHandler(eventService, analyticsService, checks, handler.Options{
		QueryTimeout: time.Duration(cfg.Service.QueryTimeoutSec) * time.Second,
		JWTSecret:    cfg.Auth.JWTSecret,
		RequiredRole: cfg.Auth.Role,
	}, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Service.APIPort),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("API server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start API server", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down API server gracefully")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shut down API server", zap.Error(err))
	}
}
