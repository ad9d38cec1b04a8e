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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tutorwise/signal-analytics/internal/cache"
	"github.com/tutorwise/signal-analytics/internal/config"
	"github.com/tutorwise/signal-analytics/internal/consumer"
	"github.com/tutorwise/signal-analytics/internal/logger"
	"github.com/tutorwise/signal-analytics/internal/queue/sqs"
	"github.com/tutorwise/signal-analytics/internal/repository/clickhouse"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.Service.Environment, cfg.Service.LogLevel, "consumer")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		err := log.Sync()
		if err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting consumer service",
		zap.String("environment", cfg.Service.Environment),
		zap.Bool("idempotency_enabled", cfg.Valkey.IdempotencyEnabled))

	ctx := context.Background()

	// Initialize ClickHouse client
	chClient, err := clickhouse.NewClient(ctx, &cfg.ClickHouse, log)
	if err != nil {
		log.Fatal("Failed to create ClickHouse client", zap.Error(err))
	}
	defer func() {
		if err := chClient.Close(); err != nil {
			log.Error("Failed to close ClickHouse client", zap.Error(err))
		}
	}()

	// Initialize repository
	repo := clickhouse.NewRepository(chClient, log)

	// Initialize schema (create tables if not exist)
	if err := repo.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize schema", zap.Error(err))
	}
	log.Info("Database schema initialized")

	// Initialize SQS client
	sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
	if err != nil {
		log.Fatal("Failed to create SQS client", zap.Error(err))
	}

	checks := map[string]pinger{"clickhouse": repo}
	var dedup cache.Deduplicator
	if cfg.Valkey.IdempotencyEnabled {
		valkeyClient, err := cache.NewClient(ctx, cfg.Valkey, log)
		if err != nil {
			log.Fatal("Failed to create Valkey client", zap.Error(err))
		}
		defer valkeyClient.Close()
		dedup = valkeyClient
		checks["valkey"] = valkeyClient
	}

	// Initialize consumer
	c := consumer.NewConsumer(cfg, sqsClient, repo, dedup, log)

	health := newHealthServer(":"+cfg.Consumer.HealthCheckPort, checks, log)
	go func() {
		log.Info("Health check server starting", zap.String("address", health.Addr))
		if err := health.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Health check server error", zap.Error(err))
		}
	}()

	// Start consumer
	consumerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Info("Consumer starting")

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := c.Start(consumerCtx); err != nil {
			log.Error("Consumer error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info("Shutting down consumer gracefully")
		cancel()
		<-done
	case <-done:
		log.Warn("Consumer stopped unexpectedly")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := health.Shutdown(shutdownCtx); err != nil {
		log.Error("Health check server shutdown failed", zap.Error(err))
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

// newHealthServer serves /health, failing with 503 when any dependency is
// unreachable, and /metrics for the pipeline counters
func newHealthServer(addr string, checks map[string]pinger, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		for name, dep := range checks {
			if err := dep.Ping(r.Context()); err != nil {
				log.Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
