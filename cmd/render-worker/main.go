package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aescanero/dago-node-render/internal/config"
	"github.com/aescanero/dago-node-render/internal/eval/template"
	"github.com/aescanero/dago-node-render/internal/events"
	"github.com/aescanero/dago-node-render/internal/logging"
	"github.com/aescanero/dago-node-render/internal/renderer"
	"github.com/aescanero/dago-node-render/internal/source"
	"github.com/aescanero/dago-node-render/internal/store"
	"github.com/aescanero/dago-node-render/internal/worker"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	// Version is set at build time
	Version = "dev"
	// BuildTime is set at build time
	BuildTime = "unknown"
)

// eventStreamMaxLen caps the event stream so it cannot grow without bound
const eventStreamMaxLen = 10000

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := logging.New(cfg.LogLevel, "stdout")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting render worker",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("worker_id", cfg.WorkerID),
	)

	// Log configuration (without sensitive data)
	logger.Info("configuration loaded", zap.String("config", cfg.String()))

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

	// Named templates and contexts: the template directory first, then Redis
	registry := store.New(redisClient, logger)
	named := source.Chain{registry}
	if cfg.TemplateDir != "" {
		named = source.Chain{source.NewFileLoader(cfg.TemplateDir), registry}
		logger.Info("template directory enabled", zap.String("dir", cfg.TemplateDir))
	}

	httpLoader := source.NewHTTPLoader(cfg.HTTPTimeout, logger)
	resolver := source.NewResolver(httpLoader, named, logger)
	data := source.NewCachedData(resolver, cfg.DataCacheTTL, logger)

	// Initialize renderer
	engine := template.NewEngine(template.WithLogger(logger))
	rendererInstance := renderer.NewRenderer(engine, resolver, data, logger)
	logger.Info("renderer initialized")

	// Initialize event bus (Redis Streams implementation)
	eventBus := events.NewRedisBus(redisClient, eventStreamMaxLen, logger)

	// Initialize worker
	w := worker.NewWorker(cfg, redisClient, rendererInstance, eventBus, logger)

	// Start worker
	if err := w.Start(); err != nil {
		logger.Fatal("failed to start worker", zap.Error(err))
	}

	// Start health server
	healthServer := worker.NewHealthServer(cfg.HealthPort, registry, w, logger)
	if err := healthServer.Start(); err != nil {
		logger.Fatal("failed to start health server", zap.Error(err))
	}

	ready := events.New(events.TypeApplicationReady, cfg.WorkerID, map[string]interface{}{
		"version": Version,
	})
	if err := eventBus.Publish(context.Background(), cfg.EventStream, ready); err != nil {
		logger.Warn("failed to publish application ready event", zap.Error(err))
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("render worker running, press Ctrl+C to stop")
	<-sigChan

	logger.Info("shutdown signal received, stopping worker")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Stop health server
	if err := healthServer.Stop(); err != nil {
		logger.Error("failed to stop health server", zap.Error(err))
	}

	// Stop worker
	if err := w.Stop(); err != nil {
		logger.Error("failed to stop worker", zap.Error(err))
	}

	if err := httpLoader.Close(); err != nil {
		logger.Error("failed to close http loader", zap.Error(err))
	}

	if err := eventBus.Close(); err != nil {
		logger.Error("failed to close event bus", zap.Error(err))
	}

	// Close Redis connection
	if err := redisClient.Close(); err != nil {
		logger.Error("failed to close redis connection", zap.Error(err))
	}

	select {
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded, forcing exit")
	default:
		logger.Info("worker stopped gracefully")
	}
}
