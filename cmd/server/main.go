// Package main provides the API server entry point for the grocery pricer service.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grocery-pricer/internal/api"
	"github.com/grocery-pricer/internal/config"
	"github.com/grocery-pricer/internal/logging"
	"github.com/grocery-pricer/internal/pricing"
	"github.com/grocery-pricer/internal/service"
	"github.com/grocery-pricer/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	// Initialize storage connections
	logger.Info("Connecting to databases...")

	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	redis, err := storage.NewRedisCache(&cfg.Database.Redis)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redis.Close()

	logger.Info("Database connections established")

	// Price source: external quote API behind the Redis quote cache
	priceClient := pricing.NewClient(cfg.PriceAPI)
	quoteSource := storage.NewCachedQuoteSource(priceClient, redis, cfg.Cache.QuoteTTL)
	batchFetcher := pricing.NewBatchFetcher(quoteSource)
	historyFetcher := pricing.NewHistoryFetcher(quoteSource, cfg.History.MaxParallel)

	// Initialize repositories
	listRepo := storage.NewListRepository(postgres)
	itemRepo := storage.NewItemRepository(postgres)
	prefRepo := storage.NewPreferenceRepository(postgres)

	// Initialize services
	logger.Info("Initializing services...")

	listService := service.NewListService(listRepo, itemRepo)
	itemService := service.NewItemService(listRepo, itemRepo)
	overviewService := service.NewOverviewService(listService, prefRepo, batchFetcher)

	logger.Info("Services initialized")

	// Create server configuration
	serverConfig := &api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		RequestsPerUser: cfg.Server.RequestsPerUser,
	}

	server := api.NewServer(serverConfig, listService, itemService, overviewService, historyFetcher, priceClient, prefRepo)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Server started successfully")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
