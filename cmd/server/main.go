package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/AgimDur/produu/internal/api"
	"github.com/AgimDur/produu/internal/config"
	"github.com/AgimDur/produu/internal/repository"
	"github.com/AgimDur/produu/internal/repository/kvstore"
	"github.com/AgimDur/produu/internal/repository/postgres"
	"github.com/AgimDur/produu/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	logger.Info("Starting Shopify sync admin server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("storage", cfg.Storage),
	)

	// Initialize the record store
	var repos *repository.Repositories
	switch cfg.Storage {
	case "redis":
		rdb, err := kvstore.NewClient(cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		repos = kvstore.NewRepositories(rdb, logger)
	default:
		db, err := postgres.NewConnection(cfg.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		if err := postgres.ApplySchema(db); err != nil {
			logger.Fatal("Failed to apply schema", zap.Error(err))
		}
		repos = postgres.NewRepositories(db, logger)
	}

	// Initialize services
	gateway := service.NewGatewayFactory(cfg.Shopify.APIVersion, logger)
	syncSvc := service.NewSyncService(repos, gateway, logger)
	storeSvc := service.NewStoreService(repos, gateway, logger)

	// Initialize router
	router := api.NewRouter(cfg, repos, syncSvc, storeSvc, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Background order pull: runs once on startup, then on the configured interval
	if cfg.OrderSyncInterval > 0 {
		go syncSvc.StartOrderSyncLoop(context.Background(), cfg.OrderSyncInterval)
		logger.Info("Order sync job started", zap.Duration("interval", cfg.OrderSyncInterval))
	}

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
