package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/AgimDur/produu/internal/config"
	"github.com/AgimDur/produu/internal/domain"
	"github.com/AgimDur/produu/internal/repository"
	"github.com/AgimDur/produu/internal/repository/kvstore"
	"github.com/AgimDur/produu/internal/repository/postgres"
	"github.com/AgimDur/produu/internal/service"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	domainFlag := flag.String("store", "", "Shopify domain of the store to sync")
	directionFlag := flag.String("direction", "push", "push (local -> Shopify) or pull (Shopify -> local)")
	flag.Parse()

	shopDomain := strings.TrimSpace(*domainFlag)
	direction := strings.ToLower(strings.TrimSpace(*directionFlag))
	if shopDomain == "" || (direction != "push" && direction != "pull") {
		fmt.Println("Usage:")
		fmt.Println("  go run cmd/sync-products/main.go --store my-shop.myshopify.com --direction push|pull")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	repos, cleanup, err := buildRepositories(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to storage: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx := context.Background()
	store, err := repos.Store.GetByDomain(ctx, shopDomain)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to find store %q: %v\n", shopDomain, err)
		os.Exit(1)
	}

	gateway := service.NewGatewayFactory(cfg.Shopify.APIVersion, logger)
	syncSvc := service.NewSyncService(repos, gateway, logger)

	var result *service.SyncResult
	if direction == "push" {
		result, err = syncSvc.SyncProductsToShopify(ctx, store.ID)
	} else {
		result, err = syncSvc.SyncProductsFromShopify(ctx, store.ID)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sync failed: %v\n", err)
		os.Exit(1)
	}

	printResult(result, store)
	if !result.Success {
		os.Exit(1)
	}
}

func printResult(result *service.SyncResult, store *domain.ShopifyStore) {
	fmt.Printf("%s (%s)\n", result.Message, store.ShopifyDomain)
	for _, e := range result.Errors {
		fmt.Printf("  error: %s\n", e)
	}
}

func buildRepositories(cfg *config.Config, logger *zap.Logger) (*repository.Repositories, func(), error) {
	if cfg.Storage == "redis" {
		rdb, err := kvstore.NewClient(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return kvstore.NewRepositories(rdb, logger), func() { rdb.Close() }, nil
	}
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewRepositories(db, logger), func() { db.Close() }, nil
}
