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
	"github.com/AgimDur/produu/internal/repository"
	"github.com/AgimDur/produu/internal/repository/kvstore"
	"github.com/AgimDur/produu/internal/repository/postgres"
	"github.com/AgimDur/produu/internal/service"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	domainFlag := flag.String("store", "", "Shopify domain of one store; empty pulls all active stores")
	flag.Parse()

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

	gateway := service.NewGatewayFactory(cfg.Shopify.APIVersion, logger)
	syncSvc := service.NewSyncService(repos, gateway, logger)

	ctx := context.Background()
	if shopDomain := strings.TrimSpace(*domainFlag); shopDomain != "" {
		store, err := repos.Store.GetByDomain(ctx, shopDomain)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to find store %q: %v\n", shopDomain, err)
			os.Exit(1)
		}
		result, err := syncSvc.SyncOrdersFromShopify(ctx, store.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Sync failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s (%s)\n", result.Message, store.ShopifyDomain)
		for _, e := range result.Errors {
			fmt.Printf("  error: %s\n", e)
		}
		if !result.Success {
			os.Exit(1)
		}
		return
	}

	syncSvc.RunOrderSyncOnce(ctx)
	fmt.Println("Order pull finished for all active stores; see logs for details.")
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
