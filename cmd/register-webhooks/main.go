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

	domainFlag := flag.String("store", "", "Shopify domain of the store")
	baseURLFlag := flag.String("base-url", "", "Public base URL; defaults to WEBHOOK_BASE_URL")
	flag.Parse()

	shopDomain := strings.TrimSpace(*domainFlag)
	if shopDomain == "" {
		fmt.Println("Usage:")
		fmt.Println("  go run cmd/register-webhooks/main.go --store my-shop.myshopify.com [--base-url https://admin.example.com]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	baseURL := strings.TrimSpace(*baseURLFlag)
	if baseURL == "" {
		baseURL = cfg.Webhook.BaseURL
	}
	if baseURL == "" {
		fmt.Fprintf(os.Stderr, "Error: WEBHOOK_BASE_URL or --base-url is required.\n")
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
	storeSvc := service.NewStoreService(repos, gateway, logger)

	result, err := storeSvc.RegisterWebhooks(ctx, store.ID, baseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Webhook registration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s (%s)\n", result.Message, store.ShopifyDomain)
	for _, e := range result.Errors {
		fmt.Printf("  error: %s\n", e)
	}
	if !result.Success {
		os.Exit(1)
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
