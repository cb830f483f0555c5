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

	nameFlag := flag.String("name", "", "Store display name")
	domainFlag := flag.String("domain", "", "Shopify domain, e.g. my-shop.myshopify.com")
	tokenFlag := flag.String("token", "", "Admin API access token")
	apiKeyFlag := flag.String("api-key", "", "App API key (optional)")
	apiSecretFlag := flag.String("api-secret", "", "App API secret (optional)")
	webhookSecretFlag := flag.String("webhook-secret", "", "Per-store webhook HMAC secret (optional)")
	flag.Parse()

	name := strings.TrimSpace(*nameFlag)
	shopDomain := strings.TrimSpace(*domainFlag)
	token := strings.TrimSpace(*tokenFlag)
	if name == "" || shopDomain == "" || token == "" {
		fmt.Println("Usage:")
		fmt.Println("  go run cmd/add-store/main.go --name \"My Shop\" --domain my-shop.myshopify.com --token shpat_xxx")
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

	gateway := service.NewGatewayFactory(cfg.Shopify.APIVersion, logger)
	storeSvc := service.NewStoreService(repos, gateway, logger)

	req := &service.CreateStoreRequest{
		StoreName:     name,
		ShopifyDomain: shopDomain,
		AccessToken:   token,
		APIKey:        strings.TrimSpace(*apiKeyFlag),
		APISecret:     strings.TrimSpace(*apiSecretFlag),
	}
	if secret := strings.TrimSpace(*webhookSecretFlag); secret != "" {
		req.WebhookSecret = &secret
	}

	store, err := storeSvc.CreateStore(context.Background(), req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create store: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Store connected successfully!")
	fmt.Printf("  ID:     %s\n", store.ID)
	fmt.Printf("  Name:   %s\n", store.StoreName)
	fmt.Printf("  Domain: %s\n", store.ShopifyDomain)
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
