package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/AgimDur/produu/internal/domain"
	"github.com/AgimDur/produu/internal/shopify"
)

// ShopifyGateway is the slice of the Shopify Admin API the sync engine
// needs. *shopify.Client satisfies it; tests substitute a fake.
type ShopifyGateway interface {
	TestConnection(ctx context.Context) bool
	ListProducts(ctx context.Context, limit int) ([]shopify.Product, error)
	ListOrders(ctx context.Context, limit int, status string) ([]shopify.Order, error)
	CreateProduct(ctx context.Context, product *domain.Product) (*shopify.Product, error)
	UpdateProduct(ctx context.Context, remoteID int64, product *domain.Product) (*shopify.Product, error)
	EnsureWebhook(ctx context.Context, topic, address string) (*shopify.Webhook, error)
}

// GatewayFactory builds a gateway for one store's credentials.
type GatewayFactory func(store *domain.ShopifyStore) ShopifyGateway

// NewGatewayFactory returns the production factory backed by the REST client.
func NewGatewayFactory(apiVersion string, logger *zap.Logger) GatewayFactory {
	return func(store *domain.ShopifyStore) ShopifyGateway {
		return shopify.NewClient(store, apiVersion, logger)
	}
}
