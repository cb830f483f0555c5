// Package kvstore backs the record-store contract with flat Redis blobs:
// one JSON array per collection, read and replaced whole. Functionally
// interchangeable with the relational adapter for the small catalogs this
// tool manages.
package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AgimDur/produu/internal/config"
	"github.com/AgimDur/produu/internal/repository"
)

// Collection keys
const (
	keyProducts     = "products"
	keyOrders       = "orders"
	keyOrderItems   = "order_items"
	keyStores       = "shopify_stores"
	keyProductLinks = "product_links"
)

// NewClient connects to Redis and verifies the connection
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}

// NewRepositories creates all repositories backed by Redis collections
func NewRepositories(rdb *redis.Client, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Product:     &productRepository{rdb: rdb, logger: logger},
		Order:       &orderRepository{rdb: rdb, logger: logger},
		OrderItem:   &orderItemRepository{rdb: rdb, logger: logger},
		Store:       &storeRepository{rdb: rdb, logger: logger},
		ProductLink: &productLinkRepository{rdb: rdb, logger: logger},
	}
}

// getCollection loads a whole collection. A missing key is an empty
// collection, matching the original get-or-default contract.
func getCollection[T any](ctx context.Context, rdb *redis.Client, key string) ([]T, error) {
	raw, err := rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load collection %s: %w", key, err)
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode collection %s: %w", key, err)
	}
	return items, nil
}

// saveCollection replaces a whole collection
func saveCollection[T any](ctx context.Context, rdb *redis.Client, key string, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", key, err)
	}
	if err := rdb.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save collection %s: %w", key, err)
	}
	return nil
}
