package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AgimDur/produu/internal/domain"
)

// ProductRepository defines catalog product data access methods
type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	ListByParentID(ctx context.Context, parentID uuid.UUID) ([]*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderRepository defines order data access methods. Orders are unique per
// (shopify_order_id, shopify_store_id).
type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByShopifyOrderID(ctx context.Context, storeID uuid.UUID, shopifyOrderID int64) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	ListByStoreID(ctx context.Context, storeID uuid.UUID) ([]*domain.Order, error)
	Create(ctx context.Context, order *domain.Order) error
	Update(ctx context.Context, order *domain.Order) error
	UpdateCancellation(ctx context.Context, id uuid.UUID, cancelledAt *time.Time, reason *string, syncedAt time.Time) error
	Stats(ctx context.Context) (*domain.OrderStats, error)
}

// OrderItemRepository defines order line item data access methods. Items
// are unique per (shopify_line_item_id, order_id).
type OrderItemRepository interface {
	GetByLineItemID(ctx context.Context, orderID uuid.UUID, shopifyLineItemID int64) (*domain.OrderItem, error)
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error)
	Upsert(ctx context.Context, item *domain.OrderItem) error
}

// StoreRepository defines Shopify store data access methods
type StoreRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ShopifyStore, error)
	GetByDomain(ctx context.Context, shopifyDomain string) (*domain.ShopifyStore, error)
	List(ctx context.Context) ([]*domain.ShopifyStore, error)
	ListActive(ctx context.Context) ([]*domain.ShopifyStore, error)
	Create(ctx context.Context, store *domain.ShopifyStore) error
	Update(ctx context.Context, store *domain.ShopifyStore) error
	UpdateSyncStatus(ctx context.Context, id uuid.UUID, status domain.StoreSyncStatus, lastSyncAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductLinkRepository maps local products to remote product/variant ids,
// unique per (local_product_id, shopify_store_id)
type ProductLinkRepository interface {
	GetByLocalProductID(ctx context.Context, storeID, localProductID uuid.UUID) (*domain.ProductLink, error)
	ListByStoreID(ctx context.Context, storeID uuid.UUID) ([]*domain.ProductLink, error)
	Upsert(ctx context.Context, link *domain.ProductLink) error
}

// Repositories aggregates all repositories
type Repositories struct {
	Product     ProductRepository
	Order       OrderRepository
	OrderItem   OrderItemRepository
	Store       StoreRepository
	ProductLink ProductLinkRepository
}
