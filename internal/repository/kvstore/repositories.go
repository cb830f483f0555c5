package kvstore

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AgimDur/produu/internal/domain"
	"github.com/AgimDur/produu/pkg/errors"
)

type productRepository struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	items, err := getCollection[domain.Product](ctx, r.rdb, keyProducts)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "product", ID: id.String()}
}

func (r *productRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	items, err := getCollection[domain.Product](ctx, r.rdb, keyProducts)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].SKU == sku {
			return &items[i], nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "product", ID: sku}
}

func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	items, err := getCollection[domain.Product](ctx, r.rdb, keyProducts)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	out := make([]*domain.Product, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out, nil
}

func (r *productRepository) ListByParentID(ctx context.Context, parentID uuid.UUID) ([]*domain.Product, error) {
	items, err := getCollection[domain.Product](ctx, r.rdb, keyProducts)
	if err != nil {
		return nil, err
	}
	var out []*domain.Product
	for i := range items {
		if items[i].ParentID != nil && *items[i].ParentID == parentID {
			out = append(out, &items[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	items, err := getCollection[domain.Product](ctx, r.rdb, keyProducts)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].SKU == product.SKU {
			return &errors.ErrConflict{Message: "sku already exists: " + product.SKU}
		}
	}
	now := time.Now()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	items = append(items, *product)
	return saveCollection(ctx, r.rdb, keyProducts, items)
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	items, err := getCollection[domain.Product](ctx, r.rdb, keyProducts)
	if err != nil {
		return err
	}
	product.UpdatedAt = time.Now()
	for i := range items {
		if items[i].ID == product.ID {
			items[i] = *product
			return saveCollection(ctx, r.rdb, keyProducts, items)
		}
	}
	return &errors.ErrNotFound{Resource: "product", ID: product.ID.String()}
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	items, err := getCollection[domain.Product](ctx, r.rdb, keyProducts)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == id {
			items = append(items[:i], items[i+1:]...)
			return saveCollection(ctx, r.rdb, keyProducts, items)
		}
	}
	return &errors.ErrNotFound{Resource: "product", ID: id.String()}
}

type orderRepository struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	items, err := getCollection[domain.Order](ctx, r.rdb, keyOrders)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
}

func (r *orderRepository) GetByShopifyOrderID(ctx context.Context, storeID uuid.UUID, shopifyOrderID int64) (*domain.Order, error) {
	items, err := getCollection[domain.Order](ctx, r.rdb, keyOrders)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ShopifyOrderID == shopifyOrderID && items[i].ShopifyStoreID == storeID {
			return &items[i], nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: strconv.FormatInt(shopifyOrderID, 10)}
}

func (r *orderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	items, err := getCollection[domain.Order](ctx, r.rdb, keyOrders)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	out := make([]*domain.Order, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out, nil
}

func (r *orderRepository) ListByStoreID(ctx context.Context, storeID uuid.UUID) ([]*domain.Order, error) {
	items, err := getCollection[domain.Order](ctx, r.rdb, keyOrders)
	if err != nil {
		return nil, err
	}
	var out []*domain.Order
	for i := range items {
		if items[i].ShopifyStoreID == storeID {
			out = append(out, &items[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	items, err := getCollection[domain.Order](ctx, r.rdb, keyOrders)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ShopifyOrderID == order.ShopifyOrderID && items[i].ShopifyStoreID == order.ShopifyStoreID {
			return &errors.ErrConflict{Message: "order already exists: " + strconv.FormatInt(order.ShopifyOrderID, 10)}
		}
	}
	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	items = append(items, *order)
	return saveCollection(ctx, r.rdb, keyOrders, items)
}

func (r *orderRepository) Update(ctx context.Context, order *domain.Order) error {
	items, err := getCollection[domain.Order](ctx, r.rdb, keyOrders)
	if err != nil {
		return err
	}
	order.UpdatedAt = time.Now()
	for i := range items {
		if items[i].ID == order.ID {
			items[i] = *order
			return saveCollection(ctx, r.rdb, keyOrders, items)
		}
	}
	return &errors.ErrNotFound{Resource: "order", ID: order.ID.String()}
}

func (r *orderRepository) UpdateCancellation(ctx context.Context, id uuid.UUID, cancelledAt *time.Time, reason *string, syncedAt time.Time) error {
	items, err := getCollection[domain.Order](ctx, r.rdb, keyOrders)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == id {
			items[i].OrderStatus = domain.OrderStatusCancelled
			items[i].CancelledAt = cancelledAt
			items[i].CancelledReason = reason
			items[i].LastSyncedAt = &syncedAt
			items[i].UpdatedAt = time.Now()
			return saveCollection(ctx, r.rdb, keyOrders, items)
		}
	}
	return &errors.ErrNotFound{Resource: "order", ID: id.String()}
}

func (r *orderRepository) Stats(ctx context.Context) (*domain.OrderStats, error) {
	items, err := getCollection[domain.Order](ctx, r.rdb, keyOrders)
	if err != nil {
		return nil, err
	}
	var stats domain.OrderStats
	for i := range items {
		stats.TotalOrders++
		stats.TotalRevenue += items[i].TotalPrice
		switch items[i].FulfillmentStatus {
		case domain.FulfillmentUnfulfilled:
			stats.PendingOrders++
		case domain.FulfillmentFulfilled:
			stats.FulfilledOrders++
		}
	}
	return &stats, nil
}

type orderItemRepository struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func (r *orderItemRepository) GetByLineItemID(ctx context.Context, orderID uuid.UUID, shopifyLineItemID int64) (*domain.OrderItem, error) {
	items, err := getCollection[domain.OrderItem](ctx, r.rdb, keyOrderItems)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ShopifyLineItemID == shopifyLineItemID && items[i].OrderID == orderID {
			return &items[i], nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "order_item", ID: strconv.FormatInt(shopifyLineItemID, 10)}
}

func (r *orderItemRepository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	items, err := getCollection[domain.OrderItem](ctx, r.rdb, keyOrderItems)
	if err != nil {
		return nil, err
	}
	var out []*domain.OrderItem
	for i := range items {
		if items[i].OrderID == orderID {
			out = append(out, &items[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *orderItemRepository) Upsert(ctx context.Context, item *domain.OrderItem) error {
	items, err := getCollection[domain.OrderItem](ctx, r.rdb, keyOrderItems)
	if err != nil {
		return err
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	for i := range items {
		if items[i].ShopifyLineItemID == item.ShopifyLineItemID && items[i].OrderID == item.OrderID {
			item.ID = items[i].ID
			item.CreatedAt = items[i].CreatedAt
			items[i] = *item
			return saveCollection(ctx, r.rdb, keyOrderItems, items)
		}
	}
	items = append(items, *item)
	return saveCollection(ctx, r.rdb, keyOrderItems, items)
}

type storeRepository struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func (r *storeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ShopifyStore, error) {
	items, err := getCollection[domain.ShopifyStore](ctx, r.rdb, keyStores)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "shopify_store", ID: id.String()}
}

func (r *storeRepository) GetByDomain(ctx context.Context, shopifyDomain string) (*domain.ShopifyStore, error) {
	items, err := getCollection[domain.ShopifyStore](ctx, r.rdb, keyStores)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ShopifyDomain == shopifyDomain {
			return &items[i], nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "shopify_store", ID: shopifyDomain}
}

func (r *storeRepository) List(ctx context.Context) ([]*domain.ShopifyStore, error) {
	items, err := getCollection[domain.ShopifyStore](ctx, r.rdb, keyStores)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	out := make([]*domain.ShopifyStore, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out, nil
}

func (r *storeRepository) ListActive(ctx context.Context) ([]*domain.ShopifyStore, error) {
	items, err := getCollection[domain.ShopifyStore](ctx, r.rdb, keyStores)
	if err != nil {
		return nil, err
	}
	var out []*domain.ShopifyStore
	for i := range items {
		if items[i].IsActive {
			out = append(out, &items[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *storeRepository) Create(ctx context.Context, store *domain.ShopifyStore) error {
	items, err := getCollection[domain.ShopifyStore](ctx, r.rdb, keyStores)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ShopifyDomain == store.ShopifyDomain {
			return &errors.ErrConflict{Message: "store already exists: " + store.ShopifyDomain}
		}
	}
	now := time.Now()
	if store.ID == uuid.Nil {
		store.ID = uuid.New()
	}
	if store.CreatedAt.IsZero() {
		store.CreatedAt = now
	}
	store.UpdatedAt = now
	if store.SyncStatus == "" {
		store.SyncStatus = domain.StoreSyncIdle
	}
	items = append(items, *store)
	return saveCollection(ctx, r.rdb, keyStores, items)
}

func (r *storeRepository) Update(ctx context.Context, store *domain.ShopifyStore) error {
	items, err := getCollection[domain.ShopifyStore](ctx, r.rdb, keyStores)
	if err != nil {
		return err
	}
	store.UpdatedAt = time.Now()
	for i := range items {
		if items[i].ID == store.ID {
			items[i] = *store
			return saveCollection(ctx, r.rdb, keyStores, items)
		}
	}
	return &errors.ErrNotFound{Resource: "shopify_store", ID: store.ID.String()}
}

func (r *storeRepository) UpdateSyncStatus(ctx context.Context, id uuid.UUID, status domain.StoreSyncStatus, lastSyncAt time.Time) error {
	items, err := getCollection[domain.ShopifyStore](ctx, r.rdb, keyStores)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == id {
			items[i].SyncStatus = status
			items[i].LastSyncAt = &lastSyncAt
			items[i].UpdatedAt = time.Now()
			return saveCollection(ctx, r.rdb, keyStores, items)
		}
	}
	return &errors.ErrNotFound{Resource: "shopify_store", ID: id.String()}
}

func (r *storeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	items, err := getCollection[domain.ShopifyStore](ctx, r.rdb, keyStores)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == id {
			items = append(items[:i], items[i+1:]...)
			return saveCollection(ctx, r.rdb, keyStores, items)
		}
	}
	return &errors.ErrNotFound{Resource: "shopify_store", ID: id.String()}
}

type productLinkRepository struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func (r *productLinkRepository) GetByLocalProductID(ctx context.Context, storeID, localProductID uuid.UUID) (*domain.ProductLink, error) {
	items, err := getCollection[domain.ProductLink](ctx, r.rdb, keyProductLinks)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].LocalProductID == localProductID && items[i].ShopifyStoreID == storeID {
			return &items[i], nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "product_link", ID: localProductID.String()}
}

func (r *productLinkRepository) ListByStoreID(ctx context.Context, storeID uuid.UUID) ([]*domain.ProductLink, error) {
	items, err := getCollection[domain.ProductLink](ctx, r.rdb, keyProductLinks)
	if err != nil {
		return nil, err
	}
	var out []*domain.ProductLink
	for i := range items {
		if items[i].ShopifyStoreID == storeID {
			out = append(out, &items[i])
		}
	}
	return out, nil
}

func (r *productLinkRepository) Upsert(ctx context.Context, link *domain.ProductLink) error {
	items, err := getCollection[domain.ProductLink](ctx, r.rdb, keyProductLinks)
	if err != nil {
		return err
	}
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now()
	}
	for i := range items {
		if items[i].LocalProductID == link.LocalProductID && items[i].ShopifyStoreID == link.ShopifyStoreID {
			link.ID = items[i].ID
			link.CreatedAt = items[i].CreatedAt
			items[i] = *link
			return saveCollection(ctx, r.rdb, keyProductLinks, items)
		}
	}
	items = append(items, *link)
	return saveCollection(ctx, r.rdb, keyProductLinks, items)
}
