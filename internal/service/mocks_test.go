package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AgimDur/produu/internal/domain"
	"github.com/AgimDur/produu/internal/repository"
	"github.com/AgimDur/produu/internal/shopify"
	"github.com/AgimDur/produu/pkg/errors"
)

// In-memory repositories with error injection for exercising the sync
// engine without a database.

type memProductRepo struct {
	mu       sync.Mutex
	products []*domain.Product
}

func (r *memProductRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "product", ID: id.String()}
}

func (r *memProductRepo) GetBySKU(_ context.Context, sku string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "product", ID: sku}
}

func (r *memProductRepo) List(_ context.Context) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

func (r *memProductRepo) ListByParentID(_ context.Context, parentID uuid.UUID) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Product
	for _, p := range r.products {
		if p.ParentID != nil && *p.ParentID == parentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProductRepo) Create(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.SKU == product.SKU {
			return &errors.ErrConflict{Message: "sku already exists: " + product.SKU}
		}
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.CreatedAt = time.Now()
	cp := *product
	r.products = append(r.products, &cp)
	return nil
}

func (r *memProductRepo) Update(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.products {
		if p.ID == product.ID {
			cp := *product
			r.products[i] = &cp
			return nil
		}
	}
	return &errors.ErrNotFound{Resource: "product", ID: product.ID.String()}
}

func (r *memProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.products {
		if p.ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return &errors.ErrNotFound{Resource: "product", ID: id.String()}
}

type memOrderRepo struct {
	mu         sync.Mutex
	orders     []*domain.Order
	failCreate map[int64]error // by shopify order id
}

func (r *memOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == id {
			cp := *o
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
}

func (r *memOrderRepo) GetByShopifyOrderID(_ context.Context, storeID uuid.UUID, shopifyOrderID int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ShopifyOrderID == shopifyOrderID && o.ShopifyStoreID == storeID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: strconv.FormatInt(shopifyOrderID, 10)}
}

func (r *memOrderRepo) List(_ context.Context) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Order, len(r.orders))
	copy(out, r.orders)
	return out, nil
}

func (r *memOrderRepo) ListByStoreID(_ context.Context, storeID uuid.UUID) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.orders {
		if o.ShopifyStoreID == storeID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failCreate[order.ShopifyOrderID]; ok {
		return err
	}
	for _, o := range r.orders {
		if o.ShopifyOrderID == order.ShopifyOrderID && o.ShopifyStoreID == order.ShopifyStoreID {
			return &errors.ErrConflict{Message: "order already exists"}
		}
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now()
	cp := *order
	r.orders = append(r.orders, &cp)
	return nil
}

func (r *memOrderRepo) Update(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, o := range r.orders {
		if o.ID == order.ID {
			cp := *order
			r.orders[i] = &cp
			return nil
		}
	}
	return &errors.ErrNotFound{Resource: "order", ID: order.ID.String()}
}

func (r *memOrderRepo) UpdateCancellation(_ context.Context, id uuid.UUID, cancelledAt *time.Time, reason *string, syncedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == id {
			o.OrderStatus = domain.OrderStatusCancelled
			o.CancelledAt = cancelledAt
			o.CancelledReason = reason
			o.LastSyncedAt = &syncedAt
			return nil
		}
	}
	return &errors.ErrNotFound{Resource: "order", ID: id.String()}
}

func (r *memOrderRepo) Stats(_ context.Context) (*domain.OrderStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stats domain.OrderStats
	for _, o := range r.orders {
		stats.TotalOrders++
		stats.TotalRevenue += o.TotalPrice
		switch o.FulfillmentStatus {
		case domain.FulfillmentUnfulfilled:
			stats.PendingOrders++
		case domain.FulfillmentFulfilled:
			stats.FulfilledOrders++
		}
	}
	return &stats, nil
}

type memOrderItemRepo struct {
	mu    sync.Mutex
	items []*domain.OrderItem
}

func (r *memOrderItemRepo) GetByLineItemID(_ context.Context, orderID uuid.UUID, lineItemID int64) (*domain.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.OrderID == orderID && it.ShopifyLineItemID == lineItemID {
			cp := *it
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "order_item", ID: strconv.FormatInt(lineItemID, 10)}
}

func (r *memOrderItemRepo) ListByOrderID(_ context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.OrderItem
	for _, it := range r.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *memOrderItemRepo) Upsert(_ context.Context, item *domain.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, it := range r.items {
		if it.OrderID == item.OrderID && it.ShopifyLineItemID == item.ShopifyLineItemID {
			item.ID = it.ID
			cp := *item
			r.items[i] = &cp
			return nil
		}
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	cp := *item
	r.items = append(r.items, &cp)
	return nil
}

type memStoreRepo struct {
	mu           sync.Mutex
	stores       []*domain.ShopifyStore
	statusWrites []domain.StoreSyncStatus
}

func (r *memStoreRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.ShopifyStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.stores {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "shopify_store", ID: id.String()}
}

func (r *memStoreRepo) GetByDomain(_ context.Context, shopifyDomain string) (*domain.ShopifyStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.stores {
		if s.ShopifyDomain == shopifyDomain {
			cp := *s
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "shopify_store", ID: shopifyDomain}
}

func (r *memStoreRepo) List(_ context.Context) ([]*domain.ShopifyStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.ShopifyStore, len(r.stores))
	copy(out, r.stores)
	return out, nil
}

func (r *memStoreRepo) ListActive(_ context.Context) ([]*domain.ShopifyStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ShopifyStore
	for _, s := range r.stores {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memStoreRepo) Create(_ context.Context, store *domain.ShopifyStore) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.stores {
		if s.ShopifyDomain == store.ShopifyDomain {
			return &errors.ErrConflict{Message: "store already exists"}
		}
	}
	if store.ID == uuid.Nil {
		store.ID = uuid.New()
	}
	cp := *store
	r.stores = append(r.stores, &cp)
	return nil
}

func (r *memStoreRepo) Update(_ context.Context, store *domain.ShopifyStore) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.stores {
		if s.ID == store.ID {
			cp := *store
			r.stores[i] = &cp
			return nil
		}
	}
	return &errors.ErrNotFound{Resource: "shopify_store", ID: store.ID.String()}
}

func (r *memStoreRepo) UpdateSyncStatus(_ context.Context, id uuid.UUID, status domain.StoreSyncStatus, lastSyncAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.stores {
		if s.ID == id {
			s.SyncStatus = status
			s.LastSyncAt = &lastSyncAt
			r.statusWrites = append(r.statusWrites, status)
			return nil
		}
	}
	return &errors.ErrNotFound{Resource: "shopify_store", ID: id.String()}
}

func (r *memStoreRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.stores {
		if s.ID == id {
			r.stores = append(r.stores[:i], r.stores[i+1:]...)
			return nil
		}
	}
	return &errors.ErrNotFound{Resource: "shopify_store", ID: id.String()}
}

type memProductLinkRepo struct {
	mu    sync.Mutex
	links []*domain.ProductLink
}

func (r *memProductLinkRepo) GetByLocalProductID(_ context.Context, storeID, localProductID uuid.UUID) (*domain.ProductLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.links {
		if l.LocalProductID == localProductID && l.ShopifyStoreID == storeID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "product_link", ID: localProductID.String()}
}

func (r *memProductLinkRepo) ListByStoreID(_ context.Context, storeID uuid.UUID) ([]*domain.ProductLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ProductLink
	for _, l := range r.links {
		if l.ShopifyStoreID == storeID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memProductLinkRepo) Upsert(_ context.Context, link *domain.ProductLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.links {
		if l.LocalProductID == link.LocalProductID && l.ShopifyStoreID == link.ShopifyStoreID {
			link.ID = l.ID
			cp := *link
			r.links[i] = &cp
			return nil
		}
	}
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	cp := *link
	r.links = append(r.links, &cp)
	return nil
}

type memRepos struct {
	products *memProductRepo
	orders   *memOrderRepo
	items    *memOrderItemRepo
	stores   *memStoreRepo
	links    *memProductLinkRepo
}

func newMemRepos() (*repository.Repositories, *memRepos) {
	m := &memRepos{
		products: &memProductRepo{},
		orders:   &memOrderRepo{failCreate: map[int64]error{}},
		items:    &memOrderItemRepo{},
		stores:   &memStoreRepo{},
		links:    &memProductLinkRepo{},
	}
	return &repository.Repositories{
		Product:     m.products,
		Order:       m.orders,
		OrderItem:   m.items,
		Store:       m.stores,
		ProductLink: m.links,
	}, m
}

// fakeGateway simulates the remote store in memory
type fakeGateway struct {
	mu             sync.Mutex
	connected      bool
	remoteProducts []shopify.Product
	remoteOrders   []shopify.Order
	webhooks       []shopify.Webhook
	failSKUs       map[string]error
	listErr        error
	createCalls    int
	updateCalls    int
	nextID         int64
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{connected: true, failSKUs: map[string]error{}, nextID: 1000}
}

func (g *fakeGateway) factory() GatewayFactory {
	return func(*domain.ShopifyStore) ShopifyGateway { return g }
}

func (g *fakeGateway) TestConnection(context.Context) bool { return g.connected }

func (g *fakeGateway) ListProducts(context.Context, int) ([]shopify.Product, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listErr != nil {
		return nil, g.listErr
	}
	out := make([]shopify.Product, len(g.remoteProducts))
	copy(out, g.remoteProducts)
	return out, nil
}

func (g *fakeGateway) ListOrders(context.Context, int, string) ([]shopify.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listErr != nil {
		return nil, g.listErr
	}
	out := make([]shopify.Order, len(g.remoteOrders))
	copy(out, g.remoteOrders)
	return out, nil
}

func (g *fakeGateway) CreateProduct(_ context.Context, p *domain.Product) (*shopify.Product, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls++
	if err, ok := g.failSKUs[p.SKU]; ok {
		return nil, err
	}
	g.nextID++
	remote := shopify.Product{
		ID:    g.nextID,
		Title: p.Name,
		Variants: []shopify.Variant{
			{ID: g.nextID * 10, ProductID: g.nextID, Price: shopify.FormatMoney(p.Price), SKU: p.SKU, InventoryQuantity: p.Stock},
		},
	}
	g.remoteProducts = append(g.remoteProducts, remote)
	return &remote, nil
}

func (g *fakeGateway) UpdateProduct(_ context.Context, remoteID int64, p *domain.Product) (*shopify.Product, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.updateCalls++
	if err, ok := g.failSKUs[p.SKU]; ok {
		return nil, err
	}
	for i := range g.remoteProducts {
		if g.remoteProducts[i].ID == remoteID {
			g.remoteProducts[i].Title = p.Name
			if len(g.remoteProducts[i].Variants) > 0 {
				g.remoteProducts[i].Variants[0].Price = shopify.FormatMoney(p.Price)
				g.remoteProducts[i].Variants[0].InventoryQuantity = p.Stock
			}
			return &g.remoteProducts[i], nil
		}
	}
	return nil, fmt.Errorf("remote product %d not found", remoteID)
}

func (g *fakeGateway) EnsureWebhook(_ context.Context, topic, address string) (*shopify.Webhook, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.webhooks {
		if g.webhooks[i].Topic == topic && g.webhooks[i].Address == address {
			return &g.webhooks[i], nil
		}
	}
	g.nextID++
	wh := shopify.Webhook{ID: g.nextID, Topic: topic, Address: address, Format: "json"}
	g.webhooks = append(g.webhooks, wh)
	return &wh, nil
}
