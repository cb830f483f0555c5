package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AgimDur/produu/internal/domain"
	"github.com/AgimDur/produu/internal/shopify"
	"github.com/AgimDur/produu/pkg/errors"
)

func newTestSyncService(t *testing.T) (*SyncService, *memRepos, *fakeGateway, *domain.ShopifyStore) {
	t.Helper()
	repos, mem := newMemRepos()
	gw := newFakeGateway()
	svc := NewSyncService(repos, gw.factory(), zap.NewNop())

	store := &domain.ShopifyStore{
		StoreName:     "Test Shop",
		ShopifyDomain: "test-shop.myshopify.com",
		AccessToken:   "shpat_test",
		IsActive:      true,
		SyncStatus:    domain.StoreSyncIdle,
	}
	require.NoError(t, mem.stores.Create(context.Background(), store))
	return svc, mem, gw, store
}

func localProduct(sku string, price int64) *domain.Product {
	return &domain.Product{
		SKU:      sku,
		Name:     "Product " + sku,
		Price:    price,
		Stock:    5,
		Category: "Test",
		SKULevel: domain.SKULevelGrandparent,
	}
}

func TestPushProductsUpdatesMatchingSKU(t *testing.T) {
	svc, mem, gw, store := newTestSyncService(t)
	ctx := context.Background()

	require.NoError(t, mem.products.Create(ctx, localProduct("SKU-1", 2999)))
	gw.remoteProducts = []shopify.Product{
		{ID: 100, Title: "Old Title", Variants: []shopify.Variant{{ID: 1001, Price: "10.00", SKU: "SKU-1"}}},
	}

	result, err := svc.SyncProductsToShopify(ctx, store.ID)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.SyncedProducts)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, gw.updateCalls)
	assert.Equal(t, 0, gw.createCalls)
	assert.Equal(t, "29.99", gw.remoteProducts[0].Variants[0].Price)
}

func TestPushProductsCreatesMissing(t *testing.T) {
	svc, mem, gw, store := newTestSyncService(t)
	ctx := context.Background()

	require.NoError(t, mem.products.Create(ctx, localProduct("NEW-1", 1500)))

	result, err := svc.SyncProductsToShopify(ctx, store.ID)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, gw.createCalls)
	assert.Equal(t, 0, gw.updateCalls)

	// mapping is recorded
	require.Len(t, mem.links.links, 1)
	assert.Equal(t, store.ID, mem.links.links[0].ShopifyStoreID)
}

func TestPushProductsTwiceIsIdempotent(t *testing.T) {
	svc, mem, gw, store := newTestSyncService(t)
	ctx := context.Background()

	require.NoError(t, mem.products.Create(ctx, localProduct("IDEM-1", 999)))

	_, err := svc.SyncProductsToShopify(ctx, store.ID)
	require.NoError(t, err)
	result, err := svc.SyncProductsToShopify(ctx, store.ID)
	require.NoError(t, err)

	// second run finds the product remotely and updates instead of creating
	assert.True(t, result.Success)
	assert.Equal(t, 1, gw.createCalls)
	assert.Equal(t, 1, gw.updateCalls)
	assert.Len(t, gw.remoteProducts, 1)
}

func TestPushProductsAccumulatesErrors(t *testing.T) {
	svc, mem, gw, store := newTestSyncService(t)
	ctx := context.Background()

	require.NoError(t, mem.products.Create(ctx, localProduct("OK-1", 100)))
	require.NoError(t, mem.products.Create(ctx, localProduct("BAD-1", 200)))
	require.NoError(t, mem.products.Create(ctx, localProduct("OK-2", 300)))
	gw.failSKUs["BAD-1"] = fmt.Errorf("rate limited")

	result, err := svc.SyncProductsToShopify(ctx, store.ID)
	require.NoError(t, err)

	// the failing product does not abort the batch
	assert.False(t, result.Success)
	assert.Equal(t, 2, result.SyncedProducts)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "BAD-1")
	assert.Equal(t, 3, gw.createCalls)

	// store ends in error after a partial failure
	updated, err := mem.stores.GetByID(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StoreSyncError, updated.SyncStatus)
}

func TestSyncMarksStoreSyncingThenSuccess(t *testing.T) {
	svc, mem, _, store := newTestSyncService(t)

	result, err := svc.SyncProductsToShopify(context.Background(), store.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)

	require.Len(t, mem.stores.statusWrites, 2)
	assert.Equal(t, domain.StoreSyncRunning, mem.stores.statusWrites[0])
	assert.Equal(t, domain.StoreSyncSuccess, mem.stores.statusWrites[1])

	updated, err := mem.stores.GetByID(context.Background(), store.ID)
	require.NoError(t, err)
	assert.NotNil(t, updated.LastSyncAt)
}

func TestSyncWritesErrorStatusWhenRemoteUnreachable(t *testing.T) {
	svc, mem, gw, store := newTestSyncService(t)
	gw.listErr = fmt.Errorf("connection refused")

	result, err := svc.SyncProductsToShopify(context.Background(), store.ID)
	require.NoError(t, err)
	assert.False(t, result.Success)

	updated, err := mem.stores.GetByID(context.Background(), store.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StoreSyncError, updated.SyncStatus)
}

func TestSyncUnknownStore(t *testing.T) {
	svc, _, _, _ := newTestSyncService(t)

	_, err := svc.SyncProductsToShopify(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestPullProductsImports(t *testing.T) {
	svc, mem, gw, store := newTestSyncService(t)
	ctx := context.Background()

	barcode := "4012345678901"
	gw.remoteProducts = []shopify.Product{
		{
			ID:    200,
			Title: "Imported Widget",
			Variants: []shopify.Variant{
				{ID: 2001, Price: "99.99", SKU: "IMP-1", Barcode: &barcode, InventoryQuantity: 7},
			},
		},
		// no variants: skipped without counting as an error
		{ID: 201, Title: "Empty Product"},
	}

	result, err := svc.SyncProductsFromShopify(ctx, store.ID)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.SyncedProducts)
	assert.Empty(t, result.Errors)

	p, err := mem.products.GetBySKU(ctx, "IMP-1")
	require.NoError(t, err)
	assert.Equal(t, int64(9999), p.Price)
	assert.Equal(t, 7, p.Stock)
	assert.Equal(t, "Shopify Import", p.Category)
	assert.Equal(t, domain.SKULevelGrandparent, p.SKULevel)
	require.NotNil(t, p.EAN13)
	assert.Equal(t, barcode, *p.EAN13)

	link, err := mem.links.GetByLocalProductID(ctx, store.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(200), link.ShopifyProductID)
	require.NotNil(t, link.ShopifyVariantID)
	assert.Equal(t, int64(2001), *link.ShopifyVariantID)
}

func TestPullProductsKeepsLocalHierarchy(t *testing.T) {
	svc, mem, gw, store := newTestSyncService(t)
	ctx := context.Background()

	parentID := uuid.New()
	existing := localProduct("KEEP-1", 1000)
	existing.SKULevel = domain.SKULevelChild
	existing.ParentID = &parentID
	require.NoError(t, mem.products.Create(ctx, existing))

	gw.remoteProducts = []shopify.Product{
		{ID: 300, Title: "Renamed", ProductType: "Hats", Variants: []shopify.Variant{
			{ID: 3001, Price: "12.50", SKU: "KEEP-1", InventoryQuantity: 3},
		}},
	}

	result, err := svc.SyncProductsFromShopify(ctx, store.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)

	p, err := mem.products.GetBySKU(ctx, "KEEP-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", p.Name)
	assert.Equal(t, int64(1250), p.Price)
	assert.Equal(t, "Hats", p.Category)
	// classification survives the import
	assert.Equal(t, domain.SKULevelChild, p.SKULevel)
	require.NotNil(t, p.ParentID)
	assert.Equal(t, parentID, *p.ParentID)
}

func remoteOrder(id int64, total string) shopify.Order {
	return shopify.Order{
		ID:              id,
		OrderNumber:     shopify.OrderNumber(fmt.Sprintf("%d", id)),
		Email:           "buyer@example.com",
		TotalPrice:      total,
		SubtotalPrice:   total,
		TotalTax:        "0.00",
		Currency:        "EUR",
		FinancialStatus: "paid",
		LineItems: []shopify.LineItem{
			{ID: id * 10, SKU: "SKU-1", Title: "Product SKU-1", Quantity: 1, Price: total, TotalDiscount: "0.00"},
		},
	}
}

func TestPullOrdersImportsNewAndSkipsExisting(t *testing.T) {
	svc, mem, gw, store := newTestSyncService(t)
	ctx := context.Background()

	require.NoError(t, mem.products.Create(ctx, localProduct("SKU-1", 4999)))

	existing := &domain.Order{
		ShopifyOrderID: 500,
		ShopifyStoreID: store.ID,
		TotalPrice:     1111,
		OrderStatus:    domain.OrderStatusOpen,
	}
	require.NoError(t, mem.orders.Create(ctx, existing))

	gw.remoteOrders = []shopify.Order{
		remoteOrder(500, "99.99"), // already known: skipped untouched
		remoteOrder(501, "49.99"),
	}

	result, err := svc.SyncOrdersFromShopify(ctx, store.ID)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.SyncedOrders)

	// existing record untouched
	kept, err := mem.orders.GetByShopifyOrderID(ctx, store.ID, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(1111), kept.TotalPrice)

	// new record imported with converted money and derived statuses
	imported, err := mem.orders.GetByShopifyOrderID(ctx, store.ID, 501)
	require.NoError(t, err)
	assert.Equal(t, int64(4999), imported.TotalPrice)
	assert.Equal(t, domain.OrderStatusOpen, imported.OrderStatus)
	assert.Equal(t, domain.FulfillmentUnfulfilled, imported.FulfillmentStatus)
	assert.Equal(t, domain.SyncStatusSynced, imported.SyncStatus)
	require.NotNil(t, imported.CustomerEmail)
	assert.Equal(t, "buyer@example.com", *imported.CustomerEmail)

	// line item landed with the catalog reference resolved by SKU
	items, err := mem.items.ListByOrderID(ctx, imported.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].ProductID)
	assert.Equal(t, int64(4999), items[0].Price)
}

func TestPullOrdersDerivesStatuses(t *testing.T) {
	svc, mem, gw, store := newTestSyncService(t)
	ctx := context.Background()

	cancelledAt := time.Now().Add(-time.Hour)
	cancelled := remoteOrder(600, "10.00")
	cancelled.CancelledAt = &cancelledAt

	fulfilled := remoteOrder(601, "20.00")
	fulfilled.Fulfillments = []shopify.Fulfillment{{ID: 1, Status: "success"}}

	gw.remoteOrders = []shopify.Order{cancelled, fulfilled}

	result, err := svc.SyncOrdersFromShopify(ctx, store.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)

	o, err := mem.orders.GetByShopifyOrderID(ctx, store.ID, 600)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, o.OrderStatus)
	require.NotNil(t, o.CancelledAt)

	o, err = mem.orders.GetByShopifyOrderID(ctx, store.ID, 601)
	require.NoError(t, err)
	assert.Equal(t, domain.FulfillmentFulfilled, o.FulfillmentStatus)
}

func TestPullOrdersAccumulatesPerOrderErrors(t *testing.T) {
	svc, mem, gw, store := newTestSyncService(t)
	ctx := context.Background()

	mem.orders.failCreate[701] = fmt.Errorf("write failed")
	gw.remoteOrders = []shopify.Order{
		remoteOrder(700, "10.00"),
		remoteOrder(701, "20.00"),
		remoteOrder(702, "30.00"),
	}

	result, err := svc.SyncOrdersFromShopify(ctx, store.ID)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 2, result.SyncedOrders)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "701")

	// the orders around the failure still landed
	_, err = mem.orders.GetByShopifyOrderID(ctx, store.ID, 700)
	assert.NoError(t, err)
	_, err = mem.orders.GetByShopifyOrderID(ctx, store.ID, 702)
	assert.NoError(t, err)
}

func TestProcessOrderEventCreatesUnknownOrder(t *testing.T) {
	svc, mem, _, store := newTestSyncService(t)
	ctx := context.Background()

	ro := remoteOrder(800, "15.00")
	require.NoError(t, svc.ProcessOrderEvent(ctx, "orders/create", store.ShopifyDomain, &ro))

	o, err := mem.orders.GetByShopifyOrderID(ctx, store.ID, 800)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), o.TotalPrice)

	items, err := mem.items.ListByOrderID(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestProcessOrderEventUpdatesExistingOrder(t *testing.T) {
	svc, mem, _, store := newTestSyncService(t)
	ctx := context.Background()

	ro := remoteOrder(810, "15.00")
	require.NoError(t, svc.ProcessOrderEvent(ctx, "orders/create", store.ShopifyDomain, &ro))

	ro.TotalPrice = "25.00"
	ro.Fulfillments = []shopify.Fulfillment{{ID: 1, Status: "success"}}
	require.NoError(t, svc.ProcessOrderEvent(ctx, "orders/fulfilled", store.ShopifyDomain, &ro))

	o, err := mem.orders.GetByShopifyOrderID(ctx, store.ID, 810)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), o.TotalPrice)
	assert.Equal(t, domain.FulfillmentFulfilled, o.FulfillmentStatus)

	// still one order, not a duplicate
	all, err := mem.orders.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProcessOrderEventCancelledTouchesOnlyCancellationFields(t *testing.T) {
	svc, mem, _, store := newTestSyncService(t)
	ctx := context.Background()

	ro := remoteOrder(820, "50.00")
	require.NoError(t, svc.ProcessOrderEvent(ctx, "orders/create", store.ShopifyDomain, &ro))

	cancelledAt := time.Now()
	reason := "customer"
	event := remoteOrder(820, "0.00") // totals in the cancellation payload must be ignored
	event.CancelledAt = &cancelledAt
	event.CancelReason = &reason
	require.NoError(t, svc.ProcessOrderEvent(ctx, TopicOrdersCancelled, store.ShopifyDomain, &event))

	o, err := mem.orders.GetByShopifyOrderID(ctx, store.ID, 820)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, o.OrderStatus)
	require.NotNil(t, o.CancelledAt)
	require.NotNil(t, o.CancelledReason)
	assert.Equal(t, "customer", *o.CancelledReason)
	// total not overwritten by the partial update
	assert.Equal(t, int64(5000), o.TotalPrice)
}

func TestProcessOrderEventFallsBackToFirstActiveStore(t *testing.T) {
	svc, mem, _, store := newTestSyncService(t)
	ctx := context.Background()

	ro := remoteOrder(830, "10.00")
	// no shop domain header: route to the first active store
	require.NoError(t, svc.ProcessOrderEvent(ctx, "orders/create", "", &ro))

	_, err := mem.orders.GetByShopifyOrderID(ctx, store.ID, 830)
	assert.NoError(t, err)
}

func TestProcessOrderEventNoStores(t *testing.T) {
	repos, _ := newMemRepos()
	svc := NewSyncService(repos, newFakeGateway().factory(), zap.NewNop())

	ro := remoteOrder(840, "10.00")
	err := svc.ProcessOrderEvent(context.Background(), "orders/create", "", &ro)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}
