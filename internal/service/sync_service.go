package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AgimDur/produu/internal/domain"
	"github.com/AgimDur/produu/internal/repository"
	"github.com/AgimDur/produu/internal/shopify"
	"github.com/AgimDur/produu/pkg/errors"
)

const (
	syncPageLimit         = 250
	defaultImportCategory = "Shopify Import"
)

// TopicOrdersCancelled triggers a partial update: only the cancellation
// fields of an existing order are touched.
const TopicOrdersCancelled = "orders/cancelled"

// WebhookTopics is the allow-list of order topics we subscribe to and accept
var WebhookTopics = []string{
	"orders/create",
	"orders/updated",
	TopicOrdersCancelled,
	"orders/fulfilled",
	"orders/partially_fulfilled",
}

// IsRelevantTopic reports whether the given webhook topic is on the allow-list
func IsRelevantTopic(topic string) bool {
	for _, t := range WebhookTopics {
		if t == topic {
			return true
		}
	}
	return false
}

// SyncService reconciles the local catalog and order book with Shopify.
// Syncs for the same store are serialized by a per-store mutex so concurrent
// triggers cannot interleave writes.
type SyncService struct {
	repos      *repository.Repositories
	gateway    GatewayFactory
	logger     *zap.Logger
	storeLocks sync.Map // uuid.UUID -> *sync.Mutex
}

// NewSyncService creates a new sync service
func NewSyncService(repos *repository.Repositories, gateway GatewayFactory, logger *zap.Logger) *SyncService {
	return &SyncService{
		repos:   repos,
		gateway: gateway,
		logger:  logger,
	}
}

func (s *SyncService) storeLock(id uuid.UUID) *sync.Mutex {
	mu, _ := s.storeLocks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// runWithStoreSync loads the store, takes its lock, marks it syncing and
// guarantees a success/error status write-back on every exit path,
// including panics inside fn.
func (s *SyncService) runWithStoreSync(ctx context.Context, storeID uuid.UUID, fn func(ctx context.Context, store *domain.ShopifyStore, gw ShopifyGateway) *SyncResult) (result *SyncResult, err error) {
	store, err := s.repos.Store.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}

	mu := s.storeLock(storeID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.repos.Store.UpdateSyncStatus(ctx, storeID, domain.StoreSyncRunning, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to mark store syncing: %w", err)
	}

	defer func() {
		status := domain.StoreSyncError
		if err == nil && result != nil && result.Success {
			status = domain.StoreSyncSuccess
		}
		if uerr := s.repos.Store.UpdateSyncStatus(ctx, storeID, status, time.Now()); uerr != nil {
			s.logger.Error("Failed to write back store sync status",
				zap.String("store_id", storeID.String()),
				zap.String("status", string(status)),
				zap.Error(uerr))
		}
	}()

	result = fn(ctx, store, s.gateway(store))
	return result, nil
}

// SyncProductsToShopify pushes the local catalog into one store. Products
// whose SKU matches a remote variant SKU are updated in place, the rest are
// created. Per-product failures are collected and do not abort the run.
func (s *SyncService) SyncProductsToShopify(ctx context.Context, storeID uuid.UUID) (*SyncResult, error) {
	return s.runWithStoreSync(ctx, storeID, func(ctx context.Context, store *domain.ShopifyStore, gw ShopifyGateway) *SyncResult {
		products, err := s.repos.Product.List(ctx)
		if err != nil {
			return failResult("Failed to load local products", err)
		}

		remotes, err := gw.ListProducts(ctx, syncPageLimit)
		if err != nil {
			return failResult("Failed to fetch products from Shopify", err)
		}

		// index every remote variant SKU so matches are not limited to the
		// first variant
		bySKU := make(map[string]*shopify.Product)
		for i := range remotes {
			for _, v := range remotes[i].Variants {
				if v.SKU != "" {
					bySKU[v.SKU] = &remotes[i]
				}
			}
		}

		synced := 0
		var errs []string
		now := time.Now()
		for _, p := range products {
			remote, exists := bySKU[p.SKU]
			if exists {
				remote, err = gw.UpdateProduct(ctx, remote.ID, p)
			} else {
				remote, err = gw.CreateProduct(ctx, p)
			}
			if err != nil {
				errs = append(errs, fmt.Sprintf("product %s: %v", p.SKU, err))
				continue
			}
			s.recordProductLink(ctx, store.ID, p.ID, remote, now)
			synced++
		}

		s.logger.Info("Product push finished",
			zap.String("store", store.ShopifyDomain),
			zap.Int("synced", synced),
			zap.Int("failed", len(errs)))

		return &SyncResult{
			Success:        len(errs) == 0,
			Message:        fmt.Sprintf("Synced %d of %d products to Shopify", synced, len(products)),
			SyncedProducts: synced,
			Errors:         errs,
		}
	})
}

// SyncProductsFromShopify imports the store's products into the local
// catalog. The first variant is the product-of-record; products without
// variants are skipped. New products land as grandparents so they can be
// classified afterwards.
func (s *SyncService) SyncProductsFromShopify(ctx context.Context, storeID uuid.UUID) (*SyncResult, error) {
	return s.runWithStoreSync(ctx, storeID, func(ctx context.Context, store *domain.ShopifyStore, gw ShopifyGateway) *SyncResult {
		remotes, err := gw.ListProducts(ctx, syncPageLimit)
		if err != nil {
			return failResult("Failed to fetch products from Shopify", err)
		}

		synced := 0
		var errs []string
		now := time.Now()
		for i := range remotes {
			rp := &remotes[i]
			if len(rp.Variants) == 0 {
				continue
			}
			variant := rp.Variants[0]
			if variant.SKU == "" {
				errs = append(errs, fmt.Sprintf("product %q (%d): variant has no SKU", rp.Title, rp.ID))
				continue
			}

			local, err := s.importProduct(ctx, rp, &variant)
			if err != nil {
				errs = append(errs, fmt.Sprintf("product %s: %v", variant.SKU, err))
				continue
			}
			s.recordProductLink(ctx, store.ID, local.ID, rp, now)
			synced++
		}

		s.logger.Info("Product pull finished",
			zap.String("store", store.ShopifyDomain),
			zap.Int("synced", synced),
			zap.Int("failed", len(errs)))

		return &SyncResult{
			Success:        len(errs) == 0,
			Message:        fmt.Sprintf("Imported %d products from Shopify", synced),
			SyncedProducts: synced,
			Errors:         errs,
		}
	})
}

// importProduct upserts one remote product into the local catalog, keyed by
// the variant SKU. Hierarchy fields of existing products are left alone.
func (s *SyncService) importProduct(ctx context.Context, rp *shopify.Product, variant *shopify.Variant) (*domain.Product, error) {
	price, err := shopify.ParseMoney(variant.Price)
	if err != nil {
		return nil, err
	}

	category := rp.ProductType
	if category == "" {
		category = defaultImportCategory
	}

	var description *string
	if rp.BodyHTML != "" {
		description = &rp.BodyHTML
	}

	local, err := s.repos.Product.GetBySKU(ctx, variant.SKU)
	if err != nil {
		if !errors.IsNotFound(err) {
			return nil, err
		}
		local = &domain.Product{
			SKU:         variant.SKU,
			EAN13:       variant.Barcode,
			Name:        rp.Title,
			Description: description,
			Price:       price,
			Stock:       variant.InventoryQuantity,
			Category:    category,
			SKULevel:    domain.SKULevelGrandparent,
		}
		if err := s.repos.Product.Create(ctx, local); err != nil {
			return nil, err
		}
		return local, nil
	}

	local.Name = rp.Title
	local.Description = description
	local.Price = price
	local.Stock = variant.InventoryQuantity
	local.Category = category
	if variant.Barcode != nil {
		local.EAN13 = variant.Barcode
	}
	if err := s.repos.Product.Update(ctx, local); err != nil {
		return nil, err
	}
	return local, nil
}

// recordProductLink upserts the local-to-remote mapping. Failures are logged
// but never fail the product itself.
func (s *SyncService) recordProductLink(ctx context.Context, storeID, localID uuid.UUID, remote *shopify.Product, now time.Time) {
	link := &domain.ProductLink{
		LocalProductID:   localID,
		ShopifyProductID: remote.ID,
		ShopifyStoreID:   storeID,
		LastSyncedAt:     &now,
		SyncStatus:       domain.SyncStatusSynced,
	}
	if len(remote.Variants) > 0 {
		variantID := remote.Variants[0].ID
		link.ShopifyVariantID = &variantID
	}
	if err := s.repos.ProductLink.Upsert(ctx, link); err != nil {
		s.logger.Warn("Failed to upsert product link",
			zap.String("product_id", localID.String()),
			zap.Int64("shopify_product_id", remote.ID),
			zap.Error(err))
	}
}

// SyncOrdersFromShopify imports orders the store does not have locally yet.
// Orders already present (matched by remote order id within the store) are
// skipped untouched; webhooks keep them current.
func (s *SyncService) SyncOrdersFromShopify(ctx context.Context, storeID uuid.UUID) (*SyncResult, error) {
	return s.runWithStoreSync(ctx, storeID, func(ctx context.Context, store *domain.ShopifyStore, gw ShopifyGateway) *SyncResult {
		remotes, err := gw.ListOrders(ctx, syncPageLimit, "any")
		if err != nil {
			return failResult("Failed to fetch orders from Shopify", err)
		}

		synced := 0
		var errs []string
		for i := range remotes {
			ro := &remotes[i]
			_, err := s.repos.Order.GetByShopifyOrderID(ctx, store.ID, ro.ID)
			if err == nil {
				continue
			}
			if !errors.IsNotFound(err) {
				errs = append(errs, fmt.Sprintf("order %d: %v", ro.ID, err))
				continue
			}

			order, err := buildLocalOrder(store.ID, ro)
			if err != nil {
				errs = append(errs, fmt.Sprintf("order %d: %v", ro.ID, err))
				continue
			}
			if err := s.repos.Order.Create(ctx, order); err != nil {
				errs = append(errs, fmt.Sprintf("order %d: %v", ro.ID, err))
				continue
			}
			s.syncOrderItems(ctx, order.ID, ro.LineItems, &errs)
			synced++
		}

		s.logger.Info("Order pull finished",
			zap.String("store", store.ShopifyDomain),
			zap.Int("synced", synced),
			zap.Int("failed", len(errs)))

		return &SyncResult{
			Success:      len(errs) == 0,
			Message:      fmt.Sprintf("Imported %d new orders from Shopify", synced),
			SyncedOrders: synced,
			Errors:       errs,
		}
	})
}

// ProcessOrderEvent applies one verified webhook payload. Cancellation events
// against a known order only touch the cancellation fields; every other topic
// fully upserts the order and its line items.
func (s *SyncService) ProcessOrderEvent(ctx context.Context, topic, shopDomain string, ro *shopify.Order) error {
	store, err := s.resolveStore(ctx, shopDomain)
	if err != nil {
		return err
	}

	existing, err := s.repos.Order.GetByShopifyOrderID(ctx, store.ID, ro.ID)
	if err != nil && !errors.IsNotFound(err) {
		return err
	}

	now := time.Now()
	if existing != nil {
		if topic == TopicOrdersCancelled {
			return s.repos.Order.UpdateCancellation(ctx, existing.ID, ro.CancelledAt, ro.CancelReason, now)
		}
		order, err := buildLocalOrder(store.ID, ro)
		if err != nil {
			return err
		}
		order.ID = existing.ID
		order.CreatedAt = existing.CreatedAt
		if err := s.repos.Order.Update(ctx, order); err != nil {
			return err
		}
		var itemErrs []string
		s.syncOrderItems(ctx, order.ID, ro.LineItems, &itemErrs)
		if len(itemErrs) > 0 {
			s.logger.Warn("Some line items failed during webhook update",
				zap.Int64("shopify_order_id", ro.ID),
				zap.Strings("errors", itemErrs))
		}
		return nil
	}

	order, err := buildLocalOrder(store.ID, ro)
	if err != nil {
		return err
	}
	if err := s.repos.Order.Create(ctx, order); err != nil {
		return err
	}
	if topic != TopicOrdersCancelled {
		var itemErrs []string
		s.syncOrderItems(ctx, order.ID, ro.LineItems, &itemErrs)
		if len(itemErrs) > 0 {
			s.logger.Warn("Some line items failed during webhook create",
				zap.Int64("shopify_order_id", ro.ID),
				zap.Strings("errors", itemErrs))
		}
	}
	return nil
}

// resolveStore picks the store a webhook belongs to: by shop domain when the
// header is present, otherwise the first active store.
func (s *SyncService) resolveStore(ctx context.Context, shopDomain string) (*domain.ShopifyStore, error) {
	if shopDomain != "" {
		store, err := s.repos.Store.GetByDomain(ctx, shopDomain)
		if err == nil {
			return store, nil
		}
		if !errors.IsNotFound(err) {
			return nil, err
		}
	}
	active, err := s.repos.Store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, &errors.ErrNotFound{Resource: "active shopify store", ID: shopDomain}
	}
	return active[0], nil
}

// syncOrderItems upserts the remote line items of one order. Catalog
// references are resolved by SKU best-effort; unresolved SKUs leave
// product_id null. Failures append to errs and never abort the batch.
func (s *SyncService) syncOrderItems(ctx context.Context, orderID uuid.UUID, items []shopify.LineItem, errs *[]string) {
	for i := range items {
		li := &items[i]
		item, err := s.buildOrderItem(ctx, orderID, li)
		if err != nil {
			*errs = append(*errs, fmt.Sprintf("line item %d: %v", li.ID, err))
			continue
		}
		if err := s.repos.OrderItem.Upsert(ctx, item); err != nil {
			*errs = append(*errs, fmt.Sprintf("line item %d: %v", li.ID, err))
		}
	}
}

func (s *SyncService) buildOrderItem(ctx context.Context, orderID uuid.UUID, li *shopify.LineItem) (*domain.OrderItem, error) {
	price, err := shopify.ParseMoney(li.Price)
	if err != nil {
		return nil, err
	}
	discount, err := shopify.ParseMoney(li.TotalDiscount)
	if err != nil {
		return nil, err
	}

	item := &domain.OrderItem{
		OrderID:           orderID,
		ShopifyLineItemID: li.ID,
		ShopifyProductID:  li.ProductID,
		ShopifyVariantID:  li.VariantID,
		Title:             li.Title,
		VariantTitle:      li.VariantTitle,
		Quantity:          li.Quantity,
		Price:             price,
		TotalDiscount:     discount,
		FulfillmentStatus: domain.FulfillmentUnfulfilled,
		RequiresShipping:  li.RequiresShipping,
		Taxable:           li.Taxable,
		GiftCard:          li.GiftCard,
	}
	if li.FulfillmentStatus != nil && *li.FulfillmentStatus != "" {
		item.FulfillmentStatus = *li.FulfillmentStatus
	}
	if li.SKU != "" {
		sku := li.SKU
		item.SKU = &sku
		product, err := s.repos.Product.GetBySKU(ctx, sku)
		if err == nil {
			item.ProductID = &product.ID
		} else if !errors.IsNotFound(err) {
			return nil, err
		}
	}
	return item, nil
}

// buildLocalOrder maps a remote order to the local record, deriving the
// order and fulfillment statuses from the remote state rather than trusting
// the remote string fields.
func buildLocalOrder(storeID uuid.UUID, ro *shopify.Order) (*domain.Order, error) {
	total, err := shopify.ParseMoney(ro.TotalPrice)
	if err != nil {
		return nil, err
	}
	subtotal, err := shopify.ParseMoney(ro.SubtotalPrice)
	if err != nil {
		return nil, err
	}
	tax, err := shopify.ParseMoney(ro.TotalTax)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &domain.Order{
		ShopifyOrderID:    ro.ID,
		ShopifyStoreID:    storeID,
		OrderNumber:       ro.OrderNumber.String(),
		TotalPrice:        total,
		SubtotalPrice:     subtotal,
		TotalTax:          tax,
		Currency:          ro.Currency,
		FinancialStatus:   ro.FinancialStatus,
		FulfillmentStatus: deriveFulfillmentStatus(ro),
		OrderStatus:       deriveOrderStatus(ro),
		ShippingAddress:   ro.ShippingAddress,
		BillingAddress:    ro.BillingAddress,
		ProcessedAt:       ro.ProcessedAt,
		CancelledAt:       ro.CancelledAt,
		CancelledReason:   ro.CancelReason,
		LastSyncedAt:      &now,
		SyncStatus:        domain.SyncStatusSynced,
	}

	if ro.Email != "" {
		email := ro.Email
		order.CustomerEmail = &email
	}
	if ro.Customer != nil {
		if order.CustomerEmail == nil && ro.Customer.Email != "" {
			email := ro.Customer.Email
			order.CustomerEmail = &email
		}
		if ro.Customer.FirstName != "" {
			first := ro.Customer.FirstName
			order.CustomerFirstName = &first
		}
		if ro.Customer.LastName != "" {
			last := ro.Customer.LastName
			order.CustomerLastName = &last
		}
	}
	if tags := strings.TrimSpace(ro.Tags); tags != "" {
		order.Tags = &tags
	}
	if ro.Note != "" {
		note := ro.Note
		order.Note = &note
	}
	return order, nil
}

// deriveFulfillmentStatus reports fulfilled when at least one fulfillment
// record exists, ignoring the remote fulfillment_status string.
func deriveFulfillmentStatus(ro *shopify.Order) string {
	if len(ro.Fulfillments) > 0 {
		return domain.FulfillmentFulfilled
	}
	return domain.FulfillmentUnfulfilled
}

// deriveOrderStatus reports cancelled iff the remote cancellation timestamp
// is set.
func deriveOrderStatus(ro *shopify.Order) string {
	if ro.CancelledAt != nil {
		return domain.OrderStatusCancelled
	}
	return domain.OrderStatusOpen
}

func failResult(message string, err error) *SyncResult {
	return &SyncResult{
		Success: false,
		Message: message,
		Errors:  []string{err.Error()},
	}
}
