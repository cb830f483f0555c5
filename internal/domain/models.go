package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog product. Price is stored in minor currency
// units (cents); SKU is the cross-system match key and must be unique.
type Product struct {
	ID          uuid.UUID
	SKU         string
	EAN13       *string
	Name        string
	Description *string
	Price       int64
	Stock       int
	Category    string
	SKULevel    SKULevel
	ParentID    *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidateHierarchy checks that the parent (if any) sits exactly one level
// above this product. Pass nil when no parent is referenced.
func (p *Product) ValidateHierarchy(parent *Product) bool {
	if p.ParentID == nil {
		return true
	}
	want, ok := p.SKULevel.ParentLevel()
	if !ok {
		// grandparents cannot reference a parent
		return false
	}
	return parent != nil && parent.SKULevel == want
}

// Order represents an order imported from Shopify. Identity for
// deduplication is (ShopifyOrderID, ShopifyStoreID). Monetary fields are
// cents, rounded from the remote decimal strings.
type Order struct {
	ID                uuid.UUID
	ShopifyOrderID    int64
	ShopifyStoreID    uuid.UUID
	OrderNumber       string
	CustomerEmail     *string
	CustomerFirstName *string
	CustomerLastName  *string
	TotalPrice        int64
	SubtotalPrice     int64
	TotalTax          int64
	Currency          string
	FinancialStatus   string
	FulfillmentStatus string
	OrderStatus       string
	ShippingAddress   map[string]interface{} // JSONB
	BillingAddress    map[string]interface{} // JSONB
	Tags              *string
	Note              *string
	ProcessedAt       *time.Time
	CancelledAt       *time.Time
	CancelledReason   *string
	LastSyncedAt      *time.Time
	SyncStatus        SyncStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OrderItem represents a line item of one order, matched against remote
// line items by ShopifyLineItemID scoped to the order. ProductID is a soft
// reference resolved by SKU; nil means no local catalog match.
type OrderItem struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	ShopifyLineItemID int64
	ProductID         *uuid.UUID
	ShopifyProductID  *int64
	ShopifyVariantID  *int64
	SKU               *string
	Title             string
	VariantTitle      *string
	Quantity          int
	Price             int64
	TotalDiscount     int64
	FulfillmentStatus string
	RequiresShipping  bool
	Taxable           bool
	GiftCard          bool
	CreatedAt         time.Time
}

// ShopifyStore holds the connection credentials for one storefront
type ShopifyStore struct {
	ID            uuid.UUID
	StoreName     string
	ShopifyDomain string
	AccessToken   string
	APIKey        string
	APISecret     string
	WebhookSecret *string
	IsActive      bool
	SyncStatus    StoreSyncStatus
	LastSyncAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProductLink maps a local product to its remote product/variant in one
// store, with its own sync bookkeeping
type ProductLink struct {
	ID               uuid.UUID
	LocalProductID   uuid.UUID
	ShopifyProductID int64
	ShopifyVariantID *int64
	ShopifyStoreID   uuid.UUID
	LastSyncedAt     *time.Time
	SyncStatus       SyncStatus
	CreatedAt        time.Time
}

// OrderStats aggregates order figures for the dashboard
type OrderStats struct {
	TotalOrders     int   `json:"total_orders"`
	TotalRevenue    int64 `json:"total_revenue"`
	PendingOrders   int   `json:"pending_orders"`
	FulfilledOrders int   `json:"fulfilled_orders"`
}
