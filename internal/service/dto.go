package service

import (
	"time"

	"github.com/AgimDur/produu/internal/domain"
)

// SyncResult is the structured outcome of one sync operation. Handlers
// return it to the UI verbatim; per-item failures never become HTTP errors.
type SyncResult struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message"`
	SyncedProducts int      `json:"synced_products,omitempty"`
	SyncedOrders   int      `json:"synced_orders,omitempty"`
	Errors         []string `json:"errors,omitempty"`
}

// CreateStoreRequest is the payload for connecting a new Shopify store
type CreateStoreRequest struct {
	StoreName     string  `json:"store_name" binding:"required"`
	ShopifyDomain string  `json:"shopify_domain" binding:"required"`
	AccessToken   string  `json:"access_token" binding:"required"`
	APIKey        string  `json:"api_key"`
	APISecret     string  `json:"api_secret"`
	WebhookSecret *string `json:"webhook_secret,omitempty"`
}

// UpdateStoreRequest is the payload for updating a store; nil fields are
// left unchanged
type UpdateStoreRequest struct {
	StoreName     *string `json:"store_name,omitempty"`
	ShopifyDomain *string `json:"shopify_domain,omitempty"`
	AccessToken   *string `json:"access_token,omitempty"`
	APIKey        *string `json:"api_key,omitempty"`
	APISecret     *string `json:"api_secret,omitempty"`
	WebhookSecret *string `json:"webhook_secret,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

// ProductRequest is the payload for creating or updating a catalog product
type ProductRequest struct {
	SKU         string  `json:"sku" binding:"required"`
	EAN13       *string `json:"ean13,omitempty"`
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
	Price       int64   `json:"price" binding:"min=0"`
	Stock       int     `json:"stock" binding:"min=0"`
	Category    string  `json:"category"`
	SKULevel    string  `json:"sku_level" binding:"required"`
	ParentID    *string `json:"parent_id,omitempty"`
}

// ProductResponse is the API shape of a catalog product
type ProductResponse struct {
	ID          string    `json:"id"`
	SKU         string    `json:"sku"`
	EAN13       *string   `json:"ean13,omitempty"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Price       int64     `json:"price"`
	Stock       int       `json:"stock"`
	Category    string    `json:"category"`
	SKULevel    string    `json:"sku_level"`
	ParentID    *string   `json:"parent_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToProductResponse(p *domain.Product) *ProductResponse {
	resp := &ProductResponse{
		ID:          p.ID.String(),
		SKU:         p.SKU,
		EAN13:       p.EAN13,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		SKULevel:    string(p.SKULevel),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.ParentID != nil {
		id := p.ParentID.String()
		resp.ParentID = &id
	}
	return resp
}

// OrderResponse is the API shape of an order. Monetary fields stay in cents.
type OrderResponse struct {
	ID                string                 `json:"id"`
	ShopifyOrderID    int64                  `json:"shopify_order_id"`
	ShopifyStoreID    string                 `json:"shopify_store_id"`
	OrderNumber       string                 `json:"order_number"`
	CustomerEmail     *string                `json:"customer_email,omitempty"`
	CustomerFirstName *string                `json:"customer_first_name,omitempty"`
	CustomerLastName  *string                `json:"customer_last_name,omitempty"`
	TotalPrice        int64                  `json:"total_price"`
	SubtotalPrice     int64                  `json:"subtotal_price"`
	TotalTax          int64                  `json:"total_tax"`
	Currency          string                 `json:"currency"`
	FinancialStatus   string                 `json:"financial_status"`
	FulfillmentStatus string                 `json:"fulfillment_status"`
	OrderStatus       string                 `json:"order_status"`
	ShippingAddress   map[string]interface{} `json:"shipping_address,omitempty"`
	BillingAddress    map[string]interface{} `json:"billing_address,omitempty"`
	Tags              *string                `json:"tags,omitempty"`
	Note              *string                `json:"note,omitempty"`
	ProcessedAt       *time.Time             `json:"processed_at,omitempty"`
	CancelledAt       *time.Time             `json:"cancelled_at,omitempty"`
	CancelledReason   *string                `json:"cancelled_reason,omitempty"`
	LastSyncedAt      *time.Time             `json:"last_synced_at,omitempty"`
	SyncStatus        string                 `json:"sync_status"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

func ToOrderResponse(o *domain.Order) *OrderResponse {
	return &OrderResponse{
		ID:                o.ID.String(),
		ShopifyOrderID:    o.ShopifyOrderID,
		ShopifyStoreID:    o.ShopifyStoreID.String(),
		OrderNumber:       o.OrderNumber,
		CustomerEmail:     o.CustomerEmail,
		CustomerFirstName: o.CustomerFirstName,
		CustomerLastName:  o.CustomerLastName,
		TotalPrice:        o.TotalPrice,
		SubtotalPrice:     o.SubtotalPrice,
		TotalTax:          o.TotalTax,
		Currency:          o.Currency,
		FinancialStatus:   o.FinancialStatus,
		FulfillmentStatus: o.FulfillmentStatus,
		OrderStatus:       o.OrderStatus,
		ShippingAddress:   o.ShippingAddress,
		BillingAddress:    o.BillingAddress,
		Tags:              o.Tags,
		Note:              o.Note,
		ProcessedAt:       o.ProcessedAt,
		CancelledAt:       o.CancelledAt,
		CancelledReason:   o.CancelledReason,
		LastSyncedAt:      o.LastSyncedAt,
		SyncStatus:        string(o.SyncStatus),
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

// OrderItemResponse is the API shape of an order line item
type OrderItemResponse struct {
	ID                string  `json:"id"`
	ShopifyLineItemID int64   `json:"shopify_line_item_id"`
	ProductID         *string `json:"product_id,omitempty"`
	ShopifyProductID  *int64  `json:"shopify_product_id,omitempty"`
	ShopifyVariantID  *int64  `json:"shopify_variant_id,omitempty"`
	SKU               *string `json:"sku,omitempty"`
	Title             string  `json:"title"`
	VariantTitle      *string `json:"variant_title,omitempty"`
	Quantity          int     `json:"quantity"`
	Price             int64   `json:"price"`
	TotalDiscount     int64   `json:"total_discount"`
	FulfillmentStatus string  `json:"fulfillment_status"`
	RequiresShipping  bool    `json:"requires_shipping"`
	Taxable           bool    `json:"taxable"`
	GiftCard          bool    `json:"gift_card"`
}

func ToOrderItemResponse(item *domain.OrderItem) *OrderItemResponse {
	resp := &OrderItemResponse{
		ID:                item.ID.String(),
		ShopifyLineItemID: item.ShopifyLineItemID,
		ShopifyProductID:  item.ShopifyProductID,
		ShopifyVariantID:  item.ShopifyVariantID,
		SKU:               item.SKU,
		Title:             item.Title,
		VariantTitle:      item.VariantTitle,
		Quantity:          item.Quantity,
		Price:             item.Price,
		TotalDiscount:     item.TotalDiscount,
		FulfillmentStatus: item.FulfillmentStatus,
		RequiresShipping:  item.RequiresShipping,
		Taxable:           item.Taxable,
		GiftCard:          item.GiftCard,
	}
	if item.ProductID != nil {
		id := item.ProductID.String()
		resp.ProductID = &id
	}
	return resp
}

// StoreResponse is the API shape of a connected store. Credentials are never
// echoed back.
type StoreResponse struct {
	ID            string     `json:"id"`
	StoreName     string     `json:"store_name"`
	ShopifyDomain string     `json:"shopify_domain"`
	IsActive      bool       `json:"is_active"`
	SyncStatus    string     `json:"sync_status"`
	LastSyncAt    *time.Time `json:"last_sync_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func ToStoreResponse(s *domain.ShopifyStore) *StoreResponse {
	return &StoreResponse{
		ID:            s.ID.String(),
		StoreName:     s.StoreName,
		ShopifyDomain: s.ShopifyDomain,
		IsActive:      s.IsActive,
		SyncStatus:    string(s.SyncStatus),
		LastSyncAt:    s.LastSyncAt,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
