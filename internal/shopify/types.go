package shopify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Shop is the shop-info projection used by the connection test
type Shop struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MyshopifyDomain string `json:"myshopify_domain"`
	Currency        string `json:"currency"`
}

// Product is the remote product projection the sync engine depends on
type Product struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	BodyHTML    string    `json:"body_html"`
	Vendor      string    `json:"vendor"`
	ProductType string    `json:"product_type"`
	Tags        string    `json:"tags"`
	Variants    []Variant `json:"variants"`
}

// Variant is a remote product variant. The first variant is the
// product-of-record for inbound sync.
type Variant struct {
	ID                int64   `json:"id"`
	ProductID         int64   `json:"product_id"`
	Title             string  `json:"title"`
	Price             string  `json:"price"`
	SKU               string  `json:"sku"`
	Barcode           *string `json:"barcode"`
	InventoryQuantity int     `json:"inventory_quantity"`
}

// Order is the remote order projection
type Order struct {
	ID                int64                  `json:"id"`
	Email             string                 `json:"email"`
	Customer          *Customer              `json:"customer"`
	OrderNumber       OrderNumber            `json:"order_number"`
	TotalPrice        string                 `json:"total_price"`
	SubtotalPrice     string                 `json:"subtotal_price"`
	TotalTax          string                 `json:"total_tax"`
	Currency          string                 `json:"currency"`
	FinancialStatus   string                 `json:"financial_status"`
	FulfillmentStatus *string                `json:"fulfillment_status"`
	Tags              string                 `json:"tags"`
	Note              string                 `json:"note"`
	ProcessedAt       *time.Time             `json:"processed_at"`
	CancelledAt       *time.Time             `json:"cancelled_at"`
	CancelReason      *string                `json:"cancel_reason"`
	ShippingAddress   map[string]interface{} `json:"shipping_address"`
	BillingAddress    map[string]interface{} `json:"billing_address"`
	Fulfillments      []Fulfillment          `json:"fulfillments"`
	LineItems         []LineItem             `json:"line_items"`
}

type Customer struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type Fulfillment struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// LineItem is a remote order line item, matched locally by its ID scoped to
// the order
type LineItem struct {
	ID                int64   `json:"id"`
	ProductID         *int64  `json:"product_id"`
	VariantID         *int64  `json:"variant_id"`
	SKU               string  `json:"sku"`
	Title             string  `json:"title"`
	VariantTitle      *string `json:"variant_title"`
	Quantity          int     `json:"quantity"`
	Price             string  `json:"price"`
	TotalDiscount     string  `json:"total_discount"`
	FulfillmentStatus *string `json:"fulfillment_status"`
	RequiresShipping  bool    `json:"requires_shipping"`
	Taxable           bool    `json:"taxable"`
	GiftCard          bool    `json:"gift_card"`
}

// Webhook is a remote webhook subscription
type Webhook struct {
	ID      int64  `json:"id"`
	Topic   string `json:"topic"`
	Address string `json:"address"`
	Format  string `json:"format"`
}

// OrderNumber accepts both the integer order_number Shopify sends and the
// string form seen in replayed/simulated payloads.
type OrderNumber string

func (n *OrderNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = OrderNumber(s)
		return nil
	}
	var v json.Number
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid order_number: %w", err)
	}
	*n = OrderNumber(v.String())
	return nil
}

func (n OrderNumber) String() string { return string(n) }

// ParseMoney converts a Shopify decimal price string into minor currency
// units, e.g. "99.99" -> 9999. Empty strings mean zero (Shopify omits some
// totals on legacy orders). Assumes 2-decimal currencies.
func ParseMoney(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid money value %q: %w", s, err)
	}
	return int64(math.Round(v * 100)), nil
}

// FormatMoney converts minor currency units back into the decimal string
// Shopify expects, e.g. 9999 -> "99.99"
func FormatMoney(cents int64) string {
	return strconv.FormatFloat(float64(cents)/100, 'f', 2, 64)
}
