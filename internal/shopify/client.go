package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AgimDur/produu/internal/domain"
)

// orderFields is the fixed projection requested from the orders endpoint
const orderFields = "id,order_number,email,customer,total_price,subtotal_price,total_tax,currency," +
	"financial_status,fulfillment_status,tags,note,processed_at,cancelled_at,cancel_reason," +
	"shipping_address,billing_address,fulfillments,line_items"

// Client talks to the Shopify REST Admin API for one configured store
type Client struct {
	shopDomain  string
	accessToken string
	apiVersion  string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient creates a new Shopify REST client for a store
func NewClient(store *domain.ShopifyStore, apiVersion string, logger *zap.Logger) *Client {
	// Normalize shop domain - remove https://, http://, and trailing slashes
	shopDomain := store.ShopifyDomain
	shopDomain = strings.TrimPrefix(shopDomain, "https://")
	shopDomain = strings.TrimPrefix(shopDomain, "http://")
	shopDomain = strings.TrimSuffix(shopDomain, "/")

	return &Client{
		shopDomain:  shopDomain,
		accessToken: store.AccessToken,
		apiVersion:  apiVersion,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// do executes one REST round trip. payload (if non-nil) is JSON-encoded into
// the body; out (if non-nil) receives the decoded response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out interface{}) error {
	u := fmt.Sprintf("https://%s/admin/api/%s/%s", c.shopDomain, c.apiVersion, path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("shopify API error: %s %s: status %d, body: %s", method, path, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(respBody))
		}
	}
	return nil
}

// TestConnection checks the store credentials with a lightweight shop-info
// call. Any transport or auth error yields false, never an error.
func (c *Client) TestConnection(ctx context.Context) bool {
	if _, err := c.GetShop(ctx); err != nil {
		c.logger.Warn("Shopify connection test failed", zap.String("shop", c.shopDomain), zap.Error(err))
		return false
	}
	return true
}

// GetShop fetches the shop info
func (c *Client) GetShop(ctx context.Context) (*Shop, error) {
	var out struct {
		Shop Shop `json:"shop"`
	}
	if err := c.do(ctx, http.MethodGet, "shop.json", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Shop, nil
}

// ListProducts fetches up to limit remote products
func (c *Client) ListProducts(ctx context.Context, limit int) ([]Product, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprintf("%d", limit))
	var out struct {
		Products []Product `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "products.json", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// ListOrders fetches up to limit remote orders with the fixed field
// projection. status filters by order state ("any" for all).
func (c *Client) ListOrders(ctx context.Context, limit int, status string) ([]Order, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprintf("%d", limit))
	if status != "" {
		q.Set("status", status)
	}
	q.Set("fields", orderFields)
	var out struct {
		Orders []Order `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "orders.json", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// productPayload maps a local product to the remote shape. Single-variant
// representation: the catalog hierarchy is not propagated remotely.
func productPayload(p *domain.Product) map[string]interface{} {
	variant := map[string]interface{}{
		"price":              FormatMoney(p.Price),
		"inventory_quantity": p.Stock,
		"sku":                p.SKU,
	}
	if p.EAN13 != nil && *p.EAN13 != "" {
		variant["barcode"] = *p.EAN13
	}
	description := ""
	if p.Description != nil {
		description = *p.Description
	}
	return map[string]interface{}{
		"product": map[string]interface{}{
			"title":        p.Name,
			"body_html":    description,
			"vendor":       p.Category,
			"product_type": string(p.SKULevel),
			"tags":         p.SKU,
			"variants":     []map[string]interface{}{variant},
		},
	}
}

// CreateProduct creates a remote product from a local one
func (c *Client) CreateProduct(ctx context.Context, p *domain.Product) (*Product, error) {
	var out struct {
		Product Product `json:"product"`
	}
	if err := c.do(ctx, http.MethodPost, "products.json", nil, productPayload(p), &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

// UpdateProduct updates the remote product identified by remoteID
func (c *Client) UpdateProduct(ctx context.Context, remoteID int64, p *domain.Product) (*Product, error) {
	var out struct {
		Product Product `json:"product"`
	}
	path := fmt.Sprintf("products/%d.json", remoteID)
	if err := c.do(ctx, http.MethodPut, path, nil, productPayload(p), &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

// ListWebhooks fetches the registered webhook subscriptions
func (c *Client) ListWebhooks(ctx context.Context) ([]Webhook, error) {
	var out struct {
		Webhooks []Webhook `json:"webhooks"`
	}
	if err := c.do(ctx, http.MethodGet, "webhooks.json", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Webhooks, nil
}

// CreateWebhook registers a webhook subscription for topic delivering to address
func (c *Client) CreateWebhook(ctx context.Context, topic, address string) (*Webhook, error) {
	payload := map[string]interface{}{
		"webhook": map[string]interface{}{
			"topic":   topic,
			"address": address,
			"format":  "json",
		},
	}
	var out struct {
		Webhook Webhook `json:"webhook"`
	}
	if err := c.do(ctx, http.MethodPost, "webhooks.json", nil, payload, &out); err != nil {
		return nil, err
	}
	return &out.Webhook, nil
}

// DeleteWebhook removes a webhook subscription
func (c *Client) DeleteWebhook(ctx context.Context, id int64) error {
	path := fmt.Sprintf("webhooks/%d.json", id)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// EnsureWebhook registers topic->address, treating an already-present
// subscription as success
func (c *Client) EnsureWebhook(ctx context.Context, topic, address string) (*Webhook, error) {
	existing, err := c.ListWebhooks(ctx)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].Topic == topic && existing[i].Address == address {
			return &existing[i], nil
		}
	}
	return c.CreateWebhook(ctx, topic, address)
}
