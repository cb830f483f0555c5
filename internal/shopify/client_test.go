package shopify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AgimDur/produu/internal/domain"
)

// testClient points a client at a TLS test server
func testClient(srv *httptest.Server) *Client {
	store := &domain.ShopifyStore{
		ShopifyDomain: "test-shop.myshopify.com",
		AccessToken:   "shpat_test",
	}
	c := NewClient(store, "2024-01", zap.NewNop())
	c.shopDomain = strings.TrimPrefix(srv.URL, "https://")
	c.httpClient = srv.Client()
	return c
}

func TestNewClientNormalizesDomain(t *testing.T) {
	store := &domain.ShopifyStore{ShopifyDomain: "https://my-shop.myshopify.com/"}
	c := NewClient(store, "2024-01", zap.NewNop())
	assert.Equal(t, "my-shop.myshopify.com", c.shopDomain)
}

func TestTestConnection(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))
		assert.Equal(t, "/admin/api/2024-01/shop.json", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"shop": map[string]interface{}{"id": 1, "name": "Test Shop"},
		})
	}))
	defer srv.Close()

	assert.True(t, testClient(srv).TestConnection(context.Background()))
}

func TestTestConnectionUnauthorized(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	assert.False(t, testClient(srv).TestConnection(context.Background()))
}

func TestCreateProductPayload(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"product": map[string]interface{}{"id": 777, "title": "Widget"},
		})
	}))
	defer srv.Close()

	ean := "4012345678901"
	p := &domain.Product{
		SKU:      "WIDGET-1",
		EAN13:    &ean,
		Name:     "Widget",
		Price:    2999,
		Stock:    12,
		Category: "Gadgets",
		SKULevel: domain.SKULevelChild,
	}
	remote, err := testClient(srv).CreateProduct(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, int64(777), remote.ID)

	product := got["product"].(map[string]interface{})
	assert.Equal(t, "Widget", product["title"])
	assert.Equal(t, "Gadgets", product["vendor"])
	assert.Equal(t, "child", product["product_type"])
	assert.Equal(t, "WIDGET-1", product["tags"])

	variants := product["variants"].([]interface{})
	require.Len(t, variants, 1)
	variant := variants[0].(map[string]interface{})
	assert.Equal(t, "29.99", variant["price"])
	assert.Equal(t, "WIDGET-1", variant["sku"])
	assert.Equal(t, "4012345678901", variant["barcode"])
	assert.Equal(t, float64(12), variant["inventory_quantity"])
}

func TestListOrdersFieldProjection(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2024-01/orders.json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "50", q.Get("limit"))
		assert.Equal(t, "any", q.Get("status"))
		assert.Contains(t, q.Get("fields"), "cancelled_at")
		assert.Contains(t, q.Get("fields"), "line_items")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"orders": []map[string]interface{}{
				{"id": 1001, "order_number": 42, "total_price": "10.00"},
			},
		})
	}))
	defer srv.Close()

	orders, err := testClient(srv).ListOrders(context.Background(), 50, "any")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(1001), orders[0].ID)
	assert.Equal(t, "42", orders[0].OrderNumber.String())
}

func TestEnsureWebhookSkipsExisting(t *testing.T) {
	creates := 0
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]interface{}{
				"webhooks": []map[string]interface{}{
					{"id": 5, "topic": "orders/create", "address": "https://admin.example.com/webhooks/shopify", "format": "json"},
				},
			})
		case http.MethodPost:
			creates++
			json.NewEncoder(w).Encode(map[string]interface{}{
				"webhook": map[string]interface{}{"id": 6, "topic": "orders/updated", "address": "https://admin.example.com/webhooks/shopify"},
			})
		}
	}))
	defer srv.Close()

	c := testClient(srv)

	// already registered: no create call
	wh, err := c.EnsureWebhook(context.Background(), "orders/create", "https://admin.example.com/webhooks/shopify")
	require.NoError(t, err)
	assert.Equal(t, int64(5), wh.ID)
	assert.Equal(t, 0, creates)

	// new topic: one create call
	wh, err = c.EnsureWebhook(context.Background(), "orders/updated", "https://admin.example.com/webhooks/shopify")
	require.NoError(t, err)
	assert.Equal(t, int64(6), wh.ID)
	assert.Equal(t, 1, creates)
}
