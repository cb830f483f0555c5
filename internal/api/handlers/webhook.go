package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AgimDur/produu/internal/config"
	"github.com/AgimDur/produu/internal/repository"
	"github.com/AgimDur/produu/internal/service"
	"github.com/AgimDur/produu/internal/shopify"
	pkgerrors "github.com/AgimDur/produu/pkg/errors"
)

func verifyShopifyHMAC(secret string, body []byte, header string) bool {
	if secret == "" || header == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	// constant-time compare
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(header)))
}

// resolveWebhookSecret picks the HMAC secret for the sending shop: the
// store's own secret when it has one, otherwise the global fallback.
func resolveWebhookSecret(c *gin.Context, cfg *config.Config, repos *repository.Repositories, shopDomain string) string {
	if shopDomain != "" {
		store, err := repos.Store.GetByDomain(c.Request.Context(), shopDomain)
		if err == nil && store.WebhookSecret != nil && *store.WebhookSecret != "" {
			return *store.WebhookSecret
		}
		if err != nil && !pkgerrors.IsNotFound(err) {
			return cfg.Webhook.Secret
		}
	}
	return cfg.Webhook.Secret
}

// HandleShopifyWebhook handles POST /webhooks/shopify. After the signature
// checks out, every path returns 200 so Shopify does not retry payloads we
// already decided about; processing failures are logged instead.
func HandleShopifyWebhook(cfg *config.Config, repos *repository.Repositories, syncSvc *service.SyncService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
			return
		}

		topic := c.GetHeader("X-Shopify-Topic")
		shopDomain := strings.TrimSpace(c.GetHeader("X-Shopify-Shop-Domain"))

		secret := resolveWebhookSecret(c, cfg, repos, shopDomain)
		if secret == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shopify webhook not configured"})
			return
		}

		hmacHeader := c.GetHeader("X-Shopify-Hmac-Sha256")
		if !verifyShopifyHMAC(secret, bodyBytes, hmacHeader) {
			logger.Warn("Rejected webhook with invalid signature",
				zap.String("topic", topic),
				zap.String("shop_domain", shopDomain))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook signature"})
			return
		}

		if !service.IsRelevantTopic(topic) {
			c.JSON(http.StatusOK, gin.H{"ok": true, "status": "ignored", "topic": topic})
			return
		}

		var order shopify.Order
		if err := json.Unmarshal(bodyBytes, &order); err != nil {
			logger.Warn("Webhook payload is not valid JSON",
				zap.String("topic", topic),
				zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"ok": true, "status": "invalid_payload"})
			return
		}

		if err := syncSvc.ProcessOrderEvent(c.Request.Context(), topic, shopDomain, &order); err != nil {
			logger.Error("Webhook processing failed",
				zap.String("topic", topic),
				zap.Int64("shopify_order_id", order.ID),
				zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"ok": true, "status": "error", "message": "order processing failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"ok":     true,
			"status": "processed",
			"topic":  topic,
		})
	}
}

type webhookTestRequest struct {
	Topic string          `json:"topic"`
	Order json.RawMessage `json:"order"`
}

// HandleShopifyWebhookTest handles POST /v1/webhooks/shopify/test. It runs a
// payload through the same processing pipeline as the real endpoint, skipping
// signature verification. Admin-only; meant for wiring checks after setup.
func HandleShopifyWebhookTest(repos *repository.Repositories, syncSvc *service.SyncService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req webhookTestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON", "details": err.Error()})
			return
		}

		topic := req.Topic
		if topic == "" {
			topic = "orders/create"
		}
		if !service.IsRelevantTopic(topic) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported topic", "topic": topic})
			return
		}

		payload := req.Order
		if len(payload) == 0 {
			payload = sampleOrderPayload()
		}

		var order shopify.Order
		if err := json.Unmarshal(payload, &order); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order payload", "details": err.Error()})
			return
		}

		if err := syncSvc.ProcessOrderEvent(c.Request.Context(), topic, "", &order); err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"ok":               true,
			"status":           "processed",
			"topic":            topic,
			"shopify_order_id": order.ID,
		})
	}
}

// sampleOrderPayload is a minimal but realistic order used when the test
// endpoint is called without one
func sampleOrderPayload() []byte {
	return []byte(`{
		"id": 999000111,
		"order_number": 1001,
		"email": "test@example.com",
		"customer": {"first_name": "Test", "last_name": "Customer", "email": "test@example.com"},
		"total_price": "49.99",
		"subtotal_price": "44.99",
		"total_tax": "5.00",
		"currency": "EUR",
		"financial_status": "paid",
		"fulfillments": [],
		"line_items": [
			{"id": 555000111, "sku": "TEST-SKU-1", "title": "Test Product", "quantity": 1, "price": "44.99", "total_discount": "0.00", "requires_shipping": true, "taxable": true, "gift_card": false}
		]
	}`)
}
