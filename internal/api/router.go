package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AgimDur/produu/internal/api/handlers"
	"github.com/AgimDur/produu/internal/api/middleware"
	"github.com/AgimDur/produu/internal/config"
	"github.com/AgimDur/produu/internal/repository"
	"github.com/AgimDur/produu/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, repos *repository.Repositories, syncSvc *service.SyncService, storeSvc *service.StoreService, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	// Root: friendly response so GET / returns 200 instead of 404
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Shopify Sync Admin API",
			"endpoints": []string{
				"GET /health",
				"POST /webhooks/shopify",
				"GET /v1/products",
				"GET /v1/orders",
				"GET /v1/orders/stats",
				"GET /v1/stores",
				"POST /v1/stores/:id/sync/products/push",
				"POST /v1/stores/:id/sync/products/pull",
				"POST /v1/stores/:id/sync/orders/pull",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Shopify webhook: HMAC-verified order events from all connected stores
	router.POST("/webhooks/shopify", handlers.HandleShopifyWebhook(cfg, repos, syncSvc, logger))

	// API v1 routes (admin key)
	v1 := router.Group("/v1")
	v1.Use(middleware.AdminAuthMiddleware(cfg.API.AdminKeyHash, logger))
	{
		products := v1.Group("/products")
		{
			products.GET("", handlers.HandleListProducts(repos, logger))
			products.POST("", handlers.HandleCreateProduct(repos, logger))
			products.GET("/:id", handlers.HandleGetProduct(repos, logger))
			products.PUT("/:id", handlers.HandleUpdateProduct(repos, logger))
			products.DELETE("/:id", handlers.HandleDeleteProduct(repos, logger))
		}

		orders := v1.Group("/orders")
		{
			orders.GET("", handlers.HandleListOrders(repos, logger))
			orders.GET("/stats", handlers.HandleOrderStats(repos, logger))
			orders.GET("/:id", handlers.HandleGetOrder(repos, logger))
			orders.GET("/:id/items", handlers.HandleGetOrderItems(repos, logger))
		}

		stores := v1.Group("/stores")
		{
			stores.GET("", handlers.HandleListStores(repos, logger))
			stores.POST("", handlers.HandleCreateStore(storeSvc, logger))
			stores.GET("/:id", handlers.HandleGetStore(repos, logger))
			stores.PUT("/:id", handlers.HandleUpdateStore(storeSvc, logger))
			stores.DELETE("/:id", handlers.HandleDeleteStore(storeSvc, logger))
			stores.POST("/:id/test", handlers.HandleTestStoreConnection(storeSvc, logger))
			stores.POST("/:id/webhooks", handlers.HandleRegisterWebhooks(cfg, storeSvc, logger))
			stores.POST("/:id/sync/products/push", handlers.HandlePushProducts(syncSvc, logger))
			stores.POST("/:id/sync/products/pull", handlers.HandlePullProducts(syncSvc, logger))
			stores.POST("/:id/sync/orders/pull", handlers.HandlePullOrders(syncSvc, logger))
		}

		// Webhook pipeline check without HMAC, admin-only
		v1.POST("/webhooks/shopify/test", handlers.HandleShopifyWebhookTest(repos, syncSvc, logger))
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
