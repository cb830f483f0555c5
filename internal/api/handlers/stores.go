package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AgimDur/produu/internal/config"
	"github.com/AgimDur/produu/internal/repository"
	"github.com/AgimDur/produu/internal/service"
)

// HandleListStores handles GET /v1/stores
func HandleListStores(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		stores, err := repos.Store.List(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		resp := make([]*service.StoreResponse, 0, len(stores))
		for _, s := range stores {
			resp = append(resp, service.ToStoreResponse(s))
		}
		c.JSON(http.StatusOK, gin.H{"stores": resp, "count": len(resp)})
	}
}

// HandleGetStore handles GET /v1/stores/:id
func HandleGetStore(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid store id"})
			return
		}
		store, err := repos.Store.GetByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, service.ToStoreResponse(store))
	}
}

// HandleCreateStore handles POST /v1/stores. Credentials are verified
// against the Shopify API before the store is saved.
func HandleCreateStore(storeSvc *service.StoreService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CreateStoreRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
			return
		}
		store, err := storeSvc.CreateStore(c.Request.Context(), &req)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, service.ToStoreResponse(store))
	}
}

// HandleUpdateStore handles PUT /v1/stores/:id
func HandleUpdateStore(storeSvc *service.StoreService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid store id"})
			return
		}
		var req service.UpdateStoreRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
			return
		}
		store, err := storeSvc.UpdateStore(c.Request.Context(), id, &req)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, service.ToStoreResponse(store))
	}
}

// HandleDeleteStore handles DELETE /v1/stores/:id
func HandleDeleteStore(storeSvc *service.StoreService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid store id"})
			return
		}
		if err := storeSvc.DeleteStore(c.Request.Context(), id); err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// HandleTestStoreConnection handles POST /v1/stores/:id/test
func HandleTestStoreConnection(storeSvc *service.StoreService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid store id"})
			return
		}
		ok, err := storeSvc.TestConnection(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"connected": ok})
	}
}

// HandleRegisterWebhooks handles POST /v1/stores/:id/webhooks
func HandleRegisterWebhooks(cfg *config.Config, storeSvc *service.StoreService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid store id"})
			return
		}
		if cfg.Webhook.BaseURL == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "WEBHOOK_BASE_URL not configured"})
			return
		}
		result, err := storeSvc.RegisterWebhooks(c.Request.Context(), id, cfg.Webhook.BaseURL)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// syncTrigger adapts one sync operation into a handler
func syncTrigger(logger *zap.Logger, run func(c *gin.Context, id uuid.UUID) (*service.SyncResult, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid store id"})
			return
		}
		result, err := run(c, id)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// HandlePushProducts handles POST /v1/stores/:id/sync/products/push
func HandlePushProducts(syncSvc *service.SyncService, logger *zap.Logger) gin.HandlerFunc {
	return syncTrigger(logger, func(c *gin.Context, id uuid.UUID) (*service.SyncResult, error) {
		return syncSvc.SyncProductsToShopify(c.Request.Context(), id)
	})
}

// HandlePullProducts handles POST /v1/stores/:id/sync/products/pull
func HandlePullProducts(syncSvc *service.SyncService, logger *zap.Logger) gin.HandlerFunc {
	return syncTrigger(logger, func(c *gin.Context, id uuid.UUID) (*service.SyncResult, error) {
		return syncSvc.SyncProductsFromShopify(c.Request.Context(), id)
	})
}

// HandlePullOrders handles POST /v1/stores/:id/sync/orders/pull
func HandlePullOrders(syncSvc *service.SyncService, logger *zap.Logger) gin.HandlerFunc {
	return syncTrigger(logger, func(c *gin.Context, id uuid.UUID) (*service.SyncResult, error) {
		return syncSvc.SyncOrdersFromShopify(c.Request.Context(), id)
	})
}
