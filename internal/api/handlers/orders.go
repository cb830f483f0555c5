package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AgimDur/produu/internal/domain"
	"github.com/AgimDur/produu/internal/repository"
	"github.com/AgimDur/produu/internal/service"
)

// HandleListOrders handles GET /v1/orders. Pass ?store_id= to limit the
// list to one store.
func HandleListOrders(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			orders []*domain.Order
			err    error
		)
		if raw := c.Query("store_id"); raw != "" {
			storeID, perr := uuid.Parse(raw)
			if perr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid store_id"})
				return
			}
			orders, err = repos.Order.ListByStoreID(c.Request.Context(), storeID)
		} else {
			orders, err = repos.Order.List(c.Request.Context())
		}
		if err != nil {
			respondError(c, logger, err)
			return
		}

		resp := make([]*service.OrderResponse, 0, len(orders))
		for _, o := range orders {
			resp = append(resp, service.ToOrderResponse(o))
		}
		c.JSON(http.StatusOK, gin.H{"orders": resp, "count": len(resp)})
	}
}

// HandleGetOrder handles GET /v1/orders/:id
func HandleGetOrder(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}
		order, err := repos.Order.GetByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, service.ToOrderResponse(order))
	}
}

// HandleGetOrderItems handles GET /v1/orders/:id/items
func HandleGetOrderItems(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}
		// 404 for unknown orders instead of an empty list
		if _, err := repos.Order.GetByID(c.Request.Context(), id); err != nil {
			respondError(c, logger, err)
			return
		}

		items, err := repos.OrderItem.ListByOrderID(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		resp := make([]*service.OrderItemResponse, 0, len(items))
		for _, item := range items {
			resp = append(resp, service.ToOrderItemResponse(item))
		}
		c.JSON(http.StatusOK, gin.H{"items": resp, "count": len(resp)})
	}
}

// HandleOrderStats handles GET /v1/orders/stats
func HandleOrderStats(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := repos.Order.Stats(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
