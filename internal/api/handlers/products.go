package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AgimDur/produu/internal/domain"
	"github.com/AgimDur/produu/internal/repository"
	"github.com/AgimDur/produu/internal/service"
	pkgerrors "github.com/AgimDur/produu/pkg/errors"
)

// HandleListProducts handles GET /v1/products. Pass ?parent_id= to list the
// children of one product.
func HandleListProducts(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			products []*domain.Product
			err      error
		)
		if raw := c.Query("parent_id"); raw != "" {
			parentID, perr := uuid.Parse(raw)
			if perr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parent_id"})
				return
			}
			products, err = repos.Product.ListByParentID(c.Request.Context(), parentID)
		} else {
			products, err = repos.Product.List(c.Request.Context())
		}
		if err != nil {
			respondError(c, logger, err)
			return
		}

		resp := make([]*service.ProductResponse, 0, len(products))
		for _, p := range products {
			resp = append(resp, service.ToProductResponse(p))
		}
		c.JSON(http.StatusOK, gin.H{"products": resp, "count": len(resp)})
	}
}

// HandleGetProduct handles GET /v1/products/:id
func HandleGetProduct(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
			return
		}
		product, err := repos.Product.GetByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, service.ToProductResponse(product))
	}
}

// HandleCreateProduct handles POST /v1/products
func HandleCreateProduct(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
			return
		}

		product, err := productFromRequest(c, repos, &req, nil)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if err := repos.Product.Create(c.Request.Context(), product); err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, service.ToProductResponse(product))
	}
}

// HandleUpdateProduct handles PUT /v1/products/:id
func HandleUpdateProduct(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
			return
		}
		existing, err := repos.Product.GetByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		var req service.ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
			return
		}

		product, err := productFromRequest(c, repos, &req, existing)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if err := repos.Product.Update(c.Request.Context(), product); err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, service.ToProductResponse(product))
	}
}

// HandleDeleteProduct handles DELETE /v1/products/:id. Products that still
// have children cannot be deleted; reparent or delete the children first.
func HandleDeleteProduct(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
			return
		}

		children, err := repos.Product.ListByParentID(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if len(children) > 0 {
			c.JSON(http.StatusConflict, gin.H{
				"error":    "product still has child products",
				"children": len(children),
			})
			return
		}

		if err := repos.Product.Delete(c.Request.Context(), id); err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// productFromRequest validates the payload against the catalog hierarchy
// rules and maps it onto a product. existing carries the identity on update.
func productFromRequest(c *gin.Context, repos *repository.Repositories, req *service.ProductRequest, existing *domain.Product) (*domain.Product, error) {
	level := domain.SKULevel(req.SKULevel)
	if !level.IsValid() {
		return nil, &pkgerrors.ErrValidation{
			Message: "invalid sku_level",
			Fields:  map[string]string{"sku_level": "must be grandparent, parent or child"},
		}
	}

	product := &domain.Product{
		SKU:         req.SKU,
		EAN13:       req.EAN13,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		SKULevel:    level,
	}
	if existing != nil {
		product.ID = existing.ID
		product.CreatedAt = existing.CreatedAt
	}

	var parent *domain.Product
	if req.ParentID != nil && *req.ParentID != "" {
		parentID, err := uuid.Parse(*req.ParentID)
		if err != nil {
			return nil, &pkgerrors.ErrValidation{
				Message: "invalid parent_id",
				Fields:  map[string]string{"parent_id": "must be a UUID"},
			}
		}
		if existing != nil && parentID == existing.ID {
			return nil, &pkgerrors.ErrValidation{
				Message: "product cannot be its own parent",
			}
		}
		parent, err = repos.Product.GetByID(c.Request.Context(), parentID)
		if err != nil {
			return nil, err
		}
		product.ParentID = &parentID
	}

	if !product.ValidateHierarchy(parent) {
		return nil, &pkgerrors.ErrValidation{
			Message: "invalid catalog hierarchy",
			Fields:  map[string]string{"parent_id": "parent must sit exactly one level above the product"},
		}
	}
	return product, nil
}
