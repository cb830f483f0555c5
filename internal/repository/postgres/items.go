package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AgimDur/produu/internal/domain"
	"github.com/AgimDur/produu/pkg/errors"
)

type orderItemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderItemRepository creates a new order item repository
func NewOrderItemRepository(db *sql.DB, logger *zap.Logger) *orderItemRepository {
	return &orderItemRepository{db: db, logger: logger}
}

const itemColumns = `id, order_id, shopify_line_item_id, product_id, shopify_product_id, shopify_variant_id,
	sku, title, variant_title, quantity, price, total_discount,
	fulfillment_status, requires_shipping, taxable, gift_card, created_at`

func scanOrderItem(row interface{ Scan(...interface{}) error }) (*domain.OrderItem, error) {
	var it domain.OrderItem
	var productID uuid.NullUUID
	var shopifyProductID, shopifyVariantID sql.NullInt64
	var sku, variantTitle sql.NullString

	err := row.Scan(
		&it.ID, &it.OrderID, &it.ShopifyLineItemID, &productID, &shopifyProductID, &shopifyVariantID,
		&sku, &it.Title, &variantTitle, &it.Quantity, &it.Price, &it.TotalDiscount,
		&it.FulfillmentStatus, &it.RequiresShipping, &it.Taxable, &it.GiftCard, &it.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if productID.Valid {
		it.ProductID = &productID.UUID
	}
	if shopifyProductID.Valid {
		it.ShopifyProductID = &shopifyProductID.Int64
	}
	if shopifyVariantID.Valid {
		it.ShopifyVariantID = &shopifyVariantID.Int64
	}
	if sku.Valid {
		it.SKU = &sku.String
	}
	if variantTitle.Valid {
		it.VariantTitle = &variantTitle.String
	}
	return &it, nil
}

func (r *orderItemRepository) GetByLineItemID(ctx context.Context, orderID uuid.UUID, shopifyLineItemID int64) (*domain.OrderItem, error) {
	query := `SELECT ` + itemColumns + ` FROM order_items WHERE shopify_line_item_id = $1 AND order_id = $2`
	it, err := scanOrderItem(r.db.QueryRowContext(ctx, query, shopifyLineItemID, orderID))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order_item", ID: strconv.FormatInt(shopifyLineItemID, 10)}
	}
	if err != nil {
		r.logger.Error("Failed to get order item", zap.Int64("shopify_line_item_id", shopifyLineItemID), zap.Error(err))
		return nil, err
	}
	return it, nil
}

func (r *orderItemRepository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	query := `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to list order items", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []*domain.OrderItem
	for rows.Next() {
		it, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *orderItemRepository) Upsert(ctx context.Context, item *domain.OrderItem) error {
	query := `
		INSERT INTO order_items (
			id, order_id, shopify_line_item_id, product_id, shopify_product_id, shopify_variant_id,
			sku, title, variant_title, quantity, price, total_discount,
			fulfillment_status, requires_shipping, taxable, gift_card, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (shopify_line_item_id, order_id) DO UPDATE SET
			product_id = EXCLUDED.product_id,
			shopify_product_id = EXCLUDED.shopify_product_id,
			shopify_variant_id = EXCLUDED.shopify_variant_id,
			sku = EXCLUDED.sku,
			title = EXCLUDED.title,
			variant_title = EXCLUDED.variant_title,
			quantity = EXCLUDED.quantity,
			price = EXCLUDED.price,
			total_discount = EXCLUDED.total_discount,
			fulfillment_status = EXCLUDED.fulfillment_status,
			requires_shipping = EXCLUDED.requires_shipping,
			taxable = EXCLUDED.taxable,
			gift_card = EXCLUDED.gift_card
	`
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.OrderID, item.ShopifyLineItemID, item.ProductID, item.ShopifyProductID, item.ShopifyVariantID,
		item.SKU, item.Title, item.VariantTitle, item.Quantity, item.Price, item.TotalDiscount,
		item.FulfillmentStatus, item.RequiresShipping, item.Taxable, item.GiftCard, item.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert order item", zap.Int64("shopify_line_item_id", item.ShopifyLineItemID), zap.Error(err))
		return err
	}
	return nil
}
