package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AgimDur/produu/internal/domain"
	"github.com/AgimDur/produu/pkg/errors"
)

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{db: db, logger: logger}
}

const orderColumns = `id, shopify_order_id, shopify_store_id, order_number,
	customer_email, customer_first_name, customer_last_name,
	total_price, subtotal_price, total_tax, currency,
	financial_status, fulfillment_status, order_status,
	shipping_address, billing_address, tags, note,
	processed_at, cancelled_at, cancelled_reason, last_synced_at, sync_status,
	created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*domain.Order, error) {
	var o domain.Order
	var email, firstName, lastName, tags, note, cancelledReason sql.NullString
	var shippingJSON, billingJSON []byte
	var processedAt, cancelledAt, lastSyncedAt sql.NullTime

	err := row.Scan(
		&o.ID, &o.ShopifyOrderID, &o.ShopifyStoreID, &o.OrderNumber,
		&email, &firstName, &lastName,
		&o.TotalPrice, &o.SubtotalPrice, &o.TotalTax, &o.Currency,
		&o.FinancialStatus, &o.FulfillmentStatus, &o.OrderStatus,
		&shippingJSON, &billingJSON, &tags, &note,
		&processedAt, &cancelledAt, &cancelledReason, &lastSyncedAt, &o.SyncStatus,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if email.Valid {
		o.CustomerEmail = &email.String
	}
	if firstName.Valid {
		o.CustomerFirstName = &firstName.String
	}
	if lastName.Valid {
		o.CustomerLastName = &lastName.String
	}
	if tags.Valid {
		o.Tags = &tags.String
	}
	if note.Valid {
		o.Note = &note.String
	}
	if cancelledReason.Valid {
		o.CancelledReason = &cancelledReason.String
	}
	if processedAt.Valid {
		o.ProcessedAt = &processedAt.Time
	}
	if cancelledAt.Valid {
		o.CancelledAt = &cancelledAt.Time
	}
	if lastSyncedAt.Valid {
		o.LastSyncedAt = &lastSyncedAt.Time
	}
	if len(shippingJSON) > 0 {
		_ = json.Unmarshal(shippingJSON, &o.ShippingAddress)
	}
	if len(billingJSON) > 0 {
		_ = json.Unmarshal(billingJSON, &o.BillingAddress)
	}
	return &o, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get order by ID", zap.Error(err))
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) GetByShopifyOrderID(ctx context.Context, storeID uuid.UUID, shopifyOrderID int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE shopify_order_id = $1 AND shopify_store_id = $2`
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, shopifyOrderID, storeID))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: strconv.FormatInt(shopifyOrderID, 10)}
	}
	if err != nil {
		r.logger.Error("Failed to get order by shopify order ID", zap.Int64("shopify_order_id", shopifyOrderID), zap.Error(err))
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.queryOrders(ctx, query)
}

func (r *orderRepository) ListByStoreID(ctx context.Context, storeID uuid.UUID) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE shopify_store_id = $1 ORDER BY created_at DESC`
	return r.queryOrders(ctx, query, storeID)
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (
			id, shopify_order_id, shopify_store_id, order_number,
			customer_email, customer_first_name, customer_last_name,
			total_price, subtotal_price, total_tax, currency,
			financial_status, fulfillment_status, order_status,
			shipping_address, billing_address, tags, note,
			processed_at, cancelled_at, cancelled_reason, last_synced_at, sync_status,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	`
	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	shippingJSON, billingJSON, err := marshalAddresses(order)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		order.ID, order.ShopifyOrderID, order.ShopifyStoreID, order.OrderNumber,
		order.CustomerEmail, order.CustomerFirstName, order.CustomerLastName,
		order.TotalPrice, order.SubtotalPrice, order.TotalTax, order.Currency,
		order.FinancialStatus, order.FulfillmentStatus, order.OrderStatus,
		shippingJSON, billingJSON, order.Tags, order.Note,
		order.ProcessedAt, order.CancelledAt, order.CancelledReason, order.LastSyncedAt, order.SyncStatus,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create order", zap.Int64("shopify_order_id", order.ShopifyOrderID), zap.Error(err))
		return err
	}
	return nil
}

func (r *orderRepository) Update(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE orders SET
			order_number = $2, customer_email = $3, customer_first_name = $4, customer_last_name = $5,
			total_price = $6, subtotal_price = $7, total_tax = $8, currency = $9,
			financial_status = $10, fulfillment_status = $11, order_status = $12,
			shipping_address = $13, billing_address = $14, tags = $15, note = $16,
			processed_at = $17, cancelled_at = $18, cancelled_reason = $19,
			last_synced_at = $20, sync_status = $21, updated_at = $22
		WHERE id = $1
	`
	order.UpdatedAt = time.Now()

	shippingJSON, billingJSON, err := marshalAddresses(order)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query,
		order.ID, order.OrderNumber,
		order.CustomerEmail, order.CustomerFirstName, order.CustomerLastName,
		order.TotalPrice, order.SubtotalPrice, order.TotalTax, order.Currency,
		order.FinancialStatus, order.FulfillmentStatus, order.OrderStatus,
		shippingJSON, billingJSON, order.Tags, order.Note,
		order.ProcessedAt, order.CancelledAt, order.CancelledReason,
		order.LastSyncedAt, order.SyncStatus, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update order", zap.String("id", order.ID.String()), zap.Error(err))
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &errors.ErrNotFound{Resource: "order", ID: order.ID.String()}
	}
	return nil
}

// UpdateCancellation performs the partial update used by the cancel webhook:
// status and cancellation fields only, everything else untouched.
func (r *orderRepository) UpdateCancellation(ctx context.Context, id uuid.UUID, cancelledAt *time.Time, reason *string, syncedAt time.Time) error {
	query := `
		UPDATE orders SET
			order_status = $2, cancelled_at = $3, cancelled_reason = $4,
			last_synced_at = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, domain.OrderStatusCancelled, cancelledAt, reason, syncedAt, time.Now())
	if err != nil {
		r.logger.Error("Failed to update order cancellation", zap.String("id", id.String()), zap.Error(err))
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	return nil
}

func (r *orderRepository) Stats(ctx context.Context) (*domain.OrderStats, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(total_price), 0),
			COUNT(*) FILTER (WHERE fulfillment_status = 'unfulfilled'),
			COUNT(*) FILTER (WHERE fulfillment_status = 'fulfilled')
		FROM orders
	`
	var stats domain.OrderStats
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalOrders, &stats.TotalRevenue, &stats.PendingOrders, &stats.FulfilledOrders,
	)
	if err != nil {
		r.logger.Error("Failed to compute order stats", zap.Error(err))
		return nil, err
	}
	return &stats, nil
}

func marshalAddresses(order *domain.Order) ([]byte, []byte, error) {
	var shippingJSON, billingJSON []byte
	var err error
	if order.ShippingAddress != nil {
		if shippingJSON, err = json.Marshal(order.ShippingAddress); err != nil {
			return nil, nil, err
		}
	}
	if order.BillingAddress != nil {
		if billingJSON, err = json.Marshal(order.BillingAddress); err != nil {
			return nil, nil, err
		}
	}
	return shippingJSON, billingJSON, nil
}
