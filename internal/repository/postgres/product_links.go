package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AgimDur/produu/internal/domain"
	"github.com/AgimDur/produu/pkg/errors"
)

type productLinkRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProductLinkRepository creates a new product link repository
func NewProductLinkRepository(db *sql.DB, logger *zap.Logger) *productLinkRepository {
	return &productLinkRepository{db: db, logger: logger}
}

const linkColumns = `id, local_product_id, shopify_product_id, shopify_variant_id, shopify_store_id,
	last_synced_at, sync_status, created_at`

func scanLink(row interface{ Scan(...interface{}) error }) (*domain.ProductLink, error) {
	var l domain.ProductLink
	var variantID sql.NullInt64
	var lastSyncedAt sql.NullTime
	err := row.Scan(
		&l.ID, &l.LocalProductID, &l.ShopifyProductID, &variantID, &l.ShopifyStoreID,
		&lastSyncedAt, &l.SyncStatus, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if variantID.Valid {
		l.ShopifyVariantID = &variantID.Int64
	}
	if lastSyncedAt.Valid {
		l.LastSyncedAt = &lastSyncedAt.Time
	}
	return &l, nil
}

func (r *productLinkRepository) GetByLocalProductID(ctx context.Context, storeID, localProductID uuid.UUID) (*domain.ProductLink, error) {
	query := `SELECT ` + linkColumns + ` FROM product_links WHERE local_product_id = $1 AND shopify_store_id = $2`
	l, err := scanLink(r.db.QueryRowContext(ctx, query, localProductID, storeID))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "product_link", ID: localProductID.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get product link", zap.String("local_product_id", localProductID.String()), zap.Error(err))
		return nil, err
	}
	return l, nil
}

func (r *productLinkRepository) ListByStoreID(ctx context.Context, storeID uuid.UUID) ([]*domain.ProductLink, error) {
	query := `SELECT ` + linkColumns + ` FROM product_links WHERE shopify_store_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, storeID)
	if err != nil {
		r.logger.Error("Failed to list product links", zap.String("store_id", storeID.String()), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ProductLink
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *productLinkRepository) Upsert(ctx context.Context, link *domain.ProductLink) error {
	query := `
		INSERT INTO product_links (id, local_product_id, shopify_product_id, shopify_variant_id, shopify_store_id,
			last_synced_at, sync_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (local_product_id, shopify_store_id) DO UPDATE SET
			shopify_product_id = EXCLUDED.shopify_product_id,
			shopify_variant_id = EXCLUDED.shopify_variant_id,
			last_synced_at = EXCLUDED.last_synced_at,
			sync_status = EXCLUDED.sync_status
	`
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		link.ID, link.LocalProductID, link.ShopifyProductID, link.ShopifyVariantID, link.ShopifyStoreID,
		link.LastSyncedAt, link.SyncStatus, link.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert product link", zap.String("local_product_id", link.LocalProductID.String()), zap.Error(err))
		return err
	}
	return nil
}
