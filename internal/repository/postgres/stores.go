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

type storeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStoreRepository creates a new Shopify store repository
func NewStoreRepository(db *sql.DB, logger *zap.Logger) *storeRepository {
	return &storeRepository{db: db, logger: logger}
}

const storeColumns = `id, store_name, shopify_domain, access_token, api_key, api_secret,
	webhook_secret, is_active, sync_status, last_sync_at, created_at, updated_at`

func scanStore(row interface{ Scan(...interface{}) error }) (*domain.ShopifyStore, error) {
	var s domain.ShopifyStore
	var webhookSecret sql.NullString
	var lastSyncAt sql.NullTime

	err := row.Scan(
		&s.ID, &s.StoreName, &s.ShopifyDomain, &s.AccessToken, &s.APIKey, &s.APISecret,
		&webhookSecret, &s.IsActive, &s.SyncStatus, &lastSyncAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if webhookSecret.Valid {
		s.WebhookSecret = &webhookSecret.String
	}
	if lastSyncAt.Valid {
		s.LastSyncAt = &lastSyncAt.Time
	}
	return &s, nil
}

func (r *storeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ShopifyStore, error) {
	query := `SELECT ` + storeColumns + ` FROM shopify_stores WHERE id = $1`
	s, err := scanStore(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "shopify_store", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get store by ID", zap.Error(err))
		return nil, err
	}
	return s, nil
}

func (r *storeRepository) GetByDomain(ctx context.Context, shopifyDomain string) (*domain.ShopifyStore, error) {
	query := `SELECT ` + storeColumns + ` FROM shopify_stores WHERE shopify_domain = $1`
	s, err := scanStore(r.db.QueryRowContext(ctx, query, shopifyDomain))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "shopify_store", ID: shopifyDomain}
	}
	if err != nil {
		r.logger.Error("Failed to get store by domain", zap.String("domain", shopifyDomain), zap.Error(err))
		return nil, err
	}
	return s, nil
}

func (r *storeRepository) List(ctx context.Context) ([]*domain.ShopifyStore, error) {
	query := `SELECT ` + storeColumns + ` FROM shopify_stores ORDER BY created_at DESC`
	return r.queryStores(ctx, query)
}

func (r *storeRepository) ListActive(ctx context.Context) ([]*domain.ShopifyStore, error) {
	query := `SELECT ` + storeColumns + ` FROM shopify_stores WHERE is_active = true ORDER BY created_at ASC`
	return r.queryStores(ctx, query)
}

func (r *storeRepository) queryStores(ctx context.Context, query string, args ...interface{}) ([]*domain.ShopifyStore, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list stores", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ShopifyStore
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *storeRepository) Create(ctx context.Context, store *domain.ShopifyStore) error {
	query := `
		INSERT INTO shopify_stores (id, store_name, shopify_domain, access_token, api_key, api_secret,
			webhook_secret, is_active, sync_status, last_sync_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	now := time.Now()
	if store.ID == uuid.Nil {
		store.ID = uuid.New()
	}
	if store.CreatedAt.IsZero() {
		store.CreatedAt = now
	}
	store.UpdatedAt = now
	if store.SyncStatus == "" {
		store.SyncStatus = domain.StoreSyncIdle
	}

	_, err := r.db.ExecContext(ctx, query,
		store.ID, store.StoreName, store.ShopifyDomain, store.AccessToken, store.APIKey, store.APISecret,
		store.WebhookSecret, store.IsActive, store.SyncStatus, store.LastSyncAt, store.CreatedAt, store.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create store", zap.String("domain", store.ShopifyDomain), zap.Error(err))
		return err
	}
	return nil
}

func (r *storeRepository) Update(ctx context.Context, store *domain.ShopifyStore) error {
	query := `
		UPDATE shopify_stores SET
			store_name = $2, shopify_domain = $3, access_token = $4, api_key = $5, api_secret = $6,
			webhook_secret = $7, is_active = $8, sync_status = $9, last_sync_at = $10, updated_at = $11
		WHERE id = $1
	`
	store.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		store.ID, store.StoreName, store.ShopifyDomain, store.AccessToken, store.APIKey, store.APISecret,
		store.WebhookSecret, store.IsActive, store.SyncStatus, store.LastSyncAt, store.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update store", zap.String("id", store.ID.String()), zap.Error(err))
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &errors.ErrNotFound{Resource: "shopify_store", ID: store.ID.String()}
	}
	return nil
}

func (r *storeRepository) UpdateSyncStatus(ctx context.Context, id uuid.UUID, status domain.StoreSyncStatus, lastSyncAt time.Time) error {
	query := `UPDATE shopify_stores SET sync_status = $2, last_sync_at = $3, updated_at = $4 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, lastSyncAt, time.Now())
	if err != nil {
		r.logger.Error("Failed to update store sync status", zap.String("id", id.String()), zap.Error(err))
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &errors.ErrNotFound{Resource: "shopify_store", ID: id.String()}
	}
	return nil
}

func (r *storeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM shopify_stores WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete store", zap.String("id", id.String()), zap.Error(err))
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &errors.ErrNotFound{Resource: "shopify_store", ID: id.String()}
	}
	return nil
}
