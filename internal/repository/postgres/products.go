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

type productRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sql.DB, logger *zap.Logger) *productRepository {
	return &productRepository{db: db, logger: logger}
}

const productColumns = `id, sku, ean13, name, description, price, stock, category, sku_level, parent_id, created_at, updated_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (*domain.Product, error) {
	var p domain.Product
	var ean13, description sql.NullString
	var parentID uuid.NullUUID
	err := row.Scan(
		&p.ID, &p.SKU, &ean13, &p.Name, &description, &p.Price, &p.Stock,
		&p.Category, &p.SKULevel, &parentID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if ean13.Valid {
		p.EAN13 = &ean13.String
	}
	if description.Valid {
		p.Description = &description.String
	}
	if parentID.Valid {
		p.ParentID = &parentID.UUID
	}
	return &p, nil
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get product by ID", zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *productRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = $1`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, sku))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "product", ID: sku}
	}
	if err != nil {
		r.logger.Error("Failed to get product by SKU", zap.String("sku", sku), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`
	return r.queryProducts(ctx, query)
}

func (r *productRepository) ListByParentID(ctx context.Context, parentID uuid.UUID) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE parent_id = $1 ORDER BY sku ASC`
	return r.queryProducts(ctx, query, parentID)
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...interface{}) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, sku, ean13, name, description, price, stock, category, sku_level, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	now := time.Now()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		product.ID, product.SKU, product.EAN13, product.Name, product.Description,
		product.Price, product.Stock, product.Category, product.SKULevel,
		product.ParentID, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create product", zap.String("sku", product.SKU), zap.Error(err))
		return err
	}
	return nil
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET sku = $2, ean13 = $3, name = $4, description = $5, price = $6,
			stock = $7, category = $8, sku_level = $9, parent_id = $10, updated_at = $11
		WHERE id = $1
	`
	product.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		product.ID, product.SKU, product.EAN13, product.Name, product.Description,
		product.Price, product.Stock, product.Category, product.SKULevel,
		product.ParentID, product.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update product", zap.String("id", product.ID.String()), zap.Error(err))
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &errors.ErrNotFound{Resource: "product", ID: product.ID.String()}
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete product", zap.String("id", id.String()), zap.Error(err))
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	return nil
}
