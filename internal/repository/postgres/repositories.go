package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/AgimDur/produu/internal/repository"
)

// NewRepositories creates all repositories backed by PostgreSQL
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Product:     NewProductRepository(db, logger),
		Order:       NewOrderRepository(db, logger),
		OrderItem:   NewOrderItemRepository(db, logger),
		Store:       NewStoreRepository(db, logger),
		ProductLink: NewProductLinkRepository(db, logger),
	}
}
