package persistence

import (
	"context"

	"github.com/quelyos/backend/internal/application/stockops"
	"github.com/quelyos/backend/internal/domain/stock"
	"gorm.io/gorm"
)

// GormStockTransactionScope runs stock check-then-act sections inside a
// single database transaction so on-hand reads and the writes they
// guard commit atomically.
type GormStockTransactionScope struct {
	db *gorm.DB
}

// NewGormStockTransactionScope creates a new GormStockTransactionScope
func NewGormStockTransactionScope(db *gorm.DB) *GormStockTransactionScope {
	return &GormStockTransactionScope{db: db}
}

// Execute runs fn inside a transaction, handing it repositories bound
// to that transaction
func (s *GormStockTransactionScope) Execute(ctx context.Context, fn func(repos stockops.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStockTransactionalRepositories{tx: tx})
	})
}

// gormStockTransactionalRepositories provides repositories scoped to a
// transaction
type gormStockTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormStockTransactionalRepositories) Reservations() stock.ReservationRepository {
	return NewGormReservationRepository(r.tx)
}

func (r *gormStockTransactionalRepositories) Scraps() stock.ScrapRepository {
	return NewGormScrapRepository(r.tx)
}

func (r *gormStockTransactionalRepositories) CycleCounts() stock.CycleCountRepository {
	return NewGormCycleCountRepository(r.tx)
}

func (r *gormStockTransactionalRepositories) Movements() stock.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

func (r *gormStockTransactionalRepositories) OnHand() stock.OnHandProvider {
	return NewGormQuantRepository(r.tx)
}

// Ensure interface compliance
var (
	_ stockops.TransactionScope          = (*GormStockTransactionScope)(nil)
	_ stockops.TransactionalRepositories = (*gormStockTransactionalRepositories)(nil)
)
