package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/domain/stock"
	"github.com/quelyos/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMovementRepository implements stock.MovementRepository using GORM.
// Movements are an append-only ledger; rows are never updated or deleted.
// Appending a movement also applies its quantity delta to the quants
// table, so on-hand reads never replay the ledger.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Append records movements and applies their deltas to the quants
func (r *GormMovementRepository) Append(ctx context.Context, movements ...*stock.Movement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(movements).Error; err != nil {
			return err
		}
		for _, m := range movements {
			if err := applyQuantDelta(tx, m.TenantID, m.ProductID, m.SourceLocation, m.Quantity.Neg()); err != nil {
				return err
			}
			if err := applyQuantDelta(tx, m.TenantID, m.ProductID, m.DestLocation, m.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

// applyQuantDelta upserts the (product, location) quant row by delta.
// Virtual locations accumulate quants too; warehouse-level reads filter
// on internal usage.
func applyQuantDelta(tx *gorm.DB, tenantID, productID, locationID uuid.UUID, delta decimal.Decimal) error {
	now := time.Now()
	quant := models.QuantModel{
		BaseModel:  models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		TenantID:   tenantID,
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   delta,
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "product_id"}, {Name: "location_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("stock_quants.quantity + ?", delta),
			"updated_at": now,
		}),
	}).Create(&quant).Error
}

// FindByProduct lists movements for a product, newest first
func (r *GormMovementRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]stock.Movement, error) {
	query := r.db.WithContext(ctx).Model(&stock.Movement{}).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID)

	for key, value := range filter.Filters {
		switch key {
		case "kind":
			query = query.Where("kind = ?", value)
		case "location_id":
			query = query.Where("(source_location = ? OR dest_location = ?)", value, value)
		case "after":
			query = query.Where("created_at >= ?", value)
		case "before":
			query = query.Where("created_at < ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	query = query.Order("created_at DESC")

	var movements []stock.Movement
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByLot lists movements carrying a lot, newest first
func (r *GormMovementRepository) FindByLot(ctx context.Context, tenantID, lotID uuid.UUID) ([]stock.Movement, error) {
	var movements []stock.Movement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND lot_id = ?", tenantID, lotID).
		Order("created_at DESC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Ensure GormMovementRepository implements MovementRepository
var _ stock.MovementRepository = (*GormMovementRepository)(nil)
