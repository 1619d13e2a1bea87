package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/application/stockops"
	"github.com/quelyos/backend/internal/domain/stock"
	"github.com/quelyos/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormQuantRepository reads on-hand stock from the quants table. It
// implements both the domain OnHandProvider and the count-scheduling
// and valuation reads of the stock application service.
type GormQuantRepository struct {
	db *gorm.DB
}

// NewGormQuantRepository creates a new GormQuantRepository
func NewGormQuantRepository(db *gorm.DB) *GormQuantRepository {
	return &GormQuantRepository{db: db}
}

// OnHand returns the quantity of a product at a location. A missing
// quant row reads as zero.
func (r *GormQuantRepository) OnHand(ctx context.Context, tenantID, productID, locationID uuid.UUID) (decimal.Decimal, error) {
	var quant models.QuantModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND location_id = ?", tenantID, productID, locationID).
		First(&quant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return quant.Quantity, nil
}

// OnHandForUpdate reads the quantity under a row-level lock. A missing
// quant row is created at zero first so the lock has a row to hold.
func (r *GormQuantRepository) OnHandForUpdate(ctx context.Context, tenantID, productID, locationID uuid.UUID) (decimal.Decimal, error) {
	now := time.Now()
	seed := models.QuantModel{
		BaseModel:  models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		TenantID:   tenantID,
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   decimal.Zero,
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "product_id"}, {Name: "location_id"}},
			DoNothing: true,
		}).Create(&seed).Error; err != nil {
		return decimal.Zero, err
	}

	var quant models.QuantModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND product_id = ? AND location_id = ?", tenantID, productID, locationID).
		First(&quant).Error; err != nil {
		return decimal.Zero, err
	}
	return quant.Quantity, nil
}

// OnHandByWarehouse sums the product's quantity across the warehouse's
// internal locations
func (r *GormQuantRepository) OnHandByWarehouse(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&models.QuantModel{}).
		Select("SUM(stock_quants.quantity)").
		Joins("JOIN stock_locations ON stock_locations.id = stock_quants.location_id").
		Where("stock_quants.tenant_id = ? AND stock_quants.product_id = ?", tenantID, productID).
		Where("stock_locations.warehouse_id = ? AND stock_locations.usage = ?", warehouseID, stock.LocationUsageInternal).
		Take(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// SnapshotForScope returns the quants covered by a count scope
func (r *GormQuantRepository) SnapshotForScope(ctx context.Context, tenantID uuid.UUID, scope stock.CountScope) ([]stock.QuantSnapshot, error) {
	query := r.db.WithContext(ctx).Model(&models.QuantModel{}).
		Select("stock_quants.product_id", "stock_quants.location_id", "stock_quants.quantity", "products.standard_price").
		Joins("JOIN products ON products.id = stock_quants.product_id").
		Where("stock_quants.tenant_id = ?", tenantID).
		Where("stock_quants.location_id IN ?", scope.LocationIDs)

	if len(scope.CategoryIDs) > 0 {
		query = query.Where("products.category_id IN ?", scope.CategoryIDs)
	}

	var snapshots []stock.QuantSnapshot
	if err := query.Order("stock_quants.location_id, stock_quants.product_id").
		Scan(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}

// ValuationByWarehouse returns per-product quantity and standard price
// across the warehouse's internal locations
func (r *GormQuantRepository) ValuationByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID) ([]stock.ABCInput, error) {
	var inputs []stock.ABCInput
	err := r.db.WithContext(ctx).Model(&models.QuantModel{}).
		Select("stock_quants.product_id", "SUM(stock_quants.quantity) AS quantity", "products.standard_price").
		Joins("JOIN products ON products.id = stock_quants.product_id").
		Joins("JOIN stock_locations ON stock_locations.id = stock_quants.location_id").
		Where("stock_quants.tenant_id = ?", tenantID).
		Where("stock_locations.warehouse_id = ? AND stock_locations.usage = ?", warehouseID, stock.LocationUsageInternal).
		Group("stock_quants.product_id, products.standard_price").
		Scan(&inputs).Error
	if err != nil {
		return nil, err
	}
	return inputs, nil
}

// Ensure GormQuantRepository implements both read interfaces
var (
	_ stock.OnHandProvider = (*GormQuantRepository)(nil)
	_ stockops.QuantReader = (*GormQuantRepository)(nil)
)
