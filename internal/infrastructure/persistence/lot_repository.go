package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/domain/stock"
	"gorm.io/gorm"
)

// GormLotRepository implements stock.LotRepository using GORM.
// Lots persist directly from the domain type.
type GormLotRepository struct {
	db *gorm.DB
}

// NewGormLotRepository creates a new GormLotRepository
func NewGormLotRepository(db *gorm.DB) *GormLotRepository {
	return &GormLotRepository{db: db}
}

// FindByID finds a lot by ID within a tenant
func (r *GormLotRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*stock.Lot, error) {
	var lot stock.Lot
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&lot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// FindByProduct lists lots for a product, oldest expiration first
func (r *GormLotRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]stock.Lot, error) {
	var lots []stock.Lot
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("expiration_date ASC NULLS LAST").
		Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// FindExpiringBefore lists lots whose expiration date falls before the given instant
func (r *GormLotRepository) FindExpiringBefore(ctx context.Context, tenantID uuid.UUID, before time.Time) ([]stock.Lot, error) {
	var lots []stock.Lot
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND expiration_date IS NOT NULL AND expiration_date < ?", tenantID, before).
		Order("expiration_date ASC").
		Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// Save persists the lot
func (r *GormLotRepository) Save(ctx context.Context, l *stock.Lot) error {
	l.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(l).Error
}

// Ensure GormLotRepository implements LotRepository
var _ stock.LotRepository = (*GormLotRepository)(nil)
