package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/checkout"
	"github.com/quelyos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductCatalog implements checkout.ProductCatalog over the
// storefront product read model.
type GormProductCatalog struct {
	db *gorm.DB
}

// NewGormProductCatalog creates a new GormProductCatalog
func NewGormProductCatalog(db *gorm.DB) *GormProductCatalog {
	return &GormProductCatalog{db: db}
}

// Snapshots returns catalog snapshots for the given products within a
// tenant. Missing products are absent from the result.
func (r *GormProductCatalog) Snapshots(ctx context.Context, tenantID uuid.UUID, productIDs []uuid.UUID) (map[uuid.UUID]checkout.CatalogSnapshot, error) {
	result := make(map[uuid.UUID]checkout.CatalogSnapshot, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, productIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.ID] = checkout.CatalogSnapshot{
			ProductID:    row.ID,
			Name:         row.Name,
			Active:       row.Active,
			IsStockable:  row.IsStockable,
			ListPrice:    row.ListPrice,
			AvailableQty: row.AvailableQty,
			MaxOrderQty:  row.MaxOrderQty,
		}
	}
	return result, nil
}

// Ensure GormProductCatalog implements ProductCatalog
var _ checkout.ProductCatalog = (*GormProductCatalog)(nil)
