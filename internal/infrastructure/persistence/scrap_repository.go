package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/domain/stock"
	"github.com/quelyos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormScrapRepository implements stock.ScrapRepository using GORM
type GormScrapRepository struct {
	db *gorm.DB
}

// NewGormScrapRepository creates a new GormScrapRepository
func NewGormScrapRepository(db *gorm.DB) *GormScrapRepository {
	return &GormScrapRepository{db: db}
}

// FindByID finds a scrap order by ID within a tenant
func (r *GormScrapRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*stock.Scrap, error) {
	var model models.ScrapModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists scrap orders with filtering
func (r *GormScrapRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.Scrap, error) {
	query := r.db.WithContext(ctx).Model(&models.ScrapModel{}).
		Where("tenant_id = ?", tenantID)

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "source_location":
			query = query.Where("source_location = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, ScrapSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	var rows []models.ScrapModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	scraps := make([]stock.Scrap, len(rows))
	for i := range rows {
		scraps[i] = *rows[i].ToDomain()
	}
	return scraps, nil
}

// Save persists the aggregate
func (r *GormScrapRepository) Save(ctx context.Context, s *stock.Scrap) error {
	s.UpdatedAt = time.Now()
	model := models.ScrapModelFromDomain(s)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete removes a draft scrap order
func (r *GormScrapRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.ScrapModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormScrapRepository implements ScrapRepository
var _ stock.ScrapRepository = (*GormScrapRepository)(nil)
