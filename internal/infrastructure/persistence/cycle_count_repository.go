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

// GormCycleCountRepository implements stock.CycleCountRepository using GORM
type GormCycleCountRepository struct {
	db *gorm.DB
}

// NewGormCycleCountRepository creates a new GormCycleCountRepository
func NewGormCycleCountRepository(db *gorm.DB) *GormCycleCountRepository {
	return &GormCycleCountRepository{db: db}
}

// FindByID finds a cycle count with its lines by ID within a tenant
func (r *GormCycleCountRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*stock.CycleCount, error) {
	var model models.CycleCountModel
	if err := r.db.WithContext(ctx).Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAllForTenant lists cycle counts with filtering
func (r *GormCycleCountRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.CycleCount, error) {
	query := r.db.WithContext(ctx).Model(&models.CycleCountModel{}).Preload("Lines").
		Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		query = query.Where("reference ILIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "scheduled_after":
			query = query.Where("scheduled_date >= ?", value)
		case "scheduled_before":
			query = query.Where("scheduled_date < ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, CycleCountSortFields, "scheduled_date")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	var rows []models.CycleCountModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make([]stock.CycleCount, len(rows))
	for i := range rows {
		cc, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		counts[i] = *cc
	}
	return counts, nil
}

// Save persists the aggregate with its lines
func (r *GormCycleCountRepository) Save(ctx context.Context, cc *stock.CycleCount) error {
	cc.UpdatedAt = time.Now()
	model, err := models.CycleCountModelFromDomain(cc)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(&model).Error; err != nil {
			return err
		}

		currentLineIDs := make([]uuid.UUID, len(model.Lines))
		for i, line := range model.Lines {
			currentLineIDs[i] = line.ID
		}
		del := tx.Where("cycle_count_id = ?", model.ID)
		if len(currentLineIDs) > 0 {
			del = del.Where("id NOT IN ?", currentLineIDs)
		}
		if err := del.Delete(&models.CountLineModel{}).Error; err != nil {
			return err
		}
		for i := range model.Lines {
			model.Lines[i].CycleCountID = model.ID
			if err := tx.Save(&model.Lines[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Ensure GormCycleCountRepository implements CycleCountRepository
var _ stock.CycleCountRepository = (*GormCycleCountRepository)(nil)
