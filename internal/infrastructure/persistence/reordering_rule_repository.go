package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/domain/stock"
	"github.com/quelyos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReorderingRuleRepository implements stock.ReorderingRuleRepository using GORM
type GormReorderingRuleRepository struct {
	db *gorm.DB
}

// NewGormReorderingRuleRepository creates a new GormReorderingRuleRepository
func NewGormReorderingRuleRepository(db *gorm.DB) *GormReorderingRuleRepository {
	return &GormReorderingRuleRepository{db: db}
}

// FindByID finds a rule by ID within a tenant
func (r *GormReorderingRuleRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*stock.ReorderingRule, error) {
	var model models.ReorderingRuleModel
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

// FindActiveByProductWarehouse returns the active rule for a
// (product, warehouse) pair, or shared.ErrNotFound
func (r *GormReorderingRuleRepository) FindActiveByProductWarehouse(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (*stock.ReorderingRule, error) {
	var model models.ReorderingRuleModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND warehouse_id = ? AND active = ?", tenantID, productID, warehouseID, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists rules with filtering
func (r *GormReorderingRuleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.ReorderingRule, error) {
	query := r.db.WithContext(ctx).Model(&models.ReorderingRuleModel{}).
		Where("tenant_id = ?", tenantID)

	for key, value := range filter.Filters {
		switch key {
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "active":
			query = query.Where("active = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	query = query.Order("created_at DESC")

	var ruleModels []models.ReorderingRuleModel
	if err := query.Find(&ruleModels).Error; err != nil {
		return nil, err
	}

	rules := make([]stock.ReorderingRule, len(ruleModels))
	for i := range ruleModels {
		rules[i] = *ruleModels[i].ToDomain()
	}
	return rules, nil
}

// Save persists the rule with optimistic concurrency control
func (r *GormReorderingRuleRepository) Save(ctx context.Context, rule *stock.ReorderingRule) error {
	model := models.ReorderingRuleModelFromDomain(rule)

	var currentVersion int
	err := r.db.WithContext(ctx).Model(&models.ReorderingRuleModel{}).
		Select("version").
		Where("id = ?", model.ID).
		Take(&currentVersion).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.db.WithContext(ctx).Create(model).Error
	case err != nil:
		return err
	case currentVersion != model.Version:
		return shared.ErrConcurrency
	}

	model.Version++
	rule.Version = model.Version
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormReorderingRuleRepository implements ReorderingRuleRepository
var _ stock.ReorderingRuleRepository = (*GormReorderingRuleRepository)(nil)
