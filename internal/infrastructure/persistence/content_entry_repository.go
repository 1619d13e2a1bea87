package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/content"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormContentEntryRepository implements content.EntryRepository using GORM
type GormContentEntryRepository struct {
	db *gorm.DB
}

// NewGormContentEntryRepository creates a new GormContentEntryRepository
func NewGormContentEntryRepository(db *gorm.DB) *GormContentEntryRepository {
	return &GormContentEntryRepository{db: db}
}

// FindByID finds an entry by ID within a tenant
func (r *GormContentEntryRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*content.Entry, error) {
	var model models.ContentEntryModel
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

// FindBySlug finds an entry by kind and slug within a tenant
func (r *GormContentEntryRepository) FindBySlug(ctx context.Context, tenantID uuid.UUID, kind content.Kind, slug string) (*content.Entry, error) {
	var model models.ContentEntryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND kind = ? AND slug = ?", tenantID, kind, slug).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormContentEntryRepository) byKind(ctx context.Context, tenantID uuid.UUID, kind content.Kind, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.ContentEntryModel{}).
		Where("tenant_id = ? AND kind = ?", tenantID, kind)

	if filter.Search != "" {
		query = query.Where("(name ILIKE ? OR slug ILIKE ?)", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "active":
			query = query.Where("active = ?", value)
		}
	}
	return query
}

// FindByKind lists entries of one kind ordered by sequence
func (r *GormContentEntryRepository) FindByKind(ctx context.Context, tenantID uuid.UUID, kind content.Kind, filter shared.Filter) ([]content.Entry, error) {
	query := r.byKind(ctx, tenantID, kind, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, ContentEntrySortFields, "sequence")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	var entryModels []models.ContentEntryModel
	if err := query.Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toEntries(entryModels), nil
}

// FindVisibleByKind lists active entries whose time window contains now
func (r *GormContentEntryRepository) FindVisibleByKind(ctx context.Context, tenantID uuid.UUID, kind content.Kind) ([]content.Entry, error) {
	now := time.Now()
	var entryModels []models.ContentEntryModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND kind = ? AND active = ?", tenantID, kind, true).
		Where("(starts_at IS NULL OR starts_at <= ?)", now).
		Where("(ends_at IS NULL OR ends_at > ?)", now).
		Order("sequence ASC, created_at ASC").
		Find(&entryModels).Error
	if err != nil {
		return nil, err
	}
	return toEntries(entryModels), nil
}

// CountByKind counts entries of one kind matching the filter
func (r *GormContentEntryRepository) CountByKind(ctx context.Context, tenantID uuid.UUID, kind content.Kind, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.byKind(ctx, tenantID, kind, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists the entry with optimistic concurrency control
func (r *GormContentEntryRepository) Save(ctx context.Context, e *content.Entry) error {
	model := models.ContentEntryModelFromDomain(e)

	var currentVersion int
	err := r.db.WithContext(ctx).Model(&models.ContentEntryModel{}).
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
	e.Version = model.Version
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes an entry
func (r *GormContentEntryRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.ContentEntryModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toEntries(entryModels []models.ContentEntryModel) []content.Entry {
	entries := make([]content.Entry, len(entryModels))
	for i := range entryModels {
		entries[i] = *entryModels[i].ToDomain()
	}
	return entries
}

// Ensure GormContentEntryRepository implements EntryRepository
var _ content.EntryRepository = (*GormContentEntryRepository)(nil)
