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

// GormLocationRepository implements stock.LocationRepository using GORM.
// Locations persist directly from the domain type.
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// FindByID finds a location by ID within a tenant
func (r *GormLocationRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*stock.Location, error) {
	var location stock.Location
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&location).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &location, nil
}

// FindAllForTenant lists locations with filtering
func (r *GormLocationRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.Location, error) {
	query := r.db.WithContext(ctx).Model(&stock.Location{}).
		Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "usage":
			query = query.Where("usage = ?", value)
		case "parent_id":
			query = query.Where("parent_id = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	query = query.Order("name ASC")

	var locations []stock.Location
	if err := query.Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// Ancestors returns the ancestor chain of a location, nearest first.
// The chain is walked in memory; location trees stay small per tenant.
func (r *GormLocationRepository) Ancestors(ctx context.Context, tenantID, id uuid.UUID) ([]uuid.UUID, error) {
	var locations []stock.Location
	if err := r.db.WithContext(ctx).
		Select("id", "parent_id").
		Where("tenant_id = ?", tenantID).
		Find(&locations).Error; err != nil {
		return nil, err
	}

	parents := make(map[uuid.UUID]*uuid.UUID, len(locations))
	for i := range locations {
		parents[locations[i].GetID()] = locations[i].ParentID
	}

	var chain []uuid.UUID
	current, ok := parents[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	for current != nil {
		chain = append(chain, *current)
		next, ok := parents[*current]
		if !ok || len(chain) > len(locations) {
			break
		}
		current = next
	}
	return chain, nil
}

// HasChildren reports whether the location has child locations
func (r *GormLocationRepository) HasChildren(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&stock.Location{}).
		Where("tenant_id = ? AND parent_id = ?", tenantID, id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save persists the location
func (r *GormLocationRepository) Save(ctx context.Context, l *stock.Location) error {
	l.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(l).Error
}

// Delete removes a location
func (r *GormLocationRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&stock.Location{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormLocationRepository implements LocationRepository
var _ stock.LocationRepository = (*GormLocationRepository)(nil)

// GormLocationLockRepository implements stock.LocationLockRepository using GORM
type GormLocationLockRepository struct {
	db *gorm.DB
}

// NewGormLocationLockRepository creates a new GormLocationLockRepository
func NewGormLocationLockRepository(db *gorm.DB) *GormLocationLockRepository {
	return &GormLocationLockRepository{db: db}
}

// FindByLocation returns the lock on a location, or shared.ErrNotFound
func (r *GormLocationLockRepository) FindByLocation(ctx context.Context, tenantID, locationID uuid.UUID) (*stock.LocationLock, error) {
	var lock stock.LocationLock
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND location_id = ?", tenantID, locationID).
		First(&lock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lock, nil
}

// AnyLocked reports whether any of the given locations carries a lock
func (r *GormLocationLockRepository) AnyLocked(ctx context.Context, tenantID uuid.UUID, locationIDs []uuid.UUID) (bool, error) {
	if len(locationIDs) == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&stock.LocationLock{}).
		Where("tenant_id = ? AND location_id IN ?", tenantID, locationIDs).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save persists the lock
func (r *GormLocationLockRepository) Save(ctx context.Context, lock *stock.LocationLock) error {
	lock.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(lock).Error
}

// DeleteByLocation removes the lock on a location
func (r *GormLocationLockRepository) DeleteByLocation(ctx context.Context, tenantID, locationID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND location_id = ?", tenantID, locationID).
		Delete(&stock.LocationLock{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormLocationLockRepository implements LocationLockRepository
var _ stock.LocationLockRepository = (*GormLocationLockRepository)(nil)
