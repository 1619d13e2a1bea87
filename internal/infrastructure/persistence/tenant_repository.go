package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/domain/tenant"
	"gorm.io/gorm"
)

// GormTenantRepository implements tenant.Repository using GORM.
// Tenants persist directly from the domain type.
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByID finds an active tenant by ID
func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	var t tenant.Tenant
	if err := r.db.WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FindByDomain finds an active tenant by its storefront domain
func (r *GormTenantRepository) FindByDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	var t tenant.Tenant
	if err := r.db.WithContext(ctx).
		Where("LOWER(domain) = LOWER(?) AND active = ?", domain, true).
		First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FindDefault returns the fallback tenant
func (r *GormTenantRepository) FindDefault(ctx context.Context) (*tenant.Tenant, error) {
	var t tenant.Tenant
	if err := r.db.WithContext(ctx).
		Where("is_default = ? AND active = ?", true, true).
		First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Ensure GormTenantRepository implements Repository
var _ tenant.Repository = (*GormTenantRepository)(nil)
