package tenant

import (
	"context"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
)

// Tenant represents a logical customer of the platform. It maps to one
// company and pins the default pricelist and warehouse used by storefront
// handlers. Tenants are created out-of-band and are read-only at runtime.
type Tenant struct {
	shared.BaseEntity
	Domain             string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name               string    `gorm:"type:varchar(255);not null"`
	CompanyID          uuid.UUID `gorm:"type:uuid;not null"`
	DefaultPricelistID uuid.UUID `gorm:"type:uuid;not null"`
	DefaultWarehouseID uuid.UUID `gorm:"type:uuid;not null"`
	IsDefault          bool      `gorm:"not null;default:false"`
	Active             bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// Repository provides read access to tenants
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindByDomain(ctx context.Context, domain string) (*Tenant, error)
	FindDefault(ctx context.Context) (*Tenant, error)
}
