package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the storefront-facing product read model. The catalog
// itself is administered by a separate back office; this backend only
// reads it for cart validation, pricing snapshots and stock analytics.
type ProductModel struct {
	TenantAggregateModel
	CategoryID    *uuid.UUID      `gorm:"type:uuid;index"`
	Name          string          `gorm:"type:varchar(255);not null"`
	Slug          string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_products_tenant_slug,priority:2"`
	Active        bool            `gorm:"not null;default:true;index"`
	IsStockable   bool            `gorm:"not null;default:true"`
	ListPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	StandardPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AvailableQty  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MaxOrderQty   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// CategoryModel is the storefront category read model, administered by
// the same back office as products
type CategoryModel struct {
	TenantAggregateModel
	Name   string `gorm:"type:varchar(255);not null"`
	Slug   string `gorm:"type:varchar(255);not null;uniqueIndex:idx_categories_tenant_slug,priority:2"`
	Active bool   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}
