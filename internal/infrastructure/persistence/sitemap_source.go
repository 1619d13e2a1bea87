package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quelyos/backend/internal/application/seo"
	"github.com/quelyos/backend/internal/infrastructure/persistence/models"
)

// GormSitemapSource lists indexable storefront entities for the sitemap
type GormSitemapSource struct {
	db *gorm.DB
}

// NewGormSitemapSource creates a new GormSitemapSource
func NewGormSitemapSource(db *gorm.DB) *GormSitemapSource {
	return &GormSitemapSource{db: db}
}

// CategoryRefs returns active category slugs with their last update
func (r *GormSitemapSource) CategoryRefs(ctx context.Context, tenantID uuid.UUID) ([]seo.Ref, error) {
	var rows []models.CategoryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("slug ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	refs := make([]seo.Ref, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, seo.Ref{Slug: row.Slug, UpdatedAt: row.UpdatedAt})
	}
	return refs, nil
}

// ProductRefs returns active product slugs with their last update
func (r *GormSitemapSource) ProductRefs(ctx context.Context, tenantID uuid.UUID) ([]seo.Ref, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("slug ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	refs := make([]seo.Ref, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, seo.Ref{Slug: row.Slug, UpdatedAt: row.UpdatedAt})
	}
	return refs, nil
}

var _ seo.Source = (*GormSitemapSource)(nil)
