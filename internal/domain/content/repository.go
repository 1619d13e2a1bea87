package content

import (
	"context"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
)

// EntryRepository provides persistence for storefront configuration
// entries of every kind
type EntryRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Entry, error)

	// FindBySlug finds an entry by kind and slug within a tenant
	FindBySlug(ctx context.Context, tenantID uuid.UUID, kind Kind, slug string) (*Entry, error)

	// FindByKind lists entries of one kind ordered by sequence
	FindByKind(ctx context.Context, tenantID uuid.UUID, kind Kind, filter shared.Filter) ([]Entry, error)

	// FindVisibleByKind lists entries of one kind that are active and
	// inside their time window, ordered by sequence
	FindVisibleByKind(ctx context.Context, tenantID uuid.UUID, kind Kind) ([]Entry, error)

	// CountByKind counts entries of one kind matching the filter
	CountByKind(ctx context.Context, tenantID uuid.UUID, kind Kind, filter shared.Filter) (int64, error)

	Save(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
