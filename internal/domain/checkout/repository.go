package checkout

import (
	"context"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
)

// OrderRepository provides persistence for the Order aggregate
type OrderRepository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByIDForTenant finds an order by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its number within a tenant
	FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*Order, error)

	// FindActiveCart finds the single active draft cart for a partner, or
	// shared.ErrNotFound when none exists
	FindActiveCart(ctx context.Context, tenantID, partnerID uuid.UUID) (*Order, error)

	// FindActiveCartByEmail finds the active draft cart for a guest email
	FindActiveCartByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*Order, error)

	// FindAllForTenant lists orders with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Order, error)

	// CountForTenant counts orders matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// Save persists the aggregate with optimistic locking on its version
	Save(ctx context.Context, order *Order) error

	// SaveWithLock persists the aggregate under a row-level lock. Used by
	// correctness-critical sections such as webhook-driven confirmation.
	SaveWithLock(ctx context.Context, order *Order) error
}

// ProductCatalog is the read-only catalog collaborator used for cart
// validation. The underlying product store is out of scope.
type ProductCatalog interface {
	// Snapshots returns catalog snapshots for the given products within a
	// tenant. Missing products are simply absent from the result.
	Snapshots(ctx context.Context, tenantID uuid.UUID, productIDs []uuid.UUID) (map[uuid.UUID]CatalogSnapshot, error)
}
