package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReservationRepository provides persistence for the Reservation aggregate
type ReservationRepository interface {
	// FindByID finds a reservation by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Reservation, error)

	// FindByIDForUpdate finds a reservation under a row-level lock
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Reservation, error)

	// FindAllForTenant lists reservations with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Reservation, error)

	// SumActive returns the total quantity of active reservations on a
	// (product, location) pair. Read under the caller's lock.
	SumActive(ctx context.Context, tenantID, productID, locationID uuid.UUID) (decimal.Decimal, error)

	// FindActivePastDue lists active reservations whose deadline passed.
	// The expiry sweeper consumes this.
	FindActivePastDue(ctx context.Context, now time.Time, limit int) ([]Reservation, error)

	// Save persists the aggregate
	Save(ctx context.Context, r *Reservation) error

	// Delete removes a terminal reservation
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// ScrapRepository provides persistence for the Scrap aggregate
type ScrapRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Scrap, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Scrap, error)
	Save(ctx context.Context, s *Scrap) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// CycleCountRepository provides persistence for the CycleCount aggregate
type CycleCountRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*CycleCount, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]CycleCount, error)
	Save(ctx context.Context, cc *CycleCount) error
}

// LocationRepository provides persistence for warehouse locations
type LocationRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Location, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Location, error)

	// Ancestors returns the ancestor chain of a location, nearest first
	Ancestors(ctx context.Context, tenantID, id uuid.UUID) ([]uuid.UUID, error)

	// HasChildren reports whether the location has child locations
	HasChildren(ctx context.Context, tenantID, id uuid.UUID) (bool, error)

	Save(ctx context.Context, l *Location) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// LocationLockRepository manages location freeze flags
type LocationLockRepository interface {
	// FindByLocation returns the lock on a location, or shared.ErrNotFound
	FindByLocation(ctx context.Context, tenantID, locationID uuid.UUID) (*LocationLock, error)

	// AnyLocked reports whether any of the given locations carries a lock
	AnyLocked(ctx context.Context, tenantID uuid.UUID, locationIDs []uuid.UUID) (bool, error)

	Save(ctx context.Context, lock *LocationLock) error
	DeleteByLocation(ctx context.Context, tenantID, locationID uuid.UUID) error
}

// ReorderingRuleRepository provides persistence for reordering rules
type ReorderingRuleRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ReorderingRule, error)

	// FindActiveByProductWarehouse enforces uniqueness per (product,
	// warehouse) among active rules
	FindActiveByProductWarehouse(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (*ReorderingRule, error)

	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ReorderingRule, error)
	Save(ctx context.Context, r *ReorderingRule) error
}

// LotRepository provides persistence for lots
type LotRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Lot, error)
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]Lot, error)

	// FindExpiringBefore lists lots whose expiration date falls before the
	// given instant
	FindExpiringBefore(ctx context.Context, tenantID uuid.UUID, before time.Time) ([]Lot, error)

	Save(ctx context.Context, l *Lot) error
}

// MovementRepository records and queries the append-only movement ledger
type MovementRepository interface {
	// Append records movements. Movements are never updated or deleted.
	Append(ctx context.Context, movements ...*Movement) error

	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]Movement, error)
	FindByLot(ctx context.Context, tenantID, lotID uuid.UUID) ([]Movement, error)
}

// OnHandProvider reads current stock levels. Implementations must honor
// the ForUpdate variant with a row-level lock so callers can run
// check-then-act sections safely.
type OnHandProvider interface {
	// OnHand returns the quantity of a product at a location
	OnHand(ctx context.Context, tenantID, productID, locationID uuid.UUID) (decimal.Decimal, error)

	// OnHandForUpdate reads the quantity under a row-level lock
	OnHandForUpdate(ctx context.Context, tenantID, productID, locationID uuid.UUID) (decimal.Decimal, error)

	// OnHandByWarehouse returns the total quantity of a product across a
	// warehouse's internal locations
	OnHandByWarehouse(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (decimal.Decimal, error)
}
