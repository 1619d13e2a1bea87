package stock

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReservationStatus represents the status of a stock reservation
type ReservationStatus string

const (
	ReservationStatusDraft    ReservationStatus = "DRAFT"
	ReservationStatusActive   ReservationStatus = "ACTIVE"
	ReservationStatusReleased ReservationStatus = "RELEASED"
	ReservationStatusExpired  ReservationStatus = "EXPIRED"
)

// String returns the string representation of ReservationStatus
func (s ReservationStatus) String() string {
	return string(s)
}

// IsTerminal returns true for released and expired reservations
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationStatusReleased || s == ReservationStatusExpired
}

// CanTransitionTo checks if the status can transition to the target
func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
	switch s {
	case ReservationStatusDraft:
		return target == ReservationStatusActive || target == ReservationStatusReleased
	case ReservationStatusActive:
		return target == ReservationStatusReleased || target == ReservationStatusExpired
	case ReservationStatusReleased, ReservationStatusExpired:
		return false
	}
	return false
}

// Reservation is a soft hold on stock. While active it counts against
// available quantity without moving anything. The activation invariant:
// on_hand(product, location) minus the sum of active reservations must
// cover the requested quantity.
type Reservation struct {
	shared.TenantAggregateRoot
	ProductID  uuid.UUID
	LocationID uuid.UUID
	Quantity   decimal.Decimal
	Status     ReservationStatus
	Reason     string
	ExpiresAt  *time.Time
	ActivatedAt *time.Time
	ReleasedAt *time.Time
}

// NewReservation creates a draft reservation
func NewReservation(tenantID, productID, locationID uuid.UUID, quantity decimal.Decimal, reason string, expiresAt *time.Time) (*Reservation, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Produit requis")
	}
	if locationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Emplacement requis")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "La quantité doit être positive")
	}

	r := &Reservation{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		LocationID:          locationID,
		Quantity:            quantity,
		Status:              ReservationStatusDraft,
		Reason:              reason,
		ExpiresAt:           expiresAt,
	}
	r.AddDomainEvent(NewReservationCreatedEvent(r))
	return r, nil
}

// Activate transitions the reservation to active. The caller must supply
// the on-hand quantity and the sum of already-active reservations on the
// same (product, location), read under a row-level lock.
func (r *Reservation) Activate(onHand, activeReserved decimal.Decimal) error {
	if !r.Status.CanTransitionTo(ReservationStatusActive) {
		return r.transitionError(ReservationStatusActive)
	}
	available := onHand.Sub(activeReserved)
	if available.LessThan(r.Quantity) {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Stock insuffisant: disponible %s, demandé %s", available, r.Quantity))
	}
	now := time.Now()
	r.Status = ReservationStatusActive
	r.ActivatedAt = &now
	r.Touch()
	r.IncrementVersion()
	r.AddDomainEvent(NewReservationActivatedEvent(r))
	return nil
}

// Release voluntarily ends the reservation
func (r *Reservation) Release() error {
	if !r.Status.CanTransitionTo(ReservationStatusReleased) {
		return r.transitionError(ReservationStatusReleased)
	}
	now := time.Now()
	r.Status = ReservationStatusReleased
	r.ReleasedAt = &now
	r.Touch()
	r.IncrementVersion()
	r.AddDomainEvent(NewReservationReleasedEvent(r))
	return nil
}

// Expire ends an active reservation whose deadline passed. The sweeper
// calls this.
func (r *Reservation) Expire(now time.Time) error {
	if r.Status != ReservationStatusActive {
		return r.transitionError(ReservationStatusExpired)
	}
	if r.ExpiresAt == nil || now.Before(*r.ExpiresAt) {
		return shared.NewDomainError("NOT_EXPIRED", "La réservation n'a pas encore expiré")
	}
	r.Status = ReservationStatusExpired
	r.ReleasedAt = &now
	r.Touch()
	r.IncrementVersion()
	r.AddDomainEvent(NewReservationExpiredEvent(r))
	return nil
}

// CanDelete returns true only in terminal states
func (r *Reservation) CanDelete() bool {
	return r.Status.IsTerminal()
}

// IsPastDue returns true when an active reservation is past its deadline
func (r *Reservation) IsPastDue(now time.Time) bool {
	return r.Status == ReservationStatusActive && r.ExpiresAt != nil && !now.Before(*r.ExpiresAt)
}

func (r *Reservation) transitionError(target ReservationStatus) error {
	return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Transition impossible de %s vers %s", r.Status, target))
}
