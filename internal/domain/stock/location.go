package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
)

// LocationUsage classifies locations
type LocationUsage string

const (
	LocationUsageInternal LocationUsage = "internal"
	LocationUsageSupplier LocationUsage = "supplier"
	LocationUsageCustomer LocationUsage = "customer"
	LocationUsageScrap    LocationUsage = "scrap"
	LocationUsageLoss     LocationUsage = "inventory_loss"
)

// Location is a node of the warehouse location tree. Each node keeps an
// explicit parent reference; reparenting checks the ancestor chain.
type Location struct {
	shared.BaseEntity
	TenantID    uuid.UUID     `gorm:"type:uuid;not null;index"`
	WarehouseID uuid.UUID     `gorm:"type:uuid;not null;index"`
	ParentID    *uuid.UUID    `gorm:"type:uuid;index"`
	Name        string        `gorm:"type:varchar(255);not null"`
	Usage       LocationUsage `gorm:"type:varchar(20);not null;default:'internal'"`
	Active      bool          `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Location) TableName() string {
	return "stock_locations"
}

// ValidateReparent refuses moves that would make the new parent a
// descendant of the node. ancestorsOfNewParent is the ancestor chain of
// the candidate parent, nearest first.
func (l *Location) ValidateReparent(newParentID uuid.UUID, ancestorsOfNewParent []uuid.UUID) error {
	if newParentID == l.ID {
		return shared.NewDomainError("CIRCULAR_LOOP", "Un emplacement ne peut pas être son propre parent")
	}
	for _, ancestor := range ancestorsOfNewParent {
		if ancestor == l.ID {
			return shared.NewDomainError("CIRCULAR_LOOP", "Déplacement impossible: cela créerait une boucle dans la hiérarchie")
		}
	}
	return nil
}

// LocationLock freezes a location. While present, the stock layer rejects
// move creations into or out of the location.
type LocationLock struct {
	shared.BaseEntity
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index"`
	LocationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	LockedByID uuid.UUID `gorm:"type:uuid;not null"`
	Reason     string    `gorm:"type:varchar(255)"`
	LockedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LocationLock) TableName() string {
	return "stock_location_locks"
}

// NewLocationLock creates a lock on a location
func NewLocationLock(tenantID, locationID, lockedBy uuid.UUID, reason string) (*LocationLock, error) {
	if locationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Emplacement requis")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Motif de verrouillage requis")
	}
	return &LocationLock{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		LocationID: locationID,
		LockedByID: lockedBy,
		Reason:     reason,
		LockedAt:   time.Now(),
	}, nil
}
