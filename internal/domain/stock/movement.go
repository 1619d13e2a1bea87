package stock

import (
	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MovementKind classifies stock movements
type MovementKind string

const (
	MovementKindReceipt    MovementKind = "receipt"
	MovementKindIssue      MovementKind = "issue"
	MovementKindInternal   MovementKind = "internal"
	MovementKindScrap      MovementKind = "scrap"
	MovementKindAdjustment MovementKind = "adjustment"
)

// IsValid checks if the kind is known
func (k MovementKind) IsValid() bool {
	switch k {
	case MovementKindReceipt, MovementKindIssue, MovementKindInternal, MovementKindScrap, MovementKindAdjustment:
		return true
	}
	return false
}

// Movement records a quantity moved between two locations. Append-only;
// a movement is never edited after creation.
type Movement struct {
	shared.BaseEntity
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	SourceLocation uuid.UUID       `gorm:"type:uuid;not null;index"`
	DestLocation   uuid.UUID       `gorm:"type:uuid;not null;index"`
	LotID          *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Kind           MovementKind    `gorm:"type:varchar(20);not null"`
	SourceRef      string          `gorm:"type:varchar(100)"` // originating document
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "stock_movements"
}

// NewMovement creates a stock movement record
func NewMovement(tenantID, productID, source, dest uuid.UUID, quantity decimal.Decimal, kind MovementKind, sourceRef string) *Movement {
	return &Movement{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       tenantID,
		ProductID:      productID,
		SourceLocation: source,
		DestLocation:   dest,
		Quantity:       quantity,
		Kind:           kind,
		SourceRef:      sourceRef,
	}
}

// WithLot attaches a lot to the movement for traceability
func (m *Movement) WithLot(lotID uuid.UUID) *Movement {
	m.LotID = &lotID
	return m
}

// Touches reports whether the movement enters or leaves the location
func (m *Movement) Touches(locationID uuid.UUID) bool {
	return m.SourceLocation == locationID || m.DestLocation == locationID
}
