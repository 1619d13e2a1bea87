package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ScrapStatus represents the status of a scrap order
type ScrapStatus string

const (
	ScrapStatusDraft ScrapStatus = "DRAFT"
	ScrapStatusDone  ScrapStatus = "DONE"
)

// Scrap writes damaged or lost goods out of a stock location. The single
// transition draft to done issues the stock movement; done is terminal.
type Scrap struct {
	shared.TenantAggregateRoot
	ProductID       uuid.UUID
	Quantity        decimal.Decimal
	SourceLocation  uuid.UUID
	ScrapLocation   uuid.UUID
	Status          ScrapStatus
	Reason          string
	ValidatedAt     *time.Time
	ValidatedByID   *uuid.UUID
}

// NewScrap creates a draft scrap order
func NewScrap(tenantID, productID, sourceLocation, scrapLocation uuid.UUID, quantity decimal.Decimal, reason string) (*Scrap, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Produit requis")
	}
	if sourceLocation == uuid.Nil || scrapLocation == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Emplacements source et rebut requis")
	}
	if sourceLocation == scrapLocation {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Les emplacements source et rebut doivent différer")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "La quantité doit être positive")
	}
	return &Scrap{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		Quantity:            quantity,
		SourceLocation:      sourceLocation,
		ScrapLocation:       scrapLocation,
		Status:              ScrapStatusDraft,
		Reason:              reason,
	}, nil
}

// Validate executes the draft to done transition and returns the stock
// movement to issue. The caller persists both atomically.
func (s *Scrap) Validate(validatedBy uuid.UUID, onHand decimal.Decimal) (*Movement, error) {
	if s.Status != ScrapStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Seul un rebut en brouillon peut être validé")
	}
	if onHand.LessThan(s.Quantity) {
		return nil, shared.ErrInsufficientStock
	}
	now := time.Now()
	s.Status = ScrapStatusDone
	s.ValidatedAt = &now
	s.ValidatedByID = &validatedBy
	s.Touch()
	s.IncrementVersion()
	s.AddDomainEvent(NewScrapValidatedEvent(s))

	return NewMovement(s.TenantID, s.ProductID, s.SourceLocation, s.ScrapLocation, s.Quantity, MovementKindScrap, s.ID.String()), nil
}

// CanDelete returns true only while in draft
func (s *Scrap) CanDelete() bool {
	return s.Status == ScrapStatusDraft
}
