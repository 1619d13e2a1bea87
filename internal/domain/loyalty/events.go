package loyalty

import (
	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeMember = "LoyaltyMember"

// Event type constants
const (
	EventTypePointsEarned   = "LoyaltyPointsEarned"
	EventTypePointsRedeemed = "LoyaltyPointsRedeemed"
)

// PointsEarnedEvent is raised when points are credited
type PointsEarnedEvent struct {
	shared.BaseDomainEvent
	MemberID  uuid.UUID       `json:"member_id"`
	PartnerID uuid.UUID       `json:"partner_id"`
	Points    decimal.Decimal `json:"points"`
	OrderID   *uuid.UUID      `json:"order_id,omitempty"`
}

// NewPointsEarnedEvent creates a new PointsEarnedEvent
func NewPointsEarnedEvent(m *Member, points decimal.Decimal, orderID *uuid.UUID) *PointsEarnedEvent {
	return &PointsEarnedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePointsEarned, AggregateTypeMember, m.ID, m.TenantID),
		MemberID:        m.ID,
		PartnerID:       m.PartnerID,
		Points:          points,
		OrderID:         orderID,
	}
}

// EventType returns the event type name
func (e *PointsEarnedEvent) EventType() string {
	return EventTypePointsEarned
}

// PointsRedeemedEvent is raised when points are spent
type PointsRedeemedEvent struct {
	shared.BaseDomainEvent
	MemberID  uuid.UUID       `json:"member_id"`
	PartnerID uuid.UUID       `json:"partner_id"`
	Points    decimal.Decimal `json:"points"`
	OrderID   *uuid.UUID      `json:"order_id,omitempty"`
}

// NewPointsRedeemedEvent creates a new PointsRedeemedEvent
func NewPointsRedeemedEvent(m *Member, points decimal.Decimal, orderID *uuid.UUID) *PointsRedeemedEvent {
	return &PointsRedeemedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePointsRedeemed, AggregateTypeMember, m.ID, m.TenantID),
		MemberID:        m.ID,
		PartnerID:       m.PartnerID,
		Points:          points,
		OrderID:         orderID,
	}
}

// EventType returns the event type name
func (e *PointsRedeemedEvent) EventType() string {
	return EventTypePointsRedeemed
}
