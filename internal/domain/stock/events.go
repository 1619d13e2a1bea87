package stock

import (
	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeReservation = "Reservation"
	AggregateTypeScrap       = "Scrap"
	AggregateTypeCycleCount  = "CycleCount"
)

// Event type constants
const (
	EventTypeReservationCreated   = "ReservationCreated"
	EventTypeReservationActivated = "ReservationActivated"
	EventTypeReservationReleased  = "ReservationReleased"
	EventTypeReservationExpired   = "ReservationExpired"
	EventTypeScrapValidated       = "ScrapValidated"
	EventTypeCycleCountScheduled  = "CycleCountScheduled"
	EventTypeCycleCountValidated  = "CycleCountValidated"
)

// ReservationCreatedEvent is raised when a draft reservation is created
type ReservationCreatedEvent struct {
	shared.BaseDomainEvent
	ReservationID uuid.UUID       `json:"reservation_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	LocationID    uuid.UUID       `json:"location_id"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// NewReservationCreatedEvent creates a new ReservationCreatedEvent
func NewReservationCreatedEvent(r *Reservation) *ReservationCreatedEvent {
	return &ReservationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationCreated, AggregateTypeReservation, r.ID, r.TenantID),
		ReservationID:   r.ID,
		ProductID:       r.ProductID,
		LocationID:      r.LocationID,
		Quantity:        r.Quantity,
	}
}

// EventType returns the event type name
func (e *ReservationCreatedEvent) EventType() string {
	return EventTypeReservationCreated
}

// ReservationActivatedEvent is raised when a reservation starts counting
// against available quantity
type ReservationActivatedEvent struct {
	shared.BaseDomainEvent
	ReservationID uuid.UUID       `json:"reservation_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	LocationID    uuid.UUID       `json:"location_id"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// NewReservationActivatedEvent creates a new ReservationActivatedEvent
func NewReservationActivatedEvent(r *Reservation) *ReservationActivatedEvent {
	return &ReservationActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationActivated, AggregateTypeReservation, r.ID, r.TenantID),
		ReservationID:   r.ID,
		ProductID:       r.ProductID,
		LocationID:      r.LocationID,
		Quantity:        r.Quantity,
	}
}

// EventType returns the event type name
func (e *ReservationActivatedEvent) EventType() string {
	return EventTypeReservationActivated
}

// ReservationReleasedEvent is raised when a reservation is released
type ReservationReleasedEvent struct {
	shared.BaseDomainEvent
	ReservationID uuid.UUID       `json:"reservation_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// NewReservationReleasedEvent creates a new ReservationReleasedEvent
func NewReservationReleasedEvent(r *Reservation) *ReservationReleasedEvent {
	return &ReservationReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationReleased, AggregateTypeReservation, r.ID, r.TenantID),
		ReservationID:   r.ID,
		ProductID:       r.ProductID,
		Quantity:        r.Quantity,
	}
}

// EventType returns the event type name
func (e *ReservationReleasedEvent) EventType() string {
	return EventTypeReservationReleased
}

// ReservationExpiredEvent is raised by the expiry sweeper
type ReservationExpiredEvent struct {
	shared.BaseDomainEvent
	ReservationID uuid.UUID       `json:"reservation_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// NewReservationExpiredEvent creates a new ReservationExpiredEvent
func NewReservationExpiredEvent(r *Reservation) *ReservationExpiredEvent {
	return &ReservationExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationExpired, AggregateTypeReservation, r.ID, r.TenantID),
		ReservationID:   r.ID,
		ProductID:       r.ProductID,
		Quantity:        r.Quantity,
	}
}

// EventType returns the event type name
func (e *ReservationExpiredEvent) EventType() string {
	return EventTypeReservationExpired
}

// ScrapValidatedEvent is raised when a scrap order issues its movement
type ScrapValidatedEvent struct {
	shared.BaseDomainEvent
	ScrapID   uuid.UUID       `json:"scrap_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason"`
}

// NewScrapValidatedEvent creates a new ScrapValidatedEvent
func NewScrapValidatedEvent(s *Scrap) *ScrapValidatedEvent {
	return &ScrapValidatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeScrapValidated, AggregateTypeScrap, s.ID, s.TenantID),
		ScrapID:         s.ID,
		ProductID:       s.ProductID,
		Quantity:        s.Quantity,
		Reason:          s.Reason,
	}
}

// EventType returns the event type name
func (e *ScrapValidatedEvent) EventType() string {
	return EventTypeScrapValidated
}

// CycleCountScheduledEvent is raised when theoretical quantities are
// snapshotted and the count moves to scheduled
type CycleCountScheduledEvent struct {
	shared.BaseDomainEvent
	CycleCountID uuid.UUID `json:"cycle_count_id"`
	Reference    string    `json:"reference"`
	LineCount    int       `json:"line_count"`
}

// NewCycleCountScheduledEvent creates a new CycleCountScheduledEvent
func NewCycleCountScheduledEvent(cc *CycleCount) *CycleCountScheduledEvent {
	return &CycleCountScheduledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCycleCountScheduled, AggregateTypeCycleCount, cc.ID, cc.TenantID),
		CycleCountID:    cc.ID,
		Reference:       cc.Reference,
		LineCount:       len(cc.Lines),
	}
}

// EventType returns the event type name
func (e *CycleCountScheduledEvent) EventType() string {
	return EventTypeCycleCountScheduled
}

// CycleCountValidatedEvent is raised when counted quantities are applied
type CycleCountValidatedEvent struct {
	shared.BaseDomainEvent
	CycleCountID    uuid.UUID       `json:"cycle_count_id"`
	Reference       string          `json:"reference"`
	ValueDifference decimal.Decimal `json:"value_difference"`
}

// NewCycleCountValidatedEvent creates a new CycleCountValidatedEvent
func NewCycleCountValidatedEvent(cc *CycleCount) *CycleCountValidatedEvent {
	return &CycleCountValidatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCycleCountValidated, AggregateTypeCycleCount, cc.ID, cc.TenantID),
		CycleCountID:    cc.ID,
		Reference:       cc.Reference,
		ValueDifference: cc.TotalValueDifference(),
	}
}

// EventType returns the event type name
func (e *CycleCountValidatedEvent) EventType() string {
	return EventTypeCycleCountValidated
}
