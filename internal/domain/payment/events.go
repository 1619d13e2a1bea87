package payment

import (
	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeTransaction = "PaymentTransaction"

// Event type constants
const (
	EventTypeTransactionCreated   = "PaymentTransactionCreated"
	EventTypeTransactionPending   = "PaymentTransactionPending"
	EventTypeTransactionSucceeded = "PaymentTransactionSucceeded"
	EventTypeTransactionFailed    = "PaymentTransactionFailed"
	EventTypeTransactionRefunded  = "PaymentTransactionRefunded"
)

// TransactionCreatedEvent is raised when a draft transaction is created
type TransactionCreatedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID       `json:"transaction_id"`
	Reference     string          `json:"reference"`
	OrderID       uuid.UUID       `json:"order_id"`
	Provider      Provider        `json:"provider"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewTransactionCreatedEvent creates a new TransactionCreatedEvent
func NewTransactionCreatedEvent(tx *Transaction) *TransactionCreatedEvent {
	return &TransactionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionCreated, AggregateTypeTransaction, tx.ID, tx.TenantID),
		TransactionID:   tx.ID,
		Reference:       tx.Reference,
		OrderID:         tx.OrderID,
		Provider:        tx.Provider,
		Amount:          tx.Amount,
	}
}

// EventType returns the event type name
func (e *TransactionCreatedEvent) EventType() string {
	return EventTypeTransactionCreated
}

// TransactionPendingEvent is raised after a successful initiation
type TransactionPendingEvent struct {
	shared.BaseDomainEvent
	TransactionID     uuid.UUID `json:"transaction_id"`
	Provider          Provider  `json:"provider"`
	ProviderPaymentID string    `json:"provider_payment_id"`
}

// NewTransactionPendingEvent creates a new TransactionPendingEvent
func NewTransactionPendingEvent(tx *Transaction) *TransactionPendingEvent {
	return &TransactionPendingEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeTransactionPending, AggregateTypeTransaction, tx.ID, tx.TenantID),
		TransactionID:     tx.ID,
		Provider:          tx.Provider,
		ProviderPaymentID: tx.ProviderPaymentID,
	}
}

// EventType returns the event type name
func (e *TransactionPendingEvent) EventType() string {
	return EventTypeTransactionPending
}

// TransactionSucceededEvent is raised when a webhook confirms payment
type TransactionSucceededEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID       `json:"transaction_id"`
	OrderID       uuid.UUID       `json:"order_id"`
	Reference     string          `json:"reference"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewTransactionSucceededEvent creates a new TransactionSucceededEvent
func NewTransactionSucceededEvent(tx *Transaction) *TransactionSucceededEvent {
	return &TransactionSucceededEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionSucceeded, AggregateTypeTransaction, tx.ID, tx.TenantID),
		TransactionID:   tx.ID,
		OrderID:         tx.OrderID,
		Reference:       tx.Reference,
		Amount:          tx.Amount,
	}
}

// EventType returns the event type name
func (e *TransactionSucceededEvent) EventType() string {
	return EventTypeTransactionSucceeded
}

// TransactionFailedEvent is raised on failure or timeout
type TransactionFailedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID `json:"transaction_id"`
	OrderID       uuid.UUID `json:"order_id"`
	Reason        string    `json:"reason"`
}

// NewTransactionFailedEvent creates a new TransactionFailedEvent
func NewTransactionFailedEvent(tx *Transaction, reason string) *TransactionFailedEvent {
	return &TransactionFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionFailed, AggregateTypeTransaction, tx.ID, tx.TenantID),
		TransactionID:   tx.ID,
		OrderID:         tx.OrderID,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *TransactionFailedEvent) EventType() string {
	return EventTypeTransactionFailed
}

// TransactionRefundedEvent is raised on an explicit refund
type TransactionRefundedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID       `json:"transaction_id"`
	OrderID       uuid.UUID       `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewTransactionRefundedEvent creates a new TransactionRefundedEvent
func NewTransactionRefundedEvent(tx *Transaction) *TransactionRefundedEvent {
	return &TransactionRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionRefunded, AggregateTypeTransaction, tx.ID, tx.TenantID),
		TransactionID:   tx.ID,
		OrderID:         tx.OrderID,
		Amount:          tx.Amount,
	}
}

// EventType returns the event type name
func (e *TransactionRefundedEvent) EventType() string {
	return EventTypeTransactionRefunded
}
