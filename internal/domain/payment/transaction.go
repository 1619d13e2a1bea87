package payment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Provider identifies a payment gateway
type Provider string

const (
	ProviderFlouci  Provider = "flouci"
	ProviderKonnect Provider = "konnect"
	ProviderStripe  Provider = "stripe"
)

// IsValid checks if the provider is known
func (p Provider) IsValid() bool {
	switch p {
	case ProviderFlouci, ProviderKonnect, ProviderStripe:
		return true
	}
	return false
}

// TransactionStatus represents the status of a payment transaction
type TransactionStatus string

const (
	TransactionStatusDraft     TransactionStatus = "DRAFT"
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusSucceeded TransactionStatus = "SUCCEEDED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusRefunded  TransactionStatus = "REFUNDED"
)

// String returns the string representation of TransactionStatus
func (s TransactionStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states that accept no webhook-driven change
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusSucceeded || s == TransactionStatusFailed || s == TransactionStatusRefunded
}

// CanTransitionTo checks if the status can transition to the target.
// Transitions are monotonic except the explicit refund of a success.
func (s TransactionStatus) CanTransitionTo(target TransactionStatus) bool {
	switch s {
	case TransactionStatusDraft:
		return target == TransactionStatusPending || target == TransactionStatusFailed
	case TransactionStatusPending:
		return target == TransactionStatusSucceeded || target == TransactionStatusFailed
	case TransactionStatusSucceeded:
		return target == TransactionStatusRefunded
	case TransactionStatusFailed, TransactionStatusRefunded:
		return false
	}
	return false
}

// Transaction is the provider-agnostic payment transaction aggregate.
// ProviderPaymentID is unique per provider; the pair is the webhook
// idempotency key.
type Transaction struct {
	shared.TenantAggregateRoot
	Reference         string
	OrderID           uuid.UUID
	Provider          Provider
	ProviderPaymentID string
	Amount            decimal.Decimal
	Currency          valueobject.Currency
	Status            TransactionStatus
	PayloadIn         string // last webhook body received
	PayloadOut        string // provider response at initiation
	FailureReason     string
	InitiatedAt       *time.Time
	CompletedAt       *time.Time
	RefundedAt        *time.Time
}

// NewTransaction creates a draft transaction for an order
func NewTransaction(tenantID, orderID uuid.UUID, reference string, provider Provider, amount valueobject.Money) (*Transaction, error) {
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Référence de paiement requise")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Commande requise")
	}
	if !provider.IsValid() {
		return nil, shared.NewDomainError("INVALID_PROVIDER", "Fournisseur de paiement inconnu")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Le montant doit être positif")
	}

	tx := &Transaction{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Reference:           reference,
		OrderID:             orderID,
		Provider:            provider,
		Amount:              amount.Amount(),
		Currency:            amount.Currency(),
		Status:              TransactionStatusDraft,
	}
	tx.AddDomainEvent(NewTransactionCreatedEvent(tx))
	return tx, nil
}

// MarkPending records a successful initiation at the provider
func (t *Transaction) MarkPending(providerPaymentID, payloadOut string) error {
	if !t.Status.CanTransitionTo(TransactionStatusPending) {
		return t.transitionError(TransactionStatusPending)
	}
	if providerPaymentID == "" {
		return shared.NewDomainError("INVALID_PROVIDER_PAYMENT_ID", "Identifiant de paiement fournisseur requis")
	}
	now := time.Now()
	t.Status = TransactionStatusPending
	t.ProviderPaymentID = providerPaymentID
	t.PayloadOut = payloadOut
	t.InitiatedAt = &now
	t.Touch()
	t.IncrementVersion()
	t.AddDomainEvent(NewTransactionPendingEvent(t))
	return nil
}

// MarkSucceeded records a successful payment reported by a webhook
func (t *Transaction) MarkSucceeded(payloadIn string) error {
	if !t.Status.CanTransitionTo(TransactionStatusSucceeded) {
		return t.transitionError(TransactionStatusSucceeded)
	}
	now := time.Now()
	t.Status = TransactionStatusSucceeded
	t.PayloadIn = payloadIn
	t.CompletedAt = &now
	t.Touch()
	t.IncrementVersion()
	t.AddDomainEvent(NewTransactionSucceededEvent(t))
	return nil
}

// MarkFailed records a failed or timed-out payment
func (t *Transaction) MarkFailed(reason, payloadIn string) error {
	if !t.Status.CanTransitionTo(TransactionStatusFailed) {
		return t.transitionError(TransactionStatusFailed)
	}
	now := time.Now()
	t.Status = TransactionStatusFailed
	t.FailureReason = reason
	if payloadIn != "" {
		t.PayloadIn = payloadIn
	}
	t.CompletedAt = &now
	t.Touch()
	t.IncrementVersion()
	t.AddDomainEvent(NewTransactionFailedEvent(t, reason))
	return nil
}

// MarkRefunded records an explicit refund of a succeeded payment
func (t *Transaction) MarkRefunded() error {
	if !t.Status.CanTransitionTo(TransactionStatusRefunded) {
		return t.transitionError(TransactionStatusRefunded)
	}
	now := time.Now()
	t.Status = TransactionStatusRefunded
	t.RefundedAt = &now
	t.Touch()
	t.IncrementVersion()
	t.AddDomainEvent(NewTransactionRefundedEvent(t))
	return nil
}

// IsConsistentWith reports whether a webhook outcome matches the current
// terminal state. Used for idempotent redelivery: a matching redelivery
// returns 200 with no side effects.
func (t *Transaction) IsConsistentWith(success bool) bool {
	if success {
		return t.Status == TransactionStatusSucceeded || t.Status == TransactionStatusRefunded
	}
	return t.Status == TransactionStatusFailed
}

// AmountMoney returns the transaction amount as Money
func (t *Transaction) AmountMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(t.Amount, t.Currency)
	return m
}

func (t *Transaction) transitionError(target TransactionStatus) error {
	return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Transition impossible de %s vers %s", t.Status, target))
}
