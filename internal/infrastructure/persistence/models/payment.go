package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/payment"
	"github.com/quelyos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentTransactionModel is the persistence model for the payment
// Transaction aggregate root.
type PaymentTransactionModel struct {
	TenantAggregateModel
	Reference         string                    `gorm:"type:varchar(100);not null;uniqueIndex:idx_payment_tx_tenant_ref,priority:2"`
	OrderID           uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Provider          payment.Provider          `gorm:"type:varchar(20);not null;uniqueIndex:idx_payment_tx_provider_pid,priority:1"`
	ProviderPaymentID string                    `gorm:"type:varchar(255);uniqueIndex:idx_payment_tx_provider_pid,priority:2,where:provider_payment_id <> ''"`
	Amount            decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	Currency          valueobject.Currency      `gorm:"type:varchar(3);not null;default:'TND'"`
	Status            payment.TransactionStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	PayloadIn         string                    `gorm:"type:text"`
	PayloadOut        string                    `gorm:"type:text"`
	FailureReason     string                    `gorm:"type:varchar(500)"`
	InitiatedAt       *time.Time                `gorm:"index"`
	CompletedAt       *time.Time
	RefundedAt        *time.Time
}

// TableName returns the table name for GORM
func (PaymentTransactionModel) TableName() string {
	return "payment_transactions"
}

// ToDomain converts the persistence model to a domain Transaction aggregate.
func (m *PaymentTransactionModel) ToDomain() *payment.Transaction {
	tx := &payment.Transaction{
		Reference:         m.Reference,
		OrderID:           m.OrderID,
		Provider:          m.Provider,
		ProviderPaymentID: m.ProviderPaymentID,
		Amount:            m.Amount,
		Currency:          m.Currency,
		Status:            m.Status,
		PayloadIn:         m.PayloadIn,
		PayloadOut:        m.PayloadOut,
		FailureReason:     m.FailureReason,
		InitiatedAt:       m.InitiatedAt,
		CompletedAt:       m.CompletedAt,
		RefundedAt:        m.RefundedAt,
	}
	m.PopulateTenantAggregateRoot(&tx.TenantAggregateRoot)
	return tx
}

// FromDomain populates the persistence model from a domain Transaction.
func (m *PaymentTransactionModel) FromDomain(tx *payment.Transaction) {
	m.FromDomainTenantAggregateRoot(tx.TenantAggregateRoot)
	m.Reference = tx.Reference
	m.OrderID = tx.OrderID
	m.Provider = tx.Provider
	m.ProviderPaymentID = tx.ProviderPaymentID
	m.Amount = tx.Amount
	m.Currency = tx.Currency
	m.Status = tx.Status
	m.PayloadIn = tx.PayloadIn
	m.PayloadOut = tx.PayloadOut
	m.FailureReason = tx.FailureReason
	m.InitiatedAt = tx.InitiatedAt
	m.CompletedAt = tx.CompletedAt
	m.RefundedAt = tx.RefundedAt
}

// PaymentTransactionModelFromDomain creates a persistence model from a
// domain Transaction.
func PaymentTransactionModelFromDomain(tx *payment.Transaction) *PaymentTransactionModel {
	m := &PaymentTransactionModel{}
	m.FromDomain(tx)
	return m
}
