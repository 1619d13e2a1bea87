package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quelyos/backend/internal/domain/payment"
)

// InitiatePaymentRequest starts a payment for a completed cart
type InitiatePaymentRequest struct {
	OrderID   uuid.UUID        `json:"order_id" binding:"required"`
	Provider  payment.Provider `json:"provider" binding:"required"`
	ReturnURL string           `json:"return_url"`
}

// InitiatePaymentResponse carries the redirect the storefront follows
type InitiatePaymentResponse struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Reference     string    `json:"reference"`
	PaymentURL    string    `json:"payment_url"`
	ClientSecret  string    `json:"client_secret,omitempty"`
}

// TransactionResponse is the API view of a payment transaction
type TransactionResponse struct {
	ID                uuid.UUID       `json:"id"`
	Reference         string          `json:"reference"`
	OrderID           uuid.UUID       `json:"order_id"`
	Provider          string          `json:"provider"`
	ProviderPaymentID string          `json:"provider_payment_id,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	FailureReason     string          `json:"failure_reason,omitempty"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ToTransactionResponse converts a transaction aggregate to its API view
func ToTransactionResponse(tx *payment.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                tx.ID,
		Reference:         tx.Reference,
		OrderID:           tx.OrderID,
		Provider:          string(tx.Provider),
		ProviderPaymentID: tx.ProviderPaymentID,
		Amount:            tx.Amount,
		Currency:          string(tx.Currency),
		Status:            tx.Status.String(),
		FailureReason:     tx.FailureReason,
		CompletedAt:       tx.CompletedAt,
		CreatedAt:         tx.CreatedAt,
	}
}
