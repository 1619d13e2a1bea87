package loyalty

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quelyos/backend/internal/domain/loyalty"
)

// EnrollRequest enrolls a partner in the active loyalty program
type EnrollRequest struct {
	PartnerID uuid.UUID `json:"partner_id" binding:"required"`
}

// RedeemRequest converts points into a monetary discount
type RedeemRequest struct {
	PartnerID uuid.UUID       `json:"partner_id" binding:"required"`
	Points    decimal.Decimal `json:"points" binding:"required"`
	OrderID   *uuid.UUID      `json:"order_id,omitempty"`
}

// AdjustRequest manually corrects a member balance
type AdjustRequest struct {
	PartnerID   uuid.UUID       `json:"partner_id" binding:"required"`
	Delta       decimal.Decimal `json:"delta" binding:"required"`
	Description string          `json:"description" binding:"required"`
}

// MemberResponse is the API view of a loyalty account
type MemberResponse struct {
	ID            uuid.UUID       `json:"id"`
	PartnerID     uuid.UUID       `json:"partner_id"`
	ProgramID     uuid.UUID       `json:"program_id"`
	CurrentPoints decimal.Decimal `json:"current_points"`
	TotalEarned   decimal.Decimal `json:"total_earned"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// RedeemResponse carries the discount granted for the burned points
type RedeemResponse struct {
	Member      MemberResponse  `json:"member"`
	Points      decimal.Decimal `json:"points"`
	DiscountTND decimal.Decimal `json:"discount_tnd"`
}

// TransactionResponse is one points ledger entry
type TransactionResponse struct {
	ID           uuid.UUID       `json:"id"`
	Type         string          `json:"type"`
	Points       decimal.Decimal `json:"points"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	OrderID      *uuid.UUID      `json:"order_id,omitempty"`
	Description  string          `json:"description,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToMemberResponse converts a member aggregate to its API view
func ToMemberResponse(m *loyalty.Member) MemberResponse {
	return MemberResponse{
		ID:            m.ID,
		PartnerID:     m.PartnerID,
		ProgramID:     m.ProgramID,
		CurrentPoints: m.CurrentPoints,
		TotalEarned:   m.TotalEarned,
		Active:        m.Active,
		CreatedAt:     m.CreatedAt,
	}
}

// ToTransactionResponse converts a ledger entry to its API view
func ToTransactionResponse(tx *loyalty.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:           tx.ID,
		Type:         string(tx.Type),
		Points:       tx.Points,
		BalanceAfter: tx.BalanceAfter,
		OrderID:      tx.OrderID,
		Description:  tx.Description,
		CreatedAt:    tx.CreatedAt,
	}
}
