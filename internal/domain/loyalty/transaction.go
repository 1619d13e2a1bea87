package loyalty

import (
	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TransactionType classifies loyalty ledger entries
type TransactionType string

const (
	TransactionTypeEarn   TransactionType = "EARN"
	TransactionTypeRedeem TransactionType = "REDEEM"
	TransactionTypeAdjust TransactionType = "ADJUST"
)

// Transaction is an append-only loyalty ledger entry. Points carries the
// signed delta applied to the member's balance; BalanceAfter snapshots
// the resulting balance for audit replay.
type Transaction struct {
	shared.BaseEntity
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	MemberID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type         TransactionType `gorm:"type:varchar(10);not null"`
	Points       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	OrderID      *uuid.UUID      `gorm:"type:uuid;index"`
	Description  string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Transaction) TableName() string {
	return "loyalty_transactions"
}

func newTransaction(m *Member, txType TransactionType, points decimal.Decimal, orderID *uuid.UUID, description string) *Transaction {
	return &Transaction{
		BaseEntity:   shared.NewBaseEntity(),
		TenantID:     m.TenantID,
		MemberID:     m.ID,
		Type:         txType,
		Points:       points,
		BalanceAfter: m.CurrentPoints,
		OrderID:      orderID,
		Description:  description,
	}
}
