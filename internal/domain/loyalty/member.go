package loyalty

import (
	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Member is a partner's loyalty account. CurrentPoints never goes
// negative and TotalEarned only grows; redemptions reduce the balance
// without touching the lifetime counter.
type Member struct {
	shared.TenantAggregateRoot
	PartnerID     uuid.UUID
	ProgramID     uuid.UUID
	CurrentPoints decimal.Decimal
	TotalEarned   decimal.Decimal
	Active        bool
}

// NewMember enrolls a partner into a loyalty program
func NewMember(tenantID, partnerID, programID uuid.UUID) (*Member, error) {
	if partnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTNER", "Client requis")
	}
	if programID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROGRAM", "Programme de fidélité requis")
	}
	return &Member{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PartnerID:           partnerID,
		ProgramID:           programID,
		CurrentPoints:       decimal.Zero,
		TotalEarned:         decimal.Zero,
		Active:              true,
	}, nil
}

// Earn credits points and returns the ledger entry to persist alongside
// the member. The amount must be positive.
func (m *Member) Earn(points decimal.Decimal, orderID *uuid.UUID, description string) (*Transaction, error) {
	if !m.Active {
		return nil, shared.NewDomainError("MEMBER_INACTIVE", "Compte de fidélité désactivé")
	}
	if points.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_POINTS", "Le nombre de points doit être positif")
	}
	m.CurrentPoints = m.CurrentPoints.Add(points)
	m.TotalEarned = m.TotalEarned.Add(points)
	m.Touch()
	m.IncrementVersion()
	m.AddDomainEvent(NewPointsEarnedEvent(m, points, orderID))
	return newTransaction(m, TransactionTypeEarn, points, orderID, description), nil
}

// Redeem debits points. The balance must cover the redemption.
func (m *Member) Redeem(points decimal.Decimal, orderID *uuid.UUID, description string) (*Transaction, error) {
	if !m.Active {
		return nil, shared.NewDomainError("MEMBER_INACTIVE", "Compte de fidélité désactivé")
	}
	if points.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_POINTS", "Le nombre de points doit être positif")
	}
	if m.CurrentPoints.LessThan(points) {
		return nil, shared.NewDomainError("INSUFFICIENT_POINTS", "Solde de points insuffisant")
	}
	m.CurrentPoints = m.CurrentPoints.Sub(points)
	m.Touch()
	m.IncrementVersion()
	m.AddDomainEvent(NewPointsRedeemedEvent(m, points, orderID))
	return newTransaction(m, TransactionTypeRedeem, points.Neg(), orderID, description), nil
}

// Adjust applies a manual correction. Negative deltas are clamped by the
// balance; the lifetime counter grows only on positive deltas.
func (m *Member) Adjust(delta decimal.Decimal, description string) (*Transaction, error) {
	if delta.IsZero() {
		return nil, shared.NewDomainError("INVALID_POINTS", "L'ajustement ne peut pas être nul")
	}
	if delta.IsNegative() && m.CurrentPoints.Add(delta).IsNegative() {
		return nil, shared.NewDomainError("INSUFFICIENT_POINTS", "L'ajustement rendrait le solde négatif")
	}
	m.CurrentPoints = m.CurrentPoints.Add(delta)
	if delta.IsPositive() {
		m.TotalEarned = m.TotalEarned.Add(delta)
	}
	m.Touch()
	m.IncrementVersion()
	return newTransaction(m, TransactionTypeAdjust, delta, nil, description), nil
}

// Deactivate freezes the account
func (m *Member) Deactivate() {
	m.Active = false
	m.Touch()
	m.IncrementVersion()
}
