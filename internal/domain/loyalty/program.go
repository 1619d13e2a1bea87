package loyalty

import (
	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Program defines how points are earned and what they are worth. The
// program is the single authority on point valuation; amounts are never
// derived client-side.
type Program struct {
	shared.TenantAggregateRoot
	Name           string
	EarnRate       decimal.Decimal // points credited per dinar spent
	RedeemValue    decimal.Decimal // dinars per point at redemption
	MinRedemption  decimal.Decimal // minimum points per redemption
	Active         bool
}

// NewProgram creates an active loyalty program
func NewProgram(tenantID uuid.UUID, name string, earnRate, redeemValue, minRedemption decimal.Decimal) (*Program, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Nom du programme requis")
	}
	if earnRate.LessThanOrEqual(decimal.Zero) || redeemValue.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_RATE", "Les taux d'accumulation et de conversion doivent être positifs")
	}
	if minRedemption.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", "Le seuil minimal de conversion ne peut pas être négatif")
	}
	return &Program{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		EarnRate:            earnRate,
		RedeemValue:         redeemValue,
		MinRedemption:       minRedemption,
		Active:              true,
	}, nil
}

// PointsForOrder converts an order total into earned points, floored to
// whole points
func (p *Program) PointsForOrder(total valueobject.Money) decimal.Decimal {
	return total.Amount().Mul(p.EarnRate).Floor()
}

// RedemptionValue converts points into a monetary discount
func (p *Program) RedemptionValue(points decimal.Decimal) (valueobject.Money, error) {
	if points.LessThan(p.MinRedemption) {
		return valueobject.Money{}, shared.NewDomainError("BELOW_MIN_REDEMPTION", "Nombre de points inférieur au seuil de conversion")
	}
	return valueobject.NewMoneyTND(points.Mul(p.RedeemValue)), nil
}

// Deactivate archives the program
func (p *Program) Deactivate() {
	p.Active = false
	p.Touch()
	p.IncrementVersion()
}
