package stock

import (
	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReorderingRule triggers replenishment suggestions when on-hand stock
// falls below the minimum. Unique per (product, warehouse) while active.
type ReorderingRule struct {
	shared.TenantAggregateRoot
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	MinQty      decimal.Decimal
	MaxQty      decimal.Decimal
	QtyMultiple decimal.Decimal
	Active      bool
}

// NewReorderingRule creates an active reordering rule
func NewReorderingRule(tenantID, productID, warehouseID uuid.UUID, minQty, maxQty, qtyMultiple decimal.Decimal) (*ReorderingRule, error) {
	if productID == uuid.Nil || warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Produit et entrepôt requis")
	}
	if minQty.GreaterThanOrEqual(maxQty) {
		return nil, shared.NewDomainError("INVALID_RANGE", "La quantité minimale doit être inférieure à la quantité maximale")
	}
	if qtyMultiple.LessThanOrEqual(decimal.Zero) {
		qtyMultiple = decimal.NewFromInt(1)
	}
	return &ReorderingRule{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		WarehouseID:         warehouseID,
		MinQty:              minQty,
		MaxQty:              maxQty,
		QtyMultiple:         qtyMultiple,
		Active:              true,
	}, nil
}

// UpdateRange updates the min/max bounds of the rule
func (r *ReorderingRule) UpdateRange(minQty, maxQty decimal.Decimal) error {
	if minQty.GreaterThanOrEqual(maxQty) {
		return shared.NewDomainError("INVALID_RANGE", "La quantité minimale doit être inférieure à la quantité maximale")
	}
	r.MinQty = minQty
	r.MaxQty = maxQty
	r.Touch()
	r.IncrementVersion()
	return nil
}

// Archive deactivates the rule
func (r *ReorderingRule) Archive() {
	r.Active = false
	r.Touch()
	r.IncrementVersion()
}

// IsTriggered reports whether on-hand stock is below the minimum
func (r *ReorderingRule) IsTriggered(onHand decimal.Decimal) bool {
	return r.Active && onHand.LessThan(r.MinQty)
}

// SuggestedQty returns the replenishment suggestion, rounded up to the
// quantity multiple: ceil((max - on_hand) / multiple) * multiple. Zero
// when the rule is not triggered.
func (r *ReorderingRule) SuggestedQty(onHand decimal.Decimal) decimal.Decimal {
	if !r.IsTriggered(onHand) {
		return decimal.Zero
	}
	need := r.MaxQty.Sub(onHand)
	multiple := r.QtyMultiple
	if multiple.LessThanOrEqual(decimal.Zero) {
		multiple = decimal.NewFromInt(1)
	}
	steps := need.Div(multiple).Ceil()
	return steps.Mul(multiple)
}
