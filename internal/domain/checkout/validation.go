package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogSnapshot is the catalog view needed to validate a cart line.
// It is supplied by the product collaborator.
type CatalogSnapshot struct {
	ProductID    uuid.UUID
	Name         string
	Active       bool
	IsStockable  bool
	ListPrice    decimal.Decimal
	AvailableQty decimal.Decimal
	MaxOrderQty  decimal.Decimal // zero means unbounded
}

// LineDiagnostic is a per-line validation finding
type LineDiagnostic struct {
	ProductID uuid.UUID `json:"product_id"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
}

// ValidationResult reports cart validation diagnostics. Errors block
// checkout; warnings do not.
type ValidationResult struct {
	Valid    bool             `json:"valid"`
	Errors   []LineDiagnostic `json:"errors"`
	Warnings []LineDiagnostic `json:"warnings"`
}

// Cart validation thresholds
var (
	priceDriftTolerance = decimal.NewFromFloat(0.01)
	lowStockMargin      = decimal.NewFromInt(5)
)

// ValidateCart checks a draft order's product lines against catalog
// snapshots. Purely read-only: it mutates neither the order nor stock.
func ValidateCart(order *Order, catalog map[uuid.UUID]CatalogSnapshot) ValidationResult {
	result := ValidationResult{
		Valid:    true,
		Errors:   make([]LineDiagnostic, 0),
		Warnings: make([]LineDiagnostic, 0),
	}

	for _, line := range order.ProductLines() {
		snap, ok := catalog[line.ProductID]
		if !ok {
			result.addError(line.ProductID, "PRODUCT_NOT_FOUND", "Produit introuvable")
			continue
		}
		if !snap.Active {
			result.addError(line.ProductID, "PRODUCT_INACTIVE", "Produit non disponible")
			continue
		}
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			result.addError(line.ProductID, "INVALID_QUANTITY", "Quantité invalide")
			continue
		}
		if !snap.MaxOrderQty.IsZero() && line.Quantity.GreaterThan(snap.MaxOrderQty) {
			result.addError(line.ProductID, "QUANTITY_OUT_OF_BOUNDS", "Quantité maximale dépassée")
			continue
		}

		if snap.IsStockable {
			if line.Quantity.GreaterThan(snap.AvailableQty) {
				result.addError(line.ProductID, "INSUFFICIENT_STOCK", "Stock insuffisant")
				continue
			}
			remaining := snap.AvailableQty.Sub(line.Quantity)
			if remaining.LessThan(lowStockMargin) {
				result.addWarning(line.ProductID, "LOW_STOCK", "Stock presque épuisé")
			}
		}

		drift := line.UnitPrice.Sub(snap.ListPrice).Abs()
		if drift.GreaterThan(priceDriftTolerance) {
			result.addWarning(line.ProductID, "PRICE_DRIFT", "Le prix du produit a changé depuis l'ajout au panier")
		}
	}

	return result
}

func (r *ValidationResult) addError(productID uuid.UUID, code, message string) {
	r.Valid = false
	r.Errors = append(r.Errors, LineDiagnostic{ProductID: productID, Code: code, Message: message})
}

func (r *ValidationResult) addWarning(productID uuid.UUID, code, message string) {
	r.Warnings = append(r.Warnings, LineDiagnostic{ProductID: productID, Code: code, Message: message})
}
