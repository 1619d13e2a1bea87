package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of an order. A cart is an order in
// DRAFT status reachable through the public API.
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusPaid, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusDraft:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusPaid
	case OrderStatusPaid, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// OrderLine represents a line in an order. The unit price is frozen at
// add-time; only cart validation refreshes it against the catalog.
type OrderLine struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	ProductID  uuid.UUID
	Name       string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	TaxRate    decimal.Decimal // e.g. 0.19
	IsDelivery bool            // true for the shipping cost line
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewOrderLine creates a new order line
func NewOrderLine(orderID, productID uuid.UUID, name string, quantity decimal.Decimal, unitPrice valueobject.Money, taxRate decimal.Decimal) (*OrderLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Produit invalide")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "La quantité doit être positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Le prix unitaire ne peut pas être négatif")
	}
	now := time.Now()
	return &OrderLine{
		ID:        uuid.New(),
		OrderID:   orderID,
		ProductID: productID,
		Name:      name,
		Quantity:  quantity,
		UnitPrice: unitPrice.Amount(),
		TaxRate:   taxRate,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Subtotal returns quantity times unit price, untaxed
func (l *OrderLine) Subtotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// TaxAmount returns the tax portion of the line
func (l *OrderLine) TaxAmount() decimal.Decimal {
	return l.Subtotal().Mul(l.TaxRate)
}

// Order is the aggregate covering the cart (DRAFT) through PAID or
// CANCELLED.
type Order struct {
	shared.TenantAggregateRoot
	OrderNumber       string
	PartnerID         uuid.UUID
	PartnerEmail      string
	Status            OrderStatus
	Lines             []OrderLine
	ShippingAddressID *uuid.UUID
	BillingAddressID  *uuid.UUID
	CarrierID         *uuid.UUID
	ShippingZone      string
	ShippingCost      decimal.Decimal
	PaymentMethod     string
	PaymentReference  string
	Currency          valueobject.Currency
	AmountUntaxed     decimal.Decimal
	AmountTax         decimal.Decimal
	AmountTotal       decimal.Decimal
	InternalNotes     string
	CustomerNotes     string
	ConfirmedAt       *time.Time
	PaidAt            *time.Time
	CancelledAt       *time.Time
}

// NewOrder creates a new draft order (cart) for a partner
func NewOrder(tenantID uuid.UUID, orderNumber string, partnerID uuid.UUID, partnerEmail string) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Numéro de commande invalide")
	}
	if partnerID == uuid.Nil && partnerEmail == "" {
		return nil, shared.NewDomainError("INVALID_PARTNER", "Le client de la commande est requis")
	}

	o := &Order{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:         orderNumber,
		PartnerID:           partnerID,
		PartnerEmail:        strings.ToLower(strings.TrimSpace(partnerEmail)),
		Status:              OrderStatusDraft,
		Lines:               make([]OrderLine, 0),
		Currency:            valueobject.DefaultCurrency,
		ShippingCost:        decimal.Zero,
		AmountUntaxed:       decimal.Zero,
		AmountTax:           decimal.Zero,
		AmountTotal:         decimal.Zero,
	}
	o.AddDomainEvent(NewOrderCreatedEvent(o))
	return o, nil
}

// AddLine adds a product line to the draft order
func (o *Order) AddLine(productID uuid.UUID, name string, quantity decimal.Decimal, unitPrice valueobject.Money, taxRate decimal.Decimal) (*OrderLine, error) {
	if o.Status != OrderStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Les lignes ne sont modifiables qu'en brouillon")
	}

	// Merge with an existing line for the same product
	for i := range o.Lines {
		if o.Lines[i].ProductID == productID && !o.Lines[i].IsDelivery {
			o.Lines[i].Quantity = o.Lines[i].Quantity.Add(quantity)
			o.Lines[i].UpdatedAt = time.Now()
			o.recalculateTotals()
			o.IncrementVersion()
			return &o.Lines[i], nil
		}
	}

	line, err := NewOrderLine(o.ID, productID, name, quantity, unitPrice, taxRate)
	if err != nil {
		return nil, err
	}
	o.Lines = append(o.Lines, *line)
	o.recalculateTotals()
	o.IncrementVersion()
	return line, nil
}

// UpdateLineQuantity updates the quantity of a line
func (o *Order) UpdateLineQuantity(lineID uuid.UUID, quantity decimal.Decimal) error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Les lignes ne sont modifiables qu'en brouillon")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "La quantité doit être positive")
	}
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			o.Lines[i].Quantity = quantity
			o.Lines[i].UpdatedAt = time.Now()
			o.recalculateTotals()
			o.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Ligne introuvable")
}

// RefreshLinePrice refreshes a frozen line price against the catalog.
// Only cart validation calls this.
func (o *Order) RefreshLinePrice(lineID uuid.UUID, unitPrice valueobject.Money) error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Les lignes ne sont modifiables qu'en brouillon")
	}
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			o.Lines[i].UnitPrice = unitPrice.Amount()
			o.Lines[i].UpdatedAt = time.Now()
			o.recalculateTotals()
			o.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Ligne introuvable")
}

// RemoveLine removes a line from the draft order
func (o *Order) RemoveLine(lineID uuid.UUID) error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Les lignes ne sont modifiables qu'en brouillon")
	}
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
			o.recalculateTotals()
			o.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Ligne introuvable")
}

// CompleteParams pins the delivery details of a draft order
type CompleteParams struct {
	ShippingAddressID uuid.UUID
	BillingAddressID  uuid.UUID
	CarrierID         *uuid.UUID
	PaymentMethod     string
	CustomerNotes     string
}

// Complete pins addresses, carrier and payment method on the draft and
// installs the delivery line for the given shipping quote. The order stays
// in DRAFT awaiting payment. Repeated calls overwrite the pinned fields
// and replace the delivery line, so re-completion is idempotent.
func (o *Order) Complete(params CompleteParams, quote ShippingQuote) error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Seule une commande en brouillon peut être finalisée")
	}
	if len(o.ProductLines()) == 0 {
		return shared.NewDomainError("EMPTY_CART", "Le panier est vide")
	}
	if params.ShippingAddressID == uuid.Nil || params.BillingAddressID == uuid.Nil {
		return shared.NewDomainError("INVALID_ADDRESS", "Adresses de livraison et de facturation requises")
	}

	o.ShippingAddressID = &params.ShippingAddressID
	o.BillingAddressID = &params.BillingAddressID
	o.CarrierID = params.CarrierID
	o.PaymentMethod = params.PaymentMethod
	o.CustomerNotes = params.CustomerNotes
	o.ShippingZone = quote.Zone
	o.ShippingCost = quote.Cost.Amount()

	o.removeDeliveryLines()
	if quote.Cost.IsPositive() {
		now := time.Now()
		o.Lines = append(o.Lines, OrderLine{
			ID:         uuid.New(),
			OrderID:    o.ID,
			ProductID:  deliveryProductID,
			Name:       fmt.Sprintf("Livraison (%s)", quote.Zone),
			Quantity:   decimal.NewFromInt(1),
			UnitPrice:  quote.Cost.Amount(),
			TaxRate:    decimal.Zero,
			IsDelivery: true,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	o.recalculateTotals()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderCompletedEvent(o))
	return nil
}

// Confirm transitions the draft to CONFIRMED after payment succeeded.
// The payment reference is appended to the internal notes.
func (o *Order) Confirm(paymentReference string) error {
	if !o.Status.CanTransitionTo(OrderStatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Transition impossible de %s vers CONFIRMED", o.Status))
	}
	now := time.Now()
	o.Status = OrderStatusConfirmed
	o.ConfirmedAt = &now
	if paymentReference != "" {
		o.PaymentReference = paymentReference
		o.appendNote("Paiement: " + paymentReference)
	}
	o.Touch()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderConfirmedEvent(o, paymentReference))
	return nil
}

// MarkPaid transitions a confirmed order to PAID
func (o *Order) MarkPaid() error {
	if !o.Status.CanTransitionTo(OrderStatusPaid) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Transition impossible de %s vers PAID", o.Status))
	}
	now := time.Now()
	o.Status = OrderStatusPaid
	o.PaidAt = &now
	o.Touch()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderPaidEvent(o))
	return nil
}

// Cancel cancels a draft order
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Transition impossible de %s vers CANCELLED", o.Status))
	}
	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	if reason != "" {
		o.appendNote("Annulation: " + reason)
	}
	o.Touch()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderCancelledEvent(o, reason))
	return nil
}

// IsDraft returns true if the order is a cart
func (o *Order) IsDraft() bool {
	return o.Status == OrderStatusDraft
}

// ProductLines returns the non-delivery lines
func (o *Order) ProductLines() []OrderLine {
	lines := make([]OrderLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		if !l.IsDelivery {
			lines = append(lines, l)
		}
	}
	return lines
}

// DeliveryLineCount returns how many delivery lines the order carries
func (o *Order) DeliveryLineCount() int {
	n := 0
	for _, l := range o.Lines {
		if l.IsDelivery {
			n++
		}
	}
	return n
}

// GetLineByProduct returns the non-delivery line for a product, or nil
func (o *Order) GetLineByProduct(productID uuid.UUID) *OrderLine {
	for i := range o.Lines {
		if o.Lines[i].ProductID == productID && !o.Lines[i].IsDelivery {
			return &o.Lines[i]
		}
	}
	return nil
}

// AmountUntaxedMoney returns the untaxed total as Money
func (o *Order) AmountUntaxedMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(o.AmountUntaxed, o.Currency)
	return m
}

// AmountTotalMoney returns the grand total as Money
func (o *Order) AmountTotalMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(o.AmountTotal, o.Currency)
	return m
}

func (o *Order) removeDeliveryLines() {
	kept := o.Lines[:0]
	for _, l := range o.Lines {
		if !l.IsDelivery {
			kept = append(kept, l)
		}
	}
	o.Lines = kept
}

func (o *Order) appendNote(note string) {
	if o.InternalNotes == "" {
		o.InternalNotes = note
		return
	}
	o.InternalNotes += "\n" + note
}

// recalculateTotals recomputes the untaxed, tax and grand total amounts.
// The delivery line counts into the grand total but not into the untaxed
// product subtotal used for the free shipping threshold.
func (o *Order) recalculateTotals() {
	untaxed := decimal.Zero
	tax := decimal.Zero
	shipping := decimal.Zero
	for _, l := range o.Lines {
		if l.IsDelivery {
			shipping = shipping.Add(l.Subtotal())
			continue
		}
		untaxed = untaxed.Add(l.Subtotal())
		tax = tax.Add(l.TaxAmount())
	}
	o.AmountUntaxed = untaxed
	o.AmountTax = tax
	o.AmountTotal = untaxed.Add(tax).Add(shipping)
	o.Touch()
}

// deliveryProductID is a sentinel product reference for delivery lines
var deliveryProductID = uuid.MustParse("00000000-0000-0000-0000-00000000d111")
