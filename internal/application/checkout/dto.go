package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quelyos/backend/internal/domain/checkout"
)

// AddItemRequest adds a product to the cart
type AddItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

// UpdateItemRequest changes a cart line quantity
type UpdateItemRequest struct {
	LineID   uuid.UUID       `json:"line_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// ShippingQuoteRequest asks for a delivery cost
type ShippingQuoteRequest struct {
	Zone            string           `json:"zone"`
	CarrierFlatRate *decimal.Decimal `json:"carrier_flat_rate,omitempty"`
}

// CompleteRequest finalizes the cart before payment
type CompleteRequest struct {
	ShippingAddressID uuid.UUID  `json:"shipping_address_id" binding:"required"`
	BillingAddressID  uuid.UUID  `json:"billing_address_id" binding:"required"`
	CarrierID         *uuid.UUID `json:"carrier_id,omitempty"`
	Zone              string     `json:"zone" binding:"required"`
	PaymentMethod     string     `json:"payment_method"`
	CustomerNotes     string     `json:"customer_notes"`
}

// OrderLineResponse is one line of an order
type OrderLineResponse struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Name       string          `json:"name"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TaxRate    decimal.Decimal `json:"tax_rate"`
	IsDelivery bool            `json:"is_delivery"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// OrderResponse is the API view of an order
type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	Status        string              `json:"status"`
	Lines         []OrderLineResponse `json:"lines"`
	ShippingZone  string              `json:"shipping_zone,omitempty"`
	ShippingCost  decimal.Decimal     `json:"shipping_cost"`
	Currency      string              `json:"currency"`
	AmountUntaxed decimal.Decimal     `json:"amount_untaxed"`
	AmountTax     decimal.Decimal     `json:"amount_tax"`
	AmountTotal   decimal.Decimal     `json:"amount_total"`
	ConfirmedAt   *time.Time          `json:"confirmed_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// ToOrderResponse converts an order aggregate to its API view
func ToOrderResponse(o *checkout.Order) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, OrderLineResponse{
			ID:         l.ID,
			ProductID:  l.ProductID,
			Name:       l.Name,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			TaxRate:    l.TaxRate,
			IsDelivery: l.IsDelivery,
			Subtotal:   l.Subtotal(),
		})
	}
	return OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        o.Status.String(),
		Lines:         lines,
		ShippingZone:  o.ShippingZone,
		ShippingCost:  o.ShippingCost,
		Currency:      string(o.Currency),
		AmountUntaxed: o.AmountUntaxed,
		AmountTax:     o.AmountTax,
		AmountTotal:   o.AmountTotal,
		ConfirmedAt:   o.ConfirmedAt,
		CreatedAt:     o.CreatedAt,
	}
}
