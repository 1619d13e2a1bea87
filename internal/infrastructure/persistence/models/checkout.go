package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/checkout"
	"github.com/quelyos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	TenantAggregateModel
	OrderNumber       string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_orders_tenant_number,priority:2"`
	PartnerID         uuid.UUID            `gorm:"type:uuid;not null;index"`
	PartnerEmail      string               `gorm:"type:varchar(255);not null;index"`
	Status            checkout.OrderStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Lines             []OrderLineModel     `gorm:"foreignKey:OrderID;references:ID"`
	ShippingAddressID *uuid.UUID           `gorm:"type:uuid"`
	BillingAddressID  *uuid.UUID           `gorm:"type:uuid"`
	CarrierID         *uuid.UUID           `gorm:"type:uuid"`
	ShippingZone      string               `gorm:"type:varchar(30)"`
	ShippingCost      decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentMethod     string               `gorm:"type:varchar(30)"`
	PaymentReference  string               `gorm:"type:varchar(100)"`
	Currency          valueobject.Currency `gorm:"type:varchar(3);not null;default:'TND'"`
	AmountUntaxed     decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	AmountTax         decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	AmountTotal       decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	InternalNotes     string               `gorm:"type:text"`
	CustomerNotes     string               `gorm:"type:text"`
	ConfirmedAt       *time.Time           `gorm:"index"`
	PaidAt            *time.Time
	CancelledAt       *time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order aggregate.
func (m *OrderModel) ToDomain() *checkout.Order {
	order := &checkout.Order{
		OrderNumber:       m.OrderNumber,
		PartnerID:         m.PartnerID,
		PartnerEmail:      m.PartnerEmail,
		Status:            m.Status,
		ShippingAddressID: m.ShippingAddressID,
		BillingAddressID:  m.BillingAddressID,
		CarrierID:         m.CarrierID,
		ShippingZone:      m.ShippingZone,
		ShippingCost:      m.ShippingCost,
		PaymentMethod:     m.PaymentMethod,
		PaymentReference:  m.PaymentReference,
		Currency:          m.Currency,
		AmountUntaxed:     m.AmountUntaxed,
		AmountTax:         m.AmountTax,
		AmountTotal:       m.AmountTotal,
		InternalNotes:     m.InternalNotes,
		CustomerNotes:     m.CustomerNotes,
		ConfirmedAt:       m.ConfirmedAt,
		PaidAt:            m.PaidAt,
		CancelledAt:       m.CancelledAt,
		Lines:             make([]checkout.OrderLine, len(m.Lines)),
	}
	m.PopulateTenantAggregateRoot(&order.TenantAggregateRoot)
	for i, line := range m.Lines {
		order.Lines[i] = *line.ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain Order aggregate.
func (m *OrderModel) FromDomain(o *checkout.Order) {
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.PartnerID = o.PartnerID
	m.PartnerEmail = o.PartnerEmail
	m.Status = o.Status
	m.ShippingAddressID = o.ShippingAddressID
	m.BillingAddressID = o.BillingAddressID
	m.CarrierID = o.CarrierID
	m.ShippingZone = o.ShippingZone
	m.ShippingCost = o.ShippingCost
	m.PaymentMethod = o.PaymentMethod
	m.PaymentReference = o.PaymentReference
	m.Currency = o.Currency
	m.AmountUntaxed = o.AmountUntaxed
	m.AmountTax = o.AmountTax
	m.AmountTotal = o.AmountTotal
	m.InternalNotes = o.InternalNotes
	m.CustomerNotes = o.CustomerNotes
	m.ConfirmedAt = o.ConfirmedAt
	m.PaidAt = o.PaidAt
	m.CancelledAt = o.CancelledAt
	m.Lines = make([]OrderLineModel, len(o.Lines))
	for i, line := range o.Lines {
		m.Lines[i] = *OrderLineModelFromDomain(&line)
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order.
func OrderModelFromDomain(o *checkout.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderLineModel is the persistence model for the OrderLine entity.
type OrderLineModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null"`
	Name       string          `gorm:"type:varchar(255);not null"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxRate    decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0"`
	IsDelivery bool            `gorm:"not null;default:false"`
	CreatedAt  time.Time       `gorm:"not null"`
	UpdatedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderLineModel) TableName() string {
	return "order_lines"
}

// ToDomain converts the persistence model to a domain OrderLine entity.
func (m *OrderLineModel) ToDomain() *checkout.OrderLine {
	return &checkout.OrderLine{
		ID:         m.ID,
		OrderID:    m.OrderID,
		ProductID:  m.ProductID,
		Name:       m.Name,
		Quantity:   m.Quantity,
		UnitPrice:  m.UnitPrice,
		TaxRate:    m.TaxRate,
		IsDelivery: m.IsDelivery,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// OrderLineModelFromDomain creates a persistence model from a domain OrderLine.
func OrderLineModelFromDomain(l *checkout.OrderLine) *OrderLineModel {
	return &OrderLineModel{
		ID:         l.ID,
		OrderID:    l.OrderID,
		ProductID:  l.ProductID,
		Name:       l.Name,
		Quantity:   l.Quantity,
		UnitPrice:  l.UnitPrice,
		TaxRate:    l.TaxRate,
		IsDelivery: l.IsDelivery,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}
