package checkout

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quelyos/backend/internal/domain/checkout"
	"github.com/quelyos/backend/internal/domain/identity"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/domain/shared/valueobject"
)

// Settings carries the tenant-level checkout knobs
type Settings struct {
	ZoneTable      checkout.ZoneTable
	FreeThreshold  valueobject.Money
	DefaultTaxRate decimal.Decimal
}

// Service orchestrates the cart and checkout flow
type Service struct {
	orders         checkout.OrderRepository
	catalog        checkout.ProductCatalog
	settings       Settings
	eventPublisher shared.EventPublisher
}

// NewService creates a new checkout Service
func NewService(orders checkout.OrderRepository, catalog checkout.ProductCatalog, settings Settings) *Service {
	if settings.ZoneTable == nil {
		settings.ZoneTable = checkout.DefaultZoneTable()
	}
	return &Service{
		orders:   orders,
		catalog:  catalog,
		settings: settings,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GetOrCreateCart returns the caller's active draft cart, creating one on
// first use. Session callers are keyed by partner, guests by email.
func (s *Service) GetOrCreateCart(ctx context.Context, tenantID uuid.UUID, id identity.Identity) (*OrderResponse, error) {
	order, err := s.findCart(ctx, tenantID, id)
	if err == nil {
		resp := ToOrderResponse(order)
		return &resp, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	order, err = checkout.NewOrder(tenantID, newOrderNumber(), id.PartnerID, id.Email)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, order)
	resp := ToOrderResponse(order)
	return &resp, nil
}

// AddItem adds a product line to the caller's cart at the current
// catalog price
func (s *Service) AddItem(ctx context.Context, tenantID uuid.UUID, id identity.Identity, req AddItemRequest) (*OrderResponse, error) {
	order, err := s.ownedCart(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	snapshots, err := s.catalog.Snapshots(ctx, tenantID, []uuid.UUID{req.ProductID})
	if err != nil {
		return nil, err
	}
	snap, ok := snapshots[req.ProductID]
	if !ok || !snap.Active {
		return nil, shared.ErrProductNotFound
	}

	price := valueobject.NewMoneyTND(snap.ListPrice)
	if _, err := order.AddLine(req.ProductID, snap.Name, req.Quantity, price, s.settings.DefaultTaxRate); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// UpdateItem changes a line quantity; zero removes the line
func (s *Service) UpdateItem(ctx context.Context, tenantID uuid.UUID, id identity.Identity, req UpdateItemRequest) (*OrderResponse, error) {
	order, err := s.ownedCart(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Quantity.IsZero() {
		err = order.RemoveLine(req.LineID)
	} else {
		err = order.UpdateLineQuantity(req.LineID, req.Quantity)
	}
	if err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// Validate checks the caller's cart against the live catalog without
// mutating anything
func (s *Service) Validate(ctx context.Context, tenantID uuid.UUID, id identity.Identity) (*checkout.ValidationResult, error) {
	order, err := s.ownedCart(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	productIDs := make([]uuid.UUID, 0, len(order.Lines))
	for _, line := range order.ProductLines() {
		productIDs = append(productIDs, line.ProductID)
	}
	snapshots, err := s.catalog.Snapshots(ctx, tenantID, productIDs)
	if err != nil {
		return nil, err
	}
	result := checkout.ValidateCart(order, snapshots)
	return &result, nil
}

// Quote computes the delivery cost for the caller's cart
func (s *Service) Quote(ctx context.Context, tenantID uuid.UUID, id identity.Identity, req ShippingQuoteRequest) (*checkout.ShippingQuote, error) {
	order, err := s.ownedCart(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	quote, err := checkout.ComputeShipping(s.settings.ZoneTable, checkout.ShippingRequest{
		Zone:            req.Zone,
		CarrierFlatRate: req.CarrierFlatRate,
		Subtotal:        order.AmountUntaxedMoney(),
		FreeThreshold:   s.settings.FreeThreshold,
	})
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// Complete finalizes the caller's cart: the cart is validated, shipping
// is priced and pinned, and the order awaits payment in DRAFT
func (s *Service) Complete(ctx context.Context, tenantID uuid.UUID, id identity.Identity, req CompleteRequest) (*OrderResponse, error) {
	order, err := s.ownedCart(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	productIDs := make([]uuid.UUID, 0, len(order.Lines))
	for _, line := range order.ProductLines() {
		productIDs = append(productIDs, line.ProductID)
	}
	snapshots, err := s.catalog.Snapshots(ctx, tenantID, productIDs)
	if err != nil {
		return nil, err
	}
	if result := checkout.ValidateCart(order, snapshots); !result.Valid {
		return nil, shared.NewDomainError("CART_INVALID", "Le panier contient des erreurs, veuillez le vérifier")
	}

	quote, err := checkout.ComputeShipping(s.settings.ZoneTable, checkout.ShippingRequest{
		Zone:          req.Zone,
		Subtotal:      order.AmountUntaxedMoney(),
		FreeThreshold: s.settings.FreeThreshold,
	})
	if err != nil {
		return nil, err
	}

	if err := order.Complete(checkout.CompleteParams{
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
		CarrierID:         req.CarrierID,
		PaymentMethod:     req.PaymentMethod,
		CustomerNotes:     req.CustomerNotes,
	}, quote); err != nil {
		return nil, err
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, order)
	resp := ToOrderResponse(order)
	return &resp, nil
}

// Cancel cancels the caller's draft cart
func (s *Service) Cancel(ctx context.Context, tenantID uuid.UUID, id identity.Identity, reason string) error {
	order, err := s.ownedCart(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := order.Cancel(reason); err != nil {
		return err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return err
	}
	s.publishEvents(ctx, order)
	return nil
}

// GetOrder returns an order visible to the caller
func (s *Service) GetOrder(ctx context.Context, tenantID uuid.UUID, id identity.Identity, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orders.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := identity.ValidateOwnership(id, order.PartnerID, order.PartnerEmail); err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// ConfirmPaid confirms an order after a successful payment. Runs inside
// the webhook critical section; the caller holds the transaction.
func (s *Service) ConfirmPaid(ctx context.Context, tenantID, orderID uuid.UUID, paymentReference string) error {
	order, err := s.orders.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return err
	}
	if err := order.Confirm(paymentReference); err != nil {
		return err
	}
	if err := s.orders.SaveWithLock(ctx, order); err != nil {
		return err
	}
	s.publishEvents(ctx, order)
	return nil
}

func (s *Service) findCart(ctx context.Context, tenantID uuid.UUID, id identity.Identity) (*checkout.Order, error) {
	if id.IsAuthenticated() {
		return s.orders.FindActiveCart(ctx, tenantID, id.PartnerID)
	}
	if id.Email == "" {
		return nil, shared.ErrOwnershipViolation
	}
	return s.orders.FindActiveCartByEmail(ctx, tenantID, id.Email)
}

func (s *Service) ownedCart(ctx context.Context, tenantID uuid.UUID, id identity.Identity) (*checkout.Order, error) {
	order, err := s.findCart(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := identity.ValidateOwnership(id, order.PartnerID, order.PartnerEmail); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) publishEvents(ctx context.Context, order *checkout.Order) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, order.GetDomainEvents()...); err == nil {
		order.ClearDomainEvents()
	}
}

// newOrderNumber generates a web order reference like SO-20260829-4F2A1C
func newOrderNumber() string {
	var buf [3]byte
	_, _ = rand.Read(buf[:])
	return fmt.Sprintf("SO-%s-%s", time.Now().Format("20060102"), hex.EncodeToString(buf[:]))
}
