package checkout

import (
	"testing"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraftOrder(t *testing.T) *Order {
	t.Helper()
	order, err := NewOrder(uuid.New(), "SO-0001", uuid.New(), "a@b.c")
	require.NoError(t, err)
	return order
}

func addLine(t *testing.T, o *Order, price float64, qty int64) *OrderLine {
	t.Helper()
	line, err := o.AddLine(uuid.New(), "Produit", decimal.NewFromInt(qty), valueobject.NewMoneyTNDFromFloat(price), decimal.Zero)
	require.NoError(t, err)
	return line
}

func TestNewOrder(t *testing.T) {
	order := newDraftOrder(t)

	assert.Equal(t, OrderStatusDraft, order.Status)
	assert.True(t, order.AmountTotal.IsZero())
	assert.Equal(t, valueobject.TND, order.Currency)

	events := order.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeOrderCreated, events[0].EventType())
}

func TestNewOrder_RequiresPartnerOrEmail(t *testing.T) {
	_, err := NewOrder(uuid.New(), "SO-0001", uuid.Nil, "")
	assert.Error(t, err)

	_, err = NewOrder(uuid.New(), "SO-0001", uuid.Nil, "guest@b.c")
	assert.NoError(t, err)
}

func TestOrder_AddLine(t *testing.T) {
	t.Run("merges lines for the same product", func(t *testing.T) {
		order := newDraftOrder(t)
		productID := uuid.New()
		_, err := order.AddLine(productID, "P", decimal.NewFromInt(1), valueobject.NewMoneyTNDFromFloat(10), decimal.Zero)
		require.NoError(t, err)
		_, err = order.AddLine(productID, "P", decimal.NewFromInt(2), valueobject.NewMoneyTNDFromFloat(10), decimal.Zero)
		require.NoError(t, err)

		require.Len(t, order.Lines, 1)
		assert.True(t, order.Lines[0].Quantity.Equal(decimal.NewFromInt(3)))
		assert.True(t, order.AmountTotal.Equal(decimal.NewFromInt(30)))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		order := newDraftOrder(t)
		_, err := order.AddLine(uuid.New(), "P", decimal.Zero, valueobject.NewMoneyTNDFromFloat(10), decimal.Zero)
		assert.Error(t, err)
	})
}

func TestOrder_Totals(t *testing.T) {
	order := newDraftOrder(t)
	_, err := order.AddLine(uuid.New(), "A", decimal.NewFromInt(2), valueobject.NewMoneyTNDFromFloat(50), decimal.NewFromFloat(0.19))
	require.NoError(t, err)

	assert.True(t, order.AmountUntaxed.Equal(decimal.NewFromInt(100)))
	assert.True(t, order.AmountTax.Equal(decimal.NewFromInt(19)))
	assert.True(t, order.AmountTotal.Equal(decimal.NewFromInt(119)))
}

func TestOrder_Complete(t *testing.T) {
	quote := ShippingQuote{Cost: valueobject.NewMoneyTNDFromFloat(9), Zone: ZoneNord}
	params := CompleteParams{
		ShippingAddressID: uuid.New(),
		BillingAddressID:  uuid.New(),
		PaymentMethod:     "flouci",
	}

	t.Run("appends a delivery line and pins fields", func(t *testing.T) {
		order := newDraftOrder(t)
		addLine(t, order, 120, 1)

		require.NoError(t, order.Complete(params, quote))

		assert.Equal(t, OrderStatusDraft, order.Status)
		assert.Equal(t, 1, order.DeliveryLineCount())
		assert.Equal(t, ZoneNord, order.ShippingZone)
		assert.True(t, order.ShippingCost.Equal(decimal.NewFromInt(9)))
		assert.True(t, order.AmountTotal.Equal(decimal.NewFromInt(129)))
	})

	t.Run("repeated complete keeps a single delivery line", func(t *testing.T) {
		order := newDraftOrder(t)
		addLine(t, order, 120, 1)

		require.NoError(t, order.Complete(params, quote))
		require.NoError(t, order.Complete(params, quote))

		assert.Equal(t, 1, order.DeliveryLineCount())
		assert.True(t, order.AmountTotal.Equal(decimal.NewFromInt(129)))
	})

	t.Run("free shipping adds no delivery line", func(t *testing.T) {
		order := newDraftOrder(t)
		addLine(t, order, 200, 1)

		freeQuote := ShippingQuote{Cost: valueobject.ZeroTND(), Zone: ZoneSud, IsFree: true}
		require.NoError(t, order.Complete(params, freeQuote))

		assert.Equal(t, 0, order.DeliveryLineCount())
		assert.True(t, order.AmountTotal.Equal(decimal.NewFromInt(200)))
	})

	t.Run("empty cart cannot complete", func(t *testing.T) {
		order := newDraftOrder(t)
		err := order.Complete(params, quote)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EMPTY_CART", domainErr.Code)
	})
}

func TestOrder_Confirm(t *testing.T) {
	t.Run("draft confirms with payment reference in notes", func(t *testing.T) {
		order := newDraftOrder(t)
		addLine(t, order, 120, 1)

		require.NoError(t, order.Confirm("PAY-1"))

		assert.Equal(t, OrderStatusConfirmed, order.Status)
		assert.Contains(t, order.InternalNotes, "PAY-1")
		assert.NotNil(t, order.ConfirmedAt)
	})

	t.Run("confirm refuses non-draft", func(t *testing.T) {
		order := newDraftOrder(t)
		addLine(t, order, 120, 1)
		require.NoError(t, order.Confirm("PAY-1"))

		err := order.Confirm("PAY-2")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})
}

func TestOrder_Lifecycle(t *testing.T) {
	order := newDraftOrder(t)
	addLine(t, order, 120, 1)

	require.NoError(t, order.Confirm("PAY-1"))
	require.NoError(t, order.MarkPaid())

	assert.Equal(t, OrderStatusPaid, order.Status)
	assert.Error(t, order.Cancel("trop tard"))
}

func TestOrder_Cancel(t *testing.T) {
	order := newDraftOrder(t)
	addLine(t, order, 120, 1)

	require.NoError(t, order.Cancel("changement d'avis"))
	assert.Equal(t, OrderStatusCancelled, order.Status)
	assert.Contains(t, order.InternalNotes, "changement d'avis")
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusDraft, OrderStatusConfirmed, true},
		{OrderStatusDraft, OrderStatusCancelled, true},
		{OrderStatusDraft, OrderStatusPaid, false},
		{OrderStatusConfirmed, OrderStatusPaid, true},
		{OrderStatusConfirmed, OrderStatusCancelled, false},
		{OrderStatusPaid, OrderStatusConfirmed, false},
		{OrderStatusCancelled, OrderStatusDraft, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

// Invariant: sum of line totals plus shipping equals the grand total.
func TestOrder_TotalInvariant(t *testing.T) {
	order := newDraftOrder(t)
	addLine(t, order, 33.333, 3)
	addLine(t, order, 12.5, 2)

	require.NoError(t, order.Complete(CompleteParams{
		ShippingAddressID: uuid.New(),
		BillingAddressID:  uuid.New(),
	}, ShippingQuote{Cost: valueobject.NewMoneyTNDFromFloat(7), Zone: ZoneGrandTunis}))

	sum := decimal.Zero
	for _, l := range order.ProductLines() {
		sum = sum.Add(l.Subtotal()).Add(l.TaxAmount())
	}
	sum = sum.Add(order.ShippingCost)
	assert.True(t, sum.Equal(order.AmountTotal))
}
