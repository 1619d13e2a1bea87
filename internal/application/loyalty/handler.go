package loyalty

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quelyos/backend/internal/domain/checkout"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/domain/shared/valueobject"
)

// OrderPaidHandler credits loyalty points when an order is paid. Guest
// orders and partners without a membership earn nothing.
type OrderPaidHandler struct {
	service *Service
	logger  *zap.Logger
}

// NewOrderPaidHandler creates the earn-on-payment event handler
func NewOrderPaidHandler(service *Service, logger *zap.Logger) *OrderPaidHandler {
	return &OrderPaidHandler{service: service, logger: logger}
}

// EventTypes returns the event types this handler subscribes to
func (h *OrderPaidHandler) EventTypes() []string {
	return []string{checkout.EventTypeOrderPaid}
}

// Handle credits the paying partner's loyalty account
func (h *OrderPaidHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	paid, ok := event.(*checkout.OrderPaidEvent)
	if !ok {
		return nil
	}
	if paid.PartnerID == uuid.Nil {
		return nil
	}

	total := valueobject.NewMoneyTND(paid.AmountTotal)
	if _, err := h.service.EarnForOrder(ctx, event.TenantID(), paid.PartnerID, paid.OrderID, total); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		h.logger.Warn("loyalty credit failed for paid order",
			zap.String("order_id", paid.OrderID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

var _ shared.EventHandler = (*OrderPaidHandler)(nil)
