package handler

import (
	"github.com/gin-gonic/gin"

	appcheckout "github.com/quelyos/backend/internal/application/checkout"
)

// CheckoutHandler exposes the cart and order lifecycle
type CheckoutHandler struct {
	BaseHandler
	service *appcheckout.Service
}

// NewCheckoutHandler creates a checkout handler
func NewCheckoutHandler(service *appcheckout.Service) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// GetCart returns the caller's draft cart, creating one if needed
func (h *CheckoutHandler) GetCart(c *gin.Context) {
	cart, err := h.service.GetOrCreateCart(c.Request.Context(), tenantID(c), caller(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddItem adds a product line to the cart
func (h *CheckoutHandler) AddItem(c *gin.Context) {
	var req appcheckout.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Données invalides")
		return
	}

	cart, err := h.service.AddItem(c.Request.Context(), tenantID(c), caller(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// UpdateItem changes the quantity of a cart line. A zero quantity
// removes the line.
func (h *CheckoutHandler) UpdateItem(c *gin.Context) {
	var req appcheckout.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Données invalides")
		return
	}

	cart, err := h.service.UpdateItem(c.Request.Context(), tenantID(c), caller(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Validate checks stock and pricing for every cart line
func (h *CheckoutHandler) Validate(c *gin.Context) {
	result, err := h.service.Validate(c.Request.Context(), tenantID(c), caller(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Quote computes the delivery cost for a shipping zone
func (h *CheckoutHandler) Quote(c *gin.Context) {
	var req appcheckout.ShippingQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Données invalides")
		return
	}

	quote, err := h.service.Quote(c.Request.Context(), tenantID(c), caller(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// Complete finalizes the cart: addresses, delivery line, totals
func (h *CheckoutHandler) Complete(c *gin.Context) {
	var req appcheckout.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Données invalides")
		return
	}

	order, err := h.service.Complete(c.Request.Context(), tenantID(c), caller(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

// Cancel abandons the caller's current cart
func (h *CheckoutHandler) Cancel(c *gin.Context) {
	var req cancelOrderRequest
	// A missing body means no reason given, which is fine
	_ = c.ShouldBindJSON(&req)

	if err := h.service.Cancel(c.Request.Context(), tenantID(c), caller(c), req.Reason); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetOrder returns one order owned by the caller
func (h *CheckoutHandler) GetOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), tenantID(c), caller(c), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
