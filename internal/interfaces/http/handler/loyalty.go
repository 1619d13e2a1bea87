package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apployalty "github.com/quelyos/backend/internal/application/loyalty"
	"github.com/quelyos/backend/internal/interfaces/http/dto"
)

// LoyaltyHandler exposes the points program to the storefront and the
// back office
type LoyaltyHandler struct {
	BaseHandler
	service *apployalty.Service
}

// NewLoyaltyHandler creates a loyalty handler
func NewLoyaltyHandler(service *apployalty.Service) *LoyaltyHandler {
	return &LoyaltyHandler{service: service}
}

// memberID returns the partner the storefront caller acts for
func (h *LoyaltyHandler) memberID(c *gin.Context) (uuid.UUID, bool) {
	id := caller(c)
	if id.PartnerID == uuid.Nil {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("NOT_FOUND", "Aucun compte fidélité pour cet utilisateur"))
		return uuid.Nil, false
	}
	return id.PartnerID, true
}

// GetMember returns the caller's loyalty account
func (h *LoyaltyHandler) GetMember(c *gin.Context) {
	partnerID, ok := h.memberID(c)
	if !ok {
		return
	}

	member, err := h.service.GetMember(c.Request.Context(), tenantID(c), partnerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, member)
}

// History returns the caller's points ledger, newest first
func (h *LoyaltyHandler) History(c *gin.Context) {
	partnerID, ok := h.memberID(c)
	if !ok {
		return
	}
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	history, err := h.service.History(c.Request.Context(), tenantID(c), partnerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}

type redeemPointsRequest struct {
	Points  decimal.Decimal `json:"points" binding:"required"`
	OrderID *uuid.UUID      `json:"order_id,omitempty"`
}

// Redeem burns the caller's points for a discount. The partner always
// comes from the session, never from the body.
func (h *LoyaltyHandler) Redeem(c *gin.Context) {
	partnerID, ok := h.memberID(c)
	if !ok {
		return
	}

	var req redeemPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Données invalides")
		return
	}

	resp, err := h.service.Redeem(c.Request.Context(), tenantID(c), apployalty.RedeemRequest{
		PartnerID: partnerID,
		Points:    req.Points,
		OrderID:   req.OrderID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Enroll registers a partner in the active program
func (h *LoyaltyHandler) Enroll(c *gin.Context) {
	var req apployalty.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Données invalides")
		return
	}

	member, err := h.service.Enroll(c.Request.Context(), tenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, member)
}

// Adjust manually corrects a member balance
func (h *LoyaltyHandler) Adjust(c *gin.Context) {
	var req apployalty.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Données invalides")
		return
	}

	member, err := h.service.Adjust(c.Request.Context(), tenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, member)
}

// AdminGetMember returns any partner's loyalty account
func (h *LoyaltyHandler) AdminGetMember(c *gin.Context) {
	partnerID, ok := parseUUIDParam(c, "partner_id")
	if !ok {
		return
	}

	member, err := h.service.GetMember(c.Request.Context(), tenantID(c), partnerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, member)
}
