package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quelyos/backend/internal/application/stockops"
)

// Default ABC thresholds: A covers the top 80% of consumption value,
// B the next 15%.
var (
	defaultThresholdA = decimal.NewFromInt(80)
	defaultThresholdB = decimal.NewFromInt(95)
)

// StockOpsHandler exposes warehouse operations to the back office and
// the POS surface
type StockOpsHandler struct {
	BaseHandler
	service *stockops.Service
}

// NewStockOpsHandler creates a stock operations handler
func NewStockOpsHandler(service *stockops.Service) *StockOpsHandler {
	return &StockOpsHandler{service: service}
}

// CreateReservation places a draft hold on stock
func (h *StockOpsHandler) CreateReservation(c *gin.Context) {
	var req stockops.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Données invalides")
		return
	}

	resp, err := h.service.CreateReservation(c.Request.Context(), tenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ActivateReservation confirms a draft hold against available stock
func (h *StockOpsHandler) ActivateReservation(c *gin.Context) {
	reservationID, ok := parseIDParam(c)
	if !ok {
		return
	}

	resp, err := h.service.ActivateReservation(c.Request.Context(), tenantID(c), reservationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ReleaseReservation frees an active hold
func (h *StockOpsHandler) ReleaseReservation(c *gin.Context) {
	reservationID, ok := parseIDParam(c)
	if !ok {
		return
	}

	resp, err := h.service.ReleaseReservation(c.Request.Context(), tenantID(c), reservationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DeleteReservation removes a draft or released hold
func (h *StockOpsHandler) DeleteReservation(c *gin.Context) {
	reservationID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.service.DeleteReservation(c.Request.Context(), tenantID(c), reservationID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CreateScrap opens a scrap order
func (h *StockOpsHandler) CreateScrap(c *gin.Context) {
	var req stockops.CreateScrapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Données invalides")
		return
	}

	resp, err := h.service.CreateScrap(c.Request.Context(), tenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ValidateScrap executes a scrap order, moving stock to the scrap
// location
func (h *StockOpsHandler) ValidateScrap(c *gin.Context) {
	scrapID, ok := parseIDParam(c)
	if !ok {
		return
	}

	resp, err := h.service.ValidateScrap(c.Request.Context(), tenantID(c), scrapID, caller(c).UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DeleteScrap removes a scrap order still in draft
func (h *StockOpsHandler) DeleteScrap(c *gin.Context) {
	scrapID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.service.DeleteScrap(c.Request.Context(), tenantID(c), scrapID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ScheduleCount plans a cycle count over a scope of locations or
// products
func (h *StockOpsHandler) ScheduleCount(c *gin.Context) {
	var req stockops.ScheduleCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Données invalides")
		return
	}

	resp, err := h.service.ScheduleCount(c.Request.Context(), tenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// StartCount snapshots theoretical quantities and opens counting
func (h *StockOpsHandler) StartCount(c *gin.Context) {
	countID, ok := parseIDParam(c)
	if !ok {
		return
	}

	resp, err := h.service.StartCount(c.Request.Context(), tenantID(c), countID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RecordCount stores a counted quantity on one line
func (h *StockOpsHandler) RecordCount(c *gin.Context) {
	countID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req stockops.RecordCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Données invalides")
		return
	}

	resp, err := h.service.RecordCount(c.Request.Context(), tenantID(c), countID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ValidateCount closes a count and posts the adjustment movements
func (h *StockOpsHandler) ValidateCount(c *gin.Context) {
	countID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req stockops.ValidateCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Données invalides")
		return
	}

	resp, err := h.service.ValidateCount(c.Request.Context(), tenantID(c), countID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CancelCount abandons a planned or in-progress count
func (h *StockOpsHandler) CancelCount(c *gin.Context) {
	countID, ok := parseIDParam(c)
	if !ok {
		return
	}

	resp, err := h.service.CancelCount(c.Request.Context(), tenantID(c), countID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Transfer moves stock between two locations
func (h *StockOpsHandler) Transfer(c *gin.Context) {
	var req stockops.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Données invalides")
		return
	}

	movement, err := h.service.Transfer(c.Request.Context(), tenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, movement)
}

type reparentLocationRequest struct {
	NewParentID uuid.UUID `json:"new_parent_id" binding:"required"`
}

// ReparentLocation moves a location under a new parent
func (h *StockOpsHandler) ReparentLocation(c *gin.Context) {
	locationID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req reparentLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Données invalides")
		return
	}

	if err := h.service.ReparentLocation(c.Request.Context(), tenantID(c), locationID, req.NewParentID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// LockLocation freezes all movements through a location
func (h *StockOpsHandler) LockLocation(c *gin.Context) {
	locationID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req stockops.LockLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Données invalides")
		return
	}

	if err := h.service.LockLocation(c.Request.Context(), tenantID(c), locationID, caller(c).UserID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UnlockLocation lifts a freeze
func (h *StockOpsHandler) UnlockLocation(c *gin.Context) {
	locationID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.service.UnlockLocation(c.Request.Context(), tenantID(c), locationID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CreateRule installs a reordering rule for a product and warehouse
func (h *StockOpsHandler) CreateRule(c *gin.Context) {
	var req stockops.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Données invalides")
		return
	}

	rule, err := h.service.CreateRule(c.Request.Context(), tenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rule)
}

type updateRuleRangeRequest struct {
	MinQty decimal.Decimal `json:"min_qty"`
	MaxQty decimal.Decimal `json:"max_qty"`
}

// UpdateRuleRange changes the min/max band of a rule
func (h *StockOpsHandler) UpdateRuleRange(c *gin.Context) {
	ruleID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req updateRuleRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Données invalides")
		return
	}

	rule, err := h.service.UpdateRuleRange(c.Request.Context(), tenantID(c), ruleID, req.MinQty, req.MaxQty)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rule)
}

// ArchiveRule deactivates a rule
func (h *StockOpsHandler) ArchiveRule(c *gin.Context) {
	ruleID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.service.ArchiveRule(c.Request.Context(), tenantID(c), ruleID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ReplenishmentSuggestions lists the rules currently below their
// minimum with suggested order quantities
func (h *StockOpsHandler) ReplenishmentSuggestions(c *gin.Context) {
	suggestions, err := h.service.ReplenishmentSuggestions(c.Request.Context(), tenantID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, suggestions)
}

type abcAnalysisQuery struct {
	ThresholdA *decimal.Decimal `form:"threshold_a"`
	ThresholdB *decimal.Decimal `form:"threshold_b"`
}

// ABCAnalysis classifies a warehouse's products by consumption value
func (h *StockOpsHandler) ABCAnalysis(c *gin.Context) {
	warehouseID, ok := parseUUIDParam(c, "warehouse_id")
	if !ok {
		return
	}

	var query abcAnalysisQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Paramètres invalides")
		return
	}
	thresholdA, thresholdB := defaultThresholdA, defaultThresholdB
	if query.ThresholdA != nil {
		thresholdA = *query.ThresholdA
	}
	if query.ThresholdB != nil {
		thresholdB = *query.ThresholdB
	}

	result, err := h.service.ABCAnalysis(c.Request.Context(), tenantID(c), warehouseID, thresholdA, thresholdB)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

type productWarehouseQuery struct {
	ProductID   uuid.UUID `form:"product_id" binding:"required"`
	WarehouseID uuid.UUID `form:"warehouse_id" binding:"required"`
	HorizonDays int       `form:"horizon_days"`
}

// Turnover returns rotation statistics for a product in a warehouse
func (h *StockOpsHandler) Turnover(c *gin.Context) {
	var query productWarehouseQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Paramètres invalides")
		return
	}

	stats, err := h.service.Turnover(c.Request.Context(), tenantID(c), query.ProductID, query.WarehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// DemandForecast projects demand over a horizon from past consumption
func (h *StockOpsHandler) DemandForecast(c *gin.Context) {
	var query productWarehouseQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Paramètres invalides")
		return
	}
	if query.HorizonDays <= 0 {
		query.HorizonDays = 30
	}

	forecast, err := h.service.DemandForecast(c.Request.Context(), tenantID(c), query.ProductID, query.WarehouseID, query.HorizonDays)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, forecast)
}

type expiringLotsQuery struct {
	WithinDays int `form:"within_days" binding:"omitempty,min=1"`
}

// ExpiringLots lists lots that expire within the given window
func (h *StockOpsHandler) ExpiringLots(c *gin.Context) {
	var query expiringLotsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Paramètres invalides")
		return
	}
	if query.WithinDays == 0 {
		query.WithinDays = 30
	}

	lots, err := h.service.ExpiringLots(c.Request.Context(), tenantID(c), time.Duration(query.WithinDays)*24*time.Hour)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lots)
}

// FEFOPick returns the lot pick order for a product, earliest expiry
// first
func (h *StockOpsHandler) FEFOPick(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "product_id")
	if !ok {
		return
	}

	lots, err := h.service.FEFOPick(c.Request.Context(), tenantID(c), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lots)
}

// TraceLot returns the movement history of one lot
func (h *StockOpsHandler) TraceLot(c *gin.Context) {
	lotID, ok := parseIDParam(c)
	if !ok {
		return
	}

	trace, err := h.service.TraceLot(c.Request.Context(), tenantID(c), lotID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, trace)
}
