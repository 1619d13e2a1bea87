package stockops

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quelyos/backend/internal/domain/stock"
)

// CreateReservationRequest places a draft hold on stock
type CreateReservationRequest struct {
	ProductID  uuid.UUID       `json:"product_id" binding:"required"`
	LocationID uuid.UUID       `json:"location_id" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
	Reason     string          `json:"reason"`
	ExpiresAt  *time.Time      `json:"expires_at,omitempty"`
}

// ReservationResponse is the API view of a reservation
type ReservationResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	LocationID  uuid.UUID       `json:"location_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Status      string          `json:"status"`
	Reason      string          `json:"reason,omitempty"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	ActivatedAt *time.Time      `json:"activated_at,omitempty"`
	ReleasedAt  *time.Time      `json:"released_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToReservationResponse converts a reservation to its API view
func ToReservationResponse(r *stock.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:          r.ID,
		ProductID:   r.ProductID,
		LocationID:  r.LocationID,
		Quantity:    r.Quantity,
		Status:      r.Status.String(),
		Reason:      r.Reason,
		ExpiresAt:   r.ExpiresAt,
		ActivatedAt: r.ActivatedAt,
		ReleasedAt:  r.ReleasedAt,
		CreatedAt:   r.CreatedAt,
	}
}

// CreateScrapRequest declares goods to write off
type CreateScrapRequest struct {
	ProductID      uuid.UUID       `json:"product_id" binding:"required"`
	SourceLocation uuid.UUID       `json:"source_location" binding:"required"`
	ScrapLocation  uuid.UUID       `json:"scrap_location" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	Reason         string          `json:"reason"`
}

// ScrapResponse is the API view of a scrap order
type ScrapResponse struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      uuid.UUID       `json:"product_id"`
	SourceLocation uuid.UUID       `json:"source_location"`
	ScrapLocation  uuid.UUID       `json:"scrap_location"`
	Quantity       decimal.Decimal `json:"quantity"`
	Status         string          `json:"status"`
	Reason         string          `json:"reason,omitempty"`
	ValidatedAt    *time.Time      `json:"validated_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToScrapResponse converts a scrap order to its API view
func ToScrapResponse(s *stock.Scrap) ScrapResponse {
	return ScrapResponse{
		ID:             s.ID,
		ProductID:      s.ProductID,
		SourceLocation: s.SourceLocation,
		ScrapLocation:  s.ScrapLocation,
		Quantity:       s.Quantity,
		Status:         string(s.Status),
		Reason:         s.Reason,
		ValidatedAt:    s.ValidatedAt,
		CreatedAt:      s.CreatedAt,
	}
}

// ScheduleCountRequest creates and schedules a cycle count
type ScheduleCountRequest struct {
	Reference     string           `json:"reference" binding:"required"`
	ScheduledDate time.Time        `json:"scheduled_date" binding:"required"`
	Scope         stock.CountScope `json:"scope" binding:"required"`
}

// RecordCountRequest records a counted quantity on a line
type RecordCountRequest struct {
	LineID     uuid.UUID       `json:"line_id" binding:"required"`
	CountedQty decimal.Decimal `json:"counted_qty"`
}

// ValidateCountRequest closes a count against the adjustment location
type ValidateCountRequest struct {
	AdjustmentLocation uuid.UUID `json:"adjustment_location" binding:"required"`
}

// CountLineResponse is one line of a cycle count
type CountLineResponse struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      uuid.UUID       `json:"product_id"`
	LocationID     uuid.UUID       `json:"location_id"`
	TheoreticalQty decimal.Decimal `json:"theoretical_qty"`
	CountedQty     decimal.Decimal `json:"counted_qty"`
	Counted        bool            `json:"counted"`
	Difference     decimal.Decimal `json:"difference"`
}

// CycleCountResponse is the API view of a cycle count
type CycleCountResponse struct {
	ID                   uuid.UUID           `json:"id"`
	Reference            string              `json:"reference"`
	Status               string              `json:"status"`
	ScheduledDate        time.Time           `json:"scheduled_date"`
	Lines                []CountLineResponse `json:"lines"`
	TotalValueDifference decimal.Decimal     `json:"total_value_difference"`
	StartedAt            *time.Time          `json:"started_at,omitempty"`
	ValidatedAt          *time.Time          `json:"validated_at,omitempty"`
}

// ToCycleCountResponse converts a cycle count to its API view
func ToCycleCountResponse(cc *stock.CycleCount) CycleCountResponse {
	lines := make([]CountLineResponse, 0, len(cc.Lines))
	for i := range cc.Lines {
		l := &cc.Lines[i]
		lines = append(lines, CountLineResponse{
			ID:             l.ID,
			ProductID:      l.ProductID,
			LocationID:     l.LocationID,
			TheoreticalQty: l.TheoreticalQty,
			CountedQty:     l.CountedQty,
			Counted:        l.Counted,
			Difference:     l.Difference(),
		})
	}
	return CycleCountResponse{
		ID:                   cc.ID,
		Reference:            cc.Reference,
		Status:               cc.Status.String(),
		ScheduledDate:        cc.ScheduledDate,
		Lines:                lines,
		TotalValueDifference: cc.TotalValueDifference(),
		StartedAt:            cc.StartedAt,
		ValidatedAt:          cc.ValidatedAt,
	}
}

// TransferRequest moves stock between two internal locations
type TransferRequest struct {
	ProductID      uuid.UUID       `json:"product_id" binding:"required"`
	SourceLocation uuid.UUID       `json:"source_location" binding:"required"`
	DestLocation   uuid.UUID       `json:"dest_location" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	LotID          *uuid.UUID      `json:"lot_id,omitempty"`
	SourceRef      string          `json:"source_ref"`
}

// LockLocationRequest freezes a location
type LockLocationRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CreateRuleRequest creates a reordering rule
type CreateRuleRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	MinQty      decimal.Decimal `json:"min_qty"`
	MaxQty      decimal.Decimal `json:"max_qty"`
	QtyMultiple decimal.Decimal `json:"qty_multiple"`
}

// ReplenishmentSuggestion is one triggered reordering rule with its
// suggested order quantity
type ReplenishmentSuggestion struct {
	RuleID       uuid.UUID       `json:"rule_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	WarehouseID  uuid.UUID       `json:"warehouse_id"`
	OnHand       decimal.Decimal `json:"on_hand"`
	MinQty       decimal.Decimal `json:"min_qty"`
	MaxQty       decimal.Decimal `json:"max_qty"`
	SuggestedQty decimal.Decimal `json:"suggested_qty"`
}

// ExpiringLot is a lot nearing or past its expiry dates
type ExpiringLot struct {
	LotID          uuid.UUID       `json:"lot_id"`
	ProductID      uuid.UUID       `json:"product_id"`
	Name           string          `json:"name"`
	Quantity       decimal.Decimal `json:"quantity"`
	ExpirationDate *time.Time      `json:"expiration_date,omitempty"`
	Status         string          `json:"status"`
}
