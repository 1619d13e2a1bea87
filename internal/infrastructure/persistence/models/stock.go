package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
)

// ReservationModel is the persistence model for the Reservation aggregate.
type ReservationModel struct {
	TenantAggregateModel
	ProductID   uuid.UUID               `gorm:"type:uuid;not null;index:idx_reservations_product_location,priority:1"`
	LocationID  uuid.UUID               `gorm:"type:uuid;not null;index:idx_reservations_product_location,priority:2"`
	Quantity    decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Status      stock.ReservationStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Reason      string                  `gorm:"type:varchar(255)"`
	ExpiresAt   *time.Time              `gorm:"index"`
	ActivatedAt *time.Time
	ReleasedAt  *time.Time
}

// TableName returns the table name for GORM
func (ReservationModel) TableName() string {
	return "stock_reservations"
}

// ToDomain converts the persistence model to a domain Reservation.
func (m *ReservationModel) ToDomain() *stock.Reservation {
	r := &stock.Reservation{
		ProductID:   m.ProductID,
		LocationID:  m.LocationID,
		Quantity:    m.Quantity,
		Status:      m.Status,
		Reason:      m.Reason,
		ExpiresAt:   m.ExpiresAt,
		ActivatedAt: m.ActivatedAt,
		ReleasedAt:  m.ReleasedAt,
	}
	m.PopulateTenantAggregateRoot(&r.TenantAggregateRoot)
	return r
}

// FromDomain populates the persistence model from a domain Reservation.
func (m *ReservationModel) FromDomain(r *stock.Reservation) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.ProductID = r.ProductID
	m.LocationID = r.LocationID
	m.Quantity = r.Quantity
	m.Status = r.Status
	m.Reason = r.Reason
	m.ExpiresAt = r.ExpiresAt
	m.ActivatedAt = r.ActivatedAt
	m.ReleasedAt = r.ReleasedAt
}

// ReservationModelFromDomain creates a persistence model from a domain Reservation.
func ReservationModelFromDomain(r *stock.Reservation) *ReservationModel {
	m := &ReservationModel{}
	m.FromDomain(r)
	return m
}

// ScrapModel is the persistence model for the Scrap aggregate.
type ScrapModel struct {
	TenantAggregateModel
	ProductID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	Quantity       decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	SourceLocation uuid.UUID         `gorm:"type:uuid;not null;index"`
	ScrapLocation  uuid.UUID         `gorm:"type:uuid;not null"`
	Status         stock.ScrapStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Reason         string            `gorm:"type:varchar(255)"`
	ValidatedAt    *time.Time
	ValidatedByID  *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ScrapModel) TableName() string {
	return "stock_scraps"
}

// ToDomain converts the persistence model to a domain Scrap.
func (m *ScrapModel) ToDomain() *stock.Scrap {
	s := &stock.Scrap{
		ProductID:      m.ProductID,
		Quantity:       m.Quantity,
		SourceLocation: m.SourceLocation,
		ScrapLocation:  m.ScrapLocation,
		Status:         m.Status,
		Reason:         m.Reason,
		ValidatedAt:    m.ValidatedAt,
		ValidatedByID:  m.ValidatedByID,
	}
	m.PopulateTenantAggregateRoot(&s.TenantAggregateRoot)
	return s
}

// FromDomain populates the persistence model from a domain Scrap.
func (m *ScrapModel) FromDomain(s *stock.Scrap) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.ProductID = s.ProductID
	m.Quantity = s.Quantity
	m.SourceLocation = s.SourceLocation
	m.ScrapLocation = s.ScrapLocation
	m.Status = s.Status
	m.Reason = s.Reason
	m.ValidatedAt = s.ValidatedAt
	m.ValidatedByID = s.ValidatedByID
}

// ScrapModelFromDomain creates a persistence model from a domain Scrap.
func ScrapModelFromDomain(s *stock.Scrap) *ScrapModel {
	m := &ScrapModel{}
	m.FromDomain(s)
	return m
}

// CycleCountModel is the persistence model for the CycleCount aggregate.
// The count scope is stored as a JSON document.
type CycleCountModel struct {
	TenantAggregateModel
	Reference     string                 `gorm:"type:varchar(100);not null;uniqueIndex:idx_cycle_counts_tenant_ref,priority:2"`
	ScheduledDate time.Time              `gorm:"not null;index"`
	Scope         json.RawMessage        `gorm:"type:jsonb;not null"`
	Status        stock.CycleCountStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Lines         []CountLineModel       `gorm:"foreignKey:CycleCountID;references:ID"`
	StartedAt     *time.Time
	ValidatedAt   *time.Time
}

// TableName returns the table name for GORM
func (CycleCountModel) TableName() string {
	return "stock_cycle_counts"
}

// ToDomain converts the persistence model to a domain CycleCount.
func (m *CycleCountModel) ToDomain() (*stock.CycleCount, error) {
	var scope stock.CountScope
	if len(m.Scope) > 0 {
		if err := json.Unmarshal(m.Scope, &scope); err != nil {
			return nil, err
		}
	}
	cc := &stock.CycleCount{
		Reference:     m.Reference,
		ScheduledDate: m.ScheduledDate,
		Scope:         scope,
		Status:        m.Status,
		StartedAt:     m.StartedAt,
		ValidatedAt:   m.ValidatedAt,
		Lines:         make([]stock.CountLine, len(m.Lines)),
	}
	m.PopulateTenantAggregateRoot(&cc.TenantAggregateRoot)
	for i, line := range m.Lines {
		cc.Lines[i] = *line.ToDomain()
	}
	return cc, nil
}

// FromDomain populates the persistence model from a domain CycleCount.
func (m *CycleCountModel) FromDomain(cc *stock.CycleCount) error {
	scope, err := json.Marshal(cc.Scope)
	if err != nil {
		return err
	}
	m.FromDomainTenantAggregateRoot(cc.TenantAggregateRoot)
	m.Reference = cc.Reference
	m.ScheduledDate = cc.ScheduledDate
	m.Scope = scope
	m.Status = cc.Status
	m.StartedAt = cc.StartedAt
	m.ValidatedAt = cc.ValidatedAt
	m.Lines = make([]CountLineModel, len(cc.Lines))
	for i, line := range cc.Lines {
		m.Lines[i] = *CountLineModelFromDomain(&line)
	}
	return nil
}

// CycleCountModelFromDomain creates a persistence model from a domain CycleCount.
func CycleCountModelFromDomain(cc *stock.CycleCount) (*CycleCountModel, error) {
	m := &CycleCountModel{}
	if err := m.FromDomain(cc); err != nil {
		return nil, err
	}
	return m, nil
}

// CountLineModel is the persistence model for the CountLine entity.
type CountLineModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	CycleCountID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null"`
	LocationID     uuid.UUID       `gorm:"type:uuid;not null"`
	TheoreticalQty decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CountedQty     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Counted        bool            `gorm:"not null;default:false"`
	StandardPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CountLineModel) TableName() string {
	return "stock_count_lines"
}

// ToDomain converts the persistence model to a domain CountLine.
func (m *CountLineModel) ToDomain() *stock.CountLine {
	return &stock.CountLine{
		ID:             m.ID,
		CycleCountID:   m.CycleCountID,
		ProductID:      m.ProductID,
		LocationID:     m.LocationID,
		TheoreticalQty: m.TheoreticalQty,
		CountedQty:     m.CountedQty,
		Counted:        m.Counted,
		StandardPrice:  m.StandardPrice,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// CountLineModelFromDomain creates a persistence model from a domain CountLine.
func CountLineModelFromDomain(l *stock.CountLine) *CountLineModel {
	return &CountLineModel{
		ID:             l.ID,
		CycleCountID:   l.CycleCountID,
		ProductID:      l.ProductID,
		LocationID:     l.LocationID,
		TheoreticalQty: l.TheoreticalQty,
		CountedQty:     l.CountedQty,
		Counted:        l.Counted,
		StandardPrice:  l.StandardPrice,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

// ReorderingRuleModel is the persistence model for the ReorderingRule aggregate.
type ReorderingRuleModel struct {
	TenantAggregateModel
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_reordering_rules_product_wh,priority:1"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null;index:idx_reordering_rules_product_wh,priority:2"`
	MinQty      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MaxQty      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QtyMultiple decimal.Decimal `gorm:"type:decimal(18,4);not null;default:1"`
	Active      bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (ReorderingRuleModel) TableName() string {
	return "stock_reordering_rules"
}

// ToDomain converts the persistence model to a domain ReorderingRule.
func (m *ReorderingRuleModel) ToDomain() *stock.ReorderingRule {
	r := &stock.ReorderingRule{
		ProductID:   m.ProductID,
		WarehouseID: m.WarehouseID,
		MinQty:      m.MinQty,
		MaxQty:      m.MaxQty,
		QtyMultiple: m.QtyMultiple,
		Active:      m.Active,
	}
	m.PopulateTenantAggregateRoot(&r.TenantAggregateRoot)
	return r
}

// FromDomain populates the persistence model from a domain ReorderingRule.
func (m *ReorderingRuleModel) FromDomain(r *stock.ReorderingRule) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.ProductID = r.ProductID
	m.WarehouseID = r.WarehouseID
	m.MinQty = r.MinQty
	m.MaxQty = r.MaxQty
	m.QtyMultiple = r.QtyMultiple
	m.Active = r.Active
}

// ReorderingRuleModelFromDomain creates a persistence model from a domain ReorderingRule.
func ReorderingRuleModelFromDomain(r *stock.ReorderingRule) *ReorderingRuleModel {
	m := &ReorderingRuleModel{}
	m.FromDomain(r)
	return m
}

// QuantModel is the persistence model for on-hand stock per
// (product, location) pair. Quants are maintained by movement
// application and read under row locks for check-then-act sections.
type QuantModel struct {
	BaseModel
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_quants_tenant_product_location,priority:1"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_quants_tenant_product_location,priority:2"`
	LocationID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_quants_tenant_product_location,priority:3"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	StandardPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (QuantModel) TableName() string {
	return "stock_quants"
}
