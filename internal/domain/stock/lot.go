package stock

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ExpiryStatus is the derived freshness status of a lot
type ExpiryStatus string

const (
	ExpiryStatusOK      ExpiryStatus = "ok"
	ExpiryStatusAlert   ExpiryStatus = "alert"
	ExpiryStatusRemoval ExpiryStatus = "removal"
	ExpiryStatusExpired ExpiryStatus = "expired"
)

// Lot is a tracked production batch carrying expiry dates. Picking order
// between lots follows FEFO: first expired, first out.
type Lot struct {
	shared.BaseEntity
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name           string          `gorm:"type:varchar(100);not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ExpirationDate *time.Time
	UseDate        *time.Time
	RemovalDate    *time.Time
	AlertDate      *time.Time
}

// TableName returns the table name for GORM
func (Lot) TableName() string {
	return "stock_lots"
}

// NewLot creates a lot for a tracked product
func NewLot(tenantID, productID uuid.UUID, name string, quantity decimal.Decimal) (*Lot, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Produit requis")
	}
	if name == "" {
		return nil, shared.NewDomainError("TRACKING_REQUIRED", "Numéro de lot requis pour un produit tracé")
	}
	return &Lot{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		ProductID:  productID,
		Name:       name,
		Quantity:   quantity,
	}, nil
}

// StatusAt derives the expiry status at the given instant. Expiration
// dominates removal, which dominates alert.
func (l *Lot) StatusAt(now time.Time) ExpiryStatus {
	if l.ExpirationDate != nil && !now.Before(*l.ExpirationDate) {
		return ExpiryStatusExpired
	}
	if l.RemovalDate != nil && !now.Before(*l.RemovalDate) {
		return ExpiryStatusRemoval
	}
	if l.AlertDate != nil && !now.Before(*l.AlertDate) {
		return ExpiryStatusAlert
	}
	return ExpiryStatusOK
}

// SortFEFO orders lots for picking: earliest expiration first, lots
// without an expiration date last, ties broken by lot name for stability.
func SortFEFO(lots []Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i].ExpirationDate, lots[j].ExpirationDate
		switch {
		case a == nil && b == nil:
			return lots[i].Name < lots[j].Name
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return lots[i].Name < lots[j].Name
		default:
			return a.Before(*b)
		}
	})
}

// LotTrace enumerates the movements a lot participated in, split by
// direction relative to internal stock.
type LotTrace struct {
	Lot        Lot        `json:"lot"`
	Upstream   []Movement `json:"upstream"`   // receipts into stock
	Downstream []Movement `json:"downstream"` // issues out of stock
}

// BuildLotTrace splits a lot's movements into upstream receipts and
// downstream issues. isInternal tells whether a location belongs to the
// warehouse.
func BuildLotTrace(lot Lot, movements []Movement, isInternal func(uuid.UUID) bool) LotTrace {
	trace := LotTrace{
		Lot:        lot,
		Upstream:   make([]Movement, 0),
		Downstream: make([]Movement, 0),
	}
	for _, m := range movements {
		if m.LotID == nil || *m.LotID != lot.ID {
			continue
		}
		intoStock := isInternal(m.DestLocation) && !isInternal(m.SourceLocation)
		outOfStock := isInternal(m.SourceLocation) && !isInternal(m.DestLocation)
		switch {
		case intoStock:
			trace.Upstream = append(trace.Upstream, m)
		case outOfStock:
			trace.Downstream = append(trace.Downstream, m)
		}
	}
	return trace
}
