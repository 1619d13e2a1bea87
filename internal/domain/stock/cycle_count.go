package stock

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CycleCountStatus represents the status of a cycle count
type CycleCountStatus string

const (
	CycleCountStatusDraft      CycleCountStatus = "DRAFT"
	CycleCountStatusScheduled  CycleCountStatus = "SCHEDULED"
	CycleCountStatusInProgress CycleCountStatus = "IN_PROGRESS"
	CycleCountStatusDone       CycleCountStatus = "DONE"
	CycleCountStatusCancelled  CycleCountStatus = "CANCELLED"
)

// String returns the string representation of CycleCountStatus
func (s CycleCountStatus) String() string {
	return string(s)
}

// IsTerminal returns true for done and cancelled counts
func (s CycleCountStatus) IsTerminal() bool {
	return s == CycleCountStatusDone || s == CycleCountStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target
func (s CycleCountStatus) CanTransitionTo(target CycleCountStatus) bool {
	switch s {
	case CycleCountStatusDraft:
		return target == CycleCountStatusScheduled || target == CycleCountStatusCancelled
	case CycleCountStatusScheduled:
		return target == CycleCountStatusInProgress || target == CycleCountStatusCancelled
	case CycleCountStatusInProgress:
		return target == CycleCountStatusDone || target == CycleCountStatusCancelled
	case CycleCountStatusDone, CycleCountStatusCancelled:
		return false
	}
	return false
}

// CountLine is a line of a cycle count. Theoretical quantity and standard
// price are snapshotted when lines are generated.
type CountLine struct {
	ID             uuid.UUID
	CycleCountID   uuid.UUID
	ProductID      uuid.UUID
	LocationID     uuid.UUID
	TheoreticalQty decimal.Decimal
	CountedQty     decimal.Decimal
	Counted        bool
	StandardPrice  decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Difference returns counted minus theoretical, zero until counted
func (l *CountLine) Difference() decimal.Decimal {
	if !l.Counted {
		return decimal.Zero
	}
	return l.CountedQty.Sub(l.TheoreticalQty)
}

// ValueDifference returns the difference valued at the snapshot price
func (l *CountLine) ValueDifference() decimal.Decimal {
	return l.Difference().Mul(l.StandardPrice)
}

// CountScope bounds which quants a cycle count covers
type CountScope struct {
	LocationIDs []uuid.UUID `json:"location_ids"`
	CategoryIDs []uuid.UUID `json:"category_ids,omitempty"`
}

// QuantSnapshot is a theoretical stock line captured when a count is
// scheduled
type QuantSnapshot struct {
	ProductID     uuid.UUID
	LocationID    uuid.UUID
	Quantity      decimal.Decimal
	StandardPrice decimal.Decimal
}

// CycleCount is a partial inventory recount scoped to locations and
// optionally product categories.
type CycleCount struct {
	shared.TenantAggregateRoot
	Reference     string
	ScheduledDate time.Time
	Scope         CountScope
	Status        CycleCountStatus
	Lines         []CountLine
	StartedAt     *time.Time
	ValidatedAt   *time.Time
}

// NewCycleCount creates a draft cycle count
func NewCycleCount(tenantID uuid.UUID, reference string, scheduledDate time.Time, scope CountScope) (*CycleCount, error) {
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Référence requise")
	}
	if len(scope.LocationIDs) == 0 {
		return nil, shared.NewDomainError("INVALID_SCOPE", "Au moins un emplacement est requis")
	}
	return &CycleCount{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Reference:           reference,
		ScheduledDate:       scheduledDate,
		Scope:               scope,
		Status:              CycleCountStatusDraft,
		Lines:               make([]CountLine, 0),
	}, nil
}

// Schedule snapshots theoretical quantities and prices and transitions
// the count from draft to scheduled. The snapshot is immutable afterward.
func (cc *CycleCount) Schedule(snapshots []QuantSnapshot) error {
	if !cc.Status.CanTransitionTo(CycleCountStatusScheduled) {
		return cc.transitionError(CycleCountStatusScheduled)
	}
	if len(snapshots) == 0 {
		return shared.NewDomainError("NO_LINES", "Aucun stock à compter dans ce périmètre")
	}

	now := time.Now()
	cc.Lines = make([]CountLine, 0, len(snapshots))
	for _, snap := range snapshots {
		cc.Lines = append(cc.Lines, CountLine{
			ID:             uuid.New(),
			CycleCountID:   cc.ID,
			ProductID:      snap.ProductID,
			LocationID:     snap.LocationID,
			TheoreticalQty: snap.Quantity,
			StandardPrice:  snap.StandardPrice,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	cc.Status = CycleCountStatusScheduled
	cc.Touch()
	cc.IncrementVersion()
	cc.AddDomainEvent(NewCycleCountScheduledEvent(cc))
	return nil
}

// Start transitions a scheduled count to in progress
func (cc *CycleCount) Start() error {
	if !cc.Status.CanTransitionTo(CycleCountStatusInProgress) {
		return cc.transitionError(CycleCountStatusInProgress)
	}
	now := time.Now()
	cc.Status = CycleCountStatusInProgress
	cc.StartedAt = &now
	cc.Touch()
	cc.IncrementVersion()
	return nil
}

// RecordCount records a counted quantity. Allowed only while in progress.
func (cc *CycleCount) RecordCount(lineID uuid.UUID, countedQty decimal.Decimal) error {
	if cc.Status != CycleCountStatusInProgress {
		return shared.NewDomainError("INVALID_STATE", "Les quantités ne sont saisissables qu'en cours de comptage")
	}
	if countedQty.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "La quantité comptée ne peut pas être négative")
	}
	for i := range cc.Lines {
		if cc.Lines[i].ID == lineID {
			cc.Lines[i].CountedQty = countedQty
			cc.Lines[i].Counted = true
			cc.Lines[i].UpdatedAt = time.Now()
			cc.Touch()
			cc.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Ligne de comptage introuvable")
}

// Validate transitions the count to done and returns one inventory
// adjustment movement per line whose counted quantity differs from the
// theoretical snapshot. The caller persists count and movements in one
// transaction. adjustmentLocation is the counterpart virtual location.
func (cc *CycleCount) Validate(adjustmentLocation uuid.UUID) ([]*Movement, error) {
	if !cc.Status.CanTransitionTo(CycleCountStatusDone) {
		return nil, cc.transitionError(CycleCountStatusDone)
	}
	for _, line := range cc.Lines {
		if !line.Counted {
			return nil, shared.NewDomainError("INCOMPLETE_COUNT", "Toutes les lignes doivent être comptées avant validation")
		}
	}

	movements := make([]*Movement, 0)
	for _, line := range cc.Lines {
		diff := line.Difference()
		if diff.IsZero() {
			continue
		}
		if diff.IsPositive() {
			// Found more than expected: adjust in
			movements = append(movements, NewMovement(cc.TenantID, line.ProductID, adjustmentLocation, line.LocationID, diff, MovementKindAdjustment, cc.Reference))
		} else {
			movements = append(movements, NewMovement(cc.TenantID, line.ProductID, line.LocationID, adjustmentLocation, diff.Abs(), MovementKindAdjustment, cc.Reference))
		}
	}

	now := time.Now()
	cc.Status = CycleCountStatusDone
	cc.ValidatedAt = &now
	cc.Touch()
	cc.IncrementVersion()
	cc.AddDomainEvent(NewCycleCountValidatedEvent(cc))
	return movements, nil
}

// Cancel cancels a non-terminal count
func (cc *CycleCount) Cancel() error {
	if !cc.Status.CanTransitionTo(CycleCountStatusCancelled) {
		return cc.transitionError(CycleCountStatusCancelled)
	}
	cc.Status = CycleCountStatusCancelled
	cc.Touch()
	cc.IncrementVersion()
	return nil
}

// TotalValueDifference returns the running sum of line value differences
func (cc *CycleCount) TotalValueDifference() decimal.Decimal {
	total := decimal.Zero
	for _, line := range cc.Lines {
		total = total.Add(line.ValueDifference())
	}
	return total
}

// CoversLocation reports whether the count's scope includes the location
func (cc *CycleCount) CoversLocation(locationID uuid.UUID) bool {
	for _, id := range cc.Scope.LocationIDs {
		if id == locationID {
			return true
		}
	}
	return false
}

func (cc *CycleCount) transitionError(target CycleCountStatus) error {
	return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Transition impossible de %s vers %s", cc.Status, target))
}
