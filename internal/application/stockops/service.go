package stockops

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/domain/stock"
)

// TransactionalRepositories exposes the repositories participating in a
// stock transaction
type TransactionalRepositories interface {
	Reservations() stock.ReservationRepository
	Scraps() stock.ScrapRepository
	CycleCounts() stock.CycleCountRepository
	Movements() stock.MovementRepository
	OnHand() stock.OnHandProvider
}

// TransactionScope runs a function inside a database transaction. Every
// check-then-act stock section runs through it so on-hand reads and the
// writes they guard commit atomically.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// QuantReader reads theoretical stock lines for count scheduling and
// warehouse valuation
type QuantReader interface {
	// SnapshotForScope returns the quants covered by a count scope
	SnapshotForScope(ctx context.Context, tenantID uuid.UUID, scope stock.CountScope) ([]stock.QuantSnapshot, error)

	// ValuationByWarehouse returns per-product quantity and standard price
	// across a warehouse
	ValuationByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID) ([]stock.ABCInput, error)
}

// SalesReader reads aggregate sales figures for turnover and forecasting
type SalesReader interface {
	QtySoldSince(ctx context.Context, tenantID, productID uuid.UUID, since time.Time) (decimal.Decimal, error)
	DailyHistory(ctx context.Context, tenantID, productID uuid.UUID, from, to time.Time) ([]stock.DailySale, error)
}

// forecastHistoryDays is how far back ProjectDemand looks
const forecastHistoryDays = 90

// Service orchestrates warehouse operations: reservations, scraps, cycle
// counts, transfers, reordering and the stock analytics.
type Service struct {
	reservations   stock.ReservationRepository
	scraps         stock.ScrapRepository
	cycleCounts    stock.CycleCountRepository
	locations      stock.LocationRepository
	locationLocks  stock.LocationLockRepository
	rules          stock.ReorderingRuleRepository
	lots           stock.LotRepository
	movements      stock.MovementRepository
	onHand         stock.OnHandProvider
	quants         QuantReader
	sales          SalesReader
	scope          TransactionScope
	eventPublisher shared.EventPublisher
}

// NewService creates the stock operations service
func NewService(
	reservations stock.ReservationRepository,
	scraps stock.ScrapRepository,
	cycleCounts stock.CycleCountRepository,
	locations stock.LocationRepository,
	locationLocks stock.LocationLockRepository,
	rules stock.ReorderingRuleRepository,
	lots stock.LotRepository,
	movements stock.MovementRepository,
	onHand stock.OnHandProvider,
	quants QuantReader,
	sales SalesReader,
	scope TransactionScope,
) *Service {
	return &Service{
		reservations:  reservations,
		scraps:        scraps,
		cycleCounts:   cycleCounts,
		locations:     locations,
		locationLocks: locationLocks,
		rules:         rules,
		lots:          lots,
		movements:     movements,
		onHand:        onHand,
		quants:        quants,
		sales:         sales,
		scope:         scope,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateReservation places a draft hold on stock
func (s *Service) CreateReservation(ctx context.Context, tenantID uuid.UUID, req CreateReservationRequest) (*ReservationResponse, error) {
	r, err := stock.NewReservation(tenantID, req.ProductID, req.LocationID, req.Quantity, req.Reason, req.ExpiresAt)
	if err != nil {
		return nil, err
	}
	if err := s.reservations.Save(ctx, r); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, r)
	resp := ToReservationResponse(r)
	return &resp, nil
}

// ActivateReservation activates a draft hold. The availability check runs
// under row-level locks so two concurrent activations cannot both pass on
// the same stock.
func (s *Service) ActivateReservation(ctx context.Context, tenantID, reservationID uuid.UUID) (*ReservationResponse, error) {
	var reservation *stock.Reservation
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		r, err := repos.Reservations().FindByIDForUpdate(ctx, tenantID, reservationID)
		if err != nil {
			return err
		}
		onHand, err := repos.OnHand().OnHandForUpdate(ctx, tenantID, r.ProductID, r.LocationID)
		if err != nil {
			return err
		}
		activeReserved, err := repos.Reservations().SumActive(ctx, tenantID, r.ProductID, r.LocationID)
		if err != nil {
			return err
		}
		if err := r.Activate(onHand, activeReserved); err != nil {
			return err
		}
		if err := repos.Reservations().Save(ctx, r); err != nil {
			return err
		}
		reservation = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, reservation)
	resp := ToReservationResponse(reservation)
	return &resp, nil
}

// ReleaseReservation voluntarily ends a hold
func (s *Service) ReleaseReservation(ctx context.Context, tenantID, reservationID uuid.UUID) (*ReservationResponse, error) {
	r, err := s.reservations.FindByID(ctx, tenantID, reservationID)
	if err != nil {
		return nil, err
	}
	if err := r.Release(); err != nil {
		return nil, err
	}
	if err := s.reservations.Save(ctx, r); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, r)
	resp := ToReservationResponse(r)
	return &resp, nil
}

// DeleteReservation removes a terminal reservation
func (s *Service) DeleteReservation(ctx context.Context, tenantID, reservationID uuid.UUID) error {
	r, err := s.reservations.FindByID(ctx, tenantID, reservationID)
	if err != nil {
		return err
	}
	if !r.CanDelete() {
		return shared.NewDomainError("INVALID_STATE", "Seule une réservation terminée peut être supprimée")
	}
	return s.reservations.Delete(ctx, tenantID, reservationID)
}

// ExpireReservations ends active holds past their deadline. The scheduler
// calls this periodically; it returns how many holds were expired.
func (s *Service) ExpireReservations(ctx context.Context, now time.Time, limit int) (int, error) {
	pastDue, err := s.reservations.FindActivePastDue(ctx, now, limit)
	if err != nil {
		return 0, err
	}
	expired := 0
	for i := range pastDue {
		r := &pastDue[i]
		if err := r.Expire(now); err != nil {
			continue
		}
		if err := s.reservations.Save(ctx, r); err != nil {
			return expired, err
		}
		s.publishEvents(ctx, r)
		expired++
	}
	return expired, nil
}

// CreateScrap declares goods to write off
func (s *Service) CreateScrap(ctx context.Context, tenantID uuid.UUID, req CreateScrapRequest) (*ScrapResponse, error) {
	scrap, err := stock.NewScrap(tenantID, req.ProductID, req.SourceLocation, req.ScrapLocation, req.Quantity, req.Reason)
	if err != nil {
		return nil, err
	}
	if err := s.scraps.Save(ctx, scrap); err != nil {
		return nil, err
	}
	resp := ToScrapResponse(scrap)
	return &resp, nil
}

// ValidateScrap executes a draft scrap: the stock check, the status
// transition and the movement commit atomically
func (s *Service) ValidateScrap(ctx context.Context, tenantID, scrapID, validatedBy uuid.UUID) (*ScrapResponse, error) {
	var scrap *stock.Scrap
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sc, err := repos.Scraps().FindByID(ctx, tenantID, scrapID)
		if err != nil {
			return err
		}
		if err := s.ensureUnlocked(ctx, tenantID, sc.SourceLocation, sc.ScrapLocation); err != nil {
			return err
		}
		onHand, err := repos.OnHand().OnHandForUpdate(ctx, tenantID, sc.ProductID, sc.SourceLocation)
		if err != nil {
			return err
		}
		movement, err := sc.Validate(validatedBy, onHand)
		if err != nil {
			return err
		}
		if err := repos.Scraps().Save(ctx, sc); err != nil {
			return err
		}
		if err := repos.Movements().Append(ctx, movement); err != nil {
			return err
		}
		scrap = sc
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, scrap)
	resp := ToScrapResponse(scrap)
	return &resp, nil
}

// DeleteScrap removes a draft scrap order
func (s *Service) DeleteScrap(ctx context.Context, tenantID, scrapID uuid.UUID) error {
	sc, err := s.scraps.FindByID(ctx, tenantID, scrapID)
	if err != nil {
		return err
	}
	if !sc.CanDelete() {
		return shared.NewDomainError("INVALID_STATE", "Seul un rebut en brouillon peut être supprimé")
	}
	return s.scraps.Delete(ctx, tenantID, scrapID)
}

// ScheduleCount creates a cycle count and snapshots the theoretical
// quantities of its scope
func (s *Service) ScheduleCount(ctx context.Context, tenantID uuid.UUID, req ScheduleCountRequest) (*CycleCountResponse, error) {
	cc, err := stock.NewCycleCount(tenantID, req.Reference, req.ScheduledDate, req.Scope)
	if err != nil {
		return nil, err
	}
	snapshots, err := s.quants.SnapshotForScope(ctx, tenantID, req.Scope)
	if err != nil {
		return nil, err
	}
	if err := cc.Schedule(snapshots); err != nil {
		return nil, err
	}
	if err := s.cycleCounts.Save(ctx, cc); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, cc)
	resp := ToCycleCountResponse(cc)
	return &resp, nil
}

// StartCount begins counting
func (s *Service) StartCount(ctx context.Context, tenantID, countID uuid.UUID) (*CycleCountResponse, error) {
	return s.mutateCount(ctx, tenantID, countID, func(cc *stock.CycleCount) error {
		return cc.Start()
	})
}

// RecordCount records a counted quantity on one line
func (s *Service) RecordCount(ctx context.Context, tenantID, countID uuid.UUID, req RecordCountRequest) (*CycleCountResponse, error) {
	return s.mutateCount(ctx, tenantID, countID, func(cc *stock.CycleCount) error {
		return cc.RecordCount(req.LineID, req.CountedQty)
	})
}

// CancelCount cancels a non-terminal count
func (s *Service) CancelCount(ctx context.Context, tenantID, countID uuid.UUID) (*CycleCountResponse, error) {
	return s.mutateCount(ctx, tenantID, countID, func(cc *stock.CycleCount) error {
		return cc.Cancel()
	})
}

func (s *Service) mutateCount(ctx context.Context, tenantID, countID uuid.UUID, mutate func(*stock.CycleCount) error) (*CycleCountResponse, error) {
	cc, err := s.cycleCounts.FindByID(ctx, tenantID, countID)
	if err != nil {
		return nil, err
	}
	if err := mutate(cc); err != nil {
		return nil, err
	}
	if err := s.cycleCounts.Save(ctx, cc); err != nil {
		return nil, err
	}
	resp := ToCycleCountResponse(cc)
	return &resp, nil
}

// ValidateCount closes a count and issues the adjustment movements in one
// transaction
func (s *Service) ValidateCount(ctx context.Context, tenantID, countID uuid.UUID, req ValidateCountRequest) (*CycleCountResponse, error) {
	var count *stock.CycleCount
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		cc, err := repos.CycleCounts().FindByID(ctx, tenantID, countID)
		if err != nil {
			return err
		}
		if err := s.ensureUnlocked(ctx, tenantID, cc.Scope.LocationIDs...); err != nil {
			return err
		}
		movements, err := cc.Validate(req.AdjustmentLocation)
		if err != nil {
			return err
		}
		if err := repos.CycleCounts().Save(ctx, cc); err != nil {
			return err
		}
		if len(movements) > 0 {
			if err := repos.Movements().Append(ctx, movements...); err != nil {
				return err
			}
		}
		count = cc
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, count)
	resp := ToCycleCountResponse(count)
	return &resp, nil
}

// Transfer moves stock between two locations. The on-hand check and the
// movement commit atomically; locked locations reject the transfer.
func (s *Service) Transfer(ctx context.Context, tenantID uuid.UUID, req TransferRequest) (*stock.Movement, error) {
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "La quantité doit être positive")
	}
	if req.SourceLocation == req.DestLocation {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Les emplacements source et destination doivent différer")
	}

	var movement *stock.Movement
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := s.ensureUnlocked(ctx, tenantID, req.SourceLocation, req.DestLocation); err != nil {
			return err
		}
		onHand, err := repos.OnHand().OnHandForUpdate(ctx, tenantID, req.ProductID, req.SourceLocation)
		if err != nil {
			return err
		}
		if onHand.LessThan(req.Quantity) {
			return shared.ErrInsufficientStock
		}
		m := stock.NewMovement(tenantID, req.ProductID, req.SourceLocation, req.DestLocation, req.Quantity, stock.MovementKindInternal, req.SourceRef)
		if req.LotID != nil {
			m = m.WithLot(*req.LotID)
		}
		if err := repos.Movements().Append(ctx, m); err != nil {
			return err
		}
		movement = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// ReparentLocation moves a location under a new parent, refusing cycles
func (s *Service) ReparentLocation(ctx context.Context, tenantID, locationID, newParentID uuid.UUID) error {
	location, err := s.locations.FindByID(ctx, tenantID, locationID)
	if err != nil {
		return err
	}
	ancestors, err := s.locations.Ancestors(ctx, tenantID, newParentID)
	if err != nil {
		return err
	}
	if err := location.ValidateReparent(newParentID, ancestors); err != nil {
		return err
	}
	location.ParentID = &newParentID
	return s.locations.Save(ctx, location)
}

// LockLocation freezes a location so no movement can touch it
func (s *Service) LockLocation(ctx context.Context, tenantID, locationID, lockedBy uuid.UUID, req LockLocationRequest) error {
	if _, err := s.locations.FindByID(ctx, tenantID, locationID); err != nil {
		return err
	}
	if _, err := s.locationLocks.FindByLocation(ctx, tenantID, locationID); err == nil {
		return shared.ErrAlreadyExists
	} else if !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	lock, err := stock.NewLocationLock(tenantID, locationID, lockedBy, req.Reason)
	if err != nil {
		return err
	}
	return s.locationLocks.Save(ctx, lock)
}

// UnlockLocation removes the freeze on a location
func (s *Service) UnlockLocation(ctx context.Context, tenantID, locationID uuid.UUID) error {
	return s.locationLocks.DeleteByLocation(ctx, tenantID, locationID)
}

func (s *Service) ensureUnlocked(ctx context.Context, tenantID uuid.UUID, locationIDs ...uuid.UUID) error {
	locked, err := s.locationLocks.AnyLocked(ctx, tenantID, locationIDs)
	if err != nil {
		return err
	}
	if locked {
		return shared.ErrLocationLocked
	}
	return nil
}

// CreateRule creates a reordering rule, enforcing the single active rule
// per (product, warehouse)
func (s *Service) CreateRule(ctx context.Context, tenantID uuid.UUID, req CreateRuleRequest) (*stock.ReorderingRule, error) {
	if _, err := s.rules.FindActiveByProductWarehouse(ctx, tenantID, req.ProductID, req.WarehouseID); err == nil {
		return nil, shared.NewDomainError("DUPLICATE_RULE", "Une règle active existe déjà pour ce produit et cet entrepôt")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	rule, err := stock.NewReorderingRule(tenantID, req.ProductID, req.WarehouseID, req.MinQty, req.MaxQty, req.QtyMultiple)
	if err != nil {
		return nil, err
	}
	if err := s.rules.Save(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// UpdateRuleRange updates the min/max bounds of a rule
func (s *Service) UpdateRuleRange(ctx context.Context, tenantID, ruleID uuid.UUID, minQty, maxQty decimal.Decimal) (*stock.ReorderingRule, error) {
	rule, err := s.rules.FindByID(ctx, tenantID, ruleID)
	if err != nil {
		return nil, err
	}
	if err := rule.UpdateRange(minQty, maxQty); err != nil {
		return nil, err
	}
	if err := s.rules.Save(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// ArchiveRule deactivates a rule
func (s *Service) ArchiveRule(ctx context.Context, tenantID, ruleID uuid.UUID) error {
	rule, err := s.rules.FindByID(ctx, tenantID, ruleID)
	if err != nil {
		return err
	}
	rule.Archive()
	return s.rules.Save(ctx, rule)
}

// ReplenishmentSuggestions evaluates every active rule against current
// warehouse stock and returns the triggered ones with suggested
// quantities
func (s *Service) ReplenishmentSuggestions(ctx context.Context, tenantID uuid.UUID) ([]ReplenishmentSuggestion, error) {
	rules, err := s.rules.FindAllForTenant(ctx, tenantID, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}
	suggestions := make([]ReplenishmentSuggestion, 0)
	for i := range rules {
		rule := &rules[i]
		if !rule.Active {
			continue
		}
		onHand, err := s.onHand.OnHandByWarehouse(ctx, tenantID, rule.ProductID, rule.WarehouseID)
		if err != nil {
			return nil, err
		}
		if !rule.IsTriggered(onHand) {
			continue
		}
		suggestions = append(suggestions, ReplenishmentSuggestion{
			RuleID:       rule.ID,
			ProductID:    rule.ProductID,
			WarehouseID:  rule.WarehouseID,
			OnHand:       onHand,
			MinQty:       rule.MinQty,
			MaxQty:       rule.MaxQty,
			SuggestedQty: rule.SuggestedQty(onHand),
		})
	}
	return suggestions, nil
}

// ABCAnalysis classifies the products of a warehouse by value share
func (s *Service) ABCAnalysis(ctx context.Context, tenantID, warehouseID uuid.UUID, thresholdA, thresholdB decimal.Decimal) (*stock.ABCResult, error) {
	inputs, err := s.quants.ValuationByWarehouse(ctx, tenantID, warehouseID)
	if err != nil {
		return nil, err
	}
	result := stock.ClassifyABC(inputs, thresholdA, thresholdB)
	return &result, nil
}

// Turnover computes the rotation stats of a product over the trailing
// year
func (s *Service) Turnover(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (*stock.TurnoverStats, error) {
	since := time.Now().AddDate(-1, 0, 0)
	qtySold, err := s.sales.QtySoldSince(ctx, tenantID, productID, since)
	if err != nil {
		return nil, err
	}
	currentStock, err := s.onHand.OnHandByWarehouse(ctx, tenantID, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	stats := stock.ComputeTurnover(productID, qtySold, currentStock)
	return &stats, nil
}

// DemandForecast projects demand over the horizon from recent sales
func (s *Service) DemandForecast(ctx context.Context, tenantID, productID, warehouseID uuid.UUID, horizonDays int) (*stock.Forecast, error) {
	if horizonDays <= 0 {
		return nil, shared.NewDomainError("INVALID_HORIZON", "L'horizon doit être positif")
	}
	now := time.Now()
	history, err := s.sales.DailyHistory(ctx, tenantID, productID, now.AddDate(0, 0, -forecastHistoryDays), now)
	if err != nil {
		return nil, err
	}
	currentStock, err := s.onHand.OnHandByWarehouse(ctx, tenantID, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	forecast := stock.ProjectDemand(productID, history, currentStock, horizonDays, now)
	return &forecast, nil
}

// ExpiringLots lists lots whose expiration falls within the window
func (s *Service) ExpiringLots(ctx context.Context, tenantID uuid.UUID, within time.Duration) ([]ExpiringLot, error) {
	now := time.Now()
	lots, err := s.lots.FindExpiringBefore(ctx, tenantID, now.Add(within))
	if err != nil {
		return nil, err
	}
	out := make([]ExpiringLot, 0, len(lots))
	for i := range lots {
		l := &lots[i]
		out = append(out, ExpiringLot{
			LotID:          l.ID,
			ProductID:      l.ProductID,
			Name:           l.Name,
			Quantity:       l.Quantity,
			ExpirationDate: l.ExpirationDate,
			Status:         string(l.StatusAt(now)),
		})
	}
	return out, nil
}

// FEFOPick returns a product's lots in picking order, earliest expiry
// first
func (s *Service) FEFOPick(ctx context.Context, tenantID, productID uuid.UUID) ([]stock.Lot, error) {
	lots, err := s.lots.FindByProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	stock.SortFEFO(lots)
	return lots, nil
}

// TraceLot reconstructs where a lot came from and where it went
func (s *Service) TraceLot(ctx context.Context, tenantID, lotID uuid.UUID) (*stock.LotTrace, error) {
	lot, err := s.lots.FindByID(ctx, tenantID, lotID)
	if err != nil {
		return nil, err
	}
	movements, err := s.movements.FindByLot(ctx, tenantID, lotID)
	if err != nil {
		return nil, err
	}

	usageCache := make(map[uuid.UUID]bool)
	isInternal := func(locationID uuid.UUID) bool {
		if internal, ok := usageCache[locationID]; ok {
			return internal
		}
		location, err := s.locations.FindByID(ctx, tenantID, locationID)
		internal := err == nil && location.Usage == stock.LocationUsageInternal
		usageCache[locationID] = internal
		return internal
	}

	trace := stock.BuildLotTrace(*lot, movements, isInternal)
	return &trace, nil
}

type eventCarrier interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

func (s *Service) publishEvents(ctx context.Context, aggregate eventCarrier) {
	if s.eventPublisher == nil || aggregate == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, aggregate.GetDomainEvents()...); err == nil {
		aggregate.ClearDomainEvents()
	}
}
