package stockops

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/domain/stock"
)

type fakeReservationRepo struct {
	reservations map[uuid.UUID]*stock.Reservation
	activeSum    decimal.Decimal
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reservations: make(map[uuid.UUID]*stock.Reservation)}
}

func (r *fakeReservationRepo) FindByID(_ context.Context, _, id uuid.UUID) (*stock.Reservation, error) {
	if res, ok := r.reservations[id]; ok {
		return res, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeReservationRepo) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*stock.Reservation, error) {
	return r.FindByID(ctx, tenantID, id)
}

func (r *fakeReservationRepo) FindAllForTenant(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]stock.Reservation, error) {
	return nil, nil
}

func (r *fakeReservationRepo) SumActive(_ context.Context, _, _, _ uuid.UUID) (decimal.Decimal, error) {
	return r.activeSum, nil
}

func (r *fakeReservationRepo) FindActivePastDue(_ context.Context, now time.Time, limit int) ([]stock.Reservation, error) {
	var out []stock.Reservation
	for _, res := range r.reservations {
		if res.IsPastDue(now) && len(out) < limit {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) Save(_ context.Context, res *stock.Reservation) error {
	r.reservations[res.ID] = res
	return nil
}

func (r *fakeReservationRepo) Delete(_ context.Context, _, id uuid.UUID) error {
	delete(r.reservations, id)
	return nil
}

type fakeScrapRepo struct {
	scraps map[uuid.UUID]*stock.Scrap
}

func (r *fakeScrapRepo) FindByID(_ context.Context, _, id uuid.UUID) (*stock.Scrap, error) {
	if sc, ok := r.scraps[id]; ok {
		return sc, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeScrapRepo) FindAllForTenant(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]stock.Scrap, error) {
	return nil, nil
}

func (r *fakeScrapRepo) Save(_ context.Context, sc *stock.Scrap) error {
	r.scraps[sc.ID] = sc
	return nil
}

func (r *fakeScrapRepo) Delete(_ context.Context, _, id uuid.UUID) error {
	delete(r.scraps, id)
	return nil
}

type fakeCountRepo struct {
	counts map[uuid.UUID]*stock.CycleCount
}

func (r *fakeCountRepo) FindByID(_ context.Context, _, id uuid.UUID) (*stock.CycleCount, error) {
	if cc, ok := r.counts[id]; ok {
		return cc, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCountRepo) FindAllForTenant(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]stock.CycleCount, error) {
	return nil, nil
}

func (r *fakeCountRepo) Save(_ context.Context, cc *stock.CycleCount) error {
	r.counts[cc.ID] = cc
	return nil
}

type fakeLocationRepo struct {
	locations map[uuid.UUID]*stock.Location
	ancestors map[uuid.UUID][]uuid.UUID
}

func (r *fakeLocationRepo) FindByID(_ context.Context, _, id uuid.UUID) (*stock.Location, error) {
	if l, ok := r.locations[id]; ok {
		return l, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeLocationRepo) FindAllForTenant(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]stock.Location, error) {
	return nil, nil
}

func (r *fakeLocationRepo) Ancestors(_ context.Context, _, id uuid.UUID) ([]uuid.UUID, error) {
	return r.ancestors[id], nil
}

func (r *fakeLocationRepo) HasChildren(_ context.Context, _, _ uuid.UUID) (bool, error) {
	return false, nil
}

func (r *fakeLocationRepo) Save(_ context.Context, l *stock.Location) error {
	r.locations[l.ID] = l
	return nil
}

func (r *fakeLocationRepo) Delete(_ context.Context, _, id uuid.UUID) error {
	delete(r.locations, id)
	return nil
}

type fakeLockRepo struct {
	locks map[uuid.UUID]*stock.LocationLock
}

func (r *fakeLockRepo) FindByLocation(_ context.Context, _, locationID uuid.UUID) (*stock.LocationLock, error) {
	if l, ok := r.locks[locationID]; ok {
		return l, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeLockRepo) AnyLocked(_ context.Context, _ uuid.UUID, locationIDs []uuid.UUID) (bool, error) {
	for _, id := range locationIDs {
		if _, ok := r.locks[id]; ok {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLockRepo) Save(_ context.Context, lock *stock.LocationLock) error {
	r.locks[lock.LocationID] = lock
	return nil
}

func (r *fakeLockRepo) DeleteByLocation(_ context.Context, _, locationID uuid.UUID) error {
	delete(r.locks, locationID)
	return nil
}

type fakeRuleRepo struct {
	rules map[uuid.UUID]*stock.ReorderingRule
}

func (r *fakeRuleRepo) FindByID(_ context.Context, _, id uuid.UUID) (*stock.ReorderingRule, error) {
	if rule, ok := r.rules[id]; ok {
		return rule, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeRuleRepo) FindActiveByProductWarehouse(_ context.Context, _, productID, warehouseID uuid.UUID) (*stock.ReorderingRule, error) {
	for _, rule := range r.rules {
		if rule.Active && rule.ProductID == productID && rule.WarehouseID == warehouseID {
			return rule, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeRuleRepo) FindAllForTenant(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]stock.ReorderingRule, error) {
	out := make([]stock.ReorderingRule, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, *rule)
	}
	return out, nil
}

func (r *fakeRuleRepo) Save(_ context.Context, rule *stock.ReorderingRule) error {
	r.rules[rule.ID] = rule
	return nil
}

type fakeLotRepo struct {
	lots map[uuid.UUID]*stock.Lot
}

func (r *fakeLotRepo) FindByID(_ context.Context, _, id uuid.UUID) (*stock.Lot, error) {
	if l, ok := r.lots[id]; ok {
		return l, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeLotRepo) FindByProduct(_ context.Context, _, productID uuid.UUID) ([]stock.Lot, error) {
	var out []stock.Lot
	for _, l := range r.lots {
		if l.ProductID == productID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeLotRepo) FindExpiringBefore(_ context.Context, _ uuid.UUID, before time.Time) ([]stock.Lot, error) {
	var out []stock.Lot
	for _, l := range r.lots {
		if l.ExpirationDate != nil && l.ExpirationDate.Before(before) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeLotRepo) Save(_ context.Context, l *stock.Lot) error {
	r.lots[l.ID] = l
	return nil
}

type fakeMovementRepo struct {
	movements []*stock.Movement
}

func (r *fakeMovementRepo) Append(_ context.Context, movements ...*stock.Movement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *fakeMovementRepo) FindByProduct(_ context.Context, _, _ uuid.UUID, _ shared.Filter) ([]stock.Movement, error) {
	return nil, nil
}

func (r *fakeMovementRepo) FindByLot(_ context.Context, _, lotID uuid.UUID) ([]stock.Movement, error) {
	var out []stock.Movement
	for _, m := range r.movements {
		if m.LotID != nil && *m.LotID == lotID {
			out = append(out, *m)
		}
	}
	return out, nil
}

type fakeOnHand struct {
	byLocation  map[uuid.UUID]decimal.Decimal
	byWarehouse map[uuid.UUID]decimal.Decimal
}

func (p *fakeOnHand) OnHand(_ context.Context, _, _, locationID uuid.UUID) (decimal.Decimal, error) {
	return p.byLocation[locationID], nil
}

func (p *fakeOnHand) OnHandForUpdate(ctx context.Context, tenantID, productID, locationID uuid.UUID) (decimal.Decimal, error) {
	return p.OnHand(ctx, tenantID, productID, locationID)
}

func (p *fakeOnHand) OnHandByWarehouse(_ context.Context, _, _, warehouseID uuid.UUID) (decimal.Decimal, error) {
	return p.byWarehouse[warehouseID], nil
}

type fakeQuants struct {
	snapshots []stock.QuantSnapshot
	valuation []stock.ABCInput
}

func (q *fakeQuants) SnapshotForScope(_ context.Context, _ uuid.UUID, _ stock.CountScope) ([]stock.QuantSnapshot, error) {
	return q.snapshots, nil
}

func (q *fakeQuants) ValuationByWarehouse(_ context.Context, _, _ uuid.UUID) ([]stock.ABCInput, error) {
	return q.valuation, nil
}

type fakeSales struct {
	qtySold365 decimal.Decimal
	history    []stock.DailySale
}

func (s *fakeSales) QtySoldSince(_ context.Context, _, _ uuid.UUID, _ time.Time) (decimal.Decimal, error) {
	return s.qtySold365, nil
}

func (s *fakeSales) DailyHistory(_ context.Context, _, _ uuid.UUID, _, _ time.Time) ([]stock.DailySale, error) {
	return s.history, nil
}

type fakeStockRepos struct {
	reservations *fakeReservationRepo
	scraps       *fakeScrapRepo
	counts       *fakeCountRepo
	movements    *fakeMovementRepo
	onHand       *fakeOnHand
}

func (r *fakeStockRepos) Reservations() stock.ReservationRepository { return r.reservations }
func (r *fakeStockRepos) Scraps() stock.ScrapRepository            { return r.scraps }
func (r *fakeStockRepos) CycleCounts() stock.CycleCountRepository  { return r.counts }
func (r *fakeStockRepos) Movements() stock.MovementRepository      { return r.movements }
func (r *fakeStockRepos) OnHand() stock.OnHandProvider             { return r.onHand }

type fakeStockScope struct {
	repos *fakeStockRepos
	runs  int
}

func (s *fakeStockScope) Execute(_ context.Context, fn func(TransactionalRepositories) error) error {
	s.runs++
	return fn(s.repos)
}

type stockFixture struct {
	service    *Service
	repos      *fakeStockRepos
	locations  *fakeLocationRepo
	locks      *fakeLockRepo
	rules      *fakeRuleRepo
	lots       *fakeLotRepo
	quants     *fakeQuants
	sales      *fakeSales
	scope      *fakeStockScope
	tenantID   uuid.UUID
	productID  uuid.UUID
	locationID uuid.UUID
}

func newStockFixture(t *testing.T) *stockFixture {
	t.Helper()
	tenantID := uuid.New()
	productID := uuid.New()
	locationID := uuid.New()

	repos := &fakeStockRepos{
		reservations: newFakeReservationRepo(),
		scraps:       &fakeScrapRepo{scraps: make(map[uuid.UUID]*stock.Scrap)},
		counts:       &fakeCountRepo{counts: make(map[uuid.UUID]*stock.CycleCount)},
		movements:    &fakeMovementRepo{},
		onHand: &fakeOnHand{
			byLocation:  map[uuid.UUID]decimal.Decimal{locationID: decimal.NewFromInt(10)},
			byWarehouse: map[uuid.UUID]decimal.Decimal{},
		},
	}
	locations := &fakeLocationRepo{
		locations: make(map[uuid.UUID]*stock.Location),
		ancestors: make(map[uuid.UUID][]uuid.UUID),
	}
	locks := &fakeLockRepo{locks: make(map[uuid.UUID]*stock.LocationLock)}
	rules := &fakeRuleRepo{rules: make(map[uuid.UUID]*stock.ReorderingRule)}
	lots := &fakeLotRepo{lots: make(map[uuid.UUID]*stock.Lot)}
	quants := &fakeQuants{}
	sales := &fakeSales{}
	scope := &fakeStockScope{repos: repos}

	service := NewService(
		repos.reservations, repos.scraps, repos.counts,
		locations, locks, rules, lots,
		repos.movements, repos.onHand, quants, sales, scope,
	)

	return &stockFixture{
		service:    service,
		repos:      repos,
		locations:  locations,
		locks:      locks,
		rules:      rules,
		lots:       lots,
		quants:     quants,
		sales:      sales,
		scope:      scope,
		tenantID:   tenantID,
		productID:  productID,
		locationID: locationID,
	}
}

func (f *stockFixture) draftReservation(t *testing.T, qty int64) *ReservationResponse {
	t.Helper()
	resp, err := f.service.CreateReservation(context.Background(), f.tenantID, CreateReservationRequest{
		ProductID:  f.productID,
		LocationID: f.locationID,
		Quantity:   decimal.NewFromInt(qty),
		Reason:     "commande web",
	})
	require.NoError(t, err)
	return resp
}

func TestActivateReservation(t *testing.T) {
	f := newStockFixture(t)
	f.repos.reservations.activeSum = decimal.NewFromInt(7)

	t.Run("within available stock", func(t *testing.T) {
		resp := f.draftReservation(t, 3)

		activated, err := f.service.ActivateReservation(context.Background(), f.tenantID, resp.ID)
		require.NoError(t, err)
		assert.Equal(t, "ACTIVE", activated.Status)
		assert.NotNil(t, activated.ActivatedAt)
		assert.Equal(t, 1, f.scope.runs)
	})

	t.Run("exceeding available stock", func(t *testing.T) {
		resp := f.draftReservation(t, 4)

		_, err := f.service.ActivateReservation(context.Background(), f.tenantID, resp.ID)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)

		stored, err := f.repos.reservations.FindByID(context.Background(), f.tenantID, resp.ID)
		require.NoError(t, err)
		assert.Equal(t, stock.ReservationStatusDraft, stored.Status)
	})
}

func TestExpireReservations(t *testing.T) {
	f := newStockFixture(t)
	past := time.Now().Add(-time.Hour)

	r, err := stock.NewReservation(f.tenantID, f.productID, f.locationID, decimal.NewFromInt(2), "", &past)
	require.NoError(t, err)
	require.NoError(t, r.Activate(decimal.NewFromInt(10), decimal.Zero))
	require.NoError(t, f.repos.reservations.Save(context.Background(), r))

	expired, err := f.service.ExpireReservations(context.Background(), time.Now(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
}

func TestValidateScrap(t *testing.T) {
	f := newStockFixture(t)
	scrapLocation := uuid.New()
	userID := uuid.New()

	created, err := f.service.CreateScrap(context.Background(), f.tenantID, CreateScrapRequest{
		ProductID:      f.productID,
		SourceLocation: f.locationID,
		ScrapLocation:  scrapLocation,
		Quantity:       decimal.NewFromInt(4),
		Reason:         "casse",
	})
	require.NoError(t, err)

	resp, err := f.service.ValidateScrap(context.Background(), f.tenantID, created.ID, userID)
	require.NoError(t, err)

	assert.Equal(t, "DONE", resp.Status)
	require.Len(t, f.repos.movements.movements, 1)
	movement := f.repos.movements.movements[0]
	assert.Equal(t, f.locationID, movement.SourceLocation)
	assert.Equal(t, scrapLocation, movement.DestLocation)
	assert.Equal(t, stock.MovementKindScrap, movement.Kind)
}

func TestValidateScrapLockedLocation(t *testing.T) {
	f := newStockFixture(t)
	scrapLocation := uuid.New()

	created, err := f.service.CreateScrap(context.Background(), f.tenantID, CreateScrapRequest{
		ProductID:      f.productID,
		SourceLocation: f.locationID,
		ScrapLocation:  scrapLocation,
		Quantity:       decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	lock, err := stock.NewLocationLock(f.tenantID, f.locationID, uuid.New(), "inventaire en cours")
	require.NoError(t, err)
	require.NoError(t, f.locks.Save(context.Background(), lock))

	_, err = f.service.ValidateScrap(context.Background(), f.tenantID, created.ID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrLocationLocked)
	assert.Empty(t, f.repos.movements.movements)
}

func TestDeleteScrap(t *testing.T) {
	f := newStockFixture(t)

	created, err := f.service.CreateScrap(context.Background(), f.tenantID, CreateScrapRequest{
		ProductID:      f.productID,
		SourceLocation: f.locationID,
		ScrapLocation:  uuid.New(),
		Quantity:       decimal.NewFromInt(2),
	})
	require.NoError(t, err)

	t.Run("draft can be deleted", func(t *testing.T) {
		require.NoError(t, f.service.DeleteScrap(context.Background(), f.tenantID, created.ID))
		_, err := f.service.ValidateScrap(context.Background(), f.tenantID, created.ID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("validated scrap is kept", func(t *testing.T) {
		validated, err := f.service.CreateScrap(context.Background(), f.tenantID, CreateScrapRequest{
			ProductID:      f.productID,
			SourceLocation: f.locationID,
			ScrapLocation:  uuid.New(),
			Quantity:       decimal.NewFromInt(1),
		})
		require.NoError(t, err)
		_, err = f.service.ValidateScrap(context.Background(), f.tenantID, validated.ID, uuid.New())
		require.NoError(t, err)

		err = f.service.DeleteScrap(context.Background(), f.tenantID, validated.ID)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})
}

func TestCycleCountFlow(t *testing.T) {
	f := newStockFixture(t)
	adjustmentLocation := uuid.New()

	f.quants.snapshots = []stock.QuantSnapshot{
		{ProductID: f.productID, LocationID: f.locationID, Quantity: decimal.NewFromInt(10), StandardPrice: decimal.NewFromInt(5)},
	}

	scheduled, err := f.service.ScheduleCount(context.Background(), f.tenantID, ScheduleCountRequest{
		Reference:     "INV-2026-001",
		ScheduledDate: time.Now().Add(24 * time.Hour),
		Scope:         stock.CountScope{LocationIDs: []uuid.UUID{f.locationID}},
	})
	require.NoError(t, err)
	require.Len(t, scheduled.Lines, 1)

	_, err = f.service.StartCount(context.Background(), f.tenantID, scheduled.ID)
	require.NoError(t, err)

	_, err = f.service.RecordCount(context.Background(), f.tenantID, scheduled.ID, RecordCountRequest{
		LineID:     scheduled.Lines[0].ID,
		CountedQty: decimal.NewFromInt(8),
	})
	require.NoError(t, err)

	validated, err := f.service.ValidateCount(context.Background(), f.tenantID, scheduled.ID, ValidateCountRequest{
		AdjustmentLocation: adjustmentLocation,
	})
	require.NoError(t, err)

	assert.Equal(t, "DONE", validated.Status)
	// counted 8 against 10: one adjustment of 2 toward the loss location
	require.Len(t, f.repos.movements.movements, 1)
	movement := f.repos.movements.movements[0]
	assert.Equal(t, f.locationID, movement.SourceLocation)
	assert.Equal(t, adjustmentLocation, movement.DestLocation)
	assert.True(t, movement.Quantity.Equal(decimal.NewFromInt(2)))
	assert.True(t, validated.TotalValueDifference.Equal(decimal.NewFromInt(-10)))
}

func TestTransfer(t *testing.T) {
	f := newStockFixture(t)
	dest := uuid.New()

	t.Run("moves stock", func(t *testing.T) {
		movement, err := f.service.Transfer(context.Background(), f.tenantID, TransferRequest{
			ProductID:      f.productID,
			SourceLocation: f.locationID,
			DestLocation:   dest,
			Quantity:       decimal.NewFromInt(5),
			SourceRef:      "TR-001",
		})
		require.NoError(t, err)
		assert.Equal(t, stock.MovementKindInternal, movement.Kind)
	})

	t.Run("rejects insufficient stock", func(t *testing.T) {
		_, err := f.service.Transfer(context.Background(), f.tenantID, TransferRequest{
			ProductID:      f.productID,
			SourceLocation: f.locationID,
			DestLocation:   dest,
			Quantity:       decimal.NewFromInt(50),
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("rejects locked destination", func(t *testing.T) {
		lock, err := stock.NewLocationLock(f.tenantID, dest, uuid.New(), "comptage")
		require.NoError(t, err)
		require.NoError(t, f.locks.Save(context.Background(), lock))

		_, err = f.service.Transfer(context.Background(), f.tenantID, TransferRequest{
			ProductID:      f.productID,
			SourceLocation: f.locationID,
			DestLocation:   dest,
			Quantity:       decimal.NewFromInt(1),
		})
		assert.ErrorIs(t, err, shared.ErrLocationLocked)
	})
}

func TestCreateRuleUniqueness(t *testing.T) {
	f := newStockFixture(t)
	warehouseID := uuid.New()
	req := CreateRuleRequest{
		ProductID:   f.productID,
		WarehouseID: warehouseID,
		MinQty:      decimal.NewFromInt(5),
		MaxQty:      decimal.NewFromInt(20),
		QtyMultiple: decimal.NewFromInt(6),
	}

	_, err := f.service.CreateRule(context.Background(), f.tenantID, req)
	require.NoError(t, err)

	_, err = f.service.CreateRule(context.Background(), f.tenantID, req)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "DUPLICATE_RULE", domainErr.Code)
}

func TestReplenishmentSuggestions(t *testing.T) {
	f := newStockFixture(t)
	warehouseID := uuid.New()
	f.repos.onHand.byWarehouse[warehouseID] = decimal.NewFromInt(3)

	_, err := f.service.CreateRule(context.Background(), f.tenantID, CreateRuleRequest{
		ProductID:   f.productID,
		WarehouseID: warehouseID,
		MinQty:      decimal.NewFromInt(5),
		MaxQty:      decimal.NewFromInt(20),
		QtyMultiple: decimal.NewFromInt(6),
	})
	require.NoError(t, err)

	suggestions, err := f.service.ReplenishmentSuggestions(context.Background(), f.tenantID)
	require.NoError(t, err)

	require.Len(t, suggestions, 1)
	// need 17, rounded up to the next multiple of 6
	assert.True(t, suggestions[0].SuggestedQty.Equal(decimal.NewFromInt(18)))
	assert.True(t, suggestions[0].OnHand.Equal(decimal.NewFromInt(3)))
}

func TestABCAnalysis(t *testing.T) {
	f := newStockFixture(t)
	warehouseID := uuid.New()
	f.quants.valuation = []stock.ABCInput{
		{ProductID: uuid.New(), Quantity: decimal.NewFromInt(80), StandardPrice: decimal.NewFromInt(10)},
		{ProductID: uuid.New(), Quantity: decimal.NewFromInt(15), StandardPrice: decimal.NewFromInt(10)},
		{ProductID: uuid.New(), Quantity: decimal.NewFromInt(5), StandardPrice: decimal.NewFromInt(10)},
	}

	result, err := f.service.ABCAnalysis(context.Background(), f.tenantID, warehouseID, decimal.Zero, decimal.Zero)
	require.NoError(t, err)

	require.Len(t, result.Items, 3)
	assert.Equal(t, stock.ABCClassA, result.Items[0].Class)
	assert.True(t, result.TotalValue.Equal(decimal.NewFromInt(1000)))
}

func TestTurnoverAndForecast(t *testing.T) {
	f := newStockFixture(t)
	warehouseID := uuid.New()
	f.repos.onHand.byWarehouse[warehouseID] = decimal.NewFromInt(30)
	f.sales.qtySold365 = decimal.NewFromInt(365)

	stats, err := f.service.Turnover(context.Background(), f.tenantID, f.productID, warehouseID)
	require.NoError(t, err)
	assert.True(t, stats.DailyRate.Equal(decimal.NewFromInt(1)))
	assert.True(t, stats.DaysOfStock.Equal(decimal.NewFromInt(30)))

	day := time.Now().AddDate(0, 0, -7)
	for i := 0; i < 7; i++ {
		f.sales.history = append(f.sales.history, stock.DailySale{
			Day:      day.AddDate(0, 0, i),
			Quantity: decimal.NewFromInt(5),
		})
	}
	forecast, err := f.service.DemandForecast(context.Background(), f.tenantID, f.productID, warehouseID, 7)
	require.NoError(t, err)
	assert.True(t, forecast.TotalDemand.Equal(decimal.NewFromInt(35)))
	assert.True(t, forecast.Shortage)

	_, err = f.service.DemandForecast(context.Background(), f.tenantID, f.productID, warehouseID, 0)
	assert.Error(t, err)
}

func TestReparentLocation(t *testing.T) {
	f := newStockFixture(t)

	parent := &stock.Location{BaseEntity: shared.NewBaseEntity(), TenantID: f.tenantID, Name: "Stock", Usage: stock.LocationUsageInternal, Active: true}
	child := &stock.Location{BaseEntity: shared.NewBaseEntity(), TenantID: f.tenantID, Name: "Allée A", Usage: stock.LocationUsageInternal, Active: true, ParentID: &parent.ID}
	f.locations.locations[parent.ID] = parent
	f.locations.locations[child.ID] = child
	f.locations.ancestors[child.ID] = []uuid.UUID{parent.ID}

	// moving the parent under its own child closes a loop
	err := f.service.ReparentLocation(context.Background(), f.tenantID, parent.ID, child.ID)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CIRCULAR_LOOP", domainErr.Code)

	sibling := &stock.Location{BaseEntity: shared.NewBaseEntity(), TenantID: f.tenantID, Name: "Allée B", Usage: stock.LocationUsageInternal, Active: true, ParentID: &parent.ID}
	f.locations.locations[sibling.ID] = sibling
	f.locations.ancestors[sibling.ID] = []uuid.UUID{parent.ID}

	require.NoError(t, f.service.ReparentLocation(context.Background(), f.tenantID, child.ID, sibling.ID))
	assert.Equal(t, sibling.ID, *child.ParentID)
}

func TestLockUnlockLocation(t *testing.T) {
	f := newStockFixture(t)
	location := &stock.Location{BaseEntity: shared.NewBaseEntity(), TenantID: f.tenantID, Name: "Stock", Usage: stock.LocationUsageInternal, Active: true}
	f.locations.locations[location.ID] = location

	err := f.service.LockLocation(context.Background(), f.tenantID, location.ID, uuid.New(), LockLocationRequest{Reason: "comptage"})
	require.NoError(t, err)

	err = f.service.LockLocation(context.Background(), f.tenantID, location.ID, uuid.New(), LockLocationRequest{Reason: "comptage"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	require.NoError(t, f.service.UnlockLocation(context.Background(), f.tenantID, location.ID))
	err = f.service.LockLocation(context.Background(), f.tenantID, location.ID, uuid.New(), LockLocationRequest{Reason: "comptage"})
	assert.NoError(t, err)
}

func TestExpiringLotsAndTrace(t *testing.T) {
	f := newStockFixture(t)
	soon := time.Now().Add(48 * time.Hour)

	lot, err := stock.NewLot(f.tenantID, f.productID, "LOT-001", decimal.NewFromInt(20))
	require.NoError(t, err)
	lot.ExpirationDate = &soon
	require.NoError(t, f.lots.Save(context.Background(), lot))

	expiring, err := f.service.ExpiringLots(context.Background(), f.tenantID, 7*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, "LOT-001", expiring[0].Name)

	supplier := &stock.Location{BaseEntity: shared.NewBaseEntity(), TenantID: f.tenantID, Name: "Fournisseur", Usage: stock.LocationUsageSupplier, Active: true}
	internal := &stock.Location{BaseEntity: shared.NewBaseEntity(), TenantID: f.tenantID, Name: "Stock", Usage: stock.LocationUsageInternal, Active: true}
	customer := &stock.Location{BaseEntity: shared.NewBaseEntity(), TenantID: f.tenantID, Name: "Client", Usage: stock.LocationUsageCustomer, Active: true}
	for _, l := range []*stock.Location{supplier, internal, customer} {
		f.locations.locations[l.ID] = l
	}

	receipt := stock.NewMovement(f.tenantID, f.productID, supplier.ID, internal.ID, decimal.NewFromInt(20), stock.MovementKindReceipt, "PO-1").WithLot(lot.ID)
	issue := stock.NewMovement(f.tenantID, f.productID, internal.ID, customer.ID, decimal.NewFromInt(5), stock.MovementKindIssue, "SO-1").WithLot(lot.ID)
	require.NoError(t, f.repos.movements.Append(context.Background(), receipt, issue))

	trace, err := f.service.TraceLot(context.Background(), f.tenantID, lot.ID)
	require.NoError(t, err)
	assert.Len(t, trace.Upstream, 1)
	assert.Len(t, trace.Downstream, 1)
}
