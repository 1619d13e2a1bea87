package stock

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduledCount(t *testing.T, snapshots []QuantSnapshot) *CycleCount {
	t.Helper()
	locationIDs := make([]uuid.UUID, 0, len(snapshots))
	for _, s := range snapshots {
		locationIDs = append(locationIDs, s.LocationID)
	}
	cc, err := NewCycleCount(uuid.New(), "INV-2026-001", time.Now(), CountScope{LocationIDs: locationIDs})
	require.NoError(t, err)
	require.NoError(t, cc.Schedule(snapshots))
	return cc
}

func TestCycleCountSchedule(t *testing.T) {
	location := uuid.New()

	t.Run("snapshots theoretical quantities and prices", func(t *testing.T) {
		cc := scheduledCount(t, []QuantSnapshot{
			{ProductID: uuid.New(), LocationID: location, Quantity: decimal.NewFromInt(12), StandardPrice: decimal.NewFromInt(5)},
			{ProductID: uuid.New(), LocationID: location, Quantity: decimal.NewFromInt(3), StandardPrice: decimal.NewFromInt(20)},
		})
		assert.Equal(t, CycleCountStatusScheduled, cc.Status)
		require.Len(t, cc.Lines, 2)
		assert.True(t, cc.Lines[0].TheoreticalQty.Equal(decimal.NewFromInt(12)))
		assert.True(t, cc.Lines[1].StandardPrice.Equal(decimal.NewFromInt(20)))
	})

	t.Run("empty scope rejected at creation", func(t *testing.T) {
		_, err := NewCycleCount(uuid.New(), "INV-2026-002", time.Now(), CountScope{})
		assert.Error(t, err)
	})

	t.Run("empty snapshot rejected", func(t *testing.T) {
		cc, err := NewCycleCount(uuid.New(), "INV-2026-003", time.Now(), CountScope{LocationIDs: []uuid.UUID{location}})
		require.NoError(t, err)
		assert.Error(t, cc.Schedule(nil))
	})

	t.Run("cannot schedule twice", func(t *testing.T) {
		cc := scheduledCount(t, []QuantSnapshot{
			{ProductID: uuid.New(), LocationID: location, Quantity: decimal.NewFromInt(1), StandardPrice: decimal.NewFromInt(1)},
		})
		assert.Error(t, cc.Schedule([]QuantSnapshot{
			{ProductID: uuid.New(), LocationID: location, Quantity: decimal.NewFromInt(2), StandardPrice: decimal.NewFromInt(1)},
		}))
	})
}

func TestCycleCountRecord(t *testing.T) {
	location := uuid.New()
	cc := scheduledCount(t, []QuantSnapshot{
		{ProductID: uuid.New(), LocationID: location, Quantity: decimal.NewFromInt(10), StandardPrice: decimal.NewFromInt(2)},
	})

	t.Run("counting requires in progress", func(t *testing.T) {
		err := cc.RecordCount(cc.Lines[0].ID, decimal.NewFromInt(8))
		assert.Error(t, err)
	})

	t.Run("records counted quantity", func(t *testing.T) {
		require.NoError(t, cc.Start())
		require.NoError(t, cc.RecordCount(cc.Lines[0].ID, decimal.NewFromInt(8)))
		assert.True(t, cc.Lines[0].Counted)
		assert.True(t, cc.Lines[0].Difference().Equal(decimal.NewFromInt(-2)))
	})

	t.Run("unknown line rejected", func(t *testing.T) {
		assert.Error(t, cc.RecordCount(uuid.New(), decimal.NewFromInt(1)))
	})

	t.Run("negative count rejected", func(t *testing.T) {
		assert.Error(t, cc.RecordCount(cc.Lines[0].ID, decimal.NewFromInt(-1)))
	})
}

func TestCycleCountValidate(t *testing.T) {
	location := uuid.New()
	adjustment := uuid.New()

	t.Run("generates one adjustment per differing line", func(t *testing.T) {
		productShort := uuid.New()
		productOver := uuid.New()
		productExact := uuid.New()
		cc := scheduledCount(t, []QuantSnapshot{
			{ProductID: productShort, LocationID: location, Quantity: decimal.NewFromInt(10), StandardPrice: decimal.NewFromInt(4)},
			{ProductID: productOver, LocationID: location, Quantity: decimal.NewFromInt(5), StandardPrice: decimal.NewFromInt(3)},
			{ProductID: productExact, LocationID: location, Quantity: decimal.NewFromInt(7), StandardPrice: decimal.NewFromInt(1)},
		})
		require.NoError(t, cc.Start())
		require.NoError(t, cc.RecordCount(cc.Lines[0].ID, decimal.NewFromInt(8)))
		require.NoError(t, cc.RecordCount(cc.Lines[1].ID, decimal.NewFromInt(6)))
		require.NoError(t, cc.RecordCount(cc.Lines[2].ID, decimal.NewFromInt(7)))

		movements, err := cc.Validate(adjustment)
		require.NoError(t, err)
		assert.Equal(t, CycleCountStatusDone, cc.Status)
		require.Len(t, movements, 2)

		// shortfall of 2 leaves stock toward the adjustment location
		assert.Equal(t, productShort, movements[0].ProductID)
		assert.Equal(t, location, movements[0].SourceLocation)
		assert.Equal(t, adjustment, movements[0].DestLocation)
		assert.True(t, movements[0].Quantity.Equal(decimal.NewFromInt(2)))

		// surplus of 1 enters stock from the adjustment location
		assert.Equal(t, productOver, movements[1].ProductID)
		assert.Equal(t, adjustment, movements[1].SourceLocation)
		assert.Equal(t, location, movements[1].DestLocation)
		assert.True(t, movements[1].Quantity.Equal(decimal.NewFromInt(1)))

		for _, m := range movements {
			assert.Equal(t, MovementKindAdjustment, m.Kind)
			assert.Equal(t, cc.Reference, m.SourceRef)
		}

		// -2*4 + 1*3
		assert.True(t, cc.TotalValueDifference().Equal(decimal.NewFromInt(-5)))
	})

	t.Run("refuses validation with uncounted lines", func(t *testing.T) {
		cc := scheduledCount(t, []QuantSnapshot{
			{ProductID: uuid.New(), LocationID: location, Quantity: decimal.NewFromInt(10), StandardPrice: decimal.NewFromInt(4)},
			{ProductID: uuid.New(), LocationID: location, Quantity: decimal.NewFromInt(5), StandardPrice: decimal.NewFromInt(3)},
		})
		require.NoError(t, cc.Start())
		require.NoError(t, cc.RecordCount(cc.Lines[0].ID, decimal.NewFromInt(10)))

		_, err := cc.Validate(adjustment)
		assert.Error(t, err)
		assert.Equal(t, CycleCountStatusInProgress, cc.Status)
	})

	t.Run("cancel allowed until done", func(t *testing.T) {
		cc := scheduledCount(t, []QuantSnapshot{
			{ProductID: uuid.New(), LocationID: location, Quantity: decimal.NewFromInt(1), StandardPrice: decimal.NewFromInt(1)},
		})
		require.NoError(t, cc.Cancel())
		assert.Equal(t, CycleCountStatusCancelled, cc.Status)
		assert.Error(t, cc.Start())
	})
}

func TestCycleCountCoversLocation(t *testing.T) {
	inScope := uuid.New()
	cc, err := NewCycleCount(uuid.New(), "INV-2026-010", time.Now(), CountScope{LocationIDs: []uuid.UUID{inScope}})
	require.NoError(t, err)
	assert.True(t, cc.CoversLocation(inScope))
	assert.False(t, cc.CoversLocation(uuid.New()))
}
