package stock

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantHistory(days int, qty int64, from time.Time) []DailySale {
	history := make([]DailySale, 0, days)
	for i := 0; i < days; i++ {
		history = append(history, DailySale{
			Day:      from.AddDate(0, 0, i),
			Quantity: decimal.NewFromInt(qty),
		})
	}
	return history
}

func TestComputeTurnover(t *testing.T) {
	productID := uuid.New()

	t.Run("derives days of stock from trailing year", func(t *testing.T) {
		stats := ComputeTurnover(productID, decimal.NewFromInt(730), decimal.NewFromInt(20))
		assert.True(t, stats.DailyRate.Equal(decimal.NewFromInt(2)))
		assert.True(t, stats.DaysOfStock.Equal(decimal.NewFromInt(10)))
	})

	t.Run("zero sales yields zero days of stock", func(t *testing.T) {
		stats := ComputeTurnover(productID, decimal.Zero, decimal.NewFromInt(50))
		assert.True(t, stats.DailyRate.IsZero())
		assert.True(t, stats.DaysOfStock.IsZero())
	})
}

func TestProjectDemand(t *testing.T) {
	productID := uuid.New()
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	t.Run("constant sales project at the same rate", func(t *testing.T) {
		history := constantHistory(30, 5, start)
		f := ProjectDemand(productID, history, decimal.NewFromInt(100), 7, start.AddDate(0, 0, 30))

		require.Len(t, f.Points, 7)
		assert.True(t, f.TrendUsed)
		for _, p := range f.Points {
			assert.True(t, p.Quantity.Equal(decimal.NewFromInt(5)), "expected 5, got %s", p.Quantity)
		}
		assert.True(t, f.TotalDemand.Equal(decimal.NewFromInt(35)))
		assert.False(t, f.Shortage)
	})

	t.Run("short history stays flat without trend", func(t *testing.T) {
		history := constantHistory(5, 4, start)
		f := ProjectDemand(productID, history, decimal.NewFromInt(100), 7, start.AddDate(0, 0, 5))
		assert.False(t, f.TrendUsed)
		for _, p := range f.Points {
			assert.True(t, p.Quantity.Equal(decimal.NewFromInt(4)))
		}
	})

	t.Run("growing sales project upward", func(t *testing.T) {
		history := make([]DailySale, 0, 14)
		for i := 0; i < 14; i++ {
			history = append(history, DailySale{
				Day:      start.AddDate(0, 0, i),
				Quantity: decimal.NewFromInt(int64(i + 1)),
			})
		}
		f := ProjectDemand(productID, history, decimal.NewFromInt(1000), 7, start.AddDate(0, 0, 14))
		require.Len(t, f.Points, 7)
		assert.True(t, f.TrendUsed)
		assert.True(t, f.Points[6].Quantity.GreaterThan(f.Points[0].Quantity))
	})

	t.Run("shortage when projected demand exceeds stock", func(t *testing.T) {
		history := constantHistory(14, 10, start)
		f := ProjectDemand(productID, history, decimal.NewFromInt(30), 7, start.AddDate(0, 0, 14))
		assert.True(t, f.Shortage)
		assert.False(t, f.Overstock)
	})

	t.Run("overstock when stock exceeds three times demand", func(t *testing.T) {
		history := constantHistory(14, 1, start)
		f := ProjectDemand(productID, history, decimal.NewFromInt(100), 7, start.AddDate(0, 0, 14))
		assert.False(t, f.Shortage)
		assert.True(t, f.Overstock)
	})

	t.Run("declining trend floors at zero", func(t *testing.T) {
		history := make([]DailySale, 0, 14)
		for i := 0; i < 14; i++ {
			history = append(history, DailySale{
				Day:      start.AddDate(0, 0, i),
				Quantity: decimal.NewFromInt(int64(14 - i)),
			})
		}
		f := ProjectDemand(productID, history, decimal.NewFromInt(10), 14, start.AddDate(0, 0, 14))
		for _, p := range f.Points {
			assert.False(t, p.Quantity.IsNegative())
		}
	})
}
