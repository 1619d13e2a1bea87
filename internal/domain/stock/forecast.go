package stock

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DailySale is one day of aggregate sales for a product
type DailySale struct {
	Day      time.Time
	Quantity decimal.Decimal
}

// TurnoverStats describes the rotation speed of a product
type TurnoverStats struct {
	ProductID   uuid.UUID       `json:"product_id"`
	QtySold365  decimal.Decimal `json:"qty_sold_365"`
	DailyRate   decimal.Decimal `json:"daily_rate"`
	DaysOfStock decimal.Decimal `json:"days_of_stock"`
}

// ComputeTurnover derives the daily sell rate over the trailing year and
// the number of days the current stock covers at that rate. DaysOfStock
// is zero when nothing sold.
func ComputeTurnover(productID uuid.UUID, qtySold365, currentStock decimal.Decimal) TurnoverStats {
	stats := TurnoverStats{ProductID: productID, QtySold365: qtySold365}
	days := decimal.NewFromInt(365)
	stats.DailyRate = qtySold365.Div(days).Round(4)
	if stats.DailyRate.IsPositive() {
		stats.DaysOfStock = currentStock.Div(stats.DailyRate).Round(1)
	}
	return stats
}

// ForecastPoint is one projected day
type ForecastPoint struct {
	Day      time.Time       `json:"day"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Forecast is a demand projection for a product
type Forecast struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Points       []ForecastPoint `json:"points"`
	TotalDemand  decimal.Decimal `json:"total_demand"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	Shortage     bool            `json:"shortage"`
	Overstock    bool            `json:"overstock"`
	TrendUsed    bool            `json:"trend_used"`
}

// trendMinSamples is the history size below which the projection stays flat
const trendMinSamples = 10

// overstockFactor flags stock exceeding this multiple of projected demand
var overstockFactor = decimal.NewFromInt(3)

// ProjectDemand projects daily demand over horizon days. The baseline is
// the moving average of the last seven days of history. With at least
// trendMinSamples days of history a least-squares slope is fitted and
// applied per projected day, floored at zero. Shortage means projected
// demand exceeds current stock; overstock means stock exceeds three times
// projected demand.
func ProjectDemand(productID uuid.UUID, history []DailySale, currentStock decimal.Decimal, horizon int, from time.Time) Forecast {
	f := Forecast{ProductID: productID, CurrentStock: currentStock}
	if horizon <= 0 {
		horizon = 7
	}

	baseline := movingAverage(history, 7)
	slope := decimal.Zero
	if len(history) >= trendMinSamples {
		slope = leastSquaresSlope(history)
		f.TrendUsed = true
	}

	total := decimal.Zero
	for i := 0; i < horizon; i++ {
		qty := baseline.Add(slope.Mul(decimal.NewFromInt(int64(i + 1))))
		if qty.IsNegative() {
			qty = decimal.Zero
		}
		qty = qty.Round(2)
		f.Points = append(f.Points, ForecastPoint{
			Day:      from.AddDate(0, 0, i+1),
			Quantity: qty,
		})
		total = total.Add(qty)
	}
	f.TotalDemand = total
	f.Shortage = total.GreaterThan(currentStock)
	f.Overstock = currentStock.GreaterThan(total.Mul(overstockFactor))
	return f
}

func movingAverage(history []DailySale, window int) decimal.Decimal {
	if len(history) == 0 {
		return decimal.Zero
	}
	if window > len(history) {
		window = len(history)
	}
	sum := decimal.Zero
	for _, s := range history[len(history)-window:] {
		sum = sum.Add(s.Quantity)
	}
	return sum.Div(decimal.NewFromInt(int64(window)))
}

// leastSquaresSlope fits quantity against day index over the full history
func leastSquaresSlope(history []DailySale) decimal.Decimal {
	n := float64(len(history))
	var sumX, sumY, sumXY, sumXX float64
	for i, s := range history {
		x := float64(i)
		y, _ := s.Quantity.Float64()
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return decimal.Zero
	}
	slope := (n*sumXY - sumX*sumY) / denom
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(slope).Round(4)
}
