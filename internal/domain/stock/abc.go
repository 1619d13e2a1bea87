package stock

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ABCClass is a Pareto class assigned to a product
type ABCClass string

const (
	ABCClassA ABCClass = "A"
	ABCClassB ABCClass = "B"
	ABCClassC ABCClass = "C"
)

// ABCInput is one product entering the analysis
type ABCInput struct {
	ProductID     uuid.UUID
	Quantity      decimal.Decimal
	StandardPrice decimal.Decimal
}

// Value returns quantity times standard price
func (in ABCInput) Value() decimal.Decimal {
	return in.Quantity.Mul(in.StandardPrice)
}

// ABCItem is a classified product
type ABCItem struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Value        decimal.Decimal `json:"value"`
	CumulativePc decimal.Decimal `json:"cumulative_percent"`
	Class        ABCClass        `json:"class"`
}

// ABCClassKPI aggregates a class
type ABCClassKPI struct {
	Class      ABCClass        `json:"class"`
	Count      int             `json:"count"`
	Value      decimal.Decimal `json:"value"`
	ValueShare decimal.Decimal `json:"value_share_percent"`
}

// ABCResult is the outcome of an ABC analysis
type ABCResult struct {
	Items      []ABCItem     `json:"items"`
	KPIs       []ABCClassKPI `json:"kpis"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// Default ABC thresholds, in cumulative value percent
var (
	DefaultThresholdA = decimal.NewFromInt(80)
	DefaultThresholdB = decimal.NewFromInt(95)
)

// ClassifyABC partitions products by cumulative value share. Products are
// sorted by value descending; a product is A while the cumulative share
// stays within thresholdA, B within thresholdB, C otherwise. The union of
// the three classes always equals the input.
func ClassifyABC(inputs []ABCInput, thresholdA, thresholdB decimal.Decimal) ABCResult {
	if thresholdA.IsZero() {
		thresholdA = DefaultThresholdA
	}
	if thresholdB.IsZero() {
		thresholdB = DefaultThresholdB
	}

	items := make([]ABCItem, 0, len(inputs))
	total := decimal.Zero
	for _, in := range inputs {
		value := in.Value()
		total = total.Add(value)
		items = append(items, ABCItem{ProductID: in.ProductID, Value: value})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Value.GreaterThan(items[j].Value)
	})

	hundred := decimal.NewFromInt(100)
	cumulative := decimal.Zero
	classTotals := map[ABCClass]*ABCClassKPI{
		ABCClassA: {Class: ABCClassA, Value: decimal.Zero},
		ABCClassB: {Class: ABCClassB, Value: decimal.Zero},
		ABCClassC: {Class: ABCClassC, Value: decimal.Zero},
	}

	for i := range items {
		// A product crossing a boundary belongs to the higher class, so the
		// class is decided on the cumulative share before the product
		var before decimal.Decimal
		if total.IsPositive() {
			before = cumulative.Div(total).Mul(hundred)
		}
		cumulative = cumulative.Add(items[i].Value)
		if total.IsPositive() {
			items[i].CumulativePc = cumulative.Div(total).Mul(hundred).Round(2)
		}
		switch {
		case before.LessThan(thresholdA):
			items[i].Class = ABCClassA
		case before.LessThan(thresholdB):
			items[i].Class = ABCClassB
		default:
			items[i].Class = ABCClassC
		}
		kpi := classTotals[items[i].Class]
		kpi.Count++
		kpi.Value = kpi.Value.Add(items[i].Value)
	}

	kpis := make([]ABCClassKPI, 0, 3)
	for _, class := range []ABCClass{ABCClassA, ABCClassB, ABCClassC} {
		kpi := classTotals[class]
		if total.IsPositive() {
			kpi.ValueShare = kpi.Value.Div(total).Mul(hundred).Round(2)
		}
		kpis = append(kpis, *kpi)
	}

	return ABCResult{Items: items, KPIs: kpis, TotalValue: total}
}
