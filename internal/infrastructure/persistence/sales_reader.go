package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/application/stockops"
	"github.com/quelyos/backend/internal/domain/checkout"
	"github.com/quelyos/backend/internal/domain/stock"
	"github.com/quelyos/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSalesReader reads aggregate sales figures off confirmed orders.
// Cancelled orders and draft carts never count; delivery lines are
// excluded so shipping fees do not pollute demand figures.
type GormSalesReader struct {
	db *gorm.DB
}

// NewGormSalesReader creates a new GormSalesReader
func NewGormSalesReader(db *gorm.DB) *GormSalesReader {
	return &GormSalesReader{db: db}
}

func (r *GormSalesReader) soldLines(ctx context.Context, tenantID, productID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.OrderLineModel{}).
		Joins("JOIN orders ON orders.id = order_lines.order_id").
		Where("orders.tenant_id = ?", tenantID).
		Where("orders.status IN ?", []checkout.OrderStatus{checkout.OrderStatusConfirmed, checkout.OrderStatusPaid}).
		Where("order_lines.product_id = ? AND order_lines.is_delivery = ?", productID, false)
}

// QtySoldSince sums the quantity sold since the given instant
func (r *GormSalesReader) QtySoldSince(ctx context.Context, tenantID, productID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.soldLines(ctx, tenantID, productID).
		Select("SUM(order_lines.quantity)").
		Where("orders.confirmed_at >= ?", since).
		Take(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// DailyHistory returns quantities sold per day over [from, to)
func (r *GormSalesReader) DailyHistory(ctx context.Context, tenantID, productID uuid.UUID, from, to time.Time) ([]stock.DailySale, error) {
	var history []stock.DailySale
	err := r.soldLines(ctx, tenantID, productID).
		Select("DATE_TRUNC('day', orders.confirmed_at) AS day", "SUM(order_lines.quantity) AS quantity").
		Where("orders.confirmed_at >= ? AND orders.confirmed_at < ?", from, to).
		Group("DATE_TRUNC('day', orders.confirmed_at)").
		Order("day ASC").
		Scan(&history).Error
	if err != nil {
		return nil, err
	}
	return history, nil
}

// Ensure GormSalesReader implements SalesReader
var _ stockops.SalesReader = (*GormSalesReader)(nil)
