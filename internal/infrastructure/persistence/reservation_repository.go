package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/domain/stock"
	"github.com/quelyos/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReservationRepository implements stock.ReservationRepository using GORM
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GormReservationRepository
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// FindByID finds a reservation by ID within a tenant
func (r *GormReservationRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*stock.Reservation, error) {
	var model models.ReservationModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a reservation under a row-level lock
func (r *GormReservationRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*stock.Reservation, error) {
	var model models.ReservationModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists reservations with filtering
func (r *GormReservationRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.Reservation, error) {
	query := r.db.WithContext(ctx).Model(&models.ReservationModel{}).
		Where("tenant_id = ?", tenantID)

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "location_id":
			query = query.Where("location_id = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, ReservationSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	var rows []models.ReservationModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	reservations := make([]stock.Reservation, len(rows))
	for i := range rows {
		reservations[i] = *rows[i].ToDomain()
	}
	return reservations, nil
}

// SumActive returns the total active reserved quantity on a
// (product, location) pair
func (r *GormReservationRepository) SumActive(ctx context.Context, tenantID, productID, locationID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := r.db.WithContext(ctx).Model(&models.ReservationModel{}).
		Select("SUM(quantity)").
		Where("tenant_id = ? AND product_id = ? AND location_id = ? AND status = ?",
			tenantID, productID, locationID, stock.ReservationStatusActive).
		Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// FindActivePastDue lists active reservations whose deadline passed
func (r *GormReservationRepository) FindActivePastDue(ctx context.Context, now time.Time, limit int) ([]stock.Reservation, error) {
	var rows []models.ReservationModel
	query := r.db.WithContext(ctx).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", stock.ReservationStatusActive, now).
		Order("expires_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	reservations := make([]stock.Reservation, len(rows))
	for i := range rows {
		reservations[i] = *rows[i].ToDomain()
	}
	return reservations, nil
}

// Save persists the aggregate
func (r *GormReservationRepository) Save(ctx context.Context, reservation *stock.Reservation) error {
	reservation.UpdatedAt = time.Now()
	model := models.ReservationModelFromDomain(reservation)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete removes a terminal reservation
func (r *GormReservationRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.ReservationModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormReservationRepository implements ReservationRepository
var _ stock.ReservationRepository = (*GormReservationRepository)(nil)
