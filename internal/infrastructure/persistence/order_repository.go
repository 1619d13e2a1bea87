package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/checkout"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements checkout.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*checkout.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).Preload("Lines").First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds an order by ID within a tenant
func (r *GormOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*checkout.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderNumber finds an order by its number within a tenant
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*checkout.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).Preload("Lines").
		Where("tenant_id = ? AND order_number = ?", tenantID, orderNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveCart finds the single draft cart of a partner
func (r *GormOrderRepository) FindActiveCart(ctx context.Context, tenantID, partnerID uuid.UUID) (*checkout.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).Preload("Lines").
		Where("tenant_id = ? AND partner_id = ? AND status = ?", tenantID, partnerID, checkout.OrderStatusDraft).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveCartByEmail finds the draft cart of a guest email
func (r *GormOrderRepository) FindActiveCartByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*checkout.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).Preload("Lines").
		Where("tenant_id = ? AND LOWER(partner_email) = LOWER(?) AND status = ?", tenantID, email, checkout.OrderStatusDraft).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists orders with filtering
func (r *GormOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]checkout.Order, error) {
	var rows []models.OrderModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.OrderModel{}).Preload("Lines").
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	orders := make([]checkout.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// CountForTenant counts orders matching the filter
func (r *GormOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.OrderModel{}).
			Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists the aggregate with optimistic locking on its version
func (r *GormOrderRepository) Save(ctx context.Context, order *checkout.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveInTx(tx, order)
	})
}

// SaveWithLock persists the aggregate after taking a row-level lock on it.
// Webhook-driven confirmation uses this to serialize with concurrent cart
// mutations.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *checkout.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.OrderModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "version").
			First(&current, "id = ?", order.GetID()).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		if current.Version != order.Version {
			return shared.ErrConcurrency
		}
		return r.saveInTx(tx, order)
	})
}

func (r *GormOrderRepository) saveInTx(tx *gorm.DB, order *checkout.Order) error {
	var currentVersion int
	err := tx.Model(&models.OrderModel{}).
		Where("id = ?", order.GetID()).
		Select("version").
		Take(&currentVersion).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first save, insert as-is
	case err != nil:
		return err
	default:
		if currentVersion != order.Version {
			return shared.ErrConcurrency
		}
		order.Version++
	}
	order.UpdatedAt = time.Now()

	model := models.OrderModelFromDomain(order)
	if err := tx.Omit("Lines").Save(&model).Error; err != nil {
		return err
	}

	// Reconcile lines: delete removed ones, upsert the rest
	currentLineIDs := make([]uuid.UUID, len(model.Lines))
	for i, line := range model.Lines {
		currentLineIDs[i] = line.ID
	}
	del := tx.Where("order_id = ?", model.ID)
	if len(currentLineIDs) > 0 {
		del = del.Where("id NOT IN ?", currentLineIDs)
	}
	if err := del.Delete(&models.OrderLineModel{}).Error; err != nil {
		return err
	}
	for i := range model.Lines {
		model.Lines[i].OrderID = model.ID
		if err := tx.Save(&model.Lines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("order_number ILIKE ? OR partner_email ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "partner_id":
			query = query.Where("partner_id = ?", value)
		case "confirmed_after":
			query = query.Where("confirmed_at >= ?", value)
		case "confirmed_before":
			query = query.Where("confirmed_at < ?", value)
		}
	}
	return query
}

// Ensure GormOrderRepository implements OrderRepository
var _ checkout.OrderRepository = (*GormOrderRepository)(nil)
