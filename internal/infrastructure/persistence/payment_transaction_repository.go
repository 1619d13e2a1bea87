package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/payment"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentTransactionRepository implements payment.TransactionRepository using GORM
type GormPaymentTransactionRepository struct {
	db *gorm.DB
}

// NewGormPaymentTransactionRepository creates a new GormPaymentTransactionRepository
func NewGormPaymentTransactionRepository(db *gorm.DB) *GormPaymentTransactionRepository {
	return &GormPaymentTransactionRepository{db: db}
}

// FindByID finds a transaction by its ID
func (r *GormPaymentTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Transaction, error) {
	var model models.PaymentTransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a transaction by ID within a tenant
func (r *GormPaymentTransactionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payment.Transaction, error) {
	var model models.PaymentTransactionModel
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

// FindByReference finds a transaction by its internal reference
func (r *GormPaymentTransactionRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*payment.Transaction, error) {
	var model models.PaymentTransactionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference = ?", tenantID, reference).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProviderPaymentID finds a transaction by (provider, provider_payment_id)
func (r *GormPaymentTransactionRepository) FindByProviderPaymentID(ctx context.Context, provider payment.Provider, providerPaymentID string) (*payment.Transaction, error) {
	var model models.PaymentTransactionModel
	if err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_payment_id = ?", provider, providerPaymentID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProviderPaymentIDForUpdate is FindByProviderPaymentID under a
// row-level lock
func (r *GormPaymentTransactionRepository) FindByProviderPaymentIDForUpdate(ctx context.Context, provider payment.Provider, providerPaymentID string) (*payment.Transaction, error) {
	var model models.PaymentTransactionModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("provider = ? AND provider_payment_id = ?", provider, providerPaymentID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindPendingOlderThan lists pending transactions initiated before the cutoff
func (r *GormPaymentTransactionRepository) FindPendingOlderThan(ctx context.Context, cutoffSeconds int) ([]payment.Transaction, error) {
	cutoff := time.Now().Add(-time.Duration(cutoffSeconds) * time.Second)

	var rows []models.PaymentTransactionModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND initiated_at < ?", payment.TransactionStatusPending, cutoff).
		Order("initiated_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	txs := make([]payment.Transaction, len(rows))
	for i := range rows {
		txs[i] = *rows[i].ToDomain()
	}
	return txs, nil
}

// FindAllForTenant lists transactions with filtering
func (r *GormPaymentTransactionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]payment.Transaction, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentTransactionModel{}).
		Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		query = query.Where("reference ILIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "provider":
			query = query.Where("provider = ?", value)
		case "order_id":
			query = query.Where("order_id = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, PaymentTransactionSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	var rows []models.PaymentTransactionModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	txs := make([]payment.Transaction, len(rows))
	for i := range rows {
		txs[i] = *rows[i].ToDomain()
	}
	return txs, nil
}

// Save persists the aggregate with optimistic locking on its version
func (r *GormPaymentTransactionRepository) Save(ctx context.Context, tx *payment.Transaction) error {
	var currentVersion int
	err := r.db.WithContext(ctx).Model(&models.PaymentTransactionModel{}).
		Where("id = ?", tx.GetID()).
		Select("version").
		Take(&currentVersion).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first save, insert as-is
	case err != nil:
		return err
	default:
		if currentVersion != tx.Version {
			return shared.ErrConcurrency
		}
		tx.Version++
	}
	tx.UpdatedAt = time.Now()

	model := models.PaymentTransactionModelFromDomain(tx)
	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		return fmt.Errorf("saving payment transaction: %w", err)
	}
	return nil
}

// Ensure GormPaymentTransactionRepository implements TransactionRepository
var _ payment.TransactionRepository = (*GormPaymentTransactionRepository)(nil)

// GormPaymentLedgerRepository implements payment.LedgerRepository using GORM
type GormPaymentLedgerRepository struct {
	db *gorm.DB
}

// NewGormPaymentLedgerRepository creates a new GormPaymentLedgerRepository
func NewGormPaymentLedgerRepository(db *gorm.DB) *GormPaymentLedgerRepository {
	return &GormPaymentLedgerRepository{db: db}
}

// Append records a settlement entry. Entries are never updated.
func (r *GormPaymentLedgerRepository) Append(ctx context.Context, entry *payment.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByOrder lists settlement entries for an order
func (r *GormPaymentLedgerRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]payment.LedgerEntry, error) {
	var entries []payment.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Ensure GormPaymentLedgerRepository implements LedgerRepository
var _ payment.LedgerRepository = (*GormPaymentLedgerRepository)(nil)
