package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/loyalty"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLoyaltyMemberRepository implements loyalty.MemberRepository using GORM
type GormLoyaltyMemberRepository struct {
	db *gorm.DB
}

// NewGormLoyaltyMemberRepository creates a new GormLoyaltyMemberRepository
func NewGormLoyaltyMemberRepository(db *gorm.DB) *GormLoyaltyMemberRepository {
	return &GormLoyaltyMemberRepository{db: db}
}

// FindByID finds a member by ID within a tenant
func (r *GormLoyaltyMemberRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*loyalty.Member, error) {
	var model models.LoyaltyMemberModel
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

// FindByPartner returns the member account of a partner
func (r *GormLoyaltyMemberRepository) FindByPartner(ctx context.Context, tenantID, partnerID uuid.UUID) (*loyalty.Member, error) {
	var model models.LoyaltyMemberModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND partner_id = ?", tenantID, partnerID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPartnerForUpdate reads the member under a row-level lock
func (r *GormLoyaltyMemberRepository) FindByPartnerForUpdate(ctx context.Context, tenantID, partnerID uuid.UUID) (*loyalty.Member, error) {
	var model models.LoyaltyMemberModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND partner_id = ?", tenantID, partnerID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save persists the member with optimistic concurrency control
func (r *GormLoyaltyMemberRepository) Save(ctx context.Context, member *loyalty.Member) error {
	model := models.LoyaltyMemberModelFromDomain(member)

	var currentVersion int
	err := r.db.WithContext(ctx).Model(&models.LoyaltyMemberModel{}).
		Select("version").
		Where("id = ?", model.ID).
		Take(&currentVersion).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.db.WithContext(ctx).Create(model).Error
	case err != nil:
		return err
	case currentVersion != model.Version:
		return shared.ErrConcurrency
	}

	model.Version++
	member.Version = model.Version
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormLoyaltyMemberRepository implements MemberRepository
var _ loyalty.MemberRepository = (*GormLoyaltyMemberRepository)(nil)

// GormLoyaltyProgramRepository implements loyalty.ProgramRepository using GORM
type GormLoyaltyProgramRepository struct {
	db *gorm.DB
}

// NewGormLoyaltyProgramRepository creates a new GormLoyaltyProgramRepository
func NewGormLoyaltyProgramRepository(db *gorm.DB) *GormLoyaltyProgramRepository {
	return &GormLoyaltyProgramRepository{db: db}
}

// FindByID finds a program by ID within a tenant
func (r *GormLoyaltyProgramRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*loyalty.Program, error) {
	var model models.LoyaltyProgramModel
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

// FindActive returns the tenant's active program. When several are
// active the most recently created wins.
func (r *GormLoyaltyProgramRepository) FindActive(ctx context.Context, tenantID uuid.UUID) (*loyalty.Program, error) {
	var model models.LoyaltyProgramModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists programs with filtering
func (r *GormLoyaltyProgramRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]loyalty.Program, error) {
	query := r.db.WithContext(ctx).Model(&models.LoyaltyProgramModel{}).
		Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "active":
			query = query.Where("active = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	query = query.Order("created_at DESC")

	var programModels []models.LoyaltyProgramModel
	if err := query.Find(&programModels).Error; err != nil {
		return nil, err
	}

	programs := make([]loyalty.Program, len(programModels))
	for i := range programModels {
		programs[i] = *programModels[i].ToDomain()
	}
	return programs, nil
}

// Save persists the program with optimistic concurrency control
func (r *GormLoyaltyProgramRepository) Save(ctx context.Context, program *loyalty.Program) error {
	model := models.LoyaltyProgramModelFromDomain(program)

	var currentVersion int
	err := r.db.WithContext(ctx).Model(&models.LoyaltyProgramModel{}).
		Select("version").
		Where("id = ?", model.ID).
		Take(&currentVersion).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.db.WithContext(ctx).Create(model).Error
	case err != nil:
		return err
	case currentVersion != model.Version:
		return shared.ErrConcurrency
	}

	model.Version++
	program.Version = model.Version
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormLoyaltyProgramRepository implements ProgramRepository
var _ loyalty.ProgramRepository = (*GormLoyaltyProgramRepository)(nil)

// GormLoyaltyTransactionRepository records the append-only points
// ledger. Entries persist directly from the domain type.
type GormLoyaltyTransactionRepository struct {
	db *gorm.DB
}

// NewGormLoyaltyTransactionRepository creates a new GormLoyaltyTransactionRepository
func NewGormLoyaltyTransactionRepository(db *gorm.DB) *GormLoyaltyTransactionRepository {
	return &GormLoyaltyTransactionRepository{db: db}
}

// Append records a ledger entry
func (r *GormLoyaltyTransactionRepository) Append(ctx context.Context, tx *loyalty.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// FindByMember lists ledger entries of a member, newest first
func (r *GormLoyaltyTransactionRepository) FindByMember(ctx context.Context, tenantID, memberID uuid.UUID, filter shared.Filter) ([]loyalty.Transaction, error) {
	query := r.db.WithContext(ctx).Model(&loyalty.Transaction{}).
		Where("tenant_id = ? AND member_id = ?", tenantID, memberID)

	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "order_id":
			query = query.Where("order_id = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, LoyaltyTransactionSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	var transactions []loyalty.Transaction
	if err := query.Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// FindByOrderAndType detects duplicate earnings for the same order
func (r *GormLoyaltyTransactionRepository) FindByOrderAndType(ctx context.Context, tenantID, orderID uuid.UUID, txType loyalty.TransactionType) (*loyalty.Transaction, error) {
	var tx loyalty.Transaction
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ? AND type = ?", tenantID, orderID, txType).
		First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// Ensure GormLoyaltyTransactionRepository implements TransactionRepository
var _ loyalty.TransactionRepository = (*GormLoyaltyTransactionRepository)(nil)
