package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/ai"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAssistantConfigRepository implements ai.ConfigRepository using GORM
type GormAssistantConfigRepository struct {
	db *gorm.DB
}

// NewGormAssistantConfigRepository creates a new GormAssistantConfigRepository
func NewGormAssistantConfigRepository(db *gorm.DB) *GormAssistantConfigRepository {
	return &GormAssistantConfigRepository{db: db}
}

// FindByID finds a config by ID within a tenant
func (r *GormAssistantConfigRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ai.Config, error) {
	var model models.AssistantConfigModel
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

// FindActive returns the tenant's active config
func (r *GormAssistantConfigRepository) FindActive(ctx context.Context, tenantID uuid.UUID) (*ai.Config, error) {
	var model models.AssistantConfigModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists configs, newest first
func (r *GormAssistantConfigRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ai.Config, error) {
	query := r.db.WithContext(ctx).Model(&models.AssistantConfigModel{}).
		Where("tenant_id = ?", tenantID)

	for key, value := range filter.Filters {
		switch key {
		case "provider":
			query = query.Where("provider = ?", value)
		case "active":
			query = query.Where("active = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	query = query.Order("created_at DESC")

	var configModels []models.AssistantConfigModel
	if err := query.Find(&configModels).Error; err != nil {
		return nil, err
	}

	configs := make([]ai.Config, len(configModels))
	for i := range configModels {
		configs[i] = *configModels[i].ToDomain()
	}
	return configs, nil
}

// Save persists the config with optimistic concurrency control
func (r *GormAssistantConfigRepository) Save(ctx context.Context, c *ai.Config) error {
	model := models.AssistantConfigModelFromDomain(c)

	var currentVersion int
	err := r.db.WithContext(ctx).Model(&models.AssistantConfigModel{}).
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
	c.Version = model.Version
	return r.db.WithContext(ctx).Save(model).Error
}

// DeactivateAll clears the active flag on every config of a tenant
func (r *GormAssistantConfigRepository) DeactivateAll(ctx context.Context, tenantID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.AssistantConfigModel{}).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Updates(map[string]interface{}{"active": false, "updated_at": time.Now()}).Error
}

// Delete removes a config
func (r *GormAssistantConfigRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.AssistantConfigModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormAssistantConfigRepository implements ConfigRepository
var _ ai.ConfigRepository = (*GormAssistantConfigRepository)(nil)

// GormConversationRepository implements ai.ConversationRepository using GORM
type GormConversationRepository struct {
	db *gorm.DB
}

// NewGormConversationRepository creates a new GormConversationRepository
func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

// FindByID finds a conversation with its messages
func (r *GormConversationRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ai.Conversation, error) {
	var model models.ConversationModel
	if err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("ai_messages.created_at ASC")
		}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByClientKey returns the conversation of a client key
func (r *GormConversationRepository) FindByClientKey(ctx context.Context, tenantID uuid.UUID, clientKey string) (*ai.Conversation, error) {
	var model models.ConversationModel
	if err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("ai_messages.created_at ASC")
		}).
		Where("tenant_id = ? AND client_key = ?", tenantID, clientKey).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save persists the conversation and its messages
func (r *GormConversationRepository) Save(ctx context.Context, c *ai.Conversation) error {
	model := models.ConversationModelFromDomain(c)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		err := tx.Model(&models.ConversationModel{}).
			Select("version").
			Where("id = ?", model.ID).
			Take(&currentVersion).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(model).Error
		case err != nil:
			return err
		case currentVersion != model.Version:
			return shared.ErrConcurrency
		}

		model.Version++
		c.Version = model.Version
		if err := tx.Omit("Messages").Save(model).Error; err != nil {
			return err
		}

		// Messages only ever grow; insert the ones not yet stored.
		for i := range model.Messages {
			msg := model.Messages[i]
			res := tx.Where("id = ?", msg.ID).First(&models.MessageModel{})
			if errors.Is(res.Error, gorm.ErrRecordNotFound) {
				if err := tx.Create(&msg).Error; err != nil {
					return err
				}
			} else if res.Error != nil {
				return res.Error
			}
		}
		return nil
	})
}

// DeleteIdleSince removes conversations untouched since the cutoff and
// returns how many were removed
func (r *GormConversationRepository) DeleteIdleSince(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uuid.UUID
		if err := tx.Model(&models.ConversationModel{}).
			Where("updated_at < ?", cutoff).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("conversation_id IN ?", ids).
			Delete(&models.MessageModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&models.ConversationModel{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	return deleted, err
}

// Ensure GormConversationRepository implements ConversationRepository
var _ ai.ConversationRepository = (*GormConversationRepository)(nil)

// GormUsageRepository records assistant usage accounting. Records
// persist directly from the domain type.
type GormUsageRepository struct {
	db *gorm.DB
}

// NewGormUsageRepository creates a new GormUsageRepository
func NewGormUsageRepository(db *gorm.DB) *GormUsageRepository {
	return &GormUsageRepository{db: db}
}

// Append records a usage entry
func (r *GormUsageRepository) Append(ctx context.Context, record *ai.UsageRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// TotalsForTenant sums token usage over a period
func (r *GormUsageRepository) TotalsForTenant(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, int64, error) {
	var totals struct {
		TokensIn  int64
		TokensOut int64
	}
	err := r.db.WithContext(ctx).Model(&ai.UsageRecord{}).
		Select("COALESCE(SUM(tokens_in), 0) AS tokens_in", "COALESCE(SUM(tokens_out), 0) AS tokens_out").
		Where("tenant_id = ? AND created_at >= ? AND created_at < ?", tenantID, from, to).
		Take(&totals).Error
	if err != nil {
		return 0, 0, err
	}
	return totals.TokensIn, totals.TokensOut, nil
}

// Ensure GormUsageRepository implements UsageRepository
var _ ai.UsageRepository = (*GormUsageRepository)(nil)
