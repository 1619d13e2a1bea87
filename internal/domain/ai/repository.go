package ai

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
)

// ConfigRepository provides persistence for assistant configurations
type ConfigRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Config, error)

	// FindActive returns the tenant's active config, or shared.ErrNotFound
	FindActive(ctx context.Context, tenantID uuid.UUID) (*Config, error)

	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Config, error)

	// Save persists a config. Activation and deactivation of the previous
	// active config run in the caller's transaction.
	Save(ctx context.Context, c *Config) error

	// DeactivateAll clears the active flag on every config of a tenant
	DeactivateAll(ctx context.Context, tenantID uuid.UUID) error

	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// ConversationRepository provides persistence for chat sessions
type ConversationRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Conversation, error)

	// FindByClientKey returns the conversation of a client key, or
	// shared.ErrNotFound
	FindByClientKey(ctx context.Context, tenantID uuid.UUID, clientKey string) (*Conversation, error)

	Save(ctx context.Context, c *Conversation) error

	// DeleteIdleSince removes conversations untouched since the cutoff
	DeleteIdleSince(ctx context.Context, cutoff time.Time) (int64, error)
}

// UsageRepository records assistant usage accounting
type UsageRepository interface {
	Append(ctx context.Context, record *UsageRecord) error

	// TotalsForTenant sums token usage over a period
	TotalsForTenant(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (tokensIn, tokensOut int64, err error)
}
