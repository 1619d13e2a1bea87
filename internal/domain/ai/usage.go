package ai

import (
	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
)

// AnswerSource tells how a chat turn was answered
type AnswerSource string

const (
	AnswerSourceFAQ AnswerSource = "faq"
	AnswerSourceLLM AnswerSource = "llm"
)

// UsageRecord is an append-only accounting entry for one assistant turn.
// FAQ-answered turns carry zero token counts.
type UsageRecord struct {
	shared.BaseEntity
	TenantID       uuid.UUID    `gorm:"type:uuid;not null;index"`
	ConversationID uuid.UUID    `gorm:"type:uuid;not null;index"`
	Provider       Provider     `gorm:"type:varchar(20)"`
	Model          string       `gorm:"type:varchar(100)"`
	Source         AnswerSource `gorm:"type:varchar(10);not null"`
	TokensIn       int          `gorm:"not null;default:0"`
	TokensOut      int          `gorm:"not null;default:0"`
	LatencyMs      int64        `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (UsageRecord) TableName() string {
	return "ai_usage_records"
}

// NewFAQUsage records a turn answered from the FAQ without the LLM
func NewFAQUsage(tenantID, conversationID uuid.UUID, latencyMs int64) *UsageRecord {
	return &UsageRecord{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       tenantID,
		ConversationID: conversationID,
		Source:         AnswerSourceFAQ,
		LatencyMs:      latencyMs,
	}
}

// NewLLMUsage records a turn answered by the configured LLM
func NewLLMUsage(tenantID, conversationID uuid.UUID, provider Provider, model string, tokensIn, tokensOut int, latencyMs int64) *UsageRecord {
	return &UsageRecord{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       tenantID,
		ConversationID: conversationID,
		Provider:       provider,
		Model:          model,
		Source:         AnswerSourceLLM,
		TokensIn:       tokensIn,
		TokensOut:      tokensOut,
		LatencyMs:      latencyMs,
	}
}
