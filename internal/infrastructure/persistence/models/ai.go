package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/ai"
)

// AssistantConfigModel is the persistence model for the assistant Config
// aggregate.
type AssistantConfigModel struct {
	TenantAggregateModel
	Provider     ai.Provider `gorm:"type:varchar(20);not null"`
	Model        string      `gorm:"type:varchar(100);not null"`
	APIKey       string      `gorm:"type:varchar(500);not null"`
	SystemPrompt string      `gorm:"type:text"`
	Temperature  float64     `gorm:"not null;default:0.7"`
	MaxTokens    int         `gorm:"not null;default:1024"`
	Active       bool        `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (AssistantConfigModel) TableName() string {
	return "ai_assistant_configs"
}

// ToDomain converts the persistence model to a domain Config.
func (m *AssistantConfigModel) ToDomain() *ai.Config {
	c := &ai.Config{
		Provider:     m.Provider,
		Model:        m.Model,
		APIKey:       m.APIKey,
		SystemPrompt: m.SystemPrompt,
		Temperature:  m.Temperature,
		MaxTokens:    m.MaxTokens,
		Active:       m.Active,
	}
	m.PopulateTenantAggregateRoot(&c.TenantAggregateRoot)
	return c
}

// FromDomain populates the persistence model from a domain Config.
func (m *AssistantConfigModel) FromDomain(c *ai.Config) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.Provider = c.Provider
	m.Model = c.Model
	m.APIKey = c.APIKey
	m.SystemPrompt = c.SystemPrompt
	m.Temperature = c.Temperature
	m.MaxTokens = c.MaxTokens
	m.Active = c.Active
}

// AssistantConfigModelFromDomain creates a persistence model from a domain Config.
func AssistantConfigModelFromDomain(c *ai.Config) *AssistantConfigModel {
	m := &AssistantConfigModel{}
	m.FromDomain(c)
	return m
}

// ConversationModel is the persistence model for the Conversation aggregate.
type ConversationModel struct {
	TenantAggregateModel
	ClientKey string         `gorm:"type:varchar(255);not null;uniqueIndex:idx_conversations_tenant_key,priority:2"`
	UserID    *uuid.UUID     `gorm:"type:uuid;index"`
	Messages  []MessageModel `gorm:"foreignKey:ConversationID;references:ID"`
}

// TableName returns the table name for GORM
func (ConversationModel) TableName() string {
	return "ai_conversations"
}

// ToDomain converts the persistence model to a domain Conversation.
func (m *ConversationModel) ToDomain() *ai.Conversation {
	c := &ai.Conversation{
		ClientKey: m.ClientKey,
		UserID:    m.UserID,
		Messages:  make([]ai.Message, len(m.Messages)),
	}
	m.PopulateTenantAggregateRoot(&c.TenantAggregateRoot)
	for i, msg := range m.Messages {
		c.Messages[i] = ai.Message{
			ID:        msg.ID,
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		}
	}
	return c
}

// FromDomain populates the persistence model from a domain Conversation.
func (m *ConversationModel) FromDomain(c *ai.Conversation) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.ClientKey = c.ClientKey
	m.UserID = c.UserID
	m.Messages = make([]MessageModel, len(c.Messages))
	for i, msg := range c.Messages {
		m.Messages[i] = MessageModel{
			ID:             msg.ID,
			ConversationID: c.GetID(),
			Role:           msg.Role,
			Content:        msg.Content,
			CreatedAt:      msg.CreatedAt,
		}
	}
}

// ConversationModelFromDomain creates a persistence model from a domain Conversation.
func ConversationModelFromDomain(c *ai.Conversation) *ConversationModel {
	m := &ConversationModel{}
	m.FromDomain(c)
	return m
}

// MessageModel is the persistence model for one chat turn.
type MessageModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index"`
	Role           ai.Role   `gorm:"type:varchar(10);not null"`
	Content        string    `gorm:"type:text;not null"`
	CreatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MessageModel) TableName() string {
	return "ai_messages"
}
