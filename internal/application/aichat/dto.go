package aichat

import (
	"time"

	"github.com/google/uuid"

	"github.com/quelyos/backend/internal/domain/ai"
)

// ChatRequest is one user message to the assistant
type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	ClientKey string `json:"client_key"`
}

// ChatResponse is the assistant's reply
type ChatResponse struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	Answer         string    `json:"answer"`
	Source         string    `json:"source"`
	Disclaimer     bool      `json:"disclaimer,omitempty"`
}

// ConfigRequest creates or updates an assistant configuration
type ConfigRequest struct {
	Provider     ai.Provider `json:"provider" binding:"required"`
	Model        string      `json:"model" binding:"required"`
	APIKey       string      `json:"api_key" binding:"required"`
	SystemPrompt string      `json:"system_prompt"`
	Temperature  *float64    `json:"temperature,omitempty"`
	MaxTokens    *int        `json:"max_tokens,omitempty"`
}

// ConfigResponse is the API view of an assistant configuration. The API
// key is redacted.
type ConfigResponse struct {
	ID           uuid.UUID `json:"id"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	SystemPrompt string    `json:"system_prompt"`
	Temperature  float64   `json:"temperature"`
	MaxTokens    int       `json:"max_tokens"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToConfigResponse converts a config aggregate to its API view
func ToConfigResponse(c *ai.Config) ConfigResponse {
	return ConfigResponse{
		ID:           c.ID,
		Provider:     c.Provider.String(),
		Model:        c.Model,
		SystemPrompt: c.SystemPrompt,
		Temperature:  c.Temperature,
		MaxTokens:    c.MaxTokens,
		Active:       c.Active,
		CreatedAt:    c.CreatedAt,
	}
}
