package ai

import (
	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
)

// Provider enumerates the supported LLM backends
type Provider string

const (
	ProviderGroq   Provider = "groq"
	ProviderClaude Provider = "claude"
)

// IsValid checks if the provider is known
func (p Provider) IsValid() bool {
	return p == ProviderGroq || p == ProviderClaude
}

// String returns the string representation of Provider
func (p Provider) String() string {
	return string(p)
}

// Config is a tenant's assistant configuration. At most one config is
// active per tenant; activation deactivates the previous one.
type Config struct {
	shared.TenantAggregateRoot
	Provider     Provider
	Model        string
	APIKey       string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	Active       bool
}

// Config defaults
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1024
)

// NewConfig creates an inactive assistant configuration
func NewConfig(tenantID uuid.UUID, provider Provider, model, apiKey, systemPrompt string) (*Config, error) {
	if !provider.IsValid() {
		return nil, shared.NewDomainError("INVALID_PROVIDER", "Fournisseur d'IA inconnu")
	}
	if model == "" {
		return nil, shared.NewDomainError("INVALID_MODEL", "Modèle requis")
	}
	if apiKey == "" {
		return nil, shared.NewDomainError("INVALID_API_KEY", "Clé API requise")
	}
	return &Config{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Provider:            provider,
		Model:               model,
		APIKey:              apiKey,
		SystemPrompt:        systemPrompt,
		Temperature:         DefaultTemperature,
		MaxTokens:           DefaultMaxTokens,
		Active:              false,
	}, nil
}

// Tune adjusts sampling parameters
func (c *Config) Tune(temperature float64, maxTokens int) error {
	if temperature < 0 || temperature > 2 {
		return shared.NewDomainError("INVALID_TEMPERATURE", "La température doit être comprise entre 0 et 2")
	}
	if maxTokens <= 0 {
		return shared.NewDomainError("INVALID_MAX_TOKENS", "Le nombre maximal de jetons doit être positif")
	}
	c.Temperature = temperature
	c.MaxTokens = maxTokens
	c.Touch()
	c.IncrementVersion()
	return nil
}

// Activate marks the config active. The service layer deactivates the
// previously active config in the same transaction.
func (c *Config) Activate() {
	c.Active = true
	c.Touch()
	c.IncrementVersion()
}

// Deactivate marks the config inactive
func (c *Config) Deactivate() {
	c.Active = false
	c.Touch()
	c.IncrementVersion()
}
