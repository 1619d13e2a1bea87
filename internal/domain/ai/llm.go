package ai

import "context"

// CompletionRequest is a provider-agnostic chat completion request
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	Messages     []Message
	Temperature  float64
	MaxTokens    int
}

// CompletionResponse is a provider-agnostic chat completion response
type CompletionResponse struct {
	Content   string
	TokensIn  int
	TokensOut int
}

// Client abstracts an LLM backend. Implementations map the request onto
// the provider's wire format and surface provider failures as
// shared.ErrProviderDown.
type Client interface {
	Provider() Provider
	Complete(ctx context.Context, apiKey string, req CompletionRequest) (*CompletionResponse, error)
}
