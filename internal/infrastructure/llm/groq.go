// Package llm provides HTTP clients for the chat assistant's upstream
// model providers. Each client maps the neutral completion request onto
// one provider's wire format; provider outages surface as
// shared.ErrProviderDown so callers degrade uniformly.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/quelyos/backend/internal/domain/ai"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/infrastructure/config"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqClient talks to the Groq chat completions API, which follows the
// OpenAI wire format.
type GroqClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGroqClient creates a Groq client with the configured request timeout
func NewGroqClient(cfg config.AIConfig) *GroqClient {
	return &GroqClient{
		baseURL: groqBaseURL,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

// Provider returns the backend identifier
func (c *GroqClient) Provider() ai.Provider {
	return ai.ProviderGroq
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete sends the conversation to Groq and returns the assistant reply
func (c *GroqClient) Complete(ctx context.Context, apiKey string, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	messages := make([]openAIMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		messages = append(messages, openAIMessage{Role: string(m.Role), Content: m.Content})
	}

	body, err := json.Marshal(openAIChatRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("groq: failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("groq: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: groq: %v", shared.ErrProviderDown, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("groq: failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: groq answered %d: %s", shared.ErrProviderDown, resp.StatusCode, respBody)
	}

	var data openAIChatResponse
	if err := json.Unmarshal(respBody, &data); err != nil {
		return nil, fmt.Errorf("groq: failed to parse response: %w", err)
	}
	if len(data.Choices) == 0 {
		return nil, fmt.Errorf("%w: groq returned no choices", shared.ErrProviderDown)
	}

	return &ai.CompletionResponse{
		Content:   data.Choices[0].Message.Content,
		TokensIn:  data.Usage.PromptTokens,
		TokensOut: data.Usage.CompletionTokens,
	}, nil
}

var _ ai.Client = (*GroqClient)(nil)
