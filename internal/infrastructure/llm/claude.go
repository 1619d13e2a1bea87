package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/quelyos/backend/internal/domain/ai"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/infrastructure/config"
)

const (
	claudeBaseURL    = "https://api.anthropic.com"
	claudeAPIVersion = "2023-06-01"

	// the messages endpoint requires max_tokens; used when the
	// assistant config leaves it unset
	claudeDefaultMaxTokens = 1024
)

// ClaudeClient talks to the Anthropic messages API
type ClaudeClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewClaudeClient creates a Claude client with the configured request timeout
func NewClaudeClient(cfg config.AIConfig) *ClaudeClient {
	return &ClaudeClient{
		baseURL: claudeBaseURL,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

// Provider returns the backend identifier
func (c *ClaudeClient) Provider() ai.Provider {
	return ai.ProviderClaude
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model       string          `json:"model"`
	System      string          `json:"system,omitempty"`
	Messages    []claudeMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Complete sends the conversation to Anthropic and returns the
// assistant reply
func (c *ClaudeClient) Complete(ctx context.Context, apiKey string, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	messages := make([]claudeMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, claudeMessage{Role: string(m.Role), Content: m.Content})
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = claudeDefaultMaxTokens
	}

	body, err := json.Marshal(claudeRequest{
		Model:       req.Model,
		System:      req.SystemPrompt,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("claude: failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("claude: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", apiKey)
	httpReq.Header.Set("anthropic-version", claudeAPIVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: claude: %v", shared.ErrProviderDown, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("claude: failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: claude answered %d: %s", shared.ErrProviderDown, resp.StatusCode, respBody)
	}

	var data claudeResponse
	if err := json.Unmarshal(respBody, &data); err != nil {
		return nil, fmt.Errorf("claude: failed to parse response: %w", err)
	}

	var sb strings.Builder
	for _, block := range data.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("%w: claude returned no text content", shared.ErrProviderDown)
	}

	return &ai.CompletionResponse{
		Content:   sb.String(),
		TokensIn:  data.Usage.InputTokens,
		TokensOut: data.Usage.OutputTokens,
	}, nil
}

var _ ai.Client = (*ClaudeClient)(nil)
