package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quelyos/backend/internal/domain/ai"
	"github.com/quelyos/backend/internal/domain/shared"
)

func TestClaudeClient_Complete(t *testing.T) {
	t.Run("maps request and concatenates text blocks", func(t *testing.T) {
		var got claudeRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/messages", r.URL.Path)
			assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
			assert.Equal(t, claudeAPIVersion, r.Header.Get("anthropic-version"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

			w.Write([]byte(`{
				"content": [
					{"type": "text", "text": "Oui, ce produit "},
					{"type": "text", "text": "est disponible."}
				],
				"usage": {"input_tokens": 30, "output_tokens": 8}
			}`))
		}))
		defer server.Close()

		client := NewClaudeClient(testAIConfig())
		client.baseURL = server.URL

		resp, err := client.Complete(context.Background(), "sk-ant-test", ai.CompletionRequest{
			Model:        "claude-sonnet-4-20250514",
			SystemPrompt: "Tu es un assistant de boutique.",
			Messages: []ai.Message{
				{Role: ai.RoleUser, Content: "Avez-vous ce produit en stock ?"},
			},
			Temperature: 0.5,
			MaxTokens:   256,
		})
		require.NoError(t, err)

		assert.Equal(t, "Tu es un assistant de boutique.", got.System)
		require.Len(t, got.Messages, 1)
		assert.Equal(t, "user", got.Messages[0].Role)
		assert.Equal(t, 256, got.MaxTokens)

		assert.Equal(t, "Oui, ce produit est disponible.", resp.Content)
		assert.Equal(t, 30, resp.TokensIn)
		assert.Equal(t, 8, resp.TokensOut)
	})

	t.Run("defaults max tokens when unset", func(t *testing.T) {
		var got claudeRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Write([]byte(`{"content":[{"type":"text","text":"ok"}],"usage":{}}`))
		}))
		defer server.Close()

		client := NewClaudeClient(testAIConfig())
		client.baseURL = server.URL

		_, err := client.Complete(context.Background(), "sk-ant-test", ai.CompletionRequest{
			Model:    "claude-sonnet-4-20250514",
			Messages: []ai.Message{{Role: ai.RoleUser, Content: "Bonjour"}},
		})
		require.NoError(t, err)
		assert.Equal(t, claudeDefaultMaxTokens, got.MaxTokens)
	})

	t.Run("upstream error maps to provider down", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewClaudeClient(testAIConfig())
		client.baseURL = server.URL

		_, err := client.Complete(context.Background(), "sk-ant-test", ai.CompletionRequest{
			Model:    "claude-sonnet-4-20250514",
			Messages: []ai.Message{{Role: ai.RoleUser, Content: "Bonjour"}},
		})
		assert.ErrorIs(t, err, shared.ErrProviderDown)
	})

	t.Run("response without text maps to provider down", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"content":[],"usage":{}}`))
		}))
		defer server.Close()

		client := NewClaudeClient(testAIConfig())
		client.baseURL = server.URL

		_, err := client.Complete(context.Background(), "sk-ant-test", ai.CompletionRequest{
			Model:    "claude-sonnet-4-20250514",
			Messages: []ai.Message{{Role: ai.RoleUser, Content: "Bonjour"}},
		})
		assert.ErrorIs(t, err, shared.ErrProviderDown)
	})
}
