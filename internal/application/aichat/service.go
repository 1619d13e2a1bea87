package aichat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quelyos/backend/internal/domain/ai"
	"github.com/quelyos/backend/internal/domain/content"
	"github.com/quelyos/backend/internal/domain/identity"
	"github.com/quelyos/backend/internal/domain/shared"
)

// Disclaimer prepended to FAQ answers served below the direct-match
// confidence threshold
const Disclaimer = "Je ne suis pas certain d'avoir bien compris votre question, mais voici ce qui pourrait vous aider :"

// Service orchestrates the chat pipeline: sanitize, try the FAQ, fall
// back to the configured LLM, and account for every turn.
type Service struct {
	configs       ai.ConfigRepository
	conversations ai.ConversationRepository
	usage         ai.UsageRepository
	entries       content.EntryRepository
	clients       map[ai.Provider]ai.Client
}

// NewService creates the chat application service
func NewService(
	configs ai.ConfigRepository,
	conversations ai.ConversationRepository,
	usage ai.UsageRepository,
	entries content.EntryRepository,
	clients ...ai.Client,
) *Service {
	byProvider := make(map[ai.Provider]ai.Client, len(clients))
	for _, c := range clients {
		byProvider[c.Provider()] = c
	}
	return &Service{
		configs:       configs,
		conversations: conversations,
		usage:         usage,
		entries:       entries,
		clients:       byProvider,
	}
}

// Chat handles one user message and returns the assistant's answer
func (s *Service) Chat(ctx context.Context, tenantID uuid.UUID, id identity.Identity, req ChatRequest) (*ChatResponse, error) {
	started := time.Now()

	message := shared.SanitizeString(req.Message, ai.MaxMessageLength)
	if message == "" {
		return nil, shared.NewDomainError("EMPTY_MESSAGE", "Le message ne peut pas être vide")
	}
	if shared.DetectInjection(message) {
		return nil, shared.NewDomainError("MESSAGE_REJECTED", "Le message contient des caractères non autorisés")
	}

	conv, err := s.resolveConversation(ctx, tenantID, id, req.ClientKey)
	if err != nil {
		return nil, err
	}
	if _, err := conv.AddUserMessage(message); err != nil {
		return nil, err
	}

	// FAQ first: a confident match answers without touching the LLM
	faqs, err := s.loadFAQ(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	match := ai.MatchFAQ(message, faqs)
	if match.Matched() {
		answer := match.Item.Answer
		if match.WithDisclaimer {
			answer = Disclaimer + "\n\n" + answer
		}
		conv.AddAssistantMessage(answer)
		if err := s.conversations.Save(ctx, conv); err != nil {
			return nil, err
		}
		record := ai.NewFAQUsage(tenantID, conv.ID, time.Since(started).Milliseconds())
		if err := s.usage.Append(ctx, record); err != nil {
			return nil, err
		}
		return &ChatResponse{
			ConversationID: conv.ID,
			Answer:         answer,
			Source:         string(ai.AnswerSourceFAQ),
			Disclaimer:     match.WithDisclaimer,
		}, nil
	}

	config, err := s.configs.FindActive(ctx, tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ASSISTANT_NOT_CONFIGURED", "L'assistant n'est pas configuré pour cette boutique")
		}
		return nil, err
	}
	client, ok := s.clients[config.Provider]
	if !ok {
		return nil, shared.NewDomainError("ASSISTANT_NOT_CONFIGURED", "L'assistant n'est pas configuré pour cette boutique")
	}

	completion, err := client.Complete(ctx, config.APIKey, ai.CompletionRequest{
		Model:        config.Model,
		SystemPrompt: config.SystemPrompt,
		Messages:     conv.History(),
		Temperature:  config.Temperature,
		MaxTokens:    config.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	conv.AddAssistantMessage(completion.Content)
	if err := s.conversations.Save(ctx, conv); err != nil {
		return nil, err
	}
	record := ai.NewLLMUsage(tenantID, conv.ID, config.Provider, config.Model,
		completion.TokensIn, completion.TokensOut, time.Since(started).Milliseconds())
	if err := s.usage.Append(ctx, record); err != nil {
		return nil, err
	}

	return &ChatResponse{
		ConversationID: conv.ID,
		Answer:         completion.Content,
		Source:         string(ai.AnswerSourceLLM),
	}, nil
}

// resolveConversation finds or starts the caller's conversation.
// Authenticated users get one keyed by their user ID, visitors one
// keyed by their client token.
func (s *Service) resolveConversation(ctx context.Context, tenantID uuid.UUID, id identity.Identity, clientKey string) (*ai.Conversation, error) {
	var userID *uuid.UUID
	if id.IsAuthenticated() {
		uid := id.UserID
		userID = &uid
		clientKey = fmt.Sprintf("user:%s", uid)
	}
	if clientKey == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Identifiant de session requis")
	}

	conv, err := s.conversations.FindByClientKey(ctx, tenantID, clientKey)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	return ai.NewConversation(tenantID, clientKey, userID)
}

// loadFAQ collects the tenant's visible FAQ entries as matcher items
func (s *Service) loadFAQ(ctx context.Context, tenantID uuid.UUID) ([]ai.FAQItem, error) {
	entries, err := s.entries.FindVisibleByKind(ctx, tenantID, content.KindFAQ)
	if err != nil {
		return nil, err
	}
	items := make([]ai.FAQItem, 0, len(entries))
	for i := range entries {
		var payload content.FAQPayload
		if err := entries[i].DecodePayload(&payload); err != nil {
			continue
		}
		items = append(items, ai.FAQItem{
			Question: payload.Question,
			Answer:   payload.Answer,
			Keywords: payload.Keywords,
		})
	}
	return items, nil
}

// ConfigureAssistant creates a new assistant configuration and activates
// it, deactivating any previous one
func (s *Service) ConfigureAssistant(ctx context.Context, tenantID uuid.UUID, req ConfigRequest) (*ConfigResponse, error) {
	config, err := ai.NewConfig(tenantID, req.Provider, req.Model, req.APIKey, req.SystemPrompt)
	if err != nil {
		return nil, err
	}
	if req.Temperature != nil || req.MaxTokens != nil {
		temperature := config.Temperature
		maxTokens := config.MaxTokens
		if req.Temperature != nil {
			temperature = *req.Temperature
		}
		if req.MaxTokens != nil {
			maxTokens = *req.MaxTokens
		}
		if err := config.Tune(temperature, maxTokens); err != nil {
			return nil, err
		}
	}

	if err := s.configs.DeactivateAll(ctx, tenantID); err != nil {
		return nil, err
	}
	config.Activate()
	if err := s.configs.Save(ctx, config); err != nil {
		return nil, err
	}
	resp := ToConfigResponse(config)
	return &resp, nil
}

// GetActiveConfig returns the tenant's active assistant configuration
func (s *Service) GetActiveConfig(ctx context.Context, tenantID uuid.UUID) (*ConfigResponse, error) {
	config, err := s.configs.FindActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	resp := ToConfigResponse(config)
	return &resp, nil
}

// PurgeIdleConversations deletes conversations untouched since the
// cutoff. The scheduler calls this periodically.
func (s *Service) PurgeIdleConversations(ctx context.Context, idleFor time.Duration) (int64, error) {
	return s.conversations.DeleteIdleSince(ctx, time.Now().Add(-idleFor))
}
