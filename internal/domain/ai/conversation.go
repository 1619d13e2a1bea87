package ai

import (
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
)

// Role identifies the author of a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn
type Message struct {
	ID        uuid.UUID
	Role      Role
	Content   string
	CreatedAt time.Time
}

// historyWindow bounds how many trailing messages are sent to the LLM
const historyWindow = 20

// Maximum accepted length of a user message, in runes
const MaxMessageLength = 2000

// Conversation is a chat session. Anonymous visitors get one keyed by a
// client token, authenticated users by their user ID.
type Conversation struct {
	shared.TenantAggregateRoot
	ClientKey string
	UserID    *uuid.UUID
	Messages  []Message
}

// NewConversation starts a conversation for a client key
func NewConversation(tenantID uuid.UUID, clientKey string, userID *uuid.UUID) (*Conversation, error) {
	if clientKey == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Identifiant de session requis")
	}
	return &Conversation{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ClientKey:           clientKey,
		UserID:              userID,
		Messages:            make([]Message, 0),
	}, nil
}

// AddUserMessage appends a user turn
func (c *Conversation) AddUserMessage(content string) (*Message, error) {
	content = shared.SanitizeString(content, MaxMessageLength)
	if content == "" {
		return nil, shared.NewDomainError("EMPTY_MESSAGE", "Le message ne peut pas être vide")
	}
	return c.append(RoleUser, content), nil
}

// AddAssistantMessage appends an assistant turn
func (c *Conversation) AddAssistantMessage(content string) *Message {
	return c.append(RoleAssistant, content)
}

func (c *Conversation) append(role Role, content string) *Message {
	msg := Message{
		ID:        uuid.New(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	c.Messages = append(c.Messages, msg)
	c.Touch()
	c.IncrementVersion()
	return &c.Messages[len(c.Messages)-1]
}

// History returns the trailing window of messages to feed the LLM
func (c *Conversation) History() []Message {
	if len(c.Messages) <= historyWindow {
		return c.Messages
	}
	return c.Messages[len(c.Messages)-historyWindow:]
}
