package content

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/quelyos/backend/internal/domain/content"
)

// CreateEntryRequest creates a content entry of one kind
type CreateEntryRequest struct {
	Name     string          `json:"name" binding:"required"`
	Payload  json.RawMessage `json:"payload"`
	Sequence *int            `json:"sequence,omitempty"`
	StartsAt *time.Time      `json:"starts_at,omitempty"`
	EndsAt   *time.Time      `json:"ends_at,omitempty"`
}

// UpdateEntryRequest replaces the mutable fields of an entry
type UpdateEntryRequest struct {
	Name     string          `json:"name" binding:"required"`
	Payload  json.RawMessage `json:"payload"`
	StartsAt *time.Time      `json:"starts_at,omitempty"`
	EndsAt   *time.Time      `json:"ends_at,omitempty"`
}

// ReorderRequest assigns new sequence numbers. IDs are ordered; the
// first gets sequence 0.
type ReorderRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required"`
}

// EntryResponse is the API view of a content entry
type EntryResponse struct {
	ID        uuid.UUID       `json:"id"`
	Kind      string          `json:"kind"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Sequence  int             `json:"sequence"`
	Active    bool            `json:"active"`
	StartsAt  *time.Time      `json:"starts_at,omitempty"`
	EndsAt    *time.Time      `json:"ends_at,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// EntryListResponse is a paged list of entries of one kind
type EntryListResponse struct {
	Items []EntryResponse `json:"items"`
	Total int64           `json:"total"`
}

// ToEntryResponse converts an entry to its API view
func ToEntryResponse(e *content.Entry) EntryResponse {
	return EntryResponse{
		ID:        e.ID,
		Kind:      e.Kind.String(),
		Name:      e.Name,
		Slug:      e.Slug,
		Sequence:  e.Sequence,
		Active:    e.Active,
		StartsAt:  e.StartsAt,
		EndsAt:    e.EndsAt,
		Payload:   e.Payload,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
