package content

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/quelyos/backend/internal/domain/content"
	"github.com/quelyos/backend/internal/domain/shared"
)

// Service is the admin and public surface over content entries. Every
// storefront block is an entry of one kind; the admin shell is the same
// CRUD for all of them.
type Service struct {
	entries content.EntryRepository
}

// NewService creates the content service
func NewService(entries content.EntryRepository) *Service {
	return &Service{entries: entries}
}

// List returns the entries of one kind with their total count
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, kind content.Kind, filter shared.Filter) (*EntryListResponse, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Type de contenu inconnu")
	}
	entries, err := s.entries.FindByKind(ctx, tenantID, kind, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.entries.CountByKind(ctx, tenantID, kind, filter)
	if err != nil {
		return nil, err
	}
	items := make([]EntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, ToEntryResponse(&entries[i]))
	}
	return &EntryListResponse{Items: items, Total: total}, nil
}

// ListVisible returns the entries of one kind a storefront should render
// right now, ordered by sequence
func (s *Service) ListVisible(ctx context.Context, tenantID uuid.UUID, kind content.Kind) ([]EntryResponse, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Type de contenu inconnu")
	}
	entries, err := s.entries.FindVisibleByKind(ctx, tenantID, kind)
	if err != nil {
		return nil, err
	}
	items := make([]EntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, ToEntryResponse(&entries[i]))
	}
	return items, nil
}

// GetBySlug returns a visible entry by its slug. Hidden entries answer
// not found rather than leaking their existence.
func (s *Service) GetBySlug(ctx context.Context, tenantID uuid.UUID, kind content.Kind, slug string) (*EntryResponse, error) {
	entry, err := s.entries.FindBySlug(ctx, tenantID, kind, slug)
	if err != nil {
		return nil, err
	}
	if !entry.IsVisible(time.Now()) {
		return nil, shared.ErrNotFound
	}
	resp := ToEntryResponse(entry)
	return &resp, nil
}

// Get returns an entry by ID regardless of visibility
func (s *Service) Get(ctx context.Context, tenantID, entryID uuid.UUID) (*EntryResponse, error) {
	entry, err := s.entries.FindByID(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}
	resp := ToEntryResponse(entry)
	return &resp, nil
}

// Create creates an entry of the given kind
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, kind content.Kind, req CreateEntryRequest) (*EntryResponse, error) {
	entry, err := content.NewEntry(tenantID, kind, req.Name, req.Payload)
	if err != nil {
		return nil, err
	}
	if req.Sequence != nil {
		entry.SetSequence(*req.Sequence)
	}
	if req.StartsAt != nil || req.EndsAt != nil {
		if err := entry.SetWindow(req.StartsAt, req.EndsAt); err != nil {
			return nil, err
		}
	}
	if err := s.entries.Save(ctx, entry); err != nil {
		return nil, err
	}
	resp := ToEntryResponse(entry)
	return &resp, nil
}

// Update replaces the mutable fields of an entry
func (s *Service) Update(ctx context.Context, tenantID, entryID uuid.UUID, req UpdateEntryRequest) (*EntryResponse, error) {
	entry, err := s.entries.FindByID(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}
	if err := entry.Update(req.Name, req.Payload); err != nil {
		return nil, err
	}
	if err := entry.SetWindow(req.StartsAt, req.EndsAt); err != nil {
		return nil, err
	}
	if err := s.entries.Save(ctx, entry); err != nil {
		return nil, err
	}
	resp := ToEntryResponse(entry)
	return &resp, nil
}

// SetActive toggles an entry
func (s *Service) SetActive(ctx context.Context, tenantID, entryID uuid.UUID, active bool) (*EntryResponse, error) {
	entry, err := s.entries.FindByID(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}
	entry.SetActive(active)
	if err := s.entries.Save(ctx, entry); err != nil {
		return nil, err
	}
	resp := ToEntryResponse(entry)
	return &resp, nil
}

// Reorder assigns sequence numbers following the order of the given IDs
func (s *Service) Reorder(ctx context.Context, tenantID uuid.UUID, req ReorderRequest) error {
	for position, entryID := range req.IDs {
		entry, err := s.entries.FindByID(ctx, tenantID, entryID)
		if err != nil {
			return err
		}
		if entry.Sequence == position {
			continue
		}
		entry.SetSequence(position)
		if err := s.entries.Save(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an entry
func (s *Service) Delete(ctx context.Context, tenantID, entryID uuid.UUID) error {
	if _, err := s.entries.FindByID(ctx, tenantID, entryID); err != nil {
		return err
	}
	return s.entries.Delete(ctx, tenantID, entryID)
}
