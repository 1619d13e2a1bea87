package content

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quelyos/backend/internal/domain/content"
	"github.com/quelyos/backend/internal/domain/shared"
)

type fakeEntryRepo struct {
	entries map[uuid.UUID]*content.Entry
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: make(map[uuid.UUID]*content.Entry)}
}

func (r *fakeEntryRepo) FindByID(_ context.Context, _, id uuid.UUID) (*content.Entry, error) {
	if e, ok := r.entries[id]; ok {
		return e, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeEntryRepo) FindBySlug(_ context.Context, _ uuid.UUID, kind content.Kind, slug string) (*content.Entry, error) {
	for _, e := range r.entries {
		if e.Kind == kind && e.Slug == slug {
			return e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeEntryRepo) FindByKind(_ context.Context, _ uuid.UUID, kind content.Kind, _ shared.Filter) ([]content.Entry, error) {
	var out []content.Entry
	for _, e := range r.entries {
		if e.Kind == kind {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) FindVisibleByKind(_ context.Context, _ uuid.UUID, kind content.Kind) ([]content.Entry, error) {
	var out []content.Entry
	now := time.Now()
	for _, e := range r.entries {
		if e.Kind == kind && e.IsVisible(now) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) CountByKind(_ context.Context, _ uuid.UUID, kind content.Kind, _ shared.Filter) (int64, error) {
	var n int64
	for _, e := range r.entries {
		if e.Kind == kind {
			n++
		}
	}
	return n, nil
}

func (r *fakeEntryRepo) Save(_ context.Context, e *content.Entry) error {
	r.entries[e.ID] = e
	return nil
}

func (r *fakeEntryRepo) Delete(_ context.Context, _, id uuid.UUID) error {
	delete(r.entries, id)
	return nil
}

func pagePayload(t *testing.T, title, body string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(content.PagePayload{Title: title, BodyHTML: body})
	require.NoError(t, err)
	return raw
}

func TestCreateAndListEntries(t *testing.T) {
	repo := newFakeEntryRepo()
	service := NewService(repo)
	tenantID := uuid.New()

	created, err := service.Create(context.Background(), tenantID, content.KindPage, CreateEntryRequest{
		Name:    "Conditions de vente",
		Payload: pagePayload(t, "Conditions de vente", "..."),
	})
	require.NoError(t, err)
	assert.Equal(t, "conditions-de-vente", created.Slug)
	assert.True(t, created.Active)

	list, err := service.List(context.Background(), tenantID, content.KindPage, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
	require.Len(t, list.Items, 1)

	_, err = service.List(context.Background(), tenantID, content.Kind("gadget"), shared.DefaultFilter())
	require.Error(t, err)
}

func TestGetBySlugHidesInactive(t *testing.T) {
	repo := newFakeEntryRepo()
	service := NewService(repo)
	tenantID := uuid.New()

	created, err := service.Create(context.Background(), tenantID, content.KindPage, CreateEntryRequest{
		Name:    "Livraison",
		Payload: pagePayload(t, "Livraison", "..."),
	})
	require.NoError(t, err)

	found, err := service.GetBySlug(context.Background(), tenantID, content.KindPage, "livraison")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = service.SetActive(context.Background(), tenantID, created.ID, false)
	require.NoError(t, err)

	_, err = service.GetBySlug(context.Background(), tenantID, content.KindPage, "livraison")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestVisibilityWindow(t *testing.T) {
	repo := newFakeEntryRepo()
	service := NewService(repo)
	tenantID := uuid.New()

	past := time.Now().Add(-48 * time.Hour)
	ended := time.Now().Add(-time.Hour)
	future := time.Now().Add(24 * time.Hour)

	_, err := service.Create(context.Background(), tenantID, content.KindFlashSale, CreateEntryRequest{
		Name:     "Vente flash terminée",
		StartsAt: &past,
		EndsAt:   &ended,
	})
	require.NoError(t, err)

	_, err = service.Create(context.Background(), tenantID, content.KindFlashSale, CreateEntryRequest{
		Name:     "Vente flash en cours",
		StartsAt: &past,
		EndsAt:   &future,
	})
	require.NoError(t, err)

	visible, err := service.ListVisible(context.Background(), tenantID, content.KindFlashSale)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Vente flash en cours", visible[0].Name)

	all, err := service.List(context.Background(), tenantID, content.KindFlashSale, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
}

func TestCreateRejectsInvertedWindow(t *testing.T) {
	service := NewService(newFakeEntryRepo())
	start := time.Now().Add(24 * time.Hour)
	end := time.Now()

	_, err := service.Create(context.Background(), uuid.New(), content.KindSlide, CreateEntryRequest{
		Name:     "Accueil",
		StartsAt: &start,
		EndsAt:   &end,
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_WINDOW", domainErr.Code)
}

func TestUpdateEntry(t *testing.T) {
	repo := newFakeEntryRepo()
	service := NewService(repo)
	tenantID := uuid.New()

	created, err := service.Create(context.Background(), tenantID, content.KindPage, CreateEntryRequest{
		Name:    "A propos",
		Payload: pagePayload(t, "A propos", "ancienne version"),
	})
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), tenantID, created.ID, UpdateEntryRequest{
		Name:    "Qui sommes-nous",
		Payload: pagePayload(t, "Qui sommes-nous", "nouvelle version"),
	})
	require.NoError(t, err)
	assert.Equal(t, "qui-sommes-nous", updated.Slug)

	_, err = service.Update(context.Background(), tenantID, created.ID, UpdateEntryRequest{
		Name:    "Oops",
		Payload: json.RawMessage(`{invalid`),
	})
	require.Error(t, err)
}

func TestReorder(t *testing.T) {
	repo := newFakeEntryRepo()
	service := NewService(repo)
	tenantID := uuid.New()

	first, err := service.Create(context.Background(), tenantID, content.KindSlide, CreateEntryRequest{Name: "Slide un"})
	require.NoError(t, err)
	second, err := service.Create(context.Background(), tenantID, content.KindSlide, CreateEntryRequest{Name: "Slide deux"})
	require.NoError(t, err)

	require.NoError(t, service.Reorder(context.Background(), tenantID, ReorderRequest{
		IDs: []uuid.UUID{second.ID, first.ID},
	}))

	reordered, err := service.Get(context.Background(), tenantID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reordered.Sequence)

	moved, err := service.Get(context.Background(), tenantID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, moved.Sequence)
}

func TestDeleteEntry(t *testing.T) {
	repo := newFakeEntryRepo()
	service := NewService(repo)
	tenantID := uuid.New()

	created, err := service.Create(context.Background(), tenantID, content.KindBanner, CreateEntryRequest{Name: "Promo rentrée"})
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), tenantID, created.ID))
	err = service.Delete(context.Background(), tenantID, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
