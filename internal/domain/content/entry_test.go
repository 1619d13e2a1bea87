package content

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates active entry with slug", func(t *testing.T) {
		e, err := NewEntry(tenantID, KindPage, "Livraison et retours", nil)
		require.NoError(t, err)
		assert.True(t, e.Active)
		assert.Equal(t, "livraison-et-retours", e.Slug)
		assert.Equal(t, 0, e.Sequence)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, err := NewEntry(tenantID, Kind("widget"), "x", nil)
		assert.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewEntry(tenantID, KindMenu, "   ", nil)
		assert.Error(t, err)
	})

	t.Run("rejects malformed payload", func(t *testing.T) {
		_, err := NewEntry(tenantID, KindFAQ, "Tarifs", json.RawMessage(`{"question":`))
		assert.Error(t, err)
	})
}

func TestEntryVisibility(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	newEntry := func(t *testing.T) *Entry {
		e, err := NewEntry(uuid.New(), KindBanner, "Soldes", nil)
		require.NoError(t, err)
		return e
	}

	t.Run("active without window is visible", func(t *testing.T) {
		assert.True(t, newEntry(t).IsVisible(now))
	})

	t.Run("inactive is never visible", func(t *testing.T) {
		e := newEntry(t)
		e.SetActive(false)
		assert.False(t, e.IsVisible(now))
	})

	t.Run("before start is hidden", func(t *testing.T) {
		e := newEntry(t)
		require.NoError(t, e.SetWindow(&future, nil))
		assert.False(t, e.IsVisible(now))
	})

	t.Run("past end is hidden, end exclusive", func(t *testing.T) {
		e := newEntry(t)
		require.NoError(t, e.SetWindow(nil, &now))
		assert.False(t, e.IsVisible(now))
		assert.True(t, e.IsVisible(past))
	})

	t.Run("inside window is visible", func(t *testing.T) {
		e := newEntry(t)
		require.NoError(t, e.SetWindow(&past, &future))
		assert.True(t, e.IsVisible(now))
	})

	t.Run("inverted window rejected", func(t *testing.T) {
		e := newEntry(t)
		assert.Error(t, e.SetWindow(&future, &past))
	})
}

func TestEntryPayload(t *testing.T) {
	t.Run("decodes kind-specific payload", func(t *testing.T) {
		raw := json.RawMessage(`{"question":"Quels sont vos tarifs ?","answer":"Nos tarifs démarrent à 10 TND.","keywords":["tarifs","prix"]}`)
		e, err := NewEntry(uuid.New(), KindFAQ, "Tarifs", raw)
		require.NoError(t, err)

		var payload FAQPayload
		require.NoError(t, e.DecodePayload(&payload))
		assert.Equal(t, "Quels sont vos tarifs ?", payload.Question)
		assert.Equal(t, []string{"tarifs", "prix"}, payload.Keywords)
	})

	t.Run("update replaces payload and slug", func(t *testing.T) {
		e, err := NewEntry(uuid.New(), KindPage, "Ancien titre", nil)
		require.NoError(t, err)
		require.NoError(t, e.Update("Nouveau titre", json.RawMessage(`{"title":"Nouveau"}`)))
		assert.Equal(t, "nouveau-titre", e.Slug)
	})
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Livraison et retours":  "livraison-et-retours",
		"  Promo   d'été !  ":   "promo-d-t",
		"FAQ":                   "faq",
		"Page 404":              "page-404",
	}
	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), "input %q", input)
	}
}
