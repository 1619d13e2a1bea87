package ai

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "deja", Normalize("Déjà"))
	assert.Equal(t, "livraison a domicile", Normalize("Livraison À Domicile"))
	assert.Equal(t, "tarifs", Normalize("TARIFS"))
}

func TestMatchFAQ(t *testing.T) {
	items := []FAQItem{
		{
			Question: "Quels sont vos tarifs ?",
			Answer:   "Nos tarifs démarrent à 10 TND.",
			Keywords: []string{"tarifs", "prix"},
		},
		{
			Question: "Quels sont les délais de livraison ?",
			Answer:   "Livraison en 2 à 5 jours ouvrés.",
			Keywords: []string{"livraison", "délais"},
		},
	}

	t.Run("one exact keyword out of two", func(t *testing.T) {
		// "tarifs" exact, "prix" absent: (1 + 0) / 2 = 0.5
		result := MatchFAQ("quels sont vos tarifs ?", items)
		require.InDelta(t, 0.5, result.Score, 1e-9)
		assert.False(t, result.Direct)
		assert.True(t, result.WithDisclaimer)
		assert.Equal(t, "Nos tarifs démarrent à 10 TND.", result.Item.Answer)
	})

	t.Run("all keywords exact gives direct answer", func(t *testing.T) {
		result := MatchFAQ("vos prix et tarifs svp", items)
		require.InDelta(t, 1.0, result.Score, 1e-9)
		assert.True(t, result.Direct)
		assert.False(t, result.WithDisclaimer)
	})

	t.Run("diacritics do not matter", func(t *testing.T) {
		result := MatchFAQ("delais de LIVRAISON", items)
		require.InDelta(t, 1.0, result.Score, 1e-9)
		assert.True(t, result.Direct)
	})

	t.Run("partial match scores 0.7", func(t *testing.T) {
		single := []FAQItem{{Question: "Livraison", Answer: "ok", Keywords: []string{"livraison"}}}
		result := MatchFAQ("info livraisons express", single)
		require.InDelta(t, 0.7, result.Score, 1e-9)
		assert.True(t, result.WithDisclaimer)
	})

	t.Run("no overlap falls through to the LLM", func(t *testing.T) {
		result := MatchFAQ("où est ma commande ?", items)
		assert.False(t, result.Matched())
	})

	t.Run("keywords fall back to question words", func(t *testing.T) {
		noKeywords := []FAQItem{{Question: "horaires ouverture", Answer: "9h-18h"}}
		result := MatchFAQ("horaires ouverture magasin", noKeywords)
		require.InDelta(t, 1.0, result.Score, 1e-9)
		assert.True(t, result.Direct)
	})

	t.Run("empty catalog never matches", func(t *testing.T) {
		result := MatchFAQ("bonjour", nil)
		assert.False(t, result.Matched())
		assert.Zero(t, result.Score)
	})
}

func TestConversationHistory(t *testing.T) {
	c, err := NewConversation(uuid.New(), "visitor-1", nil)
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		_, err := c.AddUserMessage("message")
		require.NoError(t, err)
	}
	assert.Len(t, c.History(), historyWindow)
	assert.Len(t, c.Messages, 30)
}

func TestConversationMessages(t *testing.T) {
	c, err := NewConversation(uuid.New(), "visitor-2", nil)
	require.NoError(t, err)

	t.Run("empty message rejected", func(t *testing.T) {
		_, err := c.AddUserMessage("   \n\t ")
		assert.Error(t, err)
	})

	t.Run("turns alternate as appended", func(t *testing.T) {
		_, err := c.AddUserMessage("Bonjour")
		require.NoError(t, err)
		c.AddAssistantMessage("Bonjour, comment puis-je vous aider ?")
		require.Len(t, c.Messages, 2)
		assert.Equal(t, RoleUser, c.Messages[0].Role)
		assert.Equal(t, RoleAssistant, c.Messages[1].Role)
	})
}
