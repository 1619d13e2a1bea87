package stock

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quelyos/backend/internal/domain/shared"
)

func TestNewScrap(t *testing.T) {
	tenantID := uuid.New()
	source := uuid.New()
	scrapLoc := uuid.New()

	t.Run("creates draft scrap", func(t *testing.T) {
		s, err := NewScrap(tenantID, uuid.New(), source, scrapLoc, decimal.NewFromInt(3), "casse")
		require.NoError(t, err)
		assert.Equal(t, ScrapStatusDraft, s.Status)
		assert.True(t, s.CanDelete())
	})

	t.Run("rejects identical source and scrap locations", func(t *testing.T) {
		_, err := NewScrap(tenantID, uuid.New(), source, source, decimal.NewFromInt(1), "")
		assert.Error(t, err)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewScrap(tenantID, uuid.New(), source, scrapLoc, decimal.Zero, "")
		assert.Error(t, err)
	})
}

func TestScrapValidate(t *testing.T) {
	tenantID := uuid.New()
	source := uuid.New()
	scrapLoc := uuid.New()
	validator := uuid.New()

	t.Run("issues movement toward scrap location", func(t *testing.T) {
		s, _ := NewScrap(tenantID, uuid.New(), source, scrapLoc, decimal.NewFromInt(3), "périmé")
		movement, err := s.Validate(validator, decimal.NewFromInt(10))
		require.NoError(t, err)
		assert.Equal(t, ScrapStatusDone, s.Status)
		assert.NotNil(t, s.ValidatedAt)
		require.NotNil(t, s.ValidatedByID)
		assert.Equal(t, validator, *s.ValidatedByID)

		assert.Equal(t, MovementKindScrap, movement.Kind)
		assert.Equal(t, source, movement.SourceLocation)
		assert.Equal(t, scrapLoc, movement.DestLocation)
		assert.True(t, movement.Quantity.Equal(decimal.NewFromInt(3)))
		assert.False(t, s.CanDelete())
	})

	t.Run("rejects when on-hand does not cover quantity", func(t *testing.T) {
		s, _ := NewScrap(tenantID, uuid.New(), source, scrapLoc, decimal.NewFromInt(5), "")
		_, err := s.Validate(validator, decimal.NewFromInt(4))
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, ScrapStatusDraft, s.Status)
	})

	t.Run("done is terminal", func(t *testing.T) {
		s, _ := NewScrap(tenantID, uuid.New(), source, scrapLoc, decimal.NewFromInt(1), "")
		_, err := s.Validate(validator, decimal.NewFromInt(1))
		require.NoError(t, err)
		_, err = s.Validate(validator, decimal.NewFromInt(1))
		assert.Error(t, err)
	})
}
