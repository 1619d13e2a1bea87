package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGuest(t *testing.T) {
	id := Guest("  Leila@Example.TN ", "41.226.11.8")

	assert.Equal(t, KindGuest, id.Kind)
	assert.Equal(t, "leila@example.tn", id.Email)
	assert.False(t, id.IsAuthenticated())
	assert.False(t, id.IsAdmin())
	assert.Equal(t, "41.226.11.8", id.Key())
}

func TestSession(t *testing.T) {
	userID := uuid.New()
	id := Session(userID, uuid.New(), "sami@example.tn", "10.0.0.5", []string{"Stock", "POS"})

	assert.Equal(t, KindSession, id.Kind)
	assert.True(t, id.IsAuthenticated())
	assert.Equal(t, userID.String(), id.Key())

	t.Run("roles are case insensitive", func(t *testing.T) {
		assert.True(t, id.HasGroup("stock"))
		assert.True(t, id.HasGroup("STOCK"))
		assert.False(t, id.HasGroup("marketing"))
	})

	t.Run("any group", func(t *testing.T) {
		assert.True(t, id.HasAnyGroup("marketing", "pos"))
		assert.False(t, id.HasAnyGroup("marketing", "manager"))
	})

	t.Run("admin role", func(t *testing.T) {
		admin := Session(uuid.New(), uuid.Nil, "admin@example.tn", "10.0.0.6", []string{RoleAdmin})
		assert.True(t, admin.IsAdmin())
		assert.False(t, id.IsAdmin())
	})
}

func TestIdentity_Key_FallsBackToIP(t *testing.T) {
	// a session without a user ID still rate-limits by IP
	id := Session(uuid.Nil, uuid.Nil, "x@example.tn", "10.0.0.7", nil)
	assert.Equal(t, "10.0.0.7", id.Key())
}
