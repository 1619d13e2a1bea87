package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quelyos/backend/internal/infrastructure/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:          "test-secret-key-at-least-32-bytes-long",
		TokenExpiration: time.Hour,
		Issuer:          "quelyos-backend",
	}
}

func testIssueInput() IssueInput {
	return IssueInput{
		TenantID:  uuid.New(),
		UserID:    uuid.New(),
		PartnerID: uuid.New(),
		Email:     "leila@example.tn",
		Roles:     []string{"admin", "stock"},
	}
}

func TestSessionManager_IssueAndVerify(t *testing.T) {
	manager := NewSessionManager(testJWTConfig(), NewInMemoryRevocationList())
	input := testIssueInput()

	token, expiresAt, err := manager.Issue(input)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	session, err := manager.Verify(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, input.TenantID, session.TenantID)
	assert.Equal(t, input.UserID, session.UserID)
	assert.Equal(t, input.PartnerID, session.PartnerID)
	assert.Equal(t, "leila@example.tn", session.Email)
	assert.Equal(t, []string{"admin", "stock"}, session.Roles)
	assert.NotEmpty(t, session.TokenID)
}

func TestSessionManager_Verify_Rejections(t *testing.T) {
	manager := NewSessionManager(testJWTConfig(), NewInMemoryRevocationList())

	t.Run("garbage token", func(t *testing.T) {
		_, err := manager.Verify(context.Background(), "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		otherCfg := testJWTConfig()
		otherCfg.Secret = "another-secret-key-also-32-bytes-xx"
		other := NewSessionManager(otherCfg, nil)

		token, _, err := other.Issue(testIssueInput())
		require.NoError(t, err)

		_, err = manager.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		otherCfg := testJWTConfig()
		otherCfg.Issuer = "someone-else"
		other := NewSessionManager(otherCfg, nil)

		token, _, err := other.Issue(testIssueInput())
		require.NoError(t, err)

		_, err = manager.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		cfg := testJWTConfig()
		cfg.TokenExpiration = -time.Minute
		expired := NewSessionManager(cfg, nil)

		token, _, err := expired.Issue(testIssueInput())
		require.NoError(t, err)

		_, err = manager.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("unsigned token", func(t *testing.T) {
		claims := &SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "quelyos-backend",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			TenantID: uuid.New().String(),
			UserID:   uuid.New().String(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = manager.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestSessionManager_Revoke(t *testing.T) {
	manager := NewSessionManager(testJWTConfig(), NewInMemoryRevocationList())

	token, _, err := manager.Issue(testIssueInput())
	require.NoError(t, err)

	_, err = manager.Verify(context.Background(), token)
	require.NoError(t, err)

	require.NoError(t, manager.Revoke(context.Background(), token))

	_, err = manager.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrRevokedToken)

	t.Run("revoking twice is idempotent", func(t *testing.T) {
		assert.NoError(t, manager.Revoke(context.Background(), token))
	})
}

func TestSession_Identity(t *testing.T) {
	manager := NewSessionManager(testJWTConfig(), nil)
	input := testIssueInput()

	token, _, err := manager.Issue(input)
	require.NoError(t, err)
	session, err := manager.Verify(context.Background(), token)
	require.NoError(t, err)

	id := session.Identity("10.0.0.7")
	assert.True(t, id.IsAuthenticated())
	assert.True(t, id.IsAdmin())
	assert.True(t, id.HasGroup("stock"))
	assert.Equal(t, input.UserID, id.UserID)
	assert.Equal(t, "10.0.0.7", id.IP)
}

func TestInMemoryRevocationList(t *testing.T) {
	list := NewInMemoryRevocationList()
	ctx := context.Background()

	revoked, err := list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, list.Revoke(ctx, "jti-1", time.Minute))
	revoked, err = list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	t.Run("expired entries clear", func(t *testing.T) {
		require.NoError(t, list.Revoke(ctx, "jti-2", time.Nanosecond))
		time.Sleep(10 * time.Millisecond)
		revoked, err := list.IsRevoked(ctx, "jti-2")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("non-positive ttl is a no-op", func(t *testing.T) {
		require.NoError(t, list.Revoke(ctx, "jti-3", 0))
		revoked, err := list.IsRevoked(ctx, "jti-3")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}
