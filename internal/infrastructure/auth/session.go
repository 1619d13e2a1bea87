// Package auth issues and verifies the signed session tokens carried in
// the X-Session-Id header by back-office callers.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/quelyos/backend/internal/domain/identity"
	"github.com/quelyos/backend/internal/infrastructure/config"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrExpiredToken = errors.New("session token has expired")
	ErrRevokedToken = errors.New("session token has been revoked")
)

// SessionClaims are the JWT claims carried by a session token
type SessionClaims struct {
	jwt.RegisteredClaims
	TenantID  string   `json:"tenant_id"`
	UserID    string   `json:"user_id"`
	PartnerID string   `json:"partner_id,omitempty"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles,omitempty"`
}

// Session is a verified session, ready to become a request identity
type Session struct {
	TokenID   string
	TenantID  uuid.UUID
	UserID    uuid.UUID
	PartnerID uuid.UUID
	Email     string
	Roles     []string
	ExpiresAt time.Time
}

// Identity converts the session into a caller identity
func (s Session) Identity(ip string) identity.Identity {
	return identity.Session(s.UserID, s.PartnerID, s.Email, ip, s.Roles)
}

// SessionManager signs and verifies session tokens with HMAC-SHA256.
// Verification also consults the revocation list so logout takes effect
// before the token expires.
type SessionManager struct {
	secret     []byte
	expiration time.Duration
	issuer     string
	revoked    RevocationList
}

// NewSessionManager creates a session manager from the JWT settings
func NewSessionManager(cfg config.JWTConfig, revoked RevocationList) *SessionManager {
	return &SessionManager{
		secret:     []byte(cfg.Secret),
		expiration: cfg.TokenExpiration,
		issuer:     cfg.Issuer,
		revoked:    revoked,
	}
}

// IssueInput describes the user a session token is issued for
type IssueInput struct {
	TenantID  uuid.UUID
	UserID    uuid.UUID
	PartnerID uuid.UUID
	Email     string
	Roles     []string
}

// Issue signs a new session token
func (m *SessionManager) Issue(input IssueInput) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.expiration)

	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    m.issuer,
			Subject:   input.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		TenantID: input.TenantID.String(),
		UserID:   input.UserID.String(),
		Email:    input.Email,
		Roles:    input.Roles,
	}
	if input.PartnerID != uuid.Nil {
		claims.PartnerID = input.PartnerID.String()
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify parses and validates a session token
func (m *SessionManager) Verify(ctx context.Context, tokenString string) (*Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	var partnerID uuid.UUID
	if claims.PartnerID != "" {
		if partnerID, err = uuid.Parse(claims.PartnerID); err != nil {
			return nil, ErrInvalidToken
		}
	}

	if m.revoked != nil {
		revoked, err := m.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrRevokedToken
		}
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return &Session{
		TokenID:   claims.ID,
		TenantID:  tenantID,
		UserID:    userID,
		PartnerID: partnerID,
		Email:     claims.Email,
		Roles:     claims.Roles,
		ExpiresAt: expiresAt,
	}, nil
}

// Revoke invalidates a session token for its remaining lifetime. A
// token that no longer verifies needs no revocation.
func (m *SessionManager) Revoke(ctx context.Context, tokenString string) error {
	if m.revoked == nil {
		return nil
	}
	session, err := m.Verify(ctx, tokenString)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) || errors.Is(err, ErrRevokedToken) {
			return nil
		}
		return err
	}
	return m.revoked.Revoke(ctx, session.TokenID, time.Until(session.ExpiresAt))
}
