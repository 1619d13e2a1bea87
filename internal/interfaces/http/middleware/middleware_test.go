package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/domain/tenant"
	"github.com/quelyos/backend/internal/infrastructure/auth"
	"github.com/quelyos/backend/internal/infrastructure/config"
	"github.com/quelyos/backend/internal/infrastructure/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeTenantRepo struct {
	byDomain map[string]*tenant.Tenant
	def      *tenant.Tenant
}

func (r *fakeTenantRepo) FindByID(_ context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	for _, t := range r.byDomain {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeTenantRepo) FindByDomain(_ context.Context, domain string) (*tenant.Tenant, error) {
	if t, ok := r.byDomain[strings.ToLower(domain)]; ok {
		return t, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeTenantRepo) FindDefault(_ context.Context) (*tenant.Tenant, error) {
	if r.def == nil {
		return nil, shared.ErrNotFound
	}
	return r.def, nil
}

func newTenant(domain string) *tenant.Tenant {
	t := &tenant.Tenant{Domain: domain, Name: domain, Active: true}
	t.ID = uuid.New()
	return t
}

func TestTenantResolver(t *testing.T) {
	shop := newTenant("boutique.tn")
	def := newTenant("default.quelyos.tn")
	repo := &fakeTenantRepo{byDomain: map[string]*tenant.Tenant{"boutique.tn": shop}, def: def}

	newRouter := func() *gin.Engine {
		r := gin.New()
		r.Use(NewTenantResolver(repo, nil).Handler())
		r.GET("/whoami", func(c *gin.Context) {
			resolved, ok := GetTenant(c)
			require.True(t, ok)
			c.String(http.StatusOK, resolved.Domain)
		})
		return r
	}

	t.Run("explicit header wins", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("X-Tenant-Domain", "boutique.tn")
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "boutique.tn", w.Body.String())
	})

	t.Run("unknown explicit tenant is a 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("X-Tenant-Domain", "inconnue.tn")
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "TENANT_NOT_FOUND")
	})

	t.Run("host resolves when no header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Host = "boutique.tn:8080"
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "boutique.tn", w.Body.String())
	})

	t.Run("unknown host falls back to default", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Host = "autre.tn"
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "default.quelyos.tn", w.Body.String())
	})
}

func newSessionRouter(manager *auth.SessionManager, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Session(manager))
	handlers := append(extra, func(c *gin.Context) {
		id := GetIdentity(c)
		c.String(http.StatusOK, string(id.Kind))
	})
	r.GET("/whoami", handlers...)
	return r
}

func TestSession(t *testing.T) {
	manager := auth.NewSessionManager(config.JWTConfig{
		Secret:          "test-secret-key-at-least-32-bytes-long",
		TokenExpiration: time.Hour,
		Issuer:          "quelyos-backend",
	}, nil)

	issue := func(t *testing.T, roles ...string) string {
		token, _, err := manager.Issue(auth.IssueInput{
			TenantID: uuid.New(),
			UserID:   uuid.New(),
			Email:    "sami@example.tn",
			Roles:    roles,
		})
		require.NoError(t, err)
		return token
	}

	t.Run("no token yields guest", func(t *testing.T) {
		w := httptest.NewRecorder()
		newSessionRouter(manager).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "guest", w.Body.String())
	})

	t.Run("valid token yields session identity", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("X-Session-Id", issue(t, "admin"))
		newSessionRouter(manager).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "session", w.Body.String())
	})

	t.Run("invalid token is a 401", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("X-Session-Id", "garbage")
		newSessionRouter(manager).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "AUTH_REQUIRED")
	})

	t.Run("RequireAdmin rejects guest with 401", func(t *testing.T) {
		w := httptest.NewRecorder()
		newSessionRouter(manager, RequireAdmin()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("RequireAdmin rejects non-admin with 403", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("X-Session-Id", issue(t, "marketing"))
		newSessionRouter(manager, RequireAdmin()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "FORBIDDEN")
	})

	t.Run("RequireAnyGroup passes matching role", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("X-Session-Id", issue(t, "stock"))
		newSessionRouter(manager, RequireAnyGroup("stock", "pos")).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("admin passes any group check", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("X-Session-Id", issue(t, "admin"))
		newSessionRouter(manager, RequireAnyGroup("stock")).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestCORS(t *testing.T) {
	cfg := CORSConfig{
		AllowOrigins: []string{"https://boutique.tn"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-Session-Id"},
	}

	newRouter := func() *gin.Engine {
		r := gin.New()
		r.Use(CORS(cfg))
		r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
		return r
	}

	t.Run("preflight answers 204 with negotiated headers", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "https://boutique.tn")
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://boutique.tn", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("whitelisted origin gets CORS headers", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://boutique.tn")
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://boutique.tn", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("foreign origin gets none", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://evil.example")
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(16))
	r.POST("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("small body passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("ok")))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("oversized body is a 413", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64))))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "REQUEST_TOO_LARGE")
	})
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewLimiter(nil, nil)
	class := ratelimit.Class{Name: "public_read", PerMinute: 2}

	r := gin.New()
	r.Use(RateLimit(limiter, class))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
	assert.Contains(t, w.Body.String(), "retry_after")
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	t.Run("generates one when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())
	})

	t.Run("honors caller-supplied id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		r.ServeHTTP(w, req)
		assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	})
}
