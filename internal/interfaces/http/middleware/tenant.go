package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/domain/tenant"
	"github.com/quelyos/backend/internal/infrastructure/cache"
	"github.com/quelyos/backend/internal/infrastructure/logger"
	"github.com/quelyos/backend/internal/interfaces/http/dto"
)

// TenantResolver resolves the tenant for each request: explicit
// X-Tenant-Domain header first, then the request host, then the
// platform default. Resolved tenants are cached.
type TenantResolver struct {
	repo  tenant.Repository
	cache *cache.Service
}

// NewTenantResolver creates the tenant resolution middleware
func NewTenantResolver(repo tenant.Repository, cacheService *cache.Service) *TenantResolver {
	return &TenantResolver{repo: repo, cache: cacheService}
}

// Handler resolves the tenant and stores it on the request context. An
// explicitly named tenant that does not exist ends the request; a host
// that matches nothing falls back to the default tenant.
func (r *TenantResolver) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		resolved, err := r.resolve(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound,
				dto.NewErrorResponse("TENANT_NOT_FOUND", "Boutique introuvable"))
			return
		}

		c.Set(TenantKey, resolved)
		c.Set(TenantIDKey, resolved.ID)

		ctx, _ := logger.WithTenantID(c.Request.Context(), logger.L(c.Request.Context()), resolved.ID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (r *TenantResolver) resolve(c *gin.Context) (*tenant.Tenant, error) {
	if domain := strings.TrimSpace(c.GetHeader("X-Tenant-Domain")); domain != "" {
		return r.byDomain(c.Request.Context(), domain)
	}

	host := c.Request.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host != "" {
		if t, err := r.byDomain(c.Request.Context(), host); err == nil {
			return t, nil
		}
	}

	return r.repo.FindDefault(c.Request.Context())
}

func (r *TenantResolver) byDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	key := cache.Key("tenant", map[string]string{"domain": strings.ToLower(domain)})
	if r.cache != nil {
		if data, ok := r.cache.Get(ctx, key); ok {
			var t tenant.Tenant
			if err := json.Unmarshal(data, &t); err == nil {
				return &t, nil
			}
		}
	}

	t, err := r.repo.FindByDomain(ctx, domain)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrTenantNotFound
		}
		return nil, err
	}

	if r.cache != nil {
		if data, err := json.Marshal(t); err == nil {
			r.cache.Set(ctx, key, data, cache.TTLSiteConfig)
		}
	}
	return t, nil
}

// GetTenant returns the tenant resolved for this request
func GetTenant(c *gin.Context) (*tenant.Tenant, bool) {
	v, ok := c.Get(TenantKey)
	if !ok {
		return nil, false
	}
	t, ok := v.(*tenant.Tenant)
	return t, ok
}
