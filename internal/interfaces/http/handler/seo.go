package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quelyos/backend/internal/application/seo"
	"github.com/quelyos/backend/internal/infrastructure/cache"
)

// SEOHandler serves the crawler-facing surfaces
type SEOHandler struct {
	BaseHandler
	service *seo.Service
	cache   *cache.Service
}

// NewSEOHandler creates an SEO handler
func NewSEOHandler(service *seo.Service, cacheSvc *cache.Service) *SEOHandler {
	return &SEOHandler{service: service, cache: cacheSvc}
}

// Sitemap serves the tenant's sitemap XML
func (h *SEOHandler) Sitemap(c *gin.Context) {
	key := cache.Key("seo", map[string]string{
		"tenant":  tenantID(c).String(),
		"surface": "sitemap",
	})
	if h.cache != nil {
		if body, hit := h.cache.Get(c.Request.Context(), key); hit {
			c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
			return
		}
	}

	body, err := h.service.Sitemap(c.Request.Context(), tenantID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if h.cache != nil {
		h.cache.Set(c.Request.Context(), key, body, cache.TTLSiteConfig)
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}

// Robots serves robots.txt
func (h *SEOHandler) Robots(c *gin.Context) {
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(h.service.Robots()))
}
