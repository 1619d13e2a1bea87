package handler

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	appcontent "github.com/quelyos/backend/internal/application/content"
	"github.com/quelyos/backend/internal/domain/content"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/infrastructure/cache"
	"github.com/quelyos/backend/internal/interfaces/http/dto"
)

// ContentHandler is the admin CRUD shell over storefront content plus
// the public read surface. Public reads are cached; every mutation
// invalidates the tenant's content prefix.
type ContentHandler struct {
	BaseHandler
	service *appcontent.Service
	cache   *cache.Service
}

// NewContentHandler creates a content handler
func NewContentHandler(service *appcontent.Service, cacheSvc *cache.Service) *ContentHandler {
	return &ContentHandler{service: service, cache: cacheSvc}
}

func parseKind(c *gin.Context) (content.Kind, bool) {
	kind := content.Kind(c.Param("kind"))
	if !kind.IsValid() {
		err := shared.NewDomainError("INVALID_KIND", "Type de contenu inconnu")
		c.JSON(dto.GetHTTPStatus(err.Code), dto.NewErrorResponse(err.Code, err.Message))
		return "", false
	}
	return kind, true
}

func (h *ContentHandler) invalidate(c *gin.Context) {
	if h.cache != nil {
		h.cache.Invalidate(c.Request.Context(), cache.Key("content", map[string]string{"tenant": tenantID(c).String()}))
	}
}

// ListVisible returns the active, in-window entries of one kind for the
// storefront
func (h *ContentHandler) ListVisible(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}

	key := cache.Key("content", map[string]string{
		"tenant": tenantID(c).String(),
		"kind":   string(kind),
	})
	if h.cache != nil {
		if raw, hit := h.cache.Get(c.Request.Context(), key); hit {
			var entries []appcontent.EntryResponse
			if err := json.Unmarshal(raw, &entries); err == nil {
				h.Success(c, entries)
				return
			}
		}
	}

	entries, err := h.service.ListVisible(c.Request.Context(), tenantID(c), kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if h.cache != nil {
		if raw, err := json.Marshal(entries); err == nil {
			h.cache.Set(c.Request.Context(), key, raw, cache.TTLSiteConfig)
		}
	}
	h.Success(c, entries)
}

// GetBySlug returns one visible entry by its slug
func (h *ContentHandler) GetBySlug(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}

	entry, err := h.service.GetBySlug(c.Request.Context(), tenantID(c), kind, c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// List returns all entries of one kind for the back office
func (h *ContentHandler) List(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	list, err := h.service.List(c.Request.Context(), tenantID(c), kind, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, list.Items, list.Total, filter.Page, filter.PageSize)
}

// Get returns one entry regardless of visibility
func (h *ContentHandler) Get(c *gin.Context) {
	entryID, ok := parseIDParam(c)
	if !ok {
		return
	}

	entry, err := h.service.Get(c.Request.Context(), tenantID(c), entryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// Create adds an entry of one kind
func (h *ContentHandler) Create(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}

	var req appcontent.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Données invalides")
		return
	}

	entry, err := h.service.Create(c.Request.Context(), tenantID(c), kind, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.invalidate(c)
	h.Created(c, entry)
}

// Update replaces the mutable fields of an entry
func (h *ContentHandler) Update(c *gin.Context) {
	entryID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req appcontent.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Données invalides")
		return
	}

	entry, err := h.service.Update(c.Request.Context(), tenantID(c), entryID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.invalidate(c)
	h.Success(c, entry)
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetActive publishes or hides an entry
func (h *ContentHandler) SetActive(c *gin.Context) {
	entryID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Données invalides")
		return
	}

	entry, err := h.service.SetActive(c.Request.Context(), tenantID(c), entryID, *req.Active)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.invalidate(c)
	h.Success(c, entry)
}

// Reorder assigns new sequence numbers from the given ID order
func (h *ContentHandler) Reorder(c *gin.Context) {
	var req appcontent.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Données invalides")
		return
	}

	if err := h.service.Reorder(c.Request.Context(), tenantID(c), req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.invalidate(c)
	h.NoContent(c)
}

// Delete removes an entry
func (h *ContentHandler) Delete(c *gin.Context) {
	entryID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), tenantID(c), entryID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.invalidate(c)
	h.NoContent(c)
}
