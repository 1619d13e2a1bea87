package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/quelyos/backend/internal/application/aichat"
)

// ChatHandler exposes the storefront assistant and its admin configuration
type ChatHandler struct {
	BaseHandler
	service *aichat.Service
}

// NewChatHandler creates a chat handler
func NewChatHandler(service *aichat.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

// Chat answers one user message, from the FAQ when possible, from the
// configured model otherwise
func (h *ChatHandler) Chat(c *gin.Context) {
	var req aichat.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Données invalides")
		return
	}

	resp, err := h.service.Chat(c.Request.Context(), tenantID(c), caller(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetConfig returns the active assistant configuration, API key redacted
func (h *ChatHandler) GetConfig(c *gin.Context) {
	resp, err := h.service.GetActiveConfig(c.Request.Context(), tenantID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Configure installs a new assistant configuration and deactivates the
// previous one
func (h *ChatHandler) Configure(c *gin.Context) {
	var req aichat.ConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Données invalides")
		return
	}

	resp, err := h.service.ConfigureAssistant(c.Request.Context(), tenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
