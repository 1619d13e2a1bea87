package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apppayment "github.com/quelyos/backend/internal/application/payment"
	"github.com/quelyos/backend/internal/domain/payment"
	"github.com/quelyos/backend/internal/interfaces/http/dto"
)

// signatureHeaders maps each provider to the header carrying its
// webhook signature
var signatureHeaders = map[payment.Provider]string{
	payment.ProviderFlouci:  "X-Flouci-Signature",
	payment.ProviderKonnect: "X-Konnect-Signature",
	payment.ProviderStripe:  "Stripe-Signature",
}

// PaymentHandler exposes payment initiation, lookup and provider webhooks
type PaymentHandler struct {
	BaseHandler
	service *apppayment.Service
}

// NewPaymentHandler creates a payment handler
func NewPaymentHandler(service *apppayment.Service) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// Initiate starts a payment for a completed order and returns the
// redirect URL
func (h *PaymentHandler) Initiate(c *gin.Context) {
	var req apppayment.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Données invalides")
		return
	}

	resp, err := h.service.Initiate(c.Request.Context(), tenantID(c), caller(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetTransaction returns one payment transaction owned by the caller
func (h *PaymentHandler) GetTransaction(c *gin.Context) {
	txID, ok := parseIDParam(c)
	if !ok {
		return
	}

	resp, err := h.service.GetTransaction(c.Request.Context(), tenantID(c), caller(c), txID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Webhook receives a provider notification. The provider comes from the
// path, the signature from the provider's own header.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	provider := payment.Provider(c.Param("provider"))
	header, known := signatureHeaders[provider]
	if !known {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("NOT_FOUND", "Fournisseur de paiement inconnu"))
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "Corps de requête illisible")
		return
	}

	if err := h.service.ProcessWebhook(c.Request.Context(), provider, body, c.GetHeader(header)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"received": true})
}
