package payment

import (
	"context"

	"github.com/quelyos/backend/internal/domain/shared/valueobject"
)

// InitiateRequest carries the inputs of a payment initiation
type InitiateRequest struct {
	Amount        valueobject.Money
	Reference     string
	ReturnURL     string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// InitiateResponse is the provider's answer to an initiation
type InitiateResponse struct {
	PaymentURL        string
	ProviderPaymentID string
	ClientSecret      string // optional, client-side confirmation flows
	RawPayload        string
}

// WebhookEvent is the provider-neutral content of a verified webhook
type WebhookEvent struct {
	Provider          Provider
	ProviderPaymentID string
	Success           bool
	FailureReason     string
	RawPayload        string
}

// Gateway is the interface every payment provider adapter implements.
// Concrete gateway internals (Flouci, Konnect, Stripe APIs) are
// collaborators behind this boundary.
type Gateway interface {
	// Provider returns the gateway identifier
	Provider() Provider

	// Initiate starts a payment at the provider and returns the redirect
	// URL plus the provider's payment identifier
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error)

	// VerifyWebhook checks the webhook signature and parses the payload
	// into a neutral event. An invalid signature yields an error; the
	// caller answers 401.
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
