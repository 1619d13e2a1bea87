package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/quelyos/backend/internal/domain/payment"
	"github.com/quelyos/backend/internal/infrastructure/config"
)

// StripeAdapter implements payment.Gateway over the Stripe
// PaymentIntents API. The frontend confirms the intent with the client
// secret; settlement lands through the webhook.
type StripeAdapter struct {
	config config.ProviderConfig
}

// NewStripeAdapter creates a new Stripe gateway adapter and installs
// the API key on the Stripe client
func NewStripeAdapter(cfg config.ProviderConfig) (*StripeAdapter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("stripe: api key is required")
	}
	if cfg.WebhookSecret == "" {
		return nil, errors.New("stripe: webhook secret is required")
	}

	stripe.Key = cfg.APIKey

	return &StripeAdapter{config: cfg}, nil
}

// Provider returns the gateway identifier
func (a *StripeAdapter) Provider() payment.Provider {
	return payment.ProviderStripe
}

// Initiate creates a PaymentIntent and returns its client secret
func (a *StripeAdapter) Initiate(ctx context.Context, req payment.InitiateRequest) (*payment.InitiateResponse, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount.MinorUnits()),
		Currency: stripe.String(strings.ToLower(string(req.Amount.Currency()))),
		Metadata: map[string]string{
			"reference": req.Reference,
		},
	}
	params.Context = ctx
	if req.CustomerEmail != "" {
		params.ReceiptEmail = stripe.String(req.CustomerEmail)
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to create payment intent: %w", err)
	}

	rawPayload, _ := json.Marshal(intent)

	return &payment.InitiateResponse{
		ProviderPaymentID: intent.ID,
		ClientSecret:      intent.ClientSecret,
		RawPayload:        string(rawPayload),
	}, nil
}

// VerifyWebhook validates the Stripe-Signature header and maps
// payment_intent events to a neutral outcome
func (a *StripeAdapter) VerifyWebhook(payload []byte, signature string) (*payment.WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, a.config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("stripe: invalid webhook signature: %w", err)
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, fmt.Errorf("stripe: failed to parse webhook payload: %w", err)
	}

	out := &payment.WebhookEvent{
		Provider:          payment.ProviderStripe,
		ProviderPaymentID: intent.ID,
		RawPayload:        string(payload),
	}

	switch event.Type {
	case "payment_intent.succeeded":
		out.Success = true
	case "payment_intent.payment_failed":
		if intent.LastPaymentError != nil {
			out.FailureReason = intent.LastPaymentError.Msg
		}
	default:
		return nil, fmt.Errorf("stripe: unhandled event type %s", event.Type)
	}

	return out, nil
}

var _ payment.Gateway = (*StripeAdapter)(nil)
