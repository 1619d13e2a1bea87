package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quelyos/backend/internal/domain/payment"
	"github.com/quelyos/backend/internal/infrastructure/config"
)

const konnectInitPaymentPath = "/payments/init-payment"

// konnectLifespanMinutes bounds how long a Konnect payment link stays valid
const konnectLifespanMinutes = 30

// KonnectAdapter implements payment.Gateway against the Konnect API.
// Amounts are sent in millimes.
type KonnectAdapter struct {
	config     config.ProviderConfig
	httpClient *http.Client
}

// NewKonnectAdapter creates a new Konnect gateway adapter
func NewKonnectAdapter(cfg config.ProviderConfig) (*KonnectAdapter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("konnect: api key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("konnect: receiver wallet id is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("konnect: base url is required")
	}
	if cfg.WebhookSecret == "" {
		return nil, errors.New("konnect: webhook secret is required")
	}

	return &KonnectAdapter{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Provider returns the gateway identifier
func (a *KonnectAdapter) Provider() payment.Provider {
	return payment.ProviderKonnect
}

type konnectInitRequest struct {
	ReceiverWalletID string   `json:"receiverWalletId"`
	Token            string   `json:"token"`
	Amount           int64    `json:"amount"`
	AcceptedMethods  []string `json:"acceptedPaymentMethods"`
	Lifespan         int      `json:"lifespan"`
	OrderID          string   `json:"orderId"`
	SuccessURL       string   `json:"successUrl"`
	FailURL          string   `json:"failUrl"`
	FirstName        string   `json:"firstName,omitempty"`
	LastName         string   `json:"lastName,omitempty"`
	Email            string   `json:"email,omitempty"`
	PhoneNumber      string   `json:"phoneNumber,omitempty"`
}

type konnectInitResponse struct {
	PayURL     string `json:"payUrl"`
	PaymentRef string `json:"paymentRef"`
}

// Initiate creates a payment link at Konnect and returns the hosted
// payment page URL
func (a *KonnectAdapter) Initiate(ctx context.Context, req payment.InitiateRequest) (*payment.InitiateResponse, error) {
	first, last := splitName(req.CustomerName)
	body := konnectInitRequest{
		ReceiverWalletID: a.config.SecretKey,
		Token:            string(req.Amount.Currency()),
		Amount:           req.Amount.MinorUnits(),
		AcceptedMethods:  []string{"wallet", "bank_card", "e-DINAR"},
		Lifespan:         konnectLifespanMinutes,
		OrderID:          req.Reference,
		SuccessURL:       req.ReturnURL,
		FailURL:          req.ReturnURL,
		FirstName:        first,
		LastName:         last,
		Email:            req.CustomerEmail,
		PhoneNumber:      req.CustomerPhone,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("konnect: failed to marshal request: %w", err)
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, konnectInitPaymentPath, bodyBytes)
	if err != nil {
		return nil, err
	}

	var respData konnectInitResponse
	if err := json.Unmarshal(respBody, &respData); err != nil {
		return nil, fmt.Errorf("konnect: failed to parse response: %w", err)
	}
	if respData.PaymentRef == "" {
		return nil, errors.New("konnect: response carries no payment reference")
	}

	return &payment.InitiateResponse{
		PaymentURL:        respData.PayURL,
		ProviderPaymentID: respData.PaymentRef,
		RawPayload:        string(respBody),
	}, nil
}

type konnectWebhookPayload struct {
	PaymentRef string `json:"paymentRef"`
	Status     string `json:"status"`
	Reason     string `json:"reason"`
}

// VerifyWebhook checks the X-Konnect-Signature header, an HMAC-SHA256
// of the raw body keyed with the webhook secret, and parses the event
func (a *KonnectAdapter) VerifyWebhook(payload []byte, signature string) (*payment.WebhookEvent, error) {
	if !verifyHMACSignature(payload, signature, a.config.WebhookSecret) {
		return nil, errors.New("konnect: invalid webhook signature")
	}

	var data konnectWebhookPayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("konnect: failed to parse webhook payload: %w", err)
	}

	return &payment.WebhookEvent{
		Provider:          payment.ProviderKonnect,
		ProviderPaymentID: data.PaymentRef,
		Success:           data.Status == "completed",
		FailureReason:     data.Reason,
		RawPayload:        string(payload),
	}, nil
}

func (a *KonnectAdapter) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("konnect: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", a.config.APIKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("konnect: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("konnect: failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("konnect: provider answered %d: %s", resp.StatusCode, respBody)
	}

	return respBody, nil
}

// splitName separates a full name into first and last parts; everything
// after the first word goes to the last name
func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

var _ payment.Gateway = (*KonnectAdapter)(nil)
