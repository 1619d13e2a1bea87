package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quelyos/backend/internal/domain/payment"
	"github.com/quelyos/backend/internal/infrastructure/config"
)

const flouciGeneratePaymentPath = "/api/v2/generate_payment"

// sessionTimeoutSecs bounds how long a Flouci payment page stays open
const flouciSessionTimeoutSecs = 1800

// FlouciAdapter implements payment.Gateway against the Flouci API.
// Amounts are sent in millimes.
type FlouciAdapter struct {
	config     config.ProviderConfig
	httpClient *http.Client
}

// NewFlouciAdapter creates a new Flouci gateway adapter
func NewFlouciAdapter(cfg config.ProviderConfig) (*FlouciAdapter, error) {
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("flouci: api key and secret key are required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("flouci: base url is required")
	}
	if cfg.WebhookSecret == "" {
		return nil, errors.New("flouci: webhook secret is required")
	}

	return &FlouciAdapter{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Provider returns the gateway identifier
func (a *FlouciAdapter) Provider() payment.Provider {
	return payment.ProviderFlouci
}

type flouciGenerateRequest struct {
	AppToken            string `json:"app_token"`
	AppSecret           string `json:"app_secret"`
	Amount              int64  `json:"amount"`
	AcceptCard          bool   `json:"accept_card"`
	SessionTimeoutSecs  int    `json:"session_timeout_secs"`
	SuccessLink         string `json:"success_link"`
	FailLink            string `json:"fail_link"`
	DeveloperTrackingID string `json:"developer_tracking_id"`
}

type flouciGenerateResponse struct {
	Result struct {
		Link      string `json:"link"`
		PaymentID string `json:"payment_id"`
		Success   bool   `json:"success"`
	} `json:"result"`
}

// Initiate creates a payment session at Flouci and returns the hosted
// payment page URL
func (a *FlouciAdapter) Initiate(ctx context.Context, req payment.InitiateRequest) (*payment.InitiateResponse, error) {
	body := flouciGenerateRequest{
		AppToken:            a.config.APIKey,
		AppSecret:           a.config.SecretKey,
		Amount:              req.Amount.MinorUnits(),
		AcceptCard:          true,
		SessionTimeoutSecs:  flouciSessionTimeoutSecs,
		SuccessLink:         req.ReturnURL,
		FailLink:            req.ReturnURL,
		DeveloperTrackingID: req.Reference,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("flouci: failed to marshal request: %w", err)
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, flouciGeneratePaymentPath, bodyBytes)
	if err != nil {
		return nil, err
	}

	var respData flouciGenerateResponse
	if err := json.Unmarshal(respBody, &respData); err != nil {
		return nil, fmt.Errorf("flouci: failed to parse response: %w", err)
	}
	if respData.Result.PaymentID == "" {
		return nil, errors.New("flouci: response carries no payment id")
	}

	return &payment.InitiateResponse{
		PaymentURL:        respData.Result.Link,
		ProviderPaymentID: respData.Result.PaymentID,
		RawPayload:        string(respBody),
	}, nil
}

type flouciWebhookPayload struct {
	PaymentID     string `json:"payment_id"`
	Status        string `json:"status"`
	FailureReason string `json:"failure_reason"`
}

// VerifyWebhook checks the X-Flouci-Signature header, an HMAC-SHA256
// of the raw body keyed with the webhook secret, and parses the event
func (a *FlouciAdapter) VerifyWebhook(payload []byte, signature string) (*payment.WebhookEvent, error) {
	if !verifyHMACSignature(payload, signature, a.config.WebhookSecret) {
		return nil, errors.New("flouci: invalid webhook signature")
	}

	var data flouciWebhookPayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("flouci: failed to parse webhook payload: %w", err)
	}

	return &payment.WebhookEvent{
		Provider:          payment.ProviderFlouci,
		ProviderPaymentID: data.PaymentID,
		Success:           data.Status == "SUCCESS",
		FailureReason:     data.FailureReason,
		RawPayload:        string(payload),
	}, nil
}

func (a *FlouciAdapter) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("flouci: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flouci: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("flouci: failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("flouci: provider answered %d: %s", resp.StatusCode, respBody)
	}

	return respBody, nil
}

// verifyHMACSignature compares a hex-encoded HMAC-SHA256 of the payload
// against the provided signature in constant time
func verifyHMACSignature(payload []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

var _ payment.Gateway = (*FlouciAdapter)(nil)
