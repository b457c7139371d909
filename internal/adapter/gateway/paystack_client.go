// Package gateway contains outbound payment gateway clients used to
// open hosted checkout sessions for wallet funding.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"topup-pro/internal/core/ports"

	"github.com/rs/zerolog"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// PaystackClient implements ports.GatewayClient against the Paystack
// transaction API.
type PaystackClient struct {
	client      HTTPClient
	baseURL     string
	secretKey   string
	callbackURL string
	log         zerolog.Logger
}

// NewPaystackClient creates a Paystack API client.
func NewPaystackClient(client HTTPClient, baseURL, secretKey, callbackURL string, log zerolog.Logger) *PaystackClient {
	return &PaystackClient{
		client:      client,
		baseURL:     baseURL,
		secretKey:   secretKey,
		callbackURL: callbackURL,
		log:         log,
	}
}

type paystackInitRequest struct {
	Reference   string `json:"reference"`
	Email       string `json:"email"`
	Amount      int64  `json:"amount"` // Paystack expects kobo
	CallbackURL string `json:"callback_url,omitempty"`
}

type paystackInitResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// InitializeFunding opens a hosted checkout session and returns the
// authorization URL the client must visit to pay.
func (c *PaystackClient) InitializeFunding(ctx context.Context, req ports.GatewayInitRequest) (*ports.GatewayCheckout, error) {
	body, err := json.Marshal(paystackInitRequest{
		Reference:   req.Reference,
		Email:       req.Email,
		Amount:      req.Amount,
		CallbackURL: c.callbackURL,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal init request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create init request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call paystack: %w", err)
	}
	defer resp.Body.Close()

	var parsed paystackInitResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode paystack response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !parsed.Status {
		c.log.Warn().
			Int("status_code", resp.StatusCode).
			Str("message", parsed.Message).
			Str("reference", req.Reference).
			Msg("paystack initialization rejected")
		return nil, fmt.Errorf("paystack rejected initialization: %s", parsed.Message)
	}

	return &ports.GatewayCheckout{
		AuthorizationURL: parsed.Data.AuthorizationURL,
		AccessCode:       parsed.Data.AccessCode,
	}, nil
}
