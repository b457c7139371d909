// Package vtu contains the outbound client for virtual top-up
// providers (vtpass, baxi, clubkonnect).
package vtu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"topup-pro/internal/core/ports"

	"github.com/rs/zerolog"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.VTUClient. All supported providers expose the
// same vend call shape; only the base URL and API key differ.
type Client struct {
	client   HTTPClient
	baseURLs map[string]string // provider -> vend API base URL
	apiKeys  map[string]string // provider -> API key
	log      zerolog.Logger
}

// NewClient creates a VTU API client.
func NewClient(client HTTPClient, baseURLs, apiKeys map[string]string, log zerolog.Logger) *Client {
	return &Client{
		client:   client,
		baseURLs: baseURLs,
		apiKeys:  apiKeys,
		log:      log,
	}
}

type vendRequest struct {
	RequestID   string `json:"request_id"`
	ServiceType string `json:"service_type"`
	Amount      int64  `json:"amount"` // In kobo
	Phone       string `json:"phone,omitempty"`
	Network     string `json:"network,omitempty"`
	PlanCode    string `json:"plan_code,omitempty"`
	Smartcard   string `json:"smartcard,omitempty"`
	Meter       string `json:"meter,omitempty"`
	MeterType   string `json:"meter_type,omitempty"`
	Disco       string `json:"disco,omitempty"`
}

type vendResponse struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message"`
}

// Vend submits one purchase to the named provider. A "delivered" answer
// means the provider fulfilled synchronously; "accepted" or "pending"
// means the outcome arrives via webhook.
func (c *Client) Vend(ctx context.Context, req ports.VendRequest) (*ports.VendResult, error) {
	baseURL, ok := c.baseURLs[req.Provider]
	if !ok {
		return nil, fmt.Errorf("no vend endpoint configured for provider %s", req.Provider)
	}

	body, err := json.Marshal(buildVendRequest(req))
	if err != nil {
		return nil, fmt.Errorf("marshal vend request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/vend", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create vend request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKeys[req.Provider])

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", req.Provider, err)
	}
	defer resp.Body.Close()

	var parsed vendResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", req.Provider, err)
	}

	result := &ports.VendResult{FailureReason: parsed.Message}
	if parsed.TransactionID != "" {
		txID := parsed.TransactionID
		result.ProviderTransactionID = &txID
	}

	switch strings.ToLower(parsed.Status) {
	case "delivered", "successful", "success":
		result.Accepted = true
		result.Delivered = true
	case "accepted", "pending", "processing", "initiated":
		result.Accepted = true
	default:
		c.log.Warn().
			Str("provider", req.Provider).
			Str("reference", req.Reference).
			Str("status", parsed.Status).
			Str("message", parsed.Message).
			Msg("vend rejected")
		if result.FailureReason == "" {
			result.FailureReason = parsed.Status
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Accepted = false
		result.Delivered = false
		if result.FailureReason == "" {
			result.FailureReason = fmt.Sprintf("provider answered status %d", resp.StatusCode)
		}
	}
	return result, nil
}

// buildVendRequest flattens typed metadata into the provider wire shape.
func buildVendRequest(req ports.VendRequest) vendRequest {
	out := vendRequest{
		RequestID:   req.Reference,
		ServiceType: string(req.Type),
		Amount:      req.Amount,
	}
	switch {
	case req.Metadata.Airtime != nil:
		out.Phone = req.Metadata.Airtime.Phone
		out.Network = req.Metadata.Airtime.Network
	case req.Metadata.DataPlan != nil:
		out.Phone = req.Metadata.DataPlan.Phone
		out.Network = req.Metadata.DataPlan.Network
		out.PlanCode = req.Metadata.DataPlan.PlanCode
	case req.Metadata.Cable != nil:
		out.Smartcard = req.Metadata.Cable.Smartcard
		out.Network = req.Metadata.Cable.Provider
		out.PlanCode = req.Metadata.Cable.PlanCode
	case req.Metadata.Electricity != nil:
		out.Meter = req.Metadata.Electricity.Meter
		out.MeterType = req.Metadata.Electricity.MeterType
		out.Disco = req.Metadata.Electricity.Disco
	}
	return out
}
