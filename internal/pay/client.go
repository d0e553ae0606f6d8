package pay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIError is returned when the processor answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("payments: status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the payment processor REST API.
type Client struct {
	httpClient *http.Client
	apiKey     string
	secret     string
	baseURL    string
}

// NewClient constructs a new processor client.
func NewClient(httpClient *http.Client, baseURL, apiKey, webhookSecret string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		secret:     webhookSecret,
		baseURL:    baseURL,
	}
}

// Secret returns the configured webhook secret.
func (c *Client) Secret() string { return c.secret }

// IntentRequest describes a payment intent for one order.
type IntentRequest struct {
	OrderID        int64
	AmountCents    int64
	Currency       string
	Description    string
	IdempotencyKey string
}

// Intent is the processor's payment intent.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

// RefundRequest refunds part or all of a captured intent.
type RefundRequest struct {
	PaymentIntentID string
	AmountCents     int64
	Reason          string
	IdempotencyKey  string
}

// RefundResult is the processor refund object.
type RefundResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// TransferRequest pays out to a seller's connected account.
type TransferRequest struct {
	AccountID      string
	AmountCents    int64
	Currency       string
	Description    string
	IdempotencyKey string
}

// Transfer is the processor payout object.
type Transfer struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CreatePaymentIntent creates an intent the client app confirms with the returned secret.
func (c *Client) CreatePaymentIntent(ctx context.Context, req IntentRequest) (Intent, error) {
	payload := map[string]interface{}{
		"amount":      req.AmountCents,
		"currency":    req.Currency,
		"description": req.Description,
		"metadata":    map[string]string{"order_id": fmt.Sprint(req.OrderID)},
	}
	var out Intent
	if err := c.post(ctx, "/v1/payment_intents", req.IdempotencyKey, payload, &out); err != nil {
		return Intent{}, err
	}
	return out, nil
}

// Refund refunds AmountCents of a payment intent.
func (c *Client) Refund(ctx context.Context, req RefundRequest) (RefundResult, error) {
	payload := map[string]interface{}{
		"payment_intent": req.PaymentIntentID,
		"amount":         req.AmountCents,
		"reason":         req.Reason,
	}
	var out RefundResult
	if err := c.post(ctx, "/v1/refunds", req.IdempotencyKey, payload, &out); err != nil {
		return RefundResult{}, err
	}
	return out, nil
}

// Transfer moves funds to a connected account.
func (c *Client) Transfer(ctx context.Context, req TransferRequest) (Transfer, error) {
	payload := map[string]interface{}{
		"destination": req.AccountID,
		"amount":      req.AmountCents,
		"currency":    req.Currency,
		"description": req.Description,
	}
	var out Transfer
	if err := c.post(ctx, "/v1/transfers", req.IdempotencyKey, payload, &out); err != nil {
		return Transfer{}, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path, idempotencyKey string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("X-Signature", Sign(body, c.apiKey))
	if idempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		msg := resp.Status
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
