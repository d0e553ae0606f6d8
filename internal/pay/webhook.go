package pay

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Webhook event types handled by the marketplace.
const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
	EventRefundUpdated   = "refund.updated"
	EventTransferFailed  = "transfer.failed"
)

// SignatureHeader carries the webhook HMAC.
const SignatureHeader = "X-Payments-Signature"

// Event is a decoded processor webhook.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Status   string            `json:"status"`
			Amount   int64             `json:"amount"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// OrderID extracts the order id stored in intent metadata.
func (e Event) OrderID() (int64, error) {
	raw, ok := e.Data.Object.Metadata["order_id"]
	if !ok {
		return 0, fmt.Errorf("payments: event %s has no order_id", e.ID)
	}
	return strconv.ParseInt(raw, 10, 64)
}

// ParseEvent verifies the signature and decodes the body.
func ParseEvent(body []byte, signature, secret string) (Event, error) {
	if !VerifyHMAC(body, signature, secret) {
		return Event{}, ErrInvalidSignature
	}
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return Event{}, fmt.Errorf("payments: decode event: %w", err)
	}
	if ev.ID == "" || ev.Type == "" {
		return Event{}, fmt.Errorf("payments: event id and type are required")
	}
	return ev, nil
}
