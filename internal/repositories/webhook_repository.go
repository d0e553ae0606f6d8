package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type WebhookRepository struct {
	DB *sqlx.DB
}

// Record stores a processor event id. It returns false when the event was seen before.
func (r *WebhookRepository) Record(ctx context.Context, eventID, eventType string) (bool, error) {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO payment_webhooks (event_id, event_type) VALUES (?, ?)`, eventID, eventType)
	if IsDuplicateError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Forget removes an event so a processor retry is handled again.
func (r *WebhookRepository) Forget(ctx context.Context, eventID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM payment_webhooks WHERE event_id = ?`, eventID)
	return err
}
