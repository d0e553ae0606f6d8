package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"khidmaBack/internal/models"
)

type RefundRepository struct {
	DB *sqlx.DB
}

const refundColumns = `id, order_id, dispute_id, amount_cents, reason, status, processor_refund_id, failure_reason, created_at, updated_at`

func insertRefund(ctx context.Context, tx sqlx.ExecerContext, orderID int64, disputeID *int64, amount int64, reason string) (int64, error) {
	result, err := tx.ExecContext(ctx, `
        INSERT INTO refunds (order_id, dispute_id, amount_cents, reason, status) VALUES (?, ?, ?, ?, ?)`,
		orderID, disputeID, amount, reason, models.RefundStatusPending)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (r *RefundRepository) CreateRefund(ctx context.Context, orderID int64, amount int64, reason string) (int64, error) {
	return insertRefund(ctx, r.DB, orderID, nil, amount, reason)
}

func (r *RefundRepository) GetRefund(ctx context.Context, id int64) (models.Refund, error) {
	var rf models.Refund
	if err := r.DB.GetContext(ctx, &rf, `SELECT `+refundColumns+` FROM refunds WHERE id = ?`, id); err != nil {
		return models.Refund{}, notFound(err)
	}
	return rf, nil
}

func (r *RefundRepository) MarkSucceeded(ctx context.Context, id int64, processorID string) error {
	_, err := r.DB.ExecContext(ctx, `
        UPDATE refunds SET status = ?, processor_refund_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		models.RefundStatusSucceeded, processorID, id)
	return err
}

func (r *RefundRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	_, err := r.DB.ExecContext(ctx, `
        UPDATE refunds SET status = ?, failure_reason = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		models.RefundStatusFailed, truncate(reason, 500), id)
	return err
}

func (r *RefundRepository) ListRefunds(ctx context.Context, f models.RefundFilter) ([]models.Refund, int, error) {
	var w whereBuilder
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.OrderID != nil {
		w.add("order_id = ?", *f.OrderID)
	}

	var total int
	if err := r.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM refunds`+w.sql(), w.args...); err != nil {
		return nil, 0, err
	}
	refunds := []models.Refund{}
	query := `SELECT ` + refundColumns + ` FROM refunds` + w.sql() + ` ORDER BY created_at DESC, id DESC` + limitOffset(f.ListParams)
	if err := r.DB.SelectContext(ctx, &refunds, query, w.args...); err != nil {
		return nil, 0, err
	}
	return refunds, total, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
