package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"khidmaBack/internal/fsm"
	"khidmaBack/internal/models"
)

type DisputeRepository struct {
	DB *sqlx.DB
}

const disputeSelect = `
        SELECT d.id, d.order_id, d.opened_by, d.reason, d.status, d.resolution, d.admin_note, d.refund_cents,
               d.resolved_by, d.resolved_at, d.created_at,
               o.status AS order_status, o.price_cents, o.buyer_id, o.seller_id
        FROM disputes d
        JOIN orders o ON o.id = d.order_id`

// Resolution is an admin decision applied atomically to the dispute, the order
// and, when money goes back to the buyer, a pending refund row.
type Resolution struct {
	DisputeID   int64
	OrderID     int64
	Resolution  string
	OrderStatus string
	RefundCents int64
	RefundNote  string
	Note        string
	AdminID     int64
}

func (r *DisputeRepository) GetDispute(ctx context.Context, id int64) (models.Dispute, error) {
	var d models.Dispute
	if err := r.DB.GetContext(ctx, &d, disputeSelect+` WHERE d.id = ?`, id); err != nil {
		return models.Dispute{}, notFound(err)
	}
	return d, nil
}

func (r *DisputeRepository) OpenDisputeForOrder(ctx context.Context, orderID int64) (models.Dispute, error) {
	var d models.Dispute
	err := r.DB.GetContext(ctx, &d, disputeSelect+` WHERE d.order_id = ? AND d.status = ? ORDER BY d.id DESC LIMIT 1`,
		orderID, models.DisputeStatusOpen)
	if err != nil {
		return models.Dispute{}, notFound(err)
	}
	return d, nil
}

var disputeSorts = map[string]string{
	"created_at":  "d.created_at",
	"resolved_at": "d.resolved_at",
}

func (r *DisputeRepository) ListDisputes(ctx context.Context, f models.DisputeFilter) ([]models.Dispute, int, error) {
	var w whereBuilder
	if f.Status != "" {
		w.add("d.status = ?", f.Status)
	}
	if f.Query != "" {
		w.add("d.reason LIKE ?", likePattern(f.Query))
	}

	var total int
	if err := r.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM disputes d`+w.sql(), w.args...); err != nil {
		return nil, 0, err
	}
	disputes := []models.Dispute{}
	query := disputeSelect + w.sql() + orderBy(f.Sort, f.Desc, disputeSorts, "d.created_at DESC") + limitOffset(f.ListParams)
	if err := r.DB.SelectContext(ctx, &disputes, query, w.args...); err != nil {
		return nil, 0, err
	}
	return disputes, total, nil
}

// Resolve closes the dispute and moves the order out of DISPUTED. It returns the
// id of the pending refund row, or zero when nothing is refunded.
func (r *DisputeRepository) Resolve(ctx context.Context, res Resolution) (int64, error) {
	var refundID int64
	err := withTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
            UPDATE disputes
            SET status = ?, resolution = ?, refund_cents = ?, admin_note = ?, resolved_by = ?, resolved_at = CURRENT_TIMESTAMP
            WHERE id = ? AND status = ?`,
			models.DisputeStatusResolved, res.Resolution, nullableCents(res.RefundCents), nullable(res.Note),
			res.AdminID, res.DisputeID, models.DisputeStatusOpen)
		if err != nil {
			return err
		}
		if err := expectOne(result); err != nil {
			return models.ErrDisputeResolved
		}

		adminID := res.AdminID
		err = applyTransition(ctx, tx, Transition{
			OrderID:   res.OrderID,
			From:      fsm.StatusDisputed,
			To:        res.OrderStatus,
			ActorID:   &adminID,
			ActorRole: models.RoleAdmin,
			Note:      res.Note,
		})
		if err != nil {
			return err
		}

		if res.RefundCents > 0 {
			disputeID := res.DisputeID
			refundID, err = insertRefund(ctx, tx, res.OrderID, &disputeID, res.RefundCents, res.RefundNote)
			return err
		}
		return nil
	})
	return refundID, err
}

func nullableCents(v int64) interface{} {
	if v == 0 {
		return nil
	}
	return v
}
