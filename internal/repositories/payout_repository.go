package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"khidmaBack/internal/fsm"
	"khidmaBack/internal/models"
)

type PayoutRepository struct {
	DB *sqlx.DB
}

const payoutSelect = `
        SELECT p.id, p.seller_id, p.gross_cents, p.commission_cents, p.refund_cents, p.net_cents, p.currency,
               p.status, p.processor_transfer_id, p.failure_reason, p.orders_count, p.created_at, p.processed_at,
               u.name AS seller_name
        FROM payouts p
        JOIN users u ON u.id = p.seller_id`

// Balances aggregates completed, unpaid orders per seller. An empty sellerIDs means every seller.
func (r *PayoutRepository) Balances(ctx context.Context, sellerIDs []int64) ([]models.SellerBalance, error) {
	query := `
        SELECT o.seller_id, u.name AS seller_name, u.payout_account_id,
               COUNT(*) AS orders_count,
               SUM(o.price_cents) AS gross_cents,
               SUM(o.commission_cents) AS commission_cents,
               COALESCE(SUM(rf.refunded), 0) AS refund_cents
        FROM orders o
        JOIN users u ON u.id = o.seller_id
        LEFT JOIN (
            SELECT order_id, SUM(amount_cents) AS refunded FROM refunds WHERE status = ? GROUP BY order_id
        ) rf ON rf.order_id = o.id
        WHERE o.status = ? AND o.payout_id IS NULL`
	args := []interface{}{models.RefundStatusSucceeded, fsm.StatusCompleted}
	if len(sellerIDs) > 0 {
		query += ` AND o.seller_id IN (?)`
		args = append(args, sellerIDs)
	}
	query += ` GROUP BY o.seller_id, u.name, u.payout_account_id ORDER BY gross_cents DESC`

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}
	balances := []models.SellerBalance{}
	if err := r.DB.SelectContext(ctx, &balances, r.DB.Rebind(query), args...); err != nil {
		return nil, err
	}
	return balances, nil
}

type payableOrder struct {
	ID              int64 `db:"id"`
	PriceCents      int64 `db:"price_cents"`
	CommissionCents int64 `db:"commission_cents"`
	RefundCents     int64 `db:"refund_cents"`
}

// ReservePayout locks the seller's payable orders, creates a processing payout
// and links the orders to it. Balances below minimum are left untouched.
func (r *PayoutRepository) ReservePayout(ctx context.Context, sellerID int64, currency string, minimum int64) (models.Payout, error) {
	var p models.Payout
	err := withTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		var orders []payableOrder
		err := tx.SelectContext(ctx, &orders, `
            SELECT o.id, o.price_cents, o.commission_cents,
                   COALESCE((SELECT SUM(amount_cents) FROM refunds WHERE order_id = o.id AND status = ?), 0) AS refund_cents
            FROM orders o
            WHERE o.seller_id = ? AND o.status = ? AND o.payout_id IS NULL
            FOR UPDATE`, models.RefundStatusSucceeded, sellerID, fsm.StatusCompleted)
		if err != nil {
			return err
		}
		if len(orders) == 0 {
			return models.ErrNoRecord
		}

		b := models.SellerBalance{SellerID: sellerID, OrdersCount: len(orders)}
		ids := make([]int64, 0, len(orders))
		for _, o := range orders {
			b.GrossCents += o.PriceCents
			b.CommissionCents += o.CommissionCents
			b.RefundCents += o.RefundCents
			ids = append(ids, o.ID)
		}
		if b.NetCents() <= 0 || b.NetCents() < minimum {
			return models.ErrBelowPayoutMinimum
		}

		p = models.Payout{
			SellerID:        sellerID,
			GrossCents:      b.GrossCents,
			CommissionCents: b.CommissionCents,
			RefundCents:     b.RefundCents,
			NetCents:        b.NetCents(),
			Currency:        currency,
			Status:          models.PayoutStatusProcessing,
			OrdersCount:     b.OrdersCount,
		}
		result, err := tx.ExecContext(ctx, `
            INSERT INTO payouts (seller_id, gross_cents, commission_cents, refund_cents, net_cents, currency, status, orders_count)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.SellerID, p.GrossCents, p.CommissionCents, p.RefundCents, p.NetCents, p.Currency, p.Status, p.OrdersCount)
		if err != nil {
			return err
		}
		if p.ID, err = result.LastInsertId(); err != nil {
			return err
		}

		query, args, err := sqlx.In(`UPDATE orders SET payout_id = ? WHERE id IN (?)`, p.ID, ids)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(query), args...)
		return err
	})
	if err != nil {
		return models.Payout{}, err
	}
	return p, nil
}

func (r *PayoutRepository) MarkPaid(ctx context.Context, id int64, transferID string) error {
	_, err := r.DB.ExecContext(ctx, `
        UPDATE payouts SET status = ?, processor_transfer_id = ?, processed_at = CURRENT_TIMESTAMP
        WHERE id = ? AND status = ?`,
		models.PayoutStatusPaid, transferID, id, models.PayoutStatusProcessing)
	return err
}

// MarkFailed records the failure and releases the orders for the next run.
func (r *PayoutRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	return withTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
            UPDATE payouts SET status = ?, failure_reason = ?, processed_at = CURRENT_TIMESTAMP
            WHERE id = ? AND status = ?`,
			models.PayoutStatusFailed, truncate(reason, 500), id, models.PayoutStatusProcessing)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE orders SET payout_id = NULL WHERE payout_id = ?`, id)
		return err
	})
}

func (r *PayoutRepository) GetPayout(ctx context.Context, id int64) (models.Payout, error) {
	var p models.Payout
	if err := r.DB.GetContext(ctx, &p, payoutSelect+` WHERE p.id = ?`, id); err != nil {
		return models.Payout{}, notFound(err)
	}
	return p, nil
}

var payoutSorts = map[string]string{
	"created_at": "p.created_at",
	"net":        "p.net_cents",
}

func (r *PayoutRepository) ListPayouts(ctx context.Context, f models.PayoutFilter) ([]models.Payout, int, error) {
	var w whereBuilder
	if f.Status != "" {
		w.add("p.status = ?", f.Status)
	}
	if f.SellerID != nil {
		w.add("p.seller_id = ?", *f.SellerID)
	}

	var total int
	if err := r.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM payouts p`+w.sql(), w.args...); err != nil {
		return nil, 0, err
	}
	payouts := []models.Payout{}
	query := payoutSelect + w.sql() + orderBy(f.Sort, f.Desc, payoutSorts, "p.created_at DESC, p.id DESC") + limitOffset(f.ListParams)
	if err := r.DB.SelectContext(ctx, &payouts, query, w.args...); err != nil {
		return nil, 0, err
	}
	return payouts, total, nil
}
