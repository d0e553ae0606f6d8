package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"khidmaBack/internal/fsm"
	"khidmaBack/internal/models"
)

type OrderRepository struct {
	DB *sqlx.DB
}

const orderSelect = `
        SELECT o.id, o.buyer_id, o.seller_id, o.service_id, o.package_id, o.package_tier, o.service_title,
               o.price_cents, o.commission_cents, o.currency, o.status, o.requirements, o.delivery_note,
               o.payment_intent_id, o.payout_id, o.due_at, o.delivered_at, o.completed_at, o.cancelled_at,
               o.created_at, o.updated_at,
               b.name AS buyer_name, s.name AS seller_name
        FROM orders o
        JOIN users b ON b.id = o.buyer_id
        JOIN users s ON s.id = o.seller_id`

// Transition describes one status change and its side rows.
type Transition struct {
	OrderID   int64
	From      string
	To        string
	ActorID   *int64
	ActorRole string
	Note      string
	// Dispute is inserted in the same transaction when moving to DISPUTED.
	Dispute *models.Dispute
}

func (r *OrderRepository) CreateOrder(ctx context.Context, o models.Order) (models.Order, error) {
	err := withTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
            INSERT INTO orders (buyer_id, seller_id, service_id, package_id, package_tier, service_title,
                                price_cents, commission_cents, currency, status, requirements, due_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.BuyerID, o.SellerID, o.ServiceID, o.PackageID, o.PackageTier, o.ServiceTitle,
			o.PriceCents, o.CommissionCents, o.Currency, fsm.StatusPending, o.Requirements, o.DueAt)
		if err != nil {
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		o.ID = id
		if err := insertEvent(ctx, tx, id, "", fsm.StatusPending, &o.BuyerID, models.RoleBuyer, ""); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE services SET orders_count = orders_count + 1 WHERE id = ?`, o.ServiceID)
		return err
	})
	if err != nil {
		return models.Order{}, err
	}
	return r.GetOrderByID(ctx, o.ID)
}

func (r *OrderRepository) SetPaymentIntent(ctx context.Context, orderID int64, intentID string) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE orders SET payment_intent_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, intentID, orderID)
	if err != nil {
		return err
	}
	return expectOne(result)
}

func (r *OrderRepository) GetOrderByID(ctx context.Context, id int64) (models.Order, error) {
	var o models.Order
	if err := r.DB.GetContext(ctx, &o, orderSelect+` WHERE o.id = ?`, id); err != nil {
		return models.Order{}, notFound(err)
	}
	return o, nil
}

func (r *OrderRepository) GetOrderByIntent(ctx context.Context, intentID string) (models.Order, error) {
	var o models.Order
	if err := r.DB.GetContext(ctx, &o, orderSelect+` WHERE o.payment_intent_id = ?`, intentID); err != nil {
		return models.Order{}, notFound(err)
	}
	return o, nil
}

func (r *OrderRepository) GetOrderDetail(ctx context.Context, id int64) (models.OrderDetail, error) {
	o, err := r.GetOrderByID(ctx, id)
	if err != nil {
		return models.OrderDetail{}, err
	}
	detail := models.OrderDetail{Order: o, Events: []models.OrderEvent{}}
	err = r.DB.SelectContext(ctx, &detail.Events, `
        SELECT id, order_id, from_status, to_status, actor_id, actor_role, note, created_at
        FROM order_events WHERE order_id = ? ORDER BY id`, id)
	if err != nil {
		return models.OrderDetail{}, err
	}

	var d models.Dispute
	err = r.DB.GetContext(ctx, &d, disputeSelect+` WHERE d.order_id = ? ORDER BY d.id DESC LIMIT 1`, id)
	switch {
	case err == nil:
		detail.Dispute = &d
	case !errors.Is(err, sql.ErrNoRows):
		return models.OrderDetail{}, err
	}
	return detail, nil
}

var orderSorts = map[string]string{
	"created_at": "o.created_at",
	"price":      "o.price_cents",
	"status":     "o.status",
	"due_at":     "o.due_at",
}

func (r *OrderRepository) ListOrders(ctx context.Context, f models.OrderFilter) ([]models.Order, int, error) {
	var w whereBuilder
	if f.Status != "" {
		w.add("o.status = ?", f.Status)
	}
	if f.BuyerID != nil {
		w.add("o.buyer_id = ?", *f.BuyerID)
	}
	if f.SellerID != nil {
		w.add("o.seller_id = ?", *f.SellerID)
	}
	if f.ServiceID != nil {
		w.add("o.service_id = ?", *f.ServiceID)
	}
	if f.From != nil {
		w.add("o.created_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("o.created_at < ?", *f.To)
	}
	if f.Query != "" {
		w.add("(o.service_title LIKE ? OR b.name LIKE ? OR s.name LIKE ?)",
			likePattern(f.Query), likePattern(f.Query), likePattern(f.Query))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM orders o JOIN users b ON b.id = o.buyer_id JOIN users s ON s.id = o.seller_id` + w.sql()
	if err := r.DB.GetContext(ctx, &total, countQuery, w.args...); err != nil {
		return nil, 0, err
	}

	orders := []models.Order{}
	query := orderSelect + w.sql() + orderBy(f.Sort, f.Desc, orderSorts, "o.created_at DESC, o.id DESC") + limitOffset(f.ListParams)
	if err := r.DB.SelectContext(ctx, &orders, query, w.args...); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ApplyTransition moves an order through the state machine and records the
// history row. A concurrent change surfaces as models.ErrStatusChanged.
func (r *OrderRepository) ApplyTransition(ctx context.Context, t Transition) error {
	return withTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		return applyTransition(ctx, tx, t)
	})
}

func applyTransition(ctx context.Context, tx *sqlx.Tx, t Transition) error {
	err := fsm.Apply(ctx, tx, t.OrderID, t.From, t.To)
	switch {
	case errors.Is(err, fsm.ErrInvalidTransition):
		return models.ErrInvalidTransition
	case errors.Is(err, sql.ErrNoRows):
		return models.ErrStatusChanged
	case err != nil:
		return err
	}

	switch t.To {
	case fsm.StatusDelivered:
		_, err = tx.ExecContext(ctx, `UPDATE orders SET delivered_at = CURRENT_TIMESTAMP, delivery_note = ? WHERE id = ?`,
			nullable(t.Note), t.OrderID)
	case fsm.StatusCompleted:
		_, err = tx.ExecContext(ctx, `UPDATE orders SET completed_at = CURRENT_TIMESTAMP WHERE id = ?`, t.OrderID)
	case fsm.StatusCancelled:
		_, err = tx.ExecContext(ctx, `UPDATE orders SET cancelled_at = CURRENT_TIMESTAMP WHERE id = ?`, t.OrderID)
	}
	if err != nil {
		return err
	}

	if t.Dispute != nil {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO disputes (order_id, opened_by, reason, status) VALUES (?, ?, ?, ?)`,
			t.OrderID, t.Dispute.OpenedBy, t.Dispute.Reason, models.DisputeStatusOpen)
		if err != nil {
			return err
		}
	}
	return insertEvent(ctx, tx, t.OrderID, t.From, t.To, t.ActorID, t.ActorRole, t.Note)
}

func insertEvent(ctx context.Context, tx *sqlx.Tx, orderID int64, from, to string, actorID *int64, role, note string) error {
	_, err := tx.ExecContext(ctx, `
        INSERT INTO order_events (order_id, from_status, to_status, actor_id, actor_role, note)
        VALUES (?, ?, ?, ?, ?, ?)`, orderID, from, to, actorID, role, nullable(note))
	return err
}

// DeleteOrder removes a COMPLETED or CANCELLED order. Its review goes with it,
// so the service rating is recomputed in the same transaction.
func (r *OrderRepository) DeleteOrder(ctx context.Context, id int64) error {
	return withTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		var row struct {
			ServiceID int64  `db:"service_id"`
			Status    string `db:"status"`
		}
		err := tx.GetContext(ctx, &row, `SELECT service_id, status FROM orders WHERE id = ? FOR UPDATE`, id)
		if err != nil {
			return notFound(err)
		}
		if !fsm.IsTerminal(row.Status) {
			return models.ErrOrderNotTerminal
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id); err != nil {
			return err
		}
		return recomputeRating(ctx, tx, row.ServiceID)
	})
}

// DeliveredBefore lists DELIVERED orders the buyer has not accepted since cutoff.
func (r *OrderRepository) DeliveredBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	orders := []models.Order{}
	err := r.DB.SelectContext(ctx, &orders,
		orderSelect+` WHERE o.status = ? AND o.delivered_at < ? ORDER BY o.delivered_at LIMIT ?`,
		fsm.StatusDelivered, cutoff, limit)
	return orders, err
}
