package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"khidmaBack/internal/fsm"
	"khidmaBack/internal/models"
)

type ReportRepository struct {
	DB *sqlx.DB
}

var periodFormats = map[string]string{
	"day":   "%Y-%m-%d",
	"month": "%Y-%m",
}

func (r *ReportRepository) countBy(ctx context.Context, query string, args ...interface{}) (map[string]int, error) {
	var rows []models.StatusCount
	if err := r.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Count
	}
	return out, nil
}

func (r *ReportRepository) Dashboard(ctx context.Context) (models.Dashboard, error) {
	var (
		d   models.Dashboard
		err error
	)
	if d.UsersByRole, err = r.countBy(ctx,
		`SELECT role AS k, COUNT(*) AS n FROM users WHERE status <> ? GROUP BY role`, models.UserStatusDeleted); err != nil {
		return d, err
	}
	if d.ServicesByStatus, err = r.countBy(ctx, `SELECT status AS k, COUNT(*) AS n FROM services GROUP BY status`); err != nil {
		return d, err
	}
	if d.OrdersByStatus, err = r.countBy(ctx, `SELECT status AS k, COUNT(*) AS n FROM orders GROUP BY status`); err != nil {
		return d, err
	}

	err = r.DB.QueryRowxContext(ctx, `
        SELECT
            (SELECT COUNT(*) FROM disputes WHERE status = ?),
            (SELECT COUNT(*) FROM payouts WHERE status = ?),
            (SELECT COALESCE(SUM(price_cents), 0) FROM orders WHERE status = ?),
            (SELECT COALESCE(SUM(commission_cents), 0) FROM orders WHERE status = ?)`,
		models.DisputeStatusOpen, models.PayoutStatusProcessing, fsm.StatusCompleted, fsm.StatusCompleted,
	).Scan(&d.OpenDisputes, &d.PendingPayouts, &d.GrossVolume, &d.CommissionEarned)
	if err != nil {
		return d, err
	}
	d.GeneratedAt = time.Now().UTC()
	return d, nil
}

// Buckets returns completed order volume and succeeded refunds per period in [from, to).
func (r *ReportRepository) Buckets(ctx context.Context, from, to time.Time, groupBy string) ([]models.ReportBucket, error) {
	format, ok := periodFormats[groupBy]
	if !ok {
		return nil, fmt.Errorf("unsupported group_by %q", groupBy)
	}

	var orders []models.ReportBucket
	err := r.DB.SelectContext(ctx, &orders, fmt.Sprintf(`
        SELECT DATE_FORMAT(completed_at, '%s') AS period,
               COUNT(*) AS orders_count,
               COALESCE(SUM(price_cents), 0) AS gross_cents,
               COALESCE(SUM(commission_cents), 0) AS commission_cents,
               0 AS refund_cents
        FROM orders
        WHERE status = ? AND completed_at >= ? AND completed_at < ?
        GROUP BY period
        ORDER BY period`, format), fsm.StatusCompleted, from, to)
	if err != nil {
		return nil, err
	}

	var refunds []models.ReportBucket
	err = r.DB.SelectContext(ctx, &refunds, fmt.Sprintf(`
        SELECT DATE_FORMAT(created_at, '%s') AS period,
               0 AS orders_count, 0 AS gross_cents, 0 AS commission_cents,
               COALESCE(SUM(amount_cents), 0) AS refund_cents
        FROM refunds
        WHERE status = ? AND created_at >= ? AND created_at < ?
        GROUP BY period
        ORDER BY period`, format), models.RefundStatusSucceeded, from, to)
	if err != nil {
		return nil, err
	}
	return MergeBuckets(orders, refunds), nil
}

// MergeBuckets joins order and refund rows by period, keeping periods sorted.
func MergeBuckets(orders, refunds []models.ReportBucket) []models.ReportBucket {
	out := make([]models.ReportBucket, 0, len(orders)+len(refunds))
	i, j := 0, 0
	for i < len(orders) || j < len(refunds) {
		switch {
		case j >= len(refunds) || (i < len(orders) && orders[i].Period < refunds[j].Period):
			out = append(out, orders[i])
			i++
		case i >= len(orders) || refunds[j].Period < orders[i].Period:
			out = append(out, refunds[j])
			j++
		default:
			b := orders[i]
			b.RefundCents = refunds[j].RefundCents
			out = append(out, b)
			i++
			j++
		}
	}
	for k := range out {
		out[k].NetRevenueCents = out[k].GrossCents - out[k].RefundCents
	}
	return out
}

func (r *ReportRepository) TopSellers(ctx context.Context, from, to time.Time, limit int) ([]models.TopEntry, error) {
	entries := []models.TopEntry{}
	err := r.DB.SelectContext(ctx, &entries, `
        SELECT u.id, u.name, COUNT(*) AS orders_count, SUM(o.price_cents) AS gross_cents
        FROM orders o
        JOIN users u ON u.id = o.seller_id
        WHERE o.status = ? AND o.completed_at >= ? AND o.completed_at < ?
        GROUP BY u.id, u.name
        ORDER BY gross_cents DESC
        LIMIT ?`, fsm.StatusCompleted, from, to, limit)
	return entries, err
}

func (r *ReportRepository) TopCategories(ctx context.Context, from, to time.Time, english bool, limit int) ([]models.TopEntry, error) {
	nameCol := "c.name_ar"
	if english {
		nameCol = "c.name_en"
	}
	entries := []models.TopEntry{}
	err := r.DB.SelectContext(ctx, &entries, `
        SELECT c.id, `+nameCol+` AS name, COUNT(*) AS orders_count, SUM(o.price_cents) AS gross_cents
        FROM orders o
        JOIN services s ON s.id = o.service_id
        JOIN categories c ON c.id = s.category_id
        WHERE o.status = ? AND o.completed_at >= ? AND o.completed_at < ?
        GROUP BY c.id, `+nameCol+`
        ORDER BY gross_cents DESC
        LIMIT ?`, fsm.StatusCompleted, from, to, limit)
	return entries, err
}
