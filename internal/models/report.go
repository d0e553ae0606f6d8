package models

import (
	"time"
)

type Dashboard struct {
	UsersByRole      map[string]int `json:"users_by_role"`
	ServicesByStatus map[string]int `json:"services_by_status"`
	OrdersByStatus   map[string]int `json:"orders_by_status"`
	OpenDisputes     int            `json:"open_disputes"`
	PendingPayouts   int            `json:"pending_payouts"`
	GrossVolume      int64          `json:"gross_volume_cents"`
	CommissionEarned int64          `json:"commission_earned_cents"`
	GeneratedAt      time.Time      `json:"generated_at"`
}

// StatusCount is one row of a GROUP BY status query.
type StatusCount struct {
	Key   string `db:"k"`
	Count int    `db:"n"`
}

type ReportRequest struct {
	From    time.Time
	To      time.Time
	GroupBy string
}

type ReportBucket struct {
	Period          string `db:"period" json:"period"`
	OrdersCount     int    `db:"orders_count" json:"orders_count"`
	GrossCents      int64  `db:"gross_cents" json:"gross_cents"`
	CommissionCents int64  `db:"commission_cents" json:"commission_cents"`
	RefundCents     int64  `db:"refund_cents" json:"refund_cents"`
	NetRevenueCents int64  `db:"-" json:"net_revenue_cents"`
}

type TopEntry struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	OrdersCount int    `db:"orders_count" json:"orders_count"`
	GrossCents  int64  `db:"gross_cents" json:"gross_cents"`
}

type FinancialReport struct {
	From          time.Time      `json:"from"`
	To            time.Time      `json:"to"`
	GroupBy       string         `json:"group_by"`
	Currency      string         `json:"currency"`
	Buckets       []ReportBucket `json:"buckets"`
	Totals        ReportBucket   `json:"totals"`
	TopSellers    []TopEntry     `json:"top_sellers"`
	TopCategories []TopEntry     `json:"top_categories"`
}
