package models

import (
	"time"
)

const (
	PayoutStatusProcessing = "processing"
	PayoutStatusPaid       = "paid"
	PayoutStatusFailed     = "failed"
)

const (
	RefundStatusPending   = "pending"
	RefundStatusSucceeded = "succeeded"
	RefundStatusFailed    = "failed"
)

type Payout struct {
	ID                  int64      `db:"id" json:"id"`
	SellerID            int64      `db:"seller_id" json:"seller_id"`
	GrossCents          int64      `db:"gross_cents" json:"gross_cents"`
	CommissionCents     int64      `db:"commission_cents" json:"commission_cents"`
	RefundCents         int64      `db:"refund_cents" json:"refund_cents"`
	NetCents            int64      `db:"net_cents" json:"net_cents"`
	Currency            string     `db:"currency" json:"currency"`
	Status              string     `db:"status" json:"status"`
	ProcessorTransferID *string    `db:"processor_transfer_id" json:"processor_transfer_id,omitempty"`
	FailureReason       *string    `db:"failure_reason" json:"failure_reason,omitempty"`
	OrdersCount         int        `db:"orders_count" json:"orders_count"`
	SellerName          string     `db:"seller_name" json:"seller_name,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	ProcessedAt         *time.Time `db:"processed_at" json:"processed_at,omitempty"`
}

// SellerBalance aggregates unpaid completed orders of one seller.
type SellerBalance struct {
	SellerID        int64   `db:"seller_id" json:"seller_id"`
	SellerName      string  `db:"seller_name" json:"seller_name"`
	PayoutAccountID *string `db:"payout_account_id" json:"payout_account_id,omitempty"`
	OrdersCount     int     `db:"orders_count" json:"orders_count"`
	GrossCents      int64   `db:"gross_cents" json:"gross_cents"`
	CommissionCents int64   `db:"commission_cents" json:"commission_cents"`
	RefundCents     int64   `db:"refund_cents" json:"refund_cents"`
}

// NetCents is the amount owed to the seller, never negative.
func (b SellerBalance) NetCents() int64 {
	net := b.GrossCents - b.CommissionCents - b.RefundCents
	if net < 0 {
		return 0
	}
	return net
}

type PayoutFilter struct {
	ListParams
	Status   string
	SellerID *int64
}

type ProcessPayoutsRequest struct {
	SellerIDs []int64 `json:"seller_ids" validate:"max=500,dive,gt=0"`
}

type PayoutRunResult struct {
	Paid    []Payout         `json:"paid"`
	Failed  []Payout         `json:"failed"`
	Skipped map[int64]string `json:"skipped,omitempty"`
}

type Refund struct {
	ID                int64      `db:"id" json:"id"`
	OrderID           int64      `db:"order_id" json:"order_id"`
	DisputeID         *int64     `db:"dispute_id" json:"dispute_id,omitempty"`
	AmountCents       int64      `db:"amount_cents" json:"amount_cents"`
	Reason            string     `db:"reason" json:"reason"`
	Status            string     `db:"status" json:"status"`
	ProcessorRefundID *string    `db:"processor_refund_id" json:"processor_refund_id,omitempty"`
	FailureReason     *string    `db:"failure_reason" json:"failure_reason,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

type RefundFilter struct {
	ListParams
	Status  string
	OrderID *int64
}
