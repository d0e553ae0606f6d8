package models

import (
	"time"
)

const (
	DisputeStatusOpen     = "open"
	DisputeStatusResolved = "resolved"
)

const (
	ResolutionRefundBuyer   = "refund_buyer"
	ResolutionReleaseSeller = "release_seller"
	ResolutionPartialRefund = "partial_refund"
)

const MinDisputeReasonLength = 20

type Dispute struct {
	ID          int64      `db:"id" json:"id"`
	OrderID     int64      `db:"order_id" json:"order_id"`
	OpenedBy    int64      `db:"opened_by" json:"opened_by"`
	Reason      string     `db:"reason" json:"reason"`
	Status      string     `db:"status" json:"status"`
	Resolution  *string    `db:"resolution" json:"resolution,omitempty"`
	AdminNote   *string    `db:"admin_note" json:"admin_note,omitempty"`
	RefundCents *int64     `db:"refund_cents" json:"refund_cents,omitempty"`
	ResolvedBy  *int64     `db:"resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	OrderStatus string     `db:"order_status" json:"order_status,omitempty"`
	PriceCents  int64      `db:"price_cents" json:"price_cents,omitempty"`
	BuyerID     int64      `db:"buyer_id" json:"buyer_id,omitempty"`
	SellerID    int64      `db:"seller_id" json:"seller_id,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

type DisputeFilter struct {
	ListParams
	Status string
}

type ResolveDisputeRequest struct {
	Resolution  string `json:"resolution" validate:"required,oneof=refund_buyer release_seller partial_refund"`
	RefundCents int64  `json:"refund_cents" validate:"required_if=Resolution partial_refund,gte=0"`
	Note        string `json:"note" validate:"max=2000"`
}
