package models

import (
	"time"
)

type Order struct {
	ID              int64      `db:"id" json:"id"`
	BuyerID         int64      `db:"buyer_id" json:"buyer_id"`
	SellerID        int64      `db:"seller_id" json:"seller_id"`
	ServiceID       int64      `db:"service_id" json:"service_id"`
	PackageID       int64      `db:"package_id" json:"package_id"`
	PackageTier     string     `db:"package_tier" json:"package_tier"`
	PriceCents      int64      `db:"price_cents" json:"price_cents"`
	CommissionCents int64      `db:"commission_cents" json:"commission_cents"`
	Currency        string     `db:"currency" json:"currency"`
	Status          string     `db:"status" json:"status"`
	Requirements    *string    `db:"requirements" json:"requirements,omitempty"`
	DeliveryNote    *string    `db:"delivery_note" json:"delivery_note,omitempty"`
	PaymentIntentID *string    `db:"payment_intent_id" json:"payment_intent_id,omitempty"`
	PayoutID        *int64     `db:"payout_id" json:"payout_id,omitempty"`
	DueAt           *time.Time `db:"due_at" json:"due_at,omitempty"`
	DeliveredAt     *time.Time `db:"delivered_at" json:"delivered_at,omitempty"`
	CompletedAt     *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CancelledAt     *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	ServiceTitle    string     `db:"service_title" json:"service_title,omitempty"`
	BuyerName       string     `db:"buyer_name" json:"buyer_name,omitempty"`
	SellerName      string     `db:"seller_name" json:"seller_name,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// SellerShare is what the seller earns before refunds.
func (o Order) SellerShare() int64 {
	return o.PriceCents - o.CommissionCents
}

type OrderEvent struct {
	ID         int64     `db:"id" json:"id"`
	OrderID    int64     `db:"order_id" json:"order_id"`
	FromStatus string    `db:"from_status" json:"from_status"`
	ToStatus   string    `db:"to_status" json:"to_status"`
	ActorID    *int64    `db:"actor_id" json:"actor_id,omitempty"`
	ActorRole  string    `db:"actor_role" json:"actor_role"`
	Note       *string   `db:"note" json:"note,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type OrderDetail struct {
	Order
	Events  []OrderEvent `json:"events"`
	Dispute *Dispute     `json:"dispute,omitempty"`
}

type OrderFilter struct {
	ListParams
	Status    string
	BuyerID   *int64
	SellerID  *int64
	ServiceID *int64
	From      *time.Time
	To        *time.Time
}

type CreateOrderRequest struct {
	PackageID    int64   `json:"package_id" validate:"required,gt=0"`
	Requirements *string `json:"requirements" validate:"omitempty,max=5000"`
}

type CreateOrderResponse struct {
	Order        Order  `json:"order"`
	ClientSecret string `json:"client_secret,omitempty"`
}

type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=IN_PROGRESS DELIVERED COMPLETED DISPUTED CANCELLED"`
	Note   string `json:"note" validate:"max=2000"`
}

// Actor identifies who requests a status change.
type Actor struct {
	UserID int64
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
