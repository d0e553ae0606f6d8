package models

import (
	"time"
)

type Review struct {
	ID          int64      `db:"id" json:"id"`
	OrderID     int64      `db:"order_id" json:"order_id"`
	ServiceID   int64      `db:"service_id" json:"service_id"`
	BuyerID     int64      `db:"buyer_id" json:"buyer_id"`
	SellerID    int64      `db:"seller_id" json:"seller_id"`
	Rating      int        `db:"rating" json:"rating"`
	Comment     string     `db:"comment" json:"comment"`
	SellerReply *string    `db:"seller_reply" json:"seller_reply,omitempty"`
	IsHidden    bool       `db:"is_hidden" json:"is_hidden"`
	BuyerName   string     `db:"buyer_name" json:"buyer_name,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

type ReviewRequest struct {
	OrderID int64  `json:"order_id" validate:"required,gt=0"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

type ReviewReplyRequest struct {
	Reply string `json:"reply" validate:"required,max=1000"`
}

type ReviewFilter struct {
	ListParams
	ServiceID  *int64
	SellerID   *int64
	Rating     *int
	WithHidden bool
}
