package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

const (
	ServiceStatusPendingReview = "pending_review"
	ServiceStatusApproved      = "approved"
	ServiceStatusRejected      = "rejected"
	ServiceStatusSuspended     = "suspended"
)

const (
	TierBasic    = "basic"
	TierStandard = "standard"
	TierPremium  = "premium"
)

// Service moderation actions accepted by the admin PATCH endpoint.
const (
	ServiceActionApprove   = "approve"
	ServiceActionReject    = "reject"
	ServiceActionFeature   = "feature"
	ServiceActionUnfeature = "unfeature"
	ServiceActionSuspend   = "suspend"
)

const MinServiceDescriptionLength = 120

type Service struct {
	ID              int64      `db:"id" json:"id"`
	SellerID        int64      `db:"seller_id" json:"seller_id"`
	CategoryID      int64      `db:"category_id" json:"category_id"`
	TitleAr         string     `db:"title_ar" json:"title_ar"`
	TitleEn         string     `db:"title_en" json:"title_en"`
	Description     string     `db:"description" json:"description"`
	Status          string     `db:"status" json:"status"`
	RejectionReason *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`
	IsFeatured      bool       `db:"is_featured" json:"is_featured"`
	AvgRating       float64    `db:"avg_rating" json:"avg_rating"`
	ReviewsCount    int        `db:"reviews_count" json:"reviews_count"`
	OrdersCount     int        `db:"orders_count" json:"orders_count"`
	StartingPrice   int64      `db:"starting_price" json:"starting_price_cents"`
	Images          Images     `db:"images" json:"images"`
	SellerName      string     `db:"seller_name" json:"seller_name,omitempty"`
	CategorySlug    string     `db:"category_slug" json:"category_slug,omitempty"`
	Packages        []Package  `db:"-" json:"packages,omitempty"`
	FAQs            []FAQ      `db:"-" json:"faqs,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

type Package struct {
	ID           int64  `db:"id" json:"id"`
	ServiceID    int64  `db:"service_id" json:"service_id"`
	Tier         string `db:"tier" json:"tier"`
	Name         string `db:"name" json:"name"`
	Description  string `db:"description" json:"description"`
	PriceCents   int64  `db:"price_cents" json:"price_cents"`
	DeliveryDays int    `db:"delivery_days" json:"delivery_days"`
	Revisions    int    `db:"revisions" json:"revisions"`
}

type FAQ struct {
	ID        int64  `db:"id" json:"id"`
	ServiceID int64  `db:"service_id" json:"service_id"`
	Question  string `db:"question" json:"question"`
	Answer    string `db:"answer" json:"answer"`
	SortOrder int    `db:"sort_order" json:"sort_order"`
}

type Image struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
}

// Images is stored as a JSON column.
type Images []Image

func (i Images) Value() (driver.Value, error) {
	if i == nil {
		return "[]", nil
	}
	b, err := json.Marshal(i)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (i *Images) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*i = Images{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("images: unsupported column type")
	}
	if len(data) == 0 {
		*i = Images{}
		return nil
	}
	return json.Unmarshal(data, i)
}

type PackageRequest struct {
	Tier         string `json:"tier" validate:"required,oneof=basic standard premium"`
	Name         string `json:"name" validate:"required,min=2,max=100"`
	Description  string `json:"description" validate:"max=1000"`
	PriceCents   int64  `json:"price_cents" validate:"gt=0"`
	DeliveryDays int    `json:"delivery_days" validate:"gte=1,lte=90"`
	Revisions    int    `json:"revisions" validate:"gte=0,lte=10"`
}

type FAQRequest struct {
	Question string `json:"question" validate:"required,max=300"`
	Answer   string `json:"answer" validate:"required,max=2000"`
}

type ServiceRequest struct {
	CategoryID  int64            `json:"category_id" validate:"required,gt=0"`
	TitleAr     string           `json:"title_ar" validate:"required,min=10,max=120"`
	TitleEn     string           `json:"title_en" validate:"omitempty,min=10,max=120"`
	Description string           `json:"description" validate:"required,min=120,max=5000"`
	Packages    []PackageRequest `json:"packages" validate:"required,min=1,max=3,unique=Tier,dive"`
	FAQs        []FAQRequest     `json:"faqs" validate:"max=20,dive"`
	Images      Images           `json:"images" validate:"max=10"`
}

type ServiceFilter struct {
	ListParams
	CategoryID *int64
	SellerID   *int64
	Status     string
	Featured   *bool
	MinPrice   *int64
	MaxPrice   *int64
	PublicOnly bool
}
