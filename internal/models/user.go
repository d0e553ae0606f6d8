package models

import (
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
	// RoleSystem marks transitions made by webhooks and scheduled jobs.
	RoleSystem = "system"
)

const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
	UserStatusBanned    = "banned"
	UserStatusDeleted   = "deleted"
)

type User struct {
	ID              int64      `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Email           string     `db:"email" json:"email"`
	Phone           *string    `db:"phone" json:"phone,omitempty"`
	PasswordHash    string     `db:"password_hash" json:"-"`
	Role            string     `db:"role" json:"role"`
	Status          string     `db:"status" json:"status"`
	Verified        bool       `db:"is_verified" json:"is_verified"`
	Locale          string     `db:"locale" json:"locale"`
	PayoutAccountID *string    `db:"payout_account_id" json:"payout_account_id,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Blocked reports whether the account may not use authenticated routes.
func (u User) Blocked() bool {
	return u.Status == UserStatusSuspended || u.Status == UserStatusBanned || u.Status == UserStatusDeleted
}

// UserDetail is the admin view of a user with activity counters.
type UserDetail struct {
	User
	ServicesCount  int   `db:"services_count" json:"services_count"`
	OrdersAsBuyer  int   `db:"orders_as_buyer" json:"orders_as_buyer"`
	OrdersAsSeller int   `db:"orders_as_seller" json:"orders_as_seller"`
	LifetimeSpent  int64 `db:"lifetime_spent" json:"lifetime_spent_cents"`
	LifetimeEarned int64 `db:"lifetime_earned" json:"lifetime_earned_cents"`
	OpenDisputes   int   `db:"open_disputes" json:"open_disputes"`
}

type UserFilter struct {
	ListParams
	Role   string
	Status string
}

type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type Session struct {
	ID           int64     `db:"id" json:"-"`
	UserID       int64     `db:"user_id" json:"user_id"`
	Role         string    `db:"role" json:"role"`
	RefreshToken string    `db:"refresh_token" json:"-"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
}

type SignUpRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=100"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Phone    *string `json:"phone" validate:"omitempty,e164"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Role     string  `json:"role" validate:"required,oneof=buyer seller"`
	Locale   string  `json:"locale" validate:"omitempty,oneof=ar en"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type UpdateProfileRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=100"`
	Phone  *string `json:"phone" validate:"omitempty,e164"`
	Locale *string `json:"locale" validate:"omitempty,oneof=ar en"`
}

type PayoutAccountRequest struct {
	AccountID string `json:"account_id" validate:"required,max=255"`
}

type DeviceTokenRequest struct {
	Token    string `json:"token" validate:"required,max=512"`
	Platform string `json:"platform" validate:"required,oneof=android ios web"`
}
