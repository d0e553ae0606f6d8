package models

import (
	"errors"
)

var (
	ErrNoRecord           = errors.New("models: no matching record found")
	ErrInvalidCredentials = errors.New("models: invalid credentials")
	ErrDuplicateEmail     = errors.New("models: duplicate email")
	ErrDuplicateSlug      = errors.New("models: duplicate slug")
	ErrUserNotFound       = errors.New("models: user not found")
	ErrUserBlocked        = errors.New("models: user is suspended or banned")
	ErrForbidden          = errors.New("models: action not allowed for this user")
	ErrServiceNotFound    = errors.New("service not found")
	ErrServiceNotActive   = errors.New("service is not available for ordering")
	ErrOwnService         = errors.New("sellers cannot order their own service")
	ErrServiceHasOrders   = errors.New("service has open orders")
	ErrPackageNotFound    = errors.New("package not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrStatusChanged      = errors.New("order status changed concurrently")
	ErrOrderNotTerminal   = errors.New("only completed or cancelled orders can be deleted")
	ErrReviewNotFound     = errors.New("review not found")
	ErrAlreadyReviewed    = errors.New("order already reviewed")
	ErrOrderNotCompleted  = errors.New("order is not completed")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrCategoryInUse      = errors.New("category has services or children")
	ErrDisputeNotFound    = errors.New("dispute not found")
	ErrDisputeResolved    = errors.New("dispute already resolved")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrNoPayoutAccount    = errors.New("seller has no payout account")
	ErrBelowPayoutMinimum = errors.New("balance below payout minimum")
	ErrInvalidAction      = errors.New("invalid action")
	ErrSessionExpired     = errors.New("models: session expired")
	ErrReasonRequired     = errors.New("a reason is required for this action")
	ErrReasonTooShort     = errors.New("dispute reason is too short")
	ErrPaymentFailed      = errors.New("payment processor rejected the request")
	ErrTooManyImages      = errors.New("service image limit reached")
	ErrInvalidFile        = errors.New("unsupported or empty file")
	ErrInvalidDateRange   = errors.New("invalid date range")
)
