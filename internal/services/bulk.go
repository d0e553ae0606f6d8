package services

import (
	"errors"

	"golang.org/x/exp/slices"

	"khidmaBack/internal/models"
)

// normalizeIDs sorts ids and drops duplicates and non-positive values.
func normalizeIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id > 0 {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// runBulk applies fn to every id and collects per-id failures as i18n keys.
func runBulk(ids []int64, fn func(id int64) error) models.BulkResult {
	res := models.BulkResult{Updated: []int64{}}
	for _, id := range normalizeIDs(ids) {
		if err := fn(id); err != nil {
			if res.Failed == nil {
				res.Failed = make(map[int64]string)
			}
			res.Failed[id] = ErrorKey(err)
			continue
		}
		res.Updated = append(res.Updated, id)
	}
	return res
}

// ErrorKey returns the catalog key describing a domain error.
func ErrorKey(err error) string {
	switch {
	case errors.Is(err, models.ErrNoRecord),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrServiceNotFound),
		errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrReviewNotFound),
		errors.Is(err, models.ErrPackageNotFound),
		errors.Is(err, models.ErrCategoryNotFound),
		errors.Is(err, models.ErrDisputeNotFound):
		return "error.not_found"
	case errors.Is(err, models.ErrInvalidTransition):
		return "error.invalid_transition"
	case errors.Is(err, models.ErrStatusChanged):
		return "error.conflict"
	case errors.Is(err, models.ErrForbidden):
		return "error.forbidden"
	case errors.Is(err, models.ErrInvalidAction):
		return "error.invalid_action"
	case errors.Is(err, models.ErrReasonRequired):
		return "error.reason_required"
	case errors.Is(err, models.ErrReasonTooShort):
		return "error.validation"
	case errors.Is(err, models.ErrDisputeResolved):
		return "error.dispute_resolved"
	case errors.Is(err, models.ErrOrderNotTerminal):
		return "error.order_not_terminal"
	case errors.Is(err, models.ErrServiceHasOrders):
		return "error.service_has_orders"
	case errors.Is(err, models.ErrNoPayoutAccount):
		return "error.no_payout_account"
	case errors.Is(err, models.ErrBelowPayoutMinimum):
		return "error.below_minimum"
	case errors.Is(err, models.ErrInvalidAmount):
		return "error.invalid_amount"
	}
	return "error.internal"
}
