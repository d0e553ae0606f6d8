package fsm

import (
	"context"
	"database/sql"
	"errors"
)

// Status constants used by the marketplace order state machine.
const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusDelivered  = "DELIVERED"
	StatusDisputed   = "DISPUTED"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
)

// ErrInvalidTransition is returned by Apply when the table forbids the move.
var ErrInvalidTransition = errors.New("invalid status transition")

var transitions = map[string]map[string]struct{}{
	StatusPending: {
		StatusInProgress: {},
		StatusCancelled:  {},
	},
	StatusInProgress: {
		StatusDelivered: {},
		StatusCancelled: {},
		StatusDisputed:  {},
	},
	StatusDelivered: {
		StatusCompleted: {},
		StatusDisputed:  {},
	},
	StatusDisputed: {
		StatusCompleted: {},
		StatusCancelled: {},
	},
	StatusCompleted: {},
	StatusCancelled: {},
}

var ordered = []string{StatusPending, StatusInProgress, StatusDelivered, StatusDisputed, StatusCompleted, StatusCancelled}

// CanTransition returns whether an order can move from the current status to the target status.
// Re-applying the current status is not a transition.
func CanTransition(from, to string) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// Valid reports whether status is a known order status.
func Valid(status string) bool {
	_, ok := transitions[status]
	return ok
}

// IsTerminal reports whether no further transition is allowed.
func IsTerminal(status string) bool {
	allowed, ok := transitions[status]
	return ok && len(allowed) == 0
}

// Allowed lists the statuses reachable from the given one in a stable order.
func Allowed(from string) []string {
	allowed := transitions[from]
	out := make([]string, 0, len(allowed))
	for _, s := range ordered {
		if _, ok := allowed[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// All returns every known status.
func All() []string {
	out := make([]string, len(ordered))
	copy(out, ordered)
	return out
}

// Execer is satisfied by *sql.Tx, *sql.DB and their sqlx wrappers.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Apply updates an order status using optimistic validation.
func Apply(ctx context.Context, tx Execer, orderID int64, fromStatus, toStatus string) error {
	if !CanTransition(fromStatus, toStatus) {
		return ErrInvalidTransition
	}
	res, err := tx.ExecContext(ctx, `UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`, toStatus, orderID, fromStatus)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
