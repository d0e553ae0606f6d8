package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khidmaBack/internal/fsm"
	"khidmaBack/internal/models"
)

func newDisputeFixture() (*DisputeService, *orderFixture) {
	f := newOrderFixture(paidOrder(1, fsm.StatusDisputed))
	f.disputes.disputes[3] = models.Dispute{ID: 3, OrderID: 1, Status: models.DisputeStatusOpen}
	return f.svc.Disputes, f
}

func TestPartialRefundBounds(t *testing.T) {
	svc, f := newDisputeFixture()
	ctx := context.Background()
	for _, amount := range []int64{0, -5, 10000, 12000} {
		_, err := svc.Resolve(ctx, adminID, 3, models.ResolveDisputeRequest{
			Resolution: models.ResolutionPartialRefund, RefundCents: amount,
		})
		if err != models.ErrInvalidAmount {
			t.Fatalf("amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
	if len(f.disputes.resolved) != 0 {
		t.Fatalf("expected nothing resolved, got %d", len(f.disputes.resolved))
	}

	d, err := svc.Resolve(ctx, adminID, 3, models.ResolveDisputeRequest{
		Resolution: models.ResolutionPartialRefund, RefundCents: 2500, Note: "half the logo variants missing",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DisputeStatusResolved, d.Status)
	assert.Equal(t, fsm.StatusCompleted, f.orders.orders[1].Status)
	require.Len(t, f.gateway.refunds, 1)
	assert.Equal(t, int64(2500), f.gateway.refunds[0].AmountCents)
}

func TestReleaseSellerHasNoRefund(t *testing.T) {
	svc, f := newDisputeFixture()
	_, err := svc.Resolve(context.Background(), adminID, 3, models.ResolveDisputeRequest{Resolution: models.ResolutionReleaseSeller})
	require.NoError(t, err)
	assert.Equal(t, fsm.StatusCompleted, f.orders.orders[1].Status)
	assert.Empty(t, f.gateway.refunds)

	require.NotEmpty(t, f.notifier.calls)
	last := f.notifier.calls[len(f.notifier.calls)-1]
	assert.Equal(t, "dispute", last.kind)
	assert.Equal(t, models.ResolutionReleaseSeller, last.detail)
}

func TestResolveTwiceFails(t *testing.T) {
	svc, _ := newDisputeFixture()
	ctx := context.Background()
	_, err := svc.Resolve(ctx, adminID, 3, models.ResolveDisputeRequest{Resolution: models.ResolutionRefundBuyer})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, adminID, 3, models.ResolveDisputeRequest{Resolution: models.ResolutionReleaseSeller})
	assert.ErrorIs(t, err, models.ErrDisputeResolved)

	_, err = svc.Resolve(ctx, adminID, 404, models.ResolveDisputeRequest{Resolution: models.ResolutionReleaseSeller})
	assert.ErrorIs(t, err, models.ErrDisputeNotFound)
}
