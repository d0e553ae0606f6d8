package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khidmaBack/internal/models"
)

type fakePayouts struct {
	balances []models.SellerBalance
	nextID   int64
	reserved []int64
	paid     map[int64]string
	failed   map[int64]string
}

func (f *fakePayouts) Balances(_ context.Context, ids []int64) ([]models.SellerBalance, error) {
	if len(ids) == 0 {
		return f.balances, nil
	}
	want := map[int64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []models.SellerBalance
	for _, b := range f.balances {
		if want[b.SellerID] {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakePayouts) ReservePayout(_ context.Context, sellerID int64, currency string, minimum int64) (models.Payout, error) {
	for _, b := range f.balances {
		if b.SellerID != sellerID {
			continue
		}
		if b.NetCents() < minimum {
			return models.Payout{}, models.ErrBelowPayoutMinimum
		}
		f.nextID++
		f.reserved = append(f.reserved, sellerID)
		return models.Payout{
			ID: f.nextID, SellerID: sellerID, GrossCents: b.GrossCents, CommissionCents: b.CommissionCents,
			RefundCents: b.RefundCents, NetCents: b.NetCents(), Currency: currency,
			Status: models.PayoutStatusProcessing, OrdersCount: b.OrdersCount,
		}, nil
	}
	return models.Payout{}, models.ErrNoRecord
}

func (f *fakePayouts) MarkPaid(_ context.Context, id int64, transferID string) error {
	f.paid[id] = transferID
	return nil
}

func (f *fakePayouts) MarkFailed(_ context.Context, id int64, reason string) error {
	f.failed[id] = reason
	return nil
}

func (f *fakePayouts) ListPayouts(context.Context, models.PayoutFilter) ([]models.Payout, int, error) {
	return nil, 0, nil
}

func newPayoutFixture(balances ...models.SellerBalance) (*PayoutService, *fakePayouts, *fakeGateway, *fakeNotifier) {
	store := &fakePayouts{balances: balances, paid: map[int64]string{}, failed: map[int64]string{}}
	gw := &fakeGateway{}
	n := &fakeNotifier{}
	return &PayoutService{
		PayoutRepo: store,
		Payments:   gw,
		Notifier:   n,
		Logger:     &testLogger{},
		Currency:   "SAR",
		Minimum:    5000,
	}, store, gw, n
}

func TestProcessPayouts(t *testing.T) {
	svc, store, gw, n := newPayoutFixture(
		models.SellerBalance{SellerID: 1, PayoutAccountID: strPtr("acct_1"), OrdersCount: 2, GrossCents: 20000, CommissionCents: 4000, RefundCents: 2500},
		models.SellerBalance{SellerID: 2, GrossCents: 50000, CommissionCents: 10000},
		models.SellerBalance{SellerID: 3, PayoutAccountID: strPtr("acct_3"), GrossCents: 5000, CommissionCents: 1000},
		models.SellerBalance{SellerID: 4, PayoutAccountID: strPtr("acct_4"), GrossCents: 1000, CommissionCents: 200, RefundCents: 5000},
	)

	res, err := svc.Process(context.Background(), []int64{4, 3, 2, 1, 9})
	require.NoError(t, err)

	require.Len(t, res.Paid, 1)
	p := res.Paid[0]
	assert.Equal(t, int64(1), p.SellerID)
	assert.Equal(t, int64(13500), p.NetCents)
	assert.Equal(t, models.PayoutStatusPaid, p.Status)
	assert.Equal(t, "tr_1", store.paid[p.ID])

	require.Len(t, gw.transfers, 1)
	assert.Equal(t, "acct_1", gw.transfers[0].AccountID)
	assert.Equal(t, "payout-1", gw.transfers[0].IdempotencyKey)

	assert.Equal(t, map[int64]string{
		2: "error.no_payout_account",
		3: "error.below_minimum",
		4: "error.nothing_to_pay",
		9: "error.nothing_to_pay",
	}, res.Skipped)
	assert.Equal(t, []int64{1}, store.reserved)
	require.Len(t, n.calls, 1)
	assert.Equal(t, "payout", n.calls[0].kind)
}

func TestProcessPayoutTransferFailure(t *testing.T) {
	svc, store, gw, n := newPayoutFixture(
		models.SellerBalance{SellerID: 1, PayoutAccountID: strPtr("acct_1"), GrossCents: 20000, CommissionCents: 4000},
	)
	gw.transferErr = errProcessor

	res, err := svc.Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Paid)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, models.PayoutStatusFailed, res.Failed[0].Status)
	assert.Contains(t, store.failed[res.Failed[0].ID], "processor unavailable")
	assert.Nil(t, res.Skipped)
	assert.Empty(t, n.calls)
}

func TestSellerBalanceWithoutEarnings(t *testing.T) {
	svc, _, _, _ := newPayoutFixture()
	b, err := svc.SellerBalance(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), b.SellerID)
	assert.Equal(t, int64(0), b.NetCents())
}
