package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khidmaBack/internal/fsm"
	"khidmaBack/internal/models"
	"khidmaBack/internal/pay"
)

const (
	buyerID  int64 = 10
	sellerID int64 = 20
	adminID  int64 = 1
)

var (
	buyer  = models.Actor{UserID: buyerID, Role: models.RoleBuyer}
	seller = models.Actor{UserID: sellerID, Role: models.RoleSeller}
	admin  = models.Actor{UserID: adminID, Role: models.RoleAdmin}
)

type orderFixture struct {
	svc      *OrderService
	orders   *fakeOrders
	refunds  *fakeRefunds
	gateway  *fakeGateway
	disputes *fakeDisputes
	webhooks *fakeWebhooks
	notifier *fakeNotifier
	logger   *testLogger
}

func newOrderFixture(orders ...models.Order) *orderFixture {
	f := &orderFixture{
		orders:   newFakeOrders(orders...),
		refunds:  &fakeRefunds{},
		gateway:  &fakeGateway{},
		webhooks: &fakeWebhooks{},
		notifier: &fakeNotifier{},
		logger:   &testLogger{},
	}
	f.disputes = &fakeDisputes{orders: f.orders, disputes: map[int64]models.Dispute{}}
	refundSvc := &RefundService{RefundRepo: f.refunds, Payments: f.gateway, Logger: f.logger}
	f.svc = &OrderService{
		OrderRepo:   f.orders,
		WebhookRepo: f.webhooks,
		ServiceRepo: &fakeServices{
			services: map[int64]models.Service{
				5: {ID: 5, SellerID: sellerID, Status: models.ServiceStatusApproved, TitleAr: "تصميم شعار"},
				6: {ID: 6, SellerID: sellerID, Status: models.ServiceStatusPendingReview},
			},
			packages: map[int64]models.Package{
				50: {ID: 50, ServiceID: 5, Tier: models.TierBasic, PriceCents: 15000, DeliveryDays: 3},
				60: {ID: 60, ServiceID: 6, Tier: models.TierBasic, PriceCents: 9000, DeliveryDays: 1},
			},
		},
		Payments: f.gateway,
		Refunds:  refundSvc,
		Disputes: &DisputeService{
			DisputeRepo: f.disputes,
			OrderRepo:   f.orders,
			Refunds:     refundSvc,
			Notifier:    f.notifier,
			Logger:      f.logger,
		},
		Notifier:          f.notifier,
		Logger:            f.logger,
		Currency:          "SAR",
		CommissionPercent: 20,
		WebhookSecret:     "whsec",
	}
	return f
}

func paidOrder(id int64, status string) models.Order {
	return models.Order{
		ID: id, BuyerID: buyerID, SellerID: sellerID, ServiceID: 5, PriceCents: 10000, CommissionCents: 2000,
		Currency: "SAR", Status: status, PaymentIntentID: strPtr("pi_existing"),
	}
}

func TestCommissionRoundsHalfUp(t *testing.T) {
	cases := []struct {
		price   int64
		percent int
		want    int64
	}{
		{10000, 20, 2000},
		{1999, 15, 300},
		{1, 50, 1},
		{3, 10, 0},
		{0, 20, 0},
	}
	for _, c := range cases {
		if got := Commission(c.price, c.percent); got != c.want {
			t.Fatalf("Commission(%d, %d) = %d, want %d", c.price, c.percent, got, c.want)
		}
	}
}

func TestPlaceOrderSnapshotsPackage(t *testing.T) {
	f := newOrderFixture()
	res, err := f.svc.PlaceOrder(context.Background(), buyer, models.CreateOrderRequest{PackageID: 50})
	require.NoError(t, err)

	o := res.Order
	assert.Equal(t, fsm.StatusPending, o.Status)
	assert.Equal(t, int64(15000), o.PriceCents)
	assert.Equal(t, int64(3000), o.CommissionCents)
	assert.Equal(t, sellerID, o.SellerID)
	assert.Equal(t, "secret", res.ClientSecret)
	require.NotNil(t, o.PaymentIntentID)
	require.NotNil(t, o.DueAt)
	assert.WithinDuration(t, time.Now().Add(72*time.Hour), *o.DueAt, time.Minute)

	require.Len(t, f.gateway.intents, 1)
	assert.NotEmpty(t, f.gateway.intents[0].IdempotencyKey)
	assert.Equal(t, int64(15000), f.gateway.intents[0].AmountCents)
}

func TestPlaceOrderRules(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	_, err := f.svc.PlaceOrder(ctx, seller, models.CreateOrderRequest{PackageID: 50})
	assert.ErrorIs(t, err, models.ErrOwnService)

	_, err = f.svc.PlaceOrder(ctx, buyer, models.CreateOrderRequest{PackageID: 60})
	assert.ErrorIs(t, err, models.ErrServiceNotActive)

	_, err = f.svc.PlaceOrder(ctx, buyer, models.CreateOrderRequest{PackageID: 999})
	assert.ErrorIs(t, err, models.ErrPackageNotFound)
}

func TestPlaceOrderCancelsWhenIntentFails(t *testing.T) {
	f := newOrderFixture()
	f.gateway.intentErr = errProcessor

	_, err := f.svc.PlaceOrder(context.Background(), buyer, models.CreateOrderRequest{PackageID: 50})
	require.ErrorIs(t, err, models.ErrPaymentFailed)

	require.Len(t, f.orders.transitions, 1)
	tr := f.orders.transitions[0]
	assert.Equal(t, fsm.StatusCancelled, tr.To)
	assert.Equal(t, models.RoleSystem, tr.ActorRole)
	assert.Empty(t, f.gateway.refunds, "unpaid order must not be refunded")
}

func TestPlaceOrderCancelsWhenIntentNotStored(t *testing.T) {
	f := newOrderFixture()
	f.orders.intentErr = errors.New("connection reset")

	_, err := f.svc.PlaceOrder(context.Background(), buyer, models.CreateOrderRequest{PackageID: 50})
	require.Error(t, err)

	require.Len(t, f.orders.transitions, 1)
	assert.Equal(t, fsm.StatusCancelled, f.orders.transitions[0].To)
	assert.Equal(t, fsm.StatusCancelled, f.orders.orders[101].Status)
	assert.NotEmpty(t, f.logger.errors)
}

func TestCompletedOrderRejectsEveryUpdate(t *testing.T) {
	f := newOrderFixture(paidOrder(1, fsm.StatusCompleted))
	for _, actor := range []models.Actor{buyer, seller, admin} {
		for _, to := range fsm.All() {
			_, err := f.svc.ChangeStatus(context.Background(), actor, 1, models.OrderStatusRequest{Status: to, Note: strings.Repeat("x", 30)})
			if !errors.Is(err, models.ErrInvalidTransition) {
				t.Fatalf("%s -> %s by %s: expected ErrInvalidTransition, got %v", fsm.StatusCompleted, to, actor.Role, err)
			}
		}
	}
	if len(f.orders.transitions) != 0 {
		t.Fatalf("expected no transitions, got %d", len(f.orders.transitions))
	}
}

func TestParticipantPermissions(t *testing.T) {
	cases := []struct {
		name   string
		status string
		actor  models.Actor
		to     string
		want   error
	}{
		{"seller delivers", fsm.StatusInProgress, seller, fsm.StatusDelivered, nil},
		{"buyer cannot deliver", fsm.StatusInProgress, buyer, fsm.StatusDelivered, models.ErrForbidden},
		{"buyer accepts", fsm.StatusDelivered, buyer, fsm.StatusCompleted, nil},
		{"seller cannot accept", fsm.StatusDelivered, seller, fsm.StatusCompleted, models.ErrForbidden},
		{"buyer cancels pending", fsm.StatusPending, buyer, fsm.StatusCancelled, nil},
		{"buyer cannot cancel started work", fsm.StatusInProgress, buyer, fsm.StatusCancelled, models.ErrForbidden},
		{"seller cancels started work", fsm.StatusInProgress, seller, fsm.StatusCancelled, nil},
		{"nobody marks payment", fsm.StatusPending, seller, fsm.StatusInProgress, models.ErrForbidden},
		{"buyer cannot accept disputed", fsm.StatusDisputed, buyer, fsm.StatusCompleted, models.ErrForbidden},
		{"seller cannot cancel disputed", fsm.StatusDisputed, seller, fsm.StatusCancelled, models.ErrForbidden},
		{"buyer cannot cancel disputed", fsm.StatusDisputed, buyer, fsm.StatusCancelled, models.ErrForbidden},
		{"stranger", fsm.StatusInProgress, models.Actor{UserID: 99, Role: models.RoleBuyer}, fsm.StatusDisputed, models.ErrForbidden},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newOrderFixture(paidOrder(1, c.status))
			_, err := f.svc.ChangeStatus(context.Background(), c.actor, 1,
				models.OrderStatusRequest{Status: c.to, Note: "the delivered files do not match the brief"})
			if c.want == nil {
				require.NoError(t, err)
				assert.Equal(t, c.to, f.orders.orders[1].Status)
				return
			}
			require.ErrorIs(t, err, c.want)
			assert.Equal(t, c.status, f.orders.orders[1].Status)
		})
	}
}

func TestSellerCancellationRefundsPaidOrder(t *testing.T) {
	f := newOrderFixture(paidOrder(1, fsm.StatusInProgress))
	o, err := f.svc.ChangeStatus(context.Background(), seller, 1, models.OrderStatusRequest{Status: fsm.StatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, fsm.StatusCancelled, o.Status)

	require.Len(t, f.gateway.refunds, 1)
	assert.Equal(t, int64(10000), f.gateway.refunds[0].AmountCents)
	assert.Equal(t, "pi_existing", f.gateway.refunds[0].PaymentIntentID)
	assert.Equal(t, models.RefundStatusSucceeded, f.refunds.status[1])
}

func TestRefundFailureIsSwallowed(t *testing.T) {
	f := newOrderFixture(paidOrder(1, fsm.StatusInProgress))
	f.gateway.refundErr = errProcessor

	_, err := f.svc.ChangeStatus(context.Background(), seller, 1, models.OrderStatusRequest{Status: fsm.StatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, models.RefundStatusFailed, f.refunds.status[1])
	assert.NotEmpty(t, f.logger.errors)
}

func TestDisputeRequiresReason(t *testing.T) {
	f := newOrderFixture(paidOrder(1, fsm.StatusDelivered))
	_, err := f.svc.ChangeStatus(context.Background(), buyer, 1, models.OrderStatusRequest{Status: fsm.StatusDisputed, Note: "bad work"})
	require.ErrorIs(t, err, models.ErrReasonTooShort)

	reason := "التصميم لا يطابق المتطلبات المتفق عليها"
	_, err = f.svc.ChangeStatus(context.Background(), buyer, 1, models.OrderStatusRequest{Status: fsm.StatusDisputed, Note: reason})
	require.NoError(t, err)
	require.Len(t, f.orders.transitions, 1)
	require.NotNil(t, f.orders.transitions[0].Dispute)
	assert.Equal(t, buyerID, f.orders.transitions[0].Dispute.OpenedBy)
	assert.Equal(t, reason, f.orders.transitions[0].Dispute.Reason)
}

func TestAdminLeavingDisputeResolvesIt(t *testing.T) {
	f := newOrderFixture(paidOrder(1, fsm.StatusDisputed))
	f.disputes.disputes[3] = models.Dispute{ID: 3, OrderID: 1, Status: models.DisputeStatusOpen}

	o, err := f.svc.ChangeStatus(context.Background(), admin, 1, models.OrderStatusRequest{Status: fsm.StatusCancelled, Note: "seller unresponsive"})
	require.NoError(t, err)
	assert.Equal(t, fsm.StatusCancelled, o.Status)

	require.Len(t, f.disputes.resolved, 1)
	res := f.disputes.resolved[0]
	assert.Equal(t, models.ResolutionRefundBuyer, res.Resolution)
	assert.Equal(t, int64(10000), res.RefundCents)
	require.Len(t, f.gateway.refunds, 1)
	assert.Equal(t, "refund-77", f.gateway.refunds[0].IdempotencyKey)
}

func TestParticipantsCannotBypassDisputeResolution(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(paidOrder(1, fsm.StatusDisputed))
	f.disputes.disputes[3] = models.Dispute{ID: 3, OrderID: 1, Status: models.DisputeStatusOpen}

	_, err := f.svc.ChangeStatus(ctx, seller, 1, models.OrderStatusRequest{Status: fsm.StatusCancelled})
	require.ErrorIs(t, err, models.ErrForbidden)
	_, err = f.svc.ChangeStatus(ctx, buyer, 1, models.OrderStatusRequest{Status: fsm.StatusCompleted})
	require.ErrorIs(t, err, models.ErrForbidden)
	assert.Empty(t, f.gateway.refunds)
	assert.Equal(t, fsm.StatusDisputed, f.orders.orders[1].Status)

	o, err := f.svc.ChangeStatus(ctx, admin, 1, models.OrderStatusRequest{Status: fsm.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, fsm.StatusCompleted, o.Status)
	assert.Equal(t, models.DisputeStatusResolved, f.disputes.disputes[3].Status)
}

func TestBulkChangeStatusReportsFailures(t *testing.T) {
	f := newOrderFixture(paidOrder(1, fsm.StatusDelivered), paidOrder(2, fsm.StatusCompleted))
	res, err := f.svc.BulkChangeStatus(context.Background(), admin,
		models.BulkStatusRequest{IDs: []int64{2, 1, 1, 404}, Action: fsm.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, res.Updated)
	assert.Equal(t, "error.invalid_transition", res.Failed[2])
	assert.Equal(t, "error.not_found", res.Failed[404])

	_, err = f.svc.BulkChangeStatus(context.Background(), admin, models.BulkStatusRequest{IDs: []int64{1}, Action: "SHIPPED"})
	assert.ErrorIs(t, err, models.ErrInvalidAction)
}

func webhookBody(t *testing.T, id, typ, intentID string, orderID string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"id":   id,
		"type": typ,
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":       intentID,
				"status":   "succeeded",
				"amount":   10000,
				"metadata": map[string]string{"order_id": orderID},
			},
		},
	})
	require.NoError(t, err)
	return body
}

func TestWebhookMarksOrderPaidOnce(t *testing.T) {
	o := paidOrder(1, fsm.StatusPending)
	f := newOrderFixture(o)
	body := webhookBody(t, "evt_1", pay.EventIntentSucceeded, "pi_existing", "1")
	sig := pay.Sign(body, "whsec")

	require.NoError(t, f.svc.HandleWebhook(context.Background(), body, sig))
	assert.Equal(t, fsm.StatusInProgress, f.orders.orders[1].Status)

	require.NoError(t, f.svc.HandleWebhook(context.Background(), body, sig))
	assert.Len(t, f.orders.transitions, 1, "replayed event must not transition again")
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newOrderFixture(paidOrder(1, fsm.StatusPending))
	body := webhookBody(t, "evt_1", pay.EventIntentSucceeded, "pi_existing", "1")

	err := f.svc.HandleWebhook(context.Background(), body, "deadbeef")
	require.ErrorIs(t, err, pay.ErrInvalidSignature)
	assert.Empty(t, f.webhooks.seen)
}

func TestWebhookPaymentFailedCancels(t *testing.T) {
	f := newOrderFixture(paidOrder(1, fsm.StatusPending))
	body := webhookBody(t, "evt_2", pay.EventIntentFailed, "pi_other", "1")

	require.NoError(t, f.svc.HandleWebhook(context.Background(), body, pay.Sign(body, "whsec")))
	assert.Equal(t, fsm.StatusCancelled, f.orders.orders[1].Status)
	assert.Empty(t, f.gateway.refunds)
}

func TestAutoCompleteOldDeliveries(t *testing.T) {
	old := time.Now().Add(-96 * time.Hour)
	recent := time.Now().Add(-time.Hour)
	a := paidOrder(1, fsm.StatusDelivered)
	a.DeliveredAt = &old
	b := paidOrder(2, fsm.StatusDelivered)
	b.DeliveredAt = &recent
	f := newOrderFixture(a, b)

	n, err := f.svc.AutoComplete(context.Background(), 72*time.Hour, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, fsm.StatusCompleted, f.orders.orders[1].Status)
	assert.Equal(t, fsm.StatusDelivered, f.orders.orders[2].Status)
}
