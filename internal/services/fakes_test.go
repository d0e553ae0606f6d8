package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"khidmaBack/internal/fsm"
	"khidmaBack/internal/models"
	"khidmaBack/internal/pay"
	"khidmaBack/internal/repositories"
)

type testLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *testLogger) Infof(string, ...interface{}) {}

func (l *testLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}

type fakeOrders struct {
	orders      map[int64]models.Order
	transitions []repositories.Transition
	nextID      int64
	intentErr   error
}

func newFakeOrders(orders ...models.Order) *fakeOrders {
	f := &fakeOrders{orders: map[int64]models.Order{}, nextID: 100}
	for _, o := range orders {
		f.orders[o.ID] = o
	}
	return f
}

func (f *fakeOrders) CreateOrder(_ context.Context, o models.Order) (models.Order, error) {
	f.nextID++
	o.ID = f.nextID
	o.Status = fsm.StatusPending
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakeOrders) SetPaymentIntent(_ context.Context, id int64, intentID string) error {
	if f.intentErr != nil {
		return f.intentErr
	}
	o := f.orders[id]
	o.PaymentIntentID = &intentID
	f.orders[id] = o
	return nil
}

func (f *fakeOrders) GetOrderByID(_ context.Context, id int64) (models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return models.Order{}, models.ErrNoRecord
	}
	return o, nil
}

func (f *fakeOrders) GetOrderByIntent(_ context.Context, intentID string) (models.Order, error) {
	for _, o := range f.orders {
		if o.PaymentIntentID != nil && *o.PaymentIntentID == intentID {
			return o, nil
		}
	}
	return models.Order{}, models.ErrNoRecord
}

func (f *fakeOrders) GetOrderDetail(ctx context.Context, id int64) (models.OrderDetail, error) {
	o, err := f.GetOrderByID(ctx, id)
	return models.OrderDetail{Order: o}, err
}

func (f *fakeOrders) ListOrders(context.Context, models.OrderFilter) ([]models.Order, int, error) {
	return nil, 0, nil
}

func (f *fakeOrders) ApplyTransition(_ context.Context, t repositories.Transition) error {
	if !fsm.CanTransition(t.From, t.To) {
		return models.ErrInvalidTransition
	}
	o, ok := f.orders[t.OrderID]
	if !ok || o.Status != t.From {
		return models.ErrStatusChanged
	}
	o.Status = t.To
	f.orders[t.OrderID] = o
	f.transitions = append(f.transitions, t)
	return nil
}

func (f *fakeOrders) DeleteOrder(context.Context, int64) error { return nil }

func (f *fakeOrders) DeliveredBefore(_ context.Context, cutoff time.Time, _ int) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.Status == fsm.StatusDelivered && o.DeliveredAt != nil && o.DeliveredAt.Before(cutoff) {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeRefunds struct {
	nextID  int64
	created []models.Refund
	status  map[int64]string
}

func (f *fakeRefunds) CreateRefund(_ context.Context, orderID int64, amount int64, reason string) (int64, error) {
	f.nextID++
	f.created = append(f.created, models.Refund{ID: f.nextID, OrderID: orderID, AmountCents: amount, Reason: reason})
	return f.nextID, nil
}

func (f *fakeRefunds) MarkSucceeded(_ context.Context, id int64, _ string) error {
	f.set(id, models.RefundStatusSucceeded)
	return nil
}

func (f *fakeRefunds) MarkFailed(_ context.Context, id int64, _ string) error {
	f.set(id, models.RefundStatusFailed)
	return nil
}

func (f *fakeRefunds) set(id int64, status string) {
	if f.status == nil {
		f.status = map[int64]string{}
	}
	f.status[id] = status
}

func (f *fakeRefunds) ListRefunds(context.Context, models.RefundFilter) ([]models.Refund, int, error) {
	return f.created, len(f.created), nil
}

type fakeGateway struct {
	intentErr   error
	refundErr   error
	transferErr error
	refunds     []pay.RefundRequest
	transfers   []pay.TransferRequest
	intents     []pay.IntentRequest
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, req pay.IntentRequest) (pay.Intent, error) {
	g.intents = append(g.intents, req)
	if g.intentErr != nil {
		return pay.Intent{}, g.intentErr
	}
	return pay.Intent{ID: fmt.Sprintf("pi_%d", req.OrderID), ClientSecret: "secret", Status: "requires_payment_method"}, nil
}

func (g *fakeGateway) Refund(_ context.Context, req pay.RefundRequest) (pay.RefundResult, error) {
	g.refunds = append(g.refunds, req)
	if g.refundErr != nil {
		return pay.RefundResult{}, g.refundErr
	}
	return pay.RefundResult{ID: "re_1", Status: "succeeded"}, nil
}

func (g *fakeGateway) Transfer(_ context.Context, req pay.TransferRequest) (pay.Transfer, error) {
	g.transfers = append(g.transfers, req)
	if g.transferErr != nil {
		return pay.Transfer{}, g.transferErr
	}
	return pay.Transfer{ID: "tr_1", Status: "paid"}, nil
}

// fakeDisputes resolves against the shared order fake like the repository does.
type fakeDisputes struct {
	orders   *fakeOrders
	disputes map[int64]models.Dispute
	resolved []repositories.Resolution
}

func (f *fakeDisputes) GetDispute(_ context.Context, id int64) (models.Dispute, error) {
	d, ok := f.disputes[id]
	if !ok {
		return models.Dispute{}, models.ErrNoRecord
	}
	o := f.orders.orders[d.OrderID]
	d.OrderStatus, d.PriceCents, d.BuyerID, d.SellerID = o.Status, o.PriceCents, o.BuyerID, o.SellerID
	return d, nil
}

func (f *fakeDisputes) OpenDisputeForOrder(ctx context.Context, orderID int64) (models.Dispute, error) {
	for id, d := range f.disputes {
		if d.OrderID == orderID && d.Status == models.DisputeStatusOpen {
			return f.GetDispute(ctx, id)
		}
	}
	return models.Dispute{}, models.ErrNoRecord
}

func (f *fakeDisputes) ListDisputes(context.Context, models.DisputeFilter) ([]models.Dispute, int, error) {
	return nil, 0, nil
}

func (f *fakeDisputes) Resolve(ctx context.Context, res repositories.Resolution) (int64, error) {
	d := f.disputes[res.DisputeID]
	if d.Status != models.DisputeStatusOpen {
		return 0, models.ErrDisputeResolved
	}
	adminID := res.AdminID
	err := f.orders.ApplyTransition(ctx, repositories.Transition{
		OrderID: res.OrderID, From: fsm.StatusDisputed, To: res.OrderStatus, ActorID: &adminID, ActorRole: models.RoleAdmin,
	})
	if err != nil {
		return 0, err
	}
	d.Status = models.DisputeStatusResolved
	d.Resolution = &res.Resolution
	f.disputes[res.DisputeID] = d
	f.resolved = append(f.resolved, res)
	if res.RefundCents > 0 {
		return 77, nil
	}
	return 0, nil
}

type fakeWebhooks struct {
	seen      map[string]bool
	forgotten []string
}

func (f *fakeWebhooks) Record(_ context.Context, eventID, _ string) (bool, error) {
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[eventID] {
		return false, nil
	}
	f.seen[eventID] = true
	return true, nil
}

func (f *fakeWebhooks) Forget(_ context.Context, eventID string) error {
	delete(f.seen, eventID)
	f.forgotten = append(f.forgotten, eventID)
	return nil
}

type notified struct {
	kind   string
	id     int64
	from   string
	to     string
	detail string
}

type fakeNotifier struct {
	calls []notified
}

func (n *fakeNotifier) OrderCreated(o models.Order) {
	n.calls = append(n.calls, notified{kind: "created", id: o.ID})
}

func (n *fakeNotifier) OrderStatusChanged(o models.Order, from, to string, _ int64) {
	n.calls = append(n.calls, notified{kind: "status", id: o.ID, from: from, to: to})
}

func (n *fakeNotifier) DisputeResolved(o models.Order, resolution string) {
	n.calls = append(n.calls, notified{kind: "dispute", id: o.ID, detail: resolution})
}

func (n *fakeNotifier) PayoutSent(p models.Payout) {
	n.calls = append(n.calls, notified{kind: "payout", id: p.ID})
}

func (n *fakeNotifier) ServiceModerated(s models.Service, action string) {
	n.calls = append(n.calls, notified{kind: "service", id: s.ID, detail: action})
}

func (n *fakeNotifier) ReviewCreated(rv models.Review) {
	n.calls = append(n.calls, notified{kind: "review", id: rv.ID})
}

type fakeServices struct {
	services map[int64]models.Service
	packages map[int64]models.Package
	moderate map[int64]error
}

func (f *fakeServices) CreateService(_ context.Context, s models.Service) (models.Service, error) {
	s.ID = int64(len(f.services) + 1)
	s.Status = models.ServiceStatusPendingReview
	f.services[s.ID] = s
	return s, nil
}

func (f *fakeServices) UpdateService(_ context.Context, s models.Service) (models.Service, error) {
	s.Status = models.ServiceStatusPendingReview
	f.services[s.ID] = s
	return s, nil
}

func (f *fakeServices) GetServiceByID(_ context.Context, id int64) (models.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return models.Service{}, models.ErrNoRecord
	}
	return s, nil
}

func (f *fakeServices) GetPackage(_ context.Context, id int64) (models.Package, models.Service, error) {
	p, ok := f.packages[id]
	if !ok {
		return models.Package{}, models.Service{}, models.ErrNoRecord
	}
	return p, f.services[p.ServiceID], nil
}

func (f *fakeServices) ListServices(context.Context, models.ServiceFilter) ([]models.Service, int, error) {
	return nil, 0, nil
}

func (f *fakeServices) Moderate(_ context.Context, id int64, action, _ string) error {
	if err := f.moderate[id]; err != nil {
		return err
	}
	if _, ok := f.services[id]; !ok {
		return models.ErrNoRecord
	}
	return nil
}

func (f *fakeServices) DeleteService(_ context.Context, id int64) error {
	delete(f.services, id)
	return nil
}

func (f *fakeServices) SetImages(_ context.Context, id int64, images models.Images) error {
	s := f.services[id]
	s.Images = images
	f.services[id] = s
	return nil
}

var errProcessor = errors.New("processor unavailable")

func strPtr(s string) *string { return &s }
