package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"khidmaBack/internal/fsm"
	"khidmaBack/internal/models"
	"khidmaBack/internal/pay"
	"khidmaBack/internal/repositories"
)

// Commission is the platform share of price, rounded half up to the cent.
func Commission(priceCents int64, percent int) int64 {
	return (priceCents*int64(percent) + 50) / 100
}

type OrderService struct {
	OrderRepo         OrderStore
	ServiceRepo       ServiceStore
	WebhookRepo       WebhookStore
	Payments          PaymentGateway
	Refunds           *RefundService
	Disputes          *DisputeService
	Notifier          Notifier
	Metrics           MetricsRecorder
	Logger            Logger
	Currency          string
	CommissionPercent int
	WebhookSecret     string
}

// PlaceOrder snapshots the package price and deadline into a PENDING order and
// opens a payment intent for it.
func (s *OrderService) PlaceOrder(ctx context.Context, buyer models.Actor, req models.CreateOrderRequest) (models.CreateOrderResponse, error) {
	pkg, svc, err := s.ServiceRepo.GetPackage(ctx, req.PackageID)
	if errors.Is(err, models.ErrNoRecord) {
		return models.CreateOrderResponse{}, models.ErrPackageNotFound
	}
	if err != nil {
		return models.CreateOrderResponse{}, err
	}
	if svc.Status != models.ServiceStatusApproved {
		return models.CreateOrderResponse{}, models.ErrServiceNotActive
	}
	if svc.SellerID == buyer.UserID {
		return models.CreateOrderResponse{}, models.ErrOwnService
	}

	due := time.Now().Add(time.Duration(pkg.DeliveryDays) * 24 * time.Hour)
	order, err := s.OrderRepo.CreateOrder(ctx, models.Order{
		BuyerID:         buyer.UserID,
		SellerID:        svc.SellerID,
		ServiceID:       svc.ID,
		PackageID:       pkg.ID,
		PackageTier:     pkg.Tier,
		ServiceTitle:    svc.TitleAr,
		PriceCents:      pkg.PriceCents,
		CommissionCents: Commission(pkg.PriceCents, s.CommissionPercent),
		Currency:        s.Currency,
		Requirements:    req.Requirements,
		DueAt:           &due,
	})
	if err != nil {
		return models.CreateOrderResponse{}, err
	}
	metricsOrNoop(s.Metrics).OrderCreated()
	if s.Notifier != nil {
		s.Notifier.OrderCreated(order)
	}

	intent, err := s.Payments.CreatePaymentIntent(ctx, pay.IntentRequest{
		OrderID:        order.ID,
		AmountCents:    order.PriceCents,
		Currency:       order.Currency,
		Description:    fmt.Sprintf("Order #%d: %s", order.ID, order.ServiceTitle),
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		s.Logger.Errorf("order %d: create payment intent: %v", order.ID, err)
		if _, terr := s.transition(ctx, order, fsm.StatusCancelled, systemActor, "payment intent failed", nil); terr != nil {
			s.Logger.Errorf("order %d: cancel after payment failure: %v", order.ID, terr)
		}
		return models.CreateOrderResponse{}, fmt.Errorf("%w: %v", models.ErrPaymentFailed, err)
	}
	if err := s.OrderRepo.SetPaymentIntent(ctx, order.ID, intent.ID); err != nil {
		s.Logger.Errorf("order %d: store payment intent %s: %v", order.ID, intent.ID, err)
		if _, terr := s.transition(ctx, order, fsm.StatusCancelled, systemActor, "payment intent not stored", nil); terr != nil {
			s.Logger.Errorf("order %d: cancel after intent store failure: %v", order.ID, terr)
		}
		return models.CreateOrderResponse{}, err
	}
	order.PaymentIntentID = &intent.ID
	return models.CreateOrderResponse{Order: order, ClientSecret: intent.ClientSecret}, nil
}

var systemActor = models.Actor{Role: models.RoleSystem}

// HandleWebhook verifies and applies a processor event. Replayed events are
// acknowledged without side effects.
func (s *OrderService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	ev, err := pay.ParseEvent(body, signature, s.WebhookSecret)
	if err != nil {
		return err
	}
	first, err := s.WebhookRepo.Record(ctx, ev.ID, ev.Type)
	if err != nil {
		return err
	}
	if !first {
		s.Logger.Infof("webhook %s already processed", ev.ID)
		return nil
	}
	if err := s.processEvent(ctx, ev); err != nil {
		if ferr := s.WebhookRepo.Forget(ctx, ev.ID); ferr != nil {
			s.Logger.Errorf("webhook %s: forget after failure: %v", ev.ID, ferr)
		}
		return err
	}
	return nil
}

func (s *OrderService) processEvent(ctx context.Context, ev pay.Event) error {
	switch ev.Type {
	case pay.EventIntentSucceeded, pay.EventIntentFailed:
	default:
		s.Logger.Infof("webhook %s: ignoring event type %s", ev.ID, ev.Type)
		return nil
	}

	order, err := s.orderForEvent(ctx, ev)
	if errors.Is(err, models.ErrOrderNotFound) {
		s.Logger.Errorf("webhook %s: no order for intent %s", ev.ID, ev.Data.Object.ID)
		return nil
	}
	if err != nil {
		return err
	}

	if ev.Type == pay.EventIntentFailed {
		if order.Status != fsm.StatusPending {
			return nil
		}
		_, err = s.transition(ctx, order, fsm.StatusCancelled, systemActor, "payment failed", nil)
		if errors.Is(err, models.ErrStatusChanged) {
			return nil
		}
		return err
	}

	switch order.Status {
	case fsm.StatusPending:
		_, err = s.transition(ctx, order, fsm.StatusInProgress, systemActor, "payment received", nil)
		if errors.Is(err, models.ErrStatusChanged) {
			return nil
		}
		return err
	case fsm.StatusCancelled:
		// Paid after the buyer cancelled: give the money back.
		order.PaymentIntentID = &ev.Data.Object.ID
		s.Refunds.CreateAndIssue(ctx, order, order.PriceCents, "paid after cancellation")
	}
	return nil
}

func (s *OrderService) orderForEvent(ctx context.Context, ev pay.Event) (models.Order, error) {
	order, err := s.OrderRepo.GetOrderByIntent(ctx, ev.Data.Object.ID)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, models.ErrNoRecord) {
		return models.Order{}, err
	}
	id, idErr := ev.OrderID()
	if idErr != nil {
		return models.Order{}, models.ErrOrderNotFound
	}
	return s.GetOrder(ctx, id)
}

func (s *OrderService) GetOrder(ctx context.Context, id int64) (models.Order, error) {
	order, err := s.OrderRepo.GetOrderByID(ctx, id)
	if errors.Is(err, models.ErrNoRecord) {
		return models.Order{}, models.ErrOrderNotFound
	}
	return order, err
}

// GetOrderDetail returns the order with its history to participants and admins.
func (s *OrderService) GetOrderDetail(ctx context.Context, actor models.Actor, id int64) (models.OrderDetail, error) {
	detail, err := s.OrderRepo.GetOrderDetail(ctx, id)
	if errors.Is(err, models.ErrNoRecord) {
		return models.OrderDetail{}, models.ErrOrderNotFound
	}
	if err != nil {
		return models.OrderDetail{}, err
	}
	if !actor.IsAdmin() && detail.BuyerID != actor.UserID && detail.SellerID != actor.UserID {
		return models.OrderDetail{}, models.ErrForbidden
	}
	return detail, nil
}

// ListMine lists orders where actor is the buyer, or the seller when asSeller is set.
func (s *OrderService) ListMine(ctx context.Context, actor models.Actor, asSeller bool, f models.OrderFilter) ([]models.Order, int, error) {
	f.BuyerID, f.SellerID = nil, nil
	if asSeller {
		f.SellerID = &actor.UserID
	} else {
		f.BuyerID = &actor.UserID
	}
	return s.OrderRepo.ListOrders(ctx, f)
}

func (s *OrderService) ListAll(ctx context.Context, f models.OrderFilter) ([]models.Order, int, error) {
	return s.OrderRepo.ListOrders(ctx, f)
}

// ChangeStatus applies a participant or admin status change.
func (s *OrderService) ChangeStatus(ctx context.Context, actor models.Actor, orderID int64, req models.OrderStatusRequest) (models.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	to := req.Status
	note := strings.TrimSpace(req.Note)

	if !fsm.CanTransition(order.Status, to) {
		return models.Order{}, models.ErrInvalidTransition
	}

	if actor.IsAdmin() {
		if order.Status == fsm.StatusDisputed {
			resolution := models.ResolutionReleaseSeller
			if to == fsm.StatusCancelled {
				resolution = models.ResolutionRefundBuyer
			}
			if _, err := s.Disputes.ResolveForOrder(ctx, actor.UserID, order.ID, resolution, note); err != nil {
				return models.Order{}, err
			}
			return s.GetOrder(ctx, order.ID)
		}
	} else if err := participantMay(order, actor.UserID, to); err != nil {
		return models.Order{}, err
	}

	var dispute *models.Dispute
	if to == fsm.StatusDisputed {
		if utf8.RuneCountInString(note) < models.MinDisputeReasonLength {
			return models.Order{}, models.ErrReasonTooShort
		}
		dispute = &models.Dispute{OpenedBy: actor.UserID, Reason: note}
	}
	return s.transition(ctx, order, to, actor, note, dispute)
}

// participantMay enforces who may request each status.
func participantMay(order models.Order, userID int64, to string) error {
	isBuyer := order.BuyerID == userID
	isSeller := order.SellerID == userID
	if !isBuyer && !isSeller {
		return models.ErrForbidden
	}
	// Disputed orders only leave through admin resolution.
	if order.Status == fsm.StatusDisputed {
		return models.ErrForbidden
	}
	var ok bool
	switch to {
	case fsm.StatusDelivered:
		ok = isSeller
	case fsm.StatusCompleted:
		ok = isBuyer
	case fsm.StatusDisputed:
		ok = true
	case fsm.StatusCancelled:
		ok = order.Status == fsm.StatusPending || (isSeller && order.Status == fsm.StatusInProgress)
	}
	if !ok {
		return models.ErrForbidden
	}
	return nil
}

// BulkChangeStatus applies the same admin status change to many orders.
func (s *OrderService) BulkChangeStatus(ctx context.Context, admin models.Actor, req models.BulkStatusRequest) (models.BulkResult, error) {
	if !fsm.Valid(req.Action) {
		return models.BulkResult{}, models.ErrInvalidAction
	}
	return runBulk(req.IDs, func(id int64) error {
		_, err := s.ChangeStatus(ctx, admin, id, models.OrderStatusRequest{Status: req.Action, Note: req.Reason})
		return err
	}), nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, id int64) error {
	err := s.OrderRepo.DeleteOrder(ctx, id)
	if errors.Is(err, models.ErrNoRecord) {
		return models.ErrOrderNotFound
	}
	return err
}

// AutoComplete completes DELIVERED orders the buyer left unanswered for longer than after.
func (s *OrderService) AutoComplete(ctx context.Context, after time.Duration, limit int) (int, error) {
	orders, err := s.OrderRepo.DeliveredBefore(ctx, time.Now().Add(-after), limit)
	if err != nil {
		return 0, err
	}
	done := 0
	for _, o := range orders {
		_, err := s.transition(ctx, o, fsm.StatusCompleted, systemActor, "auto-completed", nil)
		switch {
		case err == nil:
			done++
		case errors.Is(err, models.ErrStatusChanged):
		default:
			s.Logger.Errorf("auto-complete order %d: %v", o.ID, err)
		}
	}
	return done, nil
}

// transition persists one status change and triggers its side effects:
// cancelling a paid order refunds the full price.
func (s *OrderService) transition(ctx context.Context, order models.Order, to string, actor models.Actor, note string, dispute *models.Dispute) (models.Order, error) {
	from := order.Status
	var actorID *int64
	if actor.UserID != 0 {
		id := actor.UserID
		actorID = &id
	}
	err := s.OrderRepo.ApplyTransition(ctx, repositories.Transition{
		OrderID:   order.ID,
		From:      from,
		To:        to,
		ActorID:   actorID,
		ActorRole: actor.Role,
		Note:      note,
		Dispute:   dispute,
	})
	if err != nil {
		return models.Order{}, err
	}
	metricsOrNoop(s.Metrics).OrderTransition(from, to)
	s.Logger.Infof("order %d: %s -> %s by %s %d", order.ID, from, to, actor.Role, actor.UserID)

	if to == fsm.StatusCancelled && paid(from) {
		reason := note
		if reason == "" {
			reason = "order cancelled"
		}
		s.Refunds.CreateAndIssue(ctx, order, order.PriceCents, reason)
	}
	if s.Notifier != nil {
		s.Notifier.OrderStatusChanged(order, from, to, actor.UserID)
	}

	updated, err := s.GetOrder(ctx, order.ID)
	if err != nil {
		order.Status = to
		return order, nil
	}
	return updated, nil
}

// paid reports whether an order in status has captured the buyer's payment.
func paid(status string) bool {
	switch status {
	case fsm.StatusInProgress, fsm.StatusDelivered, fsm.StatusDisputed:
		return true
	}
	return false
}
