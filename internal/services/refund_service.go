package services

import (
	"context"
	"fmt"

	"khidmaBack/internal/models"
	"khidmaBack/internal/pay"
)

// RefundService sends refunds to the payment processor. Processor failures are
// recorded on the refund row and logged; they are never retried here.
type RefundService struct {
	RefundRepo RefundStore
	Payments   PaymentGateway
	Metrics    MetricsRecorder
	Logger     Logger
}

// CreateAndIssue records a refund for order and sends it right away.
func (s *RefundService) CreateAndIssue(ctx context.Context, order models.Order, amount int64, reason string) string {
	id, err := s.RefundRepo.CreateRefund(ctx, order.ID, amount, reason)
	if err != nil {
		s.Logger.Errorf("order %d: create refund row: %v", order.ID, err)
		return models.RefundStatusFailed
	}
	return s.Issue(ctx, id, order, amount, reason)
}

// Issue sends an already recorded refund and returns its final status.
func (s *RefundService) Issue(ctx context.Context, refundID int64, order models.Order, amount int64, reason string) string {
	if order.PaymentIntentID == nil || *order.PaymentIntentID == "" {
		s.fail(ctx, refundID, order.ID, "order has no payment intent")
		return models.RefundStatusFailed
	}
	res, err := s.Payments.Refund(ctx, pay.RefundRequest{
		PaymentIntentID: *order.PaymentIntentID,
		AmountCents:     amount,
		Reason:          reason,
		IdempotencyKey:  fmt.Sprintf("refund-%d", refundID),
	})
	if err != nil {
		s.fail(ctx, refundID, order.ID, err.Error())
		return models.RefundStatusFailed
	}
	if err := s.RefundRepo.MarkSucceeded(ctx, refundID, res.ID); err != nil {
		s.Logger.Errorf("refund %d: mark succeeded (processor id %s): %v", refundID, res.ID, err)
	}
	metricsOrNoop(s.Metrics).Refund(models.RefundStatusSucceeded)
	s.Logger.Infof("refund %d for order %d sent: %d cents", refundID, order.ID, amount)
	return models.RefundStatusSucceeded
}

func (s *RefundService) fail(ctx context.Context, refundID, orderID int64, reason string) {
	s.Logger.Errorf("refund %d for order %d failed: %s", refundID, orderID, reason)
	metricsOrNoop(s.Metrics).Refund(models.RefundStatusFailed)
	if err := s.RefundRepo.MarkFailed(ctx, refundID, reason); err != nil {
		s.Logger.Errorf("refund %d: mark failed: %v", refundID, err)
	}
}

func (s *RefundService) ListRefunds(ctx context.Context, f models.RefundFilter) ([]models.Refund, int, error) {
	return s.RefundRepo.ListRefunds(ctx, f)
}
