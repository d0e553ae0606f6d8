package services

import (
	"context"
	"errors"
	"strings"

	"khidmaBack/internal/fsm"
	"khidmaBack/internal/models"
	"khidmaBack/internal/repositories"
)

type DisputeService struct {
	DisputeRepo DisputeStore
	OrderRepo   OrderStore
	Refunds     *RefundService
	Notifier    Notifier
	Metrics     MetricsRecorder
	Logger      Logger
}

func (s *DisputeService) ListDisputes(ctx context.Context, f models.DisputeFilter) ([]models.Dispute, int, error) {
	return s.DisputeRepo.ListDisputes(ctx, f)
}

func (s *DisputeService) GetDispute(ctx context.Context, id int64) (models.Dispute, error) {
	d, err := s.DisputeRepo.GetDispute(ctx, id)
	if errors.Is(err, models.ErrNoRecord) {
		return models.Dispute{}, models.ErrDisputeNotFound
	}
	return d, err
}

// Resolve closes an open dispute. refund_buyer cancels the order with a full
// refund, release_seller completes it and partial_refund completes it while
// returning part of the price to the buyer.
func (s *DisputeService) Resolve(ctx context.Context, adminID, disputeID int64, req models.ResolveDisputeRequest) (models.Dispute, error) {
	d, err := s.GetDispute(ctx, disputeID)
	if err != nil {
		return models.Dispute{}, err
	}
	if d.Status != models.DisputeStatusOpen {
		return models.Dispute{}, models.ErrDisputeResolved
	}

	res := repositories.Resolution{
		DisputeID:  d.ID,
		OrderID:    d.OrderID,
		Resolution: req.Resolution,
		Note:       strings.TrimSpace(req.Note),
		AdminID:    adminID,
	}
	switch req.Resolution {
	case models.ResolutionRefundBuyer:
		res.OrderStatus = fsm.StatusCancelled
		res.RefundCents = d.PriceCents
	case models.ResolutionReleaseSeller:
		res.OrderStatus = fsm.StatusCompleted
	case models.ResolutionPartialRefund:
		if req.RefundCents <= 0 || req.RefundCents >= d.PriceCents {
			return models.Dispute{}, models.ErrInvalidAmount
		}
		res.OrderStatus = fsm.StatusCompleted
		res.RefundCents = req.RefundCents
	default:
		return models.Dispute{}, models.ErrInvalidAction
	}
	res.RefundNote = "dispute " + req.Resolution

	refundID, err := s.DisputeRepo.Resolve(ctx, res)
	if err != nil {
		return models.Dispute{}, err
	}
	metricsOrNoop(s.Metrics).OrderTransition(fsm.StatusDisputed, res.OrderStatus)

	order, err := s.OrderRepo.GetOrderByID(ctx, d.OrderID)
	if err != nil {
		s.Logger.Errorf("dispute %d resolved but order %d could not be loaded: %v", d.ID, d.OrderID, err)
	} else {
		if refundID > 0 {
			s.Refunds.Issue(ctx, refundID, order, res.RefundCents, res.RefundNote)
		}
		if s.Notifier != nil {
			s.Notifier.DisputeResolved(order, req.Resolution)
		}
	}
	s.Logger.Infof("dispute %d on order %d resolved by admin %d: %s", d.ID, d.OrderID, adminID, req.Resolution)
	return s.GetDispute(ctx, disputeID)
}

// ResolveForOrder resolves the open dispute of a DISPUTED order.
func (s *DisputeService) ResolveForOrder(ctx context.Context, adminID, orderID int64, resolution, note string) (models.Dispute, error) {
	d, err := s.DisputeRepo.OpenDisputeForOrder(ctx, orderID)
	if errors.Is(err, models.ErrNoRecord) {
		return models.Dispute{}, models.ErrDisputeNotFound
	}
	if err != nil {
		return models.Dispute{}, err
	}
	return s.Resolve(ctx, adminID, d.ID, models.ResolveDisputeRequest{Resolution: resolution, Note: note})
}
