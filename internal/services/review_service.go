package services

import (
	"context"
	"errors"
	"strings"

	"khidmaBack/internal/fsm"
	"khidmaBack/internal/models"
)

type ReviewService struct {
	ReviewRepo ReviewStore
	OrderRepo  OrderStore
	Notifier   Notifier
}

// CreateReview lets the buyer rate a completed order once.
func (s *ReviewService) CreateReview(ctx context.Context, buyerID int64, req models.ReviewRequest) (models.Review, error) {
	order, err := s.OrderRepo.GetOrderByID(ctx, req.OrderID)
	if errors.Is(err, models.ErrNoRecord) {
		return models.Review{}, models.ErrOrderNotFound
	}
	if err != nil {
		return models.Review{}, err
	}
	if order.BuyerID != buyerID {
		return models.Review{}, models.ErrForbidden
	}
	if order.Status != fsm.StatusCompleted {
		return models.Review{}, models.ErrOrderNotCompleted
	}
	rv, err := s.ReviewRepo.CreateReview(ctx, models.Review{
		OrderID:   order.ID,
		ServiceID: order.ServiceID,
		BuyerID:   buyerID,
		SellerID:  order.SellerID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	})
	if err != nil {
		return models.Review{}, err
	}
	if s.Notifier != nil {
		s.Notifier.ReviewCreated(rv)
	}
	return rv, nil
}

func (s *ReviewService) ListForService(ctx context.Context, serviceID int64, f models.ReviewFilter) ([]models.Review, int, error) {
	f.ServiceID = &serviceID
	f.WithHidden = false
	return s.ReviewRepo.ListReviews(ctx, f)
}

func (s *ReviewService) ListAdmin(ctx context.Context, f models.ReviewFilter) ([]models.Review, int, error) {
	f.WithHidden = true
	return s.ReviewRepo.ListReviews(ctx, f)
}

func (s *ReviewService) Reply(ctx context.Context, sellerID, reviewID int64, req models.ReviewReplyRequest) (models.Review, error) {
	if err := s.ReviewRepo.Reply(ctx, reviewID, sellerID, strings.TrimSpace(req.Reply)); err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			return models.Review{}, models.ErrReviewNotFound
		}
		return models.Review{}, err
	}
	return s.ReviewRepo.GetReviewByID(ctx, reviewID)
}

func (s *ReviewService) SetHidden(ctx context.Context, id int64, hidden bool) error {
	err := s.ReviewRepo.SetHidden(ctx, id, hidden)
	if errors.Is(err, models.ErrNoRecord) {
		return models.ErrReviewNotFound
	}
	return err
}

func (s *ReviewService) DeleteReview(ctx context.Context, id int64) error {
	err := s.ReviewRepo.DeleteReview(ctx, id)
	if errors.Is(err, models.ErrNoRecord) {
		return models.ErrReviewNotFound
	}
	return err
}
