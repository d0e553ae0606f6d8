package services

import (
	"context"
	"errors"
	"fmt"

	"khidmaBack/internal/models"
	"khidmaBack/internal/pay"
)

type PayoutService struct {
	PayoutRepo PayoutStore
	Payments   PaymentGateway
	Notifier   Notifier
	Metrics    MetricsRecorder
	Logger     Logger
	Currency   string
	Minimum    int64
}

// Balances lists payable balances, for every seller when sellerIDs is empty.
func (s *PayoutService) Balances(ctx context.Context, sellerIDs []int64) ([]models.SellerBalance, error) {
	return s.PayoutRepo.Balances(ctx, normalizeIDs(sellerIDs))
}

func (s *PayoutService) SellerBalance(ctx context.Context, sellerID int64) (models.SellerBalance, error) {
	balances, err := s.PayoutRepo.Balances(ctx, []int64{sellerID})
	if err != nil {
		return models.SellerBalance{}, err
	}
	for _, b := range balances {
		if b.SellerID == sellerID {
			return b, nil
		}
	}
	return models.SellerBalance{SellerID: sellerID}, nil
}

func (s *PayoutService) ListPayouts(ctx context.Context, f models.PayoutFilter) ([]models.Payout, int, error) {
	return s.PayoutRepo.ListPayouts(ctx, f)
}

// Process pays every eligible seller: it reserves the unpaid completed orders in
// a processing payout, transfers the net amount and marks the payout paid or failed.
func (s *PayoutService) Process(ctx context.Context, sellerIDs []int64) (models.PayoutRunResult, error) {
	ids := normalizeIDs(sellerIDs)
	balances, err := s.PayoutRepo.Balances(ctx, ids)
	if err != nil {
		return models.PayoutRunResult{}, err
	}

	res := models.PayoutRunResult{Paid: []models.Payout{}, Failed: []models.Payout{}, Skipped: map[int64]string{}}
	seen := make(map[int64]bool, len(balances))
	for _, b := range balances {
		seen[b.SellerID] = true
		if reason := s.skipReason(b); reason != "" {
			res.Skipped[b.SellerID] = reason
			continue
		}
		p, err := s.PayoutRepo.ReservePayout(ctx, b.SellerID, s.Currency, s.Minimum)
		switch {
		case errors.Is(err, models.ErrNoRecord):
			res.Skipped[b.SellerID] = "error.nothing_to_pay"
			continue
		case errors.Is(err, models.ErrBelowPayoutMinimum):
			res.Skipped[b.SellerID] = "error.below_minimum"
			continue
		case err != nil:
			s.Logger.Errorf("payout for seller %d: reserve: %v", b.SellerID, err)
			res.Skipped[b.SellerID] = "error.internal"
			continue
		}

		p = s.transfer(ctx, p, *b.PayoutAccountID)
		if p.Status == models.PayoutStatusPaid {
			res.Paid = append(res.Paid, p)
		} else {
			res.Failed = append(res.Failed, p)
		}
	}
	for _, id := range ids {
		if !seen[id] {
			res.Skipped[id] = "error.nothing_to_pay"
		}
	}
	if len(res.Skipped) == 0 {
		res.Skipped = nil
	}
	return res, nil
}

func (s *PayoutService) skipReason(b models.SellerBalance) string {
	if b.PayoutAccountID == nil || *b.PayoutAccountID == "" {
		return "error.no_payout_account"
	}
	if b.NetCents() <= 0 {
		return "error.nothing_to_pay"
	}
	if b.NetCents() < s.Minimum {
		return "error.below_minimum"
	}
	return ""
}

func (s *PayoutService) transfer(ctx context.Context, p models.Payout, accountID string) models.Payout {
	tr, err := s.Payments.Transfer(ctx, pay.TransferRequest{
		AccountID:      accountID,
		AmountCents:    p.NetCents,
		Currency:       p.Currency,
		Description:    fmt.Sprintf("Payout #%d", p.ID),
		IdempotencyKey: fmt.Sprintf("payout-%d", p.ID),
	})
	if err != nil {
		reason := err.Error()
		s.Logger.Errorf("payout %d for seller %d failed: %v", p.ID, p.SellerID, err)
		if merr := s.PayoutRepo.MarkFailed(ctx, p.ID, reason); merr != nil {
			s.Logger.Errorf("payout %d: mark failed: %v", p.ID, merr)
		}
		metricsOrNoop(s.Metrics).Payout(models.PayoutStatusFailed)
		p.Status = models.PayoutStatusFailed
		p.FailureReason = &reason
		return p
	}
	if err := s.PayoutRepo.MarkPaid(ctx, p.ID, tr.ID); err != nil {
		s.Logger.Errorf("payout %d: mark paid (transfer %s): %v", p.ID, tr.ID, err)
	}
	metricsOrNoop(s.Metrics).Payout(models.PayoutStatusPaid)
	p.Status = models.PayoutStatusPaid
	p.ProcessorTransferID = &tr.ID
	s.Logger.Infof("payout %d: %d cents sent to seller %d", p.ID, p.NetCents, p.SellerID)
	if s.Notifier != nil {
		s.Notifier.PayoutSent(p)
	}
	return p
}
