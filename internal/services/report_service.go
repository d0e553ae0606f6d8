package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"khidmaBack/internal/cache"
	"khidmaBack/internal/i18n"
	"khidmaBack/internal/models"
)

const (
	dashboardTTL = 60 * time.Second
	reportTTL    = 5 * time.Minute
	topLimit     = 10
)

type ReportService struct {
	ReportRepo ReportStore
	Cache      cache.Cache
	Logger     Logger
	Currency   string
}

// Dashboard returns platform counters, cached for a minute.
func (s *ReportService) Dashboard(ctx context.Context) (models.Dashboard, error) {
	var d models.Dashboard
	if s.cacheGet(ctx, cache.KeyDashboard, &d) {
		return d, nil
	}
	d, err := s.ReportRepo.Dashboard(ctx)
	if err != nil {
		return models.Dashboard{}, err
	}
	s.cacheSet(ctx, cache.KeyDashboard, d, dashboardTTL)
	return d, nil
}

// Financial builds the revenue report for [From, To) grouped by day or month.
func (s *ReportService) Financial(ctx context.Context, req models.ReportRequest, lang string) (models.FinancialReport, error) {
	if req.GroupBy == "" {
		req.GroupBy = "day"
	}
	if req.GroupBy != "day" && req.GroupBy != "month" {
		return models.FinancialReport{}, models.ErrInvalidAction
	}
	if req.From.IsZero() || req.To.IsZero() || !req.From.Before(req.To) {
		return models.FinancialReport{}, models.ErrInvalidDateRange
	}

	key := fmt.Sprintf("report:%s:%d:%d:%s", req.GroupBy, req.From.Unix(), req.To.Unix(), lang)
	var rep models.FinancialReport
	if s.cacheGet(ctx, key, &rep) {
		return rep, nil
	}

	buckets, err := s.ReportRepo.Buckets(ctx, req.From, req.To, req.GroupBy)
	if err != nil {
		return models.FinancialReport{}, err
	}
	sellers, err := s.ReportRepo.TopSellers(ctx, req.From, req.To, topLimit)
	if err != nil {
		return models.FinancialReport{}, err
	}
	categories, err := s.ReportRepo.TopCategories(ctx, req.From, req.To, lang == i18n.English, topLimit)
	if err != nil {
		return models.FinancialReport{}, err
	}

	rep = models.FinancialReport{
		From:          req.From,
		To:            req.To,
		GroupBy:       req.GroupBy,
		Currency:      s.Currency,
		Buckets:       buckets,
		Totals:        Totals(buckets),
		TopSellers:    sellers,
		TopCategories: categories,
	}
	s.cacheSet(ctx, key, rep, reportTTL)
	return rep, nil
}

// Totals sums report buckets.
func Totals(buckets []models.ReportBucket) models.ReportBucket {
	t := models.ReportBucket{Period: "total"}
	for _, b := range buckets {
		t.OrdersCount += b.OrdersCount
		t.GrossCents += b.GrossCents
		t.CommissionCents += b.CommissionCents
		t.RefundCents += b.RefundCents
		t.NetRevenueCents += b.NetRevenueCents
	}
	return t
}

// WriteCSV renders the report buckets and their totals.
func WriteCSV(w io.Writer, rep models.FinancialReport) error {
	cw := csv.NewWriter(w)
	rows := [][]string{{"period", "orders", "gross", "commission", "refunds", "net_revenue", "currency"}}
	for _, b := range append(rep.Buckets, rep.Totals) {
		rows = append(rows, []string{
			b.Period,
			strconv.Itoa(b.OrdersCount),
			formatCents(b.GrossCents),
			formatCents(b.CommissionCents),
			formatCents(b.RefundCents),
			formatCents(b.NetRevenueCents),
			rep.Currency,
		})
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func formatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

func (s *ReportService) cacheGet(ctx context.Context, key string, dst interface{}) bool {
	if s.Cache == nil {
		return false
	}
	hit, err := s.Cache.Get(ctx, key, dst)
	if err != nil {
		s.Logger.Errorf("report cache read %s: %v", key, err)
		return false
	}
	return hit
}

func (s *ReportService) cacheSet(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Set(ctx, key, v, ttl); err != nil {
		s.Logger.Errorf("report cache write %s: %v", key, err)
	}
}
