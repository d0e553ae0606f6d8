package services

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khidmaBack/internal/models"
)

type fakeReports struct {
	dashboardCalls int
	buckets        []models.ReportBucket
}

func (f *fakeReports) Dashboard(context.Context) (models.Dashboard, error) {
	f.dashboardCalls++
	return models.Dashboard{OpenDisputes: 2, GrossVolume: 100000}, nil
}

func (f *fakeReports) Buckets(context.Context, time.Time, time.Time, string) ([]models.ReportBucket, error) {
	return f.buckets, nil
}

func (f *fakeReports) TopSellers(context.Context, time.Time, time.Time, int) ([]models.TopEntry, error) {
	return []models.TopEntry{{ID: 20, Name: "Sara", OrdersCount: 3, GrossCents: 45000}}, nil
}

func (f *fakeReports) TopCategories(_ context.Context, _, _ time.Time, english bool, _ int) ([]models.TopEntry, error) {
	name := "تصميم"
	if english {
		name = "Design"
	}
	return []models.TopEntry{{ID: 1, Name: name}}, nil
}

// memCache is an in-memory cache that stores values by reference.
type memCache struct {
	data map[string]interface{}
}

func (c *memCache) Get(_ context.Context, key string, dst interface{}) (bool, error) {
	v, ok := c.data[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *models.Dashboard:
		*d = v.(models.Dashboard)
	case *models.FinancialReport:
		*d = v.(models.FinancialReport)
	case *[]models.Category:
		*d = v.([]models.Category)
	}
	return true, nil
}

func (c *memCache) Set(_ context.Context, key string, v interface{}, _ time.Duration) error {
	c.data[key] = v
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func TestDashboardIsCached(t *testing.T) {
	repo := &fakeReports{}
	svc := &ReportService{ReportRepo: repo, Cache: &memCache{data: map[string]interface{}{}}, Logger: &testLogger{}}

	for i := 0; i < 3; i++ {
		d, err := svc.Dashboard(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, d.OpenDisputes)
	}
	assert.Equal(t, 1, repo.dashboardCalls)
}

func TestFinancialReportTotalsAndCSV(t *testing.T) {
	repo := &fakeReports{buckets: []models.ReportBucket{
		{Period: "2026-01-01", OrdersCount: 2, GrossCents: 30000, CommissionCents: 6000, RefundCents: 5000, NetRevenueCents: 25000},
		{Period: "2026-01-02", OrdersCount: 1, GrossCents: 10050, CommissionCents: 2010, NetRevenueCents: 10050},
	}}
	svc := &ReportService{ReportRepo: repo, Logger: &testLogger{}, Currency: "SAR"}
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rep, err := svc.Financial(context.Background(), models.ReportRequest{From: from, To: from.AddDate(0, 0, 7)}, "en")
	require.NoError(t, err)
	assert.Equal(t, "day", rep.GroupBy)
	assert.Equal(t, 3, rep.Totals.OrdersCount)
	assert.Equal(t, int64(40050), rep.Totals.GrossCents)
	assert.Equal(t, int64(35050), rep.Totals.NetRevenueCents)
	assert.Equal(t, "Design", rep.TopCategories[0].Name)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rep))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "period,orders,gross,commission,refunds,net_revenue,currency", lines[0])
	assert.Equal(t, "2026-01-02,1,100.50,20.10,0.00,100.50,SAR", lines[2])
	assert.Equal(t, "total,3,400.50,80.10,50.00,350.50,SAR", lines[3])
}

func TestFinancialReportValidatesInput(t *testing.T) {
	svc := &ReportService{ReportRepo: &fakeReports{}, Logger: &testLogger{}}
	now := time.Now()

	_, err := svc.Financial(context.Background(), models.ReportRequest{From: now, To: now.Add(time.Hour), GroupBy: "week"}, "ar")
	assert.ErrorIs(t, err, models.ErrInvalidAction)

	_, err = svc.Financial(context.Background(), models.ReportRequest{From: now, To: now.Add(-time.Hour)}, "ar")
	assert.ErrorIs(t, err, models.ErrInvalidDateRange)
}
