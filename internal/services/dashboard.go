package services

import (
	"context"
	"math"
	"time"

	"github.com/diewo77/go-crm/internal/cache"
	"github.com/diewo77/go-crm/internal/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// chartMonths is the width of the revenue chart, current month included.
const chartMonths = 6

type DashboardService struct {
	db    *gorm.DB
	views *cache.Views
	// Now is the clock used for month boundaries.
	Now func() time.Time
}

func NewDashboardService(db *gorm.DB, views *cache.Views) *DashboardService {
	return &DashboardService{db: db, views: views, Now: time.Now}
}

// TrendValue is a month-over-month change for a stat card.
type TrendValue struct {
	Percent  int  `json:"percent"`
	Positive bool `json:"positive"`
}

// MonthRevenue is one bar of the revenue chart.
type MonthRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

type Stats struct {
	TotalLeads       int64             `json:"total_leads"`
	WonLeads         int64             `json:"won_leads"`
	TotalContacts    int64             `json:"total_contacts"`
	TotalActivities  int64             `json:"total_activities"`
	TotalRevenue     float64           `json:"total_revenue"`
	LeadsTrend       TrendValue        `json:"leads_trend"`
	WonTrend         TrendValue        `json:"won_trend"`
	RevenueChart     []MonthRevenue    `json:"revenue_chart"`
	RecentLeads      []models.Lead     `json:"recent_leads"`
	RecentActivities []models.Activity `json:"recent_activities"`
}

// Trend is the percentage change from prev to cur, rounded. With no previous
// value it is 100 when cur is positive and 0 otherwise.
func Trend(cur, prev int64) int {
	if prev == 0 {
		if cur > 0 {
			return 100
		}
		return 0
	}
	return int(math.Round(float64(cur-prev) / float64(prev) * 100))
}

func trendValue(cur, prev int64) TrendValue {
	p := Trend(cur, prev)
	return TrendValue{Percent: p, Positive: p >= 0}
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// RevenueChart buckets WON leads by creation month over the trailing months
// ending at now, oldest first. Months without revenue are zero.
func RevenueChart(leads []models.Lead, now time.Time) []MonthRevenue {
	start := monthStart(now).AddDate(0, -(chartMonths - 1), 0)
	chart := make([]MonthRevenue, chartMonths)
	index := make(map[[2]int]int, chartMonths)
	for i := range chart {
		m := start.AddDate(0, i, 0)
		chart[i].Month = m.Format("Jan")
		index[[2]int{m.Year(), int(m.Month())}] = i
	}
	for _, l := range leads {
		if l.Status != models.LeadWon {
			continue
		}
		c := l.CreatedAt.In(now.Location())
		if i, ok := index[[2]int{c.Year(), int(c.Month())}]; ok {
			chart[i].Revenue += l.Amount()
		}
	}
	return chart
}

// Stats aggregates the dashboard. Independent queries run concurrently.
func (s *DashboardService) Stats(ctx context.Context) (*Stats, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	return cache.Get(ctx, s.views, cache.TagDashboard, s.load)
}

func (s *DashboardService) load(ctx context.Context) (*Stats, error) {
	now := s.Now()
	curStart := monthStart(now)
	prevStart := curStart.AddDate(0, -1, 0)
	chartStart := curStart.AddDate(0, -(chartMonths - 1), 0)

	var st Stats
	var window []models.Lead
	g, ctx := errgroup.WithContext(ctx)
	db := s.db.WithContext(ctx)

	g.Go(func() error { return db.Model(&models.Lead{}).Count(&st.TotalLeads).Error })
	g.Go(func() error {
		return db.Model(&models.Lead{}).Where("status = ?", models.LeadWon).Count(&st.WonLeads).Error
	})
	g.Go(func() error { return db.Model(&models.Contact{}).Count(&st.TotalContacts).Error })
	g.Go(func() error { return db.Model(&models.Activity{}).Count(&st.TotalActivities).Error })
	g.Go(func() error {
		return db.Model(&models.Lead{}).Where("status = ?", models.LeadWon).
			Select("COALESCE(SUM(value), 0)").Row().Scan(&st.TotalRevenue)
	})
	g.Go(func() error {
		return db.Select("id", "status", "value", "created_at").
			Where("created_at >= ?", chartStart).Find(&window).Error
	})
	g.Go(func() error {
		return db.Preload("Contact").Order("created_at DESC").Limit(5).Find(&st.RecentLeads).Error
	})
	g.Go(func() error {
		return db.Preload("User").Preload("Lead").Order("created_at DESC").Limit(5).Find(&st.RecentActivities).Error
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var leadsCur, leadsPrev, wonCur, wonPrev int64
	for _, l := range window {
		c := l.CreatedAt.In(now.Location())
		switch {
		case !c.Before(curStart):
			leadsCur++
			if l.Status == models.LeadWon {
				wonCur++
			}
		case !c.Before(prevStart):
			leadsPrev++
			if l.Status == models.LeadWon {
				wonPrev++
			}
		}
	}
	st.LeadsTrend = trendValue(leadsCur, leadsPrev)
	st.WonTrend = trendValue(wonCur, wonPrev)
	st.RevenueChart = RevenueChart(window, now)
	return &st, nil
}
