package services

import (
	"testing"
	"time"

	"github.com/diewo77/go-crm/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrend(t *testing.T) {
	tests := []struct {
		cur, prev int64
		want      int
	}{
		{0, 0, 0},
		{5, 0, 100},
		{15, 10, 50},
		{5, 10, -50},
		{1, 3, -67},
		{10, 10, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Trend(tt.cur, tt.prev), "Trend(%d, %d)", tt.cur, tt.prev)
	}
}

func TestRevenueChart(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	at := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 9, 0, 0, 0, time.UTC) }
	leads := []models.Lead{
		{Status: models.LeadWon, Value: ptr(1000.0), CreatedAt: at(2026, 3, 2)},
		{Status: models.LeadWon, Value: ptr(250.0), CreatedAt: at(2026, 3, 10)},
		{Status: models.LeadLost, Value: ptr(700.0), CreatedAt: at(2026, 3, 3)},
		{Status: models.LeadWon, Value: ptr(500.0), CreatedAt: at(2026, 2, 28)},
		{Status: models.LeadWon, CreatedAt: at(2026, 1, 5)},
		{Status: models.LeadWon, Value: ptr(300.0), CreatedAt: at(2025, 10, 1)},
		{Status: models.LeadWon, Value: ptr(999.0), CreatedAt: at(2025, 9, 30)},
	}

	chart := RevenueChart(leads, now)
	require.Len(t, chart, 6)
	var months []string
	var revenue []float64
	for _, m := range chart {
		months = append(months, m.Month)
		revenue = append(revenue, m.Revenue)
	}
	assert.Equal(t, []string{"Oct", "Nov", "Dec", "Jan", "Feb", "Mar"}, months)
	assert.Equal(t, []float64{300, 0, 0, 0, 500, 1250}, revenue)
}

func TestDashboardService_Stats(t *testing.T) {
	d := openDB(t)
	ctx, user := signedIn(t, d)
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.Local)
	at := func(m time.Month, day int) time.Time { return time.Date(2026, m, day, 10, 0, 0, 0, time.Local) }

	leads := []models.Lead{
		{Title: "A", Status: models.LeadNew, CreatedAt: at(3, 1)},
		{Title: "B", Status: models.LeadWon, Value: ptr(1000.0), CreatedAt: at(3, 5)},
		{Title: "C", Status: models.LeadLost, Value: ptr(700.0), CreatedAt: at(3, 6)},
		{Title: "D", Status: models.LeadNew, CreatedAt: at(2, 10)},
		{Title: "E", Status: models.LeadWon, Value: ptr(500.0), CreatedAt: at(2, 11)},
		{Title: "F", Status: models.LeadWon, Value: ptr(200.0), CreatedAt: at(1, 10)},
		{Title: "G", Status: models.LeadWon, Value: ptr(999.0), CreatedAt: time.Date(2025, 9, 20, 10, 0, 0, 0, time.Local)},
	}
	for i := range leads {
		leads[i].UserID = user.ID
	}
	require.NoError(t, d.Create(&leads).Error)
	require.NoError(t, d.Create(&models.Contact{Name: "John"}).Error)
	require.NoError(t, d.Create(&models.Activity{Type: models.ActivityCall, Title: "call", UserID: user.ID, LeadID: &leads[0].ID}).Error)

	svc := NewDashboardService(d, nil)
	svc.Now = func() time.Time { return now }
	st, err := svc.Stats(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 7, st.TotalLeads)
	assert.EqualValues(t, 4, st.WonLeads)
	assert.EqualValues(t, 1, st.TotalContacts)
	assert.EqualValues(t, 1, st.TotalActivities)
	assert.InDelta(t, 2699, st.TotalRevenue, 0.001)
	assert.Equal(t, TrendValue{Percent: 50, Positive: true}, st.LeadsTrend)
	assert.Equal(t, TrendValue{Percent: 0, Positive: true}, st.WonTrend)

	require.Len(t, st.RevenueChart, 6)
	assert.Equal(t, "Mar", st.RevenueChart[5].Month)
	assert.Equal(t, 1000.0, st.RevenueChart[5].Revenue)
	assert.Equal(t, 500.0, st.RevenueChart[4].Revenue)
	assert.Equal(t, 200.0, st.RevenueChart[3].Revenue)
	assert.Zero(t, st.RevenueChart[0].Revenue, "September falls outside the window")

	require.Len(t, st.RecentLeads, 5)
	assert.Equal(t, "C", st.RecentLeads[0].Title)
	require.Len(t, st.RecentActivities, 1)
	require.NotNil(t, st.RecentActivities[0].Lead)
}
