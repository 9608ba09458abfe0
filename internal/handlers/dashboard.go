package handlers

import (
	"net/http"

	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/services"
)

type DashboardHandler struct {
	svc *services.Services
}

func NewDashboardHandler(svc *services.Services) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// chartBar is one revenue bar with its height as a percentage of the tallest.
type chartBar struct {
	Month   string
	Revenue float64
	Height  int
}

func chartBars(chart []services.MonthRevenue) []chartBar {
	var max float64
	for _, m := range chart {
		if m.Revenue > max {
			max = m.Revenue
		}
	}
	bars := make([]chartBar, len(chart))
	for i, m := range chart {
		bars[i] = chartBar{Month: m.Month, Revenue: m.Revenue}
		if max > 0 {
			bars[i].Height = int(m.Revenue / max * 100)
		}
	}
	return bars
}

func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Dashboard.Stats(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, stats)
		return
	}
	render(w, r, "dashboard.html", map[string]any{
		"Stats": stats,
		"Chart": chartBars(stats.RevenueChart),
	})
}
