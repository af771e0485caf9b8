package handlers

import (
	"net/http"
	"time"

	"cyberguard-portal/core/store"
	"cyberguard-portal/core/utils"
)

const (
	statsWindowDays  = 30
	trendWindowCount = 12
	recentLimit      = 10
)

// DashboardHandler serves the read-only dashboard endpoints behind
// the ?api= dispatcher.
type DashboardHandler struct {
	store  store.DashboardStore
	db     *store.DB
	logger *utils.Logger
	now    func() time.Time
}

func NewDashboardHandler(ds store.DashboardStore, db *store.DB, logger *utils.Logger) *DashboardHandler {
	return &DashboardHandler{store: ds, db: db, logger: logger, now: time.Now}
}

func (h *DashboardHandler) Serve(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("api") {
	case "stats":
		h.handleStats(w, r)
	case "recent_reports":
		h.handleRecentReports(w, r)
	case "map_data":
		h.handleMapData(w, r)
	case "crime_trends":
		h.handleCrimeTrends(w, r)
	case "crime_distribution":
		h.handleCrimeDistribution(w, r)
	case "health_check":
		h.handleHealthCheck(w, r)
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": "API endpoint not found",
		})
	}
}

func (h *DashboardHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	since := h.now().UTC().AddDate(0, 0, -statsWindowDays)
	stats, err := h.store.Stats(r.Context(), since)
	if err != nil {
		h.serverError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": stats})
}

func (h *DashboardHandler) handleRecentReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.store.RecentReports(r.Context(), recentLimit)
	if err != nil {
		h.serverError(w, "recent_reports", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": reports})
}

func (h *DashboardHandler) handleMapData(w http.ResponseWriter, r *http.Request) {
	markers, err := h.store.MapReports(r.Context())
	if err != nil {
		h.serverError(w, "map_data", err)
		return
	}
	if markers == nil {
		markers = []store.MapReport{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": markers})
}

// handleCrimeTrends shapes the monthly per-category counts for a
// line chart: one label per month over the window, one dataset per
// category, with zero-filled gaps where a category had no reports.
func (h *DashboardHandler) handleCrimeTrends(w http.ResponseWriter, r *http.Request) {
	now := h.now().UTC()
	windowStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(trendWindowCount - 1), 0)

	points, err := h.store.CrimeTrends(r.Context(), windowStart)
	if err != nil {
		h.serverError(w, "crime_trends", err)
		return
	}

	keys := make([]string, 0, trendWindowCount)
	labels := make([]string, 0, trendWindowCount)
	index := make(map[string]int, trendWindowCount)
	for i := 0; i < trendWindowCount; i++ {
		m := windowStart.AddDate(0, i, 0)
		key := m.Format("2006-01")
		keys = append(keys, key)
		labels = append(labels, m.Format("Jan 2006"))
		index[key] = i
	}

	type dataset struct {
		Label string  `json:"label"`
		Color string  `json:"color"`
		Data  []int64 `json:"data"`
	}
	var order []string
	sets := map[string]*dataset{}
	for _, p := range points {
		pos, ok := index[p.Month]
		if !ok {
			continue
		}
		ds, ok := sets[p.Category]
		if !ok {
			ds = &dataset{Label: p.Category, Color: p.Color, Data: make([]int64, trendWindowCount)}
			sets[p.Category] = ds
			order = append(order, p.Category)
		}
		ds.Data[pos] += p.Count
	}

	datasets := make([]dataset, 0, len(order))
	for _, name := range order {
		datasets = append(datasets, *sets[name])
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"months":   labels,
			"datasets": datasets,
		},
	})
}

func (h *DashboardHandler) handleCrimeDistribution(w http.ResponseWriter, r *http.Request) {
	since := h.now().UTC().AddDate(0, 0, -statsWindowDays)
	entries, err := h.store.CrimeDistribution(r.Context(), since)
	if err != nil {
		h.serverError(w, "crime_distribution", err)
		return
	}
	if entries == nil {
		entries = []store.DistributionEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": entries})
}

func (h *DashboardHandler) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	health := h.db.Health(r.Context())
	payload := map[string]any{
		"status":    health["status"],
		"database":  health,
		"timestamp": h.now().UTC().Format("2006-01-02 15:04:05"),
	}
	if pending, err := h.store.PendingCount(r.Context()); err == nil {
		payload["pending_reports"] = pending
	} else {
		h.logger.Errorf("dashboard: pending count failed: %v", err)
	}
	status := http.StatusOK
	if health["status"] == "critical" {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, payload)
}

func (h *DashboardHandler) serverError(w http.ResponseWriter, endpoint string, err error) {
	h.logger.Errorf("dashboard: %s query failed: %v", endpoint, err)
	writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "failed to load dashboard data")
}
