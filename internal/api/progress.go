package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/habitforge/habitforge-web/internal/auth"
)

// GET /api/v1/progress/daily?days=30 - Per-day completions and XP, gap-filled
func (h *Handler) GetDailyProgress(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromSession(r)
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	progress, err := h.progress.GetDailyProgress(userID, days)
	if err != nil {
		http.Error(w, "Failed to get progress", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"progress": progress,
	})
}

// GET /api/v1/progress/summary - The dashboard snapshot
func (h *Handler) GetDashboardSummary(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromSession(r)

	summary, err := h.progress.GetDashboardSummary(userID)
	if err != nil {
		http.Error(w, "Failed to get summary", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// GET /api/v1/progress/heatmap?year=2026 - Daily activity for one calendar year
func (h *Handler) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromSession(r)
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	if year == 0 {
		year = time.Now().Year()
	}

	heatmap, err := h.progress.GetHeatmap(userID, year)
	if err != nil {
		http.Error(w, "Failed to get heatmap", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"year":    year,
		"heatmap": heatmap,
	})
}
