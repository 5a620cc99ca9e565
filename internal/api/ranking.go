package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/habitforge/habitforge-web/internal/auth"
	"github.com/habitforge/habitforge-web/internal/gamification"
)

// GET /api/v1/ranking/leagues - The league bands themselves
func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"leagues": gamification.Leagues,
	})
}

// GET /api/v1/ranking - The weekly leaderboard
func (h *Handler) GetRanking(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.ranking.GetWeeklyRanking(limit)
	if err != nil {
		http.Error(w, "Failed to get ranking", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ranking": entries,
	})
}

// GET /api/v1/ranking/me - The caller's own position
func (h *Handler) GetMyPosition(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromSession(r)

	entry, err := h.ranking.GetUserPosition(userID)
	if err != nil {
		http.Error(w, "Failed to get ranking position", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entry)
}

// GET /api/v1/ranking/league/{name} - The board restricted to one league
func (h *Handler) GetLeagueRanking(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.ranking.GetRankingByLeague(name, limit)
	if err != nil {
		http.Error(w, "Unknown league", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"league":  name,
		"ranking": entries,
	})
}
