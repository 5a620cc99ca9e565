package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/habitforge/habitforge-web/internal/auth"
	"github.com/habitforge/habitforge-web/internal/models"
	"github.com/habitforge/habitforge-web/internal/services"
)

// Handler bundles the services behind the REST surface.
type Handler struct {
	users        *services.UserService
	habits       *services.HabitService
	rewards      *services.RewardService
	achievements *services.AchievementService
	ranking      *services.RankingService
	progress     *services.ProgressService
	validate     *validator.Validate
}

func NewHandler(
	users *services.UserService,
	habits *services.HabitService,
	rewards *services.RewardService,
	achievements *services.AchievementService,
	ranking *services.RankingService,
	progress *services.ProgressService,
) *Handler {
	return &Handler{
		users:        users,
		habits:       habits,
		rewards:      rewards,
		achievements: achievements,
		ranking:      ranking,
		progress:     progress,
		validate:     validator.New(),
	}
}

// RegisterRoutes mounts every authenticated endpoint on the given subrouter.
// Auth endpoints live in the auth package and are mounted separately.
func RegisterRoutes(r *mux.Router, h *Handler) {
	r.HandleFunc("/habits", h.ListHabits).Methods("GET")
	r.HandleFunc("/habits", h.CreateHabit).Methods("POST")
	r.HandleFunc("/habits/{id:[0-9]+}", h.GetHabit).Methods("GET")
	r.HandleFunc("/habits/{id:[0-9]+}", h.UpdateHabit).Methods("PUT")
	r.HandleFunc("/habits/{id:[0-9]+}", h.DeleteHabit).Methods("DELETE")
	r.HandleFunc("/habits/{id:[0-9]+}/complete", h.CompleteHabit).Methods("POST")

	r.HandleFunc("/profile", h.GetProfile).Methods("GET")
	r.HandleFunc("/profile", h.UpdateProfile).Methods("PUT")
	r.HandleFunc("/profile/password", h.ChangePassword).Methods("POST")
	r.HandleFunc("/profile/stats", h.GetStats).Methods("GET")

	r.HandleFunc("/achievements", h.ListAchievements).Methods("GET")
	r.HandleFunc("/achievements/unlocked", h.ListUnlockedAchievements).Methods("GET")

	r.HandleFunc("/ranking", h.GetRanking).Methods("GET")
	r.HandleFunc("/ranking/me", h.GetMyPosition).Methods("GET")
	r.HandleFunc("/ranking/leagues", h.ListLeagues).Methods("GET")
	r.HandleFunc("/ranking/league/{name}", h.GetLeagueRanking).Methods("GET")

	r.HandleFunc("/progress/daily", h.GetDailyProgress).Methods("GET")
	r.HandleFunc("/progress/summary", h.GetDashboardSummary).Methods("GET")
	r.HandleFunc("/progress/heatmap", h.GetHeatmap).Methods("GET")
}

// GET /api/v1/habits - List the user's habits
func (h *Handler) ListHabits(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromSession(r)

	var isActive *bool
	if raw := r.URL.Query().Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "Invalid active filter", http.StatusBadRequest)
			return
		}
		isActive = &active
	}
	category := r.URL.Query().Get("category")

	habits, err := h.habits.GetHabits(userID, isActive, category)
	if err != nil {
		http.Error(w, "Failed to list habits", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"habits": habits,
	})
}

// POST /api/v1/habits - Create a habit
func (h *Handler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromSession(r)

	var req models.CreateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Title, category and frequency are required", http.StatusBadRequest)
		return
	}

	habit, err := h.habits.CreateHabit(userID, &req)
	if err != nil {
		http.Error(w, "Failed to create habit", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(habit)
}

// GET /api/v1/habits/{id} - Get one habit with its recent completions
func (h *Handler) GetHabit(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromSession(r)
	habitID, _ := strconv.Atoi(mux.Vars(r)["id"])

	habit, err := h.habits.GetHabitByID(habitID, userID)
	if errors.Is(err, services.ErrHabitNotFound) {
		http.Error(w, "Habit not found", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, "Failed to get habit", http.StatusInternalServerError)
		return
	}

	completions, err := h.habits.GetRecentCompletions(habitID, 10)
	if err != nil {
		http.Error(w, "Failed to get completions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"habit":              habit,
		"recent_completions": completions,
	})
}

// PUT /api/v1/habits/{id} - Partially update a habit
func (h *Handler) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromSession(r)
	habitID, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.UpdateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Invalid habit fields", http.StatusBadRequest)
		return
	}

	habit, err := h.habits.UpdateHabit(habitID, userID, &req)
	if errors.Is(err, services.ErrHabitNotFound) {
		http.Error(w, "Habit not found", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, "Failed to update habit", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(habit)
}

// DELETE /api/v1/habits/{id} - Delete a habit and its completions
func (h *Handler) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromSession(r)
	habitID, _ := strconv.Atoi(mux.Vars(r)["id"])

	err := h.habits.DeleteHabit(habitID, userID)
	if errors.Is(err, services.ErrHabitNotFound) {
		http.Error(w, "Habit not found", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, "Failed to delete habit", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
	})
}

// POST /api/v1/habits/{id}/complete - Record a completion and collect its rewards
func (h *Handler) CompleteHabit(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromSession(r)
	habitID, _ := strconv.Atoi(mux.Vars(r)["id"])

	// The note is optional and so is the body itself
	var req models.CompleteHabitRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Note is too long", http.StatusBadRequest)
		return
	}

	reward, err := h.rewards.CompleteHabit(habitID, userID, req.Note)
	if errors.Is(err, services.ErrHabitNotFound) {
		http.Error(w, "Habit not found", http.StatusNotFound)
		return
	} else if errors.Is(err, services.ErrAlreadyCompletedToday) {
		http.Error(w, "Habit already completed today", http.StatusConflict)
		return
	} else if err != nil {
		http.Error(w, "Failed to complete habit", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reward)
}

// GET /api/v1/profile - The logged-in user with their aggregate stats
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromSession(r)

	user, err := h.users.GetUserByID(userID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	stats, err := h.users.GetUserStats(userID)
	if err != nil {
		http.Error(w, "Failed to get user stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user":  user,
		"stats": stats,
	})
}

// PUT /api/v1/profile - Update display name and avatar
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromSession(r)

	var req models.ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Invalid profile fields", http.StatusBadRequest)
		return
	}

	user, err := h.users.UpdateProfile(userID, &req)
	if err != nil {
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// POST /api/v1/profile/password - Change the password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromSession(r)

	var req models.PasswordChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Current and new password (min 6 chars) are required", http.StatusBadRequest)
		return
	}

	if err := h.users.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
	})
}

// GET /api/v1/profile/stats - Aggregate counters only
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromSession(r)

	stats, err := h.users.GetUserStats(userID)
	if err != nil {
		http.Error(w, "Failed to get user stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// GET /api/v1/achievements - Every definition with the caller's unlock state
func (h *Handler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromSession(r)

	achievements, err := h.achievements.GetAllAchievements(userID)
	if err != nil {
		http.Error(w, "Failed to list achievements", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"achievements": achievements,
	})
}

// GET /api/v1/achievements/unlocked - The caller's unlocks, newest first
func (h *Handler) ListUnlockedAchievements(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromSession(r)

	achievements, err := h.achievements.GetUserAchievements(userID)
	if err != nil {
		http.Error(w, "Failed to list unlocked achievements", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"achievements": achievements,
	})
}
