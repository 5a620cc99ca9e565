package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/habitforge/habitforge-web/internal/database"
	"github.com/habitforge/habitforge-web/internal/models"
)

type HabitService struct {
	db *database.DB
}

func NewHabitService(db *database.DB) *HabitService {
	return &HabitService{db: db}
}

// CreateHabit creates a new habit for the user. The base XP reward is derived from
// the difficulty, never supplied by the caller.
func (s *HabitService) CreateHabit(userID int, req *models.CreateHabitRequest) (*models.Habit, error) {
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = "medium"
	}

	habit := &models.Habit{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Frequency:   req.Frequency,
		Goal:        req.Goal,
		Difficulty:  difficulty,
		Color:       req.Color,
		Icon:        req.Icon,
		XPReward:    models.XPRewardForDifficulty[difficulty],
		IsActive:    true,
		CreatedAt:   time.Now(),
	}
	if habit.Goal == 0 {
		habit.Goal = 1
	}
	if habit.Color == "" {
		habit.Color = "#6366f1"
	}
	if habit.Icon == "" {
		habit.Icon = "📝"
	}

	query := `
		INSERT INTO habits (user_id, title, description, category, frequency, goal, difficulty, color, icon, xp_reward, is_active, created_at)
		VALUES (:user_id, :title, :description, :category, :frequency, :goal, :difficulty, :color, :icon, :xp_reward, :is_active, :created_at)
	`

	result, err := s.db.NamedExec(query, habit)
	if err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get habit ID: %w", err)
	}

	habit.ID = int(id)
	return habit, nil
}

// GetHabits lists the user's habits with their lifetime completion counts.
// isActive and category filter when non-nil / non-empty.
func (s *HabitService) GetHabits(userID int, isActive *bool, category string) ([]models.HabitWithCount, error) {
	query := `
		SELECT h.*, COUNT(hc.id) AS completion_count
		FROM habits h
		LEFT JOIN habit_completions hc ON hc.habit_id = h.id
		WHERE h.user_id = ?
	`
	args := []interface{}{userID}

	if isActive != nil {
		query += ` AND h.is_active = ?`
		args = append(args, *isActive)
	}
	if category != "" {
		query += ` AND h.category = ?`
		args = append(args, category)
	}

	query += ` GROUP BY h.id ORDER BY h.created_at DESC`

	habits := []models.HabitWithCount{}
	if err := s.db.Select(&habits, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}

	return habits, nil
}

// GetHabitByID retrieves one of the user's habits
func (s *HabitService) GetHabitByID(habitID, userID int) (*models.Habit, error) {
	var habit models.Habit
	query := `SELECT * FROM habits WHERE id = ? AND user_id = ?`

	err := s.db.Get(&habit, query, habitID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrHabitNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}

	return &habit, nil
}

// GetRecentCompletions returns the habit's latest completions, newest first
func (s *HabitService) GetRecentCompletions(habitID, limit int) ([]models.HabitCompletion, error) {
	if limit <= 0 {
		limit = 10
	}

	completions := []models.HabitCompletion{}
	query := `SELECT * FROM habit_completions WHERE habit_id = ? ORDER BY completed_at DESC LIMIT ?`
	if err := s.db.Select(&completions, query, habitID, limit); err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}

	return completions, nil
}

// UpdateHabit applies a partial update to one of the user's habits. Changing the
// difficulty re-derives the XP reward.
func (s *HabitService) UpdateHabit(habitID, userID int, req *models.UpdateHabitRequest) (*models.Habit, error) {
	habit, err := s.GetHabitByID(habitID, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		habit.Title = *req.Title
	}
	if req.Description != nil {
		habit.Description = *req.Description
	}
	if req.Category != nil {
		habit.Category = *req.Category
	}
	if req.Frequency != nil {
		habit.Frequency = *req.Frequency
	}
	if req.Goal != nil {
		habit.Goal = *req.Goal
	}
	if req.Difficulty != nil {
		habit.Difficulty = *req.Difficulty
		habit.XPReward = models.XPRewardForDifficulty[*req.Difficulty]
	}
	if req.Color != nil {
		habit.Color = *req.Color
	}
	if req.Icon != nil {
		habit.Icon = *req.Icon
	}
	if req.IsActive != nil {
		habit.IsActive = *req.IsActive
	}

	query := `
		UPDATE habits
		SET title = :title, description = :description, category = :category, frequency = :frequency,
		    goal = :goal, difficulty = :difficulty, color = :color, icon = :icon,
		    xp_reward = :xp_reward, is_active = :is_active
		WHERE id = :id AND user_id = :user_id
	`
	if _, err := s.db.NamedExec(query, habit); err != nil {
		return nil, fmt.Errorf("failed to update habit: %w", err)
	}

	return habit, nil
}

// DeleteHabit removes one of the user's habits and, via cascade, its completions
func (s *HabitService) DeleteHabit(habitID, userID int) error {
	result, err := s.db.Exec(`DELETE FROM habits WHERE id = ? AND user_id = ?`, habitID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return ErrHabitNotFound
	}

	return nil
}
