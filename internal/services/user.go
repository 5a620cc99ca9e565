// internal/services/user.go
package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/habitforge/habitforge-web/internal/database"
	"github.com/habitforge/habitforge-web/internal/models"
)

type UserService struct {
	db *database.DB
}

func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db}
}

// CreateUser creates a new account with all gamification counters zeroed and the
// weekly-ranking window anchored at now.
func (s *UserService) CreateUser(req *models.RegisterRequest) (*models.User, error) {
	if exists, err := s.EmailExists(req.Email); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("email already registered")
	}

	now := time.Now()
	user := &models.User{
		Name:          req.Name,
		Email:         req.Email,
		Level:         1,
		WeekStartDate: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := `
		INSERT INTO users (name, email, password_hash, avatar, xp, xp_week, level, coins, streak, max_streak, week_start_date, created_at, updated_at)
		VALUES (:name, :email, :password_hash, :avatar, :xp, :xp_week, :level, :coins, :streak, :max_streak, :week_start_date, :created_at, :updated_at)
	`

	result, err := s.db.NamedExec(query, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user ID: %w", err)
	}

	user.ID = int(id)
	return user, nil
}

// AuthenticateUser validates login credentials and returns the user
func (s *UserService) AuthenticateUser(req *models.LoginRequest) (*models.User, error) {
	var user models.User
	query := `SELECT * FROM users WHERE email = ?`

	err := s.db.Get(&user, query, req.Email)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invalid credentials")
	} else if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.CheckPassword(req.Password) {
		return nil, fmt.Errorf("invalid credentials")
	}

	return &user, nil
}

// GetUserByID retrieves a user by their ID
func (s *UserService) GetUserByID(id int) (*models.User, error) {
	var user models.User
	query := `SELECT * FROM users WHERE id = ?`

	err := s.db.Get(&user, query, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	} else if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// EmailExists checks if an email is already registered
func (s *UserService) EmailExists(email string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM users WHERE email = ?`
	err := s.db.Get(&count, query, email)
	return count > 0, err
}

// UpdateProfile allows users to update their display name and avatar
func (s *UserService) UpdateProfile(userID int, req *models.ProfileUpdateRequest) (*models.User, error) {
	if req.Name != "" {
		if _, err := s.db.Exec(`UPDATE users SET name = ?, updated_at = ? WHERE id = ?`, req.Name, time.Now(), userID); err != nil {
			return nil, fmt.Errorf("failed to update name: %w", err)
		}
	}
	if req.Avatar != "" {
		if _, err := s.db.Exec(`UPDATE users SET avatar = ?, updated_at = ? WHERE id = ?`, req.Avatar, time.Now(), userID); err != nil {
			return nil, fmt.Errorf("failed to update avatar: %w", err)
		}
	}

	return s.GetUserByID(userID)
}

// ChangePassword allows users to change their password
func (s *UserService) ChangePassword(userID int, currentPassword, newPassword string) error {
	var user models.User
	query := `SELECT password_hash FROM users WHERE id = ?`
	if err := s.db.Get(&user, query, userID); err != nil {
		return fmt.Errorf("user not found")
	}

	if !user.CheckPassword(currentPassword) {
		return fmt.Errorf("current password is incorrect")
	}

	if err := user.SetPassword(newPassword); err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	updateQuery := `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`
	_, err := s.db.Exec(updateQuery, user.Password, time.Now(), userID)
	return err
}

// GetUserStats retrieves the aggregate counters shown on the profile page
func (s *UserService) GetUserStats(userID int) (*models.UserStats, error) {
	stats := &models.UserStats{}

	if err := s.db.Get(&stats.ActiveHabits,
		`SELECT COUNT(*) FROM habits WHERE user_id = ? AND is_active = TRUE`, userID); err != nil {
		return nil, fmt.Errorf("failed to count active habits: %w", err)
	}

	if err := s.db.Get(&stats.TotalCompletions,
		`SELECT COUNT(*) FROM habit_completions hc JOIN habits h ON h.id = hc.habit_id WHERE h.user_id = ?`, userID); err != nil {
		return nil, fmt.Errorf("failed to count completions: %w", err)
	}

	if err := s.db.Get(&stats.UnlockedAchievements,
		`SELECT COUNT(*) FROM user_achievements WHERE user_id = ?`, userID); err != nil {
		return nil, fmt.Errorf("failed to count unlocked achievements: %w", err)
	}

	if err := s.db.Get(&stats.TotalAchievements,
		`SELECT COUNT(*) FROM achievements`); err != nil {
		return nil, fmt.Errorf("failed to count achievements: %w", err)
	}

	sevenDaysAgo := time.Now().AddDate(0, 0, -7)
	if err := s.db.Get(&stats.CompletionsLastWeek,
		`SELECT COUNT(*) FROM habit_completions hc JOIN habits h ON h.id = hc.habit_id WHERE h.user_id = ? AND hc.completed_at >= ?`,
		userID, sevenDaysAgo); err != nil {
		return nil, fmt.Errorf("failed to count recent completions: %w", err)
	}

	// Completion rate over the last 7 days, relative to one completion per active
	// habit per day
	expected := stats.ActiveHabits * 7
	if expected > 0 {
		rate := stats.CompletionsLastWeek * 100 / expected
		if rate > 100 {
			rate = 100
		}
		stats.CompletionRate = rate
	}

	return stats, nil
}
