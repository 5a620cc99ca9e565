package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User represents an account and owns all of its gamification state. Level is a
// cached projection of XP and is only ever written from the level math, never set
// directly.
type User struct {
	ID            int       `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Email         string    `json:"email" db:"email"`
	Password      string    `json:"-" db:"password_hash"` // Never expose in JSON
	Avatar        string    `json:"avatar" db:"avatar"`
	XP            int       `json:"xp" db:"xp"`
	XPWeek        int       `json:"xp_week" db:"xp_week"`
	Level         int       `json:"level" db:"level"`
	Coins         int       `json:"coins" db:"coins"`
	Streak        int       `json:"streak" db:"streak"`
	MaxStreak     int       `json:"max_streak" db:"max_streak"`
	WeekStartDate time.Time `json:"week_start_date" db:"week_start_date"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// RegisterRequest represents the request to create a new account
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdateRequest represents a profile update request
type ProfileUpdateRequest struct {
	Name   string `json:"name" validate:"omitempty,min=1,max=50"`
	Avatar string `json:"avatar" validate:"omitempty,max=255"`
}

// PasswordChangeRequest represents a password change request
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// UserStats represents the aggregate counters shown on the profile page
type UserStats struct {
	ActiveHabits         int `json:"active_habits"`
	TotalCompletions     int `json:"total_completions"`
	UnlockedAchievements int `json:"unlocked_achievements"`
	TotalAchievements    int `json:"total_achievements"`
	CompletionRate       int `json:"completion_rate"`
	CompletionsLastWeek  int `json:"completions_last_week"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies a password against the user's hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}
