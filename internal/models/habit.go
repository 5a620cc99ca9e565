package models

import "time"

// Habit frequencies
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// XPRewardForDifficulty maps a habit's difficulty to its base XP reward.
var XPRewardForDifficulty = map[string]int{
	"easy":   10,
	"medium": 20,
	"hard":   30,
}

// Habit is a recurring activity owned by a single user. The reward engine reads it
// but never mutates it; only completions accumulate against it.
type Habit struct {
	ID          int       `json:"id" db:"id"`
	UserID      int       `json:"user_id" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	Frequency   string    `json:"frequency" db:"frequency"`
	Goal        int       `json:"goal" db:"goal"`
	Difficulty  string    `json:"difficulty" db:"difficulty"`
	Color       string    `json:"color" db:"color"`
	Icon        string    `json:"icon" db:"icon"`
	XPReward    int       `json:"xp_reward" db:"xp_reward"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// HabitWithCount is a habit plus its lifetime completion count, for list views.
type HabitWithCount struct {
	Habit
	CompletionCount int `json:"completion_count" db:"completion_count"`
}

// HabitCompletion is an immutable append-only fact: this habit was completed at this
// time. At most one exists per habit per calendar day.
type HabitCompletion struct {
	ID          int       `json:"id" db:"id"`
	HabitID     int       `json:"habit_id" db:"habit_id"`
	Note        string    `json:"note,omitempty" db:"note"`
	XPEarned    int       `json:"xp_earned" db:"xp_earned"`
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
}

// CreateHabitRequest represents the request to create a new habit
type CreateHabitRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
	Category    string `json:"category" validate:"required,min=1,max=50"`
	Frequency   string `json:"frequency" validate:"required,oneof=daily weekly monthly"`
	Goal        int    `json:"goal" validate:"omitempty,min=1"`
	Difficulty  string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Color       string `json:"color" validate:"omitempty,max=20"`
	Icon        string `json:"icon" validate:"omitempty,max=10"`
}

// UpdateHabitRequest represents a partial habit update. Nil fields are left as-is.
type UpdateHabitRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Category    *string `json:"category" validate:"omitempty,min=1,max=50"`
	Frequency   *string `json:"frequency" validate:"omitempty,oneof=daily weekly monthly"`
	Goal        *int    `json:"goal" validate:"omitempty,min=1"`
	Difficulty  *string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Color       *string `json:"color" validate:"omitempty,max=20"`
	Icon        *string `json:"icon" validate:"omitempty,max=10"`
	IsActive    *bool   `json:"is_active"`
}

// CompleteHabitRequest carries the optional note attached to a completion
type CompleteHabitRequest struct {
	Note string `json:"note" validate:"max=500"`
}
