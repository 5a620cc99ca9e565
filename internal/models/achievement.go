package models

import (
	"time"
)

// Achievement categories. Habits, Streak, Level and Completions are evaluated
// automatically by the reward engine; Special achievements are static data that
// need bespoke detection and are never auto-unlocked.
const (
	AchievementCategoryHabits      = "Habits"
	AchievementCategoryStreak      = "Streak"
	AchievementCategoryLevel       = "Level"
	AchievementCategoryCompletions = "Completions"
	AchievementCategorySpecial     = "Special"
)

// Achievement is a static definition: unlock when the category's counter reaches
// the requirement, then grant XPReward once.
type Achievement struct {
	ID          int       `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Icon        string    `json:"icon" db:"icon"`
	Category    string    `json:"category" db:"category"`
	Requirement int       `json:"requirement" db:"requirement"`
	XPReward    int       `json:"xp_reward" db:"xp_reward"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// UserAchievement records that a user unlocked an achievement. Created exactly once
// per (user, achievement) pair and never updated.
type UserAchievement struct {
	ID            int       `json:"id" db:"id"`
	UserID        int       `json:"user_id" db:"user_id"`
	AchievementID int       `json:"achievement_id" db:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at" db:"unlocked_at"`
}

// AchievementView is an achievement definition plus the caller's unlock state.
type AchievementView struct {
	Achievement
	Unlocked   bool       `json:"unlocked" db:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty" db:"unlocked_at"`
}

// UnlockedAchievement pairs a definition with when the caller unlocked it.
type UnlockedAchievement struct {
	Achievement
	UnlockedAt time.Time `json:"unlocked_at" db:"unlocked_at"`
}
