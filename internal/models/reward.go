package models

import "github.com/habitforge/habitforge-web/internal/gamification"

// XPBreakdown splits a completion's XP into its parts.
type XPBreakdown struct {
	Base        int `json:"base"`
	StreakBonus int `json:"streak_bonus"`
	Total       int `json:"total"`
}

// AchievementOutcome reports what the achievement evaluator did. Skipped is true
// when evaluation was abandoned because of an error, which is different from
// "evaluated and nothing unlocked".
type AchievementOutcome struct {
	Skipped  bool          `json:"skipped"`
	Unlocked []Achievement `json:"unlocked"`
}

// RewardResult is the single consolidated payload assembled for one habit
// completion: everything that changed, in one consistent snapshot.
type RewardResult struct {
	Completion   HabitCompletion               `json:"completion"`
	Habit        Habit                         `json:"habit"`
	XP           XPBreakdown                   `json:"xp"`
	CoinsGained  int                           `json:"coins_gained"`
	NewXP        int                           `json:"new_xp"`
	NewXPWeek    int                           `json:"new_xp_week"`
	NewCoins     int                           `json:"new_coins"`
	Streak       gamification.StreakResult     `json:"streak"`
	Milestone    *gamification.StreakMilestone `json:"milestone,omitempty"`
	Level        gamification.LevelUpResult    `json:"level"`
	Progress     gamification.LevelProgress    `json:"progress"`
	Achievements AchievementOutcome            `json:"achievements"`
}

// RankingEntry is one row of the weekly leaderboard.
type RankingEntry struct {
	ID       int                 `json:"id" db:"id"`
	Name     string              `json:"name" db:"name"`
	Avatar   string              `json:"avatar" db:"avatar"`
	XP       int                 `json:"xp" db:"xp"`
	XPWeek   int                 `json:"xp_week" db:"xp_week"`
	Level    int                 `json:"level" db:"level"`
	Streak   int                 `json:"streak" db:"streak"`
	Position int                 `json:"position" db:"-"`
	League   gamification.League `json:"league" db:"-"`
}
