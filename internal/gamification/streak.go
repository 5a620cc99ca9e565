package gamification

import "time"

// StreakStatus describes what happened to the streak on a completion.
type StreakStatus string

const (
	StreakStarted   StreakStatus = "started"
	StreakSameDay   StreakStatus = "same_day"
	StreakIncreased StreakStatus = "increased"
	StreakBroken    StreakStatus = "broken"
)

// StreakResult is the outcome of advancing a user's streak by one completion.
type StreakResult struct {
	Streak     int          `json:"streak"`
	MaxStreak  int          `json:"max_streak"`
	Status     StreakStatus `json:"status"`
	DaysGained int          `json:"days_gained"`
	Broken     bool         `json:"broken"`
	IsRecord   bool         `json:"is_record"`
}

// AdvanceStreak decides the streak transition for a completion happening at now,
// given the most recent completion across all of the user's habits (nil if none).
// Day distance is measured between local midnights.
func AdvanceStreak(lastCompletion *time.Time, now time.Time, streak, maxStreak int) StreakResult {
	if lastCompletion == nil {
		newMax := maxStreak
		if newMax < 1 {
			newMax = 1
		}
		return StreakResult{
			Streak:    1,
			MaxStreak: newMax,
			Status:    StreakStarted,
		}
	}

	daysDiff := daysBetween(*lastCompletion, now)

	newStreak := streak
	status := StreakSameDay

	switch {
	case daysDiff == 0:
		// Already completed something today, streak holds.
	case daysDiff == 1:
		newStreak = streak + 1
		status = StreakIncreased
	default:
		newStreak = 1
		status = StreakBroken
	}

	newMaxStreak := maxStreak
	if newStreak > newMaxStreak {
		newMaxStreak = newStreak
	}

	result := StreakResult{
		Streak:    newStreak,
		MaxStreak: newMaxStreak,
		Status:    status,
		Broken:    status == StreakBroken,
		IsRecord:  status == StreakIncreased && newStreak == newMaxStreak,
	}
	if status == StreakIncreased {
		result.DaysGained = 1
	}

	return result
}

// daysBetween counts calendar days between the local midnights of two instants.
func daysBetween(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location())
	return int(toDay.Sub(fromDay).Hours() / 24)
}

// StreakXPBonus is the extra XP a completion earns at a given streak length.
func StreakXPBonus(streak int) int {
	switch {
	case streak < 3:
		return 0
	case streak < 7:
		return 5
	case streak < 14:
		return 10
	case streak < 30:
		return 20
	case streak < 60:
		return 35
	case streak < 100:
		return 50
	default:
		return 75
	}
}

// StreakMilestone is a celebration fired when a streak hits an exact notable length.
type StreakMilestone struct {
	Emoji   string `json:"emoji"`
	Message string `json:"message"`
}

var streakMilestones = map[int]StreakMilestone{
	3:   {Emoji: "🔥", Message: "3-day streak!"},
	7:   {Emoji: "⭐", Message: "A whole week!"},
	14:  {Emoji: "💪", Message: "2 weeks of dedication!"},
	30:  {Emoji: "💎", Message: "1 month, unstoppable!"},
	60:  {Emoji: "👑", Message: "2 months of consistency!"},
	90:  {Emoji: "🏆", Message: "3 legendary months!"},
	100: {Emoji: "🎖️", Message: "100 days - you're incredible!"},
	365: {Emoji: "🌟", Message: "A FULL YEAR!"},
}

// MilestoneForStreak returns the milestone for an exact streak length, or nil.
// This is an exact match, not a >= check, so each milestone fires once.
func MilestoneForStreak(streak int) *StreakMilestone {
	if m, ok := streakMilestones[streak]; ok {
		return &m
	}
	return nil
}
