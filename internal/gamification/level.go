package gamification

import "math"

// MaxLevel is the level cap. XP keeps accumulating past it but the level does not.
const MaxLevel = 100

const (
	levelBaseXP     = 100.0
	levelMultiplier = 1.15 // per-level cost grows 15%
)

// XPForLevel returns the cumulative XP required to reach a given level.
// Level 1 costs nothing; each level after that costs 15% more than the previous one.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}

	totalXP := 0
	for i := 2; i <= level; i++ {
		totalXP += int(math.Floor(levelBaseXP * math.Pow(levelMultiplier, float64(i-2))))
	}

	return totalXP
}

// LevelForXP returns the level a user with the given total XP is on, capped at MaxLevel.
func LevelForXP(xp int) int {
	level := 1
	xpForNextLevel := XPForLevel(2)

	for xp >= xpForNextLevel && level < MaxLevel {
		level++
		xpForNextLevel = XPForLevel(level + 1)
	}

	return level
}

// LevelProgress describes how far into the current level a user is, for the XP bar.
type LevelProgress struct {
	Current    int `json:"current"`
	Required   int `json:"required"`
	Percentage int `json:"percentage"`
	Total      int `json:"total"`
	NextLevel  int `json:"next_level"`
}

// ProgressInLevel returns XP earned since the current level's threshold and how much
// is needed for the next one.
func ProgressInLevel(totalXP, currentLevel int) LevelProgress {
	xpForCurrentLevel := XPForLevel(currentLevel)
	xpForNextLevel := XPForLevel(currentLevel + 1)
	xpInLevel := totalXP - xpForCurrentLevel
	xpNeededForLevel := xpForNextLevel - xpForCurrentLevel

	percentage := 0
	if xpNeededForLevel > 0 {
		percentage = xpInLevel * 100 / xpNeededForLevel
	}

	return LevelProgress{
		Current:    xpInLevel,
		Required:   xpNeededForLevel,
		Percentage: percentage,
		Total:      totalXP,
		NextLevel:  currentLevel + 1,
	}
}

// LevelRewards is the bundle granted when a level is reached.
type LevelRewards struct {
	Coins   int    `json:"coins"`
	XPBonus int    `json:"xp_bonus"`
	Title   string `json:"title,omitempty"`
}

var levelTitles = map[int]string{
	1:   "Novice",
	5:   "Apprentice",
	10:  "Dedicated",
	15:  "Committed",
	20:  "Experienced",
	25:  "Veteran",
	30:  "Expert",
	40:  "Master",
	50:  "Legendary",
	75:  "Epic",
	100: "Divine",
}

// RewardsForLevel returns the reward bundle for reaching a level: 50 coins per level,
// a title on the notable levels, and a bonus XP drop every 10 levels.
func RewardsForLevel(level int) LevelRewards {
	rewards := LevelRewards{
		Coins: level * 50,
	}

	if title, ok := levelTitles[level]; ok {
		rewards.Title = title
	}

	if level%10 == 0 {
		rewards.XPBonus = level * 10
	}

	return rewards
}

// LevelUpResult reports whether a change in total XP crossed a level threshold.
type LevelUpResult struct {
	LeveledUp    bool          `json:"leveled_up"`
	OldLevel     int           `json:"old_level"`
	NewLevel     int           `json:"new_level"`
	LevelsGained int           `json:"levels_gained,omitempty"`
	Rewards      *LevelRewards `json:"rewards,omitempty"`
}

// CheckLevelUp compares the levels for two XP totals. When several thresholds are
// crossed at once only the landing level's reward bundle applies; intermediate
// levels do not grant their individual rewards.
func CheckLevelUp(oldXP, newXP int) LevelUpResult {
	oldLevel := LevelForXP(oldXP)
	newLevel := LevelForXP(newXP)

	if newLevel > oldLevel {
		rewards := RewardsForLevel(newLevel)
		return LevelUpResult{
			LeveledUp:    true,
			OldLevel:     oldLevel,
			NewLevel:     newLevel,
			LevelsGained: newLevel - oldLevel,
			Rewards:      &rewards,
		}
	}

	return LevelUpResult{
		LeveledUp: false,
		OldLevel:  oldLevel,
		NewLevel:  oldLevel,
	}
}
