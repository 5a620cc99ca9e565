package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXPForLevel(t *testing.T) {
	assert.Equal(t, 0, XPForLevel(0))
	assert.Equal(t, 0, XPForLevel(1))
	assert.Equal(t, 100, XPForLevel(2))
	// 100*1.15 lands just under 115 in float64, so the floor keeps 114
	assert.Equal(t, 214, XPForLevel(3))

	// Strictly increasing all the way to the cap
	for level := 2; level <= MaxLevel; level++ {
		assert.Greater(t, XPForLevel(level), XPForLevel(level-1), "level %d", level)
	}
}

func TestLevelForXPRoundTrip(t *testing.T) {
	for level := 1; level <= MaxLevel; level++ {
		assert.Equal(t, level, LevelForXP(XPForLevel(level)), "threshold of level %d", level)
	}
}

func TestLevelForXPMonotonic(t *testing.T) {
	prev := LevelForXP(0)
	for xp := 0; xp <= 5000; xp += 7 {
		level := LevelForXP(xp)
		assert.GreaterOrEqual(t, level, prev)
		prev = level
	}
}

func TestLevelForXPBoundaries(t *testing.T) {
	assert.Equal(t, 1, LevelForXP(0))
	assert.Equal(t, 1, LevelForXP(99))
	assert.Equal(t, 2, LevelForXP(100))
	assert.Equal(t, 2, LevelForXP(XPForLevel(3)-1))
	assert.Equal(t, 3, LevelForXP(XPForLevel(3)))

	// XP past the cap never exceeds MaxLevel
	assert.Equal(t, MaxLevel, LevelForXP(XPForLevel(MaxLevel)*10))
}

func TestProgressInLevel(t *testing.T) {
	p := ProgressInLevel(150, 2)
	assert.Equal(t, 50, p.Current) // 150 - 100
	assert.Equal(t, XPForLevel(3)-XPForLevel(2), p.Required)
	assert.Equal(t, 50*100/p.Required, p.Percentage)
	assert.Equal(t, 3, p.NextLevel)

	// Zero span must not divide by zero
	p = ProgressInLevel(0, 1)
	assert.Equal(t, 100, p.Required)
	assert.Equal(t, 0, p.Percentage)
}

func TestRewardsForLevel(t *testing.T) {
	r := RewardsForLevel(5)
	assert.Equal(t, 250, r.Coins)
	assert.Equal(t, "Apprentice", r.Title)
	assert.Equal(t, 0, r.XPBonus)

	r = RewardsForLevel(10)
	assert.Equal(t, 500, r.Coins)
	assert.Equal(t, "Dedicated", r.Title)
	assert.Equal(t, 100, r.XPBonus) // bonus XP every 10 levels

	r = RewardsForLevel(7)
	assert.Empty(t, r.Title)
	assert.Equal(t, 0, r.XPBonus)
}

func TestCheckLevelUp(t *testing.T) {
	result := CheckLevelUp(95, 120)
	assert.True(t, result.LeveledUp)
	assert.Equal(t, 1, result.OldLevel)
	assert.Equal(t, 2, result.NewLevel)
	assert.Equal(t, 1, result.LevelsGained)
	assert.NotNil(t, result.Rewards)
	assert.Equal(t, 100, result.Rewards.Coins)

	// Same XP never reports a level-up
	for _, xp := range []int{0, 100, 215, 9999} {
		result := CheckLevelUp(xp, xp)
		assert.False(t, result.LeveledUp, "xp %d", xp)
		assert.Nil(t, result.Rewards)
	}
}

func TestCheckLevelUpSkipsIntermediateRewards(t *testing.T) {
	// 0 XP -> past level 3 threshold: two levels gained, only the landing
	// level's reward bundle applies.
	result := CheckLevelUp(0, 215)
	assert.True(t, result.LeveledUp)
	assert.Equal(t, 2, result.LevelsGained)
	assert.Equal(t, 3, result.NewLevel)
	assert.Equal(t, 150, result.Rewards.Coins)
}
