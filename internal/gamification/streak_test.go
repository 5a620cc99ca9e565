package gamification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAdvanceStreakFirstCompletion(t *testing.T) {
	result := AdvanceStreak(nil, day("2024-01-01 10:00"), 0, 0)
	assert.Equal(t, StreakStarted, result.Status)
	assert.Equal(t, 1, result.Streak)
	assert.Equal(t, 1, result.MaxStreak)
	assert.False(t, result.Broken)
}

func TestAdvanceStreakSameDay(t *testing.T) {
	last := day("2024-01-01 08:00")
	result := AdvanceStreak(&last, day("2024-01-01 22:00"), 4, 6)
	assert.Equal(t, StreakSameDay, result.Status)
	assert.Equal(t, 4, result.Streak)
	assert.Equal(t, 6, result.MaxStreak)
	assert.Equal(t, 0, result.DaysGained)
}

func TestAdvanceStreakConsecutiveDay(t *testing.T) {
	// Late evening -> early morning still counts as one calendar day apart
	last := day("2024-01-01 23:50")
	result := AdvanceStreak(&last, day("2024-01-02 00:10"), 4, 6)
	assert.Equal(t, StreakIncreased, result.Status)
	assert.Equal(t, 5, result.Streak)
	assert.Equal(t, 6, result.MaxStreak)
	assert.Equal(t, 1, result.DaysGained)
	assert.False(t, result.IsRecord)
}

func TestAdvanceStreakNewRecord(t *testing.T) {
	last := day("2024-01-01 12:00")
	result := AdvanceStreak(&last, day("2024-01-02 12:00"), 6, 6)
	assert.Equal(t, StreakIncreased, result.Status)
	assert.Equal(t, 7, result.Streak)
	assert.Equal(t, 7, result.MaxStreak)
	assert.True(t, result.IsRecord)
}

func TestAdvanceStreakBroken(t *testing.T) {
	last := day("2024-01-01 12:00")
	result := AdvanceStreak(&last, day("2024-01-05 12:00"), 10, 15)
	assert.Equal(t, StreakBroken, result.Status)
	assert.Equal(t, 1, result.Streak)
	assert.Equal(t, 15, result.MaxStreak)
	assert.True(t, result.Broken)
	assert.False(t, result.IsRecord)
}

func TestStreakXPBonus(t *testing.T) {
	cases := map[int]int{
		0: 0, 2: 0,
		3: 5, 6: 5,
		7: 10, 13: 10,
		14: 20, 29: 20,
		30: 35, 59: 35,
		60: 50, 99: 50,
		100: 75, 365: 75,
	}

	for streak, want := range cases {
		assert.Equal(t, want, StreakXPBonus(streak), "streak %d", streak)
	}
}

func TestMilestoneForStreak(t *testing.T) {
	m := MilestoneForStreak(7)
	assert.NotNil(t, m)
	assert.Equal(t, "⭐", m.Emoji)

	// Exact match only: 8 days is past the milestone, not on it
	assert.Nil(t, MilestoneForStreak(8))
	assert.Nil(t, MilestoneForStreak(0))

	assert.NotNil(t, MilestoneForStreak(365))
}
