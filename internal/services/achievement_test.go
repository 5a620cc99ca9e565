package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateUnlocksOnce(t *testing.T) {
	db := testDB(t)
	svc := NewAchievementService(db)
	require.NoError(t, svc.SeedDefaultAchievements())

	user := createTestUser(t, db, "ivy")
	setUserCounters(t, db, user.ID, 0, 0, 3, 3)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

	outcome := svc.Evaluate(user.ID, now)
	require.False(t, outcome.Skipped)

	titles := make([]string, 0, len(outcome.Unlocked))
	for _, a := range outcome.Unlocked {
		titles = append(titles, a.Title)
	}
	assert.Contains(t, titles, "Consistency")

	xpAfterFirst := getUser(t, db, user.ID).XP

	// Same state again: exclusion keeps everything already unlocked out of the loop
	again := svc.Evaluate(user.ID, now)
	require.False(t, again.Skipped)
	assert.Empty(t, again.Unlocked)
	assert.Equal(t, xpAfterFirst, getUser(t, db, user.ID).XP, "XP credited exactly once")
}

func TestEvaluateCreditsBothXPCounters(t *testing.T) {
	db := testDB(t)
	svc := NewAchievementService(db)
	require.NoError(t, svc.SeedDefaultAchievements())

	user := createTestUser(t, db, "judy")
	setUserCounters(t, db, user.ID, 0, 0, 3, 3)

	outcome := svc.Evaluate(user.ID, time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local))
	require.False(t, outcome.Skipped)
	require.NotEmpty(t, outcome.Unlocked)

	total := 0
	for _, a := range outcome.Unlocked {
		total += a.XPReward
	}

	after := getUser(t, db, user.ID)
	assert.Equal(t, total, after.XP)
	assert.Equal(t, total, after.XPWeek, "achievement XP counts toward the ranking week")
}

func TestEvaluateSkippedOnUnknownUser(t *testing.T) {
	db := testDB(t)
	svc := NewAchievementService(db)
	require.NoError(t, svc.SeedDefaultAchievements())

	outcome := svc.Evaluate(9999, time.Now())
	assert.True(t, outcome.Skipped)
	assert.Empty(t, outcome.Unlocked)
}

func TestEvaluateIgnoresSpecialCategory(t *testing.T) {
	db := testDB(t)
	svc := NewAchievementService(db)
	require.NoError(t, svc.SeedDefaultAchievements())

	// Huge counters would trip every special requirement if they were evaluated
	user := createTestUser(t, db, "karl")
	setUserCounters(t, db, user.ID, 0, 0, 1000, 1000)

	outcome := svc.Evaluate(user.ID, time.Now())
	require.False(t, outcome.Skipped)
	for _, a := range outcome.Unlocked {
		assert.NotEqual(t, "Early Bird", a.Title)
		assert.NotEqual(t, "Night Owl", a.Title)
	}
}

func TestSeedDefaultAchievementsIdempotent(t *testing.T) {
	db := testDB(t)
	svc := NewAchievementService(db)

	require.NoError(t, svc.SeedDefaultAchievements())

	var first int
	require.NoError(t, db.Get(&first, `SELECT COUNT(*) FROM achievements`))
	require.Greater(t, first, 0)

	require.NoError(t, svc.SeedDefaultAchievements())

	var second int
	require.NoError(t, db.Get(&second, `SELECT COUNT(*) FROM achievements`))
	assert.Equal(t, first, second)
}

func TestGetAllAchievementsMarksUnlocked(t *testing.T) {
	db := testDB(t)
	svc := NewAchievementService(db)
	require.NoError(t, svc.SeedDefaultAchievements())

	user := createTestUser(t, db, "lena")
	setUserCounters(t, db, user.ID, 0, 0, 3, 3)
	svc.Evaluate(user.ID, time.Now())

	all, err := svc.GetAllAchievements(user.ID)
	require.NoError(t, err)

	unlockedCount := 0
	for _, a := range all {
		if a.Unlocked {
			unlockedCount++
		}
	}
	assert.Greater(t, unlockedCount, 0)
	assert.Less(t, unlockedCount, len(all))

	mine, err := svc.GetUserAchievements(user.ID)
	require.NoError(t, err)
	assert.Len(t, mine, unlockedCount)
}
