package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDailyProgressFillsGaps(t *testing.T) {
	db := testDB(t)
	svc := NewProgressService(db)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return now }

	user := createTestUser(t, db, "uma")
	habit := createTestHabit(t, db, user.ID, "easy")

	insertCompletion(t, db, habit.ID, now.Add(-time.Hour))
	insertCompletion(t, db, habit.ID, now.AddDate(0, 0, -2))

	progress, err := svc.GetDailyProgress(user.ID, 7)
	require.NoError(t, err)
	require.Len(t, progress, 7, "every day appears even without activity")

	assert.Equal(t, 1, progress[6].Completions, "today is the last entry")
	assert.Equal(t, 1, progress[4].Completions)
	assert.Equal(t, 0, progress[5].Completions, "the gap day is a zero row")

	for i := 1; i < len(progress); i++ {
		assert.Greater(t, progress[i].Date, progress[i-1].Date, "oldest first")
	}
}

func TestGetDashboardSummary(t *testing.T) {
	db := testDB(t)
	svc := NewProgressService(db)
	achievements := NewAchievementService(db)
	require.NoError(t, achievements.SeedDefaultAchievements())

	// One fixed instant shared by the completion and the summary, so "today"
	// means the same day on both sides
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return now }

	user := createTestUser(t, db, "vera")
	habit := createTestHabit(t, db, user.ID, "medium")

	rewards := NewRewardService(db, achievements, nopEmitter{})
	rewards.now = func() time.Time { return now }
	_, err := rewards.CompleteHabit(habit.ID, user.ID, "")
	require.NoError(t, err)

	summary, err := svc.GetDashboardSummary(user.ID)
	require.NoError(t, err)

	assert.Equal(t, user.ID, summary.User.ID)
	assert.Equal(t, 1, summary.CompletedToday)
	assert.Equal(t, 1, summary.ActiveHabits)
	assert.Equal(t, "health", summary.TopCategory)
	assert.Equal(t, "Bronze", summary.League.Name)
	assert.Equal(t, summary.User.Level+1, summary.Progress.NextLevel)
}

func TestGetHeatmap(t *testing.T) {
	db := testDB(t)
	svc := NewProgressService(db)

	user := createTestUser(t, db, "wade")
	habit := createTestHabit(t, db, user.ID, "easy")

	day := time.Date(2026, 2, 14, 10, 0, 0, 0, time.Local)
	insertCompletion(t, db, habit.ID, day)
	insertCompletion(t, db, habit.ID, day.Add(2*time.Hour))

	heatmap, err := svc.GetHeatmap(user.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 2, heatmap["2026-02-14"])

	empty, err := svc.GetHeatmap(user.ID, 2020)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
