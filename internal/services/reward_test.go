package services

import (
	"testing"
	"time"

	"github.com/habitforge/habitforge-web/internal/gamification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRewardService(t *testing.T, emitter Emitter, now time.Time) *RewardService {
	t.Helper()

	db := testDB(t)
	achievements := NewAchievementService(db)
	require.NoError(t, achievements.SeedDefaultAchievements())

	svc := NewRewardService(db, achievements, emitter)
	svc.now = func() time.Time { return now }
	return svc
}

func TestCompleteHabitUnknownHabit(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	svc := newTestRewardService(t, nopEmitter{}, now)

	user := createTestUser(t, svc.db, "alice")

	_, err := svc.CompleteHabit(9999, user.ID, "")
	assert.ErrorIs(t, err, ErrHabitNotFound)

	after := getUser(t, svc.db, user.ID)
	assert.Equal(t, 0, after.XP, "rejected completion must not change state")
}

func TestCompleteHabitForeignHabit(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	svc := newTestRewardService(t, nopEmitter{}, now)

	owner := createTestUser(t, svc.db, "owner")
	intruder := createTestUser(t, svc.db, "intruder")
	habit := createTestHabit(t, svc.db, owner.ID, "easy")

	_, err := svc.CompleteHabit(habit.ID, intruder.ID, "")
	assert.ErrorIs(t, err, ErrHabitNotFound)
}

func TestCompleteHabitInactiveHabit(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	svc := newTestRewardService(t, nopEmitter{}, now)

	user := createTestUser(t, svc.db, "carol")
	habit := createTestHabit(t, svc.db, user.ID, "easy")

	_, err := svc.db.Exec(`UPDATE habits SET is_active = FALSE WHERE id = ?`, habit.ID)
	require.NoError(t, err)

	_, err = svc.CompleteHabit(habit.ID, user.ID, "")
	assert.ErrorIs(t, err, ErrHabitNotFound)
}

func TestCompleteHabitDuplicateDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	svc := newTestRewardService(t, nopEmitter{}, now)

	user := createTestUser(t, svc.db, "dave")
	habit := createTestHabit(t, svc.db, user.ID, "easy")

	first, err := svc.CompleteHabit(habit.ID, user.ID, "")
	require.NoError(t, err)

	before := getUser(t, svc.db, user.ID)

	_, err = svc.CompleteHabit(habit.ID, user.ID, "")
	assert.ErrorIs(t, err, ErrAlreadyCompletedToday)

	after := getUser(t, svc.db, user.ID)
	assert.Equal(t, before.XP, after.XP, "duplicate must not re-award XP")
	assert.Equal(t, before.Streak, after.Streak)
	assert.Equal(t, first.Streak.Streak, after.Streak)

	var rows int
	require.NoError(t, svc.db.Get(&rows, `SELECT COUNT(*) FROM habit_completions WHERE habit_id = ?`, habit.ID))
	assert.Equal(t, 1, rows, "exactly one completion fact exists")
}

func TestCompleteHabitStartsStreak(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	svc := newTestRewardService(t, nopEmitter{}, now)

	user := createTestUser(t, svc.db, "erin")
	habit := createTestHabit(t, svc.db, user.ID, "easy")

	reward, err := svc.CompleteHabit(habit.ID, user.ID, "first!")
	require.NoError(t, err)

	assert.Equal(t, gamification.StreakStarted, reward.Streak.Status)
	assert.Equal(t, 1, reward.Streak.Streak)
	assert.Equal(t, 10, reward.XP.Base)
	assert.Equal(t, 0, reward.XP.StreakBonus, "no bonus below a 3-day streak")
	assert.Equal(t, 10, reward.XP.Total)
	assert.Equal(t, 1, reward.CoinsGained)
	assert.Nil(t, reward.Milestone)
	assert.Equal(t, "first!", reward.Completion.Note)
}

func TestCompleteHabitEndToEnd(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	emitter := &recordingEmitter{}
	svc := newTestRewardService(t, emitter, now)

	user := createTestUser(t, svc.db, "frank")
	habit := createTestHabit(t, svc.db, user.ID, "medium")

	// A 2-day streak kept alive yesterday, sitting just below the level-2 threshold
	setUserCounters(t, svc.db, user.ID, 95, 40, 2, 2)
	insertCompletion(t, svc.db, habit.ID, now.AddDate(0, 0, -1))

	reward, err := svc.CompleteHabit(habit.ID, user.ID, "")
	require.NoError(t, err)

	// 20 base + 5 for hitting a 3-day streak
	assert.Equal(t, 25, reward.XP.Total)
	assert.Equal(t, gamification.StreakIncreased, reward.Streak.Status)
	assert.Equal(t, 3, reward.Streak.Streak)
	assert.Equal(t, 3, reward.Streak.MaxStreak)
	assert.True(t, reward.Streak.IsRecord)

	// 95 + 25 crosses the level-2 threshold at 100
	assert.Equal(t, 120, reward.NewXP)
	assert.Equal(t, 65, reward.NewXPWeek)
	assert.True(t, reward.Level.LeveledUp)
	assert.Equal(t, 1, reward.Level.OldLevel)
	assert.Equal(t, 2, reward.Level.NewLevel)

	// 25/10 floored plus the 100-coin level-2 bundle
	assert.Equal(t, 102, reward.CoinsGained)
	assert.Equal(t, 102, reward.NewCoins)

	require.NotNil(t, reward.Milestone)
	assert.Equal(t, "🔥", reward.Milestone.Emoji)

	// First Step, Consistency and First Victory are all due by now
	require.False(t, reward.Achievements.Skipped)
	titles := make([]string, 0, len(reward.Achievements.Unlocked))
	achievementXP := 0
	for _, a := range reward.Achievements.Unlocked {
		titles = append(titles, a.Title)
		achievementXP += a.XPReward
	}
	assert.Contains(t, titles, "First Step")
	assert.Contains(t, titles, "Consistency")
	assert.Contains(t, titles, "First Victory")

	// The stored totals include the flat achievement credits on top of the
	// completion's reward
	after := getUser(t, svc.db, user.ID)
	assert.Equal(t, 120+achievementXP, after.XP)
	assert.Equal(t, 65+achievementXP, after.XPWeek)
	assert.Equal(t, gamification.LevelForXP(after.XP), after.Level)
	assert.Equal(t, 3, after.Streak)
	assert.Equal(t, 102, after.Coins)

	assert.Contains(t, emitter.events, "habit_completed")
	assert.Contains(t, emitter.events, "level_up")
	assert.Contains(t, emitter.events, "achievements_unlocked")
	assert.Contains(t, emitter.events, "streak_milestone")
}

func TestCompleteHabitBrokenStreak(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	svc := newTestRewardService(t, nopEmitter{}, now)

	user := createTestUser(t, svc.db, "grace")
	habit := createTestHabit(t, svc.db, user.ID, "easy")

	setUserCounters(t, svc.db, user.ID, 0, 0, 6, 6)
	insertCompletion(t, svc.db, habit.ID, now.AddDate(0, 0, -3))

	reward, err := svc.CompleteHabit(habit.ID, user.ID, "")
	require.NoError(t, err)

	assert.Equal(t, gamification.StreakBroken, reward.Streak.Status)
	assert.True(t, reward.Streak.Broken)
	assert.Equal(t, 1, reward.Streak.Streak)
	assert.Equal(t, 6, reward.Streak.MaxStreak, "the record survives the break")
	assert.Equal(t, 0, reward.XP.StreakBonus, "bonus is paid at the new 1-day streak")
}

func TestCompleteHabitSecondHabitSameDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	svc := newTestRewardService(t, nopEmitter{}, now)

	user := createTestUser(t, svc.db, "heidi")
	first := createTestHabit(t, svc.db, user.ID, "easy")
	second := createTestHabit(t, svc.db, user.ID, "easy")

	_, err := svc.CompleteHabit(first.ID, user.ID, "")
	require.NoError(t, err)

	reward, err := svc.CompleteHabit(second.ID, user.ID, "")
	require.NoError(t, err)

	assert.Equal(t, gamification.StreakSameDay, reward.Streak.Status)
	assert.Equal(t, 1, reward.Streak.Streak, "a second habit the same day holds the streak")
}
