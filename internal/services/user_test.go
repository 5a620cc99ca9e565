package services

import (
	"testing"

	"github.com/habitforge/habitforge-web/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserInitialState(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "pia")

	assert.Equal(t, 1, user.Level)
	assert.Equal(t, 0, user.XP)
	assert.Equal(t, 0, user.Streak)
	assert.False(t, user.WeekStartDate.IsZero())
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)
	createTestUser(t, db, "quinn")

	_, err := svc.CreateUser(&models.RegisterRequest{
		Name:     "Other",
		Email:    "quinn@example.com",
		Password: "hunter22",
	})
	assert.Error(t, err)
}

func TestAuthenticateUser(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)
	user := createTestUser(t, db, "rosa")

	ok, err := svc.AuthenticateUser(&models.LoginRequest{
		Email:    user.Email,
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, ok.ID)

	_, err = svc.AuthenticateUser(&models.LoginRequest{
		Email:    user.Email,
		Password: "wrong",
	})
	assert.Error(t, err)

	_, err = svc.AuthenticateUser(&models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "correct-horse",
	})
	assert.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)
	user := createTestUser(t, db, "sam")

	err := svc.ChangePassword(user.ID, "wrong", "new-password")
	assert.Error(t, err)

	require.NoError(t, svc.ChangePassword(user.ID, "correct-horse", "new-password"))

	_, err = svc.AuthenticateUser(&models.LoginRequest{
		Email:    user.Email,
		Password: "new-password",
	})
	assert.NoError(t, err)
}

func TestGetUserStats(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)
	achievements := NewAchievementService(db)
	require.NoError(t, achievements.SeedDefaultAchievements())

	user := createTestUser(t, db, "tara")
	habit := createTestHabit(t, db, user.ID, "easy")

	rewards := NewRewardService(db, achievements, nopEmitter{})
	_, err := rewards.CompleteHabit(habit.ID, user.ID, "")
	require.NoError(t, err)

	stats, err := svc.GetUserStats(user.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.ActiveHabits)
	assert.Equal(t, 1, stats.TotalCompletions)
	assert.Greater(t, stats.UnlockedAchievements, 0)
	assert.Greater(t, stats.TotalAchievements, stats.UnlockedAchievements)
	assert.Equal(t, 1, stats.CompletionsLastWeek)
}
